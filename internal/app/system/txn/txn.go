// internal/app/system/txn/txn.go
//
// Package txn owns the unit of work for multi-document mutations. A
// coordinator operation hands its writes to Runner.WithTransaction, which
// guarantees commit-or-abort on every exit path; the session-scoped
// context it passes to fn is the transaction handle every store call
// rides on.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Runner executes functions inside one MongoDB multi-document transaction.
type Runner struct {
	client *mongo.Client
	log    *zap.Logger
}

// NewRunner returns a Runner bound to client.
func NewRunner(client *mongo.Client, logger *zap.Logger) *Runner {
	return &Runner{client: client, log: logger}
}

// WithTransaction runs fn inside a transaction. Any error from fn aborts
// the transaction before propagating; a successful return commits.
//
// Standalone servers (no replica set) cannot run transactions at all. In
// that case the writes are executed without a transaction and a warning is
// logged — acceptable for development, not for production, where a replica
// set is assumed.
func (r *Runner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			r.log.Warn("sessions unsupported by server, running writes without transaction", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		r.log.Warn("transactions unsupported by server, running writes without transaction", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// Server error codes that indicate transactions cannot run here.
//
//	20  IllegalOperation (standalone server)
//	51  command not supported in this deployment
//	263 OperationNotSupportedInTransaction
var notSupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

// IsNotSupported reports whether err means the server cannot run
// multi-document transactions (standalone mongod, old wire version, or an
// emulating vendor without session support).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	if ce, ok := err.(mongo.CommandError); ok {
		return notSupportedCodes[ce.Code]
	}

	// Some drivers/vendors surface the condition only as message text.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set"):
		return true
	case strings.Contains(msg, "session") && strings.Contains(msg, "not supported"):
		return true
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "session"):
		return true
	case strings.Contains(msg, "illegal operation") && strings.Contains(msg, "transaction"):
		return true
	}
	return false
}
