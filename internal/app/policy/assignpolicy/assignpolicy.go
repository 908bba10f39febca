// Package assignpolicy holds the validation rules consulted before any
// assignment mutation. Every function reads but never writes; the one
// corrective action the system performs (purging stale unverified
// registrations) is signalled to the caller, not executed here.
package assignpolicy

import (
	"context"
	"errors"

	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserReader is the read surface of the user store the policy needs.
type UserReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// CommitteeReader is the read surface of the committee store.
type CommitteeReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Committee, error)
}

// DesignationReader is the read surface of the designation store.
type DesignationReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Designation, error)
}

// LocationReader is the read surface of the location store.
type LocationReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error)
}

// EnsureUserExists loads the user or reports NotFound.
func EnsureUserExists(ctx context.Context, users UserReader, id primitive.ObjectID) (*models.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, err
	}
	return u, nil
}

// EnsureCommitteeExists loads the committee or reports NotFound.
func EnsureCommitteeExists(ctx context.Context, committees CommitteeReader, id primitive.ObjectID) (*models.Committee, error) {
	c, err := committees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.NotFound, "committee not found")
		}
		return nil, err
	}
	return c, nil
}

// EnsureDesignationExists loads the designation or reports NotFound.
func EnsureDesignationExists(ctx context.Context, designations DesignationReader, id primitive.ObjectID) (*models.Designation, error) {
	d, err := designations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.NotFound, "designation not found")
		}
		return nil, err
	}
	return d, nil
}

// EnsureLocationExists loads the location or reports NotFound.
func EnsureLocationExists(ctx context.Context, locations LocationReader, id primitive.ObjectID) (*models.Location, error) {
	l, err := locations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.NotFound, "location not found")
		}
		return nil, err
	}
	return l, nil
}

// EnsureUserRegistrable checks that the phone (and email, when given) are
// free for a new registration. A verified owner makes the registration a
// Conflict. Unverified owners are abandoned registration requests: their
// ids are returned so the caller can purge them before inserting.
func EnsureUserRegistrable(ctx context.Context, users UserReader, phone, email string) ([]primitive.ObjectID, error) {
	var stale []primitive.ObjectID

	existing, err := users.GetByPhone(ctx, phone)
	switch {
	case err == nil && existing.Verified:
		return nil, apperr.Newf(apperr.Conflict, "%s is already registered", phone)
	case err == nil:
		stale = append(stale, existing.ID)
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, err
	}

	if email != "" {
		existing, err := users.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.Verified:
			return nil, apperr.Newf(apperr.Conflict, "%s is already registered", email)
		case err == nil:
			stale = append(stale, existing.ID)
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, err
		}
	}

	return stale, nil
}

// EnsureOTPEligible checks that an OTP may be requested for the phone.
func EnsureOTPEligible(ctx context.Context, users UserReader, phone string) (*models.User, error) {
	u, err := users.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Newf(apperr.BadRequest, "no account registered with %s", phone)
		}
		return nil, err
	}
	return u, nil
}

// EnsureLoginEligible checks that the phone belongs to a verified,
// approved account.
func EnsureLoginEligible(ctx context.Context, users UserReader, phone string) (*models.User, error) {
	u, err := users.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Newf(apperr.BadRequest, "no account registered with %s", phone)
		}
		return nil, err
	}
	if !u.Verified {
		return nil, apperr.New(apperr.BadRequest, "account is not verified")
	}
	if u.AccountStatus != models.StatusApproved {
		return nil, apperr.New(apperr.BadRequest, "account is not approved")
	}
	return u, nil
}

// EnsureNoRankConflict rejects placing userID at the president rank of a
// committee that already has a different president. Pure: operates on
// already-loaded documents.
func EnsureNoRankConflict(committee *models.Committee, designation *models.Designation, userID primitive.ObjectID) error {
	if designation.Level != models.PresidentLevel {
		return nil
	}
	if !committee.PresidentID.IsZero() && committee.PresidentID != userID {
		return apperr.New(apperr.BadRequest, "committee already has a president")
	}
	return nil
}

// EnsureNotAlreadyPresident rejects a user whose current assignment is
// already a level-1 designation; nobody presides over two committees.
func EnsureNotAlreadyPresident(ctx context.Context, designations DesignationReader, user *models.User) error {
	if user.AssignedPosition == nil {
		return nil
	}
	d, err := designations.GetByID(ctx, *user.AssignedPosition)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Dangling position reference; treat as not presiding.
			return nil
		}
		return err
	}
	if d.IsPresident() {
		return apperr.New(apperr.BadRequest, "user is already a president of another committee")
	}
	return nil
}
