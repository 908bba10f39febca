// internal/app/service/committees/coordinator.go
//
// Package committees coordinates the committee lifecycle: create with a
// president, change president, disband, delete, and member placement.
// Every multi-document mutation runs inside one transaction so concurrent
// readers see all of an operation or none of it.
package committees

import (
	"context"
	"errors"

	"github.com/dalemusser/memberhub/internal/app/policy/assignpolicy"
	committeestore "github.com/dalemusser/memberhub/internal/app/store/committees"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserStore is the user mutation surface the coordinator needs.
type UserStore interface {
	assignpolicy.UserReader
	SetAssignment(ctx context.Context, userID, committeeID, designationID primitive.ObjectID) error
	ClearAssignment(ctx context.Context, userID primitive.ObjectID) error
	ClearCommitteeAssignments(ctx context.Context, committeeID primitive.ObjectID) (int64, error)
}

// CommitteeStore is the committee persistence surface.
type CommitteeStore interface {
	assignpolicy.CommitteeReader
	ExistsForLocation(ctx context.Context, locationID primitive.ObjectID, ctype string) (bool, error)
	CentralExists(ctx context.Context) (bool, error)
	Insert(ctx context.Context, c models.Committee) (models.Committee, error)
	SetPresident(ctx context.Context, id, presidentID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// LocationStore resolves the locations committees attach to.
type LocationStore interface {
	assignpolicy.LocationReader
}

// DesignationStore resolves designations by id and by rank level.
type DesignationStore interface {
	assignpolicy.DesignationReader
	GetByLevel(ctx context.Context, level int) (*models.Designation, error)
}

// TombstoneStore records disbands for audit.
type TombstoneStore interface {
	Insert(ctx context.Context, t models.CommitteeTombstone) error
}

// TxnRunner executes fn inside one transaction; the context passed to fn
// carries the transaction and must be used for every store call within.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Coordinator owns all membership-changing writes to committees and user
// seats. No other component mutates these fields.
type Coordinator struct {
	users        UserStore
	committees   CommitteeStore
	locations    LocationStore
	designations DesignationStore
	tombstones   TombstoneStore
	runner       TxnRunner
	log          *zap.Logger
}

// NewCoordinator wires a Coordinator from its collaborators.
func NewCoordinator(users UserStore, committees CommitteeStore, locations LocationStore, designations DesignationStore, tombstones TombstoneStore, runner TxnRunner, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		users:        users,
		committees:   committees,
		locations:    locations,
		designations: designations,
		tombstones:   tombstones,
		runner:       runner,
		log:          logger,
	}
}

// CreateCommitteeInput carries the fields for a new committee.
type CreateCommitteeInput struct {
	Title            string
	Type             string
	LocationID       primitive.ObjectID
	ParentLocationID *primitive.ObjectID
	PresidentID      primitive.ObjectID
	Description      string
	Address          string
}

// CreateCommittee validates, inserts the committee, and seats its
// president, the last two inside one transaction: on any failure neither
// an orphan committee nor a half-assigned user survives.
func (c *Coordinator) CreateCommittee(ctx context.Context, in CreateCommitteeInput) (*models.Committee, error) {
	president, err := assignpolicy.EnsureUserExists(ctx, c.users, in.PresidentID)
	if err != nil {
		return nil, err
	}
	if err := assignpolicy.EnsureNotAlreadyPresident(ctx, c.designations, president); err != nil {
		return nil, err
	}
	if _, err := assignpolicy.EnsureLocationExists(ctx, c.locations, in.LocationID); err != nil {
		return nil, err
	}

	exists, err := c.committees.ExistsForLocation(ctx, in.LocationID, in.Type)
	if err != nil {
		return nil, ensureKind(err, "checking existing committee")
	}
	if exists {
		return nil, apperr.New(apperr.Conflict, "committee already exists for this location and type")
	}
	if in.Type == models.TypeCentral {
		central, err := c.committees.CentralExists(ctx)
		if err != nil {
			return nil, ensureKind(err, "checking central committee")
		}
		if central {
			return nil, apperr.New(apperr.Conflict, "central committee already exists")
		}
	}

	presidency, err := c.presidencyDesignation(ctx)
	if err != nil {
		return nil, err
	}

	var created models.Committee
	err = c.runner.WithTransaction(ctx, func(ctx context.Context) error {
		committee, err := c.committees.Insert(ctx, models.Committee{
			Title:            in.Title,
			Type:             in.Type,
			LocationID:       in.LocationID,
			ParentLocationID: in.ParentLocationID,
			PresidentID:      in.PresidentID,
			Description:      in.Description,
			Address:          in.Address,
		})
		if err != nil {
			if errors.Is(err, committeestore.ErrDuplicateCommittee) {
				return apperr.Wrap(apperr.Conflict, "committee already exists for this location and type", err)
			}
			return err
		}
		created = committee
		return c.users.SetAssignment(ctx, in.PresidentID, committee.ID, presidency.ID)
	})
	if err != nil {
		return nil, ensureKind(err, "creating committee")
	}

	c.log.Info("committee created",
		zap.String("committee_id", created.ID.Hex()),
		zap.String("type", created.Type),
		zap.String("president_id", in.PresidentID.Hex()))
	return &created, nil
}

// ChangePresident replaces the committee's president. Passing the current
// president is a no-op. The previous president's seat is cleared, the new
// president is seated at the presidency rank, and the committee document
// is updated, all in one transaction.
func (c *Coordinator) ChangePresident(ctx context.Context, committeeID, newPresidentID primitive.ObjectID) (*models.Committee, error) {
	committee, err := assignpolicy.EnsureCommitteeExists(ctx, c.committees, committeeID)
	if err != nil {
		return nil, err
	}
	if committee.PresidentID == newPresidentID {
		return committee, nil
	}

	if _, err := assignpolicy.EnsureUserExists(ctx, c.users, newPresidentID); err != nil {
		return nil, err
	}

	presidency, err := c.presidencyDesignation(ctx)
	if err != nil {
		return nil, err
	}

	previous := committee.PresidentID
	err = c.runner.WithTransaction(ctx, func(ctx context.Context) error {
		if !previous.IsZero() {
			if err := c.users.ClearAssignment(ctx, previous); err != nil {
				return err
			}
		}
		if err := c.users.SetAssignment(ctx, newPresidentID, committeeID, presidency.ID); err != nil {
			return err
		}
		return c.committees.SetPresident(ctx, committeeID, newPresidentID)
	})
	if err != nil {
		return nil, ensureKind(err, "changing president")
	}

	c.log.Info("president changed",
		zap.String("committee_id", committeeID.Hex()),
		zap.String("previous", previous.Hex()),
		zap.String("new", newPresidentID.Hex()))

	committee.PresidentID = newPresidentID
	return committee, nil
}

// DisbandCommittee removes the committee, clears every member's seat, and
// leaves a tombstone carrying the reason.
func (c *Coordinator) DisbandCommittee(ctx context.Context, committeeID primitive.ObjectID, reason string) error {
	return c.removeCommittee(ctx, committeeID, reason, true)
}

// DeleteCommittee removes the committee and clears every member's seat
// with no audit record. Same cascade as disband.
func (c *Coordinator) DeleteCommittee(ctx context.Context, committeeID primitive.ObjectID) error {
	return c.removeCommittee(ctx, committeeID, "", false)
}

func (c *Coordinator) removeCommittee(ctx context.Context, committeeID primitive.ObjectID, reason string, tombstone bool) error {
	committee, err := assignpolicy.EnsureCommitteeExists(ctx, c.committees, committeeID)
	if err != nil {
		return err
	}

	err = c.runner.WithTransaction(ctx, func(ctx context.Context) error {
		cleared, err := c.users.ClearCommitteeAssignments(ctx, committeeID)
		if err != nil {
			return err
		}
		deleted, err := c.committees.Delete(ctx, committeeID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			// The existence check above should make this impossible; a
			// concurrent delete between check and delete lands here.
			return apperr.New(apperr.Internal, "committee disappeared before delete")
		}
		if !tombstone {
			return nil
		}
		return c.tombstones.Insert(ctx, models.CommitteeTombstone{
			CommitteeID:    committeeID,
			Title:          committee.Title,
			Type:           committee.Type,
			LocationID:     committee.LocationID,
			Reason:         reason,
			MembersCleared: cleared,
		})
	})
	if err != nil {
		return ensureKind(err, "removing committee")
	}

	c.log.Info("committee removed",
		zap.String("committee_id", committeeID.Hex()),
		zap.Bool("tombstone", tombstone))
	return nil
}

// AssignMember places a user on a committee at a designation. This path
// refuses president-rank placements that would seat a second president;
// replacing a president goes through ChangePresident. Single-document
// write, so no transaction.
func (c *Coordinator) AssignMember(ctx context.Context, userID, designationID, committeeID primitive.ObjectID) (*models.User, error) {
	committee, err := assignpolicy.EnsureCommitteeExists(ctx, c.committees, committeeID)
	if err != nil {
		return nil, err
	}
	designation, err := assignpolicy.EnsureDesignationExists(ctx, c.designations, designationID)
	if err != nil {
		return nil, err
	}
	user, err := assignpolicy.EnsureUserExists(ctx, c.users, userID)
	if err != nil {
		return nil, err
	}
	if err := assignpolicy.EnsureNoRankConflict(committee, designation, userID); err != nil {
		return nil, err
	}

	if err := c.users.SetAssignment(ctx, userID, committeeID, designationID); err != nil {
		return nil, ensureKind(err, "assigning member")
	}

	user.AssignedCommittee = &committeeID
	user.AssignedPosition = &designationID
	return user, nil
}

// presidencyDesignation resolves the level-1 designation. Its absence
// means the reference table was never seeded, which is an operational
// failure, not a caller mistake.
func (c *Coordinator) presidencyDesignation(ctx context.Context) (*models.Designation, error) {
	d, err := c.designations.GetByLevel(ctx, models.PresidentLevel)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "president designation missing", err)
	}
	return d, nil
}

// ensureKind passes taxonomy errors through and wraps everything else as
// Internal so callers always see a classified error.
func ensureKind(err error, msg string) error {
	if err == nil {
		return nil
	}
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	return apperr.Wrap(apperr.Internal, msg, err)
}
