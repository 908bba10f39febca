// internal/app/store/users/userstore.go
package userstore

// Terminology: a user's "seat" is the assigned_committee/assigned_position
// pair. The pair is written only through SetAssignment/ClearAssignment so
// both fields always change together.

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/normalize"
	"github.com/dalemusser/memberhub/internal/app/system/query"
	"github.com/dalemusser/memberhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicatePhone is returned when a user with this phone already exists.
	ErrDuplicatePhone = errors.New("a user with this phone already exists")
	// ErrDuplicateEmail is returned when a user with this email already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")

	errBadStatus = errors.New(`account status must be "pending"|"approved"|"rejected"`)
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByPhone looks up a user by normalized phone number.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"phone": normalize.Phone(phone)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
// New users start pending and unverified unless the caller says otherwise.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Phone = normalize.Phone(u.Phone)
	if u.Email != nil {
		e := normalize.Email(*u.Email)
		if e == "" {
			u.Email = nil
		} else {
			u.Email = &e
		}
	}
	if u.AccountStatus == "" {
		u.AccountStatus = models.StatusPending
	}
	if !models.ValidStatus(u.AccountStatus) {
		return models.User{}, errBadStatus
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			if strings.Contains(err.Error(), "email") {
				return models.User{}, ErrDuplicateEmail
			}
			return models.User{}, ErrDuplicatePhone
		}
		return models.User{}, err
	}
	return u, nil
}

// List returns one page of users matching filter, honoring the request's
// search, sort, and pagination parameters. Search covers name, phone,
// and email.
func (s *Store) List(ctx context.Context, params query.Params, filter bson.M) ([]models.User, query.PageMeta, error) {
	q := query.Find(s.c, params).
		Filter(filter).
		Search("full_name", "phone", "email")

	var users []models.User
	if err := q.All(ctx, &users); err != nil {
		return nil, query.PageMeta{}, err
	}
	meta, err := q.Page(ctx)
	if err != nil {
		return nil, query.PageMeta{}, err
	}
	return users, meta, nil
}

// SetAssignment places the user on a committee with a designation, writing
// both references together.
func (s *Store) SetAssignment(ctx context.Context, userID, committeeID, designationID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{
		"assigned_committee": committeeID,
		"assigned_position":  designationID,
		"updated_at":         time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ClearAssignment removes the user's seat, nulling both references together.
func (s *Store) ClearAssignment(ctx context.Context, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{
		"assigned_committee": nil,
		"assigned_position":  nil,
		"updated_at":         time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ClearCommitteeAssignments nulls the seat of every user assigned to the
// committee. Returns the number of users cleared.
func (s *Store) ClearCommitteeAssignments(ctx context.Context, committeeID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"assigned_committee": committeeID},
		bson.M{"$set": bson.M{
			"assigned_committee": nil,
			"assigned_position":  nil,
			"updated_at":         time.Now().UTC(),
		}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// MarkVerified flags the user with this phone as phone-verified.
func (s *Store) MarkVerified(ctx context.Context, phone string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"phone": normalize.Phone(phone)},
		bson.M{"$set": bson.M{"verified": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateStatus moves the user to a new account status.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if !models.ValidStatus(status) {
		return errBadStatus
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"account_status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a user document. Returns the number of documents deleted
// (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
