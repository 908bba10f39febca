// internal/app/store/committees/committeestore.go
package committeestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/normalize"
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
	return &Store{c: db.Collection("committees")}
}

var (
	// ErrDuplicateCommittee is returned when a committee already exists for
	// the same (location, type) pair.
	ErrDuplicateCommittee = errors.New("a committee of this type already exists for the location")

	errBadType = errors.New(`committee type must be "central"|"student"|"youth"|"female"`)
)

// GetByID loads a committee by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Committee, error) {
	var c models.Committee
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ExistsForLocation reports whether a committee of ctype exists at the location.
func (s *Store) ExistsForLocation(ctx context.Context, locationID primitive.ObjectID, ctype string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"location_id": locationID, "type": ctype}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// CentralExists reports whether the singleton central committee exists.
func (s *Store) CentralExists(ctx context.Context) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"type": models.TypeCentral}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// Insert creates a committee after normalizing & validating fields.
// The (location, type) unique index backstops the coordinator's
// duplicate check.
func (s *Store) Insert(ctx context.Context, c models.Committee) (models.Committee, error) {
	if !models.ValidCommitteeType(c.Type) {
		return models.Committee{}, errBadType
	}
	c.ID = primitive.NewObjectID()
	c.Title = normalize.Name(c.Title)
	c.TitleCI = text.Fold(c.Title)

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Committee{}, ErrDuplicateCommittee
		}
		return models.Committee{}, err
	}
	return c, nil
}

// SetPresident persists the committee's president reference.
func (s *Store) SetPresident(ctx context.Context, id, presidentID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"president_id": presidentID,
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateInfo changes the descriptive fields that do not affect membership.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, title, description, address string) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if title != "" {
		set["title"] = normalize.Name(title)
		set["title_ci"] = text.Fold(normalize.Name(title))
	}
	if description != "" {
		set["description"] = description
	}
	if address != "" {
		set["address"] = address
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a committee document. Returns the number of documents
// deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
