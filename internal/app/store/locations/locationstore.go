// internal/app/store/locations/locationstore.go
package locationstore

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("locations")}
}

var (
	// ErrDuplicateTitle is returned when a location with this title exists.
	ErrDuplicateTitle = errors.New("a location with this title already exists")

	errBadLevel = errors.New(`location level must be "division"|"district"|"upazila"|"thana"|"union"|"ward"`)
)

// GetByID loads a location by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	var l models.Location
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByTitle looks up a location by case-insensitive title.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByTitle(ctx context.Context, title string) (*models.Location, error) {
	var l models.Location
	if err := s.c.FindOne(ctx, bson.M{"title_ci": text.Fold(normalize.Name(title))}).Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a location node after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, l models.Location) (models.Location, error) {
	if !models.ValidLocationLevel(l.Level) {
		return models.Location{}, errBadLevel
	}
	l.ID = primitive.NewObjectID()
	l.Title = normalize.Name(l.Title)
	l.TitleCI = text.Fold(l.Title)

	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, l); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Location{}, ErrDuplicateTitle
		}
		return models.Location{}, err
	}
	return l, nil
}

// ListByParent returns the children of parentID ordered by title. A nil
// parentID lists the roots (divisions).
func (s *Store) ListByParent(ctx context.Context, parentID *primitive.ObjectID) ([]models.Location, error) {
	filter := bson.M{"parent_id": nil}
	if parentID != nil {
		filter["parent_id"] = *parentID
	}
	opts := options.Find().SetSort(bson.D{{Key: "title_ci", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Location
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes a location's title and/or level.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, title, level string) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if title != "" {
		t := normalize.Name(title)
		set["title"] = t
		set["title_ci"] = text.Fold(t)
	}
	if level != "" {
		if !models.ValidLocationLevel(level) {
			return errBadLevel
		}
		set["level"] = level
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateTitle
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a location node. Returns the number of documents deleted
// (0 or 1). Callers are responsible for not orphaning committees.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
