// internal/app/store/designations/designationstore.go
package designationstore

import (
	"context"

	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store wraps the designations reference table. Level values are assumed
// stable once seeded; lookups by level must stay cheap (unique index).
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("designations")}
}

// GetByID loads a designation by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Designation, error) {
	var d models.Designation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByLevel loads a designation by rank level. The president designation
// is always resolved this way, never by title, so titles may be renamed.
func (s *Store) GetByLevel(ctx context.Context, level int) (*models.Designation, error) {
	var d models.Designation
	if err := s.c.FindOne(ctx, bson.M{"level": level}).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns all designations ordered by level.
func (s *Store) List(ctx context.Context) ([]models.Designation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "level", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Designation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Seed inserts the given designations unless their level already exists.
// Idempotent; called once at startup.
func (s *Store) Seed(ctx context.Context, seed []models.Designation) (int, error) {
	inserted := 0
	for _, d := range seed {
		err := s.c.FindOne(ctx, bson.M{"level": d.Level}).Err()
		if err == nil {
			continue
		}
		if err != mongo.ErrNoDocuments {
			return inserted, err
		}
		d.ID = primitive.NewObjectID()
		if _, err := s.c.InsertOne(ctx, d); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
