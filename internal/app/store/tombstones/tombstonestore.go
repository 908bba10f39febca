// internal/app/store/tombstones/tombstonestore.go
package tombstonestore

import (
	"context"
	"time"

	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store keeps the audit records written when a committee is disbanded.
// Tombstones are append-only; nothing updates or deletes them.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("committee_tombstones")}
}

// Insert records a disband.
func (s *Store) Insert(ctx context.Context, t models.CommitteeTombstone) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if t.DisbandedAt.IsZero() {
		t.DisbandedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, t)
	return err
}

// GetByCommittee returns the tombstone for a committee id, if any.
// Returns mongo.ErrNoDocuments when the committee was never disbanded.
func (s *Store) GetByCommittee(ctx context.Context, committeeID primitive.ObjectID) (*models.CommitteeTombstone, error) {
	var t models.CommitteeTombstone
	if err := s.c.FindOne(ctx, bson.M{"committee_id": committeeID}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Recent returns the most recent disbands, newest first.
func (s *Store) Recent(ctx context.Context, limit int64) ([]models.CommitteeTombstone, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "disbanded_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CommitteeTombstone
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
