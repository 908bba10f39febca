package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a verified, approved test user with the given name
// and phone. Returns the created user with its generated ID.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, phone string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:            primitive.NewObjectID(),
		FullName:      fullName,
		FullNameCI:    text.Fold(fullName),
		Phone:         phone,
		Verified:      true,
		AccountStatus: models.StatusApproved,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreatePendingUser creates an unverified, pending test user.
func (f *Fixtures) CreatePendingUser(ctx context.Context, fullName, phone string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:            primitive.NewObjectID(),
		FullName:      fullName,
		FullNameCI:    text.Fold(fullName),
		Phone:         phone,
		Verified:      false,
		AccountStatus: models.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create pending test user: %v", err)
	}
	return user
}

// CreateLocation creates a test location at the given level.
func (f *Fixtures) CreateLocation(ctx context.Context, title, level string, parentID *primitive.ObjectID) models.Location {
	f.t.Helper()

	now := time.Now().UTC()
	loc := models.Location{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Level:     level,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("locations").InsertOne(ctx, loc); err != nil {
		f.t.Fatalf("failed to create test location: %v", err)
	}
	return loc
}

// CreateDesignation creates a test designation at the given rank level.
func (f *Fixtures) CreateDesignation(ctx context.Context, title string, level int) models.Designation {
	f.t.Helper()

	d := models.Designation{
		ID:    primitive.NewObjectID(),
		Title: title,
		Level: level,
	}

	if _, err := f.db.Collection("designations").InsertOne(ctx, d); err != nil {
		f.t.Fatalf("failed to create test designation: %v", err)
	}
	return d
}

// CreateCommittee creates a test committee with the given president and
// location. The president's seat is written as well so documents stay
// consistent with what the lifecycle coordinator produces.
func (f *Fixtures) CreateCommittee(ctx context.Context, title, ctype string, locationID, presidentID primitive.ObjectID) models.Committee {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Committee{
		ID:          primitive.NewObjectID(),
		Title:       title,
		TitleCI:     text.Fold(title),
		Type:        ctype,
		LocationID:  locationID,
		PresidentID: presidentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("committees").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test committee: %v", err)
	}
	return c
}

// AssignSeat writes a user's seat directly, bypassing the coordinator.
func (f *Fixtures) AssignSeat(ctx context.Context, userID, committeeID, designationID primitive.ObjectID) {
	f.t.Helper()

	_, err := f.db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"assigned_committee": committeeID,
			"assigned_position":  designationID,
		}})
	if err != nil {
		f.t.Fatalf("failed to assign test seat: %v", err)
	}
}
