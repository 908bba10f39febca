// Package committeelist is the paged committee directory: each committee
// joined with its president and its location chain.
package committeelist

import (
	"context"

	"github.com/dalemusser/memberhub/internal/app/system/query"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// President is the slim joined president shape.
type President struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	FullName string             `bson:"full_name" json:"full_name"`
	Phone    string             `bson:"phone" json:"phone"`
	Avatar   string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

// Row is one directory entry.
type Row struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Title          string             `bson:"title" json:"title"`
	Type           string             `bson:"type" json:"type"`
	Address        string             `bson:"address,omitempty" json:"address,omitempty"`
	President      *President         `bson:"president,omitempty" json:"president,omitempty"`
	Location       *models.Location   `bson:"location,omitempty" json:"location,omitempty"`
	ParentLocation *models.Location   `bson:"parent_location,omitempty" json:"parent_location,omitempty"`
}

// Filter narrows the directory. Zero value lists everything.
type Filter struct {
	LocationID *primitive.ObjectID
	Type       string
}

// List returns one page of the committee directory, honoring the
// request's search, sort, and pagination parameters. Search covers the
// committee title.
func List(ctx context.Context, db *mongo.Database, params query.Params, f Filter) ([]Row, query.PageMeta, error) {
	match := bson.M{}
	if f.LocationID != nil {
		match["location_id"] = *f.LocationID
	}
	if f.Type != "" {
		match["type"] = f.Type
	}

	stages := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "president_id",
			"foreignField": "_id",
			"as":           "president",
			"pipeline": mongo.Pipeline{
				bson.D{{Key: "$project", Value: bson.M{"full_name": 1, "phone": 1, "avatar": 1}}},
			},
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$president",
			"preserveNullAndEmptyArrays": true,
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "locations",
			"localField":   "location_id",
			"foreignField": "_id",
			"as":           "location",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$location",
			"preserveNullAndEmptyArrays": true,
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "locations",
			"localField":   "parent_location_id",
			"foreignField": "_id",
			"as":           "parent_location",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$parent_location",
			"preserveNullAndEmptyArrays": true,
		}}},
	}

	q := query.Aggregate(db.Collection("committees"), params, stages).
		Search("title")

	var rows []Row
	if err := q.All(ctx, &rows); err != nil {
		return nil, query.PageMeta{}, err
	}
	meta, err := q.Page(ctx)
	if err != nil {
		return nil, query.PageMeta{}, err
	}
	return rows, meta, nil
}
