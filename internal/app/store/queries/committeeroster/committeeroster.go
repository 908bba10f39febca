// Package committeeroster builds the full roster view of one committee:
// the committee document joined with its president, its location, and its
// members grouped under their designation titles.
package committeeroster

import (
	"context"

	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UnknownDesignation is the roster group for members whose designation
// reference no longer resolves.
const UnknownDesignation = "Unknown"

// Member is the slim user shape embedded in a roster.
type Member struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	FullName string             `bson:"full_name" json:"full_name"`
	Phone    string             `bson:"phone" json:"phone"`
	Avatar   string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

// President is the joined president document, nil when the reference is
// dangling.
type President struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	FullName string             `bson:"full_name" json:"full_name"`
	Phone    string             `bson:"phone" json:"phone"`
	Avatar   string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

// Location is the joined location document.
type Location struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Title string             `bson:"title" json:"title"`
	Level string             `bson:"level" json:"level"`
}

// Roster is one committee with everything a profile page needs.
type Roster struct {
	ID          primitive.ObjectID  `bson:"_id" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Type        string              `bson:"type" json:"type"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Address     string              `bson:"address,omitempty" json:"address,omitempty"`
	President   *President          `bson:"president,omitempty" json:"president,omitempty"`
	Location    *Location           `bson:"location,omitempty" json:"location,omitempty"`
	Members     map[string][]Member `bson:"members" json:"members"`
}

// Get loads the roster for one committee. Members are grouped by the
// title of their assigned designation; a committee with no members gets
// an empty map. Reports NotFound when the committee does not exist.
func Get(ctx context.Context, db *mongo.Database, committeeID primitive.ObjectID) (*Roster, error) {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"_id": committeeID}}},
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
			"pipeline": mongo.Pipeline{
				bson.D{{Key: "$project", Value: bson.M{"title": 1, "level": 1}}},
			},
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$location",
			"preserveNullAndEmptyArrays": true,
		}}},
		// Members come from users whose seat points at this committee,
		// grouped in a sub-pipeline by the title of their designation.
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": "users",
			"let":  bson.M{"cid": "$_id"},
			"as":   "member_groups",
			"pipeline": mongo.Pipeline{
				bson.D{{Key: "$match", Value: bson.M{
					"$expr": bson.M{"$eq": bson.A{"$assigned_committee", "$$cid"}},
				}}},
				bson.D{{Key: "$lookup", Value: bson.M{
					"from":         "designations",
					"localField":   "assigned_position",
					"foreignField": "_id",
					"as":           "designation",
				}}},
				// Preserve members whose designation document is gone; they
				// group under the fallback key below rather than vanishing
				// from the roster.
				bson.D{{Key: "$unwind", Value: bson.M{
					"path":                       "$designation",
					"preserveNullAndEmptyArrays": true,
				}}},
				bson.D{{Key: "$sort", Value: bson.D{
					{Key: "designation.level", Value: 1},
					{Key: "full_name_ci", Value: 1},
				}}},
				bson.D{{Key: "$group", Value: bson.M{
					"_id": bson.M{"$ifNull": bson.A{"$designation.title", UnknownDesignation}},
					"members": bson.M{"$push": bson.M{
						"_id":       "$_id",
						"full_name": "$full_name",
						"phone":     "$phone",
						"avatar":    "$avatar",
					}},
				}}},
			},
		}}},
		// Fold the grouped array into a {designation title -> members}
		// document.
		bson.D{{Key: "$addFields", Value: bson.M{
			"members": bson.M{"$arrayToObject": bson.M{
				"$map": bson.M{
					"input": "$member_groups",
					"as":    "g",
					"in":    bson.M{"k": "$$g._id", "v": "$$g.members"},
				},
			}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"title":       1,
			"type":        1,
			"description": 1,
			"address":     1,
			"president":   1,
			"location":    1,
			"members":     1,
		}}},
	}

	cur, err := db.Collection("committees").Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Roster
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, apperr.New(apperr.NotFound, "committee not found")
	}
	r := out[0]
	if r.Members == nil {
		r.Members = map[string][]Member{}
	}
	return &r, nil
}
