// Package userstatus lists users by account status, with their committee
// and designation joined in. The pseudo-status "not-assigned" selects
// approved users who hold no seat.
package userstatus

import (
	"context"

	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/query"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Row is one user with the joined seat documents. The joins are left
// outer: unassigned users carry nil Committee and Designation.
type Row struct {
	ID            primitive.ObjectID  `bson:"_id" json:"id"`
	FullName      string              `bson:"full_name" json:"full_name"`
	Phone         string              `bson:"phone" json:"phone"`
	Email         *string             `bson:"email,omitempty" json:"email,omitempty"`
	Avatar        string              `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Verified      bool                `bson:"verified" json:"verified"`
	AccountStatus string              `bson:"account_status" json:"account_status"`
	Committee     *models.Committee   `bson:"committee,omitempty" json:"committee,omitempty"`
	Designation   *models.Designation `bson:"designation,omitempty" json:"designation,omitempty"`
}

// statusFilter maps a status token onto a users filter. "not-assigned"
// is not a stored status: it means approved with an empty seat.
func statusFilter(status string) bson.M {
	switch status {
	case "":
		return bson.M{}
	case models.NotAssigned:
		return bson.M{
			"account_status":     models.StatusApproved,
			"assigned_committee": nil,
			"assigned_position":  nil,
		}
	default:
		return bson.M{"account_status": status}
	}
}

// List returns one page of users for the status token, honoring the
// request's search, sort, and pagination parameters. Search covers name,
// phone, and email. Unknown tokens report BadRequest rather than an
// empty page.
func List(ctx context.Context, db *mongo.Database, params query.Params, status string) ([]Row, query.PageMeta, error) {
	if status != "" && status != models.NotAssigned && !models.ValidStatus(status) {
		return nil, query.PageMeta{}, apperr.Newf(apperr.BadRequest, "invalid status token %q", status)
	}

	stages := mongo.Pipeline{
		bson.D{{Key: "$match", Value: statusFilter(status)}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "committees",
			"localField":   "assigned_committee",
			"foreignField": "_id",
			"as":           "committee",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$committee",
			"preserveNullAndEmptyArrays": true,
		}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "designations",
			"localField":   "assigned_position",
			"foreignField": "_id",
			"as":           "designation",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$designation",
			"preserveNullAndEmptyArrays": true,
		}}},
		bson.D{{Key: "$project", Value: bson.M{"password_hash": 0}}},
	}

	q := query.Aggregate(db.Collection("users"), params, stages).
		Search("full_name", "phone", "email")

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
