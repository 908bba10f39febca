// internal/domain/models/committee.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Committee types. Exactly one committee of TypeCentral may exist
// system-wide; every other type is unique per location.
const (
	TypeCentral = "central"
	TypeStudent = "student"
	TypeYouth   = "youth"
	TypeFemale  = "female"
)

// ValidCommitteeType reports whether t is a known committee type.
func ValidCommitteeType(t string) bool {
	return t == TypeCentral || t == TypeStudent || t == TypeYouth || t == TypeFemale
}

// Committee is an organizational unit tied to a location with exactly one
// president and zero or more ranked members. Members are not embedded;
// users point at their committee via User.AssignedCommittee.
type Committee struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title            string              `bson:"title" json:"title"`
	TitleCI          string              `bson:"title_ci" json:"title_ci"`
	Type             string              `bson:"type" json:"type"` // central | student | youth | female
	LocationID       primitive.ObjectID  `bson:"location_id" json:"location_id"`
	ParentLocationID *primitive.ObjectID `bson:"parent_location_id,omitempty" json:"parent_location_id,omitempty"`
	PresidentID      primitive.ObjectID  `bson:"president_id" json:"president_id"`
	Description      string              `bson:"description,omitempty" json:"description,omitempty"`
	Address          string              `bson:"address,omitempty" json:"address,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CommitteeTombstone is the audit record a disband leaves behind. A hard
// delete performs the same cascade but writes no tombstone.
type CommitteeTombstone struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommitteeID    primitive.ObjectID `bson:"committee_id" json:"committee_id"`
	Title          string             `bson:"title" json:"title"`
	Type           string             `bson:"type" json:"type"`
	LocationID     primitive.ObjectID `bson:"location_id" json:"location_id"`
	Reason         string             `bson:"reason,omitempty" json:"reason,omitempty"`
	MembersCleared int64              `bson:"members_cleared" json:"members_cleared"`
	DisbandedAt    time.Time          `bson:"disbanded_at" json:"disbanded_at"`
}
