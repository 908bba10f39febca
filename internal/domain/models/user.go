// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account approval states. Registration requests start as Pending and are
// moved to Approved or Rejected by an administrator.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// NotAssigned is the synthetic status token for listing approved users who
// hold no committee seat. It is a query predicate, never a stored value.
const NotAssigned = "not-assigned"

// ValidStatus reports whether s is a storable account status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// User represents a registered member of the organization.
//
// NOTE:
//   - AssignedCommittee and AssignedPosition are either both nil or both
//     set. The committee lifecycle coordinator is the only writer of the
//     pair and always updates them together.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Phone      string             `bson:"phone" json:"phone"`
	Email      *string            `bson:"email,omitempty" json:"email,omitempty"`
	Avatar     string             `bson:"avatar,omitempty" json:"avatar,omitempty"`

	PasswordHash  string `bson:"password_hash" json:"-"`
	Verified      bool   `bson:"verified" json:"verified"`
	AccountStatus string `bson:"account_status" json:"account_status"` // pending | approved | rejected

	AssignedCommittee *primitive.ObjectID `bson:"assigned_committee,omitempty" json:"assigned_committee,omitempty"`
	AssignedPosition  *primitive.ObjectID `bson:"assigned_position,omitempty" json:"assigned_position,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasSeat reports whether the user currently holds a committee assignment.
func (u *User) HasSeat() bool {
	return u.AssignedCommittee != nil && u.AssignedPosition != nil
}
