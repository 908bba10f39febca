// internal/domain/models/location.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Administrative hierarchy levels, widest first.
const (
	LevelDivision = "division"
	LevelDistrict = "district"
	LevelUpazila  = "upazila"
	LevelThana    = "thana"
	LevelUnion    = "union"
	LevelWard     = "ward"
)

// ValidLocationLevel reports whether l is a known hierarchy level.
func ValidLocationLevel(l string) bool {
	switch l {
	case LevelDivision, LevelDistrict, LevelUpazila, LevelThana, LevelUnion, LevelWard:
		return true
	}
	return false
}

// Location is a node in the fixed-depth administrative tree
// (division > district > upazila > thana > union > ward).
// Titles are unique across the whole tree.
type Location struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title    string              `bson:"title" json:"title"`
	TitleCI  string              `bson:"title_ci" json:"title_ci"`
	Level    string              `bson:"level" json:"level"`
	ParentID *primitive.ObjectID `bson:"parent_id,omitempty" json:"parent_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
