// internal/domain/models/designation.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PresidentLevel is the rank level reserved for the committee president.
// Resolution of the president designation is always done by level, not by
// title, so titles may be renamed freely. Changing the level of the
// president designation is unsupported.
const PresidentLevel = 1

// Designation is a global ranked position (level 1 is the top rank).
// Designations are seeded once at startup and treated as a read-mostly
// reference table.
type Designation struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title string             `bson:"title" json:"title"`
	Level int                `bson:"level" json:"level"`
}

// IsPresident reports whether the designation is the level-1 rank.
func (d *Designation) IsPresident() bool {
	return d.Level == PresidentLevel
}
