package models

import "time"

// Partner is a top-level named owner of clients. ID is empty when the
// partner was derived from client records instead of read from the directory.
type Partner struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
