// Package id provides UUIDv7 identifiers for all entities.
// UUIDv7 embeds a Unix timestamp in the leading bits, so primary keys sort
// chronologically and stay B-tree friendly in PostgreSQL.
package id

import (
	"github.com/google/uuid"
)

// ID is the identifier type used across all entities.
type ID = uuid.UUID

// New generates a time-ordered UUIDv7.
func New() ID {
	v7, err := uuid.NewV7()
	if err != nil {
		// uuid.NewV7 only fails when the entropy source does; fall back to V4.
		return uuid.New()
	}
	return v7
}

// Parse converts a string to an ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// IsNil reports whether the ID is the zero value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
