// Package entity provides the core domain entities: catalogs (reference
// data), stock movements (the immutable ledger) and stock balances (the
// derived register).
package entity

import (
	"context"
	"time"

	"stockbook/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants without database access.
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, an AppError with details otherwise.
	Validate(ctx context.Context) error
}

// BaseEntity contains the fields shared by all persisted entities.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// DeletionMark indicates a soft-deleted entity
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`
}

// NewBaseEntity creates a new BaseEntity with generated ID.
func NewBaseEntity() BaseEntity {
	return BaseEntity{
		ID:      id.New(),
		Version: 1,
	}
}

// MarkDeleted sets the deletion mark.
func (b *BaseEntity) MarkDeleted() {
	b.DeletionMark = true
}

// BaseCatalog extends BaseEntity with audit timestamps for reference data.
type BaseCatalog struct {
	BaseEntity

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseCatalog creates a new BaseCatalog with generated ID and timestamps.
func NewBaseCatalog() BaseCatalog {
	now := time.Now().UTC()
	return BaseCatalog{
		BaseEntity: NewBaseEntity(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch updates the UpdatedAt timestamp and increments version.
func (b *BaseCatalog) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.Version++
}
