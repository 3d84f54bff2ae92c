package entity

import (
	"context"

	"stockbook/internal/core/apperror"
)

// Catalog is the base type for reference data.
// Examples: Warehouse, Product, Counterparty.
type Catalog struct {
	BaseCatalog

	// Code is a short human-readable identifier, unique per catalog
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Active marks whether the record may be referenced by new movements
	Active bool `db:"active" json:"active"`
}

// NewCatalog creates a new Catalog with generated ID. New records are active.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(),
		Code:        code,
		Name:        name,
		Active:      true,
	}
}

// Validate implements the Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	var messages []string
	if c.Code == "" {
		messages = append(messages, "code is required")
	}
	if c.Name == "" {
		messages = append(messages, "name is required")
	}
	if len(messages) > 0 {
		return apperror.NewValidationMessages(messages)
	}
	return nil
}

// IsUsable reports whether the record can be referenced by a new movement.
func (c *Catalog) IsUsable() bool {
	return c.Active && !c.DeletionMark
}
