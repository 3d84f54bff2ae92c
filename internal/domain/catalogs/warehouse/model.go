// Package warehouse provides the Warehouse catalog.
// Warehouses are the physical locations stock is tracked against.
package warehouse

import (
	"context"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
)

// Warehouse represents a storage location for goods.
type Warehouse struct {
	entity.Catalog

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	// Manager is the name of the responsible person
	Manager *string `db:"manager" json:"manager,omitempty"`

	// Phone is the contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Capacity is the storage capacity in units, nil when unbounded
	Capacity *int64 `db:"capacity" json:"capacity,omitempty"`

	// Description is a free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewWarehouse creates a new Warehouse with required fields.
func NewWarehouse(code, name string) *Warehouse {
	return &Warehouse{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements the entity.Validatable interface.
func (w *Warehouse) Validate(ctx context.Context) error {
	if err := w.Catalog.Validate(ctx); err != nil {
		return err
	}

	if w.Capacity != nil && *w.Capacity < 0 {
		return apperror.NewValidation("capacity cannot be negative").
			WithDetail("field", "capacity")
	}

	return nil
}
