// Package product provides the Product catalog.
// Products are the goods tracked in warehouse stock.
package product

import (
	"context"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/types"
)

// DefaultUnit is used when no unit of measure is given.
const DefaultUnit = "pcs"

// Product represents one stock-keeping item.
type Product struct {
	entity.Catalog

	// Category is a free-form grouping label
	Category *string `db:"category" json:"category,omitempty"`

	// Unit is the unit of measure (pcs, box, kg, ...)
	Unit string `db:"unit" json:"unit"`

	// Specification describes the variant (size, model, grade)
	Specification *string `db:"specification" json:"specification,omitempty"`

	// Price is the reference unit price, used as the default on movements
	Price *types.Money `db:"price" json:"price,omitempty"`

	// MinStock is the low-stock alert threshold, 0 disables the alert
	MinStock int64 `db:"min_stock" json:"minStock"`

	// MaxStock is the overstock alert threshold, 0 disables the alert
	MaxStock int64 `db:"max_stock" json:"maxStock"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name string) *Product {
	return &Product{
		Catalog: entity.NewCatalog(code, name),
		Unit:    DefaultUnit,
	}
}

// Validate implements the entity.Validatable interface.
// An empty unit is not an error here: the service fills DefaultUnit
// before the entity is stored.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.Price != nil && p.Price.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}

	if p.MinStock < 0 {
		return apperror.NewValidation("min_stock cannot be negative").
			WithDetail("field", "minStock")
	}

	if p.MaxStock < 0 {
		return apperror.NewValidation("max_stock cannot be negative").
			WithDetail("field", "maxStock")
	}

	if p.MinStock > 0 && p.MaxStock > 0 && p.MinStock > p.MaxStock {
		return apperror.NewValidation("min_stock cannot exceed max_stock").
			WithDetail("field", "minStock")
	}

	return nil
}

// HasLowStockAlert reports whether the low-stock threshold is enabled.
func (p *Product) HasLowStockAlert() bool {
	return p.MinStock > 0
}

// HasOverstockAlert reports whether the overstock threshold is enabled.
func (p *Product) HasOverstockAlert() bool {
	return p.MaxStock > 0
}
