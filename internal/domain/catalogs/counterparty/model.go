// Package counterparty provides the Counterparty catalog.
// Counterparties are the business partners on movements: suppliers deliver
// stock in, clients take stock out.
package counterparty

import (
	"context"
	"regexp"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// CounterpartyType defines which movement directions the partner serves.
type CounterpartyType string

const (
	TypeSupplier CounterpartyType = "supplier"
	TypeClient   CounterpartyType = "client"
	TypeBoth     CounterpartyType = "both"
)

// Counterparty represents a business partner.
type Counterparty struct {
	entity.Catalog

	// Type defines whether this is a supplier, a client, or both
	Type CounterpartyType `db:"type" json:"type"`

	// ContactPerson is the primary contact name
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// Address is the postal address
	Address *string `db:"address" json:"address,omitempty"`

	// TaxID is the tax registration number
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewCounterparty creates a new Counterparty with required fields.
func NewCounterparty(code, name string, cpType CounterpartyType) *Counterparty {
	return &Counterparty{
		Catalog: entity.NewCatalog(code, name),
		Type:    cpType,
	}
}

// Validate implements the entity.Validatable interface.
func (c *Counterparty) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidType(c.Type) {
		return apperror.NewValidation("invalid counterparty type").
			WithDetail("field", "type").
			WithDetail("value", string(c.Type))
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	return nil
}

// IsSupplier reports whether the partner can appear on inbound movements.
func (c *Counterparty) IsSupplier() bool {
	return c.Type == TypeSupplier || c.Type == TypeBoth
}

// IsClient reports whether the partner can appear on outbound movements.
func (c *Counterparty) IsClient() bool {
	return c.Type == TypeClient || c.Type == TypeBoth
}

// ServesKind reports whether the partner matches the movement direction.
func (c *Counterparty) ServesKind(kind entity.Kind) bool {
	if kind == entity.KindInbound {
		return c.IsSupplier()
	}
	return c.IsClient()
}

func isValidType(t CounterpartyType) bool {
	switch t {
	case TypeSupplier, TypeClient, TypeBoth:
		return true
	}
	return false
}
