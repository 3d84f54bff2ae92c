package entity

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// Kind is the direction of a stock movement.
type Kind string

const (
	// KindInbound brings stock into a warehouse (goods receipt).
	KindInbound Kind = "inbound"
	// KindOutbound takes stock out of a warehouse (goods issue).
	KindOutbound Kind = "outbound"
)

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindInbound:
		return KindInbound, nil
	case KindOutbound:
		return KindOutbound, nil
	default:
		return "", apperror.NewValidation(fmt.Sprintf("unknown movement kind %q", s)).
			WithDetail("field", "kind")
	}
}

// Valid reports whether the kind is one of the known directions.
func (k Kind) Valid() bool {
	return k == KindInbound || k == KindOutbound
}

// NumberPrefix returns the document number prefix for the kind.
// Inbound documents are numbered RK..., outbound CK....
func (k Kind) NumberPrefix() string {
	if k == KindOutbound {
		return "CK"
	}
	return "RK"
}

// Sign returns +1 for inbound and -1 for outbound.
func (k Kind) Sign() int64 {
	if k == KindOutbound {
		return -1
	}
	return 1
}

// Movement is one immutable row of the stock ledger. A movement is written
// exactly once and never updated or deleted; corrections are made by posting
// a compensating movement.
type Movement struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// DocumentNumber is the unique business number,
	// e.g. RK202601150003: kind prefix, date, 4-digit daily sequence.
	DocumentNumber string `db:"document_number" json:"documentNumber"`

	// Kind is the movement direction
	Kind Kind `db:"kind" json:"kind"`

	// Dimensions
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`
	ProductID   id.ID `db:"product_id" json:"productId"`

	// CounterpartyID is the supplier (inbound) or client (outbound), optional
	CounterpartyID *id.ID `db:"counterparty_id" json:"counterpartyId,omitempty"`

	// Quantity is the number of units moved, always positive
	Quantity int64 `db:"quantity" json:"quantity"`

	// UnitPrice is the per-unit price, optional
	UnitPrice *types.Money `db:"unit_price" json:"unitPrice,omitempty"`

	// TotalAmount is quantity times unit price, zero when no price is given.
	// Always recomputed before the movement is written.
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Operator is the person who performed the operation
	Operator string `db:"operator" json:"operator"`

	// Note is an optional free-form comment
	Note string `db:"note" json:"note,omitempty"`

	// OccurredAt is the business time of the movement
	OccurredAt time.Time `db:"occurred_at" json:"occurredAt"`

	// CreatedAt is when the row was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovement creates a movement with generated ID and recording timestamp.
// Optional fields (counterparty, price, note) are set by the caller.
func NewMovement(kind Kind, warehouseID, productID id.ID, quantity int64, occurredAt time.Time) Movement {
	return Movement{
		ID:          id.New(),
		Kind:        kind,
		WarehouseID: warehouseID,
		ProductID:   productID,
		Quantity:    quantity,
		OccurredAt:  occurredAt,
		CreatedAt:   time.Now().UTC(),
	}
}

// Validate implements the Validatable interface. All field problems are
// collected into a single validation error so the caller sees the complete
// list, not just the first one.
func (m *Movement) Validate(ctx context.Context) error {
	var messages []string

	if !m.Kind.Valid() {
		messages = append(messages, fmt.Sprintf("kind must be %q or %q", KindInbound, KindOutbound))
	}
	if id.IsNil(m.WarehouseID) {
		messages = append(messages, "warehouse_id is required")
	}
	if id.IsNil(m.ProductID) {
		messages = append(messages, "product_id is required")
	}
	if m.Quantity <= 0 {
		messages = append(messages, "quantity must be a positive integer")
	}
	if m.UnitPrice != nil && m.UnitPrice.IsNegative() {
		messages = append(messages, "unit_price must not be negative")
	}
	if m.Operator == "" {
		messages = append(messages, "operator is required")
	}
	if m.OccurredAt.IsZero() {
		messages = append(messages, "occurred_at is required")
	} else if m.OccurredAt.After(time.Now().UTC()) {
		messages = append(messages, "occurred_at must not be in the future")
	}

	if len(messages) > 0 {
		return apperror.NewValidationMessages(messages)
	}
	return nil
}

// ComputeTotal recalculates TotalAmount from quantity and unit price,
// overwriting whatever the caller supplied.
func (m *Movement) ComputeTotal() {
	m.TotalAmount = types.TotalAmount(m.Quantity, m.UnitPrice)
}

// SignedQuantity returns the quantity with direction applied:
// positive for inbound, negative for outbound.
func (m *Movement) SignedQuantity() int64 {
	return m.Quantity * m.Kind.Sign()
}
