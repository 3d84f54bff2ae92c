// Package movements provides the stock movement engine: the single write
// path of the ledger. Every inbound and outbound operation goes through
// Engine.PostInbound or Engine.PostOutbound.
package movements

import (
	"time"

	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// PostRequest carries the caller's input for one movement posting.
// The direction comes from the engine method, not the request.
type PostRequest struct {
	WarehouseID id.ID
	ProductID   id.ID

	// CounterpartyID is the supplier (inbound) or client (outbound), optional
	CounterpartyID *id.ID

	// Quantity in product units, must be positive
	Quantity int64

	// UnitPrice is optional; the total is always recomputed server-side
	UnitPrice *types.Money

	// DocumentNumber, when set, is used instead of a generated number.
	// It must follow the kind's numbering pattern and be unique.
	DocumentNumber string

	// Operator defaults to the authenticated user when empty
	Operator string

	// Note is an optional free-form comment
	Note string

	// OccurredAt defaults to the current time when zero
	OccurredAt time.Time
}

// Filter narrows ledger queries.
type Filter struct {
	WarehouseID    *id.ID
	ProductID      *id.ID
	CounterpartyID *id.ID
	Kind           *entity.Kind

	// NumberContains matches a document number substring
	NumberContains string

	// OperatorContains matches an operator substring, case-insensitive
	OperatorContains string

	// From and To bound occurred_at (inclusive)
	From *time.Time
	To   *time.Time

	Limit  int
	Offset int
}
