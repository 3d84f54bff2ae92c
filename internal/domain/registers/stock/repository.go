// Package stock provides the stock balance register: the derived store that
// keeps one current quantity per warehouse and product.
package stock

import (
	"context"
	"time"

	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
)

// Delta is one signed adjustment to a balance row. Quantity is positive for
// inbound movements and negative for outbound. OccurredAt is the business
// time stamped into last_inbound_at or last_outbound_at.
type Delta struct {
	WarehouseID id.ID
	ProductID   id.ID
	Quantity    int64
	OccurredAt  time.Time
}

// Inbound reports whether the delta adds stock.
func (d Delta) Inbound() bool {
	return d.Quantity > 0
}

// BalanceFilter narrows balance listings.
type BalanceFilter struct {
	WarehouseID *id.ID
	ProductID   *id.ID

	// ExcludeZero drops rows whose quantity is 0
	ExcludeZero bool

	Limit  int
	Offset int
}

// Repository defines operations on the balance store.
type Repository interface {
	// ApplyDelta adjusts one balance row and must be called inside the
	// posting transaction. A missing row is created when the delta is
	// positive; a missing row with a negative delta fails with
	// NO_SUCH_BALANCE; a result below zero fails with INSUFFICIENT_STOCK.
	// Existing rows are locked (SELECT ... FOR UPDATE) before the check,
	// so the quantity can never be observed negative.
	ApplyDelta(ctx context.Context, d Delta) error

	// Get returns the balance row for the pair, not-found when absent.
	Get(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error)

	// List returns balance rows with filtering and pagination.
	List(ctx context.Context, f BalanceFilter) (domain.ListResult[entity.StockBalance], error)

	// WarehouseHasStock reports whether any row of the warehouse has quantity > 0.
	WarehouseHasStock(ctx context.Context, warehouseID id.ID) (bool, error)

	// ProductHasStock reports whether any row of the product has quantity > 0.
	ProductHasStock(ctx context.Context, productID id.ID) (bool, error)
}
