package entity

import (
	"time"

	"stockbook/internal/core/id"
)

// StockBalance is the current stock level for one warehouse and product.
// One row per pair, created by the first inbound movement and kept in sync
// with the ledger inside the posting transaction. Quantity never drops
// below zero.
type StockBalance struct {
	// Dimensions
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`
	ProductID   id.ID `db:"product_id" json:"productId"`

	// Quantity is the current on-hand stock, always >= 0
	Quantity int64 `db:"quantity" json:"quantity"`

	// Business times of the most recent movements in each direction
	LastInboundAt  *time.Time `db:"last_inbound_at" json:"lastInboundAt,omitempty"`
	LastOutboundAt *time.Time `db:"last_outbound_at" json:"lastOutboundAt,omitempty"`

	// UpdatedAt is when the row was last written
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// CanSatisfy reports whether the balance covers an outbound of the given
// quantity. Used as a fast pre-check; the authoritative check runs under
// the row lock inside the posting transaction.
func (b *StockBalance) CanSatisfy(quantity int64) bool {
	return b.Quantity >= quantity
}
