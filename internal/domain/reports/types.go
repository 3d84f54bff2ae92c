// Package reports provides read-side reporting: movement summaries, the
// stock overview, threshold alerts and journal exports.
package reports

import (
	"time"

	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

// --- Movement Summary ---

// SummaryFilter bounds the movement summary report.
type SummaryFilter struct {
	// Period, inclusive. To defaults to now, From to 30 days before To.
	From time.Time
	To   time.Time

	// Optional dimension filters
	WarehouseID *id.ID
	ProductID   *id.ID
}

// KindTotals aggregates one movement direction over the period.
type KindTotals struct {
	Count    int64       `json:"count"`
	Quantity int64       `json:"quantity"`
	Amount   types.Money `json:"amount"`
}

// Summary is the movement summary report: per-direction totals plus the
// net quantity change over the period.
type Summary struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Inbound  KindTotals `json:"inbound"`
	Outbound KindTotals `json:"outbound"`

	// NetQuantity is inbound minus outbound quantity
	NetQuantity int64 `json:"netQuantity"`
}

// --- Stock Overview ---

// OverviewFilter narrows the stock overview.
type OverviewFilter struct {
	WarehouseID *id.ID
	ProductID   *id.ID

	// ExcludeZero drops rows with zero quantity
	ExcludeZero bool

	Limit  int
	Offset int
}

// OverviewItem is one stock overview row: a balance joined with the
// catalog fields the screen and the alert rules need.
type OverviewItem struct {
	WarehouseID   id.ID  `db:"warehouse_id" json:"warehouseId"`
	WarehouseCode string `db:"warehouse_code" json:"warehouseCode"`
	WarehouseName string `db:"warehouse_name" json:"warehouseName"`

	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductCode string `db:"product_code" json:"productCode"`
	ProductName string `db:"product_name" json:"productName"`
	Unit        string `db:"unit" json:"unit"`

	Quantity int64 `db:"quantity" json:"quantity"`
	MinStock int64 `db:"min_stock" json:"minStock"`
	MaxStock int64 `db:"max_stock" json:"maxStock"`

	LastInboundAt  *time.Time `db:"last_inbound_at" json:"lastInboundAt,omitempty"`
	LastOutboundAt *time.Time `db:"last_outbound_at" json:"lastOutboundAt,omitempty"`
}

// Overview is the stock overview result.
type Overview struct {
	Items      []OverviewItem `json:"items"`
	TotalCount int64          `json:"totalCount"`

	// TotalQuantity sums the quantities of the returned page
	TotalQuantity int64 `json:"totalQuantity"`
}

// --- Alerts ---

// AlertLevel classifies a threshold alert.
type AlertLevel string

const (
	LevelLowStock  AlertLevel = "low_stock"
	LevelOverstock AlertLevel = "overstock"
)

// Alert is one triggered threshold rule for a warehouse and product.
type Alert struct {
	Rule  string     `json:"rule"`
	Level AlertLevel `json:"level"`

	WarehouseID   id.ID  `json:"warehouseId"`
	WarehouseCode string `json:"warehouseCode"`
	ProductID     id.ID  `json:"productId"`
	ProductCode   string `json:"productCode"`
	ProductName   string `json:"productName"`

	Quantity int64  `json:"quantity"`
	MinStock int64  `json:"minStock"`
	MaxStock int64  `json:"maxStock"`
	Message  string `json:"message"`
}

// --- Movement Journal ---

// JournalFilter bounds the journal listing and export.
type JournalFilter struct {
	From *time.Time
	To   *time.Time

	WarehouseID *id.ID
	ProductID   *id.ID
	Kind        *entity.Kind

	Limit  int
	Offset int
}

// JournalRow is one movement with its reference names resolved, ready for
// display or export.
type JournalRow struct {
	DocumentNumber string      `db:"document_number" json:"documentNumber"`
	Kind           entity.Kind `db:"kind" json:"kind"`
	OccurredAt     time.Time   `db:"occurred_at" json:"occurredAt"`

	WarehouseCode string `db:"warehouse_code" json:"warehouseCode"`
	WarehouseName string `db:"warehouse_name" json:"warehouseName"`
	ProductCode   string `db:"product_code" json:"productCode"`
	ProductName   string `db:"product_name" json:"productName"`
	Unit          string `db:"unit" json:"unit"`

	Quantity    int64        `db:"quantity" json:"quantity"`
	UnitPrice   *types.Money `db:"unit_price" json:"unitPrice,omitempty"`
	TotalAmount types.Money  `db:"total_amount" json:"totalAmount"`

	CounterpartyName *string `db:"counterparty_name" json:"counterpartyName,omitempty"`
	Operator         string  `db:"operator" json:"operator"`
	Note             string  `db:"note" json:"note,omitempty"`
}
