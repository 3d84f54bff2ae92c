package dto

import (
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/registers/stock"
)

// --- Request DTOs ---

// BalanceListQuery narrows the balance listing.
type BalanceListQuery struct {
	WarehouseID string `form:"warehouseId" binding:"omitempty,uuid"`
	ProductID   string `form:"productId" binding:"omitempty,uuid"`
	ExcludeZero bool   `form:"excludeZero"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

// ToFilter converts the query DTO into a balance filter.
func (q *BalanceListQuery) ToFilter() (stock.BalanceFilter, error) {
	f := stock.BalanceFilter{
		ExcludeZero: q.ExcludeZero,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}

	if q.WarehouseID != "" {
		warehouseID, err := id.Parse(q.WarehouseID)
		if err != nil {
			return f, apperror.NewValidation("invalid warehouseId format")
		}
		f.WarehouseID = &warehouseID
	}
	if q.ProductID != "" {
		productID, err := id.Parse(q.ProductID)
		if err != nil {
			return f, apperror.NewValidation("invalid productId format")
		}
		f.ProductID = &productID
	}

	return f, nil
}

// --- Response DTOs ---

// StockBalanceResponse represents one balance row in API responses.
type StockBalanceResponse struct {
	WarehouseID    string     `json:"warehouseId"`
	ProductID      string     `json:"productId"`
	Quantity       int64      `json:"quantity"`
	LastInboundAt  *time.Time `json:"lastInboundAt,omitempty"`
	LastOutboundAt *time.Time `json:"lastOutboundAt,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// FromStockBalance converts entity to response DTO.
func FromStockBalance(b entity.StockBalance) StockBalanceResponse {
	return StockBalanceResponse{
		WarehouseID:    b.WarehouseID.String(),
		ProductID:      b.ProductID.String(),
		Quantity:       b.Quantity,
		LastInboundAt:  b.LastInboundAt,
		LastOutboundAt: b.LastOutboundAt,
		UpdatedAt:      b.UpdatedAt,
	}
}
