package dto

import (
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/reports"
)

// --- Movement Summary ---

// MovementSummaryQuery bounds the movement summary report.
type MovementSummaryQuery struct {
	From        *time.Time `form:"from"`
	To          *time.Time `form:"to"`
	WarehouseID string     `form:"warehouseId" binding:"omitempty,uuid"`
	ProductID   string     `form:"productId" binding:"omitempty,uuid"`
}

// ToFilter converts the query DTO into a summary filter.
func (q *MovementSummaryQuery) ToFilter() (reports.SummaryFilter, error) {
	var f reports.SummaryFilter
	if q.From != nil {
		f.From = *q.From
	}
	if q.To != nil {
		f.To = *q.To
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

// --- Stock Overview & Alerts ---

// StockOverviewQuery narrows the stock overview and the alert evaluation.
type StockOverviewQuery struct {
	WarehouseID string `form:"warehouseId" binding:"omitempty,uuid"`
	ProductID   string `form:"productId" binding:"omitempty,uuid"`
	ExcludeZero bool   `form:"excludeZero"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

// ToFilter converts the query DTO into an overview filter.
func (q *StockOverviewQuery) ToFilter() (reports.OverviewFilter, error) {
	f := reports.OverviewFilter{
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

// --- Movement Journal Export ---

// JournalExportQuery bounds the journal export.
type JournalExportQuery struct {
	From        *time.Time `form:"from"`
	To          *time.Time `form:"to"`
	WarehouseID string     `form:"warehouseId" binding:"omitempty,uuid"`
	ProductID   string     `form:"productId" binding:"omitempty,uuid"`
	Kind        string     `form:"kind"`
	Limit       int        `form:"limit"`
	Offset      int        `form:"offset"`
}

// ToFilter converts the query DTO into a journal filter.
func (q *JournalExportQuery) ToFilter() (reports.JournalFilter, error) {
	f := reports.JournalFilter{
		From:   q.From,
		To:     q.To,
		Limit:  q.Limit,
		Offset: q.Offset,
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
	if q.Kind != "" {
		kind, err := entity.ParseKind(q.Kind)
		if err != nil {
			return f, err
		}
		f.Kind = &kind
	}

	return f, nil
}
