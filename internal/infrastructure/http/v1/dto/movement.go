package dto

import (
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/movements"
)

// --- Request DTOs ---

// PostMovementRequest is the request body for posting a movement.
// The direction comes from the endpoint, not the body.
type PostMovementRequest struct {
	WarehouseID    string       `json:"warehouseId" binding:"required,uuid"`
	ProductID      string       `json:"productId" binding:"required,uuid"`
	CounterpartyID *string      `json:"counterpartyId" binding:"omitempty,uuid"`
	Quantity       int64        `json:"quantity" binding:"required,gt=0"`
	UnitPrice      *types.Money `json:"unitPrice"`
	DocumentNumber string       `json:"documentNumber"`
	Operator       string       `json:"operator"`
	Note           string       `json:"note"`
	OccurredAt     *time.Time   `json:"occurredAt"`
}

// ToPostRequest converts the DTO into an engine posting request.
func (r *PostMovementRequest) ToPostRequest() (movements.PostRequest, error) {
	warehouseID, err := id.Parse(r.WarehouseID)
	if err != nil {
		return movements.PostRequest{}, apperror.NewValidation("invalid warehouseId format")
	}
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return movements.PostRequest{}, apperror.NewValidation("invalid productId format")
	}

	req := movements.PostRequest{
		WarehouseID:    warehouseID,
		ProductID:      productID,
		Quantity:       r.Quantity,
		UnitPrice:      r.UnitPrice,
		DocumentNumber: r.DocumentNumber,
		Operator:       r.Operator,
		Note:           r.Note,
	}

	if r.CounterpartyID != nil && *r.CounterpartyID != "" {
		cpID, err := id.Parse(*r.CounterpartyID)
		if err != nil {
			return movements.PostRequest{}, apperror.NewValidation("invalid counterpartyId format")
		}
		req.CounterpartyID = &cpID
	}
	if r.OccurredAt != nil {
		req.OccurredAt = *r.OccurredAt
	}

	return req, nil
}

// MovementListQuery narrows the ledger listing.
type MovementListQuery struct {
	WarehouseID    string     `form:"warehouseId" binding:"omitempty,uuid"`
	ProductID      string     `form:"productId" binding:"omitempty,uuid"`
	CounterpartyID string     `form:"counterpartyId" binding:"omitempty,uuid"`
	Kind           string     `form:"kind"`
	Number         string     `form:"number"`
	Operator       string     `form:"operator"`
	From           *time.Time `form:"from"`
	To             *time.Time `form:"to"`
	Limit          int        `form:"limit"`
	Offset         int        `form:"offset"`
}

// ToFilter converts the query DTO into a ledger filter.
func (q *MovementListQuery) ToFilter() (movements.Filter, error) {
	f := movements.Filter{
		NumberContains:   q.Number,
		OperatorContains: q.Operator,
		From:             q.From,
		To:               q.To,
		Limit:            q.Limit,
		Offset:           q.Offset,
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
	if q.CounterpartyID != "" {
		counterpartyID, err := id.Parse(q.CounterpartyID)
		if err != nil {
			return f, apperror.NewValidation("invalid counterpartyId format")
		}
		f.CounterpartyID = &counterpartyID
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

// --- Response DTOs ---

// MovementResponse is the response body for one ledger row.
type MovementResponse struct {
	ID             string       `json:"id"`
	DocumentNumber string       `json:"documentNumber"`
	Kind           entity.Kind  `json:"kind"`
	WarehouseID    string       `json:"warehouseId"`
	ProductID      string       `json:"productId"`
	CounterpartyID *string      `json:"counterpartyId,omitempty"`
	Quantity       int64        `json:"quantity"`
	UnitPrice      *types.Money `json:"unitPrice,omitempty"`
	TotalAmount    types.Money  `json:"totalAmount"`
	Operator       string       `json:"operator"`
	Note           string       `json:"note,omitempty"`
	OccurredAt     time.Time    `json:"occurredAt"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// FromMovement creates response DTO from a ledger row.
func FromMovement(m *entity.Movement) *MovementResponse {
	resp := &MovementResponse{
		ID:             m.ID.String(),
		DocumentNumber: m.DocumentNumber,
		Kind:           m.Kind,
		WarehouseID:    m.WarehouseID.String(),
		ProductID:      m.ProductID.String(),
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		TotalAmount:    m.TotalAmount,
		Operator:       m.Operator,
		Note:           m.Note,
		OccurredAt:     m.OccurredAt,
		CreatedAt:      m.CreatedAt,
	}
	if m.CounterpartyID != nil {
		s := m.CounterpartyID.String()
		resp.CounterpartyID = &s
	}
	return resp
}
