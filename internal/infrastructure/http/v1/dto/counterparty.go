package dto

import (
	"stockbook/internal/domain/catalogs/counterparty"
)

// --- Request DTOs ---

// CreateCounterpartyRequest is the request body for creating a counterparty.
type CreateCounterpartyRequest struct {
	Code          string                        `json:"code" binding:"required"`
	Name          string                        `json:"name" binding:"required"`
	Type          counterparty.CounterpartyType `json:"type" binding:"required"`
	Active        *bool                         `json:"active"`
	ContactPerson *string                       `json:"contactPerson"`
	Phone         *string                       `json:"phone"`
	Email         *string                       `json:"email"`
	Address       *string                       `json:"address"`
	TaxID         *string                       `json:"taxId"`
	Comment       *string                       `json:"comment"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCounterpartyRequest) ToEntity() *counterparty.Counterparty {
	cp := counterparty.NewCounterparty(r.Code, r.Name, r.Type)
	if r.Active != nil {
		cp.Active = *r.Active
	}
	cp.ContactPerson = r.ContactPerson
	cp.Phone = r.Phone
	cp.Email = r.Email
	cp.Address = r.Address
	cp.TaxID = r.TaxID
	cp.Comment = r.Comment
	return cp
}

// UpdateCounterpartyRequest is the request body for updating a counterparty.
// Full replace: the client sends the complete entity plus the version it read.
type UpdateCounterpartyRequest struct {
	Code          string                        `json:"code" binding:"required"`
	Name          string                        `json:"name" binding:"required"`
	Type          counterparty.CounterpartyType `json:"type" binding:"required"`
	Active        bool                          `json:"active"`
	ContactPerson *string                       `json:"contactPerson,omitempty"`
	Phone         *string                       `json:"phone,omitempty"`
	Email         *string                       `json:"email,omitempty"`
	Address       *string                       `json:"address,omitempty"`
	TaxID         *string                       `json:"taxId,omitempty"`
	Comment       *string                       `json:"comment,omitempty"`
	Version       int                           `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCounterpartyRequest) ApplyTo(cp *counterparty.Counterparty) {
	cp.Code = r.Code
	cp.Name = r.Name
	cp.Type = r.Type
	cp.Active = r.Active
	cp.ContactPerson = r.ContactPerson
	cp.Phone = r.Phone
	cp.Email = r.Email
	cp.Address = r.Address
	cp.TaxID = r.TaxID
	cp.Comment = r.Comment
	cp.Version = r.Version
}

// --- Response DTOs ---

// CounterpartyResponse is the response body for a counterparty.
type CounterpartyResponse struct {
	BaseResponse
	Code          string                        `json:"code"`
	Name          string                        `json:"name"`
	Type          counterparty.CounterpartyType `json:"type"`
	Active        bool                          `json:"active"`
	ContactPerson *string                       `json:"contactPerson,omitempty"`
	Phone         *string                       `json:"phone,omitempty"`
	Email         *string                       `json:"email,omitempty"`
	Address       *string                       `json:"address,omitempty"`
	TaxID         *string                       `json:"taxId,omitempty"`
	Comment       *string                       `json:"comment,omitempty"`
}

// FromCounterparty creates response DTO from domain entity.
func FromCounterparty(cp *counterparty.Counterparty) *CounterpartyResponse {
	return &CounterpartyResponse{
		BaseResponse:  FromBaseCatalog(cp.BaseCatalog),
		Code:          cp.Code,
		Name:          cp.Name,
		Type:          cp.Type,
		Active:        cp.Active,
		ContactPerson: cp.ContactPerson,
		Phone:         cp.Phone,
		Email:         cp.Email,
		Address:       cp.Address,
		TaxID:         cp.TaxID,
		Comment:       cp.Comment,
	}
}
