package dto

import (
	"stockbook/internal/domain/catalogs/warehouse"
)

// --- Request DTOs ---

// CreateWarehouseRequest is the request body for creating a warehouse.
type CreateWarehouseRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Active      *bool   `json:"active"`
	Address     *string `json:"address"`
	Manager     *string `json:"manager"`
	Phone       *string `json:"phone"`
	Capacity    *int64  `json:"capacity"`
	Description *string `json:"description"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateWarehouseRequest) ToEntity() *warehouse.Warehouse {
	wh := warehouse.NewWarehouse(r.Code, r.Name)
	if r.Active != nil {
		wh.Active = *r.Active
	}
	wh.Address = r.Address
	wh.Manager = r.Manager
	wh.Phone = r.Phone
	wh.Capacity = r.Capacity
	wh.Description = r.Description
	return wh
}

// UpdateWarehouseRequest is the request body for updating a warehouse.
// Full replace: the client sends the complete entity plus the version it read.
type UpdateWarehouseRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Active      bool    `json:"active"`
	Address     *string `json:"address,omitempty"`
	Manager     *string `json:"manager,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Capacity    *int64  `json:"capacity,omitempty"`
	Description *string `json:"description,omitempty"`
	Version     int     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateWarehouseRequest) ApplyTo(wh *warehouse.Warehouse) {
	wh.Code = r.Code
	wh.Name = r.Name
	wh.Active = r.Active
	wh.Address = r.Address
	wh.Manager = r.Manager
	wh.Phone = r.Phone
	wh.Capacity = r.Capacity
	wh.Description = r.Description
	wh.Version = r.Version
}

// --- Response DTOs ---

// WarehouseResponse is the response body for a warehouse.
type WarehouseResponse struct {
	BaseResponse
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Active      bool    `json:"active"`
	Address     *string `json:"address,omitempty"`
	Manager     *string `json:"manager,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Capacity    *int64  `json:"capacity,omitempty"`
	Description *string `json:"description,omitempty"`
}

// FromWarehouse creates response DTO from domain entity.
func FromWarehouse(wh *warehouse.Warehouse) *WarehouseResponse {
	return &WarehouseResponse{
		BaseResponse: FromBaseCatalog(wh.BaseCatalog),
		Code:         wh.Code,
		Name:         wh.Name,
		Active:       wh.Active,
		Address:      wh.Address,
		Manager:      wh.Manager,
		Phone:        wh.Phone,
		Capacity:     wh.Capacity,
		Description:  wh.Description,
	}
}
