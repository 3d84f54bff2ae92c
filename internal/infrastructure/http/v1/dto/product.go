package dto

import (
	"stockbook/internal/core/types"
	"stockbook/internal/domain/catalogs/product"
)

// --- Request DTOs ---

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Code          string       `json:"code" binding:"required"`
	Name          string       `json:"name" binding:"required"`
	Active        *bool        `json:"active"`
	Category      *string      `json:"category"`
	Unit          string       `json:"unit"`
	Specification *string      `json:"specification"`
	Price         *types.Money `json:"price"`
	MinStock      int64        `json:"minStock" binding:"min=0"`
	MaxStock      int64        `json:"maxStock" binding:"min=0"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Code, r.Name)
	if r.Active != nil {
		p.Active = *r.Active
	}
	if r.Unit != "" {
		p.Unit = r.Unit
	}
	p.Category = r.Category
	p.Specification = r.Specification
	p.Price = r.Price
	p.MinStock = r.MinStock
	p.MaxStock = r.MaxStock
	return p
}

// UpdateProductRequest is the request body for updating a product.
// Full replace: the client sends the complete entity plus the version it read.
type UpdateProductRequest struct {
	Code          string       `json:"code" binding:"required"`
	Name          string       `json:"name" binding:"required"`
	Active        bool         `json:"active"`
	Category      *string      `json:"category,omitempty"`
	Unit          string       `json:"unit" binding:"required"`
	Specification *string      `json:"specification,omitempty"`
	Price         *types.Money `json:"price,omitempty"`
	MinStock      int64        `json:"minStock" binding:"min=0"`
	MaxStock      int64        `json:"maxStock" binding:"min=0"`
	Version       int          `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Code = r.Code
	p.Name = r.Name
	p.Active = r.Active
	p.Category = r.Category
	p.Unit = r.Unit
	p.Specification = r.Specification
	p.Price = r.Price
	p.MinStock = r.MinStock
	p.MaxStock = r.MaxStock
	p.Version = r.Version
}

// --- Response DTOs ---

// ProductResponse is the response body for a product.
type ProductResponse struct {
	BaseResponse
	Code          string       `json:"code"`
	Name          string       `json:"name"`
	Active        bool         `json:"active"`
	Category      *string      `json:"category,omitempty"`
	Unit          string       `json:"unit"`
	Specification *string      `json:"specification,omitempty"`
	Price         *types.Money `json:"price,omitempty"`
	MinStock      int64        `json:"minStock"`
	MaxStock      int64        `json:"maxStock"`
}

// FromProduct creates response DTO from domain entity.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		BaseResponse:  FromBaseCatalog(p.BaseCatalog),
		Code:          p.Code,
		Name:          p.Name,
		Active:        p.Active,
		Category:      p.Category,
		Unit:          p.Unit,
		Specification: p.Specification,
		Price:         p.Price,
		MinStock:      p.MinStock,
		MaxStock:      p.MaxStock,
	}
}
