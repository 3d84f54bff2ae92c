package product

import (
	"context"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/tx"
	"stockbook/internal/domain"
)

// StockChecker reports whether a product still has stock in any warehouse.
// Implemented by the stock register service.
type StockChecker interface {
	ProductHasStock(ctx context.Context, productID id.ID) (bool, error)
}

// Service provides business logic for the Product catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Product]
	repo  Repository
	stock StockChecker
}

// NewService creates a new Product service. stock may be nil, in which
// case products can be deleted without a stock check (used in tests).
func NewService(repo Repository, txManager tx.Manager, stock StockChecker) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		stock:          stock,
	}

	base.Hooks().OnBeforeCreate(svc.applyDefaults)
	base.Hooks().OnBeforeUpdate(svc.applyDefaults)
	base.Hooks().OnBeforeDelete(svc.refuseDeleteWithStock)

	return svc
}

// applyDefaults fills the unit of measure when a caller leaves it empty.
func (s *Service) applyDefaults(ctx context.Context, p *Product) error {
	if p.Unit == "" {
		p.Unit = DefaultUnit
	}
	return nil
}

// refuseDeleteWithStock blocks soft deletion of a product that still has
// stock in some warehouse.
func (s *Service) refuseDeleteWithStock(ctx context.Context, p *Product) error {
	if s.stock == nil {
		return nil
	}
	has, err := s.stock.ProductHasStock(ctx, p.ID)
	if err != nil {
		return err
	}
	if has {
		return apperror.NewConflict("product still has stock and cannot be deleted").
			WithDetail("product_id", p.ID.String())
	}
	return nil
}

// CheckUsable verifies the product exists and may be referenced by a new
// movement. Satisfies the movement engine's reference check.
func (s *Service) CheckUsable(ctx context.Context, productID id.ID) error {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewInvalidReference("product", productID.String(), "does not exist")
		}
		return err
	}
	if !p.IsUsable() {
		return apperror.NewInvalidReference("product", productID.String(), "is not active")
	}
	return nil
}
