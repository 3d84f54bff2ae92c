package warehouse

import (
	"context"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/tx"
	"stockbook/internal/domain"
)

// StockChecker reports whether a warehouse still holds any stock.
// Implemented by the stock register service.
type StockChecker interface {
	WarehouseHasStock(ctx context.Context, warehouseID id.ID) (bool, error)
}

// Service provides business logic for the Warehouse catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Warehouse]
	repo  Repository
	stock StockChecker
}

// NewService creates a new Warehouse service. stock may be nil, in which
// case warehouses can be deleted without a stock check (used in tests).
func NewService(repo Repository, txManager tx.Manager, stock StockChecker) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Warehouse]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "warehouse",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		stock:          stock,
	}

	base.Hooks().OnBeforeDelete(svc.refuseDeleteWithStock)

	return svc
}

// refuseDeleteWithStock blocks soft deletion of a warehouse that still
// holds stock. The balances would become unreachable otherwise.
func (s *Service) refuseDeleteWithStock(ctx context.Context, wh *Warehouse) error {
	if s.stock == nil {
		return nil
	}
	has, err := s.stock.WarehouseHasStock(ctx, wh.ID)
	if err != nil {
		return err
	}
	if has {
		return apperror.NewConflict("warehouse still holds stock and cannot be deleted").
			WithDetail("warehouse_id", wh.ID.String())
	}
	return nil
}

// CheckUsable verifies the warehouse exists and may be referenced by a new
// movement. Satisfies the movement engine's reference check.
func (s *Service) CheckUsable(ctx context.Context, warehouseID id.ID) error {
	wh, err := s.repo.GetByID(ctx, warehouseID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewInvalidReference("warehouse", warehouseID.String(), "does not exist")
		}
		return err
	}
	if !wh.IsUsable() {
		return apperror.NewInvalidReference("warehouse", warehouseID.String(), "is not active")
	}
	return nil
}
