package stock

import (
	"context"
	"fmt"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
)

// Service provides read and adjustment operations on the balance store.
// Transactions are managed by the caller: the movement engine calls
// ApplyDelta inside its posting transaction.
type Service struct {
	repo Repository
}

// NewService creates a new stock register service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ApplyDelta forwards a balance adjustment to the store. Must run inside
// the caller's transaction.
func (s *Service) ApplyDelta(ctx context.Context, d Delta) error {
	if d.Quantity == 0 {
		return apperror.NewValidation("delta quantity must not be zero")
	}
	return s.repo.ApplyDelta(ctx, d)
}

// Get returns the balance for one warehouse and product.
func (s *Service) Get(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error) {
	return s.repo.Get(ctx, warehouseID, productID)
}

// List returns balances for the stock overview.
func (s *Service) List(ctx context.Context, f BalanceFilter) (domain.ListResult[entity.StockBalance], error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	return s.repo.List(ctx, f)
}

// CheckAvailability is the fast pre-check for outbound posting: it reads
// the balance without locking and fails early when stock is clearly
// missing. The authoritative check still happens under the row lock in
// ApplyDelta, so a pass here is advisory only.
func (s *Service) CheckAvailability(ctx context.Context, warehouseID, productID id.ID, required int64) error {
	if required <= 0 {
		return apperror.NewValidation("required quantity must be positive")
	}

	balance, err := s.repo.Get(ctx, warehouseID, productID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNoSuchBalance(warehouseID.String(), productID.String())
		}
		return fmt.Errorf("get balance: %w", err)
	}

	if !balance.CanSatisfy(required) {
		return apperror.NewInsufficientStock(
			warehouseID.String(), productID.String(),
			balance.Quantity, required,
		)
	}
	return nil
}

// WarehouseHasStock implements the warehouse catalog's deletion guard.
func (s *Service) WarehouseHasStock(ctx context.Context, warehouseID id.ID) (bool, error) {
	return s.repo.WarehouseHasStock(ctx, warehouseID)
}

// ProductHasStock implements the product catalog's deletion guard.
func (s *Service) ProductHasStock(ctx context.Context, productID id.ID) (bool, error) {
	return s.repo.ProductHasStock(ctx, productID)
}
