package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
)

// fakeRepo is a map-backed Repository for service tests.
type fakeRepo struct {
	balances map[string]entity.StockBalance
	applied  []Delta
}

func key(warehouseID, productID id.ID) string {
	return warehouseID.String() + "/" + productID.String()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{balances: make(map[string]entity.StockBalance)}
}

func (f *fakeRepo) ApplyDelta(ctx context.Context, d Delta) error {
	f.applied = append(f.applied, d)
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error) {
	b, ok := f.balances[key(warehouseID, productID)]
	if !ok {
		return entity.StockBalance{}, apperror.NewNotFound("stock balance", key(warehouseID, productID))
	}
	return b, nil
}

func (f *fakeRepo) List(ctx context.Context, flt BalanceFilter) (domain.ListResult[entity.StockBalance], error) {
	var items []entity.StockBalance
	for _, b := range f.balances {
		items = append(items, b)
	}
	return domain.ListResult[entity.StockBalance]{Items: items, TotalCount: int64(len(items))}, nil
}

func (f *fakeRepo) WarehouseHasStock(ctx context.Context, warehouseID id.ID) (bool, error) {
	for _, b := range f.balances {
		if b.WarehouseID == warehouseID && b.Quantity > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) ProductHasStock(ctx context.Context, productID id.ID) (bool, error) {
	for _, b := range f.balances {
		if b.ProductID == productID && b.Quantity > 0 {
			return true, nil
		}
	}
	return false, nil
}

var _ Repository = (*fakeRepo)(nil)

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	whID, prodID := id.New(), id.New()
	repo.balances[key(whID, prodID)] = entity.StockBalance{
		WarehouseID: whID,
		ProductID:   prodID,
		Quantity:    10,
	}

	t.Run("enough stock", func(t *testing.T) {
		require.NoError(t, svc.CheckAvailability(ctx, whID, prodID, 10))
	})

	t.Run("insufficient", func(t *testing.T) {
		err := svc.CheckAvailability(ctx, whID, prodID, 11)
		require.Error(t, err)
		assert.True(t, apperror.IsInsufficientStock(err))

		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, int64(10), appErr.Details["current"])
		assert.Equal(t, int64(11), appErr.Details["requested"])
	})

	t.Run("no balance row", func(t *testing.T) {
		err := svc.CheckAvailability(ctx, whID, id.New(), 1)
		require.Error(t, err)
		assert.True(t, apperror.IsNoSuchBalance(err))
	})

	t.Run("non-positive required", func(t *testing.T) {
		err := svc.CheckAvailability(ctx, whID, prodID, 0)
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
	})
}

func TestApplyDeltaRejectsZero(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	err := svc.ApplyDelta(context.Background(), Delta{Quantity: 0})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, repo.applied)
}

func TestHasStockGuards(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo)

	whID, prodID := id.New(), id.New()
	repo.balances[key(whID, prodID)] = entity.StockBalance{
		WarehouseID: whID,
		ProductID:   prodID,
		Quantity:    5,
	}

	has, err := svc.WarehouseHasStock(ctx, whID)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = svc.ProductHasStock(ctx, id.New())
	require.NoError(t, err)
	assert.False(t, has)
}
