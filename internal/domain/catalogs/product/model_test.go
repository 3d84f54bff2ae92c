package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/types"
)

func TestNewProductDefaults(t *testing.T) {
	p := NewProduct("P0001", "Bolt M6")
	assert.Equal(t, DefaultUnit, p.Unit)
	assert.True(t, p.Active)
	require.NoError(t, p.Validate(context.Background()))
}

func TestProductValidateThresholds(t *testing.T) {
	p := NewProduct("P0001", "Bolt M6")
	p.MinStock = 100
	p.MaxStock = 50

	err := p.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_stock cannot exceed max_stock")

	// a zero threshold disables the check, so min alone is fine
	p.MaxStock = 0
	require.NoError(t, p.Validate(context.Background()))
}

func TestProductValidateNegativePrice(t *testing.T) {
	p := NewProduct("P0002", "Nut M6")
	price := types.MustMoney("-0.10")
	p.Price = &price

	err := p.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
}

func TestAlertFlags(t *testing.T) {
	p := NewProduct("P0003", "Washer")
	assert.False(t, p.HasLowStockAlert())
	assert.False(t, p.HasOverstockAlert())

	p.MinStock = 10
	p.MaxStock = 1000
	assert.True(t, p.HasLowStockAlert())
	assert.True(t, p.HasOverstockAlert())
}
