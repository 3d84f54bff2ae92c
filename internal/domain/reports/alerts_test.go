package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/id"
)

func overviewItem(quantity, minStock, maxStock int64) OverviewItem {
	return OverviewItem{
		WarehouseID:   id.New(),
		WarehouseCode: "WH001",
		ProductID:     id.New(),
		ProductCode:   "P0001",
		ProductName:   "Bolt M6",
		Quantity:      quantity,
		MinStock:      minStock,
		MaxStock:      maxStock,
	}
}

func TestDefaultRules(t *testing.T) {
	engine, err := NewAlertEngine(DefaultRules())
	require.NoError(t, err)

	tests := []struct {
		name     string
		quantity int64
		minStock int64
		maxStock int64
		want     []string
	}{
		{name: "within thresholds", quantity: 50, minStock: 10, maxStock: 100, want: nil},
		{name: "below minimum", quantity: 3, minStock: 10, maxStock: 100, want: []string{"low_stock"}},
		{name: "at minimum is fine", quantity: 10, minStock: 10, maxStock: 100, want: nil},
		{name: "above maximum", quantity: 150, minStock: 10, maxStock: 100, want: []string{"overstock"}},
		{name: "at maximum is fine", quantity: 100, minStock: 10, maxStock: 100, want: nil},
		{name: "zero quantity below minimum", quantity: 0, minStock: 5, maxStock: 0, want: []string{"low_stock"}},
		{name: "thresholds disabled", quantity: 0, minStock: 0, maxStock: 0, want: nil},
		{name: "only max set", quantity: 7, minStock: 0, maxStock: 5, want: []string{"overstock"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts, err := engine.Evaluate(overviewItem(tt.quantity, tt.minStock, tt.maxStock))
			require.NoError(t, err)

			var names []string
			for _, a := range alerts {
				names = append(names, a.Rule)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestAlertCarriesContext(t *testing.T) {
	engine, err := NewAlertEngine(DefaultRules())
	require.NoError(t, err)

	alerts, err := engine.Evaluate(overviewItem(3, 10, 0))
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, LevelLowStock, a.Level)
	assert.Equal(t, "WH001", a.WarehouseCode)
	assert.Equal(t, "P0001", a.ProductCode)
	assert.Equal(t, int64(3), a.Quantity)
	assert.Contains(t, a.Message, "below the minimum 10")
}

func TestCustomRule(t *testing.T) {
	engine, err := NewAlertEngine([]Rule{
		{Name: "nearly_out", Level: LevelLowStock, Expr: "quantity <= 2"},
	})
	require.NoError(t, err)

	alerts, err := engine.Evaluate(overviewItem(2, 0, 0))
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "nearly_out", alerts[0].Rule)

	alerts, err = engine.Evaluate(overviewItem(3, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestRuleCompilationErrors(t *testing.T) {
	_, err := NewAlertEngine([]Rule{
		{Name: "broken", Level: LevelLowStock, Expr: "quantity <"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	_, err = NewAlertEngine([]Rule{
		{Name: "not_bool", Level: LevelLowStock, Expr: "quantity + 1"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boolean")

	_, err = NewAlertEngine([]Rule{
		{Name: "unknown_var", Level: LevelLowStock, Expr: "price > 10"},
	})
	require.Error(t, err)
}
