package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalAmount(t *testing.T) {
	price := MustMoney("5.00")
	total := TotalAmount(100, &price)
	assert.True(t, total.Equal(MustMoney("500.00")), "got %s", total)

	fractional := MustMoney("0.333")
	total = TotalAmount(3, &fractional)
	assert.True(t, total.Equal(MustMoney("1.00")), "got %s", total)

	total = TotalAmount(42, nil)
	assert.True(t, total.IsZero())
}

func TestTotalAmountRounding(t *testing.T) {
	price := MustMoney("19.995")
	total := TotalAmount(1, &price)
	// Half-away-from-zero rounding at two fractional digits.
	assert.Equal(t, "20", total.String())
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := MustMoney("1234.56")
	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var back Money
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, m.Equal(back))
}
