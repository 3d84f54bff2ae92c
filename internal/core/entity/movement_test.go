package entity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
)

func TestKindNumberPrefix(t *testing.T) {
	assert.Equal(t, "RK", KindInbound.NumberPrefix())
	assert.Equal(t, "CK", KindOutbound.NumberPrefix())
}

func TestKindSign(t *testing.T) {
	assert.Equal(t, int64(1), KindInbound.Sign())
	assert.Equal(t, int64(-1), KindOutbound.Sign())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("inbound")
	require.NoError(t, err)
	assert.Equal(t, KindInbound, k)

	k, err = ParseKind("outbound")
	require.NoError(t, err)
	assert.Equal(t, KindOutbound, k)

	_, err = ParseKind("transfer")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func validMovement() Movement {
	m := NewMovement(KindInbound, id.New(), id.New(), 10, time.Now().UTC().Add(-time.Hour))
	m.Operator = "petrov"
	return m
}

func TestMovementValidateOK(t *testing.T) {
	m := validMovement()
	require.NoError(t, m.Validate(context.Background()))
}

func TestMovementValidateCollectsEveryProblem(t *testing.T) {
	m := Movement{
		Kind:       Kind("sideways"),
		Quantity:   -5,
		OccurredAt: time.Time{},
	}

	err := m.Validate(context.Background())
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	msgs, ok := appErr.Details["messages"].([]string)
	require.True(t, ok)
	// kind, warehouse, product, quantity, operator, occurred_at
	assert.Len(t, msgs, 6)
}

func TestMovementValidateRejectsFutureDate(t *testing.T) {
	m := validMovement()
	m.OccurredAt = time.Now().UTC().Add(2 * time.Hour)

	err := m.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "future")
}

func TestMovementValidateRejectsNegativePrice(t *testing.T) {
	m := validMovement()
	price := types.MustMoney("-1.50")
	m.UnitPrice = &price

	err := m.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit_price")
}

func TestMovementValidateRejectsZeroQuantity(t *testing.T) {
	m := validMovement()
	m.Quantity = 0

	err := m.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity")
}

func TestComputeTotal(t *testing.T) {
	m := validMovement()
	m.Quantity = 7
	price := types.MustMoney("12.50")
	m.UnitPrice = &price

	m.ComputeTotal()
	assert.True(t, m.TotalAmount.Equal(types.MustMoney("87.50")),
		"got %s", m.TotalAmount)
}

func TestComputeTotalWithoutPrice(t *testing.T) {
	m := validMovement()
	m.UnitPrice = nil
	m.TotalAmount = types.MustMoney("999") // stale caller value must be overwritten

	m.ComputeTotal()
	assert.True(t, m.TotalAmount.IsZero())
}

func TestSignedQuantity(t *testing.T) {
	in := validMovement()
	in.Quantity = 25
	assert.Equal(t, int64(25), in.SignedQuantity())

	out := validMovement()
	out.Kind = KindOutbound
	out.Quantity = 25
	assert.Equal(t, int64(-25), out.SignedQuantity())
}

func TestStockBalanceCanSatisfy(t *testing.T) {
	b := StockBalance{Quantity: 10}
	assert.True(t, b.CanSatisfy(10))
	assert.True(t, b.CanSatisfy(1))
	assert.False(t, b.CanSatisfy(11))
}
