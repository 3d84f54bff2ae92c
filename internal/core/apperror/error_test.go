package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsufficientStockCarriesQuantities(t *testing.T) {
	err := NewInsufficientStock("wh-1", "prod-1", 3, 10)

	assert.Equal(t, CodeInsufficientStock, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, int64(3), err.Details["current"])
	assert.Equal(t, int64(10), err.Details["requested"])
	assert.Contains(t, err.Message, "3 on hand")
	assert.Contains(t, err.Message, "10 requested")
}

func TestValidationMessagesJoined(t *testing.T) {
	err := NewValidationMessages([]string{"quantity must be positive", "warehouse_id is required"})

	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, "quantity must be positive; warehouse_id is required", err.Message)

	msgs, ok := err.Details["messages"].([]string)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestWithDetailAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStorageUnavailable(cause).WithDetail("op", "apply_delta")

	assert.Equal(t, "apply_delta", err.Details["op"])
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by: connection refused")
}

func TestAsAppErrorThroughWrapping(t *testing.T) {
	inner := NewNoSuchBalance("wh-1", "prod-2")
	wrapped := fmt.Errorf("posting movement: %w", inner)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNoSuchBalance, appErr.Code)
	assert.True(t, IsNoSuchBalance(wrapped))
	assert.False(t, IsInsufficientStock(wrapped))
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("bad input"), http.StatusBadRequest},
		{"invalid reference", NewInvalidReference("warehouse", "w1", "inactive"), http.StatusUnprocessableEntity},
		{"number conflict", NewNumberConflict("RK202601150001"), http.StatusConflict},
		{"storage", NewStorageUnavailable(errors.New("down")), http.StatusServiceUnavailable},
		{"not found", NewNotFound("product", "p1"), http.StatusNotFound},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"nil-ish wrapped", fmt.Errorf("ctx: %w", NewUnauthorized("no token")), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.err))
		})
	}
}

func TestNumberConflictPredicate(t *testing.T) {
	err := NewNumberConflict("CK202601150007")
	assert.True(t, IsNumberConflict(err))
	assert.Equal(t, "CK202601150007", err.Details["document_number"])
}
