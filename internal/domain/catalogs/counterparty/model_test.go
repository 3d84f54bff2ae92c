package counterparty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/entity"
)

func TestServesKind(t *testing.T) {
	tests := []struct {
		cpType       CounterpartyType
		wantInbound  bool
		wantOutbound bool
	}{
		{TypeSupplier, true, false},
		{TypeClient, false, true},
		{TypeBoth, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.cpType), func(t *testing.T) {
			cp := NewCounterparty("CP001", "Acme", tt.cpType)
			assert.Equal(t, tt.wantInbound, cp.ServesKind(entity.KindInbound))
			assert.Equal(t, tt.wantOutbound, cp.ServesKind(entity.KindOutbound))
		})
	}
}

func TestCounterpartyValidate(t *testing.T) {
	cp := NewCounterparty("CP001", "Acme Supplies", TypeSupplier)
	require.NoError(t, cp.Validate(context.Background()))

	cp.Type = "partner"
	err := cp.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "counterparty type")
}

func TestCounterpartyValidateEmail(t *testing.T) {
	cp := NewCounterparty("CP002", "Beta Trading", TypeClient)

	good := "sales@beta.example.com"
	cp.Email = &good
	require.NoError(t, cp.Validate(context.Background()))

	bad := "not-an-email"
	cp.Email = &bad
	err := cp.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}
