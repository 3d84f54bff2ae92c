package numerator

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"stockbook/internal/core/numerator"
)

type mockRow struct {
	val string
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*string); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier returns a canned max document number and records the LIKE
// pattern the scan used.
type mockQuerier struct {
	row         mockRow
	lastPattern string
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if len(args) > 0 {
		if s, ok := args[0].(string); ok {
			m.lastPattern = s
		}
	}
	return &m.row
}

var day = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func TestNextNumber_EmptyDay(t *testing.T) {
	q := &mockQuerier{row: mockRow{err: pgx.ErrNoRows}}
	cfg := numerator.DefaultConfig("RK")

	num, err := nextFromLedger(context.Background(), q, cfg, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "RK202601150001" {
		t.Errorf("expected RK202601150001, got %s", num)
	}
	if q.lastPattern != "RK20260115%" {
		t.Errorf("expected scan pattern RK20260115%%, got %s", q.lastPattern)
	}
}

func TestNextNumber_Increments(t *testing.T) {
	q := &mockQuerier{row: mockRow{val: "RK202601150007"}}
	cfg := numerator.DefaultConfig("RK")

	num, err := nextFromLedger(context.Background(), q, cfg, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "RK202601150008" {
		t.Errorf("expected RK202601150008, got %s", num)
	}
}

func TestNextNumber_OutboundPrefix(t *testing.T) {
	q := &mockQuerier{row: mockRow{err: pgx.ErrNoRows}}
	cfg := numerator.DefaultConfig("CK")

	num, err := nextFromLedger(context.Background(), q, cfg, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "CK202601150001" {
		t.Errorf("expected CK202601150001, got %s", num)
	}
	if q.lastPattern != "CK20260115%" {
		t.Errorf("expected scan pattern CK20260115%%, got %s", q.lastPattern)
	}
}

func TestNextNumber_MalformedStoredNumber(t *testing.T) {
	q := &mockQuerier{row: mockRow{val: "RK2026011500AB"}}
	cfg := numerator.DefaultConfig("RK")

	if _, err := nextFromLedger(context.Background(), q, cfg, day); err == nil {
		t.Fatal("expected error for malformed stored number")
	}
}
