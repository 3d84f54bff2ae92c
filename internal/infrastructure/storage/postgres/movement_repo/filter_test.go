package movement_repo

import (
	"strings"
	"testing"
	"time"

	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/movements"
)

// whereClause strips everything up to and including " WHERE "; an empty
// string means the query has no WHERE at all.
func whereClause(sql string) string {
	_, after, found := strings.Cut(sql, " WHERE ")
	if !found {
		return ""
	}
	return after
}

func TestApplyFilter_SQL(t *testing.T) {
	repo := NewMovementRepo(nil)

	whID := id.New()
	prodID := id.New()
	cpID := id.New()
	kind := entity.KindOutbound
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name      string
		f         movements.Filter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "no filter",
			f:         movements.Filter{},
			wantWhere: "",
		},
		{
			name:      "warehouse and product",
			f:         movements.Filter{WarehouseID: &whID, ProductID: &prodID},
			wantWhere: "warehouse_id = $1 AND product_id = $2",
			wantArgs:  []any{whID, prodID},
		},
		{
			name:      "counterparty",
			f:         movements.Filter{CounterpartyID: &cpID},
			wantWhere: "counterparty_id = $1",
			wantArgs:  []any{cpID},
		},
		{
			name:      "kind",
			f:         movements.Filter{Kind: &kind},
			wantWhere: "kind = $1",
			wantArgs:  []any{kind},
		},
		{
			name:      "number substring",
			f:         movements.Filter{NumberContains: "RK2026"},
			wantWhere: "document_number ILIKE $1",
			wantArgs:  []any{"%RK2026%"},
		},
		{
			name:      "operator substring",
			f:         movements.Filter{OperatorContains: "petr"},
			wantWhere: "operator ILIKE $1",
			wantArgs:  []any{"%petr%"},
		},
		{
			name:      "period bounds inclusive",
			f:         movements.Filter{From: &from, To: &to},
			wantWhere: "occurred_at >= $1 AND occurred_at <= $2",
			wantArgs:  []any{from, to},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := repo.applyFilter(repo.baseSelect(), tt.f)

			sql, args, err := q.ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}

			if got := whereClause(sql); got != tt.wantWhere {
				t.Errorf("WHERE mismatch\nwant: %s\ngot:  %s", tt.wantWhere, got)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args count mismatch\nwant: %d\ngot:  %d", len(tt.wantArgs), len(args))
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("arg %d mismatch\nwant: %v\ngot:  %v", i, tt.wantArgs[i], args[i])
				}
			}
		})
	}
}

func TestBaseSelectColumnsMatchEntity(t *testing.T) {
	repo := NewMovementRepo(nil)

	sql, _, err := repo.baseSelect().ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	for _, col := range []string{"id", "document_number", "kind", "warehouse_id",
		"product_id", "counterparty_id", "quantity", "unit_price", "total_amount",
		"operator", "note", "occurred_at", "created_at"} {
		if !strings.Contains(sql, col) {
			t.Errorf("base select is missing column %s:\n%s", col, sql)
		}
	}
	if !strings.HasSuffix(sql, "FROM stock_movements") {
		t.Errorf("base select must read %s, got:\n%s", movementTable, sql)
	}
}
