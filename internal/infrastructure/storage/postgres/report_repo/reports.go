// Package report_repo provides the PostgreSQL implementation of the report
// queries. Reports read the ledger and the balance register joined with
// catalog names; they never write.
package report_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"stockbook/internal/domain/reports"
	"stockbook/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txManager: txManager}
}

// GetSummary aggregates the ledger per direction over the period.
func (r *ReportRepo) GetSummary(ctx context.Context, f reports.SummaryFilter) (*reports.Summary, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE kind = 'inbound') as inbound_count,
			COALESCE(SUM(quantity) FILTER (WHERE kind = 'inbound'), 0)::bigint as inbound_quantity,
			COALESCE(SUM(total_amount) FILTER (WHERE kind = 'inbound'), 0) as inbound_amount,
			COUNT(*) FILTER (WHERE kind = 'outbound') as outbound_count,
			COALESCE(SUM(quantity) FILTER (WHERE kind = 'outbound'), 0)::bigint as outbound_quantity,
			COALESCE(SUM(total_amount) FILTER (WHERE kind = 'outbound'), 0) as outbound_amount
		FROM stock_movements
		WHERE occurred_at >= $1 AND occurred_at <= $2
	`
	args := []any{f.From, f.To}
	argIndex := 3

	if f.WarehouseID != nil {
		query += fmt.Sprintf(" AND warehouse_id = $%d", argIndex)
		args = append(args, *f.WarehouseID)
		argIndex++
	}
	if f.ProductID != nil {
		query += fmt.Sprintf(" AND product_id = $%d", argIndex)
		args = append(args, *f.ProductID)
	}

	summary := &reports.Summary{From: f.From, To: f.To}
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, query, args...).Scan(
		&summary.Inbound.Count,
		&summary.Inbound.Quantity,
		&summary.Inbound.Amount,
		&summary.Outbound.Count,
		&summary.Outbound.Quantity,
		&summary.Outbound.Amount,
	)
	if err != nil {
		return nil, fmt.Errorf("movement summary: %w", err)
	}

	summary.NetQuantity = summary.Inbound.Quantity - summary.Outbound.Quantity
	return summary, nil
}

// GetOverview returns balance rows joined with the catalog fields the
// overview screen and the alert rules need. The count and the page run in
// one read-only transaction so they see the same snapshot.
func (r *ReportRepo) GetOverview(ctx context.Context, f reports.OverviewFilter) (*reports.Overview, error) {
	conditions := " WHERE true"
	var args []any
	argIndex := 1

	if f.WarehouseID != nil {
		conditions += fmt.Sprintf(" AND b.warehouse_id = $%d", argIndex)
		args = append(args, *f.WarehouseID)
		argIndex++
	}
	if f.ProductID != nil {
		conditions += fmt.Sprintf(" AND b.product_id = $%d", argIndex)
		args = append(args, *f.ProductID)
		argIndex++
	}
	if f.ExcludeZero {
		conditions += " AND b.quantity > 0"
	}

	countQuery := "SELECT COUNT(*) FROM stock_balances b" + conditions

	query := `
		SELECT
			b.warehouse_id,
			w.code as warehouse_code,
			w.name as warehouse_name,
			b.product_id,
			p.code as product_code,
			p.name as product_name,
			p.unit,
			b.quantity,
			p.min_stock,
			p.max_stock,
			b.last_inbound_at,
			b.last_outbound_at
		FROM stock_balances b
		JOIN warehouses w ON b.warehouse_id = w.id
		JOIN products p ON b.product_id = p.id
	` + conditions + `
		ORDER BY w.name, p.name
	`

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, f.Limit)
		argIndex++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, f.Offset)
	}

	overview := &reports.Overview{Items: []reports.OverviewItem{}}
	err := r.txManager.RunInReadOnlyTransaction(ctx, func(ctx context.Context) error {
		querier := r.txManager.GetQuerier(ctx)
		if err := querier.QueryRow(ctx, countQuery, args...).Scan(&overview.TotalCount); err != nil {
			return fmt.Errorf("count overview rows: %w", err)
		}
		if err := pgxscan.Select(ctx, querier, &overview.Items, query, args...); err != nil {
			return fmt.Errorf("stock overview: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, item := range overview.Items {
		overview.TotalQuantity += item.Quantity
	}
	return overview, nil
}

// GetJournal returns movements with their reference names resolved, newest
// first. The counterparty join is optional so internal movements keep a
// NULL name.
func (r *ReportRepo) GetJournal(ctx context.Context, f reports.JournalFilter) ([]reports.JournalRow, error) {
	query := `
		SELECT
			m.document_number,
			m.kind,
			m.occurred_at,
			w.code as warehouse_code,
			w.name as warehouse_name,
			p.code as product_code,
			p.name as product_name,
			p.unit,
			m.quantity,
			m.unit_price,
			m.total_amount,
			c.name as counterparty_name,
			m.operator,
			m.note
		FROM stock_movements m
		JOIN warehouses w ON m.warehouse_id = w.id
		JOIN products p ON m.product_id = p.id
		LEFT JOIN counterparties c ON m.counterparty_id = c.id
		WHERE true
	`
	var args []any
	argIndex := 1

	if f.From != nil {
		query += fmt.Sprintf(" AND m.occurred_at >= $%d", argIndex)
		args = append(args, *f.From)
		argIndex++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND m.occurred_at <= $%d", argIndex)
		args = append(args, *f.To)
		argIndex++
	}
	if f.WarehouseID != nil {
		query += fmt.Sprintf(" AND m.warehouse_id = $%d", argIndex)
		args = append(args, *f.WarehouseID)
		argIndex++
	}
	if f.ProductID != nil {
		query += fmt.Sprintf(" AND m.product_id = $%d", argIndex)
		args = append(args, *f.ProductID)
		argIndex++
	}
	if f.Kind != nil {
		query += fmt.Sprintf(" AND m.kind = $%d", argIndex)
		args = append(args, *f.Kind)
		argIndex++
	}

	query += " ORDER BY m.occurred_at DESC, m.document_number DESC"

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, f.Limit)
		argIndex++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, f.Offset)
	}

	rows := []reports.JournalRow{}
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("movement journal: %w", err)
	}

	return rows, nil
}
