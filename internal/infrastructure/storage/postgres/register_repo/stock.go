// Package register_repo provides the PostgreSQL implementation of the stock
// balance register. Balance rows are derived state: they are only ever
// written through ApplyDelta inside a posting transaction, so a committed
// ledger and its balances can never disagree.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/domain/registers/stock"
	"stockbook/internal/infrastructure/storage/postgres"
)

const stockBalancesTable = "stock_balances"

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a new stock balance repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{txManager: txManager}
}

func (r *StockRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ApplyDelta adjusts one balance row. Inbound deltas upsert atomically;
// outbound deltas lock the row first (SELECT ... FOR UPDATE) and fail with
// NO_SUCH_BALANCE when the row is missing or INSUFFICIENT_STOCK when the
// result would go below zero.
func (r *StockRepo) ApplyDelta(ctx context.Context, d stock.Delta) error {
	if d.Quantity == 0 {
		return apperror.NewValidation("balance delta must be non-zero")
	}
	if r.txManager.GetTx(ctx) == nil {
		return fmt.Errorf("apply delta: not inside a transaction")
	}

	if d.Inbound() {
		return r.applyInbound(ctx, d)
	}
	return r.applyOutbound(ctx, d)
}

func (r *StockRepo) applyInbound(ctx context.Context, d stock.Delta) error {
	// GREATEST keeps last_inbound_at at the latest business time even when
	// a backdated movement is posted after a newer one.
	sql := `
		INSERT INTO stock_balances (warehouse_id, product_id, quantity, last_inbound_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (warehouse_id, product_id) DO UPDATE
		SET quantity        = stock_balances.quantity + EXCLUDED.quantity,
		    last_inbound_at = GREATEST(stock_balances.last_inbound_at, EXCLUDED.last_inbound_at),
		    updated_at      = EXCLUDED.updated_at
	`

	querier := r.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql, d.WarehouseID, d.ProductID, d.Quantity, d.OccurredAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}

	return nil
}

func (r *StockRepo) applyOutbound(ctx context.Context, d stock.Delta) error {
	lockSQL := `
		SELECT warehouse_id, product_id, quantity, last_inbound_at, last_outbound_at, updated_at
		FROM stock_balances
		WHERE warehouse_id = $1 AND product_id = $2
		FOR UPDATE
	`

	var balance entity.StockBalance
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, lockSQL, d.WarehouseID, d.ProductID); err != nil {
		if pgxscan.NotFound(err) {
			return apperror.NewNoSuchBalance(d.WarehouseID.String(), d.ProductID.String())
		}
		return fmt.Errorf("lock balance: %w", err)
	}

	remaining := balance.Quantity + d.Quantity
	if remaining < 0 {
		return apperror.NewInsufficientStock(
			d.WarehouseID.String(), d.ProductID.String(),
			balance.Quantity, -d.Quantity,
		)
	}

	lastOutboundAt := d.OccurredAt
	if balance.LastOutboundAt != nil && balance.LastOutboundAt.After(lastOutboundAt) {
		lastOutboundAt = *balance.LastOutboundAt
	}

	updateSQL := `
		UPDATE stock_balances
		SET quantity = $3, last_outbound_at = $4, updated_at = $5
		WHERE warehouse_id = $1 AND product_id = $2
	`

	_, err := querier.Exec(ctx, updateSQL, d.WarehouseID, d.ProductID, remaining, lastOutboundAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	return nil
}

// Get returns the balance row for a warehouse and product pair.
func (r *StockRepo) Get(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error) {
	var balance entity.StockBalance

	q := r.builder().
		Select("warehouse_id", "product_id", "quantity", "last_inbound_at", "last_outbound_at", "updated_at").
		From(stockBalancesTable).
		Where(squirrel.Eq{
			"warehouse_id": warehouseID,
			"product_id":   productID,
		}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return balance, apperror.NewNotFound("stock balance", fmt.Sprintf("%s/%s", warehouseID, productID))
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// List returns balance rows ordered by warehouse and product.
func (r *StockRepo) List(ctx context.Context, f stock.BalanceFilter) (domain.ListResult[entity.StockBalance], error) {
	result := domain.ListResult[entity.StockBalance]{
		Items:  []entity.StockBalance{},
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.builder().
		Select("warehouse_id", "product_id", "quantity", "last_inbound_at", "last_outbound_at", "updated_at").
		From(stockBalancesTable)

	if f.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *f.WarehouseID})
	}
	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *f.ProductID})
	}
	if f.ExcludeZero {
		q = q.Where(squirrel.Gt{"quantity": int64(0)})
	}

	countQuery := r.builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count balances: %w", err)
	}

	q = q.OrderBy("warehouse_id", "product_id")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select balances: %w", err)
	}

	return result, nil
}

// WarehouseHasStock reports whether the warehouse holds any positive balance.
func (r *StockRepo) WarehouseHasStock(ctx context.Context, warehouseID id.ID) (bool, error) {
	return r.hasStock(ctx, squirrel.Eq{"warehouse_id": warehouseID})
}

// ProductHasStock reports whether the product has a positive balance anywhere.
func (r *StockRepo) ProductHasStock(ctx context.Context, productID id.ID) (bool, error) {
	return r.hasStock(ctx, squirrel.Eq{"product_id": productID})
}

func (r *StockRepo) hasStock(ctx context.Context, cond squirrel.Eq) (bool, error) {
	q := r.builder().
		Select("1").
		From(stockBalancesTable).
		Where(cond).
		Where(squirrel.Gt{"quantity": int64(0)}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	querier := r.txManager.GetQuerier(ctx)
	err = querier.QueryRow(ctx, sql, args...).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check stock: %w", err)
	}

	return true, nil
}
