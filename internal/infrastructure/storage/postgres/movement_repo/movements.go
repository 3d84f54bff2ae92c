// Package movement_repo provides the PostgreSQL implementation of the
// movement ledger. The ledger is append-only: rows are inserted by the
// posting engine and never updated or deleted.
package movement_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/domain/movements"
	"stockbook/internal/infrastructure/storage/postgres"
)

const movementTable = "stock_movements"

// MovementRepo implements movements.Repository.
type MovementRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

var _ movements.Repository = (*MovementRepo)(nil)

// NewMovementRepo creates a new movement ledger repository.
func NewMovementRepo(txManager *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[entity.Movement](),
	}
}

func (r *MovementRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *MovementRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(r.selectCols...).
		From(movementTable)
}

// Create appends one movement row. A duplicate document number surfaces as
// a DOCUMENT_NUMBER_CONFLICT so the engine can regenerate and retry.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	data := postgres.StructToMap(m)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in movement")
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.builder().
		Insert(movementTable).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "document_number") {
				return apperror.NewNumberConflict(m.DocumentNumber).WithCause(err)
			}
			if pgErr.Code == "23503" {
				return apperror.NewConflict("movement references a missing row").
					WithDetail("constraint", pgErr.ConstraintName).
					WithCause(err)
			}
		}
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

// GetByID retrieves a movement by primary key.
func (r *MovementRepo) GetByID(ctx context.Context, movementID id.ID) (*entity.Movement, error) {
	var m entity.Movement

	q := r.baseSelect().
		Where(squirrel.Eq{"id": movementID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("movement", movementID.String())
		}
		return nil, fmt.Errorf("get movement by id: %w", err)
	}

	return &m, nil
}

// GetByNumber retrieves a movement by document number.
func (r *MovementRepo) GetByNumber(ctx context.Context, number string) (*entity.Movement, error) {
	var m entity.Movement

	q := r.baseSelect().
		Where(squirrel.Eq{"document_number": number}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("movement", number)
		}
		return nil, fmt.Errorf("get movement by number: %w", err)
	}

	return &m, nil
}

// applyFilter adds the filter's conditions to a select. Shared by the page
// query and the count query so both always agree.
func (r *MovementRepo) applyFilter(q squirrel.SelectBuilder, f movements.Filter) squirrel.SelectBuilder {
	if f.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *f.WarehouseID})
	}
	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *f.ProductID})
	}
	if f.CounterpartyID != nil {
		q = q.Where(squirrel.Eq{"counterparty_id": *f.CounterpartyID})
	}
	if f.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *f.Kind})
	}
	if f.NumberContains != "" {
		q = q.Where(squirrel.ILike{"document_number": "%" + f.NumberContains + "%"})
	}
	if f.OperatorContains != "" {
		q = q.Where(squirrel.ILike{"operator": "%" + f.OperatorContains + "%"})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"occurred_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"occurred_at": *f.To})
	}
	return q
}

// List retrieves movements newest first with a total count for paging.
func (r *MovementRepo) List(ctx context.Context, f movements.Filter) (domain.ListResult[*entity.Movement], error) {
	result := domain.ListResult[*entity.Movement]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.applyFilter(r.baseSelect(), f)

	countQ := r.builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count movements: %w", err)
	}

	q = q.OrderBy("occurred_at DESC", "id DESC")

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
		return result, fmt.Errorf("list movements: %w", err)
	}

	return result, nil
}
