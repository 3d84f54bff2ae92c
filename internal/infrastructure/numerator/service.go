// Package numerator provides the PostgreSQL implementation of document
// auto-numbering. The next number is derived from the ledger itself: the
// greatest committed number for the day plus one. Nothing is reserved until
// the movement row commits, so concurrent posts may collide on the unique
// constraint and regenerate.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"stockbook/internal/core/numerator"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/pkg/logger"
)

// rowQuerier is the slice of pgx the scan needs.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service implements numerator.Generator against the stock_movements table.
type Service struct {
	txManager *postgres.TxManager
}

var _ numerator.Generator = (*Service)(nil)

// NewService creates a new ledger-backed number generator.
func NewService(txManager *postgres.TxManager) *Service {
	return &Service{txManager: txManager}
}

// NextNumber returns the next free number for the config's prefix and day.
// When called inside a posting transaction the scan reads through it, so a
// number inserted earlier in the same transaction is seen.
func (s *Service) NextNumber(ctx context.Context, cfg numerator.Config, day time.Time) (string, error) {
	number, err := nextFromLedger(ctx, s.txManager.GetQuerier(ctx), cfg, day)
	if err != nil {
		return "", err
	}
	logger.Debug(ctx, "candidate document number", "number", number)
	return number, nil
}

func nextFromLedger(ctx context.Context, q rowQuerier, cfg numerator.Config, day time.Time) (string, error) {
	query := `
		SELECT document_number
		FROM stock_movements
		WHERE document_number LIKE $1
		ORDER BY document_number DESC
		LIMIT 1
	`

	var current string
	err := q.QueryRow(ctx, query, cfg.DayPrefix(day)+"%").Scan(&current)
	if err == pgx.ErrNoRows {
		current = ""
	} else if err != nil {
		return "", fmt.Errorf("scan max document number: %w", err)
	}

	return cfg.Next(day, current)
}
