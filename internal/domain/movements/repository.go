package movements

import (
	"context"

	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
)

// Repository defines persistence for the movement ledger. The ledger is
// append-only: there is no update or delete.
type Repository interface {
	// Create appends one movement row. A duplicate document number is
	// reported as a DOCUMENT_NUMBER_CONFLICT error (from the unique
	// constraint, not a pre-read).
	Create(ctx context.Context, m *entity.Movement) error

	// GetByID retrieves a movement by primary key.
	GetByID(ctx context.Context, movementID id.ID) (*entity.Movement, error)

	// GetByNumber retrieves a movement by document number.
	GetByNumber(ctx context.Context, number string) (*entity.Movement, error)

	// List retrieves movements with filtering, newest first
	// (occurred_at DESC, id DESC), with a total count for paging.
	List(ctx context.Context, f Filter) (domain.ListResult[*entity.Movement], error)
}
