package movements

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"stockbook/internal/core/apperror"
	appctx "stockbook/internal/core/context"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/core/numerator"
	"stockbook/internal/core/tx"
	"stockbook/internal/domain"
	"stockbook/internal/domain/registers/stock"
	"stockbook/pkg/logger"
)

// numberAttempts bounds regenerate-and-retry on document number collisions.
const numberAttempts = 3

// numberRE is the canonical document number shape: two-letter kind prefix,
// eight-digit date, four-digit daily sequence.
var numberRE = regexp.MustCompile(`^[A-Z]{2}\d{12}$`)

// BalanceStore is the slice of the stock register the engine needs.
type BalanceStore interface {
	ApplyDelta(ctx context.Context, d stock.Delta) error
	CheckAvailability(ctx context.Context, warehouseID, productID id.ID, required int64) error
}

// WarehouseChecker verifies a warehouse may be referenced by a new movement.
type WarehouseChecker interface {
	CheckUsable(ctx context.Context, warehouseID id.ID) error
}

// ProductChecker verifies a product may be referenced by a new movement.
type ProductChecker interface {
	CheckUsable(ctx context.Context, productID id.ID) error
}

// CounterpartyChecker verifies a counterparty matches the movement direction.
type CounterpartyChecker interface {
	CheckForKind(ctx context.Context, counterpartyID id.ID, kind entity.Kind) error
}

// Engine posts stock movements. One call is one posting: validate the
// request, check references, then in a single transaction append the ledger
// row and adjust the balance. The movement either commits fully or leaves
// no trace.
type Engine struct {
	ledger         Repository
	balances       BalanceStore
	warehouses     WarehouseChecker
	products       ProductChecker
	counterparties CounterpartyChecker
	numerator      numerator.Generator
	txManager      tx.Manager
	hooks          *domain.HookRegistry[*entity.Movement]
}

// EngineConfig wires the engine's collaborators.
type EngineConfig struct {
	Ledger         Repository
	Balances       BalanceStore
	Warehouses     WarehouseChecker
	Products       ProductChecker
	Counterparties CounterpartyChecker
	Numerator      numerator.Generator
	TxManager      tx.Manager
}

// NewEngine creates a movement engine.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		ledger:         cfg.Ledger,
		balances:       cfg.Balances,
		warehouses:     cfg.Warehouses,
		products:       cfg.Products,
		counterparties: cfg.Counterparties,
		numerator:      cfg.Numerator,
		txManager:      cfg.TxManager,
		hooks:          domain.NewHookRegistry[*entity.Movement](),
	}
}

// Hooks returns the registry for after-post callbacks (alerts, audit).
// After-post hooks run outside the transaction; failures are logged only.
func (e *Engine) Hooks() *domain.HookRegistry[*entity.Movement] {
	return e.hooks
}

// PostInbound posts a goods receipt: stock moves into the warehouse.
func (e *Engine) PostInbound(ctx context.Context, req PostRequest) (*entity.Movement, error) {
	return e.post(ctx, entity.KindInbound, req)
}

// PostOutbound posts a goods issue: stock moves out of the warehouse.
// Fails when the pair has no balance row or not enough stock.
func (e *Engine) PostOutbound(ctx context.Context, req PostRequest) (*entity.Movement, error) {
	return e.post(ctx, entity.KindOutbound, req)
}

func (e *Engine) post(ctx context.Context, kind entity.Kind, req PostRequest) (*entity.Movement, error) {
	m := e.buildMovement(ctx, kind, req)

	if err := e.validate(ctx, m, req.DocumentNumber); err != nil {
		return nil, err
	}
	if err := e.checkReferences(ctx, m); err != nil {
		return nil, err
	}
	m.ComputeTotal()

	// Advisory pre-check: rejects hopeless outbounds without opening a
	// transaction. The authoritative check runs under the row lock.
	if kind == entity.KindOutbound {
		if err := e.balances.CheckAvailability(ctx, m.WarehouseID, m.ProductID, m.Quantity); err != nil {
			return nil, err
		}
	}

	if err := e.commit(ctx, m, req.DocumentNumber != ""); err != nil {
		return nil, err
	}

	logger.Info(ctx, "movement posted",
		"number", m.DocumentNumber,
		"kind", m.Kind,
		"warehouse_id", m.WarehouseID,
		"product_id", m.ProductID,
		"quantity", m.Quantity,
	)

	if err := e.hooks.RunAfterCreate(ctx, m); err != nil {
		logger.Warn(ctx, "after-post hook failed", "number", m.DocumentNumber, "error", err)
	}

	return m, nil
}

// commit runs the posting transaction: number, ledger row, balance delta.
// Auto-generated numbers that collide on the unique constraint are
// regenerated and the whole transaction retried a bounded number of times.
// Explicit numbers are never retried; their conflict goes back to the caller.
func (e *Engine) commit(ctx context.Context, m *entity.Movement, explicitNumber bool) error {
	cfg := numerator.DefaultConfig(m.Kind.NumberPrefix())
	day := time.Now().UTC()

	attempts := numberAttempts
	if explicitNumber {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if !explicitNumber {
				number, err := e.numerator.NextNumber(ctx, cfg, day)
				if err != nil {
					return fmt.Errorf("generate number: %w", err)
				}
				m.DocumentNumber = number
			}

			if err := e.ledger.Create(ctx, m); err != nil {
				return fmt.Errorf("append movement: %w", err)
			}

			delta := stock.Delta{
				WarehouseID: m.WarehouseID,
				ProductID:   m.ProductID,
				Quantity:    m.SignedQuantity(),
				OccurredAt:  m.OccurredAt,
			}
			if err := e.balances.ApplyDelta(ctx, delta); err != nil {
				return fmt.Errorf("apply balance delta: %w", err)
			}
			return nil
		})
		if err == nil {
			return nil
		}

		if apperror.IsNumberConflict(err) && !explicitNumber {
			lastErr = err
			logger.Warn(ctx, "document number collision, regenerating",
				"attempt", attempt, "number", m.DocumentNumber)
			continue
		}
		return err
	}

	return apperror.NewInternal(lastErr).
		WithDetail("reason", "document numbering retries exhausted").
		WithDetail("attempts", numberAttempts)
}

func (e *Engine) buildMovement(ctx context.Context, kind entity.Kind, req PostRequest) *entity.Movement {
	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	operator := req.Operator
	if operator == "" {
		operator = appctx.GetOperatorName(ctx)
	}

	m := entity.NewMovement(kind, req.WarehouseID, req.ProductID, req.Quantity, occurredAt)
	m.CounterpartyID = req.CounterpartyID
	m.UnitPrice = req.UnitPrice
	m.DocumentNumber = req.DocumentNumber
	m.Operator = operator
	m.Note = req.Note
	return &m
}

// validate collects every field problem, including an explicit document
// number that does not follow the kind's numbering pattern.
func (e *Engine) validate(ctx context.Context, m *entity.Movement, explicitNumber string) error {
	var messages []string

	if err := m.Validate(ctx); err != nil {
		appErr, ok := apperror.AsAppError(err)
		if !ok {
			return err
		}
		if list, ok := appErr.Details["messages"].([]string); ok {
			messages = list
		} else {
			messages = []string{appErr.Message}
		}
	}

	if explicitNumber != "" && !validNumber(m.Kind, explicitNumber) {
		messages = append(messages, fmt.Sprintf(
			"document_number must match the %s pattern %s<YYYYMMDD><NNNN>",
			m.Kind, m.Kind.NumberPrefix(),
		))
	}

	if len(messages) > 0 {
		return apperror.NewValidationMessages(messages)
	}
	return nil
}

// checkReferences verifies warehouse, product and counterparty fail-fast,
// before any transaction is opened.
func (e *Engine) checkReferences(ctx context.Context, m *entity.Movement) error {
	if err := e.warehouses.CheckUsable(ctx, m.WarehouseID); err != nil {
		return err
	}
	if err := e.products.CheckUsable(ctx, m.ProductID); err != nil {
		return err
	}
	if m.CounterpartyID != nil {
		if err := e.counterparties.CheckForKind(ctx, *m.CounterpartyID, m.Kind); err != nil {
			return err
		}
	}
	return nil
}

// validNumber guards the generator's LIKE scan: every number sharing a day
// prefix must carry a numeric four-digit tail, or Next would fail to parse
// the maximum.
func validNumber(kind entity.Kind, number string) bool {
	return numberRE.MatchString(number) && strings.HasPrefix(number, kind.NumberPrefix())
}

// --- Ledger reads ---

// GetByID retrieves one movement.
func (e *Engine) GetByID(ctx context.Context, movementID id.ID) (*entity.Movement, error) {
	return e.ledger.GetByID(ctx, movementID)
}

// GetByNumber retrieves one movement by document number.
func (e *Engine) GetByNumber(ctx context.Context, number string) (*entity.Movement, error) {
	return e.ledger.GetByNumber(ctx, number)
}

// List retrieves the movement journal, newest first.
func (e *Engine) List(ctx context.Context, f Filter) (domain.ListResult[*entity.Movement], error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	return e.ledger.List(ctx, f)
}
