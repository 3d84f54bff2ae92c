package movements

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/apperror"
	appctx "stockbook/internal/core/context"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/core/numerator"
	"stockbook/internal/core/types"
	"stockbook/internal/domain"
	"stockbook/internal/domain/registers/stock"
)

// --- Fakes ---

// fakeLedger stores movements in memory. Duplicate numbers fail the same
// way the unique constraint does; failNumbers forces extra collisions to
// simulate a concurrent writer committing first.
type fakeLedger struct {
	rows        []entity.Movement
	failNumbers map[string]int
	createErr   error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{failNumbers: make(map[string]int)}
}

func (f *fakeLedger) Create(ctx context.Context, m *entity.Movement) error {
	if f.createErr != nil {
		return f.createErr
	}
	if n := f.failNumbers[m.DocumentNumber]; n > 0 {
		f.failNumbers[m.DocumentNumber] = n - 1
		return apperror.NewNumberConflict(m.DocumentNumber)
	}
	for _, r := range f.rows {
		if r.DocumentNumber == m.DocumentNumber {
			return apperror.NewNumberConflict(m.DocumentNumber)
		}
	}
	f.rows = append(f.rows, *m)
	return nil
}

func (f *fakeLedger) GetByID(ctx context.Context, movementID id.ID) (*entity.Movement, error) {
	for i := range f.rows {
		if f.rows[i].ID == movementID {
			m := f.rows[i]
			return &m, nil
		}
	}
	return nil, apperror.NewNotFound("movement", movementID.String())
}

func (f *fakeLedger) GetByNumber(ctx context.Context, number string) (*entity.Movement, error) {
	for i := range f.rows {
		if f.rows[i].DocumentNumber == number {
			m := f.rows[i]
			return &m, nil
		}
	}
	return nil, apperror.NewNotFound("movement", number)
}

func (f *fakeLedger) List(ctx context.Context, flt Filter) (domain.ListResult[*entity.Movement], error) {
	out := make([]*entity.Movement, 0, len(f.rows))
	for i := range f.rows {
		m := f.rows[i]
		out = append(out, &m)
	}
	return domain.ListResult[*entity.Movement]{Items: out, TotalCount: int64(len(out))}, nil
}

func (f *fakeLedger) snapshot() []entity.Movement {
	return append([]entity.Movement(nil), f.rows...)
}

func (f *fakeLedger) restore(snap []entity.Movement) {
	f.rows = snap
}

var _ Repository = (*fakeLedger)(nil)

// fakeBalanceStore applies deltas with the real store's semantics:
// missing row plus positive delta creates it, missing row plus negative
// delta is NO_SUCH_BALANCE, and a result below zero is INSUFFICIENT_STOCK.
type fakeBalanceStore struct {
	rows map[string]entity.StockBalance

	// stalePrecheck makes CheckAvailability always pass, simulating a
	// reader that saw stock another request is about to take.
	stalePrecheck bool
}

func newFakeBalanceStore() *fakeBalanceStore {
	return &fakeBalanceStore{rows: make(map[string]entity.StockBalance)}
}

func balanceKey(warehouseID, productID id.ID) string {
	return warehouseID.String() + "/" + productID.String()
}

func (f *fakeBalanceStore) ApplyDelta(ctx context.Context, d stock.Delta) error {
	k := balanceKey(d.WarehouseID, d.ProductID)
	occ := d.OccurredAt

	b, ok := f.rows[k]
	if !ok {
		if d.Quantity < 0 {
			return apperror.NewNoSuchBalance(d.WarehouseID.String(), d.ProductID.String())
		}
		f.rows[k] = entity.StockBalance{
			WarehouseID:   d.WarehouseID,
			ProductID:     d.ProductID,
			Quantity:      d.Quantity,
			LastInboundAt: &occ,
			UpdatedAt:     time.Now().UTC(),
		}
		return nil
	}

	next := b.Quantity + d.Quantity
	if next < 0 {
		return apperror.NewInsufficientStock(
			d.WarehouseID.String(), d.ProductID.String(),
			b.Quantity, -d.Quantity,
		)
	}
	b.Quantity = next
	if d.Inbound() {
		b.LastInboundAt = &occ
	} else {
		b.LastOutboundAt = &occ
	}
	b.UpdatedAt = time.Now().UTC()
	f.rows[k] = b
	return nil
}

func (f *fakeBalanceStore) CheckAvailability(ctx context.Context, warehouseID, productID id.ID, required int64) error {
	if f.stalePrecheck {
		return nil
	}
	b, ok := f.rows[balanceKey(warehouseID, productID)]
	if !ok {
		return apperror.NewNoSuchBalance(warehouseID.String(), productID.String())
	}
	if b.Quantity < required {
		return apperror.NewInsufficientStock(warehouseID.String(), productID.String(), b.Quantity, required)
	}
	return nil
}

func (f *fakeBalanceStore) quantity(warehouseID, productID id.ID) int64 {
	return f.rows[balanceKey(warehouseID, productID)].Quantity
}

func (f *fakeBalanceStore) snapshot() map[string]entity.StockBalance {
	snap := make(map[string]entity.StockBalance, len(f.rows))
	for k, v := range f.rows {
		snap[k] = v
	}
	return snap
}

func (f *fakeBalanceStore) restore(snap map[string]entity.StockBalance) {
	f.rows = snap
}

var _ BalanceStore = (*fakeBalanceStore)(nil)

// fakeTxManager runs fn and rolls both fakes back to their snapshot when
// fn fails, so tests observe real commit-or-nothing behavior.
type fakeTxManager struct {
	ledger   *fakeLedger
	balances *fakeBalanceStore

	commits   int
	rollbacks int
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	ledgerSnap := f.ledger.snapshot()
	balanceSnap := f.balances.snapshot()

	if err := fn(ctx); err != nil {
		f.ledger.restore(ledgerSnap)
		f.balances.restore(balanceSnap)
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

// fakeChecker passes unless an error is injected.
type fakeChecker struct {
	err error
}

func (f *fakeChecker) CheckUsable(ctx context.Context, _ id.ID) error {
	return f.err
}

// fakeCounterpartyChecker records the kind it was asked about.
type fakeCounterpartyChecker struct {
	err      error
	askedFor []entity.Kind
}

func (f *fakeCounterpartyChecker) CheckForKind(ctx context.Context, _ id.ID, kind entity.Kind) error {
	f.askedFor = append(f.askedFor, kind)
	return f.err
}

// --- Fixture ---

type engineFixture struct {
	ledger         *fakeLedger
	balances       *fakeBalanceStore
	warehouses     *fakeChecker
	products       *fakeChecker
	counterparties *fakeCounterpartyChecker
	txm            *fakeTxManager
	engine         *Engine

	warehouseID id.ID
	productID   id.ID
}

// newFixture wires an engine over in-memory fakes. The generator scans the
// fake ledger the same way the real one scans the movements table.
func newFixture() *engineFixture {
	ledger := newFakeLedger()
	balances := newFakeBalanceStore()
	txm := &fakeTxManager{ledger: ledger, balances: balances}

	gen := &numerator.MockGenerator{
		NextNumberFunc: func(ctx context.Context, cfg numerator.Config, day time.Time) (string, error) {
			prefix := cfg.DayPrefix(day)
			max := ""
			for _, r := range ledger.rows {
				if strings.HasPrefix(r.DocumentNumber, prefix) && r.DocumentNumber > max {
					max = r.DocumentNumber
				}
			}
			return cfg.Next(day, max)
		},
	}

	fx := &engineFixture{
		ledger:         ledger,
		balances:       balances,
		warehouses:     &fakeChecker{},
		products:       &fakeChecker{},
		counterparties: &fakeCounterpartyChecker{},
		txm:            txm,
		warehouseID:    id.New(),
		productID:      id.New(),
	}
	fx.engine = NewEngine(EngineConfig{
		Ledger:         ledger,
		Balances:       balances,
		Warehouses:     fx.warehouses,
		Products:       fx.products,
		Counterparties: fx.counterparties,
		Numerator:      gen,
		TxManager:      txm,
	})
	return fx
}

func (fx *engineFixture) request(qty int64) PostRequest {
	return PostRequest{
		WarehouseID: fx.warehouseID,
		ProductID:   fx.productID,
		Quantity:    qty,
		Operator:    "petrov",
		OccurredAt:  time.Now().UTC().Add(-time.Minute),
	}
}

func todayPrefix(kind entity.Kind) string {
	return kind.NumberPrefix() + time.Now().UTC().Format("20060102")
}

// --- Tests ---

func TestPostInboundCreatesBalance(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	req := fx.request(10)
	price := types.MustMoney("2.50")
	req.UnitPrice = &price

	m, err := fx.engine.PostInbound(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, todayPrefix(entity.KindInbound)+"0001", m.DocumentNumber)
	assert.Equal(t, entity.KindInbound, m.Kind)
	assert.True(t, m.TotalAmount.Equal(types.MustMoney("25.00")), "got %s", m.TotalAmount)

	assert.Equal(t, int64(10), fx.balances.quantity(fx.warehouseID, fx.productID))
	require.Len(t, fx.ledger.rows, 1)
	assert.Equal(t, 1, fx.txm.commits)
	assert.Equal(t, 0, fx.txm.rollbacks)

	stored := fx.balances.rows[balanceKey(fx.warehouseID, fx.productID)]
	require.NotNil(t, stored.LastInboundAt)
	assert.Nil(t, stored.LastOutboundAt)
}

func TestPostInboundAccumulates(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	first, err := fx.engine.PostInbound(ctx, fx.request(10))
	require.NoError(t, err)
	second, err := fx.engine.PostInbound(ctx, fx.request(5))
	require.NoError(t, err)

	assert.Equal(t, todayPrefix(entity.KindInbound)+"0001", first.DocumentNumber)
	assert.Equal(t, todayPrefix(entity.KindInbound)+"0002", second.DocumentNumber)
	assert.Equal(t, int64(15), fx.balances.quantity(fx.warehouseID, fx.productID))
}

func TestPostOutbound(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	_, err := fx.engine.PostInbound(ctx, fx.request(10))
	require.NoError(t, err)

	m, err := fx.engine.PostOutbound(ctx, fx.request(4))
	require.NoError(t, err)

	// outbound numbering runs its own daily sequence
	assert.Equal(t, todayPrefix(entity.KindOutbound)+"0001", m.DocumentNumber)
	assert.Equal(t, int64(-4), m.SignedQuantity())
	assert.Equal(t, int64(6), fx.balances.quantity(fx.warehouseID, fx.productID))

	stored := fx.balances.rows[balanceKey(fx.warehouseID, fx.productID)]
	require.NotNil(t, stored.LastOutboundAt)
}

func TestPostOutboundInsufficientStock(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	_, err := fx.engine.PostInbound(ctx, fx.request(5))
	require.NoError(t, err)

	_, err = fx.engine.PostOutbound(ctx, fx.request(8))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, int64(5), appErr.Details["current"])
	assert.Equal(t, int64(8), appErr.Details["requested"])

	// nothing changed: one inbound row, untouched balance
	assert.Len(t, fx.ledger.rows, 1)
	assert.Equal(t, int64(5), fx.balances.quantity(fx.warehouseID, fx.productID))
}

func TestPostOutboundNoBalanceRow(t *testing.T) {
	fx := newFixture()

	_, err := fx.engine.PostOutbound(context.Background(), fx.request(1))
	require.Error(t, err)
	assert.True(t, apperror.IsNoSuchBalance(err))
	assert.Empty(t, fx.ledger.rows)
	assert.Equal(t, 0, fx.txm.commits)
}

func TestPostOutboundLosesRaceUnderLock(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	_, err := fx.engine.PostInbound(ctx, fx.request(3))
	require.NoError(t, err)

	// the pre-check lies (stale read); the locked check inside the
	// transaction is the authority and must roll everything back
	fx.balances.stalePrecheck = true

	_, err = fx.engine.PostOutbound(ctx, fx.request(5))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	assert.Len(t, fx.ledger.rows, 1, "outbound row must not survive the rollback")
	assert.Equal(t, int64(3), fx.balances.quantity(fx.warehouseID, fx.productID))
	assert.Equal(t, 1, fx.txm.rollbacks)
}

func TestPostValidationCollectsMessages(t *testing.T) {
	fx := newFixture()

	_, err := fx.engine.PostInbound(context.Background(), PostRequest{Quantity: -1})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	appErr, _ := apperror.AsAppError(err)
	msgs, ok := appErr.Details["messages"].([]string)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(msgs), 3, "warehouse, product, quantity and operator problems expected, got %v", msgs)

	assert.Empty(t, fx.ledger.rows)
	assert.Equal(t, 0, fx.txm.commits+fx.txm.rollbacks, "no transaction may be opened for invalid input")
}

func TestPostInvalidWarehouseReference(t *testing.T) {
	fx := newFixture()
	fx.warehouses.err = apperror.NewInvalidReference("warehouse", fx.warehouseID.String(), "is not active")

	_, err := fx.engine.PostInbound(context.Background(), fx.request(1))
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidReference(err))
	assert.Equal(t, 0, fx.txm.commits+fx.txm.rollbacks)
}

func TestPostCounterpartyCheckedAgainstKind(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	cpID := id.New()
	req := fx.request(10)
	req.CounterpartyID = &cpID

	_, err := fx.engine.PostInbound(ctx, req)
	require.NoError(t, err)

	out := fx.request(2)
	out.CounterpartyID = &cpID
	_, err = fx.engine.PostOutbound(ctx, out)
	require.NoError(t, err)

	assert.Equal(t, []entity.Kind{entity.KindInbound, entity.KindOutbound}, fx.counterparties.askedFor)
}

func TestPostCounterpartyMismatchFails(t *testing.T) {
	fx := newFixture()
	fx.counterparties.err = apperror.NewInvalidReference("counterparty", "x", "is not a supplier")

	cpID := id.New()
	req := fx.request(1)
	req.CounterpartyID = &cpID

	_, err := fx.engine.PostInbound(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidReference(err))
	assert.Empty(t, fx.ledger.rows)
}

func TestNumberCollisionRetries(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	// another writer commits this number between our scan and insert
	fx.ledger.failNumbers[todayPrefix(entity.KindInbound)+"0001"] = 1

	m, err := fx.engine.PostInbound(ctx, fx.request(10))
	require.NoError(t, err)

	assert.Equal(t, 1, fx.txm.commits)
	assert.Equal(t, 1, fx.txm.rollbacks)
	assert.Len(t, fx.ledger.rows, 1)
	assert.Equal(t, int64(10), fx.balances.quantity(fx.warehouseID, fx.productID))
	assert.NotEmpty(t, m.DocumentNumber)
}

func TestNumberCollisionExhausted(t *testing.T) {
	fx := newFixture()

	fx.ledger.failNumbers[todayPrefix(entity.KindInbound)+"0001"] = numberAttempts

	_, err := fx.engine.PostInbound(context.Background(), fx.request(10))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInternal, appErr.Code)
	assert.Equal(t, numberAttempts, appErr.Details["attempts"])

	assert.Equal(t, numberAttempts, fx.txm.rollbacks)
	assert.Empty(t, fx.ledger.rows)
	assert.Zero(t, fx.balances.quantity(fx.warehouseID, fx.productID))
}

func TestExplicitNumberConflictNotRetried(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	req := fx.request(10)
	req.DocumentNumber = "RK202601150042"
	_, err := fx.engine.PostInbound(ctx, req)
	require.NoError(t, err)

	dup := fx.request(3)
	dup.DocumentNumber = "RK202601150042"
	_, err = fx.engine.PostInbound(ctx, dup)
	require.Error(t, err)
	assert.True(t, apperror.IsNumberConflict(err))

	assert.Equal(t, 1, fx.txm.commits)
	assert.Equal(t, 1, fx.txm.rollbacks, "explicit numbers fail after one attempt")
	assert.Len(t, fx.ledger.rows, 1)
	assert.Equal(t, int64(10), fx.balances.quantity(fx.warehouseID, fx.productID))
}

func TestExplicitNumberPatternChecked(t *testing.T) {
	fx := newFixture()

	tests := []string{
		"INV-001",          // foreign format
		"CK202601150001",   // wrong kind prefix for inbound
		"RK2026011500001",  // five-digit sequence
		"rk202601150001",   // lower case
	}
	for _, number := range tests {
		req := fx.request(1)
		req.DocumentNumber = number
		_, err := fx.engine.PostInbound(context.Background(), req)
		require.Error(t, err, "number %q must be rejected", number)
		assert.True(t, apperror.IsValidation(err), "number %q", number)
	}
	assert.Empty(t, fx.ledger.rows)
}

func TestOperatorDefaultsFromContext(t *testing.T) {
	fx := newFixture()

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:   id.New().String(),
		Username: "maria",
		Name:     "Maria Ivanova",
		Role:     appctx.RoleOperator,
	})

	req := fx.request(5)
	req.Operator = ""
	m, err := fx.engine.PostInbound(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Maria Ivanova", m.Operator)
}

func TestOperatorRequiredWithoutContext(t *testing.T) {
	fx := newFixture()

	req := fx.request(5)
	req.Operator = ""
	_, err := fx.engine.PostInbound(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "operator")
}

func TestOccurredAtDefaultsToNow(t *testing.T) {
	fx := newFixture()

	req := fx.request(5)
	req.OccurredAt = time.Time{}
	m, err := fx.engine.PostInbound(context.Background(), req)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), m.OccurredAt, 5*time.Second)
}

func TestFutureOccurredAtRejected(t *testing.T) {
	fx := newFixture()

	req := fx.request(5)
	req.OccurredAt = time.Now().UTC().Add(time.Hour)
	_, err := fx.engine.PostInbound(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestStorageFailureRollsBack(t *testing.T) {
	fx := newFixture()
	fx.ledger.createErr = errors.New("connection reset")

	_, err := fx.engine.PostInbound(context.Background(), fx.request(5))
	require.Error(t, err)
	assert.False(t, apperror.IsNumberConflict(err))

	assert.Equal(t, 1, fx.txm.rollbacks, "storage failures are not retried")
	assert.Empty(t, fx.ledger.rows)
	assert.Zero(t, fx.balances.quantity(fx.warehouseID, fx.productID))
}

func TestAfterPostHookRuns(t *testing.T) {
	fx := newFixture()

	var seen []string
	fx.engine.Hooks().OnAfterCreate(func(ctx context.Context, m *entity.Movement) error {
		seen = append(seen, m.DocumentNumber)
		return nil
	})

	m, err := fx.engine.PostInbound(context.Background(), fx.request(5))
	require.NoError(t, err)
	assert.Equal(t, []string{m.DocumentNumber}, seen)
}

func TestAfterPostHookFailureDoesNotFailPost(t *testing.T) {
	fx := newFixture()

	fx.engine.Hooks().OnAfterCreate(func(ctx context.Context, m *entity.Movement) error {
		return errors.New("alert evaluation broke")
	})

	_, err := fx.engine.PostInbound(context.Background(), fx.request(5))
	require.NoError(t, err)
	assert.Len(t, fx.ledger.rows, 1)
}

func TestTotalNeverTrustedFromCaller(t *testing.T) {
	fx := newFixture()

	req := fx.request(4)
	price := types.MustMoney("2.50")
	req.UnitPrice = &price

	m, err := fx.engine.PostInbound(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, m.TotalAmount.Equal(types.MustMoney("10.00")))

	// without a price the total is zero
	m2, err := fx.engine.PostInbound(context.Background(), fx.request(4))
	require.NoError(t, err)
	assert.True(t, m2.TotalAmount.IsZero())
}
