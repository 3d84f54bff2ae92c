package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "stockbook/internal/core/context"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/internal/domain/catalogs/warehouse"
)

type memRecorder struct {
	entries []Entry
}

func (r *memRecorder) Record(ctx context.Context, entry *Entry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memRecorder) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Entry, error) {
	var out []Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

var _ Recorder = (*memRecorder)(nil)

func TestDiff(t *testing.T) {
	old := map[string]any{"name": "Main", "code": "WH-01", "active": true}
	next := map[string]any{"name": "Main warehouse", "code": "WH-01", "capacity": float64(500)}

	changes := Diff(old, next)

	assert.Equal(t, map[string]any{"old": "Main", "new": "Main warehouse"}, changes["name"])
	assert.Equal(t, map[string]any{"old": true, "new": nil}, changes["active"])
	assert.Equal(t, map[string]any{"old": nil, "new": float64(500)}, changes["capacity"])
	assert.NotContains(t, changes, "code")
}

func TestCatalogHooksRecordSnapshots(t *testing.T) {
	rec := &memRecorder{}
	hooks := domain.NewHookRegistry[*warehouse.Warehouse]()
	RegisterCatalogHooks(hooks, rec, "warehouse", func(w *warehouse.Warehouse) id.ID { return w.ID })

	wh := warehouse.NewWarehouse("WH-01", "Main warehouse")
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:   "u-1",
		Username: "petrov",
	})

	require.NoError(t, hooks.RunAfterCreate(ctx, wh))

	wh.Name = "Main warehouse (north)"
	require.NoError(t, hooks.RunAfterUpdate(ctx, wh))

	require.Len(t, rec.entries, 2)
	created := rec.entries[0]
	assert.Equal(t, "warehouse", created.EntityType)
	assert.Equal(t, wh.ID, created.EntityID)
	assert.Equal(t, ActionCreate, created.Action)
	assert.Equal(t, "petrov", created.Username)

	var state map[string]any
	require.NoError(t, json.Unmarshal(created.Changes, &state))
	assert.Equal(t, "WH-01", state["code"])
	assert.Equal(t, "Main warehouse", state["name"])
}

func TestDiffEntriesShowsFieldChanges(t *testing.T) {
	rec := &memRecorder{}
	hooks := domain.NewHookRegistry[*warehouse.Warehouse]()
	RegisterCatalogHooks(hooks, rec, "warehouse", func(w *warehouse.Warehouse) id.ID { return w.ID })

	wh := warehouse.NewWarehouse("WH-01", "Main warehouse")
	ctx := context.Background()
	require.NoError(t, hooks.RunAfterCreate(ctx, wh))
	wh.Name = "Main warehouse (north)"
	wh.Touch()
	require.NoError(t, hooks.RunAfterUpdate(ctx, wh))

	history, err := rec.History(ctx, "warehouse", wh.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	diffed := DiffEntries(history)

	var changes map[string]any
	require.NoError(t, json.Unmarshal(diffed[0].Changes, &changes))
	assert.Contains(t, changes, "name")
	assert.NotContains(t, changes, "code", "unchanged fields are dropped from the diff")

	// oldest entry keeps the full snapshot
	var first map[string]any
	require.NoError(t, json.Unmarshal(diffed[1].Changes, &first))
	assert.Equal(t, "Main warehouse", first["name"])
}
