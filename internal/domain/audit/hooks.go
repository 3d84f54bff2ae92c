package audit

import (
	"context"
	"encoding/json"
	"fmt"

	appctx "stockbook/internal/core/context"
	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
)

// RegisterCatalogHooks attaches audit recording to a catalog service's
// lifecycle hooks. Errors bubble up to the hook runner, which logs them
// without failing the underlying operation.
func RegisterCatalogHooks[T any](hooks *domain.HookRegistry[T], rec Recorder, entityType string, idOf func(T) id.ID) {
	hooks.OnAfterCreate(func(ctx context.Context, e T) error {
		return record(ctx, rec, entityType, idOf(e), ActionCreate, e)
	})
	hooks.OnAfterUpdate(func(ctx context.Context, e T) error {
		return record(ctx, rec, entityType, idOf(e), ActionUpdate, e)
	})
	hooks.OnAfterDelete(func(ctx context.Context, e T) error {
		return record(ctx, rec, entityType, idOf(e), ActionDelete, e)
	})
}

// RegisterMovementHooks records every committed posting in the audit log.
func RegisterMovementHooks(hooks *domain.HookRegistry[*entity.Movement], rec Recorder) {
	hooks.OnAfterCreate(func(ctx context.Context, m *entity.Movement) error {
		return record(ctx, rec, "stock_movement", m.ID, ActionPost, m)
	})
}

func record(ctx context.Context, rec Recorder, entityType string, entityID id.ID, action Action, e any) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit snapshot: %w", err)
	}

	entry := &Entry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Changes:    raw,
	}
	if u := appctx.GetUser(ctx); u != nil {
		entry.UserID = u.UserID
		entry.Username = u.Username
	}

	return rec.Record(ctx, entry)
}
