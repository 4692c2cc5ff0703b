package repository

import (
	"context"

	"dental-center/internal/domain/entity"
)

// StateRepository persists whole AppState snapshots in a single slot.
// It is best-effort: faults are logged by the implementation and never returned.
type StateRepository interface {
	Save(ctx context.Context, state *entity.AppState)
	// Load returns false when there is no usable snapshot (absent or corrupted).
	Load(ctx context.Context) (*entity.AppState, bool)
	Clear(ctx context.Context)
}
