package backup

import (
	"context"

	"github.com/julianstephens/hourlog/internal/models"
)

// StateStore reads and replaces the four aggregates. storage.Aggregates
// satisfies it.
type StateStore interface {
	State(ctx context.Context) (models.State, error)
	Replace(ctx context.Context, st models.State) error
}

// Restore imports data and replaces the stored state with it. Nothing is
// written unless the snapshot decodes cleanly.
func Restore(ctx context.Context, store StateStore, data []byte) (models.State, error) {
	st, err := Import(data)
	if err != nil {
		return models.State{}, err
	}
	if err := store.Replace(ctx, st); err != nil {
		return models.State{}, err
	}
	return st, nil
}
