package sources

import (
	"context"
	"fmt"

	"github.com/starcheck/quality-panel/internal/models"
)

// MemorySource serves fixed batches; Errors take precedence over Batches.
type MemorySource struct {
	Batches map[string]models.RawBatch
	Errors  map[string]error
}

func (m MemorySource) Fetch(ctx context.Context, sourceID string) (models.RawBatch, error) {
	if err := ctx.Err(); err != nil {
		return models.RawBatch{}, err
	}
	if err, ok := m.Errors[sourceID]; ok {
		return models.RawBatch{}, err
	}
	b, ok := m.Batches[sourceID]
	if !ok {
		return models.RawBatch{}, fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
	}
	return b, nil
}

type MemoryIndex map[string][]models.IndexEntry

func (m MemoryIndex) ReadIndex(ctx context.Context, indexID string) ([]models.IndexEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, ok := m[indexID]
	if !ok {
		return nil, fmt.Errorf("%w: index %s", ErrSourceNotFound, indexID)
	}
	return entries, nil
}
