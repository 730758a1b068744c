package service

import (
	"sync/atomic"

	"github.com/starcheck/quality-panel/internal/models"
)

// Dataset is the merged, sequenced result of one load. It is never mutated
// after Loader.Load returns, so any number of requests may read it.
type Dataset struct {
	Quality    []models.QualityRecord
	Production []models.ProductionRecord
	Summary    models.LoadSummary
}

// DatasetHolder publishes the current dataset. Reloads swap the pointer;
// readers keep whatever snapshot they took.
type DatasetHolder struct {
	current atomic.Pointer[Dataset]
}

func (h *DatasetHolder) Load() *Dataset {
	return h.current.Load()
}

func (h *DatasetHolder) Store(ds *Dataset) {
	h.current.Store(ds)
}
