package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Reloader runs the loader and publishes the result. Runs never overlap.
type Reloader struct {
	Loader  *Loader
	Holder  *DatasetHolder
	Timeout time.Duration
	Logger  zerolog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// Reload loads every source and swaps the dataset in. When no Quality
// source loads the previous dataset is kept and the error is returned
// with the fresh summary.
func (r *Reloader) Reload(ctx context.Context) (*Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	ds, err := r.Loader.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoQualitySource) && r.Holder.Load() == nil {
			r.Holder.Store(ds)
		}
		r.Logger.Error().Err(err).Msg("reload failed")
		return ds, err
	}
	r.Holder.Store(ds)
	r.Logger.Info().
		Int("quality_rows", len(ds.Quality)).
		Int("production_rows", len(ds.Production)).
		Int("quality_failed", len(ds.Summary.Quality.Failed)).
		Int("production_failed", len(ds.Summary.Production.Failed)).
		Dur("elapsed", time.Since(start)).
		Msg("dataset reloaded")
	return ds, nil
}

// Start schedules Reload on the cron spec. An empty spec disables the schedule.
func (r *Reloader) Start(spec string) error {
	if spec == "" {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx := context.Background()
		if r.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.Timeout)
			defer cancel()
		}
		_, _ = r.Reload(ctx)
	})
	if err != nil {
		return err
	}
	r.cron = c
	c.Start()
	r.Logger.Info().Str("spec", spec).Msg("reload schedule started")
	return nil
}

// Stop halts the schedule and waits for a running reload to finish.
func (r *Reloader) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}
