package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/starcheck/quality-panel/internal/metrics"
	"github.com/starcheck/quality-panel/internal/models"
	"github.com/starcheck/quality-panel/internal/normalize"
	"github.com/starcheck/quality-panel/internal/sources"
)

const (
	datasetQuality    = "quality"
	datasetProduction = "production"
)

// Feed is one dataset's index plus the source its entries are fetched from.
type Feed struct {
	Index   sources.IndexReader
	IndexID string
	Source  sources.RowSource
}

type Loader struct {
	Quality     Feed
	Production  Feed
	Concurrency int
	Logger      zerolog.Logger
	Now         func() time.Time
}

type fetchResult struct {
	entry    models.IndexEntry
	sourceID string
	batch    models.RawBatch
	err      error
}

// Load reads both indexes, fetches every active month and merges the batches
// in index order. A failed source is recorded in the summary and skipped.
// The Quality index being unreadable is the only hard failure; when every
// Quality source fails the dataset is still returned with ErrNoQualitySource.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	ds := &Dataset{}

	qEntries, err := l.Quality.Index.ReadIndex(ctx, l.Quality.IndexID)
	if err != nil {
		return nil, fmt.Errorf("read quality index %s: %w", l.Quality.IndexID, err)
	}
	qResults := l.fetchAll(ctx, l.Quality.Source, qEntries)
	for _, r := range qResults {
		if r.err != nil {
			ds.Summary.Quality.Failed = append(ds.Summary.Quality.Failed, l.failure(datasetQuality, r))
			continue
		}
		recs, dropped := normalize.QualityBatch(r.batch.Rows)
		if dropped > 0 {
			l.Logger.Debug().Str("title", r.batch.Title).Int("dropped", dropped).Msg("quality rows without inspector or error code")
		}
		ds.Quality = append(ds.Quality, recs...)
		ds.Summary.Quality.Loaded = append(ds.Summary.Quality.Loaded, l.loaded(datasetQuality, r, len(recs)))
	}

	var pRaw []models.ProductionRecord
	pEntries, err := l.Production.Index.ReadIndex(ctx, l.Production.IndexID)
	if err != nil {
		l.Logger.Warn().Err(err).Str("index", l.Production.IndexID).Msg("production index unreadable")
		metrics.SourceLoads.WithLabelValues(datasetProduction, "failed").Inc()
		ds.Summary.Production.Failed = append(ds.Summary.Production.Failed, models.SourceFailure{
			SourceID: l.Production.IndexID,
			Kind:     KindSourceReadFailure,
			Error:    err.Error(),
		})
	}
	for _, r := range l.fetchAll(ctx, l.Production.Source, pEntries) {
		if r.err != nil {
			ds.Summary.Production.Failed = append(ds.Summary.Production.Failed, l.failure(datasetProduction, r))
			continue
		}
		recs, ok := normalize.ProductionBatch(r.batch.Rows)
		if !ok {
			l.Logger.Warn().Str("title", r.batch.Title).Msg("production sheet lacks DATA/UNIDADE/CHASSI/PERITO columns")
		}
		pRaw = append(pRaw, recs...)
		ds.Summary.Production.Loaded = append(ds.Summary.Production.Loaded, l.loaded(datasetProduction, r, len(recs)))
	}
	ds.Production = SequenceProduction(pRaw)
	ds.Summary.LoadedAt = now().UTC()

	metrics.DatasetRows.WithLabelValues(datasetQuality).Set(float64(len(ds.Quality)))
	metrics.DatasetRows.WithLabelValues(datasetProduction).Set(float64(len(ds.Production)))

	if len(ds.Summary.Quality.Loaded) == 0 {
		return ds, ErrNoQualitySource
	}
	return ds, nil
}

// fetchAll fetches the active entries that name a month concurrently and returns the results
// in index order regardless of completion order.
func (l *Loader) fetchAll(ctx context.Context, src sources.RowSource, entries []models.IndexEntry) []fetchResult {
	var active []fetchResult
	for _, e := range entries {
		if !e.Active || strings.TrimSpace(e.MonthLabel) == "" {
			continue
		}
		id := sources.ResolveSourceID(e.SourceRef)
		if id == "" {
			continue
		}
		active = append(active, fetchResult{entry: e, sourceID: id})
	}

	limit := l.Concurrency
	if limit <= 0 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i := range active {
		i := i
		g.Go(func() error {
			batch, err := src.Fetch(ctx, active[i].sourceID)
			active[i].batch = batch
			active[i].err = err
			return nil
		})
	}
	_ = g.Wait()
	return active
}

func (l *Loader) loaded(dataset string, r fetchResult, rows int) models.SourceLoad {
	title := r.batch.Title
	if title == "" {
		title = r.sourceID
	}
	l.Logger.Info().Str("dataset", dataset).Str("title", title).Int("rows", rows).Msg("source loaded")
	metrics.SourceLoads.WithLabelValues(dataset, "loaded").Inc()
	return models.SourceLoad{
		SourceID: r.sourceID,
		Month:    r.entry.MonthLabel,
		Title:    title,
		Rows:     rows,
		Line:     fmt.Sprintf("%s — %s linhas", title, groupThousands(rows)),
	}
}

func (l *Loader) failure(dataset string, r fetchResult) models.SourceFailure {
	kind := classifySourceError(r.err)
	l.Logger.Warn().Err(r.err).Str("dataset", dataset).Str("source_id", r.sourceID).Str("error_kind", kind).Msg("source failed")
	metrics.SourceLoads.WithLabelValues(dataset, "failed").Inc()
	return models.SourceFailure{
		SourceID: r.sourceID,
		Month:    r.entry.MonthLabel,
		Kind:     kind,
		Error:    r.err.Error(),
	}
}

func classifySourceError(err error) string {
	var missing *sources.NamedSourceMissingError
	if errors.As(err, &missing) {
		return KindNamedSourceMissing
	}
	return KindSourceReadFailure
}

// groupThousands formats 12345 as "12.345".
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
