package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/starcheck/quality-panel/internal/metrics"
	"github.com/starcheck/quality-panel/internal/models"
)

// DashboardOptions are the caller's display choices. Zero values select the
// defaults, except ReductionPct which DefaultDashboardOptions sets.
type DashboardOptions struct {
	Denominator  models.Denominator
	ParetoTopK   int
	WhatIfCutoff int
	ReductionPct float64
	TopErrors    int
	RankingSize  int
}

func DefaultDashboardOptions() DashboardOptions {
	return DashboardOptions{
		Denominator:  models.DenominatorGross,
		ReductionPct: DefaultReductionPct,
		TopErrors:    DefaultTopErrors,
		RankingSize:  DefaultRankingSize,
	}
}

type Dashboard struct {
	Selection        models.PeriodSelection    `json:"selection"`
	UnitOptions      []string                  `json:"unit_options"`
	InspectorOptions []string                  `json:"inspector_options"`
	KPIs             *models.KPIs              `json:"kpis"`
	Units            *models.UnitBreakdown     `json:"units"`
	Severities       []models.CountRow         `json:"severities"`
	Analysts         []models.CountRow         `json:"analysts"`
	TopErrors        []models.CountRow         `json:"top_errors"`
	Reincidence      []models.ReincidenceRow   `json:"reincidence"`
	Calibration      []models.CalibrationRow   `json:"calibration"`
	Weekdays         []models.WeekdayRow       `json:"weekdays"`
	Heatmap          []models.HeatmapCell      `json:"heatmap"`
	Inspectors       []models.InspectorMetrics `json:"inspectors"`
	Ranking          *models.Ranking           `json:"ranking"`
	Pareto           *models.ParetoResult      `json:"pareto"`
	Comparison       *models.Comparison        `json:"comparison"`
	FraudAttempts    []models.QualityRecord    `json:"fraud_attempts"`
	SectionErrors    map[string]string         `json:"section_errors,omitempty"`
}

type DashboardService struct {
	Holder  *DatasetHolder
	Company string
	Logger  zerolog.Logger
}

// View filters the current dataset for sel.
func (s *DashboardService) View(sel models.PeriodSelection) (View, error) {
	ds := s.Holder.Load()
	if ds == nil {
		return View{}, ErrNoDataset
	}
	return FilterPeriod(ds, s.Company, sel)
}

// Months lists the reference months the current dataset offers.
func (s *DashboardService) Months() ([]models.MonthOption, error) {
	ds := s.Holder.Load()
	if ds == nil {
		return nil, ErrNoDataset
	}
	return AvailableMonths(CompanyQuality(ds.Quality, s.Company)), nil
}

// Build derives every dashboard section from one snapshot. Filter errors
// stop the render; a failing section is recorded in SectionErrors and the
// others are still built.
func (s *DashboardService) Build(sel models.PeriodSelection, opts DashboardOptions) (Dashboard, error) {
	start := time.Now()
	defer func() { metrics.DashboardSeconds.Observe(time.Since(start).Seconds()) }()

	ds := s.Holder.Load()
	if ds == nil {
		metrics.DashboardOutcomes.WithLabelValues("no_dataset").Inc()
		return Dashboard{}, ErrNoDataset
	}
	view, err := FilterPeriod(ds, s.Company, sel)
	if err != nil {
		metrics.DashboardOutcomes.WithLabelValues(outcomeOf(err)).Inc()
		return Dashboard{Selection: view.Selection, UnitOptions: view.UnitOptions, InspectorOptions: view.InspectorOptions}, err
	}
	if opts.Denominator == "" {
		opts.Denominator = models.DenominatorGross
	}
	if opts.TopErrors == 0 {
		opts.TopErrors = DefaultTopErrors
	}
	if opts.RankingSize == 0 {
		opts.RankingSize = DefaultRankingSize
	}

	d := Dashboard{
		Selection:        view.Selection,
		UnitOptions:      view.UnitOptions,
		InspectorOptions: view.InspectorOptions,
	}
	q, p := view.Quality, view.Production

	s.section(&d, "kpis", func() {
		k := ComputeKPIs(q, p)
		d.KPIs = &k
	})
	s.section(&d, "units", func() {
		u := ErrorsByUnit(q, p)
		d.Units = &u
	})
	s.section(&d, "severities", func() { d.Severities = CountBySeverity(q) })
	s.section(&d, "analysts", func() { d.Analysts = CountByAnalyst(q) })
	s.section(&d, "top_errors", func() { d.TopErrors = TopErrors(q, opts.TopErrors) })
	s.section(&d, "reincidence", func() { d.Reincidence = Reincidence(q, ReincidenceThreshold) })
	s.section(&d, "calibration", func() { d.Calibration = Calibration(q) })
	s.section(&d, "weekdays", func() { d.Weekdays = WeekdayDistribution(q) })
	s.section(&d, "heatmap", func() { d.Heatmap = UnitSeverityHeatmap(q) })
	s.section(&d, "inspectors", func() { d.Inspectors = Reconcile(q, p, opts.Denominator) })
	s.section(&d, "ranking", func() {
		r := RankInspectors(Reconcile(q, p, opts.Denominator), opts.Denominator, opts.RankingSize)
		d.Ranking = &r
	})
	s.section(&d, "pareto", func() {
		res := Pareto(q, opts.ParetoTopK)
		res.WhatIf = ParetoWhatIf(res, opts.WhatIfCutoff, opts.ReductionPct)
		d.Pareto = &res
	})
	s.section(&d, "comparison", func() {
		c := MonthOverMonth(CompanyQuality(ds.Quality, s.Company), view.Selection.YearMonth())
		d.Comparison = &c
	})
	s.section(&d, "fraud_attempts", func() { d.FraudAttempts = FraudAttempts(q) })

	outcome := "ok"
	if len(d.SectionErrors) > 0 {
		outcome = "partial"
	}
	metrics.DashboardOutcomes.WithLabelValues(outcome).Inc()
	return d, nil
}

func (s *DashboardService) section(d *Dashboard, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error().Str("section", name).Interface("panic", r).Msg("dashboard section failed")
			if d.SectionErrors == nil {
				d.SectionErrors = map[string]string{}
			}
			d.SectionErrors[name] = fmt.Sprint(r)
		}
	}()
	fn()
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrFilterExhausted):
		return "filter_exhausted"
	case errors.Is(err, ErrEmptyFilteredView):
		return "empty_view"
	case errors.Is(err, ErrMonthUnavailable):
		return "month_unavailable"
	case errors.Is(err, ErrInvalidRange):
		return "invalid_range"
	}
	return "error"
}
