package service

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starcheck/quality-panel/internal/models"
)

func newDashboardService(ds *Dataset) *DashboardService {
	return &DashboardService{Holder: holderWith(ds), Company: testCompany, Logger: zerolog.Nop()}
}

func TestDashboardBuildsEverySection(t *testing.T) {
	svc := newDashboardService(periodDataset())
	d, err := svc.Build(models.PeriodSelection{}, DefaultDashboardOptions())
	require.NoError(t, err)

	assert.Empty(t, d.SectionErrors)
	require.NotNil(t, d.KPIs)
	assert.Equal(t, 3, d.KPIs.TotalErrors)
	assert.Equal(t, 3, d.KPIs.GrossInspections)
	require.NotNil(t, d.Units)
	assert.Equal(t, models.UnitBasisRate, d.Units.Basis)
	assert.Len(t, d.Weekdays, 7)
	assert.NotEmpty(t, d.Inspectors)
	require.NotNil(t, d.Ranking)
	require.NotNil(t, d.Pareto)
	require.NotNil(t, d.Pareto.WhatIf)
	assert.Equal(t, DefaultReductionPct, d.Pareto.WhatIf.ReductionPct)
	require.NotNil(t, d.Comparison)
	assert.Equal(t, models.YearMonth{Year: 2025, Month: 9}, d.Comparison.Current)
	assert.Equal(t, []string{"RJ", "SP"}, d.UnitOptions)
}

func TestDashboardComparisonIgnoresPeriodFilters(t *testing.T) {
	svc := newDashboardService(periodDataset())
	sel := models.PeriodSelection{Inspectors: []string{"BIA"}}
	d, err := svc.Build(sel, DefaultDashboardOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, d.KPIs.TotalErrors)
	names := map[string]bool{}
	for _, r := range d.Comparison.Rows {
		names[r.Inspector] = true
	}
	assert.True(t, names["ANA"])
	assert.True(t, names["CAIO"])
	assert.False(t, names["ZED"], "other companies never reach the comparison")
}

func TestDashboardEmptyView(t *testing.T) {
	svc := newDashboardService(periodDataset())
	day := *date(2025, time.September, 4)
	d, err := svc.Build(models.PeriodSelection{ReferenceYear: 2025, ReferenceMonth: 9, StartDate: day, EndDate: day}, DefaultDashboardOptions())
	require.ErrorIs(t, err, ErrEmptyFilteredView)
	assert.Nil(t, d.KPIs)
	assert.Equal(t, 9, d.Selection.ReferenceMonth)
}

func TestDashboardNoDataset(t *testing.T) {
	svc := &DashboardService{Holder: &DatasetHolder{}, Company: testCompany, Logger: zerolog.Nop()}
	_, err := svc.Build(models.PeriodSelection{}, DefaultDashboardOptions())
	require.ErrorIs(t, err, ErrNoDataset)
	_, err = svc.Months()
	require.ErrorIs(t, err, ErrNoDataset)
}

func TestDashboardSectionPanicIsContained(t *testing.T) {
	svc := newDashboardService(periodDataset())
	var d Dashboard
	svc.section(&d, "broken", func() { panic("boom") })
	svc.section(&d, "fine", func() { d.Severities = []models.CountRow{{Key: "LEVE", Count: 1}} })

	assert.Equal(t, map[string]string{"broken": "boom"}, d.SectionErrors)
	assert.Len(t, d.Severities, 1)
}
