package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starcheck/quality-panel/internal/models"
)

func periodDataset() *Dataset {
	other := qrec("ZED", "X", "GRAVE", date(2025, time.October, 2))
	other.Company = "OUTRA"
	q := []models.QualityRecord{
		qrec("ANA", "X", "GRAVE", date(2025, time.August, 20)),
		qrec("ANA", "X", "LEVE", date(2025, time.September, 3)),
		qrec("BIA", "Y", "LEVE", date(2025, time.September, 5)),
		qrec("CAIO", "Z", "LEVE", date(2025, time.September, 9)),
		qrec("CAIO", "Z", "LEVE", nil),
		other,
	}
	q[1].Unit, q[2].Unit, q[3].Unit = "SP", "RJ", "SP"
	p := SequenceProduction([]models.ProductionRecord{
		prec("ANA", "SP", "C1", date(2025, time.September, 3)),
		prec("BIA", "RJ", "C2", date(2025, time.September, 6)),
		prec("ANA", "SP", "C3", date(2025, time.August, 30)),
		prec("", "SP", "C4", date(2025, time.September, 4)),
	})
	return &Dataset{Quality: q, Production: p}
}

func TestAvailableMonths(t *testing.T) {
	ds := periodDataset()
	months := AvailableMonths(CompanyQuality(ds.Quality, "starcheck"))
	require.Len(t, months, 2)
	assert.Equal(t, "08/2025", months[0].Label)
	assert.Equal(t, "09/2025", months[1].Label)
	assert.Equal(t, *date(2025, time.September, 3), months[1].FirstDate)
	assert.Equal(t, *date(2025, time.September, 9), months[1].LastDate)
}

func TestFilterPeriodDefaultsToLatestMonth(t *testing.T) {
	view, err := FilterPeriod(periodDataset(), testCompany, models.PeriodSelection{})
	require.NoError(t, err)

	assert.Equal(t, 2025, view.Selection.ReferenceYear)
	assert.Equal(t, 9, view.Selection.ReferenceMonth)
	assert.Equal(t, *date(2025, time.September, 3), view.Selection.StartDate)
	assert.Equal(t, *date(2025, time.September, 9), view.Selection.EndDate)
	assert.Len(t, view.Quality, 3)
	assert.Len(t, view.Production, 3)
	assert.Equal(t, []string{"RJ", "SP"}, view.UnitOptions)
	assert.Equal(t, []string{"ANA", "BIA", "CAIO"}, view.InspectorOptions)
}

func TestFilterPeriodAppliesSameFiltersToProduction(t *testing.T) {
	sel := models.PeriodSelection{
		ReferenceYear:  2025,
		ReferenceMonth: 9,
		StartDate:      *date(2025, time.September, 3),
		EndDate:        *date(2025, time.September, 5),
		Units:          []string{" sp "},
	}
	view, err := FilterPeriod(periodDataset(), testCompany, sel)
	require.NoError(t, err)

	require.Len(t, view.Quality, 1)
	assert.Equal(t, "ANA", view.Quality[0].Inspector)
	require.Len(t, view.Production, 2)
	for _, p := range view.Production {
		assert.Equal(t, "SP", p.Unit)
	}
	assert.Equal(t, []string{"RJ", "SP"}, view.UnitOptions, "options ignore the unit filter")
}

func TestFilterPeriodInspectorFilter(t *testing.T) {
	view, err := FilterPeriod(periodDataset(), testCompany, models.PeriodSelection{Inspectors: []string{"bia"}})
	require.NoError(t, err)
	require.Len(t, view.Quality, 1)
	require.Len(t, view.Production, 1)
	assert.Equal(t, "C2", view.Production[0].Chassis)
}

func TestFilterPeriodEmptySingleDay(t *testing.T) {
	day := *date(2025, time.September, 4)
	sel := models.PeriodSelection{ReferenceYear: 2025, ReferenceMonth: 9, StartDate: day, EndDate: day}
	view, err := FilterPeriod(periodDataset(), testCompany, sel)
	require.ErrorIs(t, err, ErrEmptyFilteredView)
	assert.Empty(t, view.Quality)
	assert.Equal(t, day, view.Selection.StartDate)
}

func TestFilterPeriodErrors(t *testing.T) {
	_, err := FilterPeriod(&Dataset{}, testCompany, models.PeriodSelection{})
	require.ErrorIs(t, err, ErrFilterExhausted)

	_, err = FilterPeriod(periodDataset(), "OUTRA", models.PeriodSelection{})
	require.NoError(t, err)

	_, err = FilterPeriod(periodDataset(), testCompany, models.PeriodSelection{ReferenceYear: 2024, ReferenceMonth: 1})
	require.ErrorIs(t, err, ErrMonthUnavailable)

	_, err = FilterPeriod(periodDataset(), testCompany, models.PeriodSelection{
		ReferenceYear: 2025, ReferenceMonth: 9,
		StartDate: *date(2025, time.September, 9), EndDate: *date(2025, time.September, 3),
	})
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestFilterPeriodUndatedRowsNeverMatch(t *testing.T) {
	ds := &Dataset{Quality: []models.QualityRecord{qrec("ANA", "X", "", nil)}}
	_, err := FilterPeriod(ds, testCompany, models.PeriodSelection{})
	require.ErrorIs(t, err, ErrFilterExhausted)
}

func TestCompanyQualityHasNoBypass(t *testing.T) {
	blank := qrec("BIA", "X", "LEVE", date(2025, time.September, 2))
	blank.Company = ""
	rows := []models.QualityRecord{qrec("ANA", "X", "LEVE", date(2025, time.September, 1)), blank}

	kept := CompanyQuality(rows, "")
	require.Len(t, kept, 1)
	assert.Equal(t, "BIA", kept[0].Inspector)

	kept = CompanyQuality(rows, " starcheck ")
	require.Len(t, kept, 1)
	assert.Equal(t, "ANA", kept[0].Inspector)
}
