package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/starcheck/quality-panel/internal/models"
	"github.com/starcheck/quality-panel/internal/normalize"
)

// View is one render's filtered slice of the dataset. UnitOptions and
// InspectorOptions are taken after the day range but before the unit and
// inspector filters, so a selection UI can offer every value in the period.
type View struct {
	Selection        models.PeriodSelection
	Quality          []models.QualityRecord
	Production       []models.ProductionRecord
	UnitOptions      []string
	InspectorOptions []string
}

// CompanyQuality keeps the Quality rows whose company equals company exactly.
func CompanyQuality(records []models.QualityRecord, company string) []models.QualityRecord {
	company = normalize.Upper(company)
	out := make([]models.QualityRecord, 0, len(records))
	for _, r := range records {
		if r.Company == company {
			out = append(out, r)
		}
	}
	return out
}

// AvailableMonths lists the distinct (year, month) pairs carried by valid
// Quality dates, oldest first, with each month's first and last date.
func AvailableMonths(records []models.QualityRecord) []models.MonthOption {
	byMonth := map[models.YearMonth]*models.MonthOption{}
	for _, r := range records {
		if r.Date == nil {
			continue
		}
		d := *r.Date
		ym := models.YearMonth{Year: d.Year(), Month: int(d.Month())}
		opt, ok := byMonth[ym]
		if !ok {
			byMonth[ym] = &models.MonthOption{
				Label:     fmt.Sprintf("%02d/%04d", ym.Month, ym.Year),
				Year:      ym.Year,
				Month:     ym.Month,
				FirstDate: d,
				LastDate:  d,
			}
			continue
		}
		if d.Before(opt.FirstDate) {
			opt.FirstDate = d
		}
		if d.After(opt.LastDate) {
			opt.LastDate = d
		}
	}

	out := make([]models.MonthOption, 0, len(byMonth))
	for _, opt := range byMonth {
		out = append(out, *opt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// ResolveSelection fills the defaults of sel against the available months:
// a zero reference month means the latest month, zero bounds mean the
// month's first and last Quality dates.
func ResolveSelection(months []models.MonthOption, sel models.PeriodSelection) (models.PeriodSelection, error) {
	if len(months) == 0 {
		return sel, ErrFilterExhausted
	}
	var month *models.MonthOption
	if sel.ReferenceMonth == 0 {
		month = &months[len(months)-1]
	} else {
		for i := range months {
			if months[i].Year == sel.ReferenceYear && months[i].Month == sel.ReferenceMonth {
				month = &months[i]
				break
			}
		}
		if month == nil {
			return sel, fmt.Errorf("%w: %02d/%04d", ErrMonthUnavailable, sel.ReferenceMonth, sel.ReferenceYear)
		}
	}
	sel.ReferenceYear = month.Year
	sel.ReferenceMonth = month.Month
	if sel.StartDate.IsZero() {
		sel.StartDate = month.FirstDate
	}
	if sel.EndDate.IsZero() {
		sel.EndDate = month.LastDate
	}
	sel.StartDate = dayOf(sel.StartDate)
	sel.EndDate = dayOf(sel.EndDate)
	if sel.StartDate.After(sel.EndDate) {
		return sel, ErrInvalidRange
	}
	sel.Units = upperAll(sel.Units)
	sel.Inspectors = upperAll(sel.Inspectors)
	return sel, nil
}

// FilterPeriod applies the company filter, resolves the selection and
// filters both datasets with the same month, day, unit and inspector
// predicates. An empty Quality result is ErrEmptyFilteredView; the view is
// still returned so callers can show the resolved selection.
func FilterPeriod(ds *Dataset, company string, sel models.PeriodSelection) (View, error) {
	quality := CompanyQuality(ds.Quality, company)
	resolved, err := ResolveSelection(AvailableMonths(quality), sel)
	if err != nil {
		return View{Selection: resolved}, err
	}
	view := View{Selection: resolved}
	inPeriod := func(d *time.Time) bool {
		if d == nil {
			return false
		}
		if d.Year() != resolved.ReferenceYear || int(d.Month()) != resolved.ReferenceMonth {
			return false
		}
		day := dayOf(*d)
		return !day.Before(resolved.StartDate) && !day.After(resolved.EndDate)
	}

	units := map[string]struct{}{}
	inspectors := map[string]struct{}{}
	var period []models.QualityRecord
	for _, r := range quality {
		if !inPeriod(r.Date) {
			continue
		}
		period = append(period, r)
		units[r.Unit] = struct{}{}
		inspectors[r.Inspector] = struct{}{}
	}
	view.UnitOptions = sortedKeys(units)
	view.InspectorOptions = sortedKeys(inspectors)

	unitSet := toSet(resolved.Units)
	inspectorSet := toSet(resolved.Inspectors)
	for _, r := range period {
		if matches(unitSet, r.Unit) && matches(inspectorSet, r.Inspector) {
			view.Quality = append(view.Quality, r)
		}
	}
	for _, p := range ds.Production {
		if inPeriod(p.Date) && matches(unitSet, p.Unit) && matches(inspectorSet, p.Inspector) {
			view.Production = append(view.Production, p)
		}
	}

	if len(view.Quality) == 0 {
		return view, ErrEmptyFilteredView
	}
	return view, nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func upperAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if u := strings.ToUpper(strings.TrimSpace(v)); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// matches treats an empty set as "no filter".
func matches(set map[string]struct{}, v string) bool {
	if set == nil {
		return true
	}
	_, ok := set[v]
	return ok
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
