package service

import (
	"regexp"
	"sort"
	"time"

	"github.com/starcheck/quality-panel/internal/models"
	"github.com/starcheck/quality-panel/internal/normalize"
)

const (
	DefaultTopErrors     = 5
	ReincidenceThreshold = 3
	criticalAlertCount   = 5
)

var fraudPattern = regexp.MustCompile(`\bTENTATIVA DE FRAUDE\b`)

var weekdayLabels = [7]string{"Seg", "Ter", "Qua", "Qui", "Sex", "Sáb", "Dom"}

// ComputeKPIs summarizes the filtered Quality view. The gross error rate
// divides by every Production row in the same view and is nil when there
// are none.
func ComputeKPIs(quality []models.QualityRecord, production []models.ProductionRecord) models.KPIs {
	k := models.KPIs{TotalErrors: len(quality), GrossInspections: len(production)}
	critByInspector := map[string]int{}
	inspectors := map[string]struct{}{}
	for _, r := range quality {
		inspectors[r.Inspector] = struct{}{}
		if normalize.IsCritical(r.Severity) {
			k.CriticalErrors++
			critByInspector[r.Inspector]++
		}
	}
	k.InspectorsEvaluated = len(inspectors)
	if k.InspectorsEvaluated > 0 {
		k.MeanErrorsPerInspector = float64(k.TotalErrors) / float64(k.InspectorsEvaluated)
	}
	for _, n := range critByInspector {
		if n >= criticalAlertCount {
			k.InspectorsWithFiveCritical++
		}
	}
	k.GrossErrorRate = percent(k.TotalErrors, k.GrossInspections)
	return k
}

// ErrorsByUnit counts errors per unit and joins the per-unit Production
// count. When no unit has any Production rows the rows carry each unit's
// share of all errors instead of a rate.
func ErrorsByUnit(quality []models.QualityRecord, production []models.ProductionRecord) models.UnitBreakdown {
	inspections := map[string]int{}
	for _, p := range production {
		inspections[p.Unit]++
	}
	counts := countBy(quality, func(r models.QualityRecord) string { return r.Unit })

	out := models.UnitBreakdown{Basis: models.UnitBasisShare, Rows: make([]models.UnitRow, 0, len(counts))}
	for _, c := range counts {
		row := models.UnitRow{Unit: c.Key, Errors: c.Count, Inspections: inspections[c.Key]}
		row.ErrorRate = percent(c.Count, row.Inspections)
		if row.ErrorRate != nil {
			out.Basis = models.UnitBasisRate
		}
		out.Rows = append(out.Rows, row)
	}
	if out.Basis == models.UnitBasisShare {
		for i := range out.Rows {
			out.Rows[i].ErrorShare = percent(out.Rows[i].Errors, len(quality))
		}
	}
	return out
}

func CountBySeverity(quality []models.QualityRecord) []models.CountRow {
	return countBy(quality, func(r models.QualityRecord) string { return r.Severity })
}

func CountByAnalyst(quality []models.QualityRecord) []models.CountRow {
	return countBy(quality, func(r models.QualityRecord) string { return r.Analyst })
}

// TopErrors returns the n most frequent error codes.
func TopErrors(quality []models.QualityRecord, n int) []models.CountRow {
	rows := countBy(quality, func(r models.QualityRecord) string { return r.ErrorCode })
	if n >= 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// Reincidence lists (inspector, error code) pairs seen at least minCount times.
func Reincidence(quality []models.QualityRecord, minCount int) []models.ReincidenceRow {
	type pair struct{ inspector, code string }
	counts := map[pair]int{}
	for _, r := range quality {
		counts[pair{r.Inspector, r.ErrorCode}]++
	}
	out := []models.ReincidenceRow{}
	for p, n := range counts {
		if n >= minCount {
			out = append(out, models.ReincidenceRow{Inspector: p.inspector, ErrorCode: p.code, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Inspector != out[j].Inspector {
			return out[i].Inspector < out[j].Inspector
		}
		return out[i].ErrorCode < out[j].ErrorCode
	})
	return out
}

// Calibration gives each analyst's share of errors marked critical.
func Calibration(quality []models.QualityRecord) []models.CalibrationRow {
	byAnalyst := map[string]*models.CalibrationRow{}
	for _, r := range quality {
		row, ok := byAnalyst[r.Analyst]
		if !ok {
			row = &models.CalibrationRow{Analyst: r.Analyst}
			byAnalyst[r.Analyst] = row
		}
		row.Errors++
		if normalize.IsCritical(r.Severity) {
			row.CriticalErrors++
		}
	}
	out := make([]models.CalibrationRow, 0, len(byAnalyst))
	for _, row := range byAnalyst {
		row.CriticalRate = float64(row.CriticalErrors) / float64(row.Errors) * 100
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CriticalRate != out[j].CriticalRate {
			return out[i].CriticalRate > out[j].CriticalRate
		}
		return out[i].Analyst < out[j].Analyst
	})
	return out
}

// WeekdayDistribution always returns seven buckets, Monday first. Rows
// without a date are not counted.
func WeekdayDistribution(quality []models.QualityRecord) []models.WeekdayRow {
	out := make([]models.WeekdayRow, 7)
	for i := range out {
		out[i] = models.WeekdayRow{Weekday: i, Label: weekdayLabels[i]}
	}
	for _, r := range quality {
		if r.Date == nil {
			continue
		}
		out[mondayIndex(r.Date.Weekday())].Count++
	}
	return out
}

func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// UnitSeverityHeatmap counts errors per (unit, severity) cell.
func UnitSeverityHeatmap(quality []models.QualityRecord) []models.HeatmapCell {
	type cell struct{ unit, severity string }
	counts := map[cell]int{}
	for _, r := range quality {
		counts[cell{r.Unit, r.Severity}]++
	}
	out := make([]models.HeatmapCell, 0, len(counts))
	for c, n := range counts {
		out = append(out, models.HeatmapCell{Unit: c.unit, Severity: c.severity, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Unit != out[j].Unit {
			return out[i].Unit < out[j].Unit
		}
		return out[i].Severity < out[j].Severity
	})
	return out
}

// FraudAttempts returns the rows whose error code names a fraud attempt,
// ordered by date, unit and inspector.
func FraudAttempts(quality []models.QualityRecord) []models.QualityRecord {
	out := []models.QualityRecord{}
	for _, r := range quality {
		if fraudPattern.MatchString(r.ErrorCode) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := compareDates(out[i].Date, out[j].Date); c != 0 {
			return c < 0
		}
		if out[i].Unit != out[j].Unit {
			return out[i].Unit < out[j].Unit
		}
		return out[i].Inspector < out[j].Inspector
	})
	return out
}

// DetailRows returns a copy of the view ordered by date; undated rows last.
func DetailRows(quality []models.QualityRecord) []models.QualityRecord {
	out := make([]models.QualityRecord, len(quality))
	copy(out, quality)
	sort.SliceStable(out, func(i, j int) bool {
		return compareDates(out[i].Date, out[j].Date) < 0
	})
	return out
}

// countBy groups by key, descending by count then ascending by key.
func countBy(quality []models.QualityRecord, key func(models.QualityRecord) string) []models.CountRow {
	counts := map[string]int{}
	for _, r := range quality {
		counts[key(r)]++
	}
	out := make([]models.CountRow, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.CountRow{Key: k, Count: n})
	}
	sortCounts(out)
	return out
}

func sortCounts(rows []models.CountRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
}

// compareDates orders nil after every date.
func compareDates(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	}
	return 0
}

// percent is num/den*100, or nil when den is zero.
func percent(num, den int) *float64 {
	if den == 0 {
		return nil
	}
	v := float64(num) / float64(den) * 100
	return &v
}
