package service

import (
	"sort"

	"github.com/starcheck/quality-panel/internal/models"
)

// PreviousMonth is the calendar month before ym; January rolls back to the
// previous December.
func PreviousMonth(ym models.YearMonth) models.YearMonth {
	if ym.Month == 1 {
		return models.YearMonth{Year: ym.Year - 1, Month: 12}
	}
	return models.YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// MonthOverMonth compares error counts per inspector between ref and the
// month before it over all Quality rows, ignoring the period and unit or
// inspector filters. Rows are ordered by current count, highest first.
func MonthOverMonth(quality []models.QualityRecord, ref models.YearMonth) models.Comparison {
	prev := PreviousMonth(ref)
	type counts struct{ current, previous int }
	byInspector := map[string]*counts{}
	for _, r := range quality {
		if r.Date == nil {
			continue
		}
		ym := models.YearMonth{Year: r.Date.Year(), Month: int(r.Date.Month())}
		if ym != ref && ym != prev {
			continue
		}
		c, ok := byInspector[r.Inspector]
		if !ok {
			c = &counts{}
			byInspector[r.Inspector] = c
		}
		if ym == ref {
			c.current++
		} else {
			c.previous++
		}
	}

	out := models.Comparison{Current: ref, Previous: prev, Rows: make([]models.ComparisonRow, 0, len(byInspector))}
	for name, c := range byInspector {
		delta := c.current - c.previous
		row := models.ComparisonRow{
			Inspector:        name,
			Current:          c.current,
			Previous:         c.previous,
			Delta:            delta,
			PercentVariation: percent(delta, c.previous),
			Status:           models.StatusUnchanged,
		}
		switch {
		case delta < 0:
			row.Status = models.StatusImproved
		case delta > 0:
			row.Status = models.StatusWorsened
		}
		out.Rows = append(out.Rows, row)
	}
	sort.Slice(out.Rows, func(i, j int) bool {
		if out.Rows[i].Current != out.Rows[j].Current {
			return out.Rows[i].Current > out.Rows[j].Current
		}
		return out.Rows[i].Inspector < out.Rows[j].Inspector
	})
	return out
}
