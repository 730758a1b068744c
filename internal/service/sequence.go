package service

import (
	"sort"

	"github.com/starcheck/quality-panel/internal/models"
)

// SequenceProduction orders the full production dataset by (date, chassis)
// and numbers every occurrence of a chassis from 0. Only occurrence 0 is a
// first pass; the grouping ignores unit and inspector. Rows without a date
// sort after all dated rows. A blank chassis is a group of its own, like
// any other value.
//
// It must run once over the merged dataset, before any period filter.
func SequenceProduction(records []models.ProductionRecord) []models.ProductionRecord {
	out := make([]models.ProductionRecord, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Date, out[j].Date
		switch {
		case di == nil && dj != nil:
			return false
		case di != nil && dj == nil:
			return true
		case di != nil && dj != nil && !di.Equal(*dj):
			return di.Before(*dj)
		}
		return out[i].Chassis < out[j].Chassis
	})

	seen := map[string]int{}
	for i := range out {
		c := out[i].Chassis
		out[i].SequenceIndex = seen[c]
		out[i].IsReinspection = seen[c] >= 1
		seen[c]++
	}
	return out
}
