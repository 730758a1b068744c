package service

import (
	"sort"

	"github.com/starcheck/quality-panel/internal/models"
	"github.com/starcheck/quality-panel/internal/normalize"
)

const DefaultRankingSize = 5

// Reconcile outer-joins per-inspector Production counts with per-inspector
// Quality counts. Every inspector seen on either side gets exactly one row,
// missing counts are zero, and rates are nil when the chosen denominator is
// zero. Rows are ordered by inspector.
func Reconcile(quality []models.QualityRecord, production []models.ProductionRecord, den models.Denominator) []models.InspectorMetrics {
	byInspector := map[string]*models.InspectorMetrics{}
	get := func(name string) *models.InspectorMetrics {
		m, ok := byInspector[name]
		if !ok {
			m = &models.InspectorMetrics{Inspector: name}
			byInspector[name] = m
		}
		return m
	}
	for _, p := range production {
		m := get(p.Inspector)
		m.GrossInspections++
		if p.IsReinspection {
			m.Reinspections++
		}
	}
	for _, r := range quality {
		m := get(r.Inspector)
		m.Errors++
		if normalize.IsCritical(r.Severity) {
			m.CriticalErrors++
		}
	}

	out := make([]models.InspectorMetrics, 0, len(byInspector))
	for _, m := range byInspector {
		m.NetInspections = m.GrossInspections - m.Reinspections
		d := denominatorOf(*m, den)
		m.ErrorRate = percent(m.Errors, d)
		m.CriticalErrorRate = percent(m.CriticalErrors, d)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Inspector < out[j].Inspector })
	return out
}

func denominatorOf(m models.InspectorMetrics, den models.Denominator) int {
	if den == models.DenominatorNet {
		return m.NetInspections
	}
	return m.GrossInspections
}

// RankInspectors picks the n lowest and n highest error rates among rows
// whose denominator is positive. Rows with an undefined rate are left out.
func RankInspectors(rows []models.InspectorMetrics, den models.Denominator, n int) models.Ranking {
	ranked := make([]models.InspectorMetrics, 0, len(rows))
	for _, r := range rows {
		if denominatorOf(r, den) > 0 && r.ErrorRate != nil {
			ranked = append(ranked, r)
		}
	}
	best := make([]models.InspectorMetrics, len(ranked))
	copy(best, ranked)
	sort.SliceStable(best, func(i, j int) bool {
		if *best[i].ErrorRate != *best[j].ErrorRate {
			return *best[i].ErrorRate < *best[j].ErrorRate
		}
		return best[i].Inspector < best[j].Inspector
	})
	worst := make([]models.InspectorMetrics, len(ranked))
	copy(worst, ranked)
	sort.SliceStable(worst, func(i, j int) bool {
		if *worst[i].ErrorRate != *worst[j].ErrorRate {
			return *worst[i].ErrorRate > *worst[j].ErrorRate
		}
		return worst[i].Inspector < worst[j].Inspector
	})
	if n >= 0 && len(best) > n {
		best = best[:n]
		worst = worst[:n]
	}
	return models.Ranking{Denominator: den, Best: best, Worst: worst}
}
