package service

import (
	"github.com/starcheck/quality-panel/internal/models"
)

const (
	paretoCeiling       = 30
	paretoFloor         = 3
	paretoDefaultK      = 10
	whatIfDefaultCutoff = 8
	DefaultReductionPct = 25.0
)

// ParetoBounds returns the largest K the view allows and the default K.
func ParetoBounds(distinct int) (maxK, defaultK int) {
	maxK = minInt(paretoCeiling, distinct)
	return maxK, minInt(paretoDefaultK, maxK)
}

// Pareto ranks error codes by count, keeps the top k and accumulates counts
// over that subset. Percentages are relative to the subset total, so the
// last row is always 100. A zero k selects the default; other values are
// clamped to [min(3, maxK), maxK].
func Pareto(quality []models.QualityRecord, k int) models.ParetoResult {
	counts := countBy(quality, func(r models.QualityRecord) string { return r.ErrorCode })
	maxK, defaultK := ParetoBounds(len(counts))
	switch {
	case k == 0:
		k = defaultK
	case k > maxK:
		k = maxK
	case k < minInt(paretoFloor, maxK):
		k = minInt(paretoFloor, maxK)
	}
	res := models.ParetoResult{K: k, MaxK: maxK, Rows: make([]models.ParetoRow, 0, k)}
	top := counts[:k]
	total := 0
	for _, c := range top {
		total += c.Count
	}
	cum := 0
	for i, c := range top {
		cum += c.Count
		pct := float64(cum) / float64(total) * 100
		if i == len(top)-1 {
			pct = 100
		}
		res.Rows = append(res.Rows, models.ParetoRow{ErrorCode: c.Key, Count: c.Count, Cumulative: cum, CumulativePct: pct})
	}
	return res
}

// ParetoWhatIf projects the drop in total errors if the top cutoff codes
// fell by reductionPct. Zero cutoff selects min(8, rows); values are
// clamped to [1, rows] and reductionPct to [0, 100]. Nil when the Pareto
// has no rows.
func ParetoWhatIf(res models.ParetoResult, cutoff int, reductionPct float64) *models.WhatIf {
	n := len(res.Rows)
	if n == 0 {
		return nil
	}
	switch {
	case cutoff == 0:
		cutoff = minInt(whatIfDefaultCutoff, n)
	case cutoff > n:
		cutoff = n
	case cutoff < 1:
		cutoff = 1
	}
	if reductionPct < 0 {
		reductionPct = 0
	}
	if reductionPct > 100 {
		reductionPct = 100
	}
	covered := res.Rows[cutoff-1].CumulativePct
	return &models.WhatIf{
		Cutoff:                cutoff,
		ReductionPct:          reductionPct,
		CoveredPct:            covered,
		ProjectedReductionPct: covered * reductionPct / 100,
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
