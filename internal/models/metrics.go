package models

type KPIs struct {
	TotalErrors                int      `json:"total_errors"`
	CriticalErrors             int      `json:"critical_errors"`
	InspectorsEvaluated        int      `json:"inspectors_evaluated"`
	MeanErrorsPerInspector     float64  `json:"mean_errors_per_inspector"`
	InspectorsWithFiveCritical int      `json:"inspectors_with_five_critical"`
	GrossInspections           int      `json:"gross_inspections"`
	GrossErrorRate             *float64 `json:"gross_error_rate"`
}

const (
	UnitBasisRate  = "rate"
	UnitBasisShare = "share"
)

// UnitRow carries either ErrorRate (errors per inspection) or ErrorShare
// (contribution to total errors), never both; UnitBreakdown.Basis says which.
type UnitRow struct {
	Unit        string   `json:"unit"`
	Errors      int      `json:"errors"`
	Inspections int      `json:"inspections"`
	ErrorRate   *float64 `json:"error_rate"`
	ErrorShare  *float64 `json:"error_share"`
}

type UnitBreakdown struct {
	Basis string    `json:"basis"`
	Rows  []UnitRow `json:"rows"`
}

type CountRow struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type ReincidenceRow struct {
	Inspector string `json:"inspector"`
	ErrorCode string `json:"error_code"`
	Count     int    `json:"count"`
}

type CalibrationRow struct {
	Analyst        string  `json:"analyst"`
	Errors         int     `json:"errors"`
	CriticalErrors int     `json:"critical_errors"`
	CriticalRate   float64 `json:"critical_rate"`
}

type WeekdayRow struct {
	Weekday int    `json:"weekday"`
	Label   string `json:"label"`
	Count   int    `json:"count"`
}

type HeatmapCell struct {
	Unit     string `json:"unit"`
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

type Denominator string

const (
	DenominatorGross Denominator = "gross"
	DenominatorNet   Denominator = "net"
)

type InspectorMetrics struct {
	Inspector         string   `json:"inspector"`
	GrossInspections  int      `json:"gross_inspections"`
	Reinspections     int      `json:"reinspections"`
	NetInspections    int      `json:"net_inspections"`
	Errors            int      `json:"errors"`
	CriticalErrors    int      `json:"critical_errors"`
	ErrorRate         *float64 `json:"error_rate"`
	CriticalErrorRate *float64 `json:"critical_error_rate"`
}

type Ranking struct {
	Denominator Denominator        `json:"denominator"`
	Best        []InspectorMetrics `json:"best"`
	Worst       []InspectorMetrics `json:"worst"`
}

type ParetoRow struct {
	ErrorCode     string  `json:"error_code"`
	Count         int     `json:"count"`
	Cumulative    int     `json:"cumulative"`
	CumulativePct float64 `json:"cumulative_pct"`
}

type WhatIf struct {
	Cutoff                int     `json:"cutoff"`
	ReductionPct          float64 `json:"reduction_pct"`
	CoveredPct            float64 `json:"covered_pct"`
	ProjectedReductionPct float64 `json:"projected_reduction_pct"`
}

type ParetoResult struct {
	K      int         `json:"k"`
	MaxK   int         `json:"max_k"`
	Rows   []ParetoRow `json:"rows"`
	WhatIf *WhatIf     `json:"what_if,omitempty"`
}

type ComparisonStatus string

const (
	StatusImproved  ComparisonStatus = "Improved"
	StatusWorsened  ComparisonStatus = "Worsened"
	StatusUnchanged ComparisonStatus = "Unchanged"
)

type ComparisonRow struct {
	Inspector        string           `json:"inspector"`
	Current          int              `json:"current"`
	Previous         int              `json:"previous"`
	Delta            int              `json:"delta"`
	PercentVariation *float64         `json:"percent_variation"`
	Status           ComparisonStatus `json:"status"`
}

type Comparison struct {
	Current  YearMonth       `json:"current"`
	Previous YearMonth       `json:"previous"`
	Rows     []ComparisonRow `json:"rows"`
}
