package models

import "time"

type QualityRecord struct {
	Date         *time.Time `json:"date"`
	LicensePlate string     `json:"license_plate"`
	Inspector    string     `json:"inspector"`
	Unit         string     `json:"unit"`
	ErrorCode    string     `json:"error_code"`
	Severity     string     `json:"severity"`
	Analyst      string     `json:"analyst"`
	Company      string     `json:"company"`
	Observation  string     `json:"observation"`
}

type ProductionRecord struct {
	Date           *time.Time `json:"date"`
	Unit           string     `json:"unit"`
	Chassis        string     `json:"chassis"`
	Inspector      string     `json:"inspector"`
	SequenceIndex  int        `json:"sequence_index"`
	IsReinspection bool       `json:"is_reinspection"`
}

// RawRow is one spreadsheet row keyed by its source column header.
type RawRow map[string]any

type RawBatch struct {
	Title string   `json:"title"`
	Rows  []RawRow `json:"rows"`
}

type IndexEntry struct {
	SourceRef  string `json:"source_ref"`
	MonthLabel string `json:"month_label"`
	Active     bool   `json:"active"`
}

type SourceLoad struct {
	SourceID string `json:"source_id"`
	Month    string `json:"month"`
	Title    string `json:"title"`
	Rows     int    `json:"rows"`
	Line     string `json:"line"`
}

type SourceFailure struct {
	SourceID string `json:"source_id"`
	Month    string `json:"month"`
	Kind     string `json:"kind"`
	Error    string `json:"error"`
}

type DatasetLoad struct {
	Loaded []SourceLoad    `json:"loaded"`
	Failed []SourceFailure `json:"failed"`
}

type LoadSummary struct {
	Quality    DatasetLoad `json:"quality"`
	Production DatasetLoad `json:"production"`
	LoadedAt   time.Time   `json:"loaded_at"`
}

type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// PeriodSelection is the caller's immutable choice of month, day range and filters.
// Zero StartDate/EndDate mean the first/last Quality date of the month.
type PeriodSelection struct {
	ReferenceYear  int       `json:"reference_year"`
	ReferenceMonth int       `json:"reference_month"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Units          []string  `json:"units,omitempty"`
	Inspectors     []string  `json:"inspectors,omitempty"`
}

func (p PeriodSelection) YearMonth() YearMonth {
	return YearMonth{Year: p.ReferenceYear, Month: p.ReferenceMonth}
}

type MonthOption struct {
	Label     string    `json:"label"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	FirstDate time.Time `json:"first_date"`
	LastDate  time.Time `json:"last_date"`
}
