package service

import "errors"

var (
	// ErrFilterExhausted means no Quality row carries a valid date after the
	// company filter, so no reference month exists.
	ErrFilterExhausted = errors.New("no reference month available")
	// ErrEmptyFilteredView means months exist but the selection matched no
	// Quality row.
	ErrEmptyFilteredView = errors.New("no quality records for the selected period and filters")
	ErrMonthUnavailable  = errors.New("reference month not present in quality data")
	ErrInvalidRange      = errors.New("start date after end date")
	ErrNoDataset         = errors.New("dataset not loaded")
	ErrNoQualitySource   = errors.New("no quality source could be loaded")
)

const (
	KindSourceReadFailure  = "SOURCE_READ_FAILURE"
	KindNamedSourceMissing = "NAMED_SOURCE_MISSING"
)
