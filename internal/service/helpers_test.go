package service

import (
	"time"

	"github.com/starcheck/quality-panel/internal/models"
)

const testCompany = "STARCHECK"

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func qrec(inspector, code, severity string, when *time.Time) models.QualityRecord {
	return models.QualityRecord{
		Date:      when,
		Inspector: inspector,
		ErrorCode: code,
		Severity:  severity,
		Company:   testCompany,
	}
}

func prec(inspector, unit, chassis string, when *time.Time) models.ProductionRecord {
	return models.ProductionRecord{Date: when, Inspector: inspector, Unit: unit, Chassis: chassis}
}

func holderWith(ds *Dataset) *DatasetHolder {
	h := &DatasetHolder{}
	h.Store(ds)
	return h
}
