package normalize

import (
	"github.com/starcheck/quality-panel/internal/models"
)

func headersOf(row models.RawRow) []string {
	out := make([]string, 0, len(row))
	for k := range row {
		out = append(out, k)
	}
	return out
}

func cell(row models.RawRow, cols map[Field]string, f Field) any {
	h, ok := cols[f]
	if !ok {
		return nil
	}
	return row[h]
}

// Quality normalizes one defect row. It reports false when the row has no
// inspector or no error code; such rows never reach an aggregate.
func Quality(row models.RawRow) (models.QualityRecord, bool) {
	cols := QualityAliases.Resolve(headersOf(row))
	rec := models.QualityRecord{
		Date:         ParseDate(cell(row, cols, FieldDate)),
		LicensePlate: Upper(cell(row, cols, FieldLicensePlate)),
		Inspector:    Upper(cell(row, cols, FieldInspector)),
		Unit:         Upper(cell(row, cols, FieldUnit)),
		ErrorCode:    Upper(cell(row, cols, FieldErrorCode)),
		Severity:     Upper(cell(row, cols, FieldSeverity)),
		Analyst:      Upper(cell(row, cols, FieldAnalyst)),
		Company:      Upper(cell(row, cols, FieldCompany)),
		Observation:  Text(cell(row, cols, FieldObservation)),
	}
	if rec.Inspector == "" || rec.ErrorCode == "" {
		return models.QualityRecord{}, false
	}
	return rec, true
}

// Production normalizes one throughput row. The inspector is the expert
// (PERITO) when present, else the typist (DIGITADOR). Sequencing fields are
// left zero; they are assigned over the merged dataset.
func Production(row models.RawRow) models.ProductionRecord {
	cols := ProductionAliases.Resolve(headersOf(row))
	inspector := Upper(cell(row, cols, FieldExpert))
	if inspector == "" {
		inspector = Upper(cell(row, cols, FieldTypist))
	}
	return models.ProductionRecord{
		Date:      ParseDate(cell(row, cols, FieldDate)),
		Unit:      Upper(cell(row, cols, FieldUnit)),
		Chassis:   Upper(cell(row, cols, FieldChassis)),
		Inspector: inspector,
	}
}

// QualityBatch normalizes a batch in order and returns the kept records with
// the number of dropped rows.
func QualityBatch(rows []models.RawRow) ([]models.QualityRecord, int) {
	out := make([]models.QualityRecord, 0, len(rows))
	dropped := 0
	for _, r := range rows {
		rec, ok := Quality(r)
		if !ok {
			dropped++
			continue
		}
		out = append(out, rec)
	}
	return out, dropped
}

// ProductionHasSchema reports whether a batch carries the columns a
// production sheet needs: date, unit, chassis and one inspector column.
func ProductionHasSchema(rows []models.RawRow) bool {
	seen := map[string]struct{}{}
	var headers []string
	for _, r := range rows {
		for k := range r {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			headers = append(headers, k)
		}
	}
	cols := ProductionAliases.Resolve(headers)
	for _, f := range []Field{FieldDate, FieldUnit, FieldChassis} {
		if _, ok := cols[f]; !ok {
			return false
		}
	}
	_, hasExpert := cols[FieldExpert]
	_, hasTypist := cols[FieldTypist]
	return hasExpert || hasTypist
}

// ProductionBatch normalizes a batch in order. A batch missing its required
// columns yields no records and ok=false.
func ProductionBatch(rows []models.RawRow) (out []models.ProductionRecord, ok bool) {
	if len(rows) == 0 {
		return nil, true
	}
	if !ProductionHasSchema(rows) {
		return nil, false
	}
	out = make([]models.ProductionRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, Production(r))
	}
	return out, true
}
