package normalize

import (
	"sort"
	"strings"
)

type Field string

const (
	FieldDate         Field = "date"
	FieldLicensePlate Field = "license_plate"
	FieldInspector    Field = "inspector"
	FieldUnit         Field = "unit"
	FieldErrorCode    Field = "error_code"
	FieldSeverity     Field = "severity"
	FieldObservation  Field = "observation"
	FieldAnalyst      Field = "analyst"
	FieldCompany      Field = "company"
	FieldChassis      Field = "chassis"
	FieldExpert       Field = "expert"
	FieldTypist       Field = "typist"
)

// Alias maps header spellings to one canonical field. Names are compared
// after trimming and upper-casing; Prefix, when set, matches any header
// starting with it.
type Alias struct {
	Field  Field
	Names  []string
	Prefix string
}

type AliasTable []Alias

var QualityAliases = AliasTable{
	{Field: FieldDate, Names: []string{"DATA"}},
	{Field: FieldLicensePlate, Names: []string{"PLACA"}},
	{Field: FieldInspector, Names: []string{"VISTORIADOR", "VISTORIADORES"}},
	{Field: FieldUnit, Names: []string{"UNIDADE", "CIDADE"}},
	{Field: FieldErrorCode, Names: []string{"ERRO", "ERROS"}},
	{Field: FieldSeverity, Prefix: "GRAVIDADE"},
	{Field: FieldObservation, Names: []string{"OBSERVAÇÃO", "OBSERVACAO", "OBS"}},
	{Field: FieldAnalyst, Names: []string{"ANALISTA"}},
	{Field: FieldCompany, Names: []string{"EMPRESA", "MARCA"}},
}

var ProductionAliases = AliasTable{
	{Field: FieldDate, Names: []string{"DATA"}},
	{Field: FieldUnit, Names: []string{"UNIDADE", "CIDADE"}},
	{Field: FieldChassis, Names: []string{"CHASSI"}},
	{Field: FieldExpert, Names: []string{"PERITO"}},
	{Field: FieldTypist, Names: []string{"DIGITADOR"}},
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\ufeff", "")
	return strings.ToUpper(strings.TrimSpace(h))
}

// rank returns the priority of a header for this alias (lower wins) or -1.
func (a Alias) rank(header string) int {
	for i, n := range a.Names {
		if header == n {
			return i
		}
	}
	if a.Prefix != "" && strings.HasPrefix(header, a.Prefix) {
		return len(a.Names)
	}
	return -1
}

// Resolve maps each canonical field to the raw header that feeds it. When
// several headers match a field, the earlier-declared name wins, then the
// lexicographically smaller header.
func (t AliasTable) Resolve(headers []string) map[Field]string {
	sorted := append([]string(nil), headers...)
	sort.Strings(sorted)

	out := map[Field]string{}
	best := map[Field]int{}
	for _, h := range sorted {
		norm := normalizeHeader(h)
		for _, a := range t {
			r := a.rank(norm)
			if r < 0 {
				continue
			}
			if prev, ok := best[a.Field]; ok && prev <= r {
				continue
			}
			best[a.Field] = r
			out[a.Field] = h
		}
	}
	return out
}
