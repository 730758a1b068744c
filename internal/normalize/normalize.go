// Package normalize turns raw spreadsheet rows into canonical Quality and
// Production records. Every function here is pure: the same raw row always
// yields the same record.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cast"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Spreadsheet serial dates count days from this epoch.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Largest serial spreadsheets accept (9999-12-31).
const maxSerial = 2958465

var dateLayouts = []string{
	"2/1/2006",
	"2006-1-2",
	"2-1-2006",
}

var yesTokens = map[string]struct{}{
	"S": {}, "SIM": {}, "Y": {}, "YES": {}, "TRUE": {}, "1": {},
}

var criticalSeverities = map[string]struct{}{
	"GRAVE":      {},
	"GRAVISSIMO": {},
}

// Upper trims and upper-cases a raw cell. Nil and NaN become "".
func Upper(v any) string {
	if isNull(v) {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(cast.ToString(v)))
}

// Text trims a raw cell without changing its case.
func Text(v any) string {
	if isNull(v) {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// IsYes reports whether a flag cell holds one of the accepted "true" tokens.
func IsYes(v any) bool {
	_, ok := yesTokens[Upper(v)]
	return ok
}

// ParseDate tries a spreadsheet serial, then the literal day-first and ISO
// layouts, then a best-effort parse. Unparsable input yields nil.
func ParseDate(v any) *time.Time {
	if isNull(v) {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return dateOf(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return dateOf(*t)
	case bool:
		return nil
	case string:
		return parseDateText(t)
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return fromSerial(f)
	}
	return parseDateText(cast.ToString(v))
}

func parseDateText(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromSerial(f)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOf(t)
		}
	}
	if t, err := cast.ToTimeE(s); err == nil {
		return dateOf(t)
	}
	return nil
}

func fromSerial(f float64) *time.Time {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	days := int(f)
	if days < 0 || days > maxSerial {
		return nil
	}
	d := serialEpoch.AddDate(0, 0, days)
	return &d
}

func dateOf(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// FoldAccents strips combining marks: "GRAVÍSSIMO" becomes "GRAVISSIMO".
func FoldAccents(s string) string {
	tr := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(tr, s)
	if err != nil {
		return s
	}
	return out
}

// IsCritical reports whether a severity belongs to the critical subset
// (Grave or Gravíssimo), ignoring case and accents.
func IsCritical(severity string) bool {
	_, ok := criticalSeverities[FoldAccents(strings.ToUpper(strings.TrimSpace(severity)))]
	return ok
}

func isNull(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(t)
	case float32:
		return math.IsNaN(float64(t))
	}
	return false
}
