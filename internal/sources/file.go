package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/starcheck/quality-panel/internal/models"
	"github.com/starcheck/quality-panel/internal/normalize"
)

// FileSource reads month sheets from a local directory. Spreadsheets are read
// from Sheet, or from the first sheet when Sheet is empty; CSV files carry a
// single table.
type FileSource struct {
	Dir   string
	Sheet string
}

func (s FileSource) Fetch(ctx context.Context, sourceID string) (models.RawBatch, error) {
	if err := ctx.Err(); err != nil {
		return models.RawBatch{}, err
	}
	path, err := locate(s.Dir, sourceID)
	if err != nil {
		return models.RawBatch{}, err
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	table, err := readTable(path, title, s.Sheet)
	if err != nil {
		return models.RawBatch{}, err
	}
	return models.RawBatch{Title: title, Rows: toRows(table)}, nil
}

// FileIndex reads an index table (URL, MÊS, ATIVO) from a spreadsheet tab or
// a CSV file. Without an ATIVO column every entry is active.
type FileIndex struct {
	Dir   string
	Sheet string
}

func (ix FileIndex) ReadIndex(ctx context.Context, indexID string) ([]models.IndexEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := locate(ix.Dir, indexID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	table, err := readTable(path, title, ix.Sheet)
	if err != nil {
		return nil, err
	}
	return indexEntries(table), nil
}

func indexEntries(table [][]string) []models.IndexEntry {
	if len(table) == 0 {
		return nil
	}
	col := map[string]int{}
	for i, h := range table[0] {
		key := normalize.FoldAccents(normalize.Upper(strings.ReplaceAll(h, "\ufeff", "")))
		if _, ok := col[key]; !ok {
			col[key] = i
		}
	}
	get := func(rec []string, name string) (string, bool) {
		pos, ok := col[name]
		if !ok {
			return "", false
		}
		if pos >= len(rec) {
			return "", true
		}
		return strings.TrimSpace(rec[pos]), true
	}

	var out []models.IndexEntry
	for _, rec := range table[1:] {
		if isEmptyRow(rec) {
			continue
		}
		ref, _ := get(rec, "URL")
		month, _ := get(rec, "MES")
		active := true
		if v, ok := get(rec, "ATIVO"); ok {
			active = normalize.IsYes(v)
		}
		out = append(out, models.IndexEntry{SourceRef: ref, MonthLabel: month, Active: active})
	}
	return out
}

// locate maps a source id to a file under dir. Ids without an extension are
// tried as .xlsx and then .csv.
func locate(dir, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrSourceNotFound
	}
	base := filepath.Join(dir, filepath.Clean("/"+id))
	candidates := []string{base}
	if filepath.Ext(base) == "" {
		candidates = append(candidates, base+".xlsx", base+".csv")
	}
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSourceNotFound, id)
}

func readTable(path, title, sheet string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return readWorkbook(path, title, sheet)
	case ".csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFileType, filepath.Ext(path), title)
	}
}

func readWorkbook(path, title, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", title, err)
	}
	defer f.Close()

	name := ""
	if sheet == "" {
		name = f.GetSheetName(0)
	} else {
		for _, s := range f.GetSheetList() {
			if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(sheet)) {
				name = s
				break
			}
		}
	}
	if name == "" {
		return nil, &NamedSourceMissingError{Title: title, Sheet: sheet}
	}

	// Raw values keep date cells as serial numbers instead of locale text.
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s/%s: %w", title, name, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	var out [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", filepath.Base(path), err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// toRows turns a header-first table into keyed rows. Blank headers are
// ignored, duplicate headers keep their first column, short rows are padded
// and fully blank rows are skipped.
func toRows(table [][]string) []models.RawRow {
	if len(table) == 0 {
		return nil
	}
	type column struct {
		name string
		pos  int
	}
	var cols []column
	seen := map[string]struct{}{}
	for i, h := range table[0] {
		h = strings.TrimSpace(strings.ReplaceAll(h, "\ufeff", ""))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		cols = append(cols, column{name: h, pos: i})
	}

	out := make([]models.RawRow, 0, len(table)-1)
	for _, rec := range table[1:] {
		if isEmptyRow(rec) {
			continue
		}
		row := make(models.RawRow, len(cols))
		for _, c := range cols {
			v := ""
			if c.pos < len(rec) {
				v = rec[c.pos]
			}
			row[c.name] = v
		}
		out = append(out, row)
	}
	return out
}

func isEmptyRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
