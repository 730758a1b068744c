package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string, sheets map[string][][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestResolveSourceID(t *testing.T) {
	assert.Equal(t, "1AbC_d-9xyz", ResolveSourceID("https://docs.google.com/spreadsheets/d/1AbC_d-9xyz/edit#gid=0"))
	assert.Equal(t, "qualidade_2025_09.xlsx", ResolveSourceID("  qualidade_2025_09.xlsx "))
	assert.Equal(t, "", ResolveSourceID("   "))
}

func TestFileSourceWorkbook(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "Qualidade Setembro.xlsx"), map[string][][]any{
		"GERAL": {
			{"DATA", "VISTORIADOR", "ERRO", ""},
			{45903, "ana", "foto", "ignored"},
			{},
			{"05/09/2025", "bruno"},
		},
	})

	src := FileSource{Dir: dir, Sheet: "geral"}
	batch, err := src.Fetch(context.Background(), "Qualidade Setembro.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "Qualidade Setembro", batch.Title)
	require.Len(t, batch.Rows, 2)
	assert.Equal(t, "45903", batch.Rows[0]["DATA"])
	assert.Equal(t, "ana", batch.Rows[0]["VISTORIADOR"])
	assert.Equal(t, "", batch.Rows[1]["ERRO"])
	assert.NotContains(t, batch.Rows[0], "")
}

func TestFileSourceMissingSheet(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "q.xlsx"), map[string][][]any{
		"RESUMO": {{"A"}, {"1"}},
	})
	_, err := FileSource{Dir: dir, Sheet: "GERAL"}.Fetch(context.Background(), "q")
	var missing *NamedSourceMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "q", missing.Title)
	assert.Equal(t, "GERAL", missing.Sheet)
}

func TestFileSourceFirstSheetAndCSV(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "prod.xlsx"), map[string][][]any{
		"Planilha1": {{"DATA", "CHASSI"}, {"2025-09-01", "AAA"}},
	})
	batch, err := FileSource{Dir: dir}.Fetch(context.Background(), "prod.xlsx")
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, "AAA", batch.Rows[0]["CHASSI"])

	require.NoError(t, os.WriteFile(filepath.Join(dir, "prod2.csv"), []byte("\ufeffDATA,CHASSI\n2025-09-02,BBB\n,\n"), 0o644))
	batch, err = FileSource{Dir: dir}.Fetch(context.Background(), "prod2")
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, "BBB", batch.Rows[0]["CHASSI"])
}

func TestFileSourceErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.pdf"), []byte("%PDF"), 0o644))

	_, err := FileSource{Dir: dir}.Fetch(context.Background(), "notes.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = FileSource{Dir: dir}.Fetch(context.Background(), "missing.xlsx")
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestFileIndex(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "index.xlsx"), map[string][][]any{
		"ARQUIVOS": {
			{"url", "Mês", "Ativo"},
			{"https://docs.google.com/spreadsheets/d/abc/edit", "2025-08", "sim"},
			{"q_2025_09.xlsx", "2025-09", "N"},
		},
	})
	entries, err := FileIndex{Dir: dir, Sheet: "ARQUIVOS"}.ReadIndex(context.Background(), "index.xlsx")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2025-08", entries[0].MonthLabel)
	assert.True(t, entries[0].Active)
	assert.False(t, entries[1].Active)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "idx.csv"), []byte("URL,MES\na.xlsx,2025-09\n"), 0o644))
	entries, err = FileIndex{Dir: dir}.ReadIndex(context.Background(), "idx.csv")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Active)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/sources/ok":
			_, _ = w.Write([]byte(`{"title":"Produção 09/2025","rows":[{"DATA":45901,"CHASSI":"aaa"}]}`))
		case "/sources/tabbed":
			if r.URL.Query().Get("sheet") != "GERAL" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"title":"Qualidade 09/2025","rows":[]}`))
		case "/sources/notab":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":{"code":"NAMED_SOURCE_MISSING","message":"no tab","details":{"title":"Q 09","sheet":"GERAL"}}}`))
		case "/indexes/prod":
			_, _ = w.Write([]byte(`{"entries":[{"url":"ok","month":"2025-09","active":"SIM"},{"url":"x","month":"2025-08","active":false},{"url":"y","month":"2025-07"}]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	src := HTTPSource{BaseURL: srv.URL}
	batch, err := src.Fetch(context.Background(), "ok")
	require.NoError(t, err)
	assert.Equal(t, "Produção 09/2025", batch.Title)
	require.Len(t, batch.Rows, 1)
	assert.Equal(t, float64(45901), batch.Rows[0]["DATA"])

	_, err = src.Fetch(context.Background(), "notab")
	var missing *NamedSourceMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Q 09", missing.Title)

	_, err = src.Fetch(context.Background(), "boom")
	require.Error(t, err)

	_, err = src.Fetch(context.Background(), "tabbed")
	require.Error(t, err)
	tabbed, err := HTTPSource{BaseURL: srv.URL, Sheet: "GERAL"}.Fetch(context.Background(), "tabbed")
	require.NoError(t, err)
	assert.Equal(t, "Qualidade 09/2025", tabbed.Title)

	entries, err := HTTPIndex{BaseURL: srv.URL}.ReadIndex(context.Background(), "prod")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Active)
	assert.False(t, entries[1].Active)
	assert.True(t, entries[2].Active)
}
