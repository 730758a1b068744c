package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starcheck/quality-panel/internal/models"
	"github.com/starcheck/quality-panel/internal/normalize"
)

// HTTPSource reads month batches from a connector service that fronts the
// spreadsheet and file-storage backends:
//
//	GET {BaseURL}/sources/{id}?sheet={Sheet}  -> {"title": "...", "rows": [{...}, ...]}
//
// A 422 answer with code NAMED_SOURCE_MISSING means the file lacks its tab.
type HTTPSource struct {
	BaseURL string
	Sheet   string
	Client  *http.Client
}

// HTTPIndex reads index tables from the same connector:
//
//	GET {BaseURL}/indexes/{id} -> {"entries": [{"url", "month", "active"}]}
type HTTPIndex struct {
	BaseURL string
	Client  *http.Client
}

type batchResponse struct {
	Title string           `json:"title"`
	Rows  []map[string]any `json:"rows"`
}

type indexResponse struct {
	Entries []struct {
		URL    string `json:"url"`
		Month  string `json:"month"`
		Active any    `json:"active"`
	} `json:"entries"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Title string `json:"title"`
			Sheet string `json:"sheet"`
		} `json:"details"`
	} `json:"error"`
}

func (h HTTPSource) Fetch(ctx context.Context, sourceID string) (models.RawBatch, error) {
	var body batchResponse
	endpoint := h.BaseURL + "/sources/" + url.PathEscape(sourceID)
	if h.Sheet != "" {
		endpoint += "?" + url.Values{"sheet": {h.Sheet}}.Encode()
	}
	if err := getJSON(ctx, h.Client, endpoint, &body); err != nil {
		return models.RawBatch{}, err
	}
	title := body.Title
	if title == "" {
		title = sourceID
	}
	rows := make([]models.RawRow, 0, len(body.Rows))
	for _, r := range body.Rows {
		rows = append(rows, models.RawRow(r))
	}
	return models.RawBatch{Title: title, Rows: rows}, nil
}

func (h HTTPIndex) ReadIndex(ctx context.Context, indexID string) ([]models.IndexEntry, error) {
	var body indexResponse
	if err := getJSON(ctx, h.Client, h.BaseURL+"/indexes/"+url.PathEscape(indexID), &body); err != nil {
		return nil, err
	}
	out := make([]models.IndexEntry, 0, len(body.Entries))
	for _, e := range body.Entries {
		active := e.Active == nil || normalize.IsYes(e.Active)
		out = append(out, models.IndexEntry{
			SourceRef:  strings.TrimSpace(e.URL),
			MonthLabel: strings.TrimSpace(e.Month),
			Active:     active,
		})
	}
	return out, nil
}

func getJSON(ctx context.Context, client *http.Client, endpoint string, out any) error {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrSourceNotFound, endpoint)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		var e errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error.Code == "NAMED_SOURCE_MISSING" {
			return &NamedSourceMissingError{Title: e.Error.Details.Title, Sheet: e.Error.Details.Sheet}
		}
		return fmt.Errorf("connector http error: %s", resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("connector http error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode connector response: %w", err)
	}
	return nil
}
