// Package sources holds the collaborators that read source indexes and
// per-month row batches. The loader only sees RowSource and IndexReader and
// never branches on the backing mechanism, only on the returned error.
package sources

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/starcheck/quality-panel/internal/models"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrSourceNotFound      = errors.New("source not found")
)

// NamedSourceMissingError means the source was fetched but lacks the tab
// that holds its rows.
type NamedSourceMissingError struct {
	Title string
	Sheet string
}

func (e *NamedSourceMissingError) Error() string {
	return fmt.Sprintf("source %q has no %q sheet", e.Title, e.Sheet)
}

type RowSource interface {
	Fetch(ctx context.Context, sourceID string) (models.RawBatch, error)
}

type IndexReader interface {
	ReadIndex(ctx context.Context, indexID string) ([]models.IndexEntry, error)
}

var sheetURLRe = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)

// ResolveSourceID extracts the document id from a sheet URL; any other
// reference is returned trimmed. An empty result means "skip this entry".
func ResolveSourceID(ref string) string {
	ref = strings.TrimSpace(ref)
	if m := sheetURLRe.FindStringSubmatch(ref); m != nil {
		return m[1]
	}
	return ref
}
