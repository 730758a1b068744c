package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/starcheck/quality-panel/internal/models"
	"github.com/starcheck/quality-panel/internal/normalize"
)

// Store reads source indexes kept in Postgres. Computed metrics are never
// written here.
type Store struct {
	Pool *pgxpool.Pool
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS source_index (
	index_id    TEXT    NOT NULL,
	position    INTEGER NOT NULL,
	url         TEXT    NOT NULL DEFAULT '',
	month_label TEXT    NOT NULL DEFAULT '',
	active      TEXT    NOT NULL DEFAULT 'SIM',
	PRIMARY KEY (index_id, position)
)`

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schemaSQL)
	return err
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ReadIndex returns the entries of one index in their configured order. The
// active column holds the same flag tokens as the spreadsheet index.
func (s *Store) ReadIndex(ctx context.Context, indexID string) ([]models.IndexEntry, error) {
	rows, err := s.Pool.Query(ctx, `SELECT url, month_label, active FROM source_index WHERE index_id = $1 ORDER BY position ASC`, indexID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.IndexEntry
	for rows.Next() {
		var ref, month, active string
		if err := rows.Scan(&ref, &month, &active); err != nil {
			return nil, err
		}
		out = append(out, models.IndexEntry{
			SourceRef:  strings.TrimSpace(ref),
			MonthLabel: strings.TrimSpace(month),
			Active:     normalize.IsYes(active),
		})
	}
	return out, rows.Err()
}

// ReplaceIndex rewrites one index atomically.
func (s *Store) ReplaceIndex(ctx context.Context, indexID string, entries []models.IndexEntry) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM source_index WHERE index_id = $1`, indexID); err != nil {
			return err
		}
		rows := make([][]any, 0, len(entries))
		for i, e := range entries {
			active := "N"
			if e.Active {
				active = "SIM"
			}
			rows = append(rows, []any{indexID, i, e.SourceRef, e.MonthLabel, active})
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"source_index"}, []string{"index_id", "position", "url", "month_label", "active"}, pgx.CopyFromRows(rows))
		return err
	})
}
