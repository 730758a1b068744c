package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starcheck/quality-panel/internal/models"
)

func TestReadIndexIntegration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := New(ctx, url)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.EnsureSchema(ctx))
	entries := []models.IndexEntry{
		{SourceRef: "https://docs.google.com/spreadsheets/d/abc/edit", MonthLabel: "2025-08", Active: true},
		{SourceRef: "q_2025_09.xlsx", MonthLabel: "2025-09", Active: false},
	}
	require.NoError(t, store.ReplaceIndex(ctx, "test_quality", entries))

	got, err := store.ReadIndex(ctx, "test_quality")
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}
