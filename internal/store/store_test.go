package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/text-extractor/pkg/logger"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path, logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertAndQueryAllKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, s.Reset(ctx))

	names := []string{"b.pdf", "a.xlsx", "a.xlsx", ""}
	for i, name := range names {
		rec, err := s.Insert(ctx, name, "content "+name)
		require.NoError(t, err)
		assert.Equal(t, uint(i+1), rec.ID)
	}

	records, err := s.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, len(names))
	for i, rec := range records {
		assert.Equal(t, names[i], rec.FileName)
		if i > 0 {
			assert.Greater(t, rec.ID, records[i-1].ID)
		}
	}
}

func TestResetClearsPreviousRun(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.db")

	first := openTestStore(t, path)
	require.NoError(t, first.Reset(ctx))
	_, err := first.Insert(ctx, "old.pdf", "stale")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := openTestStore(t, path)
	require.NoError(t, second.Reset(ctx))

	n, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	rec, err := second.Insert(ctx, "new.pdf", "fresh")
	require.NoError(t, err)
	assert.Equal(t, uint(1), rec.ID, "ids restart with the recreated table")
}

func TestQueryAllEmpty(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, s.Reset(ctx))

	records, err := s.QueryAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
