package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/text-extractor/pkg/logger"
)

func TestStoreGetDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), logger.NewTestLogger())
	require.NoError(t, err)

	key, err := s.Store(ctx, strings.NewReader("File: a.pdf\n\nhello"), "exports/extracted_text-1.txt")
	require.NoError(t, err)
	assert.Equal(t, "exports/extracted_text-1.txt", key)

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "File: a.pdf\n\nhello", string(data))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.Error(t, err)
}

func TestRejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), logger.NewTestLogger())
	require.NoError(t, err)

	for _, key := range []string{"../outside.txt", "/etc/passwd", "", "a/../../b"} {
		_, err := s.Store(context.Background(), strings.NewReader("x"), key)
		assert.Error(t, err, key)
	}
}

func TestCleanupBefore(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocalStorage(root, logger.NewTestLogger())
	require.NoError(t, err)

	_, err = s.Store(ctx, strings.NewReader("old"), "exports/old.txt")
	require.NoError(t, err)
	_, err = s.Store(ctx, strings.NewReader("new"), "exports/new.txt")
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "exports", "old.txt"), past, past))

	require.NoError(t, s.CleanupBefore(ctx, time.Now().Add(-24*time.Hour)))

	_, err = os.Stat(filepath.Join(root, "exports", "old.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "exports", "new.txt"))
	assert.NoError(t, err)
}
