package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCleanupUploads(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "old.xlsx")
	fresh := filepath.Join(dir, "new.xlsx")
	other := filepath.Join(dir, "keep.txt")
	for _, path := range []string{stale, fresh, other} {
		assert.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
	}

	old := time.Now().Add(-48 * time.Hour)
	assert.NoError(t, os.Chtimes(stale, old, old))
	assert.NoError(t, os.Chtimes(other, old, old))

	removed, err := CleanupUploads(dir, 24*time.Hour)

	assert.NoError(t, err)
	assert.Equal(t, []string{stale}, removed)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))

	// recent uploads and non-spreadsheet files are untouched
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
	_, err = os.Stat(other)
	assert.NoError(t, err)
}

func TestCleanupUploads_EmptyDir(t *testing.T) {
	removed, err := CleanupUploads(t.TempDir(), time.Hour)

	assert.NoError(t, err)
	assert.Empty(t, removed)
}
