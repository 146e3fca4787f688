package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFile creates a file under dir with the given relative path and mtime.
func writeFile(t *testing.T, dir, rel string, content []byte, mtime time.Time) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, content, 0644))
	if !mtime.IsZero() {
		require.NoError(t, os.Chtimes(p, mtime, mtime))
	}
	return p
}

// stageFile creates a staged upload in its own temp dir.
func stageFile(t *testing.T, content []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "upload_tmp")
	require.NoError(t, os.WriteFile(p, content, 0600))
	return p
}
