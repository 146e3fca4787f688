package upload_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ueditor/pkg/pathformat"
	"github.com/dmitrymomot/ueditor/pkg/policy"
	"github.com/dmitrymomot/ueditor/pkg/storage"
	"github.com/dmitrymomot/ueditor/pkg/upload"
)

// MockAdapter is a mock implementation of storage.Adapter
type MockAdapter struct {
	mock.Mock
}

func (m *MockAdapter) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	args := m.Called(ctx, key, r, size)
	return args.Error(0)
}

func (m *MockAdapter) Move(ctx context.Context, key, tempPath string) error {
	args := m.Called(ctx, key, tempPath)
	return args.Error(0)
}

func (m *MockAdapter) List(ctx context.Context, prefix string, exts []string, offset, limit int) (storage.Page, error) {
	args := m.Called(ctx, prefix, exts, offset, limit)
	return args.Get(0).(storage.Page), args.Error(1)
}

var fixedNow = time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC)

func fixedEngine() *pathformat.Engine {
	return pathformat.New(pathformat.WithClock(func() time.Time { return fixedNow }))
}

func imagePolicy() policy.Config {
	return policy.Config{
		Kind:       policy.Image,
		PathFormat: "storage/image/{yyyy}{mm}{dd}/{filename}",
		MaxSize:    1024,
		AllowFiles: []string{".png", ".jpg", ".jpeg", ".gif"},
	}
}

// newLocalPipeline returns a pipeline writing to a fresh LocalStorage and
// the storage root.
func newLocalPipeline(t *testing.T, opts ...upload.Option) (*upload.Pipeline, string) {
	t.Helper()
	root := t.TempDir()
	adapter, err := storage.NewLocalStorage(root)
	require.NoError(t, err)

	opts = append([]upload.Option{upload.WithEngine(fixedEngine())}, opts...)
	p, err := upload.New(adapter, opts...)
	require.NoError(t, err)
	return p, root
}

func newMockPipeline(t *testing.T, opts ...upload.Option) (*upload.Pipeline, *MockAdapter) {
	t.Helper()
	adapter := &MockAdapter{}
	opts = append([]upload.Option{upload.WithEngine(fixedEngine())}, opts...)
	p, err := upload.New(adapter, opts...)
	require.NoError(t, err)
	return p, adapter
}

func stageFile(t *testing.T, content []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "upload_tmp")
	require.NoError(t, os.WriteFile(p, content, 0600))
	return p
}

func readStored(t *testing.T, root, key string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	return data
}
