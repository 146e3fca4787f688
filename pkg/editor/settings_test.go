package editor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ueditor/pkg/editor"
	"github.com/dmitrymomot/ueditor/pkg/storage"
)

var settingsKeys = []string{
	"UEDITOR_ENV", "UEDITOR_LOG_LEVEL", "UEDITOR_LANGUAGE", "UEDITOR_CONFIG_FILE",
	"UEDITOR_URL_PREFIX", "UEDITOR_BACKEND", "UEDITOR_ROOT", "UEDITOR_FETCH_TIMEOUT",
	"UEDITOR_FETCH_CONCURRENCY", "UEDITOR_FETCH_CONTENT_TYPE", "UEDITOR_ALLOW_PRIVATE_HOSTS", "UEDITOR_SAFE_FILENAMES",
	"UEDITOR_S3_BUCKET", "UEDITOR_S3_REGION", "UEDITOR_S3_ENDPOINT", "UEDITOR_S3_FORCE_PATH_STYLE",
	"UEDITOR_MINIO_ENDPOINT", "UEDITOR_MINIO_BUCKET", "UEDITOR_MINIO_USE_SSL",
}

func clearSettings(t *testing.T) {
	t.Helper()
	for _, k := range settingsKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearSettings(t)

		s, err := editor.LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, "development", s.Env)
		assert.Equal(t, "zh", s.Language)
		assert.Equal(t, editor.BackendLocal, s.Backend)
		assert.Equal(t, "./public", s.Root)
		assert.Equal(t, 30*time.Second, s.FetchTimeout)
		assert.Equal(t, 4, s.FetchConcurrency)
		assert.False(t, s.AllowPrivateHosts)
		assert.Equal(t, "us-east-1", s.S3.Region)
		assert.True(t, s.Minio.UseSSL)
		assert.True(t, s.SafeFilenames)
	})

	t.Run("environment", func(t *testing.T) {
		clearSettings(t)
		t.Setenv("UEDITOR_BACKEND", "s3")
		t.Setenv("UEDITOR_LANGUAGE", "en")
		t.Setenv("UEDITOR_FETCH_TIMEOUT", "5s")
		t.Setenv("UEDITOR_ALLOW_PRIVATE_HOSTS", "true")
		t.Setenv("UEDITOR_S3_BUCKET", "uploads")
		t.Setenv("UEDITOR_S3_REGION", "eu-west-1")
		t.Setenv("UEDITOR_S3_FORCE_PATH_STYLE", "true")
		t.Setenv("UEDITOR_MINIO_USE_SSL", "false")

		s, err := editor.LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, editor.BackendS3, s.Backend)
		assert.Equal(t, "en", s.Language)
		assert.Equal(t, 5*time.Second, s.FetchTimeout)
		assert.True(t, s.AllowPrivateHosts)
		assert.Equal(t, "uploads", s.S3.Bucket)
		assert.Equal(t, "eu-west-1", s.S3.Region)
		assert.True(t, s.S3.ForcePathStyle)
		assert.False(t, s.Minio.UseSSL)
	})

	t.Run("invalid duration", func(t *testing.T) {
		clearSettings(t)
		t.Setenv("UEDITOR_FETCH_TIMEOUT", "soon")

		_, err := editor.LoadSettings()
		assert.Error(t, err)
	})
}

func TestSettings_LoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults with prefix", func(t *testing.T) {
		t.Parallel()
		cfg, err := editor.Settings{URLPrefix: "/static/"}.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, editor.DefaultConfig("/static/"), cfg)
	})

	t.Run("file overrides", func(t *testing.T) {
		t.Parallel()
		p := filepath.Join(t.TempDir(), "ueditor.yaml")
		require.NoError(t, os.WriteFile(p, []byte("imageManagerListSize: 40\n"), 0644))

		cfg, err := editor.Settings{ConfigFile: p}.LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 40, cfg.ImageManagerListSize)
		assert.Equal(t, 20, cfg.FileManagerListSize)
	})

	t.Run("bad file", func(t *testing.T) {
		t.Parallel()
		p := filepath.Join(t.TempDir(), "ueditor.yaml")
		require.NoError(t, os.WriteFile(p, []byte("imageMaxSise: 1\n"), 0644))

		_, err := editor.Settings{ConfigFile: p}.LoadConfig()
		assert.ErrorIs(t, err, editor.ErrInvalidConfig)
	})
}

func TestNewAdapter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("local", func(t *testing.T) {
		t.Parallel()
		root := filepath.Join(t.TempDir(), "public")
		a, err := editor.NewAdapter(ctx, editor.Settings{Backend: editor.BackendLocal, Root: root})
		require.NoError(t, err)
		assert.IsType(t, &storage.LocalStorage{}, a)
		assert.DirExists(t, root)
	})

	t.Run("s3 requires bucket", func(t *testing.T) {
		t.Parallel()
		_, err := editor.NewAdapter(ctx, editor.Settings{
			Backend: editor.BackendS3,
			S3:      editor.S3Settings{Region: "us-east-1"},
		})
		assert.ErrorIs(t, err, editor.ErrBackendSettings)
	})

	t.Run("s3", func(t *testing.T) {
		t.Parallel()
		a, err := editor.NewAdapter(ctx, editor.Settings{
			Backend: editor.BackendS3,
			S3: editor.S3Settings{
				Bucket:         "uploads",
				Region:         "us-east-1",
				AccessKeyID:    "key",
				SecretKey:      "secret",
				Endpoint:       "http://localhost:9000",
				ForcePathStyle: true,
			},
		})
		require.NoError(t, err)
		assert.IsType(t, &storage.S3Storage{}, a)
	})

	t.Run("minio requires endpoint", func(t *testing.T) {
		t.Parallel()
		_, err := editor.NewAdapter(ctx, editor.Settings{
			Backend: editor.BackendMinio,
			Minio:   editor.MinioSettings{Bucket: "uploads"},
		})
		assert.ErrorIs(t, err, editor.ErrBackendSettings)
	})

	t.Run("minio", func(t *testing.T) {
		t.Parallel()
		a, err := editor.NewAdapter(ctx, editor.Settings{
			Backend: editor.BackendMinio,
			Minio:   editor.MinioSettings{Endpoint: "localhost:9000", Bucket: "uploads"},
		})
		require.NoError(t, err)
		assert.IsType(t, &storage.MinioStorage{}, a)
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Parallel()
		_, err := editor.NewAdapter(ctx, editor.Settings{Backend: "ftp"})
		assert.ErrorIs(t, err, editor.ErrUnknownBackend)
	})
}

func TestNewFromSettings(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	svc, err := editor.NewFromSettings(context.Background(), editor.Settings{
		Env:              "production",
		LogLevel:         "error",
		Language:         "en",
		URLPrefix:        "/",
		Backend:          editor.BackendLocal,
		Root:             root,
		FetchTimeout:     time.Second,
		FetchConcurrency: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "/", svc.Config().ImageURLPrefix)

	res := svc.Action(context.Background(), "nope", editor.Input{}).(editor.StateResult)
	assert.Equal(t, "Invalid request action", res.State)
}
