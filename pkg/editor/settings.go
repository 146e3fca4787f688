package editor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/ueditor/pkg/config"
	"github.com/dmitrymomot/ueditor/pkg/logger"
	"github.com/dmitrymomot/ueditor/pkg/metrics"
	"github.com/dmitrymomot/ueditor/pkg/pathformat"
	"github.com/dmitrymomot/ueditor/pkg/requestid"
	"github.com/dmitrymomot/ueditor/pkg/state"
	"github.com/dmitrymomot/ueditor/pkg/storage"
	"github.com/dmitrymomot/ueditor/pkg/upload"
)

// Storage backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendMinio = "minio"
)

// Settings is the process configuration read from UEDITOR_* variables.
type Settings struct {
	Env      string `env:"UEDITOR_ENV" envDefault:"development"`
	LogLevel string `env:"UEDITOR_LOG_LEVEL"`
	Language string `env:"UEDITOR_LANGUAGE" envDefault:"zh"`

	// ConfigFile is an optional YAML editor table merged over the defaults.
	ConfigFile string `env:"UEDITOR_CONFIG_FILE"`
	URLPrefix  string `env:"UEDITOR_URL_PREFIX"`

	Backend string `env:"UEDITOR_BACKEND" envDefault:"local"`
	// Root is the local storage directory, usually the static files root.
	Root string `env:"UEDITOR_ROOT" envDefault:"./public"`

	// SafeFilenames replaces characters invalid on common filesystems in
	// {filename} substitutions.
	SafeFilenames bool `env:"UEDITOR_SAFE_FILENAMES" envDefault:"true"`

	FetchTimeout      time.Duration `env:"UEDITOR_FETCH_TIMEOUT" envDefault:"30s"`
	FetchConcurrency  int           `env:"UEDITOR_FETCH_CONCURRENCY" envDefault:"4"`
	FetchContentType  string        `env:"UEDITOR_FETCH_CONTENT_TYPE"`
	AllowPrivateHosts bool          `env:"UEDITOR_ALLOW_PRIVATE_HOSTS" envDefault:"false"`

	S3    S3Settings    `envPrefix:"UEDITOR_S3_"`
	Minio MinioSettings `envPrefix:"UEDITOR_MINIO_"`
}

type S3Settings struct {
	Bucket         string        `env:"BUCKET"`
	Region         string        `env:"REGION" envDefault:"us-east-1"`
	AccessKeyID    string        `env:"ACCESS_KEY_ID"`
	SecretKey      string        `env:"SECRET_KEY"`
	Endpoint       string        `env:"ENDPOINT"`
	ForcePathStyle bool          `env:"FORCE_PATH_STYLE" envDefault:"false"`
	UploadTimeout  time.Duration `env:"UPLOAD_TIMEOUT"`
}

type MinioSettings struct {
	Endpoint      string        `env:"ENDPOINT"`
	AccessKeyID   string        `env:"ACCESS_KEY_ID"`
	SecretKey     string        `env:"SECRET_KEY"`
	Bucket        string        `env:"BUCKET"`
	Region        string        `env:"REGION"`
	UseSSL        bool          `env:"USE_SSL" envDefault:"true"`
	CreateBucket  bool          `env:"CREATE_BUCKET" envDefault:"false"`
	UploadTimeout time.Duration `env:"UPLOAD_TIMEOUT"`
}

// LoadSettings reads Settings from the environment and the optional .env file.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := config.Load(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadConfig returns the default editor table, merged with s.ConfigFile
// when it is set.
func (s Settings) LoadConfig() (Config, error) {
	cfg := DefaultConfig(s.URLPrefix)
	if s.ConfigFile == "" {
		return cfg, nil
	}
	if err := config.LoadFile(s.ConfigFile, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Logger builds the process logger for s.Env, with LogLevel overriding the
// environment's default level.
func (s Settings) Logger() *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(s.Env, "ueditor"),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if s.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(s.LogLevel))
	}
	return logger.New(opts...)
}

func (s Settings) engine() *pathformat.Engine {
	if s.SafeFilenames {
		return pathformat.New(pathformat.WithSafeFilenames())
	}
	return pathformat.New()
}

// NewAdapter opens the storage backend selected by s.Backend.
func NewAdapter(ctx context.Context, s Settings) (storage.Adapter, error) {
	switch s.Backend {
	case BackendLocal, "":
		a, err := storage.NewLocalStorage(s.Root)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackendSettings, err)
		}
		return a, nil

	case BackendS3:
		var opts []storage.S3Option
		if s.S3.UploadTimeout > 0 {
			opts = append(opts, storage.WithS3UploadTimeout(s.S3.UploadTimeout))
		}
		a, err := storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:         s.S3.Bucket,
			Region:         s.S3.Region,
			AccessKeyID:    s.S3.AccessKeyID,
			SecretKey:      s.S3.SecretKey,
			Endpoint:       s.S3.Endpoint,
			ForcePathStyle: s.S3.ForcePathStyle,
		}, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackendSettings, err)
		}
		return a, nil

	case BackendMinio:
		var opts []storage.MinioOption
		if s.Minio.UploadTimeout > 0 {
			opts = append(opts, storage.WithMinioUploadTimeout(s.Minio.UploadTimeout))
		}
		a, err := storage.NewMinioStorage(storage.MinioConfig{
			Endpoint:    s.Minio.Endpoint,
			AccessKeyID: s.Minio.AccessKeyID,
			SecretKey:   s.Minio.SecretKey,
			Bucket:      s.Minio.Bucket,
			Region:      s.Minio.Region,
			UseSSL:      s.Minio.UseSSL,
		}, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackendSettings, err)
		}
		if s.Minio.CreateBucket {
			if err := a.EnsureBucket(ctx); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBackendSettings, err)
			}
		}
		return a, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, s.Backend)
	}
}

// NewFromSettings builds a Service with the backend, editor table, logger,
// localizer and default metrics described by s.
func NewFromSettings(ctx context.Context, s Settings, opts ...Option) (*Service, error) {
	cfg, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	adapter, err := NewAdapter(ctx, s)
	if err != nil {
		return nil, err
	}

	log := s.Logger()
	log.InfoContext(ctx, "editor backend ready",
		slog.String("backend", s.Backend),
		slog.String("language", s.Language),
	)

	base := []Option{
		WithLogger(log),
		WithLocalizer(state.NewLocalizer(s.Language)),
		WithMetrics(metrics.Default()),
		WithUploadOptions(
			upload.WithEngine(s.engine()),
			upload.WithFetchTimeout(s.FetchTimeout),
			upload.WithConcurrency(s.FetchConcurrency),
			upload.WithAllowPrivateHosts(s.AllowPrivateHosts),
			upload.WithContentTypePrefix(s.FetchContentType),
		),
	}
	return New(cfg, adapter, append(base, opts...)...)
}
