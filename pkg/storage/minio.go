package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dmitrymomot/ueditor/pkg/state"
)

// MinioClient is the subset of *minio.Client used by MinioStorage.
type MinioClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

// MinioStorage implements Adapter on MinIO or any S3-compatible endpoint
// through the native MinIO client. Like S3Storage it lists a single page
// from the start of prefix and ignores offset.
type MinioStorage struct {
	client        MinioClient
	bucket        string
	region        string
	uploadTimeout time.Duration
}

// MinioConfig contains connection settings for MinioStorage.
type MinioConfig struct {
	Endpoint    string // host:port, no scheme
	AccessKeyID string
	SecretKey   string
	Bucket      string
	Region      string
	UseSSL      bool
}

// MinioOption configures MinioStorage.
type MinioOption func(*MinioStorage)

// WithMinioClient sets a pre-configured client. Useful for testing with mocks.
func WithMinioClient(client MinioClient) MinioOption {
	return func(s *MinioStorage) {
		s.client = client
	}
}

// WithMinioUploadTimeout sets the timeout for Put and Move.
func WithMinioUploadTimeout(timeout time.Duration) MinioOption {
	return func(s *MinioStorage) {
		s.uploadTimeout = timeout
	}
}

// NewMinioStorage creates a MinIO storage adapter.
func NewMinioStorage(cfg MinioConfig, opts ...MinioOption) (*MinioStorage, error) {
	if cfg.Bucket == "" {
		return nil, ErrInvalidConfig
	}

	s := &MinioStorage{
		bucket: cfg.Bucket,
		region: cfg.Region,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		if cfg.Endpoint == "" {
			return nil, ErrInvalidConfig
		}
		client, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToConnect, err)
		}
		s.client = client
	}

	return s, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return classifyMinioError(err, "check bucket")
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return classifyMinioError(err, "create bucket")
	}
	return nil
}

// Put uploads r to key. size may be -1, in which case the client buffers.
func (s *MinioStorage) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	if err := s.upload(ctx, key, r, size); err != nil {
		return state.New(state.ErrWriteContent, err)
	}
	return nil
}

// Move uploads the staged file and removes it afterwards.
func (s *MinioStorage) Move(ctx context.Context, key, tempPath string) error {
	src, err := os.Open(tempPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return state.New(state.ErrTmpFileNotFound, err)
		}
		return state.New(state.ErrTmpFile, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err))
	}
	defer func() { _ = src.Close() }()

	size := int64(-1)
	if info, err := src.Stat(); err == nil {
		size = info.Size()
	}

	if err := s.upload(ctx, key, src, size); err != nil {
		return state.New(state.ErrFileMove, err)
	}

	_ = src.Close()
	_ = os.Remove(tempPath)
	return nil
}

// List reads at most limit objects under prefix and filters them by extension.
func (s *MinioStorage) List(ctx context.Context, prefix string, exts []string, _, limit int) (Page, error) {
	prefix = strings.TrimPrefix(prefix, "/")
	if escapes(prefix) {
		return Page{Entries: []Entry{}}, state.New(state.ErrFileNotFound, fmt.Errorf("%w: %s", ErrInvalidPath, prefix))
	}

	// Cancelling stops the client's listing goroutine once we have enough keys.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   limit,
	})

	entries := []Entry{}
	seen := 0
	for obj := range objects {
		if obj.Err != nil {
			return Page{Entries: []Entry{}}, state.New(state.ErrFileNotFound, classifyMinioError(obj.Err, "list objects"))
		}
		seen++
		if !strings.HasSuffix(obj.Key, "/") && matchExt(obj.Key, exts) {
			entries = append(entries, Entry{MTime: obj.LastModified.Unix(), URL: obj.Key})
		}
		if limit > 0 && seen >= limit {
			break
		}
	}

	if len(entries) == 0 {
		return Page{Entries: entries}, state.Errorf(state.ErrFileNotFound, "%w: %s", ErrNoMatchingFiles, prefix)
	}

	return Page{Entries: entries, Total: len(entries)}, nil
}

func (s *MinioStorage) upload(ctx context.Context, key string, r io.Reader, size int64) error {
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	key = strings.TrimPrefix(key, "/")
	if key == "" || escapes(key) {
		return fmt.Errorf("%w: %s", ErrInvalidPath, key)
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType(key),
	})
	if err != nil {
		return classifyMinioError(err, "put object")
	}
	return nil
}

// classifyMinioError maps MinIO error responses onto the package errors.
func classifyMinioError(err error, operation string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s operation", ErrOperationTimeout, operation)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s operation", ErrOperationCanceled, operation)
	}

	switch code := minio.ToErrorResponse(err).Code; code {
	case "":
		return fmt.Errorf("%s operation failed: %w", operation, err)
	case "AccessDenied":
		return fmt.Errorf("%w: %s operation", ErrAccessDenied, operation)
	case "NoSuchBucket":
		return fmt.Errorf("%w: %s operation", ErrBucketNotFound, operation)
	case "RequestTimeout":
		return fmt.Errorf("%w: %s operation", ErrRequestTimeout, operation)
	case "SlowDown", "ServiceUnavailable", "XMinioServerNotInitialized":
		return fmt.Errorf("%w: %s operation", ErrServiceUnavailable, operation)
	default:
		return fmt.Errorf("%s operation failed (code: %s): %w", operation, code, err)
	}
}
