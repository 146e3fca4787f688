package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/ueditor/pkg/state"
)

// S3Client is the subset of the S3 API used by S3Storage.
// It includes the multipart calls required by the upload manager.
type S3Client interface {
	manager.UploadAPIClient
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Storage implements Adapter for Amazon S3 and S3-compatible services.
// It is safe for concurrent use.
//
// ListObjectsV2 cannot start at an arbitrary index, so List returns at most
// one page of limit keys from the start of prefix and ignores offset.
type S3Storage struct {
	client        S3Client
	uploader      *manager.Uploader
	bucket        string
	uploadTimeout time.Duration
}

// S3Config contains configuration for S3 storage.
type S3Config struct {
	Bucket         string
	Region         string
	AccessKeyID    string
	SecretKey      string
	Endpoint       string // Optional: for S3-compatible services
	ForcePathStyle bool   // For S3-compatible services like MinIO
}

// S3Option defines a function that configures S3Storage.
type S3Option func(*s3Options)

type s3Options struct {
	httpClient      *http.Client
	s3Client        S3Client
	s3ConfigOptions []func(*config.LoadOptions) error
	s3ClientOptions []func(*s3.Options)
	uploadTimeout   time.Duration
	partSize        int64
	concurrency     int
}

// WithS3Client sets a pre-configured client. Useful for testing with mocks.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) {
		o.s3Client = client
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) S3Option {
	return func(o *s3Options) {
		o.httpClient = client
	}
}

// WithS3ConfigOption adds a custom AWS config option.
func WithS3ConfigOption(option func(*config.LoadOptions) error) S3Option {
	return func(o *s3Options) {
		o.s3ConfigOptions = append(o.s3ConfigOptions, option)
	}
}

// WithS3ClientOption adds a custom S3 client option.
func WithS3ClientOption(option func(*s3.Options)) S3Option {
	return func(o *s3Options) {
		o.s3ClientOptions = append(o.s3ClientOptions, option)
	}
}

// WithS3UploadTimeout sets the timeout for Put and Move.
func WithS3UploadTimeout(timeout time.Duration) S3Option {
	return func(o *s3Options) {
		o.uploadTimeout = timeout
	}
}

// WithS3Multipart tunes the upload manager. Bodies smaller than partSize
// bytes are sent with a single PutObject call.
func WithS3Multipart(partSize int64, concurrency int) S3Option {
	return func(o *s3Options) {
		o.partSize = partSize
		o.concurrency = concurrency
	}
}

// NewS3Storage creates a new S3 storage adapter.
func NewS3Storage(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	options := &s3Options{
		partSize:    manager.DefaultUploadPartSize,
		concurrency: manager.DefaultUploadConcurrency,
	}
	for _, opt := range opts {
		opt(options)
	}

	client := options.s3Client
	if client == nil {
		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}
		if options.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(options.httpClient))
		}
		awsOptions = append(awsOptions, options.s3ConfigOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToLoadConfig, err)
		}

		client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
			for _, opt := range options.s3ClientOptions {
				opt(o)
			}
		})
	}

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		if options.partSize >= manager.MinUploadPartSize {
			u.PartSize = options.partSize
		}
		if options.concurrency > 0 {
			u.Concurrency = options.concurrency
		}
	})

	return &S3Storage{
		client:        client,
		uploader:      uploader,
		bucket:        cfg.Bucket,
		uploadTimeout: options.uploadTimeout,
	}, nil
}

// Put uploads r to key.
func (s *S3Storage) Put(ctx context.Context, key string, r io.Reader, _ int64) error {
	if err := s.upload(ctx, key, r); err != nil {
		return state.New(state.ErrWriteContent, err)
	}
	return nil
}

// Move uploads the staged file and removes it afterwards.
func (s *S3Storage) Move(ctx context.Context, key, tempPath string) error {
	src, err := os.Open(tempPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return state.New(state.ErrTmpFileNotFound, err)
		}
		return state.New(state.ErrTmpFile, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err))
	}
	defer func() { _ = src.Close() }()

	if err := s.upload(ctx, key, src); err != nil {
		return state.New(state.ErrFileMove, err)
	}

	_ = src.Close()
	_ = os.Remove(tempPath)
	return nil
}

// List returns up to limit keys under prefix filtered by extension.
// LastModified is truncated to seconds.
func (s *S3Storage) List(ctx context.Context, prefix string, exts []string, _, limit int) (Page, error) {
	prefix = strings.TrimPrefix(prefix, "/")
	if escapes(prefix) {
		return Page{Entries: []Entry{}}, state.New(state.ErrFileNotFound, fmt.Errorf("%w: %s", ErrInvalidPath, prefix))
	}

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}
	if limit > 0 {
		input.MaxKeys = aws.Int32(int32(min(limit, 1000)))
	}

	resp, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return Page{Entries: []Entry{}}, state.New(state.ErrFileNotFound, classifyS3Error(err, "list objects"))
	}

	entries := make([]Entry, 0, len(resp.Contents))
	for _, obj := range resp.Contents {
		key := aws.ToString(obj.Key)
		if key == "" || strings.HasSuffix(key, "/") || !matchExt(key, exts) {
			continue
		}
		var mtime int64
		if obj.LastModified != nil {
			mtime = obj.LastModified.Unix()
		}
		entries = append(entries, Entry{MTime: mtime, URL: key})
	}

	if len(entries) == 0 {
		return Page{Entries: entries}, state.Errorf(state.ErrFileNotFound, "%w: %s", ErrNoMatchingFiles, prefix)
	}

	return Page{Entries: entries, Total: len(entries)}, nil
}

func (s *S3Storage) upload(ctx context.Context, key string, body io.Reader) error {
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	key = strings.TrimPrefix(key, "/")
	if key == "" || escapes(key) {
		return fmt.Errorf("%w: %s", ErrInvalidPath, key)
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType(key)),
	})
	if err != nil {
		return classifyS3Error(err, "upload object")
	}
	return nil
}

// contentType guesses the MIME type from the key's extension.
func contentType(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// classifyS3Error converts S3 errors to domain-specific errors.
func classifyS3Error(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s operation", ErrOperationTimeout, operation)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s operation", ErrOperationCanceled, operation)
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return fmt.Errorf("%w: %s operation", ErrBucketNotFound, operation)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch code {
		case "AccessDenied":
			return fmt.Errorf("%w: %s operation", ErrAccessDenied, operation)
		case "RequestTimeout":
			return fmt.Errorf("%w: %s operation", ErrRequestTimeout, operation)
		case "SlowDown", "ServiceUnavailable":
			return fmt.Errorf("%w: %s operation", ErrServiceUnavailable, operation)
		case "NoSuchBucket":
			return fmt.Errorf("%w: %s operation", ErrBucketNotFound, operation)
		default:
			return fmt.Errorf("%s operation failed (code: %s): %w", operation, code, err)
		}
	}

	return fmt.Errorf("%s operation failed: %w", operation, err)
}
