package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ueditor/pkg/state"
	"github.com/dmitrymomot/ueditor/pkg/storage"
)

var _ storage.Adapter = (*storage.S3Storage)(nil)

// MockS3Client is a mock implementation of the S3Client interface
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockS3Client) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.UploadPartOutput), args.Error(1)
}

func (m *MockS3Client) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.CreateMultipartUploadOutput), args.Error(1)
}

func (m *MockS3Client) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.CompleteMultipartUploadOutput), args.Error(1)
}

func (m *MockS3Client) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.AbortMultipartUploadOutput), args.Error(1)
}

func (m *MockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.ListObjectsV2Output), args.Error(1)
}

func newTestS3Storage(t *testing.T, client *MockS3Client) *storage.S3Storage {
	t.Helper()
	s, err := storage.NewS3Storage(context.Background(), storage.S3Config{
		Bucket: "test-bucket",
		Region: "us-east-1",
	}, storage.WithS3Client(client))
	require.NoError(t, err)
	return s
}

func putObjectFor(key, contentType string) any {
	return mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "test-bucket" &&
			aws.ToString(in.Key) == key &&
			aws.ToString(in.ContentType) == contentType
	})
}

func TestNewS3Storage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  storage.S3Config
	}{
		{name: "missing bucket", cfg: storage.S3Config{Region: "us-east-1"}},
		{name: "missing region", cfg: storage.S3Config{Bucket: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := storage.NewS3Storage(context.Background(), tt.cfg, storage.WithS3Client(&MockS3Client{}))
			assert.ErrorIs(t, err, storage.ErrInvalidConfig)
			assert.Nil(t, s)
		})
	}
}

func TestS3Storage_Put(t *testing.T) {
	t.Parallel()

	t.Run("uploads with content type", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		s := newTestS3Storage(t, client)

		var body []byte
		client.On("PutObject", mock.Anything, putObjectFor("storage/image/a.png", "image/png"), mock.Anything).
			Run(func(args mock.Arguments) {
				in := args.Get(1).(*s3.PutObjectInput)
				body, _ = io.ReadAll(in.Body)
			}).
			Return(&s3.PutObjectOutput{}, nil).Once()

		err := s.Put(context.Background(), "/storage/image/a.png", bytes.NewReader([]byte("png-bytes")), 9)
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), body)
		client.AssertExpectations(t)
	})

	t.Run("access denied", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		s := newTestS3Storage(t, client)

		client.On("PutObject", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"})

		err := s.Put(context.Background(), "storage/a.txt", bytes.NewReader([]byte("x")), 1)
		assert.Equal(t, state.ErrWriteContent, state.CodeOf(err))
		assert.ErrorIs(t, err, storage.ErrAccessDenied)
	})

	t.Run("invalid key", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		s := newTestS3Storage(t, client)

		err := s.Put(context.Background(), "../escape.png", bytes.NewReader([]byte("x")), 1)
		assert.Equal(t, state.ErrWriteContent, state.CodeOf(err))
		assert.ErrorIs(t, err, storage.ErrInvalidPath)
		client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("dots inside a name", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		s := newTestS3Storage(t, client)

		client.On("PutObject", mock.Anything, putObjectFor("storage/file/my..notes.pdf", "application/pdf"), mock.Anything).
			Return(&s3.PutObjectOutput{}, nil).Once()

		err := s.Put(context.Background(), "storage/file/my..notes.pdf", bytes.NewReader([]byte("pdf")), 3)
		require.NoError(t, err)
		client.AssertExpectations(t)
	})
}

func TestS3Storage_Move(t *testing.T) {
	t.Parallel()

	t.Run("uploads and removes staged file", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		s := newTestS3Storage(t, client)
		staged := stageFile(t, []byte("%PDF"))

		client.On("PutObject", mock.Anything, putObjectFor("storage/file/r.pdf", "application/pdf"), mock.Anything).
			Return(&s3.PutObjectOutput{}, nil).Once()

		require.NoError(t, s.Move(context.Background(), "storage/file/r.pdf", staged))
		_, err := os.Stat(staged)
		assert.True(t, os.IsNotExist(err))
		client.AssertExpectations(t)
	})

	t.Run("upload failure keeps staged file", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		s := newTestS3Storage(t, client)
		staged := stageFile(t, []byte("data"))

		client.On("PutObject", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &smithy.GenericAPIError{Code: "SlowDown"})

		err := s.Move(context.Background(), "storage/file/r.bin", staged)
		assert.Equal(t, state.ErrFileMove, state.CodeOf(err))
		assert.ErrorIs(t, err, storage.ErrServiceUnavailable)
		_, statErr := os.Stat(staged)
		assert.NoError(t, statErr)
	})

	t.Run("missing staged file", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		s := newTestS3Storage(t, client)

		err := s.Move(context.Background(), "storage/x.png", "/nonexistent/upload_tmp")
		assert.Equal(t, state.ErrTmpFileNotFound, state.CodeOf(err))
	})
}

func TestS3Storage_List(t *testing.T) {
	t.Parallel()

	modified := time.Date(2024, 3, 5, 7, 8, 9, 500_000_000, time.UTC)

	t.Run("filters keys by extension", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		s := newTestS3Storage(t, client)

		client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
			return aws.ToString(in.Bucket) == "test-bucket" &&
				aws.ToString(in.Prefix) == "storage/image/" &&
				aws.ToInt32(in.MaxKeys) == 20
		}), mock.Anything).Return(&s3.ListObjectsV2Output{
			Contents: []types.Object{
				{Key: aws.String("storage/image/"), LastModified: aws.Time(modified)},
				{Key: aws.String("storage/image/a.png"), LastModified: aws.Time(modified)},
				{Key: aws.String("storage/image/notes.txt"), LastModified: aws.Time(modified)},
				{Key: aws.String("storage/image/b.jpg")},
			},
		}, nil).Once()

		page, err := s.List(context.Background(), "/storage/image/", []string{".png", ".jpg"}, 0, 20)
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		assert.Equal(t, []storage.Entry{
			{MTime: modified.Unix(), URL: "storage/image/a.png"},
			{MTime: 0, URL: "storage/image/b.jpg"},
		}, page.Entries)
		client.AssertExpectations(t)
	})

	t.Run("caps page size", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		s := newTestS3Storage(t, client)

		client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
			return aws.ToInt32(in.MaxKeys) == 1000
		}), mock.Anything).Return(&s3.ListObjectsV2Output{
			Contents: []types.Object{{Key: aws.String("a.png")}},
		}, nil).Once()

		_, err := s.List(context.Background(), "", nil, 0, 5000)
		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("no matches", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		s := newTestS3Storage(t, client)

		client.On("ListObjectsV2", mock.Anything, mock.Anything, mock.Anything).
			Return(&s3.ListObjectsV2Output{}, nil)

		page, err := s.List(context.Background(), "storage/image/", []string{".png"}, 0, 20)
		assert.Equal(t, state.ErrFileNotFound, state.CodeOf(err))
		assert.ErrorIs(t, err, storage.ErrNoMatchingFiles)
		assert.NotNil(t, page.Entries)
		assert.Zero(t, page.Total)
	})

	t.Run("bucket missing", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		s := newTestS3Storage(t, client)

		client.On("ListObjectsV2", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &types.NoSuchBucket{})

		page, err := s.List(context.Background(), "storage/", nil, 0, 20)
		assert.Equal(t, state.ErrFileNotFound, state.CodeOf(err))
		assert.ErrorIs(t, err, storage.ErrBucketNotFound)
		assert.Empty(t, page.Entries)
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		s := newTestS3Storage(t, client)

		client.On("ListObjectsV2", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, context.Canceled)

		_, err := s.List(context.Background(), "storage/", nil, 0, 20)
		assert.True(t, errors.Is(err, storage.ErrOperationCanceled))
	})
}
