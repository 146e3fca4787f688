package storage_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ueditor/pkg/state"
	"github.com/dmitrymomot/ueditor/pkg/storage"
)

var _ storage.Adapter = (*storage.MinioStorage)(nil)

// MockMinioClient is a mock implementation of the MinioClient interface
type MockMinioClient struct {
	mock.Mock
}

func (m *MockMinioClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *MockMinioClient) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	args := m.Called(ctx, bucketName, opts)
	return args.Get(0).(<-chan minio.ObjectInfo)
}

func (m *MockMinioClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinioClient) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	args := m.Called(ctx, bucketName, opts)
	return args.Error(0)
}

func objectStream(objects ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(objects))
	for _, obj := range objects {
		ch <- obj
	}
	close(ch)
	return ch
}

func newTestMinioStorage(t *testing.T, client *MockMinioClient) *storage.MinioStorage {
	t.Helper()
	s, err := storage.NewMinioStorage(storage.MinioConfig{
		Bucket: "uploads",
		Region: "us-east-1",
	}, storage.WithMinioClient(client))
	require.NoError(t, err)
	return s
}

func TestNewMinioStorage(t *testing.T) {
	t.Parallel()

	t.Run("missing bucket", func(t *testing.T) {
		t.Parallel()
		_, err := storage.NewMinioStorage(storage.MinioConfig{Endpoint: "localhost:9000"})
		assert.ErrorIs(t, err, storage.ErrInvalidConfig)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		t.Parallel()
		_, err := storage.NewMinioStorage(storage.MinioConfig{Bucket: "uploads"})
		assert.ErrorIs(t, err, storage.ErrInvalidConfig)
	})

	t.Run("builds native client", func(t *testing.T) {
		t.Parallel()
		s, err := storage.NewMinioStorage(storage.MinioConfig{
			Endpoint:    "localhost:9000",
			AccessKeyID: "minio",
			SecretKey:   "minio123",
			Bucket:      "uploads",
		})
		require.NoError(t, err)
		assert.NotNil(t, s)
	})
}

func TestMinioStorage_EnsureBucket(t *testing.T) {
	t.Parallel()

	t.Run("existing bucket", func(t *testing.T) {
		t.Parallel()
		client := &MockMinioClient{}
		s := newTestMinioStorage(t, client)
		client.On("BucketExists", mock.Anything, "uploads").Return(true, nil).Once()

		require.NoError(t, s.EnsureBucket(context.Background()))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("creates missing bucket", func(t *testing.T) {
		t.Parallel()
		client := &MockMinioClient{}
		s := newTestMinioStorage(t, client)
		client.On("BucketExists", mock.Anything, "uploads").Return(false, nil).Once()
		client.On("MakeBucket", mock.Anything, "uploads", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil).Once()

		require.NoError(t, s.EnsureBucket(context.Background()))
		client.AssertExpectations(t)
	})

	t.Run("access denied", func(t *testing.T) {
		t.Parallel()
		client := &MockMinioClient{}
		s := newTestMinioStorage(t, client)
		client.On("BucketExists", mock.Anything, "uploads").
			Return(false, minio.ErrorResponse{Code: "AccessDenied"}).Once()

		err := s.EnsureBucket(context.Background())
		assert.ErrorIs(t, err, storage.ErrAccessDenied)
	})
}

func TestMinioStorage_Put(t *testing.T) {
	t.Parallel()

	t.Run("uploads with content type", func(t *testing.T) {
		t.Parallel()
		client := &MockMinioClient{}
		s := newTestMinioStorage(t, client)

		client.On("PutObject", mock.Anything, "uploads", "storage/image/a.png", mock.Anything, int64(3),
			minio.PutObjectOptions{ContentType: "image/png"}).
			Return(minio.UploadInfo{Key: "storage/image/a.png"}, nil).Once()

		require.NoError(t, s.Put(context.Background(), "storage/image/a.png", bytes.NewReader([]byte("png")), 3))
		client.AssertExpectations(t)
	})

	t.Run("missing bucket", func(t *testing.T) {
		t.Parallel()
		client := &MockMinioClient{}
		s := newTestMinioStorage(t, client)

		client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, minio.ErrorResponse{Code: "NoSuchBucket"})

		err := s.Put(context.Background(), "a.txt", bytes.NewReader([]byte("x")), 1)
		assert.Equal(t, state.ErrWriteContent, state.CodeOf(err))
		assert.ErrorIs(t, err, storage.ErrBucketNotFound)
	})

	t.Run("dot segment", func(t *testing.T) {
		t.Parallel()
		client := &MockMinioClient{}
		s := newTestMinioStorage(t, client)

		err := s.Put(context.Background(), "storage/../escape.png", bytes.NewReader([]byte("x")), 1)
		assert.ErrorIs(t, err, storage.ErrInvalidPath)
		client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("dots inside a name", func(t *testing.T) {
		t.Parallel()
		client := &MockMinioClient{}
		s := newTestMinioStorage(t, client)

		client.On("PutObject", mock.Anything, "uploads", "storage/file/my..notes.pdf", mock.Anything, int64(3),
			minio.PutObjectOptions{ContentType: "application/pdf"}).
			Return(minio.UploadInfo{Key: "storage/file/my..notes.pdf"}, nil).Once()

		require.NoError(t, s.Put(context.Background(), "storage/file/my..notes.pdf", bytes.NewReader([]byte("pdf")), 3))
		client.AssertExpectations(t)
	})
}

func TestMinioStorage_Move(t *testing.T) {
	t.Parallel()

	t.Run("uploads staged file with its size", func(t *testing.T) {
		t.Parallel()
		client := &MockMinioClient{}
		s := newTestMinioStorage(t, client)
		staged := stageFile(t, []byte("12345"))

		client.On("PutObject", mock.Anything, "uploads", "storage/video/v.mp4", mock.Anything, int64(5), mock.Anything).
			Return(minio.UploadInfo{}, nil).Once()

		require.NoError(t, s.Move(context.Background(), "storage/video/v.mp4", staged))
		_, err := os.Stat(staged)
		assert.True(t, os.IsNotExist(err))
		client.AssertExpectations(t)
	})

	t.Run("missing staged file", func(t *testing.T) {
		t.Parallel()
		client := &MockMinioClient{}
		s := newTestMinioStorage(t, client)

		err := s.Move(context.Background(), "storage/x.png", "/nonexistent/upload_tmp")
		assert.Equal(t, state.ErrTmpFileNotFound, state.CodeOf(err))
	})
}

func TestMinioStorage_List(t *testing.T) {
	t.Parallel()

	modified := time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC)

	t.Run("filters and stops at limit", func(t *testing.T) {
		t.Parallel()
		client := &MockMinioClient{}
		s := newTestMinioStorage(t, client)

		client.On("ListObjects", mock.Anything, "uploads", minio.ListObjectsOptions{
			Prefix:    "storage/image/",
			Recursive: true,
			MaxKeys:   3,
		}).Return(objectStream(
			minio.ObjectInfo{Key: "storage/image/a.png", LastModified: modified},
			minio.ObjectInfo{Key: "storage/image/b.txt", LastModified: modified},
			minio.ObjectInfo{Key: "storage/image/c.jpg", LastModified: modified},
			minio.ObjectInfo{Key: "storage/image/d.png", LastModified: modified},
		)).Once()

		page, err := s.List(context.Background(), "storage/image/", []string{".png", ".jpg"}, 0, 3)
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		assert.Equal(t, []storage.Entry{
			{MTime: modified.Unix(), URL: "storage/image/a.png"},
			{MTime: modified.Unix(), URL: "storage/image/c.jpg"},
		}, page.Entries)
	})

	t.Run("object error", func(t *testing.T) {
		t.Parallel()
		client := &MockMinioClient{}
		s := newTestMinioStorage(t, client)

		client.On("ListObjects", mock.Anything, "uploads", mock.Anything).
			Return(objectStream(minio.ObjectInfo{Err: minio.ErrorResponse{Code: "NoSuchBucket"}})).Once()

		page, err := s.List(context.Background(), "storage/", nil, 0, 20)
		assert.Equal(t, state.ErrFileNotFound, state.CodeOf(err))
		assert.ErrorIs(t, err, storage.ErrBucketNotFound)
		assert.NotNil(t, page.Entries)
	})

	t.Run("empty listing", func(t *testing.T) {
		t.Parallel()
		client := &MockMinioClient{}
		s := newTestMinioStorage(t, client)

		client.On("ListObjects", mock.Anything, "uploads", mock.Anything).Return(objectStream()).Once()

		page, err := s.List(context.Background(), "storage/", []string{".png"}, 0, 20)
		assert.Equal(t, state.ErrFileNotFound, state.CodeOf(err))
		assert.Empty(t, page.Entries)
		assert.Zero(t, page.Total)
	})
}
