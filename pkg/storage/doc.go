// Package storage provides the storage adapters behind the editor's upload
// and listing operations.
//
// Every backend implements Adapter:
//   - Put writes a byte stream at a key
//   - Move consumes a staged temp file produced by the request layer
//   - List returns files under a prefix filtered by extension
//
// Three implementations are provided:
//   - LocalStorage: filesystem rooted at the editor's static directory
//   - S3Storage: Amazon S3 and S3-compatible services via aws-sdk-go-v2
//   - MinioStorage: MinIO through the native minio-go client
//
// # Usage
//
//	store, err := storage.NewLocalStorage("public")
//	if err != nil {
//		return err
//	}
//
//	err = store.Put(ctx, "storage/image/20240305/1709622489123.png", r, size)
//	if state.CodeOf(err) == state.ErrCreateDir {
//		// directory could not be created
//	}
//
//	page, err := store.List(ctx, "storage/image/", []string{".png", ".jpg"}, 0, 20)
//
// # Errors
//
// Adapter errors carry a state code (see package state) wrapping one of the
// sentinel errors of this package:
//
//	ERROR_CREATE_DIR         intermediate directories could not be created
//	ERROR_DIR_NOT_WRITEABLE  permission denied on the target directory
//	ERROR_FILE_MOVE          staged file could not be moved or uploaded
//	ERROR_WRITE_CONTENT      byte content could not be written or uploaded
//	ERROR_TMP_FILE(_NOT_FOUND) staged file missing or unreadable
//	ERROR_FILE_NOT_FOUND     listing matched nothing or failed
//
// Object store errors are classified before wrapping:
//   - NoSuchBucket -> ErrBucketNotFound
//   - AccessDenied -> ErrAccessDenied
//   - SlowDown/ServiceUnavailable -> ErrServiceUnavailable
//
// # Listing limitations
//
// LocalStorage walks the whole subtree and applies offset and limit to the
// filtered result. The object store adapters request a single page of limit
// keys starting at prefix: offset is not applied and Total is the number of
// matches within that page.
package storage
