package storage

import "errors"

var (
	ErrInvalidPath   = errors.New("invalid path") // Prevents path traversal attacks
	ErrInvalidConfig = errors.New("invalid configuration")

	// File system errors
	ErrFailedToCreateDirectory = errors.New("failed to create directory")
	ErrFailedToCreateFile      = errors.New("failed to create file")
	ErrFailedToOpenFile        = errors.New("failed to open file")
	ErrFailedToReadFile        = errors.New("failed to read file")
	ErrFailedToWriteFile       = errors.New("failed to write file")
	ErrFailedToMoveFile        = errors.New("failed to move file")
	ErrFailedToReadDirectory   = errors.New("failed to read directory")
	ErrFailedToGetAbsolutePath = errors.New("failed to get absolute path")
	ErrNoMatchingFiles         = errors.New("no matching files")

	// Object store errors
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrRequestTimeout     = errors.New("request timed out")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
	ErrFailedToLoadConfig = errors.New("failed to load AWS config")
	ErrFailedToConnect    = errors.New("failed to create object store client")

	// Context errors
	ErrOperationTimeout  = errors.New("operation timed out")
	ErrOperationCanceled = errors.New("operation canceled")
)
