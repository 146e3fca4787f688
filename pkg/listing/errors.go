package listing

import "errors"

var (
	ErrNoStorage             = errors.New("listing: storage adapter is required")
	ErrCategoryNotConfigured = errors.New("listing: category not configured")
	ErrInvalidSource         = errors.New("listing: invalid source")
	ErrUnknownCategory       = errors.New("listing: unknown category")
)
