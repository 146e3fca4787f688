package upload

import "errors"

var ErrNoStorage = errors.New("upload: storage adapter is required")

// Causes attached to state errors. Match them with errors.Is.
var (
	ErrNoFile           = errors.New("upload: no file in request")
	ErrEmptyPayload     = errors.New("upload: empty base64 payload")
	ErrMalformedURL     = errors.New("upload: malformed remote url")
	ErrForbiddenHost    = errors.New("upload: remote host is not public")
	ErrBadStatus        = errors.New("upload: remote server returned non-success status")
	ErrBadContentType   = errors.New("upload: remote content type not accepted")
	ErrUnsupportedInput = errors.New("upload: unsupported request type")
)
