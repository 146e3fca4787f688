package state

import (
	"errors"
	"fmt"
)

// Code identifies the outcome of an upload or listing operation.
// The value doubles as the message key in the localization catalog.
type Code string

const (
	// Success is the only code with a fixed wire value. The editor client
	// compares the returned state against this exact literal.
	Success Code = "SUCCESS"

	ErrTmpFile         Code = "ERROR_TMP_FILE"
	ErrTmpFileNotFound Code = "ERROR_TMP_FILE_NOT_FOUND"
	ErrSizeExceed      Code = "ERROR_SIZE_EXCEED"
	ErrTypeNotAllowed  Code = "ERROR_TYPE_NOT_ALLOWED"
	ErrCreateDir       Code = "ERROR_CREATE_DIR"
	ErrDirNotWriteable Code = "ERROR_DIR_NOT_WRITEABLE"
	ErrFileMove        Code = "ERROR_FILE_MOVE"
	ErrFileNotFound    Code = "ERROR_FILE_NOT_FOUND"
	ErrWriteContent    Code = "ERROR_WRITE_CONTENT"
	ErrUnknown         Code = "ERROR_UNKNOWN"
	ErrDeadLink        Code = "ERROR_DEAD_LINK"
	ErrHTTPLink        Code = "ERROR_HTTP_LINK"
	ErrHTTPContentType Code = "ERROR_HTTP_CONTENTTYPE"
	ErrInvalidURL      Code = "INVALID_URL"
	ErrInvalidIP       Code = "INVALID_IP"
	ErrInvalidAction   Code = "INVALID_ACTION"
)

// Codes lists every code known to the catalog, in declaration order.
var Codes = []Code{
	Success,
	ErrTmpFile,
	ErrTmpFileNotFound,
	ErrSizeExceed,
	ErrTypeNotAllowed,
	ErrCreateDir,
	ErrDirNotWriteable,
	ErrFileMove,
	ErrFileNotFound,
	ErrWriteContent,
	ErrUnknown,
	ErrDeadLink,
	ErrHTTPLink,
	ErrHTTPContentType,
	ErrInvalidURL,
	ErrInvalidIP,
	ErrInvalidAction,
}

// Error carries a state code through ordinary error returns.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with a state code. err may be nil.
func New(code Code, err error) error {
	return &Error{Code: code, Err: err}
}

// Errorf formats a cause and wraps it with a state code.
func Errorf(code Code, format string, args ...any) error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}

// CodeOf extracts the state code from err.
// Returns Success for nil and ErrUnknown for errors without a code.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrUnknown
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
