package editor

import "errors"

var (
	ErrInvalidConfig   = errors.New("invalid editor config")
	ErrUnknownBackend  = errors.New("unknown storage backend")
	ErrBackendSettings = errors.New("invalid storage backend settings")
)
