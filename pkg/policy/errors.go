package policy

import "errors"

var (
	ErrPolicyNotFound = errors.New("upload policy not found")
	ErrInvalidPolicy  = errors.New("invalid upload policy")
)
