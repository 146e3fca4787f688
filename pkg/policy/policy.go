// Package policy validates uploads against the per-kind size and type rules
// configured for the editor.
package policy

import (
	"fmt"
	"slices"

	"github.com/dmitrymomot/ueditor/pkg/state"
)

// Kind names an upload operation with its own policy.
type Kind string

const (
	Image   Kind = "image"
	Scrawl  Kind = "scrawl"
	Video   Kind = "video"
	File    Kind = "file"
	Catcher Kind = "catcher"
)

// Config is the immutable policy for one upload kind.
type Config struct {
	Kind       Kind
	PathFormat string
	MaxSize    int64
	// AllowFiles lists permitted extensions with their leading dot.
	// A nil slice disables the type check.
	AllowFiles []string
}

// Allows reports whether ext passes the type check.
// Matching is exact and case-sensitive.
func (c Config) Allows(ext string) bool {
	if c.AllowFiles == nil {
		return true
	}
	return slices.Contains(c.AllowFiles, ext)
}

// Validate checks size first and extension second; the first failure wins.
// A negative size means the size is unknown and is rejected.
func Validate(size int64, ext string, cfg Config) error {
	if size < 0 || size > cfg.MaxSize {
		return state.Errorf(state.ErrSizeExceed, "size %d exceeds %d bytes limit for %s", size, cfg.MaxSize, cfg.Kind)
	}
	if !cfg.Allows(ext) {
		return state.Errorf(state.ErrTypeNotAllowed, "extension %q is not allowed for %s", ext, cfg.Kind)
	}
	return nil
}

// Table maps upload kinds to their policies. Build it once at startup and
// share it read-only.
type Table map[Kind]Config

// NewTable indexes configs by kind. Duplicate kinds are a configuration error.
func NewTable(configs ...Config) (Table, error) {
	t := make(Table, len(configs))
	for _, c := range configs {
		if c.Kind == "" {
			return nil, fmt.Errorf("%w: empty kind", ErrInvalidPolicy)
		}
		if _, ok := t[c.Kind]; ok {
			return nil, fmt.Errorf("%w: duplicate kind %s", ErrInvalidPolicy, c.Kind)
		}
		if c.MaxSize <= 0 {
			return nil, fmt.Errorf("%w: %s: max size must be positive", ErrInvalidPolicy, c.Kind)
		}
		if c.PathFormat == "" {
			return nil, fmt.Errorf("%w: %s: empty path format", ErrInvalidPolicy, c.Kind)
		}
		t[c.Kind] = c
	}
	return t, nil
}

// Get returns the policy for kind.
func (t Table) Get(kind Kind) (Config, bool) {
	c, ok := t[kind]
	return c, ok
}

// Require fails when any of kinds has no policy. Call it at startup.
func (t Table) Require(kinds ...Kind) error {
	for _, k := range kinds {
		if _, ok := t[k]; !ok {
			return fmt.Errorf("%w: %s", ErrPolicyNotFound, k)
		}
	}
	return nil
}

// MustGet returns the policy for kind or panics.
func (t Table) MustGet(kind Kind) Config {
	c, ok := t[kind]
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrPolicyNotFound, kind))
	}
	return c
}
