package storage

import (
	"context"
	"io"
	"path"
	"slices"
	"strings"
)

// Adapter is implemented by every storage backend.
// Errors returned by an Adapter carry a state code, see state.CodeOf.
type Adapter interface {
	// Put writes r to key, replacing any existing content.
	// size is a hint; pass -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	// Move transfers a staged local file to key. The staged file is consumed on success.
	Move(ctx context.Context, key, tempPath string) error
	// List returns files under prefix whose extension is in exts.
	// offset and limit apply to the filtered set where the backend supports it.
	// An empty result is reported as state.ErrFileNotFound.
	List(ctx context.Context, prefix string, exts []string, offset, limit int) (Page, error)
}

// Entry is a single listed file.
type Entry struct {
	MTime int64  `json:"mtime"` // modification time, unix seconds
	URL   string `json:"url"`   // storage key relative to the root
}

// Page is one slice of a listing together with the size of the filtered set.
type Page struct {
	Entries []Entry
	Total   int
}

// matchExt reports whether name has one of exts. A nil exts matches everything.
func matchExt(name string, exts []string) bool {
	if exts == nil {
		return true
	}
	return slices.Contains(exts, path.Ext(name))
}

// escapes reports whether key has a ".." path segment.
// Dots inside a segment, as in "my..notes.pdf", are allowed.
func escapes(key string) bool {
	return slices.Contains(strings.Split(key, "/"), "..")
}

// window clamps offset and limit to a slice of length n.
// A non-positive limit means no upper bound.
func window(n, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}
