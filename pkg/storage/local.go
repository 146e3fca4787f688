package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dmitrymomot/ueditor/pkg/state"
)

// LocalStorage implements Adapter on the local filesystem.
// All keys resolve inside baseDir; keys escaping it are rejected.
type LocalStorage struct {
	baseDir      string
	dirPerm      os.FileMode
	filePerm     os.FileMode
	writeTimeout time.Duration
}

// LocalOption configures LocalStorage.
type LocalOption func(*LocalStorage)

// WithLocalWriteTimeout bounds Put and Move. Without it only the caller's
// context deadline applies.
func WithLocalWriteTimeout(timeout time.Duration) LocalOption {
	return func(s *LocalStorage) {
		s.writeTimeout = timeout
	}
}

// WithLocalPermissions overrides the default 0755 directory and 0644 file modes.
func WithLocalPermissions(dirPerm, filePerm os.FileMode) LocalOption {
	return func(s *LocalStorage) {
		if dirPerm != 0 {
			s.dirPerm = dirPerm
		}
		if filePerm != 0 {
			s.filePerm = filePerm
		}
	}
}

// NewLocalStorage creates a filesystem adapter rooted at baseDir.
// baseDir is resolved to an absolute path and created when missing.
func NewLocalStorage(baseDir string, opts ...LocalOption) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve base directory: %v", ErrFailedToGetAbsolutePath, err)
	}

	s := &LocalStorage{
		baseDir:  absBaseDir,
		dirPerm:  0755,
		filePerm: 0644,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(absBaseDir, s.dirPerm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err)
	}

	return s, nil
}

// BaseDir returns the absolute storage root.
func (s *LocalStorage) BaseDir() string {
	return s.baseDir
}

// Put writes r to key. Partial files are removed when the write fails.
func (s *LocalStorage) Put(ctx context.Context, key string, r io.Reader, _ int64) error {
	if s.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
	}

	absPath, err := s.resolvePath(key)
	if err != nil {
		return state.New(state.ErrWriteContent, err)
	}
	if err := s.ensureDir(absPath); err != nil {
		return err
	}

	dst, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, s.filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return state.New(state.ErrDirNotWriteable, err)
		}
		return state.New(state.ErrWriteContent, fmt.Errorf("%w: %v", ErrFailedToCreateFile, err))
	}

	if _, err := copyWithContext(ctx, dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(absPath)
		return state.New(state.ErrWriteContent, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(absPath)
		return state.New(state.ErrWriteContent, fmt.Errorf("%w: %v", ErrFailedToWriteFile, err))
	}

	return nil
}

// Move renames tempPath to key, falling back to copy and delete when the
// staged file lives on another device.
func (s *LocalStorage) Move(ctx context.Context, key, tempPath string) error {
	if s.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
	}

	if _, err := os.Stat(tempPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return state.New(state.ErrTmpFileNotFound, err)
		}
		return state.New(state.ErrTmpFile, err)
	}

	absPath, err := s.resolvePath(key)
	if err != nil {
		return state.New(state.ErrFileMove, err)
	}
	if err := s.ensureDir(absPath); err != nil {
		return err
	}

	err = os.Rename(tempPath, absPath)
	switch {
	case err == nil:
	case errors.Is(err, syscall.EXDEV):
		if err := s.copyFile(ctx, tempPath, absPath); err != nil {
			return err
		}
		_ = os.Remove(tempPath)
	case errors.Is(err, fs.ErrPermission):
		return state.New(state.ErrDirNotWriteable, err)
	default:
		return state.New(state.ErrFileMove, fmt.Errorf("%w: %v", ErrFailedToMoveFile, err))
	}

	// Staged uploads are usually created 0600.
	_ = os.Chmod(absPath, s.filePerm)
	return nil
}

// List walks prefix recursively in lexical order. Hidden files and
// directories are skipped. Modification times are truncated to seconds.
func (s *LocalStorage) List(ctx context.Context, prefix string, exts []string, offset, limit int) (Page, error) {
	root, err := s.resolvePath(prefix)
	if err != nil {
		return Page{Entries: []Entry{}}, state.New(state.ErrFileNotFound, err)
	}

	var matched []string
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Missing root or unreadable subtree: list what we can.
			if d != nil && d.IsDir() && p != root {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !matchExt(d.Name(), exts) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		matched = append(matched, filepath.ToSlash(rel))
		return nil
	})
	if walkErr != nil {
		return Page{Entries: []Entry{}}, state.New(state.ErrFileNotFound, fmt.Errorf("%w: %v", ErrFailedToReadDirectory, walkErr))
	}

	if len(matched) == 0 {
		return Page{Entries: []Entry{}}, state.Errorf(state.ErrFileNotFound, "%w: %s", ErrNoMatchingFiles, prefix)
	}

	start, end := window(len(matched), offset, limit)
	keyPrefix := strings.TrimPrefix(filepath.ToSlash(prefix), "/")
	entries := make([]Entry, 0, end-start)
	for _, rel := range matched[start:end] {
		var mtime int64
		if info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err == nil {
			mtime = info.ModTime().Unix()
		}
		entries = append(entries, Entry{
			MTime: mtime,
			URL:   path.Join(keyPrefix, rel),
		})
	}

	return Page{Entries: entries, Total: len(matched)}, nil
}

func (s *LocalStorage) ensureDir(absPath string) error {
	if err := os.MkdirAll(filepath.Dir(absPath), s.dirPerm); err != nil {
		return state.New(state.ErrCreateDir, fmt.Errorf("%w: %v", ErrFailedToCreateDirectory, err))
	}
	return nil
}

func (s *LocalStorage) copyFile(ctx context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return state.New(state.ErrFileMove, fmt.Errorf("%w: %v", ErrFailedToOpenFile, err))
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, s.filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return state.New(state.ErrDirNotWriteable, err)
		}
		return state.New(state.ErrFileMove, fmt.Errorf("%w: %v", ErrFailedToCreateFile, err))
	}

	if _, err := copyWithContext(ctx, out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return state.New(state.ErrFileMove, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return state.New(state.ErrFileMove, fmt.Errorf("%w: %v", ErrFailedToWriteFile, err))
	}
	return nil
}

// copyWithContext copies in 32KB chunks and checks ctx between chunks.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	written := int64(0)
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			nw, writeErr := dst.Write(buf[:n])
			if writeErr != nil {
				return written, fmt.Errorf("%w: %v", ErrFailedToWriteFile, writeErr)
			}
			written += int64(nw)
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("%w: %v", ErrFailedToReadFile, readErr)
		}
	}
}

// resolvePath joins key onto baseDir and rejects anything that escapes it.
func (s *LocalStorage) resolvePath(key string) (string, error) {
	key = filepath.Clean(filepath.FromSlash(key))
	absPath := filepath.Join(s.baseDir, key)

	absPath, err := filepath.Abs(absPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToGetAbsolutePath, err)
	}

	if !strings.HasPrefix(absPath, s.baseDir+string(filepath.Separator)) && absPath != s.baseDir {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, key)
	}

	return absPath, nil
}
