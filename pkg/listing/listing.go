// Package listing pages through previously uploaded files by category.
package listing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/ueditor/pkg/logger"
	"github.com/dmitrymomot/ueditor/pkg/metrics"
	"github.com/dmitrymomot/ueditor/pkg/state"
	"github.com/dmitrymomot/ueditor/pkg/storage"
)

// Category is a listable group of uploads.
type Category string

const (
	Image Category = "image"
	File  Category = "file"
)

// Categories lists every category a Service must be configured for.
var Categories = []Category{Image, File}

// Source tells the service where a category lives and what it contains.
type Source struct {
	Path       string   // storage prefix, e.g. "storage/image/"
	AllowFiles []string // extensions with leading dot; nil lists everything
	PageSize   int      // page size when the query does not set one
}

// Query selects a page. Non-positive values fall back to the first page and
// the category's page size.
type Query struct {
	Start int
	Size  int
}

// Result is a listing page in the shape the editor client expects.
// List is never nil so it always encodes as a JSON array.
type Result struct {
	Code  state.Code      `json:"-"`
	State string          `json:"state"`
	List  []storage.Entry `json:"list"`
	Start int             `json:"start"`
	Total int             `json:"total"`
}

// Service lists stored files. Listings are read from the adapter on every
// call and never cached.
type Service struct {
	storage   storage.Adapter
	sources   map[Category]Source
	localizer *state.Localizer
	log       *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithLocalizer(l *state.Localizer) Option {
	return func(s *Service) {
		s.localizer = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New validates sources and returns a Service. Every category in Categories
// must be present.
func New(adapter storage.Adapter, sources map[Category]Source, opts ...Option) (*Service, error) {
	if adapter == nil {
		return nil, ErrNoStorage
	}

	copied := make(map[Category]Source, len(sources))
	for _, c := range Categories {
		src, ok := sources[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotConfigured, c)
		}
		if strings.TrimSpace(src.Path) == "" {
			return nil, fmt.Errorf("%w: %s: empty path", ErrInvalidSource, c)
		}
		if src.PageSize <= 0 {
			return nil, fmt.Errorf("%w: %s: page size must be positive", ErrInvalidSource, c)
		}
		copied[c] = src
	}

	s := &Service{
		storage: adapter,
		sources: copied,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("listing"))

	return s, nil
}

// List returns one page of category. An empty filtered set is reported as
// ERROR_FILE_NOT_FOUND with an empty list and zero total.
func (s *Service) List(ctx context.Context, c Category, q Query) Result {
	start := max(q.Start, 0)

	src, ok := s.sources[c]
	if !ok {
		return s.finish(ctx, c, Result{Start: start}, state.Errorf(state.ErrUnknown, "%w: %s", ErrUnknownCategory, c))
	}

	size := q.Size
	if size <= 0 {
		size = src.PageSize
	}

	page, err := s.storage.List(ctx, src.Path, src.AllowFiles, start, size)
	res := Result{Start: start, Total: page.Total, List: page.Entries}

	// Keys are root-relative; keep the configured leading slash in URLs.
	if strings.HasPrefix(src.Path, "/") {
		for i, e := range res.List {
			if !strings.HasPrefix(e.URL, "/") {
				res.List[i].URL = "/" + e.URL
			}
		}
	}

	return s.finish(ctx, c, res, err)
}

func (s *Service) finish(ctx context.Context, c Category, res Result, err error) Result {
	code := state.CodeOf(err)
	s.metrics.ObserveListing(string(c), string(code))

	if err != nil {
		level := slog.LevelWarn
		if code == state.ErrFileNotFound {
			level = slog.LevelDebug
		}
		s.log.Log(ctx, level, "listing failed",
			slog.String("category", string(c)),
			logger.State(code),
			logger.Error(err),
		)
		res.Total = 0
		res.List = []storage.Entry{}
	}
	if res.List == nil {
		res.List = []storage.Entry{}
	}

	res.Code = code
	res.State = s.localizer.Text(code)
	return res
}
