package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/dmitrymomot/ueditor/pkg/logger"
	"github.com/dmitrymomot/ueditor/pkg/metrics"
	"github.com/dmitrymomot/ueditor/pkg/pathformat"
	"github.com/dmitrymomot/ueditor/pkg/policy"
	"github.com/dmitrymomot/ueditor/pkg/state"
	"github.com/dmitrymomot/ueditor/pkg/storage"
)

const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultConcurrency  = 4
	DefaultUserAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 11_2_3) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.90 Safari/537.36"
)

// Pipeline validates uploads against a policy, names them with the policy's
// path template and hands them to a storage adapter. It holds no per-request
// state and is safe for concurrent use.
type Pipeline struct {
	storage      storage.Adapter
	engine       *pathformat.Engine
	localizer    *state.Localizer
	log          *slog.Logger
	metrics      *metrics.Metrics
	client       *http.Client
	fetchTimeout time.Duration
	concurrency  int
	allowPrivate bool
	userAgent    string
	contentType  string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithLocalizer renders failure states in the localizer's language.
// Without it State carries the raw code.
func WithLocalizer(l *state.Localizer) Option {
	return func(p *Pipeline) {
		p.localizer = l
	}
}

// WithEngine sets the path template engine, mainly to pin the clock in tests.
func WithEngine(e *pathformat.Engine) Option {
	return func(p *Pipeline) {
		if e != nil {
			p.engine = e
		}
	}
}

// WithMetrics records every finished upload.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithHTTPClient replaces the client used for remote fetches. The caller's
// client is used as is; redirects are not re-validated.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.client = c
		}
	}
}

// WithFetchTimeout bounds each remote fetch. Zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d >= 0 {
			p.fetchTimeout = d
		}
	}
}

// WithConcurrency caps parallel fetches in a catcher batch.
// Non-positive values fetch every URL at once.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		p.concurrency = n
	}
}

// WithAllowPrivateHosts disables the INVALID_IP check for loopback, private
// and link-local addresses.
func WithAllowPrivateHosts(allow bool) Option {
	return func(p *Pipeline) {
		p.allowPrivate = allow
	}
}

// WithUserAgent overrides the browser User-Agent sent with remote fetches.
func WithUserAgent(ua string) Option {
	return func(p *Pipeline) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

// WithContentTypePrefix rejects fetched bodies whose Content-Type does not
// start with prefix, for example "image/".
func WithContentTypePrefix(prefix string) Option {
	return func(p *Pipeline) {
		p.contentType = prefix
	}
}

// New creates a Pipeline writing to adapter.
func New(adapter storage.Adapter, opts ...Option) (*Pipeline, error) {
	if adapter == nil {
		return nil, ErrNoStorage
	}

	p := &Pipeline{
		storage:      adapter,
		engine:       pathformat.New(),
		log:          logger.Discard(),
		fetchTimeout: DefaultFetchTimeout,
		concurrency:  DefaultConcurrency,
		userAgent:    DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		p.client = &http.Client{CheckRedirect: p.checkRedirect}
	}
	p.log = p.log.With(logger.Component("upload"))

	return p, nil
}

// Upload dispatches req to the matching entry point.
func (p *Pipeline) Upload(ctx context.Context, req Request, cfg policy.Config) Result {
	switch r := req.(type) {
	case nil:
		return p.finish(ctx, cfg, time.Now(), Result{}, state.New(state.ErrFileNotFound, ErrNoFile))
	case DirectFile:
		return p.UploadFile(ctx, &r, cfg)
	case *DirectFile:
		return p.UploadFile(ctx, r, cfg)
	case Base64Payload:
		return p.UploadBase64(ctx, r, cfg)
	case *Base64Payload:
		if r == nil {
			return p.UploadBase64(ctx, Base64Payload{}, cfg)
		}
		return p.UploadBase64(ctx, *r, cfg)
	case RemoteSource:
		return p.Fetch(ctx, r, cfg)
	case *RemoteSource:
		if r == nil {
			return p.Fetch(ctx, RemoteSource{}, cfg)
		}
		return p.Fetch(ctx, *r, cfg)
	default:
		return p.finish(ctx, cfg, time.Now(), Result{}, state.Errorf(state.ErrUnknown, "%w: %T", ErrUnsupportedInput, req))
	}
}

// UploadFile moves a staged multipart upload into storage.
func (p *Pipeline) UploadFile(ctx context.Context, f *DirectFile, cfg policy.Config) Result {
	start := time.Now()
	res, err := p.uploadFile(ctx, f, cfg)
	return p.finish(ctx, cfg, start, res, err)
}

func (p *Pipeline) uploadFile(ctx context.Context, f *DirectFile, cfg policy.Config) (Result, error) {
	if f == nil || f.TempPath == "" {
		return Result{}, state.New(state.ErrFileNotFound, ErrNoFile)
	}

	info, err := os.Stat(f.TempPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, state.New(state.ErrTmpFileNotFound, err)
		}
		return Result{}, state.New(state.ErrTmpFile, err)
	}

	size := f.Size
	if size < 0 {
		size = info.Size()
	}
	ext := path.Ext(f.OriginalName)

	if err := policy.Validate(size, ext, cfg); err != nil {
		return Result{}, err
	}

	key := p.engine.Expand(cfg.PathFormat, f.OriginalName, ext)
	if err := p.storage.Move(ctx, key, f.TempPath); err != nil {
		return Result{}, err
	}

	return stored(key, f.OriginalName, ext, size), nil
}

// UploadBase64 decodes an inline payload and writes it to storage.
// The size check runs against the decoded length.
func (p *Pipeline) UploadBase64(ctx context.Context, b Base64Payload, cfg policy.Config) Result {
	start := time.Now()
	res, err := p.uploadBase64(ctx, b, cfg)
	return p.finish(ctx, cfg, start, res, err)
}

func (p *Pipeline) uploadBase64(ctx context.Context, b Base64Payload, cfg policy.Config) (Result, error) {
	if strings.TrimSpace(b.Data) == "" {
		return Result{}, state.New(state.ErrFileNotFound, ErrEmptyPayload)
	}

	data, err := decodeBase64(b.Data)
	if err != nil {
		return Result{}, state.New(state.ErrWriteContent, err)
	}

	name := b.Name
	if name == "" {
		name = DefaultBase64Name
	}
	ext := path.Ext(name)
	size := int64(len(data))

	if err := policy.Validate(size, ext, cfg); err != nil {
		return Result{}, err
	}

	key := p.engine.Expand(cfg.PathFormat, name, ext)
	if err := p.storage.Put(ctx, key, bytes.NewReader(data), size); err != nil {
		return Result{}, err
	}

	return stored(key, name, ext, size), nil
}

// decodeBase64 accepts padded or unpadded standard encoding, optionally
// behind a data URI header.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ";base64,"); i >= 0 {
			s = s[i+len(";base64,"):]
		}
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(s); rawErr == nil {
		return raw, nil
	}
	return nil, err
}

func stored(key, original, ext string, size int64) Result {
	return Result{
		URL:      key,
		Title:    path.Base(key),
		Original: original,
		Type:     ext,
		Size:     size,
	}
}

// finish stamps the state onto res, logs the outcome and records metrics.
// Failed results carry only the state.
func (p *Pipeline) finish(ctx context.Context, cfg policy.Config, start time.Time, res Result, err error) Result {
	return p.finishWith(ctx, p.log, cfg, start, res, err)
}

func (p *Pipeline) finishWith(ctx context.Context, log *slog.Logger, cfg policy.Config, start time.Time, res Result, err error) Result {
	code := state.CodeOf(err)
	elapsed := time.Since(start)
	p.metrics.ObserveUpload(string(cfg.Kind), string(code), res.Size, elapsed)

	if err != nil {
		log.WarnContext(ctx, "upload rejected",
			logger.Kind(cfg.Kind),
			logger.State(code),
			logger.Duration(elapsed),
			logger.Error(err),
		)
		return Result{Code: code, State: p.localizer.Text(code)}
	}

	log.InfoContext(ctx, "upload stored",
		logger.Kind(cfg.Kind),
		logger.Key(res.URL),
		logger.Size(res.Size),
		logger.Duration(elapsed),
	)
	res.Code = code
	res.State = p.localizer.Text(code)
	return res
}
