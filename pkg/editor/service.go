package editor

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/ueditor/pkg/listing"
	"github.com/dmitrymomot/ueditor/pkg/logger"
	"github.com/dmitrymomot/ueditor/pkg/metrics"
	"github.com/dmitrymomot/ueditor/pkg/policy"
	"github.com/dmitrymomot/ueditor/pkg/requestid"
	"github.com/dmitrymomot/ueditor/pkg/state"
	"github.com/dmitrymomot/ueditor/pkg/storage"
	"github.com/dmitrymomot/ueditor/pkg/upload"
)

// ConfigAction returns the editor table. Its name is fixed by the client.
const ConfigAction = "config"

type operation string

const (
	opUploadImage  operation = "upload image"
	opUploadScrawl operation = "upload scrawl"
	opUploadVideo  operation = "upload video"
	opUploadFile   operation = "upload file"
	opCatchImage   operation = "catch image"
	opListImage    operation = "list image"
	opListFile     operation = "list file"
)

// Input carries the already parsed request values. Each action reads only
// the fields it needs.
type Input struct {
	// File is the staged upload for image, video and file actions.
	File *upload.DirectFile
	// Base64 is the encoded scrawl image.
	Base64 string
	// Sources are the remote URLs of a catch action.
	Sources []string
	// Start and Size select the listing window.
	Start int
	Size  int
}

// StateResult is the response of actions that fail before reaching a
// component, such as an unknown action name.
type StateResult struct {
	Code  state.Code `json:"-"`
	State string     `json:"state"`
}

// Service resolves editor action names to upload and listing operations.
// It is safe for concurrent use.
type Service struct {
	cfg       Config
	actions   map[string]operation
	policies  policy.Table
	pipeline  *upload.Pipeline
	listing   *listing.Service
	localizer *state.Localizer
	log       *slog.Logger
}

// Option configures a Service.
type Option func(*options)

type options struct {
	log        *slog.Logger
	localizer  *state.Localizer
	metrics    *metrics.Metrics
	uploadOpts []upload.Option
}

// WithLogger sets the logger shared by the service and its components.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithLocalizer renders states in the localizer's language.
func WithLocalizer(l *state.Localizer) Option {
	return func(o *options) {
		o.localizer = l
	}
}

// WithMetrics records upload and listing outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithUploadOptions passes extra options to the upload pipeline. They are
// applied after the service's own.
func WithUploadOptions(opts ...upload.Option) Option {
	return func(o *options) {
		o.uploadOpts = append(o.uploadOpts, opts...)
	}
}

// New validates cfg and wires the upload pipeline and listing service on
// top of adapter.
func New(cfg Config, adapter storage.Adapter, opts ...Option) (*Service, error) {
	o := &options{log: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	actions, err := cfg.actions()
	if err != nil {
		return nil, err
	}
	policies, err := cfg.Policies()
	if err != nil {
		return nil, err
	}

	pipeline, err := upload.New(adapter, append([]upload.Option{
		upload.WithLogger(o.log),
		upload.WithLocalizer(o.localizer),
		upload.WithMetrics(o.metrics),
	}, o.uploadOpts...)...)
	if err != nil {
		return nil, err
	}

	lister, err := listing.New(adapter, cfg.ListSources(),
		listing.WithLogger(o.log),
		listing.WithLocalizer(o.localizer),
		listing.WithMetrics(o.metrics),
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:       cfg,
		actions:   actions,
		policies:  policies,
		pipeline:  pipeline,
		listing:   lister,
		localizer: o.localizer,
		log:       o.log.With(logger.Component("editor")),
	}, nil
}

// Config returns the editor table served by the config action.
func (s *Service) Config() Config {
	return s.cfg
}

// Action runs the operation registered under name and returns its
// JSON-ready response: Config, upload.Result, upload.CatchResult,
// listing.Result or, for unknown names, StateResult with INVALID_ACTION.
//
// Every action runs with a request id, see package requestid.
func (s *Service) Action(ctx context.Context, name string, in Input) any {
	ctx, _ = requestid.Ensure(ctx)

	if name == ConfigAction {
		return s.cfg
	}

	op, ok := s.actions[name]
	if !ok {
		s.log.WarnContext(ctx, "unknown action", logger.Action(name))
		return StateResult{Code: state.ErrInvalidAction, State: s.localizer.Text(state.ErrInvalidAction)}
	}

	switch op {
	case opUploadImage:
		return s.pipeline.UploadFile(ctx, in.File, s.policies.MustGet(policy.Image))
	case opUploadVideo:
		return s.pipeline.UploadFile(ctx, in.File, s.policies.MustGet(policy.Video))
	case opUploadFile:
		return s.pipeline.UploadFile(ctx, in.File, s.policies.MustGet(policy.File))
	case opUploadScrawl:
		return s.pipeline.UploadBase64(ctx, upload.Base64Payload{Data: in.Base64}, s.policies.MustGet(policy.Scrawl))
	case opCatchImage:
		return s.pipeline.Catch(ctx, in.Sources, s.policies.MustGet(policy.Catcher))
	case opListImage:
		return s.listing.List(ctx, listing.Image, listing.Query{Start: in.Start, Size: in.Size})
	default:
		return s.listing.List(ctx, listing.File, listing.Query{Start: in.Start, Size: in.Size})
	}
}
