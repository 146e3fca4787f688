package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/ueditor/pkg/async"
	"github.com/dmitrymomot/ueditor/pkg/logger"
	"github.com/dmitrymomot/ueditor/pkg/policy"
	"github.com/dmitrymomot/ueditor/pkg/state"
)

// Fetch downloads one remote file and writes it to storage.
//
// The URL and the extension are checked before any network call. Every
// transport failure and non-2xx response is reported as ERROR_DEAD_LINK;
// the size limit is applied to the downloaded body.
func (p *Pipeline) Fetch(ctx context.Context, src RemoteSource, cfg policy.Config) Result {
	return p.fetchWith(ctx, p.log, src, cfg)
}

// Catch fetches every URL concurrently and returns one entry per URL in
// input order. A failed fetch never cancels its siblings. The aggregate
// state is SUCCESS whenever the list is non-empty.
func (p *Pipeline) Catch(ctx context.Context, urls []string, cfg policy.Config) CatchResult {
	batch := uuid.NewString()
	log := p.log.With(logger.BatchID(batch))
	log.DebugContext(ctx, "catching remote files", slog.Int("count", len(urls)))

	list := async.Map(ctx, urls, p.concurrency, func(ctx context.Context, u string) RemoteResult {
		return RemoteResult{
			Result: p.fetchWith(ctx, log.With(logger.Source(u)), RemoteSource{URL: u}, cfg),
			Source: u,
		}
	})

	code := state.Success
	if len(list) == 0 {
		code = state.ErrUnknown
	}
	return CatchResult{Code: code, State: p.localizer.Text(code), List: list}
}

func (p *Pipeline) fetchWith(ctx context.Context, log *slog.Logger, src RemoteSource, cfg policy.Config) Result {
	start := time.Now()
	res, err := p.fetch(ctx, src, cfg)
	return p.finishWith(ctx, log, cfg, start, res, err)
}

func (p *Pipeline) fetch(ctx context.Context, src RemoteSource, cfg policy.Config) (Result, error) {
	u, err := parseRemoteURL(src.URL)
	if err != nil {
		return Result{}, state.New(state.ErrInvalidURL, err)
	}
	if !p.allowPrivate {
		if err := checkPublicHost(u.Hostname()); err != nil {
			return Result{}, state.New(state.ErrInvalidIP, err)
		}
	}

	ext := path.Ext(u.Path)
	if !cfg.Allows(ext) {
		return Result{}, state.Errorf(state.ErrTypeNotAllowed, "extension %q is not allowed for %s", ext, cfg.Kind)
	}

	data, err := p.download(ctx, u, cfg.MaxSize)
	if err != nil {
		return Result{}, err
	}

	size := int64(len(data))
	if err := policy.Validate(size, ext, cfg); err != nil {
		return Result{}, err
	}

	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = ""
	}
	key := p.engine.Expand(cfg.PathFormat, name, ext)
	if err := p.storage.Put(ctx, key, bytes.NewReader(data), size); err != nil {
		return Result{}, err
	}

	return stored(key, name, ext, size), nil
}

// download performs the single GET. At most limit+1 bytes are read so the
// caller can still detect an oversized body. A limit of math.MaxInt64 reads
// the whole body.
func (p *Pipeline) download(ctx context.Context, u *url.URL, limit int64) ([]byte, error) {
	if p.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.fetchTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, state.New(state.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Referer", u.Scheme+"://"+u.Host)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, state.New(state.ErrDeadLink, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, state.Errorf(state.ErrDeadLink, "%w: %s", ErrBadStatus, resp.Status)
	}
	if p.contentType != "" && !strings.HasPrefix(resp.Header.Get("Content-Type"), p.contentType) {
		return nil, state.Errorf(state.ErrHTTPContentType, "%w: %q", ErrBadContentType, resp.Header.Get("Content-Type"))
	}

	var body io.Reader = resp.Body
	if limit >= 0 && limit < math.MaxInt64 {
		body = io.LimitReader(resp.Body, limit+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, state.New(state.ErrDeadLink, err)
	}
	return data, nil
}

// checkRedirect applies the host check to every redirect hop.
func (p *Pipeline) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return errors.New("stopped after 10 redirects")
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: redirect to %s", ErrMalformedURL, req.URL.Scheme)
	}
	if p.allowPrivate {
		return nil
	}
	return checkPublicHost(req.URL.Hostname())
}

func parseRemoteURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrMalformedURL, u.Scheme)
	}
	if u.Hostname() == "" || u.User != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedURL, raw)
	}
	return u, nil
}

func checkPublicHost(host string) error {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return fmt.Errorf("%w: %s", ErrForbiddenHost, host)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return nil
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("%w: %s", ErrForbiddenHost, host)
	}
	return nil
}
