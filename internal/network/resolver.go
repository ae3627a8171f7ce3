package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds each provider request.
const DefaultTimeout = 3000 * time.Millisecond

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 1 << 20

const targetPlaceholder = "{ip}"

// Resolver tries providers in order and returns the first accepted record.
type Resolver struct {
	client    *http.Client
	logger    *slog.Logger
	timeout   time.Duration
	timezone  func() string
	geo       GeoLookup
	userAgent string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the client used for provider requests.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.client = client
		}
	}
}

// WithLogger sets the logger used to report rejected providers.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTimeout sets the per-provider request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithTimezoneFunc sets how the host timezone is read for local inference.
func WithTimezoneFunc(fn func() string) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.timezone = fn
		}
	}
}

// WithGeoLookup enables mmdb providers.
func WithGeoLookup(geo GeoLookup) Option {
	return func(r *Resolver) {
		r.geo = geo
	}
}

// WithUserAgent sets the User-Agent sent to providers.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) {
		r.userAgent = ua
	}
}

// NewResolver returns a Resolver with a 3 second per-provider timeout.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		client:   &http.Client{},
		logger:   slog.New(slog.DiscardHandler),
		timeout:  DefaultTimeout,
		timezone: SystemTimezone,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve tries each provider strictly in order, one at a time, and returns
// the first accepted record. When every provider is rejected it returns the
// local inference record. It never fails.
func (r *Resolver) Resolve(ctx context.Context, specs []Spec) Record {
	for i, spec := range specs {
		logger := r.logger.With(
			slog.String("provider", spec.Name),
			slog.Int("position", i),
		)
		logger.Debug("Trying network provider", slog.String("url", spec.URL))

		rec, err := r.candidate(spec).attempt(ctx)
		if err != nil {
			logRejection(logger, err)
			continue
		}

		logger.Debug("Network provider accepted",
			slog.String("status", string(rec.Status)),
			slog.String("source", rec.Source))
		return enrich(rec)
	}

	timezone := TimezoneFromContext(ctx)
	if timezone == "" {
		timezone = r.timezone()
	}
	r.logger.Warn("All network providers failed, using local inference",
		slog.Int("providers", len(specs)),
		slog.String("timezone", timezone))
	return enrich(LocalFallback(timezone))
}

// candidate is one provider compiled into a strategy that either accepts a
// record or explains why it was rejected.
type candidate interface {
	attempt(ctx context.Context) (Record, error)
}

type rejected struct{ err error }

func (c rejected) attempt(context.Context) (Record, error) { return Record{}, c.err }

func (r *Resolver) candidate(spec Spec) candidate {
	if err := spec.Validate(); err != nil {
		return rejected{err: err}
	}
	switch spec.Type {
	case TypeJSON:
		return jsonCandidate{resolver: r, spec: spec}
	case TypeText:
		return textCandidate{resolver: r, spec: spec}
	case TypeMMDB:
		return geoCandidate{geo: r.geo}
	default:
		return rejected{err: fmt.Errorf("%w %q", ErrInvalidProvider, spec.Name)}
	}
}

// fetch performs one GET bounded by the resolver timeout. Any failure,
// including a non-2xx status, is reported as ErrTransport.
func (r *Resolver) fetch(ctx context.Context, rawURL, accept string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", accept)
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	return body, nil
}

// requestURL expands the spec URL for the target in ctx. Providers that only
// report on their caller are skipped when a target is set.
func requestURL(ctx context.Context, spec Spec) (string, error) {
	target := TargetIPFromContext(ctx)
	if target != "" && !spec.Targeted() {
		return "", fmt.Errorf("%w: %s only resolves its caller", ErrNoTarget, spec.Name)
	}
	return expandURL(spec.URL, target), nil
}

// expandURL substitutes the target IP for the {ip} placeholder; without a
// target the placeholder is dropped, turning the URL into a self lookup.
func expandURL(raw, target string) string {
	if !strings.Contains(raw, targetPlaceholder) {
		return raw
	}
	return strings.ReplaceAll(raw, targetPlaceholder, url.PathEscape(target))
}

type jsonCandidate struct {
	resolver *Resolver
	spec     Spec
}

func (c jsonCandidate) attempt(ctx context.Context) (Record, error) {
	rawURL, err := requestURL(ctx, c.spec)
	if err != nil {
		return Record{}, err
	}
	body, err := c.resolver.fetch(ctx, rawURL, "application/json")
	if err != nil {
		return Record{}, err
	}

	doc, err := DecodeValue(body)
	if err != nil {
		return Record{}, fmt.Errorf("%w: decode: %w", ErrValidation, err)
	}

	if rule, hit := failureMarker(doc, c.spec.Failure); hit {
		return Record{}, fmt.Errorf("%w: %s == %v", ErrProviderFailure, rule.Path, rule.Equals)
	}

	if err := validateSchema(doc, c.spec.Schema); err != nil {
		return Record{}, err
	}

	rec := extract(doc, *c.spec.Fields)
	if rec.geographicallyEmpty() {
		return Record{}, ErrQualityGate
	}

	rec.Status = StatusVerified
	rec.Source = c.spec.Hostname()
	return rec, nil
}

func logRejection(logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, ErrTransport):
		logger.Warn("Network provider unreachable", slog.Any("error", err))
	case errors.Is(err, ErrNoTarget):
		logger.Debug("Network provider skipped", slog.Any("error", err))
	default:
		logger.Warn("Network provider rejected", slog.Any("error", err))
	}
}
