package gdata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/core/ports/driven"
	"github.com/GAM-team/gam/internal/logger"
)

// Ensure Transport implements the interface.
var _ driven.FeedTransport = (*Transport)(nil)

const (
	// ContentType is sent with every feed body.
	ContentType = "application/atom+xml; charset=UTF-8"

	// ProtocolVersion is the GData-Version header value.
	ProtocolVersion = "2"

	defaultTimeout = 60 * time.Second

	// DefaultMaxResponseBytes bounds how much of a response is read.
	DefaultMaxResponseBytes = 32 << 20
)

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient replaces the base HTTP client. Authentication still wraps
// its transport.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) { t.base = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(t *Transport) { t.userAgent = ua }
}

// WithMaxResponseBytes sets the largest response body Post accepts.
func WithMaxResponseBytes(n int64) Option {
	return func(t *Transport) { t.maxResponse = n }
}

// Transport posts feeds over HTTP.
type Transport struct {
	base        *http.Client
	client      *http.Client
	limiter     *RateLimiter
	userAgent   string
	maxResponse int64
}

// NewTransport creates a transport from the transport settings.
func NewTransport(settings domain.TransportSettings, opts ...Option) *Transport {
	t := &Transport{
		base:        &http.Client{Timeout: defaultTimeout},
		limiter:     NewRateLimiter(settings.RequestsPerSecond, settings.Burst),
		userAgent:   "gam",
		maxResponse: DefaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.client = t.base
	if settings.AccessToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: settings.AccessToken,
			TokenType:   "Bearer",
		})
		t.client = &http.Client{
			Timeout:   t.base.Timeout,
			Transport: &oauth2.Transport{Source: src, Base: t.base.Transport},
		}
	}
	return t
}

// Post sends body to url and returns the response document. Non-2xx
// responses are returned as classified errors.
func (t *Transport) Post(ctx context.Context, url string, body []byte) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("Content-Type", ContentType)
	req.Header.Set("GData-Version", ProtocolVersion)
	req.Header.Set("User-Agent", t.userAgent)

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	logger.Debug("Transport: %s %d in %s", url, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if err := googleapi.CheckResponse(resp); err != nil {
		if resp.StatusCode == http.StatusTooManyRequests {
			t.limiter.Backoff(retryAfter(resp.Header.Get("Retry-After")))
		}
		return nil, WrapError(err)
	}

	// one byte past the limit tells a full body from a truncated one
	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxResponse+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if int64(len(data)) > t.maxResponse {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, t.maxResponse)
	}
	return data, nil
}

// retryAfter parses the delay-seconds form of Retry-After.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
