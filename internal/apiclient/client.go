// Package apiclient is the single outbound adapter to the Nexus backend.
// It owns the base URL, the JSON headers and the per-request timeout; it
// never retries.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"nexus-hvac-client/internal/logger"
	"nexus-hvac-client/internal/metrics"
	appErrors "nexus-hvac-client/pkg/errors"
)

const (
	DefaultTimeout  = 10 * time.Second
	RequestIDHeader = "X-Request-ID"

	maxBodyBytes = 4 << 20
)

type Config struct {
	BaseURL      string
	Timeout      time.Duration
	RateLimitRPS float64
	Burst        int
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

type Client struct {
	baseURL *url.URL
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
	metrics *metrics.ClientMetrics
}

// Request describes one call. Route is the templated path used as a metric
// label; it defaults to Path.
type Request struct {
	Method string
	Path   string
	Route  string
	Query  url.Values
	Body   any
}

func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL: base,
		timeout: timeout,
		http:    &http.Client{},
		log:     logger.Named("apiclient"),
	}
	if cfg.RateLimitRPS > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Do sends req and decodes a 2xx JSON body into out (which may be nil).
// A *[]byte out receives the body undecoded.
// Failures are *errors.TimeoutError, *errors.NetworkError or
// *errors.HTTPError; a cancelled ctx is returned as ctx.Err().
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	route := req.Route
	if route == "" {
		route = req.Path
	}
	target := c.resolve(req.Path, req.Query)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var payload io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return appErrors.NewAppError("ENCODE_ERROR", "failed to encode request body", err)
		}
		payload = bytes.NewReader(data)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, req.Method, target, payload)
	if err != nil {
		return appErrors.NewAppError("REQUEST_ERROR", "failed to build request", err)
	}
	requestID := uuid.New().String()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	log := c.log.With(
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("url", target),
	)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		err = c.classify(ctx, reqCtx, target, req.Method, err)
		c.metrics.ObserveRequest(req.Method, route, outcome(err), time.Since(start))
		log.Debug("Request failed", zap.Error(err), zap.Duration("latency", time.Since(start)))
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		err = c.classify(ctx, reqCtx, target, req.Method, err)
		c.metrics.ObserveRequest(req.Method, route, outcome(err), time.Since(start))
		return err
	}

	latency := time.Since(start)
	log.Debug("Request completed", zap.Int("status_code", resp.StatusCode), zap.Duration("latency", latency))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &appErrors.HTTPError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		c.metrics.ObserveRequest(req.Method, route, "http_error", latency)
		return httpErr
	}
	c.metrics.ObserveRequest(req.Method, route, "ok", latency)

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return appErrors.NewAppError("DECODE_ERROR", "failed to decode response from "+route, err)
	}
	return nil
}

// resolve joins an already escaped path onto the base URL.
func (c *Client) resolve(path string, query url.Values) string {
	target := strings.TrimRight(c.baseURL.String(), "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

func (c *Client) classify(parent, reqCtx context.Context, target, method string, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &appErrors.TimeoutError{URL: target, Timeout: c.timeout}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &appErrors.TimeoutError{URL: target, Timeout: c.timeout}
	}
	return &appErrors.NetworkError{Op: method, URL: target, Err: err}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case appErrors.IsTimeout(err):
		return "timeout"
	case appErrors.IsNetwork(err):
		return "network"
	default:
		return "cancelled"
	}
}
