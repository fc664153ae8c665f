// Package client is the single chokepoint for communication with the
// Bastion fraud-detection API. No other package issues raw HTTP calls.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bastion/internal/config"
	"bastion/internal/logging"
)

// Client is a typed HTTP client for the Bastion API. Construct one at
// startup with New and pass it to consumers; it is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	logger  *slog.Logger
	headers http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = d }
}

// WithAPIKey sets the X-API-Key header sent on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithLogger replaces the failure logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHeader adds a default header to every request. Later values for the
// same header override earlier ones.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// New builds a client for the given base URL. The default timeout is 30s;
// the original service issued requests with no deadline at all, so any
// timeout here is a deliberate behavior change.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: config.DefaultRequestTimeout},
		logger:  logging.NewLogger("info", "api-client", config.GetEnv("ENV", "development")),
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromEnv builds a client from the process environment: base URL,
// API key and timeout are each resolved once here.
func NewFromEnv(opts ...Option) *Client {
	base := []Option{
		WithAPIKey(config.APIKey()),
		WithTimeout(config.RequestTimeout()),
	}
	return New(config.APIBaseURL(), append(base, opts...)...)
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// joinURL joins base and endpoint without doubling or dropping slashes,
// whatever combination of trailing/leading slashes the inputs carry.
func joinURL(base, endpoint string) string {
	if base == "" {
		return endpoint
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(endpoint, "/")
}

// errorBody is the error envelope the API uses for every failure.
type errorBody struct {
	Detail string `json:"detail"`
}

// send performs one request and decodes the JSON response into out.
// Every failure path builds a *RequestError, logs it once and returns it;
// errors are never swallowed here and never recovered.
func (c *Client) send(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	u := joinURL(c.baseURL, endpoint)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return c.fail(&RequestError{Endpoint: endpoint, Kind: KindDecode, Err: err})
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return c.fail(&RequestError{Endpoint: endpoint, Kind: KindNetwork, Err: err})
	}

	req.Header.Set("Content-Type", "application/json")
	for key, vals := range c.headers {
		req.Header[key] = vals
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return c.fail(&RequestError{Endpoint: endpoint, Kind: KindNetwork, Err: err})
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(&RequestError{Endpoint: endpoint, Kind: KindNetwork, Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{Endpoint: endpoint, Kind: KindHTTP, StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			reqErr.Detail = eb.Detail
		}
		return c.fail(reqErr)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return c.fail(&RequestError{Endpoint: endpoint, Kind: KindDecode, Err: err})
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	return c.send(ctx, http.MethodGet, endpoint, query, nil, out)
}

func (c *Client) fail(reqErr *RequestError) error {
	c.logger.Error("api request failed",
		slog.String("endpoint", reqErr.Endpoint),
		slog.String("kind", reqErr.Kind.String()),
		slog.Int("status", reqErr.StatusCode),
		slog.String("error", reqErr.Error()),
	)
	return reqErr
}
