package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var _ Transport = (*HTTP)(nil)

// HTTP implements Transport on top of resty.
type HTTP struct {
	endpoint string
	timeout  time.Duration
	headers  map[string]string
	client   *resty.Client
	log      Logger
}

// Option customizes an HTTP transport.
type Option func(*HTTP)

// WithTimeout sets the per-request timeout. Zero keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) { h.timeout = d }
}

// WithRestyClient makes the transport use an existing resty client. Its base
// URL, timeout and pre-request hook are overwritten.
func WithRestyClient(c *resty.Client) Option {
	return func(h *HTTP) { h.client = c }
}

// WithHeaders adds headers sent on every request.
func WithHeaders(headers map[string]string) Option {
	return func(h *HTTP) {
		if len(headers) == 0 {
			return
		}
		if h.headers == nil {
			h.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			h.headers[k] = v
		}
	}
}

// WithLogger routes request diagnostics to log.
func WithLogger(log Logger) Option {
	return func(h *HTTP) { h.log = log }
}

// NewHTTP creates a transport bound to endpoint.
func NewHTTP(endpoint string, opts ...Option) (*HTTP, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, &ConfigurationError{Setting: "endpoint"}
	}

	h := &HTTP{endpoint: endpoint}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	if h.timeout < 0 {
		return nil, &ConfigurationError{Setting: "timeout", Reason: "must not be negative"}
	}
	if h.timeout == 0 {
		h.timeout = DefaultTimeout
	}
	if h.client == nil {
		h.client = resty.New()
	}
	h.log = ensureLogger(h.log)

	h.client.
		SetBaseURL(endpoint).
		SetTimeout(h.timeout).
		SetPreRequestHook(recordRequest)
	if len(h.headers) > 0 {
		h.client.SetHeaders(h.headers)
	}

	return h, nil
}

// Endpoint returns the base URL requests are resolved against.
func (h *HTTP) Endpoint() string { return h.endpoint }

// Timeout returns the effective per-request timeout.
func (h *HTTP) Timeout() time.Duration { return h.timeout }

// Client exposes the underlying resty client.
func (h *HTTP) Client() *resty.Client { return h.client }

// Get fetches uri and expects 200.
func (h *HTTP) Get(ctx context.Context, uri string, query url.Values) ([]byte, error) {
	return h.do(ctx, call{method: http.MethodGet, uri: uri, query: query}, http.StatusOK)
}

// Post sends body to uri and expects 201.
func (h *HTTP) Post(ctx context.Context, uri string, body []byte) ([]byte, error) {
	return h.do(ctx, call{method: http.MethodPost, uri: uri, body: body, write: true}, http.StatusCreated)
}

// Patch sends body to uri and expects 200.
func (h *HTTP) Patch(ctx context.Context, uri string, body []byte) ([]byte, error) {
	return h.do(ctx, call{method: http.MethodPatch, uri: uri, body: body, write: true}, http.StatusOK)
}

// Put sends body to uri and expects 200.
func (h *HTTP) Put(ctx context.Context, uri string, body []byte) ([]byte, error) {
	return h.do(ctx, call{method: http.MethodPut, uri: uri, body: body, write: true}, http.StatusOK)
}

// Delete removes uri and expects 204. Any response body is discarded.
func (h *HTTP) Delete(ctx context.Context, uri string) error {
	_, err := h.do(ctx, call{method: http.MethodDelete, uri: uri}, http.StatusNoContent)
	return err
}

type call struct {
	method string
	uri    string
	query  url.Values
	body   []byte
	write  bool
}

func (h *HTTP) do(ctx context.Context, c call, accepted ...int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, rec := withRecorder(ctx)

	req := h.client.R().SetContext(ctx)
	if len(c.query) > 0 {
		req.SetQueryParamsFromValues(c.query)
	}
	if c.write {
		req.SetHeader("Content-Type", DefaultContentType)
		if c.body != nil {
			req.SetBody(c.body)
		}
	}

	start := time.Now()
	resp, err := req.Execute(c.method, c.uri)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", c.method, c.uri, err)
	}

	status := resp.StatusCode()
	h.log.DebugObj("transport request completed", "transport_request", map[string]any{
		"method":     c.method,
		"uri":        c.uri,
		"status":     status,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	if !slices.Contains(accepted, status) {
		header := resp.Header().Clone()
		if header == nil {
			header = http.Header{}
		}
		statusErr := &UnexpectedStatusError{Debug: DebugInfo{
			Response: ResponseInfo{
				Status: status,
				Body:   string(resp.Body()),
				Header: header,
			},
			Request: rec.request(resp, c.body),
		}}
		h.log.WarnObj("transport unexpected status", "transport_error", map[string]any{
			"method": c.method,
			"uri":    c.uri,
			"status": status,
		})
		return nil, statusErr
	}

	return resp.Body(), nil
}
