// Package jsonapi is a resource-level client for JSON HTTP APIs.
//
// A Client encodes resources to JSON, hands them to a transport.Transport and
// decodes the JSON object or array the remote API answers with. When no
// transport is attached, one backed by resty is built from the configured
// endpoint.
package jsonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/samvad-hq/jsonapi-client/pkg/transport"
)

// Client exposes CRUD operations over a Transport. A Client is meant for a
// single owner; it performs no locking.
type Client struct {
	transport transport.Transport
	endpoint  string
	timeout   time.Duration
	headers   map[string]string
	log       transport.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithTransport attaches a transport, bypassing the default HTTP one.
func WithTransport(t transport.Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithEndpoint sets the base URL used by the default transport.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithTimeout sets the request timeout used by the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHeaders sets headers the default transport sends on every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) { c.headers = headers }
}

// WithLogger routes default transport diagnostics to log.
func WithLogger(log transport.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a Client. Nothing is validated until the first request.
func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// SetTransport replaces the transport used for subsequent calls.
func (c *Client) SetTransport(t transport.Transport) {
	c.transport = t
}

// Transport returns the attached transport, building the default HTTP
// transport on first use.
func (c *Client) Transport() (transport.Transport, error) {
	if c.transport != nil {
		return c.transport, nil
	}

	t, err := transport.NewHTTP(c.endpoint,
		transport.WithTimeout(c.timeout),
		transport.WithHeaders(c.headers),
		transport.WithLogger(c.log),
	)
	if err != nil {
		return nil, fmt.Errorf("default transport: %w", err)
	}
	c.transport = t
	return t, nil
}

// GetResource fetches the resource identified by uri.
func (c *Client) GetResource(ctx context.Context, uri string) (any, error) {
	return c.GetResources(ctx, uri, nil)
}

// GetResources fetches the collection identified by uri, filtered by params.
func (c *Client) GetResources(ctx context.Context, uri string, params url.Values) (any, error) {
	t, err := c.Transport()
	if err != nil {
		return nil, err
	}
	body, err := t.Get(ctx, uri, params)
	if err != nil {
		return nil, err
	}
	return decode(body)
}

// CreateResource posts resource to uri and returns the created resource.
func (c *Client) CreateResource(ctx context.Context, uri string, resource any) (any, error) {
	return c.write(ctx, uri, resource, transport.Transport.Post)
}

// UpdateResource replaces the resource at uri and returns the stored version.
func (c *Client) UpdateResource(ctx context.Context, uri string, resource any) (any, error) {
	return c.write(ctx, uri, resource, transport.Transport.Put)
}

// PatchResource applies a partial update to the resource at uri.
func (c *Client) PatchResource(ctx context.Context, uri string, resource any) (any, error) {
	return c.write(ctx, uri, resource, transport.Transport.Patch)
}

// DeleteResource removes the resource at uri.
func (c *Client) DeleteResource(ctx context.Context, uri string) error {
	t, err := c.Transport()
	if err != nil {
		return err
	}
	return t.Delete(ctx, uri)
}

type sendFunc func(t transport.Transport, ctx context.Context, uri string, body []byte) ([]byte, error)

func (c *Client) write(ctx context.Context, uri string, resource any, send sendFunc) (any, error) {
	t, err := c.Transport()
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(resource)
	if err != nil {
		return nil, fmt.Errorf("encode resource: %w", err)
	}
	body, err := send(t, ctx, uri, payload)
	if err != nil {
		return nil, err
	}
	return decode(body)
}

// decode turns a response body into generic JSON values: objects become
// map[string]any and arrays []any. An empty body yields nil.
func decode(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
