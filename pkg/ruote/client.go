package ruote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"github.com/rstorcloud/alfredo/pkg/logger"
)

// Client issues requests against one ruote endpoint. The zero value is not
// usable; construct with NewClient.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
	log     logr.Logger
	schema  *schemaNode
}

// Option customizes a Client at construction time.
type Option func(*Client)

// WithToken sets the session token sent on every request. An empty token
// leaves requests unauthenticated.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient substitutes the underlying HTTP client, typically to set a
// request timeout or a test transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithLogger attaches a logger for request/response debug logging.
func WithLogger(log logr.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient returns a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{},
		log:     logr.Discard(),
		schema:  defaultSchema(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the top of the resource tree.
func (c *Client) Root() Resource {
	return &resource{client: c, node: c.schema}
}

// resource is the HTTP-backed Resource implementation. Each navigation step
// copies the URL path, so resources are safe to keep and branch from.
type resource struct {
	client *Client
	node   *schemaNode
	path   []string
}

func (r *resource) Child(name string) (Resource, error) {
	child, ok := r.node.children[name]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownResource, name)
	}
	return &resource{client: r.client, node: child, path: extend(r.path, name)}, nil
}

func (r *resource) ChildByKey(kind, key string) (Resource, error) {
	child, ok := r.node.keyed[kind]
	if !ok {
		return nil, fmt.Errorf("%w by '%s'", ErrNoKeyedLookup, kind)
	}
	return &resource{client: r.client, node: child, path: extend(r.path, key)}, nil
}

func (r *resource) Create(ctx context.Context, payload map[string]any) (*Response, error) {
	if field := r.node.uploadField; field != "" {
		if path, ok := payload[field].(string); ok {
			return r.client.upload(ctx, r.url(), field, path, payload)
		}
	}
	return r.client.do(ctx, http.MethodPost, r.url(), payload)
}

func (r *resource) Retrieve(ctx context.Context) (*Response, error) {
	return r.client.do(ctx, http.MethodGet, r.url(), nil)
}

func (r *resource) Update(ctx context.Context, payload map[string]any) (*Response, error) {
	return r.client.do(ctx, http.MethodPatch, r.url(), payload)
}

func (r *resource) Replace(ctx context.Context, payload map[string]any) (*Response, error) {
	return r.client.do(ctx, http.MethodPut, r.url(), payload)
}

func (r *resource) Delete(ctx context.Context) (*Response, error) {
	return r.client.do(ctx, http.MethodDelete, r.url(), nil)
}

// url joins the resource path onto the endpoint. Collection and record URLs
// both carry a trailing slash.
func (r *resource) url() string {
	var b strings.Builder
	b.WriteString(r.client.baseURL)
	for _, seg := range r.path {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}
	b.WriteByte('/')
	return b.String()
}

func extend(path []string, seg string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, seg)
}

// do executes one JSON request and wraps the outcome. Transport failures are
// errors; HTTP-level failures come back as a Response for the caller to
// inspect.
func (c *Client) do(ctx context.Context, method, rawURL string, payload map[string]any) (*Response, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

// newRequest builds a request with the standing headers: accept, and the
// session token when one is set.
func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request) (*Response, error) {
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", req.URL, err)
	}

	c.log.V(1).Info("api request",
		logger.MethodKey, req.Method,
		logger.UrlKey, req.URL.String(),
		logger.StatusKey, resp.StatusCode,
		logger.DurationKey, time.Since(start).String(),
	)

	return &Response{StatusCode: resp.StatusCode, Raw: raw, body: parseBody(raw)}, nil
}

// parseBody decodes a response body into a node tree. The parser accepts both
// JSON and YAML; bodies that decode to nothing yield a nil node and the raw
// bytes remain the source of truth.
func parseBody(raw []byte) *yaml.Node {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	if len(doc.Content) == 0 {
		return nil
	}
	return doc.Content[0]
}
