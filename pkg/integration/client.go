// integration/client.go
package integration

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/henryktews/vue-storefront/pkg/codec"
	"github.com/henryktews/vue-storefront/pkg/manifest"
)

// HTTPDoer is satisfied by *http.Client and allows easy mocking in tests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is the one long-lived outbound client an integration owns.
// Built once from the manifest at startup and reused for every request;
// connection pooling, redirects etc. stay with net/http.
type Client struct {
	base       string
	apiKey     string
	authHeader string
	headers    map[string]string
	hc         HTTPDoer
}

type ClientOption func(*Client)

// WithHTTPDoer swaps the underlying transport (tests, instrumentation).
func WithHTTPDoer(d HTTPDoer) ClientOption {
	return func(c *Client) {
		if d != nil {
			c.hc = d
		}
	}
}

func NewClient(cfg manifest.Integration, opts ...ClientOption) *Client {
	hc := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        32,
			MaxIdleConnsPerHost: 8,
			IdleConnTimeout:     30 * time.Second,
		},
		Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
	}
	c := &Client{
		base:       cfg.BaseURL,
		apiKey:     cfg.APIKey,
		authHeader: cfg.AuthHeader,
		headers:    cfg.Headers,
		hc:         hc,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.base }

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPost, path, in, out)
}

// Do issues one request against base+path. A non-2xx answer becomes an
// *UpstreamError; decode errors and transport errors surface as-is.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := codec.JSON.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	url := c.base + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", codec.JSON.ContentType())
	if in != nil {
		req.Header.Set("Content-Type", codec.JSON.ContentType())
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.apiKey != "" {
		val := c.apiKey
		if c.authHeader == "Authorization" {
			val = "Bearer " + val
		}
		req.Header.Set(c.authHeader, val)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &UpstreamError{Status: res.StatusCode, URL: url, Body: raw}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return codec.JSON.Unmarshal(raw, out)
}
