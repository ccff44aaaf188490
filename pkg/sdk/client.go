// sdk/client.go
package sdk

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/henryktews/vue-storefront/pkg/codec"
	"github.com/henryktews/vue-storefront/pkg/integration"
)

// Client is the typed consumption surface for a running middleware: it
// exposes every integration endpoint as POST {base}/{integration}/{endpoint}.
type Client struct {
	base    string
	hc      integration.HTTPDoer
	headers map[string]string
}

type Option func(*Client)

// WithHTTPDoer swaps the underlying transport (tests, instrumentation).
func WithHTTPDoer(d integration.HTTPDoer) Option {
	return func(c *Client) {
		if d != nil {
			c.hc = d
		}
	}
}

// WithHeader adds a static header to every call (e.g. Authorization).
func WithHeader(k, v string) Option {
	return func(c *Client) { c.headers[k] = v }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        32,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     30 * time.Second,
			},
			Timeout: 15 * time.Second,
		},
		headers: map[string]string{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Call invokes one endpoint. params is marshalled as the JSON body; a
// non-2xx answer is decoded into the middleware's error envelope and
// returned as *integration.APIError.
func (c *Client) Call(ctx context.Context, integrationName, endpoint string, params, out any) error {
	raw, err := codec.JSON.Marshal(params)
	if err != nil {
		return err
	}
	url := c.base + "/" + integrationName + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", codec.JSON.ContentType())
	req.Header.Set("Accept", codec.JSON.ContentType())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		ae := &integration.APIError{Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		var env struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if jErr := codec.JSON.Unmarshal(body, &env); jErr == nil && env.Error != "" {
			ae.Message = env.Error
			ae.Code = env.Code
		}
		return ae
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	return codec.JSONStrict.Unmarshal(body, out)
}

// Endpoint binds an integration endpoint to request/response types so
// call sites stay fully typed.
type Endpoint[P, R any] struct {
	Integration string
	Name        string
}

func (e Endpoint[P, R]) Call(ctx context.Context, c *Client, params P) (R, error) {
	var out R
	err := c.Call(ctx, e.Integration, e.Name, params, &out)
	return out, err
}
