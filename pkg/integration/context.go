// integration/context.go
package integration

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/henryktews/vue-storefront/pkg/manifest"
	"go.uber.org/zap"
)

// Context is the per-request bundle handed to every endpoint: the
// integration's config and client, a request-scoped logger, and the
// sibling-lookup accessor. Read-only from the handler's perspective.
type Context struct {
	app      *App
	registry *Registry
	log      *zap.Logger
}

func (c *Context) Integration() string          { return c.app.name }
func (c *Context) Config() manifest.Integration { return c.app.cfg }
func (c *Context) Client() *Client              { return c.app.client }

func (c *Context) Log() *zap.Logger {
	if c.log == nil {
		return zap.NewNop()
	}
	return c.log
}

// ContextFor builds the request context for a named integration. The
// registry is shared; everything else on the context is per-request.
func (r *Registry) ContextFor(name string, log *zap.Logger) (*Context, error) {
	app, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("integration %q not registered", name)
	}
	if log == nil {
		log = r.log
	}
	return &Context{app: app, registry: r, log: log.With(zap.String("integration", name))}, nil
}

// Lookup returns a sibling integration's context, enabling one handler
// to call another integration's endpoints (orchestration).
func (c *Context) Lookup(name string) (*Context, error) {
	return c.registry.ContextFor(name, c.log)
}

// Invoke runs one of this integration's endpoints directly. Extension
// hooks apply only on the HTTP dispatch path, not here: a sibling call
// is an in-process function call, not a re-entrant request.
func (c *Context) Invoke(ctx context.Context, endpoint string, params json.RawMessage) (any, error) {
	fn, ok := c.app.Endpoint(endpoint)
	if !ok {
		return nil, E(404, "unknown_endpoint", fmt.Sprintf("integration %q has no endpoint %q", c.app.name, endpoint))
	}
	return fn(ctx, c, params)
}
