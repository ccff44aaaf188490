// integration/extension.go
package integration

import (
	"context"
	"encoding/json"
)

// Extension hooks into an integration's call path. Implement whichever
// of the optional interfaces below apply; Name is the only requirement.
type Extension interface {
	Name() string
}

// BeforeCaller runs before the endpoint, in extension order. It may
// rewrite the params; returning an error aborts the call.
type BeforeCaller interface {
	BeforeCall(ctx context.Context, ictx *Context, endpoint string, params json.RawMessage) (json.RawMessage, error)
}

// AfterCaller runs after the endpoint, in reverse extension order. It
// sees the handler's result and error and may replace either.
type AfterCaller interface {
	AfterCall(ctx context.Context, ictx *Context, endpoint string, result any, callErr error) (any, error)
}

// EndpointProvider contributes extra endpoints, merged into the
// integration's table at build time. Name collisions fail the build.
type EndpointProvider interface {
	Endpoints() map[string]EndpointFunc
}

// ApplyBefore threads params through every BeforeCall hook.
func ApplyBefore(ctx context.Context, ictx *Context, endpoint string, params json.RawMessage) (json.RawMessage, error) {
	for _, ext := range ictx.app.extensions {
		bc, ok := ext.(BeforeCaller)
		if !ok {
			continue
		}
		next, err := bc.BeforeCall(ctx, ictx, endpoint, params)
		if err != nil {
			return nil, err
		}
		params = next
	}
	return params, nil
}

// ApplyAfter threads result/err through every AfterCall hook, innermost
// extension last registered runs first.
func ApplyAfter(ctx context.Context, ictx *Context, endpoint string, result any, callErr error) (any, error) {
	exts := ictx.app.extensions
	for i := len(exts) - 1; i >= 0; i-- {
		ac, ok := exts[i].(AfterCaller)
		if !ok {
			continue
		}
		result, callErr = ac.AfterCall(ctx, ictx, endpoint, result, callErr)
	}
	return result, callErr
}
