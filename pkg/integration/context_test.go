package integration

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestContextLookupReachesSibling(t *testing.T) {
	ResetForTest()
	MustRegister(Definition{Name: "ct", Endpoints: map[string]EndpointFunc{"echo": echoEndpoint}})
	MustRegister(Definition{Name: "stripe", Endpoints: map[string]EndpointFunc{
		"capture": func(_ context.Context, ictx *Context, _ json.RawMessage) (any, error) {
			return map[string]string{"by": ictx.Integration()}, nil
		},
	}})

	reg, err := Build(testManifest("ct", "stripe"), zap.NewNop())
	require.NoError(t, err)

	ictx, err := reg.ContextFor("ct", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "ct", ictx.Integration())

	sib, err := ictx.Lookup("stripe")
	require.NoError(t, err)
	out, err := sib.Invoke(context.Background(), "capture", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"by": "stripe"}, out)
}

func TestContextLookupUnknownSibling(t *testing.T) {
	ResetForTest()
	MustRegister(Definition{Name: "ct", Endpoints: map[string]EndpointFunc{"echo": echoEndpoint}})
	reg, err := Build(testManifest("ct"), zap.NewNop())
	require.NoError(t, err)

	ictx, err := reg.ContextFor("ct", nil)
	require.NoError(t, err)
	_, err = ictx.Lookup("ghost")
	assert.ErrorContains(t, err, "not registered")
}

func TestInvokeUnknownEndpointIsAPIError(t *testing.T) {
	ResetForTest()
	MustRegister(Definition{Name: "ct", Endpoints: map[string]EndpointFunc{"echo": echoEndpoint}})
	reg, err := Build(testManifest("ct"), zap.NewNop())
	require.NoError(t, err)

	ictx, err := reg.ContextFor("ct", nil)
	require.NoError(t, err)
	_, err = ictx.Invoke(context.Background(), "missing", nil)

	var ae *APIError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 404, ae.Status)
	assert.Equal(t, "unknown_endpoint", ae.Code)
}

func TestInvokePassesParamsVerbatim(t *testing.T) {
	ResetForTest()
	var seen json.RawMessage
	MustRegister(Definition{Name: "ct", Endpoints: map[string]EndpointFunc{
		"inspect": func(_ context.Context, _ *Context, params json.RawMessage) (any, error) {
			seen = params
			return nil, nil
		},
	}})
	reg, err := Build(testManifest("ct"), zap.NewNop())
	require.NoError(t, err)

	ictx, err := reg.ContextFor("ct", nil)
	require.NoError(t, err)
	in := json.RawMessage(`{"sku":"A-1","qty":2}`)
	_, err = ictx.Invoke(context.Background(), "inspect", in)
	require.NoError(t, err)
	assert.JSONEq(t, string(in), string(seen))
}
