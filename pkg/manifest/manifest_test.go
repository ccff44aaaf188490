package manifest

import (
	"testing"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[server]
listen = ":4010"

[[integration]]
name = "ct"
base_url = "https://api.commercetools.example/"
api_key = "secret"

  [[integration.endpoint]]
  name = "getProduct"
  timeout_ms = 2000
  cache_ttl_ms = 60000

  [integration.cache]
  backend = "memory"

[[integration]]
name = "stripe"
base_url = "https://api.stripe.example"

[events]
enabled = true
`

func load(t *testing.T, s string) Config {
	t.Helper()
	var cfg Config
	require.NoError(t, toml.Unmarshal([]byte(s), &cfg))
	return cfg
}

func TestValidateSample(t *testing.T) {
	cfg := load(t, sample)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":4010", cfg.Server.Listen)
	assert.Equal(t, 1024, cfg.Server.BodyLimitKB)

	ct := cfg.Integrations[0]
	assert.Equal(t, "https://api.commercetools.example", ct.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 8000, ct.TimeoutMS, "timeout default applied")
	assert.Equal(t, "Authorization", ct.AuthHeader)
	assert.Equal(t, "memory", ct.Cache.Backend)

	pol := ct.Policy("getProduct")
	assert.Equal(t, 2000, pol.TimeoutMS)
	assert.Equal(t, 60000, pol.CacheTTLMS)
	assert.Zero(t, ct.Policy("unknown"))

	assert.Equal(t, "storefront.calls", cfg.Events.Topic, "topic default applied")
}

func TestValidateNoIntegrations(t *testing.T) {
	cfg := Config{}
	assert.ErrorContains(t, cfg.Validate(), "no integrations")
}

func TestValidateDuplicateName(t *testing.T) {
	cfg := Config{Integrations: []Integration{
		{Name: "ct", BaseURL: "https://a.example"},
		{Name: "ct", BaseURL: "https://b.example"},
	}}
	assert.ErrorContains(t, cfg.Validate(), "duplicate name")
}

func TestValidateBadNames(t *testing.T) {
	for _, name := range []string{"", "with space", "slash/x", "dot.dot"} {
		cfg := Config{Integrations: []Integration{{Name: name, BaseURL: "https://a.example"}}}
		assert.Error(t, cfg.Validate(), "name %q", name)
	}
}

func TestValidateBadBaseURL(t *testing.T) {
	for _, u := range []string{"", "ftp://x", "not a url", "/relative"} {
		cfg := Config{Integrations: []Integration{{Name: "ct", BaseURL: u}}}
		assert.Error(t, cfg.Validate(), "base_url %q", u)
	}
}

func TestValidateCacheTTLWithoutCacheBlock(t *testing.T) {
	cfg := Config{Integrations: []Integration{{
		Name:    "ct",
		BaseURL: "https://a.example",
		Endpoints: []EndpointPolicy{
			{Name: "getProduct", CacheTTLMS: 1000},
		},
	}}}
	assert.ErrorContains(t, cfg.Validate(), "no cache block")
}

func TestValidateRedisCacheRequiresAddr(t *testing.T) {
	cfg := Config{Integrations: []Integration{{
		Name:    "ct",
		BaseURL: "https://a.example",
		Cache:   &Cache{Backend: "redis"},
	}}}
	assert.ErrorContains(t, cfg.Validate(), "redis_addr")
}

func TestValidateDuplicateEndpointPolicy(t *testing.T) {
	cfg := Config{Integrations: []Integration{{
		Name:    "ct",
		BaseURL: "https://a.example",
		Endpoints: []EndpointPolicy{
			{Name: "getProduct"},
			{Name: "getProduct"},
		},
	}}}
	assert.ErrorContains(t, cfg.Validate(), "duplicate name")
}
