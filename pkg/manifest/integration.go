// manifest/integration.go
package manifest

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Integration declares one backend connector: where it lives, how its
// client is built, and which per-endpoint policies apply. The endpoint
// implementations themselves are registered in code (pkg/integration);
// the manifest only carries configuration.
type Integration struct {
	Name       string            `toml:"name"`        // URL segment: POST /{name}/{endpoint}
	BaseURL    string            `toml:"base_url"`    // upstream API root
	APIKey     string            `toml:"api_key"`     // sent as Authorization: Bearer unless auth_header set
	AuthHeader string            `toml:"auth_header"` // custom header for api_key (default: Authorization)
	TimeoutMS  int               `toml:"timeout_ms"`  // outbound client timeout, default 8000
	Headers    map[string]string `toml:"headers"`     // static default headers

	Guard      Guard            `toml:"guard"`
	Cache      *Cache           `toml:"cache"`
	Endpoints  []EndpointPolicy `toml:"endpoint"`
	Extensions []string         `toml:"extensions"` // ordered; names must be registered in code
}

type Guard struct {
	RequireAuth bool     `toml:"require_auth"`
	Roles       []string `toml:"roles"`
	Users       []string `toml:"users"`
}

// EndpointPolicy tunes a single endpoint; endpoints without a block run
// with integration defaults.
type EndpointPolicy struct {
	Name       string `toml:"name"`
	TimeoutMS  int    `toml:"timeout_ms"`   // request deadline for this endpoint
	CacheTTLMS int    `toml:"cache_ttl_ms"` // > 0 enables result caching
}

type Cache struct {
	Backend       string `toml:"backend"` // "memory" | "redis"
	RedisAddr     string `toml:"redis_addr"`
	RedisDB       int    `toml:"redis_db"`
	RedisPassword string `toml:"redis_password"`
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

func (in *Integration) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return errors.New("name is required")
	}
	in.BaseURL = strings.TrimRight(strings.TrimSpace(in.BaseURL), "/")
	if in.TimeoutMS == 0 {
		in.TimeoutMS = 8000
	}
	if strings.TrimSpace(in.AuthHeader) == "" {
		in.AuthHeader = "Authorization"
	}
	for i := range in.Endpoints {
		in.Endpoints[i].Name = strings.TrimSpace(in.Endpoints[i].Name)
	}
	return nil
}

func (in *Integration) validate() error {
	if !validName(in.Name) {
		return fmt.Errorf("name %q must be alphanumeric with '-' or '_'", in.Name)
	}
	if in.BaseURL == "" {
		return errors.New("base_url is required")
	}
	u, err := url.Parse(in.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url %q must be an absolute http(s) URL", in.BaseURL)
	}
	if in.TimeoutMS < 0 {
		return errors.New("timeout_ms must be >= 0")
	}

	seen := map[string]struct{}{}
	for i, ep := range in.Endpoints {
		if !validName(ep.Name) {
			return fmt.Errorf("endpoint %d: name %q invalid", i, ep.Name)
		}
		if _, dup := seen[ep.Name]; dup {
			return fmt.Errorf("endpoint %d: duplicate name %q", i, ep.Name)
		}
		seen[ep.Name] = struct{}{}
		if ep.TimeoutMS < 0 {
			return fmt.Errorf("endpoint %q: timeout_ms must be >= 0", ep.Name)
		}
		if ep.CacheTTLMS < 0 {
			return fmt.Errorf("endpoint %q: cache_ttl_ms must be >= 0", ep.Name)
		}
		if ep.CacheTTLMS > 0 && in.Cache == nil {
			return fmt.Errorf("endpoint %q: cache_ttl_ms set but integration has no cache block", ep.Name)
		}
	}

	if in.Cache != nil {
		switch strings.ToLower(strings.TrimSpace(in.Cache.Backend)) {
		case "", "memory":
			in.Cache.Backend = "memory"
		case "redis":
			in.Cache.Backend = "redis"
			if strings.TrimSpace(in.Cache.RedisAddr) == "" {
				return errors.New("cache.redis_addr required for backend 'redis'")
			}
		default:
			return fmt.Errorf("cache.backend %q invalid (memory|redis)", in.Cache.Backend)
		}
	}
	return nil
}

// Policy returns the endpoint policy for name, zero value when absent.
func (in *Integration) Policy(name string) EndpointPolicy {
	for _, ep := range in.Endpoints {
		if ep.Name == name {
			return ep
		}
	}
	return EndpointPolicy{}
}
