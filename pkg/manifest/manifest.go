// manifest/manifest.go
package manifest

import (
	"errors"
	"fmt"
	"strings"
)

/* ===========================
   Top-level config
   =========================== */

// Config is the declarative registration surface: one [[integration]]
// block per backend connector, consumed once at startup by the server
// builder. Immutable for the process lifetime after Validate.
type Config struct {
	Server       Server        `toml:"server"`
	Integrations []Integration `toml:"integration"`
	Events       *Events       `toml:"events"`
}

type Server struct {
	Listen      string `toml:"listen"`        // host:port, default ":4000"
	BodyLimitKB int    `toml:"body_limit_kb"` // request body cap, default 1024
}

// Events configures the call-event relay (see pkg/relay). Transport
// details (target, TLS, compression) come from the environment.
type Events struct {
	Enabled bool   `toml:"enabled"`
	Topic   string `toml:"topic"`
}

/* ===========================
   Validation / Normalization
   =========================== */

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Listen) == "" {
		c.Server.Listen = ":4000"
	}
	if c.Server.BodyLimitKB == 0 {
		c.Server.BodyLimitKB = 1024
	}
	if c.Server.BodyLimitKB < 0 {
		return errors.New("server.body_limit_kb must be >= 0")
	}

	if len(c.Integrations) == 0 {
		return errors.New("no integrations defined")
	}
	seen := map[string]struct{}{}
	for i := range c.Integrations {
		in := &c.Integrations[i]
		if err := in.normalize(); err != nil {
			return fmt.Errorf("integration %d: %w", i, err)
		}
		if err := in.validate(); err != nil {
			return fmt.Errorf("integration %d (%s): %w", i, in.Name, err)
		}
		if _, dup := seen[in.Name]; dup {
			return fmt.Errorf("integration %d: duplicate name %q", i, in.Name)
		}
		seen[in.Name] = struct{}{}
	}

	if c.Events != nil && c.Events.Enabled {
		if strings.TrimSpace(c.Events.Topic) == "" {
			c.Events.Topic = "storefront.calls"
		}
	}
	return nil
}
