// relay/forward.go
package relay

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joeydtaylor/electrician/pkg/builder"
)

type forwardPublisher struct {
	once   sync.Once
	start  error
	submit func(context.Context, []byte) error // captures wire.Submit
}

func (p *forwardPublisher) Publish(ctx context.Context, ev Event) error {
	if p.start != nil {
		return p.start
	}
	raw, err := encode(ev)
	if err != nil {
		return err
	}
	return p.submit(ctx, raw)
}

// NewForwardFromEnv returns an event publisher backed by Electrician's
// ForwardRelay[[]byte]. It expects:
//
//	RELAY_TARGET          = "host:port[,host2:port2]"  (required)
//
// Optional features (all off by default):
//
//	RELAY_TLS_ENABLE      = "true" | "false"
//	RELAY_TLS_CLIENT_CRT  = path (default: keys/tls/client.crt)
//	RELAY_TLS_CLIENT_KEY  = path (default: keys/tls/client.key)
//	RELAY_TLS_CA          = path (default: keys/tls/ca.crt)
//	RELAY_COMPRESS        = "snappy" | ""
//	RELAY_STATIC_HEADERS  = "k=v,k2=v2"
//
// If RELAY_TARGET is absent, it returns the Noop publisher.
func NewForwardFromEnv() (Publisher, error) {
	raw := strings.TrimSpace(os.Getenv("RELAY_TARGET"))
	if raw == "" {
		return Noop{}, nil
	}
	targets := strings.Split(raw, ",")

	useTLS := strings.EqualFold(os.Getenv("RELAY_TLS_ENABLE"), "true")
	tlsCrt := envOr("RELAY_TLS_CLIENT_CRT", "keys/tls/client.crt")
	tlsKey := envOr("RELAY_TLS_CLIENT_KEY", "keys/tls/client.key")
	tlsCA := envOr("RELAY_TLS_CA", "keys/tls/ca.crt")
	useSnappy := strings.EqualFold(os.Getenv("RELAY_COMPRESS"), "snappy")
	staticHeaders := parseKV(os.Getenv("RELAY_STATIC_HEADERS"))

	logger := builder.NewLogger(builder.LoggerWithDevelopment(true))

	// Build internals (not stored on the struct; captured by closures).
	ctx := context.Background()
	wire := builder.NewWire[[]byte](ctx, builder.WireWithLogger[[]byte](logger))

	perf := builder.NewPerformanceOptions(useSnappy, builder.COMPRESS_SNAPPY)
	tlsCfg := builder.NewTlsClientConfig(
		useTLS,
		tlsCrt, tlsKey, tlsCA,
		tls.VersionTLS13, tls.VersionTLS13,
	)

	fr := builder.NewForwardRelay[[]byte](
		ctx,
		builder.ForwardRelayWithLogger[[]byte](logger),
		builder.ForwardRelayWithTarget[[]byte](targets...),
		builder.ForwardRelayWithPerformanceOptions[[]byte](perf),
		builder.ForwardRelayWithTLSConfig[[]byte](tlsCfg),
		builder.ForwardRelayWithStaticHeaders[[]byte](staticHeaders),
		builder.ForwardRelayWithInput(wire),
	)

	p := &forwardPublisher{
		submit: func(ctx context.Context, b []byte) error { return wire.Submit(ctx, b) },
	}
	p.once.Do(func() {
		if err := wire.Start(ctx); err != nil {
			p.start = fmt.Errorf("relay wire start: %w", err)
			return
		}
		if err := fr.Start(ctx); err != nil {
			p.start = fmt.Errorf("relay start: %w", err)
			return
		}
	})
	if p.start != nil {
		return nil, p.start
	}
	return p, nil
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func parseKV(s string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}
