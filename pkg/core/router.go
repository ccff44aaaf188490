// core/router.go
package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/henryktews/vue-storefront/pkg/cache"
	"github.com/henryktews/vue-storefront/pkg/codec"
	"github.com/henryktews/vue-storefront/pkg/integration"
	manifest "github.com/henryktews/vue-storefront/pkg/manifest"
	"github.com/henryktews/vue-storefront/pkg/middleware/auth"
	"github.com/henryktews/vue-storefront/pkg/middleware/logger"
	hmetrics "github.com/henryktews/vue-storefront/pkg/middleware/metrics"
	"github.com/henryktews/vue-storefront/pkg/relay"
	httpx "github.com/henryktews/vue-storefront/pkg/transport/httpx"
)

type BuildDeps struct {
	Auth     *auth.Middleware
	LogMW    *logger.Middleware
	Metrics  http.Handler
	Router   httpx.Router
	Registry *integration.Registry
	Events   relay.Publisher
	Log      *zap.Logger
}

// BuildRouter turns the manifest plus the built registry into the HTTP
// surface: POST /{integration}/{endpoint} per registered endpoint, with
// guard/timeout/cache policy applied from the manifest.
func BuildRouter(cfg manifest.Config, d BuildDeps) (http.Handler, error) {
	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))
	if d.Auth != nil {
		r.Use(d.Auth.Middleware())
		if d.LogMW != nil {
			r.Use(d.LogMW.Middleware(d.Auth))
		}
		// metrics collector that references auth state without copying it
		r.Use(hmetrics.Collect(d.Auth))
	} else {
		if d.LogMW != nil {
			r.Use(d.LogMW.Middleware(nil))
		}
		r.Use(hmetrics.Collect(nil))
	}

	if d.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", d.Metrics)
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		renderError(w, integration.E(http.StatusNotFound, "unknown_route", "no such integration or endpoint"))
	})

	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Events == nil {
		d.Events = relay.Noop{}
	}

	bodyLimit := int64(cfg.Server.BodyLimitKB) << 10

	for _, in := range cfg.Integrations {
		app, ok := d.Registry.Get(in.Name)
		if !ok {
			// Build() guarantees registry completeness; a miss here is a
			// wiring bug and must fail loudly at startup.
			return nil, &integration.APIError{Status: 500, Code: "registry", Message: "integration " + in.Name + " missing from registry"}
		}

		store, err := cache.New(in.Cache)
		if err != nil {
			return nil, err
		}

		topic := ""
		if cfg.Events != nil && cfg.Events.Enabled {
			topic = cfg.Events.Topic
		}

		for _, ep := range app.EndpointNames() {
			pol := in.Policy(ep)
			h := dispatch(d, in.Name, ep, pol, store, topic, bodyLimit)
			if pol.TimeoutMS > 0 {
				h = withTimeout(h, time.Duration(pol.TimeoutMS)*time.Millisecond)
			}
			h = withGuard(h, d.Auth, in.Guard)
			r.Post("/"+in.Name+"/"+ep, h)
		}
	}
	return r.Mux(), nil
}

// dispatch is the request pipeline for one endpoint: body -> hooks ->
// cache -> handler -> hooks -> encode, with metrics and a call event on
// the way out.
func dispatch(d BuildDeps, name, ep string, pol manifest.EndpointPolicy, store cache.Cache, topic string, bodyLimit int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		status := finishWith(d, r, name, ep, topic, start, func() int {
			body, err := readParams(r, bodyLimit)
			if err != nil {
				return renderError(w, err)
			}

			ictx, err := d.Registry.ContextFor(name, d.Log.With(zap.String("requestId", chimd.GetReqID(r.Context()))))
			if err != nil {
				return renderError(w, err)
			}

			params, err := integration.ApplyBefore(r.Context(), ictx, ep, body)
			if err != nil {
				return renderError(w, err)
			}

			cacheKey := ""
			if store != nil && pol.CacheTTLMS > 0 {
				cacheKey = resultKey(name, ep, params)
				if raw, hit, cErr := store.Get(r.Context(), cacheKey); cErr == nil && hit {
					w.Header().Set("X-Cache", "hit")
					writeJSON(w, raw, http.StatusOK)
					return http.StatusOK
				}
			}

			result, err := ictx.Invoke(r.Context(), ep, params)
			result, err = integration.ApplyAfter(r.Context(), ictx, ep, result, err)
			if err != nil {
				return renderError(w, err)
			}

			raw, err := codec.JSON.Marshal(result)
			if err != nil {
				return renderError(w, err)
			}
			if cacheKey != "" {
				ttl := time.Duration(pol.CacheTTLMS) * time.Millisecond
				if cErr := store.Set(r.Context(), cacheKey, raw, ttl); cErr != nil {
					ictx.Log().Warn("cache set failed", zap.Error(cErr))
				}
			}
			writeJSON(w, raw, http.StatusOK)
			return http.StatusOK
		})
		_ = status
	}
}

// finishWith runs the pipeline, then records metrics and publishes the
// call event regardless of outcome.
func finishWith(d BuildDeps, r *http.Request, name, ep, topic string, start time.Time, fn func() int) int {
	status := fn()
	lat := time.Since(start)
	hmetrics.ObserveCall(name, ep, status, lat)
	if topic != "" {
		ev := relay.NewEvent(topic, name, ep, status, lat)
		// Detached from the request deadline: the response is already
		// decided, the event should still go out.
		if err := d.Events.Publish(context.WithoutCancel(r.Context()), ev); err != nil {
			d.Log.Warn("event publish failed",
				zap.String("integration", name),
				zap.String("endpoint", ep),
				zap.Error(err),
			)
		}
	}
	return status
}

func readParams(r *http.Request, limit int64) (json.RawMessage, error) {
	rd := io.Reader(r.Body)
	if limit > 0 {
		rd = io.LimitReader(r.Body, limit)
	}
	body, err := io.ReadAll(rd)
	if err != nil {
		return nil, integration.E(http.StatusBadRequest, "bad_body", "request body unreadable")
	}
	if len(body) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(body) {
		return nil, integration.E(http.StatusBadRequest, "bad_json", "request body must be valid JSON")
	}
	return body, nil
}

func resultKey(name, ep string, params []byte) string {
	sum := sha256.Sum256(params)
	return "vsf:" + name + ":" + ep + ":" + hex.EncodeToString(sum[:])
}

func withTimeout(next http.HandlerFunc, d time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

func withGuard(next http.HandlerFunc, a *auth.Middleware, g manifest.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// If no auth middleware wired, only allow when the integration
		// doesn't require auth.
		if a == nil {
			if g.RequireAuth || len(g.Users) > 0 || len(g.Roles) > 0 {
				renderError(w, integration.E(http.StatusUnauthorized, "unauthorized", "authentication required"))
				return
			}
			next(w, r)
			return
		}

		if g.RequireAuth && !a.IsAuthenticated(r.Context()) {
			renderError(w, integration.E(http.StatusUnauthorized, "unauthorized", "authentication required"))
			return
		}
		if len(g.Users) > 0 {
			u := a.GetUser(r.Context()).Username
			if u == "" {
				renderError(w, integration.E(http.StatusUnauthorized, "unauthorized", "authentication required"))
				return
			}
			for _, x := range g.Users {
				if u == x {
					next(w, r)
					return
				}
			}
			renderError(w, integration.E(http.StatusForbidden, "forbidden", "user not allowed"))
			return
		}
		if len(g.Roles) > 0 {
			u := a.GetUser(r.Context())
			if u.Username == "" {
				renderError(w, integration.E(http.StatusUnauthorized, "unauthorized", "authentication required"))
				return
			}
			if a.IsAdmin(r.Context()) {
				next(w, r)
				return
			}
			for _, x := range g.Roles {
				if u.Role.Name == x {
					next(w, r)
					return
				}
			}
			renderError(w, integration.E(http.StatusForbidden, "forbidden", "role not allowed"))
			return
		}
		next(w, r)
	}
}
