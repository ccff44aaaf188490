// integration/app.go
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/henryktews/vue-storefront/pkg/manifest"
	"go.uber.org/zap"
)

// EndpointFunc is the signature for integration endpoints. ictx is the
// per-request bundle (config, client, sibling lookup); params is the raw
// JSON body exactly as the caller sent it.
type EndpointFunc func(ctx context.Context, ictx *Context, params json.RawMessage) (any, error)

// Definition is what integration packages register in code. The manifest
// contributes the matching configuration at server build time.
type Definition struct {
	Name       string
	Endpoints  map[string]EndpointFunc
	Extensions []Extension // declared order; manifest may select a subset
}

var (
	defMu       sync.Mutex
	definitions = map[string]Definition{}
)

// Register makes a definition available under its name. Called from
// integration package init or main wiring, before the server is built.
func Register(def Definition) error {
	defMu.Lock()
	defer defMu.Unlock()
	if def.Name == "" {
		return fmt.Errorf("integration: definition name required")
	}
	if len(def.Endpoints) == 0 {
		return fmt.Errorf("integration %q: at least one endpoint required", def.Name)
	}
	if _, dup := definitions[def.Name]; dup {
		return fmt.Errorf("integration %q already registered", def.Name)
	}
	definitions[def.Name] = def
	return nil
}

func MustRegister(def Definition) {
	if err := Register(def); err != nil {
		panic(err)
	}
}

func lookupDefinition(name string) (Definition, bool) {
	defMu.Lock()
	defer defMu.Unlock()
	d, ok := definitions[name]
	return d, ok
}

// ResetForTest clears registered definitions between test cases.
func ResetForTest() {
	defMu.Lock()
	definitions = map[string]Definition{}
	defMu.Unlock()
}

// App is one built integration: its config, its single client instance,
// and its endpoint table (definition endpoints plus extension endpoints).
type App struct {
	name       string
	cfg        manifest.Integration
	client     *Client
	endpoints  map[string]EndpointFunc
	extensions []Extension
}

func (a *App) Name() string                 { return a.name }
func (a *App) Config() manifest.Integration { return a.cfg }
func (a *App) Client() *Client              { return a.client }
func (a *App) Extensions() []Extension      { return a.extensions }

func (a *App) Endpoint(name string) (EndpointFunc, bool) {
	fn, ok := a.endpoints[name]
	return fn, ok
}

func (a *App) EndpointNames() []string {
	names := make([]string, 0, len(a.endpoints))
	for n := range a.endpoints {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// buildApp assembles an App from a definition and its manifest entry.
// The client option hook exists so tests can inject a fake transport.
func buildApp(def Definition, cfg manifest.Integration, opts ...ClientOption) (*App, error) {
	eps := make(map[string]EndpointFunc, len(def.Endpoints))
	for n, fn := range def.Endpoints {
		if fn == nil {
			return nil, fmt.Errorf("integration %q: endpoint %q is nil", cfg.Name, n)
		}
		eps[n] = fn
	}

	exts, err := selectExtensions(def, cfg)
	if err != nil {
		return nil, err
	}
	for _, ext := range exts {
		ep, ok := ext.(EndpointProvider)
		if !ok {
			continue
		}
		for n, fn := range ep.Endpoints() {
			if _, dup := eps[n]; dup {
				return nil, fmt.Errorf("integration %q: extension %q redefines endpoint %q", cfg.Name, ext.Name(), n)
			}
			eps[n] = fn
		}
	}

	return &App{
		name:       cfg.Name,
		cfg:        cfg,
		client:     NewClient(cfg, opts...),
		endpoints:  eps,
		extensions: exts,
	}, nil
}

func selectExtensions(def Definition, cfg manifest.Integration) ([]Extension, error) {
	if len(cfg.Extensions) == 0 {
		return def.Extensions, nil
	}
	byName := map[string]Extension{}
	for _, ext := range def.Extensions {
		byName[ext.Name()] = ext
	}
	out := make([]Extension, 0, len(cfg.Extensions))
	for _, n := range cfg.Extensions {
		ext, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("integration %q: extension %q not registered", cfg.Name, n)
		}
		out = append(out, ext)
	}
	return out, nil
}

// Registry holds all built apps; fixed after Build.
type Registry struct {
	mu   sync.RWMutex
	apps map[string]*App
	log  *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{apps: map[string]*App{}, log: log}
}

func (r *Registry) Add(app *App) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.apps[app.name]; dup {
		return fmt.Errorf("integration %q already in registry", app.name)
	}
	r.apps[app.name] = app
	return nil
}

func (r *Registry) Get(name string) (*App, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.apps[name]
	return a, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.apps))
	for n := range r.apps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build pairs every manifest integration with its registered definition
// and constructs the app (one client each). Missing definitions fail the
// whole build: the registry is startup-time, all or nothing.
func Build(cfg manifest.Config, log *zap.Logger, opts ...ClientOption) (*Registry, error) {
	reg := NewRegistry(log)
	for _, in := range cfg.Integrations {
		def, ok := lookupDefinition(in.Name)
		if !ok {
			return nil, fmt.Errorf("integration %q configured but not registered", in.Name)
		}
		app, err := buildApp(def, in, opts...)
		if err != nil {
			return nil, err
		}
		if err := reg.Add(app); err != nil {
			return nil, err
		}
		reg.log.Info("integration built",
			zap.String("integration", in.Name),
			zap.Strings("endpoints", app.EndpointNames()),
		)
	}
	return reg, nil
}
