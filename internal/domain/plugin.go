package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"vuec.dev/pkg/vuec/internal/adapter"
	m "vuec.dev/pkg/vuec/internal/model"
)

// PluginName identifies the pipeline to hosts.
const PluginName = "vuec"

// Options configure the pipeline. Unset values fall back to defaults.
type Options struct {
	Include []Pattern
	Exclude []Pattern
	// Production overrides the host's production flag when set.
	Production *bool
	SSR        bool
	// SourceMap overrides the default of maps outside production when set.
	SourceMap *bool
	Vapor     bool
}

var _ adapter.HostPlugin = (*Plugin)(nil)

// Plugin exposes the pipeline through host-agnostic lifecycle hooks. It is
// safe for concurrent use.
type Plugin struct {
	opts    Options
	filter  *Filter
	invoker *Invoker
	router  *Router

	mu       sync.RWMutex
	resolved bool
	config   m.BuildConfig
}

// NewPlugin wires the pipeline components together.
func NewPlugin(opts Options, invoker *Invoker, fs adapter.SourceFSAdapter) *Plugin {
	p := &Plugin{
		opts:    opts,
		filter:  NewFilter(opts.Include, opts.Exclude),
		invoker: invoker,
		router:  NewRouter(fs, invoker),
		config:  m.BuildConfig{Command: m.CommandBuild},
	}

	if opts.Production != nil {
		p.config.Production = *opts.Production
	}

	return p
}

// Name returns PluginName.
func (p *Plugin) Name() string {
	return PluginName
}

// Filter returns the eligibility filter in use.
func (p *Plugin) Filter() *Filter {
	return p.filter
}

// ConfigResolved captures the host configuration. An explicit Production
// option wins over the host flag. Only the first call has an effect.
func (p *Plugin) ConfigResolved(cfg m.BuildConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.resolved {
		slog.Debug("Ignoring repeated configuration", "command", cfg.Command)
		return
	}

	p.resolved = true
	p.config = cfg

	if p.opts.Production != nil {
		p.config.Production = *p.opts.Production
	}

	slog.Debug("Configuration resolved", "production", p.config.Production, "command", p.config.Command)
}

// Config returns the captured host configuration.
func (p *Plugin) Config() m.BuildConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.config
}

// ResolveID claims style identifiers.
func (p *Plugin) ResolveID(id string) (string, bool) {
	return p.router.ResolveID(id)
}

// Load answers style identifiers with CSS text.
func (p *Plugin) Load(ctx context.Context, id string) (string, bool, error) {
	return p.router.Load(ctx, id, p.compileOptions())
}

// Transform runs the main pipeline on code loaded from id. It returns nil
// without error when id is not a component handled by the pipeline.
func (p *Plugin) Transform(ctx context.Context, code []byte, id string) (*m.EmittedModule, error) {
	module, _, err := p.TransformResult(ctx, code, id)
	return module, err
}

// TransformResult is Transform that also returns the raw compiler result so
// callers can report on it.
func (p *Plugin) TransformResult(ctx context.Context, code []byte, id string) (*m.EmittedModule, m.CompileResult, error) {
	if !p.Handles(id) {
		return nil, m.CompileResult{}, nil
	}

	unit := NewSourceUnit(m.Path(id), code)
	cfg := p.Config()

	result, err := p.invoker.Compile(ctx, unit, m.ShapeModule, p.compileOptions())
	if err != nil {
		return nil, m.CompileResult{}, err
	}

	module, err := Assemble(unit, result, AssembleOptions{HMR: hmrEnabled(cfg)})
	if err != nil {
		slog.Error("Transform failed", "id", id, "error", err)
		return nil, result, err
	}

	return &module, result, nil
}

// Handles reports whether Transform processes id.
func (p *Plugin) Handles(id string) bool {
	return p.filter.Match(id) && strings.HasSuffix(id, m.ComponentExt)
}

// Fingerprint summarises the settings that shape emitted modules. Outputs
// produced under a different fingerprint must not be reused.
func (p *Plugin) Fingerprint() string {
	cfg := p.Config()
	opts := p.compileOptions()
	req := BuildRequest(m.SourceUnit{}, m.ShapeModule, opts)

	return fmt.Sprintf("production=%t hmr=%t ssr=%t vapor=%t sourcemap=%t compiler=%s",
		opts.Production, hmrEnabled(cfg), opts.SSR, opts.Vapor, req.SourceMap, p.invoker.Location())
}

func hmrEnabled(cfg m.BuildConfig) bool {
	return !cfg.Production && cfg.Command == m.CommandServe
}

func (p *Plugin) compileOptions() CompileOptions {
	return CompileOptions{
		Production: p.Config().Production,
		SourceMap:  p.opts.SourceMap,
		SSR:        p.opts.SSR,
		Vapor:      p.opts.Vapor,
	}
}
