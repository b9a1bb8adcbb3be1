package domain

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"vuec.dev/pkg/vuec/internal/adapter"
	m "vuec.dev/pkg/vuec/internal/model"
)

// scopeIDPrefix is prepended to the derived identifier in compiler requests.
const scopeIDPrefix = "data-v-"

// scopedStyle detects a scoped style block in raw component text. It is a
// textual check and can be fooled by the word inside comments or strings.
var scopedStyle = regexp.MustCompile(`<style[^>]*\bscoped\b`)

// CompileOptions are the per-call compiler settings derived from plugin
// options and the resolved host configuration.
type CompileOptions struct {
	Production bool
	SourceMap  *bool
	SSR        bool
	Vapor      bool
}

// Invoker activates the compiler once and issues compile requests to it.
type Invoker struct {
	loader adapter.CompilerLoader

	once     sync.Once
	compiler adapter.CompilerAdapter
	initErr  error
}

// NewInvoker creates an Invoker backed by loader. Nothing is loaded until the
// first compile.
func NewInvoker(loader adapter.CompilerLoader) *Invoker {
	return &Invoker{loader: loader}
}

// Location names the compiler module the invoker loads.
func (i *Invoker) Location() string {
	return i.loader.Location()
}

// Compiler returns the activated endpoint. Concurrent first callers block on
// the single load attempt; its outcome, success or failure, is kept for all
// later calls. Cancelling the first caller's context does not abort the load.
func (i *Invoker) Compiler(ctx context.Context) (adapter.CompilerAdapter, error) {
	i.once.Do(func() {
		compiler, err := i.loader.Load(context.WithoutCancel(ctx))
		if err != nil {
			slog.Error("Failed to load compiler", "location", i.loader.Location(), "error", err)
			i.initErr = InitError(i.loader.Location(), err)

			return
		}

		slog.Debug("Compiler loaded", "location", i.loader.Location())
		i.compiler = compiler
	})

	return i.compiler, i.initErr
}

// BuildRequest derives the compiler request for unit.
func BuildRequest(unit m.SourceUnit, shape m.OutputShape, opts CompileOptions) m.CompileRequest {
	req := m.CompileRequest{
		Filename:   string(unit.Path),
		Mode:       shape,
		SourceMap:  !opts.Production,
		SSR:        opts.SSR,
		OutputMode: m.OutputVDOM,
	}

	if IsScoped(unit.Content) {
		scopeID := scopeIDPrefix + unit.ScopeID
		req.ScopeID = &scopeID
	}

	if opts.SourceMap != nil {
		req.SourceMap = *opts.SourceMap
	}

	if opts.Vapor {
		req.OutputMode = m.OutputVapor
	}

	return req
}

// IsScoped reports whether content declares a scoped style block.
func IsScoped(content []byte) bool {
	return scopedStyle.Match(content)
}

// Compile runs the compiler once for unit and returns its raw result.
// Compiler-reported errors are left in the result for the assembler.
func (i *Invoker) Compile(ctx context.Context, unit m.SourceUnit, shape m.OutputShape, opts CompileOptions) (m.CompileResult, error) {
	compiler, err := i.Compiler(ctx)
	if err != nil {
		return m.CompileResult{}, err
	}

	req := BuildRequest(unit, shape, opts)

	result, err := compiler.CompileSFC(ctx, unit.Content, req)
	if err != nil {
		return m.CompileResult{}, fmt.Errorf("compile %s: %w", unit.Path, err)
	}

	LogWarnings(unit.Path, result.Warnings)

	return result, nil
}

// Close releases the compiler if it was loaded. It must not race with
// in-flight compiles.
func (i *Invoker) Close(ctx context.Context) error {
	if i.compiler == nil {
		return nil
	}

	return i.compiler.Close(ctx)
}
