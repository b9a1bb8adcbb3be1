package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	m "vuec.dev/pkg/vuec/internal/model"
)

// DefaultCompilerPath is where the compiler artifact is looked up when no
// explicit location is configured.
const DefaultCompilerPath = "wasm/vue_compiler.wasm"

// Exports the compiler artifact must provide.
const (
	exportMemory     = "memory"
	exportAlloc      = "alloc"
	exportDealloc    = "dealloc"
	exportCompileSFC = "compile_sfc"
)

// ErrMissingExport is returned when the artifact lacks a required export.
var ErrMissingExport = errors.New("missing export")

// CompilerAdapter is an activated SFC compiler endpoint.
type CompilerAdapter interface {
	// CompileSFC compiles one component source with the given request.
	CompileSFC(ctx context.Context, source []byte, req m.CompileRequest) (m.CompileResult, error)

	// Close releases the endpoint.
	Close(ctx context.Context) error
}

// CompilerLoader activates the compiler artifact.
type CompilerLoader interface {
	// Location names the artifact the loader activates.
	Location() string

	// Load activates the artifact and returns a ready endpoint.
	Load(ctx context.Context) (CompilerAdapter, error)
}

// WasmCompilerLoader loads the compiler from a WebAssembly module on disk.
type WasmCompilerLoader struct {
	path string
}

// NewWasmCompilerLoader constructs a loader for the artifact at path.
// An empty path falls back to DefaultCompilerPath.
func NewWasmCompilerLoader(path string) *WasmCompilerLoader {
	if path == "" {
		path = DefaultCompilerPath
	}

	return &WasmCompilerLoader{path: path}
}

// Location returns the artifact path.
func (l *WasmCompilerLoader) Location() string {
	return l.path
}

// Load reads, compiles and instantiates the artifact.
func (l *WasmCompilerLoader) Load(ctx context.Context) (CompilerAdapter, error) {
	// #nosec G304 - the artifact path comes from configuration
	wasmBytes, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read compiler artifact: %w", err)
	}

	return LoadWasmCompiler(ctx, wasmBytes)
}

// WasmCompiler calls into an instantiated compiler module.
//
// A module instance is not safe for concurrent calls, so CompileSFC holds mu
// for the whole call.
type WasmCompiler struct {
	runtime wazero.Runtime
	memory  api.Memory
	alloc   api.Function
	dealloc api.Function
	compile api.Function
	mu      sync.Mutex
}

// LoadWasmCompiler instantiates a compiler from raw module bytes.
func LoadWasmCompiler(ctx context.Context, wasmBytes []byte) (*WasmCompiler, error) {
	runtime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig())

	compiler, err := instantiateCompiler(ctx, runtime, wasmBytes)
	if err != nil {
		if closeErr := runtime.Close(ctx); closeErr != nil {
			slog.Warn("Failed to close wasm runtime", "error", closeErr)
		}

		return nil, err
	}

	return compiler, nil
}

func instantiateCompiler(ctx context.Context, runtime wazero.Runtime, wasmBytes []byte) (*WasmCompiler, error) {
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("compile module: %w", err)
	}

	modConfig := wazero.NewModuleConfig().
		WithName("vue-compiler").
		WithStartFunctions("_initialize")

	module, err := runtime.InstantiateModule(ctx, compiled, modConfig)
	if err != nil {
		return nil, fmt.Errorf("instantiate module: %w", err)
	}

	compiler := &WasmCompiler{
		runtime: runtime,
		memory:  module.Memory(),
		alloc:   module.ExportedFunction(exportAlloc),
		dealloc: module.ExportedFunction(exportDealloc),
		compile: module.ExportedFunction(exportCompileSFC),
	}

	switch {
	case compiler.memory == nil:
		return nil, fmt.Errorf("%w: %s", ErrMissingExport, exportMemory)
	case compiler.alloc == nil:
		return nil, fmt.Errorf("%w: %s", ErrMissingExport, exportAlloc)
	case compiler.dealloc == nil:
		return nil, fmt.Errorf("%w: %s", ErrMissingExport, exportDealloc)
	case compiler.compile == nil:
		return nil, fmt.Errorf("%w: %s", ErrMissingExport, exportCompileSFC)
	}

	slog.Debug("Compiler module instantiated", "memoryBytes", compiler.memory.Size())

	return compiler, nil
}

// CompileSFC passes source and the JSON-encoded request to compile_sfc and
// decodes the JSON result it returns.
func (c *WasmCompiler) CompileSFC(ctx context.Context, source []byte, req m.CompileRequest) (m.CompileResult, error) {
	opts, err := json.Marshal(req)
	if err != nil {
		return m.CompileResult{}, fmt.Errorf("encode compile request: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	srcPtr, err := c.write(ctx, source)
	if err != nil {
		return m.CompileResult{}, fmt.Errorf("write source: %w", err)
	}

	defer c.free(ctx, srcPtr, uint32(len(source)))

	optsPtr, err := c.write(ctx, opts)
	if err != nil {
		return m.CompileResult{}, fmt.Errorf("write options: %w", err)
	}

	defer c.free(ctx, optsPtr, uint32(len(opts)))

	results, err := c.compile.Call(ctx,
		uint64(srcPtr), uint64(len(source)),
		uint64(optsPtr), uint64(len(opts)))
	if err != nil {
		return m.CompileResult{}, fmt.Errorf("call %s: %w", exportCompileSFC, err)
	}

	if len(results) != 1 {
		return m.CompileResult{}, fmt.Errorf("call %s: expected 1 result, got %d", exportCompileSFC, len(results))
	}

	outPtr := uint32(results[0] >> 32)
	outLen := uint32(results[0])

	data, ok := c.memory.Read(outPtr, outLen)
	if !ok {
		return m.CompileResult{}, fmt.Errorf("read result out of bounds: offset=%d, length=%d", outPtr, outLen)
	}

	out := bytes.Clone(data)
	c.free(ctx, outPtr, outLen)

	var result m.CompileResult
	if err := json.Unmarshal(out, &result); err != nil {
		return m.CompileResult{}, fmt.Errorf("decode compile result: %w", err)
	}

	return result, nil
}

// write copies data into guest memory allocated with alloc.
func (c *WasmCompiler) write(ctx context.Context, data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, nil
	}

	results, err := c.alloc.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("alloc %d bytes: %w", len(data), err)
	}

	ptr := uint32(results[0])
	if !c.memory.Write(ptr, data) {
		return 0, fmt.Errorf("write out of bounds: offset=%d, length=%d", ptr, len(data))
	}

	return ptr, nil
}

// free hands a guest buffer back to dealloc. Failures are logged only.
func (c *WasmCompiler) free(ctx context.Context, ptr, size uint32) {
	if ptr == 0 {
		return
	}

	if _, err := c.dealloc.Call(ctx, uint64(ptr), uint64(size)); err != nil {
		slog.Warn("Failed to free guest buffer", "ptr", ptr, "size", size, "error", err)
	}
}

// Close tears down the module and its runtime.
func (c *WasmCompiler) Close(ctx context.Context) error {
	return c.runtime.Close(ctx)
}
