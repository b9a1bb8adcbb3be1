package domain

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	adaptermocks "vuec.dev/pkg/vuec/internal/adapter/mocks"
	m "vuec.dev/pkg/vuec/internal/model"
)

func newMockInvoker(t *testing.T) (*Invoker, *adaptermocks.MockCompilerAdapter) {
	t.Helper()

	compiler := new(adaptermocks.MockCompilerAdapter)
	loader := new(adaptermocks.MockCompilerLoader)
	loader.On("Location").Return("wasm/vue_compiler.wasm").Maybe()
	loader.On("Load", mock.Anything).Return(compiler, nil).Maybe()

	t.Cleanup(func() { loader.AssertExpectations(t) })

	return NewInvoker(loader), compiler
}

func TestBuildRequest(t *testing.T) {
	scoped := NewSourceUnit("Foo.vue", []byte("<template/>\n<style lang=\"css\" scoped>.a{}</style>"))
	plain := NewSourceUnit("Foo.vue", []byte("<template/>\n<style>.a{}</style>"))

	t.Run("scoped style sets scope id", func(t *testing.T) {
		req := BuildRequest(scoped, m.ShapeModule, CompileOptions{})

		require.NotNil(t, req.ScopeID)
		assert.Equal(t, "data-v-"+DeriveScopeID("Foo.vue"), *req.ScopeID)
		assert.Equal(t, "Foo.vue", req.Filename)
		assert.Equal(t, m.ShapeModule, req.Mode)
	})

	t.Run("unscoped style has no scope id", func(t *testing.T) {
		req := BuildRequest(plain, m.ShapeStyle, CompileOptions{})

		assert.Nil(t, req.ScopeID)
		assert.Equal(t, m.ShapeStyle, req.Mode)
	})

	t.Run("defaults", func(t *testing.T) {
		req := BuildRequest(plain, m.ShapeModule, CompileOptions{})

		assert.True(t, req.SourceMap)
		assert.False(t, req.SSR)
		assert.Equal(t, m.OutputVDOM, req.OutputMode)
	})

	t.Run("production disables maps unless forced", func(t *testing.T) {
		req := BuildRequest(plain, m.ShapeModule, CompileOptions{Production: true})
		assert.False(t, req.SourceMap)

		on := true
		req = BuildRequest(plain, m.ShapeModule, CompileOptions{Production: true, SourceMap: &on})
		assert.True(t, req.SourceMap)

		off := false
		req = BuildRequest(plain, m.ShapeModule, CompileOptions{SourceMap: &off})
		assert.False(t, req.SourceMap)
	})

	t.Run("ssr and vapor", func(t *testing.T) {
		req := BuildRequest(plain, m.ShapeModule, CompileOptions{SSR: true, Vapor: true})

		assert.True(t, req.SSR)
		assert.Equal(t, m.OutputVapor, req.OutputMode)
	})
}

func TestIsScoped(t *testing.T) {
	assert.True(t, IsScoped([]byte("<style scoped>")))
	assert.True(t, IsScoped([]byte(`<style lang="scss" scoped>`)))
	assert.False(t, IsScoped([]byte("<style>.scoped{}</style>")))
	assert.False(t, IsScoped([]byte(`<style lang="unscoped">`)))
	assert.False(t, IsScoped([]byte("<template/>")))
}

func TestInvoker_CompileReturnsResultUnmodified(t *testing.T) {
	invoker, compiler := newMockInvoker(t)
	unit := NewSourceUnit("Foo.vue", []byte("<template/>"))
	want := m.CompileResult{
		Script:   m.CompiledCode{Code: "export default {}"},
		Errors:   []string{"e"},
		Warnings: []string{"w"},
	}

	compiler.On("CompileSFC", mock.Anything, unit.Content, BuildRequest(unit, m.ShapeModule, CompileOptions{})).
		Return(want, nil).Once()

	got, err := invoker.Compile(context.Background(), unit, m.ShapeModule, CompileOptions{})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	compiler.AssertExpectations(t)
}

func TestInvoker_CompileWrapsEndpointFailure(t *testing.T) {
	invoker, compiler := newMockInvoker(t)
	boom := errors.New("trap")

	compiler.On("CompileSFC", mock.Anything, mock.Anything, mock.Anything).Return(m.CompileResult{}, boom).Once()

	_, err := invoker.Compile(context.Background(), NewSourceUnit("Foo.vue", nil), m.ShapeModule, CompileOptions{})
	require.ErrorIs(t, err, boom)
	compiler.AssertNumberOfCalls(t, "CompileSFC", 1)
}

func TestInvoker_LoadsOnceUnderConcurrency(t *testing.T) {
	compiler := new(adaptermocks.MockCompilerAdapter)
	loader := new(adaptermocks.MockCompilerLoader)
	loader.On("Location").Return("wasm/vue_compiler.wasm").Maybe()
	loader.On("Load", mock.Anything).Return(compiler, nil).Once()

	invoker := NewInvoker(loader)
	compiler.On("CompileSFC", mock.Anything, mock.Anything, mock.Anything).Return(m.CompileResult{}, nil)

	var wg sync.WaitGroup

	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := invoker.Compile(context.Background(), NewSourceUnit("Foo.vue", nil), m.ShapeModule, CompileOptions{})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	compiler.AssertNumberOfCalls(t, "CompileSFC", 16)
	loader.AssertNumberOfCalls(t, "Load", 1)
}

func TestInvoker_LoadOutlivesCancelledCaller(t *testing.T) {
	compiler := new(adaptermocks.MockCompilerAdapter)
	compiler.On("CompileSFC", mock.Anything, mock.Anything, mock.Anything).Return(m.CompileResult{}, nil)

	loader := new(adaptermocks.MockCompilerLoader)
	loader.On("Location").Return("wasm/vue_compiler.wasm").Maybe()
	loader.On("Load", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	})).Return(compiler, nil).Once()

	invoker := NewInvoker(loader)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := invoker.Compiler(ctx)
	require.NoError(t, err)

	_, err = invoker.Compile(context.Background(), NewSourceUnit("Foo.vue", nil), m.ShapeModule, CompileOptions{})
	require.NoError(t, err)

	loader.AssertExpectations(t)
}

func TestInvoker_InitFailureIsPermanent(t *testing.T) {
	loader := new(adaptermocks.MockCompilerLoader)
	loader.On("Location").Return("wasm/vue_compiler.wasm")
	loader.On("Load", mock.Anything).Return(nil, errors.New("no such file")).Once()

	invoker := NewInvoker(loader)

	for range 3 {
		_, err := invoker.Compile(context.Background(), NewSourceUnit("Foo.vue", nil), m.ShapeModule, CompileOptions{})
		require.ErrorIs(t, err, ErrInit)
		assert.Contains(t, err.Error(), "wasm/vue_compiler.wasm")
	}

	loader.AssertNumberOfCalls(t, "Load", 1)
}

func TestInvoker_Close(t *testing.T) {
	loader := new(adaptermocks.MockCompilerLoader)
	assert.NoError(t, NewInvoker(loader).Close(context.Background()), "closing an unloaded invoker is a no-op")

	invoker, compiler := newMockInvoker(t)
	compiler.On("Close", mock.Anything).Return(nil).Once()

	_, err := invoker.Compiler(context.Background())
	require.NoError(t, err)
	require.NoError(t, invoker.Close(context.Background()))

	compiler.AssertExpectations(t)
}
