package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "vuec.dev/pkg/vuec/internal/model"
)

const fooScript = "const __sfc__ = { name: 'Foo' };\nexport default __sfc__;\n"

func cssResult(css string) m.CompileResult {
	return m.CompileResult{Script: m.CompiledCode{Code: fooScript}, CSS: &css}
}

func TestAssemble_ProductionWithoutStyle(t *testing.T) {
	unit := NewSourceUnit("Foo.vue", []byte("<template><div/></template>"))

	module, err := Assemble(unit, m.CompileResult{Script: m.CompiledCode{Code: fooScript}}, AssembleOptions{})
	require.NoError(t, err)

	assert.Equal(t, fooScript, module.Code)
	assert.Nil(t, module.Map)
}

func TestAssemble_DevServeWithStyle(t *testing.T) {
	unit := NewSourceUnit("Foo.vue", []byte("<template/><style>.a{color:red}</style>"))

	module, err := Assemble(unit, cssResult(".a{color:red}"), AssembleOptions{HMR: true})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(module.Code, `const __css__ = ".a{color:red}";`))
	assert.Contains(t, module.Code, "typeof document !== 'undefined'")

	cssAt := strings.Index(module.Code, "document.head.appendChild")
	scriptAt := strings.Index(module.Code, fooScript)
	hmrAt := strings.Index(module.Code, "import.meta.hot")

	require.NotEqual(t, -1, scriptAt)
	assert.Less(t, cssAt, scriptAt, "style injection must run before the component body")
	assert.Less(t, scriptAt, hmrAt, "hot reload wiring must follow the component body")

	id := `"` + DeriveScopeID("Foo.vue") + `"`
	assert.Contains(t, module.Code, "__VUE_HMR_RUNTIME__.reload("+id+", updated)")
	assert.Contains(t, module.Code, "__VUE_HMR_RUNTIME__.createRecord("+id+", __sfc__)")
	assert.Contains(t, module.Code, "typeof __VUE_HMR_RUNTIME__ !== 'undefined'")
	assert.True(t, strings.HasSuffix(module.Code, "}\n"))
}

func TestAssemble_Combinations(t *testing.T) {
	unit := NewSourceUnit("Foo.vue", nil)

	tests := []struct {
		name    string
		result  m.CompileResult
		hmr     bool
		wantCSS bool
	}{
		{name: "no css no hmr", result: m.CompileResult{Script: m.CompiledCode{Code: fooScript}}},
		{name: "css no hmr", result: cssResult(".a{}"), wantCSS: true},
		{name: "no css hmr", result: m.CompileResult{Script: m.CompiledCode{Code: fooScript}}, hmr: true},
		{name: "css hmr", result: cssResult(".a{}"), hmr: true, wantCSS: true},
		{name: "empty css is absent", result: cssResult("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			module, err := Assemble(unit, tt.result, AssembleOptions{HMR: tt.hmr})
			require.NoError(t, err)

			assert.Equal(t, tt.wantCSS, strings.Contains(module.Code, "__css__"))
			assert.Equal(t, tt.hmr, strings.Contains(module.Code, "import.meta.hot"))
			assert.Contains(t, module.Code, fooScript)
			assert.Nil(t, module.Map)
		})
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	unit := NewSourceUnit("Foo.vue", nil)
	result := cssResult(".a{color:red}")

	first, err := Assemble(unit, result, AssembleOptions{HMR: true})
	require.NoError(t, err)

	second, err := Assemble(unit, result, AssembleOptions{HMR: true})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAssemble_ErrorsAbort(t *testing.T) {
	unit := NewSourceUnit("Foo.vue", nil)
	result := cssResult(".a{}")
	result.Errors = []string{"Element is missing end tag.", "Unexpected EOF"}
	result.Warnings = []string{"ignored"}

	module, err := Assemble(unit, result, AssembleOptions{HMR: true})
	require.ErrorIs(t, err, ErrCompile)

	assert.Equal(t, "[vuec] Element is missing end tag.\nUnexpected EOF", err.Error())
	assert.Empty(t, module.Code)
}

func TestAssemble_WarningsDoNotFail(t *testing.T) {
	unit := NewSourceUnit("Foo.vue", nil)
	result := m.CompileResult{Script: m.CompiledCode{Code: fooScript}, Warnings: []string{"deprecated"}}

	module, err := Assemble(unit, result, AssembleOptions{})
	require.NoError(t, err)
	assert.Equal(t, fooScript, module.Code)
}

func TestCSSPreamble_EscapesLiteral(t *testing.T) {
	preamble := CSSPreamble("a::after{content:\"</style>\"}\n.b{}")

	assert.True(t, strings.HasPrefix(preamble, `const __css__ = "a::after{content:\"</style>\"}\n.b{}";`))
	assert.NotContains(t, preamble, "\n.b{}", "raw newlines must not leak out of the literal")
}
