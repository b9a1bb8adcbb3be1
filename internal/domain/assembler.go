package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	m "vuec.dev/pkg/vuec/internal/model"
)

// AssembleOptions control post-processing of compiled output.
type AssembleOptions struct {
	// HMR appends the hot-reload epilogue.
	HMR bool
}

const cssInjection = `(function() {
  if (typeof document !== 'undefined') {
    const style = document.createElement('style');
    style.textContent = __css__;
    document.head.appendChild(style);
  }
})();
`

const hmrEpilogueTemplate = `
if (import.meta.hot) {
  __sfc__.__hmrId = %ID%;
  import.meta.hot.accept((mod) => {
    if (!mod) return;
    const updated = mod.default;
    if (typeof __VUE_HMR_RUNTIME__ !== 'undefined') {
      __VUE_HMR_RUNTIME__.reload(%ID%, updated);
    }
  });
  if (typeof __VUE_HMR_RUNTIME__ !== 'undefined') {
    __VUE_HMR_RUNTIME__.createRecord(%ID%, __sfc__);
  }
}
`

// Assemble combines compiler output into the module handed back to the host.
// A result carrying errors yields the aggregated compilation error and no
// module. The output depends only on its inputs.
func Assemble(unit m.SourceUnit, result m.CompileResult, opts AssembleOptions) (m.EmittedModule, error) {
	if err := Diagnose(unit.Path, result); err != nil {
		return m.EmittedModule{}, err
	}

	var b strings.Builder

	if css := result.CSSText(); css != "" {
		b.WriteString(CSSPreamble(css))
	}

	b.WriteString(result.Script.Code)

	if opts.HMR {
		b.WriteString(HMREpilogue(unit.ScopeID))
	}

	return m.EmittedModule{Code: b.String()}, nil
}

// CSSPreamble returns the statements that inject css into the document when
// one exists.
func CSSPreamble(css string) string {
	return "const __css__ = " + jsString(css) + ";\n" + cssInjection
}

// HMREpilogue returns the hot-reload registration for the component with the
// given scope identifier.
func HMREpilogue(scopeID string) string {
	return strings.ReplaceAll(hmrEpilogueTemplate, "%ID%", jsString(scopeID))
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	// Encoding a string cannot fail.
	_ = enc.Encode(s)

	// The encoder also escapes U+2028 and U+2029.
	return strings.TrimSuffix(buf.String(), "\n")
}
