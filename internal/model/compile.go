package model

// OutputShape selects what the compiler should produce.
type OutputShape string

const (
	// ShapeModule asks for an executable component module.
	ShapeModule OutputShape = "module"
	// ShapeStyle asks for the aggregate CSS of the component only.
	ShapeStyle OutputShape = "style"
)

// OutputMode selects the renderer flavor of generated code.
type OutputMode string

const (
	// OutputVDOM generates virtual-DOM render functions.
	OutputVDOM OutputMode = "vdom"
	// OutputVapor generates vapor-mode code.
	OutputVapor OutputMode = "vapor"
)

// CompileRequest is the configuration handed to the compiler for one call.
type CompileRequest struct {
	Filename   string      `json:"filename"`
	Mode       OutputShape `json:"mode"`
	ScopeID    *string     `json:"scopeId,omitempty"`
	SourceMap  bool        `json:"sourceMap"`
	SSR        bool        `json:"ssr"`
	OutputMode OutputMode  `json:"outputMode"`
}

// CompileResult is the compiler response for one call.
type CompileResult struct {
	Descriptor *Descriptor  `json:"descriptor,omitempty"`
	Script     CompiledCode `json:"script"`
	CSS        *string      `json:"css,omitempty"`
	Errors     []string     `json:"errors"`
	Warnings   []string     `json:"warnings"`
}

// CompiledCode is the generated script of a component.
type CompiledCode struct {
	Code     string            `json:"code"`
	Bindings map[string]string `json:"bindings,omitempty"`
}

// Descriptor is the parsed block layout reported by the compiler.
type Descriptor struct {
	Filename    string       `json:"filename"`
	Template    *Block       `json:"template,omitempty"`
	Script      *ScriptBlock `json:"script,omitempty"`
	ScriptSetup *ScriptBlock `json:"scriptSetup,omitempty"`
	Styles      []StyleBlock `json:"styles"`
}

// Block is a raw SFC block.
type Block struct {
	Content string `json:"content"`
}

// ScriptBlock is a <script> or <script setup> block.
type ScriptBlock struct {
	Content string `json:"content"`
	Setup   bool   `json:"setup"`
}

// StyleBlock is a <style> block.
type StyleBlock struct {
	Content string `json:"content"`
	Scoped  bool   `json:"scoped"`
}

// CSSText returns the aggregate CSS, or "" when the compiler produced none.
func (r CompileResult) CSSText() string {
	if r.CSS == nil {
		return ""
	}

	return *r.CSS
}
