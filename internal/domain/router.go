package domain

import (
	"context"
	"log/slog"

	"vuec.dev/pkg/vuec/internal/adapter"
	m "vuec.dev/pkg/vuec/internal/model"
)

// Router serves the style view of components under virtual identifiers of the
// form "<path>?vue&type=style".
type Router struct {
	fs      adapter.SourceFSAdapter
	invoker *Invoker
}

// NewRouter creates a Router reading sources through fs.
func NewRouter(fs adapter.SourceFSAdapter, invoker *Invoker) *Router {
	return &Router{fs: fs, invoker: invoker}
}

// ResolveID claims style identifiers and returns them unchanged.
func (r *Router) ResolveID(id string) (string, bool) {
	if !m.IsStyleID(id) {
		return "", false
	}

	return id, true
}

// Load compiles the component behind a style identifier in style mode and
// returns its aggregate CSS, or "" when it has none. Identifiers that are not
// style identifiers are left to the host. Read failures are returned
// unchanged; compiler errors are logged only.
func (r *Router) Load(ctx context.Context, id string, opts CompileOptions) (string, bool, error) {
	if !m.IsStyleID(id) {
		return "", false, nil
	}

	path := m.StripQuery(id)

	content, err := r.fs.ReadFile(path)
	if err != nil {
		slog.Error("Failed to read component", "path", path, "error", err)
		return "", true, err
	}

	result, err := r.invoker.Compile(ctx, NewSourceUnit(path, content), m.ShapeStyle, opts)
	if err != nil {
		return "", true, err
	}

	// The main transform reports compiler errors for the same file.
	for _, msg := range result.Errors {
		slog.Warn("Compiler error in style view", "path", path, "error", msg)
	}

	return result.CSSText(), true, nil
}
