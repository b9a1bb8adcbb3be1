// Package controller provides output adapters for displaying pipeline results.
package controller

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	m "vuec.dev/pkg/vuec/internal/model"
)

// SourceRow describes one component found on disk.
type SourceRow struct {
	Path     m.Path
	ScopeID  string
	Scoped   bool
	Eligible bool
}

// BuildSummary describes a finished bundle.
type BuildSummary struct {
	Metafile m.Metafile
	Warnings []string
}

// UI defines how command results are shown.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	DisplaySources(ctx context.Context, rows []SourceRow) error
	DisplayReports(ctx context.Context, reports []m.FileReport) error
	DisplayBuild(ctx context.Context, summary BuildSummary) error
	DisplayServe(ctx context.Context, host, port string)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
