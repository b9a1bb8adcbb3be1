package domain

import (
	"log/slog"

	m "vuec.dev/pkg/vuec/internal/model"
)

// Diagnose turns compiler-reported errors into a single compilation error.
// It returns nil when the result carries no errors; warnings never fail.
func Diagnose(path m.Path, result m.CompileResult) error {
	if len(result.Errors) == 0 {
		return nil
	}

	slog.Debug("Compiler reported errors", "path", path, "count", len(result.Errors))

	return CompileError(string(path), result.Errors)
}

// LogWarnings reports compiler warnings without affecting the outcome.
func LogWarnings(path m.Path, warnings []string) {
	for _, warning := range warnings {
		slog.Warn("Compiler warning", "path", path, "warning", warning)
	}
}
