package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"vuec.dev/pkg/vuec/internal/adapter"
	m "vuec.dev/pkg/vuec/internal/model"
)

// OutputExt is appended to a component path to name its emitted module.
const OutputExt = ".js"

// ErrTransformFailed is returned when at least one component of a batch failed.
var ErrTransformFailed = errors.New("transform failed")

// ErrOutputConflict marks components of one batch that map to the same output file.
var ErrOutputConflict = errors.New("output path claimed by more than one component")

// TransformArgs configure a batch transform.
type TransformArgs struct {
	Paths    []m.Path
	Output   m.Path
	UseCache bool
	Parallel int
}

// Workflow runs the pipeline over component files on disk.
type Workflow interface {
	// ListSources returns the component files found under paths, with absolute
	// FullPaths. A path ending in "/..." is walked recursively.
	ListSources(paths ...m.Path) ([]m.File, error)

	// TransformAll transforms every eligible component under args.Paths into
	// args.Output and reports per-file outcomes.
	TransformAll(ctx context.Context, args TransformArgs) ([]m.FileReport, error)

	// TransformFiles transforms the given files, bypassing the cache.
	TransformFiles(ctx context.Context, files []m.File, output m.Path, parallel int) ([]m.FileReport, error)
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ManifestStore
	plugin *Plugin
}

// NewWorkflow creates a Workflow backed by plugin.
func NewWorkflow(fs adapter.SourceFSAdapter, store adapter.ManifestStore, plugin *Plugin) Workflow {
	return &workflow{
		SourceFSAdapter: fs,
		ManifestStore:   store,
		plugin:          plugin,
	}
}

func (w *workflow) ListSources(paths ...m.Path) ([]m.File, error) {
	if len(paths) == 0 {
		paths = []m.Path{"."}
	}

	seen := make(map[m.Path]bool)

	var files []m.File

	for _, path := range paths {
		root, recursive := adapter.SplitRecursive(string(path))

		root, err := w.AbsPath(root)
		if err != nil {
			return nil, fmt.Errorf("root path error: %w", err)
		}

		info, err := w.FileInfo(root)
		if err != nil {
			return nil, fmt.Errorf("root path error: %w", err)
		}

		if !info.IsDir() {
			if !seen[root] {
				seen[root] = true

				files = append(files, m.File{FullPath: root, ShortPath: m.Path(filepath.Base(string(root)))})
			}

			continue
		}

		err = w.Walk(root, recursive, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() || filepath.Ext(p) != m.ComponentExt || seen[m.Path(p)] {
				return nil
			}

			rel, err := w.RelPath(root, m.Path(p))
			if err != nil {
				return err
			}

			seen[m.Path(p)] = true

			files = append(files, m.File{FullPath: m.Path(p), ShortPath: rel})

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].FullPath < files[j].FullPath
	})

	return files, nil
}

func (w *workflow) TransformAll(ctx context.Context, args TransformArgs) ([]m.FileReport, error) {
	files, err := w.ListSources(args.Paths...)
	if err != nil {
		return nil, err
	}

	manifest := adapter.NewManifest()

	if args.UseCache {
		manifest, err = w.LoadManifest(args.Output)
		if err != nil {
			slog.Warn("Ignoring unreadable manifest", "output", args.Output, "error", err)

			manifest = adapter.NewManifest()
		}
	}

	settings := w.plugin.Fingerprint()

	reports, err := w.run(ctx, files, args.Output, args.Parallel, func(file m.File, hash string) bool {
		if !args.UseCache {
			return false
		}

		entry, ok := manifest.Entries[file.FullPath]
		if !ok || entry.Hash != hash {
			return false
		}

		if entry.Settings != settings {
			slog.Debug("Component settings changed", "path", file.FullPath, "was", entry.Settings, "now", settings)
			return false
		}

		_, statErr := w.FileInfo(entry.Output)

		return statErr == nil
	})

	for _, report := range reports {
		switch report.Status {
		case m.Transformed:
			manifest.Entries[report.Source.FullPath] = m.ManifestEntry{
				Source:   report.Source.FullPath,
				Output:   report.Output,
				ScopeID:  report.ScopeID,
				Hash:     report.Source.Hash,
				Settings: settings,
				Scoped:   report.Scoped,
				CSSBytes: report.CSSBytes,
				Warnings: report.Warnings,
			}
		case m.Failed, m.Skipped:
			delete(manifest.Entries, report.Source.FullPath)
		case m.Cached:
		}
	}

	if saveErr := w.SaveManifest(args.Output, manifest); saveErr != nil {
		slog.Error("Failed to save manifest", "output", args.Output, "error", saveErr)
		return reports, errors.Join(err, saveErr)
	}

	return reports, err
}

func (w *workflow) TransformFiles(ctx context.Context, files []m.File, output m.Path, parallel int) ([]m.FileReport, error) {
	return w.run(ctx, files, output, parallel, func(m.File, string) bool { return false })
}

func (w *workflow) run(ctx context.Context, files []m.File, output m.Path, parallel int,
	cached func(file m.File, hash string) bool,
) ([]m.FileReport, error) {
	files = w.absolute(files)
	reports := make([]m.FileReport, len(files))

	claims := make(map[m.Path]int, len(files))

	for _, file := range files {
		if w.plugin.Handles(string(file.FullPath)) {
			claims[w.outputPath(output, file)]++
		}
	}

	var group errgroup.Group
	if parallel > 0 {
		group.SetLimit(parallel)
	}

	for i, file := range files {
		if out := w.outputPath(output, file); claims[out] > 1 && w.plugin.Handles(string(file.FullPath)) {
			reports[i] = failReport(w.newReport(file, output), fmt.Errorf("%w: %s", ErrOutputConflict, out))
			continue
		}

		group.Go(func() error {
			reports[i] = w.transformFile(ctx, file, output, cached)
			return nil
		})
	}

	// Workers record failures in their reports and never return errors.
	_ = group.Wait()

	var failed []string

	for _, report := range reports {
		if report.Status == m.Failed {
			failed = append(failed, string(report.Source.FullPath))
		}
	}

	if len(failed) > 0 {
		return reports, fmt.Errorf("%w: %d of %d components: %s",
			ErrTransformFailed, len(failed), len(files), strings.Join(failed, ", "))
	}

	return reports, nil
}

// absolute returns files with absolute FullPaths. Scope ids are derived from
// absolute paths, as hosts like esbuild pass them.
func (w *workflow) absolute(files []m.File) []m.File {
	out := make([]m.File, len(files))

	for i, file := range files {
		if abs, err := w.AbsPath(file.FullPath); err == nil {
			file.FullPath = abs
		}

		out[i] = file
	}

	return out
}

func (w *workflow) outputPath(output m.Path, file m.File) m.Path {
	return w.JoinPath(string(output), string(file.ShortPath)+OutputExt)
}

func (w *workflow) newReport(file m.File, output m.Path) m.FileReport {
	return m.FileReport{
		Source:  file,
		Output:  w.outputPath(output, file),
		ScopeID: DeriveScopeID(file.FullPath),
	}
}

func (w *workflow) transformFile(ctx context.Context, file m.File, output m.Path,
	cached func(file m.File, hash string) bool,
) m.FileReport {
	report := w.newReport(file, output)

	if !w.plugin.Handles(string(file.FullPath)) {
		report.Status = m.Skipped
		return report
	}

	if err := ctx.Err(); err != nil {
		return failReport(report, err)
	}

	hash, err := w.HashFile(file.FullPath)
	if err != nil {
		return failReport(report, fmt.Errorf("hash %s: %w", file.FullPath, err))
	}

	report.Source.Hash = hash

	if cached(report.Source, hash) {
		slog.Debug("Component unchanged", "path", file.FullPath)

		report.Status = m.Cached

		return report
	}

	content, err := w.ReadFile(file.FullPath)
	if err != nil {
		return failReport(report, fmt.Errorf("read %s: %w", file.FullPath, err))
	}

	report.Scoped = IsScoped(content)

	module, result, err := w.plugin.TransformResult(ctx, content, string(file.FullPath))
	report.Warnings = result.Warnings

	if err != nil {
		return failReport(report, err)
	}

	report.CSSBytes = len(result.CSSText())

	w.logChange(report.Output, module.Code)

	if err := w.WriteFile(report.Output, []byte(module.Code)); err != nil {
		return failReport(report, fmt.Errorf("write %s: %w", report.Output, err))
	}

	slog.Info("Component transformed", "path", file.FullPath, "output", report.Output, "scopeID", report.ScopeID)

	report.Status = m.Transformed

	return report
}

// logChange writes a diff of the previous output at debug level.
func (w *workflow) logChange(output m.Path, code string) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	previous, err := w.ReadFile(output)
	if err != nil {
		return
	}

	diff, err := adapter.UnifiedDiff(string(previous), code, string(output), string(output))
	if err != nil || diff == "" {
		return
	}

	slog.Debug("Module changed", "output", output, "diff", diff)
}

func failReport(report m.FileReport, err error) m.FileReport {
	slog.Error("Component failed", "path", report.Source.FullPath, "error", err)

	report.Status = m.Failed
	report.Err = err

	return report
}
