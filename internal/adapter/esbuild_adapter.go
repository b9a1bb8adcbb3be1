package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/evanw/esbuild/pkg/api"

	m "vuec.dev/pkg/vuec/internal/model"
)

// StyleNamespace holds the virtual style modules claimed by the pipeline.
const StyleNamespace = "vuec-style"

var (
	styleFilter     = regexp.QuoteMeta(m.ComponentExt + m.StyleQuery)
	componentFilter = regexp.QuoteMeta(m.ComponentExt) + "$"
)

// ErrBuildFailed is returned when esbuild reports errors.
var ErrBuildFailed = errors.New("build failed")

// HostPlugin is the hook surface the esbuild adapter drives.
type HostPlugin interface {
	Name() string
	ConfigResolved(cfg m.BuildConfig)
	ResolveID(id string) (string, bool)
	Load(ctx context.Context, id string) (string, bool, error)
	TransformResult(ctx context.Context, code []byte, id string) (*m.EmittedModule, m.CompileResult, error)
}

// NewEsbuildPlugin conforms host to esbuild's plugin API. cfg is handed to
// host when esbuild sets the plugin up.
func NewEsbuildPlugin(ctx context.Context, host HostPlugin, cfg m.BuildConfig) api.Plugin {
	return api.Plugin{
		Name: host.Name(),
		Setup: func(build api.PluginBuild) {
			host.ConfigResolved(cfg)

			build.OnResolve(api.OnResolveOptions{Filter: styleFilter},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return resolveStyle(host, args)
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: StyleNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					return loadStyle(ctx, host, args)
				})

			build.OnLoad(api.OnLoadOptions{Filter: componentFilter, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					return loadComponent(ctx, host, args)
				})
		},
	}
}

func resolveStyle(host HostPlugin, args api.OnResolveArgs) (api.OnResolveResult, error) {
	id := args.Path
	if !filepath.IsAbs(id) && args.ResolveDir != "" {
		id = filepath.Join(args.ResolveDir, id)
	}

	resolved, ok := host.ResolveID(id)
	if !ok {
		return api.OnResolveResult{}, nil
	}

	return api.OnResolveResult{
		Path:      resolved,
		Namespace: StyleNamespace,
		WatchFiles: []string{
			string(m.StripQuery(resolved)),
		},
	}, nil
}

func loadStyle(ctx context.Context, host HostPlugin, args api.OnLoadArgs) (api.OnLoadResult, error) {
	css, ok, err := host.Load(ctx, args.Path)
	if err != nil {
		return api.OnLoadResult{}, err
	}

	if !ok {
		return api.OnLoadResult{}, nil
	}

	return api.OnLoadResult{
		Contents:   &css,
		Loader:     api.LoaderCSS,
		ResolveDir: filepath.Dir(string(m.StripQuery(args.Path))),
	}, nil
}

func loadComponent(ctx context.Context, host HostPlugin, args api.OnLoadArgs) (api.OnLoadResult, error) {
	// #nosec G304 - esbuild resolved the path inside the project
	code, err := os.ReadFile(args.Path)
	if err != nil {
		return api.OnLoadResult{}, fmt.Errorf("read %s: %w", args.Path, err)
	}

	module, result, err := host.TransformResult(ctx, code, args.Path)

	warnings := make([]api.Message, 0, len(result.Warnings))
	for _, warning := range result.Warnings {
		warnings = append(warnings, api.Message{PluginName: host.Name(), Text: warning})
	}

	if err != nil {
		return api.OnLoadResult{
			Errors:   []api.Message{{PluginName: host.Name(), Text: err.Error()}},
			Warnings: warnings,
		}, nil
	}

	if module == nil {
		// Not ours; let esbuild fall through to its own loaders.
		return api.OnLoadResult{}, nil
	}

	return api.OnLoadResult{
		Contents:   &module.Code,
		Loader:     api.LoaderJS,
		ResolveDir: filepath.Dir(args.Path),
		Warnings:   warnings,
	}, nil
}

// BundleOptions configure a bundle.
type BundleOptions struct {
	Entries   []string
	Outdir    string
	External  []string
	Minify    bool
	Sourcemap bool
}

// ServeOptions configure the development server.
type ServeOptions struct {
	Host     string
	Servedir string
}

// BuildReport summarizes a finished bundle.
type BuildReport struct {
	Metafile m.Metafile
	Warnings []string
}

// Bundler runs esbuild with the pipeline plugged in.
type Bundler struct {
	host HostPlugin
}

// NewBundler creates a Bundler driving host.
func NewBundler(host HostPlugin) *Bundler {
	return &Bundler{host: host}
}

// Build bundles opts.Entries once in production mode.
func (b *Bundler) Build(ctx context.Context, opts BundleOptions) (BuildReport, error) {
	buildOpts := b.buildOptions(ctx, opts, m.BuildConfig{Production: true, Command: m.CommandBuild})
	buildOpts.Metafile = true

	result := api.Build(buildOpts)

	report := BuildReport{Warnings: messageTexts(result.Warnings)}

	if len(result.Errors) > 0 {
		return report, buildError(result.Errors)
	}

	if err := json.Unmarshal([]byte(result.Metafile), &report.Metafile); err != nil {
		return report, fmt.Errorf("decode metafile: %w", err)
	}

	slog.Info("Bundle written", "outdir", opts.Outdir, "outputs", len(report.Metafile.Outputs))

	return report, nil
}

// Serve rebuilds on change and serves the output until ctx is done. ready is
// called once the server is listening.
func (b *Bundler) Serve(ctx context.Context, opts BundleOptions, serve ServeOptions, ready func(port string)) error {
	buildOpts := b.buildOptions(ctx, opts, m.BuildConfig{Production: false, Command: m.CommandServe})

	buildCtx, ctxErr := api.Context(buildOpts)
	if ctxErr != nil {
		return buildError(ctxErr.Errors)
	}

	defer buildCtx.Dispose()

	if err := buildCtx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	servedir := serve.Servedir
	if servedir == "" {
		servedir = opts.Outdir
	}

	result, err := buildCtx.Serve(api.ServeOptions{
		Host:     serve.Host,
		Servedir: servedir,
	})
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	port := fmt.Sprintf("%v", result.Port)
	slog.Info("Dev server listening", "host", serve.Host, "port", port, "servedir", servedir)

	if ready != nil {
		ready(port)
	}

	<-ctx.Done()

	return nil
}

func (b *Bundler) buildOptions(ctx context.Context, opts BundleOptions, cfg m.BuildConfig) api.BuildOptions {
	sourcemap := api.SourceMapNone
	if opts.Sourcemap {
		sourcemap = api.SourceMapLinked
	}

	return api.BuildOptions{
		EntryPoints:       opts.Entries,
		Outdir:            opts.Outdir,
		External:          opts.External,
		Bundle:            true,
		Write:             true,
		Format:            api.FormatESModule,
		Platform:          api.PlatformBrowser,
		Sourcemap:         sourcemap,
		MinifyWhitespace:  opts.Minify,
		MinifyIdentifiers: opts.Minify,
		MinifySyntax:      opts.Minify,
		LogLevel:          api.LogLevelSilent,
		Plugins:           []api.Plugin{NewEsbuildPlugin(ctx, b.host, cfg)},
	}
}

func messageTexts(messages []api.Message) []string {
	texts := make([]string, 0, len(messages))

	for _, msg := range messages {
		text := msg.Text
		if msg.Location != nil {
			text = fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, text)
		}

		texts = append(texts, text)
	}

	return texts
}

func buildError(messages []api.Message) error {
	errs := make([]error, 0, len(messages))
	for _, text := range messageTexts(messages) {
		errs = append(errs, errors.New(text))
	}

	return fmt.Errorf("%w: %w", ErrBuildFailed, errors.Join(errs...))
}
