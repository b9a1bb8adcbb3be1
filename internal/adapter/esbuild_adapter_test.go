package adapter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "vuec.dev/pkg/vuec/internal/model"
)

// fakeHost answers every hook with canned data.
type fakeHost struct {
	css      string
	code     string
	warnings []string
	err      error
	config   m.BuildConfig
}

func (h *fakeHost) Name() string { return "vuec" }

func (h *fakeHost) ConfigResolved(cfg m.BuildConfig) { h.config = cfg }

func (h *fakeHost) ResolveID(id string) (string, bool) {
	return id, m.IsStyleID(id)
}

func (h *fakeHost) Load(_ context.Context, id string) (string, bool, error) {
	if !m.IsStyleID(id) {
		return "", false, nil
	}

	return h.css, true, h.err
}

func (h *fakeHost) TransformResult(_ context.Context, _ []byte, id string) (*m.EmittedModule, m.CompileResult, error) {
	result := m.CompileResult{Warnings: h.warnings}
	if h.err != nil {
		return nil, result, h.err
	}

	if !strings.HasSuffix(id, m.ComponentExt) {
		return nil, result, nil
	}

	return &m.EmittedModule{Code: h.code}, result, nil
}

func TestResolveStyle(t *testing.T) {
	host := &fakeHost{}

	t.Run("relative style id is anchored at the importer", func(t *testing.T) {
		result, err := resolveStyle(host, api.OnResolveArgs{
			Path:       "./App.vue?vue&type=style",
			ResolveDir: "/project/src",
		})
		require.NoError(t, err)
		assert.Equal(t, "/project/src/App.vue?vue&type=style", result.Path)
		assert.Equal(t, StyleNamespace, result.Namespace)
		assert.Equal(t, []string{"/project/src/App.vue"}, result.WatchFiles)
	})

	t.Run("other ids are left alone", func(t *testing.T) {
		result, err := resolveStyle(host, api.OnResolveArgs{Path: "./main.ts", ResolveDir: "/project"})
		require.NoError(t, err)
		assert.Empty(t, result.Path)
	})
}

func TestLoadStyle(t *testing.T) {
	host := &fakeHost{css: ".a{color:red}"}

	result, err := loadStyle(context.Background(), host, api.OnLoadArgs{Path: "/p/App.vue?vue&type=style"})
	require.NoError(t, err)
	require.NotNil(t, result.Contents)
	assert.Equal(t, ".a{color:red}", *result.Contents)
	assert.Equal(t, api.LoaderCSS, result.Loader)
	assert.Equal(t, "/p", result.ResolveDir)

	host.err = os.ErrNotExist
	_, err = loadStyle(context.Background(), host, api.OnLoadArgs{Path: "/p/App.vue?vue&type=style"})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadComponent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "App.vue")
	require.NoError(t, os.WriteFile(path, []byte("<template><div/></template>"), 0o600))

	t.Run("emits transformed code", func(t *testing.T) {
		host := &fakeHost{code: "export default {};", warnings: []string{"w1"}}

		result, err := loadComponent(context.Background(), host, api.OnLoadArgs{Path: path})
		require.NoError(t, err)
		require.NotNil(t, result.Contents)
		assert.Equal(t, "export default {};", *result.Contents)
		assert.Equal(t, api.LoaderJS, result.Loader)
		assert.Equal(t, dir, result.ResolveDir)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, "w1", result.Warnings[0].Text)
	})

	t.Run("compile failure becomes a message", func(t *testing.T) {
		host := &fakeHost{err: errors.New("[vuec] bad template")}

		result, err := loadComponent(context.Background(), host, api.OnLoadArgs{Path: path})
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "[vuec] bad template", result.Errors[0].Text)
		assert.Equal(t, "vuec", result.Errors[0].PluginName)
		assert.Nil(t, result.Contents)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := loadComponent(context.Background(), &fakeHost{}, api.OnLoadArgs{Path: filepath.Join(dir, "Gone.vue")})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestBundler_Build(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.js"),
		[]byte("import App from './App.vue';\nconsole.log(App.name);\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "App.vue"), []byte("<template/>"), 0o600))

	host := &fakeHost{code: "const __sfc__ = { name: 'App' };\nexport default __sfc__;\n"}
	outdir := filepath.Join(dir, "dist")

	report, err := NewBundler(host).Build(context.Background(), BundleOptions{
		Entries: []string{filepath.Join(dir, "main.js")},
		Outdir:  outdir,
	})
	require.NoError(t, err)

	assert.True(t, host.config.Production)
	assert.Equal(t, m.CommandBuild, host.config.Command)
	assert.NotEmpty(t, report.Metafile.Outputs)

	bundle, err := os.ReadFile(filepath.Join(outdir, "main.js"))
	require.NoError(t, err)
	assert.Contains(t, string(bundle), "App")
}

func TestBundler_BuildReportsErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.js"), []byte("import App from './App.vue';\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "App.vue"), []byte("<template>"), 0o600))

	host := &fakeHost{err: errors.New("[vuec] unclosed template")}

	_, err := NewBundler(host).Build(context.Background(), BundleOptions{
		Entries: []string{filepath.Join(dir, "main.js")},
		Outdir:  filepath.Join(dir, "dist"),
	})
	require.ErrorIs(t, err, ErrBuildFailed)
	assert.Contains(t, err.Error(), "unclosed template")
}
