package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"vuec.dev/pkg/vuec/internal/adapter"
	"vuec.dev/pkg/vuec/internal/domain"
)

func runInit(t *testing.T) (*bytes.Buffer, error) {
	t.Helper()

	cmd := newRootCmd()
	configureRootFlags(cmd)
	cmd.AddCommand(newInitCmd())

	stderr := &bytes.Buffer{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"init"})

	return stderr, cmd.Execute()
}

func TestInitCmd_WritesConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)

	stderr, err := runInit(t)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "wrote "+configFileName)

	contents, err := os.ReadFile(filepath.Join(tempDir, configFileName))
	require.NoError(t, err)

	var config struct {
		Compiler struct {
			Wasm string `yaml:"wasm"`
		} `yaml:"compiler"`
		Filter struct {
			Include []string `yaml:"include"`
			Exclude []string `yaml:"exclude"`
		} `yaml:"filter"`
	}
	require.NoError(t, yaml.Unmarshal(contents, &config))

	assert.Equal(t, adapter.DefaultCompilerPath, config.Compiler.Wasm)
	assert.Equal(t, []string{`re:\.vue$`}, config.Filter.Include)
	assert.Equal(t, []string{"re:node_modules"}, config.Filter.Exclude)

	t.Run("written filters parse back to the defaults", func(t *testing.T) {
		exclude, err := domain.ParsePatterns(config.Filter.Exclude)
		require.NoError(t, err)

		filter := domain.NewFilter(nil, exclude)
		assert.True(t, filter.Match("/src/App.vue"))
		assert.False(t, filter.Match("/node_modules/lib/App.vue"))
	})
}

func TestInitCmd_ErrorsWhenFileExists(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)

	targetPath := filepath.Join(tempDir, configFileName)
	require.NoError(t, os.WriteFile(targetPath, []byte("existing: true\n"), 0o644))

	_, err := runInit(t)
	require.Error(t, err)

	contents, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	assert.Equal(t, "existing: true\n", string(contents), "an existing config is left untouched")
}
