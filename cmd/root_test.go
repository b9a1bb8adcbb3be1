package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuec.dev/pkg/vuec/internal/domain"
	m "vuec.dev/pkg/vuec/internal/model"
)

const fixtureCompiler = "../internal/adapter/testdata/fixture_compiler.wasm"

// fixtureCompilerPath is resolved before any test changes directory.
var fixtureCompilerPath, _ = filepath.Abs(fixtureCompiler)

// executeCommand runs sub under a fresh root wired to the fixture compiler.
func executeCommand(t *testing.T, sub *cobra.Command, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	configureRootFlags(root)
	root.AddCommand(sub)

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)

	// Defaults go first so that flags passed by the test win.
	root.SetArgs(append([]string{
		"--" + compilerFlagName + "=" + fixtureCompilerPath,
		"--" + logFileFlagName + "=" + filepath.Join(t.TempDir(), "vuec.log"),
	}, args...))

	err := root.Execute()

	return stdout.String(), stderr.String(), err
}

func writeComponent(t *testing.T, path, content string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestParsePaths(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []m.Path
	}{
		{"empty", []string{}, []m.Path{}},
		{"single", []string{"./..."}, []m.Path{m.Path("./...")}},
		{
			"multiple",
			[]string{"./src", "./lib", "./packages/ui"},
			[]m.Path{m.Path("./src"), m.Path("./lib"), m.Path("./packages/ui")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePaths(tt.args)
			require.Len(t, got, len(tt.want))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "vuec", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, rootLongDescription, cmd.Long)
}

func TestRootCmd_HelpOutput(t *testing.T) {
	cmd := newRootCmd()
	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(&bytes.Buffer{})

	cmd.SetArgs([]string{"--help"})
	err := cmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, output.String(), "Usage:")
	assert.Contains(t, output.String(), "Supports Go-style path patterns")
	assert.Contains(t, output.String(), "glob:<glob>")
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	for _, name := range []string{"transform", "transform-dir", "style", "list", "build", "serve", "watch", "init", "version"} {
		found, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}
}

func TestInit(t *testing.T) {
	assert.NotNil(t, fsAdapter)
	assert.NotNil(t, manifestStore)
}

func TestPluginOptions(t *testing.T) {
	_, _, err := executeCommand(t, newVersionCmd(),
		"version", "--include", "re:^src/", "--exclude", "glob:**/legacy/**", "--production", "--vapor")
	require.NoError(t, err)

	opts, err := pluginOptions()
	require.NoError(t, err)

	require.Len(t, opts.Include, 1)
	assert.Equal(t, domain.PatternRegexp, opts.Include[0].Kind)
	require.Len(t, opts.Exclude, 1)
	assert.Equal(t, domain.PatternGlob, opts.Exclude[0].Kind)
	require.NotNil(t, opts.Production)
	assert.True(t, *opts.Production)
	assert.Nil(t, opts.SourceMap)
	assert.True(t, opts.Vapor)
}

func TestPluginOptions_InvalidPattern(t *testing.T) {
	_, _, err := executeCommand(t, newVersionCmd(), "version", "--include", "re:(")
	require.Error(t, err)
	assert.Contains(t, err.Error(), includeConfigKey)
}

func TestExecute(t *testing.T) {
	originalRootCmd := rootCmd
	defer func() {
		rootCmd = originalRootCmd
	}()

	mockCmd := &cobra.Command{
		Use: "test",
		RunE: func(_ *cobra.Command, _ []string) error {
			return nil
		},
	}
	mockCmd.SetOut(&bytes.Buffer{})
	mockCmd.SetErr(&bytes.Buffer{})
	mockCmd.SetArgs([]string{})

	rootCmd = mockCmd

	Execute()
}

func TestExecute_ProcessLevel_Failure(t *testing.T) {
	if os.Getenv("TEST_EXECUTE_SUBPROCESS_FAIL") == "1" {
		mockCmd := &cobra.Command{
			Use: "test",
			RunE: func(_ *cobra.Command, _ []string) error {
				return fmt.Errorf("command failed")
			},
		}
		mockCmd.SetArgs([]string{})
		rootCmd = mockCmd

		Execute()

		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestExecute_ProcessLevel_Failure")
	cmd.Env = append(os.Environ(), "TEST_EXECUTE_SUBPROCESS_FAIL=1")
	err := cmd.Run()

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
}
