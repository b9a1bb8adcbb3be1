// Package cmd provides the root command and CLI setup for vuec.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vuec.dev/pkg/vuec/internal/adapter"
	"vuec.dev/pkg/vuec/internal/controller"
	"vuec.dev/pkg/vuec/internal/domain"
	m "vuec.dev/pkg/vuec/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var manifestStore adapter.ManifestStore
var invoker *domain.Invoker
var plugin *domain.Plugin
var workflow domain.Workflow
var ui controller.UI

// outputDirFlag is a root-level flag shared by commands that write modules.
var outputDirFlag string

// noCacheFlag disables incremental transforms when set.
var noCacheFlag bool

var includePatterns []string
var excludePatterns []string
var compilerPathFlag string
var productionFlag bool
var ssrFlag bool
var sourcemapFlag bool
var vaporFlag bool
var parallelFlag int
var verboseFlag bool
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	fsAdapter = adapter.NewLocalSourceFSAdapter()
	manifestStore = adapter.NewYAMLManifestStore()
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - ./...          recursively scan current directory
  - ./src/...      recursively scan src directory
  - ./src ./lib    scan multiple directories`

const patternHelp = `Include and exclude patterns:
  - re:<expr>      regular expression
  - glob:<glob>    doublestar glob (e.g. glob:**/legacy/**)
  - anything else  substring match`

const rootLongDescription = `vuec compiles Vue single-file components into JavaScript modules with a
WebAssembly build of the Vue compiler. Component styles are inlined into the
module, scoped with an id derived from the file path, and dev builds carry a
hot-module-replacement epilogue.

` + pathPatternsHelp + `

` + patternHelp

const transformDirLongDescription = `Transform every eligible component under the given paths into the output
directory. Unchanged components are served from the manifest cache.

` + pathPatternsHelp

const listLongDescription = `List component files with their scope id and eligibility.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vuec",
		Short: "Vue single-file component compiler",
		Long:  rootLongDescription,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
			return setupPipeline(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return closePipeline(cmd)
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVarP(&outputDirFlag, outputFlagName, "o", viper.GetString(outputFlagName), "output directory for transformed modules")
	bindFlagToConfig(flags.Lookup(outputFlagName), outputFlagName)

	flags.BoolVar(&noCacheFlag, noCacheFlagName, viper.GetBool(noCacheFlagName), "disable incremental transforms (recompile everything)")
	bindFlagToConfig(flags.Lookup(noCacheFlagName), noCacheFlagName)

	flags.StringArrayVar(&includePatterns, includeFlagName, viper.GetStringSlice(includeConfigKey), "only process ids matching pattern (can be repeated)")
	bindFlagToConfig(flags.Lookup(includeFlagName), includeConfigKey)

	flags.StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "skip ids matching pattern (can be repeated)")
	bindFlagToConfig(flags.Lookup(excludeFlagName), excludeConfigKey)

	flags.StringVar(&compilerPathFlag, compilerFlagName, viper.GetString(compilerConfigKey), "path to the compiler WebAssembly artifact")
	bindFlagToConfig(flags.Lookup(compilerFlagName), compilerConfigKey)

	flags.BoolVar(&productionFlag, productionFlagName, false, "force production output (default: follow the command)")
	bindFlagToConfig(flags.Lookup(productionFlagName), productionConfigKey)

	flags.BoolVar(&ssrFlag, ssrFlagName, viper.GetBool(ssrConfigKey), "generate server-side rendering code")
	bindFlagToConfig(flags.Lookup(ssrFlagName), ssrConfigKey)

	flags.BoolVar(&sourcemapFlag, sourcemapFlagName, false, "force source maps on or off (default: on outside production)")
	bindFlagToConfig(flags.Lookup(sourcemapFlagName), sourcemapConfigKey)

	flags.BoolVar(&vaporFlag, vaporFlagName, viper.GetBool(vaporConfigKey), "generate vapor-mode code")
	bindFlagToConfig(flags.Lookup(vaporFlagName), vaporConfigKey)

	flags.IntVarP(&parallelFlag, parallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of components compiled in parallel")
	bindFlagToConfig(flags.Lookup(parallelFlagName), runParallelConfigKey)

	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)

	flags.StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(flags.Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// pluginOptions reads the pipeline options from the merged configuration.
func pluginOptions() (domain.Options, error) {
	include, err := domain.ParsePatterns(viper.GetStringSlice(includeConfigKey))
	if err != nil {
		return domain.Options{}, fmt.Errorf("%s: %w", includeConfigKey, err)
	}

	exclude, err := domain.ParsePatterns(viper.GetStringSlice(excludeConfigKey))
	if err != nil {
		return domain.Options{}, fmt.Errorf("%s: %w", excludeConfigKey, err)
	}

	return domain.Options{
		Include:    include,
		Exclude:    exclude,
		Production: optionalBool(productionConfigKey),
		SSR:        viper.GetBool(ssrConfigKey),
		SourceMap:  optionalBool(sourcemapConfigKey),
		Vapor:      viper.GetBool(vaporConfigKey),
	}, nil
}

// setupPipeline builds the shared dependencies once flags and config are final.
// The compiler itself is only instantiated by the first compile.
func setupPipeline(cmd *cobra.Command) error {
	opts, err := pluginOptions()
	if err != nil {
		return err
	}

	invoker = domain.NewInvoker(adapter.NewWasmCompilerLoader(viper.GetString(compilerConfigKey)))
	plugin = domain.NewPlugin(opts, invoker, fsAdapter)
	workflow = domain.NewWorkflow(fsAdapter, manifestStore, plugin)

	if controller.IsTerminal(cmd.OutOrStdout()) {
		ui = controller.NewTUI(cmd.OutOrStdout())
	} else {
		ui = controller.NewSimpleUI(cmd)
	}

	return nil
}

func closePipeline(cmd *cobra.Command) error {
	if invoker == nil {
		return nil
	}

	return invoker.Close(cmd.Context())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

// componentPath resolves a component argument to the absolute path hosts use
// as its id, so scope ids do not depend on how the path was typed.
func componentPath(arg string) (m.Path, error) {
	path, err := fsAdapter.AbsPath(m.Path(arg))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", arg, err)
	}

	return path, nil
}
