package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vuec.dev/pkg/vuec/internal/adapter"
	"vuec.dev/pkg/vuec/internal/controller"
)

var buildMinifyFlag bool

// buildCmd represents the build command.
var buildCmd = newBuildCmd()

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <entries...>",
		Short: "Bundle an application for production",
		Long: `Bundle the given entry points with esbuild. Components are compiled in
production mode and their styles are inlined into the bundle.`,
		Args: cobra.MinimumNArgs(1),
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindBundleFlags(cmd)
			bindFlagToConfig(cmd.Flags().Lookup("minify"), buildMinifyKey)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			bundler := adapter.NewBundler(plugin)

			report, err := bundler.Build(cmd.Context(), adapter.BundleOptions{
				Entries:   args,
				Outdir:    viper.GetString(buildOutdirKey),
				External:  viper.GetStringSlice(buildExternalKey),
				Minify:    viper.GetBool(buildMinifyKey),
				Sourcemap: viper.GetBool(sourcemapConfigKey),
			})

			displayErr := ui.DisplayBuild(cmd.Context(), controller.BuildSummary{
				Metafile: report.Metafile,
				Warnings: report.Warnings,
			})

			return errors.Join(err, displayErr)
		},
	}

	configureBundleFlags(cmd)

	cmd.Flags().BoolVar(&buildMinifyFlag, "minify", viper.GetBool(buildMinifyKey), "minify the bundle")

	return cmd
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

// configureBundleFlags adds the flags shared by build and serve.
func configureBundleFlags(cmd *cobra.Command) {
	cmd.Flags().String("outdir", viper.GetString(buildOutdirKey), "bundle output directory")
	cmd.Flags().StringArray("external", viper.GetStringSlice(buildExternalKey), "leave imports of this module unbundled (can be repeated)")
}

// bindBundleFlags binds the shared flags of the running command only, since
// build and serve feed the same keys.
func bindBundleFlags(cmd *cobra.Command) {
	bindFlagToConfig(cmd.Flags().Lookup("outdir"), buildOutdirKey)
	bindFlagToConfig(cmd.Flags().Lookup("external"), buildExternalKey)
}
