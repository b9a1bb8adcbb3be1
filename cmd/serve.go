package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vuec.dev/pkg/vuec/internal/adapter"
)

var serveHostFlag string
var serveServedirFlag string

// serveCmd represents the serve command.
var serveCmd = newServeCmd()

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <entries...>",
		Short: "Serve an application with rebuild on change",
		Long: `Bundle the given entry points in development mode, rebuild whenever a
source changes and serve the output directory until interrupted. Components
carry the hot-module-replacement epilogue.`,
		Args: cobra.MinimumNArgs(1),
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindBundleFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			host := viper.GetString(serveHostKey)

			sourcemap := true
			if v := optionalBool(sourcemapConfigKey); v != nil {
				sourcemap = *v
			}

			bundler := adapter.NewBundler(plugin)

			return bundler.Serve(ctx,
				adapter.BundleOptions{
					Entries:   args,
					Outdir:    viper.GetString(buildOutdirKey),
					External:  viper.GetStringSlice(buildExternalKey),
					Sourcemap: sourcemap,
				},
				adapter.ServeOptions{
					Host:     host,
					Servedir: viper.GetString(serveServedirKey),
				},
				func(port string) {
					ui.DisplayServe(ctx, host, port)
				},
			)
		},
	}

	configureBundleFlags(cmd)

	cmd.Flags().StringVar(&serveHostFlag, "host", viper.GetString(serveHostKey), "address the dev server listens on")
	bindFlagToConfig(cmd.Flags().Lookup("host"), serveHostKey)

	cmd.Flags().StringVar(&serveServedirFlag, "servedir", viper.GetString(serveServedirKey), "directory to serve (default: the bundle output directory)")
	bindFlagToConfig(cmd.Flags().Lookup("servedir"), serveServedirKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
