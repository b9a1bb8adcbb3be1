package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vuec.dev/pkg/vuec/internal/domain"
	m "vuec.dev/pkg/vuec/internal/model"
)

// transformDirCmd represents the transform-dir command.
var transformDirCmd = newTransformDirCmd()

func newTransformDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transform-dir [paths...]",
		Short: "Transform components into the output directory",
		Long:  transformDirLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			plugin.ConfigResolved(m.BuildConfig{Production: true, Command: m.CommandBuild})

			reports, err := workflow.TransformAll(cmd.Context(), domain.TransformArgs{
				Paths:    parsePaths(args),
				Output:   m.Path(viper.GetString(outputFlagName)),
				UseCache: !viper.GetBool(noCacheFlagName),
				Parallel: viper.GetInt(runParallelConfigKey),
			})
			if reports == nil {
				return err
			}

			return errors.Join(ui.DisplayReports(cmd.Context(), reports), err)
		},
	}
}

func init() {
	rootCmd.AddCommand(transformDirCmd)
}
