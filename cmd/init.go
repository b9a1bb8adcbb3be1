package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vuec.dev/pkg/vuec/internal/domain"
)

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a default vuec.yaml configuration file",
		Long: `Create a vuec.yaml in the current working directory holding the current
defaults (compiler artifact, filters, output and bundle settings) so it can
be edited manually.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			// Spell out the built-in filters so they can be edited in place.
			defaults := domain.NewFilter(nil, nil)
			viper.SetDefault(includeConfigKey, patternStrings(defaults.Include()))
			viper.SetDefault(excludeConfigKey, patternStrings(defaults.Exclude()))

			err := viper.SafeWriteConfigAs(targetPath)
			if err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			cmd.Println("wrote", targetPath)

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func patternStrings(patterns []domain.Pattern) []string {
	values := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		values = append(values, pattern.String())
	}

	return values
}
