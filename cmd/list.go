package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"vuec.dev/pkg/vuec/internal/controller"
	"vuec.dev/pkg/vuec/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [paths...]",
		Short: "List components and their scope ids",
		Long:  listLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := workflow.ListSources(parsePaths(args)...)
			if err != nil {
				return err
			}

			rows := make([]controller.SourceRow, 0, len(files))

			for _, file := range files {
				content, err := fsAdapter.ReadFile(file.FullPath)
				if err != nil {
					return fmt.Errorf("read %s: %w", file.FullPath, err)
				}

				rows = append(rows, controller.SourceRow{
					Path:     file.FullPath,
					ScopeID:  domain.DeriveScopeID(file.FullPath),
					Scoped:   domain.IsScoped(content),
					Eligible: plugin.Handles(string(file.FullPath)),
				})
			}

			return ui.DisplaySources(cmd.Context(), rows)
		},
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
