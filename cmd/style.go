package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	m "vuec.dev/pkg/vuec/internal/model"
)

// styleCmd represents the style command.
var styleCmd = newStyleCmd()

func newStyleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "style <file|id>",
		Short: "Print the compiled CSS of a component",
		Long: `Resolve and load the virtual style module of a component. The argument is
either a component path or a full "<path>.vue?vue&type=style" id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := componentPath(string(m.StripQuery(args[0])))
			if err != nil {
				return err
			}

			id := string(m.StyleID(path))

			resolved, ok := plugin.ResolveID(id)
			if !ok {
				return fmt.Errorf("%s: %w", id, errNotHandled)
			}

			css, ok, err := plugin.Load(cmd.Context(), resolved)
			if err != nil {
				return err
			}

			if !ok {
				return fmt.Errorf("%s: %w", resolved, errNotHandled)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), css)

			return err
		},
	}
}

func init() {
	rootCmd.AddCommand(styleCmd)
}
