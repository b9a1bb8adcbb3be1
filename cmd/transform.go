package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	m "vuec.dev/pkg/vuec/internal/model"
)

var errNotHandled = errors.New("not handled by the include/exclude filter")

var transformOutFlag string
var transformModeFlag string

// transformCmd represents the transform command.
var transformCmd = newTransformCmd()

func newTransformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform <file>",
		Short: "Transform one component and print the emitted module",
		Long: `Run the pipeline on one component. In serve mode the module carries the
hot-module-replacement epilogue; in build mode it does not.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := parseCommand(transformModeFlag)
			if err != nil {
				return err
			}

			path, err := componentPath(args[0])
			if err != nil {
				return err
			}

			code, err := fsAdapter.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			plugin.ConfigResolved(m.BuildConfig{Production: command == m.CommandBuild, Command: command})

			module, result, err := plugin.TransformResult(cmd.Context(), code, string(path))
			for _, warning := range result.Warnings {
				cmd.PrintErrln("warning:", warning)
			}

			if err != nil {
				return err
			}

			if module == nil {
				return fmt.Errorf("%s: %w", path, errNotHandled)
			}

			if transformOutFlag == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), module.Code)
				return err
			}

			if err := fsAdapter.WriteFile(m.Path(transformOutFlag), []byte(module.Code)); err != nil {
				return fmt.Errorf("write %s: %w", transformOutFlag, err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&transformOutFlag, "out", "", "write the module to this file instead of stdout")
	cmd.Flags().StringVar(&transformModeFlag, "mode", string(m.CommandBuild), "host command to emulate: serve or build")

	return cmd
}

func init() {
	rootCmd.AddCommand(transformCmd)
}

func parseCommand(value string) (m.Command, error) {
	switch command := m.Command(value); command {
	case m.CommandServe, m.CommandBuild:
		return command, nil
	default:
		return "", fmt.Errorf("invalid mode %q: want %q or %q", value, m.CommandServe, m.CommandBuild)
	}
}
