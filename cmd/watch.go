package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vuec.dev/pkg/vuec/internal/adapter"
	"vuec.dev/pkg/vuec/internal/domain"
	m "vuec.dev/pkg/vuec/internal/model"
)

var watchDebounceFlag string

// watchCmd represents the watch command.
var watchCmd = newWatchCmd()

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-transform components as they change",
		Long: `Transform every component under dir (default: current directory) into the
output directory, then watch the tree and re-transform changed components in
development mode until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			root := m.Path(".")
			if len(args) == 1 {
				root, _ = adapter.SplitRecursive(args[0])
			}

			output := m.Path(viper.GetString(outputFlagName))
			parallel := viper.GetInt(runParallelConfigKey)

			plugin.ConfigResolved(m.BuildConfig{Production: false, Command: m.CommandServe})

			reports, err := workflow.TransformAll(ctx, domain.TransformArgs{
				Paths:    []m.Path{root + "/..."},
				Output:   output,
				UseCache: !viper.GetBool(noCacheFlagName),
				Parallel: parallel,
			})
			if reports == nil {
				return err
			}

			if err != nil {
				slog.Warn("Initial transform incomplete", "error", err)
			}

			if displayErr := ui.DisplayReports(ctx, reports); displayErr != nil {
				return displayErr
			}

			watcher, err := adapter.NewWatcher(adapter.WatchConfig{
				BaseDir:  string(root),
				Debounce: viper.GetDuration(watchDebounceKey),
				OnChange: func(ctx context.Context, changed []string) error {
					return retransform(ctx, root, output, parallel, changed)
				},
			})
			if err != nil {
				return err
			}

			slog.Info("Watching components", "dir", watcher.BaseDir(), "output", output)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "watching", watcher.BaseDir())

			return watcher.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&watchDebounceFlag, "debounce", viper.GetString(watchDebounceKey), "quiet period before changes are processed")
	bindFlagToConfig(cmd.Flags().Lookup("debounce"), watchDebounceKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// retransform compiles the components named by changed, relative to root.
// Removed files are logged and skipped.
func retransform(ctx context.Context, root, output m.Path, parallel int, changed []string) error {
	files := make([]m.File, 0, len(changed))

	for _, rel := range changed {
		full := fsAdapter.JoinPath(string(root), rel)

		if _, err := fsAdapter.FileInfo(full); errors.Is(err, fs.ErrNotExist) {
			slog.Info("Component removed", "path", full)
			continue
		}

		files = append(files, m.File{FullPath: full, ShortPath: m.Path(rel)})
	}

	if len(files) == 0 {
		return nil
	}

	reports, err := workflow.TransformFiles(ctx, files, output, parallel)

	return errors.Join(ui.DisplayReports(ctx, reports), err)
}
