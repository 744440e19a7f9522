package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/selfassign/formatter"
	"github.com/gnolang/selfassign/internal"
	tt "github.com/gnolang/selfassign/internal/types"
	"github.com/gnolang/selfassign/lint"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-lint Go and Gno files whenever they change",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}

		engine, err := newEngine()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		w, err := lint.NewWatcher(engine, logger, func(path string, issues []tt.Issue) {
			if len(issues) == 0 {
				fmt.Fprintf(out, "%s: no issues\n", path)
				return
			}
			sourceCode, err := internal.ReadSourceCode(path)
			if err != nil {
				logger.Error("Error reading source file", zap.String("file", path), zap.Error(err))
				return
			}
			fmt.Fprint(out, formatter.GenerateFormattedIssue(issues, sourceCode))
		})
		if err != nil {
			return err
		}
		for _, dir := range args {
			if err := w.Add(dir); err != nil {
				if closeErr := w.Close(); closeErr != nil {
					logger.Error("error closing watcher", zap.Error(closeErr))
				}
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("watching for changes", zap.Strings("dirs", args))
		return w.Run(ctx)
	},
}
