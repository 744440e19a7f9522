package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gnolang/selfassign/internal/fixer"
	tt "github.com/gnolang/selfassign/internal/types"
	"github.com/gnolang/selfassign/lint"
)

var dryRun bool

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Remove the useless self-assignments that stand as their own statement",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			return err
		}
		return runAutoFix(ctx, logger, engine, args, fixer.New(dryRun, cmd.OutOrStdout()))
	},
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run in dry-run mode (show fixes without applying them)")
	fixCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	fixCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of path patterns to ignore")
}

func runAutoFix(ctx context.Context, logger *zap.Logger, engine lint.LintEngine, paths []string, fix *fixer.Fixer) error {
	issues, err := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("linter timed out: %w", ctx.Err())
	}

	byFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		byFile[issue.Filename] = append(byFile[issue.Filename], issue)
	}
	files := make([]string, 0, len(byFile))
	for filename := range byFile {
		files = append(files, filename)
	}
	sort.Strings(files)

	for _, filename := range files {
		if _, fixErr := fix.Fix(filename, byFile[filename]); fixErr != nil {
			logger.Error("error fixing issues", zap.String("path", filename), zap.Error(fixErr))
			err = multierr.Append(err, fmt.Errorf("%s: %w", filename, fixErr))
		}
	}
	return err
}
