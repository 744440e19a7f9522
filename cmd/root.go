package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/selfassign/lint"
)

const defaultTimeout = 5 * time.Minute

// ErrIssuesFound is returned by Execute when linting reported at least one issue.
var ErrIssuesFound = errors.New("issues found")

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:               "selfassign [paths...]",
	Short:             "selfassign - reports useless self-assignments in Go and Gno code",
	TraverseChildren:  true, // Prioritize subcommands
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogger,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			// display help when only 'selfassign' is entered
			return cmd.Help()
		}
		// selfassign [path1 path2 ...] behaves like the lint subcommand
		return runLint(cmd, args)
	},
}

func setupLogger(*cobra.Command, []string) error {
	if logger != nil {
		return nil
	}
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	return err
}

func Execute() error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", lint.DefaultConfigFile, "Path to the configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Set a timeout for the linter")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(watchCmd)
}
