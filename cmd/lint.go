package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/selfassign/formatter"
	"github.com/gnolang/selfassign/internal"
	tt "github.com/gnolang/selfassign/internal/types"
	"github.com/gnolang/selfassign/lint"
)

var (
	ignoreRules    string
	ignorePaths    string
	lintJSONOutput bool
	outPath        string
	cacheDir       string
	jobs           int
	typed          bool
	clearCache     bool
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Report useless self-assignments in the given files and directories",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLint,
}

func init() {
	lintCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	lintCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of path patterns to ignore")
	lintCmd.Flags().BoolVar(&lintJSONOutput, "json", false, "Output issues in JSON format")
	lintCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	lintCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory of the issue cache (disabled when empty)")
	lintCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Number of files linted in parallel (0 means all CPUs)")
	lintCmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Drop every cached result before linting")
	lintCmd.Flags().BoolVar(&typed, "typed", false, "Treat arguments as package patterns and lint them with full type information")
}

// newEngine builds an engine from the configuration file and the ignore flags.
func newEngine() (*internal.Engine, error) {
	engine, err := lint.New(".", cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize lint engine: %w", err)
	}

	for _, rule := range splitList(ignoreRules) {
		engine.IgnoreRule(rule)
	}
	for _, pattern := range splitList(ignorePaths) {
		if err := engine.IgnorePath(pattern); err != nil {
			return nil, err
		}
	}

	if cacheDir != "" {
		cache, err := internal.NewCache(cacheDir)
		if err != nil {
			return nil, err
		}
		if clearCache {
			if err := cache.InvalidateAll(); err != nil {
				return nil, fmt.Errorf("failed to clear cache: %w", err)
			}
		}
		engine.SetCache(cache)
	}
	return engine, nil
}

func runLint(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	engine, err := newEngine()
	if err != nil {
		return err
	}

	var issues []tt.Issue
	if typed {
		issues, err = lint.ProcessPackages(ctx, logger, engine, ".", args)
	} else {
		issues, err = lint.ProcessFiles(ctx, logger, engine, args, lint.ProcessFile,
			lint.WithJobs(jobs), lint.WithProgress(lint.TerminalProgress()))
	}
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
		if ctx.Err() != nil {
			return fmt.Errorf("linter timed out: %w", ctx.Err())
		}
	}

	if printErr := printIssues(cmd.OutOrStdout(), logger, issues, lintJSONOutput, outPath); printErr != nil {
		return printErr
	}
	if err != nil {
		return err
	}
	if len(issues) > 0 {
		return ErrIssuesFound
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printIssues(w io.Writer, logger *zap.Logger, issues []tt.Issue, isJSON bool, jsonOutput string) error {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	if isJSON {
		d, err := json.Marshal(issuesByFile)
		if err != nil {
			return fmt.Errorf("error marshalling issues to JSON: %w", err)
		}
		if jsonOutput == "" {
			_, err = fmt.Fprintln(w, string(d))
			return err
		}
		if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
			return fmt.Errorf("error writing JSON output file: %w", err)
		}
		return nil
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	for _, filename := range sortedFiles {
		sourceCode, err := internal.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			continue
		}
		fmt.Fprint(w, formatter.GenerateFormattedIssue(issuesByFile[filename], sourceCode))
	}
	return nil
}
