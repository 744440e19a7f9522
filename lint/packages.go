package lint

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/gnolang/selfassign/internal/semantic"
	tt "github.com/gnolang/selfassign/internal/types"
)

// UnitEngine lints units prepared from type-checked packages.
type UnitEngine interface {
	LintEngine
	RunUnit(unit *semantic.Unit) ([]tt.Issue, error)
}

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

// LoadUnits loads the packages matching patterns from dir with full type
// information and returns one prepared unit per file. Load errors of a
// package are returned combined; units of the packages that loaded are still
// returned, prepared with whatever type information could be recovered.
func LoadUnits(ctx context.Context, dir string, patterns ...string) ([]*semantic.Unit, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    loadMode,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("error loading packages: %w", err)
	}

	var (
		units []*semantic.Unit
		errs  error
	)
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s", pkg.PkgPath, e.Error()))
		}
		if pkg.TypesInfo == nil {
			continue
		}
		for _, file := range pkg.Syntax {
			filename := pkg.Fset.File(file.Pos()).Name()
			unit := semantic.NewUnit(filename, file, pkg.Fset)
			semantic.Prepare(unit, pkg.TypesInfo)
			units = append(units, unit)
		}
	}
	return units, errs
}

// ProcessPackages lints the packages matching patterns using their full type
// information. Package load errors are logged and do not stop the files that
// could be loaded from being linted.
func ProcessPackages(
	ctx context.Context,
	logger *zap.Logger,
	engine UnitEngine,
	dir string,
	patterns []string,
) ([]tt.Issue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	units, loadErr := LoadUnits(ctx, dir, patterns...)
	if loadErr != nil {
		logger.Warn("packages loaded with errors", zap.Error(loadErr))
	}
	if len(units) == 0 && loadErr != nil {
		return nil, loadErr
	}

	var (
		issues []tt.Issue
		errs   error
	)
	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return issues, err
		}
		unitIssues, err := engine.RunUnit(unit)
		if err != nil {
			logger.Error("Error processing file", zap.String("file", unit.Filename), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", unit.Filename, err))
			continue
		}
		issues = append(issues, unitIssues...)
	}
	sortIssues(issues)
	return issues, errs
}
