package semantic

import (
	"go/ast"
	"go/token"
	"go/types"
	"path"
	"regexp"
	"strings"
)

var versionSuffix = regexp.MustCompile(`^v[0-9]+$`)

// emptyImporter resolves every import to an empty, complete package. Lookups
// of imported names fail, which the lenient checker ignores; everything that is
// declared in the file itself still resolves.
type emptyImporter struct {
	pkgs map[string]*types.Package
}

func (imp *emptyImporter) Import(importPath string) (*types.Package, error) {
	if pkg, ok := imp.pkgs[importPath]; ok {
		return pkg, nil
	}
	pkg := types.NewPackage(importPath, guessPackageName(importPath))
	pkg.MarkComplete()
	imp.pkgs[importPath] = pkg
	return pkg, nil
}

// guessPackageName derives a package name from its import path:
// "gopkg.in/yaml.v3" -> "yaml", "github.com/x/y/v2" -> "y".
func guessPackageName(importPath string) string {
	base := path.Base(importPath)
	if versionSuffix.MatchString(base) {
		if dir := path.Dir(importPath); dir != "." {
			base = path.Base(dir)
		}
	}
	if i := strings.LastIndex(base, ".v"); i > 0 && versionSuffix.MatchString(base[i+1:]) {
		base = base[:i]
	}
	base = strings.TrimPrefix(base, "go-")
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '.' {
			return '_'
		}
		return r
	}, base)
}

// TypeCheck type-checks a single file without access to its imports.
// Type errors are ignored, so the returned info is best-effort: identifiers
// that could not be resolved simply have no object.
func TypeCheck(fset *token.FileSet, file *ast.File) *types.Info {
	info := &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
	}
	conf := types.Config{
		Importer: &emptyImporter{pkgs: make(map[string]*types.Package)},
		Error:    func(error) {},
	}

	pkgName := "main"
	if file.Name != nil {
		pkgName = file.Name.Name
	}
	_, _ = conf.Check(pkgName, fset, []*ast.File{file}, info)
	return info
}
