// Package internal provides the lint engine behind the selfassign tool.
//
// Key components:
//
// Engine: coordinates linting. It holds the active rules, configured from a
// rule-name to severity map, the ignored rules and path patterns, and an
// optional Cache. Run lints a file, RunSource an in-memory source and RunUnit
// a file prepared from a fully type-checked package.
//
// LintRule: the contract every rule implements. Rules that can reuse the type
// information of a prepared unit also implement UnitRule.
//
// Cache: an on-disk store of the issues of a file, keyed by its content and
// the active rule configuration.
//
// SourceCode: the lines of a file, used when issues are printed.
//
// Usage:
//
//	engine, err := internal.NewEngine(".", internal.DefaultRules())
//	if err != nil {
//	    // handle error
//	}
//
//	issues, err := engine.Run("path/to/file.go")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, issue := range issues {
//	    fmt.Printf("%s: %s\n", issue.Start, issue.Message)
//	}
package internal
