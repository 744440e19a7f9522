// Command selfassign-vet runs the self-assignment analyzer as a go vet tool:
//
//	go vet -vettool=$(which selfassign-vet) ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/gnolang/selfassign/analyzer"
)

func main() {
	singlechecker.Main(analyzer.Analyzer)
}
