// Command lumencheck is a minimal CLI front end over the analysis core: it
// feeds a set of files through the workspace manager and prints the
// Diagnostic Engine's findings. Grounded on the teacher's cmd/funxy/main.go
// (a file-walking driver that resolves a backend and prints results),
// scaled down to the much smaller "parse, analyze, print diagnostics" loop
// a static checker needs, since executing Lua is out of scope here.
//
// The concrete Lua/LuaDoc lexer and parser are an external collaborator
// per spec.md §6.1/§1 — this binary does not implement one. A real
// deployment registers ParseFile with a parser before calling run(); as
// shipped, lumencheck reports that plainly instead of fabricating parse
// results.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/lumenforge/lumen/internal/config"
	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/diag"
	"github.com/lumenforge/lumen/internal/diagnostic"
	"github.com/lumenforge/lumen/internal/obs"
	"github.com/lumenforge/lumen/internal/semantic"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/workspace"
)

// ParseFile is the external parser hook (spec.md §6.1): nil until a real
// frontend registers one. Exported as a package var, the same role
// cmd/funxy/main.go's BackendType build-time var plays for picking an
// execution backend.
var ParseFile func(path string) (*syntax.Tree, error)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: lumencheck <file.lua> [file.lua ...]")
		return 2
	}
	if ParseFile == nil {
		fmt.Fprintln(stderr, "lumencheck: no Lua/LuaDoc parser registered (spec.md §6.1 scopes the "+
			"concrete lexer/parser out of this repo); link a frontend that sets lumencheck.ParseFile")
		return 1
	}

	ws := workspace.New(config.Default(), obs.Discard())
	engine := diagnostic.Default()
	colorize := isatty.IsTerminal(stdout.Fd()) || isatty.IsCygwinTerminal(stdout.Fd())

	exit := 0
	ctx := context.Background()
	for _, path := range args {
		tree, err := ParseFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			exit = 1
			continue
		}
		if err := ws.UpdateIndex(ctx, []*syntax.Tree{tree}); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			exit = 1
			continue
		}

		diags := diagnoseFile(ws, engine, tree)
		if len(diags) > 0 {
			exit = 1
		}
		printDiagnostics(stdout, path, diags, colorize)
	}
	return exit
}

// diagnoseFile runs the Diagnostic Engine over one file's Semantic Model,
// reading the workspace's current Index/Engine snapshot under a read lock
// (spec.md §5: "queries run only against a DB that has quiesced").
func diagnoseFile(ws *workspace.Manager, engine *diagnostic.Engine, tree *syntax.Tree) []diag.Diagnostic {
	var diags []diag.Diagnostic
	ws.RQuery(func(index *db.Index) {
		_ = index // the model below pulls its own consistent snapshot
		model := semantic.New(ws.NewEngine(), tree)
		diags = engine.DiagnoseFile(model)
	})
	return diags
}
