package decl

import (
	"testing"

	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/syntax/cstbuild"
)

// buildLocalThenUse fixtures `local x = 1; x` as a CST: a Chunk
// holding a LocalStat (name "x" + integer literal initializer) followed by
// a bare NameExpr reference to "x", the shape visitLocalStat/visitNameExpr
// dispatch on.
func buildLocalThenUse(src string) *syntax.Tree {
	b := cstbuild.NewBuilder(src)
	name := b.Token(syntax.KindNameExpr, 6, 7, "x")
	lit := b.Token(syntax.KindLiteralInteger, 10, 11, "1")
	localStat := b.Node(syntax.KindLocalStat, 0, 11, name, lit)
	use := b.Token(syntax.KindNameExpr, 13, 14, "x")
	chunk := b.Node(syntax.KindChunk, 0, 14, localStat, use)
	return b.Finish(1, chunk)
}

func TestAnalyze_LocalDeclAndReference(t *testing.T) {
	tree := buildLocalThenUse("local x = 1; x")
	index := db.NewIndex()
	Analyze(index, tree)

	d, ok := index.Decl.FindDeclAt(tree.File, 6)
	if !ok {
		t.Fatalf("expected a decl registered at the local's name offset")
	}
	if d.Kind != db.DeclLocal {
		t.Fatalf("expected DeclLocal, got %v", d.Kind)
	}
	if d.Name != "x" {
		t.Fatalf("expected name x, got %q", d.Name)
	}

	refs := index.Reference.LocalReferences(d.Id)
	if len(refs) != 1 {
		t.Fatalf("expected 1 reference to x, got %d", len(refs))
	}
}

func TestAnalyze_UndeclaredNameBecomesGlobalReference(t *testing.T) {
	b := cstbuild.NewBuilder("y")
	use := b.Token(syntax.KindNameExpr, 0, 1, "y")
	chunk := b.Node(syntax.KindChunk, 0, 1, use)
	tree := b.Finish(1, chunk)

	index := db.NewIndex()
	Analyze(index, tree)

	if _, ok := index.Decl.FindDeclAt(tree.File, 0); ok {
		t.Fatalf("a bare undeclared name must not produce a Decl")
	}
	if got := len(index.Decl.GlobalDecls("y")); got != 0 {
		t.Fatalf("a read of an undeclared global must not itself declare it, got %d global decls", got)
	}
	if got := len(index.Reference.GlobalReferences("y")); got != 1 {
		t.Fatalf("expected 1 global reference to y, got %d", got)
	}
}

func TestAnalyze_ForRangeBindsIterationVars(t *testing.T) {
	b := cstbuild.NewBuilder("for k,v in pairs(t) do end")
	k := b.Token(syntax.KindNameExpr, 4, 5, "k")
	v := b.Token(syntax.KindNameExpr, 6, 7, "v")
	forRange := b.Node(syntax.KindForRangeStat, 0, 26, k, v)
	chunk := b.Node(syntax.KindChunk, 0, 26, forRange)
	tree := b.Finish(1, chunk)

	index := db.NewIndex()
	Analyze(index, tree)

	d, ok := index.Decl.FindDeclAt(tree.File, 4)
	if !ok {
		t.Fatalf("expected iteration var k to be declared")
	}
	if d.Attribute != db.AttrIterConst {
		t.Fatalf("for-range bound names must be AttrIterConst, got %v", d.Attribute)
	}
}
