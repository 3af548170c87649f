package flow

import (
	"testing"

	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/syntax/cstbuild"
	"github.com/lumenforge/lumen/internal/types"
)

// buildIfTruthy fixtures `if x then <body> end`, body spanning [10,20).
func buildIfTruthy() *syntax.Tree {
	b := cstbuild.NewBuilder("if x then body end")
	cond := b.Token(syntax.KindNameExpr, 3, 4, "x")
	body := b.Node(syntax.KindBlock, 10, 20)
	clause := b.Node(syntax.KindIfClause, -1, -1, cond, body)
	ifStat := b.Node(syntax.KindIfStat, 0, 19, clause)
	chunk := b.Node(syntax.KindChunk, 0, 19, ifStat)
	return b.Finish(1, chunk)
}

func TestAnalyze_IfTruthyNarrowsExistence(t *testing.T) {
	tree := buildIfTruthy()
	index := db.NewIndex()
	Analyze(index, tree)

	chain := index.Flow.GetOrCreate(tree.File, db.FileScopeFlow, "x")
	asserts := chain.AssertionsAt(15)
	if len(asserts) != 1 || asserts[0].Kind != db.AssertExist {
		t.Fatalf("expected one AssertExist assertion inside the then-branch, got %+v", asserts)
	}
	if len(chain.AssertionsAt(0)) != 0 {
		t.Fatalf("the assertion must not be visible before the if statement")
	}
}

func TestAnalyze_TypeCallEqualityNarrows(t *testing.T) {
	// `if type(x) == string then body end` — literal-string token text is
	// the bare payload "string" (no quotes), matching what a real parser's
	// LiteralString node exposes via Text() once escapes are stripped.
	b := cstbuild.NewBuilder("if type(x) == string then body end")
	typeName := b.Token(syntax.KindNameExpr, 3, 7, "type")
	xArg := b.Token(syntax.KindNameExpr, 8, 9, "x")
	typeCall := b.Node(syntax.KindCallExpr, 3, 10, typeName, xArg)
	op := b.Token(syntax.KindInvalid, 11, 13, "==")
	strLit := b.Token(syntax.KindLiteralString, 14, 20, "string")
	eq := b.Node(syntax.KindBinaryExpr, 3, 20, typeCall, op, strLit)
	body := b.Node(syntax.KindBlock, 26, 30)
	clause := b.Node(syntax.KindIfClause, -1, -1, eq, body)
	ifStat := b.Node(syntax.KindIfStat, 0, 35, clause)
	chunk := b.Node(syntax.KindChunk, 0, 35, ifStat)
	tree := b.Finish(1, chunk)

	index := db.NewIndex()
	Analyze(index, tree)

	chain := index.Flow.GetOrCreate(tree.File, db.FileScopeFlow, "x")
	asserts := chain.AssertionsAt(28)
	if len(asserts) != 1 || asserts[0].Kind != db.AssertNarrow {
		t.Fatalf("expected one AssertNarrow assertion, got %+v", asserts)
	}
	if asserts[0].Type.Tag() != types.TagString {
		t.Fatalf("expected narrowed type string, got %v", asserts[0].Type)
	}
}

func TestAnalyze_AssignOpensReassignChain(t *testing.T) {
	b := cstbuild.NewBuilder("x = 1")
	lhs := b.Token(syntax.KindNameExpr, 0, 1, "x")
	rhs := b.Token(syntax.KindLiteralInteger, 4, 5, "1")
	assign := b.Node(syntax.KindAssignStat, 0, 5, lhs, rhs)
	chunk := b.Node(syntax.KindChunk, 0, 5, assign)
	tree := b.Finish(1, chunk)

	index := db.NewIndex()
	Analyze(index, tree)

	chain := index.Flow.GetOrCreate(tree.File, db.FileScopeFlow, "x")
	if len(chain.Assertions) != 1 || chain.Assertions[0].Kind != db.AssertReassign {
		t.Fatalf("expected one AssertReassign assertion after `x = 1`, got %+v", chain.Assertions)
	}
}
