package pipeline

import (
	"testing"

	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/syntax/cstbuild"
	"github.com/lumenforge/lumen/internal/types"
)

func TestAnalyzeFile_RunsAllFivePassesInOrder(t *testing.T) {
	b := cstbuild.NewBuilder("local x = 1")
	name := b.Token(syntax.KindNameExpr, 6, 7, "x")
	lit := b.Token(syntax.KindLiteralInteger, 10, 11, "1")
	localStat := b.Node(syntax.KindLocalStat, 0, 11, name, lit)
	chunk := b.Node(syntax.KindChunk, 0, 11, localStat)
	tree := b.Finish(1, chunk)

	index := db.NewIndex()
	trees := map[syntax.FileId]*syntax.Tree{}
	AnalyzeFile(index, trees, tree)

	if trees[1] != tree {
		t.Fatalf("expected AnalyzeFile to register the tree in the shared trees map")
	}

	d, ok := index.Decl.FindDeclAt(tree.File, 6)
	if !ok {
		t.Fatalf("expected the Declaration pass to have registered x")
	}
	if d.Type == nil || d.Type.Tag() != types.TagIntegerConst {
		t.Fatalf("expected the Lua pass to have typed x as IntegerConst, got %v", d.Type)
	}
}

func TestRemoveFile_ShedsAllFactsForReanalysis(t *testing.T) {
	b := cstbuild.NewBuilder("local x = 1")
	name := b.Token(syntax.KindNameExpr, 6, 7, "x")
	lit := b.Token(syntax.KindLiteralInteger, 10, 11, "1")
	localStat := b.Node(syntax.KindLocalStat, 0, 11, name, lit)
	chunk := b.Node(syntax.KindChunk, 0, 11, localStat)
	tree := b.Finish(1, chunk)

	index := db.NewIndex()
	trees := map[syntax.FileId]*syntax.Tree{}
	AnalyzeFile(index, trees, tree)

	RemoveFile(index, trees, tree.File)

	if _, ok := trees[tree.File]; ok {
		t.Fatalf("expected RemoveFile to delete the file from the trees map")
	}
	if _, ok := index.Decl.FindDeclAt(tree.File, 6); ok {
		t.Fatalf("expected RemoveFile to have removed x's decl")
	}

	// Re-analyzing after removal must reproduce first-time state rather
	// than erroring or leaking stale facts.
	AnalyzeFile(index, trees, tree)
	d, ok := index.Decl.FindDeclAt(tree.File, 6)
	if !ok || d.Type.Tag() != types.TagIntegerConst {
		t.Fatalf("expected re-analysis after RemoveFile to reproduce the same state")
	}
}

func TestOwnerSignatureFunc_AttachesDocToFollowingFuncStat(t *testing.T) {
	b := cstbuild.NewBuilder("")
	comment := b.Node(syntax.KindDocComment, 0, 10)
	funcStat := b.Node(syntax.KindFuncStat, 10, 26)
	chunk := b.Node(syntax.KindChunk, 0, 26, comment, funcStat)
	_ = chunk

	fn := ownerSignatureFunc(1)
	sigId, ok := fn(comment)
	if !ok {
		t.Fatalf("expected the doc comment to resolve to the following FuncStat's signature")
	}
	if sigId.File != 1 || sigId.Pos != funcStat.Range().Start {
		t.Fatalf("expected signature keyed at the FuncStat's own position, got %+v", sigId)
	}
}
