package db

import (
	"testing"

	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

func addFileWithGlobal(idx *Index, file syntax.FileId, name string) {
	b := NewDeclTreeBuilder(file, syntax.Range{Start: 0, End: 100})
	d := &Decl{Id: types.DeclId{File: file, Offset: 0}, Name: name, Kind: DeclGlobal, File: file, Type: types.String}
	b.AddDecl(b.Root, d)
	idx.Decl.AddDeclTree(b.Build())
	idx.Decl.AddGlobalDecl(name, d)
}

func TestIndex_NewIndexWiresResolverOverTypeAndMember(t *testing.T) {
	idx := NewIndex()
	if idx.Resolver() == nil {
		t.Fatalf("expected NewIndex to wire a non-nil Resolver")
	}

	idx.Type.AddTypeDecl(&TypeDecl{SimpleName: "Widget", FullName: "Widget", Kind: TypeClass}, 1, syntax.Range{Start: 0, End: 1})
	idx.Member.AddMemberToOwner(&Member{Id: memberId(0), Owner: TypeOwner("Widget"), Key: NameKey("size"), DeclaredType: types.Integer})

	members := idx.Resolver().ClassMembers("Widget")
	if members["size"].Tag() != types.TagInteger {
		t.Fatalf("expected the resolver view to see members added through idx.Member, got %+v", members)
	}
}

func TestIndex_AllFilesReflectsRegisteredDeclTrees(t *testing.T) {
	idx := NewIndex()
	addFileWithGlobal(idx, 1, "a")
	addFileWithGlobal(idx, 2, "b")

	files := idx.AllFiles()
	if len(files) != 2 {
		t.Fatalf("expected 2 registered files, got %v", files)
	}
}

func TestIndex_RemoveFileShedsEveryFacetAndIsReproducible(t *testing.T) {
	idx := NewIndex()
	addFileWithGlobal(idx, 1, "x")
	idx.Type.AddTypeDecl(&TypeDecl{SimpleName: "T", FullName: "T", Kind: TypeClass}, 1, syntax.Range{Start: 0, End: 1})
	idx.Member.AddMemberToOwner(&Member{Id: memberId(0), Owner: TypeOwner("T"), Key: NameKey("f"), File: 1, DeclaredType: types.String})
	idx.Reference.AddGlobalReference("x", 1, syntax.Range{Start: 5, End: 6})
	idx.Module.Register(1, "mod", true)
	idx.Meta.Mark(1)

	idx.RemoveFile(1)

	if len(idx.AllFiles()) != 0 {
		t.Fatalf("expected no files left after RemoveFile")
	}
	if _, ok := idx.Type.Get("T"); ok {
		t.Fatalf("expected the type decl to be gone after RemoveFile")
	}
	if members := idx.Member.GetMemberMap(TypeOwner("T")); len(members) != 0 {
		t.Fatalf("expected no members left for the removed owner, got %+v", members)
	}
	if refs := idx.Reference.GlobalReferences("x"); len(refs) != 0 {
		t.Fatalf("expected no global references left, got %+v", refs)
	}
	if _, ok := idx.Module.Resolve("mod"); ok {
		t.Fatalf("expected module registration gone after RemoveFile")
	}
	if idx.Meta.IsMeta(1) {
		t.Fatalf("expected meta marking gone after RemoveFile")
	}

	// Re-adding the file afterward must reproduce first-time-analysis state.
	addFileWithGlobal(idx, 1, "x")
	if len(idx.AllFiles()) != 1 {
		t.Fatalf("expected re-analysis to restore exactly one file")
	}
}
