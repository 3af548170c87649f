package db

import (
	"testing"

	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

func TestGetGlobalDeclType_PrefersFunctionOverTable(t *testing.T) {
	idx := NewDeclIndex()
	idx.AddGlobalDecl("g", &Decl{Name: "g", File: 1, Range: syntax.Range{Start: 0}, Type: types.Table})
	idx.AddGlobalDecl("g", &Decl{Name: "g", File: 1, Range: syntax.Range{Start: 10}, Type: types.Signature{Id: types.SignatureId{File: 1, Pos: 10}}})

	got, ok := idx.GetGlobalDeclType("g")
	if !ok || got.Tag() != types.TagSignature {
		t.Fatalf("expected the Signature-typed decl to win over the Table one, got %v", got)
	}
}

func TestGetGlobalDeclType_FallsBackToFirstTypedWhenNoPreferredKind(t *testing.T) {
	idx := NewDeclIndex()
	idx.AddGlobalDecl("g", &Decl{Name: "g", File: 1, Range: syntax.Range{Start: 0}, Type: types.String})
	idx.AddGlobalDecl("g", &Decl{Name: "g", File: 1, Range: syntax.Range{Start: 10}, Type: types.Integer})

	got, ok := idx.GetGlobalDeclType("g")
	if !ok || got.Tag() != types.TagString {
		t.Fatalf("expected the first typed decl as fallback, got %v", got)
	}
}

func TestFindDecl_InnerScopeShadowsOuterAndRespectsVisibility(t *testing.T) {
	outer := &Scope{Id: 0, Kind: ScopeNormal, Range: syntax.Range{Start: 0, End: 100}}
	outerDecl := &Decl{Name: "x", Range: syntax.Range{Start: 0, End: 1}}
	outer.Decls = append(outer.Decls, outerDecl)

	inner := &Scope{Id: 1, Kind: ScopeLocalStat, Range: syntax.Range{Start: 10, End: 50}, StatEnd: 20, Parent: outer}
	innerDecl := &Decl{Name: "x", Range: syntax.Range{Start: 10, End: 11}}
	inner.Decls = append(inner.Decls, innerDecl)

	// Before StatEnd, the inner local isn't visible yet — falls through to outer.
	if got := FindDecl(inner, "x", 15); got != outerDecl {
		t.Fatalf("expected the outer decl before the local stat's StatEnd, got %v", got)
	}
	// After StatEnd, the inner local shadows the outer one.
	if got := FindDecl(inner, "x", 25); got != innerDecl {
		t.Fatalf("expected the inner decl to shadow the outer one after StatEnd, got %v", got)
	}
}

func TestFindDecl_LocalFuncVisibleWithinOwnBody(t *testing.T) {
	scope := &Scope{Id: 0, Kind: ScopeLocalStat, Range: syntax.Range{Start: 0, End: 100}, StatEnd: 50}
	d := &Decl{Name: "f", Range: syntax.Range{Start: 10, End: 11}, SyntaxKind: syntax.KindLocalFuncStat}
	scope.Decls = append(scope.Decls, d)

	// pos 20 is before StatEnd but after the decl's own start — only visible
	// because SyntaxKindIsLocalFunc grants recursive self-visibility.
	if got := FindDecl(scope, "f", 20); got != d {
		t.Fatalf("expected a LocalFuncStat decl visible within its own body, got %v", got)
	}
	if got := FindDecl(scope, "f", 5); got != nil {
		t.Fatalf("expected no visibility before the decl's own start, got %v", got)
	}
}

func TestScopeAt_FindsInnermostContainingScope(t *testing.T) {
	root := &Scope{Id: 0, Kind: ScopeNormal, Range: syntax.Range{Start: 0, End: 100}}
	child := &Scope{Id: 1, Kind: ScopeNormal, Range: syntax.Range{Start: 10, End: 50}, Parent: root}
	grandchild := &Scope{Id: 2, Kind: ScopeNormal, Range: syntax.Range{Start: 20, End: 30}, Parent: child}
	root.Children = append(root.Children, child)
	child.Children = append(child.Children, grandchild)

	if got := ScopeAt(root, 25); got != grandchild {
		t.Fatalf("expected the grandchild scope at pos 25, got %v", got)
	}
	if got := ScopeAt(root, 40); got != child {
		t.Fatalf("expected the child scope at pos 40, got %v", got)
	}
	if got := ScopeAt(root, 90); got != root {
		t.Fatalf("expected the root scope at pos 90, got %v", got)
	}
}

func TestDeclIndex_RemoveShedsTreesGlobalsAndByPos(t *testing.T) {
	idx := NewDeclIndex()
	builder := NewDeclTreeBuilder(1, syntax.Range{Start: 0, End: 10})
	d := &Decl{Id: types.DeclId{File: 1, Offset: 0}, Name: "x"}
	builder.AddDecl(builder.Root, d)
	idx.AddDeclTree(builder.Build())
	idx.AddGlobalDecl("g", &Decl{Name: "g", File: 1, Range: syntax.Range{Start: 5}})

	idx.Remove(1)

	if idx.GetDeclTree(1) != nil {
		t.Fatalf("expected the decl tree for file 1 to be gone")
	}
	if len(idx.GlobalDecls("g")) != 0 {
		t.Fatalf("expected file 1's globals to be gone")
	}
	if _, ok := idx.FindDeclAt(1, 5); ok {
		t.Fatalf("expected globalByPos for file 1 to be gone")
	}
}
