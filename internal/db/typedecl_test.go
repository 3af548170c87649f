package db

import (
	"testing"

	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

func TestAddTypeDecl_PartialClassMergesAcrossFiles(t *testing.T) {
	idx := NewTypeIndex()
	idx.AddTypeDecl(&TypeDecl{SimpleName: "Point", FullName: "Point", Kind: TypeClass}, 1, syntax.Range{Start: 0, End: 5})
	idx.AddTypeDecl(&TypeDecl{SimpleName: "Point", FullName: "Point", Kind: TypeClass, Attributes: AttrExact}, 2, syntax.Range{Start: 10, End: 15})

	td, ok := idx.Get("Point")
	if !ok {
		t.Fatalf("expected Point to be registered")
	}
	if len(td.Files) != 2 || len(td.Locations) != 2 {
		t.Fatalf("expected locations from both files merged, got %+v / %+v", td.Files, td.Locations)
	}
	if !td.Attributes.Has(AttrExact) {
		t.Fatalf("expected the Exact attribute unioned in from the second declaration")
	}
}

func TestFindTypeDecl_LocalAliasOnlyVisibleInDeclaringFile(t *testing.T) {
	idx := NewTypeIndex()
	idx.AddTypeDecl(&TypeDecl{SimpleName: "Handle", FullName: "Handle", Kind: TypeAlias, Attributes: AttrLocal}, 1, syntax.Range{Start: 0, End: 5})

	if _, ok := idx.FindTypeDecl(1, "Handle"); !ok {
		t.Fatalf("expected Handle visible in its declaring file")
	}
	if _, ok := idx.FindTypeDecl(2, "Handle"); ok {
		t.Fatalf("expected Handle invisible outside its declaring file")
	}
}

func TestFindTypeDecl_ResolvesThroughNamespaceThenUsing(t *testing.T) {
	idx := NewTypeIndex()
	idx.AddTypeDecl(&TypeDecl{SimpleName: "Vec", FullName: "geo.Vec", Kind: TypeClass}, 1, syntax.Range{Start: 0, End: 5})
	idx.AddTypeDecl(&TypeDecl{SimpleName: "Vec", FullName: "math.Vec", Kind: TypeClass}, 2, syntax.Range{Start: 0, End: 5})

	idx.SetNamespace(1, "geo")
	if td, ok := idx.FindTypeDecl(1, "Vec"); !ok || td.FullName != "geo.Vec" {
		t.Fatalf("expected the file's own namespace to resolve Vec to geo.Vec, got %+v ok=%v", td, ok)
	}

	idx.AddUsing(3, "math")
	if td, ok := idx.FindTypeDecl(3, "Vec"); !ok || td.FullName != "math.Vec" {
		t.Fatalf("expected a using-import to resolve Vec to math.Vec, got %+v ok=%v", td, ok)
	}
}

func TestIsSubTypeOf_TransitiveThroughSupertypeChain(t *testing.T) {
	idx := NewTypeIndex()
	idx.AddTypeDecl(&TypeDecl{SimpleName: "Animal", FullName: "Animal", Kind: TypeClass}, 1, syntax.Range{Start: 0, End: 1})
	idx.AddTypeDecl(&TypeDecl{SimpleName: "Dog", FullName: "Dog", Kind: TypeClass, Supertypes: []types.Type{types.Ref{Name: "Animal"}}}, 1, syntax.Range{Start: 2, End: 3})
	idx.AddTypeDecl(&TypeDecl{SimpleName: "Puppy", FullName: "Puppy", Kind: TypeClass, Supertypes: []types.Type{types.Ref{Name: "Dog"}}}, 1, syntax.Range{Start: 4, End: 5})

	if !idx.IsSubTypeOf("Puppy", "Animal") {
		t.Fatalf("expected Puppy to be a transitive subtype of Animal")
	}
	if idx.IsSubTypeOf("Animal", "Puppy") {
		t.Fatalf("did not expect Animal to be a subtype of Puppy")
	}
}

func TestIsSubTypeOf_CyclicSupertypesDoNotInfiniteLoop(t *testing.T) {
	idx := NewTypeIndex()
	idx.AddTypeDecl(&TypeDecl{SimpleName: "A", FullName: "A", Kind: TypeClass, Supertypes: []types.Type{types.Ref{Name: "B"}}}, 1, syntax.Range{Start: 0, End: 1})
	idx.AddTypeDecl(&TypeDecl{SimpleName: "B", FullName: "B", Kind: TypeClass, Supertypes: []types.Type{types.Ref{Name: "A"}}}, 1, syntax.Range{Start: 2, End: 3})

	if idx.IsSubTypeOf("A", "C") {
		t.Fatalf("expected no infinite loop / false result chasing a cycle to an unrelated type")
	}
}

func TestSplitDotted(t *testing.T) {
	ns, simple := SplitDotted("geo.shapes.Circle")
	if ns != "geo.shapes" || simple != "Circle" {
		t.Fatalf("expected (geo.shapes, Circle), got (%q, %q)", ns, simple)
	}
	ns, simple = SplitDotted("Point")
	if ns != "" || simple != "Point" {
		t.Fatalf("expected (\"\", Point) for an undotted name, got (%q, %q)", ns, simple)
	}
}

func TestTypeIndex_RemovePartialDeclKeepsSurvivingFileLocations(t *testing.T) {
	idx := NewTypeIndex()
	idx.AddTypeDecl(&TypeDecl{SimpleName: "Point", FullName: "Point", Kind: TypeClass}, 1, syntax.Range{Start: 0, End: 5})
	idx.AddTypeDecl(&TypeDecl{SimpleName: "Point", FullName: "Point", Kind: TypeClass}, 2, syntax.Range{Start: 10, End: 15})

	idx.Remove(1)

	td, ok := idx.Get("Point")
	if !ok {
		t.Fatalf("expected Point to survive removal of only one of its two files")
	}
	if len(td.Files) != 1 || td.Files[0] != 2 {
		t.Fatalf("expected only file 2's location to remain, got %+v", td.Files)
	}
}
