package db

import (
	"testing"

	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

func TestResolver_ClassMembersWalksSupertypesWithoutOverridingSubclass(t *testing.T) {
	typeIdx := NewTypeIndex()
	memberIdx := NewMemberIndex()
	r := NewResolver(typeIdx, memberIdx)

	typeIdx.AddTypeDecl(&TypeDecl{SimpleName: "Animal", FullName: "Animal", Kind: TypeClass}, 1, syntax.Range{Start: 0, End: 1})
	typeIdx.AddTypeDecl(&TypeDecl{
		SimpleName: "Dog", FullName: "Dog", Kind: TypeClass,
		Supertypes: []types.Type{types.Ref{Name: "Animal"}},
	}, 1, syntax.Range{Start: 2, End: 3})

	memberIdx.AddMemberToOwner(&Member{Id: memberId(0), Owner: TypeOwner("Animal"), Key: NameKey("name"), DeclaredType: types.String})
	memberIdx.AddMemberToOwner(&Member{Id: memberId(10), Owner: TypeOwner("Dog"), Key: NameKey("breed"), DeclaredType: types.String})
	// Dog overrides "name" with a more specific constant type — the subclass's
	// own member must win over the inherited one.
	memberIdx.AddMemberToOwner(&Member{Id: memberId(20), Owner: TypeOwner("Dog"), Key: NameKey("name"), DeclaredType: types.StringConst{Value: "Rex"}})

	members := r.ClassMembers("Dog")
	if len(members) != 2 {
		t.Fatalf("expected 2 members (own breed + inherited name), got %+v", members)
	}
	if members["breed"].Tag() != types.TagString {
		t.Fatalf("expected Dog's own breed member, got %v", members["breed"])
	}
	if members["name"].Tag() != types.TagStringConst {
		t.Fatalf("expected Dog's own override of name to win over Animal's, got %v", members["name"])
	}
}

func TestResolver_RequiredMembersExcludesNullableFields(t *testing.T) {
	typeIdx := NewTypeIndex()
	memberIdx := NewMemberIndex()
	r := NewResolver(typeIdx, memberIdx)

	typeIdx.AddTypeDecl(&TypeDecl{SimpleName: "Point", FullName: "Point", Kind: TypeClass}, 1, syntax.Range{Start: 0, End: 1})
	memberIdx.AddMemberToOwner(&Member{Id: memberId(0), Owner: TypeOwner("Point"), Key: NameKey("x"), DeclaredType: types.Integer})
	memberIdx.AddMemberToOwner(&Member{Id: memberId(10), Owner: TypeOwner("Point"), Key: NameKey("label"), DeclaredType: types.Nullable{Elem: types.String}})

	required := r.RequiredMembers("Point")
	if len(required) != 1 {
		t.Fatalf("expected only the non-nullable field required, got %+v", required)
	}
	if _, ok := required["x"]; !ok {
		t.Fatalf("expected x to be required, got %+v", required)
	}
	if _, ok := required["label"]; ok {
		t.Fatalf("expected the nullable label field excluded from required members")
	}
}

func TestResolver_ClassMembersCycleSafe(t *testing.T) {
	typeIdx := NewTypeIndex()
	memberIdx := NewMemberIndex()
	r := NewResolver(typeIdx, memberIdx)

	typeIdx.AddTypeDecl(&TypeDecl{SimpleName: "A", FullName: "A", Kind: TypeClass, Supertypes: []types.Type{types.Ref{Name: "B"}}}, 1, syntax.Range{Start: 0, End: 1})
	typeIdx.AddTypeDecl(&TypeDecl{SimpleName: "B", FullName: "B", Kind: TypeClass, Supertypes: []types.Type{types.Ref{Name: "A"}}}, 1, syntax.Range{Start: 2, End: 3})

	// Must terminate rather than looping forever on the A<->B cycle.
	members := r.ClassMembers("A")
	if members == nil {
		t.Fatalf("expected a non-nil (possibly empty) member map")
	}
}
