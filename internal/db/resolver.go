package db

import "github.com/lumenforge/lumen/internal/types"

// Resolver implements types.Resolver over the full Index rather than just
// TypeIndex: ClassMembers/RequiredMembers need MemberIndex's owner-keyed
// member map (a class's members are registered there, under
// TypeOwner(name), not inside TypeDecl itself — spec.md §3.3/§3.4 keep
// member storage and type-declaration storage as separate tables).
type Resolver struct {
	types   *TypeIndex
	members *MemberIndex
}

func NewResolver(t *TypeIndex, m *MemberIndex) *Resolver {
	return &Resolver{types: t, members: m}
}

func (r *Resolver) AliasOrigin(name types.TypeDeclId) (types.Type, bool) { return r.types.AliasOrigin(name) }
func (r *Resolver) AliasUnion(name types.TypeDeclId) []types.Type        { return r.types.AliasUnion(name) }
func (r *Resolver) Supertypes(name types.TypeDeclId) []types.Type        { return r.types.Supertypes(name) }
func (r *Resolver) IsSubTypeOf(a, b types.TypeDeclId) bool               { return r.types.IsSubTypeOf(a, b) }
func (r *Resolver) EnumMembers(name types.TypeDeclId) []types.Type       { return r.types.EnumMembers(name) }
func (r *Resolver) EnumKeys(name types.TypeDeclId) []string              { return r.types.EnumKeys(name) }

// ClassMembers walks the class's own members plus, transitively, its
// supertypes' members (spec.md §4.1 "walk class members, then supertypes").
func (r *Resolver) ClassMembers(name types.TypeDeclId) map[string]types.Type {
	out := make(map[string]types.Type)
	r.collectClassMembers(name, out, map[types.TypeDeclId]bool{})
	return out
}

func (r *Resolver) collectClassMembers(name types.TypeDeclId, out map[string]types.Type, seen map[types.TypeDeclId]bool) {
	if seen[name] {
		return
	}
	seen[name] = true
	for _, m := range r.members.GetMemberMap(TypeOwner(name)) {
		if m.Key.Kind != KeyName {
			continue
		}
		if _, exists := out[m.Key.Name]; !exists {
			out[m.Key.Name] = m.DeclaredType
		}
	}
	for _, sup := range r.types.Supertypes(name) {
		if rf, ok := sup.(types.Ref); ok {
			r.collectClassMembers(rf.Name, out, seen)
		} else if df, ok := sup.(types.Def); ok {
			r.collectClassMembers(df.Name, out, seen)
		}
	}
}

// RequiredMembers is the subset of ClassMembers whose declared type does
// not accept nil, matching check_type_compact's structural-subtyping use
// (a missing field is only a mismatch if the supertype doesn't allow nil).
func (r *Resolver) RequiredMembers(name types.TypeDeclId) map[string]types.Type {
	all := r.ClassMembers(name)
	out := make(map[string]types.Type, len(all))
	for field, t := range all {
		if t == nil {
			continue
		}
		if _, nullable := t.(types.Nullable); nullable {
			continue
		}
		out[field] = t
	}
	return out
}
