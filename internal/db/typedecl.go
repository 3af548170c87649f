package db

import (
	"strings"

	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// TypeDeclKind is Class/Enum/Alias (spec.md §3.4).
type TypeDeclKind int

const (
	TypeClass TypeDeclKind = iota
	TypeEnum
	TypeAlias
)

// TypeAttr is the {Key, Local, Partial, Exact, Env} flag set.
type TypeAttr int

const (
	AttrKey TypeAttr = 1 << iota
	AttrLocal
	AttrPartial
	AttrExact
	AttrEnv
)

func (a TypeAttr) Has(f TypeAttr) bool { return a&f != 0 }

// GenericParam is a generic parameter slot of a Class/Alias, with an
// optional bound (SPEC_FULL.md §C.2 supplementing the base spec's bare
// generic-parameter list).
type GenericParam struct {
	Name  string
	Bound types.Type // nil if unbounded
}

// TypeDecl is (simple-name, full-dotted-name, kind, attributes, locations[])
// plus kind-specific extra state (spec.md §3.4).
type TypeDecl struct {
	SimpleName string
	FullName   types.TypeDeclId
	Kind       TypeDeclKind
	Attributes TypeAttr
	Locations  []syntax.Range
	Files      []syntax.FileId
	Generics   []GenericParam

	// Class
	Supertypes []types.Type

	// Enum
	EnumBase    types.Type
	EnumMembers []types.Type
	EnumKeys    []string

	// Alias
	AliasOrigin  types.Type // nil when this is a union-alias instead
	AliasUnion   []types.Type
	AliasDescs   []string // parallel to AliasUnion, for MultiLineUnion rendering
}

// TypeIndex implements find_type_decl/add_type_decl plus types.Resolver
// (spec.md §4.2, §4.1 subtyping hooks).
type TypeIndex struct {
	decls map[types.TypeDeclId]*TypeDecl
	// perFileLocal holds Local-attributed type decls, visible only within
	// their declaring file (spec.md §3.4 invariant).
	perFileLocal map[syntax.FileId]map[string]types.TypeDeclId
	// namespaces/usings per file for name resolution (spec.md §4.4).
	namespaces map[syntax.FileId]string
	usings     map[syntax.FileId][]string
}

func NewTypeIndex() *TypeIndex {
	return &TypeIndex{
		decls:        make(map[types.TypeDeclId]*TypeDecl),
		perFileLocal: make(map[syntax.FileId]map[string]types.TypeDeclId),
		namespaces:   make(map[syntax.FileId]string),
		usings:       make(map[syntax.FileId][]string),
	}
}

// AddTypeDecl registers a type declaration location. Partial classes may be
// declared in multiple files; all locations are kept and Exact is unioned
// across them (DESIGN.md Open Question #1).
func (idx *TypeIndex) AddTypeDecl(td *TypeDecl, file syntax.FileId, r syntax.Range) {
	existing, ok := idx.decls[td.FullName]
	if !ok {
		cp := *td
		cp.Locations = []syntax.Range{r}
		cp.Files = []syntax.FileId{file}
		idx.decls[td.FullName] = &cp
		if td.Attributes.Has(AttrLocal) {
			idx.addLocal(file, td.SimpleName, td.FullName)
		}
		return
	}
	existing.Locations = append(existing.Locations, r)
	existing.Files = append(existing.Files, file)
	existing.Attributes |= (td.Attributes & AttrExact)
	existing.Supertypes = append(existing.Supertypes, td.Supertypes...)
	if td.Kind == TypeEnum {
		existing.EnumMembers = append(existing.EnumMembers, td.EnumMembers...)
		existing.EnumKeys = append(existing.EnumKeys, td.EnumKeys...)
	}
	if td.Attributes.Has(AttrLocal) {
		idx.addLocal(file, td.SimpleName, td.FullName)
	}
}

func (idx *TypeIndex) addLocal(file syntax.FileId, simple string, full types.TypeDeclId) {
	mp, ok := idx.perFileLocal[file]
	if !ok {
		mp = make(map[string]types.TypeDeclId)
		idx.perFileLocal[file] = mp
	}
	mp[simple] = full
}

func (idx *TypeIndex) SetNamespace(file syntax.FileId, ns string) { idx.namespaces[file] = ns }
func (idx *TypeIndex) AddUsing(file syntax.FileId, ns string) {
	idx.usings[file] = append(idx.usings[file], ns)
}

// FindTypeDecl resolves name at file, honoring namespace/using and local
// visibility (spec.md §4.2). Generic parameters visible at a call site are
// checked by the doc analyzer before falling back to this lookup.
func (idx *TypeIndex) FindTypeDecl(file syntax.FileId, name string) (*TypeDecl, bool) {
	if mp, ok := idx.perFileLocal[file]; ok {
		if full, ok := mp[name]; ok {
			if td, ok := idx.decls[full]; ok {
				return td, true
			}
		}
	}
	if td, ok := idx.decls[types.TypeDeclId(name)]; ok {
		if !td.Attributes.Has(AttrLocal) || containsFile(td.Files, file) {
			return td, true
		}
	}
	if ns, ok := idx.namespaces[file]; ok && ns != "" {
		if td, ok := idx.decls[types.TypeDeclId(ns+"."+name)]; ok {
			return td, true
		}
	}
	for _, u := range idx.usings[file] {
		if td, ok := idx.decls[types.TypeDeclId(u+"."+name)]; ok {
			return td, true
		}
	}
	return nil, false
}

func containsFile(files []syntax.FileId, f syntax.FileId) bool {
	for _, x := range files {
		if x == f {
			return true
		}
	}
	return false
}

func (idx *TypeIndex) Get(name types.TypeDeclId) (*TypeDecl, bool) {
	td, ok := idx.decls[name]
	return td, ok
}

// Remove sheds every location tagged with file; a Partial class loses only
// that file's locations, and is dropped entirely once none remain.
func (idx *TypeIndex) Remove(file syntax.FileId) {
	delete(idx.perFileLocal, file)
	delete(idx.namespaces, file)
	delete(idx.usings, file)
	for name, td := range idx.decls {
		kept := td.Files[:0:0]
		keptLocs := td.Locations[:0:0]
		for i, f := range td.Files {
			if f != file {
				kept = append(kept, f)
				keptLocs = append(keptLocs, td.Locations[i])
			}
		}
		if len(kept) == 0 {
			delete(idx.decls, name)
		} else {
			td.Files = kept
			td.Locations = keptLocs
		}
	}
}

// ---- types.Resolver implementation --------------------------------------

func (idx *TypeIndex) AliasOrigin(name types.TypeDeclId) (types.Type, bool) {
	td, ok := idx.decls[name]
	if !ok || td.Kind != TypeAlias || td.AliasOrigin == nil {
		return nil, false
	}
	return td.AliasOrigin, true
}

func (idx *TypeIndex) AliasUnion(name types.TypeDeclId) []types.Type {
	td, ok := idx.decls[name]
	if !ok || td.Kind != TypeAlias {
		return nil
	}
	return td.AliasUnion
}

// ClassMembers and RequiredMembers are intentionally empty here: member
// types live in MemberIndex, which TypeIndex has no reference to. TypeIndex
// still satisfies types.Resolver on its own (useful for subtyping tests that
// only exercise alias/enum/supertype relationships), but real callers should
// use the combined Resolver in resolver.go, which overrides both methods
// with MemberIndex-backed lookups.
func (idx *TypeIndex) ClassMembers(name types.TypeDeclId) map[string]types.Type {
	return map[string]types.Type{}
}

func (idx *TypeIndex) RequiredMembers(name types.TypeDeclId) map[string]types.Type {
	return map[string]types.Type{}
}

func (idx *TypeIndex) Supertypes(name types.TypeDeclId) []types.Type {
	td, ok := idx.decls[name]
	if !ok {
		return nil
	}
	return td.Supertypes
}

func (idx *TypeIndex) IsSubTypeOf(a, b types.TypeDeclId) bool {
	if a == b {
		return true
	}
	seen := map[types.TypeDeclId]bool{}
	var walk func(cur types.TypeDeclId) bool
	walk = func(cur types.TypeDeclId) bool {
		if seen[cur] {
			return false
		}
		seen[cur] = true
		td, ok := idx.decls[cur]
		if !ok {
			return false
		}
		for _, sup := range td.Supertypes {
			rf, ok := sup.(types.Ref)
			if !ok {
				continue
			}
			if rf.Name == b {
				return true
			}
			if walk(rf.Name) {
				return true
			}
		}
		return false
	}
	return walk(a)
}

func (idx *TypeIndex) EnumMembers(name types.TypeDeclId) []types.Type {
	td, ok := idx.decls[name]
	if !ok || td.Kind != TypeEnum {
		return nil
	}
	return td.EnumMembers
}

func (idx *TypeIndex) EnumKeys(name types.TypeDeclId) []string {
	td, ok := idx.decls[name]
	if !ok || td.Kind != TypeEnum {
		return nil
	}
	return td.EnumKeys
}

// SplitDotted splits "foo.bar.Baz" into its namespace prefix and simple
// name, used when registering @class/@enum/@alias tags under a @namespace.
func SplitDotted(full types.TypeDeclId) (ns, simple string) {
	s := string(full)
	idxDot := strings.LastIndex(s, ".")
	if idxDot < 0 {
		return "", s
	}
	return s[:idxDot], s[idxDot+1:]
}
