// Package db implements the cross-file index spec.md §3/§4.2 describes: a
// bag of sub-indices, each scoped to (file_id, entity) and each able to
// shed exactly its own file's state on Remove. Grounded on
// internal/symbols/symbol_table_core.go (the Symbol struct shape, reused
// here as Decl) and internal/modules/module.go (per-file exports/imports
// maps, reused as the shape for ModuleIndex).
package db

import (
	"sort"

	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// Attribute is a local-declaration attribute (spec.md §3.2).
type Attribute int

const (
	AttrNone Attribute = iota
	AttrConst
	AttrClose
	AttrIterConst
)

// DeclKind distinguishes Local from Global declarations.
type DeclKind int

const (
	DeclLocal DeclKind = iota
	DeclGlobal
)

// Decl is either Local or Global (spec.md §3.2).
type Decl struct {
	Id        types.DeclId
	Kind      DeclKind
	Name      string
	File      syntax.FileId
	Range     syntax.Range
	SyntaxKind syntax.Kind
	Attribute Attribute
	Type      types.Type // nil until inferred/declared

	// Param-only fields; ParamIndex is -1 for non-params.
	ParamIndex int
	Signature  types.SignatureId
}

func (d *Decl) IsParam() bool { return d.ParamIndex >= 0 }

// ScopeKind distinguishes the handful of scope-opening constructs spec.md
// §3.2 names.
type ScopeKind int

const (
	ScopeNormal ScopeKind = iota
	ScopeLocalStat
	ScopeRepeat
	ScopeForRange
)

// Scope is one node of a per-file scope tree. LocalStat scopes implement
// "visible only after the defining statement, except within its own
// initializer" by recording the statement's end offset separately from the
// scope's own range.
type Scope struct {
	Id       types.ScopeId
	Kind     ScopeKind
	Range    syntax.Range
	StatEnd  int // for ScopeLocalStat: decls are visible only for pos > StatEnd
	Parent   *Scope
	Children []*Scope
	Decls    []*Decl
}

// declVisibleAt reports whether a decl bound in this scope is visible at pos,
// honoring the LocalStat self-initializer rule (spec.md §3.2).
func (s *Scope) declVisibleAt(d *Decl, pos int) bool {
	if s.Kind == ScopeLocalStat && s.SyntaxKindIsLocalFunc(d) {
		// LocalFuncStat: the decl is visible to its own body.
		return pos >= d.Range.Start
	}
	if s.Kind == ScopeLocalStat {
		return pos > s.StatEnd
	}
	return pos > d.Range.Start || s.Range.Contains(pos)
}

// SyntaxKindIsLocalFunc reports whether d was declared via a recursive
// LocalFuncStat (visible within its own body, unlike plain LocalStat).
func (s *Scope) SyntaxKindIsLocalFunc(d *Decl) bool {
	return d.SyntaxKind == syntax.KindLocalFuncStat
}

// DeclTree is the per-file scope tree plus a flat decl-by-range index,
// added to DeclIndex by update_index and dropped by remove_index.
type DeclTree struct {
	File  syntax.FileId
	Root  *Scope
	byPos map[int]*Decl // by defining-range start offset
}

// DeclIndex is the decl/scope/global sub-index (spec.md §4.2).
type DeclIndex struct {
	trees   map[syntax.FileId]*DeclTree
	globals map[string][]*Decl // name -> decls across all files
	// globalByPos lets the Lua Analyzer (pass 4) find the exact global Decl
	// a given defining-token offset produced, the same way byPos does for
	// locals — globals have no scope tree to hang a byPos map off of, so a
	// separate one is kept here instead.
	globalByPos map[syntax.FileId]map[int]*Decl
}

func NewDeclIndex() *DeclIndex {
	return &DeclIndex{
		trees:       make(map[syntax.FileId]*DeclTree),
		globals:     make(map[string][]*Decl),
		globalByPos: make(map[syntax.FileId]map[int]*Decl),
	}
}

func (idx *DeclIndex) AddDeclTree(tree *DeclTree) {
	idx.trees[tree.File] = tree
}

func (idx *DeclIndex) GetDeclTree(file syntax.FileId) *DeclTree {
	return idx.trees[file]
}

func (idx *DeclIndex) AddGlobalDecl(name string, d *Decl) {
	idx.globals[name] = append(idx.globals[name], d)
	byPos, ok := idx.globalByPos[d.File]
	if !ok {
		byPos = make(map[int]*Decl)
		idx.globalByPos[d.File] = byPos
	}
	byPos[d.Range.Start] = d
}

func (idx *DeclIndex) GetDecl(id types.DeclId) *Decl {
	tree, ok := idx.trees[id.File]
	if !ok {
		return nil
	}
	return tree.byPos[id.Offset]
}

// FindDeclAt resolves the Decl (local or global) whose defining range starts
// at offset in file — the Lua Analyzer (pass 4) uses this to retrieve the
// exact Decl instance a FuncStat/AssignStat produced, so it can mutate its
// Type field once an initializer or signature has been worked out.
func (idx *DeclIndex) FindDeclAt(file syntax.FileId, offset int) (*Decl, bool) {
	if tree, ok := idx.trees[file]; ok {
		if d, ok := tree.byPos[offset]; ok {
			return d, true
		}
	}
	if byPos, ok := idx.globalByPos[file]; ok {
		if d, ok := byPos[offset]; ok {
			return d, true
		}
	}
	return nil, false
}

// GetGlobalDeclType resolves a global name to a representative type: it
// prefers a Def/Ref or function-typed decl when several coexist, then a
// table-typed one, else the first (spec.md §4.2).
func (idx *DeclIndex) GetGlobalDeclType(name string) (types.Type, bool) {
	decls := idx.globals[name]
	if len(decls) == 0 {
		return nil, false
	}
	var tableFallback types.Type
	for _, d := range decls {
		if d.Type == nil {
			continue
		}
		switch d.Type.Tag() {
		case types.TagRef, types.TagDef, types.TagSignature, types.TagDocFunction:
			return d.Type, true
		case types.TagTable, types.TagTableGeneric, types.TagTableConst, types.TagObject:
			if tableFallback == nil {
				tableFallback = d.Type
			}
		}
	}
	if tableFallback != nil {
		return tableFallback, true
	}
	for _, d := range decls {
		if d.Type != nil {
			return d.Type, true
		}
	}
	return nil, false
}

func (idx *DeclIndex) GlobalDecls(name string) []*Decl { return idx.globals[name] }

// FindDecl resolves name at pos inside scope, walking outward — spec.md
// §8's "Scope visibility" invariant.
func FindDecl(scope *Scope, name string, pos int) *Decl {
	for s := scope; s != nil; s = s.Parent {
		// Walk decls in reverse declaration order so shadowing finds the
		// innermost/most-recent binding first.
		for i := len(s.Decls) - 1; i >= 0; i-- {
			d := s.Decls[i]
			if d.Name != name {
				continue
			}
			if s.declVisibleAt(d, pos) {
				return d
			}
		}
	}
	return nil
}

// ScopeAt finds the innermost scope containing pos.
func ScopeAt(root *Scope, pos int) *Scope {
	best := root
	var walk func(s *Scope)
	walk = func(s *Scope) {
		if !s.Range.Contains(pos) && s != root {
			return
		}
		best = s
		for _, c := range s.Children {
			if c.Range.Contains(pos) {
				walk(c)
			}
		}
	}
	walk(root)
	return best
}

// Remove sheds every decl/global/tree tuple tagged with file.
func (idx *DeclIndex) Remove(file syntax.FileId) {
	delete(idx.trees, file)
	delete(idx.globalByPos, file)
	for name, decls := range idx.globals {
		kept := decls[:0:0]
		for _, d := range decls {
			if d.File != file {
				kept = append(kept, d)
			}
		}
		if len(kept) == 0 {
			delete(idx.globals, name)
		} else {
			idx.globals[name] = kept
		}
	}
}

// AllFiles returns the files currently indexed, sorted for determinism.
func (idx *DeclIndex) AllFiles() []syntax.FileId {
	out := make([]syntax.FileId, 0, len(idx.trees))
	for f := range idx.trees {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DeclTreeBuilder accumulates decls/scopes for one file during pass 1
// (internal/analyzer/decl uses this).
type DeclTreeBuilder struct {
	File      syntax.FileId
	Root      *Scope
	nextScope types.ScopeId
	byPos     map[int]*Decl
}

func NewDeclTreeBuilder(file syntax.FileId, chunkRange syntax.Range) *DeclTreeBuilder {
	root := &Scope{Id: 0, Kind: ScopeNormal, Range: chunkRange}
	return &DeclTreeBuilder{File: file, Root: root, nextScope: 1, byPos: make(map[int]*Decl)}
}

func (b *DeclTreeBuilder) OpenScope(parent *Scope, kind ScopeKind, r syntax.Range) *Scope {
	s := &Scope{Id: b.nextScope, Kind: kind, Range: r, Parent: parent}
	b.nextScope++
	parent.Children = append(parent.Children, s)
	return s
}

func (b *DeclTreeBuilder) AddDecl(scope *Scope, d *Decl) {
	scope.Decls = append(scope.Decls, d)
	b.byPos[d.Id.Offset] = d
}

func (b *DeclTreeBuilder) Build() *DeclTree {
	return &DeclTree{File: b.File, Root: b.Root, byPos: b.byPos}
}
