package db

import (
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// UnResolveKind tags which retry shape an UnResolve item carries (spec.md §4.6/§4.7).
type UnResolveKind int

const (
	UnResolveDeclKind UnResolveKind = iota
	UnResolveMemberKind
	UnResolveIterVarKind
)

// UnResolveDecl retries `local x = expr` when expr couldn't be inferred yet.
type UnResolveDecl struct {
	DeclId types.DeclId
	Expr   syntax.Id
	RetIdx int // index into a trailing multi-return expression, or 0
}

// UnResolveMember retries an assignment/table-field whose owner or value
// type could not be determined on first pass. Prefix is set when the owner
// itself depends on inferring an index-expression prefix (spec.md §4.6).
type UnResolveMember struct {
	Owner  Owner
	Key    Key
	Expr   syntax.Id
	RetIdx int
	Prefix *syntax.Id
}

// UnResolveIterVar retries `for ... in iter do` when iter's return signature
// wasn't known yet, so loop variables couldn't be paired positionally.
type UnResolveIterVar struct {
	Vars []types.DeclId
	Iter syntax.Id
}

// UnResolveItem is a tagged union over the three retry shapes.
type UnResolveItem struct {
	Kind   UnResolveKind
	Decl   UnResolveDecl
	Member UnResolveMember
	Iter   UnResolveIterVar
}

// WorkList is the per-file fixpoint queue the Unresolved Resolver drains
// (spec.md §4.7): items resolved in one round may unblock others, so the
// resolver replaces a file's items with the ones still unresolved after each
// round, until a round makes no progress at all.
type WorkList struct {
	items  map[syntax.FileId][]UnResolveItem
}

func NewWorkList() *WorkList {
	return &WorkList{items: make(map[syntax.FileId][]UnResolveItem)}
}

func (w *WorkList) Enqueue(file syntax.FileId, item UnResolveItem) {
	w.items[file] = append(w.items[file], item)
}

func (w *WorkList) Items(file syntax.FileId) []UnResolveItem {
	return w.items[file]
}

// Replace swaps the remaining (still-unresolved) items for file — called by
// the resolver after each round with whatever didn't make progress.
func (w *WorkList) Replace(file syntax.FileId, remaining []UnResolveItem) {
	if len(remaining) == 0 {
		delete(w.items, file)
		return
	}
	w.items[file] = remaining
}

func (w *WorkList) Remove(file syntax.FileId) {
	delete(w.items, file)
}
