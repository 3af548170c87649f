// Package db implements the cross-file Index (spec.md §3/§4.2): the set of
// sub-indices every analyzer pass writes into and the Inference Engine
// queries from, plus the per-file Remove sweep incremental re-analysis
// relies on. Grounded on the teacher's internal/symbols package, which
// plays the same "one struct bundling every per-file table" role for
// funxy's symbol graph.
package db

import "github.com/lumenforge/lumen/internal/syntax"

// Index aggregates every sub-index that makes up the program database.
type Index struct {
	Decl       *DeclIndex
	Member     *MemberIndex
	Type       *TypeIndex
	Signature  *SignatureIndex
	Reference  *ReferenceIndex
	Property   *PropertyIndex
	Diagnostic *DiagnosticIndex
	Flow       *FlowIndex
	Module     *ModuleIndex
	Meta       *MetaIndex
	Operator   *OperatorIndex
	Work       *WorkList

	resolver *Resolver
}

func NewIndex() *Index {
	idx := &Index{
		Decl:       NewDeclIndex(),
		Member:     NewMemberIndex(),
		Type:       NewTypeIndex(),
		Signature:  NewSignatureIndex(),
		Reference:  NewReferenceIndex(),
		Property:   NewPropertyIndex(),
		Diagnostic: NewDiagnosticIndex(),
		Flow:       NewFlowIndex(),
		Module:     NewModuleIndex(),
		Meta:       NewMetaIndex(),
		Operator:   NewOperatorIndex(),
		Work:       NewWorkList(),
	}
	idx.resolver = NewResolver(idx.Type, idx.Member)
	return idx
}

// Resolver returns the types.Resolver view over this Index (db.Resolver
// below), for the Inference Engine and diagnostics to pass into
// types.CheckTypeCompact.
func (idx *Index) Resolver() *Resolver { return idx.resolver }

// RemoveFile sheds every trace of file from every sub-index in one call, so
// a host's "file changed" re-analysis can retract stale facts before
// re-running the five passes (spec.md §5 incremental re-analysis). Every
// sub-index's own Remove is total: re-adding the file afterward must
// reproduce the same state as a first-time analysis.
func (idx *Index) RemoveFile(file syntax.FileId) {
	idx.Decl.Remove(file)
	idx.Member.Remove(file)
	idx.Type.Remove(file)
	idx.Signature.Remove(file)
	idx.Reference.Remove(file)
	idx.Property.Remove(file)
	idx.Diagnostic.Remove(file)
	idx.Flow.Remove(file)
	idx.Module.Remove(file)
	idx.Meta.Remove(file)
	idx.Operator.Remove(file)
	idx.Work.Remove(file)
}

// AllFiles returns every FileId known to the declaration tree, the closest
// thing to a canonical file set (every analyzed file registers a DeclTree
// even if it declares nothing else).
func (idx *Index) AllFiles() []syntax.FileId {
	return idx.Decl.AllFiles()
}
