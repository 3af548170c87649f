package db

import (
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// OperatorKind enumerates the Lua metamethods the alias-call operator
// (`op()`, spec.md §3.1/§6.1 MetaOp) can resolve to.
type OperatorKind int

const (
	OpAdd OperatorKind = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpUnm
	OpConcat
	OpLen
	OpEq
	OpLt
	OpLe
	OpIndex
	OpNewIndex
	OpCall
)

// OperatorIndex is a dedicated owner -> operator-kind -> Signature table
// (SPEC_FULL.md §C.1), mirroring original_source's per-class operator table
// rather than folding metamethods into the general member map: operator
// lookup is a hot, narrow-key path (class, kind) distinct from the
// string-keyed member lookups in MemberIndex.
type OperatorIndex struct {
	ops    map[opKey]types.SignatureId
	byFile map[syntax.FileId][]opKey
}

type opKey struct {
	Owner types.TypeDeclId
	Kind  OperatorKind
}

func NewOperatorIndex() *OperatorIndex {
	return &OperatorIndex{ops: make(map[opKey]types.SignatureId), byFile: make(map[syntax.FileId][]opKey)}
}

func (idx *OperatorIndex) Add(file syntax.FileId, owner types.TypeDeclId, kind OperatorKind, sig types.SignatureId) {
	key := opKey{Owner: owner, Kind: kind}
	if _, exists := idx.ops[key]; exists {
		return // first-registered wins, consistent with MemberIndex
	}
	idx.ops[key] = sig
	idx.byFile[file] = append(idx.byFile[file], key)
}

func (idx *OperatorIndex) Get(owner types.TypeDeclId, kind OperatorKind) (types.SignatureId, bool) {
	sig, ok := idx.ops[opKey{Owner: owner, Kind: kind}]
	return sig, ok
}

func (idx *OperatorIndex) Remove(file syntax.FileId) {
	for _, key := range idx.byFile[file] {
		delete(idx.ops, key)
	}
	delete(idx.byFile, file)
}
