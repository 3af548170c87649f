package db

import (
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// ResolveReturnState is a Signature's return-resolution state (spec.md §3.6).
type ResolveReturnState int

const (
	ResolveUnResolve ResolveReturnState = iota
	ResolveDocResolve
	ResolveInferResolve
)

// ReturnInfo is one @return entry.
type ReturnInfo struct {
	Type        types.Type
	Description string
}

// Signature carries everything spec.md §3.6 lists; each generic parameter's
// optional bound is stored on its GenericParam.Bound.
type Signature struct {
	Id             types.SignatureId
	File           syntax.FileId
	Generics       []GenericParam
	ParamNames     []string
	Params         []types.Param // per-parameter doc info (type/nullable/description)
	Returns        []ReturnInfo
	Overloads      []*Signature // alternate function types (@overload)
	IsColonDefine  bool
	ResolveReturn  ResolveReturnState
	IsAsync        bool
}

// ReturnType assembles the signature's return type: a MultiReturn when more
// than one @return was declared, else the single type (or Unknown).
func (s *Signature) ReturnType() types.Type {
	if len(s.Returns) == 0 {
		return types.Unknown
	}
	if len(s.Returns) == 1 {
		return s.Returns[0].Type
	}
	vals := make([]types.Type, len(s.Returns))
	for i, r := range s.Returns {
		vals[i] = r.Type
	}
	return types.MultiReturn{Values: vals}
}

// HasVariadicReturn reports whether the last declared return is variadic —
// gates the missing/redundant-return checker (spec.md §4.10, §8).
func (s *Signature) HasVariadicReturn() bool {
	if len(s.Returns) == 0 {
		return false
	}
	_, ok := s.Returns[len(s.Returns)-1].Type.(types.Variadic)
	return ok
}

// SignatureIndex gets/creates per-closure and per-doc-function signatures.
type SignatureIndex struct {
	byId   map[types.SignatureId]*Signature
	byFile map[syntax.FileId][]types.SignatureId
}

func NewSignatureIndex() *SignatureIndex {
	return &SignatureIndex{byId: make(map[types.SignatureId]*Signature), byFile: make(map[syntax.FileId][]types.SignatureId)}
}

func (idx *SignatureIndex) GetOrCreate(id types.SignatureId) *Signature {
	if s, ok := idx.byId[id]; ok {
		return s
	}
	s := &Signature{Id: id, File: id.File}
	idx.byId[id] = s
	idx.byFile[id.File] = append(idx.byFile[id.File], id)
	return s
}

func (idx *SignatureIndex) Get(id types.SignatureId) (*Signature, bool) {
	s, ok := idx.byId[id]
	return s, ok
}

func (idx *SignatureIndex) Remove(file syntax.FileId) {
	for _, id := range idx.byFile[file] {
		delete(idx.byId, id)
	}
	delete(idx.byFile, file)
}
