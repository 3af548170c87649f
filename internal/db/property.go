package db

import (
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// PropertyOwnerKind is one of {Decl, Member, Signature, TypeDecl} (spec.md §4.2).
type PropertyOwnerKind int

const (
	OwnerKindDecl PropertyOwnerKind = iota
	OwnerKindMember
	OwnerKindSignature
	OwnerKindTypeDecl
)

// PropertyOwnerId identifies the entity doc-derived properties attach to.
type PropertyOwnerId struct {
	Kind      PropertyOwnerKind
	Decl      types.DeclId
	Member    types.MemberId
	Signature types.SignatureId
	TypeDecl  types.TypeDeclId
}

// Visibility mirrors the LuaDoc @field visibility keywords.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityProtected
	VisibilityPrivate
	VisibilityPackage
)

// Properties is the bag of doc-derived properties one owner can carry.
type Properties struct {
	Description string
	Visibility  Visibility
	NoDiscard   bool
	Deprecated  bool
	DeprecatedMessage string
	Version     string
	Async       bool
	Source      string
	SeeRefs     []string // SPEC_FULL.md §C.3 @see cross-references
}

// PropertyIndex attaches Properties to a PropertyOwnerId.
type PropertyIndex struct {
	props  map[PropertyOwnerId]*Properties
	byFile map[syntax.FileId][]PropertyOwnerId
}

func NewPropertyIndex() *PropertyIndex {
	return &PropertyIndex{props: make(map[PropertyOwnerId]*Properties), byFile: make(map[syntax.FileId][]PropertyOwnerId)}
}

func (idx *PropertyIndex) Attach(file syntax.FileId, owner PropertyOwnerId, mutate func(*Properties)) {
	p, ok := idx.props[owner]
	if !ok {
		p = &Properties{}
		idx.props[owner] = p
		idx.byFile[file] = append(idx.byFile[file], owner)
	}
	mutate(p)
}

func (idx *PropertyIndex) Get(owner PropertyOwnerId) (*Properties, bool) {
	p, ok := idx.props[owner]
	return p, ok
}

func (idx *PropertyIndex) Remove(file syntax.FileId) {
	for _, owner := range idx.byFile[file] {
		delete(idx.props, owner)
	}
	delete(idx.byFile, file)
}
