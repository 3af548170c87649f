// Package types implements the Lua type algebra (spec.md §4.1): the full
// tag set, the TypeOps algebra (Union/Narrow/Remove), and check_type_compact
// subtyping. It is grounded on the teacher's internal/typesystem package
// (the Type-interface-plus-tagged-struct pattern of types.go/kinds.go) but
// implements a structurally-typed, dynamically-checked algebra rather than
// the teacher's Hindley-Milner unification system, because Lua's type
// model (constants, alias-call operators, multi-return, member paths) has
// no HM analogue in the teacher.
package types

import "github.com/lumenforge/lumen/internal/syntax"

// TypeDeclId is an interned dotted name, e.g. "foo.Bar" (spec.md §3.1).
type TypeDeclId string

// SignatureId identifies a signature by (file, closure byte-offset).
type SignatureId struct {
	File syntax.FileId
	Pos  int
}

// DeclId identifies a declaration by (file, defining-token byte-offset).
type DeclId struct {
	File   syntax.FileId
	Offset int
}

// MemberId identifies a member by (file, syntax id of its defining node).
type MemberId struct {
	File   syntax.FileId
	Syntax syntax.Id
}

// ScopeId, FlowId and ModuleNodeId are small per-file integers.
type ScopeId int
type FlowId int
type ModuleNodeId int
