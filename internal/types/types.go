package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lumenforge/lumen/internal/syntax"
)

// Tag identifies a Type's concrete variant for tag-first equality and fast
// dispatch, mirroring the teacher's type-switch-over-concrete-struct style
// (internal/typesystem/types.go) generalized to spec.md's tag table (§4.1).
type Tag int

const (
	TagUnknown Tag = iota
	TagAny
	TagNil
	TagBoolean
	TagString
	TagInteger
	TagNumber
	TagTable
	TagUserdata
	TagThread
	TagFunction
	TagIo
	TagGlobal
	TagSelfInfer
	TagBooleanConst
	TagIntegerConst
	TagFloatConst
	TagStringConst
	TagTableConst
	TagDocStringConst
	TagDocIntegerConst
	TagRef
	TagDef
	TagArray
	TagNullable
	TagVariadic
	TagTuple
	TagUnion
	TagIntersection
	TagObject
	TagDocFunction
	TagSignature
	TagGeneric
	TagTableGeneric
	TagTplRef
	TagStrTplRef
	TagMultiReturn
	TagMemberPathExist
	TagInstance
	TagNamespace
	TagModule
	TagCall
	TagMultiLineUnion
)

// Type is the interface every Lua type variant implements.
type Type interface {
	Tag() Tag
	String() string
}

// ---- Singletons -----------------------------------------------------

type primitive struct {
	tag  Tag
	name string
}

func (p primitive) Tag() Tag      { return p.tag }
func (p primitive) String() string { return p.name }

var (
	Unknown   Type = primitive{TagUnknown, "unknown"}
	Any       Type = primitive{TagAny, "any"}
	Nil       Type = primitive{TagNil, "nil"}
	Boolean   Type = primitive{TagBoolean, "boolean"}
	String    Type = primitive{TagString, "string"}
	Integer   Type = primitive{TagInteger, "integer"}
	Number    Type = primitive{TagNumber, "number"}
	Table     Type = primitive{TagTable, "table"}
	Userdata  Type = primitive{TagUserdata, "userdata"}
	Thread    Type = primitive{TagThread, "thread"}
	Function  Type = primitive{TagFunction, "function"}
	Io        Type = primitive{TagIo, "io"}
	Global    Type = primitive{TagGlobal, "global"}
	SelfInfer Type = primitive{TagSelfInfer, "self"}
)

// ---- Runtime-inferred literal singletons -----------------------------

type BooleanConst struct{ Value bool }

func (c BooleanConst) Tag() Tag      { return TagBooleanConst }
func (c BooleanConst) String() string { return strconv.FormatBool(c.Value) }

type IntegerConst struct{ Value int64 }

func (c IntegerConst) Tag() Tag      { return TagIntegerConst }
func (c IntegerConst) String() string { return strconv.FormatInt(c.Value, 10) }

type FloatConst struct{ Value float64 }

func (c FloatConst) Tag() Tag      { return TagFloatConst }
func (c FloatConst) String() string { return strconv.FormatFloat(c.Value, 'g', -1, 64) }

type StringConst struct{ Value string }

func (c StringConst) Tag() Tag      { return TagStringConst }
func (c StringConst) String() string { return strconv.Quote(c.Value) }

// TableConst names a table literal by the file+range of the expression
// that produced it — the owner key for its Element member map (spec.md §3.3).
type TableConst struct {
	File  syntax.FileId
	Range syntax.Range
}

func (c TableConst) Tag() Tag { return TagTableConst }
func (c TableConst) String() string {
	return fmt.Sprintf("table@%d:%d-%d", c.File, c.Range.Start, c.Range.End)
}

// DocStringConst/DocIntegerConst are doc-declared literal singletons, kept
// distinct from the runtime-inferred constants above so widening rules can
// tell "the doc author wrote this literal type" from "we inferred one".
type DocStringConst struct{ Value string }

func (c DocStringConst) Tag() Tag      { return TagDocStringConst }
func (c DocStringConst) String() string { return strconv.Quote(c.Value) }

type DocIntegerConst struct{ Value int64 }

func (c DocIntegerConst) Tag() Tag      { return TagDocIntegerConst }
func (c DocIntegerConst) String() string { return strconv.FormatInt(c.Value, 10) }

// ---- Nominal references ----------------------------------------------

type Ref struct{ Name TypeDeclId }

func (r Ref) Tag() Tag      { return TagRef }
func (r Ref) String() string { return string(r.Name) }

// Def is a self-referential definition: inside class A's own members, A is
// seen as Def(A) rather than Ref(A) (spec.md §4.8, "self" resolution).
type Def struct{ Name TypeDeclId }

func (d Def) Tag() Tag      { return TagDef }
func (d Def) String() string { return string(d.Name) }

// ---- Unary constructors ------------------------------------------------

type Array struct{ Elem Type }

func (a Array) Tag() Tag      { return TagArray }
func (a Array) String() string { return a.Elem.String() + "[]" }

type Nullable struct{ Elem Type }

func (n Nullable) Tag() Tag      { return TagNullable }
func (n Nullable) String() string { return n.Elem.String() + "?" }

type Variadic struct{ Elem Type }

func (v Variadic) Tag() Tag      { return TagVariadic }
func (v Variadic) String() string { return v.Elem.String() + "..." }

// ---- n-ary --------------------------------------------------------------

type Tuple struct{ Elems []Type }

func (t Tuple) Tag() Tag { return TagTuple }
func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type Union struct{ Variants []Type }

func (u Union) Tag() Tag { return TagUnion }
func (u Union) String() string {
	parts := make([]string, len(u.Variants))
	for i, v := range u.Variants {
		parts[i] = v.String()
	}
	return strings.Join(parts, "|")
}

type Intersection struct{ Variants []Type }

func (i Intersection) Tag() Tag { return TagIntersection }
func (i Intersection) String() string {
	parts := make([]string, len(i.Variants))
	for k, v := range i.Variants {
		parts[k] = v.String()
	}
	return strings.Join(parts, "&")
}

// ---- Structural record ---------------------------------------------------

// IndexSignature is a `[keyType]: valueType` entry of an Object type.
type IndexSignature struct {
	Key   Type
	Value Type
}

type Object struct {
	Fields     map[string]Type
	FieldOrder []string // insertion order, for deterministic String()/iteration
	Index      []IndexSignature
}

func (o Object) Tag() Tag { return TagObject }
func (o Object) String() string {
	order := o.FieldOrder
	if order == nil {
		order = make([]string, 0, len(o.Fields))
		for k := range o.Fields {
			order = append(order, k)
		}
		sort.Strings(order)
	}
	parts := make([]string, 0, len(order)+len(o.Index))
	for _, k := range order {
		parts = append(parts, k+": "+o.Fields[k].String())
	}
	for _, idx := range o.Index {
		parts = append(parts, "["+idx.Key.String()+"]: "+idx.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ---- Functions ------------------------------------------------------------

type Param struct {
	Name        string
	Type        Type
	Nullable    bool
	Description string
}

// DocFunction is an anonymous signature written inline in a doc type
// expression (e.g. `fun(x: integer): boolean`).
type DocFunction struct {
	IsAsync bool
	IsColon bool
	Params  []Param
	Returns []Type
}

func (f DocFunction) Tag() Tag { return TagDocFunction }
func (f DocFunction) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		n := p.Name
		if p.Nullable {
			n += "?"
		}
		params[i] = n + ": " + p.Type.String()
	}
	rets := make([]string, len(f.Returns))
	for i, r := range f.Returns {
		rets[i] = r.String()
	}
	prefix := "fun"
	if f.IsAsync {
		prefix = "async fun"
	}
	s := prefix + "(" + strings.Join(params, ", ") + ")"
	if len(rets) > 0 {
		s += ": " + strings.Join(rets, ", ")
	}
	return s
}

// Signature is a named, DB-owned function type: the type-model side only
// holds the handle, the Signature's params/overloads/generics live in
// db.SignatureIndex keyed by this Id (spec.md §3.6, §4.1 "Signature(SignatureId)").
type Signature struct{ Id SignatureId }

func (s Signature) Tag() Tag      { return TagSignature }
func (s Signature) String() string { return fmt.Sprintf("signature@%d:%d", s.Id.File, s.Id.Pos) }

// ---- Generics ---------------------------------------------------------

type Generic struct {
	Base   TypeDeclId
	Params []Type
}

func (g Generic) Tag() Tag { return TagGeneric }
func (g Generic) String() string {
	parts := make([]string, len(g.Params))
	for i, p := range g.Params {
		parts[i] = p.String()
	}
	return string(g.Base) + "<" + strings.Join(parts, ", ") + ">"
}

type TableGeneric struct{ Key, Value Type }

func (t TableGeneric) Tag() Tag      { return TagTableGeneric }
func (t TableGeneric) String() string { return "table<" + t.Key.String() + ", " + t.Value.String() + ">" }

// GenericTplId scopes a template parameter to the type or function that
// introduced it (e.g. "fn@file:pos" or "class@Name"), so identically-named
// template parameters in different scopes never collide during matching.
type GenericTplId string

type TplRef struct {
	Scope GenericTplId
	Name  string
}

func (t TplRef) Tag() Tag      { return TagTplRef }
func (t TplRef) String() string { return t.Name }

// StrTplRef is a prefix-concatenated string template parameter, e.g.
// `` `Get${T}` `` binding T to the suffix of a matched string constant.
type StrTplRef struct {
	Prefix string
	Scope  GenericTplId
	Name   string
}

func (t StrTplRef) Tag() Tag      { return TagStrTplRef }
func (t StrTplRef) String() string { return "`" + t.Prefix + "${" + t.Name + "}`" }

// ---- Multi-return -------------------------------------------------------

// MultiReturn models the multi-valued result of a Lua call (spec.md §4.1,
// "Multi-return as a first-class type" design note). When Values is
// non-nil it is the "Multi([T])" form; otherwise Base holds the "Base(T)"
// form used when a single value stands in for an unknown-arity result.
type MultiReturn struct {
	Values []Type // Multi([T]) form
	Base   Type   // Base(T) form, used when Values == nil
}

func (m MultiReturn) Tag() Tag { return TagMultiReturn }
func (m MultiReturn) String() string {
	if m.Values == nil {
		if m.Base == nil {
			return "(...)"
		}
		return m.Base.String()
	}
	parts := make([]string, len(m.Values))
	for i, v := range m.Values {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Get returns the i-th (0-based) value of a multi-return, per spec.md §4.1's
// multi-return indexing rule: for i < k-1 it is Values[i]; for i >= k-1 it
// recurses into the tail if the tail is itself multi-return, else returns
// the tail only for offset 0.
func (m MultiReturn) Get(i int) (Type, bool) {
	if m.Values == nil {
		if m.Base == nil {
			return nil, false
		}
		if i == 0 {
			return m.Base, true
		}
		return nil, false
	}
	k := len(m.Values)
	if k == 0 {
		return nil, false
	}
	if i < k-1 {
		return m.Values[i], true
	}
	tail := m.Values[k-1]
	offset := i - (k - 1)
	if nested, ok := tail.(MultiReturn); ok {
		return nested.Get(offset)
	}
	if offset == 0 {
		return tail, true
	}
	return nil, false
}

// Len reports the definite length, or -1 if the tail's length is unknown
// (the tail is itself a multi-return whose own length is unknown).
func (m MultiReturn) Len() int {
	if m.Values == nil {
		if m.Base == nil {
			return 0
		}
		return 1
	}
	k := len(m.Values)
	if k == 0 {
		return 0
	}
	if nested, ok := m.Values[k-1].(MultiReturn); ok {
		nl := nested.Len()
		if nl < 0 {
			return -1
		}
		return k - 1 + nl
	}
	return k
}

// ---- Narrowing proofs / fresh instances / namespaces --------------------

// MemberPathExist is a narrowing proof that `origin.a.b.c` exists — emitted
// by flow analysis for chained `@cast`/existence checks (spec.md §4.1).
type MemberPathExist struct {
	Origin Type
	Path   []string
	Index  int
}

func (m MemberPathExist) Tag() Tag { return TagMemberPathExist }
func (m MemberPathExist) String() string {
	return m.Origin.String() + "." + strings.Join(m.Path[:m.Index+1], ".")
}

// Instance is a fresh nominal table created at a specific table literal,
// e.g. `setmetatable({}, Base)`.
type Instance struct {
	Base  Type
	File  syntax.FileId
	Range syntax.Range
}

func (i Instance) Tag() Tag { return TagInstance }
func (i Instance) String() string {
	return fmt.Sprintf("%s@%d:%d-%d", i.Base.String(), i.File, i.Range.Start, i.Range.End)
}

type Namespace struct{ Name string }

func (n Namespace) Tag() Tag      { return TagNamespace }
func (n Namespace) String() string { return n.Name }

type Module struct{ Name string }

func (m Module) Tag() Tag      { return TagModule }
func (m Module) String() string { return m.Name }

// ---- Alias-call operators ------------------------------------------------

type AliasCallKind int

const (
	CallKeyOf AliasCallKind = iota
	CallExtends
	CallAdd
	CallSub
	CallSelect
	CallIndex
)

func (k AliasCallKind) String() string {
	switch k {
	case CallKeyOf:
		return "keyof"
	case CallExtends:
		return "extends"
	case CallAdd:
		return "add"
	case CallSub:
		return "sub"
	case CallSelect:
		return "select"
	case CallIndex:
		return "index"
	default:
		return "call"
	}
}

// Call is a deferred alias-call operator; it is normalized only when
// compared or instantiated (spec.md §9 design note on alias-call laziness).
type Call struct {
	Kind AliasCallKind
	Args []Type
}

func (c Call) Tag() Tag { return TagCall }
func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Kind.String() + "(" + strings.Join(parts, ", ") + ")"
}

// ---- Documented-variant union --------------------------------------------

type UnionVariant struct {
	Type        Type
	Description string
}

type MultiLineUnion struct{ Variants []UnionVariant }

func (m MultiLineUnion) Tag() Tag { return TagMultiLineUnion }
func (m MultiLineUnion) String() string {
	parts := make([]string, len(m.Variants))
	for i, v := range m.Variants {
		parts[i] = v.Type.String()
	}
	return strings.Join(parts, "|")
}

// ContainsTpl reports whether t (or any of its immediate structural
// children, recursively) refers to an unresolved template parameter. The
// three TypeOps preserve this property (spec.md §4.1).
func ContainsTpl(t Type) bool {
	switch v := t.(type) {
	case TplRef, StrTplRef:
		return true
	case Array:
		return ContainsTpl(v.Elem)
	case Nullable:
		return ContainsTpl(v.Elem)
	case Variadic:
		return ContainsTpl(v.Elem)
	case Tuple:
		return anyTpl(v.Elems)
	case Union:
		return anyTpl(v.Variants)
	case Intersection:
		return anyTpl(v.Variants)
	case Object:
		for _, f := range v.Fields {
			if ContainsTpl(f) {
				return true
			}
		}
		for _, idx := range v.Index {
			if ContainsTpl(idx.Key) || ContainsTpl(idx.Value) {
				return true
			}
		}
		return false
	case DocFunction:
		for _, p := range v.Params {
			if ContainsTpl(p.Type) {
				return true
			}
		}
		return anyTpl(v.Returns)
	case Generic:
		return anyTpl(v.Params)
	case TableGeneric:
		return ContainsTpl(v.Key) || ContainsTpl(v.Value)
	case MultiReturn:
		if v.Base != nil && ContainsTpl(v.Base) {
			return true
		}
		return anyTpl(v.Values)
	case Call:
		return anyTpl(v.Args)
	case MultiLineUnion:
		for _, mv := range v.Variants {
			if ContainsTpl(mv.Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func anyTpl(ts []Type) bool {
	for _, t := range ts {
		if ContainsTpl(t) {
			return true
		}
	}
	return false
}

// Equal reports structural equality, tag-first (spec.md §3.5: "hash-consed
// by structural equality where cheap, by pointer where large").
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag() != b.Tag() {
		return false
	}
	switch av := a.(type) {
	case primitive:
		return true
	case BooleanConst:
		return av.Value == b.(BooleanConst).Value
	case IntegerConst:
		return av.Value == b.(IntegerConst).Value
	case FloatConst:
		return av.Value == b.(FloatConst).Value
	case StringConst:
		return av.Value == b.(StringConst).Value
	case DocStringConst:
		return av.Value == b.(DocStringConst).Value
	case DocIntegerConst:
		return av.Value == b.(DocIntegerConst).Value
	case TableConst:
		bv := b.(TableConst)
		return av.File == bv.File && av.Range == bv.Range
	case Ref:
		return av.Name == b.(Ref).Name
	case Def:
		return av.Name == b.(Def).Name
	case Array:
		return Equal(av.Elem, b.(Array).Elem)
	case Nullable:
		return Equal(av.Elem, b.(Nullable).Elem)
	case Variadic:
		return Equal(av.Elem, b.(Variadic).Elem)
	case Tuple:
		return equalSlice(av.Elems, b.(Tuple).Elems)
	case Union:
		return equalSetSlice(av.Variants, b.(Union).Variants)
	case Intersection:
		return equalSetSlice(av.Variants, b.(Intersection).Variants)
	case Generic:
		bv := b.(Generic)
		return av.Base == bv.Base && equalSlice(av.Params, bv.Params)
	case TableGeneric:
		bv := b.(TableGeneric)
		return Equal(av.Key, bv.Key) && Equal(av.Value, bv.Value)
	case TplRef:
		bv := b.(TplRef)
		return av.Scope == bv.Scope && av.Name == bv.Name
	case StrTplRef:
		bv := b.(StrTplRef)
		return av.Scope == bv.Scope && av.Name == bv.Name && av.Prefix == bv.Prefix
	case Signature:
		return av.Id == b.(Signature).Id
	case Namespace:
		return av.Name == b.(Namespace).Name
	case Module:
		return av.Name == b.(Module).Name
	default:
		// Large/object-like variants fall back to String() comparison —
		// acceptable for the "few large ones" tier spec.md §9 describes.
		return a.String() == b.String()
	}
}

func equalSlice(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalSetSlice(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, av := range a {
		found := false
		for j, bv := range b {
			if !used[j] && Equal(av, bv) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
