// Package syntax defines the contract Lumen expects from a concrete Lua
// (and LuaDoc comment) parser. The parser itself is an external
// collaborator — Lumen consumes a red/green CST built by someone else and
// never tokenizes or grammars Lua source.
package syntax

// FileId is an opaque handle identifying a source file across passes.
// A value of zero is never assigned to a real file.
type FileId uint32

// Kind enumerates the CST node/token kinds the analyzer dispatches on.
// The set covers every construct named in spec.md §4.1/§6.1: Lua
// statements and expressions plus the LuaDoc tag/type grammar.
type Kind int

const (
	KindInvalid Kind = iota

	// Lua chunk/block structure
	KindChunk
	KindBlock

	// Statements
	KindLocalStat
	KindAssignStat
	KindForStat
	KindForRangeStat
	KindRepeatStat
	KindWhileStat
	KindIfStat
	KindIfClause
	KindFuncStat
	KindLocalFuncStat
	KindReturnStat
	KindCallStat
	KindBreakStat
	KindGotoStat
	KindLabelStat
	KindDoStat

	// Expressions
	KindNameExpr
	KindIndexExpr
	KindCallExpr
	KindClosureExpr
	KindTableExpr
	KindTableFieldNamed
	KindTableFieldIndexed
	KindTableFieldPositional
	KindBinaryExpr
	KindUnaryExpr
	KindParenExpr
	KindVarargExpr
	KindLiteralNil
	KindLiteralTrue
	KindLiteralFalse
	KindLiteralInteger
	KindLiteralFloat
	KindLiteralString
	KindSelfExpr

	// Params
	KindParamList
	KindParamName

	// LuaDoc comment tags
	KindDocComment
	KindDocClassTag
	KindDocEnumTag
	KindDocEnumField
	KindDocAliasTag
	KindDocAliasUnionItem
	KindDocFieldTag
	KindDocParamTag
	KindDocReturnTag
	KindDocGenericTag
	KindDocOverloadTag
	KindDocCastTag
	KindDocDiagnosticTag
	KindDocDeprecatedTag
	KindDocAsyncTag
	KindDocNodiscardTag
	KindDocVersionTag
	KindDocVisibilityTag
	KindDocSourceTag
	KindDocSeeTag
	KindDocNamespaceTag
	KindDocUsingTag
	KindDocTypeTag

	// LuaDoc type-expression grammar
	KindDocTypeName
	KindDocTypeArray
	KindDocTypeNullable
	KindDocTypeVariadic
	KindDocTypeTuple
	KindDocTypeUnion
	KindDocTypeFun
	KindDocTypeGeneric
	KindDocTypeTableGeneric
	KindDocTypeStringConst
	KindDocTypeIntegerConst
	KindDocTypeObject
	KindDocTypeCall
)

func (k Kind) IsDoc() bool {
	return k >= KindDocComment && k <= KindDocTypeCall
}

// Range is a half-open byte range [Start, End) within a file.
type Range struct {
	Start int
	End   int
}

func (r Range) Contains(offset int) bool { return offset >= r.Start && offset < r.End }

// Before reports whether r ends at or before other's start.
func (r Range) Before(other Range) bool { return r.End <= other.Start }

// Id is a stable (kind, range) pair that uniquely locates a node within
// its file's CST — spec.md's SyntaxId.
type Id struct {
	Kind  Kind
	Range Range
}

// Node is the minimal red/green CST node surface the analyzer relies on.
type Node interface {
	Kind() Kind
	Range() Range
	Id() Id
	Parent() Node
	Children() []Node
	// Text returns the exact source slice the node spans, when the tree
	// retains source text (always true for the in-memory trees Lumen
	// builds in tests and that a real parser would provide).
	Text() string
}

// Token is a leaf node carrying no children, used for name/literal spans.
type Token interface {
	Node
	Value() string
}

// ParseError is forwarded verbatim from the external parser (spec.md §7).
type ParseError struct {
	Message string
	Range   Range
}

// Tree is a parsed file: its root chunk node plus any parse errors.
type Tree struct {
	File   FileId
	Root   Node
	Errors []ParseError
	Lines  *LineIndex
	Source string
}

// LineIndex converts between byte offsets and (line, column) pairs for
// LSP-style coordinate translation (spec.md §6.1).
type LineIndex struct {
	// starts[i] is the byte offset of the first byte of line i (0-based).
	starts []int
}

// NewLineIndex builds a LineIndex over src.
func NewLineIndex(src string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts}
}

// Position converts a byte offset to a zero-based (line, column) pair.
func (li *LineIndex) Position(offset int) (line, col int) {
	// binary search for the last line start <= offset
	lo, hi := 0, len(li.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if li.starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, offset - li.starts[lo]
}

// Offset converts a zero-based (line, column) pair back to a byte offset.
func (li *LineIndex) Offset(line, col int) int {
	if line < 0 {
		return 0
	}
	if line >= len(li.starts) {
		line = len(li.starts) - 1
	}
	return li.starts[line] + col
}

// FindToken walks the tree to find the deepest node whose range contains
// offset — the primary entry point for "what is under the cursor" queries.
func FindToken(root Node, offset int) Node {
	cur := root
	for {
		var next Node
		for _, c := range cur.Children() {
			if c.Range().Contains(offset) {
				next = c
				break
			}
		}
		if next == nil {
			return cur
		}
		cur = next
	}
}
