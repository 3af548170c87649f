// Package cstbuild hand-builds syntax.Tree values for tests. It stands in
// for the concrete Lua/LuaDoc parser, which spec.md places out of scope —
// the same role the teacher's analyzer tests fill by constructing
// *ast.Program literals directly instead of invoking internal/parser.
package cstbuild

import "github.com/lumenforge/lumen/internal/syntax"

// N is a mutable in-memory node used only to assemble test fixtures.
type N struct {
	kind     syntax.Kind
	rng      syntax.Range
	text     string
	value    string
	parent   *N
	children []*N
}

func (n *N) Kind() syntax.Kind { return n.kind }
func (n *N) Range() syntax.Range { return n.rng }
func (n *N) Id() syntax.Id      { return syntax.Id{Kind: n.kind, Range: n.rng} }
func (n *N) Text() string       { return n.text }
func (n *N) Value() string      { return n.value }

func (n *N) Parent() syntax.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *N) Children() []syntax.Node {
	out := make([]syntax.Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Builder assembles a tree bottom-up: call Node/Token to create leaves and
// interior nodes (Node sets each child's parent pointer and infers a range
// left as -1 from its children), then Finish to wrap the root in a Tree
// with its line index.
type Builder struct {
	source string
}

func NewBuilder(source string) *Builder { return &Builder{source: source} }

// Token creates a leaf node spanning [start,end) with the given kind and
// literal value (e.g. an identifier or a string/number literal's text).
func (b *Builder) Token(kind syntax.Kind, start, end int, value string) *N {
	return &N{kind: kind, rng: syntax.Range{Start: start, End: end}, text: b.slice(start, end), value: value}
}

// Node creates an interior node owning children, inferring its range as the
// union of its children's ranges when start/end are both -1.
func (b *Builder) Node(kind syntax.Kind, start, end int, children ...*N) *N {
	if start < 0 || end < 0 {
		start, end = rangeOf(children)
	}
	n := &N{kind: kind, rng: syntax.Range{Start: start, End: end}, text: b.slice(start, end), children: children}
	for _, c := range children {
		c.parent = n
	}
	return n
}

func rangeOf(children []*N) (int, int) {
	if len(children) == 0 {
		return 0, 0
	}
	start, end := children[0].rng.Start, children[0].rng.End
	for _, c := range children[1:] {
		if c.rng.Start < start {
			start = c.rng.Start
		}
		if c.rng.End > end {
			end = c.rng.End
		}
	}
	return start, end
}

func (b *Builder) slice(start, end int) string {
	if start < 0 || end > len(b.source) || start > end {
		return ""
	}
	return b.source[start:end]
}

// Finish wraps root into a syntax.Tree for the given file, with a LineIndex
// built from the builder's source text.
func (b *Builder) Finish(file syntax.FileId, root *N, errs ...syntax.ParseError) *syntax.Tree {
	return &syntax.Tree{
		File:   file,
		Root:   root,
		Errors: errs,
		Lines:  syntax.NewLineIndex(b.source),
		Source: b.source,
	}
}
