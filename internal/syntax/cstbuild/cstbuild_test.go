package cstbuild

import (
	"testing"

	"github.com/lumenforge/lumen/internal/syntax"
)

func TestBuilder_TokenSlicesSourceText(t *testing.T) {
	b := NewBuilder("local x = 1")
	tok := b.Token(syntax.KindNameExpr, 6, 7, "x")
	if tok.Text() != "x" {
		t.Fatalf("expected Token.Text to slice the source, got %q", tok.Text())
	}
	if tok.Value() != "x" {
		t.Fatalf("expected Token.Value to be the literal passed in, got %q", tok.Value())
	}
	if tok.Parent() != nil {
		t.Fatalf("expected a freshly built token to have no parent")
	}
}

func TestBuilder_NodeInfersRangeFromChildrenWhenUnspecified(t *testing.T) {
	b := NewBuilder("local x = 1")
	name := b.Token(syntax.KindNameExpr, 6, 7, "x")
	lit := b.Token(syntax.KindLiteralInteger, 10, 11, "1")
	stat := b.Node(syntax.KindLocalStat, -1, -1, name, lit)

	if stat.Range().Start != 6 || stat.Range().End != 11 {
		t.Fatalf("expected inferred range [6,11), got %v", stat.Range())
	}
	if stat.Text() != "x = 1" {
		t.Fatalf("expected the inferred range to slice the source, got %q", stat.Text())
	}
}

func TestBuilder_NodeSetsParentPointersOnChildren(t *testing.T) {
	b := NewBuilder("x")
	name := b.Token(syntax.KindNameExpr, 0, 1, "x")
	wrap := b.Node(syntax.KindParenExpr, 0, 1, name)

	if name.Parent() != syntax.Node(wrap) {
		t.Fatalf("expected Node to set the child's parent pointer to the new node")
	}
	children := wrap.Children()
	if len(children) != 1 || children[0] != syntax.Node(name) {
		t.Fatalf("expected Children() to expose the same child back, got %+v", children)
	}
}

func TestBuilder_NodeWithExplicitRangeDoesNotInferFromChildren(t *testing.T) {
	b := NewBuilder("local x = 1")
	name := b.Token(syntax.KindNameExpr, 6, 7, "x")
	stat := b.Node(syntax.KindLocalStat, 0, 11, name)
	if stat.Range().Start != 0 || stat.Range().End != 11 {
		t.Fatalf("expected the explicit range to be kept as-is, got %v", stat.Range())
	}
}

func TestBuilder_SliceOutOfBoundsReturnsEmpty(t *testing.T) {
	b := NewBuilder("abc")
	tok := b.Token(syntax.KindNameExpr, 0, 100, "oops")
	if tok.Text() != "" {
		t.Fatalf("expected an out-of-bounds slice to return empty text, got %q", tok.Text())
	}
}

func TestBuilder_FinishBuildsTreeWithLineIndexAndErrors(t *testing.T) {
	b := NewBuilder("local x = 1")
	root := b.Node(syntax.KindChunk, 0, 11)
	perr := syntax.ParseError{Message: "unexpected eof", Range: syntax.Range{Start: 11, End: 11}}

	tree := b.Finish(1, root, perr)
	if tree.File != 1 {
		t.Fatalf("expected the tree's File to be set")
	}
	if tree.Root != syntax.Node(root) {
		t.Fatalf("expected the tree's Root to be the given node")
	}
	if len(tree.Errors) != 1 || tree.Errors[0].Message != "unexpected eof" {
		t.Fatalf("expected the parse error forwarded verbatim, got %+v", tree.Errors)
	}
	if tree.Source != "local x = 1" {
		t.Fatalf("expected the tree's Source set from the builder, got %q", tree.Source)
	}
	if tree.Lines == nil {
		t.Fatalf("expected a non-nil LineIndex built from the source")
	}
}
