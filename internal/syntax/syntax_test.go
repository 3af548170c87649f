package syntax

import "testing"

func TestRange_ContainsIsHalfOpen(t *testing.T) {
	r := Range{Start: 5, End: 10}
	if !r.Contains(5) {
		t.Fatalf("expected Contains(5) true (inclusive start)")
	}
	if r.Contains(10) {
		t.Fatalf("expected Contains(10) false (exclusive end)")
	}
	if r.Contains(4) || r.Contains(11) {
		t.Fatalf("expected offsets outside the range to be excluded")
	}
}

func TestRange_Before(t *testing.T) {
	a := Range{Start: 0, End: 5}
	b := Range{Start: 5, End: 10}
	if !a.Before(b) {
		t.Fatalf("expected a adjacent-ending-at-b's-start to be Before b")
	}
	if b.Before(a) {
		t.Fatalf("did not expect b to be Before a")
	}
}

func TestKind_IsDocCoversOnlyDocRange(t *testing.T) {
	if !KindDocComment.IsDoc() {
		t.Fatalf("expected KindDocComment to be a doc kind")
	}
	if !KindDocTypeCall.IsDoc() {
		t.Fatalf("expected KindDocTypeCall (last doc kind) to be a doc kind")
	}
	if KindChunk.IsDoc() || KindNameExpr.IsDoc() {
		t.Fatalf("did not expect non-doc kinds to report IsDoc true")
	}
}

func TestLineIndex_PositionAndOffsetRoundTrip(t *testing.T) {
	src := "local x = 1\nlocal y = 2\nreturn x + y"
	li := NewLineIndex(src)

	line, col := li.Position(0)
	if line != 0 || col != 0 {
		t.Fatalf("expected (0,0) for offset 0, got (%d,%d)", line, col)
	}

	secondLineStart := len("local x = 1\n")
	line, col = li.Position(secondLineStart)
	if line != 1 || col != 0 {
		t.Fatalf("expected (1,0) at the start of the second line, got (%d,%d)", line, col)
	}

	midSecondLine := secondLineStart + 6
	line, col = li.Position(midSecondLine)
	if line != 1 || col != 6 {
		t.Fatalf("expected (1,6) mid second line, got (%d,%d)", line, col)
	}

	if got := li.Offset(1, 0); got != secondLineStart {
		t.Fatalf("expected Offset(1,0) to round-trip to %d, got %d", secondLineStart, got)
	}
	if got := li.Offset(line, col); got != midSecondLine {
		t.Fatalf("expected Offset round-trip of (%d,%d) to be %d, got %d", line, col, midSecondLine, got)
	}
}

func TestLineIndex_OffsetClampsOutOfRangeLines(t *testing.T) {
	li := NewLineIndex("abc\ndef")
	if got := li.Offset(-1, 0); got != 0 {
		t.Fatalf("expected a negative line to clamp to offset 0, got %d", got)
	}
	// Only 2 lines exist (indices 0,1); requesting line 5 should clamp to the
	// last line rather than panic on an out-of-range slice index.
	if got := li.Offset(5, 0); got != li.Offset(1, 0) {
		t.Fatalf("expected an out-of-range line to clamp to the last line")
	}
}

type fakeNode struct {
	kind     Kind
	rng      Range
	children []Node
}

func (f *fakeNode) Kind() Kind        { return f.kind }
func (f *fakeNode) Range() Range      { return f.rng }
func (f *fakeNode) Id() Id            { return Id{Kind: f.kind, Range: f.rng} }
func (f *fakeNode) Parent() Node      { return nil }
func (f *fakeNode) Children() []Node  { return f.children }
func (f *fakeNode) Text() string      { return "" }

func TestFindToken_DescendsToDeepestContainingNode(t *testing.T) {
	leaf := &fakeNode{kind: KindNameExpr, rng: Range{Start: 2, End: 5}}
	mid := &fakeNode{kind: KindCallExpr, rng: Range{Start: 0, End: 8}, children: []Node{leaf}}
	root := &fakeNode{kind: KindChunk, rng: Range{Start: 0, End: 10}, children: []Node{mid}}

	got := FindToken(root, 3)
	if got != Node(leaf) {
		t.Fatalf("expected FindToken to descend to the leaf, got kind %v", got.Kind())
	}

	// An offset covered by root but no child stops at the last node reached.
	got = FindToken(root, 9)
	if got != Node(root) {
		t.Fatalf("expected FindToken to stop at root when no child covers the offset")
	}
}
