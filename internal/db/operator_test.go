package db

import (
	"testing"

	"github.com/lumenforge/lumen/internal/types"
)

func TestOperatorIndex_FirstRegisteredWins(t *testing.T) {
	idx := NewOperatorIndex()
	first := types.SignatureId{File: 1, Pos: 0}
	second := types.SignatureId{File: 1, Pos: 10}

	idx.Add(1, "Vector", OpAdd, first)
	idx.Add(1, "Vector", OpAdd, second)

	got, ok := idx.Get("Vector", OpAdd)
	if !ok || got != first {
		t.Fatalf("expected the first-registered signature to win, got %v", got)
	}
}

func TestOperatorIndex_DistinctKindsDoNotCollide(t *testing.T) {
	idx := NewOperatorIndex()
	add := types.SignatureId{File: 1, Pos: 0}
	sub := types.SignatureId{File: 1, Pos: 10}
	idx.Add(1, "Vector", OpAdd, add)
	idx.Add(1, "Vector", OpSub, sub)

	gotAdd, _ := idx.Get("Vector", OpAdd)
	gotSub, _ := idx.Get("Vector", OpSub)
	if gotAdd != add || gotSub != sub {
		t.Fatalf("expected distinct operator kinds to resolve independently, got add=%v sub=%v", gotAdd, gotSub)
	}
}

func TestOperatorIndex_Remove(t *testing.T) {
	idx := NewOperatorIndex()
	idx.Add(1, "Vector", OpAdd, types.SignatureId{File: 1, Pos: 0})
	idx.Remove(1)
	if _, ok := idx.Get("Vector", OpAdd); ok {
		t.Fatalf("expected operator registration gone after Remove")
	}
}
