package db

import (
	"testing"

	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

func TestTypeAssertion_NegateFlipsExistAndNotExist(t *testing.T) {
	exist := TypeAssertion{Kind: AssertExist}
	if got := exist.Negate().Kind; got != AssertNotExist {
		t.Fatalf("expected Negate(Exist) == NotExist, got %v", got)
	}
	notExist := TypeAssertion{Kind: AssertNotExist}
	if got := notExist.Negate().Kind; got != AssertExist {
		t.Fatalf("expected Negate(NotExist) == Exist, got %v", got)
	}
}

func TestTypeAssertion_NegateNarrowBecomesRemove(t *testing.T) {
	narrow := TypeAssertion{Kind: AssertNarrow, Type: types.String}
	neg := narrow.Negate()
	if neg.Kind != AssertRemove || neg.Type.Tag() != types.TagString {
		t.Fatalf("expected Negate(Narrow(string)) == Remove(string), got %+v", neg)
	}
}

func TestTypeAssertion_NegateReassignDegradesToIdentity(t *testing.T) {
	a := TypeAssertion{Kind: AssertReassign}
	if got := a.Negate(); got.Kind != AssertReassign {
		t.Fatalf("expected Reassign to negate to itself, got %+v", got)
	}
}

func TestTypeAssertion_TightenExistRemovesNil(t *testing.T) {
	a := TypeAssertion{Kind: AssertExist}
	got := a.Tighten(types.Nullable{Elem: types.String})
	if got.Tag() != types.TagString {
		t.Fatalf("expected AssertExist to strip Nil from a Nullable(String), got %v", got)
	}
}

func TestTypeAssertion_TightenNarrowAppliesNarrow(t *testing.T) {
	a := TypeAssertion{Kind: AssertNarrow, Type: types.String}
	got := a.Tighten(types.Unknown)
	if got.Tag() != types.TagString {
		t.Fatalf("expected AssertNarrow on Unknown to yield String, got %v", got)
	}
}

func TestFlowChain_AssertionsAtFiltersByRange(t *testing.T) {
	c := &FlowChain{Variable: "x"}
	c.Assertions = []TypeAssertion{
		{Kind: AssertExist, Range: syntax.Range{Start: 0, End: 10}},
		{Kind: AssertNarrow, Type: types.String, Range: syntax.Range{Start: 20, End: 30}},
	}

	at5 := c.AssertionsAt(5)
	if len(at5) != 1 || at5[0].Kind != AssertExist {
		t.Fatalf("expected only the first assertion active at pos 5, got %+v", at5)
	}
	at25 := c.AssertionsAt(25)
	if len(at25) != 1 || at25[0].Kind != AssertNarrow {
		t.Fatalf("expected only the second assertion active at pos 25, got %+v", at25)
	}
	if got := c.AssertionsAt(15); len(got) != 0 {
		t.Fatalf("expected no assertions active at pos 15, got %+v", got)
	}
}

func TestFlowIndex_GetOrCreateIsIdempotentPerFileFlowName(t *testing.T) {
	idx := NewFlowIndex()
	a := idx.GetOrCreate(1, FileScopeFlow, "x")
	b := idx.GetOrCreate(1, FileScopeFlow, "x")
	if a != b {
		t.Fatalf("expected GetOrCreate to return the same chain instance for the same key")
	}
	if _, ok := idx.Get(1, FileScopeFlow, "y"); ok {
		t.Fatalf("expected no chain registered for a different variable name")
	}
}

func TestFlowIndex_RemoveDropsEntireFileMap(t *testing.T) {
	idx := NewFlowIndex()
	idx.GetOrCreate(1, FileScopeFlow, "x")
	idx.Remove(1)
	if _, ok := idx.Get(1, FileScopeFlow, "x"); ok {
		t.Fatalf("expected the chain to be gone after Remove")
	}
}
