package db

import (
	"testing"

	"github.com/lumenforge/lumen/internal/types"
)

func TestSignature_ReturnTypeSingleVsMulti(t *testing.T) {
	none := &Signature{}
	if none.ReturnType().Tag() != types.TagUnknown {
		t.Fatalf("expected Unknown for a signature with no returns")
	}

	single := &Signature{Returns: []ReturnInfo{{Type: types.String}}}
	if single.ReturnType().Tag() != types.TagString {
		t.Fatalf("expected String for a single-return signature")
	}

	multi := &Signature{Returns: []ReturnInfo{{Type: types.String}, {Type: types.Integer}}}
	mr, ok := multi.ReturnType().(types.MultiReturn)
	if !ok || len(mr.Values) != 2 {
		t.Fatalf("expected a MultiReturn of 2 values, got %v", multi.ReturnType())
	}
}

func TestSignature_HasVariadicReturn(t *testing.T) {
	variadic := &Signature{Returns: []ReturnInfo{{Type: types.Variadic{Elem: types.String}}}}
	if !variadic.HasVariadicReturn() {
		t.Fatalf("expected HasVariadicReturn true for a trailing Variadic")
	}
	plain := &Signature{Returns: []ReturnInfo{{Type: types.String}}}
	if plain.HasVariadicReturn() {
		t.Fatalf("expected HasVariadicReturn false for a plain return")
	}
}

func TestSignatureIndex_GetOrCreateIsIdempotent(t *testing.T) {
	idx := NewSignatureIndex()
	id := types.SignatureId{File: 1, Pos: 10}
	a := idx.GetOrCreate(id)
	b := idx.GetOrCreate(id)
	if a != b {
		t.Fatalf("expected GetOrCreate to return the same instance for the same id")
	}
}

func TestSignatureIndex_Remove(t *testing.T) {
	idx := NewSignatureIndex()
	id := types.SignatureId{File: 1, Pos: 10}
	idx.GetOrCreate(id)
	idx.Remove(1)
	if _, ok := idx.Get(id); ok {
		t.Fatalf("expected signature gone after Remove")
	}
}
