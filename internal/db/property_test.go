package db

import (
	"testing"

	"github.com/lumenforge/lumen/internal/types"
)

func TestPropertyIndex_AttachMutatesSameInstanceAcrossCalls(t *testing.T) {
	idx := NewPropertyIndex()
	owner := PropertyOwnerId{Kind: OwnerKindSignature, Signature: types.SignatureId{File: 1, Pos: 10}}

	idx.Attach(1, owner, func(p *Properties) { p.Deprecated = true })
	idx.Attach(1, owner, func(p *Properties) { p.Description = "does a thing" })

	p, ok := idx.Get(owner)
	if !ok {
		t.Fatalf("expected properties registered for owner")
	}
	if !p.Deprecated || p.Description != "does a thing" {
		t.Fatalf("expected both mutations to accumulate on the same Properties instance, got %+v", p)
	}
}

func TestPropertyIndex_RemoveShedsOnlyGivenFile(t *testing.T) {
	idx := NewPropertyIndex()
	a := PropertyOwnerId{Kind: OwnerKindSignature, Signature: types.SignatureId{File: 1, Pos: 0}}
	b := PropertyOwnerId{Kind: OwnerKindSignature, Signature: types.SignatureId{File: 2, Pos: 0}}

	idx.Attach(1, a, func(p *Properties) { p.Deprecated = true })
	idx.Attach(2, b, func(p *Properties) { p.Deprecated = true })

	idx.Remove(1)

	if _, ok := idx.Get(a); ok {
		t.Fatalf("expected file 1's property to be removed")
	}
	if _, ok := idx.Get(b); !ok {
		t.Fatalf("expected file 2's property to survive")
	}
}
