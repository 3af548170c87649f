package db

import (
	"testing"

	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

func TestWorkList_EnqueueAndItems(t *testing.T) {
	w := NewWorkList()
	item := UnResolveItem{Kind: UnResolveDeclKind, Decl: UnResolveDecl{DeclId: types.DeclId{File: 1, Offset: 0}}}
	w.Enqueue(1, item)

	got := w.Items(1)
	if len(got) != 1 || got[0].Kind != UnResolveDeclKind {
		t.Fatalf("expected the enqueued item back, got %+v", got)
	}
	if len(w.Items(2)) != 0 {
		t.Fatalf("expected no items for an unrelated file")
	}
}

func TestWorkList_ReplaceWithEmptyDeletesEntry(t *testing.T) {
	w := NewWorkList()
	w.Enqueue(1, UnResolveItem{Kind: UnResolveDeclKind})
	w.Replace(1, nil)
	if len(w.Items(1)) != 0 {
		t.Fatalf("expected Replace(nil) to clear the file's items")
	}
}

func TestWorkList_ReplaceKeepsOnlyGivenRemaining(t *testing.T) {
	w := NewWorkList()
	w.Enqueue(1, UnResolveItem{Kind: UnResolveDeclKind})
	w.Enqueue(1, UnResolveItem{Kind: UnResolveMemberKind})

	remaining := []UnResolveItem{{Kind: UnResolveMemberKind}}
	w.Replace(1, remaining)

	got := w.Items(1)
	if len(got) != 1 || got[0].Kind != UnResolveMemberKind {
		t.Fatalf("expected only the remaining item kept, got %+v", got)
	}
}

func TestWorkList_Remove(t *testing.T) {
	w := NewWorkList()
	w.Enqueue(1, UnResolveItem{Kind: UnResolveIterVarKind, Iter: UnResolveIterVar{Iter: syntax.Id{Kind: syntax.KindCallExpr}}})
	w.Remove(1)
	if len(w.Items(1)) != 0 {
		t.Fatalf("expected Remove to clear the file's items")
	}
}
