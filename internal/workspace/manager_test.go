package workspace

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lumenforge/lumen/internal/config"
	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/syntax/cstbuild"
	"github.com/lumenforge/lumen/internal/types"
)

func localXTree(file syntax.FileId) *syntax.Tree {
	b := cstbuild.NewBuilder("local x = 1")
	name := b.Token(syntax.KindNameExpr, 6, 7, "x")
	lit := b.Token(syntax.KindLiteralInteger, 10, 11, "1")
	localStat := b.Node(syntax.KindLocalStat, 0, 11, name, lit)
	chunk := b.Node(syntax.KindChunk, 0, 11, localStat)
	return b.Finish(file, chunk)
}

func TestUpdateIndex_RunsPipelineAndIsQueryable(t *testing.T) {
	m := New(config.Default(), nil)
	tree := localXTree(1)

	if err := m.UpdateIndex(context.Background(), []*syntax.Tree{tree}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := m.Tree(1)
	if !ok || got != tree {
		t.Fatalf("expected Tree(1) to return the analyzed tree")
	}

	m.RQuery(func(index *db.Index) {
		d, ok := index.Decl.FindDeclAt(1, 6)
		if !ok || d.Type.Tag() != types.TagIntegerConst {
			t.Fatalf("expected x typed IntegerConst after UpdateIndex, got %v ok=%v", d, ok)
		}
	})
}

func TestRemoveIndex_ShedsFacts(t *testing.T) {
	m := New(config.Default(), nil)
	tree := localXTree(1)
	if err := m.UpdateIndex(context.Background(), []*syntax.Tree{tree}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.RemoveIndex(context.Background(), []syntax.FileId{1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.Tree(1); ok {
		t.Fatalf("expected Tree(1) to be gone after RemoveIndex")
	}
}

func TestUpdateIndex_CanceledContextStopsPartway(t *testing.T) {
	m := New(config.Default(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.UpdateIndex(ctx, []*syntax.Tree{localXTree(1)})
	if err == nil {
		t.Fatalf("expected a canceled context to abort the batch")
	}
}

func TestDebouncer_CollapsesRapidTriggersIntoOneCall(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var mu sync.Mutex
	calls := 0
	fn := func() {
		mu.Lock()
		calls++
		mu.Unlock()
	}

	d.Trigger(fn)
	d.Trigger(fn)
	d.Trigger(fn)

	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected exactly one call after rapid triggers, got %d", calls)
	}
}

func TestDebouncer_StopPreventsPendingCall(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var mu sync.Mutex
	called := false
	d.Trigger(func() {
		mu.Lock()
		called = true
		mu.Unlock()
	})
	d.Stop()

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if called {
		t.Fatalf("expected Stop to cancel the pending call")
	}
}
