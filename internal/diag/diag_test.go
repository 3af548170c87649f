package diag

import (
	"testing"

	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

func TestDiagnostic_DedupKeyIncludesOffsetAndCode(t *testing.T) {
	a := Diagnostic{Code: CodeUnusedLocal, Range: syntax.Range{Start: 10, End: 15}}
	b := Diagnostic{Code: CodeUnusedLocal, Range: syntax.Range{Start: 10, End: 20}}
	if a.DedupKey() != b.DedupKey() {
		t.Fatalf("two diagnostics at the same start offset and code must share a dedup key: %q vs %q", a.DedupKey(), b.DedupKey())
	}
	c := Diagnostic{Code: CodeDeprecated, Range: syntax.Range{Start: 10, End: 15}}
	if a.DedupKey() == c.DedupKey() {
		t.Fatalf("diagnostics with different codes must not share a dedup key")
	}
}

func TestInferFailure_ErrorMessages(t *testing.T) {
	f := InferFailure{Kind: InferUnResolveDeclType, Decl: types.DeclId{File: 1, Offset: 42}}
	if got := f.Error(); got == "" || got == "no inference failure" {
		t.Fatalf("expected a descriptive message for InferUnResolveDeclType, got %q", got)
	}

	none := InferFailure{}
	if none.Error() != "no inference failure" {
		t.Fatalf("expected the zero-value InferFailure to report no failure, got %q", none.Error())
	}
}
