// Package diag defines the error/diagnostic vocabulary spec.md §7 names:
// a user-visible Diagnostic with a stable Code, and the internal
// InferFailure sum type inference failures carry so the Unresolved
// Resolver's worklist can classify and retry them. Grounded on the
// teacher's diagnostics.DiagnosticError (internal/analyzer/analyzer.go),
// which carries a Code field keyed into a dedup set of
// "line:col:code" strings — Lumen reuses that Code-carrying shape for its
// own Diagnostic rather than inventing a fresh error vocabulary.
package diag

import (
	"fmt"

	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// Severity mirrors the LSP DiagnosticSeverity ordinals (1=Error..4=Hint) so
// a host can forward it without translation.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Code is a stable diagnostic identifier (spec.md §4.10's "each checker
// declares support_codes()").
type Code string

const (
	CodeMissingReturn    Code = "MissingReturn"
	CodeRedundantReturn  Code = "RedundantReturn"
	CodeMissingParameter Code = "MissingParameter"
	CodeUndefinedGlobal  Code = "UndefinedGlobal"
	CodeUnusedLocal      Code = "UnusedLocal"
	CodeDeprecated       Code = "Deprecated"
	CodeTypeNotMatch     Code = "TypeNotMatch"
	CodeTypeNotFound     Code = "TypeNotFound"
	CodeInvalidGeneric   Code = "InvalidGeneric"
)

// Diagnostic is the user-visible unit spec.md §4.10/§7 describes: code,
// severity, range, message, and an optional structured payload (e.g. the
// expected/actual types a TypeNotMatch carries for a host's quick-fix).
type Diagnostic struct {
	Code     Code
	Severity Severity
	Range    syntax.Range
	Message  string
	Data     any
}

// DedupKey mirrors the teacher's "line:col:code" dedup key, computed from a
// byte offset since Lumen's core never does line/col translation itself
// (that's the VFS's LineIndex, an external collaborator per spec.md §6.1).
func (d Diagnostic) DedupKey() string {
	return fmt.Sprintf("%d:%s", d.Range.Start, d.Code)
}

// InferFailureKind mirrors infer.FailReason without internal/infer
// depending back on internal/diag (spec.md §7's "Infer failure" variants).
type InferFailureKind int

const (
	InferNone InferFailureKind = iota
	InferUnResolveDeclType
	InferUnResolveMemberType
	InferUnResolveSignatureReturn
	InferFieldNotFound
)

// InferFailure is the internal, never-surfaced error spec.md §7 names: it
// implements error only so the resolver's worklist items can be wrapped
// and unwrapped with errors.As when a caller wants a Go error value (e.g.
// from a CLI command that reports "could not fully resolve" diagnostics).
type InferFailure struct {
	Kind   InferFailureKind
	Decl   types.DeclId
	Member types.MemberId
	Sig    types.SignatureId
	Field  string
}

func (f InferFailure) Error() string {
	switch f.Kind {
	case InferUnResolveDeclType:
		return fmt.Sprintf("unresolved declaration type at offset %d", f.Decl.Offset)
	case InferUnResolveMemberType:
		return fmt.Sprintf("unresolved member type for %q", f.Field)
	case InferUnResolveSignatureReturn:
		return fmt.Sprintf("unresolved signature return at offset %d", f.Sig.Pos)
	case InferFieldNotFound:
		return fmt.Sprintf("field %q not found", f.Field)
	default:
		return "no inference failure"
	}
}
