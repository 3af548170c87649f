package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lumenforge/lumen/internal/diag"
	"github.com/lumenforge/lumen/internal/syntax"
)

func TestPrintDiagnostics_PlainFormat(t *testing.T) {
	var buf bytes.Buffer
	diags := []diag.Diagnostic{
		{Code: diag.CodeUndefinedGlobal, Severity: diag.SeverityError, Range: syntax.Range{Start: 12}, Message: "undefined global \"foo\""},
	}
	printDiagnostics(&buf, "a.lua", diags, false)
	got := buf.String()
	if !strings.Contains(got, "a.lua:12: error: undefined global \"foo\"") {
		t.Fatalf("unexpected output: %q", got)
	}
	if strings.Contains(got, "\x1b[") {
		t.Fatalf("expected no ANSI codes when colorize is false, got %q", got)
	}
}

func TestPrintDiagnostics_ColorizedWrapsSeverityAndCode(t *testing.T) {
	var buf bytes.Buffer
	diags := []diag.Diagnostic{
		{Code: diag.CodeUnusedLocal, Severity: diag.SeverityHint, Range: syntax.Range{Start: 0}, Message: "unused local"},
	}
	printDiagnostics(&buf, "a.lua", diags, true)
	got := buf.String()
	if !strings.Contains(got, ansiCyan+"hint"+ansiReset) {
		t.Fatalf("expected colorized hint severity, got %q", got)
	}
}

func TestSeverityLabel(t *testing.T) {
	cases := map[diag.Severity]string{
		diag.SeverityError:       "error",
		diag.SeverityWarning:     "warning",
		diag.SeverityInformation: "info",
		diag.SeverityHint:        "hint",
	}
	for sev, want := range cases {
		if got := severityLabel(sev); got != want {
			t.Fatalf("severityLabel(%v) = %q, want %q", sev, got, want)
		}
	}
}
