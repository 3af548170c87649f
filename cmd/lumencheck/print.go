package main

import (
	"fmt"
	"io"

	"github.com/lumenforge/lumen/internal/diag"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
	ansiDim    = "\x1b[2m"
)

// printDiagnostics writes one line per diagnostic, ANSI-colored by
// severity when colorize is true (cmd/lumencheck detects a TTY via
// go-isatty rather than always emitting color codes a pipe would have to
// strip itself).
func printDiagnostics(w io.Writer, path string, diags []diag.Diagnostic, colorize bool) {
	for _, d := range diags {
		sev := severityLabel(d.Severity)
		if colorize {
			sev = severityColor(d.Severity) + sev + ansiReset
		}
		code := string(d.Code)
		if colorize && code != "" {
			code = ansiDim + code + ansiReset
		}
		fmt.Fprintf(w, "%s:%d: %s: %s %s\n", path, d.Range.Start, sev, d.Message, code)
	}
}

func severityLabel(s diag.Severity) string {
	switch s {
	case diag.SeverityError:
		return "error"
	case diag.SeverityWarning:
		return "warning"
	case diag.SeverityInformation:
		return "info"
	case diag.SeverityHint:
		return "hint"
	default:
		return "note"
	}
}

func severityColor(s diag.Severity) string {
	switch s {
	case diag.SeverityError:
		return ansiRed
	case diag.SeverityWarning:
		return ansiYellow
	default:
		return ansiCyan
	}
}
