// Package diagnostic implements the Diagnostic Engine (spec.md §4.10): a
// small registry of checkers, each declaring the codes it produces, run
// over a semantic.Model and filtered by range-based suppression,
// workspace force-enable/disable sets, meta-file status and per-code
// defaults. Grounded on the teacher's internal/analyzer diagnostic
// collection (analyzer.go's addError/addWarning writing into a dedup set
// keyed by "line:col:code"), generalized from funxy's fixed built-in error
// set to a pluggable Checker list.
package diagnostic

import (
	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/diag"
	"github.com/lumenforge/lumen/internal/semantic"
	"github.com/lumenforge/lumen/internal/syntax"
)

// Context is what a Checker gets to walk (spec.md §4.10: "walks the
// semantic model to produce (code, range, message, data?)").
type Context struct {
	Model *semantic.Model
	Index *db.Index
	Tree  *syntax.Tree
}

// Checker is one diagnostic rule.
type Checker interface {
	SupportCodes() []diag.Code
	Check(ctx *Context) []diag.Diagnostic
}

// Engine runs a fixed checker list and applies the four filters spec.md
// §4.10 lists, in order.
type Engine struct {
	checkers     []Checker
	defaultOff   map[diag.Code]bool
	forceEnable  map[diag.Code]bool
	forceDisable map[diag.Code]bool
}

// Default checkers (spec.md §4.10's "representative checkers" list).
func Default() *Engine {
	return New(
		parseErrorChecker{},
		missingReturnChecker{},
		redundantReturnChecker{},
		missingParameterChecker{},
		deprecatedChecker{},
		unusedLocalChecker{},
		undefinedGlobalChecker{},
	)
}

func New(checkers ...Checker) *Engine {
	return &Engine{
		checkers:     checkers,
		defaultOff:   make(map[diag.Code]bool),
		forceEnable:  make(map[diag.Code]bool),
		forceDisable: make(map[diag.Code]bool),
	}
}

// SetDefaultOff marks codes as off unless force-enabled (spec.md §6.3's
// "per-code diagnostic enable/disable" config option, threaded in via the
// workspace manager rather than read from disk here).
func (e *Engine) SetDefaultOff(codes ...diag.Code) {
	for _, c := range codes {
		e.defaultOff[c] = true
	}
}

// SetForceEnable/SetForceDisable implement spec.md §4.10's workspace-level
// override set, which outranks both the per-code default and (for
// force-disable) even an in-source @diagnostic enable region.
func (e *Engine) SetForceEnable(codes ...diag.Code) {
	for _, c := range codes {
		e.forceEnable[c] = true
	}
}

func (e *Engine) SetForceDisable(codes ...diag.Code) {
	for _, c := range codes {
		e.forceDisable[c] = true
	}
}

// DiagnoseFile runs every checker over model and applies the four filters
// spec.md §4.10 names, in the stated order.
func (e *Engine) DiagnoseFile(model *semantic.Model) []diag.Diagnostic {
	if model.Index.Meta.IsMeta(model.File) {
		return nil
	}
	ctx := &Context{Model: model, Index: model.Index, Tree: model.Tree}
	var out []diag.Diagnostic
	for _, c := range e.checkers {
		for _, d := range c.Check(ctx) {
			if e.forceDisable[d.Code] {
				continue
			}
			if !e.forceEnable[d.Code] {
				if e.defaultOff[d.Code] {
					continue
				}
				if model.Index.Diagnostic.IsSuppressed(model.File, string(d.Code), d.Range.Start) {
					continue
				}
			}
			out = append(out, d)
		}
	}
	return out
}
