package db

import "github.com/lumenforge/lumen/internal/syntax"

// DiagAction is the @diagnostic tag's action keyword (spec.md §4.4/§4.10).
type DiagAction int

const (
	ActionDisable DiagAction = iota
	ActionEnable
	ActionDisableNextLine
	ActionDisableLine
)

// DiagRegion is one enable/disable region registered for a diagnostic code.
type DiagRegion struct {
	Action DiagAction
	Code   string // empty means "all codes"
	Range  syntax.Range
}

// DiagnosticIndex holds per-file enable/disable ranges for diagnostic codes
// (spec.md §3.9/§4.2).
type DiagnosticIndex struct {
	regions map[syntax.FileId][]DiagRegion
}

func NewDiagnosticIndex() *DiagnosticIndex {
	return &DiagnosticIndex{regions: make(map[syntax.FileId][]DiagRegion)}
}

func (idx *DiagnosticIndex) AddRegion(file syntax.FileId, r DiagRegion) {
	idx.regions[file] = append(idx.regions[file], r)
}

// IsSuppressed reports whether code is disabled at offset in file, by a
// disable/disable-line/disable-next-line region that is not subsequently
// overridden by an enable region at the same or a more specific range.
func (idx *DiagnosticIndex) IsSuppressed(file syntax.FileId, code string, offset int) bool {
	suppressed := false
	for _, r := range idx.regions[file] {
		if !r.Range.Contains(offset) {
			continue
		}
		if r.Code != "" && r.Code != code {
			continue
		}
		switch r.Action {
		case ActionDisable, ActionDisableLine, ActionDisableNextLine:
			suppressed = true
		case ActionEnable:
			suppressed = false
		}
	}
	return suppressed
}

func (idx *DiagnosticIndex) Remove(file syntax.FileId) {
	delete(idx.regions, file)
}
