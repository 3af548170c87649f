// Package config defines Settings (spec.md §6.3): the analysis engine's
// configuration surface. Grounded on the teacher's internal/ext.Config
// (yaml.v3-tagged struct unmarshaled from a project config file), adapted
// from funxy's Go-binding dependency list to the knobs spec.md §6.3 names
// for a Lua analysis workspace. Lumen never reads the filesystem itself —
// config *loading* is an external collaborator exactly as spec.md's scope
// section requires — this package only defines the shape and a zero-config
// default.
package config

import (
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Settings is the analysis engine's configuration (spec.md §6.3).
type Settings struct {
	Runtime     Runtime     `yaml:"runtime"`
	Workspace   Workspace   `yaml:"workspace"`
	Strict      Strict      `yaml:"strict"`
	Resource    Resource    `yaml:"resource"`
	Diagnostics Diagnostics `yaml:"diagnostics"`
}

// Runtime selects which dialect extensions beyond baseline Lua 5.1 the
// Flow/Lua analyzers should accept without diagnosing a syntax mismatch
// (e.g. "goto", "bitwise-ops", "integer-division" for 5.3/5.4, "luajit-ffi"
// for LuaJIT) — spec.md §1's "Lua 5.1–5.4 / LuaJIT" surface, made
// selectable per workspace instead of assumed maximal.
type Runtime struct {
	Extensions []string `yaml:"extensions"`
}

// Workspace controls which files the manager feeds to the pipeline.
type Workspace struct {
	// IgnoreGlobs excludes matching paths from analysis (vendor trees,
	// generated code), matched with doublestar so "**/vendor/**" style
	// patterns work the way they do in the sibling example repos' configs.
	IgnoreGlobs []string `yaml:"ignore_globs"`
	// Encoding is the source file encoding; "utf-8" unless a project pins
	// "latin1"/"cp1252" for legacy scripts.
	Encoding string `yaml:"encoding"`
}

// Strict toggles stricter-than-default checking spec.md §6.3 allows a host
// to opt into.
type Strict struct {
	// RequirePath rejects a require() argument that isn't a string literal
	// resolvable against the Module Index (spec.md §3.8), rather than
	// silently treating it as Unknown.
	RequirePath bool `yaml:"require_path"`
	// TypeCall rejects a function call whose callee isn't a Signature/
	// DocFunction/table with a __call metamethod, rather than falling back
	// to Unknown for any other callee type.
	TypeCall bool `yaml:"type_call"`
}

// Resource lists extra search roots for require() resolution beyond the
// workspace root (spec.md §3.8).
type Resource struct {
	Paths []string `yaml:"paths"`
}

// Diagnostics is the per-code default enable/disable set the Diagnostic
// Engine's workspace-level filter stage reads (spec.md §4.10).
type Diagnostics struct {
	Enable  []string `yaml:"enable"`
	Disable []string `yaml:"disable"`
}

// Default returns the zero-config baseline: UTF-8 encoding, no ignore
// globs, no strict checks, no extra resource paths, every diagnostic code
// at its built-in default.
func Default() Settings {
	return Settings{
		Workspace: Workspace{Encoding: "utf-8"},
	}
}

// Parse deserializes a project config document (already read off disk by
// the external CLI/host, per spec.md §1's scope boundary) into Settings.
// Zero fields absent from data keep Default's zero values.
func Parse(data []byte) (Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Ignored reports whether path matches one of Workspace.IgnoreGlobs.
func (s Settings) Ignored(path string) bool {
	for _, pattern := range s.Workspace.IgnoreGlobs {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
