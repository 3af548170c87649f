package config

import "testing"

func TestDefault_UsesUTF8AndNoIgnoreGlobs(t *testing.T) {
	s := Default()
	if s.Workspace.Encoding != "utf-8" {
		t.Fatalf("expected utf-8 default encoding, got %q", s.Workspace.Encoding)
	}
	if len(s.Workspace.IgnoreGlobs) != 0 {
		t.Fatalf("expected no default ignore globs, got %v", s.Workspace.IgnoreGlobs)
	}
}

func TestParse_OverridesDefaultsFromYAML(t *testing.T) {
	doc := []byte("workspace:\n  encoding: latin1\n  ignore_globs:\n    - \"**/vendor/**\"\nstrict:\n  require_path: true\n")
	s, err := Parse(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Workspace.Encoding != "latin1" {
		t.Fatalf("expected encoding overridden to latin1, got %q", s.Workspace.Encoding)
	}
	if len(s.Workspace.IgnoreGlobs) != 1 || s.Workspace.IgnoreGlobs[0] != "**/vendor/**" {
		t.Fatalf("expected the ignore glob parsed from yaml, got %v", s.Workspace.IgnoreGlobs)
	}
	if !s.Strict.RequirePath {
		t.Fatalf("expected strict.require_path parsed true")
	}
}

func TestParse_EmptyDocumentKeepsDefaults(t *testing.T) {
	s, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Workspace.Encoding != "utf-8" {
		t.Fatalf("expected an empty document to keep the default encoding, got %q", s.Workspace.Encoding)
	}
}

func TestParse_InvalidYAMLReturnsError(t *testing.T) {
	if _, err := Parse([]byte("not: [valid: yaml")); err == nil {
		t.Fatalf("expected an error for malformed yaml")
	}
}

func TestIgnored_MatchesDoublestarPattern(t *testing.T) {
	s := Settings{Workspace: Workspace{IgnoreGlobs: []string{"**/vendor/**"}}}
	if !s.Ignored("third_party/vendor/lib.lua") {
		t.Fatalf("expected vendor path to match **/vendor/**")
	}
	if s.Ignored("src/main.lua") {
		t.Fatalf("did not expect src/main.lua to match **/vendor/**")
	}
}

func TestTrimSourceExt_StripsKnownExtensions(t *testing.T) {
	cases := map[string]string{
		"main.lua":   "main",
		"types.luau": "types",
		"README.md":  "README.md",
	}
	for in, want := range cases {
		if got := TrimSourceExt(in); got != want {
			t.Fatalf("TrimSourceExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasSourceExt(t *testing.T) {
	if !HasSourceExt("a/b.lua") {
		t.Fatalf("expected .lua to be a source extension")
	}
	if HasSourceExt("a/b.txt") {
		t.Fatalf("did not expect .txt to be a source extension")
	}
}
