package db

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lumenforge/lumen/internal/syntax"
)

// ModuleInfo is a loaded module's identity (spec.md §3.8), adapted from the
// teacher's internal/modules/module.go (Module.Name/Dir/Exports shape)
// generalized from "a directory of funxy files" to "a dotted require path".
type ModuleInfo struct {
	File      syntax.FileId
	FullName  string
	LeafName  string
	Visible   bool
}

// trieNode is one segment of the dotted-module-path trie.
type trieNode struct {
	children map[string]*trieNode
	file     syntax.FileId
	hasFile  bool
}

// ModuleIndex holds a trie over dotted module paths plus the FileId<->ModuleInfo
// maps (spec.md §3.8). The glob patterns are ignore patterns, matched by
// MatchesIgnore with doublestar, which (unlike path.Match) supports "**"
// recursive-directory matching; they play no part in deriving module paths.
type ModuleIndex struct {
	root     *trieNode
	byFile   map[syntax.FileId]*ModuleInfo
	patterns []string // e.g. "lua_modules/**/*.lua", "?.lua"
}

func NewModuleIndex() *ModuleIndex {
	return &ModuleIndex{root: &trieNode{children: map[string]*trieNode{}}, byFile: map[syntax.FileId]*ModuleInfo{}}
}

func (idx *ModuleIndex) SetPatterns(patterns []string) { idx.patterns = patterns }

// Register adds fullName (dotted, e.g. "a.b.c") as the module path for file.
func (idx *ModuleIndex) Register(file syntax.FileId, fullName string, visible bool) {
	segs := strings.Split(fullName, ".")
	cur := idx.root
	for _, s := range segs {
		next, ok := cur.children[s]
		if !ok {
			next = &trieNode{children: map[string]*trieNode{}}
			cur.children[s] = next
		}
		cur = next
	}
	cur.file = file
	cur.hasFile = true
	leaf := segs[len(segs)-1]
	info := &ModuleInfo{File: file, FullName: fullName, LeafName: leaf, Visible: visible}
	idx.byFile[file] = info
}

// Resolve looks up a dotted module path.
func (idx *ModuleIndex) Resolve(fullName string) (*ModuleInfo, bool) {
	segs := strings.Split(fullName, ".")
	cur := idx.root
	for _, s := range segs {
		next, ok := cur.children[s]
		if !ok {
			return nil, false
		}
		cur = next
	}
	if !cur.hasFile {
		return nil, false
	}
	return idx.byFile[cur.file], true
}

func (idx *ModuleIndex) Get(file syntax.FileId) (*ModuleInfo, bool) {
	info, ok := idx.byFile[file]
	return info, ok
}

// MatchesIgnore reports whether relPath matches any configured ignore glob.
func (idx *ModuleIndex) MatchesIgnore(relPath string) bool {
	for _, p := range idx.patterns {
		if ok, _ := doublestar.Match(p, relPath); ok {
			return true
		}
	}
	return false
}

// PathToModule translates a filesystem-relative path into a dotted module
// path: it trims the source extension ext and any leading/trailing "/",
// then replaces the remaining "/" separators with dots. No workspace root
// or require-path pattern is applied.
func PathToModule(relPath string, ext string) string {
	trimmed := strings.TrimSuffix(relPath, ext)
	trimmed = strings.Trim(trimmed, "/")
	return strings.ReplaceAll(trimmed, "/", ".")
}

// Remove drops file's module registration. The trie node itself is left in
// place (cheap, bounded by the set of user module names) but marked absent
// so Resolve no longer finds it.
func (idx *ModuleIndex) Remove(file syntax.FileId) {
	info, ok := idx.byFile[file]
	if !ok {
		return
	}
	delete(idx.byFile, file)
	segs := strings.Split(info.FullName, ".")
	cur := idx.root
	for _, s := range segs {
		next, ok := cur.children[s]
		if !ok {
			return
		}
		cur = next
	}
	cur.hasFile = false
}
