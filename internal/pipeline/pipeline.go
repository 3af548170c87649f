// Package pipeline wires the five analyzer passes spec.md §2/§5 mandates
// into one ordered call: Declaration → Doc → Flow → Lua → Unresolved
// Resolver, all writing into a single shared db.Index. Grounded on the
// teacher's internal/analyzer/analyzer.go Run method (a fixed stage order
// over one AST, each stage free to depend on facts the previous stage
// wrote), generalized from funxy's single-language-pass design to Lumen's
// five narrower passes plus the worklist-draining final stage spec.md §4.7
// adds on top.
package pipeline

import (
	"github.com/lumenforge/lumen/internal/analyzer/decl"
	"github.com/lumenforge/lumen/internal/analyzer/doc"
	"github.com/lumenforge/lumen/internal/analyzer/flow"
	"github.com/lumenforge/lumen/internal/analyzer/lua"
	"github.com/lumenforge/lumen/internal/analyzer/resolver"
	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/infer"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// AnalyzeFile runs all five passes over tree against the shared index, in
// the fixed order spec.md §2 requires. trees is the workspace's whole
// file-id-to-tree map (shared across every file's analysis, since the
// Inference Engine's Reassign flow facts and cross-file lookups need to
// find any file's tree, not just the one being analyzed right now). Safe
// to call again for the same file after RemoveFile: every sub-index's
// Remove is total (spec.md §8's "removal is total" property), so
// re-adding reproduces first-time state.
func AnalyzeFile(index *db.Index, trees map[syntax.FileId]*syntax.Tree, tree *syntax.Tree) {
	trees[tree.File] = tree

	decl.Analyze(index, tree)
	doc.Analyze(index, tree, ownerSignatureFunc(tree.File))
	flow.Analyze(index, tree)

	engine := infer.NewEngine(index, trees)
	lua.Analyze(engine, tree)
	resolver.Resolve(engine, tree.File)
}

// RemoveFile sheds every fact tree.File contributed across every
// sub-index, so a host can re-run AnalyzeFile on a changed file without
// leaking stale Decls/Members/Signatures from the previous version
// (spec.md §5 incremental re-analysis).
func RemoveFile(index *db.Index, trees map[syntax.FileId]*syntax.Tree, file syntax.FileId) {
	index.RemoveFile(file)
	delete(trees, file)
}

// ownerSignatureFunc builds the Doc Analyzer's adjacency callback: a
// @param/@return/@overload/@generic tag attaches to the closest statement
// that follows its doc comment in the same block, the same
// nearest-following-declaration convention LuaDoc tooling uses. The exact
// sibling-scan is a CST-shape detail the external parser exposes via
// Parent()/Children(), not something doc.go itself should know.
func ownerSignatureFunc(file syntax.FileId) func(syntax.Node) (types.SignatureId, bool) {
	return func(comment syntax.Node) (types.SignatureId, bool) {
		parent := comment.Parent()
		if parent == nil {
			return types.SignatureId{}, false
		}
		siblings := parent.Children()
		idx := -1
		for i, s := range siblings {
			if s.Id() == comment.Id() {
				idx = i
				break
			}
		}
		if idx < 0 {
			return types.SignatureId{}, false
		}
		for i := idx + 1; i < len(siblings); i++ {
			if pos, ok := signaturePosIn(siblings[i]); ok {
				return types.SignatureId{File: file, Pos: pos}, true
			}
		}
		return types.SignatureId{}, false
	}
}

// signaturePosIn finds the position a following statement's Signature was
// keyed at by decl.go: a FuncStat/LocalFuncStat is keyed at its own
// position; a LocalStat/AssignStat whose initializer is a bare closure
// (`local f = function() end`) is keyed at that closure's own position.
func signaturePosIn(n syntax.Node) (int, bool) {
	switch n.Kind() {
	case syntax.KindFuncStat, syntax.KindLocalFuncStat:
		return n.Range().Start, true
	case syntax.KindLocalStat, syntax.KindAssignStat:
		for _, c := range n.Children() {
			if c.Kind() == syntax.KindClosureExpr {
				return c.Range().Start, true
			}
		}
	}
	return 0, false
}
