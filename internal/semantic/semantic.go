// Package semantic implements the Semantic Model (spec.md §4.9): a
// per-file facade bundling the file id, the shared db.Index and the
// Inference Engine, exposing the small set of queries an LSP's hover,
// go-to-definition and signature-help handlers actually need instead of
// handing callers the whole index. Grounded on the teacher's
// internal/symbols package's per-module lookup facade, generalized from
// funxy's module-export view to a per-file query surface over db.Index.
package semantic

import (
	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/infer"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// Model is one file's view over the shared Index (spec.md §4.9).
type Model struct {
	File   syntax.FileId
	Index  *db.Index
	Engine *infer.Engine
	Tree   *syntax.Tree
}

// New builds a Model for file, sharing engine/index/tree across every
// other file's Model the same workspace produced (spec.md §4.9's
// "DB ref" — there is exactly one Index per workspace, never one per
// file).
func New(engine *infer.Engine, tree *syntax.Tree) *Model {
	return &Model{File: tree.File, Index: engine.Index, Engine: engine, Tree: tree}
}

// InferExpr infers expr's type, or reports it could not (spec.md §4.9).
func (m *Model) InferExpr(expr syntax.Node) (types.Type, bool) {
	t, fail := m.Engine.InferExpr(m.File, expr)
	if fail.Reason != infer.FailNone || t == nil {
		return nil, false
	}
	return t, true
}

// InferCallExprFuncAt resolves the Signature a CallExpr resolves to,
// selecting the overload that matches the call's actual arguments
// (spec.md §4.9 infer_call_expr_func).
func (m *Model) InferCallExprFuncAt(call syntax.Node) (*db.Signature, bool) {
	if call.Kind() != syntax.KindCallExpr {
		return nil, false
	}
	return m.Engine.ResolveCallExprSignature(m.File, call)
}

// GetPropertyOwnerId maps a CST node to the PropertyOwnerId its doc-derived
// Properties (description, deprecation, visibility, ...) live under
// (spec.md §4.9), by first resolving the node to whichever entity it
// names — a local/global decl, a member, or a signature — the same way
// find_decl does.
func (m *Model) GetPropertyOwnerId(n syntax.Node) (db.PropertyOwnerId, bool) {
	switch n.Kind() {
	case syntax.KindNameExpr, syntax.KindSelfExpr:
		if id, ok := m.FindDecl(n); ok {
			return db.PropertyOwnerId{Kind: db.OwnerKindDecl, Decl: id}, true
		}
	case syntax.KindIndexExpr:
		if owner, key, ok := m.memberOwnerKey(n); ok {
			if member, ok := m.Index.Member.GetMemberFromOwner(owner, key); ok {
				return db.PropertyOwnerId{Kind: db.OwnerKindMember, Member: member.Id}, true
			}
		}
	case syntax.KindFuncStat, syntax.KindLocalFuncStat, syntax.KindClosureExpr:
		return db.PropertyOwnerId{Kind: db.OwnerKindSignature, Signature: types.SignatureId{File: m.File, Pos: signaturePos(n)}}, true
	}
	return db.PropertyOwnerId{}, false
}

// FindDecl resolves node (a NameExpr/SelfExpr use-site) back to the Decl it
// refers to (spec.md §4.9 find_decl): a local reference resolves directly,
// a global name resolves to its representative Decl.
func (m *Model) FindDecl(n syntax.Node) (types.DeclId, bool) {
	if n.Kind() != syntax.KindNameExpr && n.Kind() != syntax.KindSelfExpr {
		return types.DeclId{}, false
	}
	if id, ok := m.Index.Reference.DeclIdByRange(m.File, n.Range().Start); ok {
		return id, true
	}
	if d, ok := m.Index.Decl.FindDeclAt(m.File, n.Range().Start); ok {
		return d.Id, true
	}
	decls := m.Index.Decl.GlobalDecls(n.Text())
	if len(decls) == 0 {
		return types.DeclId{}, false
	}
	return decls[0].Id, true
}

// SemanticInfo is the universal "what is under the cursor" answer (spec.md
// §4.9 infer_node_semantic_info/infer_token_semantic_info).
type SemanticInfo struct {
	Type          types.Type
	PropertyOwner db.PropertyOwnerId
	HasProperty   bool
}

// InferNodeSemanticInfo answers hover/go-to-definition for an arbitrary
// expression node in one call.
func (m *Model) InferNodeSemanticInfo(n syntax.Node) SemanticInfo {
	info := SemanticInfo{}
	if t, ok := m.InferExpr(n); ok {
		info.Type = t
	}
	if owner, ok := m.GetPropertyOwnerId(n); ok {
		info.PropertyOwner = owner
		info.HasProperty = true
	}
	return info
}

// InferTokenSemanticInfo answers the same query for a raw token offset,
// resolving it to its deepest containing CST node first (spec.md §4.9;
// hosts query by cursor offset, not by a node reference).
func (m *Model) InferTokenSemanticInfo(offset int) SemanticInfo {
	n := syntax.FindToken(m.Tree.Root, offset)
	if n == nil {
		return SemanticInfo{}
	}
	return m.InferNodeSemanticInfo(n)
}

func (m *Model) memberOwnerKey(n syntax.Node) (db.Owner, db.Key, bool) {
	children := n.Children()
	if len(children) < 2 {
		return db.Owner{}, db.Key{}, false
	}
	prefixType, ok := m.InferExpr(children[0])
	if !ok {
		return db.Owner{}, db.Key{}, false
	}
	key := indexKey(children[1])
	if key.Kind == db.KeyNone {
		return db.Owner{}, db.Key{}, false
	}
	owner, ok := ownerOf(prefixType)
	return owner, key, ok
}

func ownerOf(t types.Type) (db.Owner, bool) {
	switch p := t.(type) {
	case types.TableConst:
		return db.ElementOwner(p.File, p.Range), true
	case types.Instance:
		return db.ElementOwner(p.File, p.Range), true
	case types.Ref:
		return db.TypeOwner(p.Name), true
	case types.Def:
		return db.TypeOwner(p.Name), true
	case types.Nullable:
		return ownerOf(p.Elem)
	default:
		return db.Owner{}, false
	}
}

func indexKey(n syntax.Node) db.Key {
	switch n.Kind() {
	case syntax.KindNameExpr, syntax.KindLiteralString:
		return db.NameKey(n.Text())
	case syntax.KindLiteralInteger:
		return db.IntKey(parseInt(n.Text()))
	default:
		return db.NoneKey
	}
}

// signaturePos mirrors decl.go/lua.go's own convention: a named function's
// Signature is keyed at the FuncStat/LocalFuncStat's own position, an
// anonymous closure at its own.
func signaturePos(n syntax.Node) int {
	if n.Kind() == syntax.KindClosureExpr {
		if p := n.Parent(); p != nil {
			switch p.Kind() {
			case syntax.KindFuncStat, syntax.KindLocalFuncStat:
				return p.Range().Start
			}
		}
	}
	return n.Range().Start
}

func parseInt(s string) int64 {
	var neg bool
	var i int
	if len(s) > 0 && s[0] == '-' {
		neg = true
		i = 1
	}
	var v int64
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			break
		}
		v = v*10 + int64(s[i]-'0')
	}
	if neg {
		v = -v
	}
	return v
}
