// Package infer implements the Inference Engine (spec.md §4.8): on-demand
// expression typing over the db.Index, overload resolution, and generic
// instantiation. Grounded on the teacher's internal/analyzer/inference.go +
// inference_calls.go (the infer(node)/resolve-overload/instantiate
// pipeline over TVar/TApp) adapted from eager Hindley-Milner unification to
// on-demand structural inference driven by the TypeOps algebra, because
// Lua's type model carries no principal-type unification step.
package infer

import (
	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// FailReason is why infer_expr could not produce a type (spec.md §4.8);
// the UnResolve* variants feed the resolver's worklist (§4.7).
type FailReason int

const (
	FailNone FailReason = iota
	FailUnResolveDeclType
	FailUnResolveMemberType
	FailUnResolveSignatureReturn
	FailFieldNotFound
)

// Failure pairs a FailReason with whichever id it names, so callers that
// need to enqueue a db.UnResolveItem have enough to retry in isolation.
type Failure struct {
	Reason FailReason
	Decl   types.DeclId
	Member types.MemberId
	Sig    types.SignatureId
	Field  string
}

// Engine bundles the db.Index and a cache of already-inferred expression
// ids that lasts as long as the Engine, the way the teacher's inference.go threads a visited-set
// through recursive infer calls to avoid re-walking shared subexpressions.
// Trees holds every file's parsed tree so Reassign flow facts (which only
// carry a syntax.Id) can be looked back up and re-inferred on demand.
type Engine struct {
	Index *db.Index
	Trees map[syntax.FileId]*syntax.Tree
	cache map[syntax.Id]types.Type
}

func NewEngine(index *db.Index, trees map[syntax.FileId]*syntax.Tree) *Engine {
	return &Engine{Index: index, Trees: trees, cache: make(map[syntax.Id]types.Type)}
}

// FindNode locates the node with the given Id within file's tree — exported
// for the Unresolved Resolver (pass 5), which retries a db.UnResolveItem by
// re-inferring the exact expression it recorded.
func (e *Engine) FindNode(file syntax.FileId, id syntax.Id) syntax.Node {
	return e.findById(file, id)
}

// findById locates the node with the given Id within file's tree by walking
// down through the (unique, non-overlapping) child whose range contains it.
func (e *Engine) findById(file syntax.FileId, id syntax.Id) syntax.Node {
	tree, ok := e.Trees[file]
	if !ok || tree.Root == nil {
		return nil
	}
	var found syntax.Node
	var walk func(n syntax.Node)
	walk = func(n syntax.Node) {
		if found != nil || n == nil {
			return
		}
		if n.Id() == id {
			found = n
			return
		}
		if !n.Range().Contains(id.Range.Start) && n.Range() != id.Range {
			return
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(tree.Root)
	return found
}

// InferExpr infers n's type, or reports why it could not (spec.md §4.8).
func (e *Engine) InferExpr(file syntax.FileId, n syntax.Node) (types.Type, Failure) {
	if n == nil {
		return types.Unknown, Failure{}
	}
	if t, ok := e.cache[n.Id()]; ok {
		return t, Failure{}
	}
	t, fail := e.inferUncached(file, n)
	if fail.Reason == FailNone && t != nil {
		e.cache[n.Id()] = t
	}
	return t, fail
}

func (e *Engine) inferUncached(file syntax.FileId, n syntax.Node) (types.Type, Failure) {
	switch n.Kind() {
	case syntax.KindNameExpr, syntax.KindSelfExpr:
		return e.inferName(file, n)
	case syntax.KindIndexExpr:
		return e.inferIndex(file, n)
	case syntax.KindCallExpr:
		return e.inferCall(file, n)
	case syntax.KindBinaryExpr:
		return e.inferBinary(file, n)
	case syntax.KindUnaryExpr:
		return e.inferUnary(file, n)
	case syntax.KindParenExpr:
		children := n.Children()
		if len(children) == 0 {
			return types.Unknown, Failure{}
		}
		return e.InferExpr(file, children[0])
	case syntax.KindTableExpr:
		return e.inferTable(file, n)
	case syntax.KindClosureExpr:
		return types.Signature{Id: types.SignatureId{File: file, Pos: n.Range().Start}}, Failure{}
	case syntax.KindVarargExpr:
		return types.MultiReturn{Base: types.Unknown}, Failure{}
	case syntax.KindLiteralNil:
		return types.Nil, Failure{}
	case syntax.KindLiteralTrue:
		return types.BooleanConst{Value: true}, Failure{}
	case syntax.KindLiteralFalse:
		return types.BooleanConst{Value: false}, Failure{}
	case syntax.KindLiteralInteger:
		return types.IntegerConst{Value: parseInt(n.Text())}, Failure{}
	case syntax.KindLiteralFloat:
		return types.Number, Failure{}
	case syntax.KindLiteralString:
		return types.StringConst{Value: n.Text()}, Failure{}
	default:
		return types.Unknown, Failure{}
	}
}

// inferName implements spec.md §4.8's Name expression rules.
func (e *Engine) inferName(file syntax.FileId, n syntax.Node) (types.Type, Failure) {
	if n.Text() == "self" || n.Kind() == syntax.KindSelfExpr {
		return e.inferSelf(file, n)
	}
	var base types.Type
	var declId types.DeclId
	haveDecl := false
	if id, ok := e.Index.Reference.DeclIdByRange(file, n.Range().Start); ok {
		d := e.Index.Decl.GetDecl(id)
		if d == nil {
			return types.Unknown, Failure{Reason: FailUnResolveDeclType, Decl: id}
		}
		if d.Type == nil {
			return types.Unknown, Failure{Reason: FailUnResolveDeclType, Decl: id}
		}
		base = d.Type
		declId = id
		haveDecl = true
	} else if t, ok := e.Index.Decl.GetGlobalDeclType(n.Text()); ok {
		base = t
	} else {
		return types.Unknown, Failure{}
	}
	base = e.applyFlow(file, n, base, declId, haveDecl)
	return base, Failure{}
}

// applyFlow tightens base per every TypeAssertion active at n's position
// (spec.md §4.5 tighten_type), in the order they were recorded.
func (e *Engine) applyFlow(file syntax.FileId, n syntax.Node, base types.Type, declId types.DeclId, haveDecl bool) types.Type {
	chain, ok := e.Index.Flow.Get(file, db.FileScopeFlow, n.Text())
	if !ok {
		return base
	}
	for _, a := range chain.AssertionsAt(n.Range().Start) {
		if a.Kind == db.AssertReassign {
			if re := e.inferReassign(file, a); re != nil {
				base = re
			}
			continue
		}
		base = a.Tighten(base)
	}
	return base
}

// inferReassign re-infers the RHS expression a Reassign fact points at,
// indexing into a multi-return result at a.RetIndex when the RHS produced
// more than one value (spec.md §4.5: "Reassign re-infers the expression on
// demand").
func (e *Engine) inferReassign(file syntax.FileId, a db.TypeAssertion) types.Type {
	rhs := e.findById(file, a.ReassignAt)
	if rhs == nil {
		return nil
	}
	t, fail := e.InferExpr(file, rhs)
	if fail.Reason != FailNone || t == nil {
		return nil
	}
	if a.RetIndex == 0 {
		if m, ok := t.(types.MultiReturn); ok {
			if v, ok := m.Get(0); ok {
				return v
			}
			return nil
		}
		return t
	}
	if m, ok := t.(types.MultiReturn); ok {
		if v, ok := m.Get(a.RetIndex); ok {
			return v
		}
	}
	return nil
}

func (e *Engine) inferSelf(file syntax.FileId, n syntax.Node) (types.Type, Failure) {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == syntax.KindClosureExpr {
			if owner, ok := e.methodOwnerOf(file, p); ok {
				return types.Def{Name: owner}, Failure{}
			}
			return types.Unknown, Failure{}
		}
	}
	return types.Unknown, Failure{}
}

// methodOwnerOf finds the class a `function Owner:method(...)` closure's
// self receiver refers to, by looking at the enclosing FuncStat's dotted
// name prefix.
func (e *Engine) methodOwnerOf(file syntax.FileId, closure syntax.Node) (types.TypeDeclId, bool) {
	p := closure.Parent()
	if p == nil || (p.Kind() != syntax.KindFuncStat && p.Kind() != syntax.KindLocalFuncStat) {
		return "", false
	}
	for _, c := range p.Children() {
		if c.Kind() == syntax.KindIndexExpr {
			children := c.Children()
			if len(children) > 0 && children[0].Kind() == syntax.KindNameExpr {
				return types.TypeDeclId(children[0].Text()), true
			}
		}
	}
	return "", false
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
