// Package resolver implements the Unresolved Resolver (spec.md §4.7), pass
// 5 of the five-pass pipeline: it drains db.WorkList, retrying whatever the
// Lua Analyzer couldn't type on its first walk (a forward reference, a
// member whose owner depended on another unresolved prefix, a for-in
// iterator whose call wasn't typed yet). Grounded on the teacher's
// internal/analyzer/inference.go fixpoint pass (re-running inference over a
// pending set until a round makes no progress), adapted to db.WorkList's
// per-file queue instead of a global unification worklist.
package resolver

import (
	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/infer"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// Resolve drains file's WorkList to a fixpoint: every round re-attempts
// every still-pending item, keeping whatever didn't resolve for the next
// round, until a round resolves nothing at all (spec.md §4.7).
func Resolve(engine *infer.Engine, file syntax.FileId) {
	for {
		items := engine.Index.Work.Items(file)
		if len(items) == 0 {
			return
		}
		remaining := make([]db.UnResolveItem, 0, len(items))
		progressed := false
		for _, item := range items {
			if resolveOne(engine, file, item) {
				progressed = true
			} else {
				remaining = append(remaining, item)
			}
		}
		engine.Index.Work.Replace(file, remaining)
		if !progressed {
			return
		}
	}
}

func resolveOne(engine *infer.Engine, file syntax.FileId, item db.UnResolveItem) bool {
	switch item.Kind {
	case db.UnResolveDeclKind:
		return resolveDecl(engine, file, item.Decl)
	case db.UnResolveMemberKind:
		return resolveMember(engine, file, item.Member)
	case db.UnResolveIterVarKind:
		return resolveIterVar(engine, file, item.Iter)
	default:
		return true // unknown kind: drop rather than loop forever on it
	}
}

func resolveDecl(engine *infer.Engine, file syntax.FileId, u db.UnResolveDecl) bool {
	n := engine.FindNode(file, u.Expr)
	if n == nil {
		return true // the expression no longer exists; nothing to retry
	}
	t, fail := engine.InferExpr(file, n)
	if fail.Reason != infer.FailNone || t == nil {
		return false
	}
	d, ok := engine.Index.Decl.FindDeclAt(u.DeclId.File, u.DeclId.Offset)
	if !ok || d == nil {
		return true
	}
	mergeDeclType(d, valueAtIndex(t, u.RetIdx))
	return true
}

func resolveMember(engine *infer.Engine, file syntax.FileId, u db.UnResolveMember) bool {
	owner := u.Owner
	if u.Prefix != nil {
		prefixNode := engine.FindNode(file, *u.Prefix)
		if prefixNode == nil {
			return true
		}
		prefixType, fail := engine.InferExpr(file, prefixNode)
		if fail.Reason != infer.FailNone || prefixType == nil {
			return false
		}
		resolved, ok := ownerOf(prefixType, file, prefixNode.Range())
		if !ok {
			return true // prefix resolved to something with no field owner
		}
		owner = resolved
	}

	valueNode := engine.FindNode(file, u.Expr)
	if valueNode == nil {
		return true
	}
	valueType, fail := engine.InferExpr(file, valueNode)
	if fail.Reason != infer.FailNone || valueType == nil {
		return false
	}
	t := valueAtIndex(valueType, u.RetIdx)

	if m, ok := engine.Index.Member.GetMemberFromOwner(owner, u.Key); ok {
		if m.DeclaredType == nil {
			m.DeclaredType = t
		} else {
			m.DeclaredType = types.UnionOf(widenRuntimeConst(m.DeclaredType), widenRuntimeConst(t))
		}
		return true
	}
	m := &db.Member{
		Id:           types.MemberId{File: file, Syntax: valueNode.Id()},
		Owner:        owner,
		Key:          u.Key,
		File:         file,
		DeclaredType: t,
	}
	engine.Index.Member.AddMemberToOwner(m)
	return true
}

func resolveIterVar(engine *infer.Engine, file syntax.FileId, u db.UnResolveIterVar) bool {
	iter := engine.FindNode(file, u.Iter)
	if iter == nil {
		return true
	}
	t, fail := engine.InferExpr(file, iter)
	if fail.Reason != infer.FailNone || t == nil {
		return false
	}
	mr, isMulti := t.(types.MultiReturn)
	for i, declId := range u.Vars {
		d, ok := engine.Index.Decl.FindDeclAt(declId.File, declId.Offset)
		if !ok || d == nil || d.Type != nil {
			continue
		}
		if isMulti {
			if vt, ok := mr.Get(i); ok {
				d.Type = vt
			}
		} else if i == 0 {
			d.Type = t
		}
	}
	return true
}

func ownerOf(prefixType types.Type, file syntax.FileId, r syntax.Range) (db.Owner, bool) {
	switch p := prefixType.(type) {
	case types.TableConst:
		return db.ElementOwner(p.File, p.Range), true
	case types.Instance:
		return db.ElementOwner(p.File, p.Range), true
	case types.Ref:
		return db.TypeOwner(p.Name), true
	case types.Def:
		return db.TypeOwner(p.Name), true
	case types.Nullable:
		return ownerOf(p.Elem, file, r)
	default:
		return db.Owner{}, false
	}
}

func mergeDeclType(d *db.Decl, t types.Type) {
	if t == nil {
		return
	}
	if d.Type == nil {
		d.Type = t
		return
	}
	if types.Equal(d.Type, t) {
		return
	}
	d.Type = types.UnionOf(widenRuntimeConst(d.Type), widenRuntimeConst(t))
}

func widenRuntimeConst(t types.Type) types.Type {
	switch t.(type) {
	case types.StringConst:
		return types.String
	case types.IntegerConst:
		return types.Integer
	case types.FloatConst:
		return types.Number
	case types.BooleanConst:
		return types.Boolean
	default:
		return t
	}
}

func valueAtIndex(t types.Type, retIdx int) types.Type {
	mr, ok := t.(types.MultiReturn)
	if !ok {
		if retIdx == 0 {
			return t
		}
		return types.Nil
	}
	if v, ok := mr.Get(retIdx); ok {
		return v
	}
	return types.Nil
}
