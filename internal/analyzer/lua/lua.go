// Package lua implements the Lua Analyzer (spec.md §4.6), pass 4 of the
// five-pass pipeline: it reads the initializers, assignments, table
// literals and function signatures the Declaration Analyzer left untyped
// and fills in Decl.Type/Member.DeclaredType by inferring RHS expressions
// through the Inference Engine. Grounded on the teacher's
// internal/analyzer/inference.go type-propagation pass (walking bindings
// after symbol collection and writing inferred types back onto them),
// adapted to Lua's const-widen-on-reassignment rule instead of HM
// unification, and to the two-pass split spec.md §4.6/§4.7 requires:
// whatever can't be resolved here (an owner or value expression that
// itself depends on something not yet typed) is hard instead of re-walked,
// it is enqueued on db.WorkList for the Unresolved Resolver (pass 5).
package lua

import (
	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/infer"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// Analyze walks tree, typing every Decl/Member it can resolve through
// engine and enqueueing the rest on engine.Index.Work (spec.md §4.6).
func Analyze(engine *infer.Engine, tree *syntax.Tree) {
	a := &analyzer{engine: engine, index: engine.Index, file: tree.File}
	a.walk(tree.Root)
}

type analyzer struct {
	engine *infer.Engine
	index  *db.Index
	file   syntax.FileId
}

func (a *analyzer) walk(n syntax.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case syntax.KindLocalStat:
		a.visitLocalStat(n)
	case syntax.KindAssignStat:
		a.visitAssignStat(n)
	case syntax.KindFuncStat, syntax.KindLocalFuncStat:
		a.visitFuncStat(n)
	case syntax.KindClosureExpr:
		a.visitClosureExpr(n)
	case syntax.KindTableExpr:
		a.visitTableExpr(n)
	case syntax.KindForRangeStat:
		a.visitForRangeStat(n)
	}
	for _, c := range n.Children() {
		a.walk(c)
	}
}

// visitLocalStat types every bound name from its initializer, pairing them
// positionally the same way Lua itself does (spec.md §4.1 multi-return
// indexing): bound names are the leading run of NameExpr children, the
// remainder are the initializer expressions (mirrors decl.go's own
// leading-NameExpr convention for LocalStat).
func (a *analyzer) visitLocalStat(n syntax.Node) {
	children := n.Children()
	split := leadingNameExprs(children)
	names, inits := children[:split], children[split:]
	for i, nameNode := range names {
		valueNode, retIdx := valueAt(inits, i)
		if valueNode == nil {
			continue
		}
		t, fail := a.engine.InferExpr(a.file, valueNode)
		d, ok := a.index.Decl.FindDeclAt(a.file, nameNode.Range().Start)
		if !ok || d == nil {
			continue
		}
		if fail.Reason != infer.FailNone {
			a.index.Work.Enqueue(a.file, db.UnResolveItem{
				Kind: db.UnResolveDeclKind,
				Decl: db.UnResolveDecl{DeclId: d.Id, Expr: valueNode.Id(), RetIdx: retIdx},
			})
			continue
		}
		setOrMergeDeclType(d, valueAtIndex(t, retIdx))
	}
}

// visitAssignStat handles both plain-name and table-field targets. The
// target/value split uses the same leading-run heuristic as flow.go's
// visitAssignStat, extended to count IndexExpr targets too so `t.x = v`
// and mixed `a, t.x = 1, 2` shapes split correctly.
func (a *analyzer) visitAssignStat(n syntax.Node) {
	children := n.Children()
	split := leadingTargets(children)
	targets, values := children[:split], children[split:]
	for i, target := range targets {
		valueNode, retIdx := valueAt(values, i)
		if valueNode == nil {
			continue
		}
		switch target.Kind() {
		case syntax.KindNameExpr:
			a.assignName(target, valueNode, retIdx)
		case syntax.KindIndexExpr:
			a.assignIndex(target, valueNode, retIdx)
		}
	}
}

func (a *analyzer) assignName(target, valueNode syntax.Node, retIdx int) {
	declId, ok := a.index.Reference.DeclIdByRange(a.file, target.Range().Start)
	var d *db.Decl
	if ok {
		d = a.index.Decl.GetDecl(declId)
	}
	if d == nil {
		d, ok = a.index.Decl.FindDeclAt(a.file, target.Range().Start)
		if !ok {
			return
		}
	}
	t, fail := a.engine.InferExpr(a.file, valueNode)
	if fail.Reason != infer.FailNone {
		a.index.Work.Enqueue(a.file, db.UnResolveItem{
			Kind: db.UnResolveDeclKind,
			Decl: db.UnResolveDecl{DeclId: d.Id, Expr: valueNode.Id(), RetIdx: retIdx},
		})
		return
	}
	setOrMergeDeclType(d, valueAtIndex(t, retIdx))
}

// assignIndex resolves the owner a table-field assignment writes through —
// a literal table's own Element owner, a class's TypeOwner, or (when the
// prefix itself couldn't be inferred yet) an UnResolveMember with Prefix set
// so the resolver can retry once the prefix resolves (spec.md §4.6).
func (a *analyzer) assignIndex(target, valueNode syntax.Node, retIdx int) {
	children := target.Children()
	if len(children) < 2 {
		return
	}
	prefixNode, keyNode := children[0], children[1]
	key := indexKey(keyNode)
	if key.Kind == db.KeyNone {
		return
	}
	prefixType, prefixFail := a.engine.InferExpr(a.file, prefixNode)
	valueType, valueFail := a.engine.InferExpr(a.file, valueNode)
	if prefixFail.Reason != infer.FailNone || prefixType == nil {
		prefixId := prefixNode.Id()
		a.index.Work.Enqueue(a.file, db.UnResolveItem{
			Kind: db.UnResolveMemberKind,
			Member: db.UnResolveMember{
				Key: key, Expr: valueNode.Id(), RetIdx: retIdx, Prefix: &prefixId,
			},
		})
		return
	}
	owner, ok := ownerOf(prefixType, a.file, prefixNode.Range())
	if !ok {
		return
	}
	if valueFail.Reason != infer.FailNone || valueType == nil {
		a.index.Work.Enqueue(a.file, db.UnResolveItem{
			Kind: db.UnResolveMemberKind,
			Member: db.UnResolveMember{Owner: owner, Key: key, Expr: valueNode.Id(), RetIdx: retIdx},
		})
		return
	}
	a.setOrMergeMember(owner, key, target, valueAtIndex(valueType, retIdx))
}

// ownerOf maps a prefix expression's inferred type to the Owner its fields
// live under (spec.md §3.3): a literal table keys by its own Element
// identity, a class reference/instance by its nominal TypeOwner.
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

// setOrMergeMember writes a field's value type into MemberIndex: it reuses
// an already-registered placeholder Member (the one decl.go created for
// this exact target) when one exists at this owner+key, instead of
// registering a second, losing entry.
func (a *analyzer) setOrMergeMember(owner db.Owner, key db.Key, target syntax.Node, t types.Type) {
	if m, ok := a.index.Member.GetMemberFromOwner(owner, key); ok {
		if m.DeclaredType == nil {
			m.DeclaredType = t
		} else {
			m.DeclaredType = mergeDeclType(m.DeclaredType, t)
		}
		return
	}
	m := &db.Member{
		Id:           types.MemberId{File: a.file, Syntax: target.Id()},
		Owner:        owner,
		Key:          key,
		File:         a.file,
		DeclaredType: t,
	}
	a.index.Member.AddMemberToOwner(m)
}

// visitFuncStat attaches a Signature-backed function type to the decl a
// named `function`/`local function` statement produced (spec.md §4.6); it
// mirrors decl.go's visitFuncStat target-resolution exactly, since that is
// the only convention that tells us which Decl this signature belongs to.
func (a *analyzer) visitFuncStat(n syntax.Node) {
	sigId := types.SignatureId{File: a.file, Pos: n.Range().Start}
	for _, c := range n.Children() {
		if c.Kind() != syntax.KindNameExpr {
			continue
		}
		d, ok := a.index.Decl.FindDeclAt(a.file, c.Range().Start)
		if ok && d != nil && d.Type == nil {
			d.Type = types.Signature{Id: sigId}
		}
		break
	}
}

// visitClosureExpr pairs each parameter decl with its doc-declared type
// (spec.md §4.6): decl.go already registered a ParamName decl per
// parameter and keyed its Signature field the same way doc.go keys the
// Signature record itself, so the two line up by (file, param index).
func (a *analyzer) visitClosureExpr(n syntax.Node) {
	sigId := types.SignatureId{File: a.file, Pos: signaturePos(n)}
	sig, ok := a.index.Signature.Get(sigId)
	if !ok {
		return
	}
	for _, c := range n.Children() {
		if c.Kind() != syntax.KindParamList {
			continue
		}
		for _, p := range c.Children() {
			if p.Kind() != syntax.KindParamName {
				continue
			}
			d, ok := a.index.Decl.FindDeclAt(a.file, p.Range().Start)
			if !ok || d == nil || d.Type != nil {
				continue
			}
			if d.ParamIndex < 0 || d.ParamIndex >= len(sig.Params) {
				continue
			}
			param := sig.Params[d.ParamIndex]
			if param.Type == nil {
				continue
			}
			t := param.Type
			if param.Nullable {
				t = types.Nullable{Elem: t}
			}
			d.Type = t
		}
	}
}

// signaturePos mirrors decl.go's walker.signaturePos: named functions key
// their Signature at the enclosing FuncStat/LocalFuncStat's own position,
// anonymous closures at their own.
func signaturePos(closure syntax.Node) int {
	if p := closure.Parent(); p != nil {
		switch p.Kind() {
		case syntax.KindFuncStat, syntax.KindLocalFuncStat:
			return p.Range().Start
		}
	}
	return closure.Range().Start
}

// visitTableExpr types every named field decl.go already registered a
// placeholder Member for (spec.md §4.6).
func (a *analyzer) visitTableExpr(n syntax.Node) {
	owner := db.ElementOwner(a.file, n.Range())
	for _, f := range n.Children() {
		if f.Kind() != syntax.KindTableFieldNamed {
			continue
		}
		children := f.Children()
		if len(children) < 2 {
			continue
		}
		key := db.NameKey(children[0].Text())
		valueNode := children[len(children)-1]
		t, fail := a.engine.InferExpr(a.file, valueNode)
		if fail.Reason != infer.FailNone || t == nil {
			a.index.Work.Enqueue(a.file, db.UnResolveItem{
				Kind:   db.UnResolveMemberKind,
				Member: db.UnResolveMember{Owner: owner, Key: key, Expr: valueNode.Id()},
			})
			continue
		}
		a.setOrMergeMember(owner, key, f, t)
	}
}

// visitForRangeStat pairs `for v1, v2 in iter() do` loop variables against
// the iterator call's multi-return (spec.md §4.6). Iterator vars are the
// leading run of NameExpr children, the same convention decl.go's
// visitForRangeStat relies on to find them; the remaining children up to
// the Block are the iterator expression list, of which only the first
// (the actual iterator function) determines the loop variables' types.
func (a *analyzer) visitForRangeStat(n syntax.Node) {
	vars, iterExprs := forRangeParts(n.Children())
	if len(vars) == 0 || len(iterExprs) == 0 {
		return
	}
	iter := iterExprs[0]
	t, fail := a.engine.InferExpr(a.file, iter)
	declIds := make([]types.DeclId, 0, len(vars))
	for _, v := range vars {
		if d, ok := a.index.Decl.FindDeclAt(a.file, v.Range().Start); ok {
			declIds = append(declIds, d.Id)
		}
	}
	if fail.Reason != infer.FailNone || t == nil {
		a.index.Work.Enqueue(a.file, db.UnResolveItem{
			Kind: db.UnResolveIterVarKind,
			Iter: db.UnResolveIterVar{Vars: declIds, Iter: iter.Id()},
		})
		return
	}
	mr, isMulti := t.(types.MultiReturn)
	for i, v := range vars {
		d, ok := a.index.Decl.FindDeclAt(a.file, v.Range().Start)
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
}

// mergeDeclType implements spec.md §8's widen-on-reassignment rule: a
// decl's type stays whatever it was first inferred as until a later
// assignment disagrees, at which point both sides widen past their literal
// constant forms and unite.
func mergeDeclType(existing, incoming types.Type) types.Type {
	if existing == nil {
		return incoming
	}
	if incoming == nil {
		return existing
	}
	if types.Equal(existing, incoming) {
		return existing
	}
	return types.UnionOf(widenRuntimeConst(existing), widenRuntimeConst(incoming))
}

// widenRuntimeConst drops a runtime-inferred literal constant down to its
// base primitive. Doc-declared constants (DocStringConst/DocIntegerConst)
// are left alone — they came from an explicit annotation, not inference,
// so widening them would throw away intentional precision.
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

func setOrMergeDeclType(d *db.Decl, t types.Type) {
	if t == nil {
		return
	}
	if d.Type == nil {
		d.Type = t
		return
	}
	d.Type = mergeDeclType(d.Type, t)
}

// valueAtIndex indexes into a multi-return result the same way spec.md
// §4.1 indexes a call's trailing return; non-multi-return types pass
// through unchanged for retIdx 0.
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

// valueAt resolves the expression (and multi-return index within it) that
// targets[i] draws from, per Lua's positional multi-assignment rule: every
// target before the last value expression gets that value's first result;
// the last value expression supplies every remaining target positionally
// out of its own multi-return.
func valueAt(values []syntax.Node, i int) (syntax.Node, int) {
	if len(values) == 0 {
		return nil, 0
	}
	if i < len(values)-1 {
		return values[i], 0
	}
	return values[len(values)-1], i - (len(values) - 1)
}

func leadingNameExprs(children []syntax.Node) int {
	i := 0
	for i < len(children) && children[i].Kind() == syntax.KindNameExpr {
		i++
	}
	return i
}

// leadingTargets counts the leading run of NameExpr/IndexExpr children of
// an AssignStat — the assignment targets, per the same flat-sibling CST
// convention flow.go's visitAssignStat relies on (extended here to also
// recognize IndexExpr targets, since table-field assignment is in scope
// for this pass).
func leadingTargets(children []syntax.Node) int {
	i := 0
	for i < len(children) {
		switch children[i].Kind() {
		case syntax.KindNameExpr, syntax.KindIndexExpr:
			i++
			continue
		}
		break
	}
	return i
}

// forRangeParts splits a ForRangeStat's children into loop variables (the
// leading NameExpr run) and the iterator expression list (everything
// between that run and the trailing Block body).
func forRangeParts(children []syntax.Node) (vars, iterExprs []syntax.Node) {
	i := leadingNameExprs(children)
	vars = children[:i]
	rest := children[i:]
	if len(rest) == 0 {
		return vars, nil
	}
	if rest[len(rest)-1].Kind() == syntax.KindBlock {
		rest = rest[:len(rest)-1]
	}
	return vars, rest
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
