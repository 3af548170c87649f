// Package flow implements the Flow Analyzer (spec.md §4.5), pass 3: it
// walks conditional/narrowing constructs and builds FlowChain entries in
// db.FlowIndex. Grounded on the teacher's internal/analyzer/inference_control.go
// (if/while narrowing of TVar bindings across branches) adapted from
// Hindley-Milner unification narrowing to the TypeOps-algebra assertions
// spec.md §3.7/§4.5 define.
package flow

import (
	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// Analyze walks tree and records flow assertions for every narrowing
// construct it finds (spec.md §4.5).
func Analyze(index *db.Index, tree *syntax.Tree) {
	a := &analyzer{index: index, file: tree.File}
	a.walk(tree.Root)
}

type analyzer struct {
	index *db.Index
	file  syntax.FileId
}

func (a *analyzer) walk(n syntax.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case syntax.KindIfStat:
		a.visitIfStat(n)
	case syntax.KindWhileStat:
		a.visitWhileStat(n)
	case syntax.KindRepeatStat:
		a.visitRepeatStat(n)
	case syntax.KindAssignStat:
		a.visitAssignStat(n)
	case syntax.KindLocalStat:
		a.visitLocalStat(n)
	}
	for _, c := range n.Children() {
		a.walk(c)
	}
}

func (a *analyzer) visitIfStat(n syntax.Node) {
	for _, clause := range n.Children() {
		if clause.Kind() != syntax.KindIfClause {
			continue
		}
		children := clause.Children()
		if len(children) == 0 {
			continue
		}
		cond := children[0]
		var body syntax.Node
		if len(children) > 1 {
			body = children[1]
		}
		if body == nil {
			continue
		}
		a.applyCondition(cond, body.Range(), false)
	}
}

func (a *analyzer) visitWhileStat(n syntax.Node) {
	children := n.Children()
	if len(children) < 2 {
		return
	}
	a.applyCondition(children[0], children[1].Range(), false)
}

func (a *analyzer) visitRepeatStat(n syntax.Node) {
	children := n.Children()
	if len(children) < 2 {
		return
	}
	// `until cond` only narrows *after* the loop body, never inside it.
	a.applyCondition(children[len(children)-1], syntax.Range{Start: n.Range().End, End: enclosingBlockRange(n).End}, false)
}

// applyCondition inspects cond for one of the recognized narrowing shapes
// (spec.md §4.5: truthiness, equality, type()-test) and records the
// positive fact over thenRange; negated is reserved for else-branch callers
// that want the Negate()'d assertion instead.
func (a *analyzer) applyCondition(cond syntax.Node, thenRange syntax.Range, negated bool) {
	kind, name, t := classifyCondition(cond)
	if name == "" {
		return
	}
	var assertion db.TypeAssertion
	switch kind {
	case condTruthy:
		assertion = db.TypeAssertion{Kind: db.AssertExist, Range: thenRange}
	case condEq:
		assertion = db.TypeAssertion{Kind: db.AssertNarrow, Type: t, Range: thenRange}
	case condNeq:
		assertion = db.TypeAssertion{Kind: db.AssertRemove, Type: t, Range: thenRange}
	default:
		return
	}
	if negated {
		assertion = assertion.Negate()
	}
	chain := a.index.Flow.GetOrCreate(a.file, db.FileScopeFlow, name)
	chain.Assertions = append(chain.Assertions, assertion)
}

type condKind int

const (
	condNone condKind = iota
	condTruthy
	condEq
	condNeq
)

// classifyCondition recognizes `x`, `x == K`, `x ~= K`, and
// `type(x) == "kind"` shapes over a BinaryExpr/NameExpr condition node.
func classifyCondition(cond syntax.Node) (condKind, string, types.Type) {
	switch cond.Kind() {
	case syntax.KindNameExpr:
		return condTruthy, cond.Text(), nil
	case syntax.KindBinaryExpr:
		children := cond.Children()
		if len(children) != 3 {
			return condNone, "", nil
		}
		lhs, op, rhs := children[0], children[1], children[2]
		opText := op.Text()
		if opText != "==" && opText != "~=" {
			return condNone, "", nil
		}
		if lhs.Kind() == syntax.KindCallExpr && isTypeCall(lhs) {
			name := typeCallArgName(lhs)
			if name == "" || rhs.Kind() != syntax.KindLiteralString {
				return condNone, "", nil
			}
			kind := condEq
			if opText == "~=" {
				kind = condNeq
			}
			return kind, name, primitiveForTypeName(rhs.Text())
		}
		if lhs.Kind() == syntax.KindNameExpr {
			kind := condEq
			if opText == "~=" {
				kind = condNeq
			}
			return kind, lhs.Text(), constTypeOf(rhs)
		}
	}
	return condNone, "", nil
}

func isTypeCall(call syntax.Node) bool {
	children := call.Children()
	if len(children) == 0 {
		return false
	}
	return children[0].Kind() == syntax.KindNameExpr && children[0].Text() == "type"
}

func typeCallArgName(call syntax.Node) string {
	children := call.Children()
	if len(children) < 2 {
		return ""
	}
	if children[1].Kind() == syntax.KindNameExpr {
		return children[1].Text()
	}
	return ""
}

func primitiveForTypeName(s string) types.Type {
	switch s {
	case "nil":
		return types.Nil
	case "boolean":
		return types.Boolean
	case "string":
		return types.String
	case "number":
		return types.Number
	case "table":
		return types.Table
	case "function":
		return types.Function
	case "thread":
		return types.Thread
	case "userdata":
		return types.Userdata
	default:
		return types.Unknown
	}
}

func constTypeOf(n syntax.Node) types.Type {
	switch n.Kind() {
	case syntax.KindLiteralString:
		return types.StringConst{Value: n.Text()}
	case syntax.KindLiteralInteger:
		return types.IntegerConst{Value: parseInt(n.Text())}
	case syntax.KindLiteralNil:
		return types.Nil
	case syntax.KindLiteralTrue:
		return types.BooleanConst{Value: true}
	case syntax.KindLiteralFalse:
		return types.BooleanConst{Value: false}
	default:
		return types.Unknown
	}
}

// visitAssignStat closes the prior chain and opens a Reassign for every
// plain-name LHS (spec.md §4.5): a target paired with its own expression
// reads return 0 of it; trailing targets read return i-(k-1) of the last
// of the k expressions.
func (a *analyzer) visitAssignStat(n syntax.Node) {
	children := n.Children()
	if len(children) < 2 {
		return
	}
	lhsCount := 0
	for _, c := range children {
		if c.Kind() == syntax.KindNameExpr {
			lhsCount++
			continue
		}
		break
	}
	rhs := children[lhsCount:]
	for i := 0; i < lhsCount; i++ {
		name := children[i].Text()
		var exprId syntax.Id
		retIdx := i - (len(rhs) - 1)
		if i < len(rhs) {
			exprId = rhs[i].Id()
			retIdx = 0
		} else if len(rhs) > 0 {
			exprId = rhs[len(rhs)-1].Id()
		}
		block := enclosingBlockRange(n)
		chain := a.index.Flow.GetOrCreate(a.file, db.FileScopeFlow, name)
		chain.Assertions = append(chain.Assertions, db.TypeAssertion{
			Kind: db.AssertReassign, ReassignAt: exprId, RetIndex: retIdx, Range: syntax.Range{Start: n.Range().End, End: block.End},
		})
	}
}

func (a *analyzer) visitLocalStat(n syntax.Node) {
	// A fresh local starts with no assertions: nothing to record here, the
	// decl's own declared/inferred type is the baseline FlowChain reads from.
	_ = n
}

func enclosingBlockRange(n syntax.Node) syntax.Range {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == syntax.KindBlock || p.Kind() == syntax.KindChunk {
			return p.Range()
		}
	}
	return n.Range()
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
