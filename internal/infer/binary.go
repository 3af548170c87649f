package infer

import (
	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

var arithOps = map[string]db.OperatorKind{
	"+": db.OpAdd, "-": db.OpSub, "*": db.OpMul, "/": db.OpDiv,
	"%": db.OpMod, "^": db.OpPow, "..": db.OpConcat,
}

// inferBinary implements spec.md §4.8's Binary expression rules: arithmetic
// widens to number/integer unless an operand carries a custom metamethod,
// `and`/`or` follow Lua's short-circuit value rules (not booleanization),
// and comparisons always yield boolean since narrowing itself lives in the
// Flow Analyzer, not here.
func (e *Engine) inferBinary(file syntax.FileId, n syntax.Node) (types.Type, Failure) {
	children := n.Children()
	if len(children) != 3 {
		return types.Unknown, Failure{}
	}
	lhsNode, opNode, rhsNode := children[0], children[1], children[2]
	op := opNode.Text()

	switch op {
	case "and":
		return e.inferAnd(file, lhsNode, rhsNode)
	case "or":
		return e.inferOr(file, lhsNode, rhsNode)
	}

	lhs, lfail := e.InferExpr(file, lhsNode)
	if lfail.Reason != FailNone {
		return types.Unknown, lfail
	}
	rhs, rfail := e.InferExpr(file, rhsNode)
	if rfail.Reason != FailNone {
		return types.Unknown, rfail
	}

	switch op {
	case "==", "~=":
		return types.Boolean, Failure{}
	case "<", "<=", ">", ">=":
		return types.Boolean, Failure{}
	}

	if kind, ok := arithOps[op]; ok {
		if op == ".." {
			return concatResult(lhs, rhs), Failure{}
		}
		if owner, custom := customOperandOwner(lhs); custom {
			if t, ok := e.metamethodResult(owner, kind); ok {
				return t, Failure{}
			}
		}
		if owner, custom := customOperandOwner(rhs); custom {
			if t, ok := e.metamethodResult(owner, kind); ok {
				return t, Failure{}
			}
		}
		return arithResult(lhs, rhs), Failure{}
	}

	return types.Unknown, Failure{}
}

// inferAnd models `a and b`: nil/false operands short-circuit to lhs, so the
// result is Union(NarrowedFalsy(lhs), rhs) in the general case.
func (e *Engine) inferAnd(file syntax.FileId, lhsNode, rhsNode syntax.Node) (types.Type, Failure) {
	lhs, fail := e.InferExpr(file, lhsNode)
	if fail.Reason != FailNone {
		return types.Unknown, fail
	}
	rhs, fail := e.InferExpr(file, rhsNode)
	if fail.Reason != FailNone {
		return types.Unknown, fail
	}
	if alwaysTruthy(lhs) {
		return rhs, Failure{}
	}
	return types.UnionOf(falsyPartOf(lhs), rhs), Failure{}
}

// inferOr models `a or b`, including the common `x or {}` / `x or error(...)`
// specializations: when lhs can never be falsy the whole expression reduces
// to lhs alone.
func (e *Engine) inferOr(file syntax.FileId, lhsNode, rhsNode syntax.Node) (types.Type, Failure) {
	lhs, fail := e.InferExpr(file, lhsNode)
	if fail.Reason != FailNone {
		return types.Unknown, fail
	}
	rhs, fail := e.InferExpr(file, rhsNode)
	if fail.Reason != FailNone {
		return types.Unknown, fail
	}
	truthyLhs := types.Remove(lhs, types.Nil)
	truthyLhs = removeFalse(truthyLhs)
	if alwaysTruthy(lhs) {
		return lhs, Failure{}
	}
	return types.UnionOf(truthyLhs, rhs), Failure{}
}

func alwaysTruthy(t types.Type) bool {
	switch t.Tag() {
	case types.TagNil, types.TagUnknown, types.TagAny, types.TagBoolean:
		return false
	}
	if bc, ok := t.(types.BooleanConst); ok {
		return bc.Value
	}
	if _, ok := t.(types.Nullable); ok {
		return false
	}
	if u, ok := t.(types.Union); ok {
		for _, v := range u.Variants {
			if !alwaysTruthy(v) {
				return false
			}
		}
		return true
	}
	return true
}

func falsyPartOf(t types.Type) types.Type {
	if t.Tag() == types.TagNil {
		return t
	}
	if bc, ok := t.(types.BooleanConst); ok && !bc.Value {
		return t
	}
	return types.Nil
}

func removeFalse(t types.Type) types.Type {
	if bc, ok := t.(types.BooleanConst); ok && !bc.Value {
		return types.Unknown
	}
	return t
}

// inferUnary implements `not`, `#`, and unary `-` (spec.md §4.8).
func (e *Engine) inferUnary(file syntax.FileId, n syntax.Node) (types.Type, Failure) {
	children := n.Children()
	if len(children) != 2 {
		return types.Unknown, Failure{}
	}
	opNode, operandNode := children[0], children[1]
	op := opNode.Text()
	if op == "not" {
		return types.Boolean, Failure{}
	}
	operand, fail := e.InferExpr(file, operandNode)
	if fail.Reason != FailNone {
		return types.Unknown, fail
	}
	switch op {
	case "#":
		return types.Integer, Failure{}
	case "-":
		if owner, custom := customOperandOwner(operand); custom {
			if t, ok := e.metamethodResult(owner, db.OpUnm); ok {
				return t, Failure{}
			}
		}
		if ic, ok := operand.(types.IntegerConst); ok {
			return types.IntegerConst{Value: -ic.Value}, Failure{}
		}
		if isNumericTag(operand.Tag()) {
			return operand, Failure{}
		}
		return types.Number, Failure{}
	case "~":
		return types.Integer, Failure{}
	}
	return types.Unknown, Failure{}
}

func (e *Engine) metamethodResult(owner types.TypeDeclId, kind db.OperatorKind) (types.Type, bool) {
	sigId, ok := e.Index.Operator.Get(owner, kind)
	if !ok {
		return nil, false
	}
	sig, ok := e.Index.Signature.Get(sigId)
	if !ok {
		return nil, false
	}
	return sig.ReturnType(), true
}

func customOperandOwner(t types.Type) (types.TypeDeclId, bool) {
	switch v := t.(type) {
	case types.Ref:
		return v.Name, true
	case types.Def:
		return v.Name, true
	case types.Instance:
		return customOperandOwner(v.Base)
	}
	return "", false
}

func isNumericTag(tag types.Tag) bool {
	return tag == types.TagInteger || tag == types.TagNumber ||
		tag == types.TagIntegerConst || tag == types.TagFloatConst
}

// arithResult widens two numeric operands: integer op integer stays
// integer, anything else promotes to number (Lua 5.3+ integer/float split).
func arithResult(lhs, rhs types.Type) types.Type {
	if isIntegerLike(lhs) && isIntegerLike(rhs) {
		return types.Integer
	}
	if isNumericTag(lhs.Tag()) && isNumericTag(rhs.Tag()) {
		return types.Number
	}
	return types.Number
}

func isIntegerLike(t types.Type) bool {
	switch t.Tag() {
	case types.TagInteger, types.TagIntegerConst, types.TagDocIntegerConst:
		return true
	}
	return false
}

func concatResult(lhs, rhs types.Type) types.Type {
	if sc1, ok := lhs.(types.StringConst); ok {
		if sc2, ok := rhs.(types.StringConst); ok {
			return types.StringConst{Value: sc1.Value + sc2.Value}
		}
	}
	return types.String
}
