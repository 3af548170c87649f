package infer

import (
	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// inferCall implements spec.md §4.8's Call expression rules: infer the
// callee, pick the best-matching overload (or the lone signature), bind any
// generic template parameters from the argument types, and assemble the
// return value as a MultiReturn.
func (e *Engine) inferCall(file syntax.FileId, n syntax.Node) (types.Type, Failure) {
	children := n.Children()
	if len(children) == 0 {
		return types.Unknown, Failure{}
	}
	callee := children[0]
	args := children[1:]
	calleeType, fail := e.InferExpr(file, callee)
	if fail.Reason != FailNone {
		return types.Unknown, fail
	}
	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		t, _ := e.InferExpr(file, a)
		argTypes[i] = t
	}
	return e.inferCallOf(file, calleeType, argTypes, callee)
}

func (e *Engine) inferCallOf(file syntax.FileId, calleeType types.Type, argTypes []types.Type, callee syntax.Node) (types.Type, Failure) {
	switch c := calleeType.(type) {
	case types.Signature:
		return e.inferCallSignature(file, c.Id, argTypes)
	case types.DocFunction:
		return inferCallDocFunction(c, argTypes), Failure{}
	case types.Union:
		var results []types.Type
		for _, v := range c.Variants {
			t, f := e.inferCallOf(file, v, argTypes, callee)
			if f.Reason != FailNone {
				continue
			}
			results = append(results, t)
		}
		if len(results) == 0 {
			return types.Unknown, Failure{}
		}
		out := results[0]
		for _, r := range results[1:] {
			out = types.UnionOf(out, r)
		}
		return out, Failure{}
	default:
		return types.Unknown, Failure{}
	}
}

// inferCallSignature resolves which of a Signature's overloads best fits
// argTypes (spec.md §4.8 resolve_signature), favoring the first overload
// every argument is structurally compatible with, falling back to the base
// signature, and binds generic template parameters from the chosen match.
func (e *Engine) inferCallSignature(file syntax.FileId, id types.SignatureId, argTypes []types.Type) (types.Type, Failure) {
	sig, ok := e.Index.Signature.Get(id)
	if !ok {
		return types.Unknown, Failure{Reason: FailUnResolveSignatureReturn, Sig: id}
	}
	best := sig
	for _, ov := range sig.Overloads {
		if signatureAccepts(ov, argTypes, e.Index.Resolver()) {
			best = ov
			break
		}
	}
	if len(best.Generics) == 0 {
		return best.ReturnType(), Failure{}
	}
	bindings := matchTemplateArgs(best, argTypes)
	return substituteTpl(best.ReturnType(), bindings), Failure{}
}

// ResolveCallExprSignature resolves the Signature a CallExpr's callee
// names and selects the overload (if any) whose parameters best match the
// call's actual argument types — the Semantic Model's
// infer_call_expr_func facade (spec.md §4.9) surfaces this directly, so a
// host LSP can render signature help/parameter hints for the call it
// actually resolved to rather than just the base declaration.
func (e *Engine) ResolveCallExprSignature(file syntax.FileId, call syntax.Node) (*db.Signature, bool) {
	children := call.Children()
	if len(children) == 0 {
		return nil, false
	}
	callee := children[0]
	args := children[1:]
	calleeType, fail := e.InferExpr(file, callee)
	if fail.Reason != FailNone {
		return nil, false
	}
	sigType, ok := calleeType.(types.Signature)
	if !ok {
		return nil, false
	}
	sig, ok := e.Index.Signature.Get(sigType.Id)
	if !ok {
		return nil, false
	}
	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		t, _ := e.InferExpr(file, a)
		argTypes[i] = t
	}
	for _, ov := range sig.Overloads {
		if signatureAccepts(ov, argTypes, e.Index.Resolver()) {
			return ov, true
		}
	}
	return sig, true
}

// signatureAccepts reports whether every positional argument type is
// compatible with sig's declared parameter type, via CheckTypeCompact.
func signatureAccepts(sig *db.Signature, argTypes []types.Type, r types.Resolver) bool {
	for i, p := range sig.Params {
		if i >= len(argTypes) {
			if !p.Nullable {
				return false
			}
			continue
		}
		if argTypes[i] == nil {
			continue
		}
		if !types.CheckTypeCompact(argTypes[i], p.Type, r) {
			return false
		}
	}
	return true
}

// matchTemplateArgs binds each generic parameter to the argument type found
// at the position of its first occurrence in the declared parameter list
// (spec.md §4.4's tpl_pattern_match_args, simplified to positional matching
// since Lua call sites carry no explicit type arguments).
func matchTemplateArgs(sig *db.Signature, argTypes []types.Type) map[string]types.Type {
	bindings := make(map[string]types.Type)
	for i, p := range sig.Params {
		if i >= len(argTypes) || argTypes[i] == nil {
			continue
		}
		bindTemplateFrom(p.Type, argTypes[i], bindings)
	}
	return bindings
}

// bindTemplateFrom walks declared in lockstep with actual, recording a
// binding the first time a TplRef is encountered in declared's position.
func bindTemplateFrom(declared, actual types.Type, bindings map[string]types.Type) {
	if declared == nil || actual == nil {
		return
	}
	switch d := declared.(type) {
	case types.TplRef:
		if _, bound := bindings[d.Name]; !bound {
			bindings[d.Name] = actual
		}
	case types.Array:
		if a, ok := actual.(types.Array); ok {
			bindTemplateFrom(d.Elem, a.Elem, bindings)
		}
	case types.Nullable:
		if a, ok := actual.(types.Nullable); ok {
			bindTemplateFrom(d.Elem, a.Elem, bindings)
		} else {
			bindTemplateFrom(d.Elem, actual, bindings)
		}
	case types.Variadic:
		bindTemplateFrom(d.Elem, actual, bindings)
	case types.TableGeneric:
		if a, ok := actual.(types.TableGeneric); ok {
			bindTemplateFrom(d.Key, a.Key, bindings)
			bindTemplateFrom(d.Value, a.Value, bindings)
		}
	case types.Generic:
		if a, ok := actual.(types.Generic); ok && a.Base == d.Base {
			for i := range d.Params {
				if i < len(a.Params) {
					bindTemplateFrom(d.Params[i], a.Params[i], bindings)
				}
			}
		}
	}
}

// substituteTpl replaces every TplRef/StrTplRef in t with its binding,
// leaving unbound template parameters as-is (spec.md §4.4 instantiate_type).
func substituteTpl(t types.Type, bindings map[string]types.Type) types.Type {
	if t == nil {
		return nil
	}
	switch v := t.(type) {
	case types.TplRef:
		if bound, ok := bindings[v.Name]; ok {
			return bound
		}
		return v
	case types.StrTplRef:
		if bound, ok := bindings[v.Name]; ok {
			if s, ok := bound.(types.StringConst); ok {
				return types.StringConst{Value: v.Prefix + s.Value}
			}
		}
		return v
	case types.Array:
		return types.Array{Elem: substituteTpl(v.Elem, bindings)}
	case types.Nullable:
		return types.Nullable{Elem: substituteTpl(v.Elem, bindings)}
	case types.Variadic:
		return types.Variadic{Elem: substituteTpl(v.Elem, bindings)}
	case types.Tuple:
		elems := make([]types.Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = substituteTpl(e, bindings)
		}
		return types.Tuple{Elems: elems}
	case types.Union:
		variants := make([]types.Type, len(v.Variants))
		for i, e := range v.Variants {
			variants[i] = substituteTpl(e, bindings)
		}
		return types.Union{Variants: variants}
	case types.TableGeneric:
		return types.TableGeneric{Key: substituteTpl(v.Key, bindings), Value: substituteTpl(v.Value, bindings)}
	case types.Generic:
		params := make([]types.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = substituteTpl(p, bindings)
		}
		return types.Generic{Base: v.Base, Params: params}
	case types.MultiReturn:
		if v.Values != nil {
			vals := make([]types.Type, len(v.Values))
			for i, e := range v.Values {
				vals[i] = substituteTpl(e, bindings)
			}
			return types.MultiReturn{Values: vals}
		}
		return types.MultiReturn{Base: substituteTpl(v.Base, bindings)}
	default:
		return t
	}
}

// inferCallDocFunction assembles an anonymous fun(...) type's return value;
// there is no overload list to resolve since DocFunction is always a single
// anonymous signature.
func inferCallDocFunction(f types.DocFunction, argTypes []types.Type) types.Type {
	_ = argTypes
	if len(f.Returns) == 0 {
		return types.Unknown
	}
	if len(f.Returns) == 1 {
		return f.Returns[0]
	}
	return types.MultiReturn{Values: f.Returns}
}
