package doc

import (
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// resolveTypeExpr maps a LuaDoc type-expression CST node to a LuaType
// (spec.md §4.1/§4.4). Bare names first match a generic parameter visible
// at this position, then the file's namespace/using list against TypeIndex;
// a name that resolves to nothing yields Unknown. No diagnostic is recorded
// for an unresolved name.
func (a *analyzer) resolveTypeExpr(n syntax.Node) types.Type {
	if n == nil {
		return types.Unknown
	}
	switch n.Kind() {
	case syntax.KindDocTypeName:
		return a.resolveTypeName(n.Text())
	case syntax.KindDocTypeArray:
		children := n.Children()
		if len(children) == 0 {
			return types.Array{Elem: types.Unknown}
		}
		return types.Array{Elem: a.resolveTypeExpr(children[0])}
	case syntax.KindDocTypeNullable:
		children := n.Children()
		if len(children) == 0 {
			return types.Nullable{Elem: types.Unknown}
		}
		return types.Nullable{Elem: a.resolveTypeExpr(children[0])}
	case syntax.KindDocTypeVariadic:
		children := n.Children()
		if len(children) == 0 {
			return types.Variadic{Elem: types.Unknown}
		}
		return types.Variadic{Elem: a.resolveTypeExpr(children[0])}
	case syntax.KindDocTypeTuple:
		elems := make([]types.Type, 0, len(n.Children()))
		for _, c := range n.Children() {
			elems = append(elems, a.resolveTypeExpr(c))
		}
		return types.Tuple{Elems: elems}
	case syntax.KindDocTypeUnion:
		variants := make([]types.Type, 0, len(n.Children()))
		for _, c := range n.Children() {
			variants = append(variants, a.resolveTypeExpr(c))
		}
		return types.Union{Variants: variants}
	case syntax.KindDocTypeFun:
		return a.resolveFunType(n)
	case syntax.KindDocTypeGeneric:
		children := n.Children()
		if len(children) == 0 {
			return types.Unknown
		}
		base := a.typeDeclId(children[0].Text())
		params := make([]types.Type, 0, len(children)-1)
		for _, c := range children[1:] {
			params = append(params, a.resolveTypeExpr(c))
		}
		return types.Generic{Base: base, Params: params}
	case syntax.KindDocTypeTableGeneric:
		children := n.Children()
		if len(children) < 2 {
			return types.TableGeneric{Key: types.Unknown, Value: types.Unknown}
		}
		return types.TableGeneric{Key: a.resolveTypeExpr(children[0]), Value: a.resolveTypeExpr(children[1])}
	case syntax.KindDocTypeStringConst:
		return types.DocStringConst{Value: n.Text()}
	case syntax.KindDocTypeIntegerConst:
		return types.DocIntegerConst{Value: parseInt(n.Text())}
	case syntax.KindDocTypeObject:
		return a.resolveObjectType(n)
	case syntax.KindDocTypeCall:
		return a.resolveCallType(n)
	default:
		return types.Unknown
	}
}

func (a *analyzer) resolveTypeName(name string) types.Type {
	switch name {
	case "nil":
		return types.Nil
	case "boolean":
		return types.Boolean
	case "string":
		return types.String
	case "integer":
		return types.Integer
	case "number":
		return types.Number
	case "table":
		return types.Table
	case "userdata":
		return types.Userdata
	case "thread":
		return types.Thread
	case "function":
		return types.Function
	case "any":
		return types.Any
	case "unknown":
		return types.Unknown
	}
	if a.currentGenerics != nil && a.currentGenerics[name] {
		return types.TplRef{Name: name}
	}
	if _, ok := a.index.Type.FindTypeDecl(a.file, name); ok {
		return types.Ref{Name: a.typeDeclId(name)}
	}
	// Unresolved name: Unknown, with no diagnostic recorded.
	return types.Unknown
}

func (a *analyzer) resolveFunType(n syntax.Node) types.Type {
	var params []types.Param
	var returns []types.Type
	isColon := false
	for _, c := range n.Children() {
		switch c.Kind() {
		case syntax.KindParamName:
			name := c.Text()
			if name == "self" {
				isColon = true
				continue
			}
			params = append(params, types.Param{Name: name, Type: types.Unknown})
		default:
			returns = append(returns, a.resolveTypeExpr(c))
		}
	}
	return types.DocFunction{IsColon: isColon, Params: params, Returns: returns}
}

func (a *analyzer) resolveObjectType(n syntax.Node) types.Type {
	obj := types.Object{Fields: map[string]types.Type{}}
	for _, c := range n.Children() {
		children := c.Children()
		if len(children) < 2 {
			continue
		}
		name := children[0].Text()
		if _, exists := obj.Fields[name]; !exists {
			obj.FieldOrder = append(obj.FieldOrder, name)
		}
		obj.Fields[name] = a.resolveTypeExpr(children[1])
	}
	return obj
}

func (a *analyzer) resolveCallType(n syntax.Node) types.Type {
	children := n.Children()
	if len(children) == 0 {
		return types.Unknown
	}
	kind := aliasCallKindOf(children[0].Text())
	args := make([]types.Type, 0, len(children)-1)
	for _, c := range children[1:] {
		args = append(args, a.resolveTypeExpr(c))
	}
	return types.Call{Kind: kind, Args: args}
}

func aliasCallKindOf(name string) types.AliasCallKind {
	switch name {
	case "keyof":
		return types.CallKeyOf
	case "extends":
		return types.CallExtends
	case "add":
		return types.CallAdd
	case "sub":
		return types.CallSub
	case "select":
		return types.CallSelect
	case "index":
		return types.CallIndex
	default:
		return types.CallKeyOf
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
