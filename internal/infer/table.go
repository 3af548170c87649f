package infer

import (
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

const maxTupleArity = 10

// inferTable implements spec.md §4.8's Table literal rules: a purely
// positional literal of at most maxTupleArity fields infers as a Tuple (a
// trailing multi-valued call is flattened into it; a trailing `...` makes
// the literal an Array of its first value); a longer positional literal
// infers as an Array of the union of its field types; anything with a named or indexed field instead infers as the table's
// TableConst handle, whose own field types live in MemberIndex and are
// resolved lazily through inferIndex.
func (e *Engine) inferTable(file syntax.FileId, n syntax.Node) (types.Type, Failure) {
	fields := n.Children()
	if len(fields) == 0 {
		return types.TableConst{File: file, Range: n.Range()}, Failure{}
	}
	if !allPositional(fields) {
		return types.TableConst{File: file, Range: n.Range()}, Failure{}
	}
	if len(fields) > maxTupleArity {
		return e.inferArrayLiteral(file, fields)
	}

	elems := make([]types.Type, 0, len(fields))
	for i, f := range fields {
		valueNode := fieldValue(f)
		if valueNode == nil {
			elems = append(elems, types.Unknown)
			continue
		}
		t, fail := e.InferExpr(file, valueNode)
		if fail.Reason != FailNone || t == nil {
			t = types.Unknown
		}
		if i == len(fields)-1 {
			if m, ok := t.(types.MultiReturn); ok {
				if valueNode.Kind() == syntax.KindVarargExpr {
					first, ok := m.Get(0)
					if !ok {
						first = types.Unknown
					}
					return types.Array{Elem: first}, Failure{}
				}
				elems = append(elems, flattenTrailingMulti(m)...)
				continue
			}
		}
		elems = append(elems, t)
	}
	return types.Tuple{Elems: elems}, Failure{}
}

func (e *Engine) inferArrayLiteral(file syntax.FileId, fields []syntax.Node) (types.Type, Failure) {
	var elem types.Type
	for _, f := range fields {
		valueNode := fieldValue(f)
		if valueNode == nil {
			continue
		}
		t, fail := e.InferExpr(file, valueNode)
		if fail.Reason != FailNone || t == nil {
			continue
		}
		elem = types.UnionOf(elem, t)
	}
	if elem == nil {
		elem = types.Unknown
	}
	return types.Array{Elem: elem}, Failure{}
}

func allPositional(fields []syntax.Node) bool {
	for _, f := range fields {
		if f.Kind() != syntax.KindTableFieldPositional {
			return false
		}
	}
	return true
}

func fieldValue(f syntax.Node) syntax.Node {
	children := f.Children()
	if len(children) == 0 {
		return nil
	}
	switch f.Kind() {
	case syntax.KindTableFieldPositional:
		return children[0]
	case syntax.KindTableFieldNamed, syntax.KindTableFieldIndexed:
		if len(children) < 2 {
			return nil
		}
		return children[len(children)-1]
	default:
		return nil
	}
}

func flattenTrailingMulti(m types.MultiReturn) []types.Type {
	if m.Values != nil {
		return m.Values
	}
	if m.Base != nil {
		return []types.Type{m.Base}
	}
	return nil
}
