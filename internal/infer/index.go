package infer

import (
	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// inferIndex implements spec.md §4.8's Index expression rules.
func (e *Engine) inferIndex(file syntax.FileId, n syntax.Node) (types.Type, Failure) {
	children := n.Children()
	if len(children) < 2 {
		return types.Unknown, Failure{}
	}
	prefix, fail := e.InferExpr(file, children[0])
	if fail.Reason != FailNone {
		return types.Unknown, fail
	}
	key := indexKeyOf(children[1])
	return e.inferIndexInto(file, prefix, key, n)
}

func (e *Engine) inferIndexInto(file syntax.FileId, prefix types.Type, key db.Key, site syntax.Node) (types.Type, Failure) {
	if prefix == nil {
		return types.Unknown, Failure{}
	}
	switch p := prefix.(type) {
	case types.TableConst:
		owner := db.ElementOwner(p.File, p.Range)
		if m, ok := e.Index.Member.GetMemberFromOwner(owner, key); ok {
			return e.memberType(file, m)
		}
		return types.Unknown, Failure{Reason: FailFieldNotFound, Field: keyText(key)}
	case types.Instance:
		owner := db.ElementOwner(p.File, p.Range)
		if m, ok := e.Index.Member.GetMemberFromOwner(owner, key); ok {
			return e.memberType(file, m)
		}
		return e.inferIndexInto(file, p.Base, key, site)
	case types.Ref:
		return e.inferClassIndex(file, p.Name, key, site)
	case types.Def:
		return e.inferClassIndex(file, p.Name, key, site)
	case types.Object:
		if key.Kind == db.KeyName {
			if t, ok := p.Fields[key.Name]; ok {
				return t, Failure{}
			}
		}
		for _, idxSig := range p.Index {
			if keyCompatible(idxSig.Key, key) {
				return idxSig.Value, Failure{}
			}
		}
		return types.Unknown, Failure{Reason: FailFieldNotFound, Field: keyText(key)}
	case types.Tuple:
		if key.Kind == db.KeyInteger && int(key.Int) >= 1 && int(key.Int) <= len(p.Elems) {
			return p.Elems[key.Int-1], Failure{}
		}
		return types.Unknown, Failure{}
	case types.TableGeneric:
		if keyCompatible(p.Key, key) {
			return p.Value, Failure{}
		}
		return types.Unknown, Failure{}
	case types.Array:
		if key.Kind == db.KeyInteger {
			return p.Elem, Failure{}
		}
		return types.Unknown, Failure{}
	case types.Union:
		var variants []types.Type
		for _, v := range p.Variants {
			vt, f := e.inferIndexInto(file, v, key, site)
			if f.Reason != FailNone {
				continue
			}
			variants = append(variants, vt)
		}
		if len(variants) == 0 {
			return types.Unknown, Failure{Reason: FailFieldNotFound, Field: keyText(key)}
		}
		result := variants[0]
		for _, v := range variants[1:] {
			result = types.UnionOf(result, v)
		}
		return result, Failure{}
	case types.Intersection:
		for _, v := range p.Variants {
			if vt, f := e.inferIndexInto(file, v, key, site); f.Reason == FailNone {
				return vt, Failure{}
			}
		}
		return types.Unknown, Failure{}
	case types.Nullable:
		return e.inferIndexInto(file, p.Elem, key, site)
	default:
		return types.Unknown, Failure{}
	}
}

// memberType returns a member's declared type if present, else Unknown with
// a FailUnResolveMemberType failure.
func (e *Engine) memberType(file syntax.FileId, m *db.Member) (types.Type, Failure) {
	if m.DeclaredType != nil {
		return m.DeclaredType, Failure{}
	}
	return types.Unknown, Failure{Reason: FailUnResolveMemberType, Member: m.Id}
}

// inferClassIndex walks a class's own members, then supertypes, then the
// __index metamethod (spec.md §4.8).
func (e *Engine) inferClassIndex(file syntax.FileId, name types.TypeDeclId, key db.Key, site syntax.Node) (types.Type, Failure) {
	seen := map[types.TypeDeclId]bool{}
	var walk func(types.TypeDeclId) (types.Type, Failure, bool)
	walk = func(cur types.TypeDeclId) (types.Type, Failure, bool) {
		if seen[cur] {
			return types.Unknown, Failure{}, false
		}
		seen[cur] = true
		if m, ok := e.Index.Member.GetMemberFromOwner(db.TypeOwner(cur), key); ok {
			t, f := e.memberType(file, m)
			return t, f, true
		}
		td, ok := e.Index.Type.Get(cur)
		if !ok {
			return types.Unknown, Failure{}, false
		}
		for _, sup := range td.Supertypes {
			var supName types.TypeDeclId
			switch s := sup.(type) {
			case types.Ref:
				supName = s.Name
			case types.Def:
				supName = s.Name
			default:
				continue
			}
			if t, f, ok := walk(supName); ok {
				return t, f, true
			}
		}
		return types.Unknown, Failure{}, false
	}
	if t, f, ok := walk(name); ok {
		return t, f
	}
	// __index metamethod fallback.
	if sigId, ok := e.Index.Operator.Get(name, db.OpIndex); ok {
		sig, ok := e.Index.Signature.Get(sigId)
		if ok {
			return sig.ReturnType(), Failure{}
		}
	}
	return types.Unknown, Failure{Reason: FailFieldNotFound, Field: keyText(key)}
}

func keyCompatible(declared types.Type, actual db.Key) bool {
	switch declared.Tag() {
	case types.TagString:
		return actual.Kind == db.KeyName
	case types.TagInteger, types.TagNumber:
		return actual.Kind == db.KeyInteger
	default:
		return true
	}
}

func indexKeyOf(n syntax.Node) db.Key {
	switch n.Kind() {
	case syntax.KindNameExpr, syntax.KindLiteralString:
		return db.NameKey(n.Text())
	case syntax.KindLiteralInteger:
		return db.IntKey(parseInt(n.Text()))
	default:
		return db.NoneKey
	}
}

func keyText(k db.Key) string {
	if k.Kind == db.KeyName {
		return k.Name
	}
	return ""
}
