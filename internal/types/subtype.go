package types

// Resolver supplies the cross-file type-declaration facts check_type_compact
// needs (class members/supertypes, alias origins, enum members) without
// internal/types depending on internal/db — the dependency runs the other
// way, db.TypeIndex implements this interface. Grounded on the teacher's
// separation between internal/typesystem (pure algebra) and internal/symbols
// (the table it queries).
type Resolver interface {
	// AliasOrigin returns the replacement type of an alias TypeDecl, or
	// (nil, false) if name is not a replacement-alias.
	AliasOrigin(name TypeDeclId) (Type, bool)
	// AliasUnion returns the member types of a union-alias, or nil.
	AliasUnion(name TypeDeclId) []Type
	// ClassMembers returns the declared member types of a class, not
	// including supertypes.
	ClassMembers(name TypeDeclId) map[string]Type
	// RequiredMembers returns the subset of ClassMembers that are
	// non-nullable (subtyping requires these to be present).
	RequiredMembers(name TypeDeclId) map[string]Type
	// Supertypes returns the direct supertypes of a class.
	Supertypes(name TypeDeclId) []Type
	// IsSubTypeOf reports whether a is a (possibly transitive) subtype of b.
	IsSubTypeOf(a, b TypeDeclId) bool
	// EnumMembers returns the constant values of an enum.
	EnumMembers(name TypeDeclId) []Type
	// EnumKeys returns the declared member names of a Key-attributed enum.
	EnumKeys(name TypeDeclId) []string
}

const maxSubtypeDepth = 16

// CheckTypeCompact implements spec.md §4.1's check_type_compact: structural
// subtyping with nominal shortcuts, bounded by maxSubtypeDepth to stop
// cycles in recursive/self-referential class types (the "check_guard").
func CheckTypeCompact(sub, super Type, r Resolver) bool {
	return checkGuard(sub, super, r, 0)
}

func checkGuard(sub, super Type, r Resolver, depth int) bool {
	if depth > maxSubtypeDepth {
		return true // bounded recursion: assume compatible rather than loop
	}
	if sub == nil || super == nil {
		return false
	}
	if super.Tag() == TagAny || super.Tag() == TagUnknown {
		return true
	}
	if sub.Tag() == TagUnknown {
		return true
	}
	if Equal(sub, super) {
		return true
	}

	switch sv := super.(type) {
	case Union:
		for _, v := range sv.Variants {
			if checkGuard(sub, v, r, depth+1) {
				return true
			}
		}
		// No single variant accepts sub; a union or alias sub may still be
		// covered variant by variant, checked below.
	case Nullable:
		if isNilLike(sub) {
			return true
		}
		return checkGuard(sub, sv.Elem, r, depth+1)
	}

	switch sv := sub.(type) {
	case Union:
		for _, v := range sv.Variants {
			if !checkGuard(v, super, r, depth+1) {
				return false
			}
		}
		return true
	case Nullable:
		return isNilLike(super) == false && checkGuard(sv.Elem, super, r, depth+1) // nullable/union supers are handled above; against any other non-nil super only the element type is checked
	}

	switch bc := sub.(type) {
	case StringConst:
		return subPrimitiveConst(super, TagString)
	case DocStringConst:
		return subPrimitiveConst(super, TagString)
	case IntegerConst:
		return subPrimitiveConst(super, TagInteger) || subPrimitiveConst(super, TagNumber)
	case DocIntegerConst:
		return subPrimitiveConst(super, TagInteger) || subPrimitiveConst(super, TagNumber)
	case FloatConst:
		return subPrimitiveConst(super, TagNumber)
	case BooleanConst:
		return subPrimitiveConst(super, TagBoolean)
	case TableConst:
		if rf, ok := super.(Ref); ok {
			return checkClassAgainstTableConst(rf.Name, bc, r, depth)
		}
		if df, ok := super.(Def); ok {
			return checkClassAgainstTableConst(df.Name, bc, r, depth)
		}
		return super.Tag() == TagTable
	}

	switch sv := sub.(type) {
	case Ref:
		return checkRefSub(sv.Name, super, r, depth)
	case Def:
		return checkRefSub(sv.Name, super, r, depth)
	case Array:
		if sup, ok := super.(Array); ok {
			return checkGuard(sv.Elem, sup.Elem, r, depth+1)
		}
		return false
	case Variadic:
		if sup, ok := super.(Variadic); ok {
			return checkGuard(sv.Elem, sup.Elem, r, depth+1)
		}
		return checkGuard(sv.Elem, super, r, depth+1)
	case Tuple:
		return checkTupleSub(sv, super, r, depth)
	case Object:
		return checkObjectSub(sv, super, r, depth)
	case Generic:
		sup, ok := super.(Generic)
		if !ok || sup.Base != sv.Base || len(sup.Params) != len(sv.Params) {
			return false
		}
		for i := range sv.Params {
			if !checkGuard(sv.Params[i], sup.Params[i], r, depth+1) {
				return false
			}
		}
		return true
	case TableGeneric:
		sup, ok := super.(TableGeneric)
		if !ok {
			return false
		}
		return checkGuard(sv.Key, sup.Key, r, depth+1) && checkGuard(sv.Value, sup.Value, r, depth+1)
	case MultiReturn:
		sup, ok := super.(MultiReturn)
		if !ok {
			return false
		}
		return checkMultiSub(sv, sup, r, depth)
	case Intersection:
		for _, v := range sv.Variants {
			if checkGuard(v, super, r, depth+1) {
				return true
			}
		}
		return false
	case Instance:
		return checkGuard(sv.Base, super, r, depth+1)
	}

	// Fallback: same tag and equal string form.
	return sub.Tag() == super.Tag() && sub.String() == super.String()
}

func subPrimitiveConst(super Type, want Tag) bool {
	return super.Tag() == want || super.Tag() == TagAny
}

func checkRefSub(name TypeDeclId, super Type, r Resolver, depth int) bool {
	switch sup := super.(type) {
	case Ref:
		return name == sup.Name || (r != nil && r.IsSubTypeOf(name, sup.Name))
	case Def:
		return name == sup.Name || (r != nil && r.IsSubTypeOf(name, sup.Name))
	}
	if r == nil {
		return false
	}
	if origin, ok := r.AliasOrigin(name); ok {
		return checkGuard(origin, super, r, depth+1)
	}
	if members := r.AliasUnion(name); members != nil {
		for _, m := range members {
			if !checkGuard(m, super, r, depth+1) {
				return false
			}
		}
		return true
	}
	if enumMembers := r.EnumMembers(name); len(enumMembers) > 0 {
		for _, m := range enumMembers {
			if !checkGuard(m, super, r, depth+1) {
				return false
			}
		}
		return true
	}
	return false
}

// checkClassAgainstTableConst only walks the supertype chain: a literal
// table's own field types live in the db's per-range Element owner map,
// which a TypeDeclId-keyed Resolver has no way to address, so exact
// field-by-field checking against a TableConst is left to the caller
// (infer's assignment-compatibility check, which does have the db at hand).
func checkClassAgainstTableConst(name TypeDeclId, tc TableConst, r Resolver, depth int) bool {
	if r == nil {
		return true
	}
	for _, super := range r.Supertypes(name) {
		if rf, ok := super.(Ref); ok {
			if !checkClassAgainstTableConst(rf.Name, tc, r, depth+1) {
				return false
			}
		}
	}
	return true
}

func checkTupleSub(sv Tuple, super Type, r Resolver, depth int) bool {
	switch sup := super.(type) {
	case Tuple:
		if len(sv.Elems) != len(sup.Elems) {
			return false
		}
		for i := range sv.Elems {
			if !checkGuard(sv.Elems[i], sup.Elems[i], r, depth+1) {
				return false
			}
		}
		return true
	case Array:
		for _, e := range sv.Elems {
			if !checkGuard(e, sup.Elem, r, depth+1) {
				return false
			}
		}
		return true
	}
	return false
}

func checkObjectSub(sv Object, super Type, r Resolver, depth int) bool {
	sup, ok := super.(Object)
	if !ok {
		return false
	}
	for name, supType := range sup.Fields {
		subType, ok := sv.Fields[name]
		if !ok {
			if _, nullable := supType.(Nullable); nullable {
				continue
			}
			return false
		}
		if !checkGuard(subType, supType, r, depth+1) {
			return false
		}
	}
	return true
}

func checkMultiSub(sv, sup MultiReturn, r Resolver, depth int) bool {
	n := sup.Len()
	if n < 0 {
		n = sv.Len()
	}
	for i := 0; i < n; i++ {
		subT, okA := sv.Get(i)
		supT, okB := sup.Get(i)
		if !okB {
			break
		}
		if !okA {
			return false
		}
		if !checkGuard(subT, supT, r, depth+1) {
			return false
		}
	}
	return true
}
