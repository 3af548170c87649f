package types

// TypeOps implements the three total, idempotent algebra operations from
// spec.md §4.1/§8: Union (smallest type containing both), Narrow
// (intersection for positive flow facts), and Remove (set difference for
// negative flow facts). Grounded on the teacher's internal/typesystem/unify.go
// walk-and-compare style, generalized from unification to lattice ops since
// Lua types are not unified but merged/narrowed along control flow.

// UnionOf returns the smallest type containing the values of both a and b,
// collapsing nested unions, absorbing Unknown, and de-duplicating constants.
// Named UnionOf rather than Union to avoid colliding with the Union type
// variant declared in types.go.
func UnionOf(a, b Type) Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if Equal(a, b) {
		return a
	}
	if a.Tag() == TagUnknown {
		return b
	}
	if b.Tag() == TagUnknown {
		return a
	}
	variants := flattenUnion(a)
	variants = append(variants, flattenUnion(b)...)
	return dedupUnion(variants)
}

func flattenUnion(t Type) []Type {
	if u, ok := t.(Union); ok {
		return append([]Type(nil), u.Variants...)
	}
	return []Type{t}
}

func dedupUnion(variants []Type) Type {
	out := make([]Type, 0, len(variants))
	for _, v := range variants {
		dup := false
		for _, o := range out {
			if Equal(v, o) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return Union{Variants: out}
}

// Narrow computes the positive-fact intersection used by flow assertions:
// when a and b are incompatible it falls back to b, the asserted side,
// matching spec.md's "if a and b are incompatible, result is b".
func Narrow(a, b Type) Type {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Tag() == TagUnknown || a.Tag() == TagAny {
		return b
	}
	if b.Tag() == TagUnknown || b.Tag() == TagAny {
		return a
	}
	if u, ok := a.(Union); ok {
		var kept []Type
		for _, v := range u.Variants {
			if narrowCompatible(v, b) {
				kept = append(kept, narrowLeaf(v, b))
			}
		}
		if len(kept) == 0 {
			return b
		}
		return dedupUnion(kept)
	}
	if narrowCompatible(a, b) {
		return narrowLeaf(a, b)
	}
	return b
}

func narrowLeaf(a, b Type) Type {
	// When b is a broader primitive and a is already a compatible constant
	// or the same shape, keep the more specific a; otherwise prefer b.
	if Equal(a, b) {
		return a
	}
	if isConstOf(a, b) {
		return a
	}
	return b
}

func narrowCompatible(a, b Type) bool {
	if Equal(a, b) {
		return true
	}
	if isConstOf(a, b) {
		return true
	}
	if b.Tag() == TagAny || b.Tag() == TagUnknown {
		return true
	}
	return a.Tag() == b.Tag()
}

// isConstOf reports whether a is a literal-constant narrowing of base's
// primitive type (e.g. StringConst vs String).
func isConstOf(a, base Type) bool {
	switch base.Tag() {
	case TagString:
		_, ok1 := a.(StringConst)
		_, ok2 := a.(DocStringConst)
		return ok1 || ok2
	case TagInteger:
		_, ok1 := a.(IntegerConst)
		_, ok2 := a.(DocIntegerConst)
		return ok1 || ok2
	case TagNumber:
		_, ok := a.(FloatConst)
		return ok
	case TagBoolean:
		_, ok := a.(BooleanConst)
		return ok
	default:
		return false
	}
}

// Remove computes the set difference used by negative flow facts: remove
// Nil from a Nullable/Union containing it, remove matching constant
// variants from a union, etc.
func Remove(a, b Type) Type {
	if a == nil {
		return nil
	}
	if b == nil {
		return a
	}
	switch av := a.(type) {
	case Nullable:
		if isNilLike(b) {
			return av.Elem
		}
		inner := Remove(av.Elem, b)
		if inner == nil || Equal(inner, Unknown) {
			return Unknown
		}
		return Nullable{Elem: inner}
	case Union:
		var kept []Type
		for _, v := range av.Variants {
			if removeMatches(v, b) {
				continue
			}
			kept = append(kept, v)
		}
		if len(kept) == 0 {
			return Unknown
		}
		if len(kept) == 1 {
			return kept[0]
		}
		return Union{Variants: kept}
	default:
		if Equal(a, b) || removeMatches(a, b) {
			return Unknown
		}
		return a
	}
}

func isNilLike(t Type) bool {
	switch v := t.(type) {
	case primitive:
		return v.tag == TagNil
	case BooleanConst:
		return !v.Value
	case Union:
		for _, m := range v.Variants {
			if isNilLike(m) {
				return true
			}
		}
		return false
	}
	return false
}

func removeMatches(candidate, removed Type) bool {
	if Equal(candidate, removed) {
		return true
	}
	if removed.Tag() == TagNil && candidate.Tag() == TagNil {
		return true
	}
	if bc, ok := candidate.(BooleanConst); ok {
		if rc, ok2 := removed.(BooleanConst); ok2 && rc.Value == bc.Value {
			return true
		}
	}
	return false
}
