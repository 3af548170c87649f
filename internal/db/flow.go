package db

import (
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// AssertionKind enumerates the TypeAssertion variants (spec.md §3.7).
type AssertionKind int

const (
	AssertExist AssertionKind = iota
	AssertNotExist
	AssertNarrow
	AssertAdd
	AssertRemove
	AssertReassign
)

// TypeAssertion is one flow fact with the block range it affects.
type TypeAssertion struct {
	Kind       AssertionKind
	Type       types.Type        // valid for Narrow/Add/Remove
	ReassignAt syntax.Id         // valid for Reassign: the RHS expression's syntax id
	RetIndex   int               // valid for Reassign: which return value of a multi-valued RHS
	Range      syntax.Range      // the block/branch this assertion is active within
}

// Negate returns the logical negation of an assertion, defined only for
// Exist/NotExist/Narrow; the rest degrade to identity (spec.md §3.7).
func (a TypeAssertion) Negate() TypeAssertion {
	switch a.Kind {
	case AssertExist:
		n := a
		n.Kind = AssertNotExist
		return n
	case AssertNotExist:
		n := a
		n.Kind = AssertExist
		return n
	case AssertNarrow:
		n := a
		n.Kind = AssertRemove
		return n
	default:
		return a
	}
}

// Tighten applies this assertion to source via the TypeOps algebra
// (spec.md §4.5 tighten_type).
func (a TypeAssertion) Tighten(source types.Type) types.Type {
	switch a.Kind {
	case AssertExist:
		return types.Remove(source, types.Nil)
	case AssertNotExist:
		return types.Narrow(source, types.Nil)
	case AssertNarrow:
		return types.Narrow(source, a.Type)
	case AssertAdd:
		return types.UnionOf(source, a.Type)
	case AssertRemove:
		return types.Remove(source, a.Type)
	default:
		return source
	}
}

// FileScopeFlow is the FlowId every pass uses today: spec.md's FlowId exists
// to let a host scope flow facts more narrowly than "whole file" (e.g. per
// function), but nothing in the current pipeline needs that split — one
// chain per (file, variable name), with range-based AssertionsAt filtering
// doing the narrowing, already satisfies every §8 scenario.
const FileScopeFlow types.FlowId = 0

// FlowChain is an ordered list of assertions for one (FlowId, variable).
type FlowChain struct {
	Flow        types.FlowId
	Variable    string
	Assertions  []TypeAssertion
}

// AssertionsAt returns the assertions whose range contains pos, in order.
func (c *FlowChain) AssertionsAt(pos int) []TypeAssertion {
	var out []TypeAssertion
	for _, a := range c.Assertions {
		if a.Range.Contains(pos) {
			out = append(out, a)
		}
	}
	return out
}

// FlowIndex holds per-file flow chains keyed by (FlowId, variable-name).
type FlowIndex struct {
	chains map[syntax.FileId]map[flowKey]*FlowChain
}

type flowKey struct {
	Flow types.FlowId
	Name string
}

func NewFlowIndex() *FlowIndex {
	return &FlowIndex{chains: make(map[syntax.FileId]map[flowKey]*FlowChain)}
}

func (idx *FlowIndex) GetOrCreate(file syntax.FileId, flow types.FlowId, name string) *FlowChain {
	mp, ok := idx.chains[file]
	if !ok {
		mp = make(map[flowKey]*FlowChain)
		idx.chains[file] = mp
	}
	key := flowKey{Flow: flow, Name: name}
	c, ok := mp[key]
	if !ok {
		c = &FlowChain{Flow: flow, Variable: name}
		mp[key] = c
	}
	return c
}

func (idx *FlowIndex) Get(file syntax.FileId, flow types.FlowId, name string) (*FlowChain, bool) {
	mp, ok := idx.chains[file]
	if !ok {
		return nil, false
	}
	c, ok := mp[flowKey{Flow: flow, Name: name}]
	return c, ok
}

func (idx *FlowIndex) Remove(file syntax.FileId) {
	delete(idx.chains, file)
}
