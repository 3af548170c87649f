package diagnostic

import (
	"fmt"

	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/diag"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// parseErrorChecker forwards the parser's own errors verbatim (spec.md §7's
// "Parse error" variant) so a host never needs a second error channel.
type parseErrorChecker struct{}

func (parseErrorChecker) SupportCodes() []diag.Code { return nil }

func (parseErrorChecker) Check(ctx *Context) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(ctx.Tree.Errors))
	for _, e := range ctx.Tree.Errors {
		out = append(out, diag.Diagnostic{
			Severity: diag.SeverityError,
			Range:    e.Range,
			Message:  e.Message,
		})
	}
	return out
}

// missingReturnChecker flags a function declared (via @return) to resolve
// its return doc-first whose body doesn't guarantee a return on every path
// (spec.md §8 scenario 4: "one diagnostic with code MissingReturn on the
// end of g").
type missingReturnChecker struct{}

func (missingReturnChecker) SupportCodes() []diag.Code { return []diag.Code{diag.CodeMissingReturn} }

func (missingReturnChecker) Check(ctx *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkFuncs(ctx, func(n syntax.Node, sig *db.Signature) {
		if sig == nil || sig.ResolveReturn != db.ResolveDocResolve || sig.HasVariadicReturn() || len(sig.Returns) == 0 {
			return
		}
		body := funcBody(n)
		if body == nil || blockAlwaysReturns(body) {
			return
		}
		end := n.Range().End
		out = append(out, diag.Diagnostic{
			Code:     diag.CodeMissingReturn,
			Severity: diag.SeverityWarning,
			Range:    syntax.Range{Start: end, End: end},
			Message:  "missing return: function is declared to return a value on every path",
		})
	})
	return out
}

// redundantReturnChecker flags a bare `return` (no values) inside a
// function whose signature promises non-variadic return values.
type redundantReturnChecker struct{}

func (redundantReturnChecker) SupportCodes() []diag.Code {
	return []diag.Code{diag.CodeRedundantReturn}
}

func (redundantReturnChecker) Check(ctx *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	walkFuncs(ctx, func(n syntax.Node, sig *db.Signature) {
		if sig == nil || len(sig.Returns) == 0 {
			return
		}
		body := funcBody(n)
		if body == nil {
			return
		}
		var visit func(syntax.Node)
		visit = func(r syntax.Node) {
			if r.Kind() == syntax.KindReturnStat && len(r.Children()) == 0 {
				out = append(out, diag.Diagnostic{
					Code:     diag.CodeRedundantReturn,
					Severity: diag.SeverityWarning,
					Range:    r.Range(),
					Message:  "return has no values, but the function is declared to return one",
				})
			}
			if r.Kind() == syntax.KindClosureExpr && r != body {
				return // don't descend into nested functions' own returns
			}
			for _, c := range r.Children() {
				visit(c)
			}
		}
		visit(body)
	})
	return out
}

// missingParameterChecker flags a call that omits a non-nullable parameter
// (spec.md §4.10, honoring the "?"-nullable marker and overload count).
type missingParameterChecker struct{}

func (missingParameterChecker) SupportCodes() []diag.Code {
	return []diag.Code{diag.CodeMissingParameter}
}

func (missingParameterChecker) Check(ctx *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	var walk func(n syntax.Node)
	walk = func(n syntax.Node) {
		if n == nil {
			return
		}
		if n.Kind() == syntax.KindCallExpr {
			if d, ok := checkCallArgs(ctx, n); ok {
				out = append(out, d)
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(ctx.Tree.Root)
	return out
}

func checkCallArgs(ctx *Context, call syntax.Node) (diag.Diagnostic, bool) {
	sig, ok := ctx.Model.InferCallExprFuncAt(call)
	if !ok || sig == nil {
		return diag.Diagnostic{}, false
	}
	argCount := len(call.Children()) - 1
	for i, p := range sig.Params {
		if i < argCount {
			continue
		}
		if p.Nullable {
			continue
		}
		return diag.Diagnostic{
			Code:     diag.CodeMissingParameter,
			Severity: diag.SeverityError,
			Range:    call.Range(),
			Message:  fmt.Sprintf("missing argument for parameter %q", p.Name),
		}, true
	}
	return diag.Diagnostic{}, false
}

// deprecatedChecker flags any reference to a Decl/Member/Signature whose
// attached Properties carry @deprecated (spec.md §4.10).
type deprecatedChecker struct{}

func (deprecatedChecker) SupportCodes() []diag.Code { return []diag.Code{diag.CodeDeprecated} }

func (deprecatedChecker) Check(ctx *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	var walk func(n syntax.Node)
	walk = func(n syntax.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case syntax.KindNameExpr, syntax.KindIndexExpr:
			if owner, ok := ctx.Model.GetPropertyOwnerId(n); ok {
				if props, ok := ctx.Index.Property.Get(owner); ok && props.Deprecated {
					msg := "use of deprecated symbol"
					if props.DeprecatedMessage != "" {
						msg = "deprecated: " + props.DeprecatedMessage
					}
					out = append(out, diag.Diagnostic{
						Code:     diag.CodeDeprecated,
						Severity: diag.SeverityHint,
						Range:    n.Range(),
						Message:  msg,
					})
				}
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(ctx.Tree.Root)
	return out
}

// unusedLocalChecker flags a local declaration with zero local references
// (spec.md §4.10), skipping the conventional "_" throwaway name.
type unusedLocalChecker struct{}

func (unusedLocalChecker) SupportCodes() []diag.Code { return []diag.Code{diag.CodeUnusedLocal} }

func (unusedLocalChecker) Check(ctx *Context) []diag.Diagnostic {
	tree := ctx.Index.Decl.GetDeclTree(ctx.Model.File)
	if tree == nil {
		return nil
	}
	var out []diag.Diagnostic
	var walk func(s *db.Scope)
	walk = func(s *db.Scope) {
		if s == nil {
			return
		}
		for _, d := range s.Decls {
			if d.Kind != db.DeclLocal || d.Name == "_" || d.Attribute == db.AttrIterConst {
				continue
			}
			if len(ctx.Index.Reference.LocalReferences(d.Id)) == 0 {
				out = append(out, diag.Diagnostic{
					Code:     diag.CodeUnusedLocal,
					Severity: diag.SeverityHint,
					Range:    d.Range,
					Message:  fmt.Sprintf("unused local %q", d.Name),
				})
			}
		}
		for _, c := range s.Children {
			walk(c)
		}
	}
	walk(tree.Root)
	return out
}

// undefinedGlobalChecker flags a read of a global name with no registered
// Decl anywhere in the workspace (spec.md §8 scenario 5: removing the file
// that defined a global surfaces this on every remaining reader).
type undefinedGlobalChecker struct{}

func (undefinedGlobalChecker) SupportCodes() []diag.Code {
	return []diag.Code{diag.CodeUndefinedGlobal}
}

func (undefinedGlobalChecker) Check(ctx *Context) []diag.Diagnostic {
	var out []diag.Diagnostic
	var walk func(n syntax.Node, skip bool)
	walk = func(n syntax.Node, skip bool) {
		if n == nil {
			return
		}
		if n.Kind() == syntax.KindNameExpr && !skip {
			if _, ok := ctx.Index.Reference.DeclIdByRange(ctx.Model.File, n.Range().Start); !ok {
				if _, ok := ctx.Index.Decl.FindDeclAt(ctx.Model.File, n.Range().Start); !ok {
					name := n.Text()
					if _, ok := ctx.Index.Decl.GetGlobalDeclType(name); !ok {
						out = append(out, diag.Diagnostic{
							Code:     diag.CodeUndefinedGlobal,
							Severity: diag.SeverityError,
							Range:    n.Range(),
							Message:  fmt.Sprintf("undefined global %q", name),
						})
					}
				}
			}
		}
		bindsNames := n.Kind() == syntax.KindLocalStat || n.Kind() == syntax.KindForRangeStat ||
			n.Kind() == syntax.KindForStat || n.Kind() == syntax.KindParamList
		for _, c := range n.Children() {
			walk(c, bindsNames && c.Kind() == syntax.KindNameExpr)
		}
	}
	walk(ctx.Tree.Root, false)
	return out
}

// walkFuncs visits every FuncStat/LocalFuncStat/ClosureExpr node, resolving
// its Signature via the same position-keying convention decl.go/lua.go use
// (a named function statement's Signature is keyed at the statement's own
// position; a bare closure at its own) so fn never has to re-derive it.
func walkFuncs(ctx *Context, fn func(n syntax.Node, sig *db.Signature)) {
	var walk func(n syntax.Node)
	walk = func(n syntax.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case syntax.KindFuncStat, syntax.KindLocalFuncStat:
			id := types.SignatureId{File: ctx.Model.File, Pos: funcSignaturePos(n)}
			sig, _ := ctx.Index.Signature.Get(id)
			fn(n, sig)
		case syntax.KindClosureExpr:
			// A FuncStat/LocalFuncStat's own body closure is already
			// covered by the case above (same Signature, keyed at the
			// statement's position) — only visit closures standing on
			// their own, i.e. anonymous function literals.
			if p := n.Parent(); p != nil {
				switch p.Kind() {
				case syntax.KindFuncStat, syntax.KindLocalFuncStat:
					break
				default:
					id := types.SignatureId{File: ctx.Model.File, Pos: funcSignaturePos(n)}
					sig, _ := ctx.Index.Signature.Get(id)
					fn(n, sig)
				}
			} else {
				id := types.SignatureId{File: ctx.Model.File, Pos: funcSignaturePos(n)}
				sig, _ := ctx.Index.Signature.Get(id)
				fn(n, sig)
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(ctx.Tree.Root)
}

// funcSignaturePos mirrors decl.go's signaturePos: a FuncStat/LocalFuncStat
// node is keyed at its own position, and so is a ClosureExpr nested directly
// inside one (walkFuncs skips such closures and checks the statement); any
// other ClosureExpr is keyed at its own position.
func funcSignaturePos(n syntax.Node) int {
	if n.Kind() == syntax.KindClosureExpr {
		if p := n.Parent(); p != nil {
			switch p.Kind() {
			case syntax.KindFuncStat, syntax.KindLocalFuncStat:
				return p.Range().Start
			}
		}
	}
	return n.Range().Start
}

// funcBody finds the Block a FuncStat/LocalFuncStat/ClosureExpr executes:
// FuncStat/LocalFuncStat wrap a ClosureExpr child holding ParamList+Block,
// while a bare ClosureExpr owns its Block directly.
func funcBody(n syntax.Node) syntax.Node {
	if n.Kind() == syntax.KindClosureExpr {
		for _, c := range n.Children() {
			if c.Kind() == syntax.KindBlock {
				return c
			}
		}
		return nil
	}
	for _, c := range n.Children() {
		if c.Kind() == syntax.KindClosureExpr {
			return funcBody(c)
		}
	}
	return nil
}

// blockAlwaysReturns reports whether every control path through block ends
// in a return (spec.md §8 scenario 4's missing-return rule).
func blockAlwaysReturns(block syntax.Node) bool {
	children := block.Children()
	if len(children) == 0 {
		return false
	}
	return stmtAlwaysReturns(children[len(children)-1])
}

func stmtAlwaysReturns(n syntax.Node) bool {
	switch n.Kind() {
	case syntax.KindReturnStat:
		return true
	case syntax.KindDoStat:
		for _, c := range n.Children() {
			if c.Kind() == syntax.KindBlock {
				return blockAlwaysReturns(c)
			}
		}
		return false
	case syntax.KindIfStat:
		hasElse := false
		for _, c := range n.Children() {
			if c.Kind() != syntax.KindIfClause {
				continue
			}
			body := ifClauseBody(c)
			if body == nil || !blockAlwaysReturns(body) {
				return false
			}
			if !ifClauseHasCond(c) {
				hasElse = true
			}
		}
		return hasElse
	default:
		return false
	}
}

func ifClauseHasCond(clause syntax.Node) bool { return len(clause.Children()) > 1 }

func ifClauseBody(clause syntax.Node) syntax.Node {
	children := clause.Children()
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children[0]
	default:
		return children[1]
	}
}
