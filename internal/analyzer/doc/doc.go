// Package doc implements the Doc Analyzer (spec.md §4.4), pass 2: it reads
// LuaDoc comment tags and the type-expression grammar, populating
// TypeIndex/SignatureIndex/PropertyIndex/DiagnosticIndex. Grounded on the
// teacher's internal/analyzer/declarations_types.go (tag-by-tag dispatch
// building typesystem.Type from an AST node) generalized to read LuaDoc
// tag nodes instead of funxy's native type-annotation syntax.
package doc

import (
	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// Analyze walks every KindDocComment node in tree and attaches the tags it
// carries to the DB. ownerSignature resolves the closest following closure
// for tags (@param/@return/@overload/@generic) that attach to a function;
// it is supplied by the caller since that adjacency is a CST-shape detail
// the external parser, not this package, is responsible for exposing.
func Analyze(index *db.Index, tree *syntax.Tree, ownerSignature func(doc syntax.Node) (types.SignatureId, bool)) {
	a := &analyzer{index: index, file: tree.File, ownerSignature: ownerSignature}
	a.walk(tree.Root)
}

type analyzer struct {
	index          *db.Index
	file           syntax.FileId
	ownerSignature func(syntax.Node) (types.SignatureId, bool)
	// currentGenerics gives type-expression name resolution a
	// place to check "is this a generic parameter in scope" before falling
	// back to TypeIndex (spec.md §4.4 name-resolution rule).
	currentGenerics map[string]bool
}

func (a *analyzer) walk(n syntax.Node) {
	if n == nil {
		return
	}
	if n.Kind() == syntax.KindDocComment {
		for _, tag := range n.Children() {
			a.visitTag(tag)
		}
	}
	for _, c := range n.Children() {
		a.walk(c)
	}
}

func (a *analyzer) visitTag(tag syntax.Node) {
	switch tag.Kind() {
	case syntax.KindDocClassTag:
		a.visitClassTag(tag)
	case syntax.KindDocEnumTag:
		a.visitEnumTag(tag)
	case syntax.KindDocAliasTag:
		a.visitAliasTag(tag)
	case syntax.KindDocFieldTag:
		a.visitFieldTag(tag)
	case syntax.KindDocParamTag:
		a.visitParamTag(tag)
	case syntax.KindDocReturnTag:
		a.visitReturnTag(tag)
	case syntax.KindDocOverloadTag:
		a.visitOverloadTag(tag)
	case syntax.KindDocGenericTag:
		a.visitGenericTag(tag)
	case syntax.KindDocCastTag:
		a.visitCastTag(tag)
	case syntax.KindDocDiagnosticTag:
		a.visitDiagnosticTag(tag)
	case syntax.KindDocDeprecatedTag:
		a.attachProp(tag, func(p *db.Properties) { p.Deprecated = true; p.DeprecatedMessage = firstText(tag) })
	case syntax.KindDocAsyncTag:
		a.attachProp(tag, func(p *db.Properties) { p.Async = true })
	case syntax.KindDocNodiscardTag:
		a.attachProp(tag, func(p *db.Properties) { p.NoDiscard = true })
	case syntax.KindDocVersionTag:
		a.attachProp(tag, func(p *db.Properties) { p.Version = firstText(tag) })
	case syntax.KindDocVisibilityTag:
		a.attachProp(tag, func(p *db.Properties) { p.Visibility = visibilityOf(firstText(tag)) })
	case syntax.KindDocSourceTag:
		a.attachProp(tag, func(p *db.Properties) { p.Source = firstText(tag) })
	case syntax.KindDocSeeTag:
		a.attachProp(tag, func(p *db.Properties) { p.SeeRefs = append(p.SeeRefs, firstText(tag)) })
	case syntax.KindDocNamespaceTag:
		a.index.Type.SetNamespace(a.file, firstText(tag))
	case syntax.KindDocUsingTag:
		a.index.Type.AddUsing(a.file, firstText(tag))
	}
}

func (a *analyzer) typeDeclId(simpleOrDotted string) types.TypeDeclId {
	if _, exists := a.index.Type.FindTypeDecl(a.file, simpleOrDotted); exists {
		return types.TypeDeclId(simpleOrDotted)
	}
	if ns, ok := a.currentNamespace(); ok && ns != "" {
		return types.TypeDeclId(ns + "." + simpleOrDotted)
	}
	return types.TypeDeclId(simpleOrDotted)
}

func (a *analyzer) currentNamespace() (string, bool) { return "", false }

func (a *analyzer) visitClassTag(tag syntax.Node) {
	children := tag.Children()
	if len(children) == 0 {
		return
	}
	name := children[0].Text()
	var generics []db.GenericParam
	var supertypes []types.Type
	prevGenerics := a.currentGenerics
	a.currentGenerics = map[string]bool{}
	for _, c := range children[1:] {
		switch c.Kind() {
		case syntax.KindDocGenericTag:
			gp := a.genericParam(c)
			generics = append(generics, gp)
			a.currentGenerics[gp.Name] = true
		case syntax.KindDocTypeName:
			supertypes = append(supertypes, types.Ref{Name: a.typeDeclId(c.Text())})
		}
	}
	td := &db.TypeDecl{
		SimpleName: name,
		FullName:   a.typeDeclId(name),
		Kind:       db.TypeClass,
		Attributes: attrsOf(tag),
		Generics:   generics,
		Supertypes: supertypes,
	}
	a.index.Type.AddTypeDecl(td, a.file, tag.Range())
	a.currentGenerics = prevGenerics
}

func (a *analyzer) visitEnumTag(tag syntax.Node) {
	children := tag.Children()
	if len(children) == 0 {
		return
	}
	name := children[0].Text()
	var base types.Type
	var members []types.Type
	var keys []string
	for _, c := range children[1:] {
		switch c.Kind() {
		case syntax.KindDocTypeName:
			base = a.resolveTypeExpr(c)
		case syntax.KindDocEnumField:
			keys = append(keys, c.Text())
			members = append(members, a.enumMemberValue(c, base))
		}
	}
	td := &db.TypeDecl{
		SimpleName:  name,
		FullName:    a.typeDeclId(name),
		Kind:        db.TypeEnum,
		Attributes:  attrsOf(tag),
		EnumBase:    base,
		EnumMembers: members,
		EnumKeys:    keys,
	}
	a.index.Type.AddTypeDecl(td, a.file, tag.Range())
}

func (a *analyzer) enumMemberValue(field syntax.Node, base types.Type) types.Type {
	if base != nil && base.Tag() == types.TagString {
		return types.StringConst{Value: field.Text()}
	}
	return types.IntegerConst{Value: 0}
}

func (a *analyzer) visitAliasTag(tag syntax.Node) {
	children := tag.Children()
	if len(children) == 0 {
		return
	}
	name := children[0].Text()
	td := &db.TypeDecl{SimpleName: name, FullName: a.typeDeclId(name), Kind: db.TypeAlias, Attributes: attrsOf(tag)}
	var unionDescs []string
	for _, c := range children[1:] {
		switch c.Kind() {
		case syntax.KindDocAliasUnionItem:
			td.AliasUnion = append(td.AliasUnion, a.resolveTypeExpr(c))
			unionDescs = append(unionDescs, firstText(c))
		default:
			if td.AliasOrigin == nil && td.AliasUnion == nil {
				td.AliasOrigin = a.resolveTypeExpr(c)
			}
		}
	}
	td.AliasDescs = unionDescs
	a.index.Type.AddTypeDecl(td, a.file, tag.Range())
}

func (a *analyzer) visitFieldTag(tag syntax.Node) {
	children := tag.Children()
	if len(children) < 2 {
		return
	}
	owner := a.enclosingClass(tag)
	if owner == "" {
		return
	}
	nameNode := children[0]
	name := nameNode.Text()
	nullable := hasSuffix(name, "?")
	if nullable {
		name = name[:len(name)-1]
	}
	fieldType := a.resolveTypeExpr(children[1])
	if nullable {
		fieldType = types.Nullable{Elem: fieldType}
	}
	m := &db.Member{
		Id:           types.MemberId{File: a.file, Syntax: tag.Id()},
		Owner:        db.TypeOwner(owner),
		Key:          db.NameKey(name),
		File:         a.file,
		DeclaredType: fieldType,
	}
	a.index.Member.AddMemberToOwner(m)
}

func (a *analyzer) enclosingClass(n syntax.Node) types.TypeDeclId {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() != syntax.KindDocComment {
			continue
		}
		for _, sib := range p.Children() {
			if sib.Kind() == syntax.KindDocClassTag {
				children := sib.Children()
				if len(children) > 0 {
					return a.typeDeclId(children[0].Text())
				}
			}
		}
	}
	return ""
}

func (a *analyzer) visitParamTag(tag syntax.Node) {
	sigId, ok := a.ownerSignature(tag)
	if !ok {
		return
	}
	children := tag.Children()
	if len(children) < 1 {
		return
	}
	name := children[0].Text()
	nullable := hasSuffix(name, "?")
	if nullable {
		name = name[:len(name)-1]
	}
	var pt types.Type = types.Unknown
	desc := ""
	if len(children) > 1 {
		pt = a.resolveTypeExpr(children[1])
	}
	if len(children) > 2 {
		desc = children[2].Text()
	}
	sig := a.index.Signature.GetOrCreate(sigId)
	sig.ParamNames = append(sig.ParamNames, name)
	sig.Params = append(sig.Params, types.Param{Name: name, Type: pt, Nullable: nullable, Description: desc})
}

func (a *analyzer) visitReturnTag(tag syntax.Node) {
	sigId, ok := a.ownerSignature(tag)
	if !ok {
		return
	}
	children := tag.Children()
	if len(children) == 0 {
		return
	}
	rt := a.resolveTypeExpr(children[0])
	desc := ""
	if len(children) > 1 {
		desc = children[1].Text()
	}
	sig := a.index.Signature.GetOrCreate(sigId)
	sig.Returns = append(sig.Returns, db.ReturnInfo{Type: rt, Description: desc})
	sig.ResolveReturn = db.ResolveDocResolve
}

func (a *analyzer) visitOverloadTag(tag syntax.Node) {
	sigId, ok := a.ownerSignature(tag)
	if !ok {
		return
	}
	children := tag.Children()
	if len(children) == 0 {
		return
	}
	ft, ok := a.resolveTypeExpr(children[0]).(types.DocFunction)
	if !ok {
		return
	}
	sig := a.index.Signature.GetOrCreate(sigId)
	overload := &db.Signature{Params: docFuncParams(ft), ParamNames: docFuncParamNames(ft)}
	for _, r := range ft.Returns {
		overload.Returns = append(overload.Returns, db.ReturnInfo{Type: r})
	}
	sig.Overloads = append(sig.Overloads, overload)
}

func docFuncParams(f types.DocFunction) []types.Param { return f.Params }
func docFuncParamNames(f types.DocFunction) []string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return names
}

func (a *analyzer) visitGenericTag(tag syntax.Node) {
	sigId, ok := a.ownerSignature(tag)
	if !ok {
		return
	}
	gp := a.genericParam(tag)
	sig := a.index.Signature.GetOrCreate(sigId)
	sig.Generics = append(sig.Generics, gp)
}

func (a *analyzer) genericParam(tag syntax.Node) db.GenericParam {
	children := tag.Children()
	if len(children) == 0 {
		return db.GenericParam{}
	}
	gp := db.GenericParam{Name: children[0].Text()}
	if len(children) > 1 {
		gp.Bound = a.resolveTypeExpr(children[1])
	}
	return gp
}

func (a *analyzer) visitCastTag(tag syntax.Node) {
	children := tag.Children()
	if len(children) < 2 {
		return
	}
	name := children[0].Text()
	block := enclosingBlockRange(tag)
	flow := a.index.Flow.GetOrCreate(a.file, db.FileScopeFlow, name)
	for _, c := range children[1:] {
		sign := 1
		text := c.Text()
		if hasPrefix(text, "-") {
			sign = -1
		}
		t := a.resolveTypeExpr(c)
		kind := db.AssertAdd
		if sign < 0 {
			kind = db.AssertRemove
		}
		flow.Assertions = append(flow.Assertions, db.TypeAssertion{Kind: kind, Type: t, Range: block})
	}
}

func (a *analyzer) visitDiagnosticTag(tag syntax.Node) {
	children := tag.Children()
	if len(children) == 0 {
		return
	}
	actionText := children[0].Text()
	action := diagActionOf(actionText)
	region := enclosingBlockRange(tag)
	if action == db.ActionDisableNextLine || action == db.ActionDisableLine {
		region = tag.Range()
	}
	if len(children) == 1 {
		a.index.Diagnostic.AddRegion(a.file, db.DiagRegion{Action: action, Range: region})
		return
	}
	for _, c := range children[1:] {
		a.index.Diagnostic.AddRegion(a.file, db.DiagRegion{Action: action, Code: c.Text(), Range: region})
	}
}

func (a *analyzer) attachProp(tag syntax.Node, mutate func(*db.Properties)) {
	owner, ok := a.propertyOwner(tag)
	if !ok {
		return
	}
	a.index.Property.Attach(a.file, owner, mutate)
}

// propertyOwner prefers an enclosing class, else the closest following
// signature (spec.md §4.4's "attach to the closest following closure").
func (a *analyzer) propertyOwner(tag syntax.Node) (db.PropertyOwnerId, bool) {
	if cls := a.enclosingClass(tag); cls != "" {
		return db.PropertyOwnerId{Kind: db.OwnerKindTypeDecl, TypeDecl: cls}, true
	}
	if sig, ok := a.ownerSignature(tag); ok {
		return db.PropertyOwnerId{Kind: db.OwnerKindSignature, Signature: sig}, true
	}
	return db.PropertyOwnerId{}, false
}

func attrsOf(tag syntax.Node) db.TypeAttr {
	var attrs db.TypeAttr
	for _, c := range tag.Children() {
		switch c.Text() {
		case "exact":
			attrs |= db.AttrExact
		case "partial":
			attrs |= db.AttrPartial
		case "local":
			attrs |= db.AttrLocal
		case "key":
			attrs |= db.AttrKey
		}
	}
	return attrs
}

func diagActionOf(s string) db.DiagAction {
	switch s {
	case "disable":
		return db.ActionDisable
	case "enable":
		return db.ActionEnable
	case "disable-next-line":
		return db.ActionDisableNextLine
	case "disable-line":
		return db.ActionDisableLine
	default:
		return db.ActionDisable
	}
}

func visibilityOf(s string) db.Visibility {
	switch s {
	case "protected":
		return db.VisibilityProtected
	case "private":
		return db.VisibilityPrivate
	case "package":
		return db.VisibilityPackage
	default:
		return db.VisibilityPublic
	}
}

func enclosingBlockRange(n syntax.Node) syntax.Range {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == syntax.KindBlock || p.Kind() == syntax.KindChunk {
			return p.Range()
		}
	}
	return n.Range()
}

func firstText(n syntax.Node) string {
	children := n.Children()
	if len(children) == 0 {
		return ""
	}
	return children[0].Text()
}

func hasSuffix(s, suf string) bool { return len(s) >= len(suf) && s[len(s)-len(suf):] == suf }
func hasPrefix(s, pre string) bool { return len(s) >= len(pre) && s[:len(pre)] == pre }
