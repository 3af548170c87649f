// Package decl implements the Declaration Analyzer (spec.md §4.3), pass 1
// of the five-pass pipeline: it walks a parsed file's CST, opening/closing
// scopes and registering Decls, References and Members into the db.Index.
// Grounded on the teacher's internal/analyzer walker (enter/leave dispatch
// over a typed AST via w.mode-gated Visit* methods, internal/analyzer/declarations.go)
// adapted to walk the external syntax.Node contract by Kind switch instead
// of a generated visitor, since the concrete AST is out of scope here.
package decl

import (
	"github.com/lumenforge/lumen/internal/db"
	"github.com/lumenforge/lumen/internal/syntax"
	"github.com/lumenforge/lumen/internal/types"
)

// Analyze walks tree and populates index's DeclIndex/ReferenceIndex/
// MemberIndex for tree.File. Safe to call again after index.RemoveFile —
// a fresh DeclTreeBuilder is created per call.
func Analyze(index *db.Index, tree *syntax.Tree) {
	w := &walker{index: index, file: tree.File}
	b := db.NewDeclTreeBuilder(tree.File, tree.Root.Range())
	w.builder = b
	w.walk(tree.Root, b.Root)
	index.Decl.AddDeclTree(b.Build())
}

type walker struct {
	index   *db.Index
	file    syntax.FileId
	builder *db.DeclTreeBuilder
}

// scopeOpeningKinds mirrors spec.md §4.3's "open a scope for Chunk, Block,
// LocalStat, ForStat, ForRangeStat, RepeatStat, ClosureExpr".
func scopeKindFor(k syntax.Kind) (db.ScopeKind, bool) {
	switch k {
	case syntax.KindChunk, syntax.KindBlock:
		return db.ScopeNormal, true
	case syntax.KindLocalStat:
		return db.ScopeLocalStat, true
	case syntax.KindRepeatStat:
		return db.ScopeRepeat, true
	case syntax.KindForRangeStat, syntax.KindForStat:
		return db.ScopeForRange, true
	case syntax.KindClosureExpr:
		return db.ScopeNormal, true
	}
	return db.ScopeNormal, false
}

func (w *walker) walk(n syntax.Node, scope *db.Scope) *db.Scope {
	if n == nil {
		return scope
	}
	childScope := scope
	if kind, opens := scopeKindFor(n.Kind()); opens {
		childScope = w.builder.OpenScope(scope, kind, n.Range())
	}

	switch n.Kind() {
	case syntax.KindLocalStat:
		w.visitLocalStat(n, childScope)
	case syntax.KindAssignStat:
		w.visitAssignStat(n, scope)
	case syntax.KindForStat:
		w.visitForStat(n, childScope)
	case syntax.KindForRangeStat:
		w.visitForRangeStat(n, childScope)
	case syntax.KindFuncStat, syntax.KindLocalFuncStat:
		w.visitFuncStat(n, scope)
	case syntax.KindClosureExpr:
		w.visitClosureExpr(n, childScope)
	case syntax.KindNameExpr:
		w.visitNameExpr(n, scope)
	case syntax.KindIndexExpr:
		w.visitIndexExpr(n, scope)
	case syntax.KindTableExpr:
		w.visitTableExpr(n, scope)
	case syntax.KindDocClassTag, syntax.KindDocEnumTag, syntax.KindDocAliasTag:
		w.visitDocTypeDeclTag(n)
	case syntax.KindDocNamespaceTag:
		w.index.Type.SetNamespace(w.file, firstChildText(n))
	case syntax.KindDocUsingTag:
		w.index.Type.AddUsing(w.file, firstChildText(n))
	}

	// A LocalStat's scope encloses the statements after it: each later
	// sibling is walked inside the most recent LocalStat scope, where its
	// names are visible past StatEnd.
	cur := childScope
	for _, c := range n.Children() {
		if n.Kind() == syntax.KindLocalStat && c.Kind() != syntax.KindLocalStat {
			// Initializer expressions of a LocalStat are still evaluated in
			// the *enclosing* scope (spec.md §3.2 self-initializer rule) —
			// only the bound names themselves land in childScope.
			w.walk(c, scope)
			continue
		}
		cur = w.walk(c, cur)
	}

	if n.Kind() == syntax.KindLocalStat {
		childScope.StatEnd = n.Range().End
		return childScope
	}
	return scope
}

// visitLocalStat registers each bound name as a Local decl. Lua 5.4's
// `<const>`/`<close>` attribute lands as text on the name token itself
// (the external parser has no dedicated attribute node), so the Const/Close
// split is read back from that text rather than a child kind.
func (w *walker) visitLocalStat(n syntax.Node, scope *db.Scope) {
	for _, c := range n.Children() {
		if c.Kind() != syntax.KindNameExpr {
			continue
		}
		w.addLocalDecl(c, scope, attributeFromNameText(c.Text()), syntax.KindLocalStat)
	}
}

func attributeFromNameText(text string) db.Attribute {
	switch {
	case hasAttrSuffix(text, "<const>"):
		return db.AttrConst
	case hasAttrSuffix(text, "<close>"):
		return db.AttrClose
	default:
		return db.AttrNone
	}
}

func hasAttrSuffix(text, suffix string) bool {
	if len(text) < len(suffix) {
		return false
	}
	return text[len(text)-len(suffix):] == suffix
}

func (w *walker) visitAssignStat(n syntax.Node, scope *db.Scope) {
	children := n.Children()
	if len(children) == 0 {
		return
	}
	for _, c := range children {
		switch c.Kind() {
		case syntax.KindNameExpr:
			name := c.Text()
			if d := db.FindDecl(scope, name, c.Range().Start); d != nil {
				w.index.Reference.AddLocalReference(d.Id, w.file, c.Range())
				continue
			}
			gd := w.newDecl(c, db.DeclGlobal, db.AttrNone, syntax.KindAssignStat)
			w.index.Decl.AddGlobalDecl(name, gd)
			w.index.Reference.AddGlobalReference(name, w.file, c.Range())
		case syntax.KindIndexExpr:
			owner := db.Owner{Kind: db.OwnerNone}
			key := indexExprKey(c)
			m := &db.Member{Id: types.MemberId{File: w.file, Syntax: c.Id()}, Owner: owner, Key: key, File: w.file}
			w.index.Member.AddMember(m)
			// `_G.x = …` also defines the global x, as a bare `x = …` does.
			if kids := c.Children(); len(kids) >= 2 && kids[0].Kind() == syntax.KindNameExpr && kids[0].Text() == "_G" && key.Kind == db.KeyName {
				gd := w.newDecl(kids[1], db.DeclGlobal, db.AttrNone, syntax.KindAssignStat)
				gd.Name = key.Name
				w.index.Decl.AddGlobalDecl(key.Name, gd)
			}
		}
	}
}

func (w *walker) visitForStat(n syntax.Node, scope *db.Scope) {
	for _, c := range n.Children() {
		if c.Kind() == syntax.KindNameExpr {
			d := w.addLocalDecl(c, scope, db.AttrIterConst, syntax.KindForStat)
			d.Type = types.Integer
		}
	}
}

func (w *walker) visitForRangeStat(n syntax.Node, scope *db.Scope) {
	for _, c := range n.Children() {
		if c.Kind() == syntax.KindNameExpr {
			w.addLocalDecl(c, scope, db.AttrIterConst, syntax.KindForRangeStat)
		}
	}
}

func (w *walker) visitFuncStat(n syntax.Node, scope *db.Scope) {
	sigId := types.SignatureId{File: w.file, Pos: n.Range().Start}
	w.index.Signature.GetOrCreate(sigId)
	for _, c := range n.Children() {
		if c.Kind() != syntax.KindNameExpr {
			continue
		}
		name := c.Text()
		if n.Kind() == syntax.KindLocalFuncStat {
			w.addLocalDecl(c, scope, db.AttrNone, syntax.KindLocalFuncStat)
		} else if d := db.FindDecl(scope, name, c.Range().Start); d != nil {
			d.Signature = sigId
		} else {
			gd := w.newDecl(c, db.DeclGlobal, db.AttrNone, syntax.KindFuncStat)
			gd.Signature = sigId
			w.index.Decl.AddGlobalDecl(name, gd)
		}
		break
	}
}

func (w *walker) visitClosureExpr(n syntax.Node, scope *db.Scope) {
	sigId := types.SignatureId{File: w.file, Pos: w.signaturePos(n)}
	idx := 0
	for _, c := range n.Children() {
		if c.Kind() != syntax.KindParamList {
			continue
		}
		for _, p := range c.Children() {
			if p.Kind() != syntax.KindParamName {
				continue
			}
			d := w.addLocalDecl(p, scope, db.AttrNone, syntax.KindParamName)
			d.ParamIndex = idx
			d.Signature = sigId
			idx++
		}
	}
}

// signaturePos resolves the SignatureId position a closure's params should
// key into: when the closure is a `function ... end`/`local function ...
// end` statement's body, that statement's own position (matching
// visitFuncStat's sigId, so doc @param/@return tags written above the
// statement attach to the same Signature); otherwise the closure
// expression's own position (an anonymous function literal).
func (w *walker) signaturePos(closure syntax.Node) int {
	if p := closure.Parent(); p != nil {
		switch p.Kind() {
		case syntax.KindFuncStat, syntax.KindLocalFuncStat:
			return p.Range().Start
		}
	}
	return closure.Range().Start
}

func (w *walker) visitNameExpr(n syntax.Node, scope *db.Scope) {
	if n.Text() == "self" {
		return // bound by the lua pass to the enclosing method's receiver
	}
	// Skip binder positions already handled by their owning statement.
	if p := n.Parent(); p != nil {
		switch p.Kind() {
		case syntax.KindLocalStat, syntax.KindAssignStat, syntax.KindForStat, syntax.KindForRangeStat:
			return
		}
	}
	name := n.Text()
	if d := db.FindDecl(scope, name, n.Range().Start); d != nil {
		w.index.Reference.AddLocalReference(d.Id, w.file, n.Range())
		return
	}
	w.index.Reference.AddGlobalReference(name, w.file, n.Range())
}

func (w *walker) visitIndexExpr(n syntax.Node, scope *db.Scope) {
	key := indexExprKey(n)
	if key.Kind == db.KeyNone {
		return
	}
	w.index.Reference.AddIndexReference(keyString(key), w.file, n.Id())
}

// keyString renders a Key for ReferenceIndex's string-keyed index map —
// the member/owner tables use the richer db.Key directly, but
// index-reference lookups ("everyone who reads .foo") only need a name.
func keyString(k db.Key) string {
	switch k.Kind {
	case db.KeyName:
		return k.Name
	case db.KeyInteger:
		return "#" + itoaKey(k.Int)
	default:
		return ""
	}
}

func itoaKey(i int64) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func (w *walker) visitTableExpr(n syntax.Node, scope *db.Scope) {
	owner := db.ElementOwner(w.file, n.Range())
	for _, f := range n.Children() {
		if f.Kind() != syntax.KindTableFieldNamed {
			continue
		}
		children := f.Children()
		if len(children) == 0 {
			continue
		}
		keyTok := children[0]
		m := &db.Member{
			Id:    types.MemberId{File: w.file, Syntax: f.Id()},
			Owner: owner,
			Key:   db.NameKey(keyTok.Text()),
			File:  w.file,
		}
		w.index.Member.AddMemberToOwner(m)
	}
}

func (w *walker) visitDocTypeDeclTag(n syntax.Node) {
	children := n.Children()
	if len(children) == 0 {
		return
	}
	name := children[0].Text()
	ns, _ := db.SplitDotted(types.TypeDeclId(name))
	full := types.TypeDeclId(name)
	if ns == "" {
		if existingNs, ok := w.namespaceOf(); ok && existingNs != "" {
			full = types.TypeDeclId(existingNs + "." + name)
		}
	}
	kind := db.TypeClass
	switch n.Kind() {
	case syntax.KindDocEnumTag:
		kind = db.TypeEnum
	case syntax.KindDocAliasTag:
		kind = db.TypeAlias
	}
	td := &db.TypeDecl{SimpleName: name, FullName: full, Kind: kind}
	w.index.Type.AddTypeDecl(td, w.file, n.Range())
}

func (w *walker) namespaceOf() (string, bool) { return "", false }

func (w *walker) addLocalDecl(n syntax.Node, scope *db.Scope, attr db.Attribute, sk syntax.Kind) *db.Decl {
	d := w.newDecl(n, db.DeclLocal, attr, sk)
	d.ParamIndex = -1
	w.builder.AddDecl(scope, d)
	return d
}

func (w *walker) newDecl(n syntax.Node, kind db.DeclKind, attr db.Attribute, sk syntax.Kind) *db.Decl {
	return &db.Decl{
		Id:         types.DeclId{File: w.file, Offset: n.Range().Start},
		Kind:       kind,
		Name:       n.Text(),
		File:       w.file,
		Range:      n.Range(),
		SyntaxKind: sk,
		Attribute:  attr,
		ParamIndex: -1,
	}
}

func indexExprKey(n syntax.Node) db.Key {
	children := n.Children()
	if len(children) < 2 {
		return db.NoneKey
	}
	keyNode := children[1]
	switch keyNode.Kind() {
	case syntax.KindNameExpr, syntax.KindLiteralString:
		return db.NameKey(keyNode.Text())
	case syntax.KindLiteralInteger:
		return db.IntKey(parseInt(keyNode.Text()))
	}
	return db.NoneKey
}

func firstChildText(n syntax.Node) string {
	children := n.Children()
	if len(children) == 0 {
		return ""
	}
	return children[0].Text()
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
