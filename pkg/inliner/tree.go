package inliner

import (
	"inlay/pkg/lexer"
	"inlay/pkg/parser"
	"inlay/pkg/resolver"
	"inlay/pkg/scopes"
)

// unit is one body the transform settles independently: a function
// declaration, a function or arrow literal, or the module's top-level
// statement list. Call sites inside a unit splice into that unit only.
type unit struct {
	node   parser.Node // defining node; *parser.Program for the module body
	name   string      // display name for diagnostics
	params []*parser.Parameter
	body   *parser.BlockStatement // nil for the module body and expression arrows
	expr   parser.Expression      // expression body of an arrow, nil otherwise
	scope  *scopes.Scope          // function scope; module scope for the module body
}

// scopeTree indexes one module for the transform: a scope for every
// node that introduces one, every function unit, and every label name
// in use. All scopes chain up to the module scope the resolver
// maintains, so bindings the provisioner injects mid-transform are
// visible from every splice point without rebuilding anything.
type scopeTree struct {
	units  []*unit
	byNode map[parser.Node]*unit
	scopes map[parser.Node]*scopes.Scope
	labels map[string]bool
}

// scopeOf returns the recorded scope for a scope-introducing node.
// Nodes spliced in after the build are not in the tree; they sit in
// settled regions, so a fresh scope hung off the enclosing one is
// enough for the walk to pass through them.
func (t *scopeTree) scopeOf(node parser.Node, enclosing *scopes.Scope) *scopes.Scope {
	if s, ok := t.scopes[node]; ok {
		return s
	}
	s := scopes.NewScope(scopes.ScopeBlock, enclosing)
	if blk, ok := node.(*parser.BlockStatement); ok {
		scopes.DeclareBlock(s, blk.Statements)
	}
	t.scopes[node] = s
	return s
}

func buildTree(m *resolver.Module) *scopeTree {
	t := &scopeTree{
		byNode: make(map[parser.Node]*unit),
		scopes: make(map[parser.Node]*scopes.Scope),
		labels: make(map[string]bool),
	}
	top := &unit{node: m.Program, name: "<module>", scope: m.Scope()}
	t.units = append(t.units, top)
	t.byNode[m.Program] = top

	b := &treeBuilder{tree: t, scope: m.Scope()}
	for _, s := range m.Program.Statements {
		b.stmt(s)
	}
	return t
}

// treeBuilder walks the module once, mirroring the scope shape the
// scopes package builds during free-variable analysis so resolution
// during the transform sees identical bindings.
type treeBuilder struct {
	tree  *scopeTree
	scope *scopes.Scope
}

func (b *treeBuilder) push(kind scopes.ScopeKind) { b.scope = scopes.NewScope(kind, b.scope) }

func (b *treeBuilder) pop() { b.scope = b.scope.Outer() }

// function records a unit for a function-defining node and walks its
// interior. name is non-nil only for named function literals, whose
// name binds inside the function; declaration names are already bound
// in the enclosing block.
func (b *treeBuilder) function(node parser.Node, name *parser.Identifier, params []*parser.Parameter, body parser.Node, display string) {
	fnScope := scopes.NewScope(scopes.ScopeFunction, b.scope)
	b.tree.scopes[node] = fnScope

	u := &unit{node: node, name: display, params: params, scope: fnScope}
	b.tree.units = append(b.tree.units, u)
	b.tree.byNode[node] = u

	prev := b.scope
	b.scope = fnScope
	if name != nil {
		fnScope.Define(name.Value, scopes.FunctionBinding, node)
	}
	scopes.DeclareParams(fnScope, params)
	for _, p := range params {
		if p.Default != nil {
			b.expr(p.Default)
		}
	}
	switch nb := body.(type) {
	case *parser.BlockStatement:
		u.body = nb
		scopes.DeclareVars(fnScope, nb.Statements)
		b.block(nb)
	case parser.Expression:
		u.expr = nb
		b.expr(nb)
	}
	b.scope = prev
}

func (b *treeBuilder) block(blk *parser.BlockStatement) {
	b.push(scopes.ScopeBlock)
	b.tree.scopes[blk] = b.scope
	scopes.DeclareBlock(b.scope, blk.Statements)
	for _, s := range blk.Statements {
		b.stmt(s)
	}
	b.pop()
}

func (b *treeBuilder) stmt(stmt parser.Statement) {
	switch s := stmt.(type) {
	case *parser.LetStatement:
		if s.Value != nil {
			b.expr(s.Value)
		}
	case *parser.ConstStatement:
		if s.Value != nil {
			b.expr(s.Value)
		}
	case *parser.VarStatement:
		if s.Value != nil {
			b.expr(s.Value)
		}
	case *parser.ReturnStatement:
		if s.ReturnValue != nil {
			b.expr(s.ReturnValue)
		}
	case *parser.ExpressionStatement:
		if s.Expression != nil {
			b.expr(s.Expression)
		}
	case *parser.BlockStatement:
		b.block(s)
	case *parser.FunctionDeclaration:
		b.function(s, nil, s.Parameters, s.Body, s.Name.Value)
	case *parser.IfStatement:
		b.expr(s.Condition)
		b.stmt(s.Consequence)
		if s.Alternative != nil {
			b.stmt(s.Alternative)
		}
	case *parser.WhileStatement:
		b.expr(s.Condition)
		b.stmt(s.Body)
	case *parser.DoWhileStatement:
		b.stmt(s.Body)
		b.expr(s.Condition)
	case *parser.ForStatement:
		b.push(scopes.ScopeBlock)
		b.tree.scopes[s] = b.scope
		if s.Init != nil {
			scopes.DeclareBlock(b.scope, []parser.Statement{s.Init})
			b.stmt(s.Init)
		}
		if s.Condition != nil {
			b.expr(s.Condition)
		}
		if s.Update != nil {
			b.expr(s.Update)
		}
		b.stmt(s.Body)
		b.pop()
	case *parser.ForOfStatement:
		b.push(scopes.ScopeBlock)
		b.tree.scopes[s] = b.scope
		if s.Declaration != "" {
			b.scope.Define(s.Variable.Value, forOfKind(s.Declaration), s)
		}
		b.expr(s.Iterable)
		b.stmt(s.Body)
		b.pop()
	case *parser.LabeledStatement:
		b.tree.labels[s.Label.Value] = true
		b.stmt(s.Body)
	case *parser.ThrowStatement:
		b.expr(s.Value)
	case *parser.TryStatement:
		b.stmt(s.Block)
		if s.CatchBlock != nil {
			b.push(scopes.ScopeBlock)
			b.tree.scopes[s] = b.scope
			if s.CatchParam != nil {
				b.scope.Define(s.CatchParam.Value, scopes.CatchBinding, s)
			}
			b.block(s.CatchBlock)
			b.pop()
		}
		if s.FinallyBlock != nil {
			b.stmt(s.FinallyBlock)
		}
	case *parser.SwitchStatement:
		b.expr(s.Discriminant)
		b.push(scopes.ScopeBlock)
		b.tree.scopes[s] = b.scope
		for _, c := range s.Cases {
			scopes.DeclareBlock(b.scope, c.Body)
		}
		for _, c := range s.Cases {
			if c.Test != nil {
				b.expr(c.Test)
			}
			for _, cs := range c.Body {
				b.stmt(cs)
			}
		}
		b.pop()
	case *parser.ExportNamedDeclaration:
		if s.Declaration != nil {
			b.stmt(s.Declaration)
		}
	case *parser.ExportDefaultDeclaration:
		switch d := s.Declaration.(type) {
		case *parser.FunctionLiteral:
			b.function(d, d.Name, d.Parameters, d.Body, exportName(d.Name))
		case *parser.ArrowFunctionLiteral:
			b.function(d, nil, d.Parameters, d.Body, "default")
		case parser.Expression:
			b.expr(d)
		}
	}
}

func (b *treeBuilder) expr(expr parser.Expression) {
	switch e := expr.(type) {
	case *parser.TemplateLiteral:
		for _, sub := range e.Expressions {
			b.expr(sub)
		}
	case *parser.ArrayLiteral:
		for _, el := range e.Elements {
			b.expr(el)
		}
	case *parser.ObjectLiteral:
		for _, p := range e.Properties {
			if p.Computed && p.Key != nil {
				b.expr(p.Key)
			}
			if p.Value != nil {
				b.expr(p.Value)
			}
		}
	case *parser.SpreadElement:
		b.expr(e.Argument)
	case *parser.FunctionLiteral:
		b.function(e, e.Name, e.Parameters, e.Body, literalName(e.Name))
	case *parser.ArrowFunctionLiteral:
		b.function(e, nil, e.Parameters, e.Body, "<arrow>")
	case *parser.PrefixExpression:
		b.expr(e.Right)
	case *parser.InfixExpression:
		b.expr(e.Left)
		b.expr(e.Right)
	case *parser.AssignmentExpression:
		b.expr(e.Target)
		b.expr(e.Value)
	case *parser.UpdateExpression:
		b.expr(e.Argument)
	case *parser.TernaryExpression:
		b.expr(e.Condition)
		b.expr(e.Consequence)
		b.expr(e.Alternative)
	case *parser.CallExpression:
		b.expr(e.Function)
		for _, arg := range e.Arguments {
			b.expr(arg)
		}
	case *parser.NewExpression:
		b.expr(e.Callee)
		for _, arg := range e.Arguments {
			b.expr(arg)
		}
	case *parser.MemberExpression:
		b.expr(e.Object)
	case *parser.IndexExpression:
		b.expr(e.Left)
		b.expr(e.Index)
	case *parser.SequenceExpression:
		for _, sub := range e.Expressions {
			b.expr(sub)
		}
	}
}

func forOfKind(decl lexer.TokenType) scopes.BindingKind {
	switch decl {
	case lexer.CONST:
		return scopes.ConstBinding
	case lexer.VAR:
		return scopes.VarBinding
	default:
		return scopes.LetBinding
	}
}

func literalName(name *parser.Identifier) string {
	if name != nil {
		return name.Value
	}
	return "<fn>"
}

func exportName(name *parser.Identifier) string {
	if name != nil {
		return name.Value
	}
	return "default"
}
