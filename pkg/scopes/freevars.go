package scopes

import (
	"inlay/pkg/lexer"
	"inlay/pkg/parser"
)

// FreeVars lists the identifiers node references without binding them,
// in first-use order. For function nodes the parameters, the own name,
// and everything declared in the body count as bound; for other nodes
// only bindings introduced inside them do. Member properties and
// non-computed object keys are names, not references, and never appear
// in the result.
func FreeVars(node parser.Node) []string {
	var order []string
	seen := make(map[string]bool)
	w := &useWalker{
		scope: NewScope(ScopeFunction, nil),
		onUse: func(id *parser.Identifier) {
			if seen[id.Value] {
				return
			}
			seen[id.Value] = true
			order = append(order, id.Value)
		},
	}
	w.walk(node)
	return order
}

// RenameFree rewrites free references to the keys of renames into the
// mapped names, leaving shadowed uses alone. The rewrite happens in
// place, so node must be an owned clone. Shorthand object properties
// are expanded to `key: value` form when their value is renamed, which
// keeps the property name stable.
func RenameFree(node parser.Node, renames map[string]string) {
	if len(renames) == 0 {
		return
	}
	w := &useWalker{
		scope: NewScope(ScopeFunction, nil),
		onUse: func(id *parser.Identifier) {
			if to, ok := renames[id.Value]; ok {
				id.Value = to
				id.Token.Literal = to
			}
		},
		onShorthand: func(prop *parser.ObjectProperty) {
			id := prop.Value.(*parser.Identifier)
			if to, ok := renames[id.Value]; ok {
				id.Value = to
				id.Token.Literal = to
				prop.Shorthand = false
			}
		},
	}
	w.walk(node)
}

// useWalker traverses a node maintaining the scope chain it builds
// along the way, and reports identifier uses that are free relative to
// the traversal root. Declaration positions, labels, member properties
// and non-computed keys are never reported.
type useWalker struct {
	scope       *Scope
	onUse       func(*parser.Identifier)
	onShorthand func(*parser.ObjectProperty)
}

func (w *useWalker) walk(node parser.Node) {
	switch n := node.(type) {
	case *parser.Program:
		DeclareBlock(w.scope, n.Statements)
		DeclareVars(w.scope, n.Statements)
		for _, s := range n.Statements {
			w.stmt(s)
		}
	case *parser.FunctionDeclaration:
		w.function(n.Name, n.Parameters, n.Body)
	case *parser.FunctionLiteral:
		w.function(n.Name, n.Parameters, n.Body)
	case *parser.ArrowFunctionLiteral:
		w.arrow(n)
	case *parser.BlockStatement:
		DeclareVars(w.scope, n.Statements)
		w.block(n)
	case parser.Statement:
		stmts := []parser.Statement{n}
		DeclareBlock(w.scope, stmts)
		DeclareVars(w.scope, stmts)
		w.stmt(n)
	case parser.Expression:
		w.expr(n)
	}
}

func (w *useWalker) use(id *parser.Identifier) {
	if id == nil || w.scope.Has(id.Value) {
		return
	}
	w.onUse(id)
}

func (w *useWalker) shorthand(prop *parser.ObjectProperty) {
	id, ok := prop.Value.(*parser.Identifier)
	if !ok {
		w.expr(prop.Value)
		return
	}
	if w.scope.Has(id.Value) {
		return
	}
	if w.onShorthand != nil {
		w.onShorthand(prop)
		return
	}
	w.onUse(id)
}

func (w *useWalker) push(kind ScopeKind) { w.scope = NewScope(kind, w.scope) }

func (w *useWalker) pop() { w.scope = w.scope.Outer() }

func (w *useWalker) function(name *parser.Identifier, params []*parser.Parameter, body *parser.BlockStatement) {
	w.push(ScopeFunction)
	if name != nil {
		w.scope.Define(name.Value, FunctionBinding, nil)
	}
	DeclareParams(w.scope, params)
	for _, p := range params {
		if p.Default != nil {
			w.expr(p.Default)
		}
	}
	if body != nil {
		DeclareVars(w.scope, body.Statements)
		w.block(body)
	}
	w.pop()
}

func (w *useWalker) arrow(a *parser.ArrowFunctionLiteral) {
	w.push(ScopeFunction)
	DeclareParams(w.scope, a.Parameters)
	for _, p := range a.Parameters {
		if p.Default != nil {
			w.expr(p.Default)
		}
	}
	switch body := a.Body.(type) {
	case *parser.BlockStatement:
		DeclareVars(w.scope, body.Statements)
		w.block(body)
	case parser.Expression:
		w.expr(body)
	}
	w.pop()
}

func (w *useWalker) block(b *parser.BlockStatement) {
	w.push(ScopeBlock)
	DeclareBlock(w.scope, b.Statements)
	for _, s := range b.Statements {
		w.stmt(s)
	}
	w.pop()
}

func (w *useWalker) stmt(stmt parser.Statement) {
	switch s := stmt.(type) {
	case *parser.LetStatement:
		if s.Value != nil {
			w.expr(s.Value)
		}
	case *parser.ConstStatement:
		if s.Value != nil {
			w.expr(s.Value)
		}
	case *parser.VarStatement:
		if s.Value != nil {
			w.expr(s.Value)
		}
	case *parser.ReturnStatement:
		if s.ReturnValue != nil {
			w.expr(s.ReturnValue)
		}
	case *parser.ExpressionStatement:
		if s.Expression != nil {
			w.expr(s.Expression)
		}
	case *parser.BlockStatement:
		w.block(s)
	case *parser.FunctionDeclaration:
		// The name is already bound in the enclosing block.
		w.function(nil, s.Parameters, s.Body)
	case *parser.IfStatement:
		w.expr(s.Condition)
		w.stmt(s.Consequence)
		if s.Alternative != nil {
			w.stmt(s.Alternative)
		}
	case *parser.WhileStatement:
		w.expr(s.Condition)
		w.stmt(s.Body)
	case *parser.DoWhileStatement:
		w.stmt(s.Body)
		w.expr(s.Condition)
	case *parser.ForStatement:
		w.push(ScopeBlock)
		if s.Init != nil {
			declareStatement(w.scope, s.Init)
			w.stmt(s.Init)
		}
		if s.Condition != nil {
			w.expr(s.Condition)
		}
		if s.Update != nil {
			w.expr(s.Update)
		}
		w.stmt(s.Body)
		w.pop()
	case *parser.ForOfStatement:
		w.push(ScopeBlock)
		if s.Declaration != "" {
			w.scope.Define(s.Variable.Value, forOfBindingKind(s), nil)
		} else {
			w.use(s.Variable)
		}
		w.expr(s.Iterable)
		w.stmt(s.Body)
		w.pop()
	case *parser.LabeledStatement:
		w.stmt(s.Body)
	case *parser.ThrowStatement:
		w.expr(s.Value)
	case *parser.TryStatement:
		w.stmt(s.Block)
		if s.CatchBlock != nil {
			w.push(ScopeBlock)
			if s.CatchParam != nil {
				w.scope.Define(s.CatchParam.Value, CatchBinding, nil)
			}
			w.block(s.CatchBlock)
			w.pop()
		}
		if s.FinallyBlock != nil {
			w.stmt(s.FinallyBlock)
		}
	case *parser.SwitchStatement:
		w.expr(s.Discriminant)
		w.push(ScopeBlock)
		for _, c := range s.Cases {
			DeclareBlock(w.scope, c.Body)
		}
		for _, c := range s.Cases {
			if c.Test != nil {
				w.expr(c.Test)
			}
			for _, cs := range c.Body {
				w.stmt(cs)
			}
		}
		w.pop()
	case *parser.ExportNamedDeclaration:
		if s.Declaration != nil {
			w.stmt(s.Declaration)
		}
		if s.Source == nil {
			for _, spec := range s.Specifiers {
				w.use(spec.Local)
			}
		}
	case *parser.ExportDefaultDeclaration:
		switch d := s.Declaration.(type) {
		case *parser.FunctionLiteral:
			w.function(d.Name, d.Parameters, d.Body)
		case parser.Expression:
			w.expr(d)
		}
	}
}

func forOfBindingKind(s *parser.ForOfStatement) BindingKind {
	switch s.Declaration {
	case lexer.CONST:
		return ConstBinding
	case lexer.VAR:
		return VarBinding
	default:
		return LetBinding
	}
}

func (w *useWalker) expr(expr parser.Expression) {
	switch e := expr.(type) {
	case *parser.Identifier:
		w.use(e)
	case *parser.TemplateLiteral:
		for _, sub := range e.Expressions {
			w.expr(sub)
		}
	case *parser.ArrayLiteral:
		for _, el := range e.Elements {
			w.expr(el)
		}
	case *parser.ObjectLiteral:
		for _, p := range e.Properties {
			if p.Computed && p.Key != nil {
				w.expr(p.Key)
			}
			if p.Shorthand {
				w.shorthand(p)
				continue
			}
			if p.Value != nil {
				w.expr(p.Value)
			}
		}
	case *parser.SpreadElement:
		w.expr(e.Argument)
	case *parser.FunctionLiteral:
		w.function(e.Name, e.Parameters, e.Body)
	case *parser.ArrowFunctionLiteral:
		w.arrow(e)
	case *parser.PrefixExpression:
		w.expr(e.Right)
	case *parser.InfixExpression:
		w.expr(e.Left)
		w.expr(e.Right)
	case *parser.AssignmentExpression:
		w.expr(e.Target)
		w.expr(e.Value)
	case *parser.UpdateExpression:
		w.expr(e.Argument)
	case *parser.TernaryExpression:
		w.expr(e.Condition)
		w.expr(e.Consequence)
		w.expr(e.Alternative)
	case *parser.CallExpression:
		w.expr(e.Function)
		for _, arg := range e.Arguments {
			w.expr(arg)
		}
	case *parser.NewExpression:
		w.expr(e.Callee)
		for _, arg := range e.Arguments {
			w.expr(arg)
		}
	case *parser.MemberExpression:
		w.expr(e.Object)
	case *parser.IndexExpression:
		w.expr(e.Left)
		w.expr(e.Index)
	case *parser.SequenceExpression:
		for _, sub := range e.Expressions {
			w.expr(sub)
		}
	}
}
