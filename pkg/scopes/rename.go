package scopes

import "inlay/pkg/parser"

// RenameAll rewrites every occurrence of the keys of renames into the
// mapped names, declaration sites and uses alike. The rename is
// uniform and scope-blind: when every mapped name is fresh relative to
// the node, the binding structure afterward is isomorphic to the one
// before, shadows included. Member properties, non-computed object
// keys, import/export names and labels keep their spelling. Shorthand
// object properties are expanded to `key: value` form when their value
// is renamed. The rewrite happens in place, so node must be an owned
// clone.
func RenameAll(node parser.Node, renames map[string]string) {
	if len(renames) == 0 {
		return
	}
	w := &renameWalker{idents: renames}
	w.walk(node)
}

// RenameLabels rewrites label names: the labeled statements declaring
// the keys of renames and the break/continue statements targeting
// them. Labels live apart from variables, so identifier expressions
// are never touched. Like RenameAll the rewrite is uniform and
// requires an owned clone.
func RenameLabels(node parser.Node, renames map[string]string) {
	if len(renames) == 0 {
		return
	}
	w := &renameWalker{labels: renames}
	w.walk(node)
}

// renameWalker applies a uniform rename. Either idents or labels is
// set; the traversal is shared because both need the same notion of
// which identifier positions are names rather than references.
type renameWalker struct {
	idents map[string]string
	labels map[string]string
}

func (w *renameWalker) ident(id *parser.Identifier) {
	if id == nil || w.idents == nil {
		return
	}
	if to, ok := w.idents[id.Value]; ok {
		id.Value = to
		id.Token.Literal = to
	}
}

func (w *renameWalker) label(id *parser.Identifier) {
	if id == nil || w.labels == nil {
		return
	}
	if to, ok := w.labels[id.Value]; ok {
		id.Value = to
		id.Token.Literal = to
	}
}

func (w *renameWalker) params(params []*parser.Parameter) {
	for _, p := range params {
		w.ident(p.Name)
		if p.Default != nil {
			w.expr(p.Default)
		}
	}
}

func (w *renameWalker) walk(node parser.Node) {
	switch n := node.(type) {
	case *parser.Program:
		for _, s := range n.Statements {
			w.stmt(s)
		}
	case *parser.Parameter:
		w.ident(n.Name)
		if n.Default != nil {
			w.expr(n.Default)
		}
	case parser.Statement:
		w.stmt(n)
	case parser.Expression:
		w.expr(n)
	}
}

func (w *renameWalker) stmt(stmt parser.Statement) {
	switch s := stmt.(type) {
	case *parser.LetStatement:
		w.ident(s.Name)
		if s.Value != nil {
			w.expr(s.Value)
		}
	case *parser.ConstStatement:
		w.ident(s.Name)
		if s.Value != nil {
			w.expr(s.Value)
		}
	case *parser.VarStatement:
		w.ident(s.Name)
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
		for _, bs := range s.Statements {
			w.stmt(bs)
		}
	case *parser.FunctionDeclaration:
		w.ident(s.Name)
		w.params(s.Parameters)
		if s.Body != nil {
			w.stmt(s.Body)
		}
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
		if s.Init != nil {
			w.stmt(s.Init)
		}
		if s.Condition != nil {
			w.expr(s.Condition)
		}
		if s.Update != nil {
			w.expr(s.Update)
		}
		w.stmt(s.Body)
	case *parser.ForOfStatement:
		w.ident(s.Variable)
		w.expr(s.Iterable)
		w.stmt(s.Body)
	case *parser.BreakStatement:
		w.label(s.Label)
	case *parser.ContinueStatement:
		w.label(s.Label)
	case *parser.LabeledStatement:
		w.label(s.Label)
		w.stmt(s.Body)
	case *parser.ThrowStatement:
		w.expr(s.Value)
	case *parser.TryStatement:
		w.stmt(s.Block)
		w.ident(s.CatchParam)
		if s.CatchBlock != nil {
			w.stmt(s.CatchBlock)
		}
		if s.FinallyBlock != nil {
			w.stmt(s.FinallyBlock)
		}
	case *parser.SwitchStatement:
		w.expr(s.Discriminant)
		for _, c := range s.Cases {
			if c.Test != nil {
				w.expr(c.Test)
			}
			for _, cs := range c.Body {
				w.stmt(cs)
			}
		}
	case *parser.ExportNamedDeclaration:
		if s.Declaration != nil {
			w.stmt(s.Declaration)
		}
	case *parser.ExportDefaultDeclaration:
		switch d := s.Declaration.(type) {
		case parser.Expression:
			w.expr(d)
		case parser.Statement:
			w.stmt(d)
		}
	}
}

func (w *renameWalker) expr(expr parser.Expression) {
	switch e := expr.(type) {
	case *parser.Identifier:
		w.ident(e)
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
			w.property(p)
		}
	case *parser.SpreadElement:
		w.expr(e.Argument)
	case *parser.FunctionLiteral:
		w.ident(e.Name)
		w.params(e.Parameters)
		if e.Body != nil {
			w.stmt(e.Body)
		}
	case *parser.ArrowFunctionLiteral:
		w.params(e.Parameters)
		switch body := e.Body.(type) {
		case *parser.BlockStatement:
			w.stmt(body)
		case parser.Expression:
			w.expr(body)
		}
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

func (w *renameWalker) property(p *parser.ObjectProperty) {
	if p.Computed && p.Key != nil {
		w.expr(p.Key)
	}
	if p.Shorthand {
		if w.idents != nil {
			if id, ok := p.Value.(*parser.Identifier); ok {
				if _, hit := w.idents[id.Value]; hit {
					w.ident(id)
					p.Shorthand = false
					return
				}
			}
		}
		return
	}
	if p.Value != nil {
		w.expr(p.Value)
	}
}
