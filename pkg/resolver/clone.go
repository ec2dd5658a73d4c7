package resolver

import "inlay/pkg/parser"

// The clone functions produce structurally independent copies: no node
// of the result aliases a node of the input, so a clone spliced into a
// consumer module can be rewritten without touching the borrowed
// dependency AST. Tokens are value types and keep their positions,
// which lets diagnostics on inlined code point at the original source.

// CloneNode deep-copies any AST node.
func CloneNode(node parser.Node) parser.Node {
	switch n := node.(type) {
	case nil:
		return nil
	case *parser.Program:
		return CloneProgram(n)
	case parser.Statement:
		return CloneStatement(n)
	case parser.Expression:
		return CloneExpression(n)
	case *parser.Parameter:
		return cloneParameter(n)
	}
	return nil
}

// CloneProgram deep-copies a whole module AST.
func CloneProgram(p *parser.Program) *parser.Program {
	if p == nil {
		return nil
	}
	out := &parser.Program{}
	for _, s := range p.Statements {
		out.Statements = append(out.Statements, CloneStatement(s))
	}
	return out
}

// CloneStatement deep-copies a statement.
func CloneStatement(stmt parser.Statement) parser.Statement {
	switch s := stmt.(type) {
	case nil:
		return nil
	case *parser.LetStatement:
		return &parser.LetStatement{Token: s.Token, Name: cloneIdent(s.Name), Value: CloneExpression(s.Value)}
	case *parser.ConstStatement:
		return &parser.ConstStatement{Token: s.Token, Name: cloneIdent(s.Name), Value: CloneExpression(s.Value)}
	case *parser.VarStatement:
		return &parser.VarStatement{Token: s.Token, Name: cloneIdent(s.Name), Value: CloneExpression(s.Value)}
	case *parser.ReturnStatement:
		return &parser.ReturnStatement{Token: s.Token, ReturnValue: CloneExpression(s.ReturnValue)}
	case *parser.ExpressionStatement:
		return &parser.ExpressionStatement{Token: s.Token, Expression: CloneExpression(s.Expression)}
	case *parser.BlockStatement:
		return CloneBlock(s)
	case *parser.FunctionDeclaration:
		return &parser.FunctionDeclaration{
			Token:      s.Token,
			Name:       cloneIdent(s.Name),
			Parameters: cloneParameters(s.Parameters),
			Body:       CloneBlock(s.Body),
		}
	case *parser.IfStatement:
		return &parser.IfStatement{
			Token:       s.Token,
			Condition:   CloneExpression(s.Condition),
			Consequence: CloneBlock(s.Consequence),
			Alternative: CloneStatement(s.Alternative),
		}
	case *parser.WhileStatement:
		return &parser.WhileStatement{Token: s.Token, Condition: CloneExpression(s.Condition), Body: CloneBlock(s.Body)}
	case *parser.DoWhileStatement:
		return &parser.DoWhileStatement{Token: s.Token, Body: CloneBlock(s.Body), Condition: CloneExpression(s.Condition)}
	case *parser.ForStatement:
		return &parser.ForStatement{
			Token:     s.Token,
			Init:      CloneStatement(s.Init),
			Condition: CloneExpression(s.Condition),
			Update:    CloneExpression(s.Update),
			Body:      CloneBlock(s.Body),
		}
	case *parser.ForOfStatement:
		return &parser.ForOfStatement{
			Token:       s.Token,
			Declaration: s.Declaration,
			Variable:    cloneIdent(s.Variable),
			Of:          s.Of,
			Iterable:    CloneExpression(s.Iterable),
			Body:        CloneBlock(s.Body),
		}
	case *parser.BreakStatement:
		return &parser.BreakStatement{Token: s.Token, Label: cloneIdent(s.Label)}
	case *parser.ContinueStatement:
		return &parser.ContinueStatement{Token: s.Token, Label: cloneIdent(s.Label)}
	case *parser.LabeledStatement:
		return &parser.LabeledStatement{Token: s.Token, Label: cloneIdent(s.Label), Body: CloneStatement(s.Body)}
	case *parser.ThrowStatement:
		return &parser.ThrowStatement{Token: s.Token, Value: CloneExpression(s.Value)}
	case *parser.TryStatement:
		return &parser.TryStatement{
			Token:        s.Token,
			Block:        CloneBlock(s.Block),
			CatchParam:   cloneIdent(s.CatchParam),
			CatchBlock:   CloneBlock(s.CatchBlock),
			FinallyBlock: CloneBlock(s.FinallyBlock),
		}
	case *parser.SwitchStatement:
		out := &parser.SwitchStatement{Token: s.Token, Discriminant: CloneExpression(s.Discriminant)}
		for _, c := range s.Cases {
			cc := &parser.SwitchCase{Token: c.Token, Test: CloneExpression(c.Test)}
			for _, cs := range c.Body {
				cc.Body = append(cc.Body, CloneStatement(cs))
			}
			out.Cases = append(out.Cases, cc)
		}
		return out
	case *parser.ImportDeclaration:
		out := &parser.ImportDeclaration{
			Token:     s.Token,
			Default:   cloneIdent(s.Default),
			Namespace: cloneIdent(s.Namespace),
			Source:    cloneStringLiteral(s.Source),
		}
		for _, spec := range s.Specifiers {
			out.Specifiers = append(out.Specifiers, &parser.ImportSpecifier{
				Imported: cloneIdent(spec.Imported),
				Local:    cloneIdent(spec.Local),
			})
		}
		return out
	case *parser.ExportNamedDeclaration:
		out := &parser.ExportNamedDeclaration{
			Token:       s.Token,
			Declaration: CloneStatement(s.Declaration),
			Source:      cloneStringLiteral(s.Source),
		}
		for _, spec := range s.Specifiers {
			out.Specifiers = append(out.Specifiers, &parser.ExportSpecifier{
				Local:    cloneIdent(spec.Local),
				Exported: cloneIdent(spec.Exported),
			})
		}
		return out
	case *parser.ExportDefaultDeclaration:
		return &parser.ExportDefaultDeclaration{Token: s.Token, Declaration: CloneNode(s.Declaration)}
	}
	return nil
}

// CloneBlock deep-copies a block statement, keeping nil blocks nil.
func CloneBlock(b *parser.BlockStatement) *parser.BlockStatement {
	if b == nil {
		return nil
	}
	out := &parser.BlockStatement{Token: b.Token}
	for _, s := range b.Statements {
		out.Statements = append(out.Statements, CloneStatement(s))
	}
	return out
}

// CloneExpression deep-copies an expression.
func CloneExpression(expr parser.Expression) parser.Expression {
	switch e := expr.(type) {
	case nil:
		return nil
	case *parser.Identifier:
		return cloneIdent(e)
	case *parser.NumberLiteral:
		c := *e
		return &c
	case *parser.StringLiteral:
		c := *e
		return &c
	case *parser.BooleanLiteral:
		c := *e
		return &c
	case *parser.NullLiteral:
		c := *e
		return &c
	case *parser.UndefinedLiteral:
		c := *e
		return &c
	case *parser.RegexLiteral:
		c := *e
		return &c
	case *parser.ThisExpression:
		c := *e
		return &c
	case *parser.TemplateLiteral:
		out := &parser.TemplateLiteral{Token: e.Token, Quasis: append([]string(nil), e.Quasis...)}
		for _, sub := range e.Expressions {
			out.Expressions = append(out.Expressions, CloneExpression(sub))
		}
		return out
	case *parser.ArrayLiteral:
		out := &parser.ArrayLiteral{Token: e.Token}
		for _, el := range e.Elements {
			out.Elements = append(out.Elements, CloneExpression(el))
		}
		return out
	case *parser.ObjectLiteral:
		out := &parser.ObjectLiteral{Token: e.Token}
		for _, p := range e.Properties {
			out.Properties = append(out.Properties, &parser.ObjectProperty{
				Key:       CloneExpression(p.Key),
				Value:     CloneExpression(p.Value),
				Computed:  p.Computed,
				Shorthand: p.Shorthand,
			})
		}
		return out
	case *parser.SpreadElement:
		return &parser.SpreadElement{Token: e.Token, Argument: CloneExpression(e.Argument)}
	case *parser.FunctionLiteral:
		return &parser.FunctionLiteral{
			Token:      e.Token,
			Name:       cloneIdent(e.Name),
			Parameters: cloneParameters(e.Parameters),
			Body:       CloneBlock(e.Body),
		}
	case *parser.ArrowFunctionLiteral:
		return &parser.ArrowFunctionLiteral{
			Token:      e.Token,
			Parameters: cloneParameters(e.Parameters),
			Body:       CloneNode(e.Body),
		}
	case *parser.PrefixExpression:
		return &parser.PrefixExpression{Token: e.Token, Operator: e.Operator, Right: CloneExpression(e.Right)}
	case *parser.InfixExpression:
		return &parser.InfixExpression{
			Token:    e.Token,
			Left:     CloneExpression(e.Left),
			Operator: e.Operator,
			Right:    CloneExpression(e.Right),
		}
	case *parser.AssignmentExpression:
		return &parser.AssignmentExpression{
			Token:    e.Token,
			Operator: e.Operator,
			Target:   CloneExpression(e.Target),
			Value:    CloneExpression(e.Value),
		}
	case *parser.UpdateExpression:
		return &parser.UpdateExpression{
			Token:    e.Token,
			Operator: e.Operator,
			Prefix:   e.Prefix,
			Argument: CloneExpression(e.Argument),
		}
	case *parser.TernaryExpression:
		return &parser.TernaryExpression{
			Token:       e.Token,
			Condition:   CloneExpression(e.Condition),
			Consequence: CloneExpression(e.Consequence),
			Alternative: CloneExpression(e.Alternative),
		}
	case *parser.CallExpression:
		out := &parser.CallExpression{Token: e.Token, Function: CloneExpression(e.Function), Optional: e.Optional}
		for _, arg := range e.Arguments {
			out.Arguments = append(out.Arguments, CloneExpression(arg))
		}
		return out
	case *parser.NewExpression:
		out := &parser.NewExpression{Token: e.Token, Callee: CloneExpression(e.Callee)}
		for _, arg := range e.Arguments {
			out.Arguments = append(out.Arguments, CloneExpression(arg))
		}
		return out
	case *parser.MemberExpression:
		return &parser.MemberExpression{
			Token:    e.Token,
			Object:   CloneExpression(e.Object),
			Property: cloneIdent(e.Property),
			Optional: e.Optional,
		}
	case *parser.IndexExpression:
		return &parser.IndexExpression{
			Token:    e.Token,
			Left:     CloneExpression(e.Left),
			Index:    CloneExpression(e.Index),
			Optional: e.Optional,
		}
	case *parser.SequenceExpression:
		out := &parser.SequenceExpression{Token: e.Token}
		for _, sub := range e.Expressions {
			out.Expressions = append(out.Expressions, CloneExpression(sub))
		}
		return out
	}
	return nil
}

func cloneIdent(id *parser.Identifier) *parser.Identifier {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func cloneStringLiteral(s *parser.StringLiteral) *parser.StringLiteral {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func cloneParameter(p *parser.Parameter) *parser.Parameter {
	if p == nil {
		return nil
	}
	return &parser.Parameter{
		Token:   p.Token,
		Name:    cloneIdent(p.Name),
		Default: CloneExpression(p.Default),
		Rest:    p.Rest,
	}
}

func cloneParameters(params []*parser.Parameter) []*parser.Parameter {
	if params == nil {
		return nil
	}
	out := make([]*parser.Parameter, len(params))
	for i, p := range params {
		out[i] = cloneParameter(p)
	}
	return out
}
