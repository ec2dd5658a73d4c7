package inliner

import (
	"inlay/pkg/parser"
	"inlay/pkg/scopes"
)

// callVisit receives one call expression in evaluation position. at is
// the lexical scope of the position, cond reports whether evaluation of
// the position depends on a runtime decision the splice point does not
// see (short-circuit operands, ternary branches, loop conditions).
// Returning false stops the scan.
type callVisit func(call *parser.CallExpression, at *scopes.Scope, cond bool) bool

// scanStmt walks the expressions one statement evaluates itself, in
// evaluation order, calling yield for each call expression found. Calls
// are yielded before their subexpressions, so nested calls come
// outer-first. Nested statement lists are not entered; they splice into
// their own blocks. Function literal interiors are not entered either,
// since each is settled as its own unit. Reports whether the scan ran
// to completion.
func (t *transform) scanStmt(stmt parser.Statement, scope *scopes.Scope, cond bool, yield callVisit) bool {
	switch s := stmt.(type) {
	case *parser.LetStatement:
		if s.Value != nil {
			return t.scanExpr(s.Value, scope, cond, yield)
		}
	case *parser.ConstStatement:
		if s.Value != nil {
			return t.scanExpr(s.Value, scope, cond, yield)
		}
	case *parser.VarStatement:
		if s.Value != nil {
			return t.scanExpr(s.Value, scope, cond, yield)
		}
	case *parser.ReturnStatement:
		if s.ReturnValue != nil {
			return t.scanExpr(s.ReturnValue, scope, cond, yield)
		}
	case *parser.ExpressionStatement:
		if s.Expression != nil {
			return t.scanExpr(s.Expression, scope, cond, yield)
		}
	case *parser.ThrowStatement:
		return t.scanExpr(s.Value, scope, cond, yield)
	case *parser.IfStatement:
		// The condition runs whenever the statement runs; an else-if
		// condition only runs when the branches before it fell through.
		if !t.scanExpr(s.Condition, scope, cond, yield) {
			return false
		}
		if alt, ok := s.Alternative.(*parser.IfStatement); ok {
			return t.scanStmt(alt, scope, true, yield)
		}
	case *parser.WhileStatement:
		return t.scanExpr(s.Condition, scope, true, yield)
	case *parser.DoWhileStatement:
		return t.scanExpr(s.Condition, scope, true, yield)
	case *parser.ForStatement:
		at := t.tree.scopeOf(s, scope)
		if s.Init != nil {
			if !t.scanStmt(s.Init, at, cond, yield) {
				return false
			}
		}
		if s.Condition != nil {
			if !t.scanExpr(s.Condition, at, true, yield) {
				return false
			}
		}
		if s.Update != nil {
			return t.scanExpr(s.Update, at, true, yield)
		}
	case *parser.ForOfStatement:
		return t.scanExpr(s.Iterable, t.tree.scopeOf(s, scope), cond, yield)
	case *parser.SwitchStatement:
		if !t.scanExpr(s.Discriminant, scope, cond, yield) {
			return false
		}
		at := t.tree.scopeOf(s, scope)
		for _, c := range s.Cases {
			if c.Test != nil {
				if !t.scanExpr(c.Test, at, true, yield) {
					return false
				}
			}
		}
	case *parser.LabeledStatement:
		return t.scanStmt(s.Body, scope, cond, yield)
	case *parser.ExportNamedDeclaration:
		if s.Declaration != nil {
			return t.scanStmt(s.Declaration, scope, cond, yield)
		}
	case *parser.ExportDefaultDeclaration:
		if d, ok := s.Declaration.(parser.Expression); ok {
			return t.scanExpr(d, scope, cond, yield)
		}
	}
	return true
}

func (t *transform) scanExpr(expr parser.Expression, at *scopes.Scope, cond bool, yield callVisit) bool {
	switch e := expr.(type) {
	case *parser.CallExpression:
		if !yield(e, at, cond) {
			return false
		}
		if !t.scanExpr(e.Function, at, cond, yield) {
			return false
		}
		argCond := cond || e.Optional
		for _, a := range e.Arguments {
			if !t.scanExpr(a, at, argCond, yield) {
				return false
			}
		}
	case *parser.NewExpression:
		if !t.scanExpr(e.Callee, at, cond, yield) {
			return false
		}
		for _, a := range e.Arguments {
			if !t.scanExpr(a, at, cond, yield) {
				return false
			}
		}
	case *parser.InfixExpression:
		if !t.scanExpr(e.Left, at, cond, yield) {
			return false
		}
		return t.scanExpr(e.Right, at, cond || shortCircuits(e.Operator), yield)
	case *parser.AssignmentExpression:
		if !t.scanExpr(e.Target, at, cond, yield) {
			return false
		}
		return t.scanExpr(e.Value, at, cond || shortCircuits(e.Operator), yield)
	case *parser.TernaryExpression:
		if !t.scanExpr(e.Condition, at, cond, yield) {
			return false
		}
		if !t.scanExpr(e.Consequence, at, true, yield) {
			return false
		}
		return t.scanExpr(e.Alternative, at, true, yield)
	case *parser.MemberExpression:
		return t.scanExpr(e.Object, at, cond, yield)
	case *parser.IndexExpression:
		if !t.scanExpr(e.Left, at, cond, yield) {
			return false
		}
		return t.scanExpr(e.Index, at, cond || e.Optional, yield)
	case *parser.PrefixExpression:
		return t.scanExpr(e.Right, at, cond, yield)
	case *parser.UpdateExpression:
		return t.scanExpr(e.Argument, at, cond, yield)
	case *parser.SpreadElement:
		return t.scanExpr(e.Argument, at, cond, yield)
	case *parser.TemplateLiteral:
		for _, sub := range e.Expressions {
			if !t.scanExpr(sub, at, cond, yield) {
				return false
			}
		}
	case *parser.ArrayLiteral:
		for _, el := range e.Elements {
			if !t.scanExpr(el, at, cond, yield) {
				return false
			}
		}
	case *parser.ObjectLiteral:
		for _, p := range e.Properties {
			if p.Computed && p.Key != nil {
				if !t.scanExpr(p.Key, at, cond, yield) {
					return false
				}
			}
			if p.Value != nil {
				if !t.scanExpr(p.Value, at, cond, yield) {
					return false
				}
			}
		}
	case *parser.SequenceExpression:
		for _, sub := range e.Expressions {
			if !t.scanExpr(sub, at, cond, yield) {
				return false
			}
		}
	}
	return true
}

// shortCircuits reports whether an infix or compound-assignment
// operator evaluates its right side only some of the time.
func shortCircuits(op string) bool {
	switch op {
	case "&&", "||", "??", "&&=", "||=", "??=":
		return true
	}
	return false
}

// hasSpreadArg reports whether any argument is a spread; the arity of
// such a call cannot be matched to parameters statically.
func hasSpreadArg(call *parser.CallExpression) bool {
	for _, a := range call.Arguments {
		if _, ok := a.(*parser.SpreadElement); ok {
			return true
		}
	}
	return false
}
