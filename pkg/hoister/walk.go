package hoister

import (
	"inlay/pkg/hints"
	"inlay/pkg/lexer"
	"inlay/pkg/parser"
	"inlay/pkg/scopes"
)

// block walks one statement list with a fresh lineage and reports the
// effects the list performs, so enclosing lineages can invalidate.
// Statements a pure expansion spliced as callee body are licensed by
// the hint and contribute nothing.
func (p *pass) block(list *[]parser.Statement, scope *scopes.Scope) *effects {
	ln := &lineage{list: list, scope: scope, fx: newEffects()}
	for ln.i = 0; ln.i < len(*list); ln.i++ {
		s := (*list)[ln.i]
		if p.pureRegion[s] {
			continue
		}
		ln.cur = s
		ln.dirty = false
		p.eventStmt(ln, s, scope, false)
		p.nested(ln, s, scope)
		p.drainFns(ln)
	}
	return ln.fx
}

// eventStmt walks the expressions a statement evaluates exactly once,
// in evaluation order. Loop and switch shapes are handled by nested,
// which owns their scopes.
func (p *pass) eventStmt(ln *lineage, stmt parser.Statement, at *scopes.Scope, cond bool) {
	switch s := stmt.(type) {
	case *parser.LetStatement:
		if s.Value != nil {
			p.eventExpr(ln, s.Value, at, cond)
		}
	case *parser.ConstStatement:
		if s.Value != nil {
			p.eventExpr(ln, s.Value, at, cond)
		}
	case *parser.VarStatement:
		if s.Value != nil {
			p.eventExpr(ln, s.Value, at, cond)
		}
	case *parser.ExpressionStatement:
		if s.Expression != nil {
			p.eventExpr(ln, s.Expression, at, cond)
		}
	case *parser.ReturnStatement:
		if s.ReturnValue != nil {
			p.eventExpr(ln, s.ReturnValue, at, cond)
		}
	case *parser.ThrowStatement:
		p.eventExpr(ln, s.Value, at, cond)
	case *parser.IfStatement:
		p.eventExpr(ln, s.Condition, at, cond)
	case *parser.LabeledStatement:
		p.eventStmt(ln, s.Body, at, cond)
	case *parser.ExportNamedDeclaration:
		if s.Declaration != nil {
			p.eventStmt(ln, s.Declaration, at, cond)
		}
	case *parser.ExportDefaultDeclaration:
		if e, ok := s.Declaration.(parser.Expression); ok {
			p.eventExpr(ln, e, at, cond)
		}
	}
}

// eventExpr walks one expression in evaluation order, firing merge
// events for pure occurrences and invalidation for everything that
// may write. cond marks positions that do not evaluate on every run
// of the statement; occurrences there neither register nor merge.
func (p *pass) eventExpr(ln *lineage, e parser.Expression, at *scopes.Scope, cond bool) {
	if e == nil {
		return
	}
	if exp, ok := p.anchors[e]; ok {
		p.inlined(ln, exp, cond)
		return
	}
	switch x := e.(type) {
	case *parser.CallExpression:
		p.called(ln, x, at, cond)
		p.eventExpr(ln, x.Function, at, cond)
		argCond := cond || x.Optional
		for _, a := range x.Arguments {
			p.eventExpr(ln, a, at, argCond)
		}
	case *parser.NewExpression:
		p.killAll(ln)
		p.eventExpr(ln, x.Callee, at, cond)
		for _, a := range x.Arguments {
			p.eventExpr(ln, a, at, cond)
		}
	case *parser.AssignmentExpression:
		p.killTarget(ln, x.Target)
		p.eventExpr(ln, x.Target, at, cond)
		p.eventExpr(ln, x.Value, at, cond || shortCircuits(x.Operator))
	case *parser.UpdateExpression:
		p.killTarget(ln, x.Argument)
		p.eventExpr(ln, x.Argument, at, cond)
	case *parser.PrefixExpression:
		if x.Operator == "delete" {
			p.killMembers(ln)
		}
		p.eventExpr(ln, x.Right, at, cond)
	case *parser.InfixExpression:
		p.eventExpr(ln, x.Left, at, cond)
		p.eventExpr(ln, x.Right, at, cond || shortCircuits(x.Operator))
	case *parser.TernaryExpression:
		p.eventExpr(ln, x.Condition, at, cond)
		p.eventExpr(ln, x.Consequence, at, true)
		p.eventExpr(ln, x.Alternative, at, true)
	case *parser.MemberExpression:
		p.eventExpr(ln, x.Object, at, cond)
	case *parser.IndexExpression:
		p.eventExpr(ln, x.Left, at, cond)
		p.eventExpr(ln, x.Index, at, cond || x.Optional)
	case *parser.SpreadElement:
		p.eventExpr(ln, x.Argument, at, cond)
	case *parser.SequenceExpression:
		for _, s := range x.Expressions {
			p.eventExpr(ln, s, at, cond)
		}
	case *parser.TemplateLiteral:
		for _, s := range x.Expressions {
			p.eventExpr(ln, s, at, cond)
		}
	case *parser.ArrayLiteral:
		for _, el := range x.Elements {
			p.eventExpr(ln, el, at, cond)
		}
	case *parser.ObjectLiteral:
		for _, prop := range x.Properties {
			if prop.Computed {
				p.eventExpr(ln, prop.Key, at, cond)
			}
			if !prop.Shorthand {
				p.eventExpr(ln, prop.Value, at, cond)
			}
		}
	case *parser.FunctionLiteral:
		ln.fns = append(ln.fns, deferredFn{params: x.Parameters, name: x.Name, body: x.Body, at: at})
	case *parser.ArrowFunctionLiteral:
		ln.fns = append(ln.fns, deferredFn{params: x.Parameters, body: x.Body, at: at})
	}
}

// called classifies one evaluated call. A callee known pure, or a call
// site hinted pure, cannot invalidate; a known pure callee in an
// unconditional position becomes a merge candidate. Anything else may
// write through its body and ends every lineage.
func (p *pass) called(ln *lineage, call *parser.CallExpression, at *scopes.Scope, cond bool) {
	entity, ok := p.res.Resolve(call.Function, p.mod, at)
	pure := p.mod.Hints.Call(call).Has(hints.Pure)
	if ok && entity.Hints.Has(hints.Pure) {
		pure = true
	}
	if !pure {
		p.killAll(ln)
		return
	}
	if !ok || call.Optional || cond {
		return
	}
	p.direct(ln, entity, call)
}

// nested recurses into a statement's inner statement lists, building
// the scopes they resolve in and folding their effects back into the
// enclosing lineage. Function bodies are walked for their own merges
// but report nothing: defining a function performs no work.
func (p *pass) nested(ln *lineage, stmt parser.Statement, at *scopes.Scope) {
	switch s := stmt.(type) {
	case *parser.BlockStatement:
		p.apply(ln, p.block(&s.Statements, p.childBlock(at, s.Statements)))
	case *parser.IfStatement:
		p.apply(ln, p.block(&s.Consequence.Statements, p.childBlock(at, s.Consequence.Statements)))
		if s.Alternative != nil {
			if elseif, ok := s.Alternative.(*parser.IfStatement); ok {
				p.eventExpr(ln, elseif.Condition, at, true)
			}
			p.nested(ln, s.Alternative, at)
		}
	case *parser.WhileStatement:
		p.eventExpr(ln, s.Condition, at, true)
		p.apply(ln, p.block(&s.Body.Statements, p.childBlock(at, s.Body.Statements)))
	case *parser.DoWhileStatement:
		p.apply(ln, p.block(&s.Body.Statements, p.childBlock(at, s.Body.Statements)))
		p.eventExpr(ln, s.Condition, at, true)
	case *parser.ForStatement:
		head := scopes.NewScope(scopes.ScopeBlock, at)
		if s.Init != nil {
			scopes.DeclareBlock(head, []parser.Statement{s.Init})
			p.eventStmt(ln, s.Init, head, false)
		}
		if s.Condition != nil {
			p.eventExpr(ln, s.Condition, head, true)
		}
		if s.Update != nil {
			p.eventExpr(ln, s.Update, head, true)
		}
		p.apply(ln, p.block(&s.Body.Statements, p.childBlock(head, s.Body.Statements)))
	case *parser.ForOfStatement:
		head := scopes.NewScope(scopes.ScopeBlock, at)
		if s.Declaration != "" {
			head.Define(s.Variable.Value, forOfKind(s.Declaration), s)
		}
		p.eventExpr(ln, s.Iterable, head, false)
		p.apply(ln, p.block(&s.Body.Statements, p.childBlock(head, s.Body.Statements)))
	case *parser.SwitchStatement:
		p.eventExpr(ln, s.Discriminant, at, false)
		sw := scopes.NewScope(scopes.ScopeBlock, at)
		for _, c := range s.Cases {
			scopes.DeclareBlock(sw, c.Body)
		}
		for _, c := range s.Cases {
			if c.Test != nil {
				p.eventExpr(ln, c.Test, sw, true)
			}
			p.apply(ln, p.block(&c.Body, sw))
		}
	case *parser.LabeledStatement:
		p.nested(ln, s.Body, at)
	case *parser.TryStatement:
		p.apply(ln, p.block(&s.Block.Statements, p.childBlock(at, s.Block.Statements)))
		if s.CatchBlock != nil {
			catch := scopes.NewScope(scopes.ScopeBlock, at)
			if s.CatchParam != nil {
				catch.Define(s.CatchParam.Value, scopes.CatchBinding, s)
			}
			p.apply(ln, p.block(&s.CatchBlock.Statements, p.childBlock(catch, s.CatchBlock.Statements)))
		}
		if s.FinallyBlock != nil {
			p.apply(ln, p.block(&s.FinallyBlock.Statements, p.childBlock(at, s.FinallyBlock.Statements)))
		}
	case *parser.FunctionDeclaration:
		p.fnBody(s.Parameters, nil, s.Body, at)
	case *parser.ExportNamedDeclaration:
		if s.Declaration != nil {
			p.nested(ln, s.Declaration, at)
		}
	}
}

func (p *pass) childBlock(outer *scopes.Scope, stmts []parser.Statement) *scopes.Scope {
	s := scopes.NewScope(scopes.ScopeBlock, outer)
	scopes.DeclareBlock(s, stmts)
	return s
}

// fnBody walks a function body as an independent root. Expression
// bodies have no statement list to hoist into and are left alone.
func (p *pass) fnBody(params []*parser.Parameter, name *parser.Identifier, body parser.Node, at *scopes.Scope) {
	blk, ok := body.(*parser.BlockStatement)
	if !ok {
		return
	}
	fn := scopes.NewScope(scopes.ScopeFunction, at)
	if name != nil {
		fn.Define(name.Value, scopes.FunctionBinding, nil)
	}
	scopes.DeclareParams(fn, params)
	scopes.DeclareVars(fn, blk.Statements)
	p.block(&blk.Statements, p.childBlock(fn, blk.Statements))
}

func (p *pass) drainFns(ln *lineage) {
	for len(ln.fns) > 0 {
		f := ln.fns[0]
		ln.fns = ln.fns[1:]
		p.fnBody(f.params, f.name, f.body, f.at)
	}
}

type deferredFn struct {
	params []*parser.Parameter
	name   *parser.Identifier
	body   parser.Node
	at     *scopes.Scope
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

func shortCircuits(op string) bool {
	switch op {
	case "&&", "||", "??", "&&=", "||=", "??=":
		return true
	}
	return false
}
