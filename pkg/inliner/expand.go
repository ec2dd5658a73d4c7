package inliner

import (
	"fmt"
	"sort"

	"inlay/pkg/errors"
	"inlay/pkg/hints"
	"inlay/pkg/lexer"
	"inlay/pkg/parser"
	"inlay/pkg/resolver"
	"inlay/pkg/scopes"
)

// expand applies one accepted expansion: arguments bind to fresh
// temporaries in call order, the provisioned body splices ahead of the
// statement holding the call, and the call becomes the value the body
// produced. A body whose returns are not a single trailing one runs
// inside a labeled block, with each return becoming an assignment to a
// result temporary and a break out of the label.
func (t *transform) expand(site *callSite) error {
	e := site.entity
	if msg := capturesActivation(e.Fn); msg != "" {
		return &errors.TransformError{
			Position: nodePos(site.call),
			Msg:      fmt.Sprintf("cannot inline '%s': %s", e.Name, msg),
		}
	}
	if clash := paramClash(e.Fn); clash != "" {
		t.skip(site.call, e.Name, fmt.Sprintf("'%s' is declared both as a parameter and in the body", clash))
		t.done[site.call] = true
		return nil
	}
	body, err := t.res.Provision(e, t.mod, site.at)
	if err != nil {
		if se, ok := err.(*errors.SkipError); ok {
			se.Position = nodePos(site.call)
			t.out.Diags = append(t.out.Diags, se)
			t.done[site.call] = true
			return nil
		}
		return err
	}

	renames := make(map[string]string)
	argStmts := t.bindArgs(site, body, renames)

	// Declarations of the body land in the consumer's block; fresh
	// names keep them off anything visible there.
	decls := scopes.NewScope(scopes.ScopeFunction, nil)
	scopes.DeclareBlock(decls, body.Body.Statements)
	scopes.DeclareVars(decls, body.Body.Statements)
	for _, name := range decls.Names() {
		if local := t.freshFor(site, name); local != name {
			renames[name] = local
		}
	}

	bodyLabels := make(map[string]bool)
	collectLabels(body.Body.Statements, bodyLabels)
	var labelRenames map[string]string
	if len(bodyLabels) > 0 {
		names := make([]string, 0, len(bodyLabels))
		for name := range bodyLabels {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if t.tree.labels[name] {
				if labelRenames == nil {
					labelRenames = make(map[string]string)
				}
				labelRenames[name] = t.freshLabel(site, name)
			} else {
				t.tree.labels[name] = true
			}
		}
	}

	if len(renames) > 0 {
		scopes.RenameAll(body.Body, renames)
	}
	if len(labelRenames) > 0 {
		scopes.RenameLabels(body.Body, labelRenames)
	}

	inner := body.Body.Statements
	returns := countReturns(inner)
	var trailing *parser.ReturnStatement
	if returns == 1 && len(inner) > 0 {
		if ret, ok := inner[len(inner)-1].(*parser.ReturnStatement); ok {
			trailing = ret
		}
	}

	bare := isBareCallStmt(site.stmt, site.call)
	bodyStmts := inner
	var value parser.Expression
	result := ""
	labeled := false
	switch {
	case trailing != nil:
		bodyStmts = inner[:len(inner)-1]
		value = trailing.ReturnValue
	case returns == 0:
	default:
		labeled = true
	}

	spliced := argStmts
	drop := false
	switch {
	case labeled && bare:
		// The value goes unused; returns only need to stop the body.
		label := t.freshLabel(site, scopes.CalleeBase(site.call.Function))
		spliced = append(spliced, labeledStmt(label, blockOf(rewriteReturns(bodyStmts, "", label)...)))
		drop = true
	case labeled:
		result = t.resultTemp(site)
		label := t.freshLabel(site, scopes.CalleeBase(site.call.Function))
		spliced = append(spliced, letStmt(result, nil))
		spliced = append(spliced, labeledStmt(label, blockOf(rewriteReturns(bodyStmts, result, label)...)))
		value = ident(result)
	case value == nil && bare:
		spliced = append(spliced, bodyStmts...)
		drop = true
	default:
		spliced = append(spliced, bodyStmts...)
		if value == nil {
			value = undefinedLit()
		}
	}

	insertAt(site.list, site.index, spliced)
	if drop {
		removeAt(site.list, site.index+len(spliced))
	} else {
		parser.Replace(site.stmt, site.call, value)
	}

	// The body region is final. The argument initializers are not
	// marked; they carry the caller's expressions, which may hold
	// further expandable calls.
	region := spliced[len(argStmts):]
	scopes.DeclareBlock(site.home, region)
	scopes.DeclareVars(site.home.FunctionScope(), region)
	for _, s := range region {
		t.markDone(s)
	}
	var use parser.Statement
	if !drop {
		use = site.stmt
		t.markDone(value)
	}

	t.out.Expansions = append(t.out.Expansions, &Expansion{
		Callee:  e.Name,
		Module:  e.Module.Specifier,
		Pure:    e.Hints.Has(hints.Pure) || t.mod.Hints.Call(site.call).Has(hints.Pure),
		Args:    site.call.Arguments,
		Spliced: spliced,
		Binds:   len(argStmts),
		Result:  result,
		Value:   value,
		Use:     use,
	})
	return nil
}

// bindArgs binds every argument to a parameter temporary, in call
// order. Defaults keep their meaning: the temporary fills first and is
// replaced when it came out undefined. A rest parameter gathers the
// remaining arguments into an array, and surplus arguments still
// evaluate for their effects. Default expressions belong to the callee
// and stay as written, so their calls are settled immediately.
func (t *transform) bindArgs(site *callSite, body *resolver.InlinedBody, renames map[string]string) []parser.Statement {
	args := site.call.Arguments
	var out []parser.Statement
	used := 0
	for _, p := range body.Params {
		base := "arg"
		if p.Name != nil {
			base = p.Name.Value
		}
		name := t.tempFor(site, base)
		if p.Name != nil {
			renames[p.Name.Value] = name
		}
		if p.Rest {
			rest := &parser.ArrayLiteral{Token: lexer.Token{Type: lexer.LBRACKET, Literal: "["}}
			rest.Elements = append(rest.Elements, args[used:]...)
			out = append(out, letStmt(name, rest))
			used = len(args)
			continue
		}
		var init parser.Expression
		if used < len(args) {
			init = args[used]
			used++
		}
		out = append(out, letStmt(name, init))
		if p.Default != nil {
			scopes.RenameAll(p.Default, renames)
			guard := defaultGuard(name, p.Default)
			t.markDone(guard)
			out = append(out, guard)
		}
	}
	for ; used < len(args); used++ {
		out = append(out, exprStmt(args[used]))
	}
	return out
}

// capturesActivation reports why a body cannot move to a call site:
// this and arguments take their meaning from the activation the
// expansion removes. Nested functions keep their own activation and
// are not entered; arrows inherit one, so they are. Identifiers in
// member, key, and label positions are names, not references.
func capturesActivation(fn parser.Node) string {
	skip := make(map[*parser.Identifier]bool)
	reason := ""
	parser.Inspect(fn, func(n parser.Node) bool {
		if reason != "" {
			return false
		}
		switch x := n.(type) {
		case *parser.FunctionLiteral:
			if x != fn {
				return false
			}
		case *parser.FunctionDeclaration:
			if x != fn {
				return false
			}
		case *parser.ThisExpression:
			reason = "the body uses 'this'"
			return false
		case *parser.MemberExpression:
			if x.Property != nil {
				skip[x.Property] = true
			}
		case *parser.ObjectLiteral:
			for _, p := range x.Properties {
				if p.Computed || p.Shorthand {
					continue
				}
				if key, ok := p.Key.(*parser.Identifier); ok {
					skip[key] = true
				}
			}
		case *parser.LabeledStatement:
			skip[x.Label] = true
		case *parser.BreakStatement:
			skip[x.Label] = true
		case *parser.ContinueStatement:
			skip[x.Label] = true
		case *parser.Identifier:
			if x.Value == "arguments" && !skip[x] {
				reason = "the body uses 'arguments'"
				return false
			}
		}
		return true
	})
	return reason
}

// paramClash returns a name that is both a parameter and a body
// declaration, if any. A var like that aliases its parameter at
// runtime, which separate temporaries cannot reproduce.
func paramClash(fn parser.Node) string {
	params, body := fnParts(fn)
	if body == nil || len(params) == 0 {
		return ""
	}
	bound := make(map[string]bool, len(params))
	for _, p := range params {
		if p.Name != nil {
			bound[p.Name.Value] = true
		}
	}
	decls := scopes.NewScope(scopes.ScopeFunction, nil)
	scopes.DeclareBlock(decls, body.Statements)
	scopes.DeclareVars(decls, body.Statements)
	for _, name := range decls.Names() {
		if bound[name] {
			return name
		}
	}
	return ""
}

func fnParts(fn parser.Node) ([]*parser.Parameter, *parser.BlockStatement) {
	switch f := fn.(type) {
	case *parser.FunctionDeclaration:
		return f.Parameters, f.Body
	case *parser.FunctionLiteral:
		return f.Parameters, f.Body
	case *parser.ArrowFunctionLiteral:
		body, _ := f.Body.(*parser.BlockStatement)
		return f.Parameters, body
	}
	return nil, nil
}

// Name vending. Temps and fresh names are drawn against the call's
// lexical scope, then mirrored into the list's scope when the two
// differ, so statements after the splice point see them too.

func (t *transform) tempFor(site *callSite, base string) string {
	name := t.namer.TempFor(site.at, base)
	t.mirror(site, name)
	return name
}

func (t *transform) resultTemp(site *callSite) string {
	name := t.namer.Temp(site.at, site.call.Function)
	t.mirror(site, name)
	return name
}

func (t *transform) freshFor(site *callSite, base string) string {
	name := t.namer.Fresh(site.at, base)
	t.mirror(site, name)
	return name
}

// freshLabel vends a label no scope binding and no label in the module
// uses. Vended labels are recorded, so two expansions never share one.
func (t *transform) freshLabel(site *callSite, base string) string {
	for {
		name := t.namer.TempFor(site.at, base)
		t.mirror(site, name)
		if !t.tree.labels[name] {
			t.tree.labels[name] = true
			return name
		}
	}
}

func (t *transform) mirror(site *callSite, name string) {
	if site.home != site.at {
		site.home.Define(name, scopes.SynthBinding, nil)
	}
}

// Return accounting. Only the callee's own returns count; nested
// function interiors keep theirs.

func countReturns(stmts []parser.Statement) int {
	n := 0
	for _, s := range stmts {
		n += returnsIn(s)
	}
	return n
}

func returnsIn(stmt parser.Statement) int {
	switch s := stmt.(type) {
	case *parser.ReturnStatement:
		return 1
	case *parser.BlockStatement:
		return countReturns(s.Statements)
	case *parser.IfStatement:
		n := countReturns(s.Consequence.Statements)
		if s.Alternative != nil {
			n += returnsIn(s.Alternative)
		}
		return n
	case *parser.WhileStatement:
		return returnsIn(s.Body)
	case *parser.DoWhileStatement:
		return returnsIn(s.Body)
	case *parser.ForStatement:
		return returnsIn(s.Body)
	case *parser.ForOfStatement:
		return returnsIn(s.Body)
	case *parser.LabeledStatement:
		return returnsIn(s.Body)
	case *parser.TryStatement:
		n := countReturns(s.Block.Statements)
		if s.CatchBlock != nil {
			n += countReturns(s.CatchBlock.Statements)
		}
		if s.FinallyBlock != nil {
			n += countReturns(s.FinallyBlock.Statements)
		}
		return n
	case *parser.SwitchStatement:
		n := 0
		for _, c := range s.Cases {
			n += countReturns(c.Body)
		}
		return n
	}
	return 0
}

func collectLabels(stmts []parser.Statement, into map[string]bool) {
	for _, s := range stmts {
		labelsIn(s, into)
	}
}

func labelsIn(stmt parser.Statement, into map[string]bool) {
	switch s := stmt.(type) {
	case *parser.LabeledStatement:
		into[s.Label.Value] = true
		labelsIn(s.Body, into)
	case *parser.BlockStatement:
		collectLabels(s.Statements, into)
	case *parser.IfStatement:
		collectLabels(s.Consequence.Statements, into)
		if s.Alternative != nil {
			labelsIn(s.Alternative, into)
		}
	case *parser.WhileStatement:
		labelsIn(s.Body, into)
	case *parser.DoWhileStatement:
		labelsIn(s.Body, into)
	case *parser.ForStatement:
		labelsIn(s.Body, into)
	case *parser.ForOfStatement:
		labelsIn(s.Body, into)
	case *parser.TryStatement:
		collectLabels(s.Block.Statements, into)
		if s.CatchBlock != nil {
			collectLabels(s.CatchBlock.Statements, into)
		}
		if s.FinallyBlock != nil {
			collectLabels(s.FinallyBlock.Statements, into)
		}
	case *parser.SwitchStatement:
		for _, c := range s.Cases {
			collectLabels(c.Body, into)
		}
	}
}

// rewriteReturns rewrites every return in the statements into the
// labeled-block protocol: assign the value to result when a result
// name exists, evaluate it for effect when not, then break label. The
// returned slice replaces the input; nested lists rewrite in place.
func rewriteReturns(stmts []parser.Statement, result, label string) []parser.Statement {
	out := make([]parser.Statement, 0, len(stmts))
	for _, s := range stmts {
		if ret, ok := s.(*parser.ReturnStatement); ok {
			out = append(out, returnCapture(ret, result, label)...)
			continue
		}
		rewriteReturnsIn(s, result, label)
		out = append(out, s)
	}
	return out
}

func rewriteReturnsIn(stmt parser.Statement, result, label string) {
	switch s := stmt.(type) {
	case *parser.BlockStatement:
		s.Statements = rewriteReturns(s.Statements, result, label)
	case *parser.IfStatement:
		s.Consequence.Statements = rewriteReturns(s.Consequence.Statements, result, label)
		if s.Alternative != nil {
			rewriteReturnsIn(s.Alternative, result, label)
		}
	case *parser.WhileStatement:
		rewriteReturnsIn(s.Body, result, label)
	case *parser.DoWhileStatement:
		rewriteReturnsIn(s.Body, result, label)
	case *parser.ForStatement:
		rewriteReturnsIn(s.Body, result, label)
	case *parser.ForOfStatement:
		rewriteReturnsIn(s.Body, result, label)
	case *parser.LabeledStatement:
		if ret, ok := s.Body.(*parser.ReturnStatement); ok {
			s.Body = blockOf(returnCapture(ret, result, label)...)
			return
		}
		rewriteReturnsIn(s.Body, result, label)
	case *parser.TryStatement:
		s.Block.Statements = rewriteReturns(s.Block.Statements, result, label)
		if s.CatchBlock != nil {
			s.CatchBlock.Statements = rewriteReturns(s.CatchBlock.Statements, result, label)
		}
		if s.FinallyBlock != nil {
			s.FinallyBlock.Statements = rewriteReturns(s.FinallyBlock.Statements, result, label)
		}
	case *parser.SwitchStatement:
		for _, c := range s.Cases {
			c.Body = rewriteReturns(c.Body, result, label)
		}
	}
}

func returnCapture(ret *parser.ReturnStatement, result, label string) []parser.Statement {
	value := ret.ReturnValue
	switch {
	case result != "":
		if value == nil {
			value = undefinedLit()
		}
		return []parser.Statement{assignStmt(result, value), breakStmt(label)}
	case value != nil:
		return []parser.Statement{exprStmt(value), breakStmt(label)}
	default:
		return []parser.Statement{breakStmt(label)}
	}
}

func isBareCallStmt(stmt parser.Statement, call *parser.CallExpression) bool {
	es, ok := stmt.(*parser.ExpressionStatement)
	return ok && es.Expression == parser.Expression(call)
}

func insertAt(list *[]parser.Statement, i int, stmts []parser.Statement) {
	if len(stmts) == 0 {
		return
	}
	out := make([]parser.Statement, 0, len(*list)+len(stmts))
	out = append(out, (*list)[:i]...)
	out = append(out, stmts...)
	out = append(out, (*list)[i:]...)
	*list = out
}

func removeAt(list *[]parser.Statement, i int) {
	*list = append((*list)[:i], (*list)[i+1:]...)
}

// Node synthesis for the statements an expansion writes.

func ident(name string) *parser.Identifier {
	return &parser.Identifier{Token: lexer.Token{Type: lexer.IDENT, Literal: name}, Value: name}
}

func letStmt(name string, value parser.Expression) *parser.LetStatement {
	return &parser.LetStatement{Token: lexer.Token{Type: lexer.LET, Literal: "let"}, Name: ident(name), Value: value}
}

func exprStmt(e parser.Expression) *parser.ExpressionStatement {
	return &parser.ExpressionStatement{Token: parser.FirstToken(e), Expression: e}
}

func assignStmt(name string, value parser.Expression) *parser.ExpressionStatement {
	return exprStmt(&parser.AssignmentExpression{
		Token:    lexer.Token{Type: lexer.ASSIGN, Literal: "="},
		Operator: "=",
		Target:   ident(name),
		Value:    value,
	})
}

func blockOf(stmts ...parser.Statement) *parser.BlockStatement {
	return &parser.BlockStatement{Token: lexer.Token{Type: lexer.LBRACE, Literal: "{"}, Statements: stmts}
}

func returnStmt(value parser.Expression) *parser.ReturnStatement {
	return &parser.ReturnStatement{Token: lexer.Token{Type: lexer.RETURN, Literal: "return"}, ReturnValue: value}
}

func breakStmt(label string) *parser.BreakStatement {
	return &parser.BreakStatement{Token: lexer.Token{Type: lexer.BREAK, Literal: "break"}, Label: ident(label)}
}

func labeledStmt(label string, body *parser.BlockStatement) *parser.LabeledStatement {
	return &parser.LabeledStatement{Token: lexer.Token{Type: lexer.IDENT, Literal: label}, Label: ident(label), Body: body}
}

func undefinedLit() *parser.UndefinedLiteral {
	return &parser.UndefinedLiteral{Token: lexer.Token{Type: lexer.UNDEFINED, Literal: "undefined"}}
}

func defaultGuard(name string, dflt parser.Expression) *parser.IfStatement {
	return &parser.IfStatement{
		Token: lexer.Token{Type: lexer.IF, Literal: "if"},
		Condition: &parser.InfixExpression{
			Token:    lexer.Token{Type: lexer.STRICT_EQ, Literal: "==="},
			Operator: "===",
			Left:     ident(name),
			Right:    undefinedLit(),
		},
		Consequence: blockOf(assignStmt(name, dflt)),
	}
}
