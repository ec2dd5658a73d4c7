// Package inliner expands hinted function calls in place. Each module
// is rewritten bottom-up: function bodies settle before the bodies that
// call them, so every splice copies in a form that will not change
// again. Argument expressions are bound to temporaries in call order,
// the callee's statements are inserted ahead of the statement holding
// the call, and the call itself becomes either the returned expression
// or a temporary carrying it. Calls that cannot be expanded safely are
// skipped, silently when only the declaration asked for inlining and
// with a diagnostic when the call site insisted or a cycle blocks it.
package inliner

import (
	"fmt"

	"inlay/pkg/errors"
	"inlay/pkg/hints"
	"inlay/pkg/parser"
	"inlay/pkg/resolver"
	"inlay/pkg/scopes"
)

// Expansion records one applied inlining, in the shape the hoist pass
// consumes: the statements spliced ahead of the use, the name that
// carries the produced value when one was needed, and the expression
// now standing where the call stood.
type Expansion struct {
	Callee string // resolved callee name
	Module string // specifier of the defining module
	Pure   bool   // callee declared pure, or the call site marked it so

	Args    []parser.Expression // argument expressions, in call order
	Spliced []parser.Statement  // statements inserted ahead of the use
	Binds   int                 // leading Spliced statements that bind arguments
	Result  string              // result temporary, "" when the value stands inline
	Value   parser.Expression   // expression the call became, nil when the statement was dropped
	Use     parser.Statement    // statement that held the call, nil when dropped
}

// Result is the transcript of one module's transform: every expansion
// applied, in the order they were applied, and every non-fatal skip.
type Result struct {
	Expansions []*Expansion
	Diags      []errors.InlayError
}

// Inliner expands calls across a module graph. Modules must be handed
// to Transform callees-first; the inliner remembers which modules have
// settled, so a cross-module call either splices a final body or is
// diagnosed as part of an import cycle.
type Inliner struct {
	res   *resolver.Resolver
	final map[*resolver.Module]bool
	bad   map[*resolver.Module]bool
}

func New(res *resolver.Resolver) *Inliner {
	return &Inliner{
		res:   res,
		final: make(map[*resolver.Module]bool),
		bad:   make(map[*resolver.Module]bool),
	}
}

// Transform rewrites m's program in place and reports what it did. A
// returned error is a TransformError: the module cannot be rewritten
// faithfully and its program may be part-rewritten, so callers wanting
// the untouched form must reparse. Other failures never abort; they
// land in Result.Diags and the calls stay as written.
func (inl *Inliner) Transform(m *resolver.Module) (*Result, error) {
	t := &transform{
		inl:   inl,
		res:   inl.res,
		mod:   m,
		tree:  buildTree(m),
		namer: scopes.NewNamer(),
		done:  make(map[*parser.CallExpression]bool),
		out:   &Result{},
	}
	t.graph = t.buildGraph()
	for _, u := range t.graph.order {
		t.cur = u
		if err := t.unit(u); err != nil {
			inl.bad[m] = true
			return t.out, err
		}
	}
	inl.final[m] = true
	return t.out, nil
}

// transform carries the state of one module's rewrite.
type transform struct {
	inl   *Inliner
	res   *resolver.Resolver
	mod   *resolver.Module
	tree  *scopeTree
	graph *inlineGraph
	namer *scopes.Namer
	cur   *unit
	done  map[*parser.CallExpression]bool
	out   *Result
}

// callSite is one accepted expansion point: the call, its resolved
// callee, the lexical scope the call sits in, and the statement list
// the body splices into. at chains up through home, so names vended
// against at are fresh in home as well.
type callSite struct {
	call   *parser.CallExpression
	entity *resolver.FunctionEntity
	at     *scopes.Scope
	home   *scopes.Scope
	list   *[]parser.Statement
	index  int
	stmt   parser.Statement
}

func (t *transform) unit(u *unit) error {
	switch {
	case u.body != nil:
		return t.stmts(&u.body.Statements, t.tree.scopeOf(u.body, u.scope))
	case u.expr != nil:
		return t.arrowUnit(u)
	default:
		if prog, ok := u.node.(*parser.Program); ok {
			return t.stmts(&prog.Statements, u.scope)
		}
		return nil
	}
}

// arrowUnit settles an arrow with an expression body. The body only
// grows a statement form when a call in it will actually expand, so
// arrows that merely mention inline functions keep their shape.
func (t *transform) arrowUnit(u *unit) error {
	arrow, ok := u.node.(*parser.ArrowFunctionLiteral)
	if !ok {
		return nil
	}
	actionable := false
	t.scanExpr(u.expr, u.scope, false, func(call *parser.CallExpression, at *scopes.Scope, cond bool) bool {
		if _, ok := t.consider(call, at, cond); ok {
			actionable = true
			return false
		}
		return true
	})
	if !actionable {
		return nil
	}
	body := blockOf(returnStmt(u.expr))
	arrow.Body = body
	u.body = body
	u.expr = nil
	return t.stmts(&body.Statements, t.tree.scopeOf(body, u.scope))
}

// stmts settles one statement list. Each index is re-settled until no
// call in the statement there expands; insertions land at or before
// the index, so the statement that was scanned moves down and is seen
// again before the walk passes it. Nested statement lists settle after
// the statement that owns them.
func (t *transform) stmts(list *[]parser.Statement, scope *scopes.Scope) error {
	for i := 0; i < len(*list); i++ {
		for {
			changed, err := t.settle(list, i, scope)
			if err != nil {
				return err
			}
			if !changed || i >= len(*list) {
				break
			}
		}
		if i >= len(*list) {
			break
		}
		var err error
		t.eachNestedList((*list)[i], scope, func(inner *[]parser.Statement, at *scopes.Scope) {
			if err == nil {
				err = t.stmts(inner, at)
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// settle expands the first actionable call of the statement at index i,
// reporting whether anything changed.
func (t *transform) settle(list *[]parser.Statement, i int, scope *scopes.Scope) (bool, error) {
	var site *callSite
	t.scanStmt((*list)[i], scope, false, func(call *parser.CallExpression, at *scopes.Scope, cond bool) bool {
		s, ok := t.consider(call, at, cond)
		if !ok {
			return true
		}
		site = s
		return false
	})
	if site == nil {
		return false, nil
	}
	site.home = scope
	site.list = list
	site.index = i
	site.stmt = (*list)[i]
	if err := t.expand(site); err != nil {
		return false, err
	}
	return true, nil
}

// consider decides one call's fate. Accepted calls come back as a
// partially filled site; every rejected call is marked done so the
// rescans after later splices skip it at once. Rejections diagnose
// only when the call site itself asked for inlining, except cycles,
// which are always worth reporting.
func (t *transform) consider(call *parser.CallExpression, at *scopes.Scope, cond bool) (*callSite, bool) {
	if t.done[call] {
		return nil, false
	}
	siteHint := t.mod.Hints.Call(call).Has(hints.Inline)
	entity, ok := t.res.Resolve(call.Function, t.mod, at)
	if !ok {
		if siteHint {
			t.skip(call, scopes.CalleeBase(call.Function), "callee is not statically known")
		}
		t.done[call] = true
		return nil, false
	}
	if !siteHint && !entity.Hints.Has(hints.Inline) {
		t.done[call] = true
		return nil, false
	}
	if cond {
		if siteHint {
			t.skip(call, entity.Name, "call sits in a conditionally evaluated position")
		}
		t.done[call] = true
		return nil, false
	}
	if hasSpreadArg(call) {
		t.skip(call, entity.Name, "a spread argument defeats parameter binding")
		t.done[call] = true
		return nil, false
	}
	if entity.Module != t.mod {
		if t.inl.bad[entity.Module] {
			t.skip(call, entity.Name, fmt.Sprintf("defining module %q failed to transform", entity.Module.Specifier))
			t.done[call] = true
			return nil, false
		}
		if !t.inl.final[entity.Module] {
			t.cycle(call, entity.Name, []string{t.mod.Specifier, entity.Module.Specifier, t.mod.Specifier})
			t.done[call] = true
			return nil, false
		}
	} else if callee := t.tree.byNode[entity.Fn]; callee != nil {
		if callee == t.cur {
			t.cycle(call, entity.Name, nil)
			t.done[call] = true
			return nil, false
		}
		if t.graph.scc[callee] == t.graph.scc[t.cur] {
			t.cycle(call, entity.Name, t.graph.cyclePath(callee))
			t.done[call] = true
			return nil, false
		}
	}
	return &callSite{call: call, entity: entity, at: at}, true
}

// eligible reports whether a resolved call should expand at all: the
// declaration carries the inline hint, or this particular call site
// does.
func (t *transform) eligible(call *parser.CallExpression, entity *resolver.FunctionEntity) bool {
	return entity.Hints.Has(hints.Inline) || t.mod.Hints.Call(call).Has(hints.Inline)
}

func (t *transform) skip(call *parser.CallExpression, callee, msg string) {
	t.out.Diags = append(t.out.Diags, &errors.SkipError{
		Position: nodePos(call),
		Callee:   callee,
		Msg:      msg,
	})
}

func (t *transform) cycle(call *parser.CallExpression, callee string, path []string) {
	t.out.Diags = append(t.out.Diags, &errors.CycleError{
		Position: nodePos(call),
		Callee:   callee,
		Cycle:    path,
	})
}

// markDone settles every call under node so later scans pass over them.
func (t *transform) markDone(node parser.Node) {
	parser.Inspect(node, func(n parser.Node) bool {
		if call, ok := n.(*parser.CallExpression); ok {
			t.done[call] = true
		}
		return true
	})
}

func nodePos(node parser.Node) errors.Position {
	tok := parser.FirstToken(node)
	return errors.Position{
		Line:     tok.Line,
		Column:   tok.Column,
		StartPos: tok.StartPos,
		EndPos:   tok.EndPos,
	}
}
