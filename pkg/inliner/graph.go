package inliner

import (
	"inlay/pkg/parser"
	"inlay/pkg/scopes"
)

// inlineGraph ties each unit to the local callees its expansions would
// splice. Tarjan's strongly connected components over it give both the
// processing order (callees settle before their callers, so spliced
// bodies are always final) and the recursion diagnosis: a call whose
// target shares its component can never be fully expanded.
type inlineGraph struct {
	order []*unit // callee-first
	scc   map[*unit]int
	comps [][]*unit
}

// cyclePath names the cycle a call into callee's component is part of,
// starting and ending at the callee.
func (g *inlineGraph) cyclePath(callee *unit) []string {
	comp := g.comps[g.scc[callee]]
	start := 0
	for i, u := range comp {
		if u == callee {
			start = i
			break
		}
	}
	path := make([]string, 0, len(comp)+1)
	for i := range comp {
		path = append(path, comp[(start+i)%len(comp)].name)
	}
	return append(path, callee.name)
}

// buildGraph resolves every call each unit would expand and records the
// local edges. Calls in conditional positions or with spread arguments
// never splice, so they contribute no edges; cross-module callees are
// settled by module ordering and contribute none either.
func (t *transform) buildGraph() *inlineGraph {
	edges := make(map[*unit][]*unit)
	seen := make(map[*unit]map[*unit]bool)
	for _, u := range t.tree.units {
		caller := u
		t.eachUnitCall(u, func(call *parser.CallExpression, at *scopes.Scope, cond bool) bool {
			if cond || hasSpreadArg(call) {
				return true
			}
			entity, ok := t.res.Resolve(call.Function, t.mod, at)
			if !ok || entity.Module != t.mod || !t.eligible(call, entity) {
				return true
			}
			callee := t.tree.byNode[entity.Fn]
			if callee == nil {
				return true
			}
			// Callers name the unit; their spelling beats a
			// placeholder derived from an anonymous node.
			callee.name = entity.Name
			if seen[caller] == nil {
				seen[caller] = make(map[*unit]bool)
			}
			if !seen[caller][callee] {
				seen[caller][callee] = true
				edges[caller] = append(edges[caller], callee)
			}
			return true
		})
	}
	return tarjan(t.tree.units, edges)
}

// eachUnitCall yields every call site of the unit's own body, nested
// blocks included, function literal interiors excluded.
func (t *transform) eachUnitCall(u *unit, yield callVisit) {
	switch {
	case u.body != nil:
		t.eachListCall(&u.body.Statements, t.tree.scopeOf(u.body, u.scope), yield)
	case u.expr != nil:
		t.scanExpr(u.expr, u.scope, false, yield)
	default:
		if prog, ok := u.node.(*parser.Program); ok {
			t.eachListCall(&prog.Statements, u.scope, yield)
		}
	}
}

func (t *transform) eachListCall(list *[]parser.Statement, scope *scopes.Scope, yield callVisit) bool {
	for _, s := range *list {
		if !t.scanStmt(s, scope, false, yield) {
			return false
		}
		ok := true
		t.eachNestedList(s, scope, func(inner *[]parser.Statement, at *scopes.Scope) {
			if ok {
				ok = t.eachListCall(inner, at, yield)
			}
		})
		if !ok {
			return false
		}
	}
	return true
}

// eachNestedList enumerates the statement lists nested directly inside
// one statement, paired with their scopes. Function declarations are
// left out; their bodies are separate units.
func (t *transform) eachNestedList(stmt parser.Statement, scope *scopes.Scope, f func(*[]parser.Statement, *scopes.Scope)) {
	switch s := stmt.(type) {
	case *parser.BlockStatement:
		f(&s.Statements, t.tree.scopeOf(s, scope))
	case *parser.IfStatement:
		f(&s.Consequence.Statements, t.tree.scopeOf(s.Consequence, scope))
		if s.Alternative != nil {
			t.eachNestedList(s.Alternative, scope, f)
		}
	case *parser.WhileStatement:
		f(&s.Body.Statements, t.tree.scopeOf(s.Body, scope))
	case *parser.DoWhileStatement:
		f(&s.Body.Statements, t.tree.scopeOf(s.Body, scope))
	case *parser.ForStatement:
		at := t.tree.scopeOf(s, scope)
		f(&s.Body.Statements, t.tree.scopeOf(s.Body, at))
	case *parser.ForOfStatement:
		at := t.tree.scopeOf(s, scope)
		f(&s.Body.Statements, t.tree.scopeOf(s.Body, at))
	case *parser.LabeledStatement:
		t.eachNestedList(s.Body, scope, f)
	case *parser.TryStatement:
		f(&s.Block.Statements, t.tree.scopeOf(s.Block, scope))
		if s.CatchBlock != nil {
			at := t.tree.scopeOf(s, scope)
			f(&s.CatchBlock.Statements, t.tree.scopeOf(s.CatchBlock, at))
		}
		if s.FinallyBlock != nil {
			f(&s.FinallyBlock.Statements, t.tree.scopeOf(s.FinallyBlock, scope))
		}
	case *parser.SwitchStatement:
		at := t.tree.scopeOf(s, scope)
		for _, c := range s.Cases {
			f(&c.Body, at)
		}
	case *parser.ExportNamedDeclaration:
		if s.Declaration != nil {
			t.eachNestedList(s.Declaration, scope, f)
		}
	}
}

func tarjan(units []*unit, edges map[*unit][]*unit) *inlineGraph {
	g := &inlineGraph{scc: make(map[*unit]int)}
	index := make(map[*unit]int)
	low := make(map[*unit]int)
	onStack := make(map[*unit]bool)
	var stack []*unit
	next := 0

	var strong func(u *unit)
	strong = func(u *unit) {
		index[u] = next
		low[u] = next
		next++
		stack = append(stack, u)
		onStack[u] = true
		for _, v := range edges[u] {
			if _, visited := index[v]; !visited {
				strong(v)
				if low[v] < low[u] {
					low[u] = low[v]
				}
			} else if onStack[v] && index[v] < low[u] {
				low[u] = index[v]
			}
		}
		if low[u] != index[u] {
			return
		}
		id := len(g.comps)
		var comp []*unit
		for {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[v] = false
			g.scc[v] = id
			comp = append(comp, v)
			g.order = append(g.order, v)
			if v == u {
				break
			}
		}
		g.comps = append(g.comps, comp)
	}

	for _, u := range units {
		if _, visited := index[u]; !visited {
			strong(u)
		}
	}
	return g
}
