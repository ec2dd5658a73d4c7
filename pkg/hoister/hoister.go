// Package hoister merges repeated pure computations. After inlining, a
// block may evaluate the same pure callee with the same arguments more
// than once; the hoister keeps the first evaluation, binds it to a
// temporary when the inliner left the value standing inline, and
// rewrites every later occurrence to reuse it. Occurrences merge only
// while nothing between them could change the result: an assignment to
// a name the arguments read, a mutation through a member or index, or
// a call to anything not known pure ends every open lineage, and the
// next occurrence starts a fresh one.
package hoister

import (
	"inlay/pkg/inliner"
	"inlay/pkg/parser"
	"inlay/pkg/resolver"
	"inlay/pkg/scopes"
)

// Merge records one collapsed computation: the callee whose repeated
// occurrences merged, the temporary carrying the value, and how many
// later occurrences reuse it.
type Merge struct {
	Callee string
	Module string
	Temp   string
	Uses   int
}

// Result is the transcript of one module's hoist pass.
type Result struct {
	Merges []*Merge
}

// Hoister deduplicates pure calls per block. It consumes the expansion
// transcript the inliner produced for the module, which tells it which
// spliced statements are licensed by a purity hint and where each
// inlined value ended up.
type Hoister struct {
	res *resolver.Resolver
}

func New(res *resolver.Resolver) *Hoister {
	return &Hoister{res: res}
}

// Hoist rewrites m's program in place and reports what merged. The
// pass never fails: an occurrence that cannot be proven reusable is
// simply left alone.
func (h *Hoister) Hoist(m *resolver.Module, expansions []*inliner.Expansion) *Result {
	p := &pass{
		res:        h.res,
		mod:        m,
		namer:      scopes.NewNamer(),
		anchors:    make(map[parser.Expression]*inliner.Expansion),
		pureRegion: make(map[parser.Statement]bool),
		out:        &Result{},
	}
	for _, exp := range expansions {
		if !exp.Pure {
			continue
		}
		for _, s := range exp.Spliced[exp.Binds:] {
			p.pureRegion[s] = true
		}
		if exp.Use != nil && exp.Value != nil {
			p.anchors[exp.Value] = exp
		}
	}
	p.block(&m.Program.Statements, m.Scope())
	return p.out
}

// pass carries the state of one module's hoist.
type pass struct {
	res        *resolver.Resolver
	mod        *resolver.Module
	namer      *scopes.Namer
	anchors    map[parser.Expression]*inliner.Expansion
	pureRegion map[parser.Statement]bool
	out        *Result
}

// entry is one reusable computation: a pure callee and the argument
// syntax it was applied to, anchored at its first occurrence in the
// block.
type entry struct {
	callee string
	module string
	args   []parser.Expression
	reads  map[string]bool // names the result depends on
	member bool            // arguments read through a member or index

	temp       string                 // name carrying the value, "" until a reuse demands one
	capturable bool                   // false when effects earlier in the statement pin the value in place
	exp        *inliner.Expansion     // inlined occurrence, nil for a direct call
	call       *parser.CallExpression // direct occurrence, nil when inlined
	use        parser.Statement
	index      int
	merge      *Merge
	dead       bool
}

// lineage is the per-block merge state. Blocks do not share entries:
// a HoistKey is scoped to one statement list.
type lineage struct {
	list    *[]parser.Statement
	scope   *scopes.Scope
	entries []*entry
	fx      *effects
	i       int
	cur     parser.Statement
	dirty   bool
	fns     []deferredFn
}

// effects summarizes what a stretch of code may do to bindings outside
// it. Nested blocks report theirs upward so outer lineages notice.
type effects struct {
	all    bool
	names  map[string]bool
	member bool
}

func newEffects() *effects { return &effects{names: make(map[string]bool)} }

func (p *pass) lookup(ln *lineage, callee, module string, args []parser.Expression) *entry {
	for _, e := range ln.entries {
		if e.dead || e.callee != callee || e.module != module || len(e.args) != len(args) {
			continue
		}
		match := true
		for i := range args {
			if !parser.Equal(e.args[i], args[i]) {
				match = false
				break
			}
		}
		if match {
			return e
		}
	}
	return nil
}

func (p *pass) register(ln *lineage, callee, module string, args []parser.Expression, temp string, exp *inliner.Expansion, call *parser.CallExpression) {
	reads, member := readsOf(callee, call, args)
	ln.entries = append(ln.entries, &entry{
		callee:     callee,
		module:     module,
		args:       args,
		reads:      reads,
		member:     member,
		temp:       temp,
		capturable: !ln.dirty,
		exp:        exp,
		call:       call,
		use:        ln.cur,
		index:      ln.i,
	})
}

// rearm re-anchors a live entry whose first occurrence cannot gain a
// temporary, making the current occurrence the one later calls reuse.
func (p *pass) rearm(ln *lineage, e *entry, call *parser.CallExpression, exp *inliner.Expansion) {
	e.temp = ""
	if exp != nil {
		e.temp = exp.Result
	}
	e.capturable = !ln.dirty
	e.exp = exp
	e.call = call
	e.use = ln.cur
	e.index = ln.i
	e.merge = nil
}

// ensureTemp gives the entry's first occurrence a name to reuse. An
// inlined occurrence that kept its value inline, or a direct call, is
// lifted into a let immediately ahead of its statement.
func (p *pass) ensureTemp(ln *lineage, e *entry) {
	if e.temp != "" {
		return
	}
	name := p.namer.TempFor(ln.scope, e.callee)
	var captured parser.Expression
	if e.exp != nil {
		captured = e.exp.Value
	} else {
		captured = e.call
	}
	parser.Replace(e.use, captured, ident(name))
	p.insert(ln, e.index, letStmt(name, captured))
	e.temp = name
}

func (p *pass) reused(e *entry) {
	if e.merge == nil {
		e.merge = &Merge{Callee: e.callee, Module: e.module, Temp: e.temp}
		p.out.Merges = append(p.out.Merges, e.merge)
	}
	e.merge.Uses++
}

// discard removes a merged occurrence's redundant computation: the
// spliced body always goes, argument bindings only when dropping them
// loses no observable work.
func (p *pass) discard(ln *lineage, exp *inliner.Expansion) {
	for _, s := range exp.Spliced[exp.Binds:] {
		p.removeStmt(ln, s)
	}
	for _, s := range exp.Spliced[:exp.Binds] {
		if p.canDrop(s) {
			p.removeStmt(ln, s)
		}
	}
}

// inlined handles one pure expansion at the point its value sits.
func (p *pass) inlined(ln *lineage, exp *inliner.Expansion, cond bool) {
	if cond {
		return
	}
	if e := p.lookup(ln, exp.Callee, exp.Module, exp.Args); e != nil {
		if e.temp != "" || e.capturable {
			p.ensureTemp(ln, e)
			parser.Replace(exp.Use, exp.Value, ident(e.temp))
			p.discard(ln, exp)
			p.reused(e)
			return
		}
		p.rearm(ln, e, nil, exp)
		return
	}
	p.register(ln, exp.Callee, exp.Module, exp.Args, exp.Result, exp, nil)
}

// direct handles a pure call the inliner left as a call.
func (p *pass) direct(ln *lineage, entity *resolver.FunctionEntity, call *parser.CallExpression) {
	if e := p.lookup(ln, entity.Name, entity.Module.Specifier, call.Arguments); e != nil {
		if e.temp != "" || e.capturable {
			p.ensureTemp(ln, e)
			parser.Replace(ln.cur, call, ident(e.temp))
			p.reused(e)
			return
		}
		p.rearm(ln, e, call, nil)
		return
	}
	p.register(ln, entity.Name, entity.Module.Specifier, call.Arguments, "", nil, call)
}
