package driver

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"inlay/pkg/cache"
	"inlay/pkg/errors"
	"inlay/pkg/hints"
	"inlay/pkg/hoister"
	"inlay/pkg/inliner"
	"inlay/pkg/modules"
	"inlay/pkg/parser"
	"inlay/pkg/resolver"
	"inlay/pkg/source"
)

// Result carries everything one build produced.
type Result struct {
	Entry     string              // resolved path of the entry module
	Order     []string            // every module, suppliers before consumers
	Cyclic    []string            // modules on inline dependency cycles, sorted
	Suppliers map[string][]string // inline suppliers per module, only non-empty sets
	Records   []*modules.Record   // one per module, in Order
}

// Record returns the build record for a resolved path, nil when the
// build never saw it.
func (r *Result) Record(path string) *modules.Record {
	for _, rec := range r.Records {
		if rec.ResolvedPath == path {
			return rec
		}
	}
	return nil
}

// Diags collects every module's diagnostics in build order.
func (r *Result) Diags() []errors.InlayError {
	var all []errors.InlayError
	for _, rec := range r.Records {
		all = append(all, rec.Diags...)
	}
	return all
}

// Failed reports whether any module failed outright or produced a
// fatal diagnostic.
func (r *Result) Failed() bool {
	for _, rec := range r.Records {
		if rec.State == modules.ModuleFailed || errors.HasFatal(rec.Diags) {
			return true
		}
	}
	return false
}

// Build resolves, parses and rewrites the module graph reachable from
// entry. The returned error covers only a failed entry resolution;
// everything past that point is reported on the per-module records, so
// one broken module never hides the rest of the build.
func (s *Session) Build(entry string) (*Result, error) {
	result, res, graph, err := s.analyze(entry)
	if err != nil {
		return nil, err
	}
	s.transformAll(result.Order, res, s.planCache(result.Order, graph))
	return result, nil
}

// Analyze resolves and parses the graph reachable from entry and
// reports the transform order without rewriting anything. The graph
// command uses it to show a build plan.
func (s *Session) Analyze(entry string) (*Result, error) {
	result, _, _, err := s.analyze(entry)
	return result, err
}

func (s *Session) analyze(entry string) (*Result, *resolver.Resolver, *modules.Graph, error) {
	s.registry.Clear()
	s.links = make(map[string]map[string]string)

	rec, err := s.provide(entry, "")
	if err != nil {
		return nil, nil, nil, &errors.ResolveError{
			Specifier: entry,
			Msg:       fmt.Sprintf("cannot resolve entry %q: %v", entry, err),
			Cause:     err,
		}
	}
	entryPath := rec.ResolvedPath

	s.parseAll(entryPath)

	res := resolver.New(s.hooks())
	graph := s.inlineGraph(res)
	order, cyclic := graph.TopoOrder()

	result := &Result{Entry: entryPath, Order: order, Cyclic: cyclic}
	for _, path := range order {
		if suppliers := graph.Suppliers(path); len(suppliers) > 0 {
			if result.Suppliers == nil {
				result.Suppliers = make(map[string][]string)
			}
			result.Suppliers[path] = suppliers
		}
		result.Records = append(result.Records, s.registry.Get(path))
	}
	return result, res, graph, nil
}

// parseAll parses the graph breadth-first from the entry. Each wave
// parses in parallel; dependency resolution between waves runs on one
// goroutine, so the registry and the link table see a single writer.
func (s *Session) parseAll(entryPath string) {
	seen := map[string]bool{entryPath: true}
	wave := []string{entryPath}

	for len(wave) > 0 {
		g := new(errgroup.Group)
		g.SetLimit(s.parseJobs())
		for _, path := range wave {
			rec := s.registry.Get(path)
			g.Go(func() error {
				s.parse(rec)
				return nil
			})
		}
		g.Wait()

		var next []string
		for _, path := range wave {
			rec := s.registry.Get(path)
			if rec.State != modules.ModuleParsed {
				continue
			}
			rec.Dependencies = modules.Imports(rec.Module.Program)
			for _, request := range rec.Dependencies {
				dep, err := s.provide(request, path)
				if err != nil {
					rec.Diags = append(rec.Diags, &errors.ResolveError{
						Position:  requestPos(rec.Module.Program, request, rec.Source),
						Specifier: request,
						Msg:       fmt.Sprintf("cannot resolve %q: %v", request, err),
						Cause:     err,
					})
					continue
				}
				if !seen[dep.ResolvedPath] {
					seen[dep.ResolvedPath] = true
					next = append(next, dep.ResolvedPath)
				}
			}
		}
		wave = next
	}
}

// requestPos locates the first import or re-export of request inside
// the program, for diagnostics.
func requestPos(program *parser.Program, request string, src *source.SourceFile) errors.Position {
	for _, stmt := range program.Statements {
		var lit *parser.StringLiteral
		switch decl := stmt.(type) {
		case *parser.ImportDeclaration:
			lit = decl.Source
		case *parser.ExportNamedDeclaration:
			lit = decl.Source
		}
		if lit == nil || lit.Value != request {
			continue
		}
		tok := parser.FirstToken(lit)
		return errors.Position{
			Line:     tok.Line,
			Column:   tok.Column,
			StartPos: tok.StartPos,
			EndPos:   tok.EndPos,
			Source:   src,
		}
	}
	return errors.Position{Source: src}
}

// inlineGraph builds the ordering graph over the parsed modules: an
// edge from consumer to supplier whenever the consumer could splice one
// of the supplier's bodies. That happens when the consumer imports or
// re-exports a name the supplier offers in inline form, and when a call
// site in the consumer carries its own inline hint on an imported
// binding.
func (s *Session) inlineGraph(res *resolver.Resolver) *modules.Graph {
	graph := modules.NewGraph()

	offers := make(map[string]map[string]bool)
	offered := func(path string) map[string]bool {
		set, done := offers[path]
		if done {
			return set
		}
		if rec := s.registry.Get(path); rec != nil && rec.State == modules.ModuleParsed {
			names := res.InlineExports(rec.Module)
			if len(names) > 0 {
				set = make(map[string]bool, len(names))
				for _, name := range names {
					set[name] = true
				}
			}
		}
		offers[path] = set
		return set
	}

	for _, path := range s.registry.List() {
		graph.AddModule(path)
		rec := s.registry.Get(path)
		if rec.State != modules.ModuleParsed {
			continue
		}
		s.exportEdges(graph, rec, offered)
		s.siteHintEdges(graph, rec)
	}
	return graph
}

// exportEdges adds consumer edges for imports and re-exports of names
// the supplier offers in inline form.
func (s *Session) exportEdges(graph *modules.Graph, rec *modules.Record, offered func(string) map[string]bool) {
	for _, stmt := range rec.Module.Program.Statements {
		switch decl := stmt.(type) {
		case *parser.ImportDeclaration:
			supplier, ok := s.linked(rec.ResolvedPath, decl.Source.Value)
			if !ok {
				continue
			}
			names := offered(supplier)
			if len(names) == 0 {
				continue
			}
			hit := decl.Namespace != nil || (decl.Default != nil && names["default"])
			if !hit {
				for _, spec := range decl.Specifiers {
					if names[spec.Imported.Value] {
						hit = true
						break
					}
				}
			}
			if hit {
				graph.AddEdge(rec.ResolvedPath, supplier)
			}
		case *parser.ExportNamedDeclaration:
			if decl.Source == nil {
				continue
			}
			supplier, ok := s.linked(rec.ResolvedPath, decl.Source.Value)
			if !ok {
				continue
			}
			names := offered(supplier)
			for _, spec := range decl.Specifiers {
				if names[spec.Local.Value] {
					graph.AddEdge(rec.ResolvedPath, supplier)
					break
				}
			}
		}
	}
}

// siteHintEdges adds consumer edges for call sites that carry their own
// inline hint on an imported binding. The supplier's export set misses
// these: a site hint may point at a function its module never marked.
func (s *Session) siteHintEdges(graph *modules.Graph, rec *modules.Record) {
	if rec.Module.Hints.CallCount() == 0 {
		return
	}
	sources := importSources(rec.Module.Program)
	if len(sources) == 0 {
		return
	}
	parser.Inspect(rec.Module.Program, func(n parser.Node) bool {
		call, ok := n.(*parser.CallExpression)
		if !ok || !rec.Module.Hints.Call(call).Has(hints.Inline) {
			return true
		}
		if request, ok := sources[calleeRoot(call.Function)]; ok {
			if supplier, ok := s.linked(rec.ResolvedPath, request); ok {
				graph.AddEdge(rec.ResolvedPath, supplier)
			}
		}
		return true
	})
}

// importSources maps every binding an import introduces to the request
// it came from.
func importSources(program *parser.Program) map[string]string {
	sources := make(map[string]string)
	for _, stmt := range program.Statements {
		decl, ok := stmt.(*parser.ImportDeclaration)
		if !ok {
			continue
		}
		request := decl.Source.Value
		if decl.Default != nil {
			sources[decl.Default.Value] = request
		}
		if decl.Namespace != nil {
			sources[decl.Namespace.Value] = request
		}
		for _, spec := range decl.Specifiers {
			sources[spec.Local.Value] = request
		}
	}
	return sources
}

// calleeRoot names the binding a callee expression starts from: the
// identifier itself, or the object of a namespace member call.
func calleeRoot(callee parser.Expression) string {
	switch c := callee.(type) {
	case *parser.Identifier:
		return c.Value
	case *parser.MemberExpression:
		if obj, ok := c.Object.(*parser.Identifier); ok {
			return obj.Value
		}
	}
	return ""
}

// transformAll runs the inline and hoist passes over every parsed
// module, suppliers first. One inliner serves the whole build: it
// remembers which modules reached final shape, which is what licenses
// splicing a body defined in another module. Modules the cache plan
// cleared skip both passes and reuse their stored output.
func (s *Session) transformAll(order []string, res *resolver.Resolver, plan *cachePlan) {
	inl := inliner.New(res)
	hst := hoister.New(res)
	emitter := parser.NewJSEmitter()

	for _, path := range order {
		rec := s.registry.Get(path)
		if rec == nil || rec.State != modules.ModuleParsed {
			continue
		}
		if entry, ok := plan.restore(path); ok {
			debugPrintf("// [Driver] Restoring %s from cache\n", path)
			rec.Output = entry.Output
			rec.Cached = true
			rec.State = modules.ModuleTransformed
			continue
		}
		debugPrintf("// [Driver] Transforming %s\n", path)
		out, err := inl.Transform(rec.Module)
		rec.Expansions = out.Expansions
		rec.Diags = append(rec.Diags, out.Diags...)
		if err != nil {
			rec.State = modules.ModuleFailed
			rec.Err = err
			if ie, ok := err.(errors.InlayError); ok {
				rec.Diags = append(rec.Diags, ie)
			}
			errors.AttachSource(rec.Diags, rec.Source)
			continue
		}
		hout := hst.Hoist(rec.Module, rec.Expansions)
		rec.Merges = hout.Merges
		rec.Output = emitter.Emit(rec.Module.Program)
		rec.State = modules.ModuleTransformed
		errors.AttachSource(rec.Diags, rec.Source)
		if plan != nil && len(out.Diags) == 0 {
			entry := &cache.Entry{Path: path, Output: rec.Output}
			if perr := s.store.Put(plan.keys[path], entry); perr != nil {
				debugPrintf("// [Driver] cache write for %s: %v\n", path, perr)
			}
		}
		debugPrintf("// [Driver] %s: %d expansions, %d merges\n", path, len(rec.Expansions), len(rec.Merges))
	}
}
