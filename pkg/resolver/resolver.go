// Package resolver locates the function behind a call site, across
// module boundaries, and provisions a self-contained copy of its body
// for splicing into the consumer.
//
// Resolution never mutates a dependency module: bodies and supporting
// declarations are deep-cloned, and anything the body references from
// its home module is either re-imported by the consumer or copied.
// Callees that cannot be chased statically (computed members, bindings
// of unknown provenance) resolve to nothing; the caller leaves such
// call sites alone.
package resolver

import (
	"sort"

	"inlay/pkg/hints"
	"inlay/pkg/parser"
	"inlay/pkg/scopes"
)

// Module pairs one parsed module with its hint table and scope. The
// driver creates one per graph node and shares it with every consumer.
type Module struct {
	Specifier string
	Program   *parser.Program
	Hints     *hints.Table

	scope   *scopes.Scope
	exports map[string]*exportRecord
}

// NewModule wraps a parsed program for resolution. The hint table may
// be nil for modules scanned without hints.
func NewModule(specifier string, program *parser.Program, table *hints.Table) *Module {
	if table == nil {
		table = hints.NewTable()
	}
	return &Module{Specifier: specifier, Program: program, Hints: table}
}

// Scope returns the module's top-level scope, building it on first use.
func (m *Module) Scope() *scopes.Scope {
	if m.scope == nil {
		m.scope = scopes.BuildModuleScope(m.Program)
	}
	return m.scope
}

// InvalidateScope drops the cached scope and export table so they are
// rebuilt after the program's top level has been rewritten.
func (m *Module) InvalidateScope() {
	m.scope = nil
	m.exports = nil
}

// exportRecord describes one exported name of a module.
type exportRecord struct {
	Name   string      // exported name; "default" for the default export
	Local  string      // local binding the export refers to, "" for anonymous defaults
	From   string      // for re-exports: name in the source module
	Source string      // for re-exports: the source module request
	Fn     parser.Node // function node when the export carries one directly
}

// Exports returns the module's export table, building it on first use.
func (m *Module) Exports() map[string]*exportRecord {
	if m.exports == nil {
		m.exports = collectExports(m.Program)
	}
	return m.exports
}

// ExportsName reports whether the module exports the given name.
func (m *Module) ExportsName(name string) bool {
	_, ok := m.Exports()[name]
	return ok
}

// exportOfLocal finds the exported name a local binding is visible
// under, if any.
func (m *Module) exportOfLocal(local string) (string, bool) {
	for name, rec := range m.Exports() {
		if rec.Source == "" && rec.Local == local {
			return name, true
		}
	}
	return "", false
}

func collectExports(program *parser.Program) map[string]*exportRecord {
	out := make(map[string]*exportRecord)
	if program == nil {
		return out
	}
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *parser.ExportNamedDeclaration:
			if s.Declaration != nil {
				collectExportedDecl(out, s.Declaration)
				continue
			}
			source := ""
			if s.Source != nil {
				source = s.Source.Value
			}
			for _, spec := range s.Specifiers {
				exported := spec.Local.Value
				if spec.Exported != nil {
					exported = spec.Exported.Value
				}
				rec := &exportRecord{Name: exported}
				if source != "" {
					rec.From = spec.Local.Value
					rec.Source = source
				} else {
					rec.Local = spec.Local.Value
				}
				out[exported] = rec
			}
		case *parser.ExportDefaultDeclaration:
			rec := &exportRecord{Name: "default"}
			switch d := s.Declaration.(type) {
			case *parser.FunctionLiteral:
				rec.Fn = d
				if d.Name != nil {
					rec.Local = d.Name.Value
				}
			case *parser.ArrowFunctionLiteral:
				rec.Fn = d
			case *parser.Identifier:
				rec.Local = d.Value
			}
			out["default"] = rec
		}
	}
	return out
}

func collectExportedDecl(out map[string]*exportRecord, decl parser.Statement) {
	switch d := decl.(type) {
	case *parser.FunctionDeclaration:
		if d.Name != nil {
			out[d.Name.Value] = &exportRecord{Name: d.Name.Value, Local: d.Name.Value, Fn: d}
		}
	case *parser.LetStatement:
		out[d.Name.Value] = &exportRecord{Name: d.Name.Value, Local: d.Name.Value, Fn: functionValue(d.Value)}
	case *parser.ConstStatement:
		out[d.Name.Value] = &exportRecord{Name: d.Name.Value, Local: d.Name.Value, Fn: functionValue(d.Value)}
	case *parser.VarStatement:
		out[d.Name.Value] = &exportRecord{Name: d.Name.Value, Local: d.Name.Value, Fn: functionValue(d.Value)}
	}
}

// functionValue returns expr when it is a function-defining node.
func functionValue(expr parser.Expression) parser.Node {
	switch expr.(type) {
	case *parser.FunctionLiteral, *parser.ArrowFunctionLiteral:
		return expr
	}
	return nil
}

// FunctionEntity is a resolved callee: the function-defining node, the
// hints attached to it, and the module that owns it.
type FunctionEntity struct {
	Name   string
	Fn     parser.Node // *FunctionDeclaration, *FunctionLiteral or *ArrowFunctionLiteral
	Hints  hints.Hint
	Module *Module

	// scope is where the function is defined, against which its free
	// variables resolve. Module scope for exports; possibly an inner
	// scope for same-module callees.
	scope *scopes.Scope
}

// DefScope returns the scope the entity's free variables resolve in.
func (e *FunctionEntity) DefScope() *scopes.Scope {
	if e.scope != nil {
		return e.scope
	}
	return e.Module.Scope()
}

// Hooks connects the resolver to the host's module graph.
//
// Lookup maps an import request as written in module 'from' to the
// target module, or reports it unresolvable. Request is the inverse
// direction: how module 'from' would spell an import of target. A nil
// Request falls back to the target's specifier, which suits hosts whose
// requests are absolute.
type Hooks struct {
	Lookup  func(from, request string) (*Module, bool)
	Request func(from string, target *Module) string
}

func (h Hooks) lookup(from, request string) (*Module, bool) {
	if h.Lookup == nil {
		return nil, false
	}
	return h.Lookup(from, request)
}

func (h Hooks) request(from string, target *Module) string {
	if h.Request != nil {
		return h.Request(from, target)
	}
	return target.Specifier
}

// Resolver chases callees to their defining function across local
// declarations, imports, and re-export chains.
type Resolver struct {
	hooks  Hooks
	namer  *scopes.Namer
	copied map[copyKey]copiedConst
}

// copyKey identifies a const declaration copied into a consumer, so a
// second call site provisioning the same const reuses the first copy.
type copyKey struct {
	consumer *Module
	origin   parser.Node
}

type copiedConst struct {
	name string
	stmt *parser.ConstStatement
}

func New(hooks Hooks) *Resolver {
	return &Resolver{
		hooks:  hooks,
		namer:  scopes.NewNamer(),
		copied: make(map[copyKey]copiedConst),
	}
}

// Resolve determines the function a callee expression refers to, seen
// from scope at inside consumer. Identifier callees follow the binding;
// member callees resolve only through a namespace import. A false
// result means the call site cannot be chased statically.
func (r *Resolver) Resolve(callee parser.Expression, consumer *Module, at *scopes.Scope) (*FunctionEntity, bool) {
	switch c := callee.(type) {
	case *parser.Identifier:
		return r.resolveName(c.Value, consumer, at)
	case *parser.MemberExpression:
		obj, ok := c.Object.(*parser.Identifier)
		if !ok || c.Property == nil {
			return nil, false
		}
		decl := importBindingOf(obj.Value, at)
		if decl == nil || decl.Namespace == nil || decl.Namespace.Value != obj.Value {
			return nil, false
		}
		target, ok := r.hooks.lookup(consumer.Specifier, decl.Source.Value)
		if !ok {
			return nil, false
		}
		return r.resolveExport(target, c.Property.Value, nil)
	}
	return nil, false
}

// InlineExports lists the exported names of m that resolve to
// inline-hinted functions, re-export chains included. The build
// pipeline uses it to order suppliers before their consumers.
func (r *Resolver) InlineExports(m *Module) []string {
	var names []string
	for name := range m.Exports() {
		entity, ok := r.resolveExport(m, name, nil)
		if ok && entity.Hints.Has(hints.Inline) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// resolveName follows one name through the consumer's scope chain.
func (r *Resolver) resolveName(name string, consumer *Module, at *scopes.Scope) (*FunctionEntity, bool) {
	binding, defScope, ok := at.ResolveIn(name)
	if !ok {
		return nil, false
	}
	switch binding.Kind {
	case scopes.FunctionBinding:
		decl, ok := binding.Node.(*parser.FunctionDeclaration)
		if !ok {
			return nil, false
		}
		e := r.entity(consumer, name, decl)
		e.scope = defScope
		return e, true
	case scopes.LetBinding, scopes.ConstBinding, scopes.VarBinding:
		if fn := functionValue(declaredValue(binding.Node)); fn != nil {
			e := r.entity(consumer, name, fn)
			e.scope = defScope
			return e, true
		}
		return nil, false
	case scopes.ImportBinding:
		decl, ok := binding.Node.(*parser.ImportDeclaration)
		if !ok {
			return nil, false
		}
		imported, ok := importedName(decl, name)
		if !ok {
			return nil, false
		}
		target, ok := r.hooks.lookup(consumer.Specifier, decl.Source.Value)
		if !ok {
			return nil, false
		}
		return r.resolveExport(target, imported, nil)
	}
	return nil, false
}

// declaredValue pulls the initializer off a let/const/var statement.
func declaredValue(node parser.Node) parser.Expression {
	switch s := node.(type) {
	case *parser.LetStatement:
		return s.Value
	case *parser.ConstStatement:
		return s.Value
	case *parser.VarStatement:
		return s.Value
	}
	return nil
}

// importedName maps a local import binding back to the name it was
// imported under. The default import maps to "default"; a namespace
// import has no single name and is not chased here.
func importedName(decl *parser.ImportDeclaration, local string) (string, bool) {
	if decl.Default != nil && decl.Default.Value == local {
		return "default", true
	}
	for _, spec := range decl.Specifiers {
		if spec.Local.Value == local {
			if spec.Imported != nil {
				return spec.Imported.Value, true
			}
			return spec.Local.Value, true
		}
	}
	return "", false
}

// importBindingOf returns the import declaration binding name at scope,
// or nil when name is bound some other way.
func importBindingOf(name string, at *scopes.Scope) *parser.ImportDeclaration {
	binding, ok := at.Resolve(name)
	if !ok || binding.Kind != scopes.ImportBinding {
		return nil
	}
	decl, _ := binding.Node.(*parser.ImportDeclaration)
	return decl
}

// resolveExport chases an exported name into its defining function,
// following re-export chains. seen guards against re-export cycles.
func (r *Resolver) resolveExport(m *Module, name string, seen map[string]bool) (*FunctionEntity, bool) {
	if m == nil {
		return nil, false
	}
	key := m.Specifier + "|" + name
	if seen[key] {
		return nil, false
	}
	if seen == nil {
		seen = make(map[string]bool)
	}
	seen[key] = true

	rec, ok := m.Exports()[name]
	if !ok {
		return nil, false
	}
	if rec.Source != "" {
		target, ok := r.hooks.lookup(m.Specifier, rec.Source)
		if !ok {
			return nil, false
		}
		return r.resolveExport(target, rec.From, seen)
	}
	if rec.Fn != nil {
		return r.entity(m, exportEntityName(rec), rec.Fn), true
	}
	if rec.Local == "" {
		return nil, false
	}

	// Export of a local name: export { f } or export default f.
	binding, ok := m.Scope().Lookup(rec.Local)
	if !ok {
		return nil, false
	}
	switch binding.Kind {
	case scopes.FunctionBinding:
		if decl, ok := binding.Node.(*parser.FunctionDeclaration); ok {
			return r.entity(m, rec.Local, decl), true
		}
	case scopes.LetBinding, scopes.ConstBinding, scopes.VarBinding:
		if fn := functionValue(declaredValue(binding.Node)); fn != nil {
			return r.entity(m, rec.Local, fn), true
		}
	case scopes.ImportBinding:
		decl, ok := binding.Node.(*parser.ImportDeclaration)
		if !ok {
			return nil, false
		}
		imported, ok := importedName(decl, rec.Local)
		if !ok {
			return nil, false
		}
		target, ok := r.hooks.lookup(m.Specifier, decl.Source.Value)
		if !ok {
			return nil, false
		}
		return r.resolveExport(target, imported, seen)
	}
	return nil, false
}

// exportEntityName prefers the local function name over "default" so
// synthesized temporaries read naturally.
func exportEntityName(rec *exportRecord) string {
	if rec.Local != "" {
		return rec.Local
	}
	return rec.Name
}

func (r *Resolver) entity(m *Module, name string, fn parser.Node) *FunctionEntity {
	return &FunctionEntity{Name: name, Fn: fn, Hints: m.Hints.Declaration(fn), Module: m}
}
