// Package scopes tracks lexical bindings for the transform passes. It
// answers which names are visible at a splice point, resolves
// identifiers to their declaration sites, and manufactures
// collision-free temporary names for spliced code.
package scopes

import (
	"sort"

	"inlay/pkg/lexer"
	"inlay/pkg/parser"
)

// ScopeKind says which construct introduced a scope.
type ScopeKind uint8

const (
	ScopeModule ScopeKind = iota
	ScopeFunction
	ScopeBlock
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// BindingKind says how a name came to be bound.
type BindingKind uint8

const (
	LetBinding BindingKind = iota
	ConstBinding
	VarBinding
	ParamBinding
	FunctionBinding
	CatchBinding
	ImportBinding
	SynthBinding
)

func (k BindingKind) String() string {
	switch k {
	case LetBinding:
		return "let"
	case ConstBinding:
		return "const"
	case VarBinding:
		return "var"
	case ParamBinding:
		return "param"
	case FunctionBinding:
		return "function"
	case CatchBinding:
		return "catch"
	case ImportBinding:
		return "import"
	case SynthBinding:
		return "synth"
	default:
		return "invalid"
	}
}

// Binding is one name visible in a scope.
type Binding struct {
	Name string
	Kind BindingKind
	Node parser.Node // declaring node; nil for synthesized names
}

// Scope is one link of a lexical scope chain.
type Scope struct {
	kind     ScopeKind
	outer    *Scope
	bindings map[string]*Binding
}

// NewScope creates a scope enclosed in outer. The module scope passes
// nil for outer.
func NewScope(kind ScopeKind, outer *Scope) *Scope {
	return &Scope{
		kind:     kind,
		outer:    outer,
		bindings: make(map[string]*Binding),
	}
}

func (s *Scope) Kind() ScopeKind { return s.kind }

func (s *Scope) Outer() *Scope { return s.outer }

// Define records a binding in this scope. Redefining a name replaces
// the earlier binding.
func (s *Scope) Define(name string, kind BindingKind, node parser.Node) *Binding {
	b := &Binding{Name: name, Kind: kind, Node: node}
	s.bindings[name] = b
	return b
}

// Lookup finds a name in this scope alone, ignoring enclosing scopes.
func (s *Scope) Lookup(name string) (*Binding, bool) {
	b, ok := s.bindings[name]
	return b, ok
}

// Resolve walks the scope chain outward until it finds name. The
// second result is false when the name is free.
func (s *Scope) Resolve(name string) (*Binding, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if b, ok := sc.bindings[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// ResolveIn is Resolve that also reports which scope binds the name.
func (s *Scope) ResolveIn(name string) (*Binding, *Scope, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if b, ok := sc.bindings[name]; ok {
			return b, sc, true
		}
	}
	return nil, nil, false
}

// Has reports whether name is visible at this scope.
func (s *Scope) Has(name string) bool {
	_, ok := s.Resolve(name)
	return ok
}

// FunctionScope returns the nearest enclosing function or module
// scope, where var declarations land.
func (s *Scope) FunctionScope() *Scope {
	sc := s
	for sc.kind == ScopeBlock && sc.outer != nil {
		sc = sc.outer
	}
	return sc
}

// Len returns the number of bindings declared directly in this scope.
func (s *Scope) Len() int { return len(s.bindings) }

// Names returns the names declared directly in this scope, sorted.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.bindings))
	for name := range s.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeclareBlock binds the declarations stmts makes directly in their
// block: let, const, and function declarations, including ones behind
// export, plus import bindings at the top level.
func DeclareBlock(scope *Scope, stmts []parser.Statement) {
	for _, stmt := range stmts {
		declareStatement(scope, stmt)
	}
}

func declareStatement(scope *Scope, stmt parser.Statement) {
	switch s := stmt.(type) {
	case *parser.LetStatement:
		scope.Define(s.Name.Value, LetBinding, s)
	case *parser.ConstStatement:
		scope.Define(s.Name.Value, ConstBinding, s)
	case *parser.FunctionDeclaration:
		if s.Name != nil {
			scope.Define(s.Name.Value, FunctionBinding, s)
		}
	case *parser.ImportDeclaration:
		if s.Default != nil {
			scope.Define(s.Default.Value, ImportBinding, s)
		}
		if s.Namespace != nil {
			scope.Define(s.Namespace.Value, ImportBinding, s)
		}
		for _, spec := range s.Specifiers {
			scope.Define(spec.Local.Value, ImportBinding, s)
		}
	case *parser.ExportNamedDeclaration:
		if s.Declaration != nil {
			declareStatement(scope, s.Declaration)
		}
	}
}

// DeclareVars binds var declarations from stmts into scope, descending
// through nested blocks but never into nested functions. scope should
// be the function or module scope the vars hoist to.
func DeclareVars(scope *Scope, stmts []parser.Statement) {
	for _, stmt := range stmts {
		declareVars(scope, stmt)
	}
}

func declareVars(scope *Scope, stmt parser.Statement) {
	switch s := stmt.(type) {
	case *parser.VarStatement:
		scope.Define(s.Name.Value, VarBinding, s)
	case *parser.BlockStatement:
		DeclareVars(scope, s.Statements)
	case *parser.IfStatement:
		declareVars(scope, s.Consequence)
		if s.Alternative != nil {
			declareVars(scope, s.Alternative)
		}
	case *parser.WhileStatement:
		declareVars(scope, s.Body)
	case *parser.DoWhileStatement:
		declareVars(scope, s.Body)
	case *parser.ForStatement:
		if s.Init != nil {
			declareVars(scope, s.Init)
		}
		declareVars(scope, s.Body)
	case *parser.ForOfStatement:
		if s.Declaration == lexer.VAR {
			scope.Define(s.Variable.Value, VarBinding, s)
		}
		declareVars(scope, s.Body)
	case *parser.LabeledStatement:
		declareVars(scope, s.Body)
	case *parser.TryStatement:
		declareVars(scope, s.Block)
		if s.CatchBlock != nil {
			declareVars(scope, s.CatchBlock)
		}
		if s.FinallyBlock != nil {
			declareVars(scope, s.FinallyBlock)
		}
	case *parser.SwitchStatement:
		for _, c := range s.Cases {
			for _, cs := range c.Body {
				declareVars(scope, cs)
			}
		}
	case *parser.ExportNamedDeclaration:
		if s.Declaration != nil {
			declareVars(scope, s.Declaration)
		}
	}
}

// DeclareParams binds function parameters, including rest parameters.
func DeclareParams(scope *Scope, params []*parser.Parameter) {
	for _, p := range params {
		if p.Name != nil {
			scope.Define(p.Name.Value, ParamBinding, p)
		}
	}
}

// BuildModuleScope collects everything a module's top level binds:
// imports, declarations, exported declarations, and hoisted vars.
func BuildModuleScope(program *parser.Program) *Scope {
	scope := NewScope(ScopeModule, nil)
	DeclareBlock(scope, program.Statements)
	DeclareVars(scope, program.Statements)
	return scope
}

// IsReserved reports whether name cannot be introduced as an
// identifier in emitted code. Keywords of the input language count, as
// do future reserved words and the two names with special call-time
// meaning.
func IsReserved(name string) bool {
	if lexer.LookupIdent(name) != lexer.IDENT {
		return true
	}
	return futureReserved[name]
}

var futureReserved = map[string]bool{
	"class":      true,
	"extends":    true,
	"super":      true,
	"enum":       true,
	"yield":      true,
	"await":      true,
	"static":     true,
	"implements": true,
	"interface":  true,
	"package":    true,
	"private":    true,
	"protected":  true,
	"public":     true,
	"arguments":  true,
	"eval":       true,
}
