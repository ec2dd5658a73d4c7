package resolver

import (
	"fmt"

	"inlay/pkg/errors"
	"inlay/pkg/lexer"
	"inlay/pkg/parser"
	"inlay/pkg/scopes"
)

// InlinedBody is a self-contained copy of a callee, ready for splicing:
// cloned parameters and a cloned block body whose free variables are
// all either globals or bindings provisioned into the consumer.
type InlinedBody struct {
	Params []*parser.Parameter
	Body   *parser.BlockStatement
}

// Provision prepares entity's body for inlining at a splice point with
// scope at inside consumer. Free variables of the body are resolved
// against the defining module and made available in the consumer:
// visible identical bindings are used as-is, exports and imports of the
// defining module become imports of the consumer, and private literal
// consts are copied. Injected names that would collide at the splice
// point are aliased and the body is rewritten to the alias.
//
// The consumer's program is only mutated once every free variable has a
// workable plan; a SkipError leaves the consumer untouched.
func (r *Resolver) Provision(entity *FunctionEntity, consumer *Module, at *scopes.Scope) (*InlinedBody, error) {
	plans, err := r.plan(entity, consumer, at)
	if err != nil {
		return nil, err
	}

	fn := CloneNode(entity.Fn)
	params, body := splitFunction(fn)
	if body == nil {
		return nil, &errors.SkipError{Callee: entity.Name, Msg: "unsupported function shape"}
	}

	renames := make(map[string]string)
	for _, p := range plans {
		local := r.apply(p, consumer, at)
		if local != p.name {
			renames[p.name] = local
		}
	}
	if len(renames) > 0 {
		scopes.RenameFree(fn, renames)
	}
	return &InlinedBody{Params: params, Body: body}, nil
}

type planKind uint8

const (
	planImport planKind = iota // import target's export into the consumer
	planConst                  // copy a literal const declaration
)

// provisionPlan is one pending consumer mutation for one free variable.
type provisionPlan struct {
	kind     planKind
	name     string            // spelling inside the body
	target   *Module           // planImport: exporting module
	imported string            // planImport: export name, "default" or "*"
	init     parser.Expression // planConst: the literal initializer
	origin   parser.Node       // planConst: home declaration, for reuse
}

// plan walks the body's free variables and decides, without mutating
// anything, how each will be bound in the consumer.
func (r *Resolver) plan(entity *FunctionEntity, consumer *Module, at *scopes.Scope) ([]provisionPlan, error) {
	defScope := entity.DefScope()
	var plans []provisionPlan
	for _, name := range scopes.FreeVars(entity.Fn) {
		bDef, okDef := defScope.Resolve(name)
		bAt, okAt := at.Resolve(name)

		if !okDef {
			// Global from the body's point of view. Fine unless the
			// splice point has a local of the same name.
			if okAt {
				return nil, skip(entity, name, "shadows a global the body relies on")
			}
			continue
		}
		if okAt && bAt == bDef {
			continue // the same binding is visible at the splice point
		}

		p, err := r.planBinding(entity, consumer, name, bDef)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// planBinding decides how one home-bound free variable reaches the
// consumer.
func (r *Resolver) planBinding(entity *FunctionEntity, consumer *Module, name string, bDef *scopes.Binding) (provisionPlan, error) {
	home := entity.Module
	mb, topLevel := home.Scope().Lookup(name)
	if !topLevel || mb != bDef {
		return provisionPlan{}, skip(entity, name, "is a local of an enclosing function")
	}

	if mb.Kind == scopes.ImportBinding {
		decl, ok := mb.Node.(*parser.ImportDeclaration)
		if !ok {
			return provisionPlan{}, skip(entity, name, "has an unresolvable import binding")
		}
		imported := "*"
		if decl.Namespace == nil || decl.Namespace.Value != name {
			imported, ok = importedName(decl, name)
			if !ok {
				return provisionPlan{}, skip(entity, name, "has an unresolvable import binding")
			}
		}
		target, ok := r.hooks.lookup(home.Specifier, decl.Source.Value)
		if !ok {
			return provisionPlan{}, skip(entity, name, fmt.Sprintf("is imported from unresolvable %q", decl.Source.Value))
		}
		return provisionPlan{kind: planImport, name: name, target: target, imported: imported}, nil
	}

	if home != consumer {
		if exported, ok := home.exportOfLocal(name); ok {
			return provisionPlan{kind: planImport, name: name, target: home, imported: exported}, nil
		}
	}
	if init, ok := literalConstValue(mb.Node); ok {
		return provisionPlan{kind: planConst, name: name, init: init, origin: mb.Node}, nil
	}
	if home == consumer {
		return provisionPlan{}, skip(entity, name, "is shadowed at the call site")
	}

	switch mb.Kind {
	case scopes.FunctionBinding:
		return provisionPlan{}, skip(entity, name, "is a module-private function")
	case scopes.ConstBinding:
		return provisionPlan{}, skip(entity, name, "is a module-private const with a non-literal value")
	}
	return provisionPlan{}, skip(entity, name, "is mutable module state")
}

// apply performs one planned mutation and returns the local name the
// body should use for it.
func (r *Resolver) apply(p provisionPlan, consumer *Module, at *scopes.Scope) string {
	switch p.kind {
	case planImport:
		return r.injectImport(consumer, at, p.target, p.imported, p.name)
	case planConst:
		return r.injectConst(consumer, at, p.name, p.init, p.origin)
	}
	return p.name
}

// injectImport makes one export of target visible in consumer and
// returns its local name. An existing import of the same name from the
// same module is reused when it is not shadowed at the splice point;
// otherwise a specifier (aliased on collision) is merged into the
// existing declaration, or a new declaration is added after the
// imports.
func (r *Resolver) injectImport(consumer *Module, at *scopes.Scope, target *Module, imported, preferred string) string {
	moduleScope := consumer.Scope()
	for _, stmt := range consumer.Program.Statements {
		decl, ok := stmt.(*parser.ImportDeclaration)
		if !ok {
			continue
		}
		tm, ok := r.hooks.lookup(consumer.Specifier, decl.Source.Value)
		if !ok || tm != target {
			continue
		}
		if local, ok := localFor(decl, imported); ok {
			if b, ok := at.Resolve(local); ok && b.Kind == scopes.ImportBinding && b.Node == parser.Node(decl) {
				return local
			}
			// Shadowed at the splice point: import again under an alias.
		}
		if imported == "*" {
			break // a namespace clause cannot merge into a named import
		}
		alias := r.namer.Alias(at, moduleScope, preferred)
		appendSpecifier(decl, imported, alias)
		moduleScope.Define(alias, scopes.ImportBinding, decl)
		return alias
	}

	alias := r.namer.Alias(at, moduleScope, preferred)
	decl := newImport(r.hooks.request(consumer.Specifier, target), imported, alias)
	insertAfterImports(consumer.Program, decl)
	moduleScope.Define(alias, scopes.ImportBinding, decl)
	return alias
}

// injectConst copies a literal const declaration into consumer's top
// level and returns its local name. A copy made for an earlier call
// site is reused when still visible.
func (r *Resolver) injectConst(consumer *Module, at *scopes.Scope, preferred string, init parser.Expression, origin parser.Node) string {
	moduleScope := consumer.Scope()
	if prior, ok := r.copied[copyKey{consumer, origin}]; ok {
		if b, ok := at.Resolve(prior.name); ok && b.Node == parser.Node(prior.stmt) {
			return prior.name
		}
	}

	alias := r.namer.Alias(at, moduleScope, preferred)
	stmt := &parser.ConstStatement{
		Token: lexer.Token{Type: lexer.CONST, Literal: "const"},
		Name:  synthIdent(alias),
		Value: CloneExpression(init),
	}
	insertAfterImports(consumer.Program, stmt)
	moduleScope.Define(alias, scopes.ConstBinding, stmt)
	r.copied[copyKey{consumer, origin}] = copiedConst{name: alias, stmt: stmt}
	return alias
}

// localFor finds the local name decl already binds for an imported
// name, if any.
func localFor(decl *parser.ImportDeclaration, imported string) (string, bool) {
	switch imported {
	case "default":
		if decl.Default != nil {
			return decl.Default.Value, true
		}
	case "*":
		if decl.Namespace != nil {
			return decl.Namespace.Value, true
		}
	default:
		for _, spec := range decl.Specifiers {
			if spec.Imported != nil && spec.Imported.Value == imported {
				return spec.Local.Value, true
			}
		}
	}
	return "", false
}

func appendSpecifier(decl *parser.ImportDeclaration, imported, local string) {
	if imported == "default" && decl.Default == nil {
		decl.Default = synthIdent(local)
		return
	}
	decl.Specifiers = append(decl.Specifiers, &parser.ImportSpecifier{
		Imported: synthIdent(imported),
		Local:    synthIdent(local),
	})
}

func newImport(request, imported, local string) *parser.ImportDeclaration {
	decl := &parser.ImportDeclaration{
		Token: lexer.Token{Type: lexer.IMPORT, Literal: "import"},
		Source: &parser.StringLiteral{
			Token: lexer.Token{Type: lexer.STRING, Literal: request},
			Value: request,
		},
	}
	switch imported {
	case "default":
		decl.Default = synthIdent(local)
	case "*":
		decl.Namespace = synthIdent(local)
	default:
		decl.Specifiers = []*parser.ImportSpecifier{{Imported: synthIdent(imported), Local: synthIdent(local)}}
	}
	return decl
}

// insertAfterImports splices stmt into the program right after the last
// import declaration, or at the top when there are none.
func insertAfterImports(program *parser.Program, stmt parser.Statement) {
	at := 0
	for i, s := range program.Statements {
		if _, ok := s.(*parser.ImportDeclaration); ok {
			at = i + 1
		}
	}
	rest := append([]parser.Statement(nil), program.Statements[at:]...)
	program.Statements = append(program.Statements[:at], stmt)
	program.Statements = append(program.Statements, rest...)
}

// literalConstValue returns the initializer of a const declaration when
// copying it into another module cannot change behavior: primitive
// literals only, since anything that allocates would get a fresh
// identity in the consumer.
func literalConstValue(node parser.Node) (parser.Expression, bool) {
	decl, ok := node.(*parser.ConstStatement)
	if !ok {
		return nil, false
	}
	if isPrimitiveLiteral(decl.Value) {
		return decl.Value, true
	}
	return nil, false
}

func isPrimitiveLiteral(expr parser.Expression) bool {
	switch e := expr.(type) {
	case *parser.NumberLiteral, *parser.StringLiteral, *parser.BooleanLiteral,
		*parser.NullLiteral, *parser.UndefinedLiteral:
		return true
	case *parser.TemplateLiteral:
		return len(e.Expressions) == 0
	case *parser.PrefixExpression:
		if e.Operator == "-" || e.Operator == "+" {
			_, ok := e.Right.(*parser.NumberLiteral)
			return ok
		}
	}
	return false
}

// splitFunction takes a cloned function node apart into parameters and
// a block body, normalizing an arrow's expression body into a block
// with a single return.
func splitFunction(fn parser.Node) ([]*parser.Parameter, *parser.BlockStatement) {
	switch f := fn.(type) {
	case *parser.FunctionDeclaration:
		return f.Parameters, f.Body
	case *parser.FunctionLiteral:
		return f.Parameters, f.Body
	case *parser.ArrowFunctionLiteral:
		if block, ok := f.Body.(*parser.BlockStatement); ok {
			return f.Parameters, block
		}
		if expr, ok := f.Body.(parser.Expression); ok {
			ret := &parser.ReturnStatement{
				Token:       lexer.Token{Type: lexer.RETURN, Literal: "return"},
				ReturnValue: expr,
			}
			return f.Parameters, &parser.BlockStatement{
				Token:      lexer.Token{Type: lexer.LBRACE, Literal: "{"},
				Statements: []parser.Statement{ret},
			}
		}
	}
	return nil, nil
}

func synthIdent(name string) *parser.Identifier {
	return &parser.Identifier{Token: lexer.Token{Type: lexer.IDENT, Literal: name}, Value: name}
}

func skip(entity *FunctionEntity, name, reason string) *errors.SkipError {
	return &errors.SkipError{Callee: entity.Name, Msg: fmt.Sprintf("free variable '%s' %s", name, reason)}
}
