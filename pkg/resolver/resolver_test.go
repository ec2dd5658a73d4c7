package resolver

import (
	"fmt"
	"strings"
	"testing"

	"inlay/pkg/errors"
	"inlay/pkg/hints"
	"inlay/pkg/lexer"
	"inlay/pkg/parser"
	"inlay/pkg/scopes"
	"inlay/pkg/source"
)

// buildGraph parses a set of modules keyed by specifier and wires a
// resolver whose lookup treats requests as absolute specifiers.
func buildGraph(t *testing.T, sources map[string]string) (*Resolver, map[string]*Module) {
	t.Helper()
	mods := make(map[string]*Module)
	for spec, src := range sources {
		sf := source.NewMemorySource(spec, src)
		l := lexer.NewLexerFromSource(sf)
		p := parser.NewParser(l)
		program, errs := p.ParseProgram()
		if len(errs) != 0 {
			t.Fatalf("parser errors in %s: %v", spec, errs)
		}
		mods[spec] = NewModule(spec, program, hints.Scan(program, l.Comments(), sf))
	}
	r := New(Hooks{
		Lookup: func(from, request string) (*Module, bool) {
			m, ok := mods[request]
			return m, ok
		},
	})
	return r, mods
}

// findCall returns the first call whose callee prints as text.
func findCall(t *testing.T, program *parser.Program, text string) *parser.CallExpression {
	t.Helper()
	var call *parser.CallExpression
	parser.Inspect(program, func(n parser.Node) bool {
		if call != nil {
			return false
		}
		if c, ok := n.(*parser.CallExpression); ok && c.Function != nil && c.Function.String() == text {
			call = c
		}
		return true
	})
	if call == nil {
		t.Fatalf("no call to %q in program:\n%s", text, program.String())
	}
	return call
}

func mustResolve(t *testing.T, r *Resolver, m *Module, at *scopes.Scope, callee string) *FunctionEntity {
	t.Helper()
	call := findCall(t, m.Program, callee)
	entity, ok := r.Resolve(call.Function, m, at)
	if !ok {
		t.Fatalf("Resolve(%q) in %s failed", callee, m.Specifier)
	}
	return entity
}

func TestResolveLocalDeclarations(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		fnType string
		want   hints.Hint
	}{
		{
			"function declaration",
			"// @inline\nfunction f() { return 1; }\nf();",
			"*parser.FunctionDeclaration",
			hints.Inline,
		},
		{
			"const arrow",
			"// @inline\nconst f = () => 1;\nf();",
			"*parser.ArrowFunctionLiteral",
			hints.Inline,
		},
		{
			"let function literal",
			"let f = function () { return 1; };\nf();",
			"*parser.FunctionLiteral",
			0,
		},
		{
			"exported declaration",
			"// @inline @pure\nexport function f() { return 1; }\nf();",
			"*parser.FunctionDeclaration",
			hints.Inline | hints.Pure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mods := buildGraph(t, map[string]string{"main": tt.src})
			main := mods["main"]
			entity := mustResolve(t, r, main, main.Scope(), "f")
			if got := fmt.Sprintf("%T", entity.Fn); got != tt.fnType {
				t.Errorf("entity.Fn type = %s, want %s", got, tt.fnType)
			}
			if entity.Module != main {
				t.Errorf("entity.Module = %s, want main", entity.Module.Specifier)
			}
			if entity.Name != "f" {
				t.Errorf("entity.Name = %q, want %q", entity.Name, "f")
			}
			if entity.Hints != tt.want {
				t.Errorf("entity.Hints = %v, want %v", entity.Hints, tt.want)
			}
		})
	}
}

func TestResolveImportedFunction(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./util": "// @inline @pure\nexport function inc(n) { return n + 1; }",
		"./main": `import { inc } from "./util";
let x = inc(1);`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "inc")
	if entity.Module != mods["./util"] {
		t.Errorf("entity.Module = %s, want ./util", entity.Module.Specifier)
	}
	if entity.Name != "inc" {
		t.Errorf("entity.Name = %q, want %q", entity.Name, "inc")
	}
	if entity.Hints != hints.Inline|hints.Pure {
		t.Errorf("entity.Hints = %v, want inline|pure", entity.Hints)
	}
}

func TestResolveAliasedImport(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./util": "// @inline\nexport function inc(n) { return n + 1; }",
		"./main": `import { inc as bump } from "./util";
bump(1);`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "bump")
	if entity.Module != mods["./util"] || entity.Name != "inc" {
		t.Errorf("got %s from %s, want inc from ./util", entity.Name, entity.Module.Specifier)
	}
}

func TestResolveDefaultImport(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./util": "// @inline\nexport default function inc(n) { return n + 1; }",
		"./main": `import inc from "./util";
inc(1);`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "inc")
	if entity.Module != mods["./util"] {
		t.Errorf("entity.Module = %s, want ./util", entity.Module.Specifier)
	}
	if entity.Name != "inc" {
		t.Errorf("entity.Name = %q, want %q", entity.Name, "inc")
	}
	if !entity.Hints.Has(hints.Inline) {
		t.Error("default export lost its inline hint")
	}
}

func TestResolveNamespaceMember(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./util": "// @inline\nexport function inc(n) { return n + 1; }",
		"./main": `import * as util from "./util";
let x = util.inc(1);`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "util.inc")
	if entity.Module != mods["./util"] || entity.Name != "inc" {
		t.Errorf("got %s from %s, want inc from ./util", entity.Name, entity.Module.Specifier)
	}
}

func TestResolveReExportChain(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./a": "// @inline\nexport function f() { return 7; }",
		"./b": `export { f as g } from "./a";`,
		"./main": `import { g } from "./b";
g();`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "g")
	if entity.Module != mods["./a"] {
		t.Errorf("entity.Module = %s, want ./a", entity.Module.Specifier)
	}
	if !entity.Hints.Has(hints.Inline) {
		t.Error("hint lost while chasing the re-export")
	}
}

func TestResolveExportOfImport(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./a": "// @inline\nexport function f() { return 7; }",
		"./b": `import { f } from "./a";
export { f };`,
		"./main": `import { f } from "./b";
f();`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "f")
	if entity.Module != mods["./a"] {
		t.Errorf("entity.Module = %s, want ./a", entity.Module.Specifier)
	}
}

func TestResolveReExportCycle(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./a": `export { x } from "./b";`,
		"./b": `export { x } from "./a";`,
		"./main": `import { x } from "./a";
x();`,
	})
	main := mods["./main"]
	call := findCall(t, main.Program, "x")
	if _, ok := r.Resolve(call.Function, main, main.Scope()); ok {
		t.Error("resolved through a re-export cycle")
	}
}

func TestResolveRejectsNonStaticCallees(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		callee string
	}{
		{"non-function binding", "let x = 5;\nx();", "x"},
		{"unbound name", "foo();", "foo"},
		{"computed callee", "let arr = [];\narr[0]();", "arr[0]"},
		{"member of plain object", "let obj = {};\nobj.m();", "obj.m"},
		{"import from unknown module", `import { f } from "./missing";
f();`, "f"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mods := buildGraph(t, map[string]string{"main": tt.src})
			main := mods["main"]
			call := findCall(t, main.Program, tt.callee)
			if _, ok := r.Resolve(call.Function, main, main.Scope()); ok {
				t.Errorf("Resolve(%q) succeeded, want failure", tt.callee)
			}
		})
	}
}

func TestResolveShadowedCallee(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"main": "function f() { return 1; }\nf();",
	})
	main := mods["main"]
	call := findCall(t, main.Program, "f")

	inner := scopes.NewScope(scopes.ScopeFunction, main.Scope())
	inner.Define("f", scopes.LetBinding, nil)
	if _, ok := r.Resolve(call.Function, main, inner); ok {
		t.Error("resolved through a local shadow of the callee")
	}
}

func TestProvisionSelfContainedBody(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./util": "// @inline\nexport function inc(n) { return n + 1; }",
		"./main": `import { inc } from "./util";
let x = inc(1);`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "inc")
	before := len(main.Program.Statements)

	body, err := r.Provision(entity, main, main.Scope())
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if len(body.Params) != 1 || body.Params[0].Name.Value != "n" {
		t.Fatalf("params = %v, want [n]", body.Params)
	}
	if got := body.Body.String(); !strings.Contains(got, "return (n + 1);") {
		t.Errorf("body = %s, want it to return (n + 1)", got)
	}
	if len(main.Program.Statements) != before {
		t.Errorf("provisioning a closed body mutated the consumer")
	}
}

func TestProvisionClonesTheBody(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./util": "// @inline\nexport function inc(n) { return n + 1; }",
		"./main": `import { inc } from "./util";
let x = inc(1);`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "inc")

	first, err := r.Provision(entity, main, main.Scope())
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	second, err := r.Provision(entity, main, main.Scope())
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if first.Body == second.Body {
		t.Fatal("two provisions returned the same body")
	}

	ret := first.Body.Statements[0].(*parser.ReturnStatement)
	ret.ReturnValue = nil
	if got := second.Body.String(); !strings.Contains(got, "n + 1") {
		t.Errorf("mutating one provision affected another: %s", got)
	}
	if got := entity.Fn.(*parser.FunctionDeclaration).Body.String(); !strings.Contains(got, "n + 1") {
		t.Errorf("mutating a provision affected the defining module: %s", got)
	}
}

func TestProvisionRepointsImports(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./cache": "export const cache = new Map();",
		"./store": "export const store = new Store();",
		"./util": `import { cache } from "./cache";
import { store } from "./store";

// @inline @pure
export function getUser(id) {
	return cache.get(id) ?? store.find(id);
}`,
		"./main": `import { getUser } from "./util";

let user = getUser(7);`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "getUser")

	body, err := r.Provision(entity, main, main.Scope())
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if got := body.Body.String(); !strings.Contains(got, "cache.get(id)") || !strings.Contains(got, "store.find(id)") {
		t.Errorf("body lost its references: %s", got)
	}

	stmts := main.Program.Statements
	if len(stmts) != 4 {
		t.Fatalf("consumer has %d statements, want 4:\n%s", len(stmts), main.Program.String())
	}
	if got := stmts[1].String(); got != `import { cache } from "./cache";` {
		t.Errorf("statement 1 = %s", got)
	}
	if got := stmts[2].String(); got != `import { store } from "./store";` {
		t.Errorf("statement 2 = %s", got)
	}

	// The injected imports are now real module bindings.
	if b, ok := main.Scope().Lookup("cache"); !ok || b.Kind != scopes.ImportBinding {
		t.Error("cache was not bound in the consumer's module scope")
	}
}

func TestProvisionAliasesCollidingImport(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./cache": "export const cache = new Map();",
		"./store": "export const store = new Store();",
		"./util": `import { cache } from "./cache";
import { store } from "./store";

// @inline @pure
export function getUser(id) {
	return cache.get(id) ?? store.find(id);
}`,
		"./main": `import { getUser } from "./util";

function lookup(id) {
	let cache = new Map();
	return getUser(id);
}`,
	})
	main := mods["./main"]

	fnScope := scopes.NewScope(scopes.ScopeFunction, main.Scope())
	fnScope.Define("id", scopes.ParamBinding, nil)
	block := scopes.NewScope(scopes.ScopeBlock, fnScope)
	block.Define("cache", scopes.LetBinding, nil)

	entity := mustResolve(t, r, main, block, "getUser")
	body, err := r.Provision(entity, main, block)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	if got := body.Body.String(); !strings.Contains(got, "_cache1.get(id)") {
		t.Errorf("body was not rewritten to the alias: %s", got)
	}
	if got := body.Body.String(); !strings.Contains(got, "store.find(id)") {
		t.Errorf("unshadowed import should keep its name: %s", got)
	}

	var aliased string
	for _, stmt := range main.Program.Statements {
		if s := stmt.String(); strings.Contains(s, "_cache1") {
			aliased = s
		}
	}
	if aliased != `import { cache as _cache1 } from "./cache";` {
		t.Errorf("aliased import = %s", aliased)
	}
}

func TestProvisionMergesIntoExistingImport(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./util": `export const RATE = 1.5;

// @inline
export function scale(n) {
	return n * RATE;
}`,
		"./main": `import { scale } from "./util";

let x = scale(4);`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "scale")
	before := len(main.Program.Statements)

	body, err := r.Provision(entity, main, main.Scope())
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if got := body.Body.String(); !strings.Contains(got, "RATE") {
		t.Errorf("body lost RATE: %s", got)
	}
	if len(main.Program.Statements) != before {
		t.Errorf("merge should not add statements, got %d want %d", len(main.Program.Statements), before)
	}
	if got := main.Program.Statements[0].String(); got != `import { scale, RATE } from "./util";` {
		t.Errorf("statement 0 = %s", got)
	}
}

func TestProvisionCopiesPrivateLiteralConst(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./util": `const LIMIT = 100;

// @inline
export function clamp(n) {
	return n > LIMIT ? LIMIT : n;
}`,
		"./main": `import { clamp } from "./util";

let a = clamp(150);
let b = clamp(7);`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "clamp")

	if _, err := r.Provision(entity, main, main.Scope()); err != nil {
		t.Fatalf("first Provision: %v", err)
	}
	if _, err := r.Provision(entity, main, main.Scope()); err != nil {
		t.Fatalf("second Provision: %v", err)
	}

	var consts []string
	for _, stmt := range main.Program.Statements {
		if c, ok := stmt.(*parser.ConstStatement); ok {
			consts = append(consts, c.String())
		}
	}
	if len(consts) != 1 || consts[0] != "const LIMIT = 100;" {
		t.Errorf("copied consts = %v, want exactly one LIMIT copy", consts)
	}

	// The copy lands right after the imports.
	if _, ok := main.Program.Statements[1].(*parser.ConstStatement); !ok {
		t.Errorf("const not placed after imports:\n%s", main.Program.String())
	}
}

func TestProvisionSkipsPrivateHelper(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./util": `function helper(x) {
	return x * 2;
}

// @inline
export function double(n) {
	return helper(n);
}`,
		"./main": `import { double } from "./util";
let x = double(3);`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "double")
	before := len(main.Program.Statements)

	_, err := r.Provision(entity, main, main.Scope())
	if err == nil {
		t.Fatal("Provision succeeded, want skip")
	}
	se, ok := err.(*errors.SkipError)
	if !ok {
		t.Fatalf("error is %T, want *errors.SkipError", err)
	}
	if se.Fatal() {
		t.Error("a skip must not be fatal")
	}
	if !strings.Contains(se.Error(), "helper") {
		t.Errorf("skip does not name the free variable: %v", se)
	}
	if len(main.Program.Statements) != before {
		t.Error("failed provision mutated the consumer")
	}
}

func TestProvisionSkipsMutableState(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./util": `let hits = 0;

// @inline
export function bump() {
	hits = hits + 1;
	return hits;
}`,
		"./main": `import { bump } from "./util";
bump();`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "bump")

	_, err := r.Provision(entity, main, main.Scope())
	if err == nil {
		t.Fatal("Provision succeeded, want skip")
	}
	if !strings.Contains(err.Error(), "hits") {
		t.Errorf("skip does not name the free variable: %v", err)
	}
}

func TestProvisionSameModuleVisibleBinding(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"main": `const STEP = 5;

// @inline
function walk(n) {
	return n + STEP;
}

let out = walk(1);`,
	})
	main := mods["main"]
	entity := mustResolve(t, r, main, main.Scope(), "walk")
	before := main.Program.String()

	body, err := r.Provision(entity, main, main.Scope())
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if got := body.Body.String(); !strings.Contains(got, "n + STEP") {
		t.Errorf("body = %s", got)
	}
	if main.Program.String() != before {
		t.Error("a visible binding needs no provisioning, but the consumer changed")
	}
}

func TestProvisionSameModuleShadowedConst(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"main": `const STEP = 5;

// @inline
function walk(n) {
	return n + STEP;
}

function run() {
	let STEP = 9;
	return walk(2);
}`,
	})
	main := mods["main"]

	fnScope := scopes.NewScope(scopes.ScopeFunction, main.Scope())
	block := scopes.NewScope(scopes.ScopeBlock, fnScope)
	block.Define("STEP", scopes.LetBinding, nil)

	entity := mustResolve(t, r, main, block, "walk")
	body, err := r.Provision(entity, main, block)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if got := body.Body.String(); !strings.Contains(got, "_STEP1") {
		t.Errorf("body was not rewritten to the copied const: %s", got)
	}

	found := false
	for _, stmt := range main.Program.Statements {
		if c, ok := stmt.(*parser.ConstStatement); ok && c.String() == "const _STEP1 = 5;" {
			found = true
		}
	}
	if !found {
		t.Errorf("no aliased const copy in consumer:\n%s", main.Program.String())
	}
}

func TestProvisionArrowExpressionBody(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./util": "// @inline\nexport const inc = (n) => n + 1;",
		"./main": `import { inc } from "./util";
let x = inc(1);`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "inc")

	body, err := r.Provision(entity, main, main.Scope())
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if len(body.Params) != 1 || body.Params[0].Name.Value != "n" {
		t.Fatalf("params = %v, want [n]", body.Params)
	}
	if len(body.Body.Statements) != 1 {
		t.Fatalf("body has %d statements, want 1", len(body.Body.Statements))
	}
	ret, ok := body.Body.Statements[0].(*parser.ReturnStatement)
	if !ok {
		t.Fatalf("body statement is %T, want return", body.Body.Statements[0])
	}
	if got := ret.String(); got != "return (n + 1);" {
		t.Errorf("return = %q", got)
	}
}

func TestProvisionRepointsDefaultImport(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./fmt": `export default function fmt(x) { return "" + x; }`,
		"./util": `import fmt from "./fmt";

// @inline
export function show(x) {
	return fmt(x);
}`,
		"./main": `import { show } from "./util";
show(1);`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "show")

	if _, err := r.Provision(entity, main, main.Scope()); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if got := main.Program.Statements[1].String(); got != `import fmt from "./fmt";` {
		t.Errorf("statement 1 = %s", got)
	}
}

func TestProvisionRepointsNamespaceImport(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./m": "export function helper(x) { return x; }",
		"./util": `import * as m from "./m";

// @inline
export function wrap(x) {
	return m.helper(x);
}`,
		"./main": `import { wrap } from "./util";
wrap(1);`,
	})
	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "wrap")

	if _, err := r.Provision(entity, main, main.Scope()); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if got := main.Program.Statements[1].String(); got != `import * as m from "./m";` {
		t.Errorf("statement 1 = %s", got)
	}
}

func TestProvisionUsesRequestHook(t *testing.T) {
	sources := map[string]string{
		"./cache": "export const cache = new Map();",
		"./util": `import { cache } from "./cache";

// @inline
export function find(id) {
	return cache.get(id);
}`,
		"./main": `import { find } from "./util";
find(1);`,
	}
	mods := make(map[string]*Module)
	for spec, src := range sources {
		sf := source.NewMemorySource(spec, src)
		l := lexer.NewLexerFromSource(sf)
		p := parser.NewParser(l)
		program, errs := p.ParseProgram()
		if len(errs) != 0 {
			t.Fatalf("parser errors in %s: %v", spec, errs)
		}
		mods[spec] = NewModule(spec, program, hints.Scan(program, l.Comments(), sf))
	}
	r := New(Hooks{
		Lookup: func(from, request string) (*Module, bool) {
			m, ok := mods[strings.TrimPrefix(request, "lib:")]
			return m, ok
		},
		Request: func(from string, target *Module) string {
			return "lib:" + target.Specifier
		},
	})

	main := mods["./main"]
	entity := mustResolve(t, r, main, main.Scope(), "find")
	if _, err := r.Provision(entity, main, main.Scope()); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if got := main.Program.Statements[1].String(); got != `import { cache } from "lib:./cache";` {
		t.Errorf("statement 1 = %s", got)
	}
}

func TestInlineExports(t *testing.T) {
	r, mods := buildGraph(t, map[string]string{
		"./defs": `// @inline
export function fast(n) { return n + 1; }

export function slow(n) { return n + 2; }

// @inline
const quick = (n) => n * 2;
export { quick };

export const limit = 100;`,
		"./hub": `export { fast as first } from "./defs";
export { slow } from "./defs";

// @inline
export default function pick(a, b) { return a < b ? a : b; }`,
	})

	got := r.InlineExports(mods["./defs"])
	want := []string{"fast", "quick"}
	if len(got) != len(want) {
		t.Fatalf("InlineExports(./defs) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("InlineExports(./defs)[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// The hub re-exports one inline function under a new name and
	// carries an inline default of its own.
	got = r.InlineExports(mods["./hub"])
	want = []string{"default", "first"}
	if len(got) != len(want) {
		t.Fatalf("InlineExports(./hub) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("InlineExports(./hub)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
