package resolver

import (
	"strings"
	"testing"

	"inlay/pkg/lexer"
	"inlay/pkg/parser"
	"inlay/pkg/source"
)

func parseProgram(t *testing.T, input string) *parser.Program {
	t.Helper()
	src := source.NewMemorySource("test.js", input)
	l := lexer.NewLexerFromSource(src)
	p := parser.NewParser(l)
	program, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}
	return program
}

// cloneFixture exercises every node type the language has.
const cloneFixture = `
import def, * as ns from "./a";
import { b, c as d } from "./e";

export function f(x = 1, ...rest) {
	let a = [1, "two", true, null, undefined, ` + "`t${x}q`" + `];
	const re = /ab+c/g;
	const o = { k: 1, [x]: 2, b };
	var v = x ? a : o;
	use(...rest);
	for (let i = 0; i < 3; i = i + 1) {
		v = use(v, i);
	}
	for (const q of a) {
		if (q) {
			continue;
		}
	}
	outer: while (x < 10) {
		x = x + 1;
		break outer;
	}
	do {
		x--;
	} while (x > 0);
	switch (x) {
		case 1:
			return 1;
		default:
			break;
	}
	try {
		throw new Error("boom");
	} catch (err) {
		ns.log(err, this);
	} finally {
		x++;
	}
	let g = (y) => y + 1;
	let h = function named(z) {
		return z;
	};
	let s = (1, 2, x);
	return g(o?.k) ?? h(a?.[0]) ?? def?.(v);
}

export default f;
export { f as g };
`

func TestCloneProducesEqualText(t *testing.T) {
	program := parseProgram(t, cloneFixture)
	clone := CloneProgram(program)
	if got, want := clone.String(), program.String(); got != want {
		t.Errorf("clone text differs from original\n got: %s\nwant: %s", got, want)
	}
}

func TestCloneSharesNoNodes(t *testing.T) {
	program := parseProgram(t, cloneFixture)
	original := make(map[parser.Node]bool)
	parser.Inspect(program, func(n parser.Node) bool {
		original[n] = true
		return true
	})

	clone := CloneProgram(program)
	parser.Inspect(clone, func(n parser.Node) bool {
		if original[n] {
			t.Errorf("clone shares node %T (%s) with original", n, n.String())
			return false
		}
		return true
	})
}

func TestCloneIsDeep(t *testing.T) {
	program := parseProgram(t, "function f(id) { return cache.get(id); }")
	clone := CloneProgram(program)

	// Rewriting an identifier in the clone must not reach the original.
	parser.Inspect(clone, func(n parser.Node) bool {
		if id, ok := n.(*parser.Identifier); ok && id.Value == "cache" {
			id.Value = "renamed"
			id.Token.Literal = "renamed"
		}
		return true
	})

	if !strings.Contains(program.String(), "cache.get") {
		t.Errorf("mutating the clone changed the original: %s", program.String())
	}
	if !strings.Contains(clone.String(), "renamed.get") {
		t.Errorf("clone did not take the mutation: %s", clone.String())
	}
}

func TestCloneUnaliasesShorthandProperties(t *testing.T) {
	program := parseProgram(t, "let o = { cache };")
	clone := CloneProgram(program)

	var prop *parser.ObjectProperty
	parser.Inspect(clone, func(n parser.Node) bool {
		if obj, ok := n.(*parser.ObjectLiteral); ok {
			prop = obj.Properties[0]
		}
		return true
	})
	if prop == nil {
		t.Fatal("no object property in clone")
	}
	key, ok := prop.Key.(*parser.Identifier)
	if !ok {
		t.Fatalf("clone key is %T, want *parser.Identifier", prop.Key)
	}
	value, ok := prop.Value.(*parser.Identifier)
	if !ok {
		t.Fatalf("clone value is %T, want *parser.Identifier", prop.Value)
	}
	if key == value {
		t.Error("clone kept the parser's key/value aliasing for shorthand properties")
	}
	if key.Value != "cache" || value.Value != "cache" {
		t.Errorf("clone changed shorthand names: key=%q value=%q", key.Value, value.Value)
	}
	if !prop.Shorthand {
		t.Error("clone dropped the shorthand flag")
	}
}

func TestCloneNilInputs(t *testing.T) {
	if got := CloneNode(nil); got != nil {
		t.Errorf("CloneNode(nil) = %v, want nil", got)
	}
	if got := CloneStatement(nil); got != nil {
		t.Errorf("CloneStatement(nil) = %v, want nil", got)
	}
	if got := CloneExpression(nil); got != nil {
		t.Errorf("CloneExpression(nil) = %v, want nil", got)
	}
	if got := CloneBlock(nil); got != nil {
		t.Errorf("CloneBlock(nil) = %v, want nil", got)
	}

	// Optional children stay nil rather than becoming empty nodes.
	ret := CloneStatement(&parser.ReturnStatement{
		Token: lexer.Token{Type: lexer.RETURN, Literal: "return"},
	}).(*parser.ReturnStatement)
	if ret.ReturnValue != nil {
		t.Errorf("cloned bare return grew a value: %v", ret.ReturnValue)
	}
}

func TestCloneKeepsTokenPositions(t *testing.T) {
	program := parseProgram(t, "let answer = 42;")
	clone := CloneProgram(program)

	orig := program.Statements[0].(*parser.LetStatement)
	dup := clone.Statements[0].(*parser.LetStatement)
	if dup.Token.StartPos != orig.Token.StartPos || dup.Token.Line != orig.Token.Line {
		t.Errorf("clone lost token position: got %+v, want %+v", dup.Token, orig.Token)
	}
	if dup.Name.Token.Literal != "answer" {
		t.Errorf("clone name token = %q, want %q", dup.Name.Token.Literal, "answer")
	}
}
