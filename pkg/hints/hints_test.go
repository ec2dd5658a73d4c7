package hints

import (
	"fmt"
	"testing"

	"inlay/pkg/lexer"
	"inlay/pkg/parser"
	"inlay/pkg/source"
)

func scanSource(t *testing.T, input string) (*parser.Program, *Table) {
	t.Helper()
	src := source.NewMemorySource("test.js", input)
	l := lexer.NewLexerFromSource(src)
	p := parser.NewParser(l)
	program, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}
	return program, Scan(program, l.Comments(), src)
}

func soleDecl(t *testing.T, table *Table, input string) (parser.Node, Hint) {
	t.Helper()
	if table.DeclCount() != 1 {
		t.Fatalf("input %q: DeclCount = %d, want 1", input, table.DeclCount())
	}
	for node, h := range table.decls {
		return node, h
	}
	return nil, 0
}

func allCalls(program *parser.Program) []*parser.CallExpression {
	var calls []*parser.CallExpression
	parser.Inspect(program, func(n parser.Node) bool {
		if c, ok := n.(*parser.CallExpression); ok {
			calls = append(calls, c)
		}
		return true
	})
	return calls
}

func TestDeclarationHints(t *testing.T) {
	tests := []struct {
		input    string
		want     Hint
		nodeType string
	}{
		{
			"// @inline\nfunction add(a, b) { return a + b; }",
			Inline,
			"*parser.FunctionDeclaration",
		},
		{
			"/* @inline */ function add(a, b) { return a + b; }",
			Inline,
			"*parser.FunctionDeclaration",
		},
		{
			"/* @inline */ export function mul(a, b) { return a * b; }",
			Inline,
			"*parser.FunctionDeclaration",
		},
		{
			"// @inline\nexport const twice = (x) => x * 2;",
			Inline,
			"*parser.ArrowFunctionLiteral",
		},
		{
			"/* @pure */ const id = function(x) { return x; };",
			Pure,
			"*parser.FunctionLiteral",
		},
		{
			"// @pure\nlet pick = (a, b) => a;",
			Pure,
			"*parser.ArrowFunctionLiteral",
		},
		{
			"// @inline @pure\nfunction norm(v) { return v; }",
			Inline | Pure,
			"*parser.FunctionDeclaration",
		},
		{
			"/* @inline */\nexport default function(x) { return x; }",
			Inline,
			"*parser.FunctionLiteral",
		},
	}

	for _, tt := range tests {
		_, table := scanSource(t, tt.input)
		node, h := soleDecl(t, table, tt.input)
		if h != tt.want {
			t.Errorf("input %q: hint = %v, want %v", tt.input, h, tt.want)
		}
		if got := fmt.Sprintf("%T", node); got != tt.nodeType {
			t.Errorf("input %q: keyed node is %s, want %s", tt.input, got, tt.nodeType)
		}
		if table.CallCount() != 0 {
			t.Errorf("input %q: CallCount = %d, want 0", tt.input, table.CallCount())
		}
	}
}

func TestCallSiteHints(t *testing.T) {
	tests := []struct {
		input  string
		want   Hint
		callee string
	}{
		{"let a = /* @pure */ getUser(1);", Pure, "getUser"},
		{"let n = /* @pure */ cfg.get(key);", Pure, "cfg.get"},
		{"/* @inline */ log(x);", Inline, "log"},
		{"let b = /* @inline @pure */ decode(buf);", Inline | Pure, "decode"},
	}

	for _, tt := range tests {
		program, table := scanSource(t, tt.input)
		if table.CallCount() != 1 {
			t.Errorf("input %q: CallCount = %d, want 1", tt.input, table.CallCount())
			continue
		}
		if table.DeclCount() != 0 {
			t.Errorf("input %q: DeclCount = %d, want 0", tt.input, table.DeclCount())
		}
		calls := allCalls(program)
		if len(calls) != 1 {
			t.Fatalf("input %q: found %d calls, want 1", tt.input, len(calls))
		}
		call := calls[0]
		if got := table.Call(call); got != tt.want {
			t.Errorf("input %q: hint = %v, want %v", tt.input, got, tt.want)
		}
		if got := call.Function.String(); got != tt.callee {
			t.Errorf("input %q: callee = %s, want %s", tt.input, got, tt.callee)
		}
	}
}

func TestStackedCommentsUnion(t *testing.T) {
	input := "/* @inline */ /* @pure */ function f() { return 1; }"
	_, table := scanSource(t, input)
	_, h := soleDecl(t, table, input)
	if h != Inline|Pure {
		t.Errorf("hint = %v, want %v", h, Inline|Pure)
	}
}

func TestNearestCandidateWins(t *testing.T) {
	// The marker sits inside the argument list, so it reaches the inner
	// call, not the outer one.
	program, table := scanSource(t, "let v = wrap(/* @pure */ load(x));")
	calls := allCalls(program)
	if len(calls) != 2 {
		t.Fatalf("found %d calls, want 2", len(calls))
	}
	var outer, inner *parser.CallExpression
	for _, c := range calls {
		switch c.Function.String() {
		case "wrap":
			outer = c
		case "load":
			inner = c
		}
	}
	if outer == nil || inner == nil {
		t.Fatalf("could not locate both calls")
	}
	if got := table.Call(inner); got != Pure {
		t.Errorf("inner call hint = %v, want %v", got, Pure)
	}
	if got := table.Call(outer); got != 0 {
		t.Errorf("outer call hint = %v, want none", got)
	}
}

func TestUnrecognizedMarkersIgnored(t *testing.T) {
	tests := []string{
		"// @inlined\nfunction f() {}",
		"// @pureness\nfunction f() {}",
		"// contact me@inline.io about this\nfunction f() {}",
		"// @@inline\nfunction f() {}",
		"// plain comment\nfunction f() {}",
		"// @deprecated use g instead\nfunction f() {}",
	}
	for _, input := range tests {
		_, table := scanSource(t, input)
		if table.DeclCount() != 0 || table.CallCount() != 0 {
			t.Errorf("input %q: decls = %d, calls = %d, want 0 and 0",
				input, table.DeclCount(), table.CallCount())
		}
	}
}

func TestMarkerSeparatedByCodeDropped(t *testing.T) {
	tests := []string{
		// A plain binding sits between the marker and the function.
		"// @inline\nlet x = 5;\nfunction f() { return x; }",
		// The marker trails the whole module.
		"function f() { return 1; }\n// @inline",
		// A parenthesis intervenes before the call starts.
		"let v = /* @pure */ (compute(x));",
		// A closing brace intervenes.
		"function f() { return 1; /* @pure */ }\nlet x = f();",
	}
	for _, input := range tests {
		_, table := scanSource(t, input)
		if table.DeclCount() != 0 || table.CallCount() != 0 {
			t.Errorf("input %q: decls = %d, calls = %d, want 0 and 0",
				input, table.DeclCount(), table.CallCount())
		}
	}
}

func TestDeclarationAndCallKeptApart(t *testing.T) {
	input := "// @inline\nfunction f(x) { return x; }\nlet r = f(1);"
	program, table := scanSource(t, input)
	if table.DeclCount() != 1 {
		t.Fatalf("DeclCount = %d, want 1", table.DeclCount())
	}
	if table.CallCount() != 0 {
		t.Fatalf("CallCount = %d, want 0", table.CallCount())
	}
	calls := allCalls(program)
	if len(calls) != 1 {
		t.Fatalf("found %d calls, want 1", len(calls))
	}
	if got := table.Call(calls[0]); got != 0 {
		t.Errorf("call site inherited hint %v from its declaration", got)
	}
}

func TestCustomMarkerSpellings(t *testing.T) {
	s, err := NewScanner(Options{InlineMarker: "@expand", PureMarker: "@nofx"})
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}

	input := "// @expand @nofx\nfunction f() {}\n// @inline\nfunction g() {}"
	src := source.NewMemorySource("test.js", input)
	l := lexer.NewLexerFromSource(src)
	p := parser.NewParser(l)
	program, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}

	table := s.Scan(program, l.Comments(), src)
	if table.DeclCount() != 1 {
		t.Fatalf("DeclCount = %d, want 1", table.DeclCount())
	}
	node, h := soleDecl(t, table, input)
	if h != Inline|Pure {
		t.Errorf("hint = %v, want %v", h, Inline|Pure)
	}
	fd, ok := node.(*parser.FunctionDeclaration)
	if !ok {
		t.Fatalf("keyed node is %T, want *parser.FunctionDeclaration", node)
	}
	if fd.Name.Value != "f" {
		t.Errorf("hint landed on %s, want f", fd.Name.Value)
	}
}

func TestScanDoesNotMutateAST(t *testing.T) {
	input := "// @inline\nfunction f(x) { return x * 2; }\nlet r = /* @pure */ f(3);"
	src := source.NewMemorySource("test.js", input)
	l := lexer.NewLexerFromSource(src)
	p := parser.NewParser(l)
	program, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}

	before := program.String()
	table := Scan(program, l.Comments(), src)
	if table.DeclCount() != 1 || table.CallCount() != 1 {
		t.Fatalf("decls = %d, calls = %d, want 1 and 1", table.DeclCount(), table.CallCount())
	}
	if after := program.String(); after != before {
		t.Errorf("Scan changed the program:\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestHintString(t *testing.T) {
	tests := []struct {
		h    Hint
		want string
	}{
		{0, "none"},
		{Inline, "inline"},
		{Pure, "pure"},
		{Inline | Pure, "inline|pure"},
	}
	for _, tt := range tests {
		if got := tt.h.String(); got != tt.want {
			t.Errorf("Hint(%d).String() = %q, want %q", tt.h, got, tt.want)
		}
	}
}
