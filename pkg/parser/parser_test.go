package parser

import (
	"strings"
	"testing"

	"inlay/pkg/lexer"
)

func parseProgramFor(t *testing.T, input string) *Program {
	t.Helper()
	l := lexer.NewLexer(input)
	p := NewParser(l)
	program, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("parser had %d errors for input %q: %v", len(errs), input, errs[0])
	}
	return program
}

func TestVariableStatements(t *testing.T) {
	tests := []struct {
		input        string
		expectedName string
		expectedStr  string
	}{
		{"let x = 5;", "x", "let x = 5;"},
		{"const y = true;", "y", "const y = true;"},
		{"var z = null;", "z", "var z = null;"},
		{"let uninit;", "uninit", "let uninit;"},
		{"let s = 'hi';", "s", "let s = \"hi\";"},
		{"const big = 1_000_000;", "big", "const big = 1_000_000;"},
		{"let h = 0xff;", "h", "let h = 0xff;"},
	}

	for _, tt := range tests {
		program := parseProgramFor(t, tt.input)
		if len(program.Statements) != 1 {
			t.Errorf("expected 1 statement for %q, got %d", tt.input, len(program.Statements))
			continue
		}
		if program.String() != tt.expectedStr {
			t.Errorf("expected %q, got %q", tt.expectedStr, program.String())
		}
		switch stmt := program.Statements[0].(type) {
		case *LetStatement:
			if stmt.Name.Value != tt.expectedName {
				t.Errorf("expected name %q, got %q", tt.expectedName, stmt.Name.Value)
			}
		case *ConstStatement:
			if stmt.Name.Value != tt.expectedName {
				t.Errorf("expected name %q, got %q", tt.expectedName, stmt.Name.Value)
			}
		case *VarStatement:
			if stmt.Name.Value != tt.expectedName {
				t.Errorf("expected name %q, got %q", tt.expectedName, stmt.Name.Value)
			}
		default:
			t.Errorf("unexpected statement type %T for %q", stmt, tt.input)
		}
	}
}

func TestNumberLiteralValues(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"5;", 5},
		{"3.14;", 3.14},
		{"0xff;", 255},
		{"0b101;", 5},
		{"0o17;", 15},
		{"1_000;", 1000},
		{"2e3;", 2000},
		{".5;", 0.5},
	}

	for _, tt := range tests {
		program := parseProgramFor(t, tt.input)
		stmt, ok := program.Statements[0].(*ExpressionStatement)
		if !ok {
			t.Errorf("expected ExpressionStatement for %q, got %T", tt.input, program.Statements[0])
			continue
		}
		num, ok := stmt.Expression.(*NumberLiteral)
		if !ok {
			t.Errorf("expected NumberLiteral for %q, got %T", tt.input, stmt.Expression)
			continue
		}
		if num.Value != tt.expected {
			t.Errorf("expected value %v for %q, got %v", tt.expected, tt.input, num.Value)
		}
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a + b * c;", "(a + (b * c));"},
		{"a * b + c;", "((a * b) + c);"},
		{"-a * b;", "((-a) * b);"},
		{"!x === true;", "((!x) === true);"},
		{"a + b << c;", "((a + b) << c);"},
		{"a & b | c ^ d;", "((a & b) | (c ^ d));"},
		{"a || b && c;", "(a || (b && c));"},
		{"a ?? b || c;", "(a ?? (b || c));"},
		{"x = y = z;", "(x = (y = z));"},
		{"x += y * 2;", "(x += (y * 2));"},
		{"a ? b : c ? d : e;", "(a ? b : (c ? d : e));"},
		{"2 ** 3 ** 2;", "(2 ** (3 ** 2));"},
		{"a.b.c;", "a.b.c;"},
		{"a.b(1)[2];", "a.b(1)[2];"},
		{"typeof x === 'string';", "((typeof x) === \"string\");"},
		{"delete obj.prop;", "(delete obj.prop);"},
		{"i++;", "(i++);"},
		{"--i;", "(--i);"},
		{"a instanceof B;", "(a instanceof B);"},
		{"'k' in obj;", "(\"k\" in obj);"},
		{"(a + b) * c;", "((a + b) * c);"},
		{"a, b, c;", "(a, b, c);"},
		{"new Map();", "new Map();"},
		{"new ns.Thing(1, 2);", "new ns.Thing(1, 2);"},
	}

	for _, tt := range tests {
		program := parseProgramFor(t, tt.input)
		actual := program.String()
		if actual != tt.expected {
			t.Errorf("input %q: expected %q, got %q", tt.input, tt.expected, actual)
		}
	}
}

func TestArrowFunctionParsing(t *testing.T) {
	tests := []struct {
		input       string
		paramCount  int
		bodyIsBlock bool
	}{
		{"x => x + 1;", 1, false},
		{"(a, b) => a * b;", 2, false},
		{"() => 0;", 0, false},
		{"(a, b) => { return a; };", 2, true},
		{"(a = 1, ...rest) => rest;", 2, false},
	}

	for _, tt := range tests {
		program := parseProgramFor(t, tt.input)
		stmt, ok := program.Statements[0].(*ExpressionStatement)
		if !ok {
			t.Errorf("expected ExpressionStatement for %q, got %T", tt.input, program.Statements[0])
			continue
		}
		arrow, ok := stmt.Expression.(*ArrowFunctionLiteral)
		if !ok {
			t.Errorf("expected ArrowFunctionLiteral for %q, got %T", tt.input, stmt.Expression)
			continue
		}
		if len(arrow.Parameters) != tt.paramCount {
			t.Errorf("expected %d parameters for %q, got %d", tt.paramCount, tt.input, len(arrow.Parameters))
		}
		_, isBlock := arrow.Body.(*BlockStatement)
		if isBlock != tt.bodyIsBlock {
			t.Errorf("input %q: block body = %v, expected %v", tt.input, isBlock, tt.bodyIsBlock)
		}
	}
}

func TestArrowParameterDetails(t *testing.T) {
	program := parseProgramFor(t, "(a = 1, ...rest) => rest;")
	stmt := program.Statements[0].(*ExpressionStatement)
	arrow := stmt.Expression.(*ArrowFunctionLiteral)

	if arrow.Parameters[0].Default == nil {
		t.Errorf("expected a default for first parameter")
	}
	if !arrow.Parameters[1].Rest {
		t.Errorf("expected second parameter to be a rest parameter")
	}
	if arrow.Parameters[1].Name.Value != "rest" {
		t.Errorf("expected rest parameter name 'rest', got %q", arrow.Parameters[1].Name.Value)
	}
}

func TestGroupedExpressionIsNotArrow(t *testing.T) {
	// The parenthesized left side must rewind cleanly and parse as grouping
	program := parseProgramFor(t, "(a + b) * c;")
	stmt := program.Statements[0].(*ExpressionStatement)
	infix, ok := stmt.Expression.(*InfixExpression)
	if !ok {
		t.Fatalf("expected InfixExpression, got %T", stmt.Expression)
	}
	if infix.Operator != "*" {
		t.Errorf("expected operator '*', got %q", infix.Operator)
	}
	if _, ok := infix.Left.(*InfixExpression); !ok {
		t.Errorf("expected grouped infix on the left, got %T", infix.Left)
	}
}

func TestFunctionDeclarationParsing(t *testing.T) {
	program := parseProgramFor(t, "function add(a, b = 2) { return a + b; }")
	decl, ok := program.Statements[0].(*FunctionDeclaration)
	if !ok {
		t.Fatalf("expected FunctionDeclaration, got %T", program.Statements[0])
	}
	if decl.Name.Value != "add" {
		t.Errorf("expected name 'add', got %q", decl.Name.Value)
	}
	if len(decl.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(decl.Parameters))
	}
	if decl.Parameters[1].Default == nil {
		t.Errorf("expected default value on second parameter")
	}
	if len(decl.Body.Statements) != 1 {
		t.Errorf("expected 1 body statement, got %d", len(decl.Body.Statements))
	}
}

func TestControlFlowParsing(t *testing.T) {
	input := `
if (a) { f(); } else if (b) { g(); } else { h(); }
while (x < 10) { x++; }
do { tick(); } while (alive);
try { risky(); } catch (e) { log(e); } finally { done(); }
switch (kind) {
case 1:
  one();
  break;
default:
  rest();
}
`
	program := parseProgramFor(t, input)
	if len(program.Statements) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(program.Statements))
	}

	ifStmt, ok := program.Statements[0].(*IfStatement)
	if !ok {
		t.Fatalf("expected IfStatement, got %T", program.Statements[0])
	}
	elseIf, ok := ifStmt.Alternative.(*IfStatement)
	if !ok {
		t.Fatalf("expected chained IfStatement alternative, got %T", ifStmt.Alternative)
	}
	if _, ok := elseIf.Alternative.(*BlockStatement); !ok {
		t.Errorf("expected final else block, got %T", elseIf.Alternative)
	}

	if _, ok := program.Statements[1].(*WhileStatement); !ok {
		t.Errorf("expected WhileStatement, got %T", program.Statements[1])
	}
	if _, ok := program.Statements[2].(*DoWhileStatement); !ok {
		t.Errorf("expected DoWhileStatement, got %T", program.Statements[2])
	}

	try, ok := program.Statements[3].(*TryStatement)
	if !ok {
		t.Fatalf("expected TryStatement, got %T", program.Statements[3])
	}
	if try.CatchParam == nil || try.CatchParam.Value != "e" {
		t.Errorf("expected catch binding 'e'")
	}
	if try.FinallyBlock == nil {
		t.Errorf("expected finally block")
	}

	sw, ok := program.Statements[4].(*SwitchStatement)
	if !ok {
		t.Fatalf("expected SwitchStatement, got %T", program.Statements[4])
	}
	if len(sw.Cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(sw.Cases))
	}
	if sw.Cases[0].Test == nil {
		t.Errorf("expected a test on the first case")
	}
	if sw.Cases[1].Test != nil {
		t.Errorf("expected nil test on the default case")
	}
	if len(sw.Cases[0].Body) != 2 {
		t.Errorf("expected 2 statements in first case, got %d", len(sw.Cases[0].Body))
	}
}

func TestForStatementVariants(t *testing.T) {
	tests := []struct {
		input  string
		isForOf bool
		of      bool
	}{
		{"for (let i = 0; i < 10; i++) { f(i); }", false, false},
		{"for (;;) { break; }", false, false},
		{"for (const item of items) { use(item); }", true, true},
		{"for (let key in table) { use(key); }", true, false},
		{"for (x of items) { use(x); }", true, true},
		{"for (k in table) { use(k); }", true, false},
	}

	for _, tt := range tests {
		program := parseProgramFor(t, tt.input)
		if len(program.Statements) != 1 {
			t.Errorf("expected 1 statement for %q, got %d", tt.input, len(program.Statements))
			continue
		}
		switch stmt := program.Statements[0].(type) {
		case *ForStatement:
			if tt.isForOf {
				t.Errorf("input %q: expected a for-of/for-in statement, got classic for", tt.input)
			}
		case *ForOfStatement:
			if !tt.isForOf {
				t.Errorf("input %q: expected a classic for, got for-of/for-in", tt.input)
				continue
			}
			if stmt.Of != tt.of {
				t.Errorf("input %q: Of = %v, expected %v", tt.input, stmt.Of, tt.of)
			}
		default:
			t.Errorf("unexpected statement type %T for %q", stmt, tt.input)
		}
	}
}

func TestLabeledStatementAndBreak(t *testing.T) {
	input := "_outer: { let x = 1; break _outer; }"
	program := parseProgramFor(t, input)

	labeled, ok := program.Statements[0].(*LabeledStatement)
	if !ok {
		t.Fatalf("expected LabeledStatement, got %T", program.Statements[0])
	}
	if labeled.Label.Value != "_outer" {
		t.Errorf("expected label '_outer', got %q", labeled.Label.Value)
	}
	block, ok := labeled.Body.(*BlockStatement)
	if !ok {
		t.Fatalf("expected BlockStatement body, got %T", labeled.Body)
	}
	if len(block.Statements) != 2 {
		t.Fatalf("expected 2 statements in block, got %d", len(block.Statements))
	}
	brk, ok := block.Statements[1].(*BreakStatement)
	if !ok {
		t.Fatalf("expected BreakStatement, got %T", block.Statements[1])
	}
	if brk.Label == nil || brk.Label.Value != "_outer" {
		t.Errorf("expected labeled break to '_outer'")
	}
}

func TestImportParsing(t *testing.T) {
	tests := []struct {
		input      string
		defaultN   string
		namespace  string
		specifiers [][2]string // imported, local
		source     string
	}{
		{`import "./side-effect";`, "", "", nil, "./side-effect"},
		{`import util from "./util";`, "util", "", nil, "./util"},
		{`import { a, b } from "./lib";`, "", "", [][2]string{{"a", "a"}, {"b", "b"}}, "./lib"},
		{`import { cache as _cache } from "./cache";`, "", "", [][2]string{{"cache", "_cache"}}, "./cache"},
		{`import def, { helper } from "./mixed";`, "def", "", [][2]string{{"helper", "helper"}}, "./mixed"},
		{`import * as ns from "./all";`, "", "ns", nil, "./all"},
		{`import def, * as ns from "./both";`, "def", "ns", nil, "./both"},
	}

	for _, tt := range tests {
		program := parseProgramFor(t, tt.input)
		decl, ok := program.Statements[0].(*ImportDeclaration)
		if !ok {
			t.Errorf("expected ImportDeclaration for %q, got %T", tt.input, program.Statements[0])
			continue
		}
		if tt.defaultN == "" && decl.Default != nil {
			t.Errorf("input %q: unexpected default import %q", tt.input, decl.Default.Value)
		}
		if tt.defaultN != "" && (decl.Default == nil || decl.Default.Value != tt.defaultN) {
			t.Errorf("input %q: expected default import %q", tt.input, tt.defaultN)
		}
		if tt.namespace != "" && (decl.Namespace == nil || decl.Namespace.Value != tt.namespace) {
			t.Errorf("input %q: expected namespace import %q", tt.input, tt.namespace)
		}
		if len(decl.Specifiers) != len(tt.specifiers) {
			t.Errorf("input %q: expected %d specifiers, got %d", tt.input, len(tt.specifiers), len(decl.Specifiers))
			continue
		}
		for i, want := range tt.specifiers {
			if decl.Specifiers[i].Imported.Value != want[0] || decl.Specifiers[i].Local.Value != want[1] {
				t.Errorf("input %q: specifier %d = (%s, %s), expected (%s, %s)", tt.input, i,
					decl.Specifiers[i].Imported.Value, decl.Specifiers[i].Local.Value, want[0], want[1])
			}
		}
		if decl.Source == nil || decl.Source.Value != tt.source {
			t.Errorf("input %q: expected source %q", tt.input, tt.source)
		}
	}
}

func TestExportParsing(t *testing.T) {
	program := parseProgramFor(t, `
export function visible() { return 1; }
export const level = 2;
export { helperA, helperB as b };
export { passthru } from "./other";
export default function main() { return 0; }
`)
	if len(program.Statements) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(program.Statements))
	}

	fnExport, ok := program.Statements[0].(*ExportNamedDeclaration)
	if !ok {
		t.Fatalf("expected ExportNamedDeclaration, got %T", program.Statements[0])
	}
	if _, ok := fnExport.Declaration.(*FunctionDeclaration); !ok {
		t.Errorf("expected exported FunctionDeclaration, got %T", fnExport.Declaration)
	}

	constExport := program.Statements[1].(*ExportNamedDeclaration)
	if _, ok := constExport.Declaration.(*ConstStatement); !ok {
		t.Errorf("expected exported ConstStatement, got %T", constExport.Declaration)
	}

	specExport := program.Statements[2].(*ExportNamedDeclaration)
	if len(specExport.Specifiers) != 2 {
		t.Fatalf("expected 2 export specifiers, got %d", len(specExport.Specifiers))
	}
	if specExport.Specifiers[1].Local.Value != "helperB" || specExport.Specifiers[1].Exported.Value != "b" {
		t.Errorf("expected 'helperB as b', got '%s as %s'",
			specExport.Specifiers[1].Local.Value, specExport.Specifiers[1].Exported.Value)
	}

	reExport := program.Statements[3].(*ExportNamedDeclaration)
	if reExport.Source == nil || reExport.Source.Value != "./other" {
		t.Errorf("expected re-export source './other'")
	}

	defExport, ok := program.Statements[4].(*ExportDefaultDeclaration)
	if !ok {
		t.Fatalf("expected ExportDefaultDeclaration, got %T", program.Statements[4])
	}
	if _, ok := defExport.Declaration.(*FunctionLiteral); !ok {
		t.Errorf("expected default-exported FunctionLiteral, got %T", defExport.Declaration)
	}
}

func TestTemplateLiteralParsing(t *testing.T) {
	tests := []struct {
		input      string
		quasis     []string
		exprCount  int
	}{
		{"`plain`;", []string{"plain"}, 0},
		{"`v=${x}`;", []string{"v=", ""}, 1},
		{"`${a} and ${b}!`;", []string{"", " and ", "!"}, 2},
	}

	for _, tt := range tests {
		program := parseProgramFor(t, tt.input)
		stmt := program.Statements[0].(*ExpressionStatement)
		tpl, ok := stmt.Expression.(*TemplateLiteral)
		if !ok {
			t.Errorf("expected TemplateLiteral for %q, got %T", tt.input, stmt.Expression)
			continue
		}
		if len(tpl.Expressions) != tt.exprCount {
			t.Errorf("input %q: expected %d expressions, got %d", tt.input, tt.exprCount, len(tpl.Expressions))
		}
		if len(tpl.Quasis) != len(tt.quasis) {
			t.Errorf("input %q: expected %d quasis, got %d", tt.input, len(tt.quasis), len(tpl.Quasis))
			continue
		}
		for i, q := range tt.quasis {
			if tpl.Quasis[i] != q {
				t.Errorf("input %q: quasi %d = %q, expected %q", tt.input, i, tpl.Quasis[i], q)
			}
		}
	}
}

func TestOptionalChainingParsing(t *testing.T) {
	program := parseProgramFor(t, "a?.b?.(1)?.[2];")
	stmt := program.Statements[0].(*ExpressionStatement)

	idx, ok := stmt.Expression.(*IndexExpression)
	if !ok {
		t.Fatalf("expected IndexExpression, got %T", stmt.Expression)
	}
	if !idx.Optional {
		t.Errorf("expected optional index access")
	}
	call, ok := idx.Left.(*CallExpression)
	if !ok {
		t.Fatalf("expected CallExpression, got %T", idx.Left)
	}
	if !call.Optional {
		t.Errorf("expected optional call")
	}
	member, ok := call.Function.(*MemberExpression)
	if !ok {
		t.Fatalf("expected MemberExpression, got %T", call.Function)
	}
	if !member.Optional {
		t.Errorf("expected optional member access")
	}
}

func TestObjectLiteralParsing(t *testing.T) {
	program := parseProgramFor(t, `let o = { a: 1, "b": 2, [k]: 3, short, ...rest, fn() { return 4; } };`)
	stmt := program.Statements[0].(*LetStatement)
	obj, ok := stmt.Value.(*ObjectLiteral)
	if !ok {
		t.Fatalf("expected ObjectLiteral, got %T", stmt.Value)
	}
	if len(obj.Properties) != 6 {
		t.Fatalf("expected 6 properties, got %d", len(obj.Properties))
	}
	if _, ok := obj.Properties[1].Key.(*StringLiteral); !ok {
		t.Errorf("expected string key on second property, got %T", obj.Properties[1].Key)
	}
	if !obj.Properties[2].Computed {
		t.Errorf("expected computed third property")
	}
	if !obj.Properties[3].Shorthand {
		t.Errorf("expected shorthand fourth property")
	}
	if obj.Properties[4].Key != nil {
		t.Errorf("expected nil key on spread property")
	}
	if _, ok := obj.Properties[4].Value.(*SpreadElement); !ok {
		t.Errorf("expected SpreadElement value, got %T", obj.Properties[4].Value)
	}
	if _, ok := obj.Properties[5].Value.(*FunctionLiteral); !ok {
		t.Errorf("expected method shorthand to parse as FunctionLiteral, got %T", obj.Properties[5].Value)
	}
}

func TestKeywordPropertyNames(t *testing.T) {
	program := parseProgramFor(t, "registry.delete(key); cfg.default = 1;")
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	call := program.Statements[0].(*ExpressionStatement).Expression.(*CallExpression)
	member := call.Function.(*MemberExpression)
	if member.Property.Value != "delete" {
		t.Errorf("expected property 'delete', got %q", member.Property.Value)
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		input       string
		errFragment string
	}{
		{"let = 5;", "expected next token to be IDENT"},
		{"let x = ;", "no prefix parse function"},
		{"if (x { }", "expected next token to be )"},
		{"1 = 2;", "invalid assignment target"},
		{"a?.;", "expected property name"},
		{"function () { }", "expected next token to be IDENT"},
		{"try { }", "requires a catch or finally"},
	}

	for _, tt := range tests {
		l := lexer.NewLexer(tt.input)
		p := NewParser(l)
		_, errs := p.ParseProgram()
		if len(errs) == 0 {
			t.Errorf("expected errors for %q, got none", tt.input)
			continue
		}
		found := false
		for _, err := range errs {
			if strings.Contains(err.Message(), tt.errFragment) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("input %q: no error containing %q; first error: %s", tt.input, tt.errFragment, errs[0].Message())
		}
	}
}

func TestErrorPositionsCarrySource(t *testing.T) {
	l := lexer.NewLexer("let x = ;\n")
	p := NewParser(l)
	_, errs := p.ParseProgram()
	if len(errs) == 0 {
		t.Fatal("expected at least one error")
	}
	pos := errs[0].Pos()
	if pos.Line != 1 {
		t.Errorf("expected error on line 1, got %d", pos.Line)
	}
	if pos.Source == nil {
		t.Errorf("expected error position to carry its source file")
	}
}

func TestSequenceInArgumentsNeedsParens(t *testing.T) {
	program := parseProgramFor(t, "f((a, b), c);")
	call := program.Statements[0].(*ExpressionStatement).Expression.(*CallExpression)
	if len(call.Arguments) != 2 {
		t.Fatalf("expected 2 arguments, got %d", len(call.Arguments))
	}
	if _, ok := call.Arguments[0].(*SequenceExpression); !ok {
		t.Errorf("expected SequenceExpression first argument, got %T", call.Arguments[0])
	}
}
