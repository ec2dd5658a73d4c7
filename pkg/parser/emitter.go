package parser

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// JSEmitter renders an AST back to JavaScript source. The output is
// normalized (two-space indent, semicolons, minimal parentheses) and
// reparses to a structurally equal tree.
type JSEmitter struct {
	indentLevel int
	skipIndent  bool
	buffer      bytes.Buffer
}

// NewJSEmitter creates a new JavaScript emitter.
func NewJSEmitter() *JSEmitter {
	return &JSEmitter{}
}

// Emit converts a program AST to JavaScript code.
func (e *JSEmitter) Emit(program *Program) string {
	e.buffer.Reset()
	e.indentLevel = 0
	e.skipIndent = false

	for _, stmt := range program.Statements {
		e.emitStatement(stmt)
	}

	return e.buffer.String()
}

// Helper methods

func (e *JSEmitter) indent() {
	e.indentLevel++
}

func (e *JSEmitter) dedent() {
	if e.indentLevel > 0 {
		e.indentLevel--
	}
}

func (e *JSEmitter) writeIndent() {
	if e.skipIndent {
		e.skipIndent = false
		return
	}
	for i := 0; i < e.indentLevel; i++ {
		e.buffer.WriteString("  ")
	}
}

func (e *JSEmitter) write(format string, args ...interface{}) {
	fmt.Fprintf(&e.buffer, format, args...)
}

// Expression precedence ranks for parenthesization, following the
// JavaScript operator table.
const (
	precSequence = iota + 1
	precAssign
	precTernary
	precCoalesce
	precLogicalOr
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precExponent
	precUnary
	precPostfix
	precCallMember
	precPrimary
)

func infixPrecedence(op string) int {
	switch op {
	case "??":
		return precCoalesce
	case "||":
		return precLogicalOr
	case "&&":
		return precLogicalAnd
	case "|":
		return precBitOr
	case "^":
		return precBitXor
	case "&":
		return precBitAnd
	case "==", "!=", "===", "!==":
		return precEquality
	case "<", ">", "<=", ">=", "in", "instanceof":
		return precRelational
	case "<<", ">>", ">>>":
		return precShift
	case "+", "-":
		return precAdditive
	case "*", "/", "%":
		return precMultiplicative
	case "**":
		return precExponent
	}
	return precPrimary
}

func exprPrecedence(expr Expression) int {
	switch x := expr.(type) {
	case *SequenceExpression:
		return precSequence
	case *AssignmentExpression, *ArrowFunctionLiteral:
		return precAssign
	case *TernaryExpression:
		return precTernary
	case *InfixExpression:
		return infixPrecedence(x.Operator)
	case *PrefixExpression:
		return precUnary
	case *UpdateExpression:
		if x.Prefix {
			return precUnary
		}
		return precPostfix
	case *CallExpression, *MemberExpression, *IndexExpression, *NewExpression:
		return precCallMember
	}
	return precPrimary
}

// AST emitter methods

func (e *JSEmitter) emitStatement(stmt Statement) {
	switch s := stmt.(type) {
	case *LetStatement:
		e.emitDeclaration("let", s.Name, s.Value)
	case *ConstStatement:
		e.emitDeclaration("const", s.Name, s.Value)
	case *VarStatement:
		e.emitDeclaration("var", s.Name, s.Value)
	case *ReturnStatement:
		e.emitReturnStatement(s)
	case *ExpressionStatement:
		e.emitExpressionStatement(s)
	case *BlockStatement:
		e.writeIndent()
		e.emitBlock(s)
		e.write("\n")
	case *FunctionDeclaration:
		e.emitFunctionDeclaration(s)
	case *IfStatement:
		e.writeIndent()
		e.emitIfStatement(s)
		e.write("\n")
	case *WhileStatement:
		e.emitWhileStatement(s)
	case *DoWhileStatement:
		e.emitDoWhileStatement(s)
	case *ForStatement:
		e.emitForStatement(s)
	case *ForOfStatement:
		e.emitForOfStatement(s)
	case *BreakStatement:
		e.emitBreakStatement(s)
	case *ContinueStatement:
		e.emitContinueStatement(s)
	case *LabeledStatement:
		e.emitLabeledStatement(s)
	case *ThrowStatement:
		e.emitThrowStatement(s)
	case *TryStatement:
		e.emitTryStatement(s)
	case *SwitchStatement:
		e.emitSwitchStatement(s)
	case *ImportDeclaration:
		e.emitImportDeclaration(s)
	case *ExportNamedDeclaration:
		e.emitExportNamedDeclaration(s)
	case *ExportDefaultDeclaration:
		e.emitExportDefaultDeclaration(s)
	default:
		e.writeIndent()
		e.write("/* unsupported statement %T */\n", s)
	}
}

func (e *JSEmitter) emitDeclaration(keyword string, name *Identifier, value Expression) {
	e.writeIndent()
	e.write("%s %s", keyword, name.Value)
	if value != nil {
		e.write(" = ")
		e.emitExpression(value, precAssign)
	}
	e.write(";\n")
}

func (e *JSEmitter) emitReturnStatement(stmt *ReturnStatement) {
	e.writeIndent()
	e.write("return")
	if stmt.ReturnValue != nil {
		e.write(" ")
		e.emitExpression(stmt.ReturnValue, precSequence)
	}
	e.write(";\n")
}

func (e *JSEmitter) emitExpressionStatement(stmt *ExpressionStatement) {
	e.writeIndent()
	// A statement may not begin with '{' or 'function'; those spellings
	// would reparse as a block or a declaration
	if startsWithBraceOrFunction(stmt.Expression) {
		e.write("(")
		e.emitExpression(stmt.Expression, precSequence)
		e.write(")")
	} else {
		e.emitExpression(stmt.Expression, precSequence)
	}
	e.write(";\n")
}

// startsWithBraceOrFunction walks the leftmost subexpression to see
// whether the printed form would begin with '{' or the function keyword.
func startsWithBraceOrFunction(expr Expression) bool {
	switch x := expr.(type) {
	case *ObjectLiteral, *FunctionLiteral:
		return true
	case *CallExpression:
		return startsWithBraceOrFunction(x.Function)
	case *MemberExpression:
		return startsWithBraceOrFunction(x.Object)
	case *IndexExpression:
		return startsWithBraceOrFunction(x.Left)
	case *InfixExpression:
		return startsWithBraceOrFunction(x.Left)
	case *AssignmentExpression:
		return startsWithBraceOrFunction(x.Target)
	case *TernaryExpression:
		return startsWithBraceOrFunction(x.Condition)
	case *UpdateExpression:
		return !x.Prefix && startsWithBraceOrFunction(x.Argument)
	case *SequenceExpression:
		return len(x.Expressions) > 0 && startsWithBraceOrFunction(x.Expressions[0])
	}
	return false
}

// emitBlock writes '{ ... }' starting at the current position; the caller
// writes any trailing newline or space.
func (e *JSEmitter) emitBlock(block *BlockStatement) {
	if len(block.Statements) == 0 {
		e.write("{}")
		return
	}
	e.write("{\n")
	e.indent()
	for _, s := range block.Statements {
		e.emitStatement(s)
	}
	e.dedent()
	e.writeIndent()
	e.write("}")
}

func (e *JSEmitter) emitFunctionDeclaration(decl *FunctionDeclaration) {
	e.writeIndent()
	e.write("function %s(", decl.Name.Value)
	e.emitParameters(decl.Parameters)
	e.write(") ")
	e.emitBlock(decl.Body)
	e.write("\n")
}

func (e *JSEmitter) emitParameters(params []*Parameter) {
	for i, p := range params {
		if i > 0 {
			e.write(", ")
		}
		if p.Rest {
			e.write("...")
		}
		e.write(p.Name.Value)
		if p.Default != nil {
			e.write(" = ")
			e.emitExpression(p.Default, precAssign)
		}
	}
}

// emitIfStatement writes the if chain without a trailing newline so that
// `else if` chains stay on one line.
func (e *JSEmitter) emitIfStatement(stmt *IfStatement) {
	e.write("if (")
	e.emitExpression(stmt.Condition, precSequence)
	e.write(") ")
	e.emitBlock(stmt.Consequence)
	if stmt.Alternative == nil {
		return
	}
	e.write(" else ")
	switch alt := stmt.Alternative.(type) {
	case *IfStatement:
		e.emitIfStatement(alt)
	case *BlockStatement:
		e.emitBlock(alt)
	default:
		e.skipIndent = true
		e.emitStatement(alt)
	}
}

func (e *JSEmitter) emitWhileStatement(stmt *WhileStatement) {
	e.writeIndent()
	e.write("while (")
	e.emitExpression(stmt.Condition, precSequence)
	e.write(") ")
	e.emitBlock(stmt.Body)
	e.write("\n")
}

func (e *JSEmitter) emitDoWhileStatement(stmt *DoWhileStatement) {
	e.writeIndent()
	e.write("do ")
	e.emitBlock(stmt.Body)
	e.write(" while (")
	e.emitExpression(stmt.Condition, precSequence)
	e.write(");\n")
}

func (e *JSEmitter) emitForStatement(stmt *ForStatement) {
	e.writeIndent()
	e.write("for (")
	if stmt.Init != nil {
		switch init := stmt.Init.(type) {
		case *LetStatement:
			e.emitInlineDeclaration("let", init.Name, init.Value)
		case *ConstStatement:
			e.emitInlineDeclaration("const", init.Name, init.Value)
		case *VarStatement:
			e.emitInlineDeclaration("var", init.Name, init.Value)
		case *ExpressionStatement:
			e.emitExpression(init.Expression, precSequence)
		}
	}
	e.write("; ")
	if stmt.Condition != nil {
		e.emitExpression(stmt.Condition, precSequence)
	}
	e.write("; ")
	if stmt.Update != nil {
		e.emitExpression(stmt.Update, precSequence)
	}
	e.write(") ")
	e.emitBlock(stmt.Body)
	e.write("\n")
}

func (e *JSEmitter) emitInlineDeclaration(keyword string, name *Identifier, value Expression) {
	e.write("%s %s", keyword, name.Value)
	if value != nil {
		e.write(" = ")
		e.emitExpression(value, precAssign)
	}
}

func (e *JSEmitter) emitForOfStatement(stmt *ForOfStatement) {
	e.writeIndent()
	e.write("for (")
	if stmt.Declaration != "" {
		e.write("%s ", strings.ToLower(string(stmt.Declaration)))
	}
	e.write(stmt.Variable.Value)
	if stmt.Of {
		e.write(" of ")
	} else {
		e.write(" in ")
	}
	e.emitExpression(stmt.Iterable, precAssign)
	e.write(") ")
	e.emitBlock(stmt.Body)
	e.write("\n")
}

func (e *JSEmitter) emitBreakStatement(stmt *BreakStatement) {
	e.writeIndent()
	if stmt.Label != nil {
		e.write("break %s;\n", stmt.Label.Value)
	} else {
		e.write("break;\n")
	}
}

func (e *JSEmitter) emitContinueStatement(stmt *ContinueStatement) {
	e.writeIndent()
	if stmt.Label != nil {
		e.write("continue %s;\n", stmt.Label.Value)
	} else {
		e.write("continue;\n")
	}
}

func (e *JSEmitter) emitLabeledStatement(stmt *LabeledStatement) {
	e.writeIndent()
	e.write("%s: ", stmt.Label.Value)
	e.skipIndent = true
	e.emitStatement(stmt.Body)
}

func (e *JSEmitter) emitThrowStatement(stmt *ThrowStatement) {
	e.writeIndent()
	e.write("throw ")
	e.emitExpression(stmt.Value, precSequence)
	e.write(";\n")
}

func (e *JSEmitter) emitTryStatement(stmt *TryStatement) {
	e.writeIndent()
	e.write("try ")
	e.emitBlock(stmt.Block)
	if stmt.CatchBlock != nil {
		if stmt.CatchParam != nil {
			e.write(" catch (%s) ", stmt.CatchParam.Value)
		} else {
			e.write(" catch ")
		}
		e.emitBlock(stmt.CatchBlock)
	}
	if stmt.FinallyBlock != nil {
		e.write(" finally ")
		e.emitBlock(stmt.FinallyBlock)
	}
	e.write("\n")
}

func (e *JSEmitter) emitSwitchStatement(stmt *SwitchStatement) {
	e.writeIndent()
	e.write("switch (")
	e.emitExpression(stmt.Discriminant, precSequence)
	e.write(") {\n")
	e.indent()
	for _, c := range stmt.Cases {
		e.writeIndent()
		if c.Test != nil {
			e.write("case ")
			e.emitExpression(c.Test, precSequence)
			e.write(":\n")
		} else {
			e.write("default:\n")
		}
		e.indent()
		for _, s := range c.Body {
			e.emitStatement(s)
		}
		e.dedent()
	}
	e.dedent()
	e.writeIndent()
	e.write("}\n")
}

func (e *JSEmitter) emitImportDeclaration(decl *ImportDeclaration) {
	e.writeIndent()
	e.write("import ")

	wrote := false
	if decl.Default != nil {
		e.write(decl.Default.Value)
		wrote = true
	}
	if decl.Namespace != nil {
		if wrote {
			e.write(", ")
		}
		e.write("* as %s", decl.Namespace.Value)
		wrote = true
	}
	if len(decl.Specifiers) > 0 {
		if wrote {
			e.write(", ")
		}
		e.write("{ ")
		for i, spec := range decl.Specifiers {
			if i > 0 {
				e.write(", ")
			}
			if spec.Local.Value == spec.Imported.Value {
				e.write(spec.Imported.Value)
			} else {
				e.write("%s as %s", spec.Imported.Value, spec.Local.Value)
			}
		}
		e.write(" }")
		wrote = true
	}
	if wrote {
		e.write(" from ")
	}
	e.write("%s;\n", quoteString(decl.Source.Value))
}

func (e *JSEmitter) emitExportNamedDeclaration(decl *ExportNamedDeclaration) {
	e.writeIndent()
	e.write("export ")
	if decl.Declaration != nil {
		e.skipIndent = true
		e.emitStatement(decl.Declaration)
		return
	}
	e.write("{ ")
	for i, spec := range decl.Specifiers {
		if i > 0 {
			e.write(", ")
		}
		if spec.Exported.Value == spec.Local.Value {
			e.write(spec.Local.Value)
		} else {
			e.write("%s as %s", spec.Local.Value, spec.Exported.Value)
		}
	}
	e.write(" }")
	if decl.Source != nil {
		e.write(" from %s", quoteString(decl.Source.Value))
	}
	e.write(";\n")
}

func (e *JSEmitter) emitExportDefaultDeclaration(decl *ExportDefaultDeclaration) {
	e.writeIndent()
	e.write("export default ")
	switch d := decl.Declaration.(type) {
	case *FunctionLiteral:
		e.emitFunctionLiteral(d)
		e.write("\n")
	case Expression:
		e.emitExpression(d, precAssign)
		e.write(";\n")
	default:
		e.write("/* unsupported export %T */\n", d)
	}
}

// --- Expressions ---

// emitExpression writes expr, parenthesizing it when its precedence is
// below what the surrounding context requires.
func (e *JSEmitter) emitExpression(expr Expression, min int) {
	if exprPrecedence(expr) < min {
		e.write("(")
		e.emitExpressionBare(expr)
		e.write(")")
		return
	}
	e.emitExpressionBare(expr)
}

func (e *JSEmitter) emitExpressionBare(expr Expression) {
	switch exp := expr.(type) {
	case *Identifier:
		e.write(exp.Value)
	case *NumberLiteral:
		e.emitNumberLiteral(exp)
	case *StringLiteral:
		e.write(quoteString(exp.Value))
	case *BooleanLiteral:
		e.write("%t", exp.Value)
	case *NullLiteral:
		e.write("null")
	case *UndefinedLiteral:
		e.write("undefined")
	case *RegexLiteral:
		e.write(exp.Value)
	case *ThisExpression:
		e.write("this")
	case *TemplateLiteral:
		e.emitTemplateLiteral(exp)
	case *ArrayLiteral:
		e.emitArrayLiteral(exp)
	case *ObjectLiteral:
		e.emitObjectLiteral(exp)
	case *SpreadElement:
		e.write("...")
		e.emitExpression(exp.Argument, precAssign)
	case *FunctionLiteral:
		e.emitFunctionLiteral(exp)
	case *ArrowFunctionLiteral:
		e.emitArrowFunctionLiteral(exp)
	case *PrefixExpression:
		e.emitPrefixExpression(exp)
	case *InfixExpression:
		e.emitInfixExpression(exp)
	case *AssignmentExpression:
		e.emitAssignmentExpression(exp)
	case *UpdateExpression:
		e.emitUpdateExpression(exp)
	case *TernaryExpression:
		e.emitTernaryExpression(exp)
	case *CallExpression:
		e.emitCallExpression(exp)
	case *NewExpression:
		e.emitNewExpression(exp)
	case *MemberExpression:
		e.emitMemberExpression(exp)
	case *IndexExpression:
		e.emitIndexExpression(exp)
	case *SequenceExpression:
		e.emitSequenceExpression(exp)
	default:
		e.write("/* unsupported expression %T */", exp)
	}
}

func (e *JSEmitter) emitNumberLiteral(lit *NumberLiteral) {
	// Prefer the original spelling; synthesized nodes have no token
	if lit.Token.Literal != "" {
		e.write(lit.Token.Literal)
		return
	}
	e.write(strconv.FormatFloat(lit.Value, 'g', -1, 64))
}

func (e *JSEmitter) emitTemplateLiteral(lit *TemplateLiteral) {
	e.write("`")
	for i, quasi := range lit.Quasis {
		e.write(escapeTemplateChunk(quasi))
		if i < len(lit.Expressions) {
			e.write("${")
			e.emitExpression(lit.Expressions[i], precSequence)
			e.write("}")
		}
	}
	e.write("`")
}

func (e *JSEmitter) emitArrayLiteral(arr *ArrayLiteral) {
	e.write("[")
	for i, elem := range arr.Elements {
		if i > 0 {
			e.write(", ")
		}
		e.emitExpression(elem, precAssign)
	}
	e.write("]")
}

func (e *JSEmitter) emitObjectLiteral(obj *ObjectLiteral) {
	if len(obj.Properties) == 0 {
		e.write("{}")
		return
	}
	e.write("{ ")
	for i, prop := range obj.Properties {
		if i > 0 {
			e.write(", ")
		}
		e.emitObjectProperty(prop)
	}
	e.write(" }")
}

func (e *JSEmitter) emitObjectProperty(prop *ObjectProperty) {
	if prop.Key == nil {
		// Spread property
		e.emitExpression(prop.Value, precAssign)
		return
	}
	if prop.Shorthand {
		if ident, ok := prop.Key.(*Identifier); ok {
			e.write(ident.Value)
			return
		}
	}
	if prop.Computed {
		e.write("[")
		e.emitExpression(prop.Key, precAssign)
		e.write("]")
	} else {
		e.emitExpression(prop.Key, precPrimary)
	}
	e.write(": ")
	e.emitExpression(prop.Value, precAssign)
}

func (e *JSEmitter) emitFunctionLiteral(fn *FunctionLiteral) {
	e.write("function")
	if fn.Name != nil {
		e.write(" %s", fn.Name.Value)
	}
	e.write("(")
	e.emitParameters(fn.Parameters)
	e.write(") ")
	e.emitBlock(fn.Body)
}

func (e *JSEmitter) emitArrowFunctionLiteral(fn *ArrowFunctionLiteral) {
	if len(fn.Parameters) == 1 && !fn.Parameters[0].Rest && fn.Parameters[0].Default == nil {
		e.write(fn.Parameters[0].Name.Value)
	} else {
		e.write("(")
		e.emitParameters(fn.Parameters)
		e.write(")")
	}
	e.write(" => ")

	switch body := fn.Body.(type) {
	case *BlockStatement:
		e.emitBlock(body)
	case Expression:
		// An object literal body must be parenthesized or it reads
		// as a block
		if startsWithBraceOrFunction(body) {
			e.write("(")
			e.emitExpression(body, precSequence)
			e.write(")")
		} else {
			e.emitExpression(body, precAssign)
		}
	}
}

func (e *JSEmitter) emitPrefixExpression(expr *PrefixExpression) {
	e.write(expr.Operator)
	if isWordOperator(expr.Operator) {
		e.write(" ")
		e.emitExpression(expr.Right, precUnary)
		return
	}
	// Guard sign chains like -(-x) so they do not fuse into '--'
	if needsSignGuard(expr.Operator, expr.Right) {
		e.write("(")
		e.emitExpressionBare(expr.Right)
		e.write(")")
		return
	}
	e.emitExpression(expr.Right, precUnary)
}

func needsSignGuard(op string, right Expression) bool {
	if op != "-" && op != "+" {
		return false
	}
	switch r := right.(type) {
	case *PrefixExpression:
		return strings.HasPrefix(r.Operator, op)
	case *UpdateExpression:
		return r.Prefix && strings.HasPrefix(r.Operator, op)
	}
	return false
}

func (e *JSEmitter) emitInfixExpression(expr *InfixExpression) {
	prec := infixPrecedence(expr.Operator)
	leftMin, rightMin := prec, prec+1
	if expr.Operator == "**" {
		// '**' is right-associative
		leftMin, rightMin = prec+1, prec
	}
	// Engines reject '??' mixed bare with '||' or '&&'
	if expr.Operator == "??" {
		if isAndOrInfix(expr.Left) {
			leftMin = precPrimary
		}
		if isAndOrInfix(expr.Right) {
			rightMin = precPrimary
		}
	}
	e.emitExpression(expr.Left, leftMin)
	e.write(" %s ", expr.Operator)
	e.emitExpression(expr.Right, rightMin)
}

func isAndOrInfix(expr Expression) bool {
	in, ok := expr.(*InfixExpression)
	return ok && (in.Operator == "||" || in.Operator == "&&")
}

func (e *JSEmitter) emitAssignmentExpression(expr *AssignmentExpression) {
	e.emitExpression(expr.Target, precUnary)
	e.write(" %s ", expr.Operator)
	e.emitExpression(expr.Value, precAssign)
}

func (e *JSEmitter) emitUpdateExpression(expr *UpdateExpression) {
	if expr.Prefix {
		e.write(expr.Operator)
		e.emitExpression(expr.Argument, precPostfix)
	} else {
		e.emitExpression(expr.Argument, precPostfix)
		e.write(expr.Operator)
	}
}

func (e *JSEmitter) emitTernaryExpression(expr *TernaryExpression) {
	e.emitExpression(expr.Condition, precCoalesce)
	e.write(" ? ")
	e.emitExpression(expr.Consequence, precAssign)
	e.write(" : ")
	e.emitExpression(expr.Alternative, precAssign)
}

func (e *JSEmitter) emitCallExpression(call *CallExpression) {
	e.emitExpression(call.Function, precCallMember)
	if call.Optional {
		e.write("?.")
	}
	e.write("(")
	for i, arg := range call.Arguments {
		if i > 0 {
			e.write(", ")
		}
		e.emitExpression(arg, precAssign)
	}
	e.write(")")
}

func (e *JSEmitter) emitNewExpression(expr *NewExpression) {
	e.write("new ")
	if newCalleeNeedsParens(expr.Callee) {
		e.write("(")
		e.emitExpressionBare(expr.Callee)
		e.write(")")
	} else {
		e.emitExpression(expr.Callee, precCallMember)
	}
	if expr.Arguments != nil {
		e.write("(")
		for i, arg := range expr.Arguments {
			if i > 0 {
				e.write(", ")
			}
			e.emitExpression(arg, precAssign)
		}
		e.write(")")
	}
}

// newCalleeNeedsParens reports whether a new-expression callee would
// re-associate with the argument list when printed bare.
func newCalleeNeedsParens(expr Expression) bool {
	switch x := expr.(type) {
	case *CallExpression:
		return true
	case *MemberExpression:
		return newCalleeNeedsParens(x.Object)
	case *IndexExpression:
		return newCalleeNeedsParens(x.Left)
	case *NewExpression:
		return x.Arguments != nil
	}
	return false
}

func (e *JSEmitter) emitMemberExpression(expr *MemberExpression) {
	// A bare number before '.' reads as a fraction
	if _, isNum := expr.Object.(*NumberLiteral); isNum {
		e.write("(")
		e.emitExpressionBare(expr.Object)
		e.write(")")
	} else {
		e.emitExpression(expr.Object, precCallMember)
	}
	if expr.Optional {
		e.write("?.")
	} else {
		e.write(".")
	}
	e.write(expr.Property.Value)
}

func (e *JSEmitter) emitIndexExpression(expr *IndexExpression) {
	e.emitExpression(expr.Left, precCallMember)
	if expr.Optional {
		e.write("?.")
	}
	e.write("[")
	e.emitExpression(expr.Index, precSequence)
	e.write("]")
}

func (e *JSEmitter) emitSequenceExpression(expr *SequenceExpression) {
	for i, sub := range expr.Expressions {
		if i > 0 {
			e.write(", ")
		}
		e.emitExpression(sub, precAssign)
	}
}

// --- String Escaping ---

func quoteString(s string) string {
	var out strings.Builder
	out.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			out.WriteString(`\"`)
		case '\\':
			out.WriteString(`\\`)
		case '\n':
			out.WriteString(`\n`)
		case '\t':
			out.WriteString(`\t`)
		case '\r':
			out.WriteString(`\r`)
		case 0:
			out.WriteString(`\0`)
		default:
			out.WriteRune(r)
		}
	}
	out.WriteByte('"')
	return out.String()
}

func escapeTemplateChunk(s string) string {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '`':
			out.WriteString("\\`")
		case c == '\\':
			out.WriteString(`\\`)
		case c == '$' && i+1 < len(s) && s[i+1] == '{':
			out.WriteString(`\$`)
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}
