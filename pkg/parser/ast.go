package parser

import (
	"bytes"
	"strings"

	"inlay/pkg/lexer"
)

// --- Interfaces ---

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string // Returns the literal value of the token associated with the node
	String() string       // Returns a string representation of the node (for debugging)
}

// Statement represents a statement node in the AST.
type Statement interface {
	Node
	statementNode() // Dummy method for distinguishing statement types
}

// Expression represents an expression node in the AST.
type Expression interface {
	Node
	expressionNode() // Dummy method for distinguishing expression types
}

// --- Program Node ---

// Program is the root node of the AST.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
	}
	return out.String()
}

// --- Statement Nodes ---

// LetStatement represents a `let` variable declaration.
// let <Name> = <Value>;
type LetStatement struct {
	Token lexer.Token // The lexer.LET token
	Name  *Identifier // The variable name
	Value Expression  // The expression being assigned (may be nil)
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LetStatement) String() string {
	var out bytes.Buffer
	out.WriteString(ls.TokenLiteral() + " ")
	if ls.Name != nil {
		out.WriteString(ls.Name.String())
	}
	if ls.Value != nil {
		out.WriteString(" = ")
		out.WriteString(ls.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

// ConstStatement represents a `const` variable declaration.
// Structurally identical to LetStatement, but reassignment is illegal.
type ConstStatement struct {
	Token lexer.Token // The lexer.CONST token
	Name  *Identifier
	Value Expression
}

func (cs *ConstStatement) statementNode()       {}
func (cs *ConstStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ConstStatement) String() string {
	var out bytes.Buffer
	out.WriteString(cs.TokenLiteral() + " ")
	out.WriteString(cs.Name.String())
	out.WriteString(" = ")
	if cs.Value != nil {
		out.WriteString(cs.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

// VarStatement represents a `var` variable declaration.
// Structurally identical to LetStatement, but function-scoped.
type VarStatement struct {
	Token lexer.Token // The lexer.VAR token
	Name  *Identifier
	Value Expression
}

func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Literal }
func (vs *VarStatement) String() string {
	var out bytes.Buffer
	out.WriteString(vs.TokenLiteral() + " ")
	if vs.Name != nil {
		out.WriteString(vs.Name.String())
	}
	if vs.Value != nil {
		out.WriteString(" = ")
		out.WriteString(vs.Value.String())
	}
	out.WriteString(";")
	return out.String()
}

// ReturnStatement represents a `return` statement.
// return <ReturnValue>;
type ReturnStatement struct {
	Token       lexer.Token // The lexer.RETURN token
	ReturnValue Expression  // The expression to return (may be nil)
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	var out bytes.Buffer
	out.WriteString(rs.TokenLiteral())
	if rs.ReturnValue != nil {
		out.WriteString(" ")
		out.WriteString(rs.ReturnValue.String())
	}
	out.WriteString(";")
	return out.String()
}

// ExpressionStatement represents a statement consisting of a single expression.
// <expression>;
type ExpressionStatement struct {
	Token      lexer.Token // The first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ""
}

// BlockStatement represents a braced statement list.
type BlockStatement struct {
	Token      lexer.Token // The lexer.LBRACE token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// FunctionDeclaration represents a named `function` statement.
// function <Name>(<Parameters>) <Body>
type FunctionDeclaration struct {
	Token      lexer.Token // The lexer.FUNCTION token
	Name       *Identifier
	Parameters []*Parameter
	Body       *BlockStatement
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("function ")
	out.WriteString(fd.Name.String())
	out.WriteString("(")
	out.WriteString(paramList(fd.Parameters))
	out.WriteString(") ")
	out.WriteString(fd.Body.String())
	return out.String()
}

// IfStatement represents `if (cond) { ... } else ...`. The Alternative is
// either a *BlockStatement or another *IfStatement (else-if chain), or nil.
type IfStatement struct {
	Token       lexer.Token // The lexer.IF token
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if (")
	out.WriteString(is.Condition.String())
	out.WriteString(") ")
	out.WriteString(is.Consequence.String())
	if is.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(is.Alternative.String())
	}
	return out.String()
}

// WhileStatement represents `while (cond) { ... }`.
type WhileStatement struct {
	Token     lexer.Token // The lexer.WHILE token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) String() string {
	var out bytes.Buffer
	out.WriteString("while (")
	out.WriteString(ws.Condition.String())
	out.WriteString(") ")
	out.WriteString(ws.Body.String())
	return out.String()
}

// DoWhileStatement represents `do { ... } while (cond);`.
type DoWhileStatement struct {
	Token     lexer.Token // The lexer.DO token
	Body      *BlockStatement
	Condition Expression
}

func (dw *DoWhileStatement) statementNode()       {}
func (dw *DoWhileStatement) TokenLiteral() string { return dw.Token.Literal }
func (dw *DoWhileStatement) String() string {
	var out bytes.Buffer
	out.WriteString("do ")
	out.WriteString(dw.Body.String())
	out.WriteString(" while (")
	out.WriteString(dw.Condition.String())
	out.WriteString(");")
	return out.String()
}

// ForStatement represents the classic three-clause `for` loop. Any of
// Init, Condition and Update may be nil.
type ForStatement struct {
	Token     lexer.Token // The lexer.FOR token
	Init      Statement   // LetStatement, VarStatement or ExpressionStatement
	Condition Expression
	Update    Expression
	Body      *BlockStatement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	if fs.Init != nil {
		out.WriteString(strings.TrimSuffix(fs.Init.String(), ";"))
	}
	out.WriteString("; ")
	if fs.Condition != nil {
		out.WriteString(fs.Condition.String())
	}
	out.WriteString("; ")
	if fs.Update != nil {
		out.WriteString(fs.Update.String())
	}
	out.WriteString(") ")
	out.WriteString(fs.Body.String())
	return out.String()
}

// ForOfStatement represents `for (<decl> x of iter)` and, with Of false,
// `for (<decl> x in obj)`.
type ForOfStatement struct {
	Token       lexer.Token // The lexer.FOR token
	Declaration lexer.TokenType
	Variable    *Identifier
	Of          bool // true for for-of, false for for-in
	Iterable    Expression
	Body        *BlockStatement
}

func (fo *ForOfStatement) statementNode()       {}
func (fo *ForOfStatement) TokenLiteral() string { return fo.Token.Literal }
func (fo *ForOfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	if fo.Declaration != "" {
		out.WriteString(strings.ToLower(string(fo.Declaration)))
		out.WriteString(" ")
	}
	out.WriteString(fo.Variable.String())
	if fo.Of {
		out.WriteString(" of ")
	} else {
		out.WriteString(" in ")
	}
	out.WriteString(fo.Iterable.String())
	out.WriteString(") ")
	out.WriteString(fo.Body.String())
	return out.String()
}

// BreakStatement represents `break` with an optional label.
type BreakStatement struct {
	Token lexer.Token // The lexer.BREAK token
	Label *Identifier // may be nil
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) String() string {
	if bs.Label != nil {
		return "break " + bs.Label.String() + ";"
	}
	return "break;"
}

// ContinueStatement represents `continue` with an optional label.
type ContinueStatement struct {
	Token lexer.Token // The lexer.CONTINUE token
	Label *Identifier // may be nil
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) String() string {
	if cs.Label != nil {
		return "continue " + cs.Label.String() + ";"
	}
	return "continue;"
}

// LabeledStatement represents `<Label>: <Body>`.
type LabeledStatement struct {
	Token lexer.Token // The label token
	Label *Identifier
	Body  Statement
}

func (ls *LabeledStatement) statementNode()       {}
func (ls *LabeledStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LabeledStatement) String() string {
	return ls.Label.String() + ": " + ls.Body.String()
}

// ThrowStatement represents `throw <Value>;`.
type ThrowStatement struct {
	Token lexer.Token // The lexer.THROW token
	Value Expression
}

func (ts *ThrowStatement) statementNode()       {}
func (ts *ThrowStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *ThrowStatement) String() string {
	return "throw " + ts.Value.String() + ";"
}

// TryStatement represents `try { } catch (e) { } finally { }`. CatchBlock
// and FinallyBlock may each be nil, but not both.
type TryStatement struct {
	Token        lexer.Token // The lexer.TRY token
	Block        *BlockStatement
	CatchParam   *Identifier // may be nil (catch without binding)
	CatchBlock   *BlockStatement
	FinallyBlock *BlockStatement
}

func (ts *TryStatement) statementNode()       {}
func (ts *TryStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *TryStatement) String() string {
	var out bytes.Buffer
	out.WriteString("try ")
	out.WriteString(ts.Block.String())
	if ts.CatchBlock != nil {
		out.WriteString(" catch ")
		if ts.CatchParam != nil {
			out.WriteString("(" + ts.CatchParam.String() + ") ")
		}
		out.WriteString(ts.CatchBlock.String())
	}
	if ts.FinallyBlock != nil {
		out.WriteString(" finally ")
		out.WriteString(ts.FinallyBlock.String())
	}
	return out.String()
}

// SwitchCase is one `case <Test>:` arm; Test is nil for `default:`.
type SwitchCase struct {
	Token lexer.Token // The lexer.CASE or lexer.DEFAULT token
	Test  Expression
	Body  []Statement
}

func (sc *SwitchCase) String() string {
	var out bytes.Buffer
	if sc.Test != nil {
		out.WriteString("case " + sc.Test.String() + ": ")
	} else {
		out.WriteString("default: ")
	}
	for _, s := range sc.Body {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	return out.String()
}

// SwitchStatement represents `switch (disc) { case ...: ... }`.
type SwitchStatement struct {
	Token        lexer.Token // The lexer.SWITCH token
	Discriminant Expression
	Cases        []*SwitchCase
}

func (ss *SwitchStatement) statementNode()       {}
func (ss *SwitchStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *SwitchStatement) String() string {
	var out bytes.Buffer
	out.WriteString("switch (")
	out.WriteString(ss.Discriminant.String())
	out.WriteString(") { ")
	for _, c := range ss.Cases {
		out.WriteString(c.String())
	}
	out.WriteString("}")
	return out.String()
}

// --- Module Statement Nodes ---

// ImportSpecifier is one `{ Imported as Local }` entry. Local equals
// Imported when no alias is spelled.
type ImportSpecifier struct {
	Imported *Identifier
	Local    *Identifier
}

func (is *ImportSpecifier) String() string {
	if is.Local != nil && is.Local.Value != is.Imported.Value {
		return is.Imported.String() + " as " + is.Local.String()
	}
	return is.Imported.String()
}

// ImportDeclaration represents the supported `import` forms:
// import d from "m"; import { a, b as c } from "m"; import * as ns from "m";
type ImportDeclaration struct {
	Token      lexer.Token // The lexer.IMPORT token
	Default    *Identifier // may be nil
	Namespace  *Identifier // may be nil
	Specifiers []*ImportSpecifier
	Source     *StringLiteral
}

func (id *ImportDeclaration) statementNode()       {}
func (id *ImportDeclaration) TokenLiteral() string { return id.Token.Literal }
func (id *ImportDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("import ")
	wrote := false
	if id.Default != nil {
		out.WriteString(id.Default.String())
		wrote = true
	}
	if id.Namespace != nil {
		if wrote {
			out.WriteString(", ")
		}
		out.WriteString("* as " + id.Namespace.String())
		wrote = true
	}
	if len(id.Specifiers) > 0 {
		if wrote {
			out.WriteString(", ")
		}
		parts := make([]string, len(id.Specifiers))
		for i, s := range id.Specifiers {
			parts[i] = s.String()
		}
		out.WriteString("{ " + strings.Join(parts, ", ") + " }")
	}
	out.WriteString(" from ")
	out.WriteString(id.Source.String())
	out.WriteString(";")
	return out.String()
}

// ExportSpecifier is one `{ Local as Exported }` entry.
type ExportSpecifier struct {
	Local    *Identifier
	Exported *Identifier
}

func (es *ExportSpecifier) String() string {
	if es.Exported != nil && es.Exported.Value != es.Local.Value {
		return es.Local.String() + " as " + es.Exported.String()
	}
	return es.Local.String()
}

// ExportNamedDeclaration represents `export <decl>`, `export { ... }` and
// the re-export form `export { ... } from "m"`.
type ExportNamedDeclaration struct {
	Token       lexer.Token // The lexer.EXPORT token
	Declaration Statement   // function/let/const/var declaration, or nil
	Specifiers  []*ExportSpecifier
	Source      *StringLiteral // non-nil only for re-exports
}

func (ed *ExportNamedDeclaration) statementNode()       {}
func (ed *ExportNamedDeclaration) TokenLiteral() string { return ed.Token.Literal }
func (ed *ExportNamedDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("export ")
	if ed.Declaration != nil {
		out.WriteString(ed.Declaration.String())
		return out.String()
	}
	parts := make([]string, len(ed.Specifiers))
	for i, s := range ed.Specifiers {
		parts[i] = s.String()
	}
	out.WriteString("{ " + strings.Join(parts, ", ") + " }")
	if ed.Source != nil {
		out.WriteString(" from " + ed.Source.String())
	}
	out.WriteString(";")
	return out.String()
}

// ExportDefaultDeclaration represents `export default <expr|function>`.
type ExportDefaultDeclaration struct {
	Token       lexer.Token // The lexer.EXPORT token
	Declaration Node        // *FunctionDeclaration or an Expression
}

func (ed *ExportDefaultDeclaration) statementNode()       {}
func (ed *ExportDefaultDeclaration) TokenLiteral() string { return ed.Token.Literal }
func (ed *ExportDefaultDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("export default ")
	out.WriteString(ed.Declaration.String())
	if _, isFn := ed.Declaration.(*FunctionDeclaration); !isFn {
		out.WriteString(";")
	}
	return out.String()
}

// --- Expression Nodes ---

// Identifier represents an identifier in the source code.
type Identifier struct {
	Token lexer.Token
	Value string // The name of the identifier
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// Parameter represents one function parameter with an optional default
// and a rest flag.
// <Name> = <Default> / ...<Name>
type Parameter struct {
	Token   lexer.Token // The token of the parameter name (or the '...')
	Name    *Identifier
	Default Expression // may be nil
	Rest    bool
}

func (p *Parameter) expressionNode()      {}
func (p *Parameter) TokenLiteral() string { return p.Token.Literal }
func (p *Parameter) String() string {
	var out bytes.Buffer
	if p.Rest {
		out.WriteString("...")
	}
	out.WriteString(p.Name.String())
	if p.Default != nil {
		out.WriteString(" = ")
		out.WriteString(p.Default.String())
	}
	return out.String()
}

func paramList(params []*Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// NumberLiteral represents a numeric literal. The raw spelling is kept so
// printing does not reformat hex or separator forms.
type NumberLiteral struct {
	Token lexer.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) String() string       { return nl.Token.Literal }

// StringLiteral represents a string literal. Value holds the unescaped
// content.
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return "\"" + sl.Value + "\"" }

// BooleanLiteral represents `true` or `false`.
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }

// NullLiteral represents `null`.
type NullLiteral struct {
	Token lexer.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) String() string       { return "null" }

// UndefinedLiteral represents `undefined`.
type UndefinedLiteral struct {
	Token lexer.Token
}

func (ul *UndefinedLiteral) expressionNode()      {}
func (ul *UndefinedLiteral) TokenLiteral() string { return ul.Token.Literal }
func (ul *UndefinedLiteral) String() string       { return "undefined" }

// RegexLiteral represents `/pattern/flags`, kept in raw form.
type RegexLiteral struct {
	Token lexer.Token
	Value string // raw spelling including slashes and flags
}

func (rl *RegexLiteral) expressionNode()      {}
func (rl *RegexLiteral) TokenLiteral() string { return rl.Token.Literal }
func (rl *RegexLiteral) String() string       { return rl.Value }

// TemplateLiteral represents a backtick template. Quasis always has one
// more element than Expressions.
type TemplateLiteral struct {
	Token       lexer.Token
	Quasis      []string // cooked text chunks
	Expressions []Expression
}

func (tl *TemplateLiteral) expressionNode()      {}
func (tl *TemplateLiteral) TokenLiteral() string { return tl.Token.Literal }
func (tl *TemplateLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("`")
	for i, q := range tl.Quasis {
		out.WriteString(q)
		if i < len(tl.Expressions) {
			out.WriteString("${")
			out.WriteString(tl.Expressions[i].String())
			out.WriteString("}")
		}
	}
	out.WriteString("`")
	return out.String()
}

// ArrayLiteral represents `[a, b, c]`.
type ArrayLiteral struct {
	Token    lexer.Token // The lexer.LBRACKET token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) String() string {
	parts := make([]string, len(al.Elements))
	for i, e := range al.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjectProperty is one `key: value` entry of an object literal.
type ObjectProperty struct {
	Key       Expression // *Identifier, *StringLiteral, *NumberLiteral, or computed
	Value     Expression
	Computed  bool // [expr]: value
	Shorthand bool // { x } for { x: x }
}

func (op *ObjectProperty) String() string {
	if op.Shorthand {
		return op.Value.String()
	}
	if op.Computed {
		return "[" + op.Key.String() + "]: " + op.Value.String()
	}
	return op.Key.String() + ": " + op.Value.String()
}

// ObjectLiteral represents `{ a: 1, b }`.
type ObjectLiteral struct {
	Token      lexer.Token // The lexer.LBRACE token
	Properties []*ObjectProperty
}

func (ol *ObjectLiteral) expressionNode()      {}
func (ol *ObjectLiteral) TokenLiteral() string { return ol.Token.Literal }
func (ol *ObjectLiteral) String() string {
	parts := make([]string, len(ol.Properties))
	for i, p := range ol.Properties {
		parts[i] = p.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// SpreadElement represents `...arg` in call arguments and literals.
type SpreadElement struct {
	Token    lexer.Token // The lexer.SPREAD token
	Argument Expression
}

func (se *SpreadElement) expressionNode()      {}
func (se *SpreadElement) TokenLiteral() string { return se.Token.Literal }
func (se *SpreadElement) String() string       { return "..." + se.Argument.String() }

// FunctionLiteral represents a `function` expression, optionally named.
type FunctionLiteral struct {
	Token      lexer.Token // The lexer.FUNCTION token
	Name       *Identifier // may be nil
	Parameters []*Parameter
	Body       *BlockStatement
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("function")
	if fl.Name != nil {
		out.WriteString(" " + fl.Name.String())
	}
	out.WriteString("(")
	out.WriteString(paramList(fl.Parameters))
	out.WriteString(") ")
	out.WriteString(fl.Body.String())
	return out.String()
}

// ArrowFunctionLiteral represents `(params) => body`. Body is either a
// *BlockStatement or an Expression.
type ArrowFunctionLiteral struct {
	Token      lexer.Token // The token starting the parameter list
	Parameters []*Parameter
	Body       Node
}

func (af *ArrowFunctionLiteral) expressionNode()      {}
func (af *ArrowFunctionLiteral) TokenLiteral() string { return af.Token.Literal }
func (af *ArrowFunctionLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(paramList(af.Parameters))
	out.WriteString(") => ")
	out.WriteString(af.Body.String())
	return out.String()
}

// PrefixExpression represents `<op><operand>`, e.g. !x, -x, typeof x.
type PrefixExpression struct {
	Token    lexer.Token // The prefix token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	if isWordOperator(pe.Operator) {
		return "(" + pe.Operator + " " + pe.Right.String() + ")"
	}
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// isWordOperator reports whether a unary operator is spelled as a keyword
// and therefore needs a space before its operand.
func isWordOperator(op string) bool {
	switch op {
	case "typeof", "delete", "void", "in", "instanceof", "new":
		return true
	}
	return false
}

// InfixExpression represents `<left> <op> <right>`.
type InfixExpression struct {
	Token    lexer.Token // The operator token
	Operator string
	Left     Expression
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// AssignmentExpression represents `<target> <op>= <value>` including plain
// assignment.
type AssignmentExpression struct {
	Token    lexer.Token // The operator token
	Operator string      // "=", "+=", "??=", ...
	Target   Expression
	Value    Expression
}

func (ae *AssignmentExpression) expressionNode()      {}
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) String() string {
	return "(" + ae.Target.String() + " " + ae.Operator + " " + ae.Value.String() + ")"
}

// UpdateExpression represents `x++`, `--x` and friends.
type UpdateExpression struct {
	Token    lexer.Token // The ++ or -- token
	Operator string
	Prefix   bool
	Argument Expression
}

func (ue *UpdateExpression) expressionNode()      {}
func (ue *UpdateExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UpdateExpression) String() string {
	if ue.Prefix {
		return "(" + ue.Operator + ue.Argument.String() + ")"
	}
	return "(" + ue.Argument.String() + ue.Operator + ")"
}

// TernaryExpression represents `cond ? cons : alt`.
type TernaryExpression struct {
	Token       lexer.Token // The '?' token
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (te *TernaryExpression) expressionNode()      {}
func (te *TernaryExpression) TokenLiteral() string { return te.Token.Literal }
func (te *TernaryExpression) String() string {
	return "(" + te.Condition.String() + " ? " + te.Consequence.String() + " : " + te.Alternative.String() + ")"
}

// CallExpression represents `<fn>(<args>)`, optionally `?.()`.
type CallExpression struct {
	Token     lexer.Token // The lexer.LPAREN token
	Function  Expression
	Arguments []Expression
	Optional  bool // fn?.(...)
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	parts := make([]string, len(ce.Arguments))
	for i, a := range ce.Arguments {
		parts[i] = a.String()
	}
	sep := "("
	if ce.Optional {
		sep = "?.("
	}
	return ce.Function.String() + sep + strings.Join(parts, ", ") + ")"
}

// NewExpression represents `new Callee(args)`.
type NewExpression struct {
	Token     lexer.Token // The lexer.NEW token
	Callee    Expression
	Arguments []Expression
}

func (ne *NewExpression) expressionNode()      {}
func (ne *NewExpression) TokenLiteral() string { return ne.Token.Literal }
func (ne *NewExpression) String() string {
	parts := make([]string, len(ne.Arguments))
	for i, a := range ne.Arguments {
		parts[i] = a.String()
	}
	return "new " + ne.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}

// MemberExpression represents `obj.prop`, optionally `obj?.prop`.
type MemberExpression struct {
	Token    lexer.Token // The '.' or '?.' token
	Object   Expression
	Property *Identifier
	Optional bool
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) String() string {
	sep := "."
	if me.Optional {
		sep = "?."
	}
	return me.Object.String() + sep + me.Property.String()
}

// IndexExpression represents computed member access `obj[expr]`,
// optionally `obj?.[expr]`.
type IndexExpression struct {
	Token    lexer.Token // The lexer.LBRACKET token
	Left     Expression
	Index    Expression
	Optional bool
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) String() string {
	open := "["
	if ie.Optional {
		open = "?.["
	}
	return ie.Left.String() + open + ie.Index.String() + "]"
}

// SequenceExpression represents the comma operator `a, b, c`.
type SequenceExpression struct {
	Token       lexer.Token // The lexer.COMMA token
	Expressions []Expression
}

func (se *SequenceExpression) expressionNode()      {}
func (se *SequenceExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SequenceExpression) String() string {
	parts := make([]string, len(se.Expressions))
	for i, e := range se.Expressions {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ThisExpression represents `this`.
type ThisExpression struct {
	Token lexer.Token
}

func (te *ThisExpression) expressionNode()      {}
func (te *ThisExpression) TokenLiteral() string { return te.Token.Literal }
func (te *ThisExpression) String() string       { return "this" }
