package parser

import "inlay/pkg/lexer"

// Inspect traverses the AST in depth-first preorder, calling f for each
// node. If f returns false, the node's children are skipped. Nil children
// are never visited.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, s := range n.Statements {
			Inspect(s, f)
		}

	case *LetStatement:
		inspectIdent(n.Name, f)
		inspectExpr(n.Value, f)
	case *ConstStatement:
		inspectIdent(n.Name, f)
		inspectExpr(n.Value, f)
	case *VarStatement:
		inspectIdent(n.Name, f)
		inspectExpr(n.Value, f)
	case *ReturnStatement:
		inspectExpr(n.ReturnValue, f)
	case *ExpressionStatement:
		inspectExpr(n.Expression, f)
	case *BlockStatement:
		for _, s := range n.Statements {
			Inspect(s, f)
		}
	case *FunctionDeclaration:
		inspectIdent(n.Name, f)
		inspectParams(n.Parameters, f)
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *IfStatement:
		inspectExpr(n.Condition, f)
		if n.Consequence != nil {
			Inspect(n.Consequence, f)
		}
		if n.Alternative != nil {
			Inspect(n.Alternative, f)
		}
	case *WhileStatement:
		inspectExpr(n.Condition, f)
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *DoWhileStatement:
		if n.Body != nil {
			Inspect(n.Body, f)
		}
		inspectExpr(n.Condition, f)
	case *ForStatement:
		if n.Init != nil {
			Inspect(n.Init, f)
		}
		inspectExpr(n.Condition, f)
		inspectExpr(n.Update, f)
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *ForOfStatement:
		inspectIdent(n.Variable, f)
		inspectExpr(n.Iterable, f)
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *BreakStatement:
		inspectIdent(n.Label, f)
	case *ContinueStatement:
		inspectIdent(n.Label, f)
	case *LabeledStatement:
		inspectIdent(n.Label, f)
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *ThrowStatement:
		inspectExpr(n.Value, f)
	case *TryStatement:
		if n.Block != nil {
			Inspect(n.Block, f)
		}
		inspectIdent(n.CatchParam, f)
		if n.CatchBlock != nil {
			Inspect(n.CatchBlock, f)
		}
		if n.FinallyBlock != nil {
			Inspect(n.FinallyBlock, f)
		}
	case *SwitchStatement:
		inspectExpr(n.Discriminant, f)
		for _, c := range n.Cases {
			inspectExpr(c.Test, f)
			for _, s := range c.Body {
				Inspect(s, f)
			}
		}
	case *ImportDeclaration:
		inspectIdent(n.Default, f)
		inspectIdent(n.Namespace, f)
		for _, spec := range n.Specifiers {
			inspectIdent(spec.Imported, f)
			inspectIdent(spec.Local, f)
		}
	case *ExportNamedDeclaration:
		if n.Declaration != nil {
			Inspect(n.Declaration, f)
		}
		for _, spec := range n.Specifiers {
			inspectIdent(spec.Local, f)
			inspectIdent(spec.Exported, f)
		}
	case *ExportDefaultDeclaration:
		if n.Declaration != nil {
			Inspect(n.Declaration, f)
		}

	case *Parameter:
		inspectIdent(n.Name, f)
		inspectExpr(n.Default, f)
	case *TemplateLiteral:
		for _, sub := range n.Expressions {
			Inspect(sub, f)
		}
	case *ArrayLiteral:
		for _, el := range n.Elements {
			Inspect(el, f)
		}
	case *ObjectLiteral:
		for _, prop := range n.Properties {
			inspectExpr(prop.Key, f)
			inspectExpr(prop.Value, f)
		}
	case *SpreadElement:
		inspectExpr(n.Argument, f)
	case *FunctionLiteral:
		inspectIdent(n.Name, f)
		inspectParams(n.Parameters, f)
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *ArrowFunctionLiteral:
		inspectParams(n.Parameters, f)
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *PrefixExpression:
		inspectExpr(n.Right, f)
	case *InfixExpression:
		inspectExpr(n.Left, f)
		inspectExpr(n.Right, f)
	case *AssignmentExpression:
		inspectExpr(n.Target, f)
		inspectExpr(n.Value, f)
	case *UpdateExpression:
		inspectExpr(n.Argument, f)
	case *TernaryExpression:
		inspectExpr(n.Condition, f)
		inspectExpr(n.Consequence, f)
		inspectExpr(n.Alternative, f)
	case *CallExpression:
		inspectExpr(n.Function, f)
		for _, arg := range n.Arguments {
			Inspect(arg, f)
		}
	case *NewExpression:
		inspectExpr(n.Callee, f)
		for _, arg := range n.Arguments {
			Inspect(arg, f)
		}
	case *MemberExpression:
		inspectExpr(n.Object, f)
		inspectIdent(n.Property, f)
	case *IndexExpression:
		inspectExpr(n.Left, f)
		inspectExpr(n.Index, f)
	case *SequenceExpression:
		for _, sub := range n.Expressions {
			Inspect(sub, f)
		}
	}
}

func inspectExpr(e Expression, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}

func inspectIdent(id *Identifier, f func(Node) bool) {
	if id != nil {
		Inspect(id, f)
	}
}

func inspectParams(params []*Parameter, f func(Node) bool) {
	for _, p := range params {
		Inspect(p, f)
	}
}

// Replace swaps the expression old for repl wherever old appears as a
// direct child inside root, matching by node identity. It reports
// whether a swap happened. Identifier-only positions (member
// properties, parameter names, labels) are never candidates.
func Replace(root Node, old, repl Expression) bool {
	if root == nil || old == nil {
		return false
	}
	switch n := root.(type) {
	case *Program:
		for _, s := range n.Statements {
			if Replace(s, old, repl) {
				return true
			}
		}

	case *LetStatement:
		return replaceAt(&n.Value, old, repl)
	case *ConstStatement:
		return replaceAt(&n.Value, old, repl)
	case *VarStatement:
		return replaceAt(&n.Value, old, repl)
	case *ReturnStatement:
		return replaceAt(&n.ReturnValue, old, repl)
	case *ExpressionStatement:
		return replaceAt(&n.Expression, old, repl)
	case *BlockStatement:
		if n == nil {
			return false
		}
		for _, s := range n.Statements {
			if Replace(s, old, repl) {
				return true
			}
		}
	case *FunctionDeclaration:
		return replaceInParams(n.Parameters, old, repl) ||
			Replace(n.Body, old, repl)
	case *IfStatement:
		return replaceAt(&n.Condition, old, repl) ||
			Replace(n.Consequence, old, repl) ||
			Replace(n.Alternative, old, repl)
	case *WhileStatement:
		return replaceAt(&n.Condition, old, repl) || Replace(n.Body, old, repl)
	case *DoWhileStatement:
		return Replace(n.Body, old, repl) || replaceAt(&n.Condition, old, repl)
	case *ForStatement:
		return Replace(n.Init, old, repl) ||
			replaceAt(&n.Condition, old, repl) ||
			replaceAt(&n.Update, old, repl) ||
			Replace(n.Body, old, repl)
	case *ForOfStatement:
		return replaceAt(&n.Iterable, old, repl) || Replace(n.Body, old, repl)
	case *LabeledStatement:
		return Replace(n.Body, old, repl)
	case *ThrowStatement:
		return replaceAt(&n.Value, old, repl)
	case *TryStatement:
		return Replace(n.Block, old, repl) ||
			Replace(n.CatchBlock, old, repl) ||
			Replace(n.FinallyBlock, old, repl)
	case *SwitchStatement:
		if replaceAt(&n.Discriminant, old, repl) {
			return true
		}
		for _, c := range n.Cases {
			if replaceAt(&c.Test, old, repl) {
				return true
			}
			for _, s := range c.Body {
				if Replace(s, old, repl) {
					return true
				}
			}
		}
	case *ExportNamedDeclaration:
		return Replace(n.Declaration, old, repl)
	case *ExportDefaultDeclaration:
		if n.Declaration == old {
			n.Declaration = repl
			return true
		}
		return Replace(n.Declaration, old, repl)

	case *Parameter:
		return replaceAt(&n.Default, old, repl)
	case *TemplateLiteral:
		return replaceInList(n.Expressions, old, repl)
	case *ArrayLiteral:
		return replaceInList(n.Elements, old, repl)
	case *ObjectLiteral:
		for _, prop := range n.Properties {
			if prop.Computed && replaceAt(&prop.Key, old, repl) {
				return true
			}
			if replaceAt(&prop.Value, old, repl) {
				return true
			}
		}
	case *SpreadElement:
		return replaceAt(&n.Argument, old, repl)
	case *FunctionLiteral:
		return replaceInParams(n.Parameters, old, repl) ||
			Replace(n.Body, old, repl)
	case *ArrowFunctionLiteral:
		if replaceInParams(n.Parameters, old, repl) {
			return true
		}
		if n.Body == old {
			n.Body = repl
			return true
		}
		return Replace(n.Body, old, repl)
	case *PrefixExpression:
		return replaceAt(&n.Right, old, repl)
	case *InfixExpression:
		return replaceAt(&n.Left, old, repl) || replaceAt(&n.Right, old, repl)
	case *AssignmentExpression:
		return replaceAt(&n.Target, old, repl) || replaceAt(&n.Value, old, repl)
	case *UpdateExpression:
		return replaceAt(&n.Argument, old, repl)
	case *TernaryExpression:
		return replaceAt(&n.Condition, old, repl) ||
			replaceAt(&n.Consequence, old, repl) ||
			replaceAt(&n.Alternative, old, repl)
	case *CallExpression:
		return replaceAt(&n.Function, old, repl) ||
			replaceInList(n.Arguments, old, repl)
	case *NewExpression:
		return replaceAt(&n.Callee, old, repl) ||
			replaceInList(n.Arguments, old, repl)
	case *MemberExpression:
		return replaceAt(&n.Object, old, repl)
	case *IndexExpression:
		return replaceAt(&n.Left, old, repl) || replaceAt(&n.Index, old, repl)
	case *SequenceExpression:
		return replaceInList(n.Expressions, old, repl)
	}
	return false
}

// replaceAt handles one settable expression slot: swap on identity,
// otherwise recurse.
func replaceAt(slot *Expression, old, repl Expression) bool {
	if *slot == nil {
		return false
	}
	if *slot == old {
		*slot = repl
		return true
	}
	return Replace(*slot, old, repl)
}

func replaceInList(list []Expression, old, repl Expression) bool {
	for i := range list {
		if replaceAt(&list[i], old, repl) {
			return true
		}
	}
	return false
}

func replaceInParams(params []*Parameter, old, repl Expression) bool {
	for _, p := range params {
		if replaceAt(&p.Default, old, repl) {
			return true
		}
	}
	return false
}

// FirstToken returns the leftmost token of a node, which carries the
// node's starting position. Composite expressions anchor their token on
// the operator, so this walks down the left spine.
func FirstToken(node Node) lexer.Token {
	switch n := node.(type) {
	case *Program:
		if len(n.Statements) > 0 {
			return FirstToken(n.Statements[0])
		}
		return lexer.Token{}
	case *ExpressionStatement:
		if n.Expression != nil {
			return FirstToken(n.Expression)
		}
		return n.Token
	case *ExportNamedDeclaration:
		return n.Token
	case *ExportDefaultDeclaration:
		return n.Token
	case *InfixExpression:
		return FirstToken(n.Left)
	case *AssignmentExpression:
		return FirstToken(n.Target)
	case *TernaryExpression:
		return FirstToken(n.Condition)
	case *CallExpression:
		return FirstToken(n.Function)
	case *MemberExpression:
		return FirstToken(n.Object)
	case *IndexExpression:
		return FirstToken(n.Left)
	case *UpdateExpression:
		if !n.Prefix {
			return FirstToken(n.Argument)
		}
		return n.Token
	case *SequenceExpression:
		if len(n.Expressions) > 0 {
			return FirstToken(n.Expressions[0])
		}
		return n.Token
	default:
		return tokenOf(node)
	}
}

// tokenOf pulls the anchor token off any node type that has one.
func tokenOf(node Node) lexer.Token {
	switch n := node.(type) {
	case *LetStatement:
		return n.Token
	case *ConstStatement:
		return n.Token
	case *VarStatement:
		return n.Token
	case *ReturnStatement:
		return n.Token
	case *BlockStatement:
		return n.Token
	case *FunctionDeclaration:
		return n.Token
	case *IfStatement:
		return n.Token
	case *WhileStatement:
		return n.Token
	case *DoWhileStatement:
		return n.Token
	case *ForStatement:
		return n.Token
	case *ForOfStatement:
		return n.Token
	case *BreakStatement:
		return n.Token
	case *ContinueStatement:
		return n.Token
	case *LabeledStatement:
		return n.Token
	case *ThrowStatement:
		return n.Token
	case *TryStatement:
		return n.Token
	case *SwitchStatement:
		return n.Token
	case *ImportDeclaration:
		return n.Token
	case *Identifier:
		return n.Token
	case *Parameter:
		return n.Token
	case *NumberLiteral:
		return n.Token
	case *StringLiteral:
		return n.Token
	case *BooleanLiteral:
		return n.Token
	case *NullLiteral:
		return n.Token
	case *UndefinedLiteral:
		return n.Token
	case *RegexLiteral:
		return n.Token
	case *TemplateLiteral:
		return n.Token
	case *ArrayLiteral:
		return n.Token
	case *ObjectLiteral:
		return n.Token
	case *SpreadElement:
		return n.Token
	case *FunctionLiteral:
		return n.Token
	case *ArrowFunctionLiteral:
		return n.Token
	case *PrefixExpression:
		return n.Token
	case *NewExpression:
		return n.Token
	case *ThisExpression:
		return n.Token
	}
	return lexer.Token{}
}

// StartPos returns the byte offset where a node's source text begins.
func StartPos(node Node) int {
	return FirstToken(node).StartPos
}
