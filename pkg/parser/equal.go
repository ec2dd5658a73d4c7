package parser

// Equal reports whether two expressions are the same syntax: identical
// node shapes, operators, names and literal values. Function and arrow
// literals compare by identity, since two textually identical function
// expressions still produce distinct values at runtime.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Identifier:
		y, ok := b.(*Identifier)
		return ok && x.Value == y.Value
	case *NumberLiteral:
		y, ok := b.(*NumberLiteral)
		return ok && x.Value == y.Value
	case *StringLiteral:
		y, ok := b.(*StringLiteral)
		return ok && x.Value == y.Value
	case *BooleanLiteral:
		y, ok := b.(*BooleanLiteral)
		return ok && x.Value == y.Value
	case *NullLiteral:
		_, ok := b.(*NullLiteral)
		return ok
	case *UndefinedLiteral:
		_, ok := b.(*UndefinedLiteral)
		return ok
	case *ThisExpression:
		_, ok := b.(*ThisExpression)
		return ok
	case *RegexLiteral:
		y, ok := b.(*RegexLiteral)
		return ok && x.Value == y.Value
	case *TemplateLiteral:
		y, ok := b.(*TemplateLiteral)
		if !ok || len(x.Quasis) != len(y.Quasis) {
			return false
		}
		for i := range x.Quasis {
			if x.Quasis[i] != y.Quasis[i] {
				return false
			}
		}
		return equalList(x.Expressions, y.Expressions)
	case *ArrayLiteral:
		y, ok := b.(*ArrayLiteral)
		return ok && equalList(x.Elements, y.Elements)
	case *ObjectLiteral:
		y, ok := b.(*ObjectLiteral)
		if !ok || len(x.Properties) != len(y.Properties) {
			return false
		}
		for i, p := range x.Properties {
			q := y.Properties[i]
			if p.Computed != q.Computed || p.Shorthand != q.Shorthand {
				return false
			}
			if !Equal(p.Key, q.Key) || !Equal(p.Value, q.Value) {
				return false
			}
		}
		return true
	case *SpreadElement:
		y, ok := b.(*SpreadElement)
		return ok && Equal(x.Argument, y.Argument)
	case *PrefixExpression:
		y, ok := b.(*PrefixExpression)
		return ok && x.Operator == y.Operator && Equal(x.Right, y.Right)
	case *InfixExpression:
		y, ok := b.(*InfixExpression)
		return ok && x.Operator == y.Operator && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *AssignmentExpression:
		y, ok := b.(*AssignmentExpression)
		return ok && x.Operator == y.Operator && Equal(x.Target, y.Target) && Equal(x.Value, y.Value)
	case *UpdateExpression:
		y, ok := b.(*UpdateExpression)
		return ok && x.Operator == y.Operator && x.Prefix == y.Prefix && Equal(x.Argument, y.Argument)
	case *TernaryExpression:
		y, ok := b.(*TernaryExpression)
		return ok && Equal(x.Condition, y.Condition) && Equal(x.Consequence, y.Consequence) && Equal(x.Alternative, y.Alternative)
	case *CallExpression:
		y, ok := b.(*CallExpression)
		return ok && x.Optional == y.Optional && Equal(x.Function, y.Function) && equalList(x.Arguments, y.Arguments)
	case *NewExpression:
		y, ok := b.(*NewExpression)
		return ok && Equal(x.Callee, y.Callee) && equalList(x.Arguments, y.Arguments)
	case *MemberExpression:
		y, ok := b.(*MemberExpression)
		return ok && x.Optional == y.Optional && x.Property.Value == y.Property.Value && Equal(x.Object, y.Object)
	case *IndexExpression:
		y, ok := b.(*IndexExpression)
		return ok && x.Optional == y.Optional && Equal(x.Left, y.Left) && Equal(x.Index, y.Index)
	case *SequenceExpression:
		y, ok := b.(*SequenceExpression)
		return ok && equalList(x.Expressions, y.Expressions)
	case *FunctionLiteral, *ArrowFunctionLiteral:
		return a == b
	}
	return false
}

func equalList(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
