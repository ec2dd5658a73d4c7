package parser

import "inlay/pkg/lexer"

// ASTArena bump-allocates the node kinds the parser churns through the
// most, cutting per-node GC overhead when a whole module graph is
// parsed in one session. Nodes live as long as the arena: passes key
// side tables on node identity, so backing memory is never recycled
// while a session holds trees. Nodes built on a parse path that is
// later backtracked away are simply abandoned in place.
type ASTArena struct {
	identifiers       []Identifier
	numberLiterals    []NumberLiteral
	stringLiterals    []StringLiteral
	infixExpressions  []InfixExpression
	prefixExpressions []PrefixExpression
	callExpressions   []CallExpression
	memberExpressions []MemberExpression
}

// NewASTArena creates an arena with capacity for a typical module.
func NewASTArena() *ASTArena {
	return &ASTArena{
		identifiers:       make([]Identifier, 0, 256),
		numberLiterals:    make([]NumberLiteral, 0, 64),
		stringLiterals:    make([]StringLiteral, 0, 64),
		infixExpressions:  make([]InfixExpression, 0, 128),
		prefixExpressions: make([]PrefixExpression, 0, 32),
		callExpressions:   make([]CallExpression, 0, 128),
		memberExpressions: make([]MemberExpression, 0, 128),
	}
}

func (a *ASTArena) NewIdentifier(tok lexer.Token, value string) *Identifier {
	a.identifiers = append(a.identifiers, Identifier{Token: tok, Value: value})
	return &a.identifiers[len(a.identifiers)-1]
}

// NewNumberLiteral returns a node with only the token set; the caller
// fills Value after parsing the literal text.
func (a *ASTArena) NewNumberLiteral(tok lexer.Token) *NumberLiteral {
	a.numberLiterals = append(a.numberLiterals, NumberLiteral{Token: tok})
	return &a.numberLiterals[len(a.numberLiterals)-1]
}

func (a *ASTArena) NewStringLiteral(tok lexer.Token, value string) *StringLiteral {
	a.stringLiterals = append(a.stringLiterals, StringLiteral{Token: tok, Value: value})
	return &a.stringLiterals[len(a.stringLiterals)-1]
}

func (a *ASTArena) NewInfixExpression(tok lexer.Token, operator string, left Expression) *InfixExpression {
	a.infixExpressions = append(a.infixExpressions, InfixExpression{Token: tok, Operator: operator, Left: left})
	return &a.infixExpressions[len(a.infixExpressions)-1]
}

func (a *ASTArena) NewPrefixExpression(tok lexer.Token, operator string) *PrefixExpression {
	a.prefixExpressions = append(a.prefixExpressions, PrefixExpression{Token: tok, Operator: operator})
	return &a.prefixExpressions[len(a.prefixExpressions)-1]
}

func (a *ASTArena) NewCallExpression(tok lexer.Token, function Expression, optional bool) *CallExpression {
	a.callExpressions = append(a.callExpressions, CallExpression{Token: tok, Function: function, Optional: optional})
	return &a.callExpressions[len(a.callExpressions)-1]
}

func (a *ASTArena) NewMemberExpression(tok lexer.Token, object Expression, optional bool) *MemberExpression {
	a.memberExpressions = append(a.memberExpressions, MemberExpression{Token: tok, Object: object, Optional: optional})
	return &a.memberExpressions[len(a.memberExpressions)-1]
}
