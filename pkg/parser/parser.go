package parser

import (
	"fmt"

	"inlay/pkg/errors"
	"inlay/pkg/lexer"
	"inlay/pkg/source"
)

// --- Debug Flag ---
const debugParser = false

func debugPrint(format string, args ...interface{}) {
	if debugParser {
		fmt.Printf("[Parser Debug] "+format+"\n", args...)
	}
}

// Parser takes a lexer and builds an AST.
type Parser struct {
	l      *lexer.Lexer
	source *source.SourceFile // cached from lexer
	errors []errors.InlayError
	arena  *ASTArena

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// Parsing function types for the Pratt parser
type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression // Arg is the left side expression
)

// Precedence levels
const (
	_ int = iota
	LOWEST
	COMMA         // , (very low precedence, but higher than LOWEST)
	ARG_SEPARATOR // Virtual precedence level for argument list parsing (between COMMA and ASSIGNMENT)
	ASSIGNMENT    // =, +=, -=, *=, /=, %=, **=, &=, |=, ^=, <<=, >>=, >>>=, &&=, ||=, ??=
	TERNARY       // ?:
	COALESCE      // ??
	LOGICAL_OR    // ||
	LOGICAL_AND   // &&
	BITWISE_OR    // |  (Lower than XOR)
	BITWISE_XOR   // ^  (Lower than AND)
	BITWISE_AND   // &  (Lower than Equality)
	EQUALS        // ==, !=, ===, !==
	LESSGREATER   // >, <, >=, <=, in, instanceof
	SHIFT         // <<, >>, >>> (Lower than Add/Sub)
	SUM           // + or -
	PRODUCT       // * or / or %
	POWER         // ** (Right-associative handled in parseInfix)
	PREFIX        // -X or !X or ++X or --X or ~X
	POSTFIX       // X++ or X--
	CALL          // myFunction(X)
	INDEX         // array[index]
	MEMBER        // object.property
)

// Precedences map for operator tokens
var precedences = map[lexer.TokenType]int{
	// Comma operator (Lowest precedence)
	lexer.COMMA: COMMA,
	// Assignment (Lowest operational precedence)
	lexer.ASSIGN:                      ASSIGNMENT,
	lexer.PLUS_ASSIGN:                 ASSIGNMENT,
	lexer.MINUS_ASSIGN:                ASSIGNMENT,
	lexer.ASTERISK_ASSIGN:             ASSIGNMENT,
	lexer.SLASH_ASSIGN:                ASSIGNMENT,
	lexer.REMAINDER_ASSIGN:            ASSIGNMENT,
	lexer.EXPONENT_ASSIGN:             ASSIGNMENT,
	lexer.BITWISE_AND_ASSIGN:          ASSIGNMENT,
	lexer.BITWISE_OR_ASSIGN:           ASSIGNMENT,
	lexer.BITWISE_XOR_ASSIGN:          ASSIGNMENT,
	lexer.LEFT_SHIFT_ASSIGN:           ASSIGNMENT,
	lexer.RIGHT_SHIFT_ASSIGN:          ASSIGNMENT,
	lexer.UNSIGNED_RIGHT_SHIFT_ASSIGN: ASSIGNMENT,
	lexer.LOGICAL_AND_ASSIGN:          ASSIGNMENT,
	lexer.LOGICAL_OR_ASSIGN:           ASSIGNMENT,
	lexer.COALESCE_ASSIGN:             ASSIGNMENT,

	// Ternary, Logical, Coalescing
	lexer.QUESTION:    TERNARY,
	lexer.COALESCE:    COALESCE,
	lexer.LOGICAL_OR:  LOGICAL_OR,
	lexer.LOGICAL_AND: LOGICAL_AND,

	// Bitwise (Order: | < ^ < &)
	lexer.PIPE:        BITWISE_OR,
	lexer.BITWISE_XOR: BITWISE_XOR,
	lexer.BITWISE_AND: BITWISE_AND,

	// Equality
	lexer.EQ:            EQUALS,
	lexer.NOT_EQ:        EQUALS,
	lexer.STRICT_EQ:     EQUALS,
	lexer.STRICT_NOT_EQ: EQUALS,

	// Comparison
	lexer.LT:         LESSGREATER,
	lexer.GT:         LESSGREATER,
	lexer.LE:         LESSGREATER,
	lexer.GE:         LESSGREATER,
	lexer.IN:         LESSGREATER,
	lexer.INSTANCEOF: LESSGREATER,

	// Shift
	lexer.LEFT_SHIFT:           SHIFT,
	lexer.RIGHT_SHIFT:          SHIFT,
	lexer.UNSIGNED_RIGHT_SHIFT: SHIFT,

	// Arithmetic
	lexer.PLUS:      SUM,
	lexer.MINUS:     SUM,
	lexer.SLASH:     PRODUCT,
	lexer.ASTERISK:  PRODUCT,
	lexer.REMAINDER: PRODUCT,
	lexer.EXPONENT:  POWER, // Right-associative handled in infix parsing

	// Call, Index, Member Access
	lexer.LPAREN:            CALL,
	lexer.LBRACKET:          INDEX,
	lexer.DOT:               MEMBER,
	lexer.OPTIONAL_CHAINING: MEMBER, // Same precedence as regular member access

	// Postfix operators need precedence for the parseExpression loop termination condition
	lexer.INC: POSTFIX,
	lexer.DEC: POSTFIX,
}

// NewParser creates a new Parser.
func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		source: l.GetSource(), // Cache source from lexer
		errors: []errors.InlayError{},
		arena:  NewASTArena(),
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)

	// --- Register Prefix Functions ---
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.REGEX_LITERAL, p.parseRegexLiteral)
	p.registerPrefix(lexer.TEMPLATE_STRING, p.parseTemplateLiteral)
	p.registerPrefix(lexer.TEMPLATE_START, p.parseTemplateLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.NULL, p.parseNullLiteral)
	p.registerPrefix(lexer.UNDEFINED, p.parseUndefinedLiteral)
	p.registerPrefix(lexer.THIS, p.parseThisExpression)
	p.registerPrefix(lexer.NEW, p.parseNewExpression)
	p.registerPrefix(lexer.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.PLUS, p.parsePrefixExpression) // Unary plus
	p.registerPrefix(lexer.BITWISE_NOT, p.parsePrefixExpression)
	p.registerPrefix(lexer.TYPEOF, p.parsePrefixExpression)
	p.registerPrefix(lexer.VOID, p.parsePrefixExpression)
	p.registerPrefix(lexer.DELETE, p.parsePrefixExpression)
	p.registerPrefix(lexer.INC, p.parsePrefixUpdateExpression)
	p.registerPrefix(lexer.DEC, p.parsePrefixUpdateExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseObjectLiteral)
	p.registerPrefix(lexer.SPREAD, p.parseSpreadElement)

	// --- Register Infix Functions ---
	// Arithmetic & Comparison/Logical
	p.registerInfix(lexer.PLUS, p.parseInfixExpression)
	p.registerInfix(lexer.MINUS, p.parseInfixExpression)
	p.registerInfix(lexer.SLASH, p.parseInfixExpression)
	p.registerInfix(lexer.ASTERISK, p.parseInfixExpression)
	p.registerInfix(lexer.REMAINDER, p.parseInfixExpression)
	p.registerInfix(lexer.EXPONENT, p.parseInfixExpression)
	p.registerInfix(lexer.EQ, p.parseInfixExpression)
	p.registerInfix(lexer.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(lexer.STRICT_EQ, p.parseInfixExpression)
	p.registerInfix(lexer.STRICT_NOT_EQ, p.parseInfixExpression)
	p.registerInfix(lexer.LT, p.parseInfixExpression)
	p.registerInfix(lexer.GT, p.parseInfixExpression)
	p.registerInfix(lexer.LE, p.parseInfixExpression)
	p.registerInfix(lexer.GE, p.parseInfixExpression)
	p.registerInfix(lexer.IN, p.parseInfixExpression)
	p.registerInfix(lexer.INSTANCEOF, p.parseInfixExpression)
	p.registerInfix(lexer.LOGICAL_AND, p.parseInfixExpression)
	p.registerInfix(lexer.LOGICAL_OR, p.parseInfixExpression)
	p.registerInfix(lexer.COALESCE, p.parseInfixExpression)
	// Bitwise and Shift
	p.registerInfix(lexer.BITWISE_AND, p.parseInfixExpression)
	p.registerInfix(lexer.PIPE, p.parseInfixExpression)
	p.registerInfix(lexer.BITWISE_XOR, p.parseInfixExpression)
	p.registerInfix(lexer.LEFT_SHIFT, p.parseInfixExpression)
	p.registerInfix(lexer.RIGHT_SHIFT, p.parseInfixExpression)
	p.registerInfix(lexer.UNSIGNED_RIGHT_SHIFT, p.parseInfixExpression)

	// Call, Index, Member, Ternary
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)
	p.registerInfix(lexer.DOT, p.parseMemberExpression)
	p.registerInfix(lexer.OPTIONAL_CHAINING, p.parseOptionalChainingExpression)
	p.registerInfix(lexer.QUESTION, p.parseTernaryExpression)
	// Assignment Operators
	p.registerInfix(lexer.ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.PLUS_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.MINUS_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.ASTERISK_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.SLASH_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.REMAINDER_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.EXPONENT_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.BITWISE_AND_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.BITWISE_OR_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.BITWISE_XOR_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.LEFT_SHIFT_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.RIGHT_SHIFT_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.UNSIGNED_RIGHT_SHIFT_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.LOGICAL_AND_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.LOGICAL_OR_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.COALESCE_ASSIGN, p.parseAssignmentExpression)

	// Postfix Update Operators
	p.registerInfix(lexer.INC, p.parsePostfixUpdateExpression)
	p.registerInfix(lexer.DEC, p.parsePostfixUpdateExpression)
	// Comma operator
	p.registerInfix(lexer.COMMA, p.parseCommaExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	debugPrint("nextToken(): cur='%s' (%s), peek='%s' (%s)", p.curToken.Literal, p.curToken.Type, p.peekToken.Literal, p.peekToken.Type)
}

// makeIdent allocates an identifier node for tok from the arena.
func (p *Parser) makeIdent(tok lexer.Token) *Identifier {
	return p.arena.NewIdentifier(tok, tok.Literal)
}

func (p *Parser) makeString(tok lexer.Token) *StringLiteral {
	return p.arena.NewStringLiteral(tok, tok.Literal)
}

// parserState captures parser and lexer position for backtracking.
type parserState struct {
	lexState  lexer.State
	curToken  lexer.Token
	peekToken lexer.Token
	errCount  int
}

func (p *Parser) saveState() parserState {
	return parserState{
		lexState:  p.l.State(),
		curToken:  p.curToken,
		peekToken: p.peekToken,
		errCount:  len(p.errors),
	}
}

func (p *Parser) restoreState(s parserState) {
	p.l.Restore(s.lexState)
	p.curToken = s.curToken
	p.peekToken = s.peekToken
	if s.errCount <= len(p.errors) {
		p.errors = p.errors[:s.errCount]
	}
}

// ParseProgram parses the entire input and returns the root Program node and any errors.
func (p *Parser) ParseProgram() (*Program, []errors.InlayError) {
	program := &Program{}
	program.Statements = []Statement{}

	for p.curToken.Type != lexer.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		if p.curToken.Type != lexer.EOF {
			p.nextToken()
		} else {
			break
		}
	}

	return program, p.errors
}

// --- Statement Parsing ---

func (p *Parser) parseStatement() Statement {
	debugPrint("parseStatement: cur='%s' (%s), peek='%s' (%s)", p.curToken.Literal, p.curToken.Type, p.peekToken.Literal, p.peekToken.Type)
	switch p.curToken.Type {
	case lexer.LET:
		return p.parseLetStatement()
	case lexer.CONST:
		return p.parseConstStatement()
	case lexer.VAR:
		return p.parseVarStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.DO:
		return p.parseDoWhileStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.BREAK:
		return p.parseBreakStatement()
	case lexer.CONTINUE:
		return p.parseContinueStatement()
	case lexer.SWITCH:
		return p.parseSwitchStatement()
	case lexer.FUNCTION:
		return p.parseFunctionDeclaration()
	case lexer.TRY:
		return p.parseTryStatement()
	case lexer.THROW:
		return p.parseThrowStatement()
	case lexer.IMPORT:
		return p.parseImportDeclaration()
	case lexer.EXPORT:
		return p.parseExportDeclaration()
	case lexer.LBRACE:
		return p.parseBlockStatement()
	case lexer.SEMICOLON:
		// Empty statement; nothing to represent
		return nil
	case lexer.RBRACE:
		// End of current block scope; let the caller handle it
		return nil
	case lexer.IDENT:
		// A labeled statement is an identifier directly followed by a colon
		if p.peekTokenIs(lexer.COLON) {
			return p.parseLabeledStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() Statement {
	stmt := &LetStatement{Token: p.curToken}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = p.makeIdent(p.curToken)
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken() // move to '='
		p.nextToken() // move to the value expression
		stmt.Value = p.parseExpression(ARG_SEPARATOR)
	}
	p.consumeOptionalSemicolon()
	return stmt
}

func (p *Parser) parseConstStatement() Statement {
	stmt := &ConstStatement{Token: p.curToken}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = p.makeIdent(p.curToken)
	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(ARG_SEPARATOR)
	p.consumeOptionalSemicolon()
	return stmt
}

func (p *Parser) parseVarStatement() Statement {
	stmt := &VarStatement{Token: p.curToken}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Name = p.makeIdent(p.curToken)
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Value = p.parseExpression(ARG_SEPARATOR)
	}
	p.consumeOptionalSemicolon()
	return stmt
}

func (p *Parser) parseReturnStatement() Statement {
	stmt := &ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	if p.peekTokenIs(lexer.RBRACE) || p.peekTokenIs(lexer.EOF) {
		return stmt
	}
	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)
	p.consumeOptionalSemicolon()
	return stmt
}

func (p *Parser) parseExpressionStatement() Statement {
	stmt := &ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	p.consumeOptionalSemicolon()
	return stmt
}

// parseBlockStatement parses `{ ... }`. curToken must be LBRACE on entry;
// it is RBRACE on exit.
func (p *Parser) parseBlockStatement() *BlockStatement {
	block := &BlockStatement{Token: p.curToken}
	block.Statements = []Statement{}

	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	if p.curTokenIs(lexer.EOF) {
		p.addError(p.curToken, "unexpected end of input, expected '}'")
	}
	return block
}

// parseStatementAsBlock parses either a braced block or a single statement
// wrapped into a synthetic block, so statement bodies are uniform.
func (p *Parser) parseStatementAsBlock() *BlockStatement {
	if p.curTokenIs(lexer.LBRACE) {
		return p.parseBlockStatement()
	}
	block := &BlockStatement{Token: p.curToken}
	stmt := p.parseStatement()
	if stmt != nil {
		block.Statements = []Statement{stmt}
	}
	return block
}

func (p *Parser) parseFunctionDeclaration() Statement {
	decl := &FunctionDeclaration{Token: p.curToken}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	decl.Name = p.makeIdent(p.curToken)
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	decl.Parameters = p.parseFunctionParameters()
	if decl.Parameters == nil {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	decl.Body = p.parseBlockStatement()
	return decl
}

// parseFunctionParameters parses `(a, b = 1, ...rest)`. curToken must be
// LPAREN on entry; it is RPAREN on exit. Returns nil on error.
func (p *Parser) parseFunctionParameters() []*Parameter {
	params := []*Parameter{}

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}

	for {
		p.nextToken()
		param := &Parameter{Token: p.curToken}
		if p.curTokenIs(lexer.SPREAD) {
			param.Rest = true
			if !p.expectPeek(lexer.IDENT) {
				return nil
			}
		} else if !p.curTokenIs(lexer.IDENT) {
			p.addError(p.curToken, fmt.Sprintf("expected parameter name, got %s", p.curToken.Type))
			return nil
		}
		param.Name = p.makeIdent(p.curToken)
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			param.Default = p.parseExpression(ARG_SEPARATOR)
		}
		params = append(params, param)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseIfStatement() Statement {
	stmt := &IfStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Consequence = p.parseStatementAsBlock()

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken() // move to 'else'
		p.nextToken() // move to '{' or 'if' or single statement
		if p.curTokenIs(lexer.IF) {
			stmt.Alternative = p.parseIfStatement()
		} else {
			stmt.Alternative = p.parseStatementAsBlock()
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() Statement {
	stmt := &WhileStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseStatementAsBlock()
	return stmt
}

func (p *Parser) parseDoWhileStatement() Statement {
	stmt := &DoWhileStatement{Token: p.curToken}
	p.nextToken()
	stmt.Body = p.parseStatementAsBlock()
	if !p.expectPeek(lexer.WHILE) {
		return nil
	}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.consumeOptionalSemicolon()
	return stmt
}

func (p *Parser) parseForStatement() Statement {
	forToken := p.curToken
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}

	// Declarator-led loops can be classic or for-of/for-in
	if p.peekTokenIs(lexer.LET) || p.peekTokenIs(lexer.CONST) || p.peekTokenIs(lexer.VAR) {
		declToken := p.peekToken
		p.nextToken() // move to declarator
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		name := p.makeIdent(p.curToken)

		if p.peekTokenIs(lexer.IN) || p.peekIsContextual("of") {
			ofLoop := !p.peekTokenIs(lexer.IN)
			p.nextToken() // move to 'of'/'in'
			p.nextToken() // move to the iterable
			stmt := &ForOfStatement{
				Token:       forToken,
				Declaration: declToken.Type,
				Variable:    name,
				Of:          ofLoop,
			}
			stmt.Iterable = p.parseExpression(LOWEST)
			if !p.expectPeek(lexer.RPAREN) {
				return nil
			}
			p.nextToken()
			stmt.Body = p.parseStatementAsBlock()
			return stmt
		}

		// Classic loop with a declaration initializer
		init := p.finishForDeclarator(declToken, name)
		return p.parseClassicFor(forToken, init)
	}

	// No declarator: empty init or an expression init
	var init Statement
	if !p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil
		}
		// `for (x in obj)` parses as an infix 'in' expression; unwrap it
		if inExpr, ok := expr.(*InfixExpression); ok && inExpr.Operator == "in" && p.peekTokenIs(lexer.RPAREN) {
			if name, ok := inExpr.Left.(*Identifier); ok {
				p.nextToken() // move to ')'
				p.nextToken()
				stmt := &ForOfStatement{Token: forToken, Variable: name, Of: false, Iterable: inExpr.Right}
				stmt.Body = p.parseStatementAsBlock()
				return stmt
			}
		}
		if name, ok := expr.(*Identifier); ok && p.peekIsContextual("of") {
			p.nextToken() // move to 'of'
			p.nextToken() // move to the iterable
			stmt := &ForOfStatement{Token: forToken, Variable: name, Of: true}
			stmt.Iterable = p.parseExpression(LOWEST)
			if !p.expectPeek(lexer.RPAREN) {
				return nil
			}
			p.nextToken()
			stmt.Body = p.parseStatementAsBlock()
			return stmt
		}
		init = &ExpressionStatement{Token: forToken, Expression: expr}
	}
	return p.parseClassicFor(forToken, init)
}

// finishForDeclarator completes `let x = ...` inside a for-init after the
// declarator keyword and name have been consumed.
func (p *Parser) finishForDeclarator(declToken lexer.Token, name *Identifier) Statement {
	var value Expression
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		value = p.parseExpression(ARG_SEPARATOR)
	}
	switch declToken.Type {
	case lexer.CONST:
		return &ConstStatement{Token: declToken, Name: name, Value: value}
	case lexer.VAR:
		return &VarStatement{Token: declToken, Name: name, Value: value}
	default:
		return &LetStatement{Token: declToken, Name: name, Value: value}
	}
}

// parseClassicFor parses the rest of `for (init; cond; update) body` once
// the init clause is done. curToken is the last token of init (or '(').
func (p *Parser) parseClassicFor(forToken lexer.Token, init Statement) Statement {
	stmt := &ForStatement{Token: forToken, Init: init}

	if !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}
	if !p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		stmt.Condition = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}
	if !p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		stmt.Update = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseStatementAsBlock()
	return stmt
}

func (p *Parser) parseBreakStatement() Statement {
	stmt := &BreakStatement{Token: p.curToken}
	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		stmt.Label = p.makeIdent(p.curToken)
	}
	p.consumeOptionalSemicolon()
	return stmt
}

func (p *Parser) parseContinueStatement() Statement {
	stmt := &ContinueStatement{Token: p.curToken}
	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		stmt.Label = p.makeIdent(p.curToken)
	}
	p.consumeOptionalSemicolon()
	return stmt
}

func (p *Parser) parseLabeledStatement() Statement {
	stmt := &LabeledStatement{Token: p.curToken}
	stmt.Label = p.makeIdent(p.curToken)
	p.nextToken() // move to ':'
	p.nextToken() // move to the labeled statement
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		p.addError(p.curToken, fmt.Sprintf("expected statement after label '%s'", stmt.Label.Value))
		return nil
	}
	return stmt
}

func (p *Parser) parseThrowStatement() Statement {
	stmt := &ThrowStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	p.consumeOptionalSemicolon()
	return stmt
}

func (p *Parser) parseTryStatement() Statement {
	stmt := &TryStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Block = p.parseBlockStatement()

	if p.peekTokenIs(lexer.CATCH) {
		p.nextToken()
		if p.peekTokenIs(lexer.LPAREN) {
			p.nextToken()
			if !p.expectPeek(lexer.IDENT) {
				return nil
			}
			stmt.CatchParam = p.makeIdent(p.curToken)
			if !p.expectPeek(lexer.RPAREN) {
				return nil
			}
		}
		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		stmt.CatchBlock = p.parseBlockStatement()
	}

	if p.peekTokenIs(lexer.FINALLY) {
		p.nextToken()
		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		stmt.FinallyBlock = p.parseBlockStatement()
	}

	if stmt.CatchBlock == nil && stmt.FinallyBlock == nil {
		p.addError(stmt.Token, "try statement requires a catch or finally clause")
		return nil
	}
	return stmt
}

func (p *Parser) parseSwitchStatement() Statement {
	stmt := &SwitchStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Discriminant = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(lexer.RBRACE) && !p.peekTokenIs(lexer.EOF) {
		p.nextToken()
		c := &SwitchCase{Token: p.curToken}
		switch p.curToken.Type {
		case lexer.CASE:
			p.nextToken()
			c.Test = p.parseExpression(LOWEST)
			if !p.expectPeek(lexer.COLON) {
				return nil
			}
		case lexer.DEFAULT:
			if !p.expectPeek(lexer.COLON) {
				return nil
			}
		default:
			p.addError(p.curToken, fmt.Sprintf("expected 'case' or 'default' in switch body, got %s", p.curToken.Type))
			return nil
		}
		for !p.peekTokenIs(lexer.CASE) && !p.peekTokenIs(lexer.DEFAULT) &&
			!p.peekTokenIs(lexer.RBRACE) && !p.peekTokenIs(lexer.EOF) {
			p.nextToken()
			if s := p.parseStatement(); s != nil {
				c.Body = append(c.Body, s)
			}
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return stmt
}

// --- Module Statements ---

func (p *Parser) parseImportDeclaration() Statement {
	decl := &ImportDeclaration{Token: p.curToken}

	// Side-effect import: import "m";
	if p.peekTokenIs(lexer.STRING) {
		p.nextToken()
		decl.Source = p.makeString(p.curToken)
		p.consumeOptionalSemicolon()
		return decl
	}

	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		decl.Default = p.makeIdent(p.curToken)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}

	if p.peekTokenIs(lexer.ASTERISK) {
		p.nextToken()
		if !p.expectContextual("as") {
			return nil
		}
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		decl.Namespace = p.makeIdent(p.curToken)
	} else if p.peekTokenIs(lexer.LBRACE) {
		p.nextToken()
		specs := p.parseImportSpecifiers()
		if specs == nil {
			return nil
		}
		decl.Specifiers = specs
	}

	if decl.Default == nil && decl.Namespace == nil && len(decl.Specifiers) == 0 {
		p.addError(p.curToken, "import declaration has nothing to bind")
		return nil
	}

	if !p.expectContextual("from") {
		return nil
	}
	if !p.expectPeek(lexer.STRING) {
		return nil
	}
	decl.Source = p.makeString(p.curToken)
	p.consumeOptionalSemicolon()
	return decl
}

// parseImportSpecifiers parses `{ a, b as c }`. curToken must be LBRACE on
// entry; it is RBRACE on exit.
func (p *Parser) parseImportSpecifiers() []*ImportSpecifier {
	specs := []*ImportSpecifier{}
	if p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		return specs
	}
	for {
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		spec := &ImportSpecifier{}
		spec.Imported = p.makeIdent(p.curToken)
		spec.Local = spec.Imported
		if p.peekIsContextual("as") {
			p.nextToken()
			if !p.expectPeek(lexer.IDENT) {
				return nil
			}
			spec.Local = p.makeIdent(p.curToken)
		}
		specs = append(specs, spec)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return specs
}

func (p *Parser) parseExportDeclaration() Statement {
	exportToken := p.curToken

	switch {
	case p.peekTokenIs(lexer.DEFAULT):
		p.nextToken() // move to 'default'
		decl := &ExportDefaultDeclaration{Token: exportToken}
		p.nextToken()
		if p.curTokenIs(lexer.FUNCTION) {
			decl.Declaration = p.parseFunctionLiteral()
		} else {
			decl.Declaration = p.parseExpression(LOWEST)
		}
		if decl.Declaration == nil {
			return nil
		}
		p.consumeOptionalSemicolon()
		return decl

	case p.peekTokenIs(lexer.FUNCTION):
		p.nextToken()
		inner := p.parseFunctionDeclaration()
		if inner == nil {
			return nil
		}
		return &ExportNamedDeclaration{Token: exportToken, Declaration: inner}

	case p.peekTokenIs(lexer.LET), p.peekTokenIs(lexer.CONST), p.peekTokenIs(lexer.VAR):
		p.nextToken()
		inner := p.parseStatement()
		if inner == nil {
			return nil
		}
		return &ExportNamedDeclaration{Token: exportToken, Declaration: inner}

	case p.peekTokenIs(lexer.LBRACE):
		p.nextToken()
		decl := &ExportNamedDeclaration{Token: exportToken}
		specs := p.parseExportSpecifiers()
		if specs == nil {
			return nil
		}
		decl.Specifiers = specs
		if p.peekIsContextual("from") {
			p.nextToken()
			if !p.expectPeek(lexer.STRING) {
				return nil
			}
			decl.Source = p.makeString(p.curToken)
		}
		p.consumeOptionalSemicolon()
		return decl

	default:
		p.addError(p.peekToken, fmt.Sprintf("unsupported export form starting with %s", p.peekToken.Type))
		return nil
	}
}

// parseExportSpecifiers parses `{ a, b as c }`. curToken must be LBRACE on
// entry; it is RBRACE on exit.
func (p *Parser) parseExportSpecifiers() []*ExportSpecifier {
	specs := []*ExportSpecifier{}
	if p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		return specs
	}
	for {
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		spec := &ExportSpecifier{}
		spec.Local = p.makeIdent(p.curToken)
		spec.Exported = spec.Local
		if p.peekIsContextual("as") {
			p.nextToken()
			if !p.expectPeek(lexer.IDENT) {
				return nil
			}
			spec.Exported = p.makeIdent(p.curToken)
		}
		specs = append(specs, spec)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return specs
}

// --- Token Helpers ---

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

// peekIsContextual checks for a contextual keyword ("of", "as", "from"),
// which the lexer reports as a plain identifier.
func (p *Parser) peekIsContextual(word string) bool {
	return p.peekToken.Type == lexer.IDENT && p.peekToken.Literal == word
}

// expectPeek checks the type of the next token and advances if it matches.
// If it doesn't match, it adds an error.
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// expectContextual advances over a contextual keyword or records an error.
func (p *Parser) expectContextual(word string) bool {
	if p.peekIsContextual(word) {
		p.nextToken()
		return true
	}
	p.addError(p.peekToken, fmt.Sprintf("expected '%s', got %s instead", word, p.peekToken.Type))
	return false
}

func (p *Parser) consumeOptionalSemicolon() {
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
}

// --- Error Handling ---

func (p *Parser) peekError(t lexer.TokenType) {
	msg := fmt.Sprintf("expected next token to be %s, got %s instead",
		t, p.peekToken.Type)
	p.addError(p.peekToken, msg)
}

func (p *Parser) noPrefixParseFnError(t lexer.TokenType) {
	if t == lexer.ILLEGAL {
		// The lexer put its message in the literal
		p.addError(p.curToken, p.curToken.Literal)
		return
	}
	msg := fmt.Sprintf("no prefix parse function for %s found", t)
	p.addError(p.curToken, msg)
}

func (p *Parser) addError(tok lexer.Token, msg string) {
	// Prevent memory exhaustion from infinite error generation
	const maxErrors = 1000
	if len(p.errors) >= maxErrors {
		if len(p.errors) == maxErrors {
			p.errors = append(p.errors, &errors.SyntaxError{
				Position: p.tokenPosition(tok),
				Msg:      fmt.Sprintf("too many parse errors (limit: %d), stopping parser", maxErrors),
			})
		}
		return
	}
	p.errors = append(p.errors, &errors.SyntaxError{
		Position: p.tokenPosition(tok),
		Msg:      msg,
	})
}

func (p *Parser) tokenPosition(tok lexer.Token) errors.Position {
	return errors.Position{
		Line:     tok.Line,
		Column:   tok.Column,
		StartPos: tok.StartPos,
		EndPos:   tok.EndPos,
		Source:   p.source,
	}
}

// --- Precedence Helpers ---

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}
