package parser

import (
	"fmt"
	"strconv"
	"strings"

	"inlay/pkg/lexer"
)

// parseExpression is the heart of the Pratt parser.
func (p *Parser) parseExpression(precedence int) Expression {
	debugPrint("parseExpression(prec=%d): cur='%s' (%s)", precedence, p.curToken.Literal, p.curToken.Type)
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(lexer.SEMICOLON) && !p.curTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}
	return leftExp
}

// --- Prefix Parsers ---

func (p *Parser) parseIdentifier() Expression {
	ident := p.makeIdent(p.curToken)
	// Single-parameter arrow shorthand: `x => body`
	if p.peekTokenIs(lexer.ARROW) {
		arrowTok := p.curToken
		param := &Parameter{Token: p.curToken, Name: ident}
		p.nextToken() // move to '=>'
		return p.parseArrowFunctionBody(arrowTok, []*Parameter{param})
	}
	return ident
}

func (p *Parser) parseNumberLiteral() Expression {
	lit := p.arena.NewNumberLiteral(p.curToken)
	raw := strings.ReplaceAll(p.curToken.Literal, "_", "")

	var value float64
	var err error
	switch {
	case len(raw) > 2 && (raw[:2] == "0x" || raw[:2] == "0X"):
		var n uint64
		n, err = strconv.ParseUint(raw[2:], 16, 64)
		value = float64(n)
	case len(raw) > 2 && (raw[:2] == "0b" || raw[:2] == "0B"):
		var n uint64
		n, err = strconv.ParseUint(raw[2:], 2, 64)
		value = float64(n)
	case len(raw) > 2 && (raw[:2] == "0o" || raw[:2] == "0O"):
		var n uint64
		n, err = strconv.ParseUint(raw[2:], 8, 64)
		value = float64(n)
	default:
		value, err = strconv.ParseFloat(raw, 64)
	}
	if err != nil {
		p.addError(p.curToken, fmt.Sprintf("could not parse %q as a number", p.curToken.Literal))
		return nil
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() Expression {
	// The lexer already unescaped the literal
	return p.makeString(p.curToken)
}

func (p *Parser) parseRegexLiteral() Expression {
	return &RegexLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() Expression {
	return &BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNullLiteral() Expression {
	return &NullLiteral{Token: p.curToken}
}

func (p *Parser) parseUndefinedLiteral() Expression {
	return &UndefinedLiteral{Token: p.curToken}
}

func (p *Parser) parseThisExpression() Expression {
	return &ThisExpression{Token: p.curToken}
}

// parseTemplateLiteral parses an entire template literal. For templates with
// substitutions the lexer alternates cooked text chunks and expression token
// streams, so quasis always outnumber expressions by one.
func (p *Parser) parseTemplateLiteral() Expression {
	tl := &TemplateLiteral{Token: p.curToken}
	tl.Quasis = []string{p.curToken.Literal}
	if p.curTokenIs(lexer.TEMPLATE_STRING) {
		return tl
	}

	for {
		p.nextToken() // move to the substitution expression
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil
		}
		tl.Expressions = append(tl.Expressions, expr)

		p.nextToken() // move to the next chunk
		switch p.curToken.Type {
		case lexer.TEMPLATE_MIDDLE:
			tl.Quasis = append(tl.Quasis, p.curToken.Literal)
		case lexer.TEMPLATE_END:
			tl.Quasis = append(tl.Quasis, p.curToken.Literal)
			return tl
		default:
			p.addError(p.curToken, "unterminated template literal")
			return nil
		}
	}
}

func (p *Parser) parsePrefixExpression() Expression {
	exp := p.arena.NewPrefixExpression(p.curToken, p.curToken.Literal)
	p.nextToken()
	exp.Right = p.parseExpression(PREFIX)
	if exp.Right == nil {
		return nil
	}
	return exp
}

func (p *Parser) parsePrefixUpdateExpression() Expression {
	exp := &UpdateExpression{Token: p.curToken, Operator: p.curToken.Literal, Prefix: true}
	p.nextToken()
	exp.Argument = p.parseExpression(PREFIX)
	if exp.Argument == nil {
		return nil
	}
	if !isValidAssignmentTarget(exp.Argument) {
		p.addError(exp.Token, fmt.Sprintf("invalid operand for %s", exp.Operator))
		return nil
	}
	return exp
}

// parseGroupedExpression parses '(' as either an arrow function parameter
// list or a parenthesized expression.
func (p *Parser) parseGroupedExpression() Expression {
	if arrow, ok := p.tryParseArrowFunction(); ok {
		return arrow
	}
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return exp
}

// tryParseArrowFunction attempts to read '(' params ')' '=>'. The second
// result reports whether the arrow form matched; when it is false the
// parser has been rewound to the opening parenthesis.
func (p *Parser) tryParseArrowFunction() (Expression, bool) {
	saved := p.saveState()
	arrowTok := p.curToken
	params := p.parseArrowParameterList()
	if params == nil || !p.peekTokenIs(lexer.ARROW) {
		p.restoreState(saved)
		return nil, false
	}
	p.nextToken() // move to '=>'
	return p.parseArrowFunctionBody(arrowTok, params), true
}

// parseArrowParameterList reads a parenthesized parameter list without
// reporting errors; nil means the shape did not match. curToken must be
// LPAREN on entry and is RPAREN on a successful exit.
func (p *Parser) parseArrowParameterList() []*Parameter {
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
			if !p.peekTokenIs(lexer.IDENT) {
				return nil
			}
			p.nextToken()
		} else if !p.curTokenIs(lexer.IDENT) {
			return nil
		}
		param.Name = p.makeIdent(p.curToken)

		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			param.Default = p.parseExpression(ARG_SEPARATOR)
			if param.Default == nil {
				return nil
			}
		}
		params = append(params, param)

		switch {
		case p.peekTokenIs(lexer.COMMA):
			p.nextToken()
			continue
		case p.peekTokenIs(lexer.RPAREN):
			p.nextToken()
			return params
		default:
			return nil
		}
	}
}

// parseArrowFunctionBody finishes an arrow function once curToken is '=>'.
func (p *Parser) parseArrowFunctionBody(tok lexer.Token, params []*Parameter) Expression {
	arrow := &ArrowFunctionLiteral{Token: tok, Parameters: params}
	if p.peekTokenIs(lexer.LBRACE) {
		p.nextToken()
		arrow.Body = p.parseBlockStatement()
	} else {
		p.nextToken()
		body := p.parseExpression(ARG_SEPARATOR)
		if body == nil {
			return nil
		}
		arrow.Body = body
	}
	return arrow
}

func (p *Parser) parseFunctionLiteral() Expression {
	lit := &FunctionLiteral{Token: p.curToken}
	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		lit.Name = p.makeIdent(p.curToken)
	}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	lit.Parameters = p.parseFunctionParameters()
	if lit.Parameters == nil {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	lit.Body = p.parseBlockStatement()
	return lit
}

func (p *Parser) parseArrayLiteral() Expression {
	arr := &ArrayLiteral{Token: p.curToken}
	arr.Elements = []Expression{}
	if p.peekTokenIs(lexer.RBRACKET) {
		p.nextToken()
		return arr
	}

	for {
		p.nextToken()
		el := p.parseExpression(ARG_SEPARATOR)
		if el == nil {
			return nil
		}
		arr.Elements = append(arr.Elements, el)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			// Allow a trailing comma before ']'
			if p.peekTokenIs(lexer.RBRACKET) {
				break
			}
			continue
		}
		break
	}
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return arr
}

func (p *Parser) parseObjectLiteral() Expression {
	obj := &ObjectLiteral{Token: p.curToken}

	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		prop := &ObjectProperty{}

		switch {
		case p.curTokenIs(lexer.SPREAD):
			spreadTok := p.curToken
			p.nextToken()
			arg := p.parseExpression(ARG_SEPARATOR)
			if arg == nil {
				return nil
			}
			prop.Value = &SpreadElement{Token: spreadTok, Argument: arg}

		case p.curTokenIs(lexer.LBRACKET):
			prop.Computed = true
			p.nextToken()
			prop.Key = p.parseExpression(LOWEST)
			if prop.Key == nil {
				return nil
			}
			if !p.expectPeek(lexer.RBRACKET) {
				return nil
			}
			if !p.expectPeek(lexer.COLON) {
				return nil
			}
			p.nextToken()
			prop.Value = p.parseExpression(ARG_SEPARATOR)
			if prop.Value == nil {
				return nil
			}

		default:
			key := p.parsePropertyName()
			if key == nil {
				return nil
			}
			prop.Key = key
			switch {
			case p.peekTokenIs(lexer.COLON):
				p.nextToken()
				p.nextToken()
				prop.Value = p.parseExpression(ARG_SEPARATOR)
				if prop.Value == nil {
					return nil
				}
			case p.peekTokenIs(lexer.LPAREN):
				// Method shorthand, represented as key: function
				fn := &FunctionLiteral{Token: p.curToken}
				p.nextToken()
				fn.Parameters = p.parseFunctionParameters()
				if fn.Parameters == nil {
					return nil
				}
				if !p.expectPeek(lexer.LBRACE) {
					return nil
				}
				fn.Body = p.parseBlockStatement()
				prop.Value = fn
			default:
				// Shorthand property { x }
				ident, ok := key.(*Identifier)
				if !ok {
					p.addError(p.curToken, "object property is missing a value")
					return nil
				}
				prop.Shorthand = true
				prop.Value = ident
			}
		}
		obj.Properties = append(obj.Properties, prop)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return obj
}

// parsePropertyName parses a non-computed object key. Keywords are valid
// property names in this position, as in `{ new: 1 }`.
func (p *Parser) parsePropertyName() Expression {
	tok := p.curToken
	switch {
	case tok.Type == lexer.STRING:
		return p.makeString(tok)
	case tok.Type == lexer.NUMBER:
		return p.parseNumberLiteral()
	case isNameLike(tok):
		return p.makeIdent(tok)
	default:
		p.addError(tok, fmt.Sprintf("invalid object property name %s", tok.Type))
		return nil
	}
}

// isNameLike reports whether a token can stand where a property name is
// expected. Keyword tokens qualify because `obj.delete` is legal.
func isNameLike(tok lexer.Token) bool {
	if tok.Type == lexer.IDENT {
		return true
	}
	return tok.Literal != "" && lexer.LookupIdent(tok.Literal) == tok.Type
}

func (p *Parser) parseSpreadElement() Expression {
	exp := &SpreadElement{Token: p.curToken}
	p.nextToken()
	exp.Argument = p.parseExpression(ARG_SEPARATOR)
	if exp.Argument == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseNewExpression() Expression {
	exp := &NewExpression{Token: p.curToken}
	p.nextToken()
	// Parse the callee at CALL precedence so member chains attach to the
	// constructor but call parentheses stay ours
	exp.Callee = p.parseExpression(CALL)
	if exp.Callee == nil {
		return nil
	}
	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		exp.Arguments = p.parseCallArguments()
		if exp.Arguments == nil {
			return nil
		}
	}
	return exp
}

// --- Infix Parsers ---

func (p *Parser) parseInfixExpression(left Expression) Expression {
	exp := p.arena.NewInfixExpression(p.curToken, p.curToken.Literal, left)
	precedence := p.curPrecedence()
	if p.curTokenIs(lexer.EXPONENT) {
		// '**' is right-associative
		precedence--
	}
	p.nextToken()
	exp.Right = p.parseExpression(precedence)
	if exp.Right == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseAssignmentExpression(target Expression) Expression {
	exp := &AssignmentExpression{Token: p.curToken, Operator: p.curToken.Literal, Target: target}
	if !isValidAssignmentTarget(target) {
		p.addError(p.curToken, "invalid assignment target")
		return nil
	}
	p.nextToken()
	exp.Value = p.parseExpression(ARG_SEPARATOR)
	if exp.Value == nil {
		return nil
	}
	return exp
}

func isValidAssignmentTarget(e Expression) bool {
	switch e.(type) {
	case *Identifier, *MemberExpression, *IndexExpression:
		return true
	}
	return false
}

func (p *Parser) parseTernaryExpression(condition Expression) Expression {
	exp := &TernaryExpression{Token: p.curToken, Condition: condition}
	p.nextToken()
	exp.Consequence = p.parseExpression(ARG_SEPARATOR)
	if exp.Consequence == nil {
		return nil
	}
	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	exp.Alternative = p.parseExpression(ARG_SEPARATOR)
	if exp.Alternative == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseCallExpression(function Expression) Expression {
	call := p.arena.NewCallExpression(p.curToken, function, false)
	call.Arguments = p.parseCallArguments()
	if call.Arguments == nil {
		return nil
	}
	return call
}

// parseCallArguments parses arguments up to ')'. curToken must be LPAREN
// on entry; it is RPAREN on exit. Returns nil on error.
func (p *Parser) parseCallArguments() []Expression {
	args := []Expression{}
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return args
	}

	for {
		p.nextToken()
		arg := p.parseExpression(ARG_SEPARATOR)
		if arg == nil {
			return nil
		}
		args = append(args, arg)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			// Allow a trailing comma before ')'
			if p.peekTokenIs(lexer.RPAREN) {
				break
			}
			continue
		}
		break
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return args
}

func (p *Parser) parseIndexExpression(left Expression) Expression {
	exp := &IndexExpression{Token: p.curToken, Left: left}
	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)
	if exp.Index == nil {
		return nil
	}
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return exp
}

func (p *Parser) parseMemberExpression(object Expression) Expression {
	exp := p.arena.NewMemberExpression(p.curToken, object, false)
	p.nextToken()
	if !isNameLike(p.curToken) {
		p.addError(p.curToken, fmt.Sprintf("expected property name after '.', got %s", p.curToken.Type))
		return nil
	}
	exp.Property = p.makeIdent(p.curToken)
	return exp
}

// parseOptionalChainingExpression handles the three '?.' forms: member
// access, optional call and optional index.
func (p *Parser) parseOptionalChainingExpression(object Expression) Expression {
	switch {
	case p.peekTokenIs(lexer.LPAREN):
		p.nextToken()
		call := p.arena.NewCallExpression(p.curToken, object, true)
		call.Arguments = p.parseCallArguments()
		if call.Arguments == nil {
			return nil
		}
		return call

	case p.peekTokenIs(lexer.LBRACKET):
		p.nextToken()
		exp := &IndexExpression{Token: p.curToken, Left: object, Optional: true}
		p.nextToken()
		exp.Index = p.parseExpression(LOWEST)
		if exp.Index == nil {
			return nil
		}
		if !p.expectPeek(lexer.RBRACKET) {
			return nil
		}
		return exp

	default:
		exp := p.arena.NewMemberExpression(p.curToken, object, true)
		p.nextToken()
		if !isNameLike(p.curToken) {
			p.addError(p.curToken, fmt.Sprintf("expected property name after '?.', got %s", p.curToken.Type))
			return nil
		}
		exp.Property = p.makeIdent(p.curToken)
		return exp
	}
}

func (p *Parser) parsePostfixUpdateExpression(left Expression) Expression {
	if !isValidAssignmentTarget(left) {
		p.addError(p.curToken, fmt.Sprintf("invalid operand for %s", p.curToken.Literal))
		return nil
	}
	return &UpdateExpression{Token: p.curToken, Operator: p.curToken.Literal, Prefix: false, Argument: left}
}

// parseCommaExpression builds a flat SequenceExpression out of the comma
// operator.
func (p *Parser) parseCommaExpression(left Expression) Expression {
	seq, ok := left.(*SequenceExpression)
	if !ok {
		seq = &SequenceExpression{Token: p.curToken, Expressions: []Expression{left}}
	}
	p.nextToken()
	next := p.parseExpression(ARG_SEPARATOR)
	if next == nil {
		return nil
	}
	seq.Expressions = append(seq.Expressions, next)
	return seq
}
