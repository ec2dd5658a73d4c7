package lexer

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"inlay/pkg/source"
)

// TokenType represents the type of a token.
type TokenType string

// Token represents a lexical token.
type Token struct {
	Type     TokenType
	Literal  string // The actual text of the token (lexeme)
	Line     int    // 1-based line number where the token starts
	Column   int    // 1-based column number (rune index) where the token starts
	StartPos int    // 0-based byte offset where the token starts
	EndPos   int    // 0-based byte offset after the token ends
}

// Comment represents a comment collected during scanning. Comments never
// reach the token stream; they are accumulated on the side so hint
// markers riding on them stay available after parsing.
type Comment struct {
	Text     string // Inner text, without the // or /* */ delimiters
	Block    bool   // true for /* */ comments
	Line     int    // 1-based line number where the comment starts
	Column   int    // 1-based column number where the comment starts
	StartPos int    // 0-based byte offset of the opening delimiter
	EndPos   int    // 0-based byte offset after the closing delimiter
}

// --- Token Types ---
const (
	// Special
	ILLEGAL TokenType = "ILLEGAL" // Unknown token/character
	EOF     TokenType = "EOF"     // End Of File

	// Identifiers + Literals
	IDENT           TokenType = "IDENT"  // functionName, variableName
	NUMBER          TokenType = "NUMBER" // 123, 45.67
	STRING          TokenType = "STRING" // "hello world"
	REGEX_LITERAL   TokenType = "REGEX"  // /pattern/flags
	TEMPLATE_STRING TokenType = "TEMPLATE_STRING"
	TEMPLATE_START  TokenType = "TEMPLATE_START"  // `text${
	TEMPLATE_MIDDLE TokenType = "TEMPLATE_MIDDLE" // }text${
	TEMPLATE_END    TokenType = "TEMPLATE_END"    // }text`
	NULL            TokenType = "NULL"
	UNDEFINED       TokenType = "UNDEFINED"

	// Operators
	ASSIGN    TokenType = "="
	PLUS      TokenType = "+"
	MINUS     TokenType = "-"
	BANG      TokenType = "!"
	ASTERISK  TokenType = "*"
	SLASH     TokenType = "/"
	REMAINDER TokenType = "%"
	EXPONENT  TokenType = "**"
	LT        TokenType = "<"
	GT        TokenType = ">"
	EQ        TokenType = "=="
	NOT_EQ    TokenType = "!="
	LE        TokenType = "<="
	GE        TokenType = ">="
	DOT       TokenType = "."
	SPREAD    TokenType = "..."

	// Bitwise
	BITWISE_AND          TokenType = "&"
	PIPE                 TokenType = "|"
	BITWISE_XOR          TokenType = "^"
	BITWISE_NOT          TokenType = "~"
	LEFT_SHIFT           TokenType = "<<"
	RIGHT_SHIFT          TokenType = ">>"
	UNSIGNED_RIGHT_SHIFT TokenType = ">>>"

	// Compound Assignment
	PLUS_ASSIGN                 TokenType = "+="
	MINUS_ASSIGN                TokenType = "-="
	ASTERISK_ASSIGN             TokenType = "*="
	SLASH_ASSIGN                TokenType = "/="
	REMAINDER_ASSIGN            TokenType = "%="
	EXPONENT_ASSIGN             TokenType = "**="
	BITWISE_AND_ASSIGN          TokenType = "&="
	BITWISE_OR_ASSIGN           TokenType = "|="
	BITWISE_XOR_ASSIGN          TokenType = "^="
	LEFT_SHIFT_ASSIGN           TokenType = "<<="
	RIGHT_SHIFT_ASSIGN          TokenType = ">>="
	UNSIGNED_RIGHT_SHIFT_ASSIGN TokenType = ">>>="
	LOGICAL_AND_ASSIGN          TokenType = "&&="
	LOGICAL_OR_ASSIGN           TokenType = "||="
	COALESCE_ASSIGN             TokenType = "??="

	// Increment/Decrement
	INC TokenType = "++"
	DEC TokenType = "--"

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"
	ARROW     TokenType = "=>" // Added for arrow functions

	// Keywords
	FUNCTION   TokenType = "FUNCTION"
	LET        TokenType = "LET"
	CONST      TokenType = "CONST"
	VAR        TokenType = "VAR"
	TRUE       TokenType = "TRUE"
	FALSE      TokenType = "FALSE"
	IF         TokenType = "IF"
	ELSE       TokenType = "ELSE"
	RETURN     TokenType = "RETURN"
	WHILE      TokenType = "WHILE"
	DO         TokenType = "DO"
	FOR        TokenType = "FOR"
	BREAK      TokenType = "BREAK"
	CONTINUE   TokenType = "CONTINUE"
	SWITCH     TokenType = "SWITCH"
	CASE       TokenType = "CASE"
	DEFAULT    TokenType = "DEFAULT"
	NEW        TokenType = "NEW"
	THIS       TokenType = "THIS"
	THROW      TokenType = "THROW"
	TRY        TokenType = "TRY"
	CATCH      TokenType = "CATCH"
	FINALLY    TokenType = "FINALLY"
	IMPORT     TokenType = "IMPORT"
	EXPORT     TokenType = "EXPORT"
	TYPEOF     TokenType = "TYPEOF"
	DELETE     TokenType = "DELETE"
	VOID       TokenType = "VOID"
	IN         TokenType = "IN"
	INSTANCEOF TokenType = "INSTANCEOF"

	// Logical Operators
	LOGICAL_AND TokenType = "&&"
	LOGICAL_OR  TokenType = "||"
	COALESCE    TokenType = "??"

	// Strict Equality Operators
	STRICT_EQ     TokenType = "==="
	STRICT_NOT_EQ TokenType = "!=="

	// Ternary / Optional Chaining
	QUESTION          TokenType = "?"
	OPTIONAL_CHAINING TokenType = "?."
)

var keywords = map[string]TokenType{
	"function":   FUNCTION,
	"let":        LET,
	"const":      CONST,
	"var":        VAR,
	"true":       TRUE,
	"false":      FALSE,
	"if":         IF,
	"else":       ELSE,
	"return":     RETURN,
	"null":       NULL,
	"undefined":  UNDEFINED,
	"while":      WHILE,
	"do":         DO,
	"for":        FOR,
	"break":      BREAK,
	"continue":   CONTINUE,
	"switch":     SWITCH,
	"case":       CASE,
	"default":    DEFAULT,
	"new":        NEW,
	"this":       THIS,
	"throw":      THROW,
	"try":        TRY,
	"catch":      CATCH,
	"finally":    FINALLY,
	"import":     IMPORT,
	"export":     EXPORT,
	"typeof":     TYPEOF,
	"delete":     DELETE,
	"void":       VOID,
	"in":         IN,
	"instanceof": INSTANCEOF,
	// "from", "as" and "of" stay contextual: they are ordinary
	// identifiers everywhere except inside import/export/for-of
	// clauses, where the parser checks the literal.
}

// LookupIdent checks the keywords table for an identifier.
func LookupIdent(ident string) TokenType {
	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return IDENT
}

// Lexer holds the state of the scanner.
type Lexer struct {
	input        string
	src          *source.SourceFile // may be nil for bare-string input
	position     int                // current position in input (points to current char's byte offset)
	readPosition int                // current reading position in input (byte offset after current char)
	ch           byte               // current char under examination
	line         int                // current 1-based line number
	column       int                // current 1-based column number (position of l.position on l.line)
	prevType     TokenType
	templates    []int // open-brace depth per enclosing template interpolation
	comments     []Comment
}

// State captures the full scanner position so the parser can backtrack
// (e.g. when deciding between a parenthesized expression and an arrow
// function parameter list). Restoring also drops comments collected
// past the capture point, so re-scanned trivia is not recorded twice.
type State struct {
	position     int
	readPosition int
	ch           byte
	line         int
	column       int
	prevType     TokenType
	templates    int
	comments     int
}

// State returns the current scanner state.
func (l *Lexer) State() State {
	return State{
		position:     l.position,
		readPosition: l.readPosition,
		ch:           l.ch,
		line:         l.line,
		column:       l.column,
		prevType:     l.prevType,
		templates:    len(l.templates),
		comments:     len(l.comments),
	}
}

// Restore rewinds the scanner to a previously captured state.
func (l *Lexer) Restore(s State) {
	l.position = s.position
	l.readPosition = s.readPosition
	l.ch = s.ch
	l.line = s.line
	l.column = s.column
	l.prevType = s.prevType
	if s.templates <= len(l.templates) {
		l.templates = l.templates[:s.templates]
	}
	if s.comments <= len(l.comments) {
		l.comments = l.comments[:s.comments]
	}
}

// NewLexer creates a new Lexer.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 1} // Start at line 1, column 1
	l.readChar()                                  // Initialize l.ch, l.position, l.readPosition
	return l
}

// NewLexerFromSource creates a Lexer over a SourceFile, keeping the file
// reference available for error reporting.
func NewLexerFromSource(sf *source.SourceFile) *Lexer {
	l := NewLexer(sf.Content)
	l.src = sf
	return l
}

// GetSource returns the SourceFile the lexer was built from, or nil.
func (l *Lexer) GetSource() *source.SourceFile {
	return l.src
}

// Comments returns the comments collected so far, in source order.
func (l *Lexer) Comments() []Comment {
	return l.comments
}

// readChar gives us the next character and advances our position in the input string.
// It also updates the line and column count.
func (l *Lexer) readChar() {
	// Before advancing, check if the current character was a newline
	if l.ch == '\n' {
		l.line++
		l.column = 0 // Reset column, it will be incremented below
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0 // 0 is ASCII for NUL, signifies EOF
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	// UTF-8 continuation bytes do not start a new column
	if l.ch&0xC0 != 0x80 {
		l.column++
	}
}

// peekChar looks ahead in the input without consuming the character.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// peekAhead looks n characters past the current one without consuming anything.
// peekAhead(1) is equivalent to peekChar.
func (l *Lexer) peekAhead(n int) byte {
	idx := l.position + n
	if idx >= len(l.input) {
		return 0
	}
	return l.input[idx]
}

// skipWhitespace consumes whitespace characters (space, tab, newline, carriage return).
// It relies on readChar to update line and column counts.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// NextToken scans the input and returns the next token.
func (l *Lexer) NextToken() Token {
	tok := l.scanToken()
	l.prevType = tok.Type
	return tok
}

func (l *Lexer) scanToken() Token {
	var tok Token

	l.skipWhitespace()

	// Capture token start position *after* skipping whitespace
	startLine := l.line
	startCol := l.column
	startPos := l.position

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			l.readChar() // Consume '='
			if l.peekChar() == '=' {
				l.readChar() // Consume second '='
				tok = l.finish(STRICT_EQ, startLine, startCol, startPos)
			} else {
				tok = l.finish(EQ, startLine, startCol, startPos)
			}
		} else if l.peekChar() == '>' {
			l.readChar() // Consume '>'
			tok = l.finish(ARROW, startLine, startCol, startPos)
		} else {
			tok = l.finish(ASSIGN, startLine, startCol, startPos)
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar() // Consume '='
			if l.peekChar() == '=' {
				l.readChar() // Consume second '='
				tok = l.finish(STRICT_NOT_EQ, startLine, startCol, startPos)
			} else {
				tok = l.finish(NOT_EQ, startLine, startCol, startPos)
			}
		} else {
			tok = l.finish(BANG, startLine, startCol, startPos)
		}
	case '+':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.finish(PLUS_ASSIGN, startLine, startCol, startPos)
		} else if l.peekChar() == '+' {
			l.readChar()
			tok = l.finish(INC, startLine, startCol, startPos)
		} else {
			tok = l.finish(PLUS, startLine, startCol, startPos)
		}
	case '-':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.finish(MINUS_ASSIGN, startLine, startCol, startPos)
		} else if l.peekChar() == '-' {
			l.readChar()
			tok = l.finish(DEC, startLine, startCol, startPos)
		} else {
			tok = l.finish(MINUS, startLine, startCol, startPos)
		}
	case '*':
		if l.peekChar() == '*' {
			l.readChar() // Consume second '*'
			if l.peekChar() == '=' {
				l.readChar()
				tok = l.finish(EXPONENT_ASSIGN, startLine, startCol, startPos)
			} else {
				tok = l.finish(EXPONENT, startLine, startCol, startPos)
			}
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = l.finish(ASTERISK_ASSIGN, startLine, startCol, startPos)
		} else {
			tok = l.finish(ASTERISK, startLine, startCol, startPos)
		}
	case '%':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.finish(REMAINDER_ASSIGN, startLine, startCol, startPos)
		} else {
			tok = l.finish(REMAINDER, startLine, startCol, startPos)
		}
	case '/':
		if l.peekChar() == '/' {
			l.readLineComment(startLine, startCol, startPos)
			return l.scanToken() // Get the token after the comment
		} else if l.peekChar() == '*' {
			if !l.readBlockComment(startLine, startCol, startPos) {
				// Unterminated comment, return an ILLEGAL token
				tok = Token{Type: ILLEGAL, Literal: "Unterminated multiline comment", Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
				return tok
			}
			return l.scanToken() // Get the token after the multiline comment
		} else if regexAllowed(l.prevType) {
			literal, ok := l.readRegex()
			if !ok {
				tok = Token{Type: ILLEGAL, Literal: "Invalid regular expression literal", Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
			} else {
				tok = Token{Type: REGEX_LITERAL, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
			}
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = l.finish(SLASH_ASSIGN, startLine, startCol, startPos)
		} else {
			tok = l.finish(SLASH, startLine, startCol, startPos)
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar() // Consume second '&'
			if l.peekChar() == '=' {
				l.readChar()
				tok = l.finish(LOGICAL_AND_ASSIGN, startLine, startCol, startPos)
			} else {
				tok = l.finish(LOGICAL_AND, startLine, startCol, startPos)
			}
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = l.finish(BITWISE_AND_ASSIGN, startLine, startCol, startPos)
		} else {
			tok = l.finish(BITWISE_AND, startLine, startCol, startPos)
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar() // Consume second '|'
			if l.peekChar() == '=' {
				l.readChar()
				tok = l.finish(LOGICAL_OR_ASSIGN, startLine, startCol, startPos)
			} else {
				tok = l.finish(LOGICAL_OR, startLine, startCol, startPos)
			}
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = l.finish(BITWISE_OR_ASSIGN, startLine, startCol, startPos)
		} else {
			tok = l.finish(PIPE, startLine, startCol, startPos)
		}
	case '^':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.finish(BITWISE_XOR_ASSIGN, startLine, startCol, startPos)
		} else {
			tok = l.finish(BITWISE_XOR, startLine, startCol, startPos)
		}
	case '~':
		tok = l.finish(BITWISE_NOT, startLine, startCol, startPos)
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.finish(LE, startLine, startCol, startPos)
		} else if l.peekChar() == '<' {
			l.readChar() // Consume second '<'
			if l.peekChar() == '=' {
				l.readChar()
				tok = l.finish(LEFT_SHIFT_ASSIGN, startLine, startCol, startPos)
			} else {
				tok = l.finish(LEFT_SHIFT, startLine, startCol, startPos)
			}
		} else {
			tok = l.finish(LT, startLine, startCol, startPos)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.finish(GE, startLine, startCol, startPos)
		} else if l.peekChar() == '>' {
			l.readChar() // Consume second '>'
			if l.peekChar() == '>' {
				l.readChar() // Consume third '>'
				if l.peekChar() == '=' {
					l.readChar()
					tok = l.finish(UNSIGNED_RIGHT_SHIFT_ASSIGN, startLine, startCol, startPos)
				} else {
					tok = l.finish(UNSIGNED_RIGHT_SHIFT, startLine, startCol, startPos)
				}
			} else if l.peekChar() == '=' {
				l.readChar()
				tok = l.finish(RIGHT_SHIFT_ASSIGN, startLine, startCol, startPos)
			} else {
				tok = l.finish(RIGHT_SHIFT, startLine, startCol, startPos)
			}
		} else {
			tok = l.finish(GT, startLine, startCol, startPos)
		}
	case ';':
		tok = l.finish(SEMICOLON, startLine, startCol, startPos)
	case ':':
		tok = l.finish(COLON, startLine, startCol, startPos)
	case ',':
		tok = l.finish(COMMA, startLine, startCol, startPos)
	case '(':
		tok = l.finish(LPAREN, startLine, startCol, startPos)
	case ')':
		tok = l.finish(RPAREN, startLine, startCol, startPos)
	case '{':
		// Inside a template interpolation, track brace depth so the
		// closing '}' of the interpolation can be recognized.
		if n := len(l.templates); n > 0 {
			l.templates[n-1]++
		}
		tok = l.finish(LBRACE, startLine, startCol, startPos)
	case '}':
		if n := len(l.templates); n > 0 {
			if l.templates[n-1] == 0 {
				// This '}' resumes the enclosing template literal.
				l.templates = l.templates[:n-1]
				return l.readTemplateChunk(startLine, startCol, startPos, false)
			}
			l.templates[n-1]--
		}
		tok = l.finish(RBRACE, startLine, startCol, startPos)
	case '[':
		tok = l.finish(LBRACKET, startLine, startCol, startPos)
	case ']':
		tok = l.finish(RBRACKET, startLine, startCol, startPos)
	case '"': // Double quoted string
		literal, ok := l.readString('"')
		endPos := l.position // readString advances past the closing quote if successful
		if !ok {
			tok = Token{Type: ILLEGAL, Literal: "Invalid string literal", Line: startLine, Column: startCol, StartPos: startPos, EndPos: endPos}
		} else {
			tok = Token{Type: STRING, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: endPos}
		}
	case '\'': // Single quoted string
		literal, ok := l.readString('\'')
		endPos := l.position
		if !ok {
			tok = Token{Type: ILLEGAL, Literal: "Invalid string literal", Line: startLine, Column: startCol, StartPos: startPos, EndPos: endPos}
		} else {
			tok = Token{Type: STRING, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: endPos}
		}
	case '`':
		return l.readTemplateChunk(startLine, startCol, startPos, true)
	case '?':
		if l.peekChar() == '?' {
			l.readChar() // Consume second '?'
			if l.peekChar() == '=' {
				l.readChar()
				tok = l.finish(COALESCE_ASSIGN, startLine, startCol, startPos)
			} else {
				tok = l.finish(COALESCE, startLine, startCol, startPos)
			}
		} else if l.peekChar() == '.' && !isDigit(l.peekAhead(2)) {
			// '?.' is optional chaining unless it would split a ternary
			// with a fractional literal, as in 'a?.5:1'.
			l.readChar() // Consume '.'
			tok = l.finish(OPTIONAL_CHAINING, startLine, startCol, startPos)
		} else {
			tok = l.finish(QUESTION, startLine, startCol, startPos)
		}
	case '.':
		if isDigit(l.peekChar()) {
			// Leading-dot number like '.5'
			literal := l.readNumber()
			tok = Token{Type: NUMBER, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
			return tok
		}
		if l.peekChar() == '.' {
			l.readChar() // Consume second '.'
			if l.peekChar() == '.' {
				l.readChar() // Consume third '.'
				tok = l.finish(SPREAD, startLine, startCol, startPos)
			} else {
				// Sequence like '..' is illegal. Emit the first dot; the
				// scanner is already positioned on the second.
				tok = Token{Type: DOT, Literal: ".", Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos + 1}
			}
		} else {
			tok = l.finish(DOT, startLine, startCol, startPos)
		}
	case 0: // EOF
		tok = Token{Type: EOF, Literal: "", Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	default:
		if isIdentStart(l.ch) {
			literal := l.readIdentifier()
			if !isASCII(literal) {
				// Visually identical identifiers must land on the same
				// binding, so non-ASCII names are NFC-normalized.
				literal = norm.NFC.String(literal)
			}
			tokType := LookupIdent(literal)
			// readIdentifier leaves l.position *after* the last char of the identifier
			tok = Token{Type: tokType, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
			return tok
		} else if isDigit(l.ch) {
			literal := l.readNumber()
			// readNumber leaves l.position *after* the last char of the number
			tok = Token{Type: NUMBER, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
			return tok
		} else {
			// Illegal character
			tok = l.finish(ILLEGAL, startLine, startCol, startPos)
		}
	}

	return tok
}

// finish consumes the current character and builds a token whose literal is
// the input slice from startPos through the consumed character.
func (l *Lexer) finish(typ TokenType, startLine, startCol, startPos int) Token {
	l.readChar()
	return Token{
		Type:     typ,
		Literal:  l.input[startPos:l.position],
		Line:     startLine,
		Column:   startCol,
		StartPos: startPos,
		EndPos:   l.position,
	}
}

// readIdentifier reads an identifier and advances the lexer's position.
// It returns the literal string found.
func (l *Lexer) readIdentifier() string {
	startPos := l.position
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return l.input[startPos:l.position]
}

// readNumber reads a number literal (integer or float, various bases) and advances the lexer's position.
// Handles decimal (optional exponent/fraction), hex (0x), binary (0b), octal (0o).
// Handles numeric separators '_'.
// Returns the raw literal string found.
// It performs basic validation (e.g., separator placement) and stops if invalid sequence is found.
func (l *Lexer) readNumber() string {
	startPos := l.position
	base := 10
	consumedPrefix := false

	// 1. Check for base prefix (0x, 0b, 0o)
	if l.ch == '0' {
		peek := l.peekChar()
		switch peek {
		case 'x', 'X':
			base = 16
			l.readChar() // Consume '0'
			l.readChar() // Consume 'x' or 'X'
			consumedPrefix = true
		case 'b', 'B':
			base = 2
			l.readChar()
			l.readChar()
			consumedPrefix = true
		case 'o', 'O':
			base = 8
			l.readChar()
			l.readChar()
			consumedPrefix = true
		}
	}

	// 2. Read integer part (handling separators)
	lastCharWasDigit := false
	for {
		if isDigitForBase(l.ch, base) {
			l.readChar()
			lastCharWasDigit = true
		} else if l.ch == '_' {
			if !lastCharWasDigit { // Separator must follow a digit
				return l.input[startPos:l.position]
			}
			l.readChar()                     // Consume '_'
			if !isDigitForBase(l.ch, base) { // Separator must be followed by a digit
				return l.input[startPos : l.position-1]
			}
			lastCharWasDigit = false
		} else {
			break
		}
	}

	// Check if *any* digits were read after the prefix
	if consumedPrefix && l.position == startPos+2 {
		// Only prefix was read (e.g., "0x", "0b") - invalid
		return l.input[startPos:l.position]
	}

	// 3. Read fractional part (only for base 10)
	if base == 10 && l.ch == '.' {
		// Check if the character *after* the dot is a digit or separator
		peek := l.peekChar()
		if isDigit(peek) || peek == '_' {
			l.readChar() // Consume '.'
			lastCharWasDigit = false
			for {
				if isDigit(l.ch) {
					l.readChar()
					lastCharWasDigit = true
				} else if l.ch == '_' {
					if !lastCharWasDigit {
						return l.input[startPos:l.position]
					}
					l.readChar()
					if !isDigit(l.ch) {
						return l.input[startPos : l.position-1]
					}
					lastCharWasDigit = false
				} else {
					break
				}
			}
			// Must end fraction with a digit
			if l.input[l.position-1] == '_' {
				return l.input[startPos : l.position-1]
			}
		}
	}

	// 4. Read exponent part (only for base 10)
	if base == 10 && (l.ch == 'e' || l.ch == 'E') {
		l.readChar() // Consume 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.readChar() // Consume sign
		}

		digitsReadExponent := false
		lastCharWasDigit = false
		for {
			if isDigit(l.ch) {
				l.readChar()
				lastCharWasDigit = true
				digitsReadExponent = true
			} else if l.ch == '_' {
				if !lastCharWasDigit {
					return l.input[startPos:l.position]
				}
				l.readChar()
				if !isDigit(l.ch) {
					return l.input[startPos : l.position-1]
				}
				lastCharWasDigit = false
			} else {
				break
			}
		}

		// Exponent must have digits and not end with separator
		if !digitsReadExponent {
			return l.input[startPos:l.position]
		}
		if l.input[l.position-1] == '_' {
			return l.input[startPos : l.position-1]
		}
	}

	return l.input[startPos:l.position]
}

// readString reads a string literal enclosed in the given quote character.
// It handles basic escape sequences: \n, \t, \r, \\, and escaped quotes.
// Returns the unescaped string content and a boolean indicating success.
// Success is false if the string is unterminated or contains an invalid escape sequence.
// Advances the lexer's position to *after* the closing quote if successful.
func (l *Lexer) readString(quote byte) (string, bool) {
	var builder strings.Builder
	// Consume the opening quote
	l.readChar()

	for {
		// Check for termination conditions *before* processing the character
		if l.ch == quote {
			l.readChar() // Consume the closing quote
			return builder.String(), true
		}
		if l.ch == 0 { // EOF
			return "", false
		}

		if l.ch == '\\' { // Handle escape sequence
			l.readChar() // Consume the backslash
			switch l.ch {
			case 'n':
				builder.WriteByte('\n')
			case 't':
				builder.WriteByte('\t')
			case 'r':
				builder.WriteByte('\r')
			case '0':
				builder.WriteByte(0)
			case '\\':
				builder.WriteByte('\\')
			case quote: // Handle escaped quote (' or ")
				builder.WriteByte(quote)
			case 0: // EOF after backslash
				return "", false
			default:
				// Unknown escapes keep the escaped character
				builder.WriteByte(l.ch)
			}
		} else {
			// Unescaped newline terminates the string with an error
			if l.ch == '\n' || l.ch == '\r' {
				return "", false
			}
			builder.WriteByte(l.ch)
		}

		// Advance to the next character *after* processing the current one
		l.readChar()
	}
}

// readTemplateChunk scans one chunk of a template literal: from the
// opening backtick or a resuming '}' up to the closing backtick or the
// next '${'. opening distinguishes the first chunk (TEMPLATE_STRING /
// TEMPLATE_START) from continuation chunks (TEMPLATE_END / TEMPLATE_MIDDLE).
func (l *Lexer) readTemplateChunk(startLine, startCol, startPos int, opening bool) Token {
	var builder strings.Builder
	// Consume the opening '`' or the resuming '}'
	l.readChar()

	for {
		if l.ch == 0 {
			return Token{Type: ILLEGAL, Literal: "Unterminated template literal", Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}

		if l.ch == '`' {
			l.readChar() // Consume the closing backtick
			typ := TEMPLATE_END
			if opening {
				typ = TEMPLATE_STRING
			}
			return Token{Type: typ, Literal: builder.String(), Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}

		if l.ch == '$' && l.peekChar() == '{' {
			l.readChar() // Consume '$'
			l.readChar() // Consume '{'
			l.templates = append(l.templates, 0)
			typ := TEMPLATE_MIDDLE
			if opening {
				typ = TEMPLATE_START
			}
			return Token{Type: typ, Literal: builder.String(), Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}

		if l.ch == '\\' {
			l.readChar() // Consume the backslash
			switch l.ch {
			case 'n':
				builder.WriteByte('\n')
			case 't':
				builder.WriteByte('\t')
			case 'r':
				builder.WriteByte('\r')
			case '\\':
				builder.WriteByte('\\')
			case '`':
				builder.WriteByte('`')
			case '$':
				builder.WriteByte('$')
			case 0:
				return Token{Type: ILLEGAL, Literal: "Unterminated template literal", Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
			default:
				builder.WriteByte('\\')
				builder.WriteByte(l.ch)
			}
			l.readChar()
			continue
		}

		// Templates may span lines; readChar keeps the line count right.
		builder.WriteByte(l.ch)
		l.readChar()
	}
}

// readRegex reads a regular expression literal including both slashes and
// any trailing flags. The literal keeps its raw spelling. Returns false
// for unterminated bodies, invalid flags or duplicate flags.
func (l *Lexer) readRegex() (string, bool) {
	startPos := l.position
	l.readChar() // Consume the opening '/'

	inClass := false
	for {
		if l.ch == 0 || l.ch == '\n' {
			return l.input[startPos:l.position], false
		}
		if l.ch == '\\' {
			l.readChar()
			if l.ch == 0 {
				return l.input[startPos:l.position], false
			}
			l.readChar()
			continue
		}
		if l.ch == '[' {
			inClass = true
		} else if l.ch == ']' {
			inClass = false
		} else if l.ch == '/' && !inClass {
			break
		}
		l.readChar()
	}
	l.readChar() // Consume the closing '/'

	// Flags: each may appear once
	var seen [256]bool
	for isLetter(l.ch) {
		if !isRegexFlag(l.ch) || seen[l.ch] {
			for isLetter(l.ch) {
				l.readChar()
			}
			return l.input[startPos:l.position], false
		}
		seen[l.ch] = true
		l.readChar()
	}
	return l.input[startPos:l.position], true
}

// regexAllowed reports whether a '/' at the current position can start a
// regex literal, based on the previous significant token. Conservative:
// regexes are recognized only after tokens that cannot end a value, so
// arithmetic chains like '-/5' keep '/' as division.
func regexAllowed(prev TokenType) bool {
	switch prev {
	case "", ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, ASTERISK_ASSIGN, SLASH_ASSIGN,
		REMAINDER_ASSIGN, EXPONENT_ASSIGN, BITWISE_AND_ASSIGN, BITWISE_OR_ASSIGN,
		BITWISE_XOR_ASSIGN, LEFT_SHIFT_ASSIGN, RIGHT_SHIFT_ASSIGN,
		UNSIGNED_RIGHT_SHIFT_ASSIGN, LOGICAL_AND_ASSIGN, LOGICAL_OR_ASSIGN,
		COALESCE_ASSIGN, LPAREN, LBRACKET, LBRACE, COMMA, SEMICOLON, COLON,
		RETURN, CASE, ARROW, QUESTION, LOGICAL_AND, LOGICAL_OR, COALESCE,
		EQ, NOT_EQ, STRICT_EQ, STRICT_NOT_EQ, TEMPLATE_START, TEMPLATE_MIDDLE,
		TYPEOF, DELETE, VOID, NEW, THROW, IN, INSTANCEOF:
		return true
	}
	return false
}

// readLineComment collects a '//' comment through the end of the line.
func (l *Lexer) readLineComment(startLine, startCol, startPos int) {
	// Consume the leading '//'
	l.readChar()
	l.readChar()
	textStart := l.position
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	// Don't consume the newline itself, let skipWhitespace handle it
	l.addComment(Comment{
		Text:     l.input[textStart:l.position],
		Line:     startLine,
		Column:   startCol,
		StartPos: startPos,
		EndPos:   l.position,
	})
}

// readBlockComment collects a '/* */' comment. Returns false when the
// comment is unterminated (EOF reached first).
func (l *Lexer) readBlockComment(startLine, startCol, startPos int) bool {
	// Consume the opening '/*'
	l.readChar()
	l.readChar()
	textStart := l.position

	for {
		if l.ch == 0 { // Reached EOF before finding closing */
			return false
		}
		if l.ch == '*' && l.peekChar() == '/' {
			text := l.input[textStart:l.position]
			l.readChar() // Consume '*'
			l.readChar() // Consume '/'
			l.addComment(Comment{
				Text:     text,
				Block:    true,
				Line:     startLine,
				Column:   startCol,
				StartPos: startPos,
				EndPos:   l.position,
			})
			return true
		}
		l.readChar()
	}
}

// addComment records a comment, dropping re-scans of trivia the parser
// already backtracked over.
func (l *Lexer) addComment(c Comment) {
	if n := len(l.comments); n > 0 && l.comments[n-1].StartPos >= c.StartPos {
		return
	}
	l.comments = append(l.comments, c)
}

// isLetter checks if the character is an ASCII letter or underscore.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

// isIdentStart checks if the character can start an identifier. Bytes
// past the ASCII range are taken to begin a multibyte identifier rune.
func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '$' || ch >= utf8.RuneSelf
}

// isIdentPart checks if the character can continue an identifier.
func isIdentPart(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '$' || ch >= utf8.RuneSelf
}

// isASCII reports whether s contains only ASCII bytes.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// isDigit checks if the character is a digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// isHexDigit checks if the character is a hexadecimal digit (0-9, a-f, A-F).
func isHexDigit(ch byte) bool {
	return ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

// isOctalDigit checks if the character is an octal digit (0-7).
func isOctalDigit(ch byte) bool {
	return '0' <= ch && ch <= '7'
}

// isBinaryDigit checks if the character is a binary digit (0-1).
func isBinaryDigit(ch byte) bool {
	return ch == '0' || ch == '1'
}

// isDigitForBase checks if the character is a valid digit for the given base.
func isDigitForBase(ch byte, base int) bool {
	switch base {
	case 16:
		return isHexDigit(ch)
	case 10:
		return isDigit(ch)
	case 8:
		return isOctalDigit(ch)
	case 2:
		return isBinaryDigit(ch)
	default:
		return false
	}
}

// isRegexFlag checks if the character is a valid regex flag.
func isRegexFlag(ch byte) bool {
	switch ch {
	case 'd', 'g', 'i', 'm', 's', 'u', 'v', 'y':
		return true
	}
	return false
}
