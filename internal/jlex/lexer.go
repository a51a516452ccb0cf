// Package jlex implements Jactl's tokeniser (spec §4.1, component C1):
// bytes in, a stream of Tokens out, with interpolated-string handling and
// one-token lookahead via Cursor.
package jlex

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/cwbudde-labs/jactl/internal/jerrors"
	"github.com/cwbudde-labs/jactl/internal/token"
)

// stringState is one entry of the interpolated-string state stack: one
// entry per currently-open interpolated (double-quoted) string.
type stringState struct {
	tripleQuoted    bool
	newlinesAllowed bool
	closeAtBraces   int // nestedBraces value at which this string's ${…} closes
}

// Lexer scans Jactl source text into Tokens on demand. It has no internal
// token buffer of its own; repeatable lookahead is the job of Cursor, which
// wraps a Lexer and caches produced Tokens in the Token.Next chain.
type Lexer struct {
	src    *token.Source
	input  string
	pos    int // byte offset of ch
	rdPos  int // byte offset of next rune
	line   int
	column int
	ch     rune

	errors []*jerrors.CompileError

	inString     bool
	nestedBraces int
	stringStack  []stringState

	// suppressDecimalExtension is set by Cursor immediately before each
	// Next() call when the previously emitted token was DOT (spec §4.1:
	// "if the previous token was `.`, a trailing `.digit` sequence does
	// not start a decimal — this keeps dotted paths like `a.1.2.b` legal").
	suppressDecimalExtension bool
}

// SetPrecededByDot tells the lexer whether the token it is about to
// produce is immediately preceded by a DOT token, so a numeric literal
// does not greedily swallow a following ".digit" as a decimal extension.
func (l *Lexer) SetPrecededByDot(v bool) { l.suppressDecimalExtension = v }

func New(name, input string) *Lexer {
	if len(input) >= 3 && input[0] == 0xEF && input[1] == 0xBB && input[2] == 0xBF {
		input = input[3:] // strip UTF-8 BOM
	}
	l := &Lexer{
		src:    &token.Source{Name: name, Text: input},
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

func (l *Lexer) Errors() []*jerrors.CompileError { return l.errors }

func (l *Lexer) addError(pos token.Position, format string, args ...interface{}) {
	l.errors = append(l.errors, jerrors.NewCompileError(pos, fmt.Sprintf(format, args...), l.input, l.src.Name))
}

func (l *Lexer) readChar() {
	if l.rdPos >= len(l.input) {
		l.ch = 0
		l.pos = l.rdPos
		l.column++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.rdPos:])
	l.ch = r
	l.pos = l.rdPos
	l.rdPos += size
	l.column++
	if r == '\n' {
		// column is bumped again by the caller resetting line state; see advanceLine
	}
}

func (l *Lexer) advanceLine() {
	l.line++
	l.column = 0
}

func (l *Lexer) peekChar() rune {
	if l.rdPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.rdPos:])
	return r
}

func (l *Lexer) peekCharN(n int) rune {
	pos := l.rdPos
	for i := 0; i < n-1 && pos < len(l.input); i++ {
		_, size := utf8.DecodeRuneInString(l.input[pos:])
		pos += size
	}
	if pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return r
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: l.line, Column: l.column, Offset: l.pos}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// Next produces the next raw token from the input. Cursor is responsible
// for caching it onto the Token.Next chain for rewind support.
func (l *Lexer) Next() *token.Token {
	if l.inString {
		return l.nextStringToken()
	}

	l.skipWhitespaceAndComments()

	startPos := l.currentPos()

	switch {
	case l.ch == 0:
		return l.make(token.EOF, startPos, 0)
	case l.ch == '\n':
		return l.lexNewline(startPos)
	case isLetter(l.ch):
		return l.lexIdentifier(startPos)
	case isDigit(l.ch):
		return l.lexNumber(startPos)
	case l.ch == '\'':
		return l.lexSingleQuoted(startPos)
	case l.ch == '"':
		return l.lexDoubleQuotedStart(startPos)
	case l.ch == '$':
		return l.lexBareDollar(startPos)
	}

	return l.lexOperator(startPos)
}

// lexNewline collapses a run of consecutive newlines (and the blank-line
// whitespace between them) into a single NEWLINE token (spec §4.1:
// "Successive newline tokens collapse to one").
func (l *Lexer) lexNewline(startPos token.Position) *token.Token {
	for {
		l.advanceLine()
		l.readChar()
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '\n' {
			continue
		}
		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			if l.ch == '\n' {
				continue
			}
		}
		break
	}
	return l.makeAt(token.NEWLINE, startPos, l.pos)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			l.skipLineComment()
		case l.ch == '/' && l.peekChar() == '*':
			l.skipBlockComment()
		default:
			return
		}
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) skipBlockComment() {
	start := l.currentPos()
	l.readChar() // consume '/'
	l.readChar() // consume '*'
	for {
		if l.ch == 0 {
			l.addError(start, "Unterminated block comment")
			return
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		if l.ch == '\n' {
			l.advanceLine()
		}
		l.readChar()
	}
}

func (l *Lexer) lexIdentifier(startPos token.Position) *token.Token {
	startOffset := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	text := l.input[startOffset:l.pos]
	// NFC normalization applies to keyword lookup only; the token's text
	// (and so an identifier's name) keeps the source bytes as written.
	text = norm.NFC.String(text)
	kind := token.LookupIdentifier(text)
	t := l.makeAt(kind, startPos, l.pos)
	t.IsKeyword = token.IsKeyword(kind)
	switch kind {
	case token.TRUE:
		t.HasLit, t.Literal = true, token.Value{Bool: true}
	case token.FALSE:
		t.HasLit, t.Literal = true, token.Value{Bool: false}
	case token.NULL:
		t.HasLit, t.Literal = true, token.Value{IsNull: true}
	}
	return t
}

// lexNumber implements spec §4.1's numeric literal rules: integer, `L`
// suffix for long, `D` suffix (or a decimal point with no suffix, where the
// suffix is absent) for double vs Decimal. A decimal tail is scanned only
// when the '.' is followed by a digit and suppressDecimalExtension is
// off; that flag implements the "previous token was '.'" dotted-path
// carve-out and is set by the Cursor, which knows the previous token.
func (l *Lexer) lexNumber(startPos token.Position) *token.Token {
	startOffset := l.pos
	isDecimalPoint := false

	for isDigit(l.ch) {
		l.readChar()
	}

	if !l.suppressDecimalExtension && l.ch == '.' && isDigit(l.peekChar()) {
		isDecimalPoint = true
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// exponent
	hasExponent := false
	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || ((l.peekChar() == '+' || l.peekChar() == '-') && isDigit(l.peekCharN(2)))) {
		hasExponent = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	suffix := byte(0)
	if l.ch == 'L' || l.ch == 'l' {
		suffix = 'L'
		l.readChar()
	} else if l.ch == 'D' || l.ch == 'd' {
		suffix = 'D'
		l.readChar()
	}

	text := l.input[startOffset:l.pos]
	digits := text
	if suffix != 0 {
		digits = text[:len(text)-1]
	}

	switch {
	case suffix == 'L':
		v, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			l.addError(startPos, "Number too large for long constant")
			v = 0
		}
		t := l.makeAt(token.LONG_CONST, startPos, l.pos)
		t.HasLit, t.Literal = true, token.Value{Long: v}
		return t
	case suffix == 'D':
		v, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			l.addError(startPos, "Number too large for double constant")
		}
		t := l.makeAt(token.DOUBLE_CONST, startPos, l.pos)
		t.HasLit, t.Literal = true, token.Value{Double: v}
		return t
	case isDecimalPoint && !hasExponent:
		// unsuffixed decimal literal: Decimal, not double (spec §6)
		r, ok := new(big.Rat).SetString(digits)
		if !ok {
			l.addError(startPos, "Number too large for Decimal constant")
			r = new(big.Rat)
		}
		t := l.makeAt(token.DECIMAL_CONST, startPos, l.pos)
		t.HasLit, t.Literal = true, token.Value{Decimal: r}
		return t
	case isDecimalPoint || hasExponent:
		v, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			l.addError(startPos, "Number too large for double constant")
		}
		t := l.makeAt(token.DOUBLE_CONST, startPos, l.pos)
		t.HasLit, t.Literal = true, token.Value{Double: v}
		return t
	default:
		v, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			l.addError(startPos, "Number too large for int constant")
			v = 0
		}
		if v > (1<<31 - 1) || v < -(1 << 31) {
			l.addError(startPos, "Number too large for int constant")
		}
		t := l.makeAt(token.INTEGER_CONST, startPos, l.pos)
		t.HasLit, t.Literal = true, token.Value{Int: v}
		return t
	}
}

func (l *Lexer) make(kind token.Kind, pos token.Position, length int) *token.Token {
	return &token.Token{Source: l.src, Kind: kind, Offset: pos.Offset, Length: length, Line: pos.Line, Column: pos.Column}
}

func (l *Lexer) makeAt(kind token.Kind, startPos token.Position, endOffset int) *token.Token {
	return l.make(kind, startPos, endOffset-startPos.Offset)
}

// longestMatchOperators is ordered longest-first so greedy matching (spec
// §4.1 "symbolic operators (greedy, longest match)") never short-circuits
// on a prefix of a longer operator.
var longestMatchOperators = []struct {
	text string
	kind token.Kind
}{
	{">>>", token.SHIFT_RIGHT_UNSIGNED},
	{"<=>", token.LESS_EQUAL_GREATER},
	{"**", token.STAR_STAR},
	{"++", token.PLUS_PLUS},
	{"--", token.MINUS_MINUS},
	{"+=", token.PLUS_EQUAL},
	{"-=", token.MINUS_EQUAL},
	{"*=", token.STAR_EQUAL},
	{"/=", token.SLASH_EQUAL},
	{"%=", token.PERCENT_EQUAL},
	{"==", token.EQUAL_EQUAL},
	{"=~", token.EQUAL_GRAPPLE},
	{"!=", token.BANG_EQUAL},
	{"!~", token.BANG_TILDE},
	{"<=", token.LESS_EQUAL},
	{">=", token.GREATER_EQUAL},
	{"&&", token.AMP_AMP},
	{"||", token.PIPE_PIPE},
	{"?=", token.QUESTION_EQUAL},
	{"?:", token.QUESTION_COLON},
	{"?.", token.QUESTION_DOT},
	{"?[", token.QUESTION_SQUARE},
	{"&=", token.AMP_EQUAL},
	{"|=", token.PIPE_EQUAL},
	{"^=", token.CARET_EQUAL},
	{"<<", token.SHIFT_LEFT},
	{">>", token.SHIFT_RIGHT},
	{"->", token.ARROW},
	{"(", token.LEFT_PAREN},
	{")", token.RIGHT_PAREN},
	{"{", token.LEFT_BRACE},
	{"}", token.RIGHT_BRACE},
	{"[", token.LEFT_SQUARE},
	{"]", token.RIGHT_SQUARE},
	{",", token.COMMA},
	{";", token.SEMICOLON},
	{":", token.COLON},
	{"?", token.QUESTION},
	{".", token.DOT},
	{"+", token.PLUS},
	{"-", token.MINUS},
	{"*", token.STAR},
	{"/", token.SLASH},
	{"%", token.PERCENT},
	{"=", token.EQUAL},
	{"!", token.BANG},
	{"<", token.LESS},
	{">", token.GREATER},
	{"~", token.TILDE},
	{"&", token.AMP},
	{"|", token.PIPE},
	{"^", token.CARET},
}

func (l *Lexer) lexOperator(startPos token.Position) *token.Token {
	if l.ch == '!' {
		// "!instanceof"/"!in" form one token unless the word runs on
		for _, neg := range []string{"!instanceof", "!in"} {
			rest := l.input[l.pos:]
			next, _ := utf8.DecodeRuneInString(strings.TrimPrefix(rest, neg))
			if strings.HasPrefix(rest, neg) && !isLetter(next) && !isDigit(next) {
				l.matchLiteral(neg)
				kind := token.NOT_IN
				if neg == "!instanceof" {
					kind = token.NOT_INSTANCEOF
				}
				tok := l.make(kind, startPos, len(neg))
				tok.IsKeyword = true
				return tok
			}
		}
	}
	for _, op := range longestMatchOperators {
		if l.matchLiteral(op.text) {
			tok := l.make(op.kind, startPos, len(op.text))
			if op.kind == token.LEFT_BRACE {
				l.nestedBraces++
			} else if op.kind == token.RIGHT_BRACE {
				l.closeBraceAndMaybeResumeString()
			}
			return tok
		}
	}
	ch := l.ch
	l.readChar()
	l.addError(startPos, "Unexpected character %q", ch)
	return l.make(token.ILLEGAL, startPos, utf8.RuneLen(ch))
}

// matchLiteral consumes exactly text from the input at the current
// position, advancing the lexer past it; otherwise it leaves state
// untouched. text is always ASCII (operators/punctuation), so byte and
// rune counts coincide.
func (l *Lexer) matchLiteral(text string) bool {
	if !strings.HasPrefix(l.input[l.pos:], text) {
		return false
	}
	for range text {
		l.readChar()
	}
	return true
}

// closeBraceAndMaybeResumeString implements spec §4.1: "A `}` decrements
// nestedBraces; if it matches the brace level recorded for the top of the
// string-state stack, the tokeniser re-enters string mode."
func (l *Lexer) closeBraceAndMaybeResumeString() {
	l.nestedBraces--
	if n := len(l.stringStack); n > 0 && l.stringStack[n-1].closeAtBraces == l.nestedBraces {
		l.inString = true
	}
}
