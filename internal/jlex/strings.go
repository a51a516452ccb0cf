package jlex

import (
	"strings"

	"github.com/cwbudde-labs/jactl/internal/token"
)

// lexSingleQuoted scans a single- or triple-single-quoted string (spec
// §4.1: "no interpolation"). It never enters the interpolation state
// machine: the whole literal is produced as one STRING_CONST token.
func (l *Lexer) lexSingleQuoted(startPos token.Position) *token.Token {
	triple := l.peekChar() == '\'' && l.peekCharN(2) == '\''
	l.readChar()
	if triple {
		l.readChar()
		l.readChar()
	}

	var sb strings.Builder
	for {
		if l.ch == 0 {
			l.addError(startPos, "Unterminated string literal")
			break
		}
		if l.ch == '\'' {
			if triple {
				if l.peekChar() == '\'' && l.peekCharN(2) == '\'' {
					l.readChar()
					l.readChar()
					l.readChar()
					break
				}
			} else {
				l.readChar()
				break
			}
		}
		if l.ch == '\\' && !triple {
			l.readChar()
			if l.ch == 0 {
				l.addError(startPos, "Unterminated string literal")
				break
			}
			sb.WriteRune(mapEscape(l.ch))
			l.readChar()
			continue
		}
		if l.ch == '\n' {
			if !triple {
				l.addError(l.currentPos(), "Newline not allowed in single-quoted string")
			}
			l.advanceLine()
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}

	t := l.makeAt(token.STRING_CONST, startPos, l.pos)
	t.HasLit, t.Literal = true, token.Value{Str: sb.String()}
	return t
}

// lexDoubleQuotedStart opens an interpolated string (spec §4.1 interpolated
// string state machine). It pushes a new stringState and returns
// EXPR_STRING_START; subsequent Next() calls route through nextStringToken
// until the matching close is found.
func (l *Lexer) lexDoubleQuotedStart(startPos token.Position) *token.Token {
	triple := l.peekChar() == '"' && l.peekCharN(2) == '"'
	l.readChar()
	if triple {
		l.readChar()
		l.readChar()
	}

	l.stringStack = append(l.stringStack, stringState{
		tripleQuoted:    triple,
		newlinesAllowed: triple,
		closeAtBraces:   -1,
	})
	l.inString = true
	return l.makeAt(token.EXPR_STRING_START, startPos, l.pos)
}

// lexBareDollar handles a top-level `$` that is not inside a string at
// all; spec §4.1 only defines `$` specially inside interpolated strings,
// so outside of one it is always illegal (identifiers may not start with
// `$`, per spec §6).
func (l *Lexer) lexBareDollar(startPos token.Position) *token.Token {
	l.readChar()
	l.addError(startPos, "Unexpected character '$'")
	return l.make(token.ILLEGAL, startPos, 1)
}

// nextStringToken is called whenever l.inString is true: it scans the next
// chunk of an interpolated string's content, or recognises one of the
// three triggers that interrupt content scanning: the closing delimiter,
// "${" (emits LEFT_BRACE and hands control back to normal code scanning),
// or a bare `$identifier` reference.
func (l *Lexer) nextStringToken() *token.Token {
	if len(l.stringStack) == 0 {
		// Invariant violation in the lexer itself; recover by leaving
		// string mode rather than looping forever.
		l.inString = false
		return l.Next()
	}
	top := &l.stringStack[len(l.stringStack)-1]
	startPos := l.currentPos()

	if l.atClosingDelimiter(top) {
		l.consumeClosingDelimiter(top)
		l.stringStack = l.stringStack[:len(l.stringStack)-1]
		l.inString = false
		return l.makeAt(token.EXPR_STRING_END, startPos, l.pos)
	}

	if l.ch == '$' && l.peekChar() == '{' {
		l.readChar()
		l.readChar()
		pre := l.nestedBraces
		l.nestedBraces++
		top.closeAtBraces = pre
		l.inString = false
		return l.makeAt(token.LEFT_BRACE, startPos, l.pos)
	}

	if l.ch == '$' && isLetter(l.peekChar()) {
		l.readChar() // consume '$'
		identStart := l.currentPos()
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		// remain in string mode: no braces were opened for a bare $ident
		return l.makeAt(token.IDENTIFIER, identStart, l.pos)
	}

	return l.scanStringContent(top, startPos)
}

func (l *Lexer) scanStringContent(top *stringState, startPos token.Position) *token.Token {
	var sb strings.Builder
	newlinesOK := l.allEnclosingStatesTripleQuoted()

	for {
		if l.ch == 0 {
			l.addError(startPos, "Unterminated string literal")
			break
		}
		if l.atClosingDelimiter(top) {
			break
		}
		if l.ch == '$' && (l.peekChar() == '{' || isLetter(l.peekChar())) {
			break
		}
		if l.ch == '\\' {
			l.readChar()
			if l.ch == 0 {
				l.addError(startPos, "Unterminated string literal")
				break
			}
			sb.WriteRune(mapEscape(l.ch))
			l.readChar()
			continue
		}
		if l.ch == '\n' {
			if !newlinesOK {
				l.addError(l.currentPos(), "Newline not allowed in string literal")
			}
			l.advanceLine()
			sb.WriteRune('\n')
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == 0 {
		// leave string mode so the next token is EOF; the string-state
		// stack stays non-empty, which BraceBalanceOK reports
		l.inString = false
	}

	t := l.makeAt(token.STRING_CONST, startPos, l.pos)
	t.HasLit, t.Literal = true, token.Value{Str: sb.String()}
	return t
}

func (l *Lexer) allEnclosingStatesTripleQuoted() bool {
	for _, s := range l.stringStack {
		if !s.tripleQuoted {
			return false
		}
	}
	return true
}

func (l *Lexer) atClosingDelimiter(top *stringState) bool {
	if l.ch != '"' {
		return false
	}
	if top.tripleQuoted {
		return l.peekChar() == '"' && l.peekCharN(2) == '"'
	}
	return true
}

func (l *Lexer) consumeClosingDelimiter(top *stringState) {
	l.readChar()
	if top.tripleQuoted {
		l.readChar()
		l.readChar()
	}
}

// mapEscape implements spec §4.1 escape handling: `\t \b \n \r \f` map to
// their usual characters; any other escaped character yields itself
// literally (e.g. `\$` -> `$`, `\"` -> `"`, `\\` -> `\`).
func mapEscape(ch rune) rune {
	switch ch {
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 'f':
		return '\f'
	default:
		return ch
	}
}
