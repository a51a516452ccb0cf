package jlex

import (
	"github.com/cwbudde-labs/jactl/internal/jerrors"
	"github.com/cwbudde-labs/jactl/internal/token"
)

// Cursor wraps a Lexer and gives the parser one-token lookahead plus
// unbounded rewind (spec §4.1: "the parser may rewind to any previously
// seen token by pointing its cursor backward; `next` links remain valid").
// Every Token ever produced stays reachable from the first Token through
// the Next chain, so Cursor never re-scans.
type Cursor struct {
	lex     *Lexer
	first   *token.Token
	current *token.Token
}

func NewCursor(lex *Lexer) *Cursor {
	lex.SetPrecededByDot(false)
	first := lex.Next()
	return &Cursor{lex: lex, first: first, current: first}
}

// Current returns the token the cursor is positioned on.
func (c *Cursor) Current() *token.Token { return c.current }

// First returns the very first token of the stream.
func (c *Cursor) First() *token.Token { return c.first }

// Advance moves the cursor to the next token, producing it from the
// underlying Lexer only the first time this position is visited.
func (c *Cursor) Advance() *token.Token {
	if c.current.Next == nil {
		c.lex.SetPrecededByDot(c.current.Kind == token.DOT)
		c.current.Next = c.lex.Next()
	}
	c.current = c.current.Next
	return c.current
}

// RewindTo repositions the cursor at a Token previously returned by this
// same Cursor (via Current/Advance). No re-scanning occurs.
func (c *Cursor) RewindTo(t *token.Token) { c.current = t }

// Errors returns every lexical error accumulated by the underlying Lexer
// so far.
func (c *Cursor) Errors() []*jerrors.CompileError {
	return c.lex.Errors()
}

// AtEOF reports whether the current token is the EOF token.
func (c *Cursor) AtEOF() bool { return c.current.Kind == token.EOF }

// BraceBalanceOK reports whether the brace-depth and string-state
// invariants hold (spec §8 invariant 2: "at EOF the tokeniser's
// nestedBraces is zero and the string-state stack is empty, else a
// compile error was raised").
func (c *Cursor) BraceBalanceOK() bool {
	return c.lex.nestedBraces == 0 && len(c.lex.stringStack) == 0
}
