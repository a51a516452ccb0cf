package jlex

import (
	"testing"

	"github.com/cwbudde-labs/jactl/internal/token"
)

func allTokens(src string) []*token.Token {
	l := New("<test>", src)
	var toks []*token.Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return toks
}

func TestNextTokenBasic(t *testing.T) {
	input := `int x = 5
x += 10`

	tests := []struct {
		kind token.Kind
		text string
	}{
		{token.INT, "int"},
		{token.IDENTIFIER, "x"},
		{token.EQUAL, "="},
		{token.INTEGER_CONST, "5"},
		{token.NEWLINE, "\n"},
		{token.IDENTIFIER, "x"},
		{token.PLUS_EQUAL, "+="},
		{token.INTEGER_CONST, "10"},
		{token.EOF, ""},
	}

	toks := allTokens(input)
	if len(toks) != len(tests) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(tests), toks)
	}
	for i, tt := range tests {
		if toks[i].Kind != tt.kind {
			t.Errorf("token[%d]: kind = %s, want %s (text %q)", i, toks[i].Kind, tt.kind, toks[i].Text())
		}
	}
}

func TestKeywords(t *testing.T) {
	input := "def var boolean int long double Decimal String Map List void for if else while continue break class interface extends implements import as return instanceof and or true false null print println do"

	want := []token.Kind{
		token.DEF, token.VAR, token.BOOLEAN, token.INT, token.LONG, token.DOUBLE, token.DECIMAL,
		token.STRING_TYPE, token.MAP_TYPE, token.LIST_TYPE, token.VOID, token.FOR, token.IF, token.ELSE,
		token.WHILE, token.CONTINUE, token.BREAK, token.CLASS, token.INTERFACE, token.EXTENDS,
		token.IMPLEMENTS, token.IMPORT, token.AS, token.RETURN, token.INSTANCEOF, token.AND, token.OR,
		token.TRUE, token.FALSE, token.NULL, token.PRINT, token.PRINTLN, token.DO, token.EOF,
	}

	toks := allTokens(input)
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token[%d] = %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestOperatorsLongestMatch(t *testing.T) {
	input := ">>> <=> ** ++ -- += -= *= /= %= == =~ != !~ <= >= && || ?= ?: ?. ?[ &= |= ^= << >> -> + - * / % = ! < > ~ & | ^"
	want := []token.Kind{
		token.SHIFT_RIGHT_UNSIGNED, token.LESS_EQUAL_GREATER, token.STAR_STAR, token.PLUS_PLUS, token.MINUS_MINUS,
		token.PLUS_EQUAL, token.MINUS_EQUAL, token.STAR_EQUAL, token.SLASH_EQUAL, token.PERCENT_EQUAL,
		token.EQUAL_EQUAL, token.EQUAL_GRAPPLE, token.BANG_EQUAL, token.BANG_TILDE, token.LESS_EQUAL,
		token.GREATER_EQUAL, token.AMP_AMP, token.PIPE_PIPE, token.QUESTION_EQUAL, token.QUESTION_COLON,
		token.QUESTION_DOT, token.QUESTION_SQUARE, token.AMP_EQUAL, token.PIPE_EQUAL, token.CARET_EQUAL,
		token.SHIFT_LEFT, token.SHIFT_RIGHT, token.ARROW, token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.PERCENT, token.EQUAL, token.BANG, token.LESS, token.GREATER, token.TILDE, token.AMP, token.PIPE,
		token.CARET, token.EOF,
	}
	toks := allTokens(input)
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token[%d] = %s (%q), want %s", i, toks[i].Kind, toks[i].Text(), k)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		src  string
		kind token.Kind
	}{
		{"42", token.INTEGER_CONST},
		{"42L", token.LONG_CONST},
		{"3.14", token.DECIMAL_CONST},
		{"3.14D", token.DOUBLE_CONST},
		{"1e10", token.DOUBLE_CONST},
		{"1.5e-3", token.DOUBLE_CONST},
	}
	for _, tt := range tests {
		toks := allTokens(tt.src)
		if toks[0].Kind != tt.kind {
			t.Errorf("%q: got kind %s, want %s", tt.src, toks[0].Kind, tt.kind)
		}
	}
}

func TestIntegerOverflowReportsError(t *testing.T) {
	l := New("<test>", "99999999999")
	l.Next()
	if len(l.Errors()) == 0 {
		t.Fatal("expected an overflow error for an int literal exceeding 32 bits")
	}
}

func TestNewlineRunCollapses(t *testing.T) {
	toks := allTokens("x\n\n\ny")
	var kinds []token.Kind
	for _, t := range toks {
		kinds = append(kinds, t.Kind)
	}
	want := []token.Kind{token.IDENTIFIER, token.NEWLINE, token.IDENTIFIER, token.EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestBraceBalanceOK(t *testing.T) {
	l := New("<test>", "{ 1 }")
	c := NewCursor(l)
	for !c.AtEOF() {
		c.Advance()
	}
	if !c.BraceBalanceOK() {
		t.Error("expected balanced braces to report OK")
	}

	l2 := New("<test>", "{ 1")
	c2 := NewCursor(l2)
	for !c2.AtEOF() {
		c2.Advance()
	}
	if c2.BraceBalanceOK() {
		t.Error("expected an unterminated brace to report NOT OK")
	}
}

func TestCursorRewind(t *testing.T) {
	l := New("<test>", "a b c")
	c := NewCursor(l)
	first := c.Current()
	c.Advance()
	c.Advance()
	if c.Current().Text() != "c" {
		t.Fatalf("expected to be at 'c', got %q", c.Current().Text())
	}
	c.RewindTo(first)
	if c.Current().Text() != "a" {
		t.Fatalf("rewind failed: got %q", c.Current().Text())
	}
}
