// Package jparser implements Jactl's recursive-descent parser (spec §4.2,
// component C2): tokens to AST, with expression-precedence climbing and
// statement-style control flow. It does not resolve identifiers — every
// Identifier's VarDecl pointer is nil until the Resolver (internal/resolver)
// runs.
package jparser

import (
	"fmt"

	"github.com/cwbudde-labs/jactl/internal/ast"
	"github.com/cwbudde-labs/jactl/internal/jerrors"
	"github.com/cwbudde-labs/jactl/internal/jlex"
	"github.com/cwbudde-labs/jactl/internal/jtypes"
	"github.com/cwbudde-labs/jactl/internal/token"
)

// Parser holds parse-time state: the token cursor, accumulated
// diagnostics, and the lexically-scoped loop stack used to bind
// break/continue (spec §4.2).
type Parser struct {
	cursor *jlex.Cursor
	source string
	file   string

	diags *jerrors.Diagnostics

	loopStack []*ast.While

	// parenDepth/bracketDepth count open parentheses and brackets. No
	// production reads them: a NEWLINE inside a grouping construct is not
	// skipped and ends the expression like any other.
	parenDepth   int
	bracketDepth int
}

func New(filename, source string) *Parser {
	lex := jlex.New(filename, source)
	return &Parser{
		cursor: jlex.NewCursor(lex),
		source: source,
		file:   filename,
		diags:  &jerrors.Diagnostics{},
	}
}

func (p *Parser) Diagnostics() *jerrors.Diagnostics { return p.diags }

func (p *Parser) cur() *token.Token  { return p.cursor.Current() }
func (p *Parser) advance() *token.Token {
	// return the consumed token, as every caller (and expect) relies on
	t := p.cursor.Current()
	p.cursor.Advance()
	return t
}

func (p *Parser) curKind() token.Kind { return p.cur().Kind }

func (p *Parser) errorf(pos token.Position, format string, args ...interface{}) {
	p.diags.Errors = append(p.diags.Errors, jerrors.NewCompileError(pos, fmt.Sprintf(format, args...), p.source, p.file))
}

// expect consumes the current token if it matches kind, else records a
// compile error and returns the (wrong) current token without advancing.
func (p *Parser) expect(kind token.Kind) *token.Token {
	t := p.cur()
	if t.Kind != kind {
		p.errorf(t.Pos(), "expected %s but found %s", kind, t.Kind)
		return t
	}
	p.advance()
	return t
}

func (p *Parser) at(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.curKind() == k {
			return true
		}
	}
	return false
}

// skipSeparators consumes any run of NEWLINE/SEMICOLON tokens, which act
// as statement terminators (spec §4.2: "statement-level newlines act as
// `;`").
func (p *Parser) skipSeparators() {
	for p.at(token.NEWLINE, token.SEMICOLON) {
		p.advance()
	}
}

// ParseProgram parses an entire script into a Program of top-level
// statements.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	p.skipSeparators()
	for !p.at(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.skipSeparators()
	}
	if !p.cursor.BraceBalanceOK() {
		p.errorf(p.cur().Pos(), "unbalanced braces or unterminated string at end of file")
	}
	p.diags.Errors = append(p.diags.Errors, lexErrors(p.cursor)...)
	return prog
}

func lexErrors(c *jlex.Cursor) []*jerrors.CompileError {
	return c.Errors()
}

// currentLoop returns the innermost enclosing While, or nil.
func (p *Parser) currentLoop() *ast.While {
	if len(p.loopStack) == 0 {
		return nil
	}
	return p.loopStack[len(p.loopStack)-1]
}

func (p *Parser) pushLoop(w *ast.While) { p.loopStack = append(p.loopStack, w) }
func (p *Parser) popLoop()              { p.loopStack = p.loopStack[:len(p.loopStack)-1] }

// typeKeywordToType maps a declared-type keyword token to its jtypes.Type.
// `var` and an unrecognised class-name identifier both map to Unknown,
// pending inference/resolution.
func typeKeywordToType(k token.Kind) (jtypes.Type, bool) {
	switch k {
	case token.BOOLEAN:
		return jtypes.Primitive(jtypes.BOOLEAN, false), true
	case token.INT:
		return jtypes.Primitive(jtypes.INT, false), true
	case token.LONG:
		return jtypes.Primitive(jtypes.LONG, false), true
	case token.DOUBLE:
		return jtypes.Primitive(jtypes.DOUBLE, false), true
	case token.DECIMAL:
		return jtypes.Decimal, true
	case token.STRING_TYPE:
		return jtypes.String, true
	case token.MAP_TYPE:
		return jtypes.MapT, true
	case token.LIST_TYPE:
		return jtypes.ListT, true
	case token.VOID:
		return jtypes.Void, true
	case token.DEF, token.VAR:
		return jtypes.Unknown, true
	}
	return jtypes.Type{}, false
}

// isTypeStart reports whether the current token can begin a declared-type
// var-declaration statement (as opposed to an expression statement).
func (p *Parser) isTypeStart() bool {
	switch p.curKind() {
	case token.VAR, token.DEF, token.BOOLEAN, token.INT, token.LONG, token.DOUBLE,
		token.DECIMAL, token.STRING_TYPE, token.MAP_TYPE, token.LIST_TYPE:
		return true
	}
	return false
}
