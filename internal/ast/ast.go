// Package ast defines Jactl's typed AST node hierarchy (spec §3, §4.6,
// component C6): two disjoint sum types, Expression (yields a value) and
// Statement (no value), sharing common positional/type metadata.
package ast

import (
	"bytes"
	"strings"

	"github.com/cwbudde-labs/jactl/internal/jtypes"
	"github.com/cwbudde-labs/jactl/internal/token"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() token.Position
}

// Expression is any node that produces a value of some jtypes.Type.
type Expression interface {
	Node
	expressionNode()
	GetType() jtypes.Type
	SetType(jtypes.Type)
	Const() (jtypes.Type, interface{}, bool) // (type, cached value, isConst)
	SetConst(value interface{})
	ResultUsed() bool
	SetResultUsed(bool)
	ExprToken() *token.Token
}

// Statement is a node that performs an action but doesn't itself yield a
// value.
type Statement interface {
	Node
	statementNode()
}

// Program is the root of a parsed script: an ordered list of top-level
// statements.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Position{Line: 1, Column: 1}
}

// ExprInfo is embedded by every Expression implementation; it carries the
// metadata the spec's Data Model section says is shared by every
// expression node: source location (via Tok), inferred type, const-flag +
// cached const value, and the isResultUsed flag.
type ExprInfo struct {
	Tok          *token.Token
	Type         jtypes.Type
	IsConst      bool
	ConstValue   interface{}
	IsResultUsed bool
}

func (e *ExprInfo) expressionNode() {}

func (e *ExprInfo) Pos() token.Position {
	if e.Tok == nil {
		return token.Position{}
	}
	return e.Tok.Pos()
}

func (e *ExprInfo) TokenLiteral() string {
	if e.Tok == nil {
		return ""
	}
	return e.Tok.Text()
}

func (e *ExprInfo) GetType() jtypes.Type  { return e.Type }
func (e *ExprInfo) SetType(t jtypes.Type) { e.Type = t }

func (e *ExprInfo) Const() (jtypes.Type, interface{}, bool) {
	return e.Type, e.ConstValue, e.IsConst
}

func (e *ExprInfo) SetConst(value interface{}) {
	e.IsConst = true
	e.ConstValue = value
}

func (e *ExprInfo) ResultUsed() bool     { return e.IsResultUsed }
func (e *ExprInfo) SetResultUsed(v bool) { e.IsResultUsed = v }

// ExprToken exposes the node's anchoring Token, used when an expression
// used in statement position needs to be wrapped (ExprStmt) or when a
// rewrite needs to borrow its source position.
func (e *ExprInfo) ExprToken() *token.Token { return e.Tok }

// StmtInfo is embedded by every Statement implementation.
type StmtInfo struct {
	Tok *token.Token
}

func (s *StmtInfo) statementNode() {}

func (s *StmtInfo) Pos() token.Position {
	if s.Tok == nil {
		return token.Position{}
	}
	return s.Tok.Pos()
}

func (s *StmtInfo) TokenLiteral() string {
	if s.Tok == nil {
		return ""
	}
	return s.Tok.Text()
}

// joinExprs is a small String()-building helper shared by node printers.
func joinExprs(exprs []Expression, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}
