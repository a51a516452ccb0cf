package ast

import (
	"fmt"
	"strings"

	"github.com/cwbudde-labs/jactl/internal/jtypes"
)

// Stmts is a flat ordered sequence of statements that does not itself
// introduce a new scope (spec §3); contrast with Block, which does.
type Stmts struct {
	StmtInfo
	List []Statement
}

func (s *Stmts) String() string {
	parts := make([]string, len(s.List))
	for i, st := range s.List {
		parts[i] = st.String()
	}
	return strings.Join(parts, "\n")
}

// Block introduces a new lexical scope around an ordered list of
// statements. It is both a Statement (`{ ... }` used for control flow) and
// an Expression (`do { ... }` used as a value, spec §4.2) — the last
// statement's value is the block's value when IsDoExpr is true.
type Block struct {
	ExprInfo
	Statements []Statement
	IsDoExpr   bool

	// FunctionTable records every FunDecl declared directly in this block,
	// inserted by the Parser before it descends into the block body so
	// that forward references to later-declared functions resolve (spec
	// §4.2: "Allows forward references to functions declared later in the
	// same block").
	FunctionTable map[string]*FunDecl
}

func (b *Block) statementNode() {}

func (b *Block) String() string {
	parts := make([]string, len(b.Statements))
	for i, s := range b.Statements {
		parts[i] = s.String()
	}
	prefix := "{"
	if b.IsDoExpr {
		prefix = "do {"
	}
	return prefix + strings.Join(parts, "; ") + "}"
}

// DeclareFunction records fn in this block's forward-reference table.
func (b *Block) DeclareFunction(fn *FunDecl) {
	if b.FunctionTable == nil {
		b.FunctionTable = make(map[string]*FunDecl)
	}
	b.FunctionTable[fn.Name] = fn
}

var _ Expression = (*Block)(nil)
var _ Statement = (*Block)(nil)

// If is `if (cond) thenStmt [else elseStmt]`.
type If struct {
	StmtInfo
	Cond Expression
	Then Statement
	Else Statement // nil when no else-arm was written
}

func (i *If) String() string {
	s := "if (" + i.Cond.String() + ") " + i.Then.String()
	if i.Else != nil {
		s += " else " + i.Else.String()
	}
	return s
}

// While is the target of Break/Continue lexical binding (spec §4.2).
type While struct {
	StmtInfo
	Cond Expression
	Body Statement

	// UpdateExprs holds the `for(init; cond; update) body` desugaring's
	// update-clause expressions (evaluated every iteration after Body),
	// empty for a plain `while`.
	UpdateExprs []Expression
	Init        Statement // the `for` loop's init-clause, nil for `while`
}

func (w *While) String() string { return "while (" + w.Cond.String() + ") " + w.Body.String() }

// ExprStmt wraps an Expression used for its side effect in statement
// position (spec §3 "ExprStmt").
type ExprStmt struct {
	StmtInfo
	Expr Expression
}

func (e *ExprStmt) String() string { return e.Expr.String() }

// ThrowError raises a runtime error/exception value (spec §3 "ThrowError";
// a supplemented statement kind — see SPEC_FULL.md §D).
type ThrowError struct {
	StmtInfo
	Message Expression
}

func (t *ThrowError) String() string { return "throw " + t.Message.String() }

// ClassField is one field declaration inside a ClassDecl.
type ClassField struct {
	Decl *VarDecl
}

// ClassDecl is a `class Name [extends Super] [implements I1, I2] { ... }`
// declaration (spec §3 "ClassDecl"). The ClassDescriptor it produces is
// consulted by the type system for `instance<T>` compatibility (spec §3,
// §4.3).
type ClassDecl struct {
	StmtInfo
	Name            string
	SuperName       string
	InterfaceNames  []string
	Fields          []*ClassField
	Methods         []*FunDecl
	NestedClasses   []*ClassDecl
	Descriptor      *jtypes.ClassDescriptor
	EnclosingClass  *ClassDecl // non-nil for a class declared nested inside another
}

func (c *ClassDecl) String() string {
	return fmt.Sprintf("class %s { %d fields, %d methods }", c.Name, len(c.Fields), len(c.Methods))
}
