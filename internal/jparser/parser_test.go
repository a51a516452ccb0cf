package jparser

import (
	"testing"

	"github.com/cwbudde-labs/jactl/internal/ast"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New("<test>", src)
	prog := p.ParseProgram()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("unexpected parse errors for %q: %s", src, p.Diagnostics().Format(false))
	}
	return prog
}

func TestParseVarDecl(t *testing.T) {
	prog := parseOK(t, "int x = 5")
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	decl, ok := prog.Statements[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected *ast.VarDecl, got %T", prog.Statements[0])
	}
	if decl.Name != "x" {
		t.Errorf("Name = %q, want %q", decl.Name, "x")
	}
	if decl.Init == nil {
		t.Fatal("expected a non-nil Init")
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3)
	prog := parseOK(t, "1 + 2 * 3")
	stmt, ok := prog.Statements[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected *ast.ExprStmt, got %T", prog.Statements[0])
	}
	top, ok := stmt.Expr.(*ast.Binary)
	if !ok {
		t.Fatalf("expected top-level *ast.Binary, got %T", stmt.Expr)
	}
	if top.Op != "+" {
		t.Fatalf("top operator = %q, want %q", top.Op, "+")
	}
	right, ok := top.Right.(*ast.Binary)
	if !ok {
		t.Fatalf("expected right operand to be *ast.Binary, got %T", top.Right)
	}
	if right.Op != "*" {
		t.Errorf("right operator = %q, want %q", right.Op, "*")
	}
}

func TestParseExponentRightAssociative(t *testing.T) {
	// 2 ** 3 ** 2 should parse as 2 ** (3 ** 2)
	prog := parseOK(t, "2 ** 3 ** 2")
	stmt := prog.Statements[0].(*ast.ExprStmt)
	top := stmt.Expr.(*ast.Binary)
	if top.Op != "**" {
		t.Fatalf("top operator = %q, want %q", top.Op, "**")
	}
	if _, ok := top.Right.(*ast.Binary); !ok {
		t.Fatalf("expected right-associative nesting, got %T on the right", top.Right)
	}
	if _, ok := top.Left.(*ast.Literal); !ok {
		t.Fatalf("expected a literal on the left, got %T", top.Left)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := parseOK(t, "if (x > 0) { print x } else { print 0 }")
	ifStmt, ok := prog.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", prog.Statements[0])
	}
	if ifStmt.Else == nil {
		t.Fatal("expected a non-nil Else arm")
	}
}

func TestParseWhileLoop(t *testing.T) {
	prog := parseOK(t, "while (x < 10) { x = x + 1 }")
	w, ok := prog.Statements[0].(*ast.While)
	if !ok {
		t.Fatalf("expected *ast.While, got %T", prog.Statements[0])
	}
	if w.Cond == nil || w.Body == nil {
		t.Fatal("expected non-nil Cond and Body")
	}
}

func TestParseForLoopDesugarsToWhile(t *testing.T) {
	prog := parseOK(t, "for (int i = 0; i < 10; i = i + 1) { print i }")
	w, ok := prog.Statements[0].(*ast.While)
	if !ok {
		t.Fatalf("expected for-loop to desugar to *ast.While, got %T", prog.Statements[0])
	}
	if w.Init == nil {
		t.Error("expected a non-nil Init clause")
	}
	if len(w.UpdateExprs) != 1 {
		t.Errorf("expected 1 update expression, got %d", len(w.UpdateExprs))
	}
}

func TestParseFunDecl(t *testing.T) {
	prog := parseOK(t, "def add(int a, int b) { return a + b }")
	fn, ok := prog.Statements[0].(*ast.FunDecl)
	if !ok {
		t.Fatalf("expected *ast.FunDecl, got %T", prog.Statements[0])
	}
	if fn.Name != "add" {
		t.Errorf("Name = %q, want %q", fn.Name, "add")
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
}

func TestParseClassDeclWithNestedClass(t *testing.T) {
	prog := parseOK(t, `
class Outer {
	int a
	def m() { return a }
	class Inner {
		int b
	}
}`)
	outer, ok := prog.Statements[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected *ast.ClassDecl, got %T", prog.Statements[0])
	}
	if len(outer.Fields) != 1 {
		t.Errorf("expected 1 field on Outer, got %d", len(outer.Fields))
	}
	if len(outer.Methods) != 1 {
		t.Fatalf("expected Outer to keep its method despite the nested class, got %d methods", len(outer.Methods))
	}
	if len(outer.NestedClasses) != 1 {
		t.Fatalf("expected 1 nested class, got %d", len(outer.NestedClasses))
	}
	if outer.NestedClasses[0].Name != "Inner" {
		t.Errorf("nested class name = %q, want %q", outer.NestedClasses[0].Name, "Inner")
	}
	if outer.NestedClasses[0].EnclosingClass != outer {
		t.Error("expected Inner.EnclosingClass to point back at Outer")
	}
}

func TestParseTernary(t *testing.T) {
	prog := parseOK(t, "x > 0 ? 1 : -1")
	stmt := prog.Statements[0].(*ast.ExprStmt)
	if _, ok := stmt.Expr.(*ast.Ternary); !ok {
		t.Fatalf("expected *ast.Ternary, got %T", stmt.Expr)
	}
}

func TestParseListAndMapLiterals(t *testing.T) {
	prog := parseOK(t, "[1, 2, 3]")
	stmt := prog.Statements[0].(*ast.ExprStmt)
	list, ok := stmt.Expr.(*ast.ListLiteral)
	if !ok {
		t.Fatalf("expected *ast.ListLiteral, got %T", stmt.Expr)
	}
	if len(list.Elements) != 3 {
		t.Errorf("expected 3 elements, got %d", len(list.Elements))
	}

	prog2 := parseOK(t, `["a": 1, "b": 2]`)
	stmt2 := prog2.Statements[0].(*ast.ExprStmt)
	m, ok := stmt2.Expr.(*ast.MapLiteral)
	if !ok {
		t.Fatalf("expected *ast.MapLiteral, got %T", stmt2.Expr)
	}
	if len(m.Entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(m.Entries))
	}
}

func TestParsePostfixIncrementRewrittenToVarOpAssign(t *testing.T) {
	prog := parseOK(t, "x++")
	stmt := prog.Statements[0].(*ast.ExprStmt)
	op, ok := stmt.Expr.(*ast.VarOpAssign)
	if !ok {
		t.Fatalf("expected x++ to rewrite to *ast.VarOpAssign, got %T", stmt.Expr)
	}
	if !op.IsPreIncOrDec || op.IsPrefix {
		t.Errorf("expected IsPreIncOrDec=true, IsPrefix=false for postfix ++, got %+v", op)
	}
}

func TestParseBitwiseAndShiftOperators(t *testing.T) {
	tests := []string{"a & b", "a | b", "a ^ b", "a << b", "a >> b", "a >>> b"}
	for _, src := range tests {
		prog := parseOK(t, src)
		stmt := prog.Statements[0].(*ast.ExprStmt)
		if _, ok := stmt.Expr.(*ast.Binary); !ok {
			t.Errorf("%q: expected *ast.Binary, got %T", src, stmt.Expr)
		}
	}
}

func TestParseErrorOnUnbalancedBrace(t *testing.T) {
	p := New("<test>", "if (x) { print x")
	p.ParseProgram()
	if !p.Diagnostics().HasErrors() {
		t.Fatal("expected a parse error for an unterminated brace")
	}
}
