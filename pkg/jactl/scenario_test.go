package jactl

import (
	"testing"

	"github.com/cwbudde-labs/jactl/internal/ast"
	"github.com/cwbudde-labs/jactl/internal/jtypes"
)

// Scenario S1: the numeric tower widens through a mixed int/long/double
// expression to double (the explicit `D` suffix form — unsuffixed
// decimal-point literals are *decimal*, not double, per the declared
// int<long<double<decimal tower, so `3.0D` rather than `3.0` is what
// actually exercises the "widens to double" half of the scenario).
func TestScenarioArithmeticTower(t *testing.T) {
	cu := Compile("1 + 2L * 3.0D")
	if cu.HasErrors() {
		t.Fatalf("unexpected errors: %s", cu.Diagnostics.Format(false))
	}
	stmt := cu.Main.Body.Statements[0]
	exprStmt, ok := stmt.(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected *ast.ExprStmt, got %T", stmt)
	}
	if exprStmt.Expr.GetType().Tag() != jtypes.DOUBLE {
		t.Errorf("result type = %s, want double", exprStmt.Expr.GetType())
	}
}

// An unsuffixed decimal-point literal widens to Decimal, the top of the
// numeric tower, rather than double.
func TestScenarioArithmeticTowerUnsuffixedDecimal(t *testing.T) {
	cu := Compile("1 + 2L * 3.0")
	if cu.HasErrors() {
		t.Fatalf("unexpected errors: %s", cu.Diagnostics.Format(false))
	}
	stmt := cu.Main.Body.Statements[0]
	exprStmt := stmt.(*ast.ExprStmt)
	if exprStmt.Expr.GetType().Tag() != jtypes.DECIMAL {
		t.Errorf("result type = %s, want Decimal", exprStmt.Expr.GetType())
	}
}

// Scenario S2: string interpolation assembles one InterpolatedString with a
// literal chunk and an embedded expression.
func TestScenarioStringInterpolation(t *testing.T) {
	cu := Compile(`var x = 3
"answer = ${x * 14}"`)
	if cu.HasErrors() {
		t.Fatalf("unexpected errors: %s", cu.Diagnostics.Format(false))
	}
	stmt := cu.Main.Body.Statements[len(cu.Main.Body.Statements)-1]
	exprStmt, ok := stmt.(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected *ast.ExprStmt, got %T", stmt)
	}
	str, ok := exprStmt.Expr.(*ast.InterpolatedString)
	if !ok {
		t.Fatalf("expected *ast.InterpolatedString, got %T", exprStmt.Expr)
	}
	if len(str.Parts) != 2 {
		t.Fatalf("expected 2 parts (literal + expr), got %d", len(str.Parts))
	}
	if str.Parts[0].Expr != nil {
		t.Error("expected the first part to be a literal chunk")
	}
	if str.Parts[1].Expr == nil {
		t.Error("expected the second part to carry the embedded expression")
	}
}

// Scenario S4: forward-referenced functions that transitively call a
// known-async external function are both marked async.
func TestScenarioForwardReferenceAndAsync(t *testing.T) {
	known := func(name string) (bool, []int, bool) {
		return name == "sleep", nil, name == "sleep"
	}
	cu := Compile(`
def a() { b() }
def b() { sleep(10); 1 }
a()
`, WithKnownAsync(known))

	var aFn, bFn *ast.FunDecl
	for _, fn := range cu.AsyncFuncs {
		switch fn.Name {
		case "a":
			aFn = fn
		case "b":
			bFn = fn
		}
	}
	if aFn == nil || bFn == nil {
		t.Fatal("expected both a and b to be collected by the async analyser")
	}
	if !aFn.Descriptor.IsAsync {
		t.Error("expected a to be async via propagation")
	}
	if !bFn.Descriptor.IsAsync {
		t.Error("expected b to be async (calls sleep directly)")
	}
}

// Scenario S5: an `if` expression used as a function's implicit return value
// resolves to explicit Returns on both arms, with an inferred `any` return
// type when none was declared.
func TestScenarioImplicitReturnSynthesis(t *testing.T) {
	cu := Compile("def f(x) { if (x > 0) x else -x }")
	if cu.HasErrors() {
		t.Fatalf("unexpected errors: %s", cu.Diagnostics.Format(false))
	}
	fn := cu.Main.Body.Statements[0].(*ast.FunDecl)

	last := fn.Body.Statements[len(fn.Body.Statements)-1]
	ifStmt, ok := last.(*ast.If)
	if !ok {
		t.Fatalf("expected the body's last statement to remain an *ast.If, got %T", last)
	}
	if _, ok := ifStmt.Then.(*ast.Return); !ok {
		t.Errorf("expected the then-arm to become an explicit Return, got %T", ifStmt.Then)
	}
	if _, ok := ifStmt.Else.(*ast.Return); !ok {
		t.Errorf("expected the else-arm to become an explicit Return, got %T", ifStmt.Else)
	}
	if fn.ReturnType.Tag() != jtypes.ANY {
		t.Errorf("inferred ReturnType = %s, want any", fn.ReturnType)
	}
}

// Scenario S3: a local captured by a returned closure is promoted to a
// heap local, and the closure's FunDecl records the capture.
func TestScenarioClosureCapture(t *testing.T) {
	cu := Compile(`
def mk() { var c = 0; return { -> c++ } }
var f = mk()
`)
	if cu.HasErrors() {
		t.Fatalf("unexpected errors: %s", cu.Diagnostics.Format(false))
	}
	mk := cu.Main.Body.Statements[0].(*ast.FunDecl)

	var cDecl *ast.VarDecl
	for _, stmt := range mk.Body.Statements {
		if v, ok := stmt.(*ast.VarDecl); ok && v.Name == "c" {
			cDecl = v
		}
	}
	if cDecl == nil {
		t.Fatal("expected to find c's VarDecl in mk's body")
	}
	if !cDecl.IsHeapLocal {
		t.Error("expected c to be promoted to a heap local once captured by the closure")
	}

	last := mk.Body.Statements[len(mk.Body.Statements)-1]
	ret, ok := last.(*ast.Return)
	if !ok {
		t.Fatalf("expected mk's last statement to be a Return, got %T", last)
	}
	closure, ok := ret.Value.(*ast.Closure)
	if !ok {
		t.Fatalf("expected mk to return a *ast.Closure, got %T", ret.Value)
	}
	if _, ok := closure.Decl.Captures["c"]; !ok {
		t.Errorf("expected the closure to capture c, captures = %v", closure.Decl.CaptureOrder)
	}
}

// Scenario S6: dividing by a constant zero is a compile error at the `/`
// token; dividing by a non-constant value compiles cleanly and is left to
// fail at runtime.
func TestScenarioDivideByZero(t *testing.T) {
	cu := Compile("1 / 0")
	if !cu.HasErrors() {
		t.Fatal("expected a compile error for constant division by zero")
	}

	cu2 := Compile("def d(n) { 1 / n }\nd(0)")
	if cu2.HasErrors() {
		t.Fatalf("unexpected errors compiling a non-constant division: %s", cu2.Diagnostics.Format(false))
	}
}

// Scenario S7: triple-quoted strings permit a raw embedded newline;
// plain (non-triple) double-quoted strings reject one.
func TestScenarioTripleQuotedNewlineDiscipline(t *testing.T) {
	cu := Compile("\"\"\"line1\nline2\"\"\"")
	if cu.HasErrors() {
		t.Fatalf("expected a raw newline inside a triple-quoted string to be legal: %s", cu.Diagnostics.Format(false))
	}

	cu2 := Compile("\"line1\nline2\"")
	if !cu2.HasErrors() {
		t.Error("expected a raw newline inside a plain double-quoted string to be rejected")
	}
}
