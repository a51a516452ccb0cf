package jerrors

import (
	"strings"
	"testing"

	"github.com/cwbudde-labs/jactl/internal/token"
)

func TestCompileErrorFormatIncludesCaret(t *testing.T) {
	src := "x = 1 +\ny = 2"
	err := NewCompileError(token.Position{Line: 1, Column: 7}, "unexpected newline", src, "test.jactl")
	out := err.Format(false)

	if !strings.Contains(out, "test.jactl:1:7") {
		t.Errorf("missing file:line:col header: %q", out)
	}
	if !strings.Contains(out, "x = 1 +") {
		t.Errorf("missing source excerpt: %q", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("missing caret: %q", out)
	}
	if !strings.Contains(out, "unexpected newline") {
		t.Errorf("missing message: %q", out)
	}
}

func TestCompileErrorFormatNoFile(t *testing.T) {
	err := NewCompileError(token.Position{Line: 2, Column: 1}, "oops", "a\nb", "")
	out := err.Format(false)
	if !strings.Contains(out, "Error at line 2:1") {
		t.Errorf("expected file-less header, got %q", out)
	}
}

func TestFormatErrorsEmpty(t *testing.T) {
	if got := FormatErrors(nil, false); got != "" {
		t.Errorf("FormatErrors(nil) = %q, want empty", got)
	}
}

func TestFormatErrorsMultiple(t *testing.T) {
	errs := []*CompileError{
		NewCompileError(token.Position{Line: 1, Column: 1}, "first", "a", "f.jactl"),
		NewCompileError(token.Position{Line: 2, Column: 1}, "second", "a\nb", "f.jactl"),
	}
	out := FormatErrors(errs, false)
	if !strings.Contains(out, "2 error(s)") {
		t.Errorf("missing error count: %q", out)
	}
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("missing both messages: %q", out)
	}
}

func TestDiagnosticsAccumulate(t *testing.T) {
	var d Diagnostics
	if d.HasErrors() {
		t.Fatal("fresh Diagnostics should have no errors")
	}
	d.Add(token.Position{Line: 1, Column: 1}, "src", "f.jactl", "bad thing: %s", "reason")
	if !d.HasErrors() {
		t.Fatal("expected HasErrors() after Add")
	}
	if len(d.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(d.Errors))
	}
	if d.Errors[0].Message != "bad thing: reason" {
		t.Errorf("Message = %q, want %q", d.Errors[0].Message, "bad thing: reason")
	}
}

func TestInternalErrorAndRuntimeErrorFormatting(t *testing.T) {
	ie := NewInternalError(token.Position{Line: 3, Column: 4}, "type %s survived resolution", "unknown")
	if !strings.Contains(ie.Error(), "type unknown survived resolution") {
		t.Errorf("InternalError.Error() = %q", ie.Error())
	}

	re := &RuntimeError{Message: "null dereference", Pos: token.Position{Line: 5, Column: 2}}
	if !strings.Contains(re.Error(), "null dereference") {
		t.Errorf("RuntimeError.Error() = %q", re.Error())
	}
}
