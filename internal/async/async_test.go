package async

import (
	"testing"

	"github.com/cwbudde-labs/jactl/internal/ast"
	"github.com/cwbudde-labs/jactl/internal/jparser"
	"github.com/cwbudde-labs/jactl/internal/resolver"
)

// resolveProgram resolves src and returns the synthesized main FunDecl.
// Calls to undeclared names (e.g. external collaborators like "sleep"
// that this package's tests use as a stand-in for an externally-registered
// async function) resolve without a declaration and without a diagnostic;
// resolve errors are not checked here.
func resolveProgram(t *testing.T, src string) *ast.FunDecl {
	t.Helper()
	p := jparser.New("<test>", src)
	prog := p.ParseProgram()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("unexpected parse errors: %s", p.Diagnostics().Format(false))
	}
	r := resolver.New(src, "<test>", resolver.Options{})
	main := r.Resolve(prog)
	return main
}

func findFunc(main *ast.FunDecl, name string) *ast.FunDecl {
	for _, stmt := range main.Body.Statements {
		if fn, ok := stmt.(*ast.FunDecl); ok && fn.Name == name {
			return fn
		}
	}
	return nil
}

func TestAsyncPropagatesThroughDirectCall(t *testing.T) {
	main := resolveProgram(t, `
def callsExternal() { return sleep(1) }
def wrapsIt() { return callsExternal() }
`)
	known := func(name string) (bool, []int, bool) {
		if name == "sleep" {
			return true, nil, true
		}
		return false, nil, false
	}
	a := New(known)
	a.Analyse(main)

	callsExternal := findFunc(main, "callsExternal")
	wrapsIt := findFunc(main, "wrapsIt")
	if callsExternal == nil || wrapsIt == nil {
		t.Fatal("expected to find both functions")
	}
	if !callsExternal.Descriptor.IsAsync {
		t.Error("expected callsExternal to be async (calls a known-async external function)")
	}
	if !wrapsIt.Descriptor.IsAsync {
		t.Error("expected wrapsIt to be async by propagation through the worklist")
	}

	sleepCall := callsExternal.Body.Statements[len(callsExternal.Body.Statements)-1].(*ast.Return).Value.(*ast.Call)
	if !sleepCall.IsAsync {
		t.Error("expected the sleep(1) call-site itself to be flagged async")
	}
	wrapsCall := wrapsIt.Body.Statements[len(wrapsIt.Body.Statements)-1].(*ast.Return).Value.(*ast.Call)
	if !wrapsCall.IsAsync {
		t.Error("expected the callsExternal() call-site itself to be flagged async")
	}
}

func TestNonAsyncFunctionStaysNonAsync(t *testing.T) {
	main := resolveProgram(t, `
def add(int a, int b) { return a + b }
`)
	a := New(func(string) (bool, []int, bool) { return false, nil, false })
	a.Analyse(main)

	fn := findFunc(main, "add")
	if fn.Descriptor.IsAsync {
		t.Error("expected add to remain non-async")
	}
}

func TestAssumeEveryCallAsyncMarksAll(t *testing.T) {
	main := resolveProgram(t, `
def a() { return 1 }
def b() { return a() }
`)
	an := New(nil)
	an.AssumeEveryCallAsync(true)
	funcs := an.Analyse(main)

	if len(funcs) == 0 {
		t.Fatal("expected at least one function collected")
	}
	for _, fn := range funcs {
		if !fn.Descriptor.IsAsync {
			t.Errorf("expected %s to be marked async under AssumeEveryCallAsync", fn.Name)
		}
	}

	b := findFunc(main, "b")
	if b == nil {
		t.Fatal("expected to find b")
	}
	call := b.Body.Statements[len(b.Body.Statements)-1].(*ast.Return).Value.(*ast.Call)
	if !call.IsAsync {
		t.Error("expected b's call-site a() to be marked async under AssumeEveryCallAsync, not just b.Descriptor.IsAsync")
	}
}

func TestAsyncArgDeterminesCallSiteAsync(t *testing.T) {
	// "each" is a known external whose async-ness depends on argument
	// position 1 (its callback) supplying an async value, per spec §4.5
	// rule 2's asyncArgs-aware branch.
	known := func(name string) (bool, []int, bool) {
		if name == "each" {
			return true, []int{1}, true
		}
		if name == "sleep" {
			return true, nil, true
		}
		return false, nil, false
	}

	t.Run("async closure argument makes the call-site async", func(t *testing.T) {
		main := resolveProgram(t, `
def run() { return each({ x -> sleep(x) }) }
`)
		a := New(known)
		a.Analyse(main)

		run := findFunc(main, "run")
		if run == nil {
			t.Fatal("expected to find run")
		}
		eachCall := run.Body.Statements[len(run.Body.Statements)-1].(*ast.Return).Value.(*ast.Call)
		if !eachCall.IsAsync {
			t.Error("expected each(...) to be async: its callback argument calls a known-async function")
		}
		if !run.Descriptor.IsAsync {
			t.Error("expected run to be async by propagation from its async call-site")
		}
	})

	t.Run("non-async closure argument leaves the call-site non-async", func(t *testing.T) {
		main := resolveProgram(t, `
def run() { return each({ x -> x + 1 }) }
`)
		a := New(known)
		a.Analyse(main)

		run := findFunc(main, "run")
		eachCall := run.Body.Statements[len(run.Body.Statements)-1].(*ast.Return).Value.(*ast.Call)
		if eachCall.IsAsync {
			t.Error("expected each(...) to stay non-async: its callback never calls anything async")
		}
		if run.Descriptor.IsAsync {
			t.Error("expected run to stay non-async")
		}
	})
}

func TestAsyncAnalyserCollectsClosures(t *testing.T) {
	main := resolveProgram(t, `
def outer() {
	def inner() { return sleep(1) }
	return inner()
}
`)
	known := func(name string) (bool, []int, bool) {
		return name == "sleep", nil, name == "sleep"
	}
	a := New(known)
	funcs := a.Analyse(main)

	var found bool
	for _, fn := range funcs {
		if fn.Name == "inner" {
			found = true
			if !fn.Descriptor.IsAsync {
				t.Error("expected inner to be async")
			}
		}
	}
	if !found {
		t.Fatal("expected the nested function 'inner' to be collected")
	}
}
