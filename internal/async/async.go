// Package async implements Jactl's async-propagation analyser (spec §4.5,
// component C5): a function or call-site is "async" when invoking it may
// suspend the underlying execution (awaiting an external collaborator, per
// spec.md's Non-goals — the suspend/resume runtime itself is out of
// scope here; this package only computes and records the async flag).
package async

import (
	"github.com/cwbudde-labs/jactl/internal/ast"
)

// KnownAsync is consulted for calls to built-in/external functions whose
// async-ness is not determined by analysing a Jactl function body (spec
// §4.5: "external collaborators declare their own async-ness"). The host
// API passes through the hook its caller supplies with jactl.WithKnownAsync.
type KnownAsync func(name string) (isAsync bool, asyncArgs []int, known bool)

// callSite records one Call/MethodCall expression discovered during the
// structural walk, plus enough identity information to apply the
// single-pass rule (spec §4.5) to it once its callee's async-ness is
// known:
//   - calleeFn set: the call resolves to a user FunDecl, tracked through
//     the worklist like any other caller/callee edge;
//   - external set: the callee is a bare name the host's KnownAsync hook
//     recognises, judged directly rather than through the worklist;
//   - dynamic: the callee cannot be identified at compile time at all
//     (method dispatch, or a name that resolves to neither of the above)
//     — rule 1 settles these unconditionally, async, the moment they're
//     recorded.
type callSite struct {
	expr     ast.Expression // *ast.Call or *ast.MethodCall
	owner    *ast.FunDecl
	dynamic  bool
	calleeFn *ast.FunDecl
	external bool
	extName  string
}

// Analyser performs a fixed-point worklist pass over a program's function
// declarations and call-sites: a function is async if its body directly
// calls something async, or (recursively) calls a function later
// discovered to be async — hence the worklist, which re-visits callers of
// any function whose async flag flips from false to true (spec §4.5
// "forward references require a dependency worklist, not a single linear
// pass"). The same worklist drives each call-site's own async flag, since
// a call-site may read an argument's async-ness from a function that
// hasn't reached its own fixed point yet.
type Analyser struct {
	knownAsync KnownAsync

	funcs        []*ast.FunDecl
	callers      map[*ast.FunDecl][]*ast.FunDecl // fn -> functions that must be re-examined when fn's async flag changes
	sitesByOwner map[*ast.FunDecl][]*callSite
	callSites    []*callSite
	assumeAll    bool // testing hook: treat every call as async
}

func New(known KnownAsync) *Analyser {
	return &Analyser{
		knownAsync:   known,
		callers:      map[*ast.FunDecl][]*ast.FunDecl{},
		sitesByOwner: map[*ast.FunDecl][]*callSite{},
	}
}

// AssumeEveryCallAsync is a testing hook (spec §4.5/§8): when set, every
// function and every call-site in the program is marked async regardless
// of what it calls, letting tests exercise the suspend/resume-adjacent
// plumbing without needing a genuinely async external call.
func (a *Analyser) AssumeEveryCallAsync(v bool) { a.assumeAll = v }

// Analyse walks every function reachable from main (main itself plus any
// nested/closure FunDecls it discovers), marks Descriptor.IsAsync on each
// and IsAsync on every Call/MethodCall, and returns the function set in
// discovery order.
func (a *Analyser) Analyse(main *ast.FunDecl) []*ast.FunDecl {
	a.collect(main)

	if a.assumeAll {
		for _, fn := range a.funcs {
			fn.Descriptor.IsAsync = true
		}
		for _, cs := range a.callSites {
			setCallSiteAsync(cs.expr, true)
		}
		return a.funcs
	}

	worklist := append([]*ast.FunDecl{}, a.funcs...)
	for len(worklist) > 0 {
		fn := worklist[0]
		worklist = worklist[1:]
		if a.visitFunc(fn) {
			worklist = append(worklist, a.callers[fn]...)
		}
	}
	return a.funcs
}

// collect performs a single structural walk of fn's body, registering
// every FunDecl/Closure it finds and every Call/MethodCall call-site.
func (a *Analyser) collect(fn *ast.FunDecl) {
	a.funcs = append(a.funcs, fn)
	if fn.Descriptor == nil {
		fn.Descriptor = &ast.FunctionDescriptor{}
	}
	a.walkStatement(fn.Body, fn)
}

func (a *Analyser) walkStatement(stmt ast.Statement, owner *ast.FunDecl) {
	switch n := stmt.(type) {
	case *ast.Block:
		for _, s := range n.Statements {
			a.walkStatement(s, owner)
		}
	case *ast.Stmts:
		for _, s := range n.List {
			a.walkStatement(s, owner)
		}
	case *ast.If:
		a.walkExpr(n.Cond, owner)
		a.walkStatement(n.Then, owner)
		if n.Else != nil {
			a.walkStatement(n.Else, owner)
		}
	case *ast.While:
		if n.Init != nil {
			a.walkStatement(n.Init, owner)
		}
		a.walkExpr(n.Cond, owner)
		for _, u := range n.UpdateExprs {
			a.walkExpr(u, owner)
		}
		a.walkStatement(n.Body, owner)
	case *ast.ExprStmt:
		a.walkExpr(n.Expr, owner)
	case *ast.Return:
		if n.Value != nil {
			a.walkExpr(n.Value, owner)
		}
	case *ast.VarDecl:
		if n.Init != nil {
			a.walkExpr(n.Init, owner)
		}
	case *ast.FunDecl:
		n.Owner = owner
		a.collect(n)
	case *ast.ThrowError:
		a.walkExpr(n.Message, owner)
	}
}

func (a *Analyser) walkExpr(e ast.Expression, owner *ast.FunDecl) {
	switch n := e.(type) {
	case *ast.Binary:
		a.walkExpr(n.Left, owner)
		a.walkExpr(n.Right, owner)
	case *ast.Unary:
		a.walkExpr(n.Operand, owner)
	case *ast.ListLiteral:
		for _, el := range n.Elements {
			a.walkExpr(el, owner)
		}
	case *ast.MapLiteral:
		for _, entry := range n.Entries {
			a.walkExpr(entry.Key, owner)
			a.walkExpr(entry.Value, owner)
		}
	case *ast.InterpolatedString:
		for _, part := range n.Parts {
			if part.Expr != nil {
				a.walkExpr(part.Expr, owner)
			}
		}
	case *ast.Index:
		a.walkExpr(n.Receiver, owner)
		if n.Key != nil {
			a.walkExpr(n.Key, owner)
		}
	case *ast.VarAssign:
		a.walkExpr(n.Value, owner)
	case *ast.VarOpAssign:
		if !n.IsPreIncOrDec {
			a.walkExpr(n.Value, owner)
		}
	case *ast.FunDecl:
		// a nested def in tail position is the value of a synthesized Return
		n.Owner = owner
		a.collect(n)
	case *ast.FieldAssign:
		a.walkExpr(n.Target, owner)
		a.walkExpr(n.Value, owner)
	case *ast.FieldOpAssign:
		a.walkExpr(n.Target, owner)
		a.walkExpr(n.Value, owner)
	case *ast.Call:
		a.walkExpr(n.Callee, owner)
		for _, arg := range n.Args {
			a.walkExpr(arg, owner)
		}
		a.recordCallSite(n, owner)
	case *ast.MethodCall:
		a.walkExpr(n.Receiver, owner)
		for _, arg := range n.Args {
			a.walkExpr(arg, owner)
		}
		a.recordMethodCallSite(n, owner)
	case *ast.RegexMatch:
		a.walkExpr(n.Subject, owner)
		a.walkExpr(n.Pattern, owner)
	case *ast.RegexSubst:
		a.walkExpr(n.Subject, owner)
		a.walkExpr(n.Pattern, owner)
		a.walkExpr(n.Replacement, owner)
	case *ast.Ternary:
		a.walkExpr(n.Cond, owner)
		a.walkExpr(n.Then, owner)
		a.walkExpr(n.Else, owner)
	case *ast.Closure:
		n.Decl.Owner = owner
		a.collect(n.Decl)
	case *ast.Return:
		if n.Value != nil {
			a.walkExpr(n.Value, owner)
		}
	case *ast.Print:
		if n.Arg != nil {
			a.walkExpr(n.Arg, owner)
		}
	case *ast.Block:
		for _, s := range n.Statements {
			a.walkStatement(s, owner)
		}
	}
}

// recordCallSite builds the call-site record for an ordinary call (spec
// §4.5): a callee that resolves to a user function is tracked through the
// worklist; a callee that resolves to a known external collaborator is
// judged directly via knownAsync; anything else — a call through a value
// whose final function cannot be followed — cannot be identified at
// compile time and is unconditionally async (rule 1).
func (a *Analyser) recordCallSite(call *ast.Call, owner *ast.FunDecl) {
	cs := &callSite{expr: call, owner: owner}

	id, isIdent := call.Callee.(*ast.Identifier)
	switch {
	case isIdent && id.VarDecl != nil && id.VarDecl.FunDecl != nil:
		cs.calleeFn = id.VarDecl.FunDecl
		a.callers[cs.calleeFn] = append(a.callers[cs.calleeFn], owner)
	case isIdent && a.knownAsync != nil && known(a.knownAsync, id.Name):
		cs.external = true
		cs.extName = id.Name
	default:
		cs.dynamic = true
		setCallSiteAsync(cs.expr, true)
	}

	a.addArgDependencies(call.Args, owner)
	a.sitesByOwner[owner] = append(a.sitesByOwner[owner], cs)
	a.callSites = append(a.callSites, cs)
}

// recordMethodCallSite always treats the call as dynamic: Desc is never
// bound to a resolved method descriptor (method/field type resolution is
// an open question, see DESIGN.md), so every method call is dynamic
// dispatch in the sense of rule 1 and is unconditionally async.
func (a *Analyser) recordMethodCallSite(call *ast.MethodCall, owner *ast.FunDecl) {
	cs := &callSite{expr: call, owner: owner, dynamic: true}
	setCallSiteAsync(cs.expr, true)
	a.sitesByOwner[owner] = append(a.sitesByOwner[owner], cs)
	a.callSites = append(a.callSites, cs)
}

func known(k KnownAsync, name string) bool {
	_, _, ok := k(name)
	return ok
}

// addArgDependencies registers owner to be re-examined whenever a
// structurally-relevant argument expression's own async source (a closure
// literal, or a final variable's bound function/closure) changes its
// async flag — needed because a call-site's argument-async check (spec
// §4.5) can depend on a function that hasn't reached its own fixed point
// yet.
func (a *Analyser) addArgDependencies(args []ast.Expression, owner *ast.FunDecl) {
	for _, arg := range args {
		a.addArgDependency(arg, owner)
	}
}

func (a *Analyser) addArgDependency(e ast.Expression, owner *ast.FunDecl) {
	switch n := e.(type) {
	case *ast.Closure:
		a.callers[n.Decl] = append(a.callers[n.Decl], owner)
	case *ast.Identifier:
		if n.VarDecl == nil {
			return
		}
		if n.VarDecl.FunDecl != nil {
			a.callers[n.VarDecl.FunDecl] = append(a.callers[n.VarDecl.FunDecl], owner)
			return
		}
		if n.VarDecl.IsFinal && n.VarDecl.Init != nil {
			a.addArgDependency(n.VarDecl.Init, owner)
		}
	}
}

// visitFunc re-examines fn's own call-sites, applying the single-pass
// rule (spec §4.5) to each non-dynamic one (dynamic sites are already
// settled at record time) and folding the result into fn's own async
// flag. It reports whether anything observable to fn's dependents changed
// this visit — fn's own Descriptor.IsAsync flipping false->true, or one
// of its call-sites flipping false->true — so Analyse knows whether to
// re-enqueue fn's callers. Safe to call more than once: every flag it
// touches only ever moves false->true (spec §8.4 "async monotonicity").
func (a *Analyser) visitFunc(fn *ast.FunDecl) bool {
	changed := false
	anyAsync := fn.Descriptor.IsAsync

	for _, cs := range a.sitesByOwner[fn] {
		if cs.dynamic {
			anyAsync = true
			continue
		}
		if isCallSiteAsync(cs.expr) {
			anyAsync = true
			continue
		}
		if a.callSiteAsync(cs) {
			setCallSiteAsync(cs.expr, true)
			anyAsync = true
			changed = true
		}
	}

	if anyAsync && !fn.Descriptor.IsAsync {
		fn.Descriptor.IsAsync = true
		changed = true
	}
	return changed
}

// callSiteAsync applies spec §4.5 rule 2 to cs: async iff the callee is
// (currently known to be) async and, when the callee designates specific
// argument positions, at least one of them currently supplies an async
// value.
func (a *Analyser) callSiteAsync(cs *callSite) bool {
	var calleeAsync bool
	var asyncArgs []int

	switch {
	case cs.calleeFn != nil:
		if cs.calleeFn.Descriptor == nil {
			return false
		}
		calleeAsync = cs.calleeFn.Descriptor.IsAsync
		asyncArgs = cs.calleeFn.Descriptor.AsyncArgs
	case cs.external:
		isAsync, args, _ := a.knownAsync(cs.extName)
		calleeAsync = isAsync
		asyncArgs = args
	default:
		return false
	}

	if !calleeAsync {
		return false
	}
	if len(asyncArgs) == 0 {
		return true
	}
	for _, pos := range asyncArgs {
		if argIsAsync(callArgAt(cs.expr, pos)) {
			return true
		}
	}
	return false
}

// callArgAt returns the argument expression at pos, using the addressing
// scheme spec §4.5 defines for asyncArgs: position 0 is the receiver of a
// method call (nil for an ordinary call, which has none), positions 1…N
// are the ordinary arguments.
func callArgAt(expr ast.Expression, pos int) ast.Expression {
	switch n := expr.(type) {
	case *ast.Call:
		if pos == 0 {
			return nil
		}
		if idx := pos - 1; idx >= 0 && idx < len(n.Args) {
			return n.Args[idx]
		}
	case *ast.MethodCall:
		if pos == 0 {
			return n.Receiver
		}
		if idx := pos - 1; idx >= 0 && idx < len(n.Args) {
			return n.Args[idx]
		}
	}
	return nil
}

// argIsAsync determines whether an argument value is async, structurally,
// from the resolved AST (spec §4.5):
//   - a Noop or missing value is not async;
//   - a call-expression node whose IsAsync is true is async;
//   - a closure/function expression whose function is async is async;
//   - an identifier whose VarDecl is not final is conservatively async
//     (the actual value at runtime is unknown);
//   - an identifier bound to a final VarDecl follows through to the
//     initialiser/bound function and recurses;
//   - anything else whose static type is `any` is async (unknown callable).
func argIsAsync(e ast.Expression) bool { return argIsAsyncRec(e, map[ast.Expression]bool{}) }

func argIsAsyncRec(e ast.Expression, seen map[ast.Expression]bool) bool {
	if e == nil {
		return false
	}
	if seen[e] {
		return false
	}
	seen[e] = true

	switch n := e.(type) {
	case *ast.Noop:
		return false
	case *ast.Call:
		return n.IsAsync
	case *ast.MethodCall:
		return n.IsAsync
	case *ast.Closure:
		return n.Decl.Descriptor != nil && n.Decl.Descriptor.IsAsync
	case *ast.Identifier:
		if n.VarDecl == nil {
			return true
		}
		if n.VarDecl.FunDecl != nil {
			return n.VarDecl.FunDecl.Descriptor != nil && n.VarDecl.FunDecl.Descriptor.IsAsync
		}
		if !n.VarDecl.IsFinal {
			return true
		}
		return argIsAsyncRec(n.VarDecl.Init, seen)
	default:
		return e.GetType().IsAny()
	}
}

func setCallSiteAsync(expr ast.Expression, v bool) {
	switch n := expr.(type) {
	case *ast.Call:
		n.IsAsync = v
	case *ast.MethodCall:
		n.IsAsync = v
	}
}

func isCallSiteAsync(expr ast.Expression) bool {
	switch n := expr.(type) {
	case *ast.Call:
		return n.IsAsync
	case *ast.MethodCall:
		return n.IsAsync
	}
	return false
}
