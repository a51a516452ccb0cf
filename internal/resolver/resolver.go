// Package resolver implements Jactl's two-pass symbol resolution and type
// inference (spec §4.4, component C4): declare-then-define scope building,
// closure capture with heap-local promotion, implicit-return synthesis,
// assignment typing, and break/continue target validation.
package resolver

import (
	"fmt"

	"github.com/cwbudde-labs/jactl/internal/ast"
	"github.com/cwbudde-labs/jactl/internal/jerrors"
	"github.com/cwbudde-labs/jactl/internal/jtypes"
	"github.com/cwbudde-labs/jactl/internal/token"
)

// scope is one lexical block's symbol table. Overload-aware: a name may
// bind more than one FunDecl when arities differ (SPEC_FULL.md §D
// supplement, grounded on the teacher's DefineOverload/IsOverloadSet).
type scope struct {
	parent    *scope
	vars      map[string]*ast.VarDecl
	overloads map[string][]*ast.FunDecl
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: map[string]*ast.VarDecl{}}
}

func (s *scope) define(v *ast.VarDecl) {
	s.vars[v.Name] = v
}

func (s *scope) lookup(name string) *ast.VarDecl {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v
		}
	}
	return nil
}

// defineOverload adds fn to the named overload set at this scope level
// (spec's resolver needs this because a class or block may declare the
// same function name with distinct arities).
func (s *scope) defineOverload(fn *ast.FunDecl) {
	if s.overloads == nil {
		s.overloads = map[string][]*ast.FunDecl{}
	}
	s.overloads[fn.Name] = append(s.overloads[fn.Name], fn)
}

// isOverloadSet reports whether name is bound to more than one arity at
// this scope level.
func (s *scope) isOverloadSet(name string) bool {
	return len(s.overloads[name]) > 1
}

// Resolver resolves a parsed Program in one depth-first walk. Each block
// is first declared (the functions declared directly in it are
// registered, so forward references resolve) and then defined (variables
// bound in source order, captures recorded, types inferred, constants
// folded, break/continue targets checked).
type Resolver struct {
	diags  *jerrors.Diagnostics
	source string
	file   string

	globalScope *scope
	funcStack   []*ast.FunDecl
	replMode    bool
	globals     map[string]*ast.VarDecl // REPL/top-level external globals map
}

type Options struct {
	ReplMode bool
}

func New(source, file string, opts Options) *Resolver {
	return &Resolver{
		diags:       &jerrors.Diagnostics{},
		source:      source,
		file:        file,
		globalScope: newScope(nil),
		replMode:    opts.ReplMode,
		globals:     map[string]*ast.VarDecl{},
	}
}

func (r *Resolver) Diagnostics() *jerrors.Diagnostics { return r.diags }

func (r *Resolver) errorf(pos token.Position, format string, args ...interface{}) {
	r.diags.Errors = append(r.diags.Errors, jerrors.NewCompileError(pos, fmt.Sprintf(format, args...), r.source, r.file))
}

// Resolve runs both passes over prog's top-level statements, which are
// treated as the body of an implicit script-main function (spec §4.4,
// §8 S1: "a script with no explicit def is wrapped as main()"). The
// script main's own top-level statements are left as written: implicit
// return synthesis applies to the functions and closures declared in it,
// not to main itself.
func (r *Resolver) Resolve(prog *ast.Program) *ast.FunDecl {
	main := &ast.FunDecl{
		ExprInfo:           ast.ExprInfo{Type: jtypes.Any},
		Name:               "main",
		IsScriptMain:       true,
		DeclaredReturnType: jtypes.Any,
		ReturnType:         jtypes.Any,
		Descriptor:         &ast.FunctionDescriptor{},
		Body:               &ast.Block{Statements: prog.Statements},
	}

	r.funcStack = append(r.funcStack, main)
	r.defineBlock(main.Body, r.globalScope)
	r.funcStack = r.funcStack[:len(r.funcStack)-1]

	return main
}

func (r *Resolver) currentFunc() *ast.FunDecl {
	if len(r.funcStack) == 0 {
		return nil
	}
	return r.funcStack[len(r.funcStack)-1]
}

// synthesizeImplicitReturn replaces the last statement with a Return of
// its value when a function body doesn't end in an explicit `return` (spec §4.4:
// "the value of the last expression-statement becomes the implicit return
// value"). When the last statement is an `if`, both arms are rewritten
// recursively (spec §8 S5): an `if`/`else` used as a function's tail
// position yields the value of whichever arm actually runs.
func (r *Resolver) synthesizeImplicitReturn(fn *ast.FunDecl) {
	if len(fn.Body.Statements) == 0 {
		return
	}
	last := len(fn.Body.Statements) - 1
	fn.Body.Statements[last] = r.synthesizeImplicitReturnStmt(fn.Body.Statements[last], fn)
}

// synthesizeImplicitReturnStmt rewrites stmt, a statement in tail position,
// into an explicit Return where possible, returning the (possibly
// replaced) statement (spec §4.4, invariant §8.3: "every function body's
// last statement, on every control-flow path, is a Return").
func (r *Resolver) synthesizeImplicitReturnStmt(stmt ast.Statement, fn *ast.FunDecl) ast.Statement {
	switch n := stmt.(type) {
	case *ast.Return:
		return n
	case *ast.ExprStmt:
		n.Expr.SetResultUsed(true)
		return &ast.Return{
			ExprInfo: ast.ExprInfo{Tok: n.Expr.ExprToken(), Type: fn.ReturnType},
			Value:    n.Expr,
		}
	case *ast.FunDecl:
		// A nested function declaration in tail position returns the
		// function itself as a value (spec §4.4), the same way a Closure
		// literal does.
		n.SetType(jtypes.FunctionOf(&jtypes.FunctionType{Return: n.ReturnType}))
		n.SetResultUsed(true)
		return &ast.Return{
			ExprInfo: ast.ExprInfo{Tok: n.ExprToken(), Type: fn.ReturnType},
			Value:    n,
		}
	case *ast.If:
		n.Then = r.synthesizeImplicitReturnStmt(n.Then, fn)
		if n.Else == nil {
			// A missing arm implicitly returns null on that path (spec
			// §4.4); null isn't assignable to a declared primitive return
			// type, so that combination is a compile error rather than a
			// silently-accepted implicit null.
			if fn.DeclaredReturnType.IsPrimitive() {
				r.errorf(n.Pos(), "if without an else cannot be the implicit return of a function declared to return %s", fn.DeclaredReturnType)
				return n
			}
			n.Else = &ast.Return{
				ExprInfo: ast.ExprInfo{Tok: n.Tok, Type: fn.ReturnType},
				Value:    &ast.Literal{ExprInfo: ast.ExprInfo{Tok: n.Tok, Type: jtypes.Any}, Value: nil},
			}
			return n
		}
		n.Else = r.synthesizeImplicitReturnStmt(n.Else, fn)
		return n
	case *ast.Block:
		if len(n.Statements) == 0 {
			return n
		}
		last := len(n.Statements) - 1
		n.Statements[last] = r.synthesizeImplicitReturnStmt(n.Statements[last], fn)
		return n
	default:
		r.errorf(stmt.Pos(), "unsupported statement type for implicit return")
		return stmt
	}
}
