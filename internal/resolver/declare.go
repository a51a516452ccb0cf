package resolver

import (
	"github.com/cwbudde-labs/jactl/internal/ast"
	"github.com/cwbudde-labs/jactl/internal/jtypes"
)

// declareBlock performs the "declare" half of the two-pass resolution
// (spec §4.4(a)): it registers every function declared directly in block
// (the same set the parser recorded in block.FunctionTable) into a fresh
// child scope, so that a forward reference earlier in the block to a
// function declared later resolves. Plain variables are NOT made visible
// yet — they become visible only as the "define" pass reaches their
// declaration point, in source order.
func (r *Resolver) declareBlock(block *ast.Block, parent *scope, owner *ast.FunDecl) *scope {
	s := newScope(parent)
	for _, stmt := range block.Statements {
		r.declareTopLevelFuncs(stmt, s, owner)
	}
	return s
}

// declareTopLevelFuncs registers FunDecls reachable directly in stmt
// (not descending into nested Block/If/While bodies, which get their own
// declare pass when the define pass reaches them) so forward references
// within this block work before the define pass visits the call site.
func (r *Resolver) declareTopLevelFuncs(stmt ast.Statement, s *scope, owner *ast.FunDecl) {
	fn, ok := stmt.(*ast.FunDecl)
	if !ok {
		return
	}
	fn.Owner = owner
	fn.NestingLevel = owner.NestingLevel + 1
	sentinel := &ast.VarDecl{
		ExprInfo: ast.ExprInfo{Tok: fn.Tok, Type: jtypes.Any},
		Name:     fn.Name,
		FunDecl:  fn,
		Owner:    owner,
		IsFinal:  true,
	}
	sentinel.MarkDeclared()
	sentinel.MarkDefined()
	s.define(sentinel)
	s.defineOverload(fn)
	if s.isOverloadSet(fn.Name) {
		// Multiple arities sharing a name are recorded in the overload set
		// only; call sites are not disambiguated by argument count, and
		// scope lookup yields the last-registered declaration.
	}
}
