package resolver

import (
	"math/big"

	"github.com/cwbudde-labs/jactl/internal/ast"
	"github.com/cwbudde-labs/jactl/internal/jtypes"
)

// defineBlock is the "define" half of the two-pass resolution: it walks
// block's statements in source order, making each VarDecl visible to
// subsequent statements only once its own declaration has been defined
// (spec §4.4(b): "a variable may not be referenced before its declaration
// point, but a function may").
func (r *Resolver) defineBlock(block *ast.Block, parent *scope) *scope {
	s := r.declareBlock(block, parent, r.currentFunc())
	for _, stmt := range block.Statements {
		r.defineStatement(stmt, s)
	}
	return s
}

func (r *Resolver) defineStatement(stmt ast.Statement, s *scope) {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		r.defineVarDecl(n, s)
	case *ast.FunDecl:
		r.defineFunDecl(n, s)
	case *ast.Stmts:
		for _, sub := range n.List {
			r.defineStatement(sub, s)
		}
	case *ast.Block:
		r.defineBlock(n, s)
	case *ast.If:
		r.defineExpr(n.Cond, s)
		r.defineStatement(n.Then, s)
		if n.Else != nil {
			r.defineStatement(n.Else, s)
		}
	case *ast.While:
		if n.Init != nil {
			r.defineStatement(n.Init, s)
		}
		r.defineExpr(n.Cond, s)
		for _, u := range n.UpdateExprs {
			r.defineExpr(u, s)
		}
		r.defineStatement(n.Body, s)
	case *ast.ExprStmt:
		r.defineExpr(n.Expr, s)
	case *ast.ThrowError:
		r.defineExpr(n.Message, s)
	case *ast.Return:
		r.defineReturn(n, s)
	case *ast.ClassDecl:
		r.defineClassDecl(n, s)
	}
}

func (r *Resolver) defineVarDecl(v *ast.VarDecl, s *scope) {
	if v.Init != nil {
		r.defineExpr(v.Init, s)
		if v.DeclaredType.IsUnknown() {
			v.DeclaredType = v.Init.GetType()
			v.Type = v.DeclaredType
		} else if !v.Init.GetType().IsConvertibleTo(v.DeclaredType) {
			r.errorf(v.Init.Pos(), "cannot convert %s to %s in initialiser for %s", v.Init.GetType(), v.DeclaredType, v.Name)
		}
		if ct, val, ok := v.Init.Const(); ok {
			_ = ct
			v.SetConst(val)
		}
	}
	v.Owner = r.currentFunc()
	v.NestingLevel = len(r.funcStack)
	v.MarkDeclared()
	v.MarkDefined()
	// Tentatively final: the only write so far is this initialiser (spec
	// §4.4 "a VarDecl is isFinal iff it is only written by its
	// initialiser"). Any later VarAssign/VarOpAssign against this
	// VarDecl, encountered later in this same define pass, clears it.
	v.IsFinal = true
	s.define(v)
}

func (r *Resolver) defineFunDecl(fn *ast.FunDecl, s *scope) {
	fn.Owner = r.currentFunc()
	fnScope := newScope(s)
	for _, param := range fn.Params {
		if param.Init != nil {
			r.defineExpr(param.Init, s)
		}
		if param.DeclaredType.IsUnknown() {
			// an untyped parameter is dynamic
			param.DeclaredType = jtypes.Any
			param.Type = jtypes.Any
		}
		param.Owner = fn
		param.NestingLevel = len(r.funcStack) + 1
		param.MarkDeclared()
		param.MarkDefined()
		fnScope.define(param)
	}
	r.funcStack = append(r.funcStack, fn)
	r.defineBlock(fn.Body, fnScope)
	r.funcStack = r.funcStack[:len(r.funcStack)-1]

	if fn.DeclaredReturnType.IsUnknown() || fn.DeclaredReturnType.Tag() == jtypes.VOID {
		fn.ReturnType = r.inferredReturnType(fn)
	}
	r.synthesizeImplicitReturn(fn)
}

// inferredReturnType widens the type of every Return found in fn's body;
// an empty body or a function with no Return statements returns `any`
// (spec §4.3: untyped functions default to dynamic).
func (r *Resolver) inferredReturnType(fn *ast.FunDecl) jtypes.Type {
	var result jtypes.Type
	has := false
	var walk func(ast.Statement)
	walk = func(stmt ast.Statement) {
		switch n := stmt.(type) {
		case *ast.Return:
			t := jtypes.Any
			if n.Value != nil {
				t = n.Value.GetType()
			}
			if !has {
				result, has = t, true
			} else if w, ok := jtypes.Widen(result, t); ok {
				result = w
			} else {
				result = jtypes.Any
			}
		case *ast.If:
			walk(n.Then)
			if n.Else != nil {
				walk(n.Else)
			}
		case *ast.While:
			walk(n.Body)
		case *ast.Block:
			for _, s := range n.Statements {
				walk(s)
			}
		case *ast.Stmts:
			for _, s := range n.List {
				walk(s)
			}
		}
	}
	for _, s := range fn.Body.Statements {
		walk(s)
	}
	if !has {
		return jtypes.Any
	}
	return result
}

func (r *Resolver) defineReturn(ret *ast.Return, s *scope) {
	fn := r.currentFunc()
	if ret.Value != nil {
		r.defineExpr(ret.Value, s)
		ret.ReturnType = ret.Value.GetType()
	} else {
		ret.ReturnType = jtypes.Any
	}
	if fn != nil && !fn.DeclaredReturnType.IsUnknown() && fn.DeclaredReturnType.Tag() != jtypes.VOID {
		if ret.Value != nil && !ret.Value.GetType().IsConvertibleTo(fn.DeclaredReturnType) {
			r.errorf(ret.Pos(), "cannot convert %s to declared return type %s", ret.Value.GetType(), fn.DeclaredReturnType)
		}
	}
}

func (r *Resolver) defineClassDecl(c *ast.ClassDecl, s *scope) {
	desc := &jtypes.ClassDescriptor{Name: c.Name, Fields: map[string]jtypes.Type{}, Methods: map[string]*jtypes.FunctionType{}}
	classScope := newScope(s)
	for _, f := range c.Fields {
		r.defineVarDecl(f.Decl, classScope)
		desc.FieldOrder = append(desc.FieldOrder, f.Decl.Name)
		desc.Fields[f.Decl.Name] = f.Decl.DeclaredType
	}
	for _, m := range c.Methods {
		r.defineFunDecl(m, classScope)
		params := make([]jtypes.Type, len(m.Params))
		for i, p := range m.Params {
			params[i] = p.DeclaredType
		}
		desc.Methods[m.Name] = &jtypes.FunctionType{Params: params, Return: m.ReturnType}
	}
	for _, nested := range c.NestedClasses {
		r.defineClassDecl(nested, classScope)
	}
	c.Descriptor = desc
}

// resolveIdentifier looks up name starting at s, walking outward through
// enclosing function boundaries. Crossing a function boundary to find the
// declaration marks it IsHeapLocal and records the capture on every
// function frame between the reference and the declaration (spec §4.4
// "Scope and capture": "a variable referenced from a nested function is
// promoted to a heap-local and threaded through every intervening
// closure's captured-parameter list").
func (r *Resolver) resolveIdentifier(id *ast.Identifier, s *scope) *ast.VarDecl {
	decl := s.lookup(id.Name)
	if decl == nil {
		return nil
	}
	id.VarDecl = decl

	declFuncDepth := decl.NestingLevel
	refFuncDepth := len(r.funcStack)
	if declFuncDepth > 0 && declFuncDepth < refFuncDepth {
		decl.IsHeapLocal = true
		for i := declFuncDepth; i < refFuncDepth; i++ {
			r.funcStack[i].AddCapture(decl.Name, decl)
		}
	}
	return decl
}

// defineCallCallee resolves a call's callee expression, with one
// exception to ordinary identifier resolution: a bare name with no
// matching declaration is left unresolved (VarDecl stays nil, typed
// `any`) rather than raised as an "unknown variable" error, since it may
// name an external collaborator registered outside this module's
// resolution scope (spec §4.5/SPEC_FULL.md: external function
// registration is out of scope here, but such calls must still be
// nameable so the async analyser's KnownAsync hook can judge them).
func (r *Resolver) defineCallCallee(callee ast.Expression, s *scope) {
	id, ok := callee.(*ast.Identifier)
	if !ok {
		r.defineExpr(callee, s)
		return
	}
	decl := r.resolveIdentifier(id, s)
	if decl == nil {
		id.Type = jtypes.Any
		return
	}
	id.Type = decl.DeclaredType
	if _, val, ok := decl.Const(); ok && decl.Init != nil {
		id.SetConst(val)
	}
}

func (r *Resolver) defineExpr(e ast.Expression, s *scope) {
	switch n := e.(type) {
	case *ast.Literal:
		// already typed by the parser; a literal is always a constant leaf
		n.SetConst(n.Value)
	case *ast.Identifier:
		decl := r.resolveIdentifier(n, s)
		if decl == nil {
			r.errorf(n.Pos(), "unknown variable or function '%s'", n.Name)
			n.Type = jtypes.Any
			return
		}
		n.Type = decl.DeclaredType
		if v, val, ok := decl.Const(); ok && decl.Init != nil {
			_ = v
			n.SetConst(val)
		}
	case *ast.Binary:
		r.defineExpr(n.Left, s)
		r.defineExpr(n.Right, s)
		t, err := jtypes.BinaryResultType(jtypes.Op(n.Op), n.Left.GetType(), n.Right.GetType())
		if err != nil {
			r.errorf(n.Pos(), "%s", err.Error())
			t = jtypes.Any
		}
		n.Type = t
		r.constFoldBinary(n)
	case *ast.Unary:
		r.defineExpr(n.Operand, s)
		n.Type = n.Operand.GetType()
	case *ast.ListLiteral:
		for _, el := range n.Elements {
			r.defineExpr(el, s)
		}
		n.Type = jtypes.ListT
	case *ast.MapLiteral:
		for _, entry := range n.Entries {
			r.defineExpr(entry.Key, s)
			r.defineExpr(entry.Value, s)
		}
		n.Type = jtypes.MapT
	case *ast.InterpolatedString:
		for _, part := range n.Parts {
			if part.Expr != nil {
				r.defineExpr(part.Expr, s)
			}
		}
		n.Type = jtypes.String
	case *ast.Index:
		r.defineExpr(n.Receiver, s)
		if n.Key != nil {
			r.defineExpr(n.Key, s)
		}
		n.Type = jtypes.Any
	case *ast.VarAssign:
		r.defineExpr(n.Target, s)
		r.defineExpr(n.Value, s)
		if n.Target.VarDecl != nil {
			if n.Target.VarDecl.FunDecl != nil && n.Target.VarDecl.IsFinal {
				r.errorf(n.Pos(), "cannot assign to final variable '%s'", n.Target.Name)
			}
			// A write outside the declaration's own initialiser disqualifies
			// the variable from isFinal (spec §4.4), regardless of whether
			// this turns out to be its only assignment.
			n.Target.VarDecl.IsFinal = false
		}
		n.Type = n.Target.GetType()
		if n.IsNullSafe {
			n.Type = n.Type.Boxed()
		}
	case *ast.VarOpAssign:
		r.defineExpr(n.Target, s)
		if n.Target.VarDecl != nil {
			n.Target.VarDecl.IsFinal = false
		}
		if !n.IsPreIncOrDec {
			r.defineExpr(n.Value, s)
		}
		if n.Embedded == nil {
			// ++/-- are parsed without an embedded binary
			n.Embedded = &ast.Binary{ExprInfo: ast.ExprInfo{Tok: n.Tok}, Op: n.Op}
		}
		n.Embedded.Left = n.Target
		if !n.IsPreIncOrDec {
			n.Embedded.Right = n.Value
		} else {
			n.Embedded.Right = &ast.Literal{ExprInfo: ast.ExprInfo{Type: jtypes.Int}, Value: int64(1)}
		}
		t, err := jtypes.BinaryResultType(jtypes.Op(n.Op), n.Target.GetType(), n.Embedded.Right.GetType())
		if err != nil {
			r.errorf(n.Pos(), "%s", err.Error())
			t = n.Target.GetType()
		}
		n.Embedded.Type = t
		n.Type = t
	case *ast.FieldAssign:
		r.defineExpr(n.Target, s)
		r.defineExpr(n.Value, s)
		n.Type = n.Value.GetType()
	case *ast.FieldOpAssign:
		r.defineExpr(n.Target, s)
		r.defineExpr(n.Value, s)
		n.Type = jtypes.Any
	case *ast.Call:
		r.defineCallCallee(n.Callee, s)
		for _, a := range n.Args {
			r.defineExpr(a, s)
		}
		n.Type = jtypes.Any
	case *ast.MethodCall:
		r.defineExpr(n.Receiver, s)
		for _, a := range n.Args {
			r.defineExpr(a, s)
		}
		n.Type = jtypes.Any
	case *ast.RegexMatch:
		r.defineExpr(n.Subject, s)
		r.defineExpr(n.Pattern, s)
		n.Type = jtypes.Bool
	case *ast.RegexSubst:
		r.defineExpr(n.Subject, s)
		r.defineExpr(n.Pattern, s)
		r.defineExpr(n.Replacement, s)
		n.Type = jtypes.String
	case *ast.Ternary:
		r.defineExpr(n.Cond, s)
		r.defineExpr(n.Then, s)
		r.defineExpr(n.Else, s)
		if t, ok := jtypes.Widen(n.Then.GetType(), n.Else.GetType()); ok {
			n.Type = t
		} else {
			n.Type = jtypes.Any
		}
	case *ast.Closure:
		r.defineFunDecl(n.Decl, s)
		n.Type = jtypes.FunctionOf(&jtypes.FunctionType{Return: n.Decl.ReturnType})
	case *ast.Return:
		r.defineReturn(n, s)
		n.Type = n.ReturnType
	case *ast.Break:
		if n.Target == nil {
			r.errorf(n.Pos(), "break used outside of a loop")
		}
		n.Type = jtypes.Any
	case *ast.Continue:
		if n.Target == nil {
			r.errorf(n.Pos(), "continue used outside of a loop")
		}
		n.Type = jtypes.Any
	case *ast.Print:
		if n.Arg != nil {
			r.defineExpr(n.Arg, s)
		}
		n.Type = jtypes.Any
	case *ast.Noop:
		// typed by its enclosing OpAssign rewrite
	case *ast.Block:
		r.defineBlock(n, s)
		n.Type = jtypes.Any
	case *ast.VarDecl:
		r.defineVarDecl(n, s)
	case *ast.FunDecl:
		r.defineFunDecl(n, s)
	}
}

// constFoldBinary evaluates n at compile time when both operands are
// constant (spec §4.4: const-folding runs during the define pass).
func (r *Resolver) constFoldBinary(n *ast.Binary) {
	_, lv, lok := n.Left.Const()
	_, rv, rok := n.Right.Const()
	if !lok || !rok {
		return
	}
	switch n.Op {
	case "+":
		if li, ok := lv.(int64); ok {
			if ri, ok := rv.(int64); ok {
				n.SetConst(li + ri)
				return
			}
		}
		if ls, ok := lv.(string); ok {
			if rs, ok := rv.(string); ok {
				n.SetConst(ls + rs)
				return
			}
		}
		if ld, ok := lv.(*big.Rat); ok {
			if rd, ok := rv.(*big.Rat); ok {
				n.SetConst(new(big.Rat).Add(ld, rd))
				return
			}
		}
	case "-":
		if li, ok := lv.(int64); ok {
			if ri, ok := rv.(int64); ok {
				n.SetConst(li - ri)
				return
			}
		}
	case "*":
		if li, ok := lv.(int64); ok {
			if ri, ok := rv.(int64); ok {
				n.SetConst(li * ri)
				return
			}
		}
	case "/":
		// Constant division by zero is a compile error at the `/` token
		// (spec §8 S6), not a deferred runtime failure: `n` (the Binary)
		// carries the operator's own token, not either operand's.
		if li, ok := lv.(int64); ok {
			if ri, ok := rv.(int64); ok {
				if ri == 0 {
					r.errorf(n.Pos(), "division by zero")
					return
				}
				n.SetConst(li / ri)
				return
			}
		}
		if ld, ok := lv.(*big.Rat); ok {
			if rd, ok := rv.(*big.Rat); ok {
				if rd.Sign() == 0 {
					r.errorf(n.Pos(), "division by zero")
					return
				}
				n.SetConst(new(big.Rat).Quo(ld, rd))
				return
			}
		}
	}
}
