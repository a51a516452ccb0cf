package ast

import (
	"fmt"

	"github.com/cwbudde-labs/jactl/internal/jtypes"
)

// Literal is a constant int/long/double/Decimal/String/bool/null value.
type Literal struct {
	ExprInfo
	Value interface{} // int64, float64, *big.Rat, string, bool, or nil
}

func (l *Literal) String() string { return l.Tok.Text() }

// Identifier references a named variable or function; VarDecl is filled
// in by the Resolver (spec §3: "Identifier(→VarDecl)"), never by the
// Parser.
type Identifier struct {
	ExprInfo
	Name    string
	VarDecl *VarDecl
}

func (i *Identifier) String() string { return i.Name }

// Binary is a two-operand operator expression (arithmetic, comparison,
// logical, string concat/repeat, etc).
type Binary struct {
	ExprInfo
	Op    string
	Left  Expression
	Right Expression
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op, b.Right.String())
}

// Noop stands in for "no value yet" inside a rewritten OpAssign's embedded
// Binary (spec §4.2): the Resolver assigns its type during analysis, the
// back-end materialises it from the already-computed target.
type Noop struct {
	ExprInfo
}

func (n *Noop) String() string { return "<noop>" }

// Unary is a prefix (!x, -x, +x, ~x) operator expression. Postfix forms
// (x++, x--) are rewritten by the Parser into VarOpAssign per spec §4.2
// and never reach this node.
type Unary struct {
	ExprInfo
	Op      string
	Operand Expression
	Prefix  bool
}

func (u *Unary) String() string {
	if u.Prefix {
		return u.Op + u.Operand.String()
	}
	return u.Operand.String() + u.Op
}

// ListLiteral is `[e1, e2, ...]`.
type ListLiteral struct {
	ExprInfo
	Elements []Expression
}

func (l *ListLiteral) String() string { return "[" + joinExprs(l.Elements, ", ") + "]" }

// MapEntry is one key:value pair of a MapLiteral.
type MapEntry struct {
	Key   Expression
	Value Expression
}

// MapLiteral is `[k1:v1, k2:v2, ...]` (or `[:]` for an empty map).
type MapLiteral struct {
	ExprInfo
	Entries []MapEntry
}

func (m *MapLiteral) String() string {
	out := "["
	for i, e := range m.Entries {
		if i > 0 {
			out += ", "
		}
		out += e.Key.String() + ":" + e.Value.String()
	}
	return out + "]"
}

// StringPart is one segment of an InterpolatedString: either a literal
// STRING_CONST chunk or an embedded expression (from `$ident` or `${...}`).
type StringPart struct {
	Literal string
	Expr    Expression // nil when this part is a literal chunk
}

// InterpolatedString is a double-quoted string with `$ident`/`${expr}`
// interpolation (spec §4.1's EXPR_STRING_START/.../EXPR_STRING_END token
// sequence, assembled by the Parser into one node).
type InterpolatedString struct {
	ExprInfo
	Parts []StringPart
}

func (s *InterpolatedString) String() string {
	out := `"`
	for _, p := range s.Parts {
		if p.Expr != nil {
			out += "${" + p.Expr.String() + "}"
		} else {
			out += p.Literal
		}
	}
	return out + `"`
}

// Index is the unified `.field`, `?.field`, `[key]`, `?[key]` chain
// expression (spec §4.3). Field-form accesses set Field and leave Key nil;
// subscript-form accesses set Key and leave Field empty. CreateIfMissing
// is set when this node is used as an lvalue with create-if-missing
// semantics (spec §4.4).
type Index struct {
	ExprInfo
	Receiver        Expression
	Field           string
	Key             Expression
	Safe            bool // ?. or ?[
	CreateIfMissing bool
}

func (ix *Index) String() string {
	op := "."
	if ix.Safe {
		op = "?."
	}
	if ix.Key != nil {
		if ix.Safe {
			return ix.Receiver.String() + "?[" + ix.Key.String() + "]"
		}
		return ix.Receiver.String() + "[" + ix.Key.String() + "]"
	}
	return ix.Receiver.String() + op + ix.Field
}

// VarAssign is a plain `=` or `?=` assignment to a variable.
type VarAssign struct {
	ExprInfo
	Target     *Identifier
	Value      Expression
	IsNullSafe bool // `?=`: result type is boxed(lhs) since the no-assignment outcome yields null
}

func (v *VarAssign) String() string {
	op := "="
	if v.IsNullSafe {
		op = "?="
	}
	return v.Target.String() + " " + op + " " + v.Value.String()
}

// VarOpAssign is `x op= y`, and also the rewritten form of `++x`/`x++`/
// `--x`/`x--` (spec §4.2): for increment/decrement, Value is a Noop and
// IsPreIncOrDec is true; IsPrefix distinguishes `++x` (evaluates the
// post-increment value) from `x++` (captures the pre value into a
// synthesised temporary).
type VarOpAssign struct {
	ExprInfo
	Target        *Identifier
	Op            string // "+", "-", "*", ... (the operator before `=`)
	Value         Expression
	Embedded      *Binary // Noop-left binary the Resolver types and the back-end materialises
	IsPreIncOrDec bool
	IsPrefix      bool
}

func (v *VarOpAssign) String() string {
	if v.IsPreIncOrDec {
		if v.IsPrefix {
			return v.Op + v.Op + v.Target.String()
		}
		return v.Target.String() + v.Op + v.Op
	}
	return v.Target.String() + " " + v.Op + "= " + v.Value.String()
}

// FieldAssign is `recv.field = value` / `recv[key] = value`.
type FieldAssign struct {
	ExprInfo
	Target *Index
	Value  Expression
}

func (f *FieldAssign) String() string { return f.Target.String() + " = " + f.Value.String() }

// FieldOpAssign is `recv.field op= value`.
type FieldOpAssign struct {
	ExprInfo
	Target   *Index
	Op       string
	Value    Expression
	Embedded *Binary
}

func (f *FieldOpAssign) String() string {
	return f.Target.String() + " " + f.Op + "= " + f.Value.String()
}

// Call is an ordinary function call `callee(args...)`.
type Call struct {
	ExprInfo
	Callee  Expression
	Args    []Expression
	IsAsync bool // set by the async analyser (spec §4.5): must this call-site save/restore state
}

func (c *Call) String() string { return c.Callee.String() + "(" + joinExprs(c.Args, ", ") + ")" }

// MethodCall is `receiver.name(args...)`; Desc carries the resolved method
// descriptor once bound by the Resolver, nil until then.
type MethodCall struct {
	ExprInfo
	Receiver Expression
	Name     string
	Args     []Expression
	Desc     *jtypes.FunctionType
	IsAsync  bool // set by the async analyser (spec §4.5): must this call-site save/restore state
}

func (m *MethodCall) String() string {
	return m.Receiver.String() + "." + m.Name + "(" + joinExprs(m.Args, ", ") + ")"
}

// RegexMatch is `str =~ /pattern/` (or `!~` for negated match).
type RegexMatch struct {
	ExprInfo
	Subject  Expression
	Pattern  Expression
	Negated  bool
	Captures bool // whether capture groups are bound into named vars
}

func (r *RegexMatch) String() string {
	op := "=~"
	if r.Negated {
		op = "!~"
	}
	return r.Subject.String() + " " + op + " " + r.Pattern.String()
}

// RegexSubst is `str =~ s/pattern/replacement/flags`.
type RegexSubst struct {
	ExprInfo
	Subject     Expression
	Pattern     Expression
	Replacement Expression
	Global      bool
}

func (r *RegexSubst) String() string { return r.Subject.String() + " =~ s/.../.../ " }

// Ternary is `cond ? then : else`.
type Ternary struct {
	ExprInfo
	Cond Expression
	Then Expression
	Else Expression
}

func (t *Ternary) String() string {
	return t.Cond.String() + " ? " + t.Then.String() + " : " + t.Else.String()
}

// Closure is a `{ params -> body }` function literal; Decl is the
// underlying FunDecl (Name == "", IsClosure == true).
type Closure struct {
	ExprInfo
	Decl *FunDecl
}

func (c *Closure) String() string { return c.Decl.String() }

// Return is both an Expression (a `return` may itself appear nested inside
// another expression's evaluation, spec §3) and, more commonly, a
// Statement (see statementNode below).
type Return struct {
	ExprInfo
	Value      Expression // nil for a bare `return`
	ReturnType jtypes.Type
}

func (r *Return) statementNode() {}

func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

// Break/Continue are bound to their enclosing While by the Parser (lexical
// binding, spec §4.2) and re-validated by the Resolver (spec §4.4).
type Break struct {
	ExprInfo
	Target *While
}

func (b *Break) String() string { return "break" }

type Continue struct {
	ExprInfo
	Target *While
}

func (c *Continue) String() string { return "continue" }

// Print is `print expr` / `println expr`.
type Print struct {
	ExprInfo
	Arg  Expression
	Newline bool
}

func (p *Print) String() string {
	if p.Newline {
		return "println " + p.Arg.String()
	}
	return "print " + p.Arg.String()
}

var _ Expression = (*VarDecl)(nil)
var _ Statement = (*VarDecl)(nil)
var _ Expression = (*FunDecl)(nil)
var _ Statement = (*FunDecl)(nil)
var _ Expression = (*Return)(nil)
var _ Statement = (*Return)(nil)
