package ast

import (
	"github.com/cwbudde-labs/jactl/internal/jtypes"
	"github.com/cwbudde-labs/jactl/internal/token"
)

// VarDecl is both a semantic symbol (spec §3 "VarDecl (semantic symbol)")
// and, when it appears in expression position (`var x = 1` used as a
// value), a first-class Expression node — hence it implements both sum
// types, as spec.md's Data Model lists it under both Expression and
// Statement. Lifecycle: created by the Parser, populated by the Resolver,
// consumed by the back-end.
type VarDecl struct {
	ExprInfo

	NameTok *token.Token
	Name    string

	DeclaredType jtypes.Type // as written in source ("var" => Unknown until inferred)
	Init         Expression  // initialiser; nil if none

	Owner *FunDecl // the function this declaration lives in

	IsGlobal            bool // lives in the externally supplied globals mapping (REPL / top-level)
	IsHeapLocal         bool // captured by a nested function
	IsPassedAsHeapLocal bool // wrapper-promoted parameter
	IsParam             bool
	IsFinal             bool // single-assignment, and the assignment is the declaration's initialiser
	NestingLevel        int  // 1 = outermost

	Function *VarDecl // not set by this module's passes; a function binding is carried by FunDecl below
	FunDecl  *FunDecl // set when this VarDecl names a function

	ParentVarDecl *VarDecl // the per-function wrapper chain for a captured heap slot
	Original      *VarDecl // the original declaration this one was derived from (heap-local promotion)

	declared bool // true once `declare` has inserted the sentinel; see resolver
	defined  bool // true once `define` has populated this VarDecl fully
}

func (v *VarDecl) statementNode() {}

func (v *VarDecl) String() string {
	if v.Init != nil {
		return v.DeclaredType.String() + " " + v.Name + " = " + v.Init.String()
	}
	return v.DeclaredType.String() + " " + v.Name
}

// Declared reports whether the name has at least been entered into scope
// (possibly still with the "undefined" sentinel marker — spec §4.4(a)).
func (v *VarDecl) Declared() bool { return v.declared }

// Defined reports whether the declaration has been fully populated.
func (v *VarDecl) Defined() bool { return v.defined }

func (v *VarDecl) MarkDeclared() { v.declared = true }
func (v *VarDecl) MarkDefined()  { v.defined = true }

// FunctionDescriptor is compile-time metadata about a function's signature
// and async behaviour, carried alongside its FunDecl (spec GLOSSARY,
// §4.5). Built-in descriptors for library functions are fixed; user
// descriptors start optimistic (isAsync = false) and may be promoted by
// the async-propagation analyser (C5).
type FunctionDescriptor struct {
	Arity            int
	MandatoryCount   int // first MandatoryCount params have no default
	IsAsync          bool
	AsyncArgs        []int // argument positions (0 = receiver) that propagate async-ness; empty = async-ness is callee-only
	ImplementingName string
}

// FunDecl is a user function, method, or closure (spec §3 "FunDecl").
type FunDecl struct {
	ExprInfo

	StartTok *token.Token
	Name     string // empty for closures

	DeclaredReturnType jtypes.Type
	ReturnType         jtypes.Type // inferred when DeclaredReturnType is Unknown

	Params    []*VarDecl // explicit parameters
	Synthetic []*VarDecl // synthesized parameters (captured heap-locals, continuation token)

	Body *Block

	Descriptor *FunctionDescriptor

	Owner   *FunDecl // the enclosing function this one is declared directly inside
	Wrapper *FunDecl // wrapper function; no pass in this module synthesizes one, so it stays nil

	// Captures is the ordered map of outer-scope names this function's
	// body references, populated by the Resolver as nested functions are
	// discovered referencing outer symbols (insertion order preserved by
	// CaptureOrder so wrapper parameter lists are deterministic).
	Captures     map[string]*VarDecl
	CaptureOrder []string

	NestingLevel int

	ForwardRefToken *token.Token // earliest forward reference, if any

	IsScriptMain bool
	IsStatic     bool
	IsClosure    bool // no Name: a closure literal rather than a `def` statement
}

func (f *FunDecl) statementNode() {}

func (f *FunDecl) String() string {
	name := f.Name
	if name == "" {
		name = "<closure>"
	}
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return "def " + name + "(" + join(parts, ", ") + ") { ... }"
}

// AddCapture records that this function's body refers to an outer VarDecl,
// preserving first-reference order (spec §4.4 "Scope and capture").
func (f *FunDecl) AddCapture(name string, decl *VarDecl) {
	if f.Captures == nil {
		f.Captures = make(map[string]*VarDecl)
	}
	if _, exists := f.Captures[name]; exists {
		return
	}
	f.Captures[name] = decl
	f.CaptureOrder = append(f.CaptureOrder, name)
}

func join(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}
