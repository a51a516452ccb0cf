// Package jtypes implements Jactl's compile-time type lattice (spec §3, §4.3):
// the numeric tower, boxing distinction, reference types, and the rules for
// the result type of binary operators and for assignability.
package jtypes

import "fmt"

// Tag is the discriminant of a Type's variant.
type Tag int

const (
	// Placeholder for `var` bindings pending inference. Always replaced
	// before code generation; surviving past resolution is an internal
	// error (spec §7, §8 invariant 3).
	UNKNOWN Tag = iota

	// Primitives — may carry a Boxed flag.
	BOOLEAN
	INT
	LONG
	DOUBLE

	// Reference-only types.
	DECIMAL
	STRING
	LIST
	MAP
	ANY
	FUNCTION
	INSTANCE // instance<ClassDescriptor>
	CLASS    // class<ClassDescriptor>

	// Internal, back-end-facing types; never appear in source syntax.
	HEAP_LOCAL
	ITERATOR
	MATCHER
	CONTINUATION
	OBJECT_ARRAY
	LONG_ARRAY
	STRING_ARRAY

	// VOID is a function's declared return type only; never the type of a
	// value-producing expression.
	VOID
)

func (t Tag) String() string {
	switch t {
	case BOOLEAN:
		return "boolean"
	case INT:
		return "int"
	case LONG:
		return "long"
	case DOUBLE:
		return "double"
	case DECIMAL:
		return "Decimal"
	case STRING:
		return "String"
	case LIST:
		return "List"
	case MAP:
		return "Map"
	case ANY:
		return "any"
	case FUNCTION:
		return "Function"
	case INSTANCE:
		return "instance"
	case CLASS:
		return "class"
	case HEAP_LOCAL:
		return "HeapLocal"
	case ITERATOR:
		return "Iterator"
	case MATCHER:
		return "Matcher"
	case CONTINUATION:
		return "Continuation"
	case OBJECT_ARRAY:
		return "Object[]"
	case LONG_ARRAY:
		return "long[]"
	case STRING_ARRAY:
		return "String[]"
	case UNKNOWN:
		return "unknown"
	case VOID:
		return "void"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// ClassDescriptor describes a `class` declaration once resolved: fully
// qualified name, field layout, method list, and super descriptor (spec §3).
type ClassDescriptor struct {
	Name       string
	Package    string
	FieldOrder []string
	Fields     map[string]Type
	Methods    map[string]*FunctionType
	Super      *ClassDescriptor
	Interfaces []*ClassDescriptor
}

// QualifiedName returns Package.Name, or just Name when Package is empty.
func (c *ClassDescriptor) QualifiedName() string {
	if c == nil {
		return ""
	}
	if c.Package == "" {
		return c.Name
	}
	return c.Package + "." + c.Name
}

// IsSameOrDescendantOf reports whether c is other or inherits from other,
// directly or transitively, through Super or Interfaces.
func (c *ClassDescriptor) IsSameOrDescendantOf(other *ClassDescriptor) bool {
	if c == nil || other == nil {
		return false
	}
	for cur := c; cur != nil; cur = cur.Super {
		if cur == other || cur.QualifiedName() == other.QualifiedName() {
			return true
		}
		for _, iface := range cur.Interfaces {
			if iface.IsSameOrDescendantOf(other) {
				return true
			}
		}
	}
	return false
}

// FunctionType is the Type-system view of a callable's signature: parameter
// types and a return type. Async behaviour is not part of the type system —
// see ast.FunctionDescriptor, which is resolver/async-analyser metadata
// carried alongside a FunDecl rather than part of the value's Type.
type FunctionType struct {
	Params   []Type
	Variadic bool
	Return   Type
}

func (f *FunctionType) String() string {
	return "Function"
}

// Type is a tagged compile-time type. The zero Type is UNKNOWN/unboxed,
// which matches the declared type of a freshly-parsed `var` binding before
// inference runs.
type Type struct {
	tag      Tag
	boxed    bool // only meaningful when tag is one of the primitives
	class    *ClassDescriptor
	function *FunctionType
}

func Primitive(tag Tag, boxed bool) Type {
	if !isPrimitiveTag(tag) {
		panic("jtypes: Primitive called with non-primitive tag " + tag.String())
	}
	return Type{tag: tag, boxed: boxed}
}

func Simple(tag Tag) Type {
	if isPrimitiveTag(tag) {
		panic("jtypes: Simple called with primitive tag " + tag.String() + "; use Primitive")
	}
	return Type{tag: tag}
}

func InstanceOf(c *ClassDescriptor) Type  { return Type{tag: INSTANCE, class: c} }
func ClassOf(c *ClassDescriptor) Type     { return Type{tag: CLASS, class: c} }
func FunctionOf(f *FunctionType) Type     { return Type{tag: FUNCTION, function: f} }

var (
	Bool    = Primitive(BOOLEAN, false)
	Int     = Primitive(INT, false)
	Long    = Primitive(LONG, false)
	Double  = Primitive(DOUBLE, false)
	Decimal = Simple(DECIMAL)
	String  = Simple(STRING)
	ListT   = Simple(LIST)
	MapT    = Simple(MAP)
	Any     = Simple(ANY)
	Unknown = Type{tag: UNKNOWN}
	Void    = Type{tag: VOID}
)

func isPrimitiveTag(tag Tag) bool {
	return tag == BOOLEAN || tag == INT || tag == LONG || tag == DOUBLE
}

func (t Type) Tag() Tag                    { return t.tag }
func (t Type) Class() *ClassDescriptor     { return t.class }
func (t Type) Function() *FunctionType     { return t.function }
func (t Type) IsPrimitive() bool           { return isPrimitiveTag(t.tag) }
func (t Type) IsBoxed() bool               { return t.boxed }
func (t Type) IsUnknown() bool             { return t.tag == UNKNOWN }
func (t Type) IsAny() bool                 { return t.tag == ANY }
func (t Type) IsNumeric() bool {
	switch t.tag {
	case INT, LONG, DOUBLE, DECIMAL:
		return true
	default:
		return false
	}
}

// Boxed returns t with its boxed flag set (reference types are always
// conceptually boxed already and are returned unchanged).
func (t Type) Boxed() Type {
	if !t.IsPrimitive() {
		return t
	}
	t.boxed = true
	return t
}

// Unboxed returns t with its boxed flag cleared.
func (t Type) Unboxed() Type {
	if !t.IsPrimitive() {
		return t
	}
	t.boxed = false
	return t
}

func (t Type) String() string {
	suffix := ""
	if t.IsPrimitive() && t.boxed {
		suffix = "(boxed)"
	}
	switch t.tag {
	case INSTANCE:
		return "instance<" + t.class.QualifiedName() + ">" + suffix
	case CLASS:
		return "class<" + t.class.QualifiedName() + ">" + suffix
	default:
		return t.tag.String() + suffix
	}
}

// Equal reports structural equality, modulo the boxed flag (spec §4.3:
// "identical modulo box").
func (t Type) Equal(other Type) bool {
	if t.tag != other.tag {
		return false
	}
	switch t.tag {
	case INSTANCE, CLASS:
		return t.class.QualifiedName() == other.class.QualifiedName()
	default:
		return true
	}
}

// numericRank implements the linear numeric tower int < long < double <
// decimal (spec §3 invariant, §4.3 widening table).
func numericRank(tag Tag) int {
	switch tag {
	case INT:
		return 0
	case LONG:
		return 1
	case DOUBLE:
		return 2
	case DECIMAL:
		return 3
	default:
		return -1
	}
}

// Widen returns the narrowest numeric type that both a and b can be
// promoted to without loss, per the int<long<double<decimal tower. `any`
// on either side propagates (spec §4.3: "`any` propagates").
func Widen(a, b Type) (Type, bool) {
	if a.IsAny() || b.IsAny() {
		return Any, true
	}
	ra, rb := numericRank(a.tag), numericRank(b.tag)
	if ra < 0 || rb < 0 {
		return Type{}, false
	}
	if ra >= rb {
		return a.Unboxed(), true
	}
	return b.Unboxed(), true
}

// IsConvertibleTo implements T1.isConvertibleTo(T2) from spec §4.3:
// identical modulo box, either side `any`, numeric→numeric, or
// instance→instance when the source descriptor is same-or-descendant of
// the target descriptor.
func (t Type) IsConvertibleTo(target Type) bool {
	if t.Equal(target) {
		return true
	}
	if t.IsAny() || target.IsAny() {
		return true
	}
	if t.IsNumeric() && target.IsNumeric() {
		return true
	}
	if t.tag == INSTANCE && target.tag == INSTANCE {
		return t.class.IsSameOrDescendantOf(target.class)
	}
	return false
}
