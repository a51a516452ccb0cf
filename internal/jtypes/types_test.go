package jtypes

import "testing"

func TestWidenNumericTower(t *testing.T) {
	tests := []struct {
		a, b Type
		want Tag
	}{
		{Int, Int, INT},
		{Int, Long, LONG},
		{Long, Double, DOUBLE},
		{Double, Decimal, DECIMAL},
		{Decimal, Int, DECIMAL},
		{Any, Int, ANY},
		{Int, Any, ANY},
	}
	for _, tt := range tests {
		got, ok := Widen(tt.a, tt.b)
		if !ok {
			t.Errorf("Widen(%s, %s) failed, want %s", tt.a, tt.b, tt.want)
			continue
		}
		if got.Tag() != tt.want {
			t.Errorf("Widen(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestWidenNonNumericFails(t *testing.T) {
	if _, ok := Widen(String, Int); ok {
		t.Error("Widen(String, Int) should fail")
	}
}

func TestIsConvertibleTo(t *testing.T) {
	animal := &ClassDescriptor{Name: "Animal"}
	dog := &ClassDescriptor{Name: "Dog", Super: animal}

	tests := []struct {
		from, to Type
		want     bool
	}{
		{Int, Long, true},
		{Long, Int, true},
		{String, Int, false},
		{Any, String, true},
		{String, Any, true},
		{InstanceOf(dog), InstanceOf(animal), true},
		{InstanceOf(animal), InstanceOf(dog), false},
		{InstanceOf(dog), InstanceOf(dog), true},
	}
	for _, tt := range tests {
		if got := tt.from.IsConvertibleTo(tt.to); got != tt.want {
			t.Errorf("%s.IsConvertibleTo(%s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestClassDescriptorIsSameOrDescendantOf(t *testing.T) {
	animal := &ClassDescriptor{Name: "Animal"}
	dog := &ClassDescriptor{Name: "Dog", Super: animal}
	cat := &ClassDescriptor{Name: "Cat", Super: animal}

	if !dog.IsSameOrDescendantOf(animal) {
		t.Error("Dog should be a descendant of Animal")
	}
	if dog.IsSameOrDescendantOf(cat) {
		t.Error("Dog should not be a descendant of Cat")
	}
	if !dog.IsSameOrDescendantOf(dog) {
		t.Error("Dog should be same-or-descendant of itself")
	}
}

func TestClassDescriptorQualifiedName(t *testing.T) {
	c := &ClassDescriptor{Name: "Dog", Package: "animals"}
	if got := c.QualifiedName(); got != "animals.Dog" {
		t.Errorf("QualifiedName() = %q, want %q", got, "animals.Dog")
	}
	plain := &ClassDescriptor{Name: "Dog"}
	if got := plain.QualifiedName(); got != "Dog" {
		t.Errorf("QualifiedName() = %q, want %q", got, "Dog")
	}
}

func TestEqualModuloBox(t *testing.T) {
	if !Int.Equal(Int.Boxed()) {
		t.Error("Int should equal its boxed form modulo box")
	}
	if Int.Equal(Long) {
		t.Error("Int should not equal Long")
	}
}

func TestBoxedUnboxedNoOpOnReferenceTypes(t *testing.T) {
	if String.Boxed() != String {
		t.Error("Boxed() on a reference type should be a no-op")
	}
	if String.Unboxed() != String {
		t.Error("Unboxed() on a reference type should be a no-op")
	}
}

func TestPrimitivePanicsOnNonPrimitiveTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Primitive(STRING, false) should panic")
		}
	}()
	Primitive(STRING, false)
}

func TestSimplePanicsOnPrimitiveTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Simple(INT) should panic")
		}
	}()
	Simple(INT)
}

func TestIsNumeric(t *testing.T) {
	for _, ty := range []Type{Int, Long, Double, Decimal} {
		if !ty.IsNumeric() {
			t.Errorf("%s should be numeric", ty)
		}
	}
	for _, ty := range []Type{String, Bool, ListT, MapT, Any} {
		if ty.IsNumeric() {
			t.Errorf("%s should not be numeric", ty)
		}
	}
}
