package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternReturnsSamePointerForEqualContent(t *testing.T) {
	t.Parallel()
	vm_ := NewVM()
	a := vm_.strings.intern(vm_, "hello")
	b := vm_.strings.intern(vm_, "hello")
	assert.Same(t, a, b)
	assert.Len(t, vm_.objects, 1, "the second intern call must not allocate")
}

func TestInternDistinctContentDistinctPointers(t *testing.T) {
	t.Parallel()
	vm_ := NewVM()
	a := vm_.strings.intern(vm_, "hello")
	b := vm_.strings.intern(vm_, "world")
	assert.NotSame(t, a, b)
	assert.Len(t, vm_.objects, 2)
}

func TestNewVStrWrapsInternedValue(t *testing.T) {
	t.Parallel()
	vm_ := NewVM()
	v := NewVStr(vm_, "x")
	w := NewVStr(vm_, "x")
	assert.True(t, bool(VEq(v, w)), "equal contents must compare equal by interned pointer")
}

func TestFNV1a(t *testing.T) {
	t.Parallel()
	// Known FNV-1a 32-bit digest for the empty string is the offset basis.
	assert.Equal(t, uint32(2166136261), fnv1a(""))
	// Hashing must be a pure function of the bytes.
	assert.Equal(t, fnv1a("clox"), fnv1a("clox"))
	assert.NotEqual(t, fnv1a("clox"), fnv1a("xolc"))
}
