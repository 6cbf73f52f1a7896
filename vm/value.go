package vm

import "fmt"

// Value is a closed tagged union: VNil, VBool, VNum are immediate
// variants; VObj is the heap-object variant (currently only strings).
// The discriminator (the concrete Go type) and the payload are always
// consistent by construction — there is no bit-reinterpretation path.
type Value interface{ isValue() }

func NewValue() Value { return VNil{} }

type VBool bool

func (_ VBool) isValue()       {}
func (v VBool) String() string { return fmt.Sprintf("%t", v) }

type VNil struct{}

func (_ VNil) isValue()       {}
func (v VNil) String() string { return "nil" }

type VNum float64

func (_ VNum) isValue()       {}
func (v VNum) String() string { return fmt.Sprintf("%g", float64(v)) }

// VObj is the heap-object Value variant. It owns a handle to a heap
// object by reference; today the only object kind is *ObjString.
type VObj struct{ Obj *ObjString }

func (_ VObj) isValue()       {}
func (v VObj) String() string { return v.Obj.chars }

func VAdd(v, w Value) (res Value, ok bool) {
	res = NewValue()
	switch v := v.(type) {
	case VNum:
		switch w := w.(type) {
		case VNum:
			return v + w, true
		}
	}
	return
}

func VSub(v, w Value) (res Value, ok bool) {
	res = NewValue()
	switch v := v.(type) {
	case VNum:
		switch w := w.(type) {
		case VNum:
			return v - w, true
		}
	}
	return
}

func VMul(v, w Value) (res Value, ok bool) {
	res = NewValue()
	switch v := v.(type) {
	case VNum:
		switch w := w.(type) {
		case VNum:
			return v * w, true
		}
	}
	return
}

func VDiv(v, w Value) (res Value, ok bool) {
	res = NewValue()
	switch v := v.(type) {
	case VNum:
		switch w := w.(type) {
		case VNum:
			return v / w, true
		}
	}
	return
}

func VGreater(v, w Value) (res Value, ok bool) {
	res = NewValue()
	switch v := v.(type) {
	case VNum:
		switch w := w.(type) {
		case VNum:
			return VBool(v > w), true
		}
	}
	return
}

func VLess(v, w Value) (res Value, ok bool) {
	res = NewValue()
	switch v := v.(type) {
	case VNum:
		switch w := w.(type) {
		case VNum:
			return VBool(v < w), true
		}
	}
	return
}

func VNeg(v Value) (res Value, ok bool) {
	res = NewValue()
	switch v := v.(type) {
	case VNum:
		return -v, true
	}
	return
}

// VStrings reports whether both operands are strings, returning their
// contents. OpAdd uses this to choose concatenation over numeric add.
func VStrings(v, w Value) (vs, ws string, ok bool) {
	vo, vok := v.(VObj)
	wo, wok := w.(VObj)
	if !vok || !wok {
		return "", "", false
	}
	return vo.Obj.chars, wo.Obj.chars, true
}

func VTruthy(v Value) VBool {
	switch v := v.(type) {
	case VBool:
		return v
	case VNil:
		return false
	default:
		return true
	}
}

func VEq(v, w Value) VBool {
	switch v := v.(type) {
	case VBool:
		switch w := w.(type) {
		case VBool:
			return v == w
		}
	case VNum:
		switch w := w.(type) {
		case VNum:
			return v == w
		}
	case VNil:
		_, ok := w.(VNil)
		return VBool(ok)
	case VObj:
		// Strings are interned, so pointer equality is value equality.
		switch w := w.(type) {
		case VObj:
			return VBool(v.Obj == w.Obj)
		}
	}
	return false
}
