package vm

// ObjString is the only heap-object kind this language subset has.
// Strings are immutable once constructed and hash-consed: every
// ObjString reachable from a Value was handed out by the intern
// table below, so two equal contents always share one *ObjString and
// `==` on the pointer is a correct equality check.
type ObjString struct {
	chars string
	hash  uint32
}

func (o *ObjString) String() string { return o.chars }

// fnv1a hashes a string's bytes with the 32-bit FNV-1a algorithm. It is
// computed once per ObjString at allocation time and cached on the
// object, so table lookups never rehash the bytes.
func fnv1a(s string) uint32 {
	const (
		offsetBasis uint32 = 2166136261
		prime       uint32 = 16777619
	)
	h := offsetBasis
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}

// internTable hash-conses strings so that equal contents produce the
// same *ObjString. It is backed by the same open-addressed table used
// for globals (see table.go), keyed on the candidate string's own hash
// before an ObjString even exists for it.
type internTable struct {
	table table
}

func newInternTable() *internTable { return &internTable{table: newTable()} }

// intern returns the canonical *ObjString for s, allocating one and
// registering it on the VM's object registry on first sight.
func (it *internTable) intern(vm *VM, s string) *ObjString {
	h := fnv1a(s)
	if found := it.table.findString(s, h); found != nil {
		return found
	}
	obj := &ObjString{chars: s, hash: h}
	it.table.Set(obj, VBool(true))
	vm.objects = append(vm.objects, obj)
	return obj
}

// NewVStr interns s against vm's string table and wraps the result as a
// Value. It is the single allocation path for string literals,
// identifier names, and concatenation results, matching the
// requirement that every string allocation path go through interning.
func NewVStr(vm *VM, s string) Value { return VObj{vm.strings.intern(vm, s)} }
