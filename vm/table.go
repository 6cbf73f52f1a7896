package vm

// table is an open-addressed hash table keyed by interned *ObjString,
// linear-probed, with tombstone deletion. It backs both the VM's
// globals and the string intern set (see object.go).
//
// An entry is one of:
//   - empty:    key == nil, value == VNil{}
//   - tombstone: key == nil, value == VBool(true)
//   - occupied: key != nil
//
// Grounded on clox's table.c/table.h, translated to a Go slice of
// entries instead of a raw pointer array.
type table struct {
	entries []entry
	count   int
}

type entry struct {
	key   *ObjString
	value Value
}

const tableMaxLoad = 0.75

func newTable() table { return table{} }

// Get returns the value stored for key, or VNil{}, false if absent.
func (t *table) Get(key *ObjString) (Value, bool) {
	if t.count == 0 {
		return VNil{}, false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return VNil{}, false
	}
	return e.value, true
}

// Set stores value under key, growing the table first if needed.
// It reports whether key was not already present.
func (t *table) Set(key *ObjString, value Value) (isNewKey bool) {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}

	e := findEntry(t.entries, key)
	isNewKey = e.key == nil
	if isNewKey {
		if _, isTombstone := e.value.(VBool); !isTombstone {
			// A previously empty bucket (not a tombstone) grows the count.
			t.count++
		}
	}

	e.key = key
	e.value = value
	return isNewKey
}

// Delete places a tombstone at key's bucket, preserving the probe chain
// for every other key that ever hashed through it.
func (t *table) Delete(key *ObjString) bool {
	if t.count == 0 {
		return false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = VBool(true) // Tombstone.
	return true
}

// AddAll copies every occupied entry of src into t.
func (t *table) AddAll(src *table) {
	for _, e := range src.entries {
		if e.key != nil {
			t.Set(e.key, e.value)
		}
	}
}

// findString looks up a string by its raw bytes and precomputed hash,
// without needing an *ObjString to compare pointers against yet. This
// is what makes hash-consing possible: the intern table asks "do I
// already have this content" before allocating a new ObjString.
func (t *table) findString(s string, hash uint32) *ObjString {
	if t.count == 0 {
		return nil
	}
	cap_ := len(t.entries)
	idx := int(hash) % cap_
	for {
		e := &t.entries[idx]
		switch {
		case e.key == nil:
			if _, isTombstone := e.value.(VBool); !isTombstone {
				return nil // Genuinely empty: the string was never interned.
			}
		case e.key.hash == hash && e.key.chars == s:
			return e.key
		}
		idx = (idx + 1) % cap_
	}
}

// findEntry implements the probe sequence shared by Get/Set/Delete: it
// returns the bucket that would (or does) hold key, preferring the
// earliest tombstone seen over a later empty bucket so deleted slots
// get reused.
func findEntry(entries []entry, key *ObjString) *entry {
	cap_ := len(entries)
	idx := int(key.hash) % cap_
	var tombstone *entry
	for {
		e := &entries[idx]
		switch {
		case e.key == nil:
			if _, isTombstone := e.value.(VBool); !isTombstone {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			if tombstone == nil {
				tombstone = e
			}
		case e.key == key:
			return e
		}
		idx = (idx + 1) % cap_
	}
}

func growCapacity(cap_ int) int {
	if cap_ < 8 {
		return 8
	}
	return cap_ * 2
}

// adjustCapacity reallocates the backing array at the given capacity,
// rehashing every live entry and dropping tombstones along the way.
func (t *table) adjustCapacity(capacity int) {
	newEntries := make([]entry, capacity)
	for i := range newEntries {
		newEntries[i] = entry{value: VNil{}}
	}

	t.count = 0
	for _, old := range t.entries {
		if old.key == nil {
			continue
		}
		dst := findEntry(newEntries, old.key)
		dst.key = old.key
		dst.value = old.value
		t.count++
	}

	t.entries = newEntries
}
