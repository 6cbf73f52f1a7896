package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func key(s string) *ObjString { return &ObjString{chars: s, hash: fnv1a(s)} }

func TestTableSetGetDelete(t *testing.T) {
	t.Parallel()
	tbl := newTable()

	a, b := key("a"), key("b")
	assert.True(t, tbl.Set(a, VNum(1)))
	assert.True(t, tbl.Set(b, VNum(2)))
	assert.False(t, tbl.Set(a, VNum(3))) // Overwrite: not a new key.

	v, ok := tbl.Get(a)
	assert.True(t, ok)
	assert.Equal(t, VNum(3), v)

	assert.True(t, tbl.Delete(a))
	_, ok = tbl.Get(a)
	assert.False(t, ok)

	// b must still be reachable: deleting a must not break the probe
	// chain b may have been pushed down by a collision with.
	v, ok = tbl.Get(b)
	assert.True(t, ok)
	assert.Equal(t, VNum(2), v)
}

func TestTableGrowsAndRehashes(t *testing.T) {
	t.Parallel()
	tbl := newTable()
	keys := make([]*ObjString, 0, 64)
	for i := 0; i < 64; i++ {
		k := key(string(rune('a') + rune(i)))
		keys = append(keys, k)
		tbl.Set(k, VNum(i))
	}
	for i, k := range keys {
		v, ok := tbl.Get(k)
		assert.True(t, ok)
		assert.Equal(t, VNum(i), v)
	}
}

func TestTableDeleteThenReinsertReusesTombstone(t *testing.T) {
	t.Parallel()
	tbl := newTable()
	a := key("a")
	tbl.Set(a, VNum(1))
	tbl.Delete(a)
	countBefore := tbl.count
	tbl.Set(a, VNum(2))
	v, ok := tbl.Get(a)
	assert.True(t, ok)
	assert.Equal(t, VNum(2), v)
	// Reinserting into the tombstone left by Delete must not grow count:
	// the tombstone was already counted as occupied.
	assert.Equal(t, countBefore, tbl.count)
}

func TestFindStringMatchesByContentNotIdentity(t *testing.T) {
	t.Parallel()
	tbl := newTable()
	a := &ObjString{chars: "shared", hash: fnv1a("shared")}
	tbl.Set(a, VBool(true))

	found := tbl.findString("shared", fnv1a("shared"))
	assert.Same(t, a, found)

	assert.Nil(t, tbl.findString("absent", fnv1a("absent")))
}
