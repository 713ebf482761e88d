package orderedset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	key   string
	value string
}

func byKey(r row) string { return r.key }

func TestInsertKeepsFirstOccurrence(t *testing.T) {
	s := New("b", "a", "c")
	assert.False(t, s.Insert("a"), "re-inserting must report false")
	assert.Equal(t, []string{"b", "a", "c"}, s.Values())
	assert.Equal(t, 3, s.Len())

	rows := NewFunc(byKey)
	require.True(t, rows.Insert(row{"k", "first"}))
	require.False(t, rows.Insert(row{"k", "second"}))
	got, ok := rows.Get("k")
	require.True(t, ok)
	assert.Equal(t, "first", got.value, "existing element wins")
}

func TestUpdateReplacesInPlace(t *testing.T) {
	rows := NewFunc(byKey)
	rows.Insert(row{"a", "1"})
	rows.Insert(row{"b", "2"})

	old, existed := rows.Update(row{"a", "updated"})
	require.True(t, existed)
	assert.Equal(t, "1", old.value)
	assert.Equal(t, "updated", rows.At(0).value)

	_, existed = rows.Update(row{"c", "3"})
	assert.False(t, existed)
	assert.Equal(t, 2, rows.IndexOf(row{key: "c"}))
}

func TestRemoveKeepsIndexConsistent(t *testing.T) {
	s := New("a", "b", "c", "d")
	_, ok := s.Remove("b")
	require.True(t, ok)
	assert.False(t, s.Contains("b"))
	assert.Equal(t, []string{"a", "c", "d"}, s.Values())
	assert.Equal(t, 1, s.IndexOf("c"))
	assert.Equal(t, 2, s.IndexOf("d"))

	_, ok = s.Remove("missing")
	assert.False(t, ok)
}

func TestReplaceRejectsDuplicate(t *testing.T) {
	s := New("a", "b", "c")
	assert.False(t, s.Replace(0, "c"), "c lives elsewhere")
	assert.Equal(t, []string{"a", "b", "c"}, s.Values())

	assert.True(t, s.Replace(0, "z"))
	assert.Equal(t, []string{"z", "b", "c"}, s.Values())
	assert.False(t, s.Contains("a"))
	assert.Equal(t, 0, s.IndexOf("z"))

	rows := NewFunc(byKey)
	rows.Insert(row{"k", "v1"})
	assert.True(t, rows.Replace(0, row{"k", "v2"}), "same key may be replaced")
	assert.Equal(t, "v2", rows.At(0).value)
}

func TestInsertAt(t *testing.T) {
	s := New("a", "c")
	require.True(t, s.InsertAt(1, "b"))
	require.False(t, s.InsertAt(0, "c"))
	require.True(t, s.InsertAt(s.Len(), "d"))
	assert.Equal(t, []string{"a", "b", "c", "d"}, s.Values())
	assert.Equal(t, 2, s.IndexOf("c"))
}

func TestSetAlgebra(t *testing.T) {
	left := New("a", "b", "c")
	right := New("c", "d", "a")

	t.Run("union keeps existing order then appends", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "c", "d"}, left.Union(right).Values())
	})
	t.Run("intersection follows receiver order", func(t *testing.T) {
		assert.Equal(t, []string{"a", "c"}, left.Intersection(right).Values())
	})
	t.Run("symmetric difference", func(t *testing.T) {
		assert.Equal(t, []string{"b", "d"}, left.SymmetricDifference(right).Values())
	})
	t.Run("difference", func(t *testing.T) {
		assert.Equal(t, []string{"b"}, left.Difference(right).Values())
	})
	t.Run("operands untouched", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "c"}, left.Values())
		assert.Equal(t, []string{"c", "d", "a"}, right.Values())
	})
}

func TestFormUnionExistingWins(t *testing.T) {
	base := NewFunc(byKey)
	base.Insert(row{"greeting", "Hello"})
	incoming := NewFunc(byKey)
	incoming.Insert(row{"greeting", "Bonjour"})
	incoming.Insert(row{"farewell", "Au revoir"})

	base.FormUnion(incoming)
	require.Equal(t, 2, base.Len())
	assert.Equal(t, "Hello", base.At(0).value)
	assert.Equal(t, "Au revoir", base.At(1).value)
}

func TestFilterSortAndIterate(t *testing.T) {
	s := New("pear", "apple", "plum", "fig")
	p := s.Filter(func(v string) bool { return strings.HasPrefix(v, "p") })
	assert.Equal(t, []string{"pear", "plum"}, p.Values())

	s.Sort(strings.Compare)
	assert.Equal(t, []string{"apple", "fig", "pear", "plum"}, s.Values())
	assert.Equal(t, 3, s.IndexOf("plum"))

	var seen []string
	for i, v := range s.All() {
		assert.Equal(t, i, s.IndexOf(v))
		seen = append(seen, v)
	}
	assert.Equal(t, s.Values(), seen)

	removed := s.RemoveFunc(func(v string) bool { return len(v) == 3 })
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, s.IndexOf("plum"))
}

func TestCloneIsIndependent(t *testing.T) {
	s := New("a", "b")
	c := s.Clone()
	c.Insert("c")
	c.Remove("a")
	assert.Equal(t, []string{"a", "b"}, s.Values())
	assert.Equal(t, []string{"b", "c"}, c.Values())
	assert.True(t, s.ContainsKey("a"))
}
