package thread

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryInsertKeepsAscendingOrder(t *testing.T) {
	r := New()
	require.True(t, r.Insert(NewState(5)))
	require.True(t, r.Insert(NewState(1)))
	require.True(t, r.Insert(NewState(3)))
	require.Equal(t, []uint32{1, 3, 5}, r.IDs())
}

func TestRegistryInsertDuplicateIsNoop(t *testing.T) {
	r := New()
	require.True(t, r.Insert(NewState(1)))
	require.False(t, r.Insert(NewState(1)))
	require.Equal(t, 1, r.Len())
}

func TestRegistryNextWrapsAround(t *testing.T) {
	r := New()
	r.Insert(NewState(1))
	r.Insert(NewState(3))
	r.Insert(NewState(7))

	next, ok := r.Next(1)
	require.True(t, ok)
	require.Equal(t, uint32(3), next)

	next, ok = r.Next(7)
	require.True(t, ok)
	require.Equal(t, uint32(1), next)

	next, ok = r.Next(4)
	require.True(t, ok)
	require.Equal(t, uint32(7), next)
}

// TestRegistryNextSurvivesMidScanInsert confirms the documented
// invariant: the cursor is a thread id, so inserting a new thread while
// "between" two ids in a round-robin scan does not skip or repeat
// entries incorrectly relative to the ids that existed before the
// insert.
func TestRegistryNextSurvivesMidScanInsert(t *testing.T) {
	r := New()
	r.Insert(NewState(1))
	r.Insert(NewState(5))

	cursor, ok := r.Next(1) // would be 5 before the insert
	require.True(t, ok)
	require.Equal(t, uint32(5), cursor)

	r.Insert(NewState(3)) // inserted "behind" the cursor

	next, ok := r.Next(cursor) // cursor is still a valid key, wraps to 1
	require.True(t, ok)
	require.Equal(t, uint32(1), next)
}

func TestRegistryNextSurvivesMidScanRemove(t *testing.T) {
	r := New()
	r.Insert(NewState(1))
	r.Insert(NewState(3))
	r.Insert(NewState(5))

	r.Remove(3)

	next, ok := r.Next(1)
	require.True(t, ok)
	require.Equal(t, uint32(5), next)
}

func TestRegistryNextEmpty(t *testing.T) {
	r := New()
	_, ok := r.Next(0)
	require.False(t, ok)
}

func TestRegistryEachVisitsAscending(t *testing.T) {
	r := New()
	r.Insert(NewState(9))
	r.Insert(NewState(2))
	var seen []uint32
	r.Each(func(s *State) { seen = append(seen, s.ID) })
	require.Equal(t, []uint32{2, 9}, seen)
}
