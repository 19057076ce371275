package syncreg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTryAdvanceRequiresExactSuccessor(t *testing.T) {
	r := New()
	require.False(t, r.TryAdvance(false, 1, 2), "cannot skip from 0 straight to 2")
	require.True(t, r.TryAdvance(false, 1, 1))
	require.Equal(t, uint32(1), r.Current(false, 1))
	require.True(t, r.TryAdvance(false, 1, 2))
	require.Equal(t, uint32(2), r.Current(false, 1))
}

func TestTryAdvanceRejectsReplay(t *testing.T) {
	r := New()
	require.True(t, r.TryAdvance(false, 1, 1))
	require.False(t, r.TryAdvance(false, 1, 1), "seq already delivered")
	require.False(t, r.TryAdvance(false, 1, 3), "gap, not the exact successor")
}

func TestEventAndMutexShareOneHandleSpace(t *testing.T) {
	r := New()
	require.True(t, r.TryAdvance(false, 42, 1))
	require.Equal(t, uint32(1), r.Current(false, 42))
	// A mutex record against the same handle continues the same
	// sequence rather than starting a fresh one.
	require.True(t, r.TryAdvance(false, 42, 2))
}

func TestCritSecHandleSpaceIsIndependent(t *testing.T) {
	r := New()
	require.True(t, r.TryAdvance(false, 7, 1)) // event/mutex handle 7
	require.Equal(t, uint32(0), r.Current(true, 7), "critsec handle 7 unaffected")
	require.True(t, r.TryAdvance(true, 7, 1))
	require.Equal(t, uint32(1), r.Current(true, 7))
	require.Equal(t, uint32(1), r.Current(false, 7), "event/mutex side unaffected by critsec")
}

func TestSnapshotIsACopy(t *testing.T) {
	r := New()
	r.TryAdvance(false, 1, 1)
	r.TryAdvance(true, 2, 1)

	eventMutex, critSec := r.Snapshot()
	eventMutex[1] = 99
	critSec[2] = 99

	require.Equal(t, uint32(1), r.Current(false, 1))
	require.Equal(t, uint32(1), r.Current(true, 2))
}
