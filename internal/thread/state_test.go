package thread

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrentNilOnEmptyStack(t *testing.T) {
	s := NewState(1)
	require.Nil(t, s.Current())
}

func TestPushCurrentPop(t *testing.T) {
	s := NewState(1)
	s.PushCall(ApiCallFrame{Func: 0x10, Name: "A"})
	s.PushCall(ApiCallFrame{Func: 0x20, Name: "B"})
	require.Equal(t, 2, s.StackDepth())

	top := s.Current()
	require.Equal(t, "B", top.Name)

	popped := s.PopCall()
	require.Equal(t, "B", popped.Name)
	require.Equal(t, "A", s.Current().Name)
}

// TestCurrentSurvivesReallocation pushes past the backing array's
// capacity (forcing a reallocation) and checks that a pointer returned by
// Current() before the growth still reads its original frame data, while
// a fresh Current() call reports the new top of the stack.
func TestCurrentSurvivesReallocation(t *testing.T) {
	s := NewState(1)
	s.PushCall(ApiCallFrame{Func: 1, Name: "first"})
	first := s.Current()
	require.Equal(t, "first", first.Name)

	for i := 0; i < 64; i++ {
		s.PushCall(ApiCallFrame{Func: uint32(i + 2), Name: "filler"})
	}

	// first was captured before the growth and must still report the
	// original data; Current() now returns the last pushed frame.
	require.Equal(t, "first", first.Name)
	require.Equal(t, "filler", s.Current().Name)
}

func TestPopCallMutatesFrameIndependently(t *testing.T) {
	s := NewState(1)
	s.PushCall(ApiCallFrame{Func: 1})
	frame := s.Current()
	frame.RetArgs = append(frame.RetArgs, 99)

	popped := s.PopCall()
	require.Equal(t, []uint32{99}, popped.RetArgs)
	require.Nil(t, s.Current())
}
