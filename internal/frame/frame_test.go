package frame

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcorbin/qlogo/internal/datum"
)

func TestMakeAtTopLevelIsGlobal(t *testing.T) {
	s := NewStack()
	s.Set("x", datum.NewWord("1"))
	v, ok := s.Get("x")
	require.True(t, ok)
	require.Equal(t, "1", v.(*datum.Word).Raw())
}

func TestLocalShadowsGlobalWithinFrame(t *testing.T) {
	s := NewStack()
	s.Set("x", datum.NewWord("global"))
	s.Push("foo", nil)
	s.MakeLocal("x")
	s.Set("x", datum.NewWord("local"))
	v, _ := s.Get("x")
	require.Equal(t, "local", v.(*datum.Word).Raw())
	s.Pop()
	v, _ = s.Get("x")
	require.Equal(t, "global", v.(*datum.Word).Raw())
}

func TestLocalMakeBindsImmediately(t *testing.T) {
	s := NewStack()
	s.Push("foo", nil)
	s.LocalMake("y", datum.NewWord("v"))
	v, ok := s.Get("y")
	require.True(t, ok)
	require.Equal(t, "v", v.(*datum.Word).Raw())
	s.Pop()
	_, ok = s.Get("y")
	require.False(t, ok, "local binding must not leak after the frame pops")
}

func TestNestedCallInheritsCallersLocal(t *testing.T) {
	// Logo's variable scope is dynamic: a LOCAL declared by a caller
	// stays visible to anything it calls, unless the callee shadows
	// it with a LOCAL of its own.
	s := NewStack()
	s.Push("outer", nil)
	s.LocalMake("z", datum.NewWord("outer-z"))
	s.Push("inner", nil)
	v, ok := s.Get("z")
	require.True(t, ok)
	require.Equal(t, "outer-z", v.(*datum.Word).Raw())

	s.MakeLocal("z")
	s.Set("z", datum.NewWord("inner-z"))
	v, _ = s.Get("z")
	require.Equal(t, "inner-z", v.(*datum.Word).Raw())

	s.Pop()
	v, _ = s.Get("z")
	require.Equal(t, "outer-z", v.(*datum.Word).Raw())
	s.Pop()
}

func TestTestResultScopedToFrame(t *testing.T) {
	s := NewStack()
	s.Push("p", nil)
	f := s.Current()
	f.Test(true)
	b, ok := f.Tested()
	require.True(t, ok)
	require.True(t, b)
	s.Pop()
}

func TestDepthTracksPushPop(t *testing.T) {
	s := NewStack()
	require.Equal(t, 0, s.Depth())
	s.Push("a", nil)
	s.Push("b", nil)
	require.Equal(t, 2, s.Depth())
	s.Pop()
	require.Equal(t, 1, s.Depth())
}
