package reader

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcorbin/qlogo/internal/datum"
)

type lineQueue struct{ lines []string }

func (q *lineQueue) NextLine() (string, bool) {
	if len(q.lines) == 0 {
		return "", false
	}
	l := q.lines[0]
	q.lines = q.lines[1:]
	return l, true
}

func words(l *datum.List) []string {
	var out []string
	l.Each(func(d datum.Datum) bool {
		out = append(out, d.(*datum.Word).Raw())
		return true
	})
	return out
}

func TestSimpleTokens(t *testing.T) {
	r := New(&lineQueue{lines: []string{"print sum 2 3"}})
	l, ok, err := r.ReadList()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"print", "sum", "2", "3"}, words(l))
}

func TestParensAreStandaloneTokens(t *testing.T) {
	r := New(&lineQueue{lines: []string{"(sum 1 2 3)"}})
	l, ok, err := r.ReadList()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"(", "sum", "1", "2", "3", ")"}, words(l))
}

func TestSublistNesting(t *testing.T) {
	r := New(&lineQueue{lines: []string{`make "x [a b [c d] e]`}})
	l, ok, err := r.ReadList()
	require.NoError(t, err)
	require.True(t, ok)
	toks := l.ToSlice()
	require.Len(t, toks, 3)
	sub, ok := toks[2].(*datum.List)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b", "c d", "e"}, wordsWithSublist(sub))
}

func wordsWithSublist(l *datum.List) []string {
	var out []string
	l.Each(func(d datum.Datum) bool {
		switch v := d.(type) {
		case *datum.Word:
			out = append(out, v.Raw())
		case *datum.List:
			var inner []string
			v.Each(func(d2 datum.Datum) bool {
				inner = append(inner, d2.(*datum.Word).Raw())
				return true
			})
			s := ""
			for i, w := range inner {
				if i > 0 {
					s += " "
				}
				s += w
			}
			out = append(out, s)
		}
		return true
	})
	return out
}

func TestUnclosedBracketPullsMoreLines(t *testing.T) {
	r := New(&lineQueue{lines: []string{"make \"x [1 2", "3]"}})
	l, ok, err := r.ReadList()
	require.NoError(t, err)
	require.True(t, ok)
	toks := l.ToSlice()
	sub := toks[2].(*datum.List)
	require.Equal(t, 3, sub.Count())
}

func TestArrayWithOrigin(t *testing.T) {
	r := New(&lineQueue{lines: []string{"{a b c}@0"}})
	l, ok, err := r.ReadList()
	require.NoError(t, err)
	require.True(t, ok)
	toks := l.ToSlice()
	arr := toks[0].(*datum.Array)
	require.Equal(t, 0, arr.Origin())
	v, ok := arr.Get(0)
	require.True(t, ok)
	require.Equal(t, "a", v.(*datum.Word).Raw())
}

func TestArrayDefaultOrigin(t *testing.T) {
	r := New(&lineQueue{lines: []string{"{a b c}"}})
	l, _, err := r.ReadList()
	require.NoError(t, err)
	arr := l.ToSlice()[0].(*datum.Array)
	require.Equal(t, 1, arr.Origin())
}

func TestBackslashEscapesSpace(t *testing.T) {
	r := New(&lineQueue{lines: []string{`make "x he\ llo`}})
	l, _, err := r.ReadList()
	require.NoError(t, err)
	toks := l.ToSlice()
	w := toks[2].(*datum.Word)
	require.Equal(t, "he llo", w.Print())
}

func TestBackslashLineContinuation(t *testing.T) {
	r := New(&lineQueue{lines: []string{`foo\`, `bar`}})
	l, _, err := r.ReadList()
	require.NoError(t, err)
	require.Equal(t, []string{"foobar"}, words(l))
}

func TestVerticalBarQuotingForcesForeverSpecial(t *testing.T) {
	r := New(&lineQueue{lines: []string{"|has bars|"}})
	l, _, err := r.ReadList()
	require.NoError(t, err)
	w := l.ToSlice()[0].(*datum.Word)
	require.True(t, w.ForeverSpecial())
	require.Equal(t, "has bars", w.Raw())
}

func TestCommentToEndOfLine(t *testing.T) {
	r := New(&lineQueue{lines: []string{"print 1 ; a comment [ [ ["}})
	l, _, err := r.ReadList()
	require.NoError(t, err)
	require.Equal(t, []string{"print", "1"}, words(l))
}

func TestShebangSkippedOnFirstLine(t *testing.T) {
	r := New(&lineQueue{lines: []string{"#!/usr/bin/env qlogo", "print 1"}})
	l, _, err := r.ReadList()
	require.NoError(t, err)
	require.Equal(t, []string{"print", "1"}, words(l))
}

func TestUnmatchedBracketIsError(t *testing.T) {
	r := New(&lineQueue{lines: []string{"[1 2"}})
	_, _, err := r.ReadList()
	require.Error(t, err)
}

func TestEmptyInputReturnsNotOK(t *testing.T) {
	r := New(&lineQueue{})
	_, ok, err := r.ReadList()
	require.NoError(t, err)
	require.False(t, ok)
}
