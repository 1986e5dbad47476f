package primitive

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcorbin/qlogo/internal/datum"
)

func TestWordSentenceList(t *testing.T) {
	e, _ := newTestEval()

	v, err := e.Eval(callD("WORD", litD(datum.NewWord("foo")), litD(datum.NewWord("bar"))))
	require.NoError(t, err)
	require.Equal(t, "foobar", v.(*datum.Word).Print())

	v, err = e.Eval(callD("SENTENCE",
		litD(datum.FromSlice([]datum.Datum{datum.NewWord("a"), datum.NewWord("b")})),
		litD(datum.NewWord("c"))))
	require.NoError(t, err)
	lst := v.(*datum.List)
	require.Equal(t, 3, lst.Count())

	v, err = e.Eval(callD("LIST", litD(datum.NewWord("x")), litD(datum.NewWord("y"))))
	require.NoError(t, err)
	lst = v.(*datum.List)
	require.Equal(t, 2, lst.Count())
}

func TestFirstLastButfirstButlast(t *testing.T) {
	e, _ := newTestEval()
	w := litD(datum.NewWord("hello"))

	v, err := e.Eval(callD("FIRST", w))
	require.NoError(t, err)
	require.Equal(t, "h", v.(*datum.Word).Print())

	v, err = e.Eval(callD("LAST", w))
	require.NoError(t, err)
	require.Equal(t, "o", v.(*datum.Word).Print())

	v, err = e.Eval(callD("BUTFIRST", w))
	require.NoError(t, err)
	require.Equal(t, "ello", v.(*datum.Word).Print())

	v, err = e.Eval(callD("BUTLAST", w))
	require.NoError(t, err)
	require.Equal(t, "hell", v.(*datum.Word).Print())
}

func TestFirstOnEmptyWordErrors(t *testing.T) {
	e, _ := newTestEval()
	_, err := e.Eval(callD("FIRST", litD(datum.NewWord(""))))
	require.Error(t, err)
}

func TestItemOnListAndArray(t *testing.T) {
	e, _ := newTestEval()
	l := litD(datum.FromSlice([]datum.Datum{datum.NewWord("a"), datum.NewWord("b"), datum.NewWord("c")}))
	v, err := e.Eval(callD("ITEM", num(2), l))
	require.NoError(t, err)
	require.Equal(t, "b", v.(*datum.Word).Print())

	arr, err := e.Eval(callD("ARRAY", num(3), num(1)))
	require.NoError(t, err)
	_, err = e.Eval(callD("SETITEM", num(1), litD(arr), litD(datum.NewWord("first"))))
	require.NoError(t, err)
	v, err = e.Eval(callD("ITEM", num(1), litD(arr)))
	require.NoError(t, err)
	require.Equal(t, "first", v.(*datum.Word).Print())
}

func TestSetitemRejectsCycle(t *testing.T) {
	e, _ := newTestEval()
	inner := datum.FromSlice([]datum.Datum{datum.NewWord("a")})
	outer := datum.FromSlice([]datum.Datum{inner})
	_, err := e.Eval(callD("SETITEM", num(1), litD(inner), litD(outer)))
	require.Error(t, err)
}

func TestEmptypWordpListp(t *testing.T) {
	e, _ := newTestEval()
	v, err := e.Eval(callD("EMPTYP", litD(datum.EmptyList())))
	require.NoError(t, err)
	require.Equal(t, "TRUE", v.(*datum.Word).Print())

	v, err = e.Eval(callD("WORDP", litD(datum.NewWord("hi"))))
	require.NoError(t, err)
	require.Equal(t, "TRUE", v.(*datum.Word).Print())

	v, err = e.Eval(callD("LISTP", litD(datum.NewWord("hi"))))
	require.NoError(t, err)
	require.Equal(t, "FALSE", v.(*datum.Word).Print())
}
