package datum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWordProjections(t *testing.T) {
	w := NewWord(`he\ llo`)
	require.Equal(t, `he\ llo`, w.Raw())
	require.Equal(t, "he llo", w.Print())
	require.False(t, w.ForeverSpecial())
}

func TestWordForeverSpecial(t *testing.T) {
	w := NewForeverSpecialWord("has | bars |")
	require.True(t, w.ForeverSpecial())
	require.Equal(t, w.Raw(), w.Print(), "forever-special words print their raw form unchanged")
}

func TestWordAsNumber(t *testing.T) {
	n, ok := NewWord("42.5").AsNumber()
	require.True(t, ok)
	require.Equal(t, 42.5, n)

	_, ok = NewWord("hello").AsNumber()
	require.False(t, ok)

	_, ok = NewWord("0").AsNumber()
	require.True(t, ok, "0 must be distinguishable from not-a-number, not merely falsy")
}

func TestWordAsBool(t *testing.T) {
	b, ok := NewWord("true").AsBool()
	require.True(t, ok)
	require.True(t, b)

	b, ok = NewWord("FALSE").AsBool()
	require.True(t, ok)
	require.False(t, b)

	_, ok = NewWord("maybe").AsBool()
	require.False(t, ok)
}

func TestWordKeyCaseFold(t *testing.T) {
	old := CaseIgnoreDP
	defer func() { CaseIgnoreDP = old }()

	CaseIgnoreDP = true
	require.Equal(t, "HELLO", NewWord("Hello").Key())

	CaseIgnoreDP = false
	require.Equal(t, "Hello", NewWord("Hello").Key())
}

func TestWordEqualAndConcat(t *testing.T) {
	a := NewWord("Cat")
	b := NewWord("cat")
	require.True(t, a.Equal(b, true))
	require.False(t, a.Equal(b, false))

	c := a.Concat(NewWord("fish"))
	require.Equal(t, "Catfish", c.Print())
}

func TestNewNumberWordRoundTrips(t *testing.T) {
	w := NewNumberWord(5)
	n, ok := w.AsNumber()
	require.True(t, ok)
	require.Equal(t, 5.0, n)
	require.Equal(t, "5", w.Print())
}
