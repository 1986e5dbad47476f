package treebuild

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcorbin/qlogo/internal/datum"
)

type fakeResolver map[string]Arity

func (f fakeResolver) Lookup(name string) (Arity, bool) {
	a, ok := f[name]
	return a, ok
}

var testResolver = fakeResolver{
	"print": {1, 1, 1},
	"sum":   {0, 2, -1},
	"fd":    {1, 1, 1},
	"rt":    {1, 1, 1},
	"+":     {2, 2, 2},
	"-":     {2, 2, 2},
	"--":    {2, 2, 2},
	"*":     {2, 2, 2},
	"=":     {2, 2, 2},
	"to":    {-1, -1, -1},
}

func tok(ss ...string) []datum.Datum {
	out := make([]datum.Datum, len(ss))
	for i, s := range ss {
		out[i] = datum.NewWord(s)
	}
	return out
}

func TestSimpleCommandWithArgs(t *testing.T) {
	roots, err := Build(tok("print", "sum", "2", "3"), testResolver)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	n := roots[0]
	require.Equal(t, "print", n.Name)
	require.Len(t, n.Children, 1)
	inner := n.Children[0]
	require.Equal(t, "sum", inner.Name)
	require.Len(t, inner.Children, 2)
}

func TestTwoStatementsOnOneLine(t *testing.T) {
	roots, err := Build(tok("fd", "100", "rt", "90"), testResolver)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	require.Equal(t, "fd", roots[0].Name)
	require.Equal(t, "rt", roots[1].Name)
}

func TestParenMakesVariadicCall(t *testing.T) {
	roots, err := Build(tok("print", "(", "sum", "1", "2", "3", "4", ")"), testResolver)
	require.NoError(t, err)
	call := roots[0].Children[0]
	require.Equal(t, datum.OpParen, call.Op)
	sum := call.Children[0]
	require.Equal(t, "sum", sum.Name)
	require.Len(t, sum.Children, 4)
}

func TestPlainGroupingParens(t *testing.T) {
	roots, err := Build(tok("print", "(", "2", "+", "3", ")"), testResolver)
	require.NoError(t, err)
	grp := roots[0].Children[0]
	require.Equal(t, datum.OpParen, grp.Op)
	plus := grp.Children[0]
	require.Equal(t, "+", plus.Name)
}

func TestInfixPrecedence(t *testing.T) {
	roots, err := Build(tok("print", "2", "+", "3", "*", "4"), testResolver)
	require.NoError(t, err)
	plus := roots[0].Children[0]
	require.Equal(t, "+", plus.Name)
	require.Equal(t, "3", plus.Children[1].Children[0].Literal.(*datum.Word).Raw())
	mulNode := plus.Children[1]
	require.Equal(t, "*", mulNode.Name)
}

func TestMinusBindsTighterThanMul(t *testing.T) {
	// "2 * 3 -- 4" must parse as "2 * (3 -- 4)", not "(2 * 3) -- 4".
	roots, err := Build(tok("print", "2", "*", "3", "--", "4"), testResolver)
	require.NoError(t, err)
	mulNode := roots[0].Children[0]
	require.Equal(t, "*", mulNode.Name)
	require.Equal(t, "2", mulNode.Children[0].Literal.(*datum.Word).Raw())
	minusNode := mulNode.Children[1]
	require.Equal(t, "--", minusNode.Name)
	require.Equal(t, "3", minusNode.Children[0].Literal.(*datum.Word).Raw())
	require.Equal(t, "4", minusNode.Children[1].Literal.(*datum.Word).Raw())
}

func TestComparisonBindsLooserThanSum(t *testing.T) {
	// "1 + 2 = 3" must parse as "(1 + 2) = 3", not "1 + (2 = 3)".
	roots, err := Build(tok("print", "1", "+", "2", "=", "3"), testResolver)
	require.NoError(t, err)
	eqNode := roots[0].Children[0]
	require.Equal(t, "=", eqNode.Name)
	plusNode := eqNode.Children[0]
	require.Equal(t, "+", plusNode.Name)
	require.Equal(t, "1", plusNode.Children[0].Literal.(*datum.Word).Raw())
	require.Equal(t, "2", plusNode.Children[1].Literal.(*datum.Word).Raw())
	require.Equal(t, "3", eqNode.Children[1].Literal.(*datum.Word).Raw())
}

func TestVariableReference(t *testing.T) {
	roots, err := Build(tok("print", ":x"), testResolver)
	require.NoError(t, err)
	ref := roots[0].Children[0]
	require.Equal(t, datum.OpVarRef, ref.Op)
	require.Equal(t, "x", ref.Name)
}

func TestQuotedLiteral(t *testing.T) {
	roots, err := Build(tok("print", `"hello`), testResolver)
	require.NoError(t, err)
	lit := roots[0].Children[0]
	require.Equal(t, datum.OpLiteral, lit.Op)
	require.Equal(t, "hello", lit.Literal.(*datum.Word).Raw())
}

func TestUnknownCommandIsError(t *testing.T) {
	_, err := Build(tok("frobnicate", "1"), testResolver)
	require.Error(t, err)
}

func TestNotEnoughInputsIsError(t *testing.T) {
	_, err := Build(tok("print"), testResolver)
	require.Error(t, err)
}

func TestSpecialFormConsumesRestOfLine(t *testing.T) {
	roots, err := Build(tok("to", "square", ":x"), testResolver)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.Equal(t, "to", roots[0].Name)
	require.Len(t, roots[0].Children, 2)
}

func TestListLiteralPassesThrough(t *testing.T) {
	l := datum.FromSlice([]datum.Datum{datum.NewWord("a"), datum.NewWord("b")})
	roots, err := Build([]datum.Datum{datum.NewWord("print"), l}, testResolver)
	require.NoError(t, err)
	lit := roots[0].Children[0]
	require.Same(t, datum.Datum(l), lit.Literal)
}
