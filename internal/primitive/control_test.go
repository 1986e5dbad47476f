package primitive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcorbin/qlogo/internal/datum"
	"github.com/dcorbin/qlogo/internal/eval"
	"github.com/dcorbin/qlogo/internal/host"
	"github.com/dcorbin/qlogo/internal/registry"
)

func newTestEval() (*eval.Evaluator, *registry.Registry) {
	reg := registry.New()
	Register(reg, host.NewHeadless(bytes.NewReader(nil), &bytes.Buffer{}))
	return eval.New(reg), reg
}

func litD(d datum.Datum) *datum.Node { return &datum.Node{Op: datum.OpLiteral, Literal: d} }
func varD(name string) *datum.Node   { return &datum.Node{Op: datum.OpVarRef, Name: name} }
func callD(name string, children ...*datum.Node) *datum.Node {
	return &datum.Node{Op: datum.OpCall, Name: name, Children: children}
}
func num(n float64) *datum.Node { return litD(datum.NewNumberWord(n)) }

// TestRecursiveFactorial exercises IF/OUTPUT/STOP through a recursive
// user procedure: to fact :n if :n < 2 [output 1] output :n * fact :n - 1 end
func TestRecursiveFactorial(t *testing.T) {
	e, reg := newTestEval()
	reg.DefineProcedure(&datum.Procedure{
		Name:     "FACT",
		Required: []string{"N"}, MinArity: 1, DefaultArity: 1, MaxArity: 1,
		Body: []datum.Line{
			{Nodes: []*datum.Node{callD("IF", callD("<", varD("N"), num(2)),
				&datum.Node{Op: datum.OpLiteral, Literal: datum.FromSlice([]datum.Datum{datum.NewWord("OUTPUT"), datum.NewWord("1")})})}},
			{Nodes: []*datum.Node{callD("OUTPUT", callD("*", varD("N"), callD("FACT", callD("-", varD("N"), num(1)))))}},
		},
	})
	v, err := e.Eval(callD("FACT", num(5)))
	require.NoError(t, err)
	n, _ := v.(*datum.Word).AsNumber()
	require.Equal(t, 120.0, n)
}

func quoted(name string) *datum.Word { return datum.NewWord(`"` + name) }

func TestCatchThrow(t *testing.T) {
	e, _ := newTestEval()
	body := datum.FromSlice([]datum.Datum{
		datum.NewWord("CATCH"), quoted("OOPS"),
		datum.FromSlice([]datum.Datum{datum.NewWord("THROW"), quoted("OOPS"), datum.NewWord("42")}),
	})
	v, err := e.RunList(body)
	require.NoError(t, err)
	n, _ := v.(*datum.Word).AsNumber()
	require.Equal(t, 42.0, n)
}

func TestThrowUncaughtByMismatchedTag(t *testing.T) {
	e, _ := newTestEval()
	body := datum.FromSlice([]datum.Datum{
		datum.NewWord("CATCH"), quoted("WRONG"),
		datum.FromSlice([]datum.Datum{datum.NewWord("THROW"), quoted("OOPS"), datum.NewWord("42")}),
	})
	_, err := e.RunList(body)
	require.Error(t, err)
	fc, ok := err.(*datum.FlowControl)
	require.True(t, ok)
	require.True(t, fc.MatchesCatch("OOPS"))
}

func TestGotoLoopsUntilTag(t *testing.T) {
	e, reg := newTestEval()
	reg.DefineProcedure(&datum.Procedure{
		Name: "COUNTER",
		Body: []datum.Line{
			{Nodes: []*datum.Node{callD("MAKE", litD(datum.NewWord("I")), num(0))}},
			{Nodes: []*datum.Node{callD("TAG", litD(datum.NewWord("TOP")))}},
			{Nodes: []*datum.Node{callD("MAKE", litD(datum.NewWord("I")), callD("+", varD("I"), num(1)))}},
			{Nodes: []*datum.Node{callD("IF", callD("<", varD("I"), num(3)), &datum.Node{Op: datum.OpLiteral,
				Literal: datum.FromSlice([]datum.Datum{datum.NewWord("GOTO"), quoted("TOP")})})}},
			{Nodes: []*datum.Node{callD("OUTPUT", varD("I"))}},
		},
		Tags: map[string]int{"TOP": 1},
	})
	v, err := e.Eval(callD("COUNTER"))
	require.NoError(t, err)
	n, _ := v.(*datum.Word).AsNumber()
	require.Equal(t, 3.0, n)
}

func TestTestIftrueIffalse(t *testing.T) {
	e, _ := newTestEval()
	body := datum.FromSlice([]datum.Datum{
		datum.NewWord("TEST"), quoted("TRUE"),
		datum.NewWord("IFTRUE"), datum.FromSlice([]datum.Datum{datum.NewWord("OUTPUT"), datum.NewWord("1")}),
		datum.NewWord("IFFALSE"), datum.FromSlice([]datum.Datum{datum.NewWord("OUTPUT"), datum.NewWord("2")}),
	})
	v, err := e.RunList(body)
	require.NoError(t, err)
	n, _ := v.(*datum.Word).AsNumber()
	require.Equal(t, 1.0, n)
}

func TestRepeatAccumulates(t *testing.T) {
	e, _ := newTestEval()
	body := datum.FromSlice([]datum.Datum{
		datum.NewWord("MAKE"), quoted("TOTAL"), datum.NewWord("0"),
		datum.NewWord("REPEAT"), datum.NewWord("4"),
		datum.FromSlice([]datum.Datum{
			datum.NewWord("MAKE"), quoted("TOTAL"), datum.NewWord("SUM"), datum.NewWord(":TOTAL"), datum.NewWord("1"),
		}),
	})
	_, err := e.RunList(body)
	require.NoError(t, err)
	v, ok := e.GetVar("TOTAL")
	require.True(t, ok)
	n, _ := v.(*datum.Word).AsNumber()
	require.Equal(t, 4.0, n)
}
