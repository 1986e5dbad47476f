package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcorbin/qlogo/internal/datum"
	"github.com/dcorbin/qlogo/internal/registry"
)

func newTestEvaluator() (*Evaluator, *registry.Registry) {
	reg := registry.New()
	reg.DefinePrimitive("sum", registry.Arity{2, 2, -1}, func(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
		total := 0.0
		for _, a := range args {
			n, _ := a.(*datum.Word).AsNumber()
			total += n
		}
		return datum.NewNumberWord(total), nil
	})
	reg.DefinePrimitive("output", registry.Arity{1, 1, 1}, func(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
		return nil, datum.NewReturn(nil, args[0])
	})
	reg.DefinePrimitive("stop", registry.Arity{0, 0, 0}, func(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
		return nil, datum.NewStop(nil)
	})
	reg.DefinePrimitive("throw", registry.Arity{1, 1, 1}, func(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
		return nil, datum.NewThrow(nil, args[0].(*datum.Word).Raw(), datum.Nothing())
	})
	return New(reg), reg
}

func lit(d datum.Datum) *datum.Node { return &datum.Node{Op: datum.OpLiteral, Literal: d} }

func call(name string, children ...*datum.Node) *datum.Node {
	return &datum.Node{Op: datum.OpCall, Name: name, Children: children}
}

func TestEvalLiteralAndCall(t *testing.T) {
	e, _ := newTestEvaluator()
	n := call("sum", lit(datum.NewWord("2")), lit(datum.NewWord("3")))
	v, err := e.Eval(n)
	require.NoError(t, err)
	num, _ := v.(*datum.Word).AsNumber()
	require.Equal(t, 5.0, num)
}

func TestUserProcedureOutput(t *testing.T) {
	e, reg := newTestEvaluator()
	body := []datum.Line{
		{Nodes: []*datum.Node{call("output", call("sum", &datum.Node{Op: datum.OpVarRef, Name: "x"}, lit(datum.NewWord("1"))))}},
	}
	reg.DefineProcedure(&datum.Procedure{
		Name: "succ", Required: []string{"x"}, MinArity: 1, DefaultArity: 1, MaxArity: 1, Body: body,
	})
	v, err := e.Eval(call("succ", lit(datum.NewWord("4"))))
	require.NoError(t, err)
	n, _ := v.(*datum.Word).AsNumber()
	require.Equal(t, 5.0, n)
}

func TestStopEndsBodyWithNothing(t *testing.T) {
	e, reg := newTestEvaluator()
	reg.DefineProcedure(&datum.Procedure{
		Name: "noop",
		Body: []datum.Line{{Nodes: []*datum.Node{call("stop")}}},
	})
	v, err := e.Eval(call("noop"))
	require.NoError(t, err)
	require.True(t, datum.IsNothing(v))
}

func TestGotoJumpsToTaggedLine(t *testing.T) {
	e, reg := newTestEvaluator()
	reg.DefinePrimitive("goto", registry.Arity{1, 1, 1}, func(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
		return nil, datum.NewGoto(nil, args[0].(*datum.Word).Raw())
	})
	reg.DefineProcedure(&datum.Procedure{
		Name: "loopy",
		Body: []datum.Line{
			{Nodes: []*datum.Node{call("goto", lit(datum.NewWord("SKIP")))}},
			{Nodes: []*datum.Node{call("output", lit(datum.NewWord("ok")))}, Tag: "SKIP"},
		},
		Tags: map[string]int{"SKIP": 1},
	})
	v, err := e.Eval(call("loopy"))
	require.NoError(t, err)
	require.Equal(t, "ok", v.(*datum.Word).Raw())
}

func TestUnhandledThrowPropagatesAsError(t *testing.T) {
	e, _ := newTestEvaluator()
	_, err := e.Eval(call("throw", lit(datum.NewWord("OOPS"))))
	require.Error(t, err)
	fc, ok := err.(*datum.FlowControl)
	require.True(t, ok)
	require.True(t, fc.MatchesCatch("OOPS"))
}

func TestArgThatDoesntOutputIsError(t *testing.T) {
	e, reg := newTestEvaluator()
	reg.DefineProcedure(&datum.Procedure{Name: "silent", Body: []datum.Line{{Nodes: []*datum.Node{call("stop")}}}})
	_, err := e.Eval(call("sum", call("silent"), lit(datum.NewWord("1"))))
	require.Error(t, err)
}

func TestStackOverflowOnDeepRecursion(t *testing.T) {
	e, reg := newTestEvaluator()
	reg.DefineProcedure(&datum.Procedure{
		Name: "loop",
		Body: []datum.Line{{Nodes: []*datum.Node{call("loop")}}},
	})
	_, err := e.Eval(call("loop"))
	require.Error(t, err)
	fc, ok := err.(*datum.FlowControl)
	require.True(t, ok)
	require.Equal(t, datum.ErrStackOverflow, fc.Code)
}

func TestRunListAbsorbsOutput(t *testing.T) {
	e, _ := newTestEvaluator()
	l := datum.FromSlice([]datum.Datum{datum.NewWord("output"), datum.NewWord("9")})
	v, err := e.RunList(l)
	require.NoError(t, err)
	n, _ := v.(*datum.Word).AsNumber()
	require.Equal(t, 9.0, n)
}

func TestVariableScoping(t *testing.T) {
	e, _ := newTestEvaluator()
	e.SetVar("x", datum.NewWord("1"))
	v, ok := e.GetVar("x")
	require.True(t, ok)
	require.Equal(t, "1", v.(*datum.Word).Raw())
}
