package repl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcorbin/qlogo/internal/eval"
	"github.com/dcorbin/qlogo/internal/host"
	"github.com/dcorbin/qlogo/internal/primitive"
	"github.com/dcorbin/qlogo/internal/registry"
	"github.com/dcorbin/qlogo/internal/streams"
)

// newSession wires one registry/evaluator/REPL over a headless host
// reading in and collecting everything printed, the same construction
// cmd/qlogo performs, minus library/GUI wiring.
func newSession(in string) (*REPL, *strings.Builder) {
	var out strings.Builder
	h := host.NewHeadless(strings.NewReader(in), &out)
	reg := registry.New()
	primitive.Register(reg, h)
	ev := eval.New(reg, eval.WithStreams(streams.NewManager(host.AsConsole(h))))
	return New(reg, ev, h), &out
}

func TestRunPrintsOutputAndReachesEOF(t *testing.T) {
	r, out := newSession("PRINT 1 + 2\n")
	require.NoError(t, r.Run())
	require.Contains(t, out.String(), "3")
}

func TestRunDefinesAndCallsProcedure(t *testing.T) {
	r, out := newSession("TO DOUBLE :X\nOUTPUT :X + :X\nEND\nPRINT DOUBLE 21\n")
	require.NoError(t, r.Run())
	require.Contains(t, out.String(), "42")
}

func TestUnhandledOutputIsReported(t *testing.T) {
	r, out := newSession("1 + 2\n")
	require.NoError(t, r.Run())
	require.Contains(t, out.String(), "don't say")
}

func TestToInsideProcedureIsRejected(t *testing.T) {
	r, out := newSession("TO A\nTO B\nEND\nEND\n")
	require.NoError(t, r.Run())
	require.Contains(t, out.String(), "used inside a procedure")
}

func TestPauseContinueRoundTrip(t *testing.T) {
	r, out := newSession("PRINT PAUSE\nCONTINUE 99\n")
	require.NoError(t, r.Run())
	require.Contains(t, out.String(), "99")
}

func TestCompileProcedureInstallsDefinition(t *testing.T) {
	reg := registry.New()
	h := host.NewHeadless(nil, &strings.Builder{})
	primitive.Register(reg, h)
	err := CompileProcedure(reg, "TO SQUARE :X\nOUTPUT :X * :X\nEND")
	require.NoError(t, err)
	proc, ok := reg.Procedure("SQUARE")
	require.True(t, ok)
	require.Equal(t, 1, proc.MinArity)
}
