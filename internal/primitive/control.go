package primitive

import (
	"github.com/dcorbin/qlogo/internal/datum"
	"github.com/dcorbin/qlogo/internal/host"
	"github.com/dcorbin/qlogo/internal/registry"
)

// registerControl installs the control-flow primitives of spec 2.8/
//4.8: IF/IFELSE/REPEAT/FOREVER run a bracketed instruction list
// through ctx.RunList; STOP/OUTPUT/THROW/GOTO build the corresponding
// *datum.FlowControl and return it as an error for the evaluator to
// unwind on; CATCH runs its body and intercepts a matching error.
func registerControl(reg *registry.Registry, h host.Host) {
	define(reg, registry.Arity{2, 2, 2}, ifCmd, "IF")
	define(reg, registry.Arity{3, 3, 3}, ifelseCmd, "IFELSE")
	define(reg, registry.Arity{2, 2, 2}, repeatCmd, "REPEAT")
	define(reg, registry.Arity{1, 1, 1}, foreverCmd, "FOREVER")
	define(reg, registry.Arity{0, 0, -1}, stopCmd, "STOP")
	define(reg, registry.Arity{1, 1, 1}, outputCmd, "OUTPUT", "OP")
	define(reg, registry.Arity{2, 2, 2}, catchCmd, "CATCH")
	define(reg, registry.Arity{1, 2, 2}, throwCmd, "THROW")
	define(reg, registry.Arity{1, 1, 1}, tagCmd, "TAG")
	define(reg, registry.Arity{1, 1, 1}, gotoCmd, "GOTO")
	define(reg, registry.Arity{1, 1, 1}, runCmd, "RUN")
	define(reg, registry.Arity{1, 1, 1}, runresultCmd, "RUNRESULT")
	define(reg, registry.Arity{1, 1, 1}, testCmd, "TEST")
	define(reg, registry.Arity{1, 1, 1}, iftrueCmd, "IFTRUE", "IFT")
	define(reg, registry.Arity{1, 1, 1}, iffalseCmd, "IFFALSE", "IFF")
	define(reg, registry.Arity{1, 1, 1}, waitCmd(h), "WAIT")
}

func ifCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	cond, err := asBool(args[0], "IF")
	if err != nil {
		return nil, err
	}
	if !cond {
		return datum.Nothing(), nil
	}
	body, err := asList(args[1], "IF")
	if err != nil {
		return nil, err
	}
	return runBracketed(ctx, body)
}

func ifelseCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	cond, err := asBool(args[0], "IFELSE")
	if err != nil {
		return nil, err
	}
	branch := args[1]
	if !cond {
		branch = args[2]
	}
	body, err := asList(branch, "IFELSE")
	if err != nil {
		return nil, err
	}
	return runBracketed(ctx, body)
}

func repeatCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	n, err := asNumber(args[0], "REPEAT")
	if err != nil {
		return nil, err
	}
	body, err := asList(args[1], "REPEAT")
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(n); i++ {
		v, err := runBracketed(ctx, body)
		if err != nil {
			return nil, err
		}
		if !datum.IsNothing(v) {
			return v, nil
		}
	}
	return datum.Nothing(), nil
}

func foreverCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	body, err := asList(args[0], "FOREVER")
	if err != nil {
		return nil, err
	}
	for {
		v, err := runBracketed(ctx, body)
		if err != nil {
			return nil, err
		}
		if !datum.IsNothing(v) {
			return v, nil
		}
	}
}

// runBracketed runs body and maps a RunList-absorbed OUTPUT/STOP into
// a *datum.FlowControl the caller (IF/REPEAT/FOREVER) re-raises, so
// `if cond [stop]` inside a user procedure still actually stops it.
func runBracketed(ctx registry.Context, body *datum.List) (datum.Datum, error) {
	v, err := ctx.RunList(body)
	if err != nil {
		return nil, err
	}
	if datum.IsNothing(v) {
		return datum.Nothing(), nil
	}
	return nil, datum.NewReturn(nil, v)
}

func stopCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	return nil, datum.NewStop(nil)
}

func outputCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	return nil, datum.NewReturn(nil, args[0])
}

func catchCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	tagWord, err := asWord(args[0], "CATCH")
	if err != nil {
		return nil, err
	}
	body, err := asList(args[1], "CATCH")
	if err != nil {
		return nil, err
	}
	v, err := ctx.RunList(body)
	if err == nil {
		return v, nil
	}
	fc, ok := err.(*datum.FlowControl)
	if !ok || !fc.MatchesCatch(tagWord.Key()) {
		return nil, err
	}
	if fc.FKind == datum.FlowError && fc.Code == datum.ErrCustomThrow {
		if fc.Output != nil {
			return fc.Output, nil
		}
		return datum.Nothing(), nil
	}
	return datum.Nothing(), nil
}

func throwCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	tagWord, err := asWord(args[0], "THROW")
	if err != nil {
		return nil, err
	}
	var output datum.Datum = datum.Nothing()
	if len(args) == 2 {
		output = args[1]
	}
	return nil, datum.NewThrow(nil, tagWord.Key(), output)
}

func tagCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	// TAG's effect (registering the label's line index) is applied
	// when a procedure body is built, not at execution time; running
	// into one directly is a no-op.
	return datum.Nothing(), nil
}

func gotoCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	w, err := asWord(args[0], "GOTO")
	if err != nil {
		return nil, err
	}
	return nil, datum.NewGoto(nil, w.Key())
}

func runCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	body, err := asList(args[0], "RUN")
	if err != nil {
		return nil, err
	}
	return ctx.RunList(body)
}

func runresultCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	body, err := asList(args[0], "RUNRESULT")
	if err != nil {
		return nil, err
	}
	v, err := ctx.RunList(body)
	if err != nil {
		return nil, err
	}
	if datum.IsNothing(v) {
		return datum.EmptyList(), nil
	}
	return datum.FromSlice([]datum.Datum{v}), nil
}

func testCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	b, err := asBool(args[0], "TEST")
	if err != nil {
		return nil, err
	}
	ctx.Test(b)
	return datum.Nothing(), nil
}

func iftrueCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	b, ok := ctx.TestResult()
	if !ok {
		return nil, &datum.FlowControl{FKind: datum.FlowError, Code: datum.ErrNoTest, Message: "IFTRUE used without a matching TEST", ErrTag: datum.TagError}
	}
	if !b {
		return datum.Nothing(), nil
	}
	body, err := asList(args[0], "IFTRUE")
	if err != nil {
		return nil, err
	}
	return runBracketed(ctx, body)
}

func iffalseCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	b, ok := ctx.TestResult()
	if !ok {
		return nil, &datum.FlowControl{FKind: datum.FlowError, Code: datum.ErrNoTest, Message: "IFFALSE used without a matching TEST", ErrTag: datum.TagError}
	}
	if b {
		return datum.Nothing(), nil
	}
	body, err := asList(args[0], "IFFALSE")
	if err != nil {
		return nil, err
	}
	return runBracketed(ctx, body)
}

func waitCmd(h host.Host) registry.PrimitiveFunc {
	return func(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
		n, err := asNumber(args[0], "WAIT")
		if err != nil {
			return nil, err
		}
		h.MWait(int(n * 1000 / 60))
		return datum.Nothing(), nil
	}
}
