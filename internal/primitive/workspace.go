package primitive

import (
	"github.com/dcorbin/qlogo/internal/datum"
	"github.com/dcorbin/qlogo/internal/registry"
)

// registerWorkspace installs the workspace-management primitives of
// spec 2.8/4.6: ERASE/ERALL/ERN remove user procedures, COPYDEF clones
// a definition under a new name, BURY/UNBURY hide names from ERALL/
// POALL-style listings, TRACE/UNTRACE add and remove names in the
// registry's traced set (which the evaluator does not consult, so
// tracing a name changes nothing it prints), and PROCEDUREP/PRIMITIVEP/DEFINEDP answer
// introspection questions the tree builder itself needs none of.
func registerWorkspace(reg *registry.Registry) {
	define(reg, registry.Arity{1, 1, -1}, eraseCmd, "ERASE", "ER")
	define(reg, registry.Arity{0, 0, 0}, erallCmd, "ERALL")
	define(reg, registry.Arity{1, 1, 1}, ernCmd, "ERN")
	define(reg, registry.Arity{2, 2, 2}, copydefCmd, "COPYDEF")
	define(reg, registry.Arity{1, 1, -1}, buryCmd, "BURY")
	define(reg, registry.Arity{1, 1, -1}, unburyCmd, "UNBURY")
	define(reg, registry.Arity{1, 1, -1}, traceCmd, "TRACE")
	define(reg, registry.Arity{1, 1, -1}, untraceCmd, "UNTRACE")
	define(reg, registry.Arity{1, 1, 1}, procedurepCmd, "PROCEDUREP", "PROCEDURE?")
	define(reg, registry.Arity{1, 1, 1}, primitivepCmd, "PRIMITIVEP", "PRIMITIVE?")
	define(reg, registry.Arity{1, 1, 1}, definedpCmd, "DEFINEDP", "DEFINED?")
}

func eraseCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	reg := ctx.Registry()
	for _, a := range args {
		w, err := asWord(a, "ERASE")
		if err != nil {
			return nil, err
		}
		if err := reg.Erase(w.Key()); err != nil {
			return nil, &datum.FlowControl{FKind: datum.FlowError, Code: datum.ErrNoHow, Message: err.Error(), ErrTag: datum.TagError}
		}
	}
	return datum.Nothing(), nil
}

func erallCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	reg := ctx.Registry()
	for _, name := range reg.ErnAll() {
		_ = reg.Erase(name)
	}
	return datum.Nothing(), nil
}

func ernCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	names, err := asList(args[0], "ERN")
	if err != nil {
		return nil, err
	}
	reg := ctx.Registry()
	var outErr error
	names.Each(func(d datum.Datum) bool {
		w, werr := asWord(d, "ERN")
		if werr != nil {
			outErr = werr
			return false
		}
		_ = reg.Erase(w.Key())
		return true
	})
	if outErr != nil {
		return nil, outErr
	}
	return datum.Nothing(), nil
}

func copydefCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	target, err := asWord(args[0], "COPYDEF")
	if err != nil {
		return nil, err
	}
	source, err := asWord(args[1], "COPYDEF")
	if err != nil {
		return nil, err
	}
	if err := ctx.Registry().Copydef(target.Key(), source.Key()); err != nil {
		return nil, &datum.FlowControl{FKind: datum.FlowError, Code: datum.ErrNoHow, Message: err.Error(), ErrTag: datum.TagError}
	}
	return datum.Nothing(), nil
}

func buryCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	if err := eachNameArg(args, "BURY", ctx.Registry().Bury); err != nil {
		return nil, err
	}
	return datum.Nothing(), nil
}

func unburyCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	if err := eachNameArg(args, "UNBURY", ctx.Registry().Unbury); err != nil {
		return nil, err
	}
	return datum.Nothing(), nil
}

func traceCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	if err := eachNameArg(args, "TRACE", ctx.Registry().Trace); err != nil {
		return nil, err
	}
	return datum.Nothing(), nil
}

func untraceCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	if err := eachNameArg(args, "UNTRACE", ctx.Registry().Untrace); err != nil {
		return nil, err
	}
	return datum.Nothing(), nil
}

func procedurepCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	w, err := asWord(args[0], "PROCEDUREP")
	if err != nil {
		return nil, err
	}
	_, isProc := ctx.Registry().Procedure(w.Key())
	_, _, isPrim := ctx.Registry().Primitive(w.Key())
	return boolWord(isProc || isPrim), nil
}

func primitivepCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	w, err := asWord(args[0], "PRIMITIVEP")
	if err != nil {
		return nil, err
	}
	_, _, isPrim := ctx.Registry().Primitive(w.Key())
	return boolWord(isPrim), nil
}

func definedpCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	w, err := asWord(args[0], "DEFINEDP")
	if err != nil {
		return nil, err
	}
	_, isProc := ctx.Registry().Procedure(w.Key())
	return boolWord(isProc), nil
}
