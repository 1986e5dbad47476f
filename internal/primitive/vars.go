package primitive

import (
	"github.com/dcorbin/qlogo/internal/datum"
	"github.com/dcorbin/qlogo/internal/registry"
)

// registerVars installs the variable primitives of spec 2.8/4.7:
// MAKE/LOCAL/LOCALMAKE/GLOBAL write and declare through ctx's
// dynamic-scope calls, and THING/NAME read and write by name rather
// than by the `:name` shorthand the tree builder otherwise expands.
func registerVars(reg *registry.Registry) {
	define(reg, registry.Arity{2, 2, 2}, makeCmd, "MAKE")
	define(reg, registry.Arity{1, 1, -1}, localCmd, "LOCAL")
	define(reg, registry.Arity{2, 2, 2}, localmakeCmd, "LOCALMAKE")
	define(reg, registry.Arity{1, 1, -1}, globalCmd, "GLOBAL")
	define(reg, registry.Arity{1, 1, 1}, thingCmd, "THING")
	define(reg, registry.Arity{2, 2, 2}, nameCmd, "NAME")
}

func makeCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	w, err := asWord(args[0], "MAKE")
	if err != nil {
		return nil, err
	}
	ctx.SetVar(w.Key(), args[1])
	return datum.Nothing(), nil
}

func eachNameArg(args []datum.Datum, who string, fn func(name string)) error {
	for _, a := range args {
		w, err := asWord(a, who)
		if err != nil {
			return err
		}
		fn(w.Key())
	}
	return nil
}

func localCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	if err := eachNameArg(args, "LOCAL", ctx.MakeLocal); err != nil {
		return nil, err
	}
	return datum.Nothing(), nil
}

func localmakeCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	w, err := asWord(args[0], "LOCALMAKE")
	if err != nil {
		return nil, err
	}
	ctx.SetLocal(w.Key(), args[1])
	return datum.Nothing(), nil
}

// globalCmd gives name a global binding (the empty word) when no
// binding of that name is visible yet. When a LOCAL of the same name is
// visible it does nothing: no global binding is created, and a later
// MAKE of that name still assigns the LOCAL.
func globalCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	err := eachNameArg(args, "GLOBAL", func(name string) {
		if _, ok := ctx.GetVar(name); !ok {
			ctx.SetVar(name, datum.NewWord(""))
		}
	})
	if err != nil {
		return nil, err
	}
	return datum.Nothing(), nil
}

func thingCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	w, err := asWord(args[0], "THING")
	if err != nil {
		return nil, err
	}
	v, ok := ctx.GetVar(w.Key())
	if !ok {
		return nil, &datum.FlowControl{FKind: datum.FlowError, Code: datum.ErrNoValue, Message: w.Print() + " has no value", ErrTag: datum.TagError}
	}
	return v, nil
}

func nameCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	w, err := asWord(args[1], "NAME")
	if err != nil {
		return nil, err
	}
	ctx.SetVar(w.Key(), args[0])
	return datum.Nothing(), nil
}
