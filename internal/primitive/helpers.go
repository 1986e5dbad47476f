// Package primitive implements the built-in command and operator table
// of spec 2.8/4.6: every PrimitiveFunc here is written against
// registry.Context, the narrow slice of the evaluator a built-in
// needs (Eval/RunList/variables/streams), so this package depends only
// on internal/datum, internal/registry, internal/host and
// internal/reader -- never on internal/eval itself.
package primitive

import (
	"github.com/dcorbin/qlogo/internal/datum"
	"github.com/dcorbin/qlogo/internal/registry"
)

func doesntLike(input datum.Datum, who string) error {
	return &datum.FlowControl{
		FKind:   datum.FlowError,
		Code:    datum.ErrDoesntLike,
		Message: who + " doesn't like " + printOf(input) + " as input",
		ErrTag:  datum.TagError,
	}
}

func printOf(d datum.Datum) string {
	switch v := d.(type) {
	case *datum.Word:
		return v.Print()
	default:
		return "that"
	}
}

func asWord(d datum.Datum, who string) (*datum.Word, error) {
	w, ok := d.(*datum.Word)
	if !ok {
		return nil, doesntLike(d, who)
	}
	return w, nil
}

func asList(d datum.Datum, who string) (*datum.List, error) {
	l, ok := d.(*datum.List)
	if !ok {
		return nil, doesntLike(d, who)
	}
	return l, nil
}

func asArray(d datum.Datum, who string) (*datum.Array, error) {
	a, ok := d.(*datum.Array)
	if !ok {
		return nil, doesntLike(d, who)
	}
	return a, nil
}

func asNumber(d datum.Datum, who string) (float64, error) {
	w, ok := d.(*datum.Word)
	if !ok {
		return 0, doesntLike(d, who)
	}
	n, ok := w.AsNumber()
	if !ok {
		return 0, doesntLike(d, who)
	}
	return n, nil
}

func asBool(d datum.Datum, who string) (bool, error) {
	w, ok := d.(*datum.Word)
	if !ok {
		return false, doesntLike(d, who)
	}
	b, ok := w.AsBool()
	if !ok {
		return false, doesntLike(d, who)
	}
	return b, nil
}

func boolWord(b bool) *datum.Word {
	if b {
		return datum.NewWord("TRUE")
	}
	return datum.NewWord("FALSE")
}

// equalDatum is Logo's general equality (=): words compare by print
// form honoring CASEIGNOREDP, lists/arrays by identity otherwise.
func equalDatum(a, b datum.Datum) bool {
	if eq, ok := a.(datum.Equaler); ok {
		return eq.Equal(b, datum.CaseIgnoreDP)
	}
	return a == b
}

// define registers fn under every one of names (first is canonical,
// the rest are its abbreviations), sharing one Arity.
func define(reg *registry.Registry, a registry.Arity, fn registry.PrimitiveFunc, names ...string) {
	for _, n := range names {
		reg.DefinePrimitive(n, a, fn)
	}
}
