package primitive

import (
	"github.com/dcorbin/qlogo/internal/datum"
	"github.com/dcorbin/qlogo/internal/registry"
)

// registerData installs the data constructors, selectors and
// predicates of spec 2.8/4.2: WORD/SENTENCE/LIST construction, FIRST/
// LAST/BUTFIRST/BUTLAST/ITEM selection, FPUT/LPUT (which build fresh
// cells, so they cannot close a cycle), SETITEM/SETFIRST/SETBF (gated
// against cycles) and their dangerous `.`-prefixed counterparts, and
// the *P predicates.
func registerData(reg *registry.Registry) {
	define(reg, registry.Arity{0, 2, -1}, wordCmd, "WORD")
	define(reg, registry.Arity{0, 2, -1}, sentenceCmd, "SENTENCE", "SE")
	define(reg, registry.Arity{0, 2, -1}, listCmd, "LIST")
	define(reg, registry.Arity{2, 2, 2}, fputCmd, "FPUT")
	define(reg, registry.Arity{2, 2, 2}, lputCmd, "LPUT")

	define(reg, registry.Arity{1, 1, 1}, firstCmd, "FIRST")
	define(reg, registry.Arity{1, 1, 1}, lastCmd, "LAST")
	define(reg, registry.Arity{1, 1, 1}, butfirstCmd, "BUTFIRST", "BF")
	define(reg, registry.Arity{1, 1, 1}, butlastCmd, "BUTLAST", "BL")
	define(reg, registry.Arity{1, 1, 1}, countCmd, "COUNT")
	define(reg, registry.Arity{2, 2, 2}, itemCmd, "ITEM")
	define(reg, registry.Arity{3, 3, 3}, setitemCmd(true), "SETITEM")
	define(reg, registry.Arity{3, 3, 3}, setitemCmd(false), ".SETITEM")
	define(reg, registry.Arity{2, 2, 2}, setfirstCmd(true), "SETFIRST")
	define(reg, registry.Arity{2, 2, 2}, setfirstCmd(false), ".SETFIRST")
	define(reg, registry.Arity{2, 2, 2}, setbfCmd(true), "SETBF")
	define(reg, registry.Arity{2, 2, 2}, setbfCmd(false), ".SETBF")

	define(reg, registry.Arity{2, 2, 2}, arrayCmd, "ARRAY")
	define(reg, registry.Arity{1, 1, 2}, listToArrayCmd, "LISTTOARRAY")
	define(reg, registry.Arity{1, 1, 1}, arrayToListCmd, "ARRAYTOLIST")

	define(reg, registry.Arity{1, 1, 1}, predicate(isEmpty), "EMPTYP", "EMPTY?")
	define(reg, registry.Arity{1, 1, 1}, predicate(isWord), "WORDP", "WORD?")
	define(reg, registry.Arity{1, 1, 1}, predicate(isList), "LISTP", "LIST?")
	define(reg, registry.Arity{1, 1, 1}, predicate(isArray), "ARRAYP", "ARRAY?")
}

func isWord(d datum.Datum) bool  { _, ok := d.(*datum.Word); return ok }
func isList(d datum.Datum) bool  { _, ok := d.(*datum.List); return ok }
func isArray(d datum.Datum) bool { _, ok := d.(*datum.Array); return ok }

// isEmpty is true for the empty word and the empty list.
func isEmpty(d datum.Datum) bool {
	switch v := d.(type) {
	case *datum.Word:
		return v.Print() == ""
	case *datum.List:
		return v.IsEmpty()
	}
	return false
}

func wordCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	result := datum.NewWord("")
	for _, a := range args {
		w, err := asWord(a, "WORD")
		if err != nil {
			return nil, err
		}
		result = result.Concat(w)
	}
	return result, nil
}

func sentenceCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	var b datum.Builder
	for _, a := range args {
		if l, ok := a.(*datum.List); ok {
			l.Each(func(d datum.Datum) bool { b.Append(d); return true })
			continue
		}
		b.Append(a)
	}
	return b.Build(), nil
}

func listCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	var b datum.Builder
	for _, a := range args {
		b.Append(a)
	}
	return b.Build(), nil
}

func fputCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	l, err := asList(args[1], "FPUT")
	if err != nil {
		return nil, err
	}
	return datum.Cons(args[0], l), nil
}

func lputCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	l, err := asList(args[1], "LPUT")
	if err != nil {
		return nil, err
	}
	var b datum.Builder
	l.Each(func(d datum.Datum) bool { b.Append(d); return true })
	b.Append(args[0])
	return b.Build(), nil
}

func firstCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	switch v := args[0].(type) {
	case *datum.Word:
		if v.Len() == 0 {
			return nil, doesntLike(args[0], "FIRST")
		}
		return datum.NewWord(string([]rune(v.Print())[:1])), nil
	case *datum.List:
		if v.IsEmpty() {
			return nil, doesntLike(args[0], "FIRST")
		}
		return v.Head(), nil
	default:
		return nil, doesntLike(args[0], "FIRST")
	}
}

func lastCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	switch v := args[0].(type) {
	case *datum.Word:
		r := []rune(v.Print())
		if len(r) == 0 {
			return nil, doesntLike(args[0], "LAST")
		}
		return datum.NewWord(string(r[len(r)-1:])), nil
	case *datum.List:
		if v.IsEmpty() {
			return nil, doesntLike(args[0], "LAST")
		}
		c := v
		for !c.Tail().IsEmpty() {
			c = c.Tail()
		}
		return c.Head(), nil
	default:
		return nil, doesntLike(args[0], "LAST")
	}
}

func butfirstCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	switch v := args[0].(type) {
	case *datum.Word:
		r := []rune(v.Print())
		if len(r) == 0 {
			return nil, doesntLike(args[0], "BUTFIRST")
		}
		return datum.NewWord(string(r[1:])), nil
	case *datum.List:
		if v.IsEmpty() {
			return nil, doesntLike(args[0], "BUTFIRST")
		}
		return v.Tail(), nil
	default:
		return nil, doesntLike(args[0], "BUTFIRST")
	}
}

func butlastCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	switch v := args[0].(type) {
	case *datum.Word:
		r := []rune(v.Print())
		if len(r) == 0 {
			return nil, doesntLike(args[0], "BUTLAST")
		}
		return datum.NewWord(string(r[:len(r)-1])), nil
	case *datum.List:
		if v.IsEmpty() {
			return nil, doesntLike(args[0], "BUTLAST")
		}
		items := v.ToSlice()
		return datum.FromSlice(items[:len(items)-1]), nil
	default:
		return nil, doesntLike(args[0], "BUTLAST")
	}
}

func countCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	switch v := args[0].(type) {
	case *datum.Word:
		return datum.NewNumberWord(float64(v.Len())), nil
	case *datum.List:
		return datum.NewNumberWord(float64(v.Count())), nil
	case *datum.Array:
		return datum.NewNumberWord(float64(v.Len())), nil
	default:
		return nil, doesntLike(args[0], "COUNT")
	}
}

func itemCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	i, err := asNumber(args[0], "ITEM")
	if err != nil {
		return nil, err
	}
	switch v := args[1].(type) {
	case *datum.Word:
		r := []rune(v.Print())
		idx := int(i)
		if idx < 1 || idx > len(r) {
			return nil, doesntLike(args[0], "ITEM")
		}
		return datum.NewWord(string(r[idx-1 : idx])), nil
	case *datum.List:
		d, ok := v.ItemAt(int(i))
		if !ok {
			return nil, doesntLike(args[0], "ITEM")
		}
		return d, nil
	case *datum.Array:
		d, ok := v.Get(int(i))
		if !ok {
			return nil, doesntLike(args[0], "ITEM")
		}
		return d, nil
	default:
		return nil, doesntLike(args[1], "ITEM")
	}
}

// setitemCmd implements SETITEM (checked=true, refuses a cycle) and
// .SETITEM (checked=false, the dangerous interior-mutability escape
// hatch of spec 9).
func setitemCmd(checked bool) registry.PrimitiveFunc {
	return func(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
		i, err := asNumber(args[0], "SETITEM")
		if err != nil {
			return nil, err
		}
		switch v := args[1].(type) {
		case *datum.List:
			var err error
			if checked {
				err = v.SetItemAtChecked(int(i), args[2])
			} else {
				err = v.SetItemAt(int(i), args[2])
			}
			if err != nil {
				return nil, wrapMutateErr(err)
			}
			return datum.Nothing(), nil
		case *datum.Array:
			if checked && datum.WouldCycle(v, args[2]) {
				return nil, wrapMutateErr(datum.ErrWouldCycle)
			}
			if err := v.Set(int(i), args[2]); err != nil {
				return nil, wrapMutateErr(err)
			}
			return datum.Nothing(), nil
		default:
			return nil, doesntLike(args[1], "SETITEM")
		}
	}
}

func setfirstCmd(checked bool) registry.PrimitiveFunc {
	return func(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
		l, err := asList(args[0], "SETFIRST")
		if err != nil {
			return nil, err
		}
		if checked {
			err = l.SetHeadChecked(args[1])
		} else {
			err = l.SetHead(args[1])
		}
		if err != nil {
			return nil, wrapMutateErr(err)
		}
		return datum.Nothing(), nil
	}
}

func setbfCmd(checked bool) registry.PrimitiveFunc {
	return func(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
		l, err := asList(args[0], "SETBF")
		if err != nil {
			return nil, err
		}
		tail, err := asList(args[1], "SETBF")
		if err != nil {
			return nil, err
		}
		if checked {
			err = l.SetTailChecked(tail)
		} else {
			err = l.SetTail(tail)
		}
		if err != nil {
			return nil, wrapMutateErr(err)
		}
		return datum.Nothing(), nil
	}
}

func wrapMutateErr(err error) error {
	return &datum.FlowControl{FKind: datum.FlowError, Code: datum.ErrDoesntLike, Message: err.Error(), ErrTag: datum.TagError}
}

func arrayCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	size, err := asNumber(args[0], "ARRAY")
	if err != nil {
		return nil, err
	}
	origin, err := asNumber(args[1], "ARRAY")
	if err != nil {
		return nil, err
	}
	return datum.NewArray(int(size), int(origin)), nil
}

func listToArrayCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	l, err := asList(args[0], "LISTTOARRAY")
	if err != nil {
		return nil, err
	}
	origin := 1
	if len(args) == 2 {
		n, err := asNumber(args[1], "LISTTOARRAY")
		if err != nil {
			return nil, err
		}
		origin = int(n)
	}
	return datum.NewArrayFromList(l, origin), nil
}

func arrayToListCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	a, err := asArray(args[0], "ARRAYTOLIST")
	if err != nil {
		return nil, err
	}
	return datum.FromArray(a), nil
}
