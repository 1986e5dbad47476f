package primitive

import (
	"github.com/dcorbin/qlogo/internal/datum"
	"github.com/dcorbin/qlogo/internal/reader"
	"github.com/dcorbin/qlogo/internal/registry"
)

// registerIO installs the text I/O primitives of spec 2.8/2.9: PRINT/
// TYPE/SHOW writing through ctx.Print, and READWORD/READLIST/
// READRAWLINE reading one line through ctx.ReadRawLine -- READLIST
// additionally tokenizes that line with internal/reader, the same
// tokenizer the top-level REPL loop uses, so a typed `[a b c]` reads
// back as a three-element list rather than one opaque word.
func registerIO(reg *registry.Registry) {
	define(reg, registry.Arity{0, 1, -1}, printCmd, "PRINT", "PR")
	define(reg, registry.Arity{1, 1, 1}, typeCmd, "TYPE")
	define(reg, registry.Arity{1, 1, 1}, printCmd, "SHOW")
	define(reg, registry.Arity{0, 0, 0}, readwordCmd, "READWORD", "RW")
	define(reg, registry.Arity{0, 0, 0}, readlistCmd, "READLIST", "RL")
	define(reg, registry.Arity{0, 0, 0}, readrawlineCmd, "READRAWLINE")
}

func printWords(args []datum.Datum) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += " "
		}
		s += wordForm(a)
	}
	return s
}

func wordForm(d datum.Datum) string {
	switch v := d.(type) {
	case *datum.Word:
		return v.Print()
	case *datum.List:
		return listForm(v)
	default:
		return ""
	}
}

func listForm(l *datum.List) string {
	s := ""
	first := true
	l.Each(func(d datum.Datum) bool {
		if !first {
			s += " "
		}
		first = false
		if sub, ok := d.(*datum.List); ok {
			s += "[" + listForm(sub) + "]"
		} else {
			s += wordForm(d)
		}
		return true
	})
	return s
}

func printCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	ctx.Print(printWords(args) + "\n")
	return datum.Nothing(), nil
}

func typeCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	ctx.Print(wordForm(args[0]))
	return datum.Nothing(), nil
}

type oneShotLineSource struct {
	line string
	done bool
}

func (s *oneShotLineSource) NextLine() (string, bool) {
	if s.done {
		return "", false
	}
	s.done = true
	return s.line, true
}

func readwordCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	line, ok := ctx.ReadRawLine()
	if !ok {
		return datum.NewWord(""), nil
	}
	return datum.NewWord(line), nil
}

func readlistCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	line, ok := ctx.ReadRawLine()
	if !ok {
		return datum.EmptyList(), nil
	}
	r := reader.New(&oneShotLineSource{line: line})
	l, ok, err := r.ReadList()
	if err != nil {
		return nil, &datum.FlowControl{FKind: datum.FlowError, Code: datum.ErrUnexpSquare, Message: err.Error(), ErrTag: datum.TagError}
	}
	if !ok {
		return datum.EmptyList(), nil
	}
	return l, nil
}

func readrawlineCmd(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	line, ok := ctx.ReadRawLine()
	if !ok {
		return datum.NewWord(""), nil
	}
	return datum.NewWord(line), nil
}
