package repl

import (
	"fmt"
	"strings"

	"github.com/dcorbin/qlogo/internal/datum"
	"github.com/dcorbin/qlogo/internal/reader"
	"github.com/dcorbin/qlogo/internal/registry"
	"github.com/dcorbin/qlogo/internal/runparse"
	"github.com/dcorbin/qlogo/internal/treebuild"
)

// oneShotLineSource and newOneShotReader mirror the same small adapter
// internal/primitive/io.go uses for READLIST: tokenizing a single
// already-read physical line without pulling further ones.
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

func newOneShotReader(line string) *reader.Reader {
	return reader.New(&oneShotLineSource{line: line})
}

// sliceLineSource feeds reader.ReadList from an in-memory line list, for
// compiling a library procedure's already-complete source text (as
// opposed to readDefinition's interactive host.ReadRawLine loop).
type sliceLineSource struct {
	lines []string
	i     int
}

func (s *sliceLineSource) NextLine() (string, bool) {
	if s.i >= len(s.lines) {
		return "", false
	}
	l := s.lines[s.i]
	s.i++
	return l, true
}

// readDefinition implements the TO/.MACRO reader mode of spec 4.6: header
// tokens is everything after the keyword, starting with the procedure's
// name, already read as this logical line's tokens. It consumes further
// physical lines straight off the host -- bypassing ReadList's own
// logical-line grouping, since a procedure body is delimited by a literal
// END line, not by balanced brackets -- until one whose first word,
// case-folded, is END.
func (r *REPL) readDefinition(keyword string, lineToks []datum.Datum) error {
	if r.ev.Vars().Current() != nil {
		return datum.NewError(nil, datum.ErrToInProc, keyword+" used inside a procedure")
	}
	proc, err := compileDefinition(r.reg, keyword, lineToks, func() (string, bool) { return r.h.ReadRawLine("") })
	if err != nil {
		return err
	}
	r.reg.DefineProcedure(proc)
	return nil
}

// CompileProcedure parses a complete "TO name ... <body lines> END" (or
// ".MACRO ... END") source text against reg and installs the result,
// for spec 6.4's on-demand library loading: the registry's autoload
// hook calls this the first time a name it doesn't know turns out to be
// one LIBRARY has source for.
func CompileProcedure(reg *registry.Registry, source string) error {
	lines := strings.Split(source, "\n")
	if len(lines) == 0 {
		return fmt.Errorf("empty procedure source")
	}
	head, ok, err := newOneShotReader(lines[0]).ReadList()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("empty procedure header")
	}
	headToks := head.ToSlice()
	keyword, isDefine := defineKeyword(headToks)
	if !isDefine {
		return fmt.Errorf("expected TO or .MACRO, found %q", tokensText(headToks))
	}
	src := &sliceLineSource{lines: lines[1:]}
	proc, err := compileDefinition(reg, keyword, headToks, src.NextLine)
	if err != nil {
		return err
	}
	reg.DefineProcedure(proc)
	return nil
}

// compileDefinition is the shared core of readDefinition and
// CompileProcedure: given the header line's tokens and a way to pull
// further raw lines one at a time, it builds the *datum.Procedure but
// does not install it, so the two callers can choose how (and whether)
// to report a TO-IN-PROC-style error around the install step.
func compileDefinition(reg *registry.Registry, keyword string, lineToks []datum.Datum, nextLine func() (string, bool)) (*datum.Procedure, error) {
	if len(lineToks) < 2 {
		return nil, datum.NewError(nil, datum.ErrNoHow, keyword+" needs a procedure name")
	}
	nameWord, ok := lineToks[1].(*datum.Word)
	if !ok {
		return nil, datum.NewError(nil, datum.ErrNoHow, keyword+" needs a procedure name")
	}

	required, optional, rest, err := parseHeader(reg, lineToks[2:])
	if err != nil {
		return nil, err
	}

	var bodyLines [][]datum.Datum
	for {
		raw, ok := nextLine()
		if !ok {
			return nil, datum.NewError(nil, datum.ErrNoHow, "END expected before end of input")
		}
		line, ok, err := newOneShotReader(raw).ReadList()
		if err != nil {
			return nil, datum.NewError(nil, datum.ErrNoHow, err.Error())
		}
		if !ok {
			continue
		}
		toks := line.ToSlice()
		if w, isWord := toks[0].(*datum.Word); isWord && strings.EqualFold(w.Raw(), "END") {
			break
		}
		if inner, nested := defineKeyword(toks); nested {
			return nil, datum.NewError(nil, datum.ErrToInProc, inner+" used inside a procedure")
		}
		bodyLines = append(bodyLines, toks)
	}

	body, tags, err := buildBody(reg, bodyLines)
	if err != nil {
		return nil, err
	}

	maxArity := required + len(optional)
	if rest != "" {
		maxArity = -1
	}
	return &datum.Procedure{
		Name:         nameWord.Raw(),
		Required:     requiredNames(lineToks[2:], required),
		Optional:     optional,
		Rest:         rest,
		MinArity:     required,
		DefaultArity: required,
		MaxArity:     maxArity,
		Body:         body,
		Tags:         tags,
		IsMacro:      keyword == ".MACRO",
	}, nil
}

// buildBody tree-builds each collected raw body line against reg and
// records the line index of every top-level TAG "name" line, per spec
// 4.5's "trailing tag-labeled nodes" for GOTO.
func buildBody(reg *registry.Registry, lines [][]datum.Datum) ([]datum.Line, map[string]int, error) {
	body := make([]datum.Line, 0, len(lines))
	tags := make(map[string]int)
	for _, toks := range lines {
		if tag, ok := tagLine(toks); ok {
			tags[tag] = len(body)
		}
		parsed := runparse.RunParse(toks)
		nodes, err := treebuild.Build(parsed, reg)
		if err != nil {
			return nil, nil, datum.NewError(nil, datum.ErrNoHow, err.Error())
		}
		body = append(body, datum.Line{Nodes: nodes})
	}
	return body, tags, nil
}

// tagLine reports whether toks is a top-level "TAG "name" line, and if
// so, name's key form.
func tagLine(toks []datum.Datum) (string, bool) {
	if len(toks) != 2 {
		return "", false
	}
	w, ok := toks[0].(*datum.Word)
	if !ok || !strings.EqualFold(w.Raw(), "TAG") {
		return "", false
	}
	tag, ok := toks[1].(*datum.Word)
	if !ok || len(tag.Raw()) == 0 || tag.Raw()[0] != '"' {
		return "", false
	}
	return datum.NewWord(tag.Raw()[1:]).Key(), true
}

// parseHeader splits a TO/.MACRO header's parameter tokens into required
// (":name"), optional ("[:name default...]") and rest ("[:name]" alone,
// the one-element-list form) parameters, per UCBLogo's procedure-header
// grammar.
func parseHeader(reg *registry.Registry, toks []datum.Datum) (requiredCount int, optional []datum.OptionalParam, rest string, err error) {
	for _, tok := range toks {
		switch t := tok.(type) {
		case *datum.Word:
			if len(t.Raw()) < 2 || t.Raw()[0] != ':' {
				return 0, nil, "", fmt.Errorf("malformed procedure header near %q", t.Raw())
			}
			requiredCount++
		case *datum.List:
			items := t.ToSlice()
			if len(items) == 0 {
				return 0, nil, "", fmt.Errorf("empty parameter group in procedure header")
			}
			first, ok := items[0].(*datum.Word)
			if !ok || len(first.Raw()) < 2 || first.Raw()[0] != ':' {
				return 0, nil, "", fmt.Errorf("malformed optional/rest parameter in procedure header")
			}
			name := first.Raw()[1:]
			if len(items) == 1 {
				if rest != "" {
					return 0, nil, "", fmt.Errorf("a procedure may have only one rest parameter")
				}
				rest = name
				continue
			}
			parsed := runparse.RunParse(items[1:])
			nodes, berr := treebuild.Build(parsed, reg)
			if berr != nil {
				return 0, nil, "", berr
			}
			optional = append(optional, datum.OptionalParam{Name: name, Default: nodes})
		default:
			return 0, nil, "", fmt.Errorf("malformed procedure header")
		}
	}
	return requiredCount, optional, rest, nil
}

// requiredNames re-extracts the leading ":name" tokens' bare names from
// header, now that parseHeader has confirmed there are exactly n of them
// before the first bracketed group.
func requiredNames(header []datum.Datum, n int) []string {
	names := make([]string, 0, n)
	for _, tok := range header {
		w, ok := tok.(*datum.Word)
		if !ok {
			break
		}
		names = append(names, w.Raw()[1:])
	}
	return names
}
