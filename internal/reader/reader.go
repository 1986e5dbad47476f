// Package reader implements the tokenizer that turns raw input text
// into Datum tokens: Words, sublists delimited by [ ], and arrays
// delimited by { } with an optional @origin suffix. It knows nothing
// about numbers, minus signs or "?" substitution -- that is the
// run-parser's job, one layer up.
package reader

import (
	"fmt"

	"github.com/dcorbin/qlogo/internal/datum"
)

// LineSource supplies one physical line of input at a time, without
// its trailing newline. NextLine reports ok=false at end of input.
// Reader asks for more lines only when a token, bracket or array is
// left open at the end of the line it already has buffered.
type LineSource interface {
	NextLine() (line string, ok bool)
}

// Reader tokenizes a stream of lines pulled from a LineSource.
type Reader struct {
	src      LineSource
	buf      []rune
	pos      int
	eof      bool
	seenLine bool
}

// New returns a Reader pulling lines from src.
func New(src LineSource) *Reader {
	return &Reader{src: src}
}

// ReadList tokenizes one logical line -- possibly spanning several
// physical lines, if a bracket is left open or a line ends in \ or ~
// -- into a flat top-level list of tokens. It returns ok=false only
// when the source is exhausted before any token is read.
func (r *Reader) ReadList() (l *datum.List, ok bool, err error) {
	toks, err := r.parseTokens(0)
	if err != nil {
		return nil, false, err
	}
	if toks == nil {
		return nil, false, nil
	}
	return datum.FromSlice(toks), true, nil
}

func (r *Reader) more() bool {
	if r.eof {
		return false
	}
	line, ok := r.src.NextLine()
	if !ok {
		r.eof = true
		return false
	}
	if !r.seenLine && hasShebang(line) {
		r.seenLine = true
		line, ok = r.src.NextLine()
		if !ok {
			r.eof = true
			return false
		}
	}
	r.seenLine = true
	if len(r.buf) > 0 {
		r.buf = append(r.buf, '\n')
	}
	r.buf = append(r.buf, []rune(line)...)
	return true
}

func hasShebang(line string) bool {
	return len(line) >= 2 && line[0] == '#' && line[1] == '!'
}

func (r *Reader) peek() (rune, bool) {
	if r.pos >= len(r.buf) {
		if !r.more() {
			return 0, false
		}
	}
	return r.buf[r.pos], true
}

func (r *Reader) next() (rune, bool) {
	c, ok := r.peek()
	if ok {
		r.pos++
	}
	return c, ok
}

func isDelimiter(c rune) bool {
	switch c {
	case ' ', '\t', '\n', '[', ']', '{', '}', '(', ')', ';':
		return true
	}
	return false
}

// skipLayout consumes whitespace, comments and ~ line continuations.
// It returns false when the buffered input runs dry without the
// caller needing to fetch more (top-level callers decide for
// themselves whether running dry is an error).
func (r *Reader) skipLayout() bool {
	for {
		c, ok := r.peek()
		if !ok {
			return false
		}
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			r.pos++
		case c == '~':
			r.pos++
			// drop everything up to end of physical line, then
			// pull the continuation in as if nothing happened
			for {
				c2, ok2 := r.peek()
				if !ok2 || c2 == '\n' {
					break
				}
				r.pos++
			}
			if !r.more() {
				return false
			}
		case c == ';':
			for {
				c2, ok2 := r.peek()
				if !ok2 || c2 == '\n' {
					break
				}
				r.pos++
			}
		default:
			return true
		}
	}
}

// parseTokens reads tokens until it sees closer (0 meaning top
// level, where running out of input simply ends the list) or the
// buffered input is exhausted with nothing left open.
func (r *Reader) parseTokens(closer rune) ([]datum.Datum, error) {
	var toks []datum.Datum
	for {
		if !r.skipLayout() {
			if closer != 0 {
				return nil, fmt.Errorf("reader: unmatched %q", closer)
			}
			return toks, nil
		}
		c, _ := r.peek()
		if closer != 0 && c == closer {
			r.pos++
			return toks, nil
		}
		switch c {
		case ']', '}':
			return nil, fmt.Errorf("reader: unexpected %q", c)
		case '[':
			r.pos++
			items, err := r.parseTokens(']')
			if err != nil {
				return nil, err
			}
			toks = append(toks, datum.FromSlice(items))
		case '{':
			r.pos++
			items, err := r.parseTokens('}')
			if err != nil {
				return nil, err
			}
			origin, err := r.readArrayOrigin()
			if err != nil {
				return nil, err
			}
			arr := datum.NewArrayFromList(datum.FromSlice(items), origin)
			toks = append(toks, arr)
		case '(', ')':
			r.pos++
			toks = append(toks, datum.NewWord(string(c)))
		default:
			w, err := r.readWordToken()
			if err != nil {
				return nil, err
			}
			toks = append(toks, w)
		}
	}
}

// readArrayOrigin parses an optional "@<integer>" immediately after a
// closing }, with no intervening whitespace, defaulting to origin 1.
func (r *Reader) readArrayOrigin() (int, error) {
	c, ok := r.peek()
	if !ok || c != '@' {
		return 1, nil
	}
	r.pos++
	neg := false
	if c2, ok2 := r.peek(); ok2 && c2 == '-' {
		neg = true
		r.pos++
	}
	n := 0
	digits := 0
	for {
		c2, ok2 := r.peek()
		if !ok2 || c2 < '0' || c2 > '9' {
			break
		}
		n = n*10 + int(c2-'0')
		r.pos++
		digits++
	}
	if digits == 0 {
		return 0, fmt.Errorf("reader: expected integer after @ in array origin")
	}
	if neg {
		n = -n
	}
	return n, nil
}

// readWordToken scans one maximal non-delimiter run, honoring
// backslash-escapes, backslash/tilde line continuation and
// vertical-bar quoting. It is only called when the current rune is
// known not to be a delimiter.
func (r *Reader) readWordToken() (datum.Datum, error) {
	var raw []rune
	forever := false
	for {
		c, ok := r.peek()
		if !ok {
			break
		}
		switch {
		case c == '|':
			r.pos++
			forever = true
			for {
				c2, ok2 := r.next()
				if !ok2 {
					return nil, fmt.Errorf("reader: unmatched |")
				}
				if c2 == '\\' {
					if c3, ok3 := r.next(); ok3 {
						raw = append(raw, c3)
					}
					continue
				}
				if c2 == '|' {
					break
				}
				raw = append(raw, c2)
			}
		case c == '\\':
			r.pos++
			c2, ok2 := r.peek()
			if ok2 && c2 == '\n' {
				// backslash-newline: splice the two lines together
				// with no literal character left behind.
				r.pos++
				continue
			}
			raw = append(raw, '\\')
			if c2, ok2 := r.next(); ok2 {
				raw = append(raw, c2)
			}
		case isDelimiter(c):
			if forever {
				return datum.NewForeverSpecialWord(string(raw)), nil
			}
			return datum.NewWord(string(raw)), nil
		default:
			r.pos++
			raw = append(raw, c)
		}
	}
	if forever {
		return datum.NewForeverSpecialWord(string(raw)), nil
	}
	return datum.NewWord(string(raw)), nil
}
