// Package runparse implements the second pipeline stage: given the
// flat token list the reader produced for one line (or one procedure
// body line, or one list about to be RUN), it splits words that glue
// operators or parentheses directly onto operands ("3+4", "x*2",
// "(2+3)"), rewrites a leading unary minus into an explicit binary
// subtraction from zero, and expands the "?n" explicit-slot shorthand
// into its parenthesized call form. It never recurses into nested
// lists: a List or Array token is data until something (a procedure
// body, RUN, RUNRESULT) explicitly run-parses its contents in turn.
package runparse

import (
	"strings"

	"github.com/dcorbin/qlogo/internal/datum"
)

// RunParse transforms one flat token list. The synthetic "--" word it
// may emit names a primitive that always performs strict two-operand
// subtraction; it exists only so a rewritten unary minus can never be
// re-interpreted as unary again.
func RunParse(tokens []datum.Datum) []datum.Datum {
	out := make([]datum.Datum, 0, len(tokens))
	prevOperand := false
	for _, tok := range tokens {
		w, isWord := tok.(*datum.Word)
		if !isWord {
			out = append(out, tok)
			prevOperand = true
			continue
		}
		if w.ForeverSpecial() {
			out = append(out, tok)
			prevOperand = true
			continue
		}
		raw := w.Raw()
		switch {
		case strings.HasPrefix(raw, `"`):
			word, rest := splitQuotedWord(raw)
			out = append(out, word)
			if rest == "" {
				prevOperand = true
				continue
			}
			sub, endOperand := splitSpecialChars(rest, true)
			out = append(out, sub...)
			prevOperand = endOperand
		default:
			if expanded, ok := expandExplicitSlot(raw); ok {
				out = append(out, expanded...)
				prevOperand = true
				continue
			}
			sub, endOperand := splitSpecialChars(raw, prevOperand)
			out = append(out, sub...)
			prevOperand = endOperand
		}
	}
	return out
}

// splitQuotedWord copies raw through the end of the token, stopping
// early at an embedded "(" or ")" -- so '"hello(world)' run-parses as
// the quoted word "hello followed by a normal "(", "world", ")" --
// per spec 4.4's quoted-word rule.
func splitQuotedWord(raw string) (word datum.Datum, rest string) {
	for i, c := range raw {
		if c == '(' || c == ')' {
			return datum.NewWord(raw[:i]), raw[i:]
		}
	}
	return datum.NewWord(raw), ""
}

// expandExplicitSlot rewrites "?" followed immediately by one or more
// digits -- e.g. "?2" inside a template such as [? + ?2] -- into the
// three-or-four token call "( ? 2 )".
func expandExplicitSlot(raw string) ([]datum.Datum, bool) {
	if len(raw) < 2 || raw[0] != '?' {
		return nil, false
	}
	rest := raw[1:]
	for _, c := range rest {
		if c < '0' || c > '9' {
			return nil, false
		}
	}
	return []datum.Datum{
		datum.NewWord("("),
		datum.NewWord("?"),
		datum.NewWord(rest),
		datum.NewWord(")"),
	}, true
}

// The "special" characters of spec 4.4, with <= >= <> combined at
// the call site below: + - ( ) * % / < > =. "^" is not among them, so
// "2^3" stays one word; a free-standing "^" token still reaches the
// tree builder, which treats it as an infix operator. "(" reports true
// here (it leaves no operand behind, same as any other operator);
// ")" does not (it closes one).
func isOperatorRune(c rune) bool {
	switch c {
	case '+', '-', '*', '/', '=', '<', '>', '%', '(':
		return true
	}
	return false
}

// splitSpecialChars scans one glued-together token for embedded
// arithmetic/relational operators, splitting it into several word
// tokens. prevOperand reports whether the token immediately preceding
// this one (in the enclosing RunParse call) ended in something that
// can serve as the left operand of a binary operator. A "-" that
// starts the token and is not the whole token is always unary
// (rewritten to "0 --"); prevOperand decides only for a token that is a
// lone "-", and a "-" further in is unary only right after an operator.
func splitSpecialChars(raw string, prevOperand bool) ([]datum.Datum, bool) {
	var out []datum.Datum
	var pending []rune
	flush := func() {
		if len(pending) > 0 {
			out = append(out, datum.NewWord(string(pending)))
			pending = nil
		}
	}

	runes := []rune(raw)
	operandSoFar := prevOperand
	i := 0
	for i < len(runes) {
		if i+1 < len(runes) {
			two := string(runes[i : i+2])
			if two == "<=" || two == ">=" || two == "<>" {
				flush()
				out = append(out, datum.NewWord(two))
				operandSoFar = false
				i += 2
				continue
			}
		}
		c := runes[i]
		switch c {
		case '+', '*', '/', '=', '<', '>', '%', '(', ')':
			flush()
			out = append(out, datum.NewWord(string(c)))
			operandSoFar = c == ')'
			i++
		case '-':
			if (i == 0 && len(runes) > 1) || (!operandSoFar && len(pending) == 0) {
				flush()
				out = append(out, datum.NewWord("0"), datum.NewWord("--"))
				operandSoFar = false
				i++
				continue
			}
			flush()
			out = append(out, datum.NewWord("-"))
			operandSoFar = false
			i++
		default:
			pending = append(pending, c)
			operandSoFar = true
			i++
		}
	}
	flush()

	endOperand := len(runes) == 0 || !isOperatorRune(runes[len(runes)-1])
	return out, endOperand
}
