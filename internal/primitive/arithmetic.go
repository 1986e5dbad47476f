package primitive

import (
	"math"

	"github.com/dcorbin/qlogo/internal/datum"
	"github.com/dcorbin/qlogo/internal/registry"
)

// registerArithmetic installs the binary infix names the run-parser
// emits (+ - -- * / %) plus their variadic prefix spellings (SUM,
// DIFFERENCE, PRODUCT, QUOTIENT, REMAINDER) and the comparison
// operators (= < > <= >= <>), per spec 2.8/4.4.
//
// "--" is the synthetic, always-binary subtraction primitive the
// run-parser's unary-minus rewrite emits in place of ordinary "-":
// a leading "-" immediately before a number with no preceding operand
// becomes the three tokens 0, --, N, so "--" must never be variadic or
// it would swallow the unary rewrite's shape.
func registerArithmetic(reg *registry.Registry) {
	define(reg, registry.Arity{2, 2, -1}, binaryReduce(func(a, b float64) float64 { return a + b }, 0),
		"SUM", "+")
	define(reg, registry.Arity{2, 2, 2}, arith2(func(a, b float64) float64 { return a - b }),
		"DIFFERENCE", "-")
	define(reg, registry.Arity{2, 2, 2}, arith2(func(a, b float64) float64 { return a - b }),
		"--")
	define(reg, registry.Arity{2, 2, -1}, binaryReduce(func(a, b float64) float64 { return a * b }, 1),
		"PRODUCT", "*")
	define(reg, registry.Arity{2, 2, 2}, quotient, "QUOTIENT", "/")
	define(reg, registry.Arity{2, 2, 2}, remainder, "REMAINDER", "%")
	define(reg, registry.Arity{2, 2, 2}, arith2(math.Pow), "POWER", "^")

	define(reg, registry.Arity{1, 1, 1}, unary(func(a float64) float64 { return -a }), "MINUS")
	define(reg, registry.Arity{1, 1, 1}, unary(math.Abs), "ABS")
	define(reg, registry.Arity{1, 1, 1}, unary(math.Sqrt), "SQRT")
	define(reg, registry.Arity{1, 1, 1}, unary(math.Round), "ROUND")
	define(reg, registry.Arity{1, 1, 1}, unary(math.Trunc), "INT")
	define(reg, registry.Arity{1, 1, 1}, unary(math.Floor), "FLOOR")
	define(reg, registry.Arity{1, 1, 1}, unary(math.Ceil), "CEILING")
	define(reg, registry.Arity{1, 1, 1}, unary(math.Exp), "EXP")
	define(reg, registry.Arity{1, 1, 1}, unary(math.Log), "LN")
	define(reg, registry.Arity{1, 1, 1}, unary(math.Sin), "SIN")
	define(reg, registry.Arity{1, 1, 1}, unary(math.Cos), "COS")

	define(reg, registry.Arity{2, 2, 2}, compare(func(a, b float64) bool { return a < b }), "LESSP", "<")
	define(reg, registry.Arity{2, 2, 2}, compare(func(a, b float64) bool { return a > b }), "GREATERP", ">")
	define(reg, registry.Arity{2, 2, 2}, compare(func(a, b float64) bool { return a <= b }), "LESSEQUALP", "<=")
	define(reg, registry.Arity{2, 2, 2}, compare(func(a, b float64) bool { return a >= b }), "GREATEREQUALP", ">=")

	define(reg, registry.Arity{2, 2, 2}, equalOp(true), "EQUALP", "=")
	define(reg, registry.Arity{2, 2, 2}, equalOp(false), "NOTEQUALP", "<>")

	define(reg, registry.Arity{1, 1, 1}, predicate(func(d datum.Datum) bool {
		_, isNum := asNumberOk(d)
		return isNum
	}), "NUMBERP")
}

func asNumberOk(d datum.Datum) (float64, bool) {
	w, ok := d.(*datum.Word)
	if !ok {
		return 0, false
	}
	return w.AsNumber()
}

func unary(fn func(float64) float64) registry.PrimitiveFunc {
	return func(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
		n, err := asNumber(args[0], "that")
		if err != nil {
			return nil, err
		}
		return datum.NewNumberWord(fn(n)), nil
	}
}

func arith2(fn func(a, b float64) float64) registry.PrimitiveFunc {
	return func(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
		a, err := asNumber(args[0], "that")
		if err != nil {
			return nil, err
		}
		b, err := asNumber(args[1], "that")
		if err != nil {
			return nil, err
		}
		return datum.NewNumberWord(fn(a, b)), nil
	}
}

// binaryReduce folds fn left-to-right over a variadic arg list, for
// SUM/PRODUCT's unbounded parenthesized form.
func binaryReduce(fn func(a, b float64) float64, identity float64) registry.PrimitiveFunc {
	return func(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
		total := identity
		if len(args) > 0 {
			first, err := asNumber(args[0], "that")
			if err != nil {
				return nil, err
			}
			total = first
		}
		for _, a := range args[1:] {
			n, err := asNumber(a, "that")
			if err != nil {
				return nil, err
			}
			total = fn(total, n)
		}
		return datum.NewNumberWord(total), nil
	}
}

func quotient(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	a, err := asNumber(args[0], "QUOTIENT")
	if err != nil {
		return nil, err
	}
	b, err := asNumber(args[1], "QUOTIENT")
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, &datum.FlowControl{FKind: datum.FlowError, Code: datum.ErrDoesntLike, Message: "division by zero", ErrTag: datum.TagError}
	}
	return datum.NewNumberWord(a / b), nil
}

func remainder(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	a, err := asNumber(args[0], "REMAINDER")
	if err != nil {
		return nil, err
	}
	b, err := asNumber(args[1], "REMAINDER")
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, &datum.FlowControl{FKind: datum.FlowError, Code: datum.ErrDoesntLike, Message: "division by zero", ErrTag: datum.TagError}
	}
	return datum.NewNumberWord(math.Mod(a, b)), nil
}

func compare(fn func(a, b float64) bool) registry.PrimitiveFunc {
	return func(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
		a, err := asNumber(args[0], "that")
		if err != nil {
			return nil, err
		}
		b, err := asNumber(args[1], "that")
		if err != nil {
			return nil, err
		}
		return boolWord(fn(a, b)), nil
	}
}

func equalOp(wantEqual bool) registry.PrimitiveFunc {
	return func(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
		eq := equalDatum(args[0], args[1])
		return boolWord(eq == wantEqual), nil
	}
}

func predicate(fn func(datum.Datum) bool) registry.PrimitiveFunc {
	return func(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
		return boolWord(fn(args[0])), nil
	}
}
