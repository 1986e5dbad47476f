package datum

// Op discriminates what an AST Node does when the evaluator reaches it --
// the "generator function pointer (or equivalent tag)" of spec 3.1. The
// actual dispatch target for OpCall is resolved by name through the
// procedure registry at evaluation time, not stored on the node itself:
// that keeps this package free of any dependency on the evaluator or
// registry, which is what lets registry and eval both depend on datum
// without a cycle back.
type Op uint8

const (
	// OpCall invokes the command/operator named by Node.Name with
	// Node.Children as already-evaluated arguments.
	OpCall Op = iota
	// OpLiteral yields Node.Literal directly: a quoted word, a number, a
	// sublist, or an array literal.
	OpLiteral
	// OpVarRef reads the variable named by Node.Name (":name").
	OpVarRef
	// OpParen wraps a single child that came from an explicit "(...)":
	// either a plain grouped expression, or a command call the
	// parentheses made variadic (the child is then the OpCall itself,
	// already holding every collected argument).
	OpParen
)

// RetType is the declared return-type tag the tree builder stamps on a
// node, per spec 3.1.
type RetType uint8

const (
	RetDatum RetType = iota
	RetReal
	RetBool
	RetNothing
)

// Node is one semantic step of a parsed program.
type Node struct {
	Op       Op
	Name     string // semantic head word (key form), for OpCall/OpVarRef
	Ret      RetType
	Children []*Node
	Literal  Datum // populated when Op == OpLiteral

	// Line identifies the node's source line, for "at line ..."
	// diagnostics (spec 7's user-visible failure format).
	Line int
}

func (n *Node) Kind() Kind { return KindNode }
