package datum

// OptionalParam is a `[:name expr...]` optional parameter: if the caller
// doesn't supply an argument, Default is evaluated (in the new frame) and
// the result bound instead.
type OptionalParam struct {
	Name    string
	Default []*Node // the default-expression list, evaluated lazily
}

// Line is one line of a procedure body: its parsed root nodes, plus the
// tag this line is labeled with, if any ("TAG "foo" as a top-level
// line, per spec 4.5 "trailing tag-labeled nodes").
type Line struct {
	Nodes []*Node
	Tag   string // key form; "" if this line carries no tag
	Text  string // original source text of this line, for FULLTEXT/TEXT
}

// Procedure is a user-defined TO procedure or a .MACRO, per spec 3.1/4.6.
// Primitives are not represented as a Procedure: they are looked up by
// name directly in the registry (see package registry) and never
// materialize as a first-class Datum.
type Procedure struct {
	Name     string
	Required []string
	Optional []OptionalParam
	Rest     string // "" if there is no rest parameter

	MinArity     int
	DefaultArity int
	MaxArity     int // -1 denotes unbounded

	Body []Line
	Tags map[string]int // tag key form -> index into Body, for GOTO

	IsMacro bool

	// SourceText is the original source text as typed (or replayed from
	// the reader's line history), preserved for FULLTEXT.
	SourceText string
}

func (p *Procedure) Kind() Kind { return KindProcedure }

// LineForTag resolves a GOTO target; ok is false if the tag is unknown in
// this procedure.
func (p *Procedure) LineForTag(tag string) (int, bool) {
	i, ok := p.Tags[tag]
	return i, ok
}
