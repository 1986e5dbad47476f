package datum

import "sync/atomic"

// List is a singly-linked head/tail pair. Every List's tail is either
// another List or the shared EmptyList singleton -- a List is never its
// own tail via the non-mutating constructors below (Cons, FromSlice,
// Builder); only the dot-mutators can introduce a cycle, and the
// non-dot mutators (SetHeadChecked, SetTailChecked, SetItemAtChecked)
// refuse to.
type List struct {
	head Datum
	tail *List

	// A List carries no parsed-AST cache, inline or in a side table:
	// every RunList of a list run-parses and tree-builds its tokens
	// again.
}

// emptyList is the single shared empty-list instance. Any operation that
// would mutate it is forbidden; it is returned, never copied, by every
// "empty list" constructor.
var emptyList = &List{}

// EmptyList returns the shared empty-list singleton.
func EmptyList() *List { return emptyList }

func (l *List) Kind() Kind { return KindList }

// IsEmpty reports whether l is the empty-list singleton.
func (l *List) IsEmpty() bool { return l == emptyList }

// Cons returns a new non-mutating List of head fput onto tail.
func Cons(head Datum, tail *List) *List {
	if tail == nil {
		tail = emptyList
	}
	return &List{head: head, tail: tail}
}

// Head returns the first element; callers must check IsEmpty first.
func (l *List) Head() Datum { return l.head }

// Tail returns the rest of the list (butfirst); callers must check
// IsEmpty first.
func (l *List) Tail() *List { return l.tail }

// Count is O(n).
func (l *List) Count() int {
	n := 0
	for c := l; !c.IsEmpty(); c = c.tail {
		n++
	}
	return n
}

// ItemAt returns the 1-based i-th element, O(n).
func (l *List) ItemAt(i int) (Datum, bool) {
	if i < 1 {
		return nil, false
	}
	c := l
	for ; i > 1 && !c.IsEmpty(); i-- {
		c = c.tail
	}
	if c.IsEmpty() {
		return nil, false
	}
	return c.head, true
}

// Contains reports whether v appears as some element of l, per eq.
func (l *List) Contains(v Datum, eq func(a, b Datum) bool) bool {
	for c := l; !c.IsEmpty(); c = c.tail {
		if eq(c.head, v) {
			return true
		}
	}
	return false
}

// IsMember is an alias of Contains kept for naming symmetry with the
// Logo primitive MEMBERP.
func (l *List) IsMember(v Datum, eq func(a, b Datum) bool) bool { return l.Contains(v, eq) }

// FromMember returns the sublist starting at the first element equal to
// v, or the empty list if none matches.
func (l *List) FromMember(v Datum, eq func(a, b Datum) bool) *List {
	for c := l; !c.IsEmpty(); c = c.tail {
		if eq(c.head, v) {
			return c
		}
	}
	return emptyList
}

// Each streams the list's elements in order, stopping early if fn
// returns false.
func (l *List) Each(fn func(Datum) bool) {
	for c := l; !c.IsEmpty(); c = c.tail {
		if !fn(c.head) {
			return
		}
	}
}

// ToSlice collects l's elements into a slice.
func (l *List) ToSlice() []Datum {
	out := make([]Datum, 0, l.Count())
	l.Each(func(d Datum) bool { out = append(out, d); return true })
	return out
}

// FromSlice builds a List from items in order; origin-independent (it
// never looks at array origin, it only reads element order).
func FromSlice(items []Datum) *List {
	l := emptyList
	for i := len(items) - 1; i >= 0; i-- {
		l = Cons(items[i], l)
	}
	return l
}

// FromArray builds a List by copying an Array's elements in order.
func FromArray(a *Array) *List { return FromSlice(a.items) }

// Builder accumulates elements for O(1) amortized append while
// constructing a list; the result is conventionally treated as immutable
// once Build is called, per spec 4.2.
type Builder struct {
	head, tail *List
}

// Append adds v to the end of the list under construction.
func (b *Builder) Append(v Datum) {
	n := &List{head: v, tail: emptyList}
	if b.tail == nil {
		b.head = n
	} else {
		b.tail.tail = n
	}
	b.tail = n
}

// Build returns the accumulated list.
func (b *Builder) Build() *List {
	if b.head == nil {
		return emptyList
	}
	return b.head
}

// containsIdentity reports whether needle is reachable, by pointer
// identity, from hay -- used to gate the dangerous dot-mutators' non-dot
// counterparts against introducing a cycle. Per spec 9 "Cyclic potential
// in mutable lists", the check is recursive: it also descends into any
// Array elements, since an array can hold the very list being mutated.
func containsIdentity(hay Datum, needle Datum, seen map[Datum]bool) bool {
	if hay == needle {
		return true
	}
	if seen[hay] {
		return false
	}
	seen[hay] = true
	switch v := hay.(type) {
	case *List:
		for c := v; !c.IsEmpty(); c = c.tail {
			if containsIdentity(c.head, needle, seen) {
				return true
			}
		}
	case *Array:
		for _, e := range v.items {
			if containsIdentity(e, needle, seen) {
				return true
			}
		}
	}
	return false
}

// WouldCycle reports whether storing needle somewhere inside container
// would create a cycle, i.e. needle transitively contains container (or
// is container itself). This is the "any transitively containing
// reference is rejected" rule spec 9's Open Question resolves on.
func WouldCycle(container, needle Datum) bool {
	return containsIdentity(needle, container, map[Datum]bool{})
}

// SetHead mutates l's head in place. Dangerous: only reachable through a
// `.`-prefixed primitive (.SETFIRST); it performs no cycle check.
func (l *List) SetHead(v Datum) error {
	if l.IsEmpty() {
		return ErrMutateEmptyList
	}
	l.head = v
	return nil
}

// SetTail mutates l's tail in place. Dangerous: only reachable through a
// `.`-prefixed primitive (.SETBF); it performs no cycle check.
func (l *List) SetTail(v *List) error {
	if l.IsEmpty() {
		return ErrMutateEmptyList
	}
	l.tail = v
	return nil
}

// SetItemAt mutates the 1-based i-th cell in place. Dangerous: only
// reachable through a `.`-prefixed primitive (.SETITEM); it performs no
// cycle check.
func (l *List) SetItemAt(i int, v Datum) error {
	c := l
	for ; i > 1 && !c.IsEmpty(); i-- {
		c = c.tail
	}
	if c.IsEmpty() {
		return ErrIndexRange
	}
	c.head = v
	return nil
}

// SetHeadChecked is SETFIRST's backing mutator: refuses v if it would
// introduce a cycle.
func (l *List) SetHeadChecked(v Datum) error {
	if WouldCycle(l, v) {
		return ErrWouldCycle
	}
	return l.SetHead(v)
}

// SetTailChecked is SETBF's backing mutator: refuses v if it would
// introduce a cycle.
func (l *List) SetTailChecked(v *List) error {
	if WouldCycle(l, v) {
		return ErrWouldCycle
	}
	return l.SetTail(v)
}

// SetItemAtChecked is SETITEM's backing mutator: refuses v if it would
// introduce a cycle.
func (l *List) SetItemAtChecked(i int, v Datum) error {
	if WouldCycle(l, v) {
		return ErrWouldCycle
	}
	return l.SetItemAt(i, v)
}

var parseGenCounter uint64

// NextGeneration returns a fresh, monotonically increasing generation
// stamp; the procedure registry calls this on every define/redefine/erase
// (spec 4.4, 4.6).
func NextGeneration() uint64 { return atomic.AddUint64(&parseGenCounter, 1) }
