package datum

import "sync/atomic"

// Handle is a smart handle holding one strong reference to a Datum, per
// spec 3.1 "Ownership and lifetime". Go's tracing garbage collector
// already reclaims unreachable values -- including reference cycles --
// so Handle does not perform manual destruction the way the original
// reference-counted C++ implementation does. What Handle keeps from the original
// design is the explicit Retain/Release *protocol*: callers that share a
// mutable List or Array go through Retain/Release symmetrically, which
// (a) lets diagnostics assert "every Retain was Released" in tests, and
// (b) gives the two singletons (Nothing, EmptyList) a place to opt out
// of bookkeeping entirely, matching spec 3.1's "never retained-counted
// down to destruction".
type Handle struct {
	d  Datum
	rc *int32
}

// NewHandle wraps d in a fresh Handle with one strong reference. The two
// singletons are recognized and never get a counter: Retain/Release on a
// Handle wrapping them are no-ops forever.
func NewHandle(d Datum) Handle {
	if isSingleton(d) {
		return Handle{d: d}
	}
	one := int32(1)
	return Handle{d: d, rc: &one}
}

func isSingleton(d Datum) bool {
	if IsNothing(d) {
		return true
	}
	if l, ok := d.(*List); ok && l.IsEmpty() {
		return true
	}
	return false
}

// Datum returns the held value.
func (h Handle) Datum() Datum { return h.d }

// Retain increments the strong count and returns h for chaining.
func (h Handle) Retain() Handle {
	if h.rc != nil {
		atomic.AddInt32(h.rc, 1)
	}
	return h
}

// Release decrements the strong count. It reports true exactly once, the
// instant the count reaches zero, so a caller can run cleanup (e.g.
// unregistering a traced name); the underlying Go value is left for the
// garbage collector regardless.
func (h Handle) Release() (destroyed bool) {
	if h.rc == nil {
		return false
	}
	return atomic.AddInt32(h.rc, -1) == 0
}

// Count reports the current strong count, or -1 for a singleton.
func (h Handle) Count() int32 {
	if h.rc == nil {
		return -1
	}
	return atomic.LoadInt32(h.rc)
}
