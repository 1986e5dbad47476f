package repl

import (
	"github.com/dcorbin/qlogo/internal/datum"
	"github.com/dcorbin/qlogo/internal/registry"
)

// pausePrimitive implements PAUSE (spec 4.9): enter a nested REPL on the
// current call frame. Its result is whatever value CONTINUE supplies;
// running off the end of input while paused is treated as a SYSTEM exit
// rather than silently resuming with nothing.
func (r *REPL) pausePrimitive(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	v, err := r.runNested()
	if err == nil {
		return v, nil
	}
	if err == errEndOfInput {
		return nil, &datum.FlowControl{
			FKind: datum.FlowError, Code: datum.ErrCustomThrow,
			ErrTag: datum.TagSystem, Message: "end of input while paused",
		}
	}
	return nil, err
}

// continuePrimitive implements CONTINUE v: it resumes the nearest
// enclosing PAUSE as if the pause primitive had returned v, by raising
// the PAUSE-tagged signal runNested is watching for (the redesign note's
// "PAUSE flow-control value carrying the continuation payload"). With
// no enclosing PAUSE to catch it, it surfaces as an ordinary uncaught
// error.
func (r *REPL) continuePrimitive(ctx registry.Context, args []datum.Datum) (datum.Datum, error) {
	return nil, &datum.FlowControl{
		FKind: datum.FlowError, Code: datum.ErrCustomThrow,
		ErrTag: datum.TagPause, Output: args[0], Message: "CONTINUE outside PAUSE",
	}
}
