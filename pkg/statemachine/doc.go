// Package statemachine implements a small thread-safe finite state machine
// with guarded transitions and side-effect actions.
//
// Machines are declared up front with functional options and then driven by
// events:
//
//	draft := statemachine.StringState("draft")
//	queued := statemachine.StringState("queued")
//	submit := statemachine.StringEvent("submit")
//
//	m := statemachine.MustNew(draft,
//		statemachine.WithTransition(draft, queued, submit),
//	)
//
//	if err := m.Fire(ctx, submit, nil); err != nil {
//		// no transition registered, guard rejected it, or an action failed
//	}
//
// Multiple transitions may share a from/event pair; the first whose guards
// all pass wins, which allows guard-based branching. Actions run before the
// state changes and abort the transition on error.
package statemachine
