package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// State is a named state in the machine.
type State interface {
	Name() string
}

// Event is a named trigger for a state transition.
type Event interface {
	Name() string
}

// Action runs side effects during a transition. A non-nil error aborts the
// transition and leaves the machine in its current state.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Guard decides at runtime whether a transition may proceed.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Transition describes a state change triggered by an event.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard  // all must pass
	Actions []Action // run in order before the state changes
}

// StringState is a string-backed State for simple machines.
type StringState string

func (s StringState) Name() string { return string(s) }

// StringEvent is a string-backed Event for simple machines.
type StringEvent string

func (e StringEvent) Name() string { return string(e) }

// Machine is a thread-safe in-memory finite state machine. Transitions are
// indexed by [fromState][event] for O(1) lookup.
type Machine struct {
	initial     State
	current     State
	transitions map[string]map[string][]Transition
	mu          sync.RWMutex
}

func newMachine(initial State) *Machine {
	return &Machine{
		initial:     initial,
		current:     initial,
		transitions: make(map[string]map[string][]Transition),
	}
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// AddTransition registers a transition. Several transitions may share the
// same from/event pair; guards pick between them at Fire time.
func (m *Machine) AddTransition(from, to State, event Event, guards []Guard, actions []Action) error {
	if from == nil || to == nil || event == nil {
		return ErrInvalidTransition
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fromName := from.Name()
	if _, ok := m.transitions[fromName]; !ok {
		m.transitions[fromName] = make(map[string][]Transition)
	}
	m.transitions[fromName][event.Name()] = append(m.transitions[fromName][event.Name()], Transition{
		From:    from,
		To:      to,
		Event:   event,
		Guards:  guards,
		Actions: actions,
	})
	return nil
}

// Fire applies event to the current state. The first registered transition
// whose guards all pass wins; its actions run before the state changes, and
// any action error aborts the transition.
func (m *Machine) Fire(ctx context.Context, event Event, data any) error {
	if event == nil {
		return ErrInvalidEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	candidates := m.transitions[m.current.Name()][event.Name()]
	if len(candidates) == 0 {
		return &NoTransitionError{State: m.current.Name(), Event: event.Name()}
	}

	var chosen *Transition
	for i := range candidates {
		if m.guardsPass(ctx, &candidates[i], event, data) {
			chosen = &candidates[i]
			break
		}
	}
	if chosen == nil {
		return &RejectedError{State: m.current.Name(), Event: event.Name()}
	}

	for _, action := range chosen.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, m.current, chosen.To, event, data); err != nil {
			return fmt.Errorf("action failed: %w", err)
		}
	}

	m.current = chosen.To
	return nil
}

// CanFire reports whether Fire would succeed for event, without running
// actions or changing state. Guards are still evaluated.
func (m *Machine) CanFire(ctx context.Context, event Event, data any) bool {
	if event == nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.transitions[m.current.Name()][event.Name()] {
		if m.guardsPass(ctx, &m.transitions[m.current.Name()][event.Name()][i], event, data) {
			return true
		}
	}
	return false
}

// Reset returns the machine to its initial state.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}

func (m *Machine) guardsPass(ctx context.Context, t *Transition, event Event, data any) bool {
	for _, guard := range t.Guards {
		if guard != nil && !guard(ctx, m.current, event, data) {
			return false
		}
	}
	return true
}
