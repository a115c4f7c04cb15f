// Package lifecycle holds the status machines for activities and attendance.
//
// Transitions are only ever triggered by an explicit status-change call; nothing here
// advances state from the wall clock.
package lifecycle

import (
	"strings"

	"clubhouse/internal/domain/schedule"
)

// Machine is a finite transition table over a string-backed status type.
// A status with no outgoing edges is terminal.
type Machine[S ~string] struct {
	name    string
	initial S
	edges   map[S][]S
}

// newMachine builds a machine; every state must appear as a key of edges.
func newMachine[S ~string](name string, initial S, edges map[S][]S) Machine[S] {
	return Machine[S]{name: name, initial: initial, edges: edges}
}

// Initial returns the status a new record starts in.
func (m Machine[S]) Initial() S { return m.initial }

// Known reports whether s is a state of this machine.
func (m Machine[S]) Known(s S) bool {
	_, ok := m.edges[s]
	return ok
}

// Terminal reports whether s has no outgoing transition.
// PRE: s is Known
func (m Machine[S]) Terminal(s S) bool {
	return m.Known(s) && len(m.edges[s]) == 0
}

// CanTransition reports whether from -> to is an edge of the table.
func (m Machine[S]) CanTransition(from, to S) bool {
	for _, next := range m.edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates from -> to.
// POST: nil iff the edge exists; otherwise a KindInvalidTransition rejection
func (m Machine[S]) Transition(from, to S) error {
	if !m.Known(to) {
		return schedule.Reject(schedule.KindInvalidTransition, "%q is not a %s status", string(to), m.name)
	}
	if !m.CanTransition(from, to) {
		return schedule.Reject(schedule.KindInvalidTransition, "%s cannot move from %s to %s", m.name, string(from), string(to))
	}
	return nil
}

// Parse maps raw input onto a known state, ignoring case and padding.
// POST: ok is false when raw names no state
func (m Machine[S]) Parse(raw string) (S, bool) {
	s := S(strings.ToLower(strings.TrimSpace(raw)))
	return s, m.Known(s)
}

// States returns every state of the machine, initial first.
func (m Machine[S]) States() []S {
	out := []S{m.initial}
	for s := range m.edges {
		if s != m.initial {
			out = append(out, s)
		}
	}
	return out
}
