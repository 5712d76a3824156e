package workflow

import "fmt"

// Machine tracks the current lifecycle state of one leave request and
// validates transitions against the transition table. The table is
// closed: PENDING may move to APPROVED or DECLINED and nothing else;
// terminal states permit no triggers.
type Machine struct {
	current     State
	transitions map[State]map[Trigger]State
}

// transitionTable is the complete leave lifecycle. Both decision
// triggers are only ever permitted from PENDING.
var transitionTable = map[State]map[Trigger]State{
	StatePending: {
		TriggerApprove: StateApproved,
		TriggerDecline: StateDeclined,
	},
}

// NewMachine creates a machine positioned at the given initial state.
func NewMachine(initial State) (*Machine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, initial)
	}
	return &Machine{
		current:     initial,
		transitions: transitionTable,
	}, nil
}

// State returns the current state
func (m *Machine) State() State {
	return m.current
}

// CanFire returns true if the trigger is permitted in the current state
func (m *Machine) CanFire(trigger Trigger) bool {
	_, ok := m.transitions[m.current][trigger]
	return ok
}

// Fire executes the trigger, transitioning to the new state if the
// transition table allows it.
func (m *Machine) Fire(trigger Trigger) error {
	next, ok := m.transitions[m.current][trigger]
	if !ok {
		return fmt.Errorf("%w: cannot fire trigger %s from state %s", ErrInvalidTransition, trigger, m.current)
	}
	m.current = next
	return nil
}

// PermittedTriggers returns all triggers that can be fired in the current state
func (m *Machine) PermittedTriggers() []Trigger {
	perms := m.transitions[m.current]
	triggers := make([]Trigger, 0, len(perms))
	for trigger := range perms {
		triggers = append(triggers, trigger)
	}
	return triggers
}
