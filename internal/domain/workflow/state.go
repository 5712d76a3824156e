package workflow

// State represents a state in the leave request lifecycle
type State string

const (
	StatePending  State = "PENDING"
	StateApproved State = "APPROVED"
	StateDeclined State = "DECLINED"
)

var validStates = map[State]bool{
	StatePending:  true,
	StateApproved: true,
	StateDeclined: true,
}

var terminalStates = map[State]bool{
	StateApproved: true,
	StateDeclined: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a valid lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
