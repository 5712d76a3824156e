package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerApprove Trigger = "APPROVE"
	TriggerDecline Trigger = "DECLINE"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
