package entity

import "time"

// LeaveRequest represents a single leave request and its outcome.
// A request is created exactly once at submission and mutated exactly
// once by the approver's decision. It is never deleted; decided
// requests are retained for reporting.
type LeaveRequest struct {
	ID string `json:"id"`

	// Requester
	RequesterID   string `json:"requester_id"`
	RequesterName string `json:"requester_name"`

	// Request details
	Category  string    `json:"category"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Days      int       `json:"days"`
	Reason    string    `json:"reason,omitempty"`

	// Approver
	ApproverID   string `json:"approver_id"`
	ApproverName string `json:"approver_name"`

	// Status and timing. RespondedAt is set exactly once, on the first
	// transition out of PENDING, and ResponseNote may carry a note from
	// the approver (or a system-generated auto-decline reason).
	Status       string     `json:"status"`
	ResponseNote string     `json:"response_note,omitempty"`
	RequestedAt  time.Time  `json:"requested_at"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
}

// IsPending reports whether the request still awaits a decision.
func (r *LeaveRequest) IsPending() bool {
	return r.Status == StatusPending
}
