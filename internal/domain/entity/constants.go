package entity

// Status constants for LeaveRequest.
// PENDING is the sole initial status; APPROVED and DECLINED are
// terminal. No other transition exists.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusDeclined = "DECLINED"
)

// Leave category constants. Each category has its own balance counter.
const (
	CategoryAnnual   = "ANNUAL"
	CategorySick     = "SICK"
	CategoryPersonal = "PERSONAL"
)

// Decision constants carried by the approver's card action.
const (
	DecisionApprove = "APPROVE"
	DecisionDecline = "DECLINE"
)

// Categories lists all valid leave categories.
var Categories = []string{CategoryAnnual, CategorySick, CategoryPersonal}

// IsValidCategory reports whether category is one of the known leave
// categories.
func IsValidCategory(category string) bool {
	switch category {
	case CategoryAnnual, CategorySick, CategoryPersonal:
		return true
	}
	return false
}

// CategoryDisplayName returns the human-readable name used in chat
// messages.
func CategoryDisplayName(category string) string {
	switch category {
	case CategoryAnnual:
		return "Annual Leave"
	case CategorySick:
		return "Sick Leave"
	case CategoryPersonal:
		return "Personal Leave"
	default:
		return category
	}
}
