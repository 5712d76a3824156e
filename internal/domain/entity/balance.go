package entity

import "time"

// LeaveBalance holds the remaining-day counters for one employee.
// One row per employee, created lazily with the configured defaults on
// first reference. Counters are mutated only through the ledger's
// debit/credit operations and never go negative.
type LeaveBalance struct {
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Annual       int       `json:"annual"`
	Sick         int       `json:"sick"`
	Personal     int       `json:"personal"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Remaining returns the counter for the given category.
func (b *LeaveBalance) Remaining(category string) (int, bool) {
	switch category {
	case CategoryAnnual:
		return b.Annual, true
	case CategorySick:
		return b.Sick, true
	case CategoryPersonal:
		return b.Personal, true
	default:
		return 0, false
	}
}

// DefaultBalances holds the counters granted to a previously unseen
// employee.
type DefaultBalances struct {
	Annual   int
	Sick     int
	Personal int
}
