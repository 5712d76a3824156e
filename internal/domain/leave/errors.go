package leave

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDateRange is returned when the end date is before the start date
	ErrInvalidDateRange = errors.New("end date is before start date")

	// ErrUnknownCategory is returned for a leave category outside the known set
	ErrUnknownCategory = errors.New("unknown leave category")

	// ErrZeroBusinessDays is returned when the requested range contains no business days
	ErrZeroBusinessDays = errors.New("requested range contains no business days")

	// ErrRequestNotFound is returned when a request id resolves to nothing
	ErrRequestNotFound = errors.New("leave request not found")

	// ErrAlreadyDecided is returned when a decision targets a request that is
	// no longer pending. Duplicate deliveries of the same card action land here.
	ErrAlreadyDecided = errors.New("leave request already decided")

	// ErrNotApprover is returned when the deciding actor is not the approver
	// the request was submitted to
	ErrNotApprover = errors.New("actor is not the assigned approver")
)

// InsufficientBalanceError is returned when a requested or approved
// leave exceeds the remaining counter for its category. ShortBy is
// surfaced to the user.
type InsufficientBalanceError struct {
	Category  string
	Requested int
	Remaining int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: requested %d days, %d remaining (short by %d)",
		e.Category, e.Requested, e.Remaining, e.ShortBy())
}

// ShortBy returns how many days the request exceeds the remaining balance.
func (e *InsufficientBalanceError) ShortBy() int {
	return e.Requested - e.Remaining
}

// IsInsufficientBalance reports whether err is an InsufficientBalanceError.
func IsInsufficientBalance(err error) bool {
	var target *InsufficientBalanceError
	return errors.As(err, &target)
}
