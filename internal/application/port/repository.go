package port

import (
	"context"
	"time"

	"github.com/garyjia/leave-bot/internal/domain/entity"
)

// RequestFilter narrows a request listing. Zero values mean "no filter".
type RequestFilter struct {
	RequesterID string
	Status      string
	Limit       int
}

// RequestRepository defines persistence operations for LeaveRequest.
// Requests are never deleted; decided ones are kept for reporting.
type RequestRepository interface {
	Create(ctx context.Context, req *entity.LeaveRequest) error
	GetByID(ctx context.Context, id string) (*entity.LeaveRequest, error)

	// MarkDecided transitions a request out of PENDING. The write must be
	// conditional on the stored status still being PENDING and report
	// whether it took effect, so that concurrent decisions serialize on
	// the store and all but the first observe a no-op.
	MarkDecided(ctx context.Context, id, status, note string, respondedAt time.Time) (bool, error)

	// ListRecent returns requests matching the filter, most recent first.
	ListRecent(ctx context.Context, filter RequestFilter) ([]*entity.LeaveRequest, error)
}

// BalanceRepository defines persistence operations for LeaveBalance.
type BalanceRepository interface {
	// GetOrCreate returns the employee's balance row, inserting one with
	// the given defaults if the employee has never been seen. It never
	// overwrites an existing row.
	GetOrCreate(ctx context.Context, employeeID, employeeName string, defaults entity.DefaultBalances) (*entity.LeaveBalance, error)

	// Debit atomically checks and subtracts amount from the category
	// counter. It reports false without mutating anything when the
	// counter holds less than amount; a counter can never go negative.
	Debit(ctx context.Context, employeeID, category string, amount int) (bool, error)

	// Credit adds amount back to the category counter. Reserved for
	// reversal support.
	Credit(ctx context.Context, employeeID, category string, amount int) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
