package memory

import (
	"context"
	"sync"
	"time"

	"github.com/garyjia/leave-bot/internal/domain/entity"
)

// BalanceRepository is an in-memory port.BalanceRepository.
type BalanceRepository struct {
	mu       sync.Mutex
	balances map[string]*entity.LeaveBalance
}

// NewBalanceRepository creates an empty in-memory balance repository.
func NewBalanceRepository() *BalanceRepository {
	return &BalanceRepository{
		balances: make(map[string]*entity.LeaveBalance),
	}
}

// GetOrCreate returns the employee's balance, inserting the defaults on
// first reference. An existing row is never overwritten.
func (r *BalanceRepository) GetOrCreate(ctx context.Context, employeeID, employeeName string, defaults entity.DefaultBalances) (*entity.LeaveBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bal, ok := r.balances[employeeID]
	if !ok {
		bal = &entity.LeaveBalance{
			EmployeeID:   employeeID,
			EmployeeName: employeeName,
			Annual:       defaults.Annual,
			Sick:         defaults.Sick,
			Personal:     defaults.Personal,
			UpdatedAt:    time.Now(),
		}
		r.balances[employeeID] = bal
	}
	cp := *bal
	return &cp, nil
}

// Debit performs the atomic check-then-subtract under the lock.
func (r *BalanceRepository) Debit(ctx context.Context, employeeID, category string, amount int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bal, ok := r.balances[employeeID]
	if !ok {
		return false, nil
	}

	counter := r.counter(bal, category)
	if counter == nil || *counter < amount {
		return false, nil
	}
	*counter -= amount
	bal.UpdatedAt = time.Now()
	return true, nil
}

// Credit adds amount back to the category counter.
func (r *BalanceRepository) Credit(ctx context.Context, employeeID, category string, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bal, ok := r.balances[employeeID]
	if !ok {
		return nil
	}

	if counter := r.counter(bal, category); counter != nil {
		*counter += amount
		bal.UpdatedAt = time.Now()
	}
	return nil
}

func (r *BalanceRepository) counter(bal *entity.LeaveBalance, category string) *int {
	switch category {
	case entity.CategoryAnnual:
		return &bal.Annual
	case entity.CategorySick:
		return &bal.Sick
	case entity.CategoryPersonal:
		return &bal.Personal
	default:
		return nil
	}
}
