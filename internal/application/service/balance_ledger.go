package service

import (
	"context"
	"fmt"

	"github.com/garyjia/leave-bot/internal/application/port"
	"github.com/garyjia/leave-bot/internal/domain/entity"
	"github.com/garyjia/leave-bot/internal/domain/leave"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// BalanceLedger owns the per-employee remaining-day counters. All
// balance mutations in the system flow through Debit and Credit; no
// other component touches the counters, which is what keeps the
// never-negative invariant enforceable in one place.
type BalanceLedger interface {
	// GetOrCreate returns the employee's balance, creating a row with the
	// configured defaults on first reference.
	GetOrCreate(ctx context.Context, employeeID, employeeName string) (*entity.LeaveBalance, error)

	// Debit subtracts amount days from the category counter. Returns
	// *leave.InsufficientBalanceError when the counter holds less than
	// amount; in that case nothing is mutated.
	Debit(ctx context.Context, employeeID, category string, amount int) error

	// Credit adds amount days back to the category counter. Unused by the
	// current lifecycle; kept for reversal support.
	Credit(ctx context.Context, employeeID, category string, amount int) error
}

type balanceLedgerImpl struct {
	balanceRepo port.BalanceRepository
	defaults    entity.DefaultBalances
	logger      Logger
}

// NewBalanceLedger creates a BalanceLedger backed by the given repository.
func NewBalanceLedger(balanceRepo port.BalanceRepository, defaults entity.DefaultBalances, logger Logger) BalanceLedger {
	return &balanceLedgerImpl{
		balanceRepo: balanceRepo,
		defaults:    defaults,
		logger:      logger,
	}
}

func (l *balanceLedgerImpl) GetOrCreate(ctx context.Context, employeeID, employeeName string) (*entity.LeaveBalance, error) {
	balance, err := l.balanceRepo.GetOrCreate(ctx, employeeID, employeeName, l.defaults)
	if err != nil {
		l.logger.Error("Failed to get or create balance", "error", err, "employee_id", employeeID)
		return nil, fmt.Errorf("get or create balance: %w", err)
	}
	return balance, nil
}

func (l *balanceLedgerImpl) Debit(ctx context.Context, employeeID, category string, amount int) error {
	if !entity.IsValidCategory(category) {
		return leave.ErrUnknownCategory
	}
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive: %d", amount)
	}

	ok, err := l.balanceRepo.Debit(ctx, employeeID, category, amount)
	if err != nil {
		l.logger.Error("Failed to debit balance", "error", err, "employee_id", employeeID, "category", category)
		return fmt.Errorf("debit balance: %w", err)
	}
	if !ok {
		balance, err := l.balanceRepo.GetOrCreate(ctx, employeeID, "", l.defaults)
		if err != nil {
			return fmt.Errorf("read balance after rejected debit: %w", err)
		}
		remaining, _ := balance.Remaining(category)
		return &leave.InsufficientBalanceError{
			Category:  category,
			Requested: amount,
			Remaining: remaining,
		}
	}

	l.logger.Info("Balance debited", "employee_id", employeeID, "category", category, "amount", amount)
	return nil
}

func (l *balanceLedgerImpl) Credit(ctx context.Context, employeeID, category string, amount int) error {
	if !entity.IsValidCategory(category) {
		return leave.ErrUnknownCategory
	}
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive: %d", amount)
	}

	if err := l.balanceRepo.Credit(ctx, employeeID, category, amount); err != nil {
		l.logger.Error("Failed to credit balance", "error", err, "employee_id", employeeID, "category", category)
		return fmt.Errorf("credit balance: %w", err)
	}

	l.logger.Info("Balance credited", "employee_id", employeeID, "category", category, "amount", amount)
	return nil
}
