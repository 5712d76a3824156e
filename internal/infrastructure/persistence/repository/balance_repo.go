package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/leave-bot/internal/application/port"
	"github.com/garyjia/leave-bot/internal/domain/entity"
	"github.com/garyjia/leave-bot/internal/infrastructure/persistence/sqlite"
)

// balanceColumn maps a leave category to its counter column. The map is
// the only place category names meet SQL identifiers, so no user input
// is ever spliced into a statement.
var balanceColumn = map[string]string{
	entity.CategoryAnnual:   "annual_days",
	entity.CategorySick:     "sick_days",
	entity.CategoryPersonal: "personal_days",
}

// BalanceRepository implements port.BalanceRepository over SQLite.
type BalanceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBalanceRepository creates a new leave balance repository
func NewBalanceRepository(db *sql.DB, logger *zap.Logger) port.BalanceRepository {
	return &BalanceRepository{
		db:     db,
		logger: logger,
	}
}

// GetOrCreate returns the employee's balance row, inserting the
// defaults on first reference. INSERT OR IGNORE keeps a concurrent
// first touch from overwriting anything.
func (r *BalanceRepository) GetOrCreate(ctx context.Context, employeeID, employeeName string, defaults entity.DefaultBalances) (*entity.LeaveBalance, error) {
	insert := `
		INSERT OR IGNORE INTO leave_balances (
			employee_id, employee_name, annual_days, sick_days, personal_days, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.getExecutor(ctx).ExecContext(ctx, insert,
		employeeID,
		employeeName,
		defaults.Annual,
		defaults.Sick,
		defaults.Personal,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		r.logger.Error("Failed to insert default balance",
			zap.String("employee_id", employeeID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to insert default balance: %w", err)
	}

	query := `
		SELECT employee_id, employee_name, annual_days, sick_days, personal_days, updated_at
		FROM leave_balances WHERE employee_id = ?
	`
	var bal entity.LeaveBalance
	var updatedAt string
	err = r.getExecutor(ctx).QueryRowContext(ctx, query, employeeID).Scan(
		&bal.EmployeeID,
		&bal.EmployeeName,
		&bal.Annual,
		&bal.Sick,
		&bal.Personal,
		&updatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to get balance",
			zap.String("employee_id", employeeID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	if bal.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &bal, nil
}

// Debit atomically checks and subtracts in one conditional UPDATE; the
// WHERE clause is what keeps a counter from ever going negative.
func (r *BalanceRepository) Debit(ctx context.Context, employeeID, category string, amount int) (bool, error) {
	column, ok := balanceColumn[category]
	if !ok {
		return false, fmt.Errorf("unknown balance column for category %q", category)
	}

	query := fmt.Sprintf(`
		UPDATE leave_balances
		SET %s = %s - ?, updated_at = ?
		WHERE employee_id = ? AND %s >= ?
	`, column, column, column)

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		amount,
		time.Now().UTC().Format(time.RFC3339Nano),
		employeeID,
		amount,
	)
	if err != nil {
		r.logger.Error("Failed to debit balance",
			zap.String("employee_id", employeeID),
			zap.String("category", category),
			zap.Error(err))
		return false, fmt.Errorf("failed to debit balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// Credit adds amount back to the category counter.
func (r *BalanceRepository) Credit(ctx context.Context, employeeID, category string, amount int) error {
	column, ok := balanceColumn[category]
	if !ok {
		return fmt.Errorf("unknown balance column for category %q", category)
	}

	query := fmt.Sprintf(`
		UPDATE leave_balances
		SET %s = %s + ?, updated_at = ?
		WHERE employee_id = ?
	`, column, column)

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		amount,
		time.Now().UTC().Format(time.RFC3339Nano),
		employeeID,
	)
	if err != nil {
		r.logger.Error("Failed to credit balance",
			zap.String("employee_id", employeeID),
			zap.String("category", category),
			zap.Error(err))
		return fmt.Errorf("failed to credit balance: %w", err)
	}
	return nil
}

// getExecutor returns appropriate executor based on context
func (r *BalanceRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.BalanceRepository = (*BalanceRepository)(nil)
