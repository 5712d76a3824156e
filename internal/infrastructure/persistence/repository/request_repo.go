package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/leave-bot/internal/application/port"
	"github.com/garyjia/leave-bot/internal/domain/entity"
	"github.com/garyjia/leave-bot/internal/domain/leave"
	"github.com/garyjia/leave-bot/internal/infrastructure/persistence/sqlite"
)

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// RequestRepository implements port.RequestRepository over SQLite.
type RequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new leave request repository
func NewRequestRepository(db *sql.DB, logger *zap.Logger) port.RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

const requestColumns = `
	id, requester_id, requester_name, category, start_date, end_date,
	days, reason, approver_id, approver_name, status, response_note,
	requested_at, responded_at`

// Create persists a new leave request.
func (r *RequestRepository) Create(ctx context.Context, req *entity.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests (
			id, requester_id, requester_name, category, start_date, end_date,
			days, reason, approver_id, approver_name, status, requested_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var reason sql.NullString
	if req.Reason != "" {
		reason = sql.NullString{String: req.Reason, Valid: true}
	}

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		req.ID,
		req.RequesterID,
		req.RequesterName,
		req.Category,
		req.StartDate.Format(time.DateOnly),
		req.EndDate.Format(time.DateOnly),
		req.Days,
		reason,
		req.ApproverID,
		req.ApproverName,
		req.Status,
		req.RequestedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		r.logger.Error("Failed to create leave request",
			zap.String("id", req.ID),
			zap.String("requester_id", req.RequesterID),
			zap.Error(err))
		return fmt.Errorf("failed to create leave request: %w", err)
	}

	return nil
}

// GetByID retrieves a request by its id.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*entity.LeaveRequest, error) {
	query := `SELECT` + requestColumns + ` FROM leave_requests WHERE id = ?`

	req, err := scanRequest(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, leave.ErrRequestNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get leave request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get leave request: %w", err)
	}
	return req, nil
}

// MarkDecided transitions the request out of PENDING. The UPDATE is
// conditional on the stored status still being PENDING; RowsAffected
// tells the caller whether this decision won, which is the per-request
// serialization point that keeps double decisions out.
func (r *RequestRepository) MarkDecided(ctx context.Context, id, status, note string, respondedAt time.Time) (bool, error) {
	query := `
		UPDATE leave_requests
		SET status = ?, response_note = ?, responded_at = ?
		WHERE id = ? AND status = ?
	`

	var noteVal sql.NullString
	if note != "" {
		noteVal = sql.NullString{String: note, Valid: true}
	}

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		status,
		noteVal,
		respondedAt.UTC().Format(time.RFC3339Nano),
		id,
		entity.StatusPending,
	)
	if err != nil {
		r.logger.Error("Failed to mark leave request decided",
			zap.String("id", id),
			zap.String("status", status),
			zap.Error(err))
		return false, fmt.Errorf("failed to mark leave request decided: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		// Either the id is unknown or another decision got there first.
		if _, err := r.GetByID(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}

	return true, nil
}

// ListRecent returns requests matching the filter, most recent first.
func (r *RequestRepository) ListRecent(ctx context.Context, filter port.RequestFilter) ([]*entity.LeaveRequest, error) {
	query := `SELECT` + requestColumns + ` FROM leave_requests`

	var conds []string
	var args []interface{}
	if filter.RequesterID != "" {
		conds = append(conds, "requester_id = ?")
		args = append(args, filter.RequesterID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY requested_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list leave requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.LeaveRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*entity.LeaveRequest, error) {
	var req entity.LeaveRequest
	var startDate, endDate, requestedAt string
	var reason, responseNote, respondedAt sql.NullString

	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.RequesterName,
		&req.Category,
		&startDate,
		&endDate,
		&req.Days,
		&reason,
		&req.ApproverID,
		&req.ApproverName,
		&req.Status,
		&responseNote,
		&requestedAt,
		&respondedAt,
	)
	if err != nil {
		return nil, err
	}

	if req.StartDate, err = time.Parse(time.DateOnly, startDate); err != nil {
		return nil, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if req.EndDate, err = time.Parse(time.DateOnly, endDate); err != nil {
		return nil, fmt.Errorf("failed to parse end_date: %w", err)
	}
	if req.RequestedAt, err = time.Parse(time.RFC3339Nano, requestedAt); err != nil {
		return nil, fmt.Errorf("failed to parse requested_at: %w", err)
	}
	if respondedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, respondedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse responded_at: %w", err)
		}
		req.RespondedAt = &t
	}
	if reason.Valid {
		req.Reason = reason.String
	}
	if responseNote.Valid {
		req.ResponseNote = responseNote.String
	}

	return &req, nil
}

// getExecutor returns appropriate executor based on context
func (r *RequestRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.RequestRepository = (*RequestRepository)(nil)
