package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/leave-bot/internal/application/port"
	"github.com/garyjia/leave-bot/internal/domain/entity"
	"github.com/garyjia/leave-bot/internal/domain/leave"
	"github.com/garyjia/leave-bot/internal/domain/workflow"
)

// AutoDeclineNote is the system-generated response note recorded when an
// approval is converted to a decline because the requester's balance no
// longer covers the request.
const AutoDeclineNote = "insufficient balance at approval time"

// SubmitInput carries a leave submission from the transport layer.
type SubmitInput struct {
	RequesterID   string
	RequesterName string
	Category      string
	StartDate     time.Time
	EndDate       time.Time
	Reason        string
	ApproverID    string
	ApproverName  string
}

// DecideInput carries an approver's decision on a pending request.
type DecideInput struct {
	RequestID string
	ActorID   string
	ActorName string
	Decision  string // entity.DecisionApprove or entity.DecisionDecline
	Note      string
}

// LeaveService orchestrates the leave request lifecycle: validation,
// business-day calculation, the balance check, persistence, and the
// approver's decision with its balance debit.
type LeaveService interface {
	Submit(ctx context.Context, in SubmitInput) (*entity.LeaveRequest, error)
	Decide(ctx context.Context, in DecideInput) (*entity.LeaveRequest, error)
	GetBalance(ctx context.Context, employeeID, employeeName string) (*entity.LeaveBalance, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.LeaveRequest, error)
}

type leaveServiceImpl struct {
	requestRepo port.RequestRepository
	ledger      BalanceLedger
	txManager   port.TransactionManager
	notifier    port.Notifier
	logger      Logger
	now         func() time.Time
}

// NewLeaveService creates a new LeaveService.
func NewLeaveService(
	requestRepo port.RequestRepository,
	ledger BalanceLedger,
	txManager port.TransactionManager,
	notifier port.Notifier,
	logger Logger,
) LeaveService {
	return &leaveServiceImpl{
		requestRepo: requestRepo,
		ledger:      ledger,
		txManager:   txManager,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit validates a submission, checks the requester's balance and
// persists a new PENDING request. The balance is only checked here;
// the debit happens at approval time. On any validation failure no
// record is created and nothing is mutated.
func (s *leaveServiceImpl) Submit(ctx context.Context, in SubmitInput) (*entity.LeaveRequest, error) {
	if !entity.IsValidCategory(in.Category) {
		return nil, leave.ErrUnknownCategory
	}

	days, err := leave.CountBusinessDays(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	if days == 0 {
		// Weekend-only ranges would debit nothing; reject them outright.
		return nil, leave.ErrZeroBusinessDays
	}

	balance, err := s.ledger.GetOrCreate(ctx, in.RequesterID, in.RequesterName)
	if err != nil {
		return nil, err
	}

	remaining, _ := balance.Remaining(in.Category)
	if days > remaining {
		return nil, &leave.InsufficientBalanceError{
			Category:  in.Category,
			Requested: days,
			Remaining: remaining,
		}
	}

	req := &entity.LeaveRequest{
		ID:            uuid.NewString(),
		RequesterID:   in.RequesterID,
		RequesterName: in.RequesterName,
		Category:      in.Category,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Days:          days,
		Reason:        in.Reason,
		ApproverID:    in.ApproverID,
		ApproverName:  in.ApproverName,
		Status:        entity.StatusPending,
		RequestedAt:   s.now(),
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		s.logger.Error("Failed to create leave request", "error", err, "requester_id", in.RequesterID)
		return nil, fmt.Errorf("create leave request: %w", err)
	}

	s.logger.Info("Leave request submitted",
		"request_id", req.ID,
		"requester_id", req.RequesterID,
		"category", req.Category,
		"days", req.Days)

	// Notification failures must not fail a persisted submission.
	if err := s.notifier.NotifyApprover(ctx, req); err != nil {
		s.logger.Error("Failed to notify approver", "error", err, "request_id", req.ID)
	}
	if err := s.notifier.ConfirmSubmission(ctx, req); err != nil {
		s.logger.Error("Failed to confirm submission to requester", "error", err, "request_id", req.ID)
	}

	return req, nil
}

// Decide applies the approver's decision. The pending check, the status
// write and the balance debit run inside one transaction, and the status
// write is conditional on the stored status still being PENDING, so two
// concurrent decisions on the same request cannot both succeed: the
// loser observes ErrAlreadyDecided and no partial state is left behind.
//
// When an approval no longer fits the requester's balance the request is
// auto-declined with a system note rather than left pending.
func (s *leaveServiceImpl) Decide(ctx context.Context, in DecideInput) (*entity.LeaveRequest, error) {
	if in.Decision != entity.DecisionApprove && in.Decision != entity.DecisionDecline {
		return nil, fmt.Errorf("unknown decision %q", in.Decision)
	}

	var decided *entity.LeaveRequest
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		req, err := s.requestRepo.GetByID(txCtx, in.RequestID)
		if err != nil {
			return err
		}

		if in.ActorID != req.ApproverID {
			return leave.ErrNotApprover
		}

		machine, err := workflow.NewMachine(workflow.State(req.Status))
		if err != nil {
			return err
		}

		trigger := workflow.TriggerApprove
		note := in.Note
		if in.Decision == entity.DecisionDecline {
			trigger = workflow.TriggerDecline
		}
		if err := machine.Fire(trigger); err != nil {
			return leave.ErrAlreadyDecided
		}
		finalStatus := machine.State().String()

		if trigger == workflow.TriggerApprove {
			// Balance may have shrunk since submission; re-check via debit.
			err := s.ledger.Debit(txCtx, req.RequesterID, req.Category, req.Days)
			if leave.IsInsufficientBalance(err) {
				finalStatus = entity.StatusDeclined
				note = AutoDeclineNote
			} else if err != nil {
				return err
			}
		}

		respondedAt := s.now()
		ok, err := s.requestRepo.MarkDecided(txCtx, req.ID, finalStatus, note, respondedAt)
		if err != nil {
			return fmt.Errorf("mark decided: %w", err)
		}
		if !ok {
			// Another decision won the race after our read; roll everything back.
			return leave.ErrAlreadyDecided
		}

		req.Status = finalStatus
		req.ResponseNote = note
		req.RespondedAt = &respondedAt
		decided = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Leave request decided",
		"request_id", decided.ID,
		"status", decided.Status,
		"actor_id", in.ActorID)

	remaining := 0
	if decided.Status == entity.StatusApproved {
		if balance, err := s.ledger.GetOrCreate(ctx, decided.RequesterID, decided.RequesterName); err == nil {
			remaining, _ = balance.Remaining(decided.Category)
		}
	}

	if err := s.notifier.NotifyRequester(ctx, decided, remaining); err != nil {
		s.logger.Error("Failed to notify requester", "error", err, "request_id", decided.ID)
	}

	return decided, nil
}

// GetBalance returns the employee's balance, creating the default row
// for a previously unseen employee.
func (s *leaveServiceImpl) GetBalance(ctx context.Context, employeeID, employeeName string) (*entity.LeaveBalance, error) {
	return s.ledger.GetOrCreate(ctx, employeeID, employeeName)
}

// ListRecent returns the most recent requests, newest first.
func (s *leaveServiceImpl) ListRecent(ctx context.Context, limit int) ([]*entity.LeaveRequest, error) {
	requests, err := s.requestRepo.ListRecent(ctx, port.RequestFilter{Limit: limit})
	if err != nil {
		s.logger.Error("Failed to list recent requests", "error", err)
		return nil, fmt.Errorf("list recent requests: %w", err)
	}
	return requests, nil
}
