package lark

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/leave-bot/internal/application/port"
	"github.com/garyjia/leave-bot/internal/domain/entity"
)

// Notifier implements port.Notifier over Lark messages: the approver
// gets an interactive card with Approve/Decline buttons, the requester
// gets plain text.
type Notifier struct {
	messenger *Messenger
	logger    *zap.Logger
}

// NewNotifier creates a new Lark notifier
func NewNotifier(messenger *Messenger, logger *zap.Logger) *Notifier {
	return &Notifier{
		messenger: messenger,
		logger:    logger,
	}
}

var _ port.Notifier = (*Notifier)(nil)

// NotifyApprover sends the approval card to the request's approver.
func (n *Notifier) NotifyApprover(ctx context.Context, req *entity.LeaveRequest) error {
	card := BuildApprovalCard(req)
	if err := n.messenger.SendCard(ctx, req.ApproverID, card); err != nil {
		return fmt.Errorf("failed to send approval card: %w", err)
	}

	n.logger.Info("Approval card sent",
		zap.String("request_id", req.ID),
		zap.String("approver_id", req.ApproverID))
	return nil
}

// ConfirmSubmission tells the requester their request was forwarded to
// the approver.
func (n *Notifier) ConfirmSubmission(ctx context.Context, req *entity.LeaveRequest) error {
	text := fmt.Sprintf("Your %s request for %d business day(s) (%s to %s) has been sent to %s for approval.",
		entity.CategoryDisplayName(req.Category),
		req.Days,
		req.StartDate.Format(time.DateOnly),
		req.EndDate.Format(time.DateOnly),
		req.ApproverName)

	return n.messenger.SendText(ctx, req.RequesterID, text)
}

// NotifyRequester tells the requester the outcome of their request.
// For approvals the message includes the balance remaining after the
// debit.
func (n *Notifier) NotifyRequester(ctx context.Context, req *entity.LeaveRequest, remaining int) error {
	var text string
	switch req.Status {
	case entity.StatusApproved:
		text = fmt.Sprintf("Your %s request for %d business day(s) was approved by %s. Remaining balance: %d day(s).",
			entity.CategoryDisplayName(req.Category),
			req.Days,
			req.ApproverName,
			remaining)
	case entity.StatusDeclined:
		text = fmt.Sprintf("Your %s request for %d business day(s) was declined by %s.",
			entity.CategoryDisplayName(req.Category),
			req.Days,
			req.ApproverName)
		if req.ResponseNote != "" {
			text += fmt.Sprintf(" Note: %s", req.ResponseNote)
		}
	default:
		return fmt.Errorf("cannot notify outcome for status %q", req.Status)
	}

	return n.messenger.SendText(ctx, req.RequesterID, text)
}
