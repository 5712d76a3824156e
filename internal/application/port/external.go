package port

import (
	"context"

	"github.com/garyjia/leave-bot/internal/domain/entity"
)

// Notifier delivers lifecycle events to the chat transport: the
// actionable request card to the approver and the outcome to the
// requester. Delivery failures are the transport's problem; the engine
// logs them and moves on.
type Notifier interface {
	// NotifyApprover sends the approver a summary of the pending request
	// together with Approve/Decline actions tagged with the request id.
	NotifyApprover(ctx context.Context, req *entity.LeaveRequest) error

	// ConfirmSubmission tells the requester their request went to the
	// approver.
	ConfirmSubmission(ctx context.Context, req *entity.LeaveRequest) error

	// NotifyRequester tells the requester the outcome. For an approved
	// request, remaining carries the balance left in the category.
	NotifyRequester(ctx context.Context, req *entity.LeaveRequest, remaining int) error
}

// UserInfo identifies a chat-platform user.
type UserInfo struct {
	ID   string
	Name string
}

// UserDirectory resolves chat-platform user ids to display names.
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*UserInfo, error)
}
