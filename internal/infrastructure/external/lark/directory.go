package lark

import (
	"context"
	"fmt"

	larkContact "github.com/larksuite/oapi-sdk-go/v3/service/contact/v3"
	"go.uber.org/zap"

	"github.com/garyjia/leave-bot/internal/application/port"
)

// Directory resolves Lark user ids to display names via the contact
// API. Used to render requester and approver names on cards when the
// command payload carries only a mention id.
type Directory struct {
	client *Client
	logger *zap.Logger
}

// NewDirectory creates a new user directory
func NewDirectory(client *Client, logger *zap.Logger) *Directory {
	return &Directory{
		client: client,
		logger: logger,
	}
}

var _ port.UserDirectory = (*Directory)(nil)

// GetUser fetches a user's profile by open_id.
func (d *Directory) GetUser(ctx context.Context, userID string) (*port.UserInfo, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID cannot be empty")
	}

	req := larkContact.NewGetUserReqBuilder().
		UserId(userID).
		UserIdType("open_id").
		Build()

	resp, err := d.client.GetClient().Contact.User.Get(ctx, req)
	if err != nil {
		d.logger.Error("Failed to get user",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !resp.Success() {
		d.logger.Error("API returned failure",
			zap.String("user_id", userID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return nil, fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	info := &port.UserInfo{ID: userID}
	if resp.Data != nil && resp.Data.User != nil && resp.Data.User.Name != nil {
		info.Name = *resp.Data.User.Name
	}

	return info, nil
}
