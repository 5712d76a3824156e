package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/leave-bot/internal/application/port"
	"github.com/garyjia/leave-bot/internal/application/service"
	"github.com/garyjia/leave-bot/internal/domain/entity"
	"github.com/garyjia/leave-bot/internal/domain/leave"
	larkext "github.com/garyjia/leave-bot/internal/infrastructure/external/lark"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	leaveService service.LeaveService
	directory    port.UserDirectory
	verifier     *Verifier
	reportLimit  int
	logger       Logger
}

// NewHandlers creates a new Handlers instance. directory may be nil;
// then command payloads must carry display names themselves.
func NewHandlers(leaveService service.LeaveService, directory port.UserDirectory, verifier *Verifier, reportLimit int, logger Logger) *Handlers {
	return &Handlers{
		leaveService: leaveService,
		directory:    directory,
		verifier:     verifier,
		reportLimit:  reportLimit,
		logger:       logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// CommandRequest is the payload of a bot slash command.
type CommandRequest struct {
	Command  string `json:"command" binding:"required"`
	UserID   string `json:"user_id" binding:"required"`
	UserName string `json:"user_name"`

	// submit fields
	Category     string `json:"category"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Reason       string `json:"reason"`
	ApproverID   string `json:"approver_id"`
	ApproverName string `json:"approver_name"`
}

// Command names accepted by POST /webhook/command.
const (
	CommandSubmit  = "submit"
	CommandBalance = "balance"
	CommandReport  = "report"
)

// RequestResponse represents a leave request in API responses
type RequestResponse struct {
	ID            string  `json:"id"`
	RequesterName string  `json:"requester_name"`
	Category      string  `json:"category"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Days          int     `json:"days"`
	Status        string  `json:"status"`
	ResponseNote  string  `json:"response_note,omitempty"`
	RequestedAt   string  `json:"requested_at"`
	RespondedAt   *string `json:"responded_at,omitempty"`
}

// CommandResponse wraps the command result with the text the bot posts
// back into the chat.
type CommandResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// HandleCommand handles POST /webhook/command
func (h *Handlers) HandleCommand(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid command payload", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid command payload",
		})
		return
	}

	switch req.Command {
	case CommandSubmit:
		h.handleSubmit(c, req)
	case CommandBalance:
		h.handleBalance(c, req)
	case CommandReport:
		h.handleReport(c, req)
	default:
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   fmt.Sprintf("unknown command %q", req.Command),
		})
	}
}

func (h *Handlers) handleSubmit(c *gin.Context, req CommandRequest) {
	startDate, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "start_date must be YYYY-MM-DD",
		})
		return
	}
	endDate, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "end_date must be YYYY-MM-DD",
		})
		return
	}
	if req.ApproverID == "" {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "approver_id is required",
		})
		return
	}

	created, err := h.leaveService.Submit(c.Request.Context(), service.SubmitInput{
		RequesterID:   req.UserID,
		RequesterName: h.resolveName(c, req.UserID, req.UserName),
		Category:      strings.ToUpper(req.Category),
		StartDate:     startDate,
		EndDate:       endDate,
		Reason:        req.Reason,
		ApproverID:    req.ApproverID,
		ApproverName:  h.resolveName(c, req.ApproverID, req.ApproverName),
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	message := fmt.Sprintf("%s request for %d business day(s) submitted to %s for approval.",
		entity.CategoryDisplayName(created.Category), created.Days, created.ApproverName)

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: CommandResponse{
			Message: message,
			Data:    toRequestResponse(created),
		},
	})
}

func (h *Handlers) handleBalance(c *gin.Context, req CommandRequest) {
	balance, err := h.leaveService.GetBalance(c.Request.Context(), req.UserID, req.UserName)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	message := fmt.Sprintf("Your leave balance: Annual %d, Sick %d, Personal %d day(s).",
		balance.Annual, balance.Sick, balance.Personal)

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: CommandResponse{
			Message: message,
			Data:    balance,
		},
	})
}

func (h *Handlers) handleReport(c *gin.Context, req CommandRequest) {
	requests, err := h.leaveService.ListRecent(c.Request.Context(), h.reportLimit)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	responses := make([]RequestResponse, 0, len(requests))
	var sb strings.Builder
	fmt.Fprintf(&sb, "Recent leave requests (%d):", len(requests))
	for _, r := range requests {
		responses = append(responses, toRequestResponse(r))
		fmt.Fprintf(&sb, "\n[%s] %s — %s, %s to %s (%d day(s))",
			r.Status,
			r.RequesterName,
			entity.CategoryDisplayName(r.Category),
			r.StartDate.Format(time.DateOnly),
			r.EndDate.Format(time.DateOnly),
			r.Days)
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: CommandResponse{
			Message: sb.String(),
			Data:    responses,
		},
	})
}

// CardCallbackRequest is the payload Lark posts when a card button is
// clicked, or the initial url_verification challenge.
type CardCallbackRequest struct {
	Challenge string `json:"challenge"`
	Token     string `json:"token"`
	Type      string `json:"type"`
	OpenID    string `json:"open_id"`
	UserName  string `json:"user_name"`
	Action    struct {
		Value map[string]interface{} `json:"value"`
	} `json:"action"`
}

// HandleCardCallback handles POST /webhook/card. A successful decision
// returns the result card in the response body, which Lark renders in
// place of the approval card.
func (h *Handlers) HandleCardCallback(c *gin.Context) {
	var req CardCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid card callback payload", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid card callback payload",
		})
		return
	}

	if !h.verifier.VerifyToken(req.Token) {
		c.JSON(http.StatusUnauthorized, Response{
			Success: false,
			Error:   "invalid verification token",
		})
		return
	}

	// Endpoint registration handshake.
	if req.Type == "url_verification" {
		c.JSON(http.StatusOK, gin.H{"challenge": req.Challenge})
		return
	}

	action, err := larkext.ParseCardAction(req.Action.Value)
	if err != nil {
		h.logger.Error("Unparseable card action", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	decided, err := h.leaveService.Decide(c.Request.Context(), service.DecideInput{
		RequestID: action.RequestID,
		ActorID:   req.OpenID,
		ActorName: req.UserName,
		Decision:  action.Decision,
	})
	if err != nil {
		// A duplicate click on an already-settled card is not an error
		// worth surfacing to the clicker; leave the card as is.
		if errors.Is(err, leave.ErrAlreadyDecided) {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, larkext.BuildResultCard(decided))
}

// resolveName looks up a display name in the user directory when the
// command payload carried only a user id (a bare mention). Falls back
// to the id itself so a directory outage never blocks a submission.
func (h *Handlers) resolveName(c *gin.Context, userID, name string) string {
	if name != "" {
		return name
	}
	if h.directory != nil {
		if info, err := h.directory.GetUser(c.Request.Context(), userID); err == nil && info.Name != "" {
			return info.Name
		} else if err != nil {
			h.logger.Error("Failed to resolve user name", "error", err, "user_id", userID)
		}
	}
	return userID
}

// writeServiceError maps service errors to HTTP status codes.
func (h *Handlers) writeServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, leave.ErrRequestNotFound):
		status = http.StatusNotFound
	case errors.Is(err, leave.ErrAlreadyDecided):
		status = http.StatusConflict
	case errors.Is(err, leave.ErrNotApprover):
		status = http.StatusForbidden
	case errors.Is(err, leave.ErrInvalidDateRange),
		errors.Is(err, leave.ErrUnknownCategory),
		errors.Is(err, leave.ErrZeroBusinessDays):
		status = http.StatusBadRequest
	case leave.IsInsufficientBalance(err):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err)
	}

	c.JSON(status, Response{
		Success: false,
		Error:   err.Error(),
	})
}

func toRequestResponse(r *entity.LeaveRequest) RequestResponse {
	resp := RequestResponse{
		ID:            r.ID,
		RequesterName: r.RequesterName,
		Category:      r.Category,
		StartDate:     r.StartDate.Format(time.DateOnly),
		EndDate:       r.EndDate.Format(time.DateOnly),
		Days:          r.Days,
		Status:        r.Status,
		ResponseNote:  r.ResponseNote,
		RequestedAt:   r.RequestedAt.UTC().Format(time.RFC3339),
	}
	if r.RespondedAt != nil {
		respondedAt := r.RespondedAt.UTC().Format(time.RFC3339)
		resp.RespondedAt = &respondedAt
	}
	return resp
}
