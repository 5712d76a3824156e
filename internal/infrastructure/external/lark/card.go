package lark

import (
	"fmt"
	"time"

	"github.com/garyjia/leave-bot/internal/domain/entity"
)

// CardAction is the payload carried by the Approve/Decline buttons on
// the approval card. Lark echoes it back verbatim in the card callback.
type CardAction struct {
	RequestID string `json:"request_id"`
	Decision  string `json:"decision"`
}

// ParseCardAction extracts the request id and decision from a card
// callback action value.
func ParseCardAction(value map[string]interface{}) (*CardAction, error) {
	requestID, ok := value["request_id"].(string)
	if !ok || requestID == "" {
		return nil, fmt.Errorf("card action missing request_id")
	}
	decision, ok := value["decision"].(string)
	if !ok {
		return nil, fmt.Errorf("card action missing decision")
	}
	if decision != entity.DecisionApprove && decision != entity.DecisionDecline {
		return nil, fmt.Errorf("unknown card decision %q", decision)
	}
	return &CardAction{RequestID: requestID, Decision: decision}, nil
}

// BuildApprovalCard builds the interactive card sent to the approver
// for a pending request: the request summary plus Approve and Decline
// buttons tagged with the request id.
func BuildApprovalCard(req *entity.LeaveRequest) map[string]interface{} {
	elements := []interface{}{
		summaryFields(req),
		map[string]interface{}{"tag": "hr"},
	}

	if req.Reason != "" {
		elements = append(elements, map[string]interface{}{
			"tag": "div",
			"text": map[string]interface{}{
				"tag":     "lark_md",
				"content": fmt.Sprintf("**Reason**\n%s", req.Reason),
			},
		})
	}

	elements = append(elements, map[string]interface{}{
		"tag": "action",
		"actions": []interface{}{
			cardButton("Approve", "primary", CardAction{
				RequestID: req.ID,
				Decision:  entity.DecisionApprove,
			}),
			cardButton("Decline", "danger", CardAction{
				RequestID: req.ID,
				Decision:  entity.DecisionDecline,
			}),
		},
	})

	elements = append(elements, requestNote(req))

	return buildCard("orange", fmt.Sprintf("Leave Request from %s", req.RequesterName), elements)
}

// BuildResultCard builds the replacement card shown in place of the
// approval card once the request is decided.
func BuildResultCard(req *entity.LeaveRequest) map[string]interface{} {
	template := "green"
	title := "Leave Request Approved"
	if req.Status == entity.StatusDeclined {
		template = "red"
		title = "Leave Request Declined"
	}

	elements := []interface{}{
		summaryFields(req),
	}

	if req.ResponseNote != "" {
		elements = append(elements,
			map[string]interface{}{"tag": "hr"},
			map[string]interface{}{
				"tag": "div",
				"text": map[string]interface{}{
					"tag":     "lark_md",
					"content": fmt.Sprintf("**Note**\n%s", req.ResponseNote),
				},
			})
	}

	elements = append(elements, requestNote(req))

	return buildCard(template, title, elements)
}

// summaryFields renders the requester, category, date range and day
// count as a two-column field block.
func summaryFields(req *entity.LeaveRequest) map[string]interface{} {
	return map[string]interface{}{
		"tag": "div",
		"fields": []map[string]interface{}{
			{
				"is_short": true,
				"text": map[string]interface{}{
					"tag":     "lark_md",
					"content": fmt.Sprintf("**Requester**\n%s", req.RequesterName),
				},
			},
			{
				"is_short": true,
				"text": map[string]interface{}{
					"tag":     "lark_md",
					"content": fmt.Sprintf("**Type**\n%s", entity.CategoryDisplayName(req.Category)),
				},
			},
			{
				"is_short": true,
				"text": map[string]interface{}{
					"tag":     "lark_md",
					"content": fmt.Sprintf("**Dates**\n%s to %s", req.StartDate.Format(time.DateOnly), req.EndDate.Format(time.DateOnly)),
				},
			},
			{
				"is_short": true,
				"text": map[string]interface{}{
					"tag":     "lark_md",
					"content": fmt.Sprintf("**Business Days**\n%d", req.Days),
				},
			},
		},
	}
}

func cardButton(label, buttonType string, action CardAction) map[string]interface{} {
	return map[string]interface{}{
		"tag": "button",
		"text": map[string]interface{}{
			"tag":     "plain_text",
			"content": label,
		},
		"type": buttonType,
		"value": map[string]interface{}{
			"request_id": action.RequestID,
			"decision":   action.Decision,
		},
	}
}

func requestNote(req *entity.LeaveRequest) map[string]interface{} {
	return map[string]interface{}{
		"tag": "note",
		"elements": []map[string]interface{}{
			{
				"tag":     "plain_text",
				"content": fmt.Sprintf("Request ID: %s", req.ID),
			},
		},
	}
}

func buildCard(template, title string, elements []interface{}) map[string]interface{} {
	return map[string]interface{}{
		"config": map[string]interface{}{
			"wide_screen_mode": true,
		},
		"header": map[string]interface{}{
			"template": template,
			"title": map[string]interface{}{
				"tag":     "plain_text",
				"content": title,
			},
		},
		"elements": elements,
	}
}
