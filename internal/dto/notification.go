package dto

import (
	"encoding/json"
	"time"

	"aion/internal/models"
)

type NotificationResponse struct {
	ID               string          `json:"id"`
	NotificationType string          `json:"notification_type"`
	Priority         string          `json:"priority"`
	Title            string          `json:"title"`
	Message          string          `json:"message"`
	IsRead           bool            `json:"is_read"`
	CreatedAt        string          `json:"created_at"`
	ReadAt           *string         `json:"read_at"`
	RelatedBudgetID  *string         `json:"related_budget_id"`
	RelatedExpenseID *string         `json:"related_expense_id"`
	ActionURL        string          `json:"action_url,omitempty"`
	ActionData       json.RawMessage `json:"action_data,omitempty"`
}

// NewNotificationResponse flattens a notification row into its wire shape.
func NewNotificationResponse(n *models.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:               n.ID.String(),
		NotificationType: string(n.Type),
		Priority:         string(n.Priority),
		Title:            n.Title,
		Message:          n.Message,
		IsRead:           n.IsRead,
		CreatedAt:        n.CreatedAt.Format(time.RFC3339),
		ActionURL:        n.ActionURL,
		ActionData:       n.ActionData,
	}
	if n.ReadAt != nil {
		readAt := n.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &readAt
	}
	if n.RelatedBudgetID != nil {
		id := n.RelatedBudgetID.String()
		resp.RelatedBudgetID = &id
	}
	if n.RelatedExpenseID != nil {
		id := n.RelatedExpenseID.String()
		resp.RelatedExpenseID = &id
	}
	return resp
}
