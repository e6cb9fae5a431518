package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationBudgetAlert   NotificationType = "budget_alert"
	NotificationExpenseAlert  NotificationType = "expense_alert"
	NotificationAdvisorTip    NotificationType = "advisor_tip"
	NotificationGoalMilestone NotificationType = "goal_milestone"
	NotificationSystem        NotificationType = "system"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationBudgetAlert, NotificationExpenseAlert, NotificationAdvisorTip,
		NotificationGoalMilestone, NotificationSystem:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Notification is a user-facing alert produced by the engines.
// It is mutated only by the unread -> read transition.
type Notification struct {
	ID               uuid.UUID        `db:"id"`
	UserID           uuid.UUID        `db:"user_id"`
	Type             NotificationType `db:"notification_type"`
	Priority         Priority         `db:"priority"`
	Title            string           `db:"title"`
	Message          string           `db:"message"`
	IsRead           bool             `db:"is_read"`
	CreatedAt        time.Time        `db:"created_at"`
	ReadAt           *time.Time       `db:"read_at"`
	RelatedBudgetID  *uuid.UUID       `db:"related_budget_id"`
	RelatedExpenseID *uuid.UUID       `db:"related_expense_id"`
	ActionURL        string           `db:"action_url"`
	ActionData       json.RawMessage  `db:"action_data"`
}
