package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aion/internal/dto"
	"aion/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, isRead *bool, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID, readAt time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, readAt time.Time) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationService is the single entry point every engine uses to
// raise and manage user notifications. Pure CRUD plus the unread -> read
// transition; no external calls.
type NotificationService struct {
	store  NotificationStore
	logger *zap.Logger
}

func NewNotificationService(store NotificationStore, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		logger: logger,
	}
}

type CreateNotificationInput struct {
	UserID           uuid.UUID
	Type             models.NotificationType
	Priority         models.Priority
	Title            string
	Message          string
	RelatedBudgetID  *uuid.UUID
	RelatedExpenseID *uuid.UUID
	ActionURL        string
	ActionData       json.RawMessage
}

func (s *NotificationService) Create(ctx context.Context, input *CreateNotificationInput) (*models.Notification, error) {
	if !input.Type.Valid() {
		return nil, fmt.Errorf("invalid notification type: %s", input.Type)
	}
	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("invalid priority: %s", priority)
	}

	n := &models.Notification{
		ID:               uuid.New(),
		UserID:           input.UserID,
		Type:             input.Type,
		Priority:         priority,
		Title:            input.Title,
		Message:          input.Message,
		IsRead:           false,
		CreatedAt:        time.Now(),
		RelatedBudgetID:  input.RelatedBudgetID,
		RelatedExpenseID: input.RelatedExpenseID,
		ActionURL:        input.ActionURL,
		ActionData:       input.ActionData,
	}

	if err := s.store.Create(ctx, n); err != nil {
		return nil, err
	}

	s.logger.Debug("Notification created",
		zap.String("user_id", input.UserID.String()),
		zap.String("type", string(input.Type)),
		zap.String("title", input.Title),
	)
	return n, nil
}

// MarkRead flips one notification to read. Returns false when it does
// not exist or is not owned by the user. Marking an already-read
// notification is a no-op that still reports success and keeps read_at.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	n, err := s.store.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return false, err
	}
	if n == nil {
		return false, nil
	}
	if n.IsRead {
		return true, nil
	}

	if err := s.store.MarkRead(ctx, id, userID, time.Now()); err != nil {
		return false, err
	}
	return true, nil
}

// MarkAllRead marks every unread notification; a second consecutive call
// returns 0.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.store.MarkAllRead(ctx, userID, time.Now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Debug("Marked notifications as read",
			zap.String("user_id", userID.String()),
			zap.Int64("count", count),
		)
	}
	return count, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.CountUnread(ctx, userID)
}

// List returns the user's notifications newest first, optionally filtered
// by read state and capped by limit.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, isRead *bool, limit int) ([]dto.NotificationResponse, error) {
	notifications, err := s.store.List(ctx, userID, isRead, limit)
	if err != nil {
		return nil, err
	}

	out := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, dto.NewNotificationResponse(n))
	}
	return out, nil
}

func (s *NotificationService) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	return s.store.Delete(ctx, id, userID)
}

// DeleteOlderThan is the retention sweep; it runs on the schedule wired
// in the entrypoint.
func (s *NotificationService) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	count, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("Retention sweep removed old notifications",
			zap.Int64("count", count),
			zap.Int("older_than_days", days),
		)
	}
	return count, nil
}
