package repository

import (
	"context"
	"errors"
	"time"

	"aion/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var notificationColumns = []string{
	"id", "user_id", "notification_type", "priority", "title", "message",
	"is_read", "created_at", "read_at", "related_budget_id",
	"related_expense_id", "action_url", "action_data",
}

type NotificationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := squirrel.Insert("notifications").
		Columns(notificationColumns...).
		Values(n.ID, n.UserID, n.Type, n.Priority, n.Title, n.Message,
			n.IsRead, n.CreatedAt, n.ReadAt, n.RelatedBudgetID,
			n.RelatedExpenseID, n.ActionURL, n.ActionData).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// GetByIDForUser returns (nil, nil) when the notification does not exist
// or belongs to another user.
func (r *NotificationRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	query := squirrel.Select(notificationColumns...).
		From("notifications").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var n models.Notification
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&n.ID, &n.UserID, &n.Type, &n.Priority, &n.Title, &n.Message,
		&n.IsRead, &n.CreatedAt, &n.ReadAt, &n.RelatedBudgetID,
		&n.RelatedExpenseID, &n.ActionURL, &n.ActionData,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &n, nil
}

// List returns the user's notifications newest first. isRead filters by
// read state when non-nil; limit caps the result when positive.
func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, isRead *bool, limit int) ([]*models.Notification, error) {
	query := squirrel.Select(notificationColumns...).
		From("notifications").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if isRead != nil {
		query = query.Where(squirrel.Eq{"is_read": *isRead})
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Priority, &n.Title, &n.Message,
			&n.IsRead, &n.CreatedAt, &n.ReadAt, &n.RelatedBudgetID,
			&n.RelatedExpenseID, &n.ActionURL, &n.ActionData,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

// MarkRead flips a single unread notification. Already-read rows are not
// touched so read_at keeps its original value.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID, readAt time.Time) error {
	query := squirrel.Update("notifications").
		Set("is_read", true).
		Set("read_at", readAt).
		Where(squirrel.Eq{"id": id, "user_id": userID, "is_read": false}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, readAt time.Time) (int64, error) {
	query := squirrel.Update("notifications").
		Set("is_read", true).
		Set("read_at", readAt).
		Where(squirrel.Eq{"user_id": userID, "is_read": false}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := squirrel.Select("COUNT(*)").
		From("notifications").
		Where(squirrel.Eq{"user_id": userID, "is_read": false}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	query := squirrel.Delete("notifications").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteOlderThan is the retention sweep: drops every notification
// created before the cutoff, across all users.
func (r *NotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := squirrel.Delete("notifications").
		Where(squirrel.Lt{"created_at": cutoff}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
