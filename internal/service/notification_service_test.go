package service

import (
	"context"
	"testing"
	"time"

	"aion/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newNotificationServiceForTest() (*NotificationService, *stubNotificationStore) {
	store := &stubNotificationStore{}
	return NewNotificationService(store, zap.NewNop()), store
}

func TestCreateNotificationDefaultsPriority(t *testing.T) {
	svc, _ := newNotificationServiceForTest()

	n, err := svc.Create(context.Background(), &CreateNotificationInput{
		UserID: uuid.New(),
		Type:   models.NotificationSystem,
		Title:  "Welcome",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, n.Priority)
	assert.False(t, n.IsRead)
	assert.Nil(t, n.ReadAt)
}

func TestCreateNotificationRejectsInvalidEnums(t *testing.T) {
	svc, store := newNotificationServiceForTest()

	_, err := svc.Create(context.Background(), &CreateNotificationInput{
		UserID: uuid.New(),
		Type:   "spam",
	})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), &CreateNotificationInput{
		UserID:   uuid.New(),
		Type:     models.NotificationSystem,
		Priority: "extreme",
	})
	assert.Error(t, err)
	assert.Empty(t, store.notifications)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	svc, store := newNotificationServiceForTest()
	userID := uuid.New()

	n, err := svc.Create(context.Background(), &CreateNotificationInput{
		UserID: userID,
		Type:   models.NotificationBudgetAlert,
		Title:  "Alert",
	})
	require.NoError(t, err)

	ok, err := svc.MarkRead(context.Background(), n.ID, userID)
	require.NoError(t, err)
	assert.True(t, ok)

	firstReadAt := store.notifications[0].ReadAt
	require.NotNil(t, firstReadAt)

	// Second call succeeds without touching read_at.
	ok, err = svc.MarkRead(context.Background(), n.ID, userID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, firstReadAt, store.notifications[0].ReadAt)
}

func TestMarkReadUnknownOrForeignNotification(t *testing.T) {
	svc, _ := newNotificationServiceForTest()
	userID := uuid.New()

	n, err := svc.Create(context.Background(), &CreateNotificationInput{
		UserID: userID,
		Type:   models.NotificationSystem,
	})
	require.NoError(t, err)

	ok, err := svc.MarkRead(context.Background(), uuid.New(), userID)
	require.NoError(t, err)
	assert.False(t, ok)

	// Another user cannot mark it.
	ok, err = svc.MarkRead(context.Background(), n.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarkAllReadSecondCallIsZero(t *testing.T) {
	svc, _ := newNotificationServiceForTest()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), &CreateNotificationInput{
			UserID: userID,
			Type:   models.NotificationSystem,
		})
		require.NoError(t, err)
	}

	count, err := svc.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = svc.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUnreadCount(t *testing.T) {
	svc, _ := newNotificationServiceForTest()
	userID := uuid.New()

	first, err := svc.Create(context.Background(), &CreateNotificationInput{
		UserID: userID,
		Type:   models.NotificationSystem,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), &CreateNotificationInput{
		UserID: userID,
		Type:   models.NotificationBudgetAlert,
	})
	require.NoError(t, err)

	count, err := svc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = svc.MarkRead(context.Background(), first.ID, userID)
	require.NoError(t, err)

	count, err = svc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestListFiltersAndLimits(t *testing.T) {
	svc, store := newNotificationServiceForTest()
	userID := uuid.New()
	now := time.Now()

	for i := 0; i < 4; i++ {
		store.notifications = append(store.notifications, models.Notification{
			ID:        uuid.New(),
			UserID:    userID,
			Type:      models.NotificationSystem,
			Priority:  models.PriorityLow,
			IsRead:    i%2 == 0,
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		})
	}

	all, err := svc.List(context.Background(), userID, nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	unread := false
	onlyUnread, err := svc.List(context.Background(), userID, &unread, 0)
	require.NoError(t, err)
	assert.Len(t, onlyUnread, 2)
	for _, n := range onlyUnread {
		assert.False(t, n.IsRead)
	}

	limited, err := svc.List(context.Background(), userID, nil, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	// Newest first.
	assert.True(t, limited[0].CreatedAt >= limited[1].CreatedAt)
}

func TestDeleteNotification(t *testing.T) {
	svc, _ := newNotificationServiceForTest()
	userID := uuid.New()

	n, err := svc.Create(context.Background(), &CreateNotificationInput{
		UserID: userID,
		Type:   models.NotificationSystem,
	})
	require.NoError(t, err)

	deleted, err := svc.Delete(context.Background(), n.ID, userID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(context.Background(), n.ID, userID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteOlderThanSweepsOnlyExpired(t *testing.T) {
	svc, store := newNotificationServiceForTest()
	userID := uuid.New()
	now := time.Now()

	store.notifications = append(store.notifications,
		models.Notification{ID: uuid.New(), UserID: userID, Type: models.NotificationSystem, CreatedAt: now.AddDate(0, 0, -40)},
		models.Notification{ID: uuid.New(), UserID: userID, Type: models.NotificationSystem, CreatedAt: now.AddDate(0, 0, -10)},
	)

	count, err := svc.DeleteOlderThan(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, store.notifications, 1)
	assert.True(t, store.notifications[0].CreatedAt.After(now.AddDate(0, 0, -30)))
}
