package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"socialhub/internal/models"
	"socialhub/internal/repository"
	"socialhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_NotifyPersistsThenPublishes(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "notified")
	pub := &publisherStub{}
	svc := NewNotificationService(repository.NewNotificationRepository(db), pub)

	n, err := svc.Notify(ctx, NotifyInput{UserID: u.ID, Type: models.NotificationFriendRequest, Message: "hello"})
	require.NoError(t, err)
	assert.NotZero(t, n.ID)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, u.ID, events[0].userID)

	var ev struct {
		Type    string              `json:"type"`
		Payload models.Notification `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(events[0].payload), &ev))
	assert.Equal(t, EventNotificationCreated, ev.Type)
	assert.Equal(t, n.ID, ev.Payload.ID)

	count, err := svc.UnreadCount(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNotificationService_Validation(t *testing.T) {
	svc := NewNotificationService(nil, nil)
	ctx := context.Background()

	_, err := svc.Notify(ctx, NotifyInput{Message: "x"})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	_, err = svc.Notify(ctx, NotifyInput{UserID: 1, Message: "   "})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestNotificationService_ReadLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "reader")
	other := testutil.CreateUser(t, db, "other")
	svc := NewNotificationService(repository.NewNotificationRepository(db), nil)

	var ids []uint
	for i := 0; i < 3; i++ {
		n, err := svc.Notify(ctx, NotifyInput{UserID: u.ID, Type: models.NotificationMessage, Message: strings.Repeat("m", 600)})
		require.NoError(t, err)
		assert.Len(t, n.Message, maxNotificationLen)
		ids = append(ids, n.ID)
	}

	require.NoError(t, svc.MarkRead(ctx, ids[0], u.ID))
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(svc.MarkRead(ctx, ids[1], other.ID)))

	unread, err := svc.List(ctx, u.ID, true, 10, 0)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	changed, err := svc.MarkAllRead(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	require.NoError(t, svc.Delete(ctx, ids[2], u.ID))
	all, err := svc.List(ctx, u.ID, false, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
