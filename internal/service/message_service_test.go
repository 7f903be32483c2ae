package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/repository"
	"socialhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_Send(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	notifier := &notifierStub{}
	pub := &publisherStub{}
	svc := NewMessageService(repository.NewMessageRepository(db), repository.NewUserRepository(db), notifier, pub)

	msg, err := svc.Send(ctx, alice.ID, bob.ID, "  hi bob ")
	require.NoError(t, err)
	assert.Equal(t, "hi bob", msg.Content)
	require.NotNil(t, msg.Sender)
	assert.Equal(t, alice.Username, msg.Sender.Username)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, bob.ID, events[0].userID)
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(events[0].payload), &ev))
	assert.Equal(t, EventMessageReceived, ev.Type)
	assert.Equal(t, []models.NotificationType{models.NotificationMessage}, notifier.types())

	tests := []struct {
		name       string
		from, to   uint
		content    string
		expectCode string
	}{
		{"to self", alice.ID, alice.ID, "x", models.CodeValidation},
		{"empty", alice.ID, bob.ID, "   ", models.CodeValidation},
		{"too long", alice.ID, bob.ID, strings.Repeat("m", maxMessageLen+1), models.CodeValidation},
		{"unknown receiver", alice.ID, 9999, "x", models.CodeNotFound},
		{"unknown sender", 9999, bob.ID, "x", models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(ctx, tt.from, tt.to, tt.content)
			assert.Equal(t, tt.expectCode, models.ErrorCode(err))
		})
	}
	assert.Len(t, pub.all(), 1, "rejected messages publish nothing")
}

func TestMessageService_Lifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	svc := NewMessageService(repository.NewMessageRepository(db), repository.NewUserRepository(db), nil, nil)
	readAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return readAt }

	first, err := svc.Send(ctx, alice.ID, bob.ID, "one")
	require.NoError(t, err)
	_, err = svc.Send(ctx, bob.ID, alice.ID, "two")
	require.NoError(t, err)
	_, err = svc.Send(ctx, carol.ID, alice.ID, "three")
	require.NoError(t, err)

	conv, err := svc.Conversation(ctx, alice.ID, bob.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, conv, 2)

	t.Run("edit", func(t *testing.T) {
		_, err := svc.Update(ctx, first.ID, bob.ID, "forged")
		assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

		edited, err := svc.Update(ctx, first.ID, alice.ID, "one, edited")
		require.NoError(t, err)
		assert.Equal(t, "one, edited", edited.Content)
	})

	t.Run("mark read", func(t *testing.T) {
		_, err := svc.MarkRead(ctx, first.ID, alice.ID)
		assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

		read, err := svc.MarkRead(ctx, first.ID, bob.ID)
		require.NoError(t, err)
		require.NotNil(t, read.ReadAt)
		assert.True(t, readAt.Equal(*read.ReadAt))

		svc.now = func() time.Time { return readAt.Add(time.Hour) }
		again, err := svc.MarkRead(ctx, first.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, readAt.Equal(*again.ReadAt), "marking read twice keeps the first time")
	})

	t.Run("partners", func(t *testing.T) {
		partners, err := svc.ListPartners(ctx, alice.ID)
		require.NoError(t, err)
		ids := []uint{}
		for _, p := range partners {
			ids = append(ids, p.ID)
		}
		assert.ElementsMatch(t, []uint{bob.ID, carol.ID}, ids)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(svc.Delete(ctx, first.ID, bob.ID)))
		require.NoError(t, svc.Delete(ctx, first.ID, alice.ID))
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(svc.Delete(ctx, first.ID, alice.ID)))
	})
}
