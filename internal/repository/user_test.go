package repository

import (
	"context"
	"testing"

	"socialhub/internal/models"
	"socialhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Integration(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &models.User{Username: "gopher", Email: "Gopher@Example.com", Password: "hash", FirstName: "Go"}
	require.NoError(t, repo.Create(ctx, u))

	err := repo.Create(ctx, &models.User{Username: "gopher", Email: "other@example.com", Password: "x"})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	byEmail, err := repo.GetByEmail(ctx, "gopher@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	missing, err := repo.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	u.Bio = "hello"
	u.Password = ""
	require.NoError(t, repo.Update(ctx, u))

	var stored models.User
	require.NoError(t, db.First(&stored, u.ID).Error)
	assert.Equal(t, "hello", stored.Bio)
	assert.Equal(t, "hash", stored.Password, "Update never touches the password")

	list, err := repo.List(ctx, "goph", 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	exists, err := repo.Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, u.ID))
	_, err = repo.GetByID(ctx, u.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestMessageAndNotificationRepositories(t *testing.T) {
	db := testutil.NewDB(t)
	msgs := NewMessageRepository(db)
	notes := NewNotificationRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")
	c := testutil.CreateUser(t, db, "c")

	require.NoError(t, msgs.Create(ctx, &models.Message{SenderID: a.ID, ReceiverID: b.ID, Content: "hi"}))
	require.NoError(t, msgs.Create(ctx, &models.Message{SenderID: b.ID, ReceiverID: a.ID, Content: "hey"}))
	require.NoError(t, msgs.Create(ctx, &models.Message{SenderID: c.ID, ReceiverID: a.ID, Content: "yo"}))

	conv, err := msgs.Conversation(ctx, a.ID, b.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, conv, 2)

	partners, err := msgs.PartnerIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{b.ID, c.ID}, partners)

	n := &models.Notification{UserID: a.ID, Type: models.NotificationMessage, Message: "new message"}
	require.NoError(t, notes.Create(ctx, n))
	require.NoError(t, notes.Create(ctx, &models.Notification{UserID: a.ID, Type: models.NotificationMessage, Message: "another"}))

	unread, err := notes.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	require.NoError(t, notes.MarkRead(ctx, n.ID, a.ID, n.CreatedAt))
	err = notes.MarkRead(ctx, n.ID, b.ID, n.CreatedAt)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	updated, err := notes.MarkAllRead(ctx, a.ID, n.CreatedAt)
	require.NoError(t, err)
	assert.EqualValues(t, 1, updated)

	list, err := notes.List(ctx, a.ID, true, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
