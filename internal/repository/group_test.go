package repository

import (
	"context"
	"testing"

	"socialhub/internal/models"
	"socialhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRepository_MembershipAndRequests(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	joiner := testutil.CreateUser(t, db, "joiner")

	g := &models.Group{Name: "Gophers", OwnerID: owner.ID, IsPrivate: true}
	require.NoError(t, repo.Create(ctx, g))
	require.NoError(t, repo.AddMember(ctx, &models.GroupMember{GroupID: g.ID, UserID: owner.ID, Role: models.GroupRoleAdmin}))

	got, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.MemberCount)

	err = repo.AddMember(ctx, &models.GroupMember{GroupID: g.ID, UserID: owner.ID, Role: models.GroupRoleMember})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	req := &models.GroupJoinRequest{GroupID: g.ID, UserID: joiner.ID, InitiatorID: joiner.ID, Status: models.JoinRequestStatusPending}
	require.NoError(t, repo.CreateJoinRequest(ctx, req))
	err = repo.CreateJoinRequest(ctx, &models.GroupJoinRequest{GroupID: g.ID, UserID: joiner.ID, InitiatorID: joiner.ID})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	require.NoError(t, repo.ResetJoinRequest(ctx, req, owner.ID))
	found, err := repo.GetJoinRequest(ctx, g.ID, joiner.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsInvitation())

	pending, err := repo.ListJoinRequests(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, repo.DeleteJoinRequest(ctx, req.ID))
	found, err = repo.GetJoinRequest(ctx, g.ID, joiner.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestGroupRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	g := &models.Group{Name: "Doomed", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, g))
	require.NoError(t, repo.AddMember(ctx, &models.GroupMember{GroupID: g.ID, UserID: owner.ID, Role: models.GroupRoleAdmin}))
	post := &models.Post{Title: "t", Content: "c", UserID: owner.ID, GroupID: &g.ID}
	require.NoError(t, db.Omit("User").Create(post).Error)

	require.NoError(t, repo.Delete(ctx, g.ID))

	_, err := repo.GetByID(ctx, g.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	var members, posts int64
	db.Model(&models.GroupMember{}).Where("group_id = ?", g.ID).Count(&members)
	db.Model(&models.Post{}).Where("group_id = ?", g.ID).Count(&posts)
	assert.Zero(t, members)
	assert.Zero(t, posts)

	assert.Equal(t, models.CodeNotFound, models.ErrorCode(repo.Delete(ctx, g.ID)))
}

func TestGroupRepository_UpdateAndList(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner")

	g := &models.Group{Name: "Alpha", Description: "first", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, g))
	require.NoError(t, repo.Create(ctx, &models.Group{Name: "Beta", OwnerID: owner.ID}))

	g.Color = "#00ff00"
	g.IsPrivate = true
	require.NoError(t, repo.Update(ctx, g))

	got, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", got.Color)
	assert.True(t, got.IsPrivate)
	assert.Equal(t, "first", got.Description)

	list, err := repo.List(ctx, "alp", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Alpha", list[0].Name)
}
