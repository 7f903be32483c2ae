package service

import (
	"context"
	"testing"

	"socialhub/internal/database"
	"socialhub/internal/models"
	"socialhub/internal/repository"
	"socialhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type groupFixture struct {
	db       *gorm.DB
	svc      *GroupService
	groups   repository.GroupRepository
	notifier *notifierStub
	owner    *models.User
	alice    *models.User
	bob      *models.User
}

func newGroupFixture(t *testing.T) *groupFixture {
	t.Helper()
	db := testutil.NewDB(t)
	groups := repository.NewGroupRepository(db)
	notifier := &notifierStub{}
	return &groupFixture{
		db:       db,
		svc:      NewGroupService(groups, repository.NewUserRepository(db), database.NewTransactor(db), notifier, &publisherStub{}),
		groups:   groups,
		notifier: notifier,
		owner:    testutil.CreateUser(t, db, "owner"),
		alice:    testutil.CreateUser(t, db, "alice"),
		bob:      testutil.CreateUser(t, db, "bob"),
	}
}

func (f *groupFixture) memberCount(t *testing.T, groupID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.GroupMember{}).Where("group_id = ?", groupID).Count(&n).Error)
	return n
}

func (f *groupFixture) requestCount(t *testing.T, groupID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.GroupJoinRequest{}).Where("group_id = ?", groupID).Count(&n).Error)
	return n
}

func TestGroupService_Create(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	t.Run("owner becomes admin", func(t *testing.T) {
		g, err := f.svc.Create(ctx, f.owner.ID, CreateGroupInput{Name: "Gophers", Color: "#00ADD8"})
		require.NoError(t, err)
		assert.Equal(t, 1, g.MemberCount)

		m, err := f.groups.GetMember(ctx, g.ID, f.owner.ID)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, models.GroupRoleAdmin, m.Role)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.owner.ID, CreateGroupInput{Name: "  "})
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

		_, err = f.svc.Create(ctx, f.owner.ID, CreateGroupInput{Name: "Bad colour", Color: "blue"})
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("unknown owner creates nothing", func(t *testing.T) {
		var before int64
		require.NoError(t, f.db.Model(&models.Group{}).Count(&before).Error)

		_, err := f.svc.Create(ctx, 9999, CreateGroupInput{Name: "Orphan"})
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

		var after int64
		require.NoError(t, f.db.Model(&models.Group{}).Count(&after).Error)
		assert.Equal(t, before, after)
	})
}

func TestGroupService_AddUserToGroup(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	public, err := f.svc.Create(ctx, f.owner.ID, CreateGroupInput{Name: "Public"})
	require.NoError(t, err)
	private, err := f.svc.Create(ctx, f.owner.ID, CreateGroupInput{Name: "Private", IsPrivate: true})
	require.NoError(t, err)

	t.Run("public group joins directly", func(t *testing.T) {
		m, req, err := f.svc.AddUserToGroup(ctx, public.ID, f.alice.ID)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Nil(t, req)
		assert.Equal(t, models.GroupRoleMember, m.Role)
	})

	t.Run("already a member is rejected and membership unchanged", func(t *testing.T) {
		before := f.memberCount(t, public.ID)
		_, _, err := f.svc.AddUserToGroup(ctx, public.ID, f.alice.ID)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
		assert.Equal(t, before, f.memberCount(t, public.ID))
	})

	t.Run("private group files a pending request", func(t *testing.T) {
		m, req, err := f.svc.AddUserToGroup(ctx, private.ID, f.alice.ID)
		require.NoError(t, err)
		assert.Nil(t, m)
		require.NotNil(t, req)
		assert.Equal(t, models.JoinRequestStatusPending, req.Status)
		assert.Equal(t, f.alice.ID, req.InitiatorID)

		// asking again resets the same request
		_, again, err := f.svc.AddUserToGroup(ctx, private.ID, f.alice.ID)
		require.NoError(t, err)
		assert.Equal(t, req.ID, again.ID)
		assert.Equal(t, int64(1), f.requestCount(t, private.ID))
	})

	t.Run("unknown group", func(t *testing.T) {
		_, _, err := f.svc.AddUserToGroup(ctx, 4242, f.alice.ID)
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	})
}

func TestGroupService_RespondToAddingRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("approve creates membership and deletes request", func(t *testing.T) {
		f := newGroupFixture(t)
		g, err := f.svc.Create(ctx, f.owner.ID, CreateGroupInput{Name: "Private", IsPrivate: true})
		require.NoError(t, err)
		_, _, err = f.svc.AddUserToGroup(ctx, g.ID, f.alice.ID)
		require.NoError(t, err)

		m, err := f.svc.RespondToAddingRequest(ctx, g.ID, f.alice.ID, f.owner.ID, models.JoinRequestStatusApproved)
		require.NoError(t, err)
		require.NotNil(t, m)

		isMember, err := f.svc.IsMember(ctx, g.ID, f.alice.ID)
		require.NoError(t, err)
		assert.True(t, isMember)
		assert.Equal(t, int64(0), f.requestCount(t, g.ID))
	})

	t.Run("reject deletes request without membership", func(t *testing.T) {
		f := newGroupFixture(t)
		g, err := f.svc.Create(ctx, f.owner.ID, CreateGroupInput{Name: "Private", IsPrivate: true})
		require.NoError(t, err)
		_, _, err = f.svc.AddUserToGroup(ctx, g.ID, f.alice.ID)
		require.NoError(t, err)

		m, err := f.svc.RespondToAddingRequest(ctx, g.ID, f.alice.ID, f.owner.ID, models.JoinRequestStatusRejected)
		require.NoError(t, err)
		assert.Nil(t, m)

		isMember, err := f.svc.IsMember(ctx, g.ID, f.alice.ID)
		require.NoError(t, err)
		assert.False(t, isMember)
		assert.Equal(t, int64(0), f.requestCount(t, g.ID))
	})

	t.Run("preconditions", func(t *testing.T) {
		f := newGroupFixture(t)
		g, err := f.svc.Create(ctx, f.owner.ID, CreateGroupInput{Name: "Private", IsPrivate: true})
		require.NoError(t, err)

		_, err = f.svc.RespondToAddingRequest(ctx, g.ID, f.alice.ID, f.owner.ID, models.JoinRequestStatusApproved)
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err), "no request")

		_, err = f.svc.RespondToAddingRequest(ctx, g.ID, f.owner.ID, f.owner.ID, models.JoinRequestStatusApproved)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err), "already a member")

		_, _, err = f.svc.AddUserToGroup(ctx, g.ID, f.alice.ID)
		require.NoError(t, err)

		_, err = f.svc.RespondToAddingRequest(ctx, g.ID, f.alice.ID, f.owner.ID, models.JoinRequestStatusPending)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err), "bad status")

		_, err = f.svc.RespondToAddingRequest(ctx, g.ID, f.alice.ID, f.bob.ID, models.JoinRequestStatusApproved)
		assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err), "non-admin resolving a request")

		_, err = f.svc.RespondToAddingRequest(ctx, g.ID, f.alice.ID, f.alice.ID, models.JoinRequestStatusApproved)
		assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err), "requester approving own request")
		assert.Equal(t, int64(1), f.requestCount(t, g.ID))
	})

	t.Run("invitation is resolved by the invitee", func(t *testing.T) {
		f := newGroupFixture(t)
		g, err := f.svc.Create(ctx, f.owner.ID, CreateGroupInput{Name: "Private", IsPrivate: true})
		require.NoError(t, err)

		req, err := f.svc.InviteUser(ctx, g.ID, f.owner.ID, f.bob.ID)
		require.NoError(t, err)
		assert.True(t, req.IsInvitation())

		_, err = f.svc.RespondToAddingRequest(ctx, g.ID, f.bob.ID, f.owner.ID, models.JoinRequestStatusApproved)
		assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

		m, err := f.svc.RespondToAddingRequest(ctx, g.ID, f.bob.ID, f.bob.ID, models.JoinRequestStatusApproved)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Contains(t, f.notifier.types(), models.NotificationGroupInvite)
	})

	t.Run("non-admin cannot invite", func(t *testing.T) {
		f := newGroupFixture(t)
		g, err := f.svc.Create(ctx, f.owner.ID, CreateGroupInput{Name: "Private", IsPrivate: true})
		require.NoError(t, err)

		_, err = f.svc.InviteUser(ctx, g.ID, f.alice.ID, f.bob.ID)
		assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
	})
}

func TestGroupService_Update(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	g, err := f.svc.Create(ctx, f.owner.ID, CreateGroupInput{
		Name:        "Gophers",
		Description: "all things Go",
		ImageURL:    "https://img.example.com/gopher.png",
		Color:       "#00ADD8",
	})
	require.NoError(t, err)

	t.Run("only color changes", func(t *testing.T) {
		color := "#FF0000"
		_, err := f.svc.Update(ctx, g.ID, f.owner.ID, UpdateGroupInput{Color: &color})
		require.NoError(t, err)

		got, err := f.svc.Get(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, "#FF0000", got.Color)
		assert.Equal(t, "all things Go", got.Description)
		assert.Equal(t, "https://img.example.com/gopher.png", got.ImageURL)
		assert.Equal(t, "Gophers", got.Name)
	})

	t.Run("invalid color", func(t *testing.T) {
		color := "red"
		_, err := f.svc.Update(ctx, g.ID, f.owner.ID, UpdateGroupInput{Color: &color})
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("non-admin", func(t *testing.T) {
		name := "Hijacked"
		_, err := f.svc.Update(ctx, g.ID, f.alice.ID, UpdateGroupInput{Name: &name})
		assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
	})
}

func TestGroupService_DeleteAndMembership(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	g, err := f.svc.Create(ctx, f.owner.ID, CreateGroupInput{Name: "Temp"})
	require.NoError(t, err)
	_, _, err = f.svc.AddUserToGroup(ctx, g.ID, f.alice.ID)
	require.NoError(t, err)

	assert.Equal(t, models.CodeValidation, models.ErrorCode(f.svc.Leave(ctx, g.ID, f.owner.ID)))
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(f.svc.RemoveMember(ctx, g.ID, f.alice.ID, f.owner.ID)))

	_, err = f.svc.ListJoinRequests(ctx, g.ID, f.alice.ID)
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

	members, err := f.svc.ListMembers(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(f.svc.Delete(ctx, g.ID, f.alice.ID)))
	require.NoError(t, f.svc.Delete(ctx, g.ID, f.owner.ID))

	_, err = f.svc.Get(ctx, g.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.Equal(t, int64(0), f.memberCount(t, g.ID))
}
