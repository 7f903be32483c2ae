package service

import (
	"context"
	"fmt"
	"strings"

	"socialhub/internal/database"
	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/repository"
	"socialhub/internal/validation"
)

const (
	maxGroupNameLen        = 120
	maxGroupDescriptionLen = 5000
)

// CreateGroupInput is the payload for creating a group.
type CreateGroupInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Color       string `json:"color"`
	IsPrivate   bool   `json:"is_private"`
}

// UpdateGroupInput carries a partial group update; nil fields are left unchanged.
type UpdateGroupInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	Color       *string `json:"color"`
	IsPrivate   *bool   `json:"is_private"`
}

// GroupService provides group, membership and join-request business logic.
type GroupService struct {
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	tx        database.Transactor
	notifier  NotificationSender
	publisher EventPublisher
}

// NewGroupService returns a new GroupService. notifier and publisher may be nil.
func NewGroupService(
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	tx database.Transactor,
	notifier NotificationSender,
	publisher EventPublisher,
) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		tx:        tx,
		notifier:  notifier,
		publisher: publisher,
	}
}

// Create stores the group and the owner's ADMIN membership in one transaction.
func (s *GroupService) Create(ctx context.Context, ownerID uint, in CreateGroupInput) (_ *models.Group, err error) {
	ctx, end := observability.StartServiceSpan(ctx, "GroupService", "Create")
	defer func() { end(err) }()

	name := strings.TrimSpace(in.Name)
	if err := validateGroupFields(name, in.Description, in.Color); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Color:       in.Color,
		IsPrivate:   in.IsPrivate,
		OwnerID:     ownerID,
	}
	err = withinTx(ctx, s.tx, func(ctx context.Context) error {
		if err := s.groupRepo.Create(ctx, group); err != nil {
			return err
		}
		return s.groupRepo.AddMember(ctx, &models.GroupMember{
			GroupID: group.ID,
			UserID:  ownerID,
			Role:    models.GroupRoleAdmin,
		})
	})
	if err != nil {
		return nil, err
	}
	group.MemberCount = 1
	observability.RecordEvent("group_created")
	return group, nil
}

// Get returns a group by ID.
func (s *GroupService) Get(ctx context.Context, groupID uint) (*models.Group, error) {
	return s.groupRepo.GetByID(ctx, groupID)
}

// List returns groups whose name matches query, newest first.
func (s *GroupService) List(ctx context.Context, query string, limit, offset int) ([]models.Group, error) {
	return s.groupRepo.List(ctx, query, limit, offset)
}

// AddUserToGroup joins a public group directly, or files a PENDING join request for a private one.
// Exactly one of the returned membership and request is non-nil on success.
func (s *GroupService) AddUserToGroup(ctx context.Context, groupID, userID uint) (_ *models.GroupMember, _ *models.GroupJoinRequest, err error) {
	ctx, end := observability.StartServiceSpan(ctx, "GroupService", "AddUserToGroup")
	defer func() { end(err) }()

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.ensureNotMember(ctx, groupID, userID); err != nil {
		return nil, nil, err
	}

	if !group.IsPrivate {
		member := &models.GroupMember{GroupID: groupID, UserID: userID, Role: models.GroupRoleMember}
		if err := s.groupRepo.AddMember(ctx, member); err != nil {
			return nil, nil, err
		}
		notify(ctx, s.notifier, NotifyInput{
			UserID:  group.OwnerID,
			ActorID: actor(userID),
			Type:    models.NotificationGroupJoined,
			Message: fmt.Sprintf("%s joined %s", user.Username, group.Name),
			RefType: "group",
			RefID:   groupID,
		})
		publishEvent(ctx, s.publisher, group.OwnerID, EventGroupMemberJoined, member)
		return member, nil, nil
	}

	req, err := s.upsertJoinRequest(ctx, groupID, userID, userID)
	if err != nil {
		return nil, nil, err
	}
	notify(ctx, s.notifier, NotifyInput{
		UserID:  group.OwnerID,
		ActorID: actor(userID),
		Type:    models.NotificationGroupJoinRequest,
		Message: fmt.Sprintf("%s asked to join %s", user.Username, group.Name),
		RefType: "group",
		RefID:   groupID,
	})
	publishEvent(ctx, s.publisher, group.OwnerID, EventGroupJoinRequested, req)
	return nil, req, nil
}

// InviteUser files a PENDING invitation for userID on behalf of a group admin.
func (s *GroupService) InviteUser(ctx context.Context, groupID, adminID, userID uint) (*models.GroupJoinRequest, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, groupID, adminID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.ensureNotMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	req, err := s.upsertJoinRequest(ctx, groupID, userID, adminID)
	if err != nil {
		return nil, err
	}
	notify(ctx, s.notifier, NotifyInput{
		UserID:  userID,
		ActorID: actor(adminID),
		Type:    models.NotificationGroupInvite,
		Message: fmt.Sprintf("You were invited to join %s", group.Name),
		RefType: "group",
		RefID:   groupID,
	})
	return req, nil
}

// RespondToAddingRequest resolves the join request of userID in groupID.
// A self-initiated request is resolved by a group admin, an invitation by the invited user.
// Membership creation and request deletion commit together.
func (s *GroupService) RespondToAddingRequest(
	ctx context.Context, groupID, userID, actorID uint, status models.JoinRequestStatus,
) (_ *models.GroupMember, err error) {
	ctx, end := observability.StartServiceSpan(ctx, "GroupService", "RespondToAddingRequest")
	defer func() { end(err) }()

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNotMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	req, err := s.groupRepo.GetJoinRequest(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, models.NewNotFoundError("Join request", fmt.Sprintf("group %d user %d", groupID, userID))
	}
	if status != models.JoinRequestStatusApproved && status != models.JoinRequestStatusRejected {
		return nil, models.NewValidationError("Status must be APPROVED or REJECTED")
	}

	if req.IsInvitation() {
		if actorID != userID {
			return nil, models.NewUnauthorizedError("Only the invited user can respond to an invitation")
		}
	} else if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	var member *models.GroupMember
	err = withinTx(ctx, s.tx, func(ctx context.Context) error {
		if status == models.JoinRequestStatusApproved {
			member = &models.GroupMember{GroupID: groupID, UserID: userID, Role: models.GroupRoleMember}
			if err := s.groupRepo.AddMember(ctx, member); err != nil {
				return err
			}
		}
		return s.groupRepo.DeleteJoinRequest(ctx, req.ID)
	})
	if err != nil {
		return nil, err
	}

	if member != nil {
		recipient := userID
		if req.IsInvitation() {
			recipient = req.InitiatorID
		}
		notify(ctx, s.notifier, NotifyInput{
			UserID:  recipient,
			ActorID: actor(actorID),
			Type:    models.NotificationGroupJoined,
			Message: fmt.Sprintf("Membership in %s approved", group.Name),
			RefType: "group",
			RefID:   groupID,
		})
		publishEvent(ctx, s.publisher, userID, EventGroupMemberJoined, member)
	}
	observability.RecordEvent("group_request_" + strings.ToLower(string(status)))
	return member, nil
}

// Update overwrites only the non-nil fields of in. The actor must be a group admin.
func (s *GroupService) Update(ctx context.Context, groupID, actorID uint, in UpdateGroupInput) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	if in.Name != nil {
		group.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		group.Description = strings.TrimSpace(*in.Description)
	}
	if in.ImageURL != nil {
		group.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Color != nil {
		group.Color = *in.Color
	}
	if in.IsPrivate != nil {
		group.IsPrivate = *in.IsPrivate
	}
	if err := validateGroupFields(group.Name, group.Description, group.Color); err != nil {
		return nil, err
	}

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Delete removes the group and everything attached to it. Only the owner may delete.
func (s *GroupService) Delete(ctx context.Context, groupID, ownerID uint) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != ownerID {
		return models.NewUnauthorizedError("Only the group owner can delete the group")
	}
	if err := s.groupRepo.Delete(ctx, groupID); err != nil {
		return err
	}
	observability.RecordEvent("group_deleted")
	return nil
}

// ListMembers returns the group's memberships with their users.
func (s *GroupService) ListMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.groupRepo.ListMembers(ctx, groupID)
}

// ListJoinRequests returns pending requests and invitations. Admins only.
func (s *GroupService) ListJoinRequests(ctx context.Context, groupID, adminID uint) ([]models.GroupJoinRequest, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, groupID, adminID); err != nil {
		return nil, err
	}
	return s.groupRepo.ListJoinRequests(ctx, groupID)
}

// Leave removes userID from the group. The owner cannot leave.
func (s *GroupService) Leave(ctx context.Context, groupID, userID uint) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID == userID {
		return models.NewValidationError("The group owner cannot leave the group")
	}
	return s.groupRepo.RemoveMember(ctx, groupID, userID)
}

// RemoveMember lets an admin remove another member. The owner cannot be removed.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, adminID, userID uint) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, groupID, adminID); err != nil {
		return err
	}
	if group.OwnerID == userID {
		return models.NewValidationError("The group owner cannot be removed")
	}
	return s.groupRepo.RemoveMember(ctx, groupID, userID)
}

// IsMember reports whether userID belongs to the group.
func (s *GroupService) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	m, err := s.groupRepo.GetMember(ctx, groupID, userID)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

func (s *GroupService) ensureNotMember(ctx context.Context, groupID, userID uint) error {
	m, err := s.groupRepo.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if m != nil {
		return models.NewValidationError("User is already a member of this group")
	}
	return nil
}

func (s *GroupService) requireAdmin(ctx context.Context, groupID, userID uint) error {
	m, err := s.groupRepo.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if m == nil || m.Role != models.GroupRoleAdmin {
		return models.NewUnauthorizedError("Only group admins can perform this action")
	}
	return nil
}

// upsertJoinRequest resets an existing request to PENDING or creates a new one.
func (s *GroupService) upsertJoinRequest(ctx context.Context, groupID, userID, initiatorID uint) (*models.GroupJoinRequest, error) {
	existing, err := s.groupRepo.GetJoinRequest(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.groupRepo.ResetJoinRequest(ctx, existing, initiatorID); err != nil {
			return nil, err
		}
		return existing, nil
	}
	req := &models.GroupJoinRequest{
		GroupID:     groupID,
		UserID:      userID,
		InitiatorID: initiatorID,
		Status:      models.JoinRequestStatusPending,
	}
	if err := s.groupRepo.CreateJoinRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func validateGroupFields(name, description, color string) error {
	if name == "" {
		return models.NewValidationError("Group name is required")
	}
	if len(name) > maxGroupNameLen {
		return models.NewValidationError(fmt.Sprintf("Group name must be at most %d characters", maxGroupNameLen))
	}
	if len(description) > maxGroupDescriptionLen {
		return models.NewValidationError(fmt.Sprintf("Group description must be at most %d characters", maxGroupDescriptionLen))
	}
	if color != "" {
		if err := validation.ValidateColor(color); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	return nil
}
