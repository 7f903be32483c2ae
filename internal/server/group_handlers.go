package server

import (
	"socialhub/internal/models"
	"socialhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetGroups handles GET /api/groups?q=
func (s *Server) GetGroups(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	groups, err := s.groupService.List(c.UserContext(), c.Query("q"), page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Groups retrieved", groups)
}

// CreateGroup handles POST /api/groups
// @Summary Create a group
// @Description Creates the group and makes the caller its ADMIN in one transaction
// @Tags groups
// @Security BearerAuth
// @Accept json
// @Param request body service.CreateGroupInput true "Group"
// @Success 201 {object} models.Envelope[models.Group]
// @Failure 400 {object} models.Envelope[any]
// @Router /groups [post]
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	var req service.CreateGroupInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	group, err := s.groupService.Create(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusCreated, "Group created", group)
}

// GetGroup handles GET /api/groups/:id
func (s *Server) GetGroup(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	group, err := s.groupService.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Group retrieved", group)
}

// UpdateGroup handles PUT /api/groups/:id
func (s *Server) UpdateGroup(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateGroupInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	group, err := s.groupService.Update(c.UserContext(), id, currentUserID(c), req)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Group updated", group)
}

// DeleteGroup handles DELETE /api/groups/:id (owner only)
func (s *Server) DeleteGroup(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.groupService.Delete(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK[any](c, fiber.StatusOK, "Group deleted", nil)
}

// GetGroupMembers handles GET /api/groups/:id/members
func (s *Server) GetGroupMembers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	members, err := s.groupService.ListMembers(c.UserContext(), id)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Members retrieved", members)
}

// JoinGroup handles POST /api/groups/:id/join.
// Public groups answer 201 with the membership, private groups 202 with the pending request.
// @Summary Join a group
// @Tags groups
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 201 {object} models.Envelope[models.GroupMember]
// @Success 202 {object} models.Envelope[models.GroupJoinRequest]
// @Failure 400 {object} models.Envelope[any]
// @Failure 404 {object} models.Envelope[any]
// @Router /groups/{id}/join [post]
func (s *Server) JoinGroup(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	member, request, err := s.groupService.AddUserToGroup(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	if member != nil {
		return models.RespondOK(c, fiber.StatusCreated, "Joined group", member)
	}
	return models.RespondOK(c, fiber.StatusAccepted, "Join request sent", request)
}

// LeaveGroup handles POST /api/groups/:id/leave
func (s *Server) LeaveGroup(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.groupService.Leave(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK[any](c, fiber.StatusOK, "Left group", nil)
}

// RemoveGroupMember handles DELETE /api/groups/:id/members/:userId (admin only)
func (s *Server) RemoveGroupMember(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.groupService.RemoveMember(c.UserContext(), id, currentUserID(c), userID); err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK[any](c, fiber.StatusOK, "Member removed", nil)
}

// InviteToGroup handles POST /api/groups/:id/invite/:userId (admin only)
func (s *Server) InviteToGroup(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	request, err := s.groupService.InviteUser(c.UserContext(), id, currentUserID(c), userID)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusCreated, "Invitation sent", request)
}

// GetGroupJoinRequests handles GET /api/groups/:id/requests (admin only)
func (s *Server) GetGroupJoinRequests(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	requests, err := s.groupService.ListJoinRequests(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Join requests retrieved", requests)
}

// RespondToJoinRequest handles POST /api/groups/:id/requests/:userId/respond.
// Admins resolve join requests; the invited user resolves an invitation with their own ID.
// @Summary Approve or reject a join request or invitation
// @Tags groups
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param userId path int true "User the request is about"
// @Param request body object{status=string} true "APPROVED or REJECTED"
// @Success 200 {object} models.Envelope[models.GroupMember]
// @Failure 400 {object} models.Envelope[any]
// @Failure 403 {object} models.Envelope[any]
// @Failure 404 {object} models.Envelope[any]
// @Router /groups/{id}/requests/{userId}/respond [post]
func (s *Server) RespondToJoinRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	var req struct {
		Status models.JoinRequestStatus `json:"status"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	member, err := s.groupService.RespondToAddingRequest(c.UserContext(), id, userID, currentUserID(c), req.Status)
	if err != nil {
		return models.RespondError(c, err)
	}
	if member == nil {
		return models.RespondOK[any](c, fiber.StatusOK, "Join request rejected", nil)
	}
	return models.RespondOK(c, fiber.StatusOK, "Join request approved", member)
}

// GetGroupPosts handles GET /api/groups/:id/posts
func (s *Server) GetGroupPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	posts, err := s.postService.GetGroupPosts(c.UserContext(), id, service.ListPostsInput{
		Limit:         page.Limit,
		Offset:        page.Offset,
		CurrentUserID: currentUserID(c),
	})
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Posts retrieved", posts)
}
