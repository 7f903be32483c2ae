package server

import (
	"socialhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFriends handles GET /api/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	friends, err := s.friendService.ListFriends(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Friends retrieved", friends)
}

// GetPendingRequests handles GET /api/friends/requests
func (s *Server) GetPendingRequests(c *fiber.Ctx) error {
	requests, err := s.friendService.ListIncomingRequests(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Friend requests retrieved", requests)
}

// GetSentRequests handles GET /api/friends/requests/sent
func (s *Server) GetSentRequests(c *fiber.Ctx) error {
	requests, err := s.friendService.ListOutgoingRequests(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Sent friend requests retrieved", requests)
}

// SendFriendRequest handles POST /api/friends/requests/:userId
// @Summary Send a friend request
// @Tags friends
// @Security BearerAuth
// @Param userId path int true "Addressee user ID"
// @Success 201 {object} models.Envelope[models.Friend]
// @Failure 400 {object} models.Envelope[any]
// @Failure 404 {object} models.Envelope[any]
// @Router /friends/requests/{userId} [post]
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	edge, err := s.friendService.AddFriendRequest(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusCreated, "Friend request sent", edge)
}

// RespondToFriendRequest handles POST /api/friends/requests/:userId/respond.
// :userId is the requester; the caller is the addressee.
// @Summary Accept or decline a friend request
// @Tags friends
// @Security BearerAuth
// @Param userId path int true "Requester user ID"
// @Param request body object{status=string} true "ACCEPTED or DECLINED"
// @Success 200 {object} models.Envelope[models.Friend]
// @Failure 400 {object} models.Envelope[any]
// @Failure 404 {object} models.Envelope[any]
// @Router /friends/requests/{userId}/respond [post]
func (s *Server) RespondToFriendRequest(c *fiber.Ctx) error {
	requesterID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	var req struct {
		Status models.FriendStatus `json:"status"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	edge, err := s.friendService.RespondToFriendRequest(c.UserContext(), requesterID, currentUserID(c), req.Status)
	if err != nil {
		return models.RespondError(c, err)
	}
	msg := "Friend request accepted"
	if req.Status == models.FriendStatusDeclined {
		msg = "Friend request declined"
	}
	return models.RespondOK(c, fiber.StatusOK, msg, edge)
}

// CancelFriendRequest handles DELETE /api/friends/requests/:userId (withdraw an outgoing request).
func (s *Server) CancelFriendRequest(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.friendService.DeleteFriend(c.UserContext(), currentUserID(c), targetID); err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK[any](c, fiber.StatusOK, "Friend request cancelled", nil)
}

// RemoveFriend handles DELETE /api/friends/:userId, dropping the connection in either direction.
func (s *Server) RemoveFriend(c *fiber.Ctx) error {
	otherID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.friendService.RemoveConnection(c.UserContext(), currentUserID(c), otherID); err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK[any](c, fiber.StatusOK, "Friend removed", nil)
}

// GetFriendshipStatus handles GET /api/friends/status/:userId
func (s *Server) GetFriendshipStatus(c *fiber.Ctx) error {
	otherID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	status, err := s.friendService.GetStatus(c.UserContext(), currentUserID(c), otherID)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Friendship status retrieved", status)
}
