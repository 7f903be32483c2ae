package server

import (
	"socialhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMessagePartners handles GET /api/messages: everyone the caller has exchanged messages with.
func (s *Server) GetMessagePartners(c *fiber.Ctx) error {
	partners, err := s.messageService.ListPartners(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Conversations retrieved", partners)
}

// SendMessage handles POST /api/messages
// @Summary Send a direct message
// @Tags messages
// @Security BearerAuth
// @Accept json
// @Param request body object{receiver_id=int,content=string} true "Message"
// @Success 201 {object} models.Envelope[models.Message]
// @Failure 400 {object} models.Envelope[any]
// @Failure 404 {object} models.Envelope[any]
// @Router /messages [post]
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req struct {
		ReceiverID uint   `json:"receiver_id"`
		Content    string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.ReceiverID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("receiver_id is required"))
	}

	msg, err := s.messageService.Send(c.UserContext(), currentUserID(c), req.ReceiverID, req.Content)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusCreated, "Message sent", msg)
}

// GetConversation handles GET /api/messages/with/:userId
func (s *Server) GetConversation(c *fiber.Ctx) error {
	otherID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)
	messages, err := s.messageService.Conversation(c.UserContext(), currentUserID(c), otherID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Messages retrieved", messages)
}

// UpdateMessage handles PUT /api/messages/:id (sender only)
func (s *Server) UpdateMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	msg, err := s.messageService.Update(c.UserContext(), id, currentUserID(c), req.Content)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Message updated", msg)
}

// DeleteMessage handles DELETE /api/messages/:id (sender only)
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.messageService.Delete(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK[any](c, fiber.StatusOK, "Message deleted", nil)
}

// MarkMessageRead handles POST /api/messages/:id/read (receiver only)
func (s *Server) MarkMessageRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	msg, err := s.messageService.MarkRead(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Message marked as read", msg)
}
