package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/repository"
)

const maxMessageLen = 5000

// MessageService handles direct messages between two users.
type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    NotificationSender
	publisher   EventPublisher
	now         func() time.Time
}

// NewMessageService returns a MessageService. notifier and publisher may be nil.
func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	notifier NotificationSender,
	publisher EventPublisher,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		publisher:   publisher,
		now:         time.Now,
	}
}

func validateMessageContent(content string) error {
	if content == "" {
		return models.NewValidationError("Message content is required")
	}
	if len(content) > maxMessageLen {
		return models.NewValidationError(fmt.Sprintf("Message too long (max %d characters)", maxMessageLen))
	}
	return nil
}

// Send stores a message and pushes message_received to the receiver.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	if senderID == receiverID {
		return nil, models.NewValidationError("Cannot send a message to yourself")
	}
	content = strings.TrimSpace(content)
	if err := validateMessageContent(content); err != nil {
		return nil, err
	}
	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	msg := &models.Message{SenderID: senderID, ReceiverID: receiverID, Content: content}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	msg.Sender = sender

	publishEvent(ctx, s.publisher, receiverID, EventMessageReceived, msg)
	notify(ctx, s.notifier, NotifyInput{
		UserID:  receiverID,
		ActorID: actor(senderID),
		Type:    models.NotificationMessage,
		Message: fmt.Sprintf("New message from %s", sender.Username),
		RefType: "message",
		RefID:   msg.ID,
	})
	observability.RecordEvent("message_sent")
	return msg, nil
}

// Conversation returns the messages between userID and otherID, newest first.
func (s *MessageService) Conversation(ctx context.Context, userID, otherID uint, limit, offset int) ([]models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, otherID); err != nil {
		return nil, err
	}
	return s.messageRepo.Conversation(ctx, userID, otherID, limit, offset)
}

// Update edits a message. Only the sender may edit.
func (s *MessageService) Update(ctx context.Context, messageID, senderID uint, content string) (*models.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != senderID {
		return nil, models.NewUnauthorizedError("You can only edit your own messages")
	}
	content = strings.TrimSpace(content)
	if err := validateMessageContent(content); err != nil {
		return nil, err
	}
	msg.Content = content
	if err := s.messageRepo.Update(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Delete removes a message. Only the sender may delete.
func (s *MessageService) Delete(ctx context.Context, messageID, senderID uint) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != senderID {
		return models.NewUnauthorizedError("You can only delete your own messages")
	}
	return s.messageRepo.Delete(ctx, messageID)
}

// MarkRead marks a received message as read. Only the receiver may do this.
func (s *MessageService) MarkRead(ctx context.Context, messageID, receiverID uint) (*models.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.ReceiverID != receiverID {
		return nil, models.NewUnauthorizedError("You can only mark your own messages as read")
	}
	if msg.ReadAt != nil {
		return msg, nil
	}
	at := s.now().UTC()
	if err := s.messageRepo.MarkRead(ctx, messageID, at); err != nil {
		return nil, err
	}
	msg.ReadAt = &at
	return msg, nil
}

// ListPartners returns everyone the user has exchanged messages with, most recent first.
func (s *MessageService) ListPartners(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	ids, err := s.messageRepo.PartnerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	partners := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		u, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			if models.ErrorCode(err) == models.CodeNotFound {
				continue
			}
			return nil, err
		}
		partners = append(partners, u.Summary())
	}
	return partners, nil
}
