package service

import (
	"context"
	"strings"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/repository"
)

const maxNotificationLen = 500

// NotifyInput describes a notification to record.
type NotifyInput struct {
	UserID  uint
	ActorID *uint
	Type    models.NotificationType
	Message string
	RefType string
	RefID   uint
}

// NotificationService persists notifications and pushes them to connected clients.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	publisher        EventPublisher
	now              func() time.Time
}

// NewNotificationService returns a NotificationService. publisher may be nil.
func NewNotificationService(notificationRepo repository.NotificationRepository, publisher EventPublisher) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
		now:              time.Now,
	}
}

// Notify persists a notification and then publishes notification_created to the recipient.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) (*models.Notification, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("Notification recipient is required")
	}
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return nil, models.NewValidationError("Notification message is required")
	}
	if len(msg) > maxNotificationLen {
		msg = msg[:maxNotificationLen]
	}

	n := &models.Notification{
		UserID:  in.UserID,
		ActorID: in.ActorID,
		Type:    in.Type,
		Message: msg,
		RefType: in.RefType,
		RefID:   in.RefID,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, n.UserID, EventNotificationCreated, n)
	return n, nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	return s.notificationRepo.List(ctx, userID, unreadOnly, limit, offset)
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) error {
	return s.notificationRepo.MarkRead(ctx, id, userID, s.now())
}

// MarkAllRead marks every unread notification of the user as read and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, userID, s.now())
}

// Delete removes one of the user's notifications.
func (s *NotificationService) Delete(ctx context.Context, id, userID uint) error {
	return s.notificationRepo.Delete(ctx, id, userID)
}

// UnreadCount returns the number of unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.UnreadCount(ctx, userID)
}
