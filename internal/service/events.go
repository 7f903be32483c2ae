// Package service implements the application's business rules on top of the repositories.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/observability"
)

// Realtime event types pushed to a user's channel.
const (
	EventFriendRequestReceived = "friend_request_received"
	EventFriendRequestAccepted = "friend_request_accepted"
	EventFriendRequestDeclined = "friend_request_declined"
	EventFriendRemoved         = "friend_removed"
	EventGroupJoinRequested    = "group_join_requested"
	EventGroupMemberJoined     = "group_member_joined"
	EventMessageReceived       = "message_received"
	EventNotificationCreated   = "notification_created"
)

// EventPublisher pushes a serialized event to one user's realtime channel.
type EventPublisher interface {
	PublishUser(ctx context.Context, userID uint, payload string) error
}

// NotificationSender records a notification for a user.
type NotificationSender interface {
	Notify(ctx context.Context, in NotifyInput) (*models.Notification, error)
}

// Event is the JSON frame delivered to websocket clients.
type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sent_at"`
}

// publishEvent delivers an event after the triggering write committed.
// Failures are logged; the write already succeeded.
func publishEvent(ctx context.Context, pub EventPublisher, userID uint, eventType string, payload any) {
	observability.RecordEvent(eventType)
	if pub == nil {
		return
	}
	data, err := json.Marshal(Event{Type: eventType, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		observability.LogAsyncOperationError(ctx, "publish_event", err, slog.String("event", eventType))
		return
	}
	if err := pub.PublishUser(ctx, userID, string(data)); err != nil {
		observability.LogAsyncOperationError(ctx, "publish_event", err,
			slog.String("event", eventType),
			slog.Uint64("user_id", uint64(userID)))
	}
}

// notify records a notification without failing the caller.
func notify(ctx context.Context, sender NotificationSender, in NotifyInput) {
	if sender == nil || in.UserID == 0 || (in.ActorID != nil && *in.ActorID == in.UserID) {
		return
	}
	if _, err := sender.Notify(ctx, in); err != nil {
		observability.LogAsyncOperationError(ctx, "notify", err,
			slog.String("type", string(in.Type)),
			slog.Uint64("user_id", uint64(in.UserID)))
	}
}

func actor(id uint) *uint {
	return &id
}
