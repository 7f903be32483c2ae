package models

import "time"

// NotificationType classifies a notification.
type NotificationType string

// Notification types emitted by the services.
const (
	NotificationFriendRequest    NotificationType = "friend_request"
	NotificationFriendAccepted   NotificationType = "friend_accepted"
	NotificationGroupJoinRequest NotificationType = "group_join_request"
	NotificationGroupInvite      NotificationType = "group_invite"
	NotificationGroupJoined      NotificationType = "group_joined"
	NotificationPostLiked        NotificationType = "post_liked"
	NotificationPostCommented    NotificationType = "post_commented"
	NotificationPostReposted     NotificationType = "post_reposted"
	NotificationMessage          NotificationType = "message"
	NotificationAchievement      NotificationType = "achievement"
)

// Notification is a persisted, per-user notice about something that happened.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index:idx_notification_user_read" json:"user_id"`
	ActorID   *uint            `json:"actor_id,omitempty"`
	Type      NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Message   string           `gorm:"size:500;not null" json:"message"`
	RefType   string           `gorm:"size:32" json:"ref_type,omitempty"`
	RefID     uint             `json:"ref_id,omitempty"`
	ReadAt    *time.Time       `gorm:"index:idx_notification_user_read" json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
