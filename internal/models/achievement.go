package models

import "time"

// Achievement is a catalog entry awarded once a statistic reaches Threshold.
type Achievement struct {
	Code        string `yaml:"code" json:"code"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Metric      string `yaml:"metric" json:"metric"`
	Threshold   int64  `yaml:"threshold" json:"threshold"`
}

// UserAchievement records that a user earned an achievement.
type UserAchievement struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementCode string    `gorm:"size:64;not null;uniqueIndex:idx_user_achievement" json:"achievement_code"`
	AwardedAt       time.Time `gorm:"not null" json:"awarded_at"`
}

// AllModels lists every persisted model, in migration order.
func AllModels() []any {
	return []any{
		&User{},
		&VerificationToken{},
		&Friend{},
		&Group{},
		&GroupMember{},
		&GroupJoinRequest{},
		&Post{},
		&Comment{},
		&Like{},
		&Repost{},
		&Message{},
		&Notification{},
		&UserAchievement{},
	}
}
