package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is a direct message between two users.
type Message struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	SenderID   uint           `gorm:"not null;index:idx_message_pair" json:"sender_id"`
	ReceiverID uint           `gorm:"not null;index:idx_message_pair;index" json:"receiver_id"`
	Sender     *User          `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	ReadAt     *time.Time     `json:"read_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
