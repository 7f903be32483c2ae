package models

import "time"

// FriendStatus represents the state of a directed friend edge.
type FriendStatus string

const (
	// FriendStatusPending indicates a request awaiting the addressee's answer.
	FriendStatusPending FriendStatus = "PENDING"
	// FriendStatusAccepted indicates an accepted request.
	FriendStatusAccepted FriendStatus = "ACCEPTED"
	// FriendStatusDeclined is only ever a response value; declined edges are deleted.
	FriendStatusDeclined FriendStatus = "DECLINED"
)

// Friend is a directed edge from UserID (requester) to FriendID (addressee).
// A reciprocal edge is never created; friendship is derived by checking both directions.
type Friend struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	UserID     uint         `gorm:"not null;uniqueIndex:idx_friend_pair" json:"user_id"`
	FriendID   uint         `gorm:"not null;uniqueIndex:idx_friend_pair;index" json:"friend_id"`
	Status     FriendStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	AcceptedAt *time.Time   `json:"accepted_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`

	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Friend *User `gorm:"foreignKey:FriendID" json:"friend,omitempty"`
}

// TableName specifies the table name for GORM
func (Friend) TableName() string {
	return "friends"
}

// Other returns the endpoint of the edge that is not userID.
func (f Friend) Other(userID uint) uint {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}
