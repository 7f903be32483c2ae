// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account and its public profile.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Username      string         `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email         string         `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password      string         `gorm:"not null" json:"-"`
	FirstName     string         `gorm:"size:60" json:"first_name"`
	LastName      string         `gorm:"size:60" json:"last_name"`
	Phone         string         `gorm:"size:32" json:"phone"`
	Birthdate     *time.Time     `json:"birthdate,omitempty"`
	Avatar        string         `json:"avatar"`
	City          string         `gorm:"size:120" json:"city"`
	Bio           string         `gorm:"type:text" json:"bio"`
	EmailVerified bool           `gorm:"not null;default:false" json:"email_verified"`
	IsAdmin       bool           `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserSummary is the compact user shape embedded in events and notifications.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Summary returns the compact representation of u.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// VerificationToken is a single-use email verification token.
type VerificationToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the token is past its expiry at now.
func (t VerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
