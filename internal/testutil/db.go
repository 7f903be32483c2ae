// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"socialhub/internal/database"
	"socialhub/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory sqlite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection: every new connection would see an empty in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with a unique username derived from name.
func CreateUser(t testing.TB, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{
		Username: fmt.Sprintf("%s_%d", name, time.Now().UnixNano()%1_000_000_000),
		Email:    fmt.Sprintf("%s_%d@example.com", name, time.Now().UnixNano()),
		Password: "hashed",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePost inserts a post by userID with an explicit creation time.
func CreatePost(t testing.TB, db *gorm.DB, userID uint, createdAt time.Time) *models.Post {
	t.Helper()
	p := &models.Post{Title: "title", Content: "content", UserID: userID, CreatedAt: createdAt}
	require.NoError(t, db.Omit("User").Create(p).Error)
	return p
}

// AcceptedFriends inserts an accepted edge from -> to.
func AcceptedFriends(t testing.TB, db *gorm.DB, from, to uint, acceptedAt time.Time) *models.Friend {
	t.Helper()
	f := &models.Friend{UserID: from, FriendID: to, Status: models.FriendStatusAccepted, AcceptedAt: &acceptedAt}
	require.NoError(t, db.Create(f).Error)
	return f
}
