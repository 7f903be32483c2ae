package repository

import (
	"context"
	"time"

	"socialhub/internal/database"
	"socialhub/internal/models"

	"gorm.io/gorm"
)

// StatisticRepository counts a user's activity. A nil since counts all time;
// otherwise only rows created (or, for friends, accepted) at or after since.
type StatisticRepository interface {
	CountPosts(ctx context.Context, userID uint, since *time.Time) (int64, error)
	CountComments(ctx context.Context, userID uint, since *time.Time) (int64, error)
	CountLikes(ctx context.Context, userID uint, since *time.Time) (int64, error)
	CountCommentsReceived(ctx context.Context, userID uint, since *time.Time) (int64, error)
	CountLikesReceived(ctx context.Context, userID uint, since *time.Time) (int64, error)
	CountFriends(ctx context.Context, userID uint, since *time.Time) (int64, error)
}

type statisticRepository struct {
	db *gorm.DB
}

// NewStatisticRepository returns a gorm-backed StatisticRepository.
func NewStatisticRepository(db *gorm.DB) StatisticRepository {
	return &statisticRepository{db: db}
}

func count(q *gorm.DB) (int64, error) {
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func since(q *gorm.DB, column string, t *time.Time) *gorm.DB {
	if t == nil {
		return q
	}
	return q.Where(column+" >= ?", *t)
}

func (r *statisticRepository) CountPosts(ctx context.Context, userID uint, t *time.Time) (int64, error) {
	q := database.Reader(ctx, r.db).Model(&models.Post{}).Where("user_id = ?", userID)
	return count(since(q, "created_at", t))
}

func (r *statisticRepository) CountComments(ctx context.Context, userID uint, t *time.Time) (int64, error) {
	q := database.Reader(ctx, r.db).Model(&models.Comment{}).Where("user_id = ?", userID)
	return count(since(q, "created_at", t))
}

func (r *statisticRepository) CountLikes(ctx context.Context, userID uint, t *time.Time) (int64, error) {
	q := database.Reader(ctx, r.db).Model(&models.Like{}).Where("user_id = ?", userID)
	return count(since(q, "created_at", t))
}

func (r *statisticRepository) CountCommentsReceived(ctx context.Context, userID uint, t *time.Time) (int64, error) {
	q := database.Reader(ctx, r.db).
		Model(&models.Comment{}).
		Joins("JOIN posts ON posts.id = comments.post_id AND posts.deleted_at IS NULL").
		Where("posts.user_id = ?", userID)
	return count(since(q, "comments.created_at", t))
}

func (r *statisticRepository) CountLikesReceived(ctx context.Context, userID uint, t *time.Time) (int64, error) {
	q := database.Reader(ctx, r.db).
		Model(&models.Like{}).
		Joins("JOIN posts ON posts.id = likes.post_id AND posts.deleted_at IS NULL").
		Where("posts.user_id = ?", userID)
	return count(since(q, "likes.created_at", t))
}

// CountFriends counts distinct accepted friends, so mutual accepted edges count once.
func (r *statisticRepository) CountFriends(ctx context.Context, userID uint, t *time.Time) (int64, error) {
	q := database.Reader(ctx, r.db).
		Model(&models.Friend{}).
		Select("user_id", "friend_id").
		Where("status = ? AND (user_id = ? OR friend_id = ?)", models.FriendStatusAccepted, userID, userID)

	var edges []models.Friend
	if err := since(q, "accepted_at", t).Find(&edges).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	others := make(map[uint]struct{}, len(edges))
	for _, e := range edges {
		others[e.Other(userID)] = struct{}{}
	}
	return int64(len(others)), nil
}
