package repository

import (
	"context"
	"errors"
	"time"

	"socialhub/internal/database"
	"socialhub/internal/models"

	"gorm.io/gorm"
)

// FriendRepository defines the interface for friend edge operations.
// Edges are directed: (userID -> friendID).
type FriendRepository interface {
	Create(ctx context.Context, edge *models.Friend) error
	// GetEdge returns nil, nil when no edge exists in that direction.
	GetEdge(ctx context.Context, userID, friendID uint) (*models.Friend, error)
	Accept(ctx context.Context, edgeID uint, at time.Time) error
	Delete(ctx context.Context, edgeID uint) error
	ExistsAccepted(ctx context.Context, userA, userB uint) (bool, error)
	ListFriends(ctx context.Context, userID uint) ([]models.User, error)
	ListIncoming(ctx context.Context, userID uint) ([]models.Friend, error)
	ListOutgoing(ctx context.Context, userID uint) ([]models.Friend, error)
	FriendIDs(ctx context.Context, userID uint) ([]uint, error)
}

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) Create(ctx context.Context, edge *models.Friend) error {
	return translateCreate(database.Conn(ctx, r.db).Create(edge).Error, "Friend request already exists")
}

func (r *friendRepository) GetEdge(ctx context.Context, userID, friendID uint) (*models.Friend, error) {
	var edge models.Friend
	err := database.Conn(ctx, r.db).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &edge, nil
}

func (r *friendRepository) Accept(ctx context.Context, edgeID uint, at time.Time) error {
	res := database.Conn(ctx, r.db).
		Model(&models.Friend{}).
		Where("id = ?", edgeID).
		Updates(map[string]interface{}{
			"status":      models.FriendStatusAccepted,
			"accepted_at": at,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Friend request", edgeID)
	}
	return nil
}

func (r *friendRepository) Delete(ctx context.Context, edgeID uint) error {
	res := database.Conn(ctx, r.db).Delete(&models.Friend{}, edgeID)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Friend request", edgeID)
	}
	return nil
}

func (r *friendRepository) ExistsAccepted(ctx context.Context, userA, userB uint) (bool, error) {
	var count int64
	err := database.Reader(ctx, r.db).
		Model(&models.Friend{}).
		Where("status = ?", models.FriendStatusAccepted).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", userA, userB, userB, userA).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *friendRepository) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	ids, err := r.FriendIDs(ctx, userID)
	if err != nil || len(ids) == 0 {
		return []models.User{}, err
	}
	var users []models.User
	if err := database.Reader(ctx, r.db).Where("id IN ?", ids).Order("username ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *friendRepository) ListIncoming(ctx context.Context, userID uint) ([]models.Friend, error) {
	var edges []models.Friend
	if err := database.Reader(ctx, r.db).
		Where("friend_id = ? AND status = ?", userID, models.FriendStatusPending).
		Preload("User").
		Order("created_at DESC").
		Find(&edges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return edges, nil
}

func (r *friendRepository) ListOutgoing(ctx context.Context, userID uint) ([]models.Friend, error) {
	var edges []models.Friend
	if err := database.Reader(ctx, r.db).
		Where("user_id = ? AND status = ?", userID, models.FriendStatusPending).
		Preload("Friend").
		Order("created_at DESC").
		Find(&edges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return edges, nil
}

// FriendIDs returns the other endpoint of every accepted edge touching userID.
func (r *friendRepository) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var edges []models.Friend
	if err := database.Reader(ctx, r.db).
		Select("user_id", "friend_id").
		Where("status = ? AND (user_id = ? OR friend_id = ?)", models.FriendStatusAccepted, userID, userID).
		Find(&edges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	seen := make(map[uint]struct{}, len(edges))
	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		other := e.Other(userID)
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		ids = append(ids, other)
	}
	return ids, nil
}
