package repository

import (
	"context"

	"socialhub/internal/database"
	"socialhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementRepository stores achievements awarded to users.
type AchievementRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.UserAchievement, error)
	// Award reports whether the achievement was newly granted.
	Award(ctx context.Context, ua *models.UserAchievement) (bool, error)
}

type achievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository returns a gorm-backed AchievementRepository.
func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) ListByUser(ctx context.Context, userID uint) ([]models.UserAchievement, error) {
	items := []models.UserAchievement{}
	if err := database.Reader(ctx, r.db).
		Where("user_id = ?", userID).
		Order("awarded_at ASC").
		Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *achievementRepository) Award(ctx context.Context, ua *models.UserAchievement) (bool, error) {
	res := database.Conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(ua)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}
