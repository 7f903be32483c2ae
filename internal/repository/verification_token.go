package repository

import (
	"context"

	"socialhub/internal/database"
	"socialhub/internal/models"

	"gorm.io/gorm"
)

// VerificationTokenRepository stores email verification tokens.
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *models.VerificationToken) error
	GetByToken(ctx context.Context, token string) (*models.VerificationToken, error)
	DeleteByUser(ctx context.Context, userID uint) error
	Delete(ctx context.Context, id uint) error
}

type verificationTokenRepository struct {
	db *gorm.DB
}

// NewVerificationTokenRepository returns a gorm-backed VerificationTokenRepository.
func NewVerificationTokenRepository(db *gorm.DB) VerificationTokenRepository {
	return &verificationTokenRepository{db: db}
}

func (r *verificationTokenRepository) Create(ctx context.Context, token *models.VerificationToken) error {
	return translateCreate(database.Conn(ctx, r.db).Create(token).Error, "Verification token already exists")
}

func (r *verificationTokenRepository) GetByToken(ctx context.Context, token string) (*models.VerificationToken, error) {
	var vt models.VerificationToken
	if err := database.Conn(ctx, r.db).Where("token = ?", token).First(&vt).Error; err != nil {
		return nil, translate(err, "Verification token", token)
	}
	return &vt, nil
}

func (r *verificationTokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	if err := database.Conn(ctx, r.db).Where("user_id = ?", userID).Delete(&models.VerificationToken{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *verificationTokenRepository) Delete(ctx context.Context, id uint) error {
	if err := database.Conn(ctx, r.db).Delete(&models.VerificationToken{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
