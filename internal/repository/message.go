package repository

import (
	"context"
	"time"

	"socialhub/internal/database"
	"socialhub/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines data access for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	Conversation(ctx context.Context, userA, userB uint, limit, offset int) ([]models.Message, error)
	Update(ctx context.Context, msg *models.Message) error
	Delete(ctx context.Context, id uint) error
	MarkRead(ctx context.Context, id uint, at time.Time) error
	PartnerIDs(ctx context.Context, userID uint) ([]uint, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a gorm-backed MessageRepository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	if err := database.Conn(ctx, r.db).Omit("Sender").Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := database.Reader(ctx, r.db).First(&msg, id).Error; err != nil {
		return nil, translate(err, "Message", id)
	}
	return &msg, nil
}

// Conversation returns messages exchanged between the two users, newest first.
func (r *messageRepository) Conversation(ctx context.Context, userA, userB uint, limit, offset int) ([]models.Message, error) {
	limit, offset = clampPage(limit, offset)
	msgs := []models.Message{}
	if err := database.Reader(ctx, r.db).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userA, userB, userB, userA).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

func (r *messageRepository) Update(ctx context.Context, msg *models.Message) error {
	if err := database.Conn(ctx, r.db).
		Model(msg).
		Select("content", "updated_at").
		Updates(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	res := database.Conn(ctx, r.db).Delete(&models.Message{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Message", id)
	}
	return nil
}

func (r *messageRepository) MarkRead(ctx context.Context, id uint, at time.Time) error {
	if err := database.Conn(ctx, r.db).
		Model(&models.Message{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// PartnerIDs returns everyone userID has exchanged messages with, most recent first.
func (r *messageRepository) PartnerIDs(ctx context.Context, userID uint) ([]uint, error) {
	var msgs []models.Message
	if err := database.Reader(ctx, r.db).
		Select("sender_id", "receiver_id", "created_at").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	seen := make(map[uint]struct{})
	ids := []uint{}
	for _, m := range msgs {
		other := m.SenderID
		if other == userID {
			other = m.ReceiverID
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		ids = append(ids, other)
	}
	return ids, nil
}
