package repository

import (
	"context"

	"socialhub/internal/database"
	"socialhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post, like and repost data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error)
	// ListByUser and ListByAuthors skip posts of private groups the viewer has not joined.
	ListByUser(ctx context.Context, userID, viewerID uint, limit, offset int) ([]*models.Post, error)
	ListByGroup(ctx context.Context, groupID, viewerID uint, limit, offset int) ([]*models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, viewerID uint, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error

	// Like reports whether a new like row was written.
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)

	CreateRepost(ctx context.Context, repost *models.Repost) error
	DeleteRepost(ctx context.Context, userID, postID uint) error
	ListReposts(ctx context.Context, postID uint, limit, offset int) ([]models.Repost, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := database.Conn(ctx, r.db).Omit("User").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// withDetails adds subqueries to fetch counts and liked status in a single query.
func withDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, " +
		"(SELECT COUNT(*) FROM reposts WHERE reposts.post_id = posts.id) AS reposts_count"

	if viewerID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked", viewerID)
	}
	return db.Select(selectQuery + ", false AS liked")
}

func (r *postRepository) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := withDetails(database.Reader(ctx, r.db), viewerID).
		Preload("User").
		First(&post, id).Error
	if err != nil {
		return nil, translate(err, "Post", id)
	}
	return &post, nil
}

// visibleTo hides posts of private groups the viewer is not a member of.
func visibleTo(db *gorm.DB, viewerID uint) *gorm.DB {
	return db.Where(
		"(posts.group_id IS NULL"+
			" OR posts.group_id IN (SELECT id FROM groups WHERE is_private = ?)"+
			" OR posts.group_id IN (SELECT group_id FROM group_members WHERE user_id = ?))",
		false, viewerID,
	)
}

func (r *postRepository) list(ctx context.Context, viewerID uint, limit, offset int, scope func(*gorm.DB) *gorm.DB) ([]*models.Post, error) {
	limit, offset = clampPage(limit, offset)
	posts := []*models.Post{}
	err := scope(withDetails(database.Reader(ctx, r.db), viewerID)).
		Preload("User").
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID, viewerID uint, limit, offset int) ([]*models.Post, error) {
	return r.list(ctx, viewerID, limit, offset, func(db *gorm.DB) *gorm.DB {
		return visibleTo(db.Where("posts.user_id = ?", userID), viewerID)
	})
}

func (r *postRepository) ListByGroup(ctx context.Context, groupID, viewerID uint, limit, offset int) ([]*models.Post, error) {
	return r.list(ctx, viewerID, limit, offset, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.group_id = ?", groupID)
	})
}

func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []uint, viewerID uint, limit, offset int) ([]*models.Post, error) {
	if len(authorIDs) == 0 {
		return []*models.Post{}, nil
	}
	return r.list(ctx, viewerID, limit, offset, func(db *gorm.DB) *gorm.DB {
		return visibleTo(db.Where("posts.user_id IN ?", authorIDs), viewerID)
	})
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := database.Conn(ctx, r.db).
		Model(post).
		Select("title", "content", "image_url", "updated_at").
		Updates(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete soft-deletes the post and its comments and removes its likes and reposts.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Repost{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "Post", id)
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	// ON CONFLICT DO NOTHING keeps concurrent likes idempotent
	res := database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: userID, PostID: postID})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	if err := database.Conn(ctx, r.db).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := database.Reader(ctx, r.db).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) CreateRepost(ctx context.Context, repost *models.Repost) error {
	return translateCreate(
		database.Conn(ctx, r.db).Omit("User", "Post").Create(repost).Error,
		"Post already reposted",
	)
}

func (r *postRepository) DeleteRepost(ctx context.Context, userID, postID uint) error {
	res := database.Conn(ctx, r.db).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Repost{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Repost", postID)
	}
	return nil
}

func (r *postRepository) ListReposts(ctx context.Context, postID uint, limit, offset int) ([]models.Repost, error) {
	limit, offset = clampPage(limit, offset)
	reposts := []models.Repost{}
	if err := database.Reader(ctx, r.db).
		Where("post_id = ?", postID).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reposts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reposts, nil
}
