package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"socialhub/internal/cache"
	"socialhub/internal/database"
	"socialhub/internal/models"

	"gorm.io/gorm"
)

// GroupRepository defines persistence for groups, memberships and join requests.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	List(ctx context.Context, query string, limit, offset int) ([]models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id uint) error

	AddMember(ctx context.Context, member *models.GroupMember) error
	// GetMember returns nil, nil when the user is not a member.
	GetMember(ctx context.Context, groupID, userID uint) (*models.GroupMember, error)
	ListMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error)
	RemoveMember(ctx context.Context, groupID, userID uint) error

	// GetJoinRequest returns nil, nil when no request exists for (group, user).
	GetJoinRequest(ctx context.Context, groupID, userID uint) (*models.GroupJoinRequest, error)
	CreateJoinRequest(ctx context.Context, req *models.GroupJoinRequest) error
	ResetJoinRequest(ctx context.Context, req *models.GroupJoinRequest, initiatorID uint) error
	DeleteJoinRequest(ctx context.Context, id uint) error
	ListJoinRequests(ctx context.Context, groupID uint) ([]models.GroupJoinRequest, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository returns a gorm-backed GroupRepository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

const groupSelect = `"groups".*, (SELECT COUNT(*) FROM group_members WHERE group_members.group_id = "groups".id) AS member_count`

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	if err := database.Conn(ctx, r.db).Omit("Owner").Create(group).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	load := func() error {
		return translate(database.Reader(ctx, r.db).Select(groupSelect).First(&group, id).Error, "Group", id)
	}

	var err error
	if inTx(ctx) {
		err = load()
	} else {
		err = cache.Aside(ctx, cache.GroupKey(id), &group, cache.GroupTTL, load)
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) List(ctx context.Context, query string, limit, offset int) ([]models.Group, error) {
	limit, offset = clampPage(limit, offset)
	q := database.Reader(ctx, r.db).Select(groupSelect)
	if query = strings.TrimSpace(query); query != "" {
		q = q.Where(`LOWER("groups".name) LIKE ?`, "%"+strings.ToLower(query)+"%")
	}
	var groups []models.Group
	if err := q.Order(`"groups".created_at DESC`).Limit(limit).Offset(offset).Find(&groups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	err := database.Conn(ctx, r.db).
		Model(group).
		Select("name", "description", "image_url", "color", "is_private", "updated_at").
		Updates(group).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateGroup(ctx, group.ID)
	return nil
}

// Delete removes the group with its memberships and join requests and soft-deletes its posts.
func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	err := database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupJoinRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Group{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return translate(err, "Group", id)
	}
	cache.InvalidateGroup(ctx, id)
	return nil
}

func (r *groupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	if err := translateCreate(database.Conn(ctx, r.db).Omit("User").Create(member).Error, "User is already a member of this group"); err != nil {
		return err
	}
	cache.InvalidateGroup(ctx, member.GroupID)
	return nil
}

func (r *groupRepository) GetMember(ctx context.Context, groupID, userID uint) (*models.GroupMember, error) {
	var member models.GroupMember
	err := database.Conn(ctx, r.db).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &member, nil
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error) {
	var members []models.GroupMember
	if err := database.Reader(ctx, r.db).
		Where("group_id = ?", groupID).
		Preload("User").
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return members, nil
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID uint) error {
	res := database.Conn(ctx, r.db).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Group member", userID)
	}
	cache.InvalidateGroup(ctx, groupID)
	return nil
}

func (r *groupRepository) GetJoinRequest(ctx context.Context, groupID, userID uint) (*models.GroupJoinRequest, error) {
	var req models.GroupJoinRequest
	err := database.Conn(ctx, r.db).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Order("updated_at DESC").
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *groupRepository) CreateJoinRequest(ctx context.Context, req *models.GroupJoinRequest) error {
	return translateCreate(database.Conn(ctx, r.db).Omit("User").Create(req).Error, "Join request already exists")
}

// ResetJoinRequest puts an existing request back to PENDING under initiatorID.
func (r *groupRepository) ResetJoinRequest(ctx context.Context, req *models.GroupJoinRequest, initiatorID uint) error {
	now := time.Now()
	err := database.Conn(ctx, r.db).
		Model(req).
		Updates(map[string]interface{}{
			"status":       models.JoinRequestStatusPending,
			"initiator_id": initiatorID,
			"updated_at":   now,
		}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	req.Status = models.JoinRequestStatusPending
	req.InitiatorID = initiatorID
	req.UpdatedAt = now
	return nil
}

func (r *groupRepository) DeleteJoinRequest(ctx context.Context, id uint) error {
	res := database.Conn(ctx, r.db).Delete(&models.GroupJoinRequest{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Join request", id)
	}
	return nil
}

func (r *groupRepository) ListJoinRequests(ctx context.Context, groupID uint) ([]models.GroupJoinRequest, error) {
	var reqs []models.GroupJoinRequest
	if err := database.Reader(ctx, r.db).
		Where("group_id = ? AND status = ?", groupID, models.JoinRequestStatusPending).
		Preload("User").
		Order("created_at ASC").
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}
