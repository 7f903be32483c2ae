package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/repository"
	"socialhub/internal/validation"
)

const (
	maxBioLen   = 500
	maxNameLen  = 60
	maxCityLen  = 120
	maxPhoneLen = 32
)

type UserService struct {
	userRepo repository.UserRepository
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
	now      func() time.Time
}

// UpdateProfileInput carries a partial profile update; nil fields are left unchanged.
type UpdateProfileInput struct {
	UserID    uint       `json:"-"`
	Username  *string    `json:"username"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	Phone     *string    `json:"phone"`
	Birthdate *time.Time `json:"birthdate"`
	Avatar    *string    `json:"avatar"`
	City      *string    `json:"city"`
	Bio       *string    `json:"bio"`
}

func NewUserService(userRepo repository.UserRepository, isAdmin func(ctx context.Context, userID uint) (bool, error)) *UserService {
	return &UserService{userRepo: userRepo, isAdmin: isAdmin, now: time.Now}
}

func (s *UserService) ListUsers(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, query, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if username != user.Username {
			other, err := s.userRepo.GetByUsername(ctx, username)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != user.ID {
				return nil, models.NewValidationError("Username already taken")
			}
		}
		user.Username = username
	}
	if err := setBounded(&user.FirstName, in.FirstName, maxNameLen, "First name"); err != nil {
		return nil, err
	}
	if err := setBounded(&user.LastName, in.LastName, maxNameLen, "Last name"); err != nil {
		return nil, err
	}
	if err := setBounded(&user.Phone, in.Phone, maxPhoneLen, "Phone"); err != nil {
		return nil, err
	}
	if err := setBounded(&user.City, in.City, maxCityLen, "City"); err != nil {
		return nil, err
	}
	if err := setBounded(&user.Bio, in.Bio, maxBioLen, "Bio"); err != nil {
		return nil, err
	}
	if in.Avatar != nil {
		user.Avatar = strings.TrimSpace(*in.Avatar)
	}
	if in.Birthdate != nil {
		if in.Birthdate.After(s.now()) {
			return nil, models.NewValidationError("Birthdate cannot be in the future")
		}
		bd := *in.Birthdate
		user.Birthdate = &bd
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser soft-deletes targetID. Users may delete themselves; admins may delete anyone.
func (s *UserService) DeleteUser(ctx context.Context, actorID, targetID uint) error {
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	if actorID != targetID {
		admin := false
		if s.isAdmin != nil {
			var err error
			if admin, err = s.isAdmin(ctx, actorID); err != nil {
				return err
			}
		}
		if !admin {
			return models.NewUnauthorizedError("You can only delete your own account")
		}
	}
	return s.userRepo.Delete(ctx, targetID)
}

func setBounded(dst *string, v *string, max int, field string) error {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if len(trimmed) > max {
		return models.NewValidationError(fmt.Sprintf("%s too long (max %d characters)", field, max))
	}
	*dst = trimmed
	return nil
}
