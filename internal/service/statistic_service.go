package service

import (
	"context"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/repository"
)

// Statistic keys returned by StatisticService.
const (
	StatPosts            = "posts"
	StatComments         = "comments"
	StatLikes            = "likes"
	StatCommentsReceived = "comments_received"
	StatLikesReceived    = "likes_received"
	StatFriends          = "friends"
)

// MaxStatisticDays caps the window of GetStatisticForLastDays. Larger values
// cover the same rows and would overflow time.Duration.
const MaxStatisticDays = 36500

// StatisticKeys lists every key present in a statistic result.
var StatisticKeys = []string{StatPosts, StatComments, StatLikes, StatCommentsReceived, StatLikesReceived, StatFriends}

// StatisticService computes activity counters for a user.
// Results are built per call and never cached.
type StatisticService struct {
	statRepo repository.StatisticRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewStatisticService returns a new StatisticService.
func NewStatisticService(statRepo repository.StatisticRepository, userRepo repository.UserRepository) *StatisticService {
	return &StatisticService{statRepo: statRepo, userRepo: userRepo, now: time.Now}
}

// GetAllTimeStatistic counts everything the user has ever done.
func (s *StatisticService) GetAllTimeStatistic(ctx context.Context, userID uint) (map[string]int64, error) {
	return s.collect(ctx, userID, nil)
}

// GetStatisticForLastDays counts activity within the last days*24h.
// Windows longer than MaxStatisticDays are clamped.
func (s *StatisticService) GetStatisticForLastDays(ctx context.Context, userID uint, days int) (map[string]int64, error) {
	if days < 1 {
		return nil, models.NewValidationError("Days must be at least 1")
	}
	if days > MaxStatisticDays {
		days = MaxStatisticDays
	}
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	return s.collect(ctx, userID, &since)
}

func (s *StatisticService) collect(ctx context.Context, userID uint, since *time.Time) (map[string]int64, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("User", userID)
	}

	counters := []struct {
		key string
		fn  func(context.Context, uint, *time.Time) (int64, error)
	}{
		{StatPosts, s.statRepo.CountPosts},
		{StatComments, s.statRepo.CountComments},
		{StatLikes, s.statRepo.CountLikes},
		{StatCommentsReceived, s.statRepo.CountCommentsReceived},
		{StatLikesReceived, s.statRepo.CountLikesReceived},
		{StatFriends, s.statRepo.CountFriends},
	}

	result := make(map[string]int64, len(counters))
	for _, c := range counters {
		n, err := c.fn(ctx, userID, since)
		if err != nil {
			return nil, err
		}
		result[c.key] = n
	}
	return result, nil
}
