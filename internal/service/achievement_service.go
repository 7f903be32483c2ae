package service

import (
	"context"
	_ "embed"
	"fmt"
	"slices"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/repository"

	"gopkg.in/yaml.v3"
)

//go:embed achievements.yml
var achievementsYAML []byte

// LoadAchievementCatalog parses a YAML catalog and checks every entry.
func LoadAchievementCatalog(data []byte) ([]models.Achievement, error) {
	var catalog []models.Achievement
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse achievements: %w", err)
	}
	seen := make(map[string]struct{}, len(catalog))
	for _, a := range catalog {
		if a.Code == "" {
			return nil, fmt.Errorf("achievement without code")
		}
		if _, dup := seen[a.Code]; dup {
			return nil, fmt.Errorf("duplicate achievement code %q", a.Code)
		}
		seen[a.Code] = struct{}{}
		if !slices.Contains(StatisticKeys, a.Metric) {
			return nil, fmt.Errorf("achievement %q: unknown metric %q", a.Code, a.Metric)
		}
		if a.Threshold < 1 {
			return nil, fmt.Errorf("achievement %q: threshold must be positive", a.Code)
		}
	}
	return catalog, nil
}

// AchievementService awards catalog achievements from a user's all-time statistics.
type AchievementService struct {
	catalog         []models.Achievement
	achievementRepo repository.AchievementRepository
	stats           *StatisticService
	notifier        NotificationSender
	now             func() time.Time
}

// NewAchievementService returns an AchievementService over the embedded catalog.
func NewAchievementService(
	achievementRepo repository.AchievementRepository,
	stats *StatisticService,
	notifier NotificationSender,
) (*AchievementService, error) {
	catalog, err := LoadAchievementCatalog(achievementsYAML)
	if err != nil {
		return nil, err
	}
	return &AchievementService{
		catalog:         catalog,
		achievementRepo: achievementRepo,
		stats:           stats,
		notifier:        notifier,
		now:             time.Now,
	}, nil
}

// Catalog returns a copy of every known achievement.
func (s *AchievementService) Catalog() []models.Achievement {
	return slices.Clone(s.catalog)
}

// ListForUser returns the achievements the user has earned.
func (s *AchievementService) ListForUser(ctx context.Context, userID uint) ([]models.UserAchievement, error) {
	return s.achievementRepo.ListByUser(ctx, userID)
}

// Evaluate awards every unearned achievement whose threshold the user now meets
// and returns the newly awarded ones.
func (s *AchievementService) Evaluate(ctx context.Context, userID uint) ([]models.UserAchievement, error) {
	stats, err := s.stats.GetAllTimeStatistic(ctx, userID)
	if err != nil {
		return nil, err
	}

	awarded := []models.UserAchievement{}
	for _, a := range s.catalog {
		if stats[a.Metric] < a.Threshold {
			continue
		}
		ua := models.UserAchievement{UserID: userID, AchievementCode: a.Code, AwardedAt: s.now().UTC()}
		isNew, err := s.achievementRepo.Award(ctx, &ua)
		if err != nil {
			return nil, err
		}
		if !isNew {
			continue
		}
		awarded = append(awarded, ua)
		notify(ctx, s.notifier, NotifyInput{
			UserID:  userID,
			Type:    models.NotificationAchievement,
			Message: fmt.Sprintf("Achievement unlocked: %s", a.Title),
			RefType: "achievement",
		})
	}
	return awarded, nil
}
