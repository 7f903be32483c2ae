package service

import (
	"context"
	"testing"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/repository"
	"socialhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAchievementCatalog(t *testing.T) {
	catalog, err := LoadAchievementCatalog(achievementsYAML)
	require.NoError(t, err)
	assert.NotEmpty(t, catalog)

	tests := map[string]string{
		"unknown metric": "- {code: x, title: X, metric: followers, threshold: 1}",
		"zero threshold": "- {code: x, title: X, metric: posts, threshold: 0}",
		"missing code":   "- {title: X, metric: posts, threshold: 1}",
		"duplicate code": "- {code: x, title: X, metric: posts, threshold: 1}\n- {code: x, title: Y, metric: likes, threshold: 2}",
		"not yaml list":  "code: x",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadAchievementCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestAchievementService_Evaluate(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "achiever")
	friend := testutil.CreateUser(t, db, "buddy")

	notifier := &notifierStub{}
	stats := NewStatisticService(repository.NewStatisticRepository(db), repository.NewUserRepository(db))
	svc, err := NewAchievementService(repository.NewAchievementRepository(db), stats, notifier)
	require.NoError(t, err)

	awarded, err := svc.Evaluate(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, awarded)

	testutil.CreatePost(t, db, u.ID, time.Now())
	testutil.AcceptedFriends(t, db, u.ID, friend.ID, time.Now())

	awarded, err = svc.Evaluate(ctx, u.ID)
	require.NoError(t, err)
	codes := make([]string, 0, len(awarded))
	for _, a := range awarded {
		codes = append(codes, a.AchievementCode)
	}
	assert.ElementsMatch(t, []string{"first_post", "first_friend"}, codes)
	assert.Equal(t, []models.NotificationType{models.NotificationAchievement, models.NotificationAchievement}, notifier.types())

	again, err := svc.Evaluate(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, again, "achievements are awarded once")

	earned, err := svc.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, earned, 2)

	_, err = svc.Evaluate(ctx, 424242)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestAchievementService_CatalogIsCopy(t *testing.T) {
	svc, err := NewAchievementService(nil, nil, nil)
	require.NoError(t, err)
	c := svc.Catalog()
	c[0].Title = "changed"
	assert.NotEqual(t, "changed", svc.Catalog()[0].Title)
}
