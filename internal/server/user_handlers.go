package server

import (
	"socialhub/internal/models"
	"socialhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /api/users?q=
// @Summary List or search users
// @Tags users
// @Security BearerAuth
// @Param q query string false "Search by username or name"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.Envelope[[]models.User]
// @Router /users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	users, err := s.userService.ListUsers(c.UserContext(), c.Query("q"), page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Users retrieved", users)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Profile retrieved", user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update the current user's profile
// @Tags users
// @Security BearerAuth
// @Accept json
// @Param request body service.UpdateProfileInput true "Fields to change"
// @Success 200 {object} models.Envelope[models.User]
// @Failure 400 {object} models.Envelope[any]
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = currentUserID(c)

	user, err := s.userService.UpdateProfile(c.UserContext(), req)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Profile updated", user)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "User retrieved", user)
}

// DeleteUser handles DELETE /api/users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.userService.DeleteUser(c.UserContext(), currentUserID(c), id); err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK[any](c, fiber.StatusOK, "User deleted", nil)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)
	posts, err := s.postService.GetUserPosts(c.UserContext(), id, service.ListPostsInput{
		Limit:         page.Limit,
		Offset:        page.Offset,
		CurrentUserID: currentUserID(c),
	})
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Posts retrieved", posts)
}

// GetUserStatistics handles GET /api/users/:id/statistics?days=
// @Summary Activity statistics for a user
// @Description All-time counts, or counts over the last N days when days is given
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param days query int false "Window in days (>= 1, clamped to 36500)"
// @Success 200 {object} models.Envelope[map[string]int64]
// @Failure 400 {object} models.Envelope[any]
// @Failure 404 {object} models.Envelope[any]
// @Router /users/{id}/statistics [get]
func (s *Server) GetUserStatistics(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var stats map[string]int64
	if c.Query("days") == "" {
		stats, err = s.statisticService.GetAllTimeStatistic(c.UserContext(), id)
	} else {
		stats, err = s.statisticService.GetStatisticForLastDays(c.UserContext(), id, c.QueryInt("days", 0))
	}
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Statistics retrieved", stats)
}

// GetUserAchievements handles GET /api/users/:id/achievements
func (s *Server) GetUserAchievements(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	earned, err := s.achievementService.ListForUser(c.UserContext(), id)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Achievements retrieved", earned)
}

// GetAchievementCatalog handles GET /api/achievements
func (s *Server) GetAchievementCatalog(c *fiber.Ctx) error {
	return models.RespondOK(c, fiber.StatusOK, "Achievements retrieved", s.achievementService.Catalog())
}

// EvaluateAchievements handles POST /api/achievements/evaluate and returns newly awarded achievements.
func (s *Server) EvaluateAchievements(c *fiber.Ctx) error {
	awarded, err := s.achievementService.Evaluate(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Achievements evaluated", awarded)
}
