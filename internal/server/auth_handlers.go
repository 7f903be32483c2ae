package server

import (
	"strings"

	"socialhub/internal/middleware"
	"socialhub/internal/models"
	"socialhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired validates the bearer token and stores the caller in c.Locals("userID").
// The token may only travel in the query string for the websocket upgrade.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ""
		if parts := strings.Fields(c.Get("Authorization")); len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
		if tokenString == "" && strings.HasPrefix(c.Path(), "/api/ws") {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.authService.ParseToken(c.UserContext(), tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		userID, err := claims.UserID()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		c.Locals("userID", userID)
		c.Locals("claims", claims)
		// Sync to UserContext for logging and downstream services
		c.SetUserContext(middleware.WithUserID(c.UserContext(), userID))
		return c.Next()
	}
}

// Signup handles POST /api/auth/signup
// @Summary User signup
// @Description Register a new user account and send a verification email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SignupInput true "Signup request"
// @Success 201 {object} models.Envelope[service.AuthResult]
// @Failure 400 {object} models.Envelope[any]
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.SignupInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.authService.Signup(c.UserContext(), req)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusCreated, "Account created", result)
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Exchange email and password for a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login request"
// @Success 200 {object} models.Envelope[service.AuthResult]
// @Failure 401 {object} models.Envelope[any]
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		status := models.StatusFor(err)
		if models.ErrorCode(err) == models.CodeUnauthorized {
			status = fiber.StatusUnauthorized
		}
		return models.RespondWithError(c, status, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Logged in", result)
}

// Logout handles POST /api/auth/logout
// @Summary Revoke the current token
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} models.Envelope[any]
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, _ := c.Locals("claims").(*service.Claims)
	if err := s.authService.Logout(c.UserContext(), claims); err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK[any](c, fiber.StatusOK, "Logged out", nil)
}

// VerifyEmail handles GET /api/auth/verify?token=
// @Summary Verify an email address
// @Tags auth
// @Param token query string true "Verification token"
// @Success 200 {object} models.Envelope[models.User]
// @Failure 400 {object} models.Envelope[any]
// @Router /auth/verify [get]
func (s *Server) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Verification token is required"))
	}

	user, err := s.authService.VerifyEmail(c.UserContext(), token)
	if err != nil {
		return models.RespondError(c, err)
	}
	return models.RespondOK(c, fiber.StatusOK, "Email verified", user)
}

// ResendVerification handles POST /api/auth/verify/resend
func (s *Server) ResendVerification(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.authService.ResendVerification(c.UserContext(), req.Email); err != nil {
		return models.RespondError(c, err)
	}
	// Same answer whether or not the address is registered.
	return models.RespondOK[any](c, fiber.StatusOK, "If the account exists, a verification email has been sent", nil)
}
