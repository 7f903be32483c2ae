// Package server contains the HTTP and WebSocket handlers for the API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "socialhub/docs" // swagger docs
	"socialhub/internal/bootstrap"
	"socialhub/internal/config"
	"socialhub/internal/database"
	"socialhub/internal/mail"
	"socialhub/internal/middleware"
	"socialhub/internal/models"
	"socialhub/internal/notifications"
	"socialhub/internal/repository"
	"socialhub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo repository.UserRepository
	notifier *notifications.Notifier
	hub      *notifications.Hub

	authService         *service.AuthService
	userService         *service.UserService
	friendService       *service.FriendService
	groupService        *service.GroupService
	statisticService    *service.StatisticService
	postService         *service.PostService
	commentService      *service.CommentService
	messageService      *service.MessageService
	notificationService *service.NotificationService
	achievementService  *service.AchievementService
}

// NewServer connects to the database and Redis described by cfg and wires all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; realtime delivery and token revocation are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("socialhub-api"),
		userRepo:       repository.NewUserRepository(db),
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
	}
	if err := s.wireServices(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) wireServices() error {
	db := s.db
	tx := database.NewTransactor(db)
	friendRepo := repository.NewFriendRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)

	s.notificationService = service.NewNotificationService(repository.NewNotificationRepository(db), s.notifier)
	notifier := s.notificationService

	s.authService = service.NewAuthService(
		s.userRepo,
		repository.NewVerificationTokenRepository(db),
		tx,
		mail.NewSender(s.config),
		s.redis,
		service.AuthConfig{
			JWTSecret:       s.config.JWTSecret,
			VerificationTTL: time.Duration(s.config.VerificationTokenTTLHours) * time.Hour,
			PublicBaseURL:   s.config.PublicBaseURL,
		},
	)
	s.userService = service.NewUserService(s.userRepo, s.isAdminByUserID)
	s.friendService = service.NewFriendService(friendRepo, s.userRepo, tx, notifier, s.notifier)
	s.groupService = service.NewGroupService(groupRepo, s.userRepo, tx, notifier, s.notifier)
	s.statisticService = service.NewStatisticService(repository.NewStatisticRepository(db), s.userRepo)
	s.postService = service.NewPostService(postRepo, groupRepo, friendRepo, s.userRepo, notifier, s.isAdminByUserID)
	s.commentService = service.NewCommentService(repository.NewCommentRepository(db), postRepo, groupRepo, s.userRepo, notifier, s.isAdminByUserID)
	s.messageService = service.NewMessageService(repository.NewMessageRepository(db), s.userRepo, notifier, s.notifier)

	achievements, err := service.NewAchievementService(repository.NewAchievementRepository(db), s.statisticService, notifier)
	if err != nil {
		return fmt.Errorf("load achievements: %w", err)
	}
	s.achievementService = achievements
	return nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.Envelope[any]{
				Error:   true,
				Message: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Get("/verify", s.VerifyEmail)
	auth.Post("/verify/resend", middleware.RateLimit(s.redis, 3, 10*time.Minute, "resend_verification"), s.ResendVerification)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	api.Get("/ws", s.AuthRequired(), s.WebsocketHandler())

	protected := api.Group("", s.AuthRequired())

	// Specific /:id/:resource routes are registered before the generic /:id routes.
	users := protected.Group("/users")
	users.Get("/", s.GetUsers)
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id/statistics", s.GetUserStatistics)
	users.Get("/:id/achievements", s.GetUserAchievements)
	users.Get("/:id", s.GetUserProfile)
	users.Delete("/:id", s.DeleteUser)

	friends := protected.Group("/friends")
	friends.Get("/", s.GetFriends)
	friends.Get("/requests", s.GetPendingRequests)
	friends.Get("/requests/sent", s.GetSentRequests)
	friends.Post("/requests/:userId", middleware.RateLimit(s.redis, 5, 5*time.Minute, "friend_request"), s.SendFriendRequest)
	friends.Post("/requests/:userId/respond", s.RespondToFriendRequest)
	friends.Delete("/requests/:userId", s.CancelFriendRequest)
	friends.Get("/status/:userId", s.GetFriendshipStatus)
	friends.Delete("/:userId", s.RemoveFriend)

	groups := protected.Group("/groups")
	groups.Get("/", s.GetGroups)
	groups.Post("/", s.CreateGroup)
	groups.Get("/:id/members", s.GetGroupMembers)
	groups.Delete("/:id/members/:userId", s.RemoveGroupMember)
	groups.Post("/:id/join", s.JoinGroup)
	groups.Post("/:id/leave", s.LeaveGroup)
	groups.Post("/:id/invite/:userId", s.InviteToGroup)
	groups.Get("/:id/requests", s.GetGroupJoinRequests)
	groups.Post("/:id/requests/:userId/respond", s.RespondToJoinRequest)
	groups.Get("/:id/posts", s.GetGroupPosts)
	groups.Get("/:id", s.GetGroup)
	groups.Put("/:id", s.UpdateGroup)
	groups.Delete("/:id", s.DeleteGroup)

	posts := protected.Group("/posts")
	posts.Get("/feed", s.GetFeed)
	posts.Post("/", middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", s.LikePost)
	posts.Delete("/:id/like", s.UnlikePost)
	posts.Post("/:id/repost", s.Repost)
	posts.Delete("/:id/repost", s.Unrepost)
	posts.Get("/:id/reposts", s.GetReposts)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Put("/:id/comments/:commentId", s.UpdateComment)
	posts.Delete("/:id/comments/:commentId", s.DeleteComment)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	messages := protected.Group("/messages")
	messages.Get("/", s.GetMessagePartners)
	messages.Post("/", middleware.RateLimit(s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	messages.Get("/with/:userId", s.GetConversation)
	messages.Post("/:id/read", s.MarkMessageRead)
	messages.Put("/:id", s.UpdateMessage)
	messages.Delete("/:id", s.DeleteMessage)

	notificationRoutes := protected.Group("/notifications")
	notificationRoutes.Get("/", s.GetNotifications)
	notificationRoutes.Get("/unread-count", s.GetUnreadCount)
	notificationRoutes.Post("/read-all", s.MarkAllNotificationsRead)
	notificationRoutes.Post("/:id/read", s.MarkNotificationRead)
	notificationRoutes.Delete("/:id", s.DeleteNotification)

	achievements := protected.Group("/achievements")
	achievements.Get("/", s.GetAchievementCatalog)
	achievements.Post("/evaluate", s.EvaluateAchievements)

}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	// Redis backs realtime delivery and revocation; the API still serves without it.
	status := fiber.StatusOK
	overall := "healthy"
	switch {
	case dbStatus != "healthy":
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	case redisStatus != "healthy":
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// ErrorHandler renders errors that escaped a handler in the response envelope.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.Envelope[any]{Error: true, Message: fe.Message})
	}
	slog.ErrorContext(c.UserContext(), "unhandled error", slog.String("path", c.Path()), slog.Any("error", err))
	return models.RespondError(c, err)
}

// App returns a configured Fiber app without starting it.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "socialhub API",
		BodyLimit:    2 * 1024 * 1024,
		ErrorHandler: s.ErrorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// Start wires the realtime hub to Redis and serves HTTP on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if s.redis != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			slog.Warn("realtime wiring failed, websocket delivery disabled", slog.Any("error", err))
		}
	}

	slog.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", slog.Any("error", err))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		slog.Error("error shutting down websocket hub", slog.Any("error", err))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Error("error closing sql DB", slog.Any("error", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			slog.Error("error closing redis", slog.Any("error", rerr))
		}
	}

	slog.Info("server shutdown complete")
	return nil
}
