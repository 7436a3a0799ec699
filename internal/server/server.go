// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/mail"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/service"
	"quill/internal/token"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	codec *token.Codec
	gate  *middleware.Gate

	userRepo    repository.UserRepository
	roleRepo    repository.RoleRepository
	followRepo  repository.FollowRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository

	authService    *service.AuthService
	userService    *service.UserService
	followService  *service.FollowService
	postService    *service.PostService
	commentService *service.CommentService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	codec := token.NewCodec(cfg.TokenSecret, cfg.TokenTTL(), cfg.TokenLeeway())
	prom := middleware.InitMetrics("quill-api")

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		codec:          codec,
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		followRepo:     followRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
	}

	s.gate = middleware.NewGate(codec, userRepo.GetByIDWithRole)

	mailer := mail.NewQueue(redisClient, mail.NewLogSender())
	s.authService = service.NewAuthService(userRepo, roleRepo, codec, mailer, cfg.AdminEmail, cfg.BaseURL)
	s.userService = service.NewUserService(userRepo, roleRepo)
	s.followService = service.NewFollowService(followRepo, userRepo)
	s.postService = service.NewPostService(postRepo)
	s.commentService = service.NewCommentService(commentRepo, postRepo)

	return s, nil
}

// SetMailSender swaps the fallback mail transport used when Redis is
// unavailable. The queue still prefers Redis so the worker does delivery.
func (s *Server) SetMailSender(sender mail.Sender) {
	q := mail.NewQueue(s.redis, sender)
	s.authService = service.NewAuthService(
		s.userRepo, s.roleRepo, s.codec, q, s.config.AdminEmail, s.config.BaseURL)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// The auth workflow stays reachable for unconfirmed accounts.
	api := app.Group("/api", s.gate.OptionalAuth("/api/auth"))

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth workflow routes. Confirmation and resend sit behind AuthRequired
	// but deliberately outside ConfirmedRequired, so an unconfirmed account
	// can still complete the workflow.
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Get("/confirm/:token", s.gate.AuthRequired(), s.Confirm)
	auth.Post("/resend-confirmation", s.gate.AuthRequired(), s.ResendConfirmation)
	auth.Post("/recover-password", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "recover"), s.RecoverPassword)
	auth.Post("/reset-password/:token", s.ResetPassword)
	auth.Post("/change-email", s.gate.AuthRequired(), s.RequestEmailChange)
	auth.Get("/change-email/:token", s.gate.AuthRequired(), s.ConfirmEmailChange)

	// Own-profile routes sit before /users/:id so "me" never parses as an id.
	api.Get("/users/me", s.gate.AuthRequired(), s.gate.ConfirmedRequired(), s.GetMyProfile)
	api.Put("/users/me", s.gate.AuthRequired(), s.gate.ConfirmedRequired(), s.UpdateMyProfile)

	// Public browse routes
	api.Get("/users/:id/posts", s.GetUserPosts)
	api.Get("/users/:id/followers", s.GetFollowers)
	api.Get("/users/:id/following", s.GetFollowing)
	api.Get("/users/:id/followed-posts", s.GetUserFollowedPosts)
	api.Get("/users/by-username/:username", s.GetUserByUsername)
	api.Get("/users/:id", s.GetUser)
	api.Get("/posts", s.GetPosts)
	api.Get("/posts/:id/comments", s.GetComments)
	api.Get("/posts/by-slug/:slug", s.GetPostBySlug)
	api.Get("/posts/:id", s.GetPost)

	// Protected routes: authenticated and confirmed
	protected := api.Group("", s.gate.AuthRequired(), s.gate.ConfirmedRequired())

	protected.Post("/users/:id/follow",
		s.gate.PermissionRequired(models.PermissionFollow), s.FollowUser)
	protected.Delete("/users/:id/follow",
		s.gate.PermissionRequired(models.PermissionFollow), s.UnfollowUser)

	protected.Get("/feed", s.GetFeed)
	protected.Post("/posts", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"),
		s.gate.PermissionRequired(models.PermissionWrite), s.CreatePost)
	protected.Put("/posts/:id", s.UpdatePost)
	protected.Delete("/posts/:id", s.DeletePost)

	protected.Post("/posts/:id/comments", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"),
		s.gate.PermissionRequired(models.PermissionComment), s.CreateComment)

	// Moderation routes
	moderate := protected.Group("/moderate",
		s.gate.PermissionRequired(models.PermissionModerate))
	moderate.Get("/comments", s.ModerateListComments)
	moderate.Patch("/comments/:id/disable", s.DisableComment)
	moderate.Patch("/comments/:id/enable", s.EnableComment)

	// Admin routes
	admin := protected.Group("/admin", s.gate.AdminRequired())
	admin.Get("/users", s.AdminListUsers)
	admin.Put("/users/:id/role", s.AdminSetRole)
	admin.Put("/users/:id", s.AdminUpdateUser)
}

// Shutdown releases server-held resources after the HTTP listener stopped.
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.ErrorContext(ctx, "error closing sql DB", "error", cerr)
		}
	}
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.ErrorContext(ctx, "error closing redis", "error", rerr)
		}
	}
	return nil
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
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}
