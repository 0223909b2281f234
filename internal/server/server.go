// Package server contains the HTTP handlers and route wiring for the API.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	promMiddleware  *fiberprometheus.FiberPrometheus
	userRepo        repository.UserRepository
	apiKeyRepo      repository.ApiKeyRepository
	categoryRepo    repository.CategoryRepository
	postRepo        repository.PostRepository
	commentRepo     repository.CommentRepository
	reviewRepo      repository.ReviewRepository
	authService     *service.AuthService
	userService     *service.UserService
	apiKeyService   *service.ApiKeyService
	categoryService *service.CategoryService
	postService     *service.PostService
	commentService  *service.CommentService
	reviewService   *service.ReviewService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	var store storage.Storage
	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		// Image uploads fail until the object store comes back; everything
		// else keeps working.
		log.Printf("MinIO connection warning: %v (continuing without image storage)", err)
	} else {
		store = minioClient
	}

	return NewServerWithDeps(cfg, db, redisClient, store)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database and no Redis or object store.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.Storage) (*Server, error) {
	prom := middleware.InitMetrics("inkwell-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       repository.NewUserRepository(db),
		apiKeyRepo:     repository.NewApiKeyRepository(db),
		categoryRepo:   repository.NewCategoryRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		reviewRepo:     repository.NewReviewRepository(db),
	}

	var images *service.ImageService
	if store != nil {
		images = service.NewImageService(store)
	}

	server.authService = service.NewAuthService(server.userRepo, images, cfg)
	server.userService = service.NewUserService(server.userRepo)
	server.apiKeyService = service.NewApiKeyService(server.apiKeyRepo, 30*24*time.Hour)
	server.categoryService = service.NewCategoryService(server.categoryRepo, server.isAdminByUserID)
	server.postService = service.NewPostService(server.postRepo, server.categoryRepo, images)
	server.commentService = service.NewCommentService(server.commentRepo, server.postRepo)
	server.reviewService = service.NewReviewService(server.reviewRepo, server.postRepo, server.isAdminByUserID)

	return server, nil
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

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware runs before middlewares that can short-circuit (e.g.
	// limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Api-Key",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
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
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Account routes. Registration and login are public; refresh works off
	// the refresh cookie alone.
	users := api.Group("/users")
	users.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	users.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	users.Post("/refresh", s.Refresh)
	users.Post("/logout", s.AuthRequired(), s.Logout)

	// Public post routes. Comment reads are public too.
	publicPosts := api.Group("/posts")
	publicPosts.Get("/", s.GetApprovedPosts)
	publicPosts.Get("/slug/:slug", s.GetPostBySlug)
	publicPosts.Get("/:postId/comments/:id", s.GetComment)
	publicPosts.Get("/:postId/comments", s.GetComments)

	// Session-only routes: issuing the first API key cannot itself require
	// an API key.
	protected := api.Group("", s.AuthRequired())
	protected.Post("/users/api-key", s.CreateApiKey)
	protected.Get("/users/me", s.GetMyProfile)

	// Business routes need the full gate: session cookie plus active API key.
	gated := protected.Group("", s.ApiKeyRequired())

	gated.Get("/users/:userId/comments", s.GetUserComments)

	categories := gated.Group("/categories")
	categories.Post("/", s.RoleRequired(models.RoleAdmin), s.CreateCategory)
	categories.Get("/", s.GetCategories)
	categories.Put("/:id", s.UpdateCategory)
	categories.Delete("/:id", s.DeleteCategory)

	posts := gated.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Get("/me", s.GetMyPosts)
	posts.Get("/:id", s.GetPost)
	posts.Post("/:postId/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Put("/:postId/comments/:id", s.UpdateComment)
	posts.Delete("/:postId/comments/:id", s.DeleteComment)
	posts.Put("/:id", s.RoleRequired(models.RoleUser), s.UpdatePost)
	posts.Delete("/:id", s.RoleRequired(models.RoleUser), s.DeletePost)

	// Editorial routes. The :id parameter names the post under review.
	reviews := gated.Group("/postReviews", s.RoleRequired(models.RoleAdmin))
	reviews.Get("/", s.GetPendingPosts)
	reviews.Put("/:id/approve", s.ApprovePost)
	reviews.Put("/:id/reject", s.RejectPost)
	reviews.Get("/:id", s.GetPostReviews)
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

// AuthRequired enforces the session cookie (HTTP-only accessToken) with a
// Bearer header fallback, and loads the caller into locals for role checks.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies("accessToken")
		if tokenString == "" {
			authHeader := c.Get("Authorization")
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Authentication required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.AccessTokenSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Invalid subject claim"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		// Load the full user: role checks and handlers need more than the ID.
		user, err := s.userRepo.GetByID(c.UserContext(), uint(userID))
		if err != nil {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		c.Locals("userID", user.ID)
		c.Locals("user", user)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// ApiKeyRequired enforces the bearer API key on business routes. Must run
// after AuthRequired so the key can be matched against its owner.
func (s *Server) ApiKeyRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rawKey := c.Get("X-Api-Key")
		if rawKey == "" {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("API key required"))
		}

		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Authentication required"))
		}

		if _, err := s.apiKeyService.VerifyKey(c.UserContext(), rawKey, userID); err != nil {
			return models.RespondWithError(c, err)
		}
		return c.Next()
	}
}

// RoleRequired rejects callers whose role is outside the allow-set with 403.
// Must be placed after AuthRequired so the user is available in locals.
func (s *Server) RoleRequired(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if !ok {
			return models.RespondWithError(c,
				models.NewUnauthorizedError("Authentication required"))
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return models.RespondWithError(c,
			models.NewForbiddenError("You do not have permission to perform this action"))
	}
}

func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("role").First(&user, userID).Error; err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

// Shutdown closes the server's backing connections. The Fiber app itself is
// owned and drained by the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
