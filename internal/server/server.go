// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "courtside/docs" // swagger docs
	"courtside/internal/auth"
	"courtside/internal/cache"
	"courtside/internal/config"
	"courtside/internal/database"
	"courtside/internal/middleware"
	"courtside/internal/models"
	"courtside/internal/notifications"
	"courtside/internal/repository"
	"courtside/internal/service"

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

// httpMetrics registers the HTTP collectors once per process.
var httpMetrics = sync.OnceValue(func() *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New("courtside-api")
})

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	tokens   *auth.Manager
	authn    *middleware.Authenticator
	limiter  *middleware.RateLimiter
	notifier *notifications.Notifier
	hub      *notifications.Hub

	authService    *service.AuthService
	userService    *service.UserService
	teamService    *service.TeamService
	postService    *service.PostService
	commentService *service.CommentService
	statusService  *service.StatusService
}

// NewServer connects to the database and Redis and builds a server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return NewServerWithDeps(cfg, db, cache.InitRedis(cfg.RedisURL)), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, revocation and realtime fan-out are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	users := repository.NewUserRepository(db)
	teams := repository.NewTeamRepository(db)
	games := repository.NewGameRepository(db)
	posts := repository.NewPostRepository(db, repository.PostListing)
	comments := repository.NewCommentRepository(db, repository.CommentListing)
	lookups := repository.NewLookupRepository(db)

	tokens := auth.NewManager(cfg, redisClient)
	notifier := notifications.NewNotifier(redisClient)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: httpMetrics(),
		tokens:         tokens,
		authn:          middleware.NewAuthenticator(tokens),
		limiter:        middleware.NewRateLimiter(redisClient, redisClient != nil && cfg.Env != "test"),
		notifier:       notifier,
		hub:            notifications.NewHub(tokens.ParseSubscriptionToken),
	}
	s.userService = service.NewUserService(users)
	s.authService = service.NewAuthService(users, tokens)
	s.teamService = service.NewTeamService(teams, games)
	s.postService = service.NewPostService(posts, teams, notifier, s.userService.IsModerator)
	s.commentService = service.NewCommentService(comments, posts, notifier, s.userService.IsModerator)
	s.statusService = service.NewStatusService(lookups)
	return s
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.Any("error", err))
	return models.RespondWithError(c, models.StatusFor(err), err)
}

// App returns the Fiber application with middleware and routes installed, building it on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "Courtside API",
		BodyLimit:    1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}
	app.Use(middleware.TracingMiddleware())
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())
	if base := s.config.PublicBaseURL; base != "" {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(publicBaseKey, base)
			return c.Next()
		})
	}

	// CORS runs before anything that can short-circuit so error responses keep their headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Accept-Language",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
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
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	required := s.authn.Required()
	optional := s.authn.Optional()

	authRoutes := api.Group("/auth")
	authRoutes.Post("/login", s.limiter.Limit("login", 10, 5*time.Minute, middleware.FailOpen), s.Login)
	authRoutes.Post("/logout", s.Logout)
	authRoutes.Post("/refresh", s.Refresh)
	authRoutes.Get("/websocket-access", required, s.ConnectionToken)
	authRoutes.Get("/subscription", required, s.SubscriptionToken)

	users := api.Group("/users")
	me := users.Group("/me", required)
	me.Get("/", s.GetMe)
	me.Get("/favorite-teams", s.GetFavoriteTeams)
	me.Put("/favorite-teams", s.PutFavoriteTeams)
	me.Post("/favorite-teams/:teamId", s.AddFavoriteTeam)
	me.Delete("/favorite-teams/:teamId", s.RemoveFavoriteTeam)
	me.Put("/profile-visibility", s.PutProfileVisibility)
	me.Put("/introduction", s.PutIntroduction)
	me.Get("/posts", s.GetMyPosts)
	me.Get("/comments", s.GetMyComments)
	users.Get("/:id", optional, s.GetUserProfile)

	teams := api.Group("/teams", optional)
	teams.Get("/", s.GetTeams)
	// Specific /:id/:resource routes before the generic /:id route
	teams.Get("/:id/games", s.GetTeamGames)
	teams.Get("/:id/last-games", s.GetLastGames)
	teams.Get("/:id/posts", s.GetTeamPosts)
	teams.Post("/:id/posts", required,
		s.limiter.Limit("create_post", 5, time.Minute, middleware.FailOpen), s.CreatePost)
	teams.Get("/:id", s.GetTeam)

	posts := api.Group("/posts", optional)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", required,
		s.limiter.Limit("create_comment", 10, time.Minute, middleware.FailOpen), s.CreateComment)
	posts.Get("/:id/comments/:commentId/replies", s.GetReplies)
	posts.Post("/:id/comments/:commentId/replies", required,
		s.limiter.Limit("create_comment", 10, time.Minute, middleware.FailOpen), s.CreateReply)
	posts.Post("/:id/comments/:commentId/like", required, s.LikeComment)
	posts.Delete("/:id/comments/:commentId/like", required, s.UnlikeComment)
	posts.Get("/:id/comments/:commentId", s.GetComment)
	posts.Put("/:id/comments/:commentId", required, s.UpdateComment)
	posts.Delete("/:id/comments/:commentId", required, s.DeleteComment)
	posts.Post("/:id/like", required, s.LikePost)
	posts.Delete("/:id/like", required, s.UnlikePost)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", required, s.UpdatePost)
	posts.Delete("/:id", required, s.DeletePost)

	api.Get("/post-statuses", s.GetPostStatuses)

	api.Get("/ws", s.WebsocketUpgrade(), s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: without
// it the API runs uncached, so only a configured but unreachable Redis fails the check.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
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

// StartRealtime forwards Redis events to websocket subscribers until Shutdown.
func (s *Server) StartRealtime() error {
	if s.shutdownCtx == nil {
		s.shutdownCtx, s.shutdownFn = context.WithCancel(context.Background())
	}
	if s.redis == nil {
		return nil
	}
	return s.hub.StartWiring(s.shutdownCtx, s.notifier)
}

// Start wires realtime delivery and serves HTTP until the app is shut down.
func (s *Server) Start() error {
	app := s.App()
	if err := s.StartRealtime(); err != nil {
		middleware.Logger.Warn("realtime wiring failed, continuing without websocket fan-out", slog.Any("error", err))
	}
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.Any("error", err))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down websocket hub", slog.Any("error", err))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.Any("error", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.Any("error", rerr))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
