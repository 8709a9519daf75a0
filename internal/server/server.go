// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"worklane/internal/cache"
	"worklane/internal/config"
	"worklane/internal/database"
	"worklane/internal/middleware"
	"worklane/internal/models"
	"worklane/internal/notifications"
	"worklane/internal/repository"
	"worklane/internal/service"
)

const sessionCookieName = "authToken"

// wireableHub is implemented by every WebSocket hub that can be wired to
// Redis pub/sub and gracefully shut down.
type wireableHub interface {
	Name() string
	StartWiring(ctx context.Context, n *notifications.Notifier) error
	Shutdown(ctx context.Context) error
}

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo    repository.UserRepository
	tokenRepo   repository.TokenRepository
	postRepo    repository.PostRepository
	projectRepo repository.ProjectRepository
	chatRepo    repository.ChatRepository

	notifier *notifications.Notifier
	chatHub  *notifications.ChatHub
	hubs     []wireableHub

	authService    *service.AuthService
	postService    *service.PostService
	projectService *service.ProjectService
	searchService  *service.SearchService
	chatService    *service.ChatService
}

// NewServer creates a server instance, establishing DB and Redis connections.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Used by tests and by bootstrap layers that establish DB/Redis themselves.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("worklane-api"),
		userRepo:       repository.NewUserRepository(db),
		tokenRepo:      repository.NewTokenRepository(db),
		postRepo:       repository.NewPostRepository(db),
		projectRepo:    repository.NewProjectRepository(db),
		chatRepo:       repository.NewChatRepository(db),
	}

	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.chatHub = notifications.NewChatHub()
		s.hubs = []wireableHub{s.chatHub}
	}

	s.authService = service.NewAuthService(s.userRepo, s.tokenRepo, cfg.JWTSecret)
	s.postService = service.NewPostService(s.postRepo)
	s.projectService = service.NewProjectService(s.projectRepo, s.postRepo)
	s.searchService = service.NewSearchService(s.postRepo, s.projectRepo)
	s.chatService = service.NewChatService(s.chatRepo, s.userRepo, s.notifier)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
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
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewValidationError("too many requests, please try again later"))
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/", s.RootListing)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Worklane Backend Metrics Dashboard",
	}))

	// Public auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/session", s.Session)

	// Everything else requires a session
	protected := api.Group("", s.AuthRequired())

	protectedAuth := protected.Group("/auth")
	protectedAuth.Get("/verify", s.Verify)
	protectedAuth.Put("/edit", s.EditProfile)
	protectedAuth.Get("/my-posts", s.MyPosts)
	protectedAuth.Get("/my-projects", s.MyProjects)

	users := protected.Group("/users")
	users.Get("/", s.GetUsers)
	users.Get("/:username", s.GetUserByUsername)

	posts := protected.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/comment", middleware.RateLimit(
		s.redis, 15, time.Minute, "post_comment"), s.CreatePostComment)
	posts.Get("/:id", s.GetPost)

	projects := protected.Group("/projects")
	projects.Get("/", s.GetProjects)
	projects.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_project"), s.CreateProject)
	projects.Post("/comment", middleware.RateLimit(
		s.redis, 15, time.Minute, "project_comment"), s.CreateProjectComment)
	projects.Post("/applications", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "apply"), s.CreateApplication)
	projects.Get("/applications", s.MyProjectApplications)
	projects.Get("/:id", s.GetProject)

	protected.Get("/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.Search)

	chat := protected.Group("/chat")
	chat.Post("/", s.OpenChat)
	chat.Get("/", s.ListChats)
	chat.Get("/:id", s.GetChat)
	chat.Post("/:id", middleware.RateLimit(
		s.redis, 15, time.Minute, "send_chat"), s.SendChatMessage)

	protected.Get("/ws/chat", s.WebSocketChatHandler())
}

// RootListing enumerates the API surface for unauthenticated discovery.
func (s *Server) RootListing(c *fiber.Ctx) error {
	return models.Respond(c, fiber.StatusOK, "Worklane API", fiber.Map{
		"auth":     []string{"/api/auth/signup", "/api/auth/login", "/api/auth/logout", "/api/auth/session", "/api/auth/verify", "/api/auth/edit", "/api/auth/my-posts", "/api/auth/my-projects"},
		"users":    []string{"/api/users", "/api/users/:username"},
		"posts":    []string{"/api/posts", "/api/posts/:id", "/api/posts/comment"},
		"projects": []string{"/api/projects", "/api/projects/:id", "/api/projects/comment", "/api/projects/applications"},
		"search":   []string{"/api/search?query="},
		"chat":     []string{"/api/chat", "/api/chat/:id", "/api/ws/chat"},
	})
}

// HealthCheck reports database and redis connectivity.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
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

// AuthRequired gates a route group behind a valid session. The session travels
// either as the authToken cookie or an Authorization bearer header. A failed
// check expires the cookie so browsers stop replaying a dead session.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := s.sessionToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("authorization required"))
		}

		user, err := s.authService.ValidateSession(c.UserContext(), tokenString)
		if err != nil {
			s.clearSessionCookie(c)
			return models.RespondWithError(c, models.StatusForError(err), err)
		}

		// memoized for the rest of this request only
		c.Locals("userID", user.ID)
		c.Locals("currentUser", user)
		c.Locals("sessionToken", tokenString)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// sessionToken extracts the raw session token from cookie or bearer header.
func (s *Server) sessionToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(sessionCookieName); cookie != "" {
		return cookie
	}
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return ""
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(service.SessionDuration.Seconds()),
		HTTPOnly: true,
		Secure:   s.config.Env != "development",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   s.config.Env != "development",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// currentUser returns the session user memoized by AuthRequired.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("currentUser").(*models.User)
	return user
}

// Start builds the fiber app, wires the hubs and listens.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Worklane API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if s.notifier != nil {
		for _, h := range s.hubs {
			h := h
			go func() {
				if err := h.StartWiring(s.shutdownCtx, s.notifier); err != nil {
					middleware.Logger.Error("hub wiring failed", "hub", h.Name(), "error", err)
				}
			}()
		}
	}

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server and its dependencies.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("http shutdown failed", "error", err)
		}
	}

	for _, h := range s.hubs {
		if err := h.Shutdown(ctx); err != nil {
			middleware.Logger.Error("hub shutdown failed", "hub", h.Name(), "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("closing sql db failed", "error", cerr)
		}
	}
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("closing redis failed", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
