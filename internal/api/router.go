package api

import (
	"fmt"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/quickdesk/helpdesk/internal/api/handler"
	"github.com/quickdesk/helpdesk/internal/api/middleware"
	"github.com/quickdesk/helpdesk/internal/core/domain"
	"github.com/quickdesk/helpdesk/internal/core/service"
	mongodb "github.com/quickdesk/helpdesk/internal/infrastructure/db/mongo"
	redisdb "github.com/quickdesk/helpdesk/internal/infrastructure/db/redis"
	"github.com/quickdesk/helpdesk/internal/infrastructure/llm"
	"github.com/quickdesk/helpdesk/internal/infrastructure/notify"
	"github.com/quickdesk/helpdesk/internal/infrastructure/storage"
	"github.com/quickdesk/helpdesk/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{cfg.CORSOrigin},
	}))
	e.Use(echomiddleware.BodyLimit(fmt.Sprintf("%dM", cfg.Upload.MaxMB)))
	e.Use(echoprometheus.NewMiddleware("quickdesk"))

	// --- Infrastructure ---
	userRepo := mongodb.NewUserRepository(db)
	categoryRepo := mongodb.NewCategoryRepository(db)
	ticketRepo := mongodb.NewTicketRepository(db)

	store, err := storage.New(cfg.Upload.Dir)
	if err != nil {
		return nil, err
	}

	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	dedup := redisdb.NewNotificationDedup(rdb)
	notifier := notify.NewDispatcher(mailer, dedup, log)

	assistant := llm.NewClient(llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
	})

	// --- Services ---
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	ticketService := service.NewTicketService(ticketRepo, userRepo, categoryRepo, notifier, log)
	chatService := service.NewChatService(assistant, ticketService, categoryService, userService, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	ticketHandler := handler.NewTicketHandler(ticketService, store)
	chatHandler := handler.NewChatHandler(chatService)

	authed := middleware.Auth(cfg.JWTSecret, userRepo)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/me", authHandler.Me, authed)

	// --- User management ---
	users := e.Group("/users", authed)
	users.GET("", userHandler.List, adminOnly)
	users.POST("", userHandler.Create, adminOnly)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete, adminOnly)

	// --- Categories (reads are public) ---
	e.GET("/categories", categoryHandler.List)
	categories := e.Group("/categories", authed, adminOnly)
	categories.POST("", categoryHandler.Create)
	categories.PUT("/:id", categoryHandler.Update)
	categories.DELETE("/:id", categoryHandler.Delete)

	// --- Tickets ---
	tickets := e.Group("/tickets", authed)
	tickets.POST("", ticketHandler.Create)
	tickets.GET("", ticketHandler.List)
	tickets.GET("/:id", ticketHandler.Get)
	tickets.PUT("/:id", ticketHandler.Update)
	tickets.DELETE("/:id", ticketHandler.Delete, adminOnly)
	tickets.POST("/:id/comment", ticketHandler.Comment)
	tickets.PUT("/:id/upvote", ticketHandler.Upvote)
	tickets.PUT("/:id/downvote", ticketHandler.Downvote)

	// --- Chat assistant ---
	e.POST("/chat", chatHandler.Chat, authed)

	// --- Attachments served statically ---
	e.Static("/uploads", store.Dir())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}
