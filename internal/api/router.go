package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cvbridge/ticketing/internal/api/handler"
	appmw "github.com/cvbridge/ticketing/internal/api/middleware"
	"github.com/cvbridge/ticketing/internal/core/domain"
	"github.com/cvbridge/ticketing/internal/core/service"
	"github.com/cvbridge/ticketing/internal/core/session"
	mongodb "github.com/cvbridge/ticketing/internal/infrastructure/db/mongo"
	redisdb "github.com/cvbridge/ticketing/internal/infrastructure/db/redis"
	"github.com/cvbridge/ticketing/internal/infrastructure/redmine"
	"github.com/cvbridge/ticketing/internal/pkg/config"
	"github.com/cvbridge/ticketing/internal/pkg/retry"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("ticketing"))

	// --- Dependencies ---
	gateway := redmine.NewClient(redmine.Config{
		BaseURL: cfg.Redmine.URL,
		Timeout: cfg.Redmine.Timeout,
	}, log)

	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		Multiplier:  cfg.Retry.Multiplier,
	}

	roleRepo := mongodb.NewRoleRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	registry := redisdb.NewTokenRegistry(rdb)
	userCache := redisdb.NewUserCache(rdb)

	sessions := session.NewManager()
	resolver := service.NewCredentialResolver(cfg.Redmine.APIKey)
	tokens := service.NewTokenService(cfg.JWTSecret, registry)
	authService := service.NewAuthService(gateway, roleRepo, auditRepo, tokens, sessions, resolver, policy, log)
	ticketService := service.NewTicketService(gateway, resolver, userCache, cfg.Redmine.ProjectID, policy, log)

	authHandler := handler.NewAuthHandler(authService)
	ticketHandler := handler.NewTicketHandler(ticketService, sessions)
	userHandler := handler.NewUserHandler(authService)
	authMiddleware := appmw.Auth(tokens)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/logout", authHandler.Logout, authMiddleware)
	e.GET("/auth/me", authHandler.Me, authMiddleware)

	// --- Ticket routes ---
	v1 := e.Group("/v1", authMiddleware)
	v1.GET("/tickets", ticketHandler.List)
	v1.POST("/tickets", ticketHandler.Create)

	// --- User administration ---
	admin := v1.Group("/users", appmw.RBAC(domain.RoleAdmin))
	admin.GET("", userHandler.List)
	admin.PUT("/:id/role", userHandler.SetRole)
	v1.POST("/users/:id/conversions", userHandler.IncrementConversions)

	// --- Health probes and operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb, gateway)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
