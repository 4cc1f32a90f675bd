package http

import (
	"time"

	"insurance-claims-backend/internal/adapter/middleware"
	"insurance-claims-backend/internal/domain/user"
	"insurance-claims-backend/internal/infrastructure/logger"
	"insurance-claims-backend/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Log    *logger.Logger
	Tokens middleware.TokenParser
	// Actors reloads the token's user on every request.
	Actors    middleware.ActorResolver
	DevBypass bool

	// Redis is optional; without it Idempotency-Key headers are ignored.
	Redis          *redis.Client
	IdempotencyTTL time.Duration
	// Metrics is optional; without it /metrics is not mounted.
	Metrics *metrics.Metrics

	Health    *Handler
	Claims    *ClaimHandler
	Users     *UserHandler
	Documents *DocumentHandler
}

// NewRouter builds the echo instance with every /api route mounted.
func NewRouter(d RouterDeps) *echo.Echo {
	log := d.Log
	if log == nil {
		log = logger.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = HTTPErrorHandler(log)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			kv := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				log.Warn("request", append(kv, "error", v.Error.Error())...)
				return nil
			}
			log.Info("request", kv...)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit("50M"))
	if d.Metrics != nil {
		e.Use(middleware.Metrics(d.Metrics))
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	e.GET("/health", d.Health.Health)
	e.GET("/ready", d.Health.Ready)

	api := e.Group("/api")
	api.POST("/auth/login", d.Users.Login)

	authed := []echo.MiddlewareFunc{middleware.Authenticate(d.Tokens, d.Actors, d.DevBypass)}
	if d.Redis != nil {
		authed = append(authed, middleware.Idempotency(d.Redis, d.IdempotencyTTL, log))
	}
	g := api.Group("", authed...)

	g.GET("/me", d.Users.Me)
	g.GET("/claim-types", d.Users.ListClaimTypes)
	g.GET("/stats", d.Claims.Stats)
	g.GET("/documents/download/:storedFilename", d.Documents.Download)

	claimant := g.Group("/claimant", middleware.RequireRole(user.RoleClaimant))
	claimant.POST("/claims", d.Claims.Submit)
	claimant.GET("/claims/:userId", d.Claims.ListForClaimant)
	claimant.GET("/claims/:claimId/:userId", d.Claims.GetOwn)
	g.GET("/allowed-claim-types/:userId", d.Users.AllowedClaimTypes, middleware.RequireRole(user.RoleClaimant))

	reviewer := g.Group("/reviewer", middleware.RequireRole(user.RoleReviewer))
	reviewer.GET("/claims/:userId", d.Claims.ListForReviewer)
	reviewer.GET("/claims/:claimId/:userId", d.Claims.GetOwn)
	reviewer.PATCH("/claims/:claimId/submit-for-approval/:userId", d.Claims.SubmitForApproval)
	reviewer.POST("/claims/:claimId/submit-for-approval/:userId", d.Claims.SubmitForApproval)

	checker := g.Group("/checker", middleware.RequireRole(user.RoleChecker))
	checker.GET("/claims", d.Claims.ListForChecker)
	checker.GET("/claims/:claimId", d.Claims.Get)
	checker.GET("/claims/:claimId/history", d.Claims.History)
	checker.PATCH("/claims/:claimId/assign", d.Claims.Assign)
	checker.PATCH("/claims/:claimId/approve/:userId", d.Claims.Approve)
	checker.PATCH("/claims/:claimId/deny/:userId", d.Claims.Deny)
	checker.GET("/users", d.Users.List)
	checker.POST("/users", d.Users.Create)
	checker.PATCH("/users/:userId", d.Users.Update)
	checker.DELETE("/users/:userId", d.Users.Deactivate)
	return e
}
