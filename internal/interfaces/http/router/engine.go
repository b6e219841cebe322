package router

import (
	"github.com/gin-gonic/gin"
	"github.com/opsease/backend/internal/infrastructure/auth"
	"github.com/opsease/backend/internal/infrastructure/config"
	"github.com/opsease/backend/internal/infrastructure/logger"
	"github.com/opsease/backend/internal/infrastructure/telemetry"
	"github.com/opsease/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// EngineConfig carries everything NewEngine wires into the gin engine
type EngineConfig struct {
	Config         *config.Config
	Logger         *zap.Logger
	MeterProvider  *telemetry.MeterProvider // optional
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist // optional
	Handlers       APIHandlers
}

// NewEngine builds the HTTP engine. Middleware runs in this order:
// recovery, request id, request logger, tracing, metrics, security headers,
// CORS, body limit and rate limit. API groups add JWT auth and span tagging.
func NewEngine(ec EngineConfig) *gin.Engine {
	cfg := ec.Config
	log := ec.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.HTTPMetrics(ec.MeterProvider))
	engine.Use(middleware.Secure(cfg.App.Env == "production"))
	engine.Use(middleware.CORS(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	if ec.Handlers.System != nil {
		engine.GET("/health", ec.Handlers.System.Health)
	}

	jwtAuth := middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService:     ec.JWTService,
		TokenBlacklist: ec.TokenBlacklist,
		Logger:         log,
	})

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, jwtAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := NewRouter(engine, WithAPIVersion("v1"), WithAliases("/api"))
	r.Use(jwtAuth, middleware.SpanAttributes())
	RegisterAPI(r, ec.Handlers)
	r.Setup()

	return engine
}
