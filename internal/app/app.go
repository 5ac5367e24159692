package app

import (
	"context"
	"net/http"

	"go-ems/internal/middleware"
	"go-ems/internal/observability"
	"go-ems/internal/shared/apperror"
	"go-ems/internal/shared/connection"
	"go-ems/internal/shared/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// BuildApp connects the infrastructure, installs the global middleware and
// registers every route. The returned cleanup releases the connections.
func BuildApp(router *gin.Engine, cfg *Config) (func(), error) {
	logger := zap.L()

	gormDB, err := connection.ConnectGORMWithRetry(cfg.PostgresDSN(), cfg.DBMaxRetries)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := migrate(context.Background(), gormDB, sqlDB); err != nil {
			sqlDB.Close()
			return nil, err
		}
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.DBMaxRetries)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	cleanup := func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("close redis failed", zap.Error(err))
		}
		if err := sqlDB.Close(); err != nil {
			logger.Warn("close database failed", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()

	router.Use(
		middleware.ContextLogger(logger),
		metrics.Middleware(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.IdempotencyKeyHeader, middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, middleware.IdempotentReplayHeader},
			AllowCredentials: true,
		}),
		middleware.RateLimitByIP(rate.Limit(cfg.RateLimitPerIP), cfg.RateLimitIPBurst),
	)

	router.GET("/healthz", func(c *gin.Context) {
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			unavailable := apperror.ErrServiceUnavailable
			response.Error(c, unavailable.HTTPStatus, unavailable.Code, unavailable.Message, nil)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if err := registerModules(router, cfg, sqlDB, gormDB, rdb, metrics); err != nil {
		cleanup()
		return nil, err
	}

	return cleanup, nil
}
