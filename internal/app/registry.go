package app

import (
	"database/sql"

	"go-ems/internal/employee"
	"go-ems/internal/leave"
	"go-ems/internal/messaging/kafka"
	"go-ems/internal/middleware"
	"go-ems/internal/observability"
	"go-ems/internal/rbac"
	"go-ems/internal/rbac/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	metrics *observability.Metrics,
) error {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(cfg.RBACPolicyPath)
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(enforcer)
	if err != nil {
		return err
	}

	// --- Services ---
	directory := employee.NewDirectory(employeeRepo, rdb, cfg.EmployeeCacheTTL)
	leaveService := leave.NewServiceWithOutbox(
		db,
		leaveRepo,
		outboxRepo,
		directory,
		rbacService,
		leave.Options{
			RejectOverlap: cfg.LeaveRejectOverlap,
			Recorder:      metrics,
		},
	)

	// --- Handlers ---
	leaveHandler := leave.NewHandler(leaveService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		leave.RegisterRoutes(
			api,
			leaveHandler,
			rbacService,
			middleware.Idempotency(rdb, cfg.IdempotencyTTL),
			middleware.AuthMiddleware(cfg.JWTSecret),
			middleware.RateLimitByUser(rate.Limit(cfg.RateLimitPerUser), cfg.RateLimitUserBurst),
		)
	}

	return nil
}
