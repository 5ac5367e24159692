package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	Port            string        `envconfig:"PORT" default:"3000"`
	ReadTimeout     time.Duration `envconfig:"APP_READ_TIMEOUT" default:"5s"`
	WriteTimeout    time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `envconfig:"APP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	DBHost       string `envconfig:"DB_HOST" default:"localhost"`
	DBUser       string `envconfig:"DB_USER" default:"postgres"`
	DBPassword   string `envconfig:"DB_PASSWORD"`
	DBName       string `envconfig:"DB_NAME" default:"go_ems"`
	DBPort       string `envconfig:"DB_PORT" default:"5432"`
	DBSSLMode    string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxRetries int    `envconfig:"DB_MAX_RETRIES" default:"5"`
	AutoMigrate  bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	KafkaBroker        string        `envconfig:"KAFKA_BROKER"`
	KafkaConsumerGroup string        `envconfig:"KAFKA_CONSUMER_GROUP" default:"go-ems-leave-audit"`
	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"3s"`

	JWTSecret   string   `envconfig:"JWT_SECRET"`
	CORSOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`

	RBACPolicyPath string `envconfig:"RBAC_POLICY_PATH"`

	RateLimitPerIP     float64 `envconfig:"RATE_LIMIT_IP_RPS" default:"20"`
	RateLimitIPBurst   int     `envconfig:"RATE_LIMIT_IP_BURST" default:"40"`
	RateLimitPerUser   float64 `envconfig:"RATE_LIMIT_USER_RPS" default:"10"`
	RateLimitUserBurst int     `envconfig:"RATE_LIMIT_USER_BURST" default:"20"`

	IdempotencyTTL     time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	EmployeeCacheTTL   time.Duration `envconfig:"EMPLOYEE_CACHE_TTL" default:"10m"`
	LeaveRejectOverlap bool          `envconfig:"LEAVE_REJECT_OVERLAP" default:"false"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateAPI checks what the HTTP server cannot start without.
func (c *Config) ValidateAPI() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// ValidateMessaging checks what the worker and consumer need.
func (c *Config) ValidateMessaging() error {
	if c.KafkaBroker == "" {
		return errors.New("KAFKA_BROKER is required")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}
