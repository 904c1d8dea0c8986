package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all process configuration for api, worker and consumer.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Workflow  WorkflowConfig  `mapstructure:"workflow"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type AppConfig struct {
	Name         string        `mapstructure:"name"`
	Env          string        `mapstructure:"env"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"`
	Host        string `mapstructure:"host"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	Name        string `mapstructure:"name"`
	Port        string `mapstructure:"port"`
	SSLMode     string `mapstructure:"sslmode"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	MaxRetries  int    `mapstructure:"max_retries"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	MaxRetries int    `mapstructure:"max_retries"`
}

type KafkaConfig struct {
	Broker       string        `mapstructure:"broker"`
	GroupID      string        `mapstructure:"group_id"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type WorkflowConfig struct {
	HRReviewThresholdDays float64       `mapstructure:"hr_review_threshold_days"`
	MaxConflictRetries    int           `mapstructure:"max_conflict_retries"`
	StatusCacheTTL        time.Duration `mapstructure:"status_cache_ttl"`
}

type TracingConfig struct {
	Exporter string `mapstructure:"exporter"`
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// Load reads configuration from the environment (after .env has been
// loaded by the caller) on top of built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "go-leaveflow")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "3000")
	v.SetDefault("app.read_timeout", 5*time.Second)
	v.SetDefault("app.write_timeout", 10*time.Second)
	v.SetDefault("app.idle_timeout", 60*time.Second)
	v.SetDefault("app.cors_origins", []string{"*"})

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.sqlite_path", "leaveflow.db")
	v.SetDefault("db.max_retries", 5)
	v.SetDefault("db.auto_migrate", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.max_retries", 5)

	v.SetDefault("kafka.group_id", "go-leaveflow-balance-init")
	v.SetDefault("kafka.poll_interval", 3*time.Second)
	v.SetDefault("kafka.max_retries", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("workflow.hr_review_threshold_days", 5)
	v.SetDefault("workflow.max_conflict_retries", 3)
	v.SetDefault("workflow.status_cache_ttl", 5*time.Minute)

	v.SetDefault("tracing.exporter", "none")
	v.SetDefault("tracing.insecure", true)

	v.SetDefault("ratelimit.rps", 5)
	v.SetDefault("ratelimit.burst", 10)
}

// bindEnvVars maps the flat env names used by the deployment manifests.
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		"app.port":                          "PORT",
		"app.env":                           "APP_ENV",
		"db.driver":                         "DB_DRIVER",
		"db.host":                           "DB_HOST",
		"db.user":                           "DB_USER",
		"db.password":                       "DB_PASSWORD",
		"db.name":                           "DB_NAME",
		"db.port":                           "DB_PORT",
		"db.sslmode":                        "DB_SSLMODE",
		"db.sqlite_path":                    "DB_SQLITE_PATH",
		"db.auto_migrate":                   "DB_AUTO_MIGRATE",
		"redis.addr":                        "REDIS_ADDR",
		"kafka.broker":                      "KAFKA_BROKER",
		"kafka.group_id":                    "KAFKA_GROUP_ID",
		"jwt.secret":                        "JWT_SECRET",
		"log.level":                         "LOG_LEVEL",
		"log.format":                        "LOG_FORMAT",
		"workflow.hr_review_threshold_days": "HR_REVIEW_THRESHOLD_DAYS",
		"workflow.max_conflict_retries":     "WORKFLOW_MAX_CONFLICT_RETRIES",
		"workflow.status_cache_ttl":         "WORKFLOW_STATUS_CACHE_TTL",
		"tracing.exporter":                  "OTEL_EXPORTER",
		"tracing.endpoint":                  "OTEL_ENDPOINT",
		"tracing.insecure":                  "OTEL_INSECURE",
		"ratelimit.rps":                     "RATE_LIMIT_RPS",
		"ratelimit.burst":                   "RATE_LIMIT_BURST",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("db.host is required for postgres")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("db.name is required for postgres")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("db.sqlite_path is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported db.driver %q", c.Database.Driver)
	}

	if c.Workflow.HRReviewThresholdDays <= 0 {
		return fmt.Errorf("workflow.hr_review_threshold_days must be positive")
	}
	if c.Workflow.MaxConflictRetries < 0 {
		return fmt.Errorf("workflow.max_conflict_retries must not be negative")
	}

	switch c.Tracing.Exporter {
	case "none", "stdout", "otlphttp":
	default:
		return fmt.Errorf("unsupported tracing.exporter %q", c.Tracing.Exporter)
	}

	return nil
}
