package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env     string
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	DBMaxOpenConns int
	DBLogLevel     string

	RedisAddr     string
	RedisDB       int
	RedisPassword string

	IdempTTLSecs int

	Log LogConfig

	// Redis pub/sub channel for scheme notifications; empty logs them only.
	NotifyChannel     string
	MaturitySweepSpec string
	// Lets admins approve a PSO directly from submitted.
	AllowDirectPSOApproval bool
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("APP_PORT", "8080")

	v.SetDefault("MYSQL_HOST", "mysql")
	v.SetDefault("MYSQL_PORT", "3306")
	v.SetDefault("MYSQL_DB", "chitfund")
	v.SetDefault("MYSQL_USER", "chitfund")
	v.SetDefault("MYSQL_PASS", "chitfund")
	v.SetDefault("DB_MAX_OPEN_CONNS", 30)
	v.SetDefault("DB_LOG_LEVEL", "warn")

	v.SetDefault("REDIS_ADDR", "redis:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("IDEMPOTENCY_TTL_SECONDS", 300)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 5)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)

	v.SetDefault("NOTIFY_CHANNEL", "chitfund:scheme-events")
	v.SetDefault("MATURITY_SWEEP_SPEC", "@daily")
	v.SetDefault("ALLOW_DIRECT_PSO_APPROVAL", false)
}

// Load reads the environment, optionally seeded from a .env file.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	return &Config{
		Env:     v.GetString("APP_ENV"),
		AppPort: v.GetString("APP_PORT"),

		MySQLHost: v.GetString("MYSQL_HOST"),
		MySQLPort: v.GetString("MYSQL_PORT"),
		MySQLDB:   v.GetString("MYSQL_DB"),
		MySQLUser: v.GetString("MYSQL_USER"),
		MySQLPass: v.GetString("MYSQL_PASS"),

		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		DBLogLevel:     v.GetString("DB_LOG_LEVEL"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisDB:       v.GetInt("REDIS_DB"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		IdempTTLSecs:  v.GetInt("IDEMPOTENCY_TTL_SECONDS"),

		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},

		NotifyChannel:          v.GetString("NOTIFY_CHANNEL"),
		MaturitySweepSpec:      v.GetString("MATURITY_SWEEP_SPEC"),
		AllowDirectPSOApproval: v.GetBool("ALLOW_DIRECT_PSO_APPROVAL"),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.MaturitySweepSpec != "" {
		if _, err := cron.ParseStandard(c.MaturitySweepSpec); err != nil {
			return fmt.Errorf("invalid MATURITY_SWEEP_SPEC %q: %w", c.MaturitySweepSpec, err)
		}
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATE/DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
