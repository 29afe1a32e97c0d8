package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("ALLOW_DIRECT_PSO_APPROVAL", "")
	c := Load()

	if c.AppPort != "8080" {
		t.Fatalf("AppPort = %q, want 8080", c.AppPort)
	}
	if c.IdempotencyTTL() != 300*time.Second {
		t.Fatalf("IdempotencyTTL = %s, want 5m", c.IdempotencyTTL())
	}
	if c.MaturitySweepSpec != "@daily" {
		t.Fatalf("MaturitySweepSpec = %q", c.MaturitySweepSpec)
	}
	if c.AllowDirectPSOApproval {
		t.Fatal("direct PSO approval must be off by default")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("ALLOW_DIRECT_PSO_APPROVAL", "true")
	t.Setenv("LOG_FORMAT", "console")

	c := Load()
	if c.AppPort != "9090" || c.RedisDB != 3 || c.IdempTTLSecs != 60 {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if !c.AllowDirectPSOApproval {
		t.Fatal("ALLOW_DIRECT_PSO_APPROVAL not applied")
	}
	if c.Log.Format != "console" {
		t.Fatalf("Log.Format = %q", c.Log.Format)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			AppPort: "8080", MySQLHost: "db", MySQLPort: "3306",
			MySQLDB: "chitfund", MySQLUser: "u", MaturitySweepSpec: "@daily",
		}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"missing host", func(c *Config) { c.MySQLHost = "" }, "missing MySQL config"},
		{"bad port", func(c *Config) { c.MySQLPort = "not-a-port" }, "invalid MYSQL_PORT"},
		{"missing app port", func(c *Config) { c.AppPort = "" }, "missing APP_PORT"},
		{"bad cron", func(c *Config) { c.MaturitySweepSpec = "every now and then" }, "invalid MATURITY_SWEEP_SPEC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("want err containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLUser: "u", MySQLPass: "p", MySQLHost: "db", MySQLPort: "3306", MySQLDB: "chitfund"}
	got := c.MySQLDSN()
	if !strings.HasPrefix(got, "u:p@tcp(db:3306)/chitfund?") {
		t.Fatalf("dsn = %q", got)
	}
	if !strings.Contains(got, "parseTime=true") {
		t.Fatalf("dsn missing parseTime: %q", got)
	}
}
