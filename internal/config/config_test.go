package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected resolved path %s, got %s", path, resolved)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	def := Default()
	if cfg.Addr != def.Addr || cfg.Sink.Driver != def.Sink.Driver || cfg.Sink.Timeout != def.Sink.Timeout {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
addr: ":9000"
shutdown_timeout: 10s
sink:
  driver: redis
  redis_addr: "redis:6379"
rate_limit:
  per_second: 5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ROOMHUB_ADDR", ":9100")
	t.Setenv("ROOMHUB_JWT_SECRET", "from-env")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Addr != ":9100" {
		t.Errorf("env should override file, got addr %q", cfg.Addr)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("file should override default, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Sink.Driver != SinkRedis || cfg.Sink.RedisAddr != "redis:6379" {
		t.Errorf("unexpected sink: %+v", cfg.Sink)
	}
	if cfg.Sink.QueueSize != Default().Sink.QueueSize {
		t.Errorf("nested default lost, got queue size %d", cfg.Sink.QueueSize)
	}
	if cfg.RateLimit.PerSecond != 5 {
		t.Errorf("unexpected rate limit: %+v", cfg.RateLimit)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Errorf("nested env override missing, got %q", cfg.JWT.Secret)
	}

	cfg.UpdateFrom(Config{Addr: ":9200", Sink: Sink{Driver: SinkNone}})
	if cfg.Addr != ":9200" || cfg.Sink.Driver != SinkNone {
		t.Errorf("caller overrides not applied: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("zero override must keep value, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: [unterminated"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := Load(nil, path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"no sink", func(c *Config) { c.Sink.Driver = SinkNone }, ""},
		{"unknown driver", func(c *Config) { c.Sink.Driver = "mongo" }, "unknown sink.driver"},
		{"missing db path", func(c *Config) { c.Sink.DatabasePath = "" }, "database_path"},
		{"missing redis addr", func(c *Config) { c.Sink.Driver = SinkRedis; c.Sink.RedisAddr = "" }, "redis_addr"},
		{"jwt required without secret", func(c *Config) { c.JWT.Required = true }, "jwt.secret"},
		{"zero frame size", func(c *Config) { c.MaxMessageBytes = 0 }, "max_message_bytes"},
		{"zero queue", func(c *Config) { c.Sink.QueueSize = 0 }, "queue_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
