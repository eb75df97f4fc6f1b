package config

import (
	"errors"
	"fmt"
	"time"
)

// Sink drivers.
const (
	SinkSQLite = "sqlite"
	SinkRedis  = "redis"
	SinkNone   = "none"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`
	MaxMessageBytes   int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	ClientBuffer      int           `mapstructure:"client_buffer" yaml:"client_buffer"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	RateLimit         RateLimit     `mapstructure:"rate_limit" yaml:"rate_limit"`
	JWT               JWT           `mapstructure:"jwt" yaml:"jwt"`
	Sink              Sink          `mapstructure:"sink" yaml:"sink"`
}

// RateLimit bounds inbound events per connection. PerSecond <= 0 disables it.
type RateLimit struct {
	PerSecond float64 `mapstructure:"per_second" yaml:"per_second"`
	Burst     int     `mapstructure:"burst" yaml:"burst"`
}

// JWT configures handshake token validation. An empty secret disables it.
type JWT struct {
	Secret   string `mapstructure:"secret" yaml:"secret"`
	Issuer   string `mapstructure:"issuer" yaml:"issuer"`
	Audience string `mapstructure:"audience" yaml:"audience"`
	Required bool   `mapstructure:"required" yaml:"required"`
}

// Sink selects where chat messages are persisted.
type Sink struct {
	Driver       string        `mapstructure:"driver" yaml:"driver"`
	DatabasePath string        `mapstructure:"database_path" yaml:"database_path"`
	RedisAddr    string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisStream  string        `mapstructure:"redis_stream" yaml:"redis_stream"`
	RedisMaxLen  int64         `mapstructure:"redis_max_len" yaml:"redis_max_len"`
	QueueSize    int           `mapstructure:"queue_size" yaml:"queue_size"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		MaxMessageBytes:   64 << 10,
		ClientBuffer:      64,
		RateLimit: RateLimit{
			PerSecond: 20,
			Burst:     40,
		},
		Sink: Sink{
			Driver:       SinkSQLite,
			DatabasePath: "roomhub.db",
			RedisAddr:    "localhost:6379",
			RedisStream:  "roomhub:messages",
			QueueSize:    256,
			Timeout:      5 * time.Second,
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.Sink.Driver != "" {
		c.Sink.Driver = other.Sink.Driver
	}
	if other.Sink.DatabasePath != "" {
		c.Sink.DatabasePath = other.Sink.DatabasePath
	}
	if other.Sink.RedisAddr != "" {
		c.Sink.RedisAddr = other.Sink.RedisAddr
	}
}

// Validate reports configuration values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.MaxMessageBytes <= 0 {
		errs = append(errs, errors.New("max_message_bytes must be positive"))
	}
	if c.ClientBuffer <= 0 {
		errs = append(errs, errors.New("client_buffer must be positive"))
	}
	if c.JWT.Required && c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.required needs jwt.secret"))
	}
	switch c.Sink.Driver {
	case SinkSQLite:
		if c.Sink.DatabasePath == "" {
			errs = append(errs, errors.New("sink.database_path is required for sqlite"))
		}
	case SinkRedis:
		if c.Sink.RedisAddr == "" {
			errs = append(errs, errors.New("sink.redis_addr is required for redis"))
		}
	case SinkNone:
	default:
		errs = append(errs, fmt.Errorf("unknown sink.driver %q", c.Sink.Driver))
	}
	if c.Sink.QueueSize <= 0 {
		errs = append(errs, errors.New("sink.queue_size must be positive"))
	}
	return errors.Join(errs...)
}
