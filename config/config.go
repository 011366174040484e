// Package config loads the server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Log levels accepted in LOG_LEVEL.
const (
	LogLevelInfo  = "info"
	LogLevelError = "error"
)

// Config holds every tunable of the relay server.
type Config struct {
	Port               string        `envconfig:"PORT" default:"8000" validate:"required,numeric"`
	CORSAllowedOrigins string        `envconfig:"CORS_ALLOWED_ORIGINS" default:"*" validate:"required"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=info error"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s" validate:"gt=0"`

	// Router and hub queues
	InboundQueueSize int `envconfig:"INBOUND_QUEUE_SIZE" default:"1024" validate:"gt=0"`
	SendBufferSize   int `envconfig:"SEND_BUFFER_SIZE" default:"256" validate:"gt=0"`

	// Websocket transport
	MaxFrameBytes int64         `envconfig:"MAX_FRAME_BYTES" default:"40960" validate:"gt=0"`
	WriteTimeout  time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s" validate:"gt=0"`
	PingInterval  time.Duration `envconfig:"PING_INTERVAL" default:"25s" validate:"gt=0"`
	PongTimeout   time.Duration `envconfig:"PONG_TIMEOUT" default:"20s" validate:"gt=0"`

	// CHAT_RATE_PER_SECOND of 0 disables chat rate limiting.
	ChatRatePerSecond float64 `envconfig:"CHAT_RATE_PER_SECOND" default:"10" validate:"gte=0"`
	ChatBurst         int     `envconfig:"CHAT_BURST" default:"20" validate:"gt=0"`

	ActivityLogSize int `envconfig:"ACTIVITY_LOG_SIZE" default:"100" validate:"gt=0"`
}

var validate = validator.New()

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment and validates it.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

// ReadTimeout is how long a connection may stay silent before it is
// considered dead.
func (c Config) ReadTimeout() time.Duration {
	return c.PingInterval + c.PongTimeout
}
