// Package config loads runtime settings from the environment.
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

// Prefix is prepended to every environment variable, e.g. TAPAS_RAW_ROOT.
const Prefix = "TAPAS"

// Config embeds its groups so every variable sits directly under Prefix.
type Config struct {
	Upstream
	Rules
	Cache
	Server
	Log
}

type Upstream struct {
	BaseURL        string        `envconfig:"BASE_URL" default:"https://fantasy.premierleague.com/api" validate:"required,url"`
	RawRoot        string        `envconfig:"RAW_ROOT" default:"data/raw" validate:"required"`
	UserAgent      string        `envconfig:"USER_AGENT" default:"tapas-fpl/1.0"`
	Timeout        time.Duration `envconfig:"HTTP_TIMEOUT" default:"20s" validate:"gt=0"`
	Sleep          time.Duration `envconfig:"REQUEST_SLEEP" default:"250ms" validate:"gte=0"`
	MaxRetries     uint64        `envconfig:"MAX_RETRIES" default:"4" validate:"lte=10"`
	BreakerTimeout time.Duration `envconfig:"BREAKER_TIMEOUT" default:"30s" validate:"gt=0"`
	LiveTTL        time.Duration `envconfig:"LIVE_TTL" default:"60s" validate:"gte=0"`
	StaticTTL      time.Duration `envconfig:"STATIC_TTL" default:"10m" validate:"gte=0"`
}

// Rules are the versioned game rules the engine is parameterised by.
type Rules struct {
	FreeTransferCap int `envconfig:"FREE_TRANSFER_CAP" default:"5" validate:"min=1,max=10"`
	ChipBoundary    int `envconfig:"CHIP_BOUNDARY" default:"19" validate:"min=1,max=38"`
	ListLimit       int `envconfig:"LIST_LIMIT" default:"10" validate:"min=1,max=100"`
}

type Cache struct {
	Size            int           `envconfig:"CACHE_SIZE" default:"512" validate:"min=1"`
	TTL             time.Duration `envconfig:"CACHE_TTL" default:"2m" validate:"gt=0"`
	Workers         int           `envconfig:"WORKERS" default:"8" validate:"min=1,max=64"`
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"60s" validate:"gte=0"`
}

type Server struct {
	Addr        string `envconfig:"ADDR" default:":8080" validate:"required"`
	Path        string `envconfig:"MCP_PATH" default:"/mcp" validate:"required,startswith=/"`
	APIKey      string `envconfig:"API_KEY"`
	RequireAuth bool   `envconfig:"REQUIRE_AUTH" default:"true"`
	AuthHeader  string `envconfig:"AUTH_HEADER" default:"X-API-Key"`
}

type Log struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn warning error"`
	Format string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv processes the environment without touching .env files.
func FromEnv() (*Config, error) {
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
