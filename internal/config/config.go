package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreCookie = "cookie"
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds the application configuration
type Config struct {
	HTTPAddr   string        `env:"HTTP_ADDR" envDefault:":8080"`
	APIURL     string        `env:"API_URL" envDefault:"http://localhost:4000/graphql"`
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	PublicURL  string        `env:"PUBLIC_URL"`
	EventFile  string        `env:"EVENT_FILE"`

	GalleryLimit     int    `env:"GALLERY_LIMIT" envDefault:"16"`
	DefaultDialCode  string `env:"DEFAULT_DIAL_CODE" envDefault:"+234"`
	DefaultMaxGuests int    `env:"DEFAULT_MAX_GUESTS" envDefault:"1"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"cookie"`
	StorePath     string `env:"STORE_PATH" envDefault:"data/visitors.json"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	CookieSecure  bool   `env:"COOKIE_SECURE" envDefault:"false"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
	// Console starts the interactive operator menu on stdin.
	Console bool `env:"CONSOLE" envDefault:"false"`

	WhatsAppEnabled bool   `env:"WHATSAPP_ENABLED" envDefault:"false"`
	WhatsAppDataDir string `env:"WHATSAPP_DATA_DIR" envDefault:"data"`

	SESFromEmail string `env:"SES_FROM_EMAIL"`
	SESFromName  string `env:"SES_FROM_NAME"`
	AWSRegion    string `env:"AWS_REGION" envDefault:"eu-west-1"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_URL %q is not an absolute URL", c.APIURL)
	}
	if c.PublicURL != "" {
		if _, err := url.Parse(c.PublicURL); err != nil {
			return fmt.Errorf("PUBLIC_URL: %w", err)
		}
	}
	switch c.StoreDriver {
	case StoreCookie, StoreMemory, StoreFile, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("STORE_DRIVER %q: must be one of cookie, memory, file, sqlite, redis", c.StoreDriver)
	}
	if c.GalleryLimit <= 0 {
		return fmt.Errorf("GALLERY_LIMIT must be positive, got %d", c.GalleryLimit)
	}
	if c.DefaultMaxGuests <= 0 {
		return fmt.Errorf("DEFAULT_MAX_GUESTS must be positive, got %d", c.DefaultMaxGuests)
	}
	if !strings.HasPrefix(c.DefaultDialCode, "+") {
		return fmt.Errorf("DEFAULT_DIAL_CODE %q must start with +", c.DefaultDialCode)
	}
	return nil
}

// MailEnabled reports whether SES delivery is configured.
func (c *Config) MailEnabled() bool {
	return c.SESFromEmail != ""
}
