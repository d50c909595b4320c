package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	ServerAddr  string `env:"SERVER_ADDR" envDefault:":5101"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9091"`

	// Wix app identity used for the client_credentials exchange.
	AppID     string `env:"WIX_APP_ID,required"`
	AppSecret string `env:"WIX_APP_SECRET,required"`

	// Webhook signature verification. SignatureAlg picks which key material
	// is used: RS256 verifies against WebhookPublicKey, HS256 against
	// AppSecret. The pairing is validated at startup.
	SignatureAlg     string `env:"WEBHOOK_SIGNATURE_ALG" envDefault:"RS256"`
	WebhookPublicKey string `env:"WIX_WEBHOOK_PUBLIC_KEY"`

	TokenURL        string        `env:"WIX_TOKEN_URL" envDefault:"https://www.wixapis.com/oauth2/token"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"4h"`
	ExchangeTimeout time.Duration `env:"EXCHANGE_TIMEOUT" envDefault:"15s"`

	RefreshInterval  time.Duration `env:"REFRESH_INTERVAL" envDefault:"10m"`
	RefreshThreshold time.Duration `env:"REFRESH_THRESHOLD" envDefault:"1h"`

	MaxBodySize  int64   `env:"MAX_WEBHOOK_BODY_BYTES" envDefault:"65536"` // 64KB
	WebhookRPS   float64 `env:"WEBHOOK_RATE_LIMIT_RPS" envDefault:"50"`
	WebhookBurst int     `env:"WEBHOOK_RATE_LIMIT_BURST" envDefault:"100"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the chosen signature algorithm matches the provided
// key material. Misconfiguration fails startup instead of rejecting every
// webhook at runtime.
func (c *Config) Validate() error {
	switch c.SignatureAlg {
	case "RS256":
		if c.WebhookPublicKey == "" {
			return fmt.Errorf("WEBHOOK_SIGNATURE_ALG=RS256 requires WIX_WEBHOOK_PUBLIC_KEY")
		}
	case "HS256":
		// AppSecret doubles as the verification key; env parsing already
		// enforces its presence.
	default:
		return fmt.Errorf("unsupported WEBHOOK_SIGNATURE_ALG %q (want RS256 or HS256)", c.SignatureAlg)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.RefreshThreshold <= 0 || c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval and threshold must be positive")
	}
	if c.ExchangeTimeout <= 0 {
		return fmt.Errorf("EXCHANGE_TIMEOUT must be positive, got %s", c.ExchangeTimeout)
	}

	return nil
}
