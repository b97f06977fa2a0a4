package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppPort     string `envconfig:"APP_PORT" default:"8080"`
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppBaseURL  string `envconfig:"APP_BASE_URL"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"http://127.0.0.1:3000, http://localhost:3000"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	DBDriver string `envconfig:"DB_DRIVER" default:"postgres"`
	DBDSN    string `envconfig:"DB_DSN" required:"true"`

	JWTSecret     string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiresMin int    `envconfig:"JWT_EXPIRES_MIN" default:"10080"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// kunci AES (16/24/32 byte) untuk token portal klien & freelancer
	PortalKey string `envconfig:"PORTAL_KEY" required:"true"`

	IdempotencyTTL      time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	PublicSubmitTimeout time.Duration `envconfig:"PUBLIC_SUBMIT_TIMEOUT" default:"10s"`

	GoogleClientID  string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleSecret    string `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirect  string `envconfig:"GOOGLE_REDIRECT_URL"`
	FrontendBaseURL string `envconfig:"FRONTEND_BASE_URL" default:"http://localhost:3000"`

	TripayAPIKey           string `envconfig:"TRIPAY_API_KEY"`
	TripayPrivateKey       string `envconfig:"TRIPAY_PRIVATE_KEY"`
	TripayMerchantCode     string `envconfig:"TRIPAY_MERCHANT_CODE"`
	TripayEnv              string `envconfig:"TRIPAY_ENV" default:"sandbox"`
	TripaySettlementCardID string `envconfig:"TRIPAY_SETTLEMENT_CARD_ID"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	switch len(cfg.PortalKey) {
	case 16, 24, 32:
	default:
		return Config{}, fmt.Errorf("PORTAL_KEY must be 16/24/32 bytes, got %d", len(cfg.PortalKey))
	}
	return cfg, nil
}

// CLIConfig is the subset studioctl reads; every field can be overridden by a flag.
type CLIConfig struct {
	DBDriver string `envconfig:"DB_DRIVER" default:"postgres"`
	DBDSN    string `envconfig:"DB_DSN"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func LoadCLI() (CLIConfig, error) {
	var cfg CLIConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

func (c Config) IsProd() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// TripayEnabled reports whether the online payment gateway is configured.
func (c Config) TripayEnabled() bool {
	return c.TripayAPIKey != "" && c.TripayPrivateKey != "" && c.TripayMerchantCode != ""
}
