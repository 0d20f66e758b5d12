package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort  string `env:"HTTP_PORT" envDefault:"8080"`
	AppEnv    string `env:"APP_ENV" envDefault:"production"`
	ClientURL string `env:"CLIENT_URL"`
	// APIBaseURL es la base publica de /api/users usada en los links de los correos.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8080/api/users"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"acm"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTTTLMinutes        int    `env:"JWT_TTL_MINUTES" envDefault:"10080"`
	ResetTokenTTLMinutes int    `env:"RESET_TOKEN_TTL_MINUTES" envDefault:"60"`
	ExposeResetToken     bool   `env:"EXPOSE_RESET_TOKEN" envDefault:"false"`

	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:4200"`
	RateLimitRPS   int      `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"20"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"TTU ACM"`
	ContactInbox string `env:"CONTACT_INBOX"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	ResumeMaxMB       int64  `env:"RESUME_MAX_MB" envDefault:"5"`

	CalendarID              string `env:"CALENDAR_ID" envDefault:"primary"`
	CalendarCredentialsFile string `env:"CALENDAR_CREDENTIALS_FILE"`
	EventsCacheSeconds      int    `env:"EVENTS_CACHE_SECONDS" envDefault:"300"`
}

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET is required")
	ErrUnknownDriver    = errors.New("unknown store driver")
)

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.ClientURL = strings.TrimRight(strings.TrimSpace(cfg.ClientURL), "/")
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa combinaciones invalidas que impiden arrancar el servicio.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %q", c.StoreDriver)
		}
	case StoreDriverMongo:
		if strings.TrimSpace(c.MongoURI) == "" {
			return fmt.Errorf("MONGO_URI is required for driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.StoreDriver)
	}
	if c.ResetTokenTTLMinutes <= 0 {
		return errors.New("RESET_TOKEN_TTL_MINUTES must be positive")
	}
	return nil
}

// IsDevelopment indica si el servicio corre en modo desarrollo.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}
