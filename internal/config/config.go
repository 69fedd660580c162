// internal/config/config.go
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Storage     StorageConfig
	Email       EmailConfig
	Log         LogConfig
	I18n        I18nConfig
	Admin       AdminConfig
	Frontend    FrontendConfig
}

type FrontendConfig struct {
	BaseURL        string   `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type ServerConfig struct {
	Port         string `env:"SERVER_PORT" envDefault:"8080"`
	Host         string `env:"SERVER_HOST" envDefault:"localhost"`
	ReadTimeout  int    `env:"SERVER_READ_TIMEOUT" envDefault:"15"`
	WriteTimeout int    `env:"SERVER_WRITE_TIMEOUT" envDefault:"30"`
	IdleTimeout  int    `env:"SERVER_IDLE_TIMEOUT" envDefault:"60"`
}

type DatabaseConfig struct {
	Host         string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port         string `env:"POSTGRES_PORT" envDefault:"5432"`
	User         string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password     string `env:"POSTGRES_PASSWORD"`
	Database     string `env:"POSTGRES_DB" envDefault:"bens_fisicos"`
	SSLMode      string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxOpenConns int    `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int    `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"25"`
	MaxLifetime  int    `env:"POSTGRES_MAX_LIFETIME" envDefault:"300"`
	LogLevel     string `env:"POSTGRES_LOG_LEVEL" envDefault:"warn"`
}

type JWTConfig struct {
	SecretKey       string `env:"JWT_SECRET" envDefault:"your-secret-key-change-in-production"`
	AccessTokenTTL  int    `env:"JWT_ACCESS_TTL" envDefault:"24"`   // in hours
	RefreshTokenTTL int    `env:"JWT_REFRESH_TTL" envDefault:"168"` // in hours
}

// StorageConfig selects where generated CIMBPM documents live. Without a
// bucket they are written below LocalPath.
type StorageConfig struct {
	Region          string `env:"AWS_REGION" envDefault:"sa-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Bucket        string `env:"AWS_S3_BUCKET"`
	S3Prefix        string `env:"AWS_S3_PREFIX" envDefault:"cimbpm"`
	LocalPath       string `env:"STORAGE_LOCAL_PATH" envDefault:"./media/cimbpm"`
}

type EmailConfig struct {
	SMTPHost     string `env:"EMAIL_HOST"`
	SMTPPort     string `env:"EMAIL_PORT" envDefault:"587"`
	SMTPUsername string `env:"EMAIL_HOST_USER"`
	SMTPPassword string `env:"EMAIL_HOST_PASSWORD"`
	FromEmail    string `env:"DEFAULT_FROM_EMAIL" envDefault:"nao-responda@sme.prefeitura.sp.gov.br"`
	FromName     string `env:"EMAIL_FROM_NAME" envDefault:"Bens Físicos"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

type I18nConfig struct {
	DefaultLocale string `env:"DEFAULT_LOCALE" envDefault:"pt_BR"`
}

// AdminConfig seeds the first gestor on an empty database.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME" envDefault:"admin"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == defaultJWTSecret && c.IsProduction() {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.IsProduction() {
		return fmt.Errorf("database password is required in production")
	}

	if c.JWT.AccessTokenTTL <= 0 || c.JWT.RefreshTokenTTL <= 0 {
		return fmt.Errorf("JWT token TTLs must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
