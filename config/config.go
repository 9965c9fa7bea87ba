package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/constants"
)

// DefaultJWTSecret is the insecure development secret. Production deployments
// must override it through JWT_SECRET.
const DefaultJWTSecret = "change-me-in-prod"

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Auth     AuthConfig
	Admin    AdminConfig
	CORS     CORSConfig
	GRPC     GRPCConfig
}

type AppConfig struct {
	Name        string        `env:"APP_NAME" envDefault:"auth-microservice"`
	Environment string        `env:"APP_ENV" envDefault:"development"`
	Port        string        `env:"PORT" envDefault:"5001"`
	LogsPath    string        `env:"LOGS_PATH"`
	Timeout     time.Duration `env:"APP_TIMEOUT" envDefault:"30s"`
}

type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL" envDefault:"sqlite://data/auth.db"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"50"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
}

type JWTConfig struct {
	Secret         string        `env:"JWT_SECRET" envDefault:"change-me-in-prod"`
	ExpirationTime time.Duration `env:"JWT_EXPIRATION" envDefault:"60m"`
}

type AuthConfig struct {
	BcryptCost       int `env:"BCRYPT_COST" envDefault:"10"`
	ShortTokenLength int `env:"SHORT_TOKEN_LENGTH" envDefault:"12"`
}

type AdminConfig struct {
	// Code gates the admin pages. Empty disables them.
	Code string `env:"ADMIN_CODE"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
}

type RedisConfig struct {
	Enabled      bool          `env:"REDIS_ENABLED" envDefault:"false"`
	Host         string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port         int           `env:"REDIS_PORT" envDefault:"6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	Database     int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"2s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"500ms"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"500ms"`
}

type GRPCConfig struct {
	// Port enables the gRPC health server when set.
	Port string `env:"GRPC_PORT"`
}

// LoadConfig reads .env (if present) and then the process environment.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the service cannot run safely with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.JWT.ExpirationTime <= 0 {
		return errors.New("JWT_EXPIRATION must be positive")
	}
	if c.App.Environment == "production" && c.JWT.Secret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be overridden in production")
	}
	if c.Auth.ShortTokenLength <= 0 || c.Auth.ShortTokenLength > constants.MaxShortTokenLen {
		return fmt.Errorf("SHORT_TOKEN_LENGTH must be between 1 and %d", constants.MaxShortTokenLen)
	}
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL must not be empty")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// UsesDefaultSecret reports whether the insecure development secret is active.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWT.Secret == DefaultJWTSecret
}

func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
