package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const envProduction = "production"

type Config struct {
	Port        string        `env:"PORT,                 default=8080"`
	Env         string        `env:"ENV,                  default=development"`
	JWTSecret   string        `env:"JWT_SECRET"`
	LogLevel    string        `env:"LOG_LEVEL,            default=info"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,            default=168h"`
	CORSOrigins []string      `env:"CORS_ALLOWED_ORIGINS, default=http://localhost:5173"`
	FrontendURL string        `env:"FRONTEND_URL,         default=http://localhost:5173"`
	ResetTTL    time.Duration `env:"PASSWORD_RESET_TTL,   default=60m"`

	NotifyWorkers int `env:"NOTIFY_WORKERS, default=2"`

	Cart  CartConfig
	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
}

type CartConfig struct {
	GuestTTL       time.Duration `env:"GUEST_CART_TTL,             default=168h"`
	MergeOnLogin   bool          `env:"CART_MERGE_ON_LOGIN,        default=true"`
	SnapshotPolicy string        `env:"CART_MERGE_SNAPSHOT_POLICY, default=incoming"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// SMTPConfig is optional; an empty Host means reset links are only logged.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM, default=no-reply@localhost"`
}

// IsProduction reports whether cookies must be cross-site capable and logs
// emitted as JSON.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, envProduction)
}

// Load reads a .env file when present, then decodes the environment.
func Load(ctx context.Context) (*Config, error) {
	if err := readDotEnv(); err != nil {
		return nil, err
	}
	return load(ctx, envconfig.OsLookuper())
}

// LoadMongo decodes only the MongoDB settings. Tools that never serve HTTP,
// such as the catalog seeder, use it so they need no JWT secret.
func LoadMongo(ctx context.Context) (*MongoConfig, error) {
	if err := readDotEnv(); err != nil {
		return nil, err
	}
	return loadMongo(ctx, envconfig.OsLookuper())
}

func readDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config: read .env: %w", err)
	}
	return nil
}

func loadMongo(ctx context.Context, lookuper envconfig.Lookuper) (*MongoConfig, error) {
	var cfg MongoConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load mongodb configuration: %w", err)
	}
	return &cfg, nil
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	switch strings.ToLower(c.Cart.SnapshotPolicy) {
	case "incoming", "keep":
	default:
		return fmt.Errorf("config: CART_MERGE_SNAPSHOT_POLICY must be incoming or keep, got %q", c.Cart.SnapshotPolicy)
	}
	return nil
}
