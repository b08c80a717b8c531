package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string
	LogLevel    string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration. Rate limiting is disabled when neither
	// RedisURL nor RedisHost is set.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Image storage
	ImageStorage string
	MediaRoot    string
	MediaURL     string
	S3BucketName string
	AWSRegion    string

	// Pagination and limits
	RecipesPageSize   int
	UsersPageSize     int
	CatalogPageSize   int
	RecipeCreateLimit int
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageLocal = "local"
	StorageS3    = "s3"
)

// LoadConfig builds a Config from Docker secrets and environment variables
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	// .env is a convenience for local development only
	if env == Development {
		_ = godotenv.Load()
	}

	cfg := &Config{Env: env}
	if err := load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func load(cfg *Config) error {
	cfg.ServerPort = lookup("server_port", "8080")
	cfg.ServerHost = lookup("server_host", "0.0.0.0")
	cfg.LogLevel = lookup("log_level", "info")
	cfg.CORSOrigins = splitList(lookup("cors_origins", "http://localhost:3000"))

	cfg.DBDriver = strings.ToLower(lookup("db_driver", DriverPostgres))
	cfg.DBHost = lookup("db_host", "localhost")
	cfg.DBPort = lookup("db_port", "5432")
	cfg.DBUser = lookup("db_user", "")
	cfg.DBPassword = lookup("db_password", "")
	cfg.DBName = lookup("db_name", "foodshare")
	cfg.DBSSLMode = lookup("db_ssl_mode", "disable")
	cfg.SQLitePath = lookup("sqlite_path", "foodshare.db")

	cfg.RedisHost = lookup("redis_host", "")
	cfg.RedisPort = lookup("redis_port", "6379")
	cfg.RedisPassword = lookup("redis_password", "")
	cfg.RedisURL = lookup("redis_url", "")
	cfg.RedisDB = 0 // This is a constant, not a secret

	cfg.JWTSecret = lookup("jwt_secret", "")

	cfg.ImageStorage = strings.ToLower(lookup("image_storage", StorageLocal))
	cfg.MediaRoot = lookup("media_root", "media")
	cfg.MediaURL = strings.TrimRight(lookup("media_url", "/media"), "/")
	cfg.S3BucketName = lookup("s3_bucket_name", "foodshare-recipe-images")
	cfg.AWSRegion = lookup("aws_region", "")

	var err error
	if cfg.RecipesPageSize, err = lookupInt("recipes_page_size", 6); err != nil {
		return err
	}
	if cfg.UsersPageSize, err = lookupInt("users_page_size", 10); err != nil {
		return err
	}
	if cfg.CatalogPageSize, err = lookupInt("catalog_page_size", 10); err != nil {
		return err
	}
	if cfg.RecipeCreateLimit, err = lookupInt("recipe_create_limit", 30); err != nil {
		return err
	}

	return nil
}

// lookup reads a Docker secret first and falls back to the upper-cased
// environment variable, then to def.
func lookup(name, def string) string {
	if v := readSecret(name); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(strings.ToUpper(name))); v != "" {
		return v
	}
	return def
}

func lookupInt(name string, def int) (int, error) {
	raw := lookup(name, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", strings.ToUpper(name), err)
	}
	return n, nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PostgresDSN returns the lib/pq connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// RedisEnabled reports whether a Redis endpoint was configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}
