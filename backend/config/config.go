package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CompletionPolicy decides what happens to a completion timestamp when a
// progress row that is already completed receives another completed=true write.
type CompletionPolicy string

const (
	// CompletionFirst keeps the time of the first completion.
	CompletionFirst CompletionPolicy = "first"
	// CompletionLatest re-stamps the time on every write carrying completed=true.
	CompletionLatest CompletionPolicy = "latest"
)

func (p CompletionPolicy) Valid() bool {
	return p == CompletionFirst || p == CompletionLatest
}

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// DBMaxOpenConns is ignored for sqlite, which always runs on one connection.
	DBMaxOpenConns int

	JWTSecret string
	TokenTTL  time.Duration

	ServerPort  string
	CORSOrigins string
	LogMode     string

	CompletionPolicy CompletionPolicy
	SeedFile         string

	// DotEnvLoaded reports whether a .env file was found; callers log it once
	// the logger exists.
	DotEnvLoaded bool
}

func LoadConfig() (*Config, error) {
	loaded := godotenv.Load() == nil

	ttl, err := getDuration("TOKEN_TTL", 72*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", "postgres"),
		DBName:           getEnv("DB_NAME", "training_portal"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		SQLitePath:       getEnv("SQLITE_PATH", "./data/training.db"),
		DBMaxOpenConns:   getInt("DB_MAX_OPEN_CONNS", 10),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		TokenTTL:         ttl,
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		CORSOrigins:      getEnv("CORS_ORIGINS", "*"),
		LogMode:          getEnv("LOG_MODE", "dev"),
		CompletionPolicy: CompletionPolicy(strings.ToLower(getEnv("COMPLETION_POLICY", string(CompletionFirst)))),
		SeedFile:         getEnv("SEED_FILE", ""),
		DotEnvLoaded:     loaded,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	if !c.CompletionPolicy.Valid() {
		return fmt.Errorf("config: unsupported COMPLETION_POLICY %q", c.CompletionPolicy)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("config: JWT_SECRET must not be empty")
	}
	return nil
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return i
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return d, nil
}
