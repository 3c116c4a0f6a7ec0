package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"cashcards/internal/auth"
	"cashcards/internal/infrastructure/database"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	HTTPPort int

	StorageBackend string
	SQLitePath     string

	DBConfig struct {
		DBHost     string `env:"CASHCARDS_DB_HOST"`
		DBPort     int    `env:"CASHCARDS_DB_PORT"`
		DBUser     string `env:"CASHCARDS_DB_USER"`
		DBPassword string `env:"CASHCARDS_DB_PASSWORD"`
		DBName     string `env:"CASHCARDS_DB_NAME"`
		DBSSLMode  string `env:"CASHCARDS_DB_SSLMODE"`
	}
	DBConnectRetries    int
	DBConnectRetryDelay time.Duration

	LogLevel zapcore.Level

	Users     []auth.UserSpec
	OwnerRole string

	CORSAllowedOrigins []string

	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPRequestTimeout time.Duration
	ShutdownTimeout    time.Duration
}

// LoadConfig reads the environment, after merging in a .env file from the
// working directory when one exists. Variables already set win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}

	port, err := strconv.Atoi(getEnvOrDefault("HTTP_PORT", "8080"))
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid HTTP_PORT %q", os.Getenv("HTTP_PORT"))
	}
	cfg.HTTPPort = port

	cfg.StorageBackend = strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", BackendMemory))
	switch cfg.StorageBackend {
	case BackendMemory, BackendSQLite, BackendPostgres:
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: want %s, %s or %s",
			cfg.StorageBackend, BackendMemory, BackendSQLite, BackendPostgres)
	}
	cfg.SQLitePath = getEnvOrDefault("SQLITE_PATH", "cashcards.db")

	cfg.DBConfig.DBHost = getEnvOrDefault("CASHCARDS_DB_HOST", "localhost")
	cfg.DBConfig.DBPort = getEnvAsInt("CASHCARDS_DB_PORT", 5432)
	cfg.DBConfig.DBUser = getEnvOrDefault("CASHCARDS_DB_USER", "postgres")
	cfg.DBConfig.DBPassword = getEnvOrDefault("CASHCARDS_DB_PASSWORD", "postgres")
	cfg.DBConfig.DBName = getEnvOrDefault("CASHCARDS_DB_NAME", "cashcards_db")
	cfg.DBConfig.DBSSLMode = getEnvOrDefault("CASHCARDS_DB_SSLMODE", "disable")
	cfg.DBConnectRetries = getEnvAsInt("DB_CONNECT_RETRIES", 10)
	cfg.DBConnectRetryDelay = getEnvAsDuration("DB_CONNECT_RETRY_DELAY", 5*time.Second)

	level, err := zapcore.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if raw, ok := os.LookupEnv("CASHCARD_USERS"); ok && strings.TrimSpace(raw) != "" {
		users, err := auth.ParseUsers(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CASHCARD_USERS: %w", err)
		}
		cfg.Users = users
	} else {
		cfg.Users = auth.DefaultUsers()
	}
	cfg.OwnerRole = getEnvOrDefault("CASHCARD_OWNER_ROLE", auth.OwnerRole)

	cfg.CORSAllowedOrigins = splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))

	cfg.HTTPReadTimeout = getEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTPWriteTimeout = getEnvAsDuration("HTTP_WRITE_TIMEOUT", 10*time.Second)
	cfg.HTTPRequestTimeout = getEnvAsDuration("HTTP_REQUEST_TIMEOUT", 5*time.Second)
	cfg.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second)

	return cfg, nil
}

func (c *Config) Database() database.DBConfig {
	return database.DBConfig{
		Host:     c.DBConfig.DBHost,
		Port:     c.DBConfig.DBPort,
		User:     c.DBConfig.DBUser,
		Password: c.DBConfig.DBPassword,
		DBName:   c.DBConfig.DBName,
		SSLMode:  c.DBConfig.DBSSLMode,
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnvOrDefault(key, strconv.Itoa(defaultValue))
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnvOrDefault(key, defaultValue.String())
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
