package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SnapshotAlways   = "always"
	SnapshotOnChange = "on_change"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Versioning VersioningConfig
	Security   SecurityConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	EventsTopic        string
}

type DatabaseConfig struct {
	Connection string
}

type JWTConfig struct {
	SecretKey          string
	Algorithm          string
	AccessTokenExpires time.Duration
}

type VersioningConfig struct {
	SnapshotPolicy   string // "always" or "on_change"
	MaxWriteAttempts int
}

type SecurityConfig struct {
	LoginRatePerMinute int
	AccountCacheTTL    time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			EventsTopic:        getEnv("EVENTS_TOPIC", "NOTE_VERSION_EVENTS"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		JWT: JWTConfig{
			SecretKey:          getEnv("JWT_SECRET_KEY", "dev-secret-change-in-production"),
			Algorithm:          strings.ToUpper(getEnv("JWT_ALGORITHM", "HS256")),
			AccessTokenExpires: time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
		},
		Versioning: VersioningConfig{
			SnapshotPolicy:   normalizePolicy(getEnv("VERSION_SNAPSHOT_POLICY", SnapshotAlways)),
			MaxWriteAttempts: getEnvAsInt("VERSION_WRITE_MAX_ATTEMPTS", 3),
		},
		Security: SecurityConfig{
			LoginRatePerMinute: getEnvAsInt("LOGIN_RATE_PER_MINUTE", 30),
			AccountCacheTTL:    getEnvAsDuration("ACCOUNT_CACHE_TTL", 5*time.Minute),
		},
	}
}

func normalizePolicy(policy string) string {
	if strings.EqualFold(policy, SnapshotOnChange) {
		return SnapshotOnChange
	}
	return SnapshotAlways
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}
