package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	JWTSecret string

	// AccessTokenTTL is the access token lifetime (default 15m). Set via ACCESS_TOKEN_TTL_MINUTES.
	AccessTokenTTL time.Duration
	// RefreshTokenTTL is the refresh token lifetime (default 720h). Set via REFRESH_TOKEN_TTL_HOURS.
	RefreshTokenTTL time.Duration

	// Env is "dev" (default) or "prod".
	Env string

	// UploadDir is the uploads root on local disk (default "uploads"). Created at startup if absent.
	UploadDir string
	// PublicBaseURL is the externally reachable base URL that profile photo URLs are built from.
	PublicBaseURL string
	// MaxUploadBytes limits multipart upload bodies (MAX_UPLOAD_MB, default 10 MiB).
	MaxUploadBytes int64

	// RateLimitPerMinute and RateLimitBurst size the request-rate ceiling.
	RateLimitPerMinute int
	RateLimitBurst     int
	// RateLimitStrategy is "global" (one bucket for all callers, default) or "ip" (bucket per client IP).
	RateLimitStrategy string

	// CORSAllowedOrigins lists origins allowed on /api routes. CORS_ALLOWED_ORIGINS is
	// comma-separated; "*" allows any origin (permissive dev mode, the default).
	CORSAllowedOrigins []string

	// SweepSchedule is a cron expression for the orphan photo sweep. Empty (default) disables it.
	SweepSchedule string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	// When empty, the API listens with plain HTTP.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string
}

func Load() Config {
	// Optional .env for local development; deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Port: getEnv("PORT", "8080"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "japanime"),
		DBUser: getEnv("DB_USER", "japanime"),
		DBPass: getEnv("DB_PASS", "japanime"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret: getEnv("JWT_SECRET", "supersecretkey"),
		Env:       getEnv("ENV", "dev"),

		AccessTokenTTL:  time.Duration(getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 15)) * time.Minute,
		RefreshTokenTTL: time.Duration(getEnvInt("REFRESH_TOKEN_TTL_HOURS", 720)) * time.Hour,

		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),
		RateLimitStrategy:  getEnv("RATE_LIMIT_STRATEGY", "global"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		SweepSchedule: getEnv("SWEEP_SCHEDULE", ""),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// DatabaseURL returns the postgres URL form of the DB settings, e.g. for migrations.
func (c Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
