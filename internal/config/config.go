package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	DBMaxConns    int32
	RunMigrations bool

	JWTSecret           string
	JWTAccessTTLMinutes int
	JWTRefreshTTLDays   int

	AdminUsername string
	AdminPassword string
	AdminClubName string

	CORSAllowedOrigins []string
	MaxJSONBodyBytes   int64
	MaxBodyBytes       int64 // report renders with images and receipts

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginRateLimit         int
	LoginRateWindowSeconds int

	OTelEnabled       bool
	OTelEndpoint      string
	OTelSamplePercent int

	ReportsCatalog             string
	ReportsTemplateDir         string
	ReportRenderTimeoutSeconds int
	TemplateCacheTTLSeconds    int
}

func Load() Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		DBMaxConns:    int32(getEnvInt("DB_MAX_CONNS", 5)),
		RunMigrations: getEnvBool("RUN_MIGRATIONS", true),

		JWTSecret:           getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", 15),
		JWTRefreshTTLDays:   getEnvInt("JWT_REFRESH_TTL_DAYS", 7),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminClubName: getEnv("ADMIN_CLUB_NAME", "District Office"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		MaxJSONBodyBytes:   int64(getEnvInt("MAX_JSON_BODY_BYTES", 1<<20)),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 20<<20)),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		LoginRateLimit:         getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindowSeconds: getEnvInt("LOGIN_RATE_WINDOW_SECONDS", 60),

		OTelEnabled:       getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelSamplePercent: getEnvInt("OTEL_SAMPLE_PERCENT", 100),

		ReportsCatalog:             getEnv("REPORTS_CATALOG", "templates/reports.toml"),
		ReportsTemplateDir:         getEnv("REPORTS_TEMPLATE_DIR", "templates"),
		ReportRenderTimeoutSeconds: getEnvInt("REPORT_RENDER_TIMEOUT_SECONDS", 20),
		TemplateCacheTTLSeconds:    getEnvInt("TEMPLATE_CACHE_TTL_SECONDS", 300),
	}
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWTRefreshTTLDays) * 24 * time.Hour
}

func (c Config) LoginRateWindow() time.Duration {
	return time.Duration(c.LoginRateWindowSeconds) * time.Second
}

func (c Config) ReportRenderTimeout() time.Duration {
	return time.Duration(c.ReportRenderTimeoutSeconds) * time.Second
}

func (c Config) TemplateCacheTTL() time.Duration {
	return time.Duration(c.TemplateCacheTTLSeconds) * time.Second
}

func buildDBURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "leolynk")
	pass := getEnv("DB_PASSWORD", "leolynk")
	name := getEnv("DB_NAME", "leolynk")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("config.invalid_int", "key", key, "value", v, "err", err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("config.invalid_bool", "key", key, "value", v, "err", err)
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
