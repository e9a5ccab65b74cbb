package config

import (
	"fmt"
	"net"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centralises runtime configuration.
type Config struct {
	HTTPPort        string
	DatabaseURL     string
	AccessSecret    string
	ResetSecret     string
	TokenIssuer     string
	AccessTokenTTL  time.Duration
	ResetTokenTTL   time.Duration
	AllowedOrigins  []string
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	// ExposeResetToken returns the reset token in the forgot-password
	// response body. Development convenience only; never enable in
	// production.
	ExposeResetToken bool
}

// Load reads configuration from environment variables providing sane defaults.
func Load() (Config, error) {
	// Missing .env is fine; the environment may be fully populated already.
	_ = godotenv.Load()

	httpPort := getEnv("HTTP_PORT", "")
	if httpPort == "" {
		httpPort = getEnv("PORT", "8080")
	}

	cfg := Config{
		HTTPPort:         httpPort,
		DatabaseURL:      resolveDatabaseURL(),
		AccessSecret:     getEnv("ACCESS_SECRET", ""),
		ResetSecret:      getEnv("RESET_SECRET", ""),
		TokenIssuer:      getEnv("TOKEN_ISSUER", "storefront"),
		AccessTokenTTL:   getDurationEnv("ACCESS_TOKEN_TTL", time.Hour),
		ResetTokenTTL:    getDurationEnv("RESET_TOKEN_TTL", 15*time.Minute),
		AllowedOrigins:   splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeoutSec:   getIntEnv("HTTP_READ_TIMEOUT", 15),
		WriteTimeoutSec:  getIntEnv("HTTP_WRITE_TIMEOUT", 15),
		IdleTimeoutSec:   getIntEnv("HTTP_IDLE_TIMEOUT", 60),
		ExposeResetToken: getBoolEnv("EXPOSE_RESET_TOKEN", false),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database configuration missing: provide DATABASE_URL or PG* env vars")
	}
	if cfg.AccessSecret == "" {
		return Config{}, fmt.Errorf("ACCESS_SECRET is required")
	}
	if cfg.ResetSecret == "" {
		return Config{}, fmt.Errorf("RESET_SECRET is required")
	}
	if cfg.AccessSecret == cfg.ResetSecret {
		return Config{}, fmt.Errorf("ACCESS_SECRET and RESET_SECRET must differ")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := []string{}
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return []string{"*"}
	}
	return parts
}

func resolveDatabaseURL() string {
	for _, key := range []string{"DATABASE_URL", "POSTGRES_URL", "PGURL"} {
		if url := strings.TrimSpace(os.Getenv(key)); url != "" {
			return normalisePostgresScheme(url)
		}
	}

	host := firstNonEmpty(os.Getenv("PGHOST"), os.Getenv("POSTGRES_HOST"))
	if host == "" {
		return ""
	}
	user := firstNonEmpty(os.Getenv("PGUSER"), os.Getenv("POSTGRES_USER"))
	if user == "" {
		return ""
	}
	password := firstNonEmpty(os.Getenv("PGPASSWORD"), os.Getenv("POSTGRES_PASSWORD"))
	database := firstNonEmpty(os.Getenv("PGDATABASE"), os.Getenv("POSTGRES_DB"), user)
	port := firstNonEmpty(os.Getenv("PGPORT"), os.Getenv("POSTGRES_PORT"), "5432")
	sslMode := firstNonEmpty(os.Getenv("PGSSLMODE"), "require")

	dsn := &neturl.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + database,
	}
	if password != "" {
		dsn.User = neturl.UserPassword(user, password)
	} else {
		dsn.User = neturl.User(user)
	}

	query := dsn.Query()
	if query.Get("sslmode") == "" {
		query.Set("sslmode", sslMode)
	}
	dsn.RawQuery = query.Encode()

	return normalisePostgresScheme(dsn.String())
}

func normalisePostgresScheme(url string) string {
	if strings.HasPrefix(url, "postgresql://") {
		return "postgres://" + strings.TrimPrefix(url, "postgresql://")
	}
	return url
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
