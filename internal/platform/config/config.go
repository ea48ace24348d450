package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	DBMaxConns    int32
	DBMinConns    int32
	DBConnTimeout time.Duration

	JWTSecret string
	JWTIssuer string // Empty disables the issuer check

	CORSAllowedOrigins []string
	RateLimit          string // ulule format, e.g. "100-M"
	RedisURL           string // Empty keeps rate limit counters in memory

	OtelEnabled           bool
	OtelCollectorEndpoint string
	OtelSamplingRatio     float64
	OtelServiceName       string
	MetricsEnabled        bool

	MigrationsPath string

	// Chart of accounts
	RetainedEarningsCode string
	CurrentEarningsCode  string
	MaxAccountDepth      int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_MIN_CONNS", 2)
	viper.SetDefault("DB_CONNECT_TIMEOUT", "5s")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("OTEL_ENABLED", false)
	viper.SetDefault("OTEL_COLLECTOR_ENDPOINT", "localhost:4317")
	viper.SetDefault("OTEL_SAMPLING_RATIO", 1.0)
	viper.SetDefault("OTEL_SERVICE_NAME", "ledger-engine")
	viper.SetDefault("METRICS_ENABLED", true)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("RETAINED_EARNINGS_CODE", "3.2.01")
	viper.SetDefault("CURRENT_EARNINGS_CODE", "3.2.02")
	viper.SetDefault("MAX_ACCOUNT_DEPTH", 16)

	// Environment variables override .env values, which override the defaults above.
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.DBMaxConns = viper.GetInt32("DB_MAX_CONNS")
	if cfg.DBMaxConns <= 0 {
		log.Printf("Warning: Invalid value for DB_MAX_CONNS (%d). Defaulting to 10.\n", cfg.DBMaxConns)
		cfg.DBMaxConns = 10
	}
	cfg.DBMinConns = viper.GetInt32("DB_MIN_CONNS")
	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		log.Printf("Warning: Invalid value for DB_MIN_CONNS (%d). Defaulting to 0.\n", cfg.DBMinConns)
		cfg.DBMinConns = 0
	}

	// Load connect timeout (e.g., "5s")
	timeoutStr := viper.GetString("DB_CONNECT_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		timeout = 5 * time.Second
		log.Printf("Warning: Invalid value for DB_CONNECT_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, timeout.String())
	}
	cfg.DBConnTimeout = timeout

	// Load JWT Secret
	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.RedisURL = viper.GetString("REDIS_URL")

	cfg.OtelEnabled = viper.GetBool("OTEL_ENABLED")
	cfg.OtelCollectorEndpoint = viper.GetString("OTEL_COLLECTOR_ENDPOINT")
	cfg.OtelServiceName = viper.GetString("OTEL_SERVICE_NAME")
	cfg.OtelSamplingRatio = viper.GetFloat64("OTEL_SAMPLING_RATIO")
	if cfg.OtelSamplingRatio < 0 || cfg.OtelSamplingRatio > 1 {
		log.Printf("Warning: Invalid value for OTEL_SAMPLING_RATIO (%v). Defaulting to 1.0.\n", cfg.OtelSamplingRatio)
		cfg.OtelSamplingRatio = 1.0
	}
	cfg.MetricsEnabled = viper.GetBool("METRICS_ENABLED")

	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.RetainedEarningsCode = viper.GetString("RETAINED_EARNINGS_CODE")
	cfg.CurrentEarningsCode = viper.GetString("CURRENT_EARNINGS_CODE")
	if cfg.RetainedEarningsCode == cfg.CurrentEarningsCode {
		log.Println("Warning: RETAINED_EARNINGS_CODE equals CURRENT_EARNINGS_CODE. Falling back to 3.2.01 / 3.2.02.")
		cfg.RetainedEarningsCode, cfg.CurrentEarningsCode = "3.2.01", "3.2.02"
	}

	cfg.MaxAccountDepth = viper.GetInt("MAX_ACCOUNT_DEPTH")
	if cfg.MaxAccountDepth <= 0 {
		log.Printf("Warning: Invalid value for MAX_ACCOUNT_DEPTH (%d). Defaulting to 16.\n", cfg.MaxAccountDepth)
		cfg.MaxAccountDepth = 16
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
