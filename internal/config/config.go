package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBSQLitePath      string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Cache   CacheConfig
	Payment PaymentConfig
	Shell   ShellConfig
	Plans   PlanResourceConfig

	RateLimit RateLimitConfig
}

// CacheConfig selects the store behind the read-through resource cache.
type CacheConfig struct {
	Driver        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// PaymentConfig selects and configures the payment backend adapter.
type PaymentConfig struct {
	Backend          string
	StripeSecretKey  string
	StripeAPIURL     string
	RemoteBaseURL    string
	RemoteToken      string
	RemoteTimeout    time.Duration
	InvoicePageLimit int64
}

// ShellConfig describes the host shell the billing screen runs in.
type ShellConfig struct {
	NativeShell bool
	RegisterURL string
}

// RateLimitConfig throttles card submissions per community.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SubmitRate    float64
	SubmitBurst   int
}

// PlanResourceConfig names the cached pricing resource.
type PlanResourceConfig struct {
	Name   string
	Locale string
	TTL    time.Duration
}

const (
	BackendStripe = "stripe"
	BackendRemote = "remote"

	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:      getenv("APP_SERVICE", "billingconsole"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "billing"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBSQLitePath:      getenv("DATABASE_SQLITE_PATH", "billingconsole.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		Cache: CacheConfig{
			Driver:        normalizeCacheDriver(getenv("CACHE_DRIVER", CacheDriverMemory)),
			RedisAddr:     strings.TrimSpace(getenv("CACHE_REDIS_ADDR", "")),
			RedisPassword: strings.TrimSpace(getenv("CACHE_REDIS_PASSWORD", "")),
			RedisDB:       getenvInt("CACHE_REDIS_DB", 0),
		},
		Payment: PaymentConfig{
			Backend:          normalizeBackend(getenv("PAYMENT_BACKEND", BackendStripe)),
			StripeSecretKey:  strings.TrimSpace(getenv("STRIPE_SECRET_KEY", "")),
			StripeAPIURL:     strings.TrimSpace(getenv("STRIPE_API_URL", "")),
			RemoteBaseURL:    strings.TrimRight(strings.TrimSpace(getenv("PAYMENT_REMOTE_URL", "")), "/"),
			RemoteToken:      strings.TrimSpace(getenv("PAYMENT_REMOTE_TOKEN", "")),
			RemoteTimeout:    time.Duration(getenvInt("PAYMENT_REMOTE_TIMEOUT_SECONDS", 15)) * time.Second,
			InvoicePageLimit: int64(getenvInt("INVOICE_PAGE_LIMIT", 10)),
		},
		Shell: ShellConfig{
			NativeShell: getenvBool("NATIVE_SHELL", false),
			RegisterURL: getenv("REGISTER_URL", "https://app.restvo.com/register"),
		},
		Plans: PlanResourceConfig{
			Name:   getenv("PLAN_RESOURCE_NAME", "Restvo Plans"),
			Locale: getenv("PLAN_RESOURCE_LOCALE", "en-US"),
			TTL:    time.Duration(getenvInt("PLAN_RESOURCE_TTL_SECONDS", 3600)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:     strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", getenv("CACHE_REDIS_ADDR", ""))),
			RedisPassword: strings.TrimSpace(getenv("RATE_LIMIT_REDIS_PASSWORD", getenv("CACHE_REDIS_PASSWORD", ""))),
			RedisDB:       getenvInt("RATE_LIMIT_REDIS_DB", 0),
			SubmitRate:    getenvFloat("RATE_LIMIT_SUBMIT_RATE", 0.2),
			SubmitBurst:   getenvInt("RATE_LIMIT_SUBMIT_BURST", 5),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func normalizeBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case BackendRemote:
		return BackendRemote
	default:
		return BackendStripe
	}
}

func normalizeCacheDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case CacheDriverRedis:
		return CacheDriverRedis
	default:
		return CacheDriverMemory
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
