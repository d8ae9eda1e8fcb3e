package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	StripeSecretKey string

	// PlatformFeePercent is the platform commission taken on every paid
	// checkout, as a fraction of the course price (0.30 = 30%).
	PlatformFeePercent  float64
	MinCoursePriceCents int64

	// PublicOrigin is the fallback origin used for Stripe redirect URLs
	// when a request carries no usable Origin header.
	PublicOrigin string
	PlatformURL  string
	PlatformMCC  string

	// Currency is the ISO 4217 code all checkouts charge in.
	Currency string

	AuthJWTSecret string

	RateLimit RateLimitConfig
}

type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CheckoutRate  float64
	CheckoutBurst int
	PayoutRate    float64
	PayoutBurst   int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "learn-it-now"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "learnitnow"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		StripeSecretKey: strings.TrimSpace(getenv("STRIPE_SECRET_KEY", "")),

		PlatformFeePercent:  getenvFloat("PLATFORM_FEE_PERCENT", 0.30),
		MinCoursePriceCents: getenvInt64("MIN_COURSE_PRICE_CENTS", 100),

		PublicOrigin: getenv("PUBLIC_ORIGIN", "http://localhost:5173"),
		PlatformURL:  getenv("PLATFORM_URL", "https://learnitnow.app"),
		PlatformMCC:  getenv("PLATFORM_MCC", "8299"),

		Currency: strings.ToLower(getenv("CHECKOUT_CURRENCY", "eur")),

		AuthJWTSecret: strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),

		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:     strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "")),
			RedisPassword: strings.TrimSpace(getenv("RATE_LIMIT_REDIS_PASSWORD", "")),
			RedisDB:       int(getenvInt64("RATE_LIMIT_REDIS_DB", 0)),
			CheckoutRate:  getenvFloat("RATE_LIMIT_CHECKOUT_RATE", 1),
			CheckoutBurst: int(getenvInt64("RATE_LIMIT_CHECKOUT_BURST", 5)),
			PayoutRate:    getenvFloat("RATE_LIMIT_PAYOUT_RATE", 1),
			PayoutBurst:   int(getenvInt64("RATE_LIMIT_PAYOUT_BURST", 5)),
		},
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
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

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
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
