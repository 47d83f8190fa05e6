package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	Environment     string
	FirebaseProject string

	// Credentials for Firebase/Firestore. JSON wins over a path; a Secret
	// Manager secret id wins over both.
	FirebaseCredentialsJSON   string
	FirebaseCredentialsPath   string
	FirebaseCredentialsSecret string

	// StoreDriver selects the persistence substrate: "firestore" or "memory".
	StoreDriver   string
	TxMaxAttempts int

	StorageBucket  string
	SendGridAPIKey string
	MailFrom       string

	MaxSavedLists int
	MaxAddresses  int
	CacheTTL      time.Duration

	GuestCookieName string
	GuestCookieTTL  time.Duration

	ShippingFlatFee       float64
	FreeShippingThreshold float64
	Currency              string

	RateLimitPerMinute int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),

		FirebaseCredentialsJSON:   getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseCredentialsPath:   getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		FirebaseCredentialsSecret: getEnv("FIREBASE_CREDENTIALS_SECRET", ""),

		StoreDriver:   getEnv("STORE_DRIVER", "firestore"),
		TxMaxAttempts: getEnvAsInt("TX_MAX_ATTEMPTS", 5),

		StorageBucket:  getEnv("STORAGE_BUCKET", ""),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		MailFrom:       getEnv("MAIL_FROM", "orders@storefront.local"),

		MaxSavedLists: getEnvAsInt("MAX_SAVED_LISTS", 20),
		MaxAddresses:  getEnvAsInt("MAX_ADDRESSES", 10),
		CacheTTL:      getEnvAsDuration("CACHE_TTL", 30*time.Second),

		GuestCookieName: getEnv("GUEST_COOKIE_NAME", "guest_id"),
		GuestCookieTTL:  getEnvAsDuration("GUEST_COOKIE_TTL", 30*24*time.Hour),

		ShippingFlatFee:       getEnvAsFloat("SHIPPING_FLAT_FEE", 5.00),
		FreeShippingThreshold: getEnvAsFloat("FREE_SHIPPING_THRESHOLD", 50.00),
		Currency:              getEnv("CURRENCY", "USD"),

		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		floatValue, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
