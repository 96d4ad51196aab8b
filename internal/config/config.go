package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For cache TTL

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	RedisAddr  string // Redis server address, empty disables the cache
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	IsProd     bool   // Is production environment

	DefaultAccountID string        // Account used when a request omits accountId
	Strict           bool          // Reject non-positive amounts instead of applying them
	OverdraftLimit   string        // Maximum negative balance, empty means unlimited
	MaxRetries       int           // Optimistic concurrency retry budget
	Grouping         bool          // Render statement numbers with thousands separators
	CacheTTL         time.Duration // Balance and statement cache TTL
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:    getEnv("APP_PORT", "8080"),     // Application port
		DBUser:     os.Getenv("DB_USER"),           // Database user
		DBPassword: os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:     os.Getenv("DB_HOST"),           // Database host
		DBPort:     getEnv("DB_PORT", "3306"),      // Database port
		DBName:     getEnv("DB_NAME", "bank_kata"), // Database name
		RedisAddr:  os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:  os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:    redisDB,                        // Redis database number
		IsProd:     os.Getenv("IS_PROD") == "true", // Is production environment

		DefaultAccountID: getEnv("DEFAULT_ACCOUNT_ID", "default"),
		Strict:           os.Getenv("LEDGER_STRICT") == "true",
		OverdraftLimit:   os.Getenv("LEDGER_OVERDRAFT_LIMIT"),
		MaxRetries:       getInt("LEDGER_MAX_RETRIES", 3),
		Grouping:         os.Getenv("STATEMENT_GROUPING") == "true",
		CacheTTL:         time.Duration(getInt("CACHE_TTL_SECONDS", 60)) * time.Second,
	}
}

// DSN builds the MySQL data source name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
