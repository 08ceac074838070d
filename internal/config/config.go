package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	CheckoutPolicyStrictToday = "strict_today"
	CheckoutPolicyAnyOpen     = "any_open"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr   string
	KafkaBroker string

	JWTSecret string
	// Shared secret expected in X-Scheduler-Token on the job endpoints.
	SchedulerToken string

	SiteTimezone   string
	CheckoutPolicy string

	ReaperInterval time.Duration
	ExpiryInterval time.Duration

	ScanRatePerSecond float64
	ScanRateBurst     int
}

func Load() *Config {
	return &Config{
		Port:              getenv("PORT", "3000"),
		DBHost:            getenv("DB_HOST", "localhost"),
		DBPort:            getenv("DB_PORT", "5432"),
		DBUser:            getenv("DB_USER", "postgres"),
		DBPassword:        getenv("DB_PASSWORD", "postgres"),
		DBName:            getenv("DB_NAME", "go_patrol"),
		DBSSLMode:         getenv("DB_SSLMODE", "disable"),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker:       os.Getenv("KAFKA_BROKER"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		SchedulerToken:    os.Getenv("SCHEDULER_TOKEN"),
		SiteTimezone:      getenv("SITE_TIMEZONE", "UTC"),
		CheckoutPolicy:    getenv("CHECKOUT_POLICY", CheckoutPolicyStrictToday),
		ReaperInterval:    getduration("REAPER_INTERVAL", time.Hour),
		ExpiryInterval:    getduration("EXPIRY_INTERVAL", 24*time.Hour),
		ScanRatePerSecond: getfloat("SCAN_RATE_PER_SECOND", 1),
		ScanRateBurst:     getint("SCAN_RATE_BURST", 3),
	}
}

// Location resolves SiteTimezone. An unknown name is an error; the business day of
// every scan and expiry window hangs on it.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.SiteTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SITE_TIMEZONE %q: %w", c.SiteTimezone, err)
	}
	return loc, nil
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getduration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getint(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getfloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}
