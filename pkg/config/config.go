package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	JWTSecret               string

	// FeedWindow bounds how far back the home feed reaches. The API
	// documents it as "last 24h" but it is a tunable, not a day boundary.
	FeedWindow       time.Duration
	FeedDefaultLimit int
	FeedMaxLimit     int
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		FeedWindow:              time.Duration(getEnvInt("FEED_WINDOW_HOURS", 24)) * time.Hour,
		FeedDefaultLimit:        getEnvInt("FEED_DEFAULT_LIMIT", 20),
		FeedMaxLimit:            getEnvInt("FEED_MAX_LIMIT", 100),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
