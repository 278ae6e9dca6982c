package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

var (
	Port    string
	DBPath  string
	EnvMode string

	BotToken    string
	BotUsername string
	ChannelID   int64

	PublicBaseURL string
	AdminSecret   string

	ShrinkEarnAPIKey string

	LogFile string
)

const (
	// TokenLifetime is how long an issued download token stays redeemable.
	TokenLifetime = 1 * time.Hour

	// SentFileRetention is how long a delivered file stays in the chat
	// before the cleanup job removes it.
	SentFileRetention = 24 * time.Hour

	PageSize = 12

	ShortenerTimeout = 10 * time.Second
)

func Load() {
	Port = envOrDefault("PORT", "8080")
	DBPath = envOrDefault("DB_PATH", "/data/bollyfun.db")
	EnvMode = envOrDefault("ENV_MODE", "development")

	BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	BotUsername = os.Getenv("TELEGRAM_BOT_USERNAME")
	ChannelID = envInt64("TELEGRAM_CHANNEL_ID", 0)

	PublicBaseURL = envOrDefault("PUBLIC_BASE_URL", "http://localhost:"+Port)

	AdminSecret = os.Getenv("ADMIN_SECRET")
	if AdminSecret == "" {
		log.Println("[CONFIG] ADMIN_SECRET not set, admin endpoints will be disabled")
	}

	ShrinkEarnAPIKey = os.Getenv("SHRINKEARN_API_KEY")
	if ShrinkEarnAPIKey == "" {
		log.Println("[CONFIG] SHRINKEARN_API_KEY not set, download links will not be monetized")
	}

	LogFile = os.Getenv("LOG_FILE")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("[CONFIG] Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
