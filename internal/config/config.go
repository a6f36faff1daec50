package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port  int
	DBDSN string

	// AI provider
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	// rabbitMQ (optional; empty URL disables the feedback event feed)
	RabbitURL   string
	RabbitQueue string

	LogPath string
}

func Load() Config {
	port := 3000
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			port = n
		}
	}

	// DSN demo:
	// root:secret@tcp(127.0.0.1:3306)/chatbot_db?charset=utf8mb4&parseTime=true&loc=Local
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		host := envOr("DB_HOST", "localhost")
		user := envOr("DB_USER", "root")
		pass := os.Getenv("DB_PASSWORD")
		name := envOr("DB_NAME", "chatbot_db")
		dsn = fmt.Sprintf("%s:%s@tcp(%s:3306)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			user, pass, host, name,
		)
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}

	rabbitQueue := envOr("RABBIT_QUEUE", "feedback_events")

	return Config{
		Port:  port,
		DBDSN: dsn,

		GeminiAPIKey:  apiKey,
		GeminiBaseURL: envOr("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:   envOr("GEMINI_MODEL", "gemini-2.5-flash"),

		RabbitURL:   os.Getenv("RABBIT_URL"),
		RabbitQueue: rabbitQueue,

		LogPath: os.Getenv("LOG_PATH"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
