package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis (optional; throttle falls back to in-memory when unset)
	RedisURL string

	// JWT
	JWTSecret string

	// Groq completion provider
	GroqAPIKey         string
	GroqBaseURL        string
	GroqModel          string
	GroqTemperature    float64
	GroqMaxTokens      int
	GroqTopP           float64
	GroqTimeoutSeconds int
	GroqStreaming      bool

	// Chat turn limits
	ChatRateLimit         int
	ChatRateWindowSeconds int
	ChatContextTurns      int
	ChatHistoryLimit      int

	// Moderation
	ModerationTerms []string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		Env:         getEnvOrDefault("ENV", "development"),
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		RedisURL:    getEnvOrDefault("REDIS_URL", ""),
		JWTSecret:   mustGetEnv("JWT_SECRET"),

		GroqAPIKey:         mustGetEnv("GROQ_API_KEY"),
		GroqBaseURL:        getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:          getEnvOrDefault("GROQ_MODEL", "llama-3.2-3b-preview"),
		GroqTemperature:    getEnvAsFloatOrDefault("GROQ_TEMPERATURE", 0.7),
		GroqMaxTokens:      getEnvAsIntOrDefault("GROQ_MAX_TOKENS", 1000),
		GroqTopP:           getEnvAsFloatOrDefault("GROQ_TOP_P", 1.0),
		GroqTimeoutSeconds: getEnvAsIntOrDefault("GROQ_TIMEOUT_SECONDS", 30),
		GroqStreaming:      getEnvAsBoolOrDefault("GROQ_STREAMING", true),

		ChatRateLimit:         getEnvAsIntOrDefault("CHAT_RATE_LIMIT", 10),
		ChatRateWindowSeconds: getEnvAsIntOrDefault("CHAT_RATE_WINDOW_SECONDS", 60),
		ChatContextTurns:      getEnvAsIntOrDefault("CHAT_CONTEXT_TURNS", 5),
		ChatHistoryLimit:      getEnvAsIntOrDefault("CHAT_HISTORY_LIMIT", 50),

		ModerationTerms: getEnvAsListOrDefault("MODERATION_TERMS", []string{"spam", "abuse", "hate"}),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvAsListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var items []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return defaultVal
	}
	return items
}
