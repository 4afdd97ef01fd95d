package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Chat    ChatConfig
	Actions ActionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type ChatConfig struct {
	KnowledgeBaseDir string
	MaxResults       int
	StreamDelay      time.Duration
	Hallucinate      bool // fault injection for guardrail testing
}

type ActionConfig struct {
	ValidityWindow time.Duration
	ReplayWindow   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Chat: ChatConfig{
			KnowledgeBaseDir: getEnv("KB_DIR", "kb"),
			MaxResults:       getEnvAsInt("KB_MAX_RESULTS", 3),
			StreamDelay:      getEnvAsMillis("STREAM_DELAY_MS", 30),
			Hallucinate:      getEnvAsBool("COMPOSER_HALLUCINATE", false),
		},
		Actions: ActionConfig{
			ValidityWindow: getEnvAsMillis("ACTION_VALIDITY_WINDOW_MS", 30000),
			ReplayWindow:   getEnvAsMillis("ACTION_REPLAY_WINDOW_MS", 30000),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Millisecond
}
