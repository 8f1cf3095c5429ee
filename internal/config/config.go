package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	DatabaseURL string
	SkipAuth    bool
	Environment string
	AppId       string

	// MoySklad integration defaults. Credentials stored in the
	// integration_config table take precedence over these.
	MoySkladBaseURL  string
	MoySkladToken    string
	MoySkladUsername string
	MoySkladPassword string

	SyncIntervalMinutes int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost port=5432 user=crm password=crm dbname=crm sslmode=disable"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "crm-backend"),

		MoySkladBaseURL:  getEnv("MOYSKLAD_BASE_URL", "https://api.moysklad.ru/api/remap/1.2"),
		MoySkladToken:    getEnv("MOYSKLAD_TOKEN", ""),
		MoySkladUsername: getEnv("MOYSKLAD_USERNAME", ""),
		MoySkladPassword: getEnv("MOYSKLAD_PASSWORD", ""),

		SyncIntervalMinutes: getEnvInt("SYNC_INTERVAL_MINUTES", 15),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
