package config

import (
	"os"
	"strconv"
	"time"
)

// Структура для хранения конфигурации
type Config struct {
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string
	// Telegram bots
	DriverBotToken    string
	PassengerBotToken string
	TelegramAPIURL    string
	// Geocoding
	GeocoderURL string
	// HTTP API
	HTTPPort  string
	JWTSecret string
	// Conversation sessions
	DefaultLanguage    string
	SessionIdleTimeout time.Duration
}

// Загрузка конфигурации из переменных окружения
func LoadConfig() Config {
	return Config{
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "taxi_user"),
		DBPassword:       getEnv("DB_PASSWORD", "taxi_pass"),
		DBName:           getEnv("DB_NAME", "taxi_db"),
		RabbitMQHost:     getEnv("RABBITMQ_HOST", "localhost"),
		RabbitMQPort:     getEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),

		DriverBotToken:    getEnv("DRIVER_BOT_TOKEN", ""),
		PassengerBotToken: getEnv("PASSENGER_BOT_TOKEN", ""),
		TelegramAPIURL:    getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),

		GeocoderURL: getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),

		HTTPPort:  getEnv("HTTP_PORT", "3000"),
		JWTSecret: getEnv("JWT_SECRET", "your-super-secret-jwt-key-minimum-32-chars-here"),

		DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "kaz"),
		SessionIdleTimeout: getEnvAsDuration("SESSION_IDLE_TIMEOUT_MINUTES", 30*time.Minute),
	}
}

// Получение значения из переменной окружения с дефолтным значением
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
