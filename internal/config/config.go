package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8000"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Общий секрет диспетчерской панели (прототип, см. DESIGN.md)
	AdminSecret string `env:"ADMIN_SECRET" envDefault:"police123"`

	// Каталог для временных аудиофайлов тревог
	UploadDir string `env:"UPLOAD_DIR" envDefault:"temp_uploads"`

	// Notify Config - доставка уведомлений о тревогах High/Medium
	NotifyURL        string        `env:"NOTIFY_URL"`
	NotifySecret     string        `env:"NOTIFY_SECRET"`
	NotifyTimeout    time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`
	NotifyMaxRetries int           `env:"NOTIFY_MAX_RETRIES" envDefault:"3"`
	NotifyBaseDelay  time.Duration `env:"NOTIFY_BASE_DELAY" envDefault:"1s"`
}

// ClientConfig - конфигурация клиента sosctl (репортер и диспетчерская панель)
type ClientConfig struct {
	// Адрес бэкенда. Фиксированный хост/порт по умолчанию,
	// переопределение - вопрос деплоя, а не контракта ядра.
	ServerURL string `env:"SERVER_URL" envDefault:"http://127.0.0.1:8000"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	// Источник координат для терминалов без датчика геолокации.
	// Если обе переменные заданы, используется фиксированная точка.
	StaticLat string `env:"SOS_LAT"`
	StaticLon string `env:"SOS_LON"`

	// Устройство захвата звука для ffmpeg/arecord
	AudioDevice string `env:"AUDIO_DEVICE" envDefault:"default"`
}

// LoadConfig загружает конфигурацию сервера из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		HTTPPort:         getEnv("HTTP_PORT", "8000"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		AdminSecret:      getEnv("ADMIN_SECRET", "police123"),
		UploadDir:        getEnv("UPLOAD_DIR", "temp_uploads"),
		NotifyURL:        os.Getenv("NOTIFY_URL"),
		NotifySecret:     os.Getenv("NOTIFY_SECRET"),
		NotifyTimeout:    getEnvAsDuration("NOTIFY_TIMEOUT", 5*time.Second),
		NotifyMaxRetries: getEnvAsInt("NOTIFY_MAX_RETRIES", 3),
		NotifyBaseDelay:  getEnvAsDuration("NOTIFY_BASE_DELAY", time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

// LoadClientConfig загружает конфигурацию клиента sosctl
func LoadClientConfig() (*ClientConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &ClientConfig{
		ServerURL:   getEnv("SERVER_URL", "http://127.0.0.1:8000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		StaticLat:   os.Getenv("SOS_LAT"),
		StaticLon:   os.Getenv("SOS_LON"),
		AudioDevice: getEnv("AUDIO_DEVICE", "default"),
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
