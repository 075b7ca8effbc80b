package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`
	DBMaxConns  int    `env:"DB_MAX_CONNS" envDefault:"10"`

	// Auth Config
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"6h"`
	AuthRateLimit string        `env:"AUTH_RATE_LIMIT" envDefault:"20-M"`

	// Redis Config
	RedisAddr string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string        `env:"REDIS_PASSWORD"`
	RedisDB   int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// MinIO Config
	Minio MinioConfig

	// Notification Config
	Mailjet       MailjetConfig
	SMSGatewayURL string        `env:"SMS_GATEWAY_URL"`
	SMSGatewayKey string        `env:"SMS_GATEWAY_TOKEN"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`
}

// MinioConfig - параметры подключения к хранилищу вложений
type MinioConfig struct {
	Endpoint      string `env:"MINIO_ENDPOINT"`
	AccessKey     string `env:"MINIO_ACCESS_KEY"`
	SecretKey     string `env:"MINIO_SECRET_KEY"`
	Bucket        string `env:"MINIO_BUCKET" envDefault:"incidents"`
	UseSSL        bool   `env:"MINIO_USE_SSL"`
	PublicBaseURL string `env:"MINIO_PUBLIC_BASE_URL"`
}

// Enabled сообщает, настроено ли хранилище
func (c MinioConfig) Enabled() bool {
	return c.Endpoint != ""
}

// MailjetConfig - параметры отправки писем через Mailjet
type MailjetConfig struct {
	APIKeyPublic  string `env:"MAILJET_API_KEY_PUBLIC"`
	APIKeyPrivate string `env:"MAILJET_API_KEY_PRIVATE"`
	SenderEmail   string `env:"MAILJET_SENDER_EMAIL"`
	SenderName    string `env:"MAILJET_SENDER_NAME" envDefault:"Ajali"`
	BaseURL       string `env:"MAILJET_BASE_URL" envDefault:"https://api.mailjet.com"`
}

// Enabled сообщает, заданы ли ключи Mailjet
func (c MailjetConfig) Enabled() bool {
	return c.APIKeyPublic != "" && c.APIKeyPrivate != ""
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		DBMaxConns:    getEnvAsInt("DB_MAX_CONNS", 10),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      getEnvAsDuration("TOKEN_TTL", 6*time.Hour),
		AuthRateLimit: getEnv("AUTH_RATE_LIMIT", "20-M"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		CacheTTL:      getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		Minio: MinioConfig{
			Endpoint:      os.Getenv("MINIO_ENDPOINT"),
			AccessKey:     os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey:     os.Getenv("MINIO_SECRET_KEY"),
			Bucket:        getEnv("MINIO_BUCKET", "incidents"),
			UseSSL:        getEnvAsBool("MINIO_USE_SSL", false),
			PublicBaseURL: strings.TrimRight(os.Getenv("MINIO_PUBLIC_BASE_URL"), "/"),
		},
		Mailjet: MailjetConfig{
			APIKeyPublic:  os.Getenv("MAILJET_API_KEY_PUBLIC"),
			APIKeyPrivate: os.Getenv("MAILJET_API_KEY_PRIVATE"),
			SenderEmail:   os.Getenv("MAILJET_SENDER_EMAIL"),
			SenderName:    getEnv("MAILJET_SENDER_NAME", "Ajali"),
			BaseURL:       strings.TrimRight(getEnv("MAILJET_BASE_URL", "https://api.mailjet.com"), "/"),
		},
		SMSGatewayURL:     os.Getenv("SMS_GATEWAY_URL"),
		SMSGatewayKey:     os.Getenv("SMS_GATEWAY_TOKEN"),
		NotifyTimeout:     getEnvAsDuration("NOTIFY_TIMEOUT", 5*time.Second),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:    getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries: getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:  getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
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

// getEnvAsBool возвращает значение переменной окружения как bool или значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
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
