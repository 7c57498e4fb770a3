package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/intramural-draws/utils"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int
	LogLevel     slog.Level

	DispatchSchedule  string
	DispatchBatchSize int
	Location          *time.Location

	CORSAllowedOrigins []string

	// Пустой путь - push-уведомления только логируются.
	FirebaseCredentialsFile string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := strconv.Atoi(utils.GetEnvOrDefault("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(utils.GetEnvOrDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	batchSize, err := strconv.Atoi(utils.GetEnvOrDefault("DISPATCH_BATCH_SIZE", "200"))
	if err != nil || batchSize <= 0 {
		return nil, fmt.Errorf("DISPATCH_BATCH_SIZE must be a positive integer")
	}

	tz := utils.GetEnvOrDefault("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	cfg := &Config{
		DatabaseURL:             dbURL,
		JWTSecretKey:            jwtKey,
		ServerPort:              port,
		LogLevel:                level,
		DispatchSchedule:        utils.GetEnvOrDefault("DISPATCH_SCHEDULE", "@every 60s"),
		DispatchBatchSize:       batchSize,
		Location:                loc,
		CORSAllowedOrigins:      splitList(utils.GetEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		R2AccountID:             os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:           os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:       os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:            os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:         os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
