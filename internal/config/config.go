package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	LogMode     string
	ServerPort  string
	PostgresDSN string
	RedisURL    string
	JWTSecret   string

	UploadDir         string
	WorkerConcurrency int
	ImportChunkSize   int

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	TaskResultTTL   time.Duration
}

func checkEnv(envVars []string) error {
	var missingVars []string

	for _, envVar := range envVars {
		if value, exists := os.LookupEnv(envVar); !exists || value == "" {
			missingVars = append(missingVars, envVar)
		}
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("error: this env vars are missing: %v", missingVars)
	}

	return nil
}

func validateEnv() error {
	err := checkEnv([]string{
		"LOG_MODE",
		"SERVER_PORT",
		"POSTGRES_DSN",
		"REDIS_URL",
		"JWT_SECRET",
	})
	if err != nil {
		return err
	}

	return nil
}

func envOrDefault(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("env var %s must be an integer: %w", key, err)
	}

	return parsed, nil
}

func LoadConfig(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("load configuration file: %w", err)
		}
	}

	if err := validateEnv(); err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	workerConcurrency, err := envIntOrDefault("WORKER_CONCURRENCY", 4)
	if err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	chunkSize, err := envIntOrDefault("IMPORT_CHUNK_SIZE", 50)
	if err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	accessTTL, err := envIntOrDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	if err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	refreshTTL, err := envIntOrDefault("REFRESH_TOKEN_EXPIRE_MINUTES", 7*24*60)
	if err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	resultTTL, err := envIntOrDefault("TASK_RESULT_EXPIRE_MINUTES", 60)
	if err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	return &Config{
		LogMode:           os.Getenv("LOG_MODE"),
		ServerPort:        os.Getenv("SERVER_PORT"),
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		RedisURL:          os.Getenv("REDIS_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		UploadDir:         envOrDefault("UPLOAD_DIR", "./uploads"),
		WorkerConcurrency: workerConcurrency,
		ImportChunkSize:   chunkSize,
		AccessTokenTTL:    time.Duration(accessTTL) * time.Minute,
		RefreshTokenTTL:   time.Duration(refreshTTL) * time.Minute,
		TaskResultTTL:     time.Duration(resultTTL) * time.Minute,
	}, nil
}
