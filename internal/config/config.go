package config

import (
	"crypto/rand"
	"log"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	ServerPort  string
	GRPCPort    string
	Environment string
	LogLevel    string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis configuration
	RedisAddress string
	CacheTTL     time.Duration

	// JWT configuration
	JWTSecret string

	// background workers used for cache fills
	WorkerPoolSize int

	FrontendAddress string
}

// Global application configuration
var AppConfig Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Find .env file
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// Try to find .env in parent directories
		envPath = filepath.Join("..", ".env")
		if _, err := os.Stat(envPath); os.IsNotExist(err) {
			envPath = filepath.Join("..", "..", ".env")
		}
	}

	// Load .env file if it exists
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = generateRandomSecret(32)
		log.Println("Generated random JWT secret")
	}

	AppConfig = Config{
		ServerPort:      getEnv("PORT", "8080"),
		GRPCPort:        getEnv("GRPC_PORT", "9090"),
		Environment:     getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "file_lifecycle"),
		RedisAddress:    getEnv("REDIS_ADDRESS", "localhost:6379"),
		CacheTTL:        getEnvDuration("CACHE_TTL", 10*time.Minute),
		JWTSecret:       jwtSecret,
		WorkerPoolSize:  getEnvInt("WORKER_POOL_SIZE", 4),
		FrontendAddress: getEnv("FRONTEND_ADDRESS", "https://production-frontend.com"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// generateRandomSecret generates a random secret of the specified length
func generateRandomSecret(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	secret := make([]byte, length)
	for i := range secret {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			n = big.NewInt(time.Now().UnixNano() % int64(len(charset)))
		}
		secret[i] = charset[n.Int64()]
	}
	return string(secret)
}
