package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort     string
	JWTKey      []byte
	JWTExp      time.Duration
	JWTRemember time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BlueprintCacheTTL time.Duration
	SubmitDelay       time.Duration
	GeneratorTimeout  time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		APIPort:     getEnv("API_PORT", "8080"),
		JWTKey:      []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:      time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		JWTRemember: time.Duration(getEnvAsInt("JWT_REMEMBER_EXPIRATION_HOURS", 720)) * time.Hour,
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "user"),
		DBPassword:  getEnv("DB_PASSWORD", "password"),
		DBName:      getEnv("DB_NAME", "overmind_db"),
		DBSslMode:   getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		BlueprintCacheTTL: time.Duration(getEnvAsInt("BLUEPRINT_CACHE_TTL_SECONDS", 300)) * time.Second,
		SubmitDelay:       time.Duration(getEnvAsInt("SUBMIT_DELAY_MS", 300)) * time.Millisecond,
		GeneratorTimeout:  time.Duration(getEnvAsInt("GENERATOR_TIMEOUT_MS", 2000)) * time.Millisecond,
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
