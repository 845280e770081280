package config

import (
	"fmt"
	"os"
	"strconv"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Config holds everything the process reads from the environment.
type Config struct {
	Port                    string
	DatabaseDSN             string
	GinMode                 string
	MaxPointsPerTransaction int
}

// Load reads the configuration from the environment. godotenv has
// already populated it from .env by the time this runs.
func Load() *Config {
	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		DatabaseDSN:             buildDSN(),
		GinMode:                 os.Getenv("GIN_MODE"),
		MaxPointsPerTransaction: getEnvInt("MAX_POINTS_PER_TRANSACTION", 1000),
	}
	return cfg
}

// InitDB opens the MySQL connection described by the environment.
func InitDB() (*gorm.DB, error) {
	return gorm.Open(mysql.Open(buildDSN()), &gorm.Config{})
}

func buildDSN() string {
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		return dsn
	}
	user := getEnv("DB_USER", "root")
	pass := os.Getenv("DB_PASSWORD")
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "3306")
	name := getEnv("DB_NAME", "table_loyalty")
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, name)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
