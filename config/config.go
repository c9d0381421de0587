package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backends de almacenamiento soportados
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config agrupa la configuración de la aplicación
type Config struct {
	Port            string
	Environment     string
	LogLevel        string
	DatabaseURL     string
	Storage         string
	AutoMigrate     bool
	DBMaxConns      int32
	DBMinConns      int32
	JWTSecret       string
	RateLimitMax    int
	RateLimitWindow time.Duration
	RequestTimeout  time.Duration
	BodyLimit       int
	CORSOrigins     string
}

// Load carga el archivo .env (si existe) y construye la configuración desde el entorno
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Advertencia: No se pudo cargar el archivo .env")
	}
	return FromEnv()
}

// FromEnv construye la configuración solo a partir de variables de entorno
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "3000"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Storage:         strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		AutoMigrate:     getEnvAsBool("AUTO_MIGRATE", false),
		DBMaxConns:      int32(getEnvAsInt("DB_MAX_CONNS", 30)),
		DBMinConns:      int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		BodyLimit:       getEnvAsInt("BODY_LIMIT", 1024*1024),
		CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
	}

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("config: DATABASE_URL is required for postgres storage")
		}
	case StorageMemory:
	default:
		return nil, errors.New("config: STORAGE must be postgres or memory")
	}
	return cfg, nil
}

// AuthEnabled indica si las rutas de escritura exigen JWT
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
