package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	Environment string
	TablePrefix string

	// Session tokens
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	// External identity provider
	JWKSURL string

	DatabaseURL string

	// Session liveness store; empty address selects the in-memory store
	// (single-instance dev mode only)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Object storage (MinIO or any S3-compatible endpoint)
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string

	SessionWindow time.Duration
	CORSOrigins   string
	LogDir        string
}

// Load reads configuration from the environment, then overlays an
// optional yaml file named by CONFIG_FILE. Environment variables win over
// file values so deploys can override a checked-in base file.
func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "dev")

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   env,
		TablePrefix:   getTablePrefix(env),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", "shelfgate"),
		JWTTTL:        getDuration("JWT_TTL", 12*time.Hour),
		JWKSURL:       getEnv("JWKS_URL", ""),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),
		S3Endpoint:    getEnv("S3_ENDPOINT", "http://localhost:9000"),
		S3Region:      getEnv("S3_REGION", "us-east-1"),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:   getEnv("S3_SECRET_KEY", ""),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		SessionWindow: getDuration("SESSION_WINDOW", 120*time.Second),
		CORSOrigins:   getEnv("CORS_ORIGINS", "http://localhost:3000"),
		LogDir:        getEnv("LOG_DIR", ""),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// fileConfig is the yaml shape of the optional config file. Only values
// absent from the environment are taken.
type fileConfig struct {
	Port          string `yaml:"port"`
	JWKSURL       string `yaml:"jwks_url"`
	DatabaseURL   string `yaml:"database_url"`
	RedisAddr     string `yaml:"redis_addr"`
	S3Endpoint    string `yaml:"s3_endpoint"`
	S3Region      string `yaml:"s3_region"`
	S3Bucket      string `yaml:"s3_bucket"`
	CORSOrigins   string `yaml:"cors_origins"`
	SessionWindow string `yaml:"session_window"`
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setIfUnset := func(envKey string, target *string, value string) {
		if value != "" && os.Getenv(envKey) == "" {
			*target = value
		}
	}
	setIfUnset("PORT", &cfg.Port, fc.Port)
	setIfUnset("JWKS_URL", &cfg.JWKSURL, fc.JWKSURL)
	setIfUnset("DATABASE_URL", &cfg.DatabaseURL, fc.DatabaseURL)
	setIfUnset("REDIS_ADDR", &cfg.RedisAddr, fc.RedisAddr)
	setIfUnset("S3_ENDPOINT", &cfg.S3Endpoint, fc.S3Endpoint)
	setIfUnset("S3_REGION", &cfg.S3Region, fc.S3Region)
	setIfUnset("S3_BUCKET", &cfg.S3Bucket, fc.S3Bucket)
	setIfUnset("CORS_ORIGINS", &cfg.CORSOrigins, fc.CORSOrigins)

	if fc.SessionWindow != "" && os.Getenv("SESSION_WINDOW") == "" {
		d, err := time.ParseDuration(fc.SessionWindow)
		if err != nil {
			return fmt.Errorf("parse session_window in %s: %w", path, err)
		}
		cfg.SessionWindow = d
	}

	return nil
}

// getTablePrefix returns the table prefix based on environment.
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
