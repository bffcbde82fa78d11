package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Session  SessionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	SweepLogFilePath   string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	// HMAC secret for refresh JWTs. Access tokens are opaque database rows
	// and do not use this.
	JWTSecret           string
	AccessTokenTTLMin   int
	RefreshTokenTTLDays int
}

type SessionConfig struct {
	InactivityDays    int
	RetentionDays     int
	SweepIntervalMins int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			SweepLogFilePath:   getEnv("SWEEP_LOG_FILE_PATH", "logs/sweep.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JWTSecret:           getEnv("JWT_SECRET", ""),
			AccessTokenTTLMin:   getEnvAsInt("ACCESS_TOKEN_TTL_MINUTES", 60),
			RefreshTokenTTLDays: getEnvAsInt("REFRESH_TOKEN_TTL_DAYS", 7),
		},
		Session: SessionConfig{
			InactivityDays:    getEnvAsInt("SESSION_INACTIVITY_DAYS", 30),
			RetentionDays:     getEnvAsInt("SESSION_RETENTION_DAYS", 90),
			SweepIntervalMins: getEnvAsInt("SWEEP_INTERVAL_MINUTES", 60),
		},
	}
}

// Validate rejects bad lifecycle and token settings at startup, not first use.
func (c *Config) Validate() error {
	if c.Auth.AccessTokenTTLMin <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL_MINUTES must be a positive integer, got %d", c.Auth.AccessTokenTTLMin)
	}
	if c.Auth.RefreshTokenTTLDays <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_TTL_DAYS must be a positive integer, got %d", c.Auth.RefreshTokenTTLDays)
	}
	if c.Session.InactivityDays <= 0 {
		return fmt.Errorf("SESSION_INACTIVITY_DAYS must be a positive integer, got %d", c.Session.InactivityDays)
	}
	if c.Session.RetentionDays <= 0 {
		return fmt.Errorf("SESSION_RETENTION_DAYS must be a positive integer, got %d", c.Session.RetentionDays)
	}
	if c.Session.SweepIntervalMins <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL_MINUTES must be a positive integer, got %d", c.Session.SweepIntervalMins)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	return nil
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.Auth.AccessTokenTTLMin) * time.Minute
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.Auth.RefreshTokenTTLDays) * 24 * time.Hour
}

func (c *Config) InactivityWindow() time.Duration {
	return time.Duration(c.Session.InactivityDays) * 24 * time.Hour
}

func (c *Config) RetentionWindow() time.Duration {
	return time.Duration(c.Session.RetentionDays) * 24 * time.Hour
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Session.SweepIntervalMins) * time.Minute
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
