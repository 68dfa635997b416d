package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/location"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

type Config struct {
	Database   DatabaseConfig
	Mongo      MongoConfig
	Store      StoreConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	SMTP       SMTPConfig
	ResetToken ResetTokenConfig
	Admin      AdminConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	// AutoMigrate applies the embedded schema on startup.
	AutoMigrate bool
}

type MongoConfig struct {
	URI  string
	Name string
}

// StoreConfig selects the attendance record store. Employees and admins always live in PostgreSQL.
type StoreConfig struct {
	Driver string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	FrontendURL    string
	AllowedOrigins []string
}

type AttendanceConfig struct {
	Timezone string
	Location *time.Location
	Zones    []location.Zone
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// AdminConfig seeds the first admin account. Both fields empty disables seeding.
type AdminConfig struct {
	Email    string
	Password string
}

type ResetTokenConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "workforce_portal"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	autoMigrate, err := strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}
	config.Database.AutoMigrate = autoMigrate

	config.Mongo = MongoConfig{
		URI:  getEnv("MONGODB_URI", ""),
		Name: getEnv("MONGODB_NAME", "workforce_portal"),
	}

	config.Store = StoreConfig{
		Driver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		FrontendURL:    strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "12h"),
	}

	// Attendance configuration
	tzName := getEnv("ATTENDANCE_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_TIMEZONE: %w", err)
	}

	zones, err := LoadZones(getEnv("ZONES_FILE", ""), getEnv("ATTENDANCE_ZONES", ""))
	if err != nil {
		return nil, err
	}

	config.Attendance = AttendanceConfig{
		Timezone: tzName,
		Location: loc,
		Zones:    zones,
	}

	// SMTP configuration
	mailPort, err := strconv.Atoi(getEnv("MAIL_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAIL_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("MAIL_HOST", ""),
		Port:     mailPort,
		Username: getEnv("MAIL_USER", ""),
		Password: getEnv("MAIL_PASS", ""),
		From:     getEnv("MAIL_FROM", getEnv("MAIL_USER", "")),
		FromName: getEnv("MAIL_FROM_NAME", "Workforce Portal"),
	}

	// Reset token configuration
	resetTTL, err := time.ParseDuration(getEnv("RESET_TOKEN_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RESET_TOKEN_TTL: %w", err)
	}
	sweepInterval, err := time.ParseDuration(getEnv("RESET_TOKEN_SWEEP_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RESET_TOKEN_SWEEP_INTERVAL: %w", err)
	}

	config.ResetToken = ResetTokenConfig{
		TTL:           resetTTL,
		SweepInterval: sweepInterval,
	}

	config.Admin = AdminConfig{
		Email:    getEnv("ADMIN_EMAIL", ""),
		Password: getEnv("ADMIN_PASSWORD", ""),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	switch c.Store.Driver {
	case StoreDriverPostgres:
	case StoreDriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_DRIVER=%s", StoreDriverMongo)
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMongo, c.Store.Driver)
	}

	if len(c.Attendance.Zones) == 0 {
		return fmt.Errorf("at least one attendance zone is required (ZONES_FILE or ATTENDANCE_ZONES)")
	}
	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if c.ResetToken.TTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be positive")
	}
	if c.ResetToken.SweepInterval <= 0 {
		return fmt.Errorf("RESET_TOKEN_SWEEP_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
