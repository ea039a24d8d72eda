package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Business BusinessConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port       int
	Env        string
	LogLevel   string
	BcryptCost int
}

// BusinessConfig holds the business-time rules: the fixed timezone offset,
// shift boundaries, overtime anchor and the retention/submission windows.
// Times of day are "HH:MM" strings interpreted in business time.
type BusinessConfig struct {
	TimezoneOffsetHours int
	ShiftStart          string
	ShiftEnd            string
	OvertimeStart       string
	MinOvertimeMinutes  int
	GraceHours          int
	SubmitWindowDays    int
	RetentionDays       int
}

func Load() (*Config, error) {
	// .env is optional; deployments may inject env vars directly.
	_ = godotenv.Load()

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "workpulse"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	bcryptCost, err := strconv.Atoi(getEnv("BCRYPT_COST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	config.App = AppConfig{
		Port:       appPort,
		Env:        getEnv("APP_ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		BcryptCost: bcryptCost,
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "24h"),
	}

	business, err := loadBusiness()
	if err != nil {
		return nil, err
	}
	config.Business = business

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadBusiness() (BusinessConfig, error) {
	b := BusinessConfig{
		ShiftStart:    getEnv("SHIFT_START", "08:30"),
		ShiftEnd:      getEnv("SHIFT_END", "17:30"),
		OvertimeStart: getEnv("OT_START", "17:31"),
	}

	var err error
	if b.TimezoneOffsetHours, err = getEnvInt("TZ_OFFSET_HOURS", 7); err != nil {
		return BusinessConfig{}, err
	}
	if b.MinOvertimeMinutes, err = getEnvInt("MIN_OT_DURATION_MINUTES", 30); err != nil {
		return BusinessConfig{}, err
	}
	if b.GraceHours, err = getEnvInt("GRACE_HOURS", 24); err != nil {
		return BusinessConfig{}, err
	}
	if b.SubmitWindowDays, err = getEnvInt("SUBMIT_WINDOW_DAYS", 7); err != nil {
		return BusinessConfig{}, err
	}
	if b.RetentionDays, err = getEnvInt("RETENTION_DAYS", 15); err != nil {
		return BusinessConfig{}, err
	}

	return b, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Business.GraceHours <= 0 {
		return fmt.Errorf("GRACE_HOURS must be positive")
	}
	if c.Business.RetentionDays <= 0 {
		return fmt.Errorf("RETENTION_DAYS must be positive")
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

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
