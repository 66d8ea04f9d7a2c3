package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	OAuth2Google OAuth2GoogleConfig
	Attendance   AttendanceRules
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
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// AttendanceRules holds the attendance policy constants shared by the
// analytics engine, the exception detector and the auto-checkout job.
// They live here so no consumer carries its own copy of the numbers.
type AttendanceRules struct {
	MaxDailyHours        float64       // per-user daily cap, applied after summing
	WorkStartHour        int           // expected check-in hour
	LateThresholdMinutes int           // grace period past WorkStartHour
	PatternLateThreshold int           // late check-ins in a window that trigger a pattern exception
	AutoCheckoutGrace    time.Duration // extra slack before an open session is force-closed
	WeekendDays          map[time.Weekday]bool
}

// IsWeekend reports whether d falls on a configured weekend day.
func (r AttendanceRules) IsWeekend(d time.Time) bool {
	return r.WeekendDays[d.Weekday()]
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
		Name:     getEnv("DB_NAME", "teamtrack"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// OAuth2 Google configuration (optional; password login works without it)
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),
		RedirectURL:  getEnv("REDIRECT_URL", ""),
		Scopes:       getEnvSlice("SCOPES"),
	}

	// Attendance policy
	maxDaily, err := strconv.ParseFloat(getEnv("ATTENDANCE_MAX_DAILY_HOURS", "12"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_MAX_DAILY_HOURS: %w", err)
	}
	workStart, err := strconv.Atoi(getEnv("ATTENDANCE_WORK_START_HOUR", "9"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_WORK_START_HOUR: %w", err)
	}
	lateThreshold, err := strconv.Atoi(getEnv("ATTENDANCE_LATE_THRESHOLD_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_LATE_THRESHOLD_MINUTES: %w", err)
	}
	patternThreshold, err := strconv.Atoi(getEnv("ATTENDANCE_PATTERN_LATE_THRESHOLD", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_PATTERN_LATE_THRESHOLD: %w", err)
	}
	autoCheckoutGrace, err := time.ParseDuration(getEnv("ATTENDANCE_AUTO_CHECKOUT_GRACE", "2h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_AUTO_CHECKOUT_GRACE: %w", err)
	}

	config.Attendance = AttendanceRules{
		MaxDailyHours:        maxDaily,
		WorkStartHour:        workStart,
		LateThresholdMinutes: lateThreshold,
		PatternLateThreshold: patternThreshold,
		AutoCheckoutGrace:    autoCheckoutGrace,
		WeekendDays: map[time.Weekday]bool{
			time.Saturday: true,
			time.Sunday:   true,
		},
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
	if c.Attendance.MaxDailyHours <= 0 {
		return fmt.Errorf("ATTENDANCE_MAX_DAILY_HOURS must be positive")
	}
	if c.Attendance.WorkStartHour < 0 || c.Attendance.WorkStartHour > 23 {
		return fmt.Errorf("ATTENDANCE_WORK_START_HOUR must be between 0 and 23")
	}
	if c.Attendance.LateThresholdMinutes < 0 || c.Attendance.LateThresholdMinutes > 59 {
		return fmt.Errorf("ATTENDANCE_LATE_THRESHOLD_MINUTES must be between 0 and 59")
	}
	if c.Attendance.PatternLateThreshold < 1 {
		return fmt.Errorf("ATTENDANCE_PATTERN_LATE_THRESHOLD must be at least 1")
	}
	// Google OAuth is optional, but once one field is set all of them must be
	if c.OAuth2Google.ClientID != "" || c.OAuth2Google.ClientSecret != "" {
		if c.OAuth2Google.ClientID == "" || c.OAuth2Google.ClientSecret == "" || c.OAuth2Google.RedirectURL == "" {
			return fmt.Errorf("CLIENT_ID, CLIENT_SECRET and REDIRECT_URL must all be set to enable Google login")
		}
		if len(c.OAuth2Google.Scopes) == 0 {
			return fmt.Errorf("SCOPES is required when Google login is enabled")
		}
	}
	return nil
}

// GoogleLoginEnabled reports whether the OAuth2 Google flow is configured.
func (c *Config) GoogleLoginEnabled() bool {
	return c.OAuth2Google.ClientID != ""
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
	return strings.Split(value, ",")
}
