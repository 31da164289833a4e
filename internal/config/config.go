package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Booking  BookingConfig
	TBank    TBankConfig
	Telegram TelegramConfig
	Calendar CalendarConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        string
	Environment string
	LogLevel    string
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL             string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// JWTConfig holds token signing settings
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// BookingConfig holds booking policy settings
type BookingConfig struct {
	DepositPerPerson         float64
	GuideCommissionPerPerson float64
	CancelCutoff             time.Duration
	RefundCutoff             time.Duration
	ReservationTTL           time.Duration
	GuideReminderWindow      time.Duration
}

// TBankConfig holds payment gateway settings
type TBankConfig struct {
	TerminalKey     string
	Password        string
	APIURL          string
	NotificationURL string
	SuccessURL      string
	FailURL         string
}

// TelegramConfig holds bot notification settings
type TelegramConfig struct {
	BotToken  string
	ChannelID string
}

// CalendarConfig holds Google Calendar settings
type CalendarConfig struct {
	CredentialsFile string
	CalendarID      string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Booking: BookingConfig{
			DepositPerPerson:         getEnvAsFloat("BOOKING_DEPOSIT_PER_PERSON", 1000),
			GuideCommissionPerPerson: getEnvAsFloat("BOOKING_GUIDE_COMMISSION_PER_PERSON", 500),
			CancelCutoff:             getEnvAsDuration("BOOKING_CANCEL_CUTOFF", 3*time.Hour),
			RefundCutoff:             getEnvAsDuration("BOOKING_REFUND_CUTOFF", 72*time.Hour),
			ReservationTTL:           getEnvAsDuration("BOOKING_RESERVATION_TTL", 30*time.Minute),
			GuideReminderWindow:      getEnvAsDuration("BOOKING_GUIDE_REMINDER_WINDOW", 24*time.Hour),
		},
		TBank: TBankConfig{
			TerminalKey:     getEnv("TBANK_TERMINAL_KEY", ""),
			Password:        getEnv("TBANK_PASSWORD", ""),
			APIURL:          getEnv("TBANK_API_URL", "https://securepay.tinkoff.ru/v2"),
			NotificationURL: getEnv("TBANK_NOTIFICATION_URL", ""),
			SuccessURL:      getEnv("TBANK_SUCCESS_URL", ""),
			FailURL:         getEnv("TBANK_FAIL_URL", ""),
		},
		Telegram: TelegramConfig{
			BotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChannelID: getEnv("TELEGRAM_CHANNEL_ID", ""),
		},
		Calendar: CalendarConfig{
			CredentialsFile: getEnv("GOOGLE_CALENDAR_CREDENTIALS_FILE", ""),
			CalendarID:      getEnv("GOOGLE_CALENDAR_ID", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}
	if c.Booking.DepositPerPerson <= 0 {
		return fmt.Errorf("BOOKING_DEPOSIT_PER_PERSON must be positive")
	}
	if c.Booking.CancelCutoff >= c.Booking.RefundCutoff {
		return fmt.Errorf("BOOKING_CANCEL_CUTOFF must be shorter than BOOKING_REFUND_CUTOFF")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// ============================================================================
// Helper functions
// ============================================================================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
