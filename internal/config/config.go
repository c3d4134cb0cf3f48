package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	API      APIConfig      `mapstructure:"api"`
	Google   GoogleConfig   `mapstructure:"google"`
	Email    EmailConfig    `mapstructure:"email"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Report   ReportConfig   `mapstructure:"report"`
	Inbox    InboxConfig    `mapstructure:"inbox"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds reminder store configuration.
// Driver selects between "postgres" and "sqlite".
type DatabaseConfig struct {
	Driver         string `mapstructure:"driver"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MaxConnections int    `mapstructure:"max_connections"`
	SQLitePath     string `mapstructure:"sqlite_path"`
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// APIConfig holds settings for the HTTP API surface
type APIConfig struct {
	// JWTSecret enables HS256 bearer authentication on /api/v1 routes when set.
	JWTSecret string `mapstructure:"jwt_secret"`
	// JWTIssuer is checked against the iss claim when non-empty.
	JWTIssuer string          `mapstructure:"jwt_issuer"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig holds rate limiting configuration for write routes
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// GoogleConfig holds credentials shared by the Gmail and Calendar clients
type GoogleConfig struct {
	// CredentialsJSON is a service account credentials JSON with domain-wide delegation.
	CredentialsJSON string `mapstructure:"credentials_json"`
	// ClientID for OAuth2 token-based auth (alternative to service account)
	ClientID string `mapstructure:"client_id"`
	// ClientSecret for OAuth2 token-based auth
	ClientSecret string `mapstructure:"client_secret"`
	// RefreshToken for OAuth2 token-based auth
	RefreshToken string `mapstructure:"refresh_token"`
	// OwnerAddress is the mailbox and calendar owner impersonated by the service account.
	OwnerAddress string `mapstructure:"owner_address"`
}

// EmailConfig holds email sending configuration
type EmailConfig struct {
	// Provider is the email provider to use: "gmail" or "sendgrid"
	Provider      string         `mapstructure:"provider"`
	SenderName    string         `mapstructure:"sender_name"`
	SenderAddress string         `mapstructure:"sender_address"`
	SendGrid      SendGridConfig `mapstructure:"sendgrid"`
}

// SendGridConfig holds SendGrid API configuration
type SendGridConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// CalendarConfig holds the calendar used for liveness checks
type CalendarConfig struct {
	ID string `mapstructure:"id"`
}

// ReminderConfig holds the reminder scheduling and dispatch settings
type ReminderConfig struct {
	// DraftSubject is the subject of the Gmail draft used as the message template.
	DraftSubject string `mapstructure:"draft_subject"`
	// Timezone is the IANA zone scheduled times are interpreted in ("Local" for the host zone).
	Timezone string `mapstructure:"timezone"`
	// LeadWindow is how long before the meeting a reminder becomes due.
	LeadWindow time.Duration `mapstructure:"lead_window"`
	// TriggerInterval is how often the dispatch trigger fires.
	TriggerInterval time.Duration `mapstructure:"trigger_interval"`
	// RunnerTick is the resolution of the trigger runner.
	RunnerTick time.Duration `mapstructure:"runner_tick"`
	// SentFormat is the Go time layout written as the sent marker.
	SentFormat string `mapstructure:"sent_format"`
}

// Location resolves the configured time zone.
func (c ReminderConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ReportConfig holds the direct report send settings
type ReportConfig struct {
	Recipient      string `mapstructure:"recipient"`
	DefaultSubject string `mapstructure:"default_subject"`
}

// InboxConfig holds the latest-alert inbox lookup settings
type InboxConfig struct {
	Query string `mapstructure:"query"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/meetreminder")

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("MEETREMINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	// Database defaults
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "meetreminder")
	v.SetDefault("database.user", "meetreminder")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.sqlite_path", "meetreminder.db")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// API defaults
	v.SetDefault("api.jwt_secret", "")
	v.SetDefault("api.jwt_issuer", "")
	v.SetDefault("api.rate_limit.enabled", true)
	v.SetDefault("api.rate_limit.limit", 30)
	v.SetDefault("api.rate_limit.window", "1m")

	// Google defaults
	v.SetDefault("google.credentials_json", "")
	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.refresh_token", "")
	v.SetDefault("google.owner_address", "")

	// Email defaults
	v.SetDefault("email.provider", "gmail")
	v.SetDefault("email.sender_name", "")
	v.SetDefault("email.sender_address", "")
	v.SetDefault("email.sendgrid.api_key", "")

	v.SetDefault("calendar.id", "primary")

	// Reminder defaults
	v.SetDefault("reminder.draft_subject", "Today's catch up")
	v.SetDefault("reminder.timezone", "Local")
	v.SetDefault("reminder.lead_window", "6m")
	v.SetDefault("reminder.trigger_interval", "1m")
	v.SetDefault("reminder.runner_tick", "15s")
	v.SetDefault("reminder.sent_format", "2006-01-02 15:04")

	v.SetDefault("report.recipient", "")
	v.SetDefault("report.default_subject", "Daily Huddle Report")

	v.SetDefault("inbox.query", "")
}
