package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"     validate:"required"`
	Provider ProviderConfig `mapstructure:"provider" validate:"required"`
	Blob     BlobConfig     `mapstructure:"blob"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains settings for verifying caller identity. Session
// issuance is handled outside this service; we only verify bearer tokens.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// MailConfig contains settings for the disposable mailbox provider.
type MailConfig struct {
	BaseURL      string        `mapstructure:"base_url"      validate:"required,url"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"required"`
	PollTimeout  time.Duration `mapstructure:"poll_timeout"  validate:"required"`
}

// ProviderConfig contains settings for the image generation provider.
type ProviderConfig struct {
	BaseURL      string `mapstructure:"base_url"      validate:"required,url"`
	SenderDomain string `mapstructure:"sender_domain" validate:"required"`
	MaxUses      int    `mapstructure:"max_uses"      validate:"required,gt=0"`
}

// BlobConfig contains settings for the blob store holding image bytes.
type BlobConfig struct {
	Dir     string `mapstructure:"dir"      validate:"required"`
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}
