package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence over file values and use the NANOIMG_ prefix with underscores
// for nesting (e.g. NANOIMG_SERVER_PORT, NANOIMG_DATABASE_URL).
// Returns a populated Config struct or an error if loading or validation
// fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults. Keys without a usable default still get an empty entry so
	// AutomaticEnv can bind them during Unmarshal; validation rejects the
	// empty value if the variable is missing.
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("mail.base_url", "https://api.mail.tm")
	v.SetDefault("mail.poll_interval", 5*time.Second)
	v.SetDefault("mail.poll_timeout", 300*time.Second)
	v.SetDefault("provider.base_url", "https://nanabanana.ai")
	v.SetDefault("provider.sender_domain", "nanabanana.ai")
	v.SetDefault("provider.max_uses", 5)
	v.SetDefault("blob.dir", "./data/blobs")
	v.SetDefault("blob.base_url", "http://localhost:8080/blobs")

	// Optional config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override everything
	v.SetEnvPrefix("NANOIMG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
