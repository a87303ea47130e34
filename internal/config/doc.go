// Package config loads and validates application configuration from
// environment variables and optional config files using viper.
package config
