// Package config loads and validates application configuration from
// environment variables (PKGWATCH_ prefix) and an optional config.yaml file,
// using viper for loading and go-playground/validator for validation.
package config
