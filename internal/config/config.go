package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
	Check    CheckConfig    `mapstructure:"check" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains the settings used to authenticate API callers.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gte=1"`
	BCryptCost           int    `mapstructure:"bcrypt_cost" validate:"required,gte=4,lte=31"`
}

// TokenLifetime returns how long issued access tokens stay valid.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// TaskConfig contains settings for the background task runner.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count" validate:"required,gte=1"`
	QueueSize           int `mapstructure:"queue_size" validate:"required,gte=1"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"required,gte=1"`

	// PendingRecheckSeconds is how often pending tasks deferred by a full
	// queue are queued again.
	PendingRecheckSeconds int `mapstructure:"pending_recheck_seconds" validate:"required,gte=1"`
}

// CheckConfig contains settings for package URL checks.
type CheckConfig struct {
	HTTPTimeoutSeconds   int    `mapstructure:"http_timeout_seconds" validate:"required,gte=1,lte=300"`
	UserAgent            string `mapstructure:"user_agent" validate:"required"`
	SweepIntervalMinutes int    `mapstructure:"sweep_interval_minutes" validate:"gte=0"`

	// SkipUnlinkedContributors makes the notification fan-out skip contributors
	// without a user account instead of stopping at the first one.
	SkipUnlinkedContributors bool `mapstructure:"skip_unlinked_contributors"`
}

// HTTPTimeout returns the per-request URL check timeout.
func (c CheckConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// SweepInterval returns the interval of the periodic check sweep; zero disables it.
func (c CheckConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}
