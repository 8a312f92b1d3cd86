package models

import "time"

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig
	Processor ProcessorConfig
	Webhook   WebhookConfig
	Server    ServerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// ProcessorConfig holds settlement processor settings
type ProcessorConfig struct {
	SweepInterval time.Duration
	SuccessRate   float64
}

// WebhookConfig holds outbound notification settings
type WebhookConfig struct {
	RequestTimeout time.Duration
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}
