// Package config содержит конфигурацию сервиса заметок texter.
package config

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	pkgconfig "texter/pkg/config"
	"texter/pkg/logger"
)

// ServiceName - имя сервиса в логах и метаданных.
const ServiceName = "texter"

// Константы ошибок и сообщений для конфигурации.
const (
	LogLoadingConfig      = "Loading texter service configuration"
	LogConfigLoaded       = "Configuration loaded successfully"
	ErrFailedLoadConfig   = "Failed to load configuration"
	ErrInvalidConfig      = "Invalid configuration"
	errMsgUnknownBackend  = "unknown notes storage backend"
	errMsgEmptyJWTSecret  = "jwt secret must not be empty"
	errMsgInvalidPageSize = "notes page size must be positive"
)

// Ошибки валидации конфигурации.
var (
	ErrUnknownBackend  = errors.New(errMsgUnknownBackend)
	ErrEmptyJWTSecret  = errors.New(errMsgEmptyJWTSecret)
	ErrInvalidPageSize = errors.New(errMsgInvalidPageSize)
)

// Config представляет полную конфигурацию сервиса.
type Config struct {
	Postgres   PostgresConfig   `yaml:"postgres"`
	CouchDB    CouchDBConfig    `yaml:"couchdb"`
	Notes      NotesConfig      `yaml:"notes"`
	Redis      RedisConfig      `yaml:"redis"`
	HTTP       HTTPConfig       `yaml:"http"`
	GRPC       GRPCConfig       `yaml:"grpc"`
	Auth       AuthConfig       `yaml:"auth"`
	Mail       MailConfig       `yaml:"mail"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Logging    LoggingConfig    `yaml:"logging"`
	Shutdown   ShutdownConfig   `yaml:"shutdown"`
}

// Load загружает конфигурацию из dotenv-файла и переменных окружения и проверяет ее.
func Load(ctx context.Context) (*Config, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogLoadingConfig)

	cfg, err := pkgconfig.Load[Config](ctx, ServiceName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		log.Error(ctx, ErrInvalidConfig, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrInvalidConfig, err)
	}

	log.Info(ctx, LogConfigLoaded,
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("grpc_address", cfg.GRPC.GetAddress()),
		zap.String("notes_backend", cfg.Notes.Backend),
		zap.Int("notes_page_size", cfg.Notes.PageSize),
		zap.Bool("notes_strict_delete", cfg.Notes.StrictDelete),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.String("redis_address", cfg.Redis.GetAddress()),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Int("shutdown_timeout_seconds", cfg.Shutdown.Timeout))

	return cfg, nil
}

// Validate проверяет согласованность значений.
func (c *Config) Validate() error {
	switch c.Notes.Backend {
	case BackendPostgres, BackendCouchDB:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Notes.Backend)
	}
	if c.Notes.PageSize <= 0 {
		return ErrInvalidPageSize
	}
	if c.Auth.JWTSecret == "" {
		return ErrEmptyJWTSecret
	}
	return nil
}
