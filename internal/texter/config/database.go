package config

import (
	"fmt"
	"time"
)

// PostgresConfig содержит настройки подключения к PostgreSQL.
type PostgresConfig struct {
	Host           string        `yaml:"host" env:"TEXTER_POSTGRES_HOST" env-default:"localhost"`
	Port           int           `yaml:"port" env:"TEXTER_POSTGRES_PORT" env-default:"5432"`
	User           string        `yaml:"user" env:"TEXTER_POSTGRES_USER" env-default:"postgres"`
	Password       string        `yaml:"password" env:"TEXTER_POSTGRES_PASSWORD" env-default:"postgres"`
	Database       string        `yaml:"database" env:"TEXTER_POSTGRES_DB" env-default:"texter"`
	SSLMode        string        `yaml:"ssl_mode" env:"TEXTER_POSTGRES_SSL_MODE" env-default:"disable"`
	MinConn        int           `yaml:"min_conn" env:"TEXTER_POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn        int           `yaml:"max_conn" env:"TEXTER_POSTGRES_MAX_CONN" env-default:"10"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"TEXTER_POSTGRES_CONNECT_TIMEOUT" env-default:"5s"`
	MigrationsPath string        `yaml:"migrations_path" env:"TEXTER_POSTGRES_MIGRATIONS_PATH" env-default:"migrations/texter"`
}

// GetDSN возвращает строку подключения к PostgreSQL.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// GetConnectionURL возвращает URL-строку подключения для миграций.
func (p *PostgresConfig) GetConnectionURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// GetMigrationsSource возвращает источник миграций для golang-migrate.
func (p *PostgresConfig) GetMigrationsSource() string {
	return "file://" + p.MigrationsPath
}
