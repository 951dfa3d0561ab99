package config

import (
	"fmt"
	"time"

	"texter/pkg/db/redis"
)

// RedisConfig представляет конфигурацию Redis для хранилища сессий.
type RedisConfig struct {
	Host      string        `yaml:"host" env:"TEXTER_REDIS_HOST" env-default:"localhost"`
	Port      int           `yaml:"port" env:"TEXTER_REDIS_PORT" env-default:"6379"`
	Password  string        `yaml:"password" env:"TEXTER_REDIS_PASSWORD" env-default:""`
	DB        int           `yaml:"db" env:"TEXTER_REDIS_DB" env-default:"0"`
	PoolSize  int           `yaml:"pool_size" env:"TEXTER_REDIS_POOL_SIZE" env-default:"10"`
	Timeout   time.Duration `yaml:"timeout" env:"TEXTER_REDIS_TIMEOUT" env-default:"5s"`
	KeyPrefix string        `yaml:"key_prefix" env:"TEXTER_REDIS_KEY_PREFIX" env-default:"texter:session:"`
}

// GetAddress возвращает адрес Redis.
func (c *RedisConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ClientConfig преобразует настройки в конфигурацию общего клиента.
func (c *RedisConfig) ClientConfig() *redis.Config {
	return &redis.Config{
		Host:     c.Host,
		Port:     c.Port,
		Password: c.Password,
		DB:       c.DB,
		PoolSize: c.PoolSize,
		Timeout:  c.Timeout,
	}
}
