package config

import (
	"fmt"
	"strings"
	"time"
)

// HTTPConfig представляет конфигурацию HTTP сервера.
type HTTPConfig struct {
	Host         string        `yaml:"host" env:"TEXTER_HTTP_HOST" env-default:"0.0.0.0"`
	Port         int           `yaml:"port" env:"TEXTER_HTTP_PORT" env-default:"5000"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"TEXTER_HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"TEXTER_HTTP_WRITE_TIMEOUT" env-default:"10s"`
	CORSOrigins  string        `yaml:"cors_origins" env:"TEXTER_HTTP_CORS_ORIGINS" env-default:"http://localhost:3000"`
	RateLimit    int           `yaml:"rate_limit" env:"TEXTER_HTTP_RATE_LIMIT" env-default:"1000"`
	RateWindow   time.Duration `yaml:"rate_window" env:"TEXTER_HTTP_RATE_WINDOW" env-default:"15m"`
}

// GetAddress возвращает адрес HTTP сервера.
func (c *HTTPConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetCORSOrigins возвращает список разрешенных origin.
func (c *HTTPConfig) GetCORSOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
