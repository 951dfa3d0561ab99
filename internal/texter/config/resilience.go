package config

import (
	"time"

	"texter/internal/texter/resilience"
)

// ResilienceConfig содержит настройки retry и circuit breaker для внешних вызовов.
type ResilienceConfig struct {
	MaxAttempts      int           `yaml:"max_attempts" env:"TEXTER_RESILIENCE_MAX_ATTEMPTS" env-default:"3"`
	InitialBackoff   time.Duration `yaml:"initial_backoff" env:"TEXTER_RESILIENCE_INITIAL_BACKOFF" env-default:"200ms"`
	MaxBackoff       time.Duration `yaml:"max_backoff" env:"TEXTER_RESILIENCE_MAX_BACKOFF" env-default:"2s"`
	ErrorThreshold   int           `yaml:"error_threshold" env:"TEXTER_RESILIENCE_ERROR_THRESHOLD" env-default:"5"`
	OpenTimeout      time.Duration `yaml:"open_timeout" env:"TEXTER_RESILIENCE_OPEN_TIMEOUT" env-default:"30s"`
	SuccessThreshold int           `yaml:"success_threshold" env:"TEXTER_RESILIENCE_SUCCESS_THRESHOLD" env-default:"2"`
}

// Settings преобразует конфигурацию в настройки пакета resilience.
func (c *ResilienceConfig) Settings() resilience.Config {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = c.MaxAttempts
	retry.InitialBackoff = c.InitialBackoff
	retry.MaxBackoff = c.MaxBackoff

	return resilience.Config{
		Retry: retry,
		Breaker: resilience.CircuitBreakerConfig{
			ErrorThreshold:   c.ErrorThreshold,
			Timeout:          c.OpenTimeout,
			SuccessThreshold: c.SuccessThreshold,
		},
	}
}
