package http

import (
	"github.com/gofiber/fiber/v3"

	"texter/internal/texter/adapters/http/middleware"
	"texter/internal/texter/config"
)

// NewApp создает fiber приложение с таймаутами из конфигурации.
func NewApp(cfg *config.HTTPConfig) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      config.ServiceName,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// SecurityFromConfig собирает настройки CORS и лимита запросов.
func SecurityFromConfig(cfg *config.HTTPConfig) middleware.SecurityConfig {
	return middleware.SecurityConfig{
		CORSOrigins: cfg.GetCORSOrigins(),
		RateLimit:   cfg.RateLimit,
		RateWindow:  cfg.RateWindow,
	}
}
