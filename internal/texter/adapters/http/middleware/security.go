package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
)

// SecurityConfig содержит настройки CORS и ограничения частоты запросов.
type SecurityConfig struct {
	CORSOrigins []string
	RateLimit   int
	RateWindow  time.Duration
}

// NewHelmetMiddleware устанавливает защитные заголовки ответа.
func NewHelmetMiddleware() fiber.Handler {
	return helmet.New()
}

// NewCORSMiddleware разрешает GET и POST с учетными данными для заданных origin.
func NewCORSMiddleware(cfg SecurityConfig) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{fiber.MethodGet, fiber.MethodPost},
		AllowCredentials: len(cfg.CORSOrigins) > 0,
	})
}

// NewRateLimitMiddleware ограничивает число запросов с одного IP за окно.
func NewRateLimitMiddleware(cfg SecurityConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.RateLimit,
		Expiration: cfg.RateWindow,
		LimitReached: func(ctx fiber.Ctx) error {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	})
}
