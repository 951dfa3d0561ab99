package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"texter/pkg/logger"
)

// HeaderRequestID - заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-ID"

// NewLoggerMiddleware создает промежуточное ПО, которое присваивает запросу request_id
// и логирует начало и завершение обработки.
func NewLoggerMiddleware(base *logger.Logger) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		start := time.Now()

		requestID := ctx.Get(HeaderRequestID)
		if !logger.ValidRequestID(requestID) {
			requestID = logger.GenerateRequestID()
		}
		ctx.Set(HeaderRequestID, requestID)

		log := base.With(
			zap.String("path", ctx.Path()),
			zap.String("http_method", ctx.Method()),
			zap.String("ip", ctx.IP()),
		)

		requestCtx := logger.NewRequestIDContext(logger.NewContext(ctx.Context(), log), requestID)
		ctx.Locals(LocalsRequestContext, requestCtx)

		log.Debug(requestCtx, "request started")

		err := ctx.Next()

		fields := []zap.Field{
			zap.Int("status", ctx.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}

		if err != nil {
			log.Error(requestCtx, "request failed", append(fields, zap.Error(err))...)
			return err
		}

		log.Info(requestCtx, "request completed", fields...)
		return nil
	}
}
