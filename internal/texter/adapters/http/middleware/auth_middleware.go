package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"texter/internal/texter/domain/services"
	"texter/internal/texter/ports/api"
	"texter/pkg/logger"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader       = "no authorization header provided"
	ErrorInvalidTokenFormat = "invalid token format"
	ErrorAuthFailed         = "authentication failed"
	ErrorSessionLookup      = "failed to load session"

	bearerPrefix = "Bearer "
)

// NewAuthMiddleware проверяет bearer-токен и существование его сессии
// и сохраняет личность вызывающего в Locals.
func NewAuthMiddleware(auth api.AuthUseCase) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := RequestContext(ctx)
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		header := ctx.Get(fiber.HeaderAuthorization)
		if header == "" {
			log.Debug(requestCtx, ErrorNoAuthHeader)
			return unauthorized(ctx)
		}

		token, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			log.Debug(requestCtx, ErrorInvalidTokenFormat)
			return unauthorized(ctx)
		}

		identity, err := auth.Authenticate(requestCtx, strings.TrimSpace(token))
		if err != nil {
			if !isAuthFailure(err) {
				log.Error(requestCtx, ErrorSessionLookup, zap.Error(err))
				return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
			}
			log.Debug(requestCtx, ErrorAuthFailed, zap.Error(err))
			return unauthorized(ctx)
		}

		ctx.Locals(LocalsIdentity, *identity)
		ctx.Locals(LocalsRequestContext, logger.NewContext(requestCtx, logger.Log(requestCtx).With(
			zap.String("userID", identity.UserID),
			zap.String("sessionID", identity.SessionID),
		)))

		return ctx.Next()
	}
}

func unauthorized(ctx fiber.Ctx) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
}

// isAuthFailure отличает отклоненный токен или закрытую сессию от сбоя хранилища.
func isAuthFailure(err error) bool {
	return errors.Is(err, services.ErrInvalidJWTToken) ||
		errors.Is(err, services.ErrExpiredJWTToken) ||
		errors.Is(err, services.ErrSessionNotFound)
}
