// Package middleware содержит промежуточное ПО HTTP сервера texter.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"texter/internal/texter/domain/entities"
)

// Ключи Locals.
const (
	LocalsRequestContext = "requestContext"
	LocalsIdentity       = "identity"
)

// RequestContext возвращает контекст запроса с logger и request_id.
func RequestContext(ctx fiber.Ctx) context.Context {
	if reqCtx, ok := ctx.Locals(LocalsRequestContext).(context.Context); ok {
		return reqCtx
	}
	return ctx.Context()
}

// Identity возвращает личность, установленную NewAuthMiddleware.
func Identity(ctx fiber.Ctx) (entities.Identity, bool) {
	id, ok := ctx.Locals(LocalsIdentity).(entities.Identity)
	return id, ok
}
