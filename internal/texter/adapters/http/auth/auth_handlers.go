// Package auth содержит HTTP обработчики учетных записей.
package auth

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"texter/internal/texter/adapters/http/middleware"
	"texter/internal/texter/domain/services"
	"texter/internal/texter/ports/api"
	"texter/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerRegister       = "auth handler: register"
	LogHandlerLogin          = "auth handler: login"
	LogHandlerForgotPassword = "auth handler: forgot password"
	LogHandlerResetPassword  = "auth handler: reset password" // #nosec G101 - not a credential
	LogHandlerLogout         = "auth handler: logout"

	ErrorInvalidRequest       = "invalid request"
	ErrorFailedToServeRequest = "failed to serve request"
)

// Тексты ответов.
const (
	MsgUserCreated     = "New user registered successfully!"
	MsgEmailSent       = "The reset email has been sent, please check your inbox!"
	MsgPasswordChanged = "Password changed successfully!"
	MsgLoggedOff       = "Logged off"

	MsgEmailNotFound     = "Email not found"
	MsgEmailExists       = "Email already exists"
	MsgPasswordIncorrect = "Password incorrect"
	MsgResetCodeInvalid  = "Reset code is invalid"
	MsgResetCodeExpired  = "Reset code has expired"
	MsgMailFailed        = "Reset email could not be sent"
	MsgLogoffFailed      = "There was an error, please try again!"
	MsgInternalError     = "Internal Server Error"
)

// Handler содержит HTTP обработчики учетных записей.
type Handler struct {
	auth api.AuthUseCase
}

// NewHandler создает новый экземпляр обработчика.
func NewHandler(auth api.AuthUseCase) *Handler {
	return &Handler{auth: auth}
}

func send(ctx fiber.Ctx, status int, body any) error {
	if err := ctx.Status(status).JSON(body); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// sendError переводит ошибку сценария в ответ. Ошибки валидации
// возвращаются как объект "поле: сообщение".
func sendError(ctx fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return send(ctx, fiber.StatusBadRequest, validationErr.Fields)
	case errors.Is(err, services.ErrEmailNotFound):
		return send(ctx, fiber.StatusNotFound, fiber.Map{"email": MsgEmailNotFound})
	case errors.Is(err, services.ErrEmailAlreadyExists):
		return send(ctx, fiber.StatusBadRequest, fiber.Map{"email": MsgEmailExists})
	case errors.Is(err, services.ErrPasswordIncorrect):
		return send(ctx, fiber.StatusBadRequest, fiber.Map{"password": MsgPasswordIncorrect})
	case errors.Is(err, services.ErrResetCodeExpired):
		return send(ctx, fiber.StatusBadRequest, fiber.Map{"resetcode": MsgResetCodeExpired})
	case errors.Is(err, services.ErrResetCodeInvalid):
		return send(ctx, fiber.StatusBadRequest, fiber.Map{"resetcode": MsgResetCodeInvalid})
	case errors.Is(err, services.ErrMailDelivery):
		return send(ctx, fiber.StatusServiceUnavailable, fiber.Map{"error": MsgMailFailed})
	default:
		return send(ctx, fiber.StatusInternalServerError, fiber.Map{"error": MsgInternalError})
	}
}

func bind(ctx fiber.Ctx, log *logger.Logger, out any) bool {
	if err := ctx.Bind().Body(out); err != nil {
		log.Debug(middleware.RequestContext(ctx), ErrorInvalidRequest, zap.Error(err))
		return false
	}
	return true
}

func invalidRequest(ctx fiber.Ctx) error {
	return send(ctx, fiber.StatusBadRequest, fiber.Map{"error": ErrorInvalidRequest})
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.Register"))
	log.Info(requestCtx, LogHandlerRegister)

	var req api.RegisterInput
	if !bind(ctx, log, &req) {
		return invalidRequest(ctx)
	}

	if _, err := h.auth.Register(requestCtx, req); err != nil {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return sendError(ctx, err)
	}

	return send(ctx, fiber.StatusOK, fiber.Map{"createduser": MsgUserCreated})
}

// Login обрабатывает вход пользователя и выдает bearer-токен новой сессии.
func (h *Handler) Login(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.Login"))
	log.Info(requestCtx, LogHandlerLogin)

	var req api.LoginInput
	if !bind(ctx, log, &req) {
		return invalidRequest(ctx)
	}

	result, err := h.auth.Login(requestCtx, req)
	if err != nil {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return sendError(ctx, err)
	}

	return send(ctx, fiber.StatusOK, fiber.Map{
		"success": true,
		"token":   result.BearerToken(),
	})
}

// ForgotPassword отправляет код сброса пароля.
func (h *Handler) ForgotPassword(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.ForgotPassword"))
	log.Info(requestCtx, LogHandlerForgotPassword)

	var req api.ForgotPasswordInput
	if !bind(ctx, log, &req) {
		return invalidRequest(ctx)
	}

	if err := h.auth.ForgotPassword(requestCtx, req); err != nil {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return sendError(ctx, err)
	}

	return send(ctx, fiber.StatusOK, fiber.Map{"emailsent": MsgEmailSent})
}

// ResetPassword меняет пароль по коду сброса.
func (h *Handler) ResetPassword(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.ResetPassword"))
	log.Info(requestCtx, LogHandlerResetPassword)

	var req api.ResetPasswordInput
	if !bind(ctx, log, &req) {
		return invalidRequest(ctx)
	}

	if err := h.auth.ResetPassword(requestCtx, req); err != nil {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return sendError(ctx, err)
	}

	return send(ctx, fiber.StatusOK, fiber.Map{"success": MsgPasswordChanged})
}

// Logout завершает текущую сессию.
func (h *Handler) Logout(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.Logout"))
	log.Info(requestCtx, LogHandlerLogout)

	identity, ok := middleware.Identity(ctx)
	if !ok {
		return send(ctx, fiber.StatusBadRequest, fiber.Map{"logoff": MsgLogoffFailed})
	}

	if err := h.auth.Logout(requestCtx, identity.SessionID); err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return send(ctx, fiber.StatusBadRequest, fiber.Map{"logoff": MsgLogoffFailed})
	}

	return send(ctx, fiber.StatusOK, fiber.Map{"logoff": MsgLoggedOff})
}
