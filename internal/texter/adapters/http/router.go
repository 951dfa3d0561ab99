// Package http содержит HTTP сервер texter.
package http

import (
	"github.com/gofiber/fiber/v3"

	"texter/internal/texter/adapters/http/auth"
	"texter/internal/texter/adapters/http/middleware"
	"texter/internal/texter/adapters/http/notes"
	"texter/internal/texter/ports/api"
	"texter/pkg/logger"
)

// MsgRouteNotFound - ответ для неизвестных маршрутов.
const MsgRouteNotFound = "Route not found"

// SetupRouter настраивает маршрутизацию HTTP сервера.
func SetupRouter(
	app *fiber.App,
	log *logger.Logger,
	security middleware.SecurityConfig,
	authUseCase api.AuthUseCase,
	noteUseCase api.NoteUseCase,
) {
	authHandler := auth.NewHandler(authUseCase)
	notesHandler := notes.NewHandler(noteUseCase)
	requireAuth := middleware.NewAuthMiddleware(authUseCase)

	app.Use(middleware.NewLoggerMiddleware(log))
	app.Use(middleware.NewRecoveryMiddleware())
	app.Use(middleware.NewHelmetMiddleware())
	app.Use(middleware.NewCORSMiddleware(security))
	if security.RateLimit > 0 {
		app.Use(middleware.NewRateLimitMiddleware(security))
	}

	users := app.Group("/api/users")

	// Публичные маршруты.
	users.Post("/register", authHandler.Register)
	users.Post("/login", authHandler.Login)
	users.Post("/forgotpassword", authHandler.ForgotPassword)
	users.Post("/resetpassword", authHandler.ResetPassword)

	// Маршруты с bearer-токеном. В fiber v3 middleware маршрута
	// передаются после обработчика и выполняются раньше него.
	users.Post("/logout", authHandler.Logout, requireAuth)
	users.Post("/syncnote", notesHandler.SyncNote, requireAuth)
	users.Post("/initialsync", notesHandler.InitialSync, requireAuth)
	users.Post("/sendallnotes", notesHandler.SendAllNotes, requireAuth)
	users.Post("/newnote", notesHandler.NewNote, requireAuth)
	users.Post("/deletenote", notesHandler.DeleteNote, requireAuth)

	app.Use(func(ctx fiber.Ctx) error {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": MsgRouteNotFound})
	})
}
