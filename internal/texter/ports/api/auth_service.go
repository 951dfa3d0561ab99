// Package api определяет входные порты сценариев texter.
package api

import (
	"context"

	"texter/internal/texter/domain/entities"
	"texter/internal/texter/domain/services"
)

// RegisterInput - данные регистрации.
type RegisterInput struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=30"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
}

// LoginInput - данные входа.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordInput - запрос кода сброса.
type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordInput - смена пароля по коду сброса.
type ResetPasswordInput struct {
	Email     string `json:"email" validate:"required,email"`
	ResetCode string `json:"resetcode" validate:"required"`
	Password  string `json:"password" validate:"required,min=6,max=30"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
}

// AuthUseCase определяет операции аутентификации.
type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (*entities.User, error)

	Login(ctx context.Context, in LoginInput) (*services.LoginResult, error)

	ForgotPassword(ctx context.Context, in ForgotPasswordInput) error

	ResetPassword(ctx context.Context, in ResetPasswordInput) error

	Logout(ctx context.Context, sessionID string) error

	// Authenticate проверяет токен и существование его сессии.
	Authenticate(ctx context.Context, token string) (*entities.Identity, error)
}
