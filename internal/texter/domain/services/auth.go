// Package services содержит доменные типы и ошибки сервисов texter.
package services

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Ошибки домена аутентификации.
var (
	ErrEmailNotFound      = errors.New("email not found")
	ErrPasswordIncorrect  = errors.New("password incorrect")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrResetCodeInvalid   = errors.New("reset code is invalid")
	ErrResetCodeExpired   = errors.New("reset code has expired")
	ErrMailDelivery       = errors.New("reset email could not be sent")
	ErrSessionNotFound    = errors.New("session not found")
	ErrValidation         = errors.New("validation failed")
)

// ValidationError содержит сообщения об ошибках по именам полей запроса.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap позволяет сравнивать ошибку с ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// LoginResult - результат успешного входа.
type LoginResult struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// TokenType - префикс токена в ответе и заголовке Authorization.
const TokenType = "Bearer"

// BearerToken возвращает токен с префиксом схемы.
func (r *LoginResult) BearerToken() string {
	return TokenType + " " + r.Token
}
