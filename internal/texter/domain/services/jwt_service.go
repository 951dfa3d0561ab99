package services

import (
	"errors"
	"time"
)

// Ошибки JWT токенов.
var (
	ErrInvalidJWTToken    = errors.New("invalid JWT token")
	ErrExpiredJWTToken    = errors.New("JWT token has expired")
	ErrGeneratingJWTToken = errors.New("failed to generate JWT token")
)

// JWTConfig содержит настройки для JWT сервиса.
type JWTConfig struct {
	SecretKey []byte
	TokenTTL  time.Duration
}

// JWTClaims определяет содержимое токена.
type JWTClaims struct {
	UserID    string
	Name      string
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
