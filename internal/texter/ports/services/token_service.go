package services

import (
	"context"
	"time"

	"texter/internal/texter/domain/services"
)

// TokenService определяет операции с JWT токенами.
type TokenService interface {
	GenerateToken(ctx context.Context, userID, name, sessionID string) (string, time.Time, error)

	ValidateToken(ctx context.Context, token string) (*services.JWTClaims, error)

	TokenTTL() time.Duration
}
