package repositories

import (
	"context"
	"time"

	"texter/internal/texter/domain/entities"
)

// UserRepository определяет интерфейс хранилища учетных записей.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)

	FindByID(ctx context.Context, id string) (*entities.User, error)

	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	ClearResetToken(ctx context.Context, userID string) error
}
