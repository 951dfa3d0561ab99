package services

import (
	"context"
	"time"

	"texter/internal/texter/domain/entities"
)

// SessionStore хранит состояние синхронизации сессий.
type SessionStore interface {
	Create(ctx context.Context, session *entities.Session, ttl time.Duration) error

	// Get возвращает domain/services.ErrSessionNotFound для неизвестной или истекшей сессии.
	Get(ctx context.Context, sessionID string) (*entities.Session, error)

	SetWatermark(ctx context.Context, sessionID, noteID string, modifiedAt time.Time) error

	SetSyncedAt(ctx context.Context, sessionID string, syncedAt time.Time) error

	Delete(ctx context.Context, sessionID string) error
}
