// Package session содержит хранилище состояния сессий на Redis.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"texter/internal/texter/domain/entities"
	"texter/internal/texter/domain/services"
	svc "texter/internal/texter/ports/services"
	"texter/pkg/logger"
)

// Поля хеша сессии.
const (
	fieldUserID    = "user_id"
	fieldCreatedAt = "created_at"
	fieldSyncedAt  = "synced_at"
	watermarkField = "wm:"
)

const (
	LogMethodCreate       = "SessionStore.Create"
	LogMethodGet          = "SessionStore.Get"
	LogMethodSetWatermark = "SessionStore.SetWatermark"
	LogMethodSetSyncedAt  = "SessionStore.SetSyncedAt"
	LogMethodDelete       = "SessionStore.Delete"

	ErrorFailedToCreate = "failed to create session in redis"
	ErrorFailedToGet    = "failed to get session from redis"
	ErrorFailedToUpdate = "failed to update session in redis"
	ErrorFailedToDelete = "failed to delete session from redis"
	ErrorMalformedField = "malformed session field"
)

// Поле пишется только в существующую сессию, чтобы не воскрешать истекшую.
var setIfExists = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
  return 1
end
return 0
`)

// RedisStore реализует SessionStore в виде хеша Redis на сессию.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore создает хранилище сессий.
func NewRedisStore(client *redis.Client, keyPrefix string) svc.SessionStore {
	return &RedisStore{client: client, prefix: keyPrefix}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func encodeTime(t time.Time) string {
	return strconv.FormatInt(entities.Truncate(t).UnixMicro(), 10)
}

func decodeTime(value string) (time.Time, error) {
	micros, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", ErrorMalformedField, err)
	}
	return time.UnixMicro(micros).UTC(), nil
}

// Create сохраняет новую сессию со временем жизни ttl.
func (s *RedisStore) Create(ctx context.Context, session *entities.Session, ttl time.Duration) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodCreate), zap.String("sessionID", session.ID))

	key := s.key(session.ID)
	values := map[string]interface{}{
		fieldUserID:    session.UserID,
		fieldCreatedAt: encodeTime(session.CreatedAt),
	}
	if session.SyncedAt != nil {
		values[fieldSyncedAt] = encodeTime(*session.SyncedAt)
	}
	for noteID, wm := range session.Watermarks {
		values[watermarkField+noteID] = encodeTime(wm)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, ErrorFailedToCreate, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToCreate, err)
	}

	return nil
}

// Get загружает сессию или возвращает services.ErrSessionNotFound.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*entities.Session, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodGet), zap.String("sessionID", sessionID))

	fields, err := s.client.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		log.Error(ctx, ErrorFailedToGet, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorFailedToGet, err)
	}

	if len(fields) == 0 {
		return nil, services.ErrSessionNotFound
	}

	session := &entities.Session{
		ID:         sessionID,
		UserID:     fields[fieldUserID],
		Watermarks: make(map[string]time.Time),
	}

	for field, value := range fields {
		switch {
		case field == fieldCreatedAt:
			session.CreatedAt, err = decodeTime(value)
		case field == fieldSyncedAt:
			var syncedAt time.Time
			syncedAt, err = decodeTime(value)
			session.SyncedAt = &syncedAt
		case strings.HasPrefix(field, watermarkField):
			var wm time.Time
			wm, err = decodeTime(value)
			session.Watermarks[strings.TrimPrefix(field, watermarkField)] = wm
		}
		if err != nil {
			log.Error(ctx, ErrorFailedToGet, zap.String("field", field), zap.Error(err))
			return nil, fmt.Errorf("%s: %s: %w", ErrorFailedToGet, field, err)
		}
	}

	return session, nil
}

// SetWatermark запоминает последнюю показанную сессии метку изменения заметки.
func (s *RedisStore) SetWatermark(ctx context.Context, sessionID, noteID string, modifiedAt time.Time) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodSetWatermark), zap.String("sessionID", sessionID))
	return s.setField(ctx, log, sessionID, watermarkField+noteID, encodeTime(modifiedAt))
}

// SetSyncedAt запоминает время начальной синхронизации сессии.
func (s *RedisStore) SetSyncedAt(ctx context.Context, sessionID string, syncedAt time.Time) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodSetSyncedAt), zap.String("sessionID", sessionID))
	return s.setField(ctx, log, sessionID, fieldSyncedAt, encodeTime(syncedAt))
}

func (s *RedisStore) setField(ctx context.Context, log *logger.Logger, sessionID, field, value string) error {
	updated, err := setIfExists.Run(ctx, s.client, []string{s.key(sessionID)}, field, value).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Error(ctx, ErrorFailedToUpdate, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToUpdate, err)
	}

	if updated == 0 {
		return services.ErrSessionNotFound
	}

	return nil
}

// Delete удаляет сессию. Отсутствующая сессия не считается ошибкой.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodDelete), zap.String("sessionID", sessionID))

	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		log.Error(ctx, ErrorFailedToDelete, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToDelete, err)
	}

	return nil
}
