// Package postgres содержит реализации репозиториев texter на PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"texter/internal/texter/domain/entities"
	"texter/internal/texter/domain/services"
	"texter/internal/texter/ports/repositories"
	"texter/pkg/logger"
)

// uniqueViolation - код ошибки PostgreSQL при нарушении уникальности.
const uniqueViolation = "23505"

// PgxPoolInterface описывает используемое подмножество pgxpool.Pool.
type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

const userColumns = `id, name, email, password_hash, COALESCE(reset_token_hash, ''), reset_token_expires_at, created_at`

// UserRepository реализует repositories.UserRepository для Postgres.
type UserRepository struct {
	pool PgxPoolInterface
}

// NewUserRepository создает новый экземпляр репозитория пользователей.
func NewUserRepository(pool PgxPoolInterface) repositories.UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.ResetTokenHash,
		&user.ResetTokenExpiresAt,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID находит пользователя по ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "FindByID"))

	if _, err := uuid.Parse(id); err != nil {
		log.Debug(ctx, "malformed user id", zap.String("id", id))
		return nil, entities.ErrUserNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found", zap.String("id", id))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user by id", zap.Error(err))
		return nil, fmt.Errorf("error querying user by id: %w", err)
	}

	return user, nil
}

// FindByEmail находит пользователя по email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "FindByEmail"))

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found", zap.String("email", email))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user by email", zap.Error(err))
		return nil, fmt.Errorf("error querying user by email: %w", err)
	}

	return user, nil
}

// Create создает нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Create"))

	query := `
        INSERT INTO users (name, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING ` + userColumns

	created, err := scanUser(r.pool.QueryRow(ctx, query, user.Name, user.Email, user.PasswordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			log.Debug(ctx, "email already registered", zap.String("email", user.Email))
			return nil, fmt.Errorf("error creating user: %w", services.ErrEmailAlreadyExists)
		}
		log.Error(ctx, "error creating user", zap.Error(err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return created, nil
}

// UpdatePassword меняет хеш пароля и сбрасывает ожидающий код сброса.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "UpdatePassword"))

	query := `
        UPDATE users
        SET password_hash = $2, reset_token_hash = NULL, reset_token_expires_at = NULL
        WHERE id = $1
    `

	return r.execOnUser(ctx, log, query, userID, passwordHash)
}

// SetResetToken сохраняет хеш кода сброса и срок его действия.
func (r *UserRepository) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "SetResetToken"))

	query := `
        UPDATE users
        SET reset_token_hash = $2, reset_token_expires_at = $3
        WHERE id = $1
    `

	return r.execOnUser(ctx, log, query, userID, tokenHash, expiresAt.UTC())
}

// ClearResetToken удаляет ожидающий код сброса.
func (r *UserRepository) ClearResetToken(ctx context.Context, userID string) error {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "ClearResetToken"))

	query := `
        UPDATE users
        SET reset_token_hash = NULL, reset_token_expires_at = NULL
        WHERE id = $1
    `

	return r.execOnUser(ctx, log, query, userID)
}

func (r *UserRepository) execOnUser(ctx context.Context, log *logger.Logger, query, userID string, args ...interface{}) error {
	result, err := r.pool.Exec(ctx, query, append([]interface{}{userID}, args...)...)
	if err != nil {
		log.Error(ctx, "error updating user", zap.Error(err))
		return fmt.Errorf("error updating user: %w", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "user not found for update", zap.String("id", userID))
		return entities.ErrUserNotFound
	}

	return nil
}
