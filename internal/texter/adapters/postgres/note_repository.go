package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"texter/internal/texter/domain/entities"
	"texter/internal/texter/ports/repositories"
	"texter/pkg/logger"
)

const noteColumns = `id, user_id, text, created_at, modified_at, modified_session`

// NoteRepository реализует repositories.NoteRepository для Postgres.
type NoteRepository struct {
	pool PgxPoolInterface
}

// NewNoteRepository создает новый репозиторий заметок.
func NewNoteRepository(pool PgxPoolInterface) repositories.NoteRepository {
	return &NoteRepository{pool: pool}
}

func scanNote(row pgx.Row) (*entities.Note, error) {
	var note entities.Note
	err := row.Scan(
		&note.ID,
		&note.OwnerID,
		&note.Text,
		&note.CreatedAt,
		&note.ModifiedAt,
		&note.LastWriterSessionID,
	)
	if err != nil {
		return nil, err
	}
	note.CreatedAt = note.CreatedAt.UTC()
	note.ModifiedAt = note.ModifiedAt.UTC()
	return &note, nil
}

// Идентификаторы заметок - UUID; любой другой ID заведомо не существует.
func validNoteID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Create сохраняет новую заметку в БД.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Create"))
	log.Debug(ctx, "creating new note", zap.String("userID", note.OwnerID))

	created, err := scanNote(r.pool.QueryRow(ctx,
		`INSERT INTO notes (user_id, text, created_at, modified_at, modified_session)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING `+noteColumns,
		note.OwnerID, note.Text, note.CreatedAt.UTC(), note.ModifiedAt.UTC(), note.LastWriterSessionID,
	))
	if err != nil {
		log.Error(ctx, "failed to create note", zap.Error(err))
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	log.Debug(ctx, "note created", zap.String("noteID", created.ID))
	return created, nil
}

// FindByID получает заметку по ID без проверки владельца.
func (r *NoteRepository) FindByID(ctx context.Context, id string) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.FindByID"))

	if !validNoteID(id) {
		log.Debug(ctx, "malformed note id", zap.String("noteID", id))
		return nil, entities.ErrNoteNotFound
	}

	note, err := scanNote(r.pool.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "note not found", zap.String("noteID", id))
			return nil, entities.ErrNoteNotFound
		}
		log.Error(ctx, "failed to get note", zap.Error(err))
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return note, nil
}

// ListByOwner возвращает первые limit заметок владельца в порядке вставки.
func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.ListByOwner"))
	log.Debug(ctx, "listing notes", zap.String("userID", ownerID), zap.Int("limit", limit))

	rows, err := r.pool.Query(ctx,
		`SELECT `+noteColumns+`
         FROM notes
         WHERE user_id = $1
         ORDER BY seq ASC
         LIMIT $2`,
		ownerID, limit,
	)
	if err != nil {
		log.Error(ctx, "failed to list notes", zap.Error(err))
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*entities.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			log.Error(ctx, "failed to scan note", zap.Error(err))
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		log.Error(ctx, "error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return notes, nil
}

// Save обновляет заметку, если ее modified_at в БД равен expectedModifiedAt.
func (r *NoteRepository) Save(ctx context.Context, note *entities.Note, expectedModifiedAt time.Time) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Save"))
	log.Debug(ctx, "updating note", zap.String("noteID", note.ID))

	if !validNoteID(note.ID) {
		return nil, entities.ErrNoteNotFound
	}

	saved, err := scanNote(r.pool.QueryRow(ctx,
		`UPDATE notes
         SET text = $3, modified_at = $4, modified_session = $5
         WHERE id = $1 AND modified_at = $2
         RETURNING `+noteColumns,
		note.ID, entities.Truncate(expectedModifiedAt), note.Text, entities.Truncate(note.ModifiedAt), note.LastWriterSessionID,
	))
	if err == nil {
		return saved, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		log.Error(ctx, "failed to update note", zap.Error(err))
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM notes WHERE id = $1)`, note.ID).Scan(&exists); err != nil {
		log.Error(ctx, "failed to check note existence", zap.Error(err))
		return nil, fmt.Errorf("failed to check note existence: %w", err)
	}

	if !exists {
		log.Debug(ctx, "note deleted before update", zap.String("noteID", note.ID))
		return nil, entities.ErrNoteNotFound
	}

	log.Debug(ctx, "note modified concurrently", zap.String("noteID", note.ID))
	return nil, entities.ErrStaleNote
}

// DeleteByID удаляет заметку по ID.
func (r *NoteRepository) DeleteByID(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.DeleteByID"))
	log.Debug(ctx, "deleting note", zap.String("noteID", id))

	if !validNoteID(id) {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id); err != nil {
		log.Error(ctx, "failed to delete note", zap.Error(err))
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}

// DeleteByIDAndOwner удаляет заметку, только если она принадлежит ownerID.
func (r *NoteRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.DeleteByIDAndOwner"))
	log.Debug(ctx, "deleting note", zap.String("noteID", id), zap.String("userID", ownerID))

	if !validNoteID(id) {
		return entities.ErrNoteNotFound
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		log.Error(ctx, "failed to delete note", zap.Error(err))
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "note not found or not owned by user")
		return entities.ErrNoteNotFound
	}

	return nil
}
