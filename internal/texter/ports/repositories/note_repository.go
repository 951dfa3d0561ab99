// Package repositories определяет порты хранилищ texter.
package repositories

import (
	"context"
	"time"

	"texter/internal/texter/domain/entities"
)

// NoteRepository определяет интерфейс хранилища заметок.
type NoteRepository interface {
	// Create сохраняет новую заметку и возвращает ее с присвоенным ID.
	Create(ctx context.Context, note *entities.Note) (*entities.Note, error)

	// FindByID возвращает entities.ErrNoteNotFound, если заметки нет.
	FindByID(ctx context.Context, id string) (*entities.Note, error)

	// ListByOwner возвращает до limit заметок владельца в порядке создания.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*entities.Note, error)

	// Save записывает заметку, только если ее метка изменения в хранилище
	// все еще равна expectedModifiedAt. Иначе возвращает entities.ErrStaleNote.
	Save(ctx context.Context, note *entities.Note, expectedModifiedAt time.Time) (*entities.Note, error)

	// DeleteByID удаляет заметку без проверки владельца. Отсутствие заметки не ошибка.
	DeleteByID(ctx context.Context, id string) error

	// DeleteByIDAndOwner удаляет заметку владельца или возвращает entities.ErrNoteNotFound.
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error
}
