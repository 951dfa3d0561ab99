package api

import (
	"context"

	"texter/internal/texter/domain/entities"
	"texter/internal/texter/domain/services"
)

// NoteUseCase определяет операции синхронизации заметок.
type NoteUseCase interface {
	// SyncNote сверяет представление сессии о заметке с хранилищем и применяет newText,
	// если заметку с момента последнего известного сессии изменения никто другой не менял.
	SyncNote(ctx context.Context, id entities.Identity, noteID, newText string) (*services.SyncResult, error)

	InitialSync(ctx context.Context, id entities.Identity) ([]services.NoteSummary, error)

	SendAllNotes(ctx context.Context, id entities.Identity) ([]services.NoteSummary, error)

	CreateNote(ctx context.Context, id entities.Identity) (*services.CreatedNote, error)

	DeleteNote(ctx context.Context, id entities.Identity, noteID string) error
}
