// Package app реализует сценарии сервиса texter.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"texter/internal/texter/domain/entities"
	"texter/internal/texter/domain/services"
	"texter/internal/texter/ports/api"
	"texter/internal/texter/ports/repositories"
	svc "texter/internal/texter/ports/services"
	"texter/pkg/logger"
)

// DefaultPageSize - максимальное число заметок в ответе массовой синхронизации.
const DefaultPageSize = 50

// maxSyncAttempts ограничивает повтор SyncNote после проигранного compare-and-swap.
const maxSyncAttempts = 2

const (
	methodSyncNote     = "SyncNote"
	methodInitialSync  = "InitialSync"
	methodSendAllNotes = "SendAllNotes"
	methodCreateNote   = "CreateNote"
	methodDeleteNote   = "DeleteNote"

	msgSyncStarted       = "syncing note"
	msgSyncConflict      = "note modified by another session"
	msgSyncNoChange      = "no changes to sync"
	msgSyncUpdated       = "note updated"
	msgSyncStaleRetry    = "note changed during sync, retrying"
	msgOwnershipMismatch = "note owner does not match caller"
	msgNoteNotFound      = "note not found"
	msgSessionMissing    = "session state missing, treating watermark as absent"
	msgNotesListed       = "notes listed"
	msgSessionSynced     = "session sync time recorded"
	msgNoteCreated       = "note created"
	msgNoteDeleted       = "note deleted"

	msgErrFindingNote     = "failed to find note"
	msgErrLoadingSession  = "failed to load session state"
	msgErrSavingWatermark = "failed to save note watermark"
	msgErrSavingNote      = "failed to save note"
	msgErrListingNotes    = "failed to list notes"
	msgErrSavingSyncedAt  = "failed to save session sync time"
	msgErrCreatingNote    = "failed to create note"
	msgErrDeletingNote    = "failed to delete note"

	errCtxFindingNote     = "finding note"
	errCtxCheckingOwner   = "checking note owner"
	errCtxLoadingSession  = "loading session state"
	errCtxSavingWatermark = "saving note watermark"
	errCtxSavingNote      = "saving note"
	errCtxListingNotes    = "listing notes"
	errCtxSavingSyncedAt  = "saving session sync time"
	errCtxCreatingNote    = "creating note"
	errCtxDeletingNote    = "deleting note"
)

// NoteOptions задает поведение движка синхронизации.
type NoteOptions struct {
	// PageSize - лимит заметок в InitialSync и SendAllNotes.
	PageSize int
	// StrictDelete включает проверку владельца при удалении.
	StrictDelete bool
	// Clock возвращает текущее время; по умолчанию time.Now.
	Clock func() time.Time
}

// NoteUseCaseImpl реализует api.NoteUseCase.
type NoteUseCaseImpl struct {
	noteRepo repositories.NoteRepository
	sessions svc.SessionStore
	opts     NoteOptions
}

// NewNoteUseCase создает движок синхронизации заметок.
func NewNoteUseCase(noteRepo repositories.NoteRepository, sessions svc.SessionStore, opts NoteOptions) api.NoteUseCase {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &NoteUseCaseImpl{
		noteRepo: noteRepo,
		sessions: sessions,
		opts:     opts,
	}
}

// SyncNote сверяет представление сессии о заметке с хранилищем.
//
// Заметка, последним изменением которой не владеет текущая сессия и которая изменена
// позже известной сессии метки, возвращается как конфликт, а newText отбрасывается.
// Иначе пустой newText дает SyncNoChange, непустой сохраняется с новой меткой времени.
func (uc *NoteUseCaseImpl) SyncNote(
	ctx context.Context,
	id entities.Identity,
	noteID, newText string,
) (*services.SyncResult, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodSyncNote),
		zap.String("userID", id.UserID),
		zap.String("sessionID", id.SessionID),
		zap.String("noteID", noteID))
	log.Debug(ctx, msgSyncStarted)

	var err error
	for attempt := 1; attempt <= maxSyncAttempts; attempt++ {
		var result *services.SyncResult
		result, err = uc.syncOnce(ctx, log, id, noteID, newText)
		if !errors.Is(err, entities.ErrStaleNote) {
			return result, err
		}
		log.Debug(ctx, msgSyncStaleRetry, zap.Int("attempt", attempt))
	}

	log.Error(ctx, msgErrSavingNote, zap.Error(err))
	return nil, fmt.Errorf("%s: %w: %w", errCtxSavingNote, entities.ErrPersistFailed, err)
}

func (uc *NoteUseCaseImpl) syncOnce(
	ctx context.Context,
	log *logger.Logger,
	id entities.Identity,
	noteID, newText string,
) (*services.SyncResult, error) {
	note, err := uc.noteRepo.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, entities.ErrNoteNotFound) {
			log.Debug(ctx, msgNoteNotFound)
			return nil, fmt.Errorf("%s: %w", errCtxFindingNote, entities.ErrNoteNotFound)
		}
		log.Error(ctx, msgErrFindingNote, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingNote, err)
	}

	if note.OwnerID != id.UserID {
		log.Warn(ctx, msgOwnershipMismatch, zap.String("ownerID", note.OwnerID))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingOwner, entities.ErrOwnershipMismatch)
	}

	session, err := uc.sessions.Get(ctx, id.SessionID)
	if err != nil {
		if !errors.Is(err, services.ErrSessionNotFound) {
			log.Error(ctx, msgErrLoadingSession, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errCtxLoadingSession, err)
		}
		log.Debug(ctx, msgSessionMissing)
		session = nil
	}

	watermark, known := session.Watermark(noteID)
	if !note.WrittenBy(id.SessionID) && (!known || note.ModifiedAfter(watermark)) {
		if err := uc.sessions.SetWatermark(ctx, id.SessionID, noteID, note.ModifiedAt); err != nil {
			log.Error(ctx, msgErrSavingWatermark, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errCtxSavingWatermark, err)
		}
		log.Info(ctx, msgSyncConflict, zap.Time("modifiedAt", note.ModifiedAt))
		return &services.SyncResult{
			Status:     services.SyncConflict,
			Text:       note.Text,
			ModifiedAt: note.ModifiedAt,
		}, nil
	}

	if newText == "" {
		log.Debug(ctx, msgSyncNoChange)
		return &services.SyncResult{Status: services.SyncNoChange}, nil
	}

	expected := note.ModifiedAt
	note.ApplyEdit(newText, id.SessionID, uc.opts.Clock())

	saved, err := uc.noteRepo.Save(ctx, note, expected)
	if err != nil {
		if errors.Is(err, entities.ErrStaleNote) {
			return nil, err
		}
		if errors.Is(err, entities.ErrNoteNotFound) {
			log.Debug(ctx, msgNoteNotFound)
			return nil, fmt.Errorf("%s: %w", errCtxSavingNote, entities.ErrNoteNotFound)
		}
		log.Error(ctx, msgErrSavingNote, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxSavingNote, entities.ErrPersistFailed, err)
	}

	log.Info(ctx, msgSyncUpdated, zap.Time("modifiedAt", saved.ModifiedAt))
	return &services.SyncResult{
		Status:     services.SyncUpdated,
		ModifiedAt: saved.ModifiedAt,
	}, nil
}

// InitialSync возвращает первые заметки пользователя и отмечает время синхронизации сессии.
func (uc *NoteUseCaseImpl) InitialSync(ctx context.Context, id entities.Identity) ([]services.NoteSummary, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodInitialSync),
		zap.String("userID", id.UserID),
		zap.String("sessionID", id.SessionID))

	notes, err := uc.listNotes(ctx, log, id.UserID)
	if err != nil {
		return nil, err
	}

	syncedAt := entities.Truncate(uc.opts.Clock())
	if err := uc.sessions.SetSyncedAt(ctx, id.SessionID, syncedAt); err != nil {
		log.Error(ctx, msgErrSavingSyncedAt, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxSavingSyncedAt, err)
	}
	log.Debug(ctx, msgSessionSynced, zap.Time("syncedAt", syncedAt))

	return notes, nil
}

// SendAllNotes возвращает первые заметки пользователя без изменения состояния сессии.
func (uc *NoteUseCaseImpl) SendAllNotes(ctx context.Context, id entities.Identity) ([]services.NoteSummary, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodSendAllNotes),
		zap.String("userID", id.UserID))

	return uc.listNotes(ctx, log, id.UserID)
}

func (uc *NoteUseCaseImpl) listNotes(ctx context.Context, log *logger.Logger, ownerID string) ([]services.NoteSummary, error) {
	notes, err := uc.noteRepo.ListByOwner(ctx, ownerID, uc.opts.PageSize)
	if err != nil {
		log.Error(ctx, msgErrListingNotes, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxListingNotes, err)
	}

	summaries := make([]services.NoteSummary, 0, len(notes))
	for _, n := range notes {
		summaries = append(summaries, services.NoteSummary{
			ID:         n.ID,
			Text:       n.Text,
			ModifiedAt: n.ModifiedAt,
		})
	}

	log.Debug(ctx, msgNotesListed, zap.Int("count", len(summaries)))
	return summaries, nil
}

// CreateNote создает заметку с текстом по умолчанию от имени сессии.
func (uc *NoteUseCaseImpl) CreateNote(ctx context.Context, id entities.Identity) (*services.CreatedNote, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodCreateNote),
		zap.String("userID", id.UserID),
		zap.String("sessionID", id.SessionID))

	note, err := uc.noteRepo.Create(ctx, entities.NewNote(id.UserID, id.SessionID, uc.opts.Clock()))
	if err != nil {
		log.Error(ctx, msgErrCreatingNote, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingNote, err)
	}

	log.Info(ctx, msgNoteCreated, zap.String("noteID", note.ID))
	return &services.CreatedNote{
		ID:         note.ID,
		Text:       note.Text,
		ModifiedAt: note.ModifiedAt,
		CreatedAt:  note.CreatedAt,
	}, nil
}

// DeleteNote удаляет заметку. Без StrictDelete владелец не проверяется,
// а удаление отсутствующей заметки считается успешным.
func (uc *NoteUseCaseImpl) DeleteNote(ctx context.Context, id entities.Identity, noteID string) error {
	log := logger.Log(ctx).With(
		zap.String("method", methodDeleteNote),
		zap.String("userID", id.UserID),
		zap.String("noteID", noteID),
		zap.Bool("strict", uc.opts.StrictDelete))

	var err error
	if uc.opts.StrictDelete {
		err = uc.noteRepo.DeleteByIDAndOwner(ctx, noteID, id.UserID)
	} else {
		err = uc.noteRepo.DeleteByID(ctx, noteID)
	}
	if err != nil {
		if errors.Is(err, entities.ErrNoteNotFound) {
			log.Debug(ctx, msgNoteNotFound)
		} else {
			log.Error(ctx, msgErrDeletingNote, zap.Error(err))
		}
		return fmt.Errorf("%s: %w", errCtxDeletingNote, err)
	}

	log.Info(ctx, msgNoteDeleted)
	return nil
}
