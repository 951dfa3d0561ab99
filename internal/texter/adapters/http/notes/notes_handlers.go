// Package notes содержит HTTP обработчики синхронизации заметок.
package notes

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"texter/internal/texter/adapters/http/middleware"
	"texter/internal/texter/domain/entities"
	"texter/internal/texter/domain/services"
	"texter/internal/texter/ports/api"
	"texter/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerSyncNote     = "handling sync note request"
	LogHandlerInitialSync  = "handling initial sync request"
	LogHandlerSendAllNotes = "handling send all notes request"
	LogHandlerNewNote      = "handling new note request"
	LogHandlerDeleteNote   = "handling delete note request"

	ErrMsgInvalidRequestBody = "invalid request body"
	ErrMsgMissingIdentity    = "identity missing from request"
)

// Тексты ответов.
const (
	MsgNoteModified  = "Note modified by another session"
	MsgNoChanges     = "No changes"
	MsgNoteUpdated   = "Note updated!"
	MsgNoteDeleted   = "Note deleted!"
	MsgNoteNotFound  = "Note not found"
	MsgSyncError     = "Sync error"
	MsgUpdateFailed  = "There was an error, note couldn't be updated!"
	MsgAddFailed     = "Adding to DB failed!"
	MsgDeleteFailed  = "Delete failed!"
	MsgInternalError = "Internal Server Error"
)

// Handler обрабатывает HTTP-запросы синхронизации заметок.
type Handler struct {
	notes api.NoteUseCase
}

// NewHandler создает новый экземпляр обработчика заметок.
func NewHandler(notes api.NoteUseCase) *Handler {
	return &Handler{notes: notes}
}

func send(ctx fiber.Ctx, status int, body any) error {
	if err := ctx.Status(status).JSON(body); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

func errorBody(message string) fiber.Map {
	return fiber.Map{"error": message}
}

func identity(ctx fiber.Ctx) (entities.Identity, error) {
	id, ok := middleware.Identity(ctx)
	if !ok {
		return entities.Identity{}, errors.New(ErrMsgMissingIdentity)
	}
	return id, nil
}

// syncErrorStatus сопоставляет ошибку синхронизации с кодом и телом ответа.
func syncErrorStatus(err error) (int, fiber.Map) {
	switch {
	case errors.Is(err, entities.ErrNoteNotFound):
		return fiber.StatusNotFound, errorBody(MsgNoteNotFound)
	case errors.Is(err, entities.ErrOwnershipMismatch):
		return fiber.StatusNotFound, errorBody(MsgSyncError)
	case errors.Is(err, entities.ErrPersistFailed):
		return fiber.StatusServiceUnavailable, errorBody(MsgUpdateFailed)
	case errors.Is(err, services.ErrSessionNotFound):
		return fiber.StatusUnauthorized, errorBody("Unauthorized")
	default:
		return fiber.StatusInternalServerError, errorBody(MsgInternalError)
	}
}

// SyncNote сверяет заметку с хранилищем и при отсутствии конфликта сохраняет правку.
func (h *Handler) SyncNote(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.SyncNote"))
	log.Debug(requestCtx, LogHandlerSyncNote)

	id, err := identity(ctx)
	if err != nil {
		log.Error(requestCtx, ErrMsgMissingIdentity)
		return send(ctx, fiber.StatusInternalServerError, errorBody(MsgInternalError))
	}

	var req SyncNoteRequest
	if err := ctx.Bind().Body(&req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return send(ctx, fiber.StatusBadRequest, errorBody(ErrMsgInvalidRequestBody))
	}

	result, err := h.notes.SyncNote(requestCtx, id, req.NoteID, req.NoteText)
	if err != nil {
		status, body := syncErrorStatus(err)
		if status >= fiber.StatusInternalServerError {
			log.Error(requestCtx, "failed to sync note", zap.Error(err))
		}
		return send(ctx, status, body)
	}

	switch result.Status {
	case services.SyncConflict:
		return send(ctx, fiber.StatusOK, fiber.Map{
			"notemodified": MsgNoteModified,
			"note":         result.Text,
			"modifieddate": result.ModifiedAt,
		})
	case services.SyncNoChange:
		return send(ctx, fiber.StatusOK, fiber.Map{"nochanges": MsgNoChanges})
	default:
		return send(ctx, fiber.StatusOK, fiber.Map{
			"success":      MsgNoteUpdated,
			"modifieddate": result.ModifiedAt,
		})
	}
}

// InitialSync возвращает заметки пользователя и отмечает время синхронизации сессии.
func (h *Handler) InitialSync(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.InitialSync"))
	log.Debug(requestCtx, LogHandlerInitialSync)

	id, err := identity(ctx)
	if err != nil {
		log.Error(requestCtx, ErrMsgMissingIdentity)
		return send(ctx, fiber.StatusInternalServerError, errorBody(MsgInternalError))
	}

	summaries, err := h.notes.InitialSync(requestCtx, id)
	if err != nil {
		log.Error(requestCtx, "failed initial sync", zap.Error(err))
		return send(ctx, fiber.StatusInternalServerError, errorBody(MsgInternalError))
	}

	return send(ctx, fiber.StatusOK, toNotesResponse(summaries))
}

// SendAllNotes возвращает заметки пользователя без изменения состояния сессии.
func (h *Handler) SendAllNotes(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.SendAllNotes"))
	log.Debug(requestCtx, LogHandlerSendAllNotes)

	id, err := identity(ctx)
	if err != nil {
		log.Error(requestCtx, ErrMsgMissingIdentity)
		return send(ctx, fiber.StatusInternalServerError, errorBody(MsgInternalError))
	}

	summaries, err := h.notes.SendAllNotes(requestCtx, id)
	if err != nil {
		log.Error(requestCtx, "failed to send notes", zap.Error(err))
		return send(ctx, fiber.StatusInternalServerError, errorBody(MsgInternalError))
	}

	return send(ctx, fiber.StatusOK, toNotesResponse(summaries))
}

// NewNote создает заметку с текстом по умолчанию.
func (h *Handler) NewNote(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.NewNote"))
	log.Debug(requestCtx, LogHandlerNewNote)

	id, err := identity(ctx)
	if err != nil {
		log.Error(requestCtx, ErrMsgMissingIdentity)
		return send(ctx, fiber.StatusInternalServerError, errorBody(MsgInternalError))
	}

	note, err := h.notes.CreateNote(requestCtx, id)
	if err != nil {
		log.Error(requestCtx, "failed to create note", zap.Error(err))
		return send(ctx, fiber.StatusBadRequest, errorBody(MsgAddFailed))
	}

	return send(ctx, fiber.StatusOK, fiber.Map{
		"note": CreatedNoteResponse{
			ID:           note.ID,
			Note:         note.Text,
			ModifiedDate: note.ModifiedAt,
			CreatedDate:  note.CreatedAt,
		},
	})
}

// DeleteNote удаляет заметку.
func (h *Handler) DeleteNote(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.DeleteNote"))
	log.Debug(requestCtx, LogHandlerDeleteNote)

	id, err := identity(ctx)
	if err != nil {
		log.Error(requestCtx, ErrMsgMissingIdentity)
		return send(ctx, fiber.StatusInternalServerError, errorBody(MsgInternalError))
	}

	var req DeleteNoteRequest
	if err := ctx.Bind().Body(&req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return send(ctx, fiber.StatusBadRequest, errorBody(MsgDeleteFailed))
	}

	if err := h.notes.DeleteNote(requestCtx, id, req.NoteID); err != nil {
		if errors.Is(err, entities.ErrNoteNotFound) {
			return send(ctx, fiber.StatusNotFound, errorBody(MsgNoteNotFound))
		}
		log.Error(requestCtx, "failed to delete note", zap.Error(err))
		return send(ctx, fiber.StatusBadRequest, errorBody(MsgDeleteFailed))
	}

	return send(ctx, fiber.StatusOK, fiber.Map{"success": MsgNoteDeleted})
}
