package couchdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-kivik/kivik/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"texter/internal/texter/domain/entities"
	"texter/internal/texter/ports/repositories"
	"texter/pkg/logger"
)

const (
	docType     = "note"
	docIDPrefix = "note:"

	fieldType   = "type"
	fieldUserID = "user_id"
	fieldSeq    = "seq"
)

// NoteDocument - представление заметки в CouchDB.
type NoteDocument struct {
	ID              string    `json:"_id"`
	Rev             string    `json:"_rev,omitempty"`
	Type            string    `json:"type"`
	UserID          string    `json:"user_id"`
	Text            string    `json:"text"`
	Seq             int64     `json:"seq"`
	CreatedAt       time.Time `json:"created_at"`
	ModifiedAt      time.Time `json:"modified_at"`
	ModifiedSession string    `json:"modified_session"`
}

// NoteRepository реализует repositories.NoteRepository поверх CouchDB.
// Сравнение с обменом выполняется по ревизии документа.
type NoteRepository struct {
	db  *kivik.DB
	seq func() int64
}

// NewNoteRepository создает репозиторий заметок для базы dbName.
func NewNoteRepository(client *kivik.Client, dbName string) repositories.NoteRepository {
	return &NoteRepository{
		db:  client.DB(dbName),
		seq: func() int64 { return time.Now().UnixNano() },
	}
}

func docID(noteID string) string {
	return docIDPrefix + noteID
}

func toDocument(note *entities.Note) NoteDocument {
	return NoteDocument{
		ID:              docID(note.ID),
		Rev:             note.Revision,
		Type:            docType,
		UserID:          note.OwnerID,
		Text:            note.Text,
		CreatedAt:       entities.Truncate(note.CreatedAt),
		ModifiedAt:      entities.Truncate(note.ModifiedAt),
		ModifiedSession: note.LastWriterSessionID,
	}
}

func fromDocument(doc NoteDocument) *entities.Note {
	return &entities.Note{
		ID:                  strings.TrimPrefix(doc.ID, docIDPrefix),
		OwnerID:             doc.UserID,
		Text:                doc.Text,
		CreatedAt:           entities.Truncate(doc.CreatedAt),
		ModifiedAt:          entities.Truncate(doc.ModifiedAt),
		LastWriterSessionID: doc.ModifiedSession,
		Revision:            doc.Rev,
	}
}

func ownerQuery(ownerID string, limit int) map[string]interface{} {
	return map[string]interface{}{
		"selector": map[string]interface{}{
			fieldType:   docType,
			fieldUserID: ownerID,
		},
		"sort": []map[string]string{
			{fieldUserID: "asc"},
			{fieldSeq: "asc"},
		},
		"limit":     limit,
		"use_index": []string{indexDesignDoc, indexName},
	}
}

func isStatus(err error, status int) bool {
	return err != nil && kivik.HTTPStatus(err) == status
}

// Create сохраняет новую заметку.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "CouchNoteRepository.Create"))
	log.Debug(ctx, "creating new note", zap.String("userID", note.OwnerID))

	created := *note
	created.ID = uuid.NewString()
	created.Revision = ""

	doc := toDocument(&created)
	doc.Seq = r.seq()

	rev, err := r.db.Put(ctx, doc.ID, doc)
	if err != nil {
		log.Error(ctx, "failed to create note", zap.Error(err))
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	doc.Rev = rev
	log.Debug(ctx, "note created", zap.String("noteID", created.ID))
	return fromDocument(doc), nil
}

func (r *NoteRepository) get(ctx context.Context, noteID string) (*NoteDocument, error) {
	if _, err := uuid.Parse(noteID); err != nil {
		return nil, entities.ErrNoteNotFound
	}

	var doc NoteDocument
	if err := r.db.Get(ctx, docID(noteID)).ScanDoc(&doc); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, entities.ErrNoteNotFound
		}
		return nil, err
	}

	if doc.Type != docType {
		return nil, entities.ErrNoteNotFound
	}

	return &doc, nil
}

// FindByID получает заметку по ID.
func (r *NoteRepository) FindByID(ctx context.Context, id string) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "CouchNoteRepository.FindByID"))

	doc, err := r.get(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrNoteNotFound) {
			log.Debug(ctx, "note not found", zap.String("noteID", id))
			return nil, err
		}
		log.Error(ctx, "failed to get note", zap.Error(err))
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return fromDocument(*doc), nil
}

// ListByOwner возвращает первые limit заметок владельца в порядке создания.
func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "CouchNoteRepository.ListByOwner"))
	log.Debug(ctx, "listing notes", zap.String("userID", ownerID), zap.Int("limit", limit))

	rows := r.db.Find(ctx, ownerQuery(ownerID, limit))
	defer func() { _ = rows.Close() }()

	notes := make([]*entities.Note, 0)
	for rows.Next() {
		var doc NoteDocument
		if err := rows.ScanDoc(&doc); err != nil {
			log.Error(ctx, "failed to scan note", zap.Error(err))
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, fromDocument(doc))
	}

	if err := rows.Err(); err != nil {
		log.Error(ctx, "failed to list notes", zap.Error(err))
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return notes, nil
}

// Save записывает заметку с ревизией, полученной при чтении.
// Без ревизии текущая ревизия берется из хранилища после сверки expectedModifiedAt.
func (r *NoteRepository) Save(ctx context.Context, note *entities.Note, expectedModifiedAt time.Time) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "CouchNoteRepository.Save"))
	log.Debug(ctx, "updating note", zap.String("noteID", note.ID))

	current, err := r.get(ctx, note.ID)
	if err != nil {
		if errors.Is(err, entities.ErrNoteNotFound) {
			return nil, err
		}
		log.Error(ctx, "failed to get note", zap.Error(err))
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	if !entities.Truncate(current.ModifiedAt).Equal(entities.Truncate(expectedModifiedAt)) {
		log.Debug(ctx, "note modified concurrently", zap.String("noteID", note.ID))
		return nil, entities.ErrStaleNote
	}

	rev := note.Revision
	if rev == "" {
		rev = current.Rev
	}

	doc := toDocument(note)
	doc.Rev = rev
	doc.Seq = current.Seq
	doc.UserID = current.UserID
	doc.CreatedAt = current.CreatedAt

	newRev, err := r.db.Put(ctx, doc.ID, doc)
	if err != nil {
		if isStatus(err, http.StatusConflict) {
			log.Debug(ctx, "note revision conflict", zap.String("noteID", note.ID))
			return nil, entities.ErrStaleNote
		}
		log.Error(ctx, "failed to update note", zap.Error(err))
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	doc.Rev = newRev
	return fromDocument(doc), nil
}

// DeleteByID удаляет заметку. Отсутствующая заметка не считается ошибкой.
func (r *NoteRepository) DeleteByID(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("method", "CouchNoteRepository.DeleteByID"))
	log.Debug(ctx, "deleting note", zap.String("noteID", id))

	doc, err := r.get(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrNoteNotFound) {
			return nil
		}
		log.Error(ctx, "failed to get note", zap.Error(err))
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return r.delete(ctx, log, doc)
}

// DeleteByIDAndOwner удаляет заметку, только если она принадлежит ownerID.
func (r *NoteRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	log := logger.Log(ctx).With(zap.String("method", "CouchNoteRepository.DeleteByIDAndOwner"))
	log.Debug(ctx, "deleting note", zap.String("noteID", id), zap.String("userID", ownerID))

	doc, err := r.get(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrNoteNotFound) {
			return err
		}
		log.Error(ctx, "failed to get note", zap.Error(err))
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if doc.UserID != ownerID {
		log.Debug(ctx, "note not owned by user")
		return entities.ErrNoteNotFound
	}

	return r.delete(ctx, log, doc)
}

func (r *NoteRepository) delete(ctx context.Context, log *logger.Logger, doc *NoteDocument) error {
	if _, err := r.db.Delete(ctx, doc.ID, doc.Rev); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil
		}
		log.Error(ctx, "failed to delete note", zap.Error(err))
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}
