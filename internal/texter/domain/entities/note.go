// Package entities определяет доменные сущности сервиса заметок.
package entities

import (
	"errors"
	"time"
)

// DefaultNoteText - текст новой заметки.
const DefaultNoteText = "# An awesome new note"

// TimestampPrecision - точность хранения и сравнения меток времени заметки.
const TimestampPrecision = time.Microsecond

// Ошибки домена заметок.
var (
	ErrNoteNotFound      = errors.New("note not found")
	ErrOwnershipMismatch = errors.New("note belongs to another user")
	ErrPersistFailed     = errors.New("note could not be persisted")
	ErrStaleNote         = errors.New("note was modified concurrently")
)

// Note представляет заметку пользователя.
type Note struct {
	ID                  string
	OwnerID             string
	Text                string
	CreatedAt           time.Time
	ModifiedAt          time.Time
	LastWriterSessionID string
	// Revision - токен версии хранилища документов, пустой для реляционного хранилища.
	Revision string
}

// NewNote создает заметку с текстом по умолчанию; сессия-создатель считается последним автором.
func NewNote(ownerID, sessionID string, now time.Time) *Note {
	now = Truncate(now)
	return &Note{
		OwnerID:             ownerID,
		Text:                DefaultNoteText,
		CreatedAt:           now,
		ModifiedAt:          now,
		LastWriterSessionID: sessionID,
	}
}

// WrittenBy сообщает, была ли последняя запись сделана указанной сессией.
func (n *Note) WrittenBy(sessionID string) bool {
	return n.LastWriterSessionID != "" && n.LastWriterSessionID == sessionID
}

// ModifiedAfter сообщает, изменена ли заметка позже watermark.
func (n *Note) ModifiedAfter(watermark time.Time) bool {
	return Truncate(n.ModifiedAt).After(Truncate(watermark))
}

// ApplyEdit записывает новый текст от имени сессии.
func (n *Note) ApplyEdit(text, sessionID string, now time.Time) {
	n.Text = text
	n.ModifiedAt = NextModifiedAt(n.ModifiedAt, now)
	n.LastWriterSessionID = sessionID
}

// Truncate приводит метку времени к точности хранения.
func Truncate(t time.Time) time.Time {
	return t.UTC().Truncate(TimestampPrecision)
}

// NextModifiedAt возвращает новую метку изменения, строго большую предыдущей.
func NextModifiedAt(prev, now time.Time) time.Time {
	next := Truncate(now)
	prev = Truncate(prev)
	if !next.After(prev) {
		next = prev.Add(TimestampPrecision)
	}
	return next
}
