package entities

import "time"

// Identity - проверенная личность вызывающего, извлеченная из bearer-токена.
type Identity struct {
	UserID    string
	SessionID string
	Name      string
}

// Session - эфемерное состояние синхронизации одной аутентифицированной сессии.
type Session struct {
	ID         string
	UserID     string
	SyncedAt   *time.Time
	Watermarks map[string]time.Time
	CreatedAt  time.Time
}

// Watermark возвращает последнюю известную сессии метку изменения заметки:
// собственный watermark заметки, иначе время начальной синхронизации.
func (s *Session) Watermark(noteID string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	if wm, ok := s.Watermarks[noteID]; ok {
		return wm, true
	}
	if s.SyncedAt != nil {
		return *s.SyncedAt, true
	}
	return time.Time{}, false
}
