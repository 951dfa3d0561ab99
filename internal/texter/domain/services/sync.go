package services

import "time"

// SyncStatus - исход синхронизации заметки.
type SyncStatus int

// Исходы синхронизации.
const (
	// SyncConflict - заметку изменила другая сессия, правка отклонена.
	SyncConflict SyncStatus = iota + 1
	// SyncNoChange - конфликта нет, но и нового текста нет.
	SyncNoChange
	// SyncUpdated - правка принята и сохранена.
	SyncUpdated
)

func (s SyncStatus) String() string {
	switch s {
	case SyncConflict:
		return "conflict"
	case SyncNoChange:
		return "no_change"
	case SyncUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// SyncResult - успешный результат SyncNote.
// Text заполняется только для SyncConflict, ModifiedAt для SyncConflict и SyncUpdated.
type SyncResult struct {
	Status     SyncStatus
	Text       string
	ModifiedAt time.Time
}

// NoteSummary - проекция заметки для массовой синхронизации.
type NoteSummary struct {
	ID         string
	Text       string
	ModifiedAt time.Time
}

// CreatedNote - проекция новой заметки.
type CreatedNote struct {
	ID         string
	Text       string
	ModifiedAt time.Time
	CreatedAt  time.Time
}
