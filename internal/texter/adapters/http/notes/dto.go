package notes

import (
	"time"

	"texter/internal/texter/domain/services"
)

// SyncNoteRequest - тело запроса синхронизации заметки.
type SyncNoteRequest struct {
	NoteID   string `json:"noteid" form:"noteid"`
	NoteText string `json:"notetext" form:"notetext"`
}

// DeleteNoteRequest - тело запроса удаления заметки.
type DeleteNoteRequest struct {
	NoteID string `json:"noteid" form:"noteid"`
}

// NoteResponse - заметка в ответах массовой синхронизации.
type NoteResponse struct {
	ID           string    `json:"id"`
	Note         string    `json:"note"`
	ModifiedDate time.Time `json:"modifieddate"`
}

// CreatedNoteResponse - новая заметка.
type CreatedNoteResponse struct {
	ID           string    `json:"id"`
	Note         string    `json:"note"`
	ModifiedDate time.Time `json:"modifieddate"`
	CreatedDate  time.Time `json:"createddate"`
}

// NotesResponse - ответ InitialSync и SendAllNotes.
type NotesResponse struct {
	Success bool           `json:"success"`
	Notes   []NoteResponse `json:"notes"`
}

func toNotesResponse(summaries []services.NoteSummary) NotesResponse {
	notes := make([]NoteResponse, 0, len(summaries))
	for _, s := range summaries {
		notes = append(notes, NoteResponse{ID: s.ID, Note: s.Text, ModifiedDate: s.ModifiedAt})
	}
	return NotesResponse{Success: true, Notes: notes}
}
