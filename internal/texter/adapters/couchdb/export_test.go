package couchdb

import (
	"github.com/go-kivik/kivik/v4"

	"texter/internal/texter/ports/repositories"
)

var (
	DocID        = docID
	ToDocument   = toDocument
	FromDocument = fromDocument
	OwnerQuery   = ownerQuery
)

// NewNoteRepositoryWithSeq создает репозиторий с заданным источником seq.
func NewNoteRepositoryWithSeq(client *kivik.Client, dbName string, seq func() int64) repositories.NoteRepository {
	repo := NewNoteRepository(client, dbName).(*NoteRepository)
	repo.seq = seq
	return repo
}
