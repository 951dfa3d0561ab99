package couchdb_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-kivik/kivik/v4"
	"github.com/go-kivik/kivik/v4/driver"
	"github.com/go-kivik/kivik/v4/mockdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texter/internal/texter/adapters/couchdb"
	"texter/internal/texter/domain/entities"
	"texter/internal/texter/ports/repositories"
	"texter/pkg/logger"
)

const (
	noteID    = "6bc1bee2-2e40-4f96-a93d-7e117393172a"
	ownerID   = "2b7e1516-28ae-4d2a-abf7-158809cf4f3c"
	sessionID = "ae2d8a57-1e03-4ac9-9eb7-6fac45af8e51"
	otherID   = "9f86d081-884c-4d63-9a0c-8f1a2b3c4d5e"

	dbName = "texter"
	seq    = int64(42)
)

var (
	createdAt  = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	modifiedAt = time.Date(2024, 3, 1, 11, 0, 0, 123456000, time.UTC)
)

// statusError имитирует ошибку CouchDB с HTTP-статусом.
type statusError int

func (e statusError) Error() string   { return http.StatusText(int(e)) }
func (e statusError) HTTPStatus() int { return int(e) }

func testCtx() context.Context {
	return logger.NewContext(context.Background(), logger.NewNop())
}

func newRepo(t *testing.T) (repositories.NoteRepository, *mockdb.DB) {
	t.Helper()

	client, mock := mockdb.NewT(t)
	db := mock.NewDB()
	mock.ExpectDB().WithName(dbName).WillReturn(db)

	repo := couchdb.NewNoteRepositoryWithSeq(client, dbName, func() int64 { return seq })
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return repo, db
}

func storedDoc(t *testing.T) *driver.Document {
	t.Helper()
	return mockdb.DocumentT(t, couchdb.NoteDocument{
		ID:              "note:" + noteID,
		Rev:             "2-stored",
		Type:            "note",
		UserID:          ownerID,
		Text:            "stored",
		Seq:             7,
		CreatedAt:       createdAt,
		ModifiedAt:      modifiedAt,
		ModifiedSession: sessionID,
	})
}

// decodeDoc приводит документ, переданный драйверу, к NoteDocument.
func decodeDoc(t *testing.T, doc interface{}) couchdb.NoteDocument {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	var out couchdb.NoteDocument
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestDocID(t *testing.T) {
	assert.Equal(t, "note:"+noteID, couchdb.DocID(noteID))
}

func TestDocumentMapping(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	modified := time.Date(2024, 3, 1, 11, 0, 0, 123456789, time.UTC)

	note := &entities.Note{
		ID:                  noteID,
		OwnerID:             ownerID,
		Text:                "hello",
		CreatedAt:           created,
		ModifiedAt:          modified,
		LastWriterSessionID: sessionID,
		Revision:            "1-abc",
	}

	doc := couchdb.ToDocument(note)
	assert.Equal(t, "note:"+noteID, doc.ID)
	assert.Equal(t, "1-abc", doc.Rev)
	assert.Equal(t, "note", doc.Type)
	assert.Equal(t, ownerID, doc.UserID)
	assert.Equal(t, sessionID, doc.ModifiedSession)
	assert.Equal(t, 123456000, doc.ModifiedAt.Nanosecond(), "stored timestamps have microsecond precision")

	back := couchdb.FromDocument(doc)
	assert.Equal(t, noteID, back.ID)
	assert.Equal(t, ownerID, back.OwnerID)
	assert.Equal(t, "hello", back.Text)
	assert.Equal(t, "1-abc", back.Revision)
	assert.True(t, back.WrittenBy(sessionID))
	assert.True(t, entities.Truncate(modified).Equal(back.ModifiedAt))
	assert.True(t, created.Equal(back.CreatedAt))
}

func TestDocumentMappingConvertsToUTC(t *testing.T) {
	zone := time.FixedZone("UTC+3", 3*60*60)
	doc := couchdb.NoteDocument{
		ID:         "note:" + noteID,
		ModifiedAt: time.Date(2024, 3, 1, 14, 0, 0, 0, zone),
	}

	note := couchdb.FromDocument(doc)
	assert.Equal(t, time.UTC, note.ModifiedAt.Location())
	assert.Equal(t, 11, note.ModifiedAt.Hour())
}

func TestOwnerQuery(t *testing.T) {
	query := couchdb.OwnerQuery(ownerID, 50)

	selector, ok := query["selector"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, ownerID, selector["user_id"])
	assert.Equal(t, "note", selector["type"])
	assert.Equal(t, 50, query["limit"])

	sort, ok := query["sort"].([]map[string]string)
	require.True(t, ok)
	require.Len(t, sort, 2)
	assert.Equal(t, "asc", sort[1]["seq"])
}

func TestNoteRepositoryCreate(t *testing.T) {
	t.Run("assigns id and sequence", func(t *testing.T) {
		repo, db := newRepo(t)

		var written couchdb.NoteDocument
		db.ExpectPut().WillExecute(func(_ context.Context, docID string, doc interface{}, _ driver.Options) (string, error) {
			written = decodeDoc(t, doc)
			assert.Equal(t, written.ID, docID)
			return "1-new", nil
		})

		note, err := repo.Create(testCtx(), &entities.Note{
			OwnerID:             ownerID,
			Text:                entities.DefaultNoteText,
			CreatedAt:           createdAt,
			ModifiedAt:          createdAt,
			LastWriterSessionID: sessionID,
			Revision:            "ignored",
		})
		require.NoError(t, err)

		_, err = uuid.Parse(note.ID)
		require.NoError(t, err)
		assert.Equal(t, "note:"+note.ID, written.ID)
		assert.Empty(t, written.Rev)
		assert.Equal(t, seq, written.Seq)
		assert.Equal(t, "note", written.Type)
		assert.Equal(t, ownerID, written.UserID)
		assert.Equal(t, "1-new", note.Revision)
		assert.True(t, note.WrittenBy(sessionID))
	})

	t.Run("storage failure", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectPut().WillReturnError(statusError(http.StatusInternalServerError))

		note, err := repo.Create(testCtx(), &entities.Note{OwnerID: ownerID})
		require.Error(t, err)
		assert.Nil(t, note)
	})
}

func TestNoteRepositoryFindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectGet().WithDocID("note:" + noteID).WillReturn(storedDoc(t))

		note, err := repo.FindByID(testCtx(), noteID)
		require.NoError(t, err)
		assert.Equal(t, noteID, note.ID)
		assert.Equal(t, ownerID, note.OwnerID)
		assert.Equal(t, "stored", note.Text)
		assert.Equal(t, "2-stored", note.Revision)
		assert.True(t, modifiedAt.Equal(note.ModifiedAt))
	})

	t.Run("missing document", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectGet().WithDocID("note:" + noteID).WillReturnError(statusError(http.StatusNotFound))

		_, err := repo.FindByID(testCtx(), noteID)
		require.ErrorIs(t, err, entities.ErrNoteNotFound)
	})

	t.Run("document of another type", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectGet().WithDocID("note:" + noteID).
			WillReturn(mockdb.DocumentT(t, `{"_id":"note:`+noteID+`","_rev":"1-x","type":"user"}`))

		_, err := repo.FindByID(testCtx(), noteID)
		require.ErrorIs(t, err, entities.ErrNoteNotFound)
	})

	t.Run("malformed id skips storage", func(t *testing.T) {
		repo, _ := newRepo(t)

		_, err := repo.FindByID(testCtx(), "not-a-uuid")
		require.ErrorIs(t, err, entities.ErrNoteNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectGet().WillReturnError(statusError(http.StatusInternalServerError))

		_, err := repo.FindByID(testCtx(), noteID)
		require.Error(t, err)
		assert.False(t, errors.Is(err, entities.ErrNoteNotFound))
	})
}

func TestNoteRepositoryListByOwner(t *testing.T) {
	t.Run("returns documents in query order", func(t *testing.T) {
		repo, db := newRepo(t)

		rows := mockdb.NewRows()
		for i, text := range []string{"first", "second"} {
			id := uuid.NewString()
			raw, err := json.Marshal(couchdb.NoteDocument{
				ID: "note:" + id, Rev: "1-a", Type: "note", UserID: ownerID,
				Text: text, Seq: int64(i), ModifiedAt: modifiedAt,
			})
			require.NoError(t, err)
			rows.AddRow(&driver.Row{ID: "note:" + id, Doc: strings.NewReader(string(raw))})
		}
		db.ExpectFind().WithQuery(couchdb.OwnerQuery(ownerID, 50)).WillReturn(rows)

		notes, err := repo.ListByOwner(testCtx(), ownerID, 50)
		require.NoError(t, err)
		require.Len(t, notes, 2)
		assert.Equal(t, "first", notes[0].Text)
		assert.Equal(t, "second", notes[1].Text)
	})

	t.Run("empty result", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectFind().WillReturn(mockdb.NewRows())

		notes, err := repo.ListByOwner(testCtx(), ownerID, 50)
		require.NoError(t, err)
		assert.NotNil(t, notes)
		assert.Empty(t, notes)
	})

	t.Run("query failure", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectFind().WillReturnError(statusError(http.StatusInternalServerError))

		_, err := repo.ListByOwner(testCtx(), ownerID, 50)
		require.Error(t, err)
	})
}

func TestNoteRepositorySave(t *testing.T) {
	edited := func() *entities.Note {
		return &entities.Note{
			ID:                  noteID,
			OwnerID:             ownerID,
			Text:                "edited",
			ModifiedAt:          modifiedAt.Add(time.Second),
			LastWriterSessionID: sessionID,
			Revision:            "2-stored",
		}
	}

	t.Run("writes with read revision", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectGet().WithDocID("note:" + noteID).WillReturn(storedDoc(t))

		var written couchdb.NoteDocument
		db.ExpectPut().WithDocID("note:" + noteID).
			WillExecute(func(_ context.Context, _ string, doc interface{}, _ driver.Options) (string, error) {
				written = decodeDoc(t, doc)
				return "3-saved", nil
			})

		saved, err := repo.Save(testCtx(), edited(), modifiedAt)
		require.NoError(t, err)

		assert.Equal(t, "2-stored", written.Rev)
		assert.Equal(t, "edited", written.Text)
		assert.Equal(t, int64(7), written.Seq, "insertion order is kept")
		assert.True(t, createdAt.Equal(written.CreatedAt))
		assert.Equal(t, "3-saved", saved.Revision)
		assert.True(t, modifiedAt.Add(time.Second).Equal(saved.ModifiedAt))
	})

	t.Run("rejects changed modification time", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectGet().WithDocID("note:" + noteID).WillReturn(storedDoc(t))

		_, err := repo.Save(testCtx(), edited(), modifiedAt.Add(-time.Minute))
		require.ErrorIs(t, err, entities.ErrStaleNote)
	})

	t.Run("revision conflict is stale", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectGet().WithDocID("note:" + noteID).WillReturn(storedDoc(t))
		db.ExpectPut().WithDocID("note:" + noteID).WillReturnError(statusError(http.StatusConflict))

		_, err := repo.Save(testCtx(), edited(), modifiedAt)
		require.ErrorIs(t, err, entities.ErrStaleNote)
	})

	t.Run("deleted note", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectGet().WithDocID("note:" + noteID).WillReturnError(statusError(http.StatusNotFound))

		_, err := repo.Save(testCtx(), edited(), modifiedAt)
		require.ErrorIs(t, err, entities.ErrNoteNotFound)
	})

	t.Run("write failure", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectGet().WithDocID("note:" + noteID).WillReturn(storedDoc(t))
		db.ExpectPut().WillReturnError(statusError(http.StatusInternalServerError))

		_, err := repo.Save(testCtx(), edited(), modifiedAt)
		require.Error(t, err)
		assert.False(t, errors.Is(err, entities.ErrStaleNote))
	})
}

func TestNoteRepositoryDelete(t *testing.T) {
	t.Run("deletes with stored revision", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectGet().WithDocID("note:" + noteID).WillReturn(storedDoc(t))
		db.ExpectDelete().WithDocID("note:" + noteID).WithOptions(kivik.Rev("2-stored")).WillReturn("3-deleted")

		require.NoError(t, repo.DeleteByID(testCtx(), noteID))
	})

	t.Run("unknown id succeeds", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectGet().WithDocID("note:" + noteID).WillReturnError(statusError(http.StatusNotFound))

		require.NoError(t, repo.DeleteByID(testCtx(), noteID))
	})

	t.Run("concurrently removed document succeeds", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectGet().WithDocID("note:" + noteID).WillReturn(storedDoc(t))
		db.ExpectDelete().WithDocID("note:" + noteID).WillReturnError(statusError(http.StatusNotFound))

		require.NoError(t, repo.DeleteByID(testCtx(), noteID))
	})

	t.Run("owner deletes own note", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectGet().WithDocID("note:" + noteID).WillReturn(storedDoc(t))
		db.ExpectDelete().WithDocID("note:" + noteID).WillReturn("3-deleted")

		require.NoError(t, repo.DeleteByIDAndOwner(testCtx(), noteID, ownerID))
	})

	t.Run("foreign note is not found", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectGet().WithDocID("note:" + noteID).WillReturn(storedDoc(t))

		err := repo.DeleteByIDAndOwner(testCtx(), noteID, otherID)
		require.ErrorIs(t, err, entities.ErrNoteNotFound)
	})

	t.Run("owner scoped unknown id is not found", func(t *testing.T) {
		repo, db := newRepo(t)
		db.ExpectGet().WithDocID("note:" + noteID).WillReturnError(statusError(http.StatusNotFound))

		err := repo.DeleteByIDAndOwner(testCtx(), noteID, ownerID)
		require.ErrorIs(t, err, entities.ErrNoteNotFound)
	})
}
