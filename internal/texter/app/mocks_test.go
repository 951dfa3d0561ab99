package app_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"texter/internal/texter/domain/entities"
	"texter/internal/texter/domain/services"
)

var (
	ErrDatabaseOperation = errors.New("database error")
	ErrStoreOperation    = errors.New("session store error")
)

type mockNoteRepository struct {
	mock.Mock
}

func (m *mockNoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	args := m.Called(ctx, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Note), args.Error(1)
}

func (m *mockNoteRepository) FindByID(ctx context.Context, id string) (*entities.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Note), args.Error(1)
}

func (m *mockNoteRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*entities.Note, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Note), args.Error(1)
}

func (m *mockNoteRepository) Save(ctx context.Context, note *entities.Note, expected time.Time) (*entities.Note, error) {
	args := m.Called(ctx, note, expected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Note), args.Error(1)
}

func (m *mockNoteRepository) DeleteByID(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockNoteRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) Create(ctx context.Context, session *entities.Session, ttl time.Duration) error {
	return m.Called(ctx, session, ttl).Error(0)
}

func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*entities.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *mockSessionStore) SetWatermark(ctx context.Context, sessionID, noteID string, modifiedAt time.Time) error {
	return m.Called(ctx, sessionID, noteID, modifiedAt).Error(0)
}

func (m *mockSessionStore) SetSyncedAt(ctx context.Context, sessionID string, syncedAt time.Time) error {
	return m.Called(ctx, sessionID, syncedAt).Error(0)
}

func (m *mockSessionStore) Delete(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return m.Called(ctx, userID, passwordHash).Error(0)
}

func (m *mockUserRepository) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return m.Called(ctx, userID, tokenHash, expiresAt).Error(0)
}

func (m *mockUserRepository) ClearResetToken(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) Hash(ctx context.Context, password string) (string, error) {
	args := m.Called(ctx, password)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) Verify(ctx context.Context, password, hash string) (bool, error) {
	args := m.Called(ctx, password, hash)
	return args.Bool(0), args.Error(1)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateToken(ctx context.Context, userID, name, sessionID string) (string, time.Time, error) {
	args := m.Called(ctx, userID, name, sessionID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockTokenService) ValidateToken(ctx context.Context, token string) (*services.JWTClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.JWTClaims), args.Error(1)
}

func (m *mockTokenService) TokenTTL() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendResetCode(ctx context.Context, to, code string) error {
	return m.Called(ctx, to, code).Error(0)
}

// memoryNoteRepository - хранилище заметок в памяти с compare-and-swap по метке изменения.
type memoryNoteRepository struct {
	mu    sync.Mutex
	seq   int
	notes map[string]*entities.Note
	order map[string]int
}

func newMemoryNoteRepository() *memoryNoteRepository {
	return &memoryNoteRepository{
		notes: make(map[string]*entities.Note),
		order: make(map[string]int),
	}
}

func (r *memoryNoteRepository) put(note *entities.Note) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	cp := *note
	r.notes[note.ID] = &cp
	r.order[note.ID] = r.seq
}

func (r *memoryNoteRepository) get(id string) *entities.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return nil
	}
	cp := *n
	return &cp
}

func (r *memoryNoteRepository) Create(_ context.Context, note *entities.Note) (*entities.Note, error) {
	r.mu.Lock()
	r.seq++
	cp := *note
	cp.ID = fmt.Sprintf("note-%d", r.seq)
	r.notes[cp.ID] = &cp
	r.order[cp.ID] = r.seq
	r.mu.Unlock()

	out := cp
	return &out, nil
}

func (r *memoryNoteRepository) FindByID(_ context.Context, id string) (*entities.Note, error) {
	if n := r.get(id); n != nil {
		return n, nil
	}
	return nil, entities.ErrNoteNotFound
}

func (r *memoryNoteRepository) ListByOwner(_ context.Context, ownerID string, limit int) ([]*entities.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entities.Note
	for _, n := range r.notes {
		if n.OwnerID == ownerID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.order[out[i].ID] < r.order[out[j].ID] })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryNoteRepository) Save(_ context.Context, note *entities.Note, expected time.Time) (*entities.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.notes[note.ID]
	if !ok {
		return nil, entities.ErrNoteNotFound
	}
	if !cur.ModifiedAt.Equal(expected) {
		return nil, entities.ErrStaleNote
	}
	cp := *note
	r.notes[note.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memoryNoteRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.notes, id)
	return nil
}

func (r *memoryNoteRepository) DeleteByIDAndOwner(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok || n.OwnerID != ownerID {
		return entities.ErrNoteNotFound
	}
	delete(r.notes, id)
	return nil
}

// memorySessionStore - хранилище состояния сессий в памяти.
type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*entities.Session
}

func newMemorySessionStore(sessions ...*entities.Session) *memorySessionStore {
	s := &memorySessionStore{sessions: make(map[string]*entities.Session)}
	for _, sess := range sessions {
		if sess.Watermarks == nil {
			sess.Watermarks = make(map[string]time.Time)
		}
		s.sessions[sess.ID] = sess
	}
	return s
}

func (s *memorySessionStore) Create(_ context.Context, session *entities.Session, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session.Watermarks == nil {
		session.Watermarks = make(map[string]time.Time)
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, sessionID string) (*entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, services.ErrSessionNotFound
	}
	cp := *sess
	cp.Watermarks = make(map[string]time.Time, len(sess.Watermarks))
	for k, v := range sess.Watermarks {
		cp.Watermarks[k] = v
	}
	return &cp, nil
}

func (s *memorySessionStore) SetWatermark(_ context.Context, sessionID, noteID string, modifiedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &entities.Session{ID: sessionID, Watermarks: make(map[string]time.Time)}
		s.sessions[sessionID] = sess
	}
	sess.Watermarks[noteID] = modifiedAt
	return nil
}

func (s *memorySessionStore) SetSyncedAt(_ context.Context, sessionID string, syncedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return services.ErrSessionNotFound
	}
	sess.SyncedAt = &syncedAt
	return nil
}

func (s *memorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
