package http_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"texter/internal/texter/domain/entities"
	"texter/internal/texter/domain/services"
	"texter/internal/texter/ports/api"
)

type mockAuthUseCase struct {
	mock.Mock
}

func (m *mockAuthUseCase) Register(ctx context.Context, in api.RegisterInput) (*entities.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockAuthUseCase) Login(ctx context.Context, in api.LoginInput) (*services.LoginResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LoginResult), args.Error(1)
}

func (m *mockAuthUseCase) ForgotPassword(ctx context.Context, in api.ForgotPasswordInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *mockAuthUseCase) ResetPassword(ctx context.Context, in api.ResetPasswordInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *mockAuthUseCase) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockAuthUseCase) Authenticate(ctx context.Context, token string) (*entities.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Identity), args.Error(1)
}

type mockNoteUseCase struct {
	mock.Mock
}

func (m *mockNoteUseCase) SyncNote(ctx context.Context, id entities.Identity, noteID, newText string) (*services.SyncResult, error) {
	args := m.Called(ctx, id, noteID, newText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SyncResult), args.Error(1)
}

func (m *mockNoteUseCase) InitialSync(ctx context.Context, id entities.Identity) ([]services.NoteSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.NoteSummary), args.Error(1)
}

func (m *mockNoteUseCase) SendAllNotes(ctx context.Context, id entities.Identity) ([]services.NoteSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.NoteSummary), args.Error(1)
}

func (m *mockNoteUseCase) CreateNote(ctx context.Context, id entities.Identity) (*services.CreatedNote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CreatedNote), args.Error(1)
}

func (m *mockNoteUseCase) DeleteNote(ctx context.Context, id entities.Identity, noteID string) error {
	return m.Called(ctx, id, noteID).Error(0)
}
