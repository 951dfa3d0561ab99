package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"texter/internal/texter/domain/entities"
	"texter/internal/texter/domain/services"
	"texter/internal/texter/ports/api"
	"texter/internal/texter/ports/repositories"
	svc "texter/internal/texter/ports/services"
	"texter/pkg/logger"
)

// Значения по умолчанию для кода сброса пароля.
const (
	DefaultResetCodeTTL  = time.Hour
	DefaultResetCodeSize = 16
)

const (
	methodRegister       = "Register"
	methodLogin          = "Login"
	methodForgotPassword = "ForgotPassword"
	methodResetPassword  = "ResetPassword"
	methodLogout         = "Logout"
	methodAuthenticate   = "Authenticate"

	msgStartRegistration = "starting user registration"
	msgValidationFailed  = "input validation failed"
	msgEmailExists       = "user with this email already exists"
	msgUserRegistered    = "user registered successfully"
	msgLoginAttempt      = "login attempt"
	msgEmailNotFound     = "email not found"
	msgPasswordIncorrect = "password incorrect"
	msgUserLoggedIn      = "user logged in successfully"
	msgResetRequested    = "password reset requested"
	msgResetEmailSent    = "reset email sent"
	msgResetCodeInvalid  = "reset code is invalid"
	msgResetCodeExpired  = "reset code has expired"
	msgPasswordChanged   = "password changed successfully"
	msgUserLoggedOut     = "user logged out successfully"
	msgTokenRejected     = "token rejected"
	msgSessionGone       = "session no longer exists"

	msgErrCheckExistingUser   = "failed to check existing user"
	msgErrHashPassword        = "failed to hash password"
	msgErrCreateUser          = "failed to create user"
	msgErrFindingUser         = "error finding user by email"
	msgErrVerifyingPassword   = "error verifying password"
	msgErrGenerateToken       = "failed to generate token"
	msgErrCreateSession       = "failed to create session"
	msgErrGenerateResetCode   = "failed to generate reset code"
	msgErrStoreResetToken     = "failed to store reset token"
	msgErrSendResetEmail      = "failed to send reset email"
	msgErrVerifyingResetCode  = "error verifying reset code"
	msgErrClearResetToken     = "failed to clear expired reset token"
	msgErrUpdatePassword      = "failed to update password"
	msgErrDeleteSession       = "failed to delete session"
	msgErrLoadSession         = "failed to load session"
	msgErrSessionUserMismatch = "session belongs to another user"

	errCtxValidatingInput     = "validating input"
	errCtxCheckingUser        = "checking existing user"
	errCtxEmailRegistered     = "email already registered"
	errCtxHashingPassword     = "hashing password"
	errCtxCreatingUser        = "creating user"
	errCtxFindingUser         = "finding user"
	errCtxVerifyingPassword   = "verifying password"
	errCtxInvalidCredentials  = "invalid credentials"
	errCtxGeneratingToken     = "generating token"
	errCtxCreatingSession     = "creating session"
	errCtxGeneratingResetCode = "generating reset code"
	errCtxHashingResetCode    = "hashing reset code"
	errCtxStoringResetToken   = "storing reset token"
	errCtxSendingResetEmail   = "sending reset email"
	errCtxCheckingResetCode   = "checking reset code"
	errCtxClearingResetToken  = "clearing reset token"
	errCtxUpdatingPassword    = "updating password"
	errCtxDeletingSession     = "deleting session"
	errCtxValidatingToken     = "validating token"
	errCtxLoadingSessionAuth  = "loading session"
)

// AuthOptions задает параметры сброса пароля.
type AuthOptions struct {
	ResetCodeTTL  time.Duration
	ResetCodeSize int
	Clock         func() time.Time
	// CodeGenerator создает код сброса; по умолчанию случайные байты в hex.
	CodeGenerator func(size int) (string, error)
}

// AuthUseCaseImpl реализует api.AuthUseCase.
type AuthUseCaseImpl struct {
	userRepo    repositories.UserRepository
	passwordSvc svc.PasswordService
	tokenSvc    svc.TokenService
	sessions    svc.SessionStore
	mailer      svc.Mailer
	validator   *InputValidator
	opts        AuthOptions
}

// NewAuthUseCase создает сервис аутентификации.
func NewAuthUseCase(
	userRepo repositories.UserRepository,
	passwordSvc svc.PasswordService,
	tokenSvc svc.TokenService,
	sessions svc.SessionStore,
	mailer svc.Mailer,
	opts AuthOptions,
) api.AuthUseCase {
	if opts.ResetCodeTTL <= 0 {
		opts.ResetCodeTTL = DefaultResetCodeTTL
	}
	if opts.ResetCodeSize <= 0 {
		opts.ResetCodeSize = DefaultResetCodeSize
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.CodeGenerator == nil {
		opts.CodeGenerator = randomHexCode
	}
	return &AuthUseCaseImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		sessions:    sessions,
		mailer:      mailer,
		validator:   NewInputValidator(),
		opts:        opts,
	}
}

// Register создает пользователя.
func (a *AuthUseCaseImpl) Register(ctx context.Context, in api.RegisterInput) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRegister), zap.String("email", in.Email))
	log.Debug(ctx, msgStartRegistration)

	if err := a.validator.Validate(in); err != nil {
		log.Debug(ctx, msgValidationFailed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingInput, err)
	}

	existing, err := a.userRepo.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}
	if existing != nil {
		log.Debug(ctx, msgEmailExists)
		return nil, fmt.Errorf("%s: %w", errCtxEmailRegistered, services.ErrEmailAlreadyExists)
	}

	hash, err := a.passwordSvc.Hash(ctx, in.Password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	created, err := a.userRepo.Create(ctx, &entities.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if !errors.Is(err, services.ErrEmailAlreadyExists) {
			log.Error(ctx, msgErrCreateUser, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	log.Info(ctx, msgUserRegistered, zap.String("userID", created.ID))
	return created, nil
}

// Login проверяет учетные данные, открывает сессию и выпускает токен.
func (a *AuthUseCaseImpl) Login(ctx context.Context, in api.LoginInput) (*services.LoginResult, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLogin), zap.String("email", in.Email))
	log.Debug(ctx, msgLoginAttempt)

	if err := a.validator.Validate(in); err != nil {
		log.Debug(ctx, msgValidationFailed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingInput, err)
	}

	user, err := a.findUser(ctx, log, in.Email)
	if err != nil {
		return nil, err
	}

	valid, err := a.passwordSvc.Verify(ctx, in.Password, user.PasswordHash)
	if err != nil {
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err), zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !valid {
		log.Debug(ctx, msgPasswordIncorrect, zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrPasswordIncorrect)
	}

	sessionID := uuid.NewString()
	token, expiresAt, err := a.tokenSvc.GenerateToken(ctx, user.ID, user.Name, sessionID)
	if err != nil {
		log.Error(ctx, msgErrGenerateToken, zap.Error(err), zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxGeneratingToken, err)
	}

	session := &entities.Session{
		ID:        sessionID,
		UserID:    user.ID,
		CreatedAt: a.opts.Clock().UTC(),
	}
	if err := a.sessions.Create(ctx, session, a.tokenSvc.TokenTTL()); err != nil {
		log.Error(ctx, msgErrCreateSession, zap.Error(err), zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingSession, err)
	}

	log.Info(ctx, msgUserLoggedIn, zap.String("userID", user.ID), zap.String("sessionID", sessionID))
	return &services.LoginResult{
		Token:     token,
		SessionID: sessionID,
		ExpiresAt: expiresAt,
	}, nil
}

// ForgotPassword создает одноразовый код сброса и отправляет его на почту пользователя.
func (a *AuthUseCaseImpl) ForgotPassword(ctx context.Context, in api.ForgotPasswordInput) error {
	log := logger.Log(ctx).With(zap.String("method", methodForgotPassword), zap.String("email", in.Email))
	log.Debug(ctx, msgResetRequested)

	if err := a.validator.Validate(in); err != nil {
		log.Debug(ctx, msgValidationFailed, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxValidatingInput, err)
	}

	user, err := a.findUser(ctx, log, in.Email)
	if err != nil {
		return err
	}

	code, err := a.opts.CodeGenerator(a.opts.ResetCodeSize)
	if err != nil {
		log.Error(ctx, msgErrGenerateResetCode, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxGeneratingResetCode, err)
	}

	codeHash, err := a.passwordSvc.Hash(ctx, code)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxHashingResetCode, err)
	}

	expiresAt := a.opts.Clock().UTC().Add(a.opts.ResetCodeTTL)
	if err := a.userRepo.SetResetToken(ctx, user.ID, codeHash, expiresAt); err != nil {
		log.Error(ctx, msgErrStoreResetToken, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxStoringResetToken, err)
	}

	if err := a.mailer.SendResetCode(ctx, user.Email, code); err != nil {
		log.Error(ctx, msgErrSendResetEmail, zap.Error(err))
		return fmt.Errorf("%s: %w: %w", errCtxSendingResetEmail, services.ErrMailDelivery, err)
	}

	log.Info(ctx, msgResetEmailSent, zap.String("userID", user.ID))
	return nil
}

// ResetPassword меняет пароль по действующему коду сброса.
func (a *AuthUseCaseImpl) ResetPassword(ctx context.Context, in api.ResetPasswordInput) error {
	log := logger.Log(ctx).With(zap.String("method", methodResetPassword), zap.String("email", in.Email))

	if err := a.validator.Validate(in); err != nil {
		log.Debug(ctx, msgValidationFailed, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxValidatingInput, err)
	}

	user, err := a.findUser(ctx, log, in.Email)
	if err != nil {
		return err
	}

	if user.ResetTokenHash == "" {
		log.Debug(ctx, msgResetCodeInvalid, zap.String("userID", user.ID))
		return fmt.Errorf("%s: %w", errCtxCheckingResetCode, services.ErrResetCodeInvalid)
	}

	match, err := a.passwordSvc.Verify(ctx, in.ResetCode, user.ResetTokenHash)
	if err != nil {
		log.Error(ctx, msgErrVerifyingResetCode, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxCheckingResetCode, err)
	}
	if !match {
		log.Debug(ctx, msgResetCodeInvalid, zap.String("userID", user.ID))
		return fmt.Errorf("%s: %w", errCtxCheckingResetCode, services.ErrResetCodeInvalid)
	}

	if user.ResetExpired(a.opts.Clock()) {
		log.Debug(ctx, msgResetCodeExpired, zap.String("userID", user.ID))
		if err := a.userRepo.ClearResetToken(ctx, user.ID); err != nil {
			log.Error(ctx, msgErrClearResetToken, zap.Error(err))
			return fmt.Errorf("%s: %w", errCtxClearingResetToken, err)
		}
		return fmt.Errorf("%s: %w", errCtxCheckingResetCode, services.ErrResetCodeExpired)
	}

	hash, err := a.passwordSvc.Hash(ctx, in.Password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	if err := a.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		log.Error(ctx, msgErrUpdatePassword, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxUpdatingPassword, err)
	}

	log.Info(ctx, msgPasswordChanged, zap.String("userID", user.ID))
	return nil
}

// Logout уничтожает состояние сессии.
func (a *AuthUseCaseImpl) Logout(ctx context.Context, sessionID string) error {
	log := logger.Log(ctx).With(zap.String("method", methodLogout), zap.String("sessionID", sessionID))

	if err := a.sessions.Delete(ctx, sessionID); err != nil {
		log.Error(ctx, msgErrDeleteSession, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxDeletingSession, err)
	}

	log.Info(ctx, msgUserLoggedOut)
	return nil
}

// Authenticate проверяет токен и то, что его сессия еще существует.
func (a *AuthUseCaseImpl) Authenticate(ctx context.Context, token string) (*entities.Identity, error) {
	log := logger.Log(ctx).With(zap.String("method", methodAuthenticate))

	claims, err := a.tokenSvc.ValidateToken(ctx, token)
	if err != nil {
		log.Debug(ctx, msgTokenRejected, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingToken, err)
	}

	session, err := a.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			log.Debug(ctx, msgSessionGone, zap.String("sessionID", claims.SessionID))
		} else {
			log.Error(ctx, msgErrLoadSession, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxLoadingSessionAuth, err)
	}
	if session.UserID != claims.UserID {
		log.Warn(ctx, msgErrSessionUserMismatch,
			zap.String("sessionID", claims.SessionID),
			zap.String("userID", claims.UserID))
		return nil, fmt.Errorf("%s: %w", errCtxLoadingSessionAuth, services.ErrSessionNotFound)
	}

	return &entities.Identity{
		UserID:    claims.UserID,
		SessionID: claims.SessionID,
		Name:      claims.Name,
	}, nil
}

func (a *AuthUseCaseImpl) findUser(ctx context.Context, log *logger.Logger, email string) (*entities.User, error) {
	user, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgEmailNotFound)
			return nil, fmt.Errorf("%s: %w", errCtxFindingUser, services.ErrEmailNotFound)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}
	return user, nil
}

func randomHexCode(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
