package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"texter/internal/texter/domain/services"
	svc "texter/internal/texter/ports/services"
)

// MaxSecretLength - предел bcrypt: байты после 72-го не участвуют в хеше.
const MaxSecretLength = 72

const (
	errMsgFailedToGenerateHash = "failed to generate password hash"
	errMsgErrorComparingHash   = "error comparing password with hash"
	errMsgPasswordTooShort     = "password is too short"
	errMsgPasswordTooLong      = "password is too long"
)

// ServiceBcrypt хеширует пароли и коды сброса.
type ServiceBcrypt struct {
	cost int
}

// NewBcrypt создает сервис bcrypt; стоимость вне [MinCost, MaxCost] заменяется DefaultCost.
func NewBcrypt(cost int) svc.PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &ServiceBcrypt{cost: cost}
}

// Cost возвращает используемую стоимость хеширования.
func (s *ServiceBcrypt) Cost() int {
	return s.cost
}

func checkSecret(secret string) error {
	switch {
	case secret == "":
		return services.ErrInvalidPassword
	case len(secret) < services.MinPasswordLength:
		return fmt.Errorf("%s: %w", errMsgPasswordTooShort, services.ErrInvalidPassword)
	case len(secret) > MaxSecretLength:
		return fmt.Errorf("%s: %w", errMsgPasswordTooLong, services.ErrInvalidPassword)
	}
	return nil
}

// Hash хеширует секрет.
func (s *ServiceBcrypt) Hash(_ context.Context, secret string) (string, error) {
	if err := checkSecret(secret); err != nil {
		return "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", errMsgFailedToGenerateHash, services.ErrHashingFailed, err)
	}
	return string(hashed), nil
}

// Verify сравнивает секрет с хешем. Несовпадение возвращает false без ошибки.
func (s *ServiceBcrypt) Verify(_ context.Context, secret, hash string) (bool, error) {
	if secret == "" || hash == "" {
		return false, services.ErrInvalidPassword
	}

	switch err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", errMsgErrorComparingHash, err)
	}
}
