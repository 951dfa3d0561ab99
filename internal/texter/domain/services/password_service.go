package services

import (
	"errors"
)

// Ошибки паролей.
var (
	ErrHashingFailed   = errors.New("failed to hash password")
	ErrInvalidPassword = errors.New("invalid password")
)

// Ограничения на пароль.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 30
)
