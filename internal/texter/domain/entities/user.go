package entities

import (
	"errors"
	"time"
)

// Ошибки домена пользователя.
var (
	ErrUserNotFound = errors.New("user not found")
)

// User представляет зарегистрированного пользователя.
type User struct {
	ID                  string
	Name                string
	Email               string
	PasswordHash        string
	ResetTokenHash      string
	ResetTokenExpiresAt *time.Time
	CreatedAt           time.Time
}

// HasPendingReset сообщает, ожидает ли пользователь сброса пароля.
func (u *User) HasPendingReset() bool {
	return u.ResetTokenHash != "" && u.ResetTokenExpiresAt != nil
}

// ResetExpired сообщает, истек ли код сброса к моменту now.
func (u *User) ResetExpired(now time.Time) bool {
	return u.ResetTokenExpiresAt == nil || !now.Before(*u.ResetTokenExpiresAt)
}

// SetReset сохраняет хеш кода сброса и срок его действия.
func (u *User) SetReset(hash string, expiresAt time.Time) {
	u.ResetTokenHash = hash
	u.ResetTokenExpiresAt = &expiresAt
}

// ClearReset удаляет ожидающий код сброса.
func (u *User) ClearReset() {
	u.ResetTokenHash = ""
	u.ResetTokenExpiresAt = nil
}
