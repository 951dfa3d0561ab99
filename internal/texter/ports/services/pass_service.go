// Package services определяет порты вспомогательных сервисов texter.
package services

import "context"

// PasswordService определяет операции хеширования секретов.
type PasswordService interface {
	Hash(ctx context.Context, password string) (string, error)

	Verify(ctx context.Context, password, hash string) (bool, error)
}
