package services

import "context"

// Mailer доставляет письма с кодом сброса пароля.
type Mailer interface {
	SendResetCode(ctx context.Context, to, code string) error
}
