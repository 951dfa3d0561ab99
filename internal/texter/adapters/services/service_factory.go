// Package services содержит адаптеры хеширования паролей и JWT токенов.
package services

import (
	"texter/internal/texter/config"
	"texter/internal/texter/ports/services"
)

// ServiceFactory собирает сервисы паролей и токенов из настроек аутентификации.
type ServiceFactory struct {
	passwords services.PasswordService
	tokens    services.TokenService
}

// NewServiceFactory создает фабрику по секции auth конфигурации.
func NewServiceFactory(cfg config.AuthConfig) *ServiceFactory {
	return &ServiceFactory{
		passwords: NewBcrypt(cfg.BCryptCost),
		tokens:    NewJWT(cfg.JWTSecret, cfg.TokenTTL),
	}
}

// PasswordService возвращает bcrypt сервис.
func (f *ServiceFactory) PasswordService() services.PasswordService {
	return f.passwords
}

// TokenService возвращает JWT сервис.
func (f *ServiceFactory) TokenService() services.TokenService {
	return f.tokens
}
