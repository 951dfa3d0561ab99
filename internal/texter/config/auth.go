package config

import "time"

// AuthConfig содержит настройки токенов, хеширования паролей и сброса пароля.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret" env:"TEXTER_AUTH_JWT_SECRET" env-default:"super-secret-key-change-me-in-production"`
	TokenTTL      time.Duration `yaml:"token_ttl" env:"TEXTER_AUTH_TOKEN_TTL" env-default:"8765h48m46s"`
	BCryptCost    int           `yaml:"bcrypt_cost" env:"TEXTER_AUTH_BCRYPT_COST" env-default:"12"`
	ResetCodeTTL  time.Duration `yaml:"reset_code_ttl" env:"TEXTER_AUTH_RESET_CODE_TTL" env-default:"1h"`
	ResetCodeSize int           `yaml:"reset_code_size" env:"TEXTER_AUTH_RESET_CODE_SIZE" env-default:"16"`
}
