package config

import "time"

// MailConfig содержит настройки SMTP для писем со сбросом пароля.
type MailConfig struct {
	Host     string        `yaml:"host" env:"TEXTER_MAIL_HOST" env-default:"localhost"`
	Port     int           `yaml:"port" env:"TEXTER_MAIL_PORT" env-default:"587"`
	Username string        `yaml:"username" env:"TEXTER_MAIL_USERNAME" env-default:""`
	Password string        `yaml:"password" env:"TEXTER_MAIL_PASSWORD" env-default:""`
	From     string        `yaml:"from" env:"TEXTER_MAIL_FROM" env-default:"texter@localhost"`
	Timeout  time.Duration `yaml:"timeout" env:"TEXTER_MAIL_TIMEOUT" env-default:"10s"`
	ResetURL string        `yaml:"reset_url" env:"TEXTER_MAIL_RESET_URL" env-default:"http://localhost:8000/resetpassword"`
}
