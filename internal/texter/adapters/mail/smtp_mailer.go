// Package mail доставляет письма со сбросом пароля через SMTP.
package mail

import (
	"context"
	"fmt"
	"strings"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"texter/internal/texter/config"
	svc "texter/internal/texter/ports/services"
	"texter/internal/texter/resilience"
	"texter/pkg/logger"
)

// ResetSubject - тема письма со сбросом пароля.
const ResetSubject = "Link To Reset Password"

const (
	methodSendResetCode = "SMTPMailer.SendResetCode"
	operationSend       = "send_reset_code"

	msgSendingMail = "sending reset email"
	msgMailSent    = "reset email sent"
	msgMailFailed  = "failed to send reset email"

	errCtxCreateClient  = "failed to create smtp client"
	errCtxBuildMessage  = "failed to build reset message"
	errCtxSendMessage   = "failed to send reset message"
	errCtxInvalidSender = "invalid sender address"
)

// Sender отправляет готовое письмо.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTPMailer реализует Mailer поверх SMTP с повторами и Circuit Breaker.
type SMTPMailer struct {
	sender     Sender
	from       string
	resetURL   string
	resilience *resilience.ServiceResilience
}

// NewSMTPMailer создает SMTP клиента по конфигурации.
func NewSMTPMailer(cfg config.MailConfig, res *resilience.ServiceResilience) (svc.Mailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(cfg.Timeout),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxCreateClient, err)
	}

	return NewMailer(client, cfg.From, cfg.ResetURL, res), nil
}

// NewMailer создает Mailer с произвольным отправителем.
func NewMailer(sender Sender, from, resetURL string, res *resilience.ServiceResilience) *SMTPMailer {
	return &SMTPMailer{
		sender:     sender,
		from:       from,
		resetURL:   resetURL,
		resilience: res,
	}
}

// SendResetCode отправляет пользователю код сброса пароля.
func (m *SMTPMailer) SendResetCode(ctx context.Context, to, code string) error {
	log := logger.Log(ctx).With(zap.String("method", methodSendResetCode), zap.String("to", to))
	log.Debug(ctx, msgSendingMail)

	msg, err := BuildResetMessage(m.from, to, code, m.resetURL)
	if err != nil {
		log.Error(ctx, msgMailFailed, zap.Error(err))
		return err
	}

	err = m.resilience.ExecuteWithResilience(ctx, operationSend, func(ctx context.Context) error {
		return m.sender.DialAndSendWithContext(ctx, msg)
	})
	if err != nil {
		log.Error(ctx, msgMailFailed, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxSendMessage, err)
	}

	log.Info(ctx, msgMailSent)
	return nil
}

// BuildResetMessage собирает письмо с кодом сброса.
// Ошибка адреса помечается resilience.ErrPermanent.
func BuildResetMessage(from, to, code, resetURL string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", errCtxInvalidSender, resilience.ErrPermanent, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", errCtxBuildMessage, resilience.ErrPermanent, err)
	}
	msg.Subject(ResetSubject)
	msg.SetBodyString(gomail.TypeTextPlain, resetBody(code, resetURL))
	return msg, nil
}

func resetBody(code, resetURL string) string {
	var b strings.Builder
	b.WriteString("You are receiving this because you (or someone else) have requested the reset of the password for your account.\n\n")
	b.WriteString("Please click on the following link, or paste this into your browser to complete the process within one hour of receiving it:\n\n")
	b.WriteString(resetURL + "\n\n")
	b.WriteString("Reset Code: " + code + "\n\n")
	b.WriteString("If you did not request this, please ignore this email and your password will remain unchanged.\n")
	return b.String()
}
