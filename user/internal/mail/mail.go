package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"

	"github.com/brewhouse/storefront/internal/config"
	inErrors "github.com/brewhouse/storefront/internal/errors"
	"github.com/brewhouse/storefront/internal/log"
	inOtel "github.com/brewhouse/storefront/internal/otel"
)

// Mailer delivers account emails. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendPasswordReset(c context.Context, email string, token string) error
	SendPasswordChanged(c context.Context, email string) error
}

type SmtpMailer struct {
	config config.Smtp
}

func NewSmtpMailer(config config.Smtp) *SmtpMailer {
	return &SmtpMailer{config: config}
}

func (m *SmtpMailer) send(c context.Context, email string, subject string, body string) error {
	c, span := inOtel.Tracer.Start(c, "SmtpMailer send")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SmtpMailer send").
		Str(log.KeyEmail, email).
		Str(log.KeyProcess, "sending email").
		Logger()

	logger.Info().Msg("sending email")
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		m.config.Sender,
		email,
		subject,
		body,
	)
	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}
	if err := smtp.SendMail(addr, auth, m.config.Sender, []string{email}, []byte(msg)); err != nil {
		err = fmt.Errorf("failed sending email to=%s with error=%w", email, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("sent email")

	return nil
}

func (m *SmtpMailer) SendPasswordReset(c context.Context, email string, token string) error {
	body := fmt.Sprintf(
		"We received a request to reset your password.\n\nOpen the link below to choose a new one. The link expires in 1 hour.\n\n%s?token=%s\n\nIf you didn't request this, you can safely ignore this email.",
		m.config.ResetURL,
		token,
	)
	return m.send(c, email, "Reset your password", body)
}

func (m *SmtpMailer) SendPasswordChanged(c context.Context, email string) error {
	body := "Your password was changed.\n\nIf this wasn't you, reset your password immediately."
	return m.send(c, email, "Your password was changed", body)
}
