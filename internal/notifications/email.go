package notifications

import (
	"context"
	"fmt"
	"time"

	gomail "gopkg.in/mail.v2"

	"spotwatch/internal/config"
)

const smtpTimeout = 10 * time.Second

type emailSender struct {
	cfg     config.Email
	deliver func(*gomail.Message) error
}

func newEmailSender(cfg config.Email) *emailSender {
	dialer := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	dialer.Timeout = smtpTimeout
	return &emailSender{
		cfg: cfg,
		deliver: func(m *gomail.Message) error {
			return dialer.DialAndSend(m)
		},
	}
}

// send delivers msg as a plain text email. The SMTP client has no context
// support, so cancellation is only checked before dialing.
func (e *emailSender) send(ctx context.Context, msg message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", e.cfg.From)
	m.SetHeader("To", e.cfg.To)
	m.SetHeader("Subject", msg.title)
	if msg.priority == "high" {
		m.SetHeader("X-Priority", "1")
	}
	m.SetBody("text/plain", msg.body)

	if err := e.deliver(m); err != nil {
		return fmt.Errorf("send email to %s: %w", e.cfg.To, err)
	}
	return nil
}
