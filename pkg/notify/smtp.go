package notify

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds mail transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	SSL      bool
	From     string
	To       string
}

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender mails notifications to a fixed operator address.
type SMTPSender struct {
	dialer mailDialer
	from   string
	to     string
}

// NewSMTPSender builds a sender backed by gomail.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.To == "" {
		return nil, errors.New("smtp host and recipient are required")
	}
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.SSL
	return &SMTPSender{dialer: d, from: from, to: cfg.To}, nil
}

// Send delivers msg as a plain text mail. The dial itself is not
// interruptible, so cancellation only stops the caller from waiting.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send %q: %w", msg.Subject, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
