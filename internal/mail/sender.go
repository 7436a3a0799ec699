package mail

import (
	"fmt"
	"sync"

	"quill/internal/config"

	"gopkg.in/gomail.v2"
)

// Sender delivers a rendered message.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers mail through an SMTP relay using gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	prefix string
}

// NewSMTPSender builds a sender from the mail settings in cfg.
func NewSMTPSender(cfg *config.Config) *SMTPSender {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return &SMTPSender{
		dialer: d,
		from:   cfg.MailSender,
		prefix: cfg.MailSubjectPrefix,
	}
}

func (s *SMTPSender) Send(msg Message) error {
	body, err := Render(msg)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", s.prefix+msg.Subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender renders messages and records them in memory instead of sending.
// Used in development without SMTP credentials and in tests.
type LogSender struct {
	mu   sync.Mutex
	sent []Message
}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(msg Message) error {
	if _, err := Render(msg); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

// Sent returns a copy of everything delivered so far.
func (s *LogSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
