// Package mail provides the outbound email pipeline: messages are rendered
// from named templates, enqueued onto a Redis list, and delivered by a
// separate worker process over SMTP.
package mail

import (
	"bytes"
	"fmt"
	"text/template"
)

// Message is a queued email. Template and Vars are resolved at delivery
// time so the queue payload stays small and the worker owns rendering.
type Message struct {
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	Template string            `json:"template"`
	Vars     map[string]string `json:"vars"`
	Attempts int               `json:"attempts"`
}

const (
	TemplateConfirm     = "confirm"
	TemplateReset       = "reset"
	TemplateEmailChange = "email_change"
)

var templates = map[string]*template.Template{
	TemplateConfirm: template.Must(template.New(TemplateConfirm).Parse(
		"Dear {{.username}},\n\n" +
			"Welcome!\n\n" +
			"To confirm your account please follow this link:\n\n" +
			"{{.base_url}}/auth/confirm/{{.token}}\n\n" +
			"Sincerely,\n\nThe team\n\n" +
			"Note: replies to this email address are not monitored.\n")),
	TemplateReset: template.Must(template.New(TemplateReset).Parse(
		"Dear {{.username}},\n\n" +
			"To reset your password follow this link:\n\n" +
			"{{.base_url}}/auth/reset/{{.token}}\n\n" +
			"If you have not requested a password reset simply ignore this message.\n\n" +
			"Sincerely,\n\nThe team\n\n" +
			"Note: replies to this email address are not monitored.\n")),
	TemplateEmailChange: template.Must(template.New(TemplateEmailChange).Parse(
		"Dear {{.username}},\n\n" +
			"To confirm your new email address follow this link:\n\n" +
			"{{.base_url}}/auth/change_email/{{.token}}\n\n" +
			"Sincerely,\n\nThe team\n\n" +
			"Note: replies to this email address are not monitored.\n")),
}

// Render produces the plain-text body for a message.
func Render(msg Message) (string, error) {
	tmpl, ok := templates[msg.Template]
	if !ok {
		return "", fmt.Errorf("unknown mail template %q", msg.Template)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, msg.Vars); err != nil {
		return "", fmt.Errorf("render mail template %q: %w", msg.Template, err)
	}
	return buf.String(), nil
}
