package util

import (
	"fmt"
	"html"

	"github.com/ariebrainware/clinic-admin/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends a single HTML message.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers mail through the SMTP account configured by SMTP_HOST/EMAIL_USER.
type SMTPMailer struct {
	Host string
	Port int
	User string
	Pass string
}

// NewSMTPMailer returns nil when SMTP is not configured, so callers can skip sending.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	if cfg == nil || cfg.SMTPHost == "" || cfg.EmailUser == "" {
		return nil
	}
	return &SMTPMailer{Host: cfg.SMTPHost, Port: cfg.SMTPPort, User: cfg.EmailUser, Pass: cfg.EmailPass}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.User)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.Host, m.Port, m.User, m.Pass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// FeedbackReplyBody renders the reply email for a piece of patient feedback.
func FeedbackReplyBody(patientName, original, reply, clinic string) string {
	return fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Thank you for your feedback:</p>
		<blockquote>%s</blockquote>
		<p>%s</p>
		<p>Best regards,</p>
		<p>%s</p>
	`, html.EscapeString(patientName), html.EscapeString(original), html.EscapeString(reply), html.EscapeString(clinic))
}
