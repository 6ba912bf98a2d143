package mail

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/lumenhair/storefront-api/internal/core/ports"
)

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

// SendPasswordReset does not honour ctx cancellation once the SMTP dialogue
// has started; the dispatcher bounds it with its own timeout.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, notice ports.PasswordResetNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	if err := m.send(addr, auth, m.cfg.From, []string{notice.Email}, resetMessage(m.cfg.From, notice)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func resetMessage(from string, notice ports.PasswordResetNotice) []byte {
	name := notice.FullName
	if name == "" {
		name = "there"
	}
	link := html.EscapeString(notice.Link)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", notice.Email)
	b.WriteString("Subject: Reset your password\r\n")
	b.WriteString("MIME-version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	fmt.Fprintf(&b, "<html><body><p>Hi %s,</p>", html.EscapeString(name))
	fmt.Fprintf(&b, "<p>Use the link below to choose a new password:</p><p><a href=\"%s\">%s</a></p>", link, link)
	b.WriteString("<p>If you did not ask for this, you can ignore this email.</p></body></html>\r\n")
	return []byte(b.String())
}
