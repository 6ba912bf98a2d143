package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lumenhair/storefront-api/internal/core/ports"
)

// LogMailer writes notices to the log instead of sending them. It is used
// when no SMTP server is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, notice ports.PasswordResetNotice) error {
	m.log.Info().
		Str("user_id", notice.UserID).
		Str("email", notice.Email).
		Str("link", notice.Link).
		Msg("password reset link")
	return nil
}
