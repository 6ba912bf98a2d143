package ports

import "context"

// PasswordResetNotice is the message delivered to a user who asked for a reset.
type PasswordResetNotice struct {
	UserID   string
	Email    string
	FullName string
	Link     string
}

// ResetNotifier hands a notice off for asynchronous delivery.
type ResetNotifier interface {
	NotifyPasswordReset(notice PasswordResetNotice)
}

// Mailer delivers a notice synchronously.
type Mailer interface {
	SendPasswordReset(ctx context.Context, notice PasswordResetNotice) error
}
