// Package mailer delivers password-reset tokens out-of-band. The log
// implementation stands in for SMTP dispatch, which is deployment wiring.
package mailer

import (
	"context"
	"log"

	usecase "storefront/backend/internal/usecase/auth"
)

// LogMailer writes reset notifications to the process log. The token itself
// is never logged.
type LogMailer struct{}

// NewLogMailer constructs a log-backed mailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

var _ usecase.ResetSender = (*LogMailer)(nil)

// SendPasswordReset records that a reset token was issued for the address.
func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	log.Printf("password reset requested for %s (token dispatched out-of-band)", email)
	return nil
}
