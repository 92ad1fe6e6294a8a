package notifications

import "context"

// Mailer delivers transactional email. A nil *BrevoClient satisfies callers
// that run without email configured.
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) (string, error)
}
