package notify

import "context"

// NotificationSender delivers a one-time verification code to a user.
// Callers treat delivery failure as non-fatal and fall back to showing the
// code in-app.
type NotificationSender interface {
	Send(ctx context.Context, email, code string) error
}
