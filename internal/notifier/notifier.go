package notifier

import "context"

// Notifier sends the transactional welcome email for a new waitlist
// entry. Implementations must be safe for concurrent use: the intake
// pipeline fires notifications from per-request goroutines.
type Notifier interface {
	SendWelcomeEmail(ctx context.Context, toEmail, name string) error
}
