package notification

import "context"

// Dispatcher delivers outbound notifications best-effort. Failures are
// non-fatal to whatever triggered them.
type Dispatcher interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}
