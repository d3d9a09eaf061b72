package ports

import "context"

// EventPublisher delivers domain notifications after a transaction commits.
// Delivery is best-effort; callers never fail a request on publish errors.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
}
