package services

import "context"

// NotificationDispatcher delivers best-effort messages to investors and
// admins. Failures never roll back financial state.
type NotificationDispatcher interface {
	Notify(ctx context.Context, recipient, message string) error
}
