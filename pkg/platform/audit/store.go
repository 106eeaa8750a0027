package audit

import (
	"context"

	id "flowguard/pkg/domain"
)

// Store persists audit events. Implementations must be append-only; the
// audit trail is never mutated or deleted by the application.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByClient(ctx context.Context, clientID id.ClientID) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
