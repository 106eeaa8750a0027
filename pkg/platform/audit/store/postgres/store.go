package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "flowguard/pkg/domain"
	audit "flowguard/pkg/platform/audit"
	txcontext "flowguard/pkg/platform/tx"
)

// Store persists audit events in PostgreSQL. Appends join the caller's
// transaction when one is present in the context, so ledger mutations and
// their audit entries commit atomically.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var clientID any
	if !event.ClientID.IsNil() {
		clientID = uuid.UUID(event.ClientID)
	}

	query := `
		INSERT INTO audit_events (id, category, occurred_at, client_id, subject, action, reason, request_id, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(event.Category),
		event.Timestamp,
		clientID,
		event.Subject,
		event.Action,
		event.Reason,
		event.RequestID,
		event.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByClient(ctx context.Context, clientID id.ClientID) ([]audit.Event, error) {
	query := `
		SELECT category, occurred_at, client_id, subject, action, reason, request_id, actor_id
		FROM audit_events
		WHERE client_id = $1
		ORDER BY occurred_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(clientID))
	if err != nil {
		return nil, fmt.Errorf("list audit events by client: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT category, occurred_at, client_id, subject, action, reason, request_id, actor_id
		FROM audit_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			event    audit.Event
			category string
			clientID uuid.NullUUID
		)
		if err := rows.Scan(&category, &event.Timestamp, &clientID, &event.Subject,
			&event.Action, &event.Reason, &event.RequestID, &event.ActorID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if clientID.Valid {
			event.ClientID = id.ClientID(clientID.UUID)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
