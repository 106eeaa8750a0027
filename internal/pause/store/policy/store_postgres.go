package policy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"flowguard/internal/pause/models"
	id "flowguard/pkg/domain"
	"flowguard/pkg/platform/sentinel"
	"flowguard/pkg/requestcontext"
)

// PostgresStore persists pause policies in PostgreSQL.
// This store is pure I/O; validation and resolution belong in the services.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, policy *models.PausePolicy) error {
	now := requestcontext.Now(ctx)

	targets := make([]string, len(policy.TargetFlowIDs))
	for i, f := range policy.TargetFlowIDs {
		targets[i] = f.String()
	}
	channels := make([]string, len(policy.NotificationChannels))
	for i, c := range policy.NotificationChannels {
		channels[i] = string(c)
	}

	query := `
		INSERT INTO pause_policies (id, event_type, minimum_severity, action, target_flow_ids, notification_channels, auto_resume, pause_duration_days, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			event_type = EXCLUDED.event_type,
			minimum_severity = EXCLUDED.minimum_severity,
			action = EXCLUDED.action,
			target_flow_ids = EXCLUDED.target_flow_ids,
			notification_channels = EXCLUDED.notification_channels,
			auto_resume = EXCLUDED.auto_resume,
			pause_duration_days = EXCLUDED.pause_duration_days,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(policy.ID),
		string(policy.EventType),
		string(policy.MinimumSeverity),
		string(policy.Action),
		pq.Array(targets),
		pq.Array(channels),
		policy.AutoResume,
		policy.PauseDurationDays,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert pause policy: %w", err)
	}
	policy.UpdatedAt = now
	return nil
}

const policyColumns = `id, event_type, minimum_severity, action, target_flow_ids, notification_channels, auto_resume, pause_duration_days, updated_at`

func (s *PostgresStore) Get(ctx context.Context, policyID id.PolicyID) (*models.PausePolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM pause_policies WHERE id = $1`
	policy, err := scanPolicy(s.db.QueryRowContext(ctx, query, uuid.UUID(policyID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get pause policy: %w", err)
	}
	return policy, nil
}

func (s *PostgresStore) ListByEventType(ctx context.Context, eventType models.EventType) ([]*models.PausePolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM pause_policies WHERE event_type = $1`
	rows, err := s.db.QueryContext(ctx, query, string(eventType))
	if err != nil {
		return nil, fmt.Errorf("list pause policies by event type: %w", err)
	}
	defer rows.Close()
	return scanPolicies(rows)
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.PausePolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM pause_policies ORDER BY updated_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pause policies: %w", err)
	}
	defer rows.Close()
	return scanPolicies(rows)
}

func (s *PostgresStore) Delete(ctx context.Context, policyID id.PolicyID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM pause_policies WHERE id = $1`, uuid.UUID(policyID))
	if err != nil {
		return fmt.Errorf("delete pause policy: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete pause policy: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (*models.PausePolicy, error) {
	var (
		policy    models.PausePolicy
		policyID  uuid.UUID
		eventType string
		severity  string
		action    string
		targets   pq.StringArray
		channels  pq.StringArray
	)
	if err := row.Scan(&policyID, &eventType, &severity, &action, &targets, &channels,
		&policy.AutoResume, &policy.PauseDurationDays, &policy.UpdatedAt); err != nil {
		return nil, err
	}

	policy.ID = id.PolicyID(policyID)
	policy.EventType = models.EventType(eventType)
	policy.MinimumSeverity = models.Severity(severity)
	policy.Action = models.PolicyAction(action)

	for _, raw := range targets {
		flowID, err := id.ParseFlowID(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt target flow id %q: %w", raw, err)
		}
		policy.TargetFlowIDs = append(policy.TargetFlowIDs, flowID)
	}
	for _, raw := range channels {
		policy.NotificationChannels = append(policy.NotificationChannels, models.Channel(raw))
	}
	return &policy, nil
}

func scanPolicies(rows *sql.Rows) ([]*models.PausePolicy, error) {
	var out []*models.PausePolicy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pause policy: %w", err)
		}
		out = append(out, policy)
	}
	return out, rows.Err()
}
