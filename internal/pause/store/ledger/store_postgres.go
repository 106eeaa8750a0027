package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"flowguard/internal/pause/models"
	id "flowguard/pkg/domain"
	"flowguard/pkg/platform/sentinel"
	txcontext "flowguard/pkg/platform/tx"
)

// PostgresLedger persists the flow pause ledger in PostgreSQL. The partial
// unique index on (flow_id) WHERE state = 'paused' enforces the one-paused-
// record-per-flow invariant at the storage layer; MarkResumed uses a
// conditional UPDATE as the compare-and-set.
//
// Expected schema:
//
//	CREATE TABLE flow_pause_records (
//	    id UUID PRIMARY KEY,
//	    flow_id UUID NOT NULL,
//	    flow_name TEXT NOT NULL DEFAULT '',
//	    event_id UUID NOT NULL,
//	    client_id UUID NOT NULL,
//	    paused_at TIMESTAMPTZ NOT NULL,
//	    resumed_at TIMESTAMPTZ,
//	    reason TEXT NOT NULL DEFAULT '',
//	    state TEXT NOT NULL,
//	    resume_mode TEXT NOT NULL DEFAULT ''
//	);
//	CREATE UNIQUE INDEX flow_pause_records_one_paused
//	    ON flow_pause_records (flow_id) WHERE state = 'paused';
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresLedger) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresLedger) CreateRecord(ctx context.Context, record *models.FlowPauseRecord) error {
	query := `
		INSERT INTO flow_pause_records (id, flow_id, flow_name, event_id, client_id, paused_at, reason, state, resume_mode)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '')
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(record.ID),
		uuid.UUID(record.FlowID),
		record.FlowName,
		uuid.UUID(record.EventID),
		uuid.UUID(record.ClientID),
		record.PausedAt,
		record.Reason,
		string(record.State),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create pause record: %w", err)
	}
	return nil
}

const recordColumns = `id, flow_id, flow_name, event_id, client_id, paused_at, resumed_at, reason, state, resume_mode`

func (s *PostgresLedger) PausedRecordByFlow(ctx context.Context, flowID id.FlowID) (*models.FlowPauseRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM flow_pause_records WHERE flow_id = $1 AND state = 'paused'`
	record, err := scanRecord(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(flowID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get paused record by flow: %w", err)
	}
	return record, nil
}

func (s *PostgresLedger) GetRecord(ctx context.Context, recordID id.RecordID) (*models.FlowPauseRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM flow_pause_records WHERE id = $1`
	record, err := scanRecord(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(recordID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get pause record: %w", err)
	}
	return record, nil
}

func (s *PostgresLedger) MarkResumed(ctx context.Context, recordID id.RecordID, resumedAt time.Time, mode models.ResumeMode) (bool, error) {
	return s.transition(ctx, recordID, string(models.StateResumed), resumedAt, string(mode))
}

func (s *PostgresLedger) MarkCancelled(ctx context.Context, recordID id.RecordID, at time.Time) (bool, error) {
	return s.transition(ctx, recordID, string(models.StateCancelled), at, "")
}

// transition is the compare-and-set: the WHERE state = 'paused' clause makes
// concurrent timer-fire and manual-resume commute; only one of them wins.
func (s *PostgresLedger) transition(ctx context.Context, recordID id.RecordID, state string, at time.Time, mode string) (bool, error) {
	query := `
		UPDATE flow_pause_records
		SET state = $2, resumed_at = $3, resume_mode = $4
		WHERE id = $1 AND state = 'paused'
	`
	result, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(recordID), state, at, mode)
	if err != nil {
		return false, fmt.Errorf("transition pause record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition pause record: %w", err)
	}
	if affected == 0 {
		// Distinguish "not paused anymore" from "never existed".
		if _, getErr := s.GetRecord(ctx, recordID); getErr != nil {
			return false, getErr
		}
		return false, nil
	}
	return true, nil
}

func (s *PostgresLedger) ListPaused(ctx context.Context, clientID *id.ClientID) ([]*models.FlowPauseRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM flow_pause_records WHERE state = 'paused'`
	args := []any{}
	if clientID != nil {
		query += ` AND client_id = $1`
		args = append(args, uuid.UUID(*clientID))
	}
	query += ` ORDER BY paused_at ASC`

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list paused records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresLedger) RecordEvent(ctx context.Context, event *models.AdverseEvent) error {
	query := `
		INSERT INTO adverse_events (id, client_id, event_type, severity, reported_at, description, status, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(event.ID),
		uuid.UUID(event.ClientID),
		string(event.Type),
		string(event.Severity),
		event.ReportedAt,
		event.Description,
		string(event.Status),
		event.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("record adverse event: %w", err)
	}
	return nil
}

const eventColumns = `id, client_id, event_type, severity, reported_at, description, status, resolved_at`

func (s *PostgresLedger) GetEvent(ctx context.Context, eventID id.EventID) (*models.AdverseEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM adverse_events WHERE id = $1`
	event, err := scanEvent(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(eventID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get adverse event: %w", err)
	}
	return event, nil
}

func (s *PostgresLedger) UpdateEventStatus(ctx context.Context, event *models.AdverseEvent) error {
	query := `UPDATE adverse_events SET status = $2, resolved_at = $3 WHERE id = $1`
	result, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(event.ID), string(event.Status), event.ResolvedAt)
	if err != nil {
		return fmt.Errorf("update adverse event status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update adverse event status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresLedger) ListEvents(ctx context.Context, clientID *id.ClientID, status *models.EventStatus) ([]*models.AdverseEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM adverse_events WHERE 1=1`
	var args []any
	if clientID != nil {
		args = append(args, uuid.UUID(*clientID))
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if status != nil {
		args = append(args, string(*status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += ` ORDER BY reported_at ASC`

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list adverse events: %w", err)
	}
	defer rows.Close()

	var out []*models.AdverseEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan adverse event: %w", err)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.FlowPauseRecord, error) {
	var (
		record     models.FlowPauseRecord
		recordID   uuid.UUID
		flowID     uuid.UUID
		eventID    uuid.UUID
		clientID   uuid.UUID
		resumedAt  sql.NullTime
		state      string
		resumeMode string
	)
	if err := row.Scan(&recordID, &flowID, &record.FlowName, &eventID, &clientID,
		&record.PausedAt, &resumedAt, &record.Reason, &state, &resumeMode); err != nil {
		return nil, err
	}

	record.ID = id.RecordID(recordID)
	record.FlowID = id.FlowID(flowID)
	record.EventID = id.EventID(eventID)
	record.ClientID = id.ClientID(clientID)
	record.State = models.RecordState(state)
	record.ResumeMode = models.ResumeMode(resumeMode)
	if resumedAt.Valid {
		t := resumedAt.Time
		record.ResumedAt = &t
	}
	return &record, nil
}

func scanRecords(rows *sql.Rows) ([]*models.FlowPauseRecord, error) {
	var out []*models.FlowPauseRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pause record: %w", err)
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func scanEvent(row rowScanner) (*models.AdverseEvent, error) {
	var (
		event      models.AdverseEvent
		eventID    uuid.UUID
		clientID   uuid.UUID
		eventType  string
		severity   string
		status     string
		resolvedAt sql.NullTime
	)
	if err := row.Scan(&eventID, &clientID, &eventType, &severity,
		&event.ReportedAt, &event.Description, &status, &resolvedAt); err != nil {
		return nil, err
	}

	event.ID = id.EventID(eventID)
	event.ClientID = id.ClientID(clientID)
	event.Type = models.EventType(eventType)
	event.Severity = models.Severity(severity)
	event.Status = models.EventStatus(status)
	if resolvedAt.Valid {
		t := resolvedAt.Time
		event.ResolvedAt = &t
	}
	return &event, nil
}

// isUniqueViolation detects the partial unique index trip, which is how the
// database reports a second concurrent pause for the same flow.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
