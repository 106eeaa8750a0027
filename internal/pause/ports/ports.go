// Package ports defines shared interfaces for the pause feature.
// Interfaces are placed here when consumed by multiple services to avoid
// duplication; external collaborators (Flow Runner, Notifier) are interfaces
// only; their implementations live outside this module.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"flowguard/internal/pause/models"
	"flowguard/pkg/attrs"
	id "flowguard/pkg/domain"
	"flowguard/pkg/platform/audit"
	"flowguard/pkg/requestcontext"
)

// ErrFlowNotFound is reported by the Flow Runner when a flow id is unknown.
// Recoverable: the engine logs and skips that flow, never the whole batch.
var ErrFlowNotFound = errors.New("flow not found")

// FlowRunner is the external engine that actually executes automation flows.
type FlowRunner interface {
	PauseFlow(ctx context.Context, flowID id.FlowID) error
	ResumeFlow(ctx context.Context, flowID id.FlowID) error
	ListActiveFlows(ctx context.Context, clientID id.ClientID) ([]models.FlowRef, error)
}

// Notifier delivers the configured notification channels. Fire-and-forget
// from the engine's perspective: failures are logged, never propagated.
type Notifier interface {
	Notify(ctx context.Context, clientID id.ClientID, channels []models.Channel, message string) error
}

// AuditPublisher emits audit events for compliance-relevant operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// PolicyStore holds the configured pause policies.
type PolicyStore interface {
	// Upsert creates or replaces a policy and stamps UpdatedAt.
	Upsert(ctx context.Context, policy *models.PausePolicy) error

	// Get returns the policy or sentinel.ErrNotFound.
	Get(ctx context.Context, policyID id.PolicyID) (*models.PausePolicy, error)

	// ListByEventType returns all policies configured for an event type.
	ListByEventType(ctx context.Context, eventType models.EventType) ([]*models.PausePolicy, error)

	// List returns all configured policies.
	List(ctx context.Context) ([]*models.PausePolicy, error)

	// Delete removes a policy; sentinel.ErrNotFound when absent.
	Delete(ctx context.Context, policyID id.PolicyID) error
}

// Ledger is the flow pause ledger. All mutations go through the Pause Engine
// or the Resumption Scheduler, never through external callers.
type Ledger interface {
	// CreateRecord appends a new paused record. Fails with
	// sentinel.ErrConflict if the flow already has a paused record.
	CreateRecord(ctx context.Context, record *models.FlowPauseRecord) error

	// PausedRecordByFlow returns the currently paused record for a flow,
	// or sentinel.ErrNotFound.
	PausedRecordByFlow(ctx context.Context, flowID id.FlowID) (*models.FlowPauseRecord, error)

	// GetRecord returns a record by id, or sentinel.ErrNotFound.
	GetRecord(ctx context.Context, recordID id.RecordID) (*models.FlowPauseRecord, error)

	// MarkResumed transitions paused→resumed. Returns false (no error) when
	// the record is no longer paused; this compare-and-set closes the race
	// between a firing timer and a concurrent manual resume.
	MarkResumed(ctx context.Context, recordID id.RecordID, resumedAt time.Time, mode models.ResumeMode) (bool, error)

	// MarkCancelled transitions paused→cancelled (flow retired while paused).
	MarkCancelled(ctx context.Context, recordID id.RecordID, at time.Time) (bool, error)

	// ListPaused returns currently paused records, optionally filtered by
	// client (nil means all clients).
	ListPaused(ctx context.Context, clientID *id.ClientID) ([]*models.FlowPauseRecord, error)

	// RecordEvent stores a handled adverse event for the dashboard read model.
	RecordEvent(ctx context.Context, event *models.AdverseEvent) error

	// GetEvent returns a stored adverse event, or sentinel.ErrNotFound.
	GetEvent(ctx context.Context, eventID id.EventID) (*models.AdverseEvent, error)

	// UpdateEventStatus persists an operator status transition.
	UpdateEventStatus(ctx context.Context, event *models.AdverseEvent) error

	// ListEvents returns stored adverse events, optionally filtered by
	// client and status.
	ListEvents(ctx context.Context, clientID *id.ClientID, status *models.EventStatus) ([]*models.AdverseEvent, error)
}

// TimerStore persists resumption timers so pauses spanning days survive
// process restarts.
type TimerStore interface {
	// Schedule stores a timer.
	Schedule(ctx context.Context, timer *models.ResumeTimer) error

	// Due returns timers with fireAt <= now, ordered by fireAt.
	Due(ctx context.Context, now time.Time) ([]*models.ResumeTimer, error)

	// Complete removes a fired timer.
	Complete(ctx context.Context, timerID id.TimerID) error

	// CancelByRecord removes recordID from any pending timer, dropping
	// timers whose record set becomes empty. Cancelling an unknown record
	// is a no-op.
	CancelByRecord(ctx context.Context, recordID id.RecordID) error
}

// LogAudit writes a structured audit log line and emits the event to the
// audit publisher when one is wired. An "actor_id" attribute, when present,
// is promoted to the audit event's ActorID.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.AuditEvent, clientID id.ClientID, subject, reason string, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}
	args := append(attrList, "event", string(event), "log_type", "audit")

	if logger != nil {
		logger.InfoContext(ctx, string(event), args...)
	}

	if publisher == nil {
		return
	}
	_ = publisher.Emit(ctx, audit.Event{
		Category:  event.Category(),
		Timestamp: requestcontext.Now(ctx),
		ClientID:  clientID,
		Subject:   subject,
		Action:    string(event),
		Reason:    reason,
		RequestID: requestID,
		ActorID:   attrs.ExtractString(attrList, "actor_id"),
	})
}
