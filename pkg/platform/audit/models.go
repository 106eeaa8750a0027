package audit

import (
	"time"

	id "flowguard/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/clinical significance.
	// Pause and resume decisions for safety events require long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to operator access monitoring.
	// Examples: policy changes, admin access denials.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and visibility.
	// Examples: scheduler ticks, notification delivery failures.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	ClientID  id.ClientID
	// Subject identifies what the action applied to (flow id, policy id,
	// event id) as a string so one field serves all entity kinds.
	Subject   string
	Action    string
	Reason    string
	RequestID string
	// ActorID tracks the operator who performed the action, when the action
	// came from the dashboard rather than the engine itself.
	ActorID string
}

// AuditEvent names every action the service audits.
type AuditEvent string

const (
	// Engine events
	EventReceived           AuditEvent = "event_received"
	EventPolicyMatched      AuditEvent = "policy_matched"
	EventNoPolicyMatched    AuditEvent = "no_policy_matched"
	EventFlowPaused         AuditEvent = "flow_paused"
	EventFlowAlreadyPaused  AuditEvent = "flow_already_paused"
	EventFlowSkipped        AuditEvent = "flow_skipped"
	EventFlowCancelled      AuditEvent = "flow_cancelled"
	EventNotificationSent   AuditEvent = "notification_sent"
	EventNotificationFailed AuditEvent = "notification_failed"

	// Resume events
	EventResumeManual    AuditEvent = "resume_manual"
	EventResumeAutomatic AuditEvent = "resume_automatic"
	EventResumeEscalated AuditEvent = "resume_escalated"

	// Policy configuration events
	EventPolicyUpserted AuditEvent = "policy_upserted"
	EventPolicyDeleted  AuditEvent = "policy_deleted"

	// Adverse event lifecycle
	EventStatusChanged AuditEvent = "event_status_changed"
)

// eventCategories is the source of truth for routing and retention.
var eventCategories = map[AuditEvent]EventCategory{
	EventReceived:           CategoryCompliance,
	EventPolicyMatched:      CategoryCompliance,
	EventNoPolicyMatched:    CategoryCompliance,
	EventFlowPaused:         CategoryCompliance,
	EventFlowAlreadyPaused:  CategoryCompliance,
	EventFlowSkipped:        CategoryOperations,
	EventFlowCancelled:      CategoryCompliance,
	EventNotificationSent:   CategoryOperations,
	EventNotificationFailed: CategoryOperations,
	EventResumeManual:       CategoryCompliance,
	EventResumeAutomatic:    CategoryCompliance,
	EventResumeEscalated:    CategoryOperations,
	EventPolicyUpserted:     CategorySecurity,
	EventPolicyDeleted:      CategorySecurity,
	EventStatusChanged:      CategoryCompliance,
}

// Category returns the category for an audit event, defaulting to operations
// for unknown actions so nothing is silently dropped.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}
