package models

import (
	"time"

	id "flowguard/pkg/domain"
	dErrors "flowguard/pkg/domain-errors"
)

// Severity grades an adverse event. The four levels form a total order used
// for policy threshold comparisons.
type Severity string

const (
	SeverityLeve     Severity = "leve"
	SeverityModerada Severity = "moderada"
	SeverityGrave    Severity = "grave"
	SeverityCritica  Severity = "critica"
)

// severityRank defines the total order leve < moderada < grave < critica.
var severityRank = map[Severity]int{
	SeverityLeve:     1,
	SeverityModerada: 2,
	SeverityGrave:    3,
	SeverityCritica:  4,
}

// ParseSeverity validates a wire string against the closed severity set.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid severity %q: must be one of leve, moderada, grave, critica", s)
	}
	return sev, nil
}

// IsValid checks membership in the closed enum.
func (s Severity) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}

// Compare returns -1, 0 or 1 as a orders before, equal to, or after b.
// Both values must be valid; severity is validated at the boundary.
func (s Severity) Compare(other Severity) int {
	a, b := severityRank[s], severityRank[other]
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s meets a minimum threshold.
func (s Severity) AtLeast(min Severity) bool {
	return s.Compare(min) >= 0
}

func (s Severity) String() string { return string(s) }

// EventType classifies an adverse event.
type EventType string

const (
	EventTypeInjury           EventType = "injury"
	EventTypeMedicalIssue     EventType = "medical-issue"
	EventTypeContraindication EventType = "contraindication"
	EventTypeAllergy          EventType = "allergy"
	EventTypeIntolerance      EventType = "intolerance"
)

// ParseEventType validates a wire string against the closed event type set.
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid event type %q", s)
	}
	return t, nil
}

func (t EventType) IsValid() bool {
	switch t {
	case EventTypeInjury, EventTypeMedicalIssue, EventTypeContraindication, EventTypeAllergy, EventTypeIntolerance:
		return true
	}
	return false
}

func (t EventType) String() string { return string(t) }

// EventStatus is the operator-driven lifecycle of an adverse event.
type EventStatus string

const (
	EventStatusActive     EventStatus = "active"
	EventStatusMonitoring EventStatus = "monitoring"
	EventStatusResolved   EventStatus = "resolved"
)

func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusActive, EventStatusMonitoring, EventStatusResolved:
		return true
	}
	return false
}

// CanTransitionTo enforces active→monitoring→resolved; no skipping back.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	switch s {
	case EventStatusActive:
		return next == EventStatusMonitoring || next == EventStatusResolved
	case EventStatusMonitoring:
		return next == EventStatusResolved
	default:
		return false
	}
}

// PolicyAction is what a matched policy does.
type PolicyAction string

const (
	ActionNotifyOnly         PolicyAction = "notify-only"
	ActionPauseAllFlows      PolicyAction = "pause-all-flows"
	ActionPauseSpecificFlows PolicyAction = "pause-specific-flows"
	// ActionNone is reported in HandlingResult when no policy matched.
	// It is never a configured policy action.
	ActionNone PolicyAction = "none"
)

func (a PolicyAction) IsValid() bool {
	switch a {
	case ActionNotifyOnly, ActionPauseAllFlows, ActionPauseSpecificFlows:
		return true
	}
	return false
}

func (a PolicyAction) String() string { return string(a) }

// Channel is a notification delivery channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
	ChannelSMS   Channel = "sms"
)

func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelPush || c == ChannelSMS
}

// ParseChannels validates a list of wire strings into channels, rejecting
// duplicates and unknown names.
func ParseChannels(raw []string) ([]Channel, error) {
	seen := make(map[Channel]bool, len(raw))
	channels := make([]Channel, 0, len(raw))
	for _, r := range raw {
		c := Channel(r)
		if !c.IsValid() {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid notification channel %q", r)
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		channels = append(channels, c)
	}
	return channels, nil
}

// RecordState is the lifecycle of a flow pause ledger record.
type RecordState string

const (
	StatePaused    RecordState = "paused"
	StateResumed   RecordState = "resumed"
	StateCancelled RecordState = "cancelled"
)

// ResumeMode records how a pause was lifted.
type ResumeMode string

const (
	ResumeManual    ResumeMode = "manual"
	ResumeAutomatic ResumeMode = "automatic"
)

// AdverseEvent is an immutable record of a reported incident. Only Status
// and ResolvedAt change after creation, through explicit operator commands.
type AdverseEvent struct {
	ID          id.EventID  `json:"id"`
	ClientID    id.ClientID `json:"client_id"`
	Type        EventType   `json:"type"`
	Severity    Severity    `json:"severity"`
	ReportedAt  time.Time   `json:"reported_at"`
	Description string      `json:"description"`
	Status      EventStatus `json:"status"`
	ResolvedAt  *time.Time  `json:"resolved_at,omitempty"`
}

// NewAdverseEvent creates an AdverseEvent with domain invariant validation.
func NewAdverseEvent(clientID id.ClientID, eventType EventType, severity Severity, description string, reportedAt time.Time) (*AdverseEvent, error) {
	if clientID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client id is required")
	}
	if !eventType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid event type")
	}
	if !severity.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid severity")
	}
	if reportedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reported_at is required")
	}

	return &AdverseEvent{
		ID:          id.NewEventID(),
		ClientID:    clientID,
		Type:        eventType,
		Severity:    severity,
		ReportedAt:  reportedAt,
		Description: description,
		Status:      EventStatusActive,
	}, nil
}

// PausePolicy maps (event type, severity threshold) to an automated action.
type PausePolicy struct {
	ID                   id.PolicyID  `json:"id"`
	EventType            EventType    `json:"event_type"`
	MinimumSeverity      Severity     `json:"minimum_severity"`
	Action               PolicyAction `json:"action"`
	TargetFlowIDs        []id.FlowID  `json:"target_flow_ids,omitempty"`
	NotificationChannels []Channel    `json:"notification_channels"`
	AutoResume           bool         `json:"auto_resume"`
	PauseDurationDays    int          `json:"pause_duration_days,omitempty"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// Validate enforces policy configuration invariants. Runs once at upsert
// time, not scattered through callers.
func (p *PausePolicy) Validate() error {
	if p.ID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "policy id is required")
	}
	if !p.EventType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid event type")
	}
	if !p.MinimumSeverity.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid minimum severity")
	}
	if !p.Action.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid policy action")
	}
	if p.Action == ActionPauseSpecificFlows && len(p.TargetFlowIDs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "pause-specific-flows requires target flow ids")
	}
	if p.Action != ActionPauseSpecificFlows && len(p.TargetFlowIDs) > 0 {
		return dErrors.New(dErrors.CodeValidation, "target flow ids are only valid for pause-specific-flows")
	}
	if p.Action == ActionNotifyOnly && len(p.NotificationChannels) == 0 {
		return dErrors.New(dErrors.CodeValidation, "notify-only requires at least one notification channel")
	}
	for _, c := range p.NotificationChannels {
		if !c.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "invalid notification channel")
		}
	}
	if p.AutoResume && p.PauseDurationDays < 1 {
		return dErrors.New(dErrors.CodeValidation, "auto_resume requires pause_duration_days >= 1")
	}
	if !p.AutoResume && p.PauseDurationDays != 0 {
		return dErrors.New(dErrors.CodeValidation, "pause_duration_days is only valid with auto_resume")
	}
	return nil
}

// PauseDuration converts the configured days to a duration.
func (p *PausePolicy) PauseDuration() time.Duration {
	return time.Duration(p.PauseDurationDays) * 24 * time.Hour
}

// Targets reports whether the policy's specific-flow set contains flowID.
func (p *PausePolicy) Targets(flowID id.FlowID) bool {
	for _, t := range p.TargetFlowIDs {
		if t == flowID {
			return true
		}
	}
	return false
}

// FlowRef identifies an active flow as reported by the external Flow Runner.
type FlowRef struct {
	ID   id.FlowID `json:"id"`
	Name string    `json:"name"`
}

// FlowPauseRecord is the ledger entry: one per (flow, adverse event) pause.
// Records are never deleted; they are the audit trail.
type FlowPauseRecord struct {
	ID         id.RecordID `json:"id"`
	FlowID     id.FlowID   `json:"flow_id"`
	FlowName   string      `json:"flow_name"`
	EventID    id.EventID  `json:"event_id"`
	ClientID   id.ClientID `json:"client_id"`
	PausedAt   time.Time   `json:"paused_at"`
	ResumedAt  *time.Time  `json:"resumed_at,omitempty"`
	Reason     string      `json:"reason"`
	State      RecordState `json:"state"`
	ResumeMode ResumeMode  `json:"resume_mode,omitempty"`
}

// NewFlowPauseRecord creates a ledger record in paused state with domain
// invariant validation.
func NewFlowPauseRecord(flowID id.FlowID, flowName string, eventID id.EventID, clientID id.ClientID, reason string, pausedAt time.Time) (*FlowPauseRecord, error) {
	if flowID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "flow id is required")
	}
	if eventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "event id is required")
	}
	if clientID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client id is required")
	}
	if pausedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "paused_at is required")
	}

	return &FlowPauseRecord{
		ID:       id.NewRecordID(),
		FlowID:   flowID,
		FlowName: flowName,
		EventID:  eventID,
		ClientID: clientID,
		PausedAt: pausedAt,
		Reason:   reason,
		State:    StatePaused,
	}, nil
}

// IsPaused reports whether the record still holds its flow paused.
func (r *FlowPauseRecord) IsPaused() bool {
	return r.State == StatePaused
}

// ResumeTimer is a durable automatic-resumption timer. One timer covers all
// records created by a single handled event.
type ResumeTimer struct {
	ID        id.TimerID    `json:"id"`
	RecordIDs []id.RecordID `json:"record_ids"`
	FireAt    time.Time     `json:"fire_at"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewResumeTimer creates a timer with domain invariant validation.
func NewResumeTimer(recordIDs []id.RecordID, fireAt, createdAt time.Time) (*ResumeTimer, error) {
	if len(recordIDs) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "timer requires at least one record id")
	}
	if fireAt.IsZero() || !fireAt.After(createdAt) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "timer fire_at must be in the future")
	}

	return &ResumeTimer{
		ID:        id.NewTimerID(),
		RecordIDs: recordIDs,
		FireAt:    fireAt,
		CreatedAt: createdAt,
	}, nil
}

// HandlingResult reports what handling one adverse event did, including
// partial failures, so operators always see the full picture.
type HandlingResult struct {
	EventID            id.EventID   `json:"event_id"`
	Action             PolicyAction `json:"action"`
	PolicyID           *id.PolicyID `json:"policy_id,omitempty"`
	FlowsPaused        []id.FlowID  `json:"flows_paused"`
	FlowsAlreadyPaused []id.FlowID  `json:"flows_already_paused"`
	FlowsSkipped       []id.FlowID  `json:"flows_skipped"`
	Notified           bool         `json:"notified"`
	TimerID            *id.TimerID  `json:"timer_id,omitempty"`
}
