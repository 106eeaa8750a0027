package models

import (
	"time"

	id "flowguard/pkg/domain"
	dErrors "flowguard/pkg/domain-errors"
	platformstrings "flowguard/pkg/platform/strings"
)

// SubmitEventRequest is the ingestion payload for a reported adverse event.
// Enums arrive as strings matching the closed sets and are validated here,
// before anything reaches the engine.
type SubmitEventRequest struct {
	ClientID    string `json:"client_id"`
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// ToEvent validates the request and builds the domain event.
func (r *SubmitEventRequest) ToEvent(now time.Time) (*AdverseEvent, error) {
	clientID, err := id.ParseClientID(r.ClientID)
	if err != nil {
		return nil, err
	}
	eventType, err := ParseEventType(r.Type)
	if err != nil {
		return nil, err
	}
	severity, err := ParseSeverity(r.Severity)
	if err != nil {
		return nil, err
	}
	return NewAdverseEvent(clientID, eventType, severity, r.Description, now)
}

// UpsertPolicyRequest creates or replaces a pause policy. ID is optional on
// create; when present the policy with that id is replaced.
type UpsertPolicyRequest struct {
	ID                   string   `json:"id,omitempty"`
	EventType            string   `json:"event_type"`
	MinimumSeverity      string   `json:"minimum_severity"`
	Action               string   `json:"action"`
	TargetFlowIDs        []string `json:"target_flow_ids,omitempty"`
	NotificationChannels []string `json:"notification_channels"`
	AutoResume           bool     `json:"auto_resume"`
	PauseDurationDays    int      `json:"pause_duration_days,omitempty"`
}

// ToPolicy validates the request and builds the domain policy. Full
// validation (cross-field rules) happens in PausePolicy.Validate.
func (r *UpsertPolicyRequest) ToPolicy() (*PausePolicy, error) {
	policyID := id.NewPolicyID()
	if r.ID != "" {
		var err error
		policyID, err = id.ParsePolicyID(r.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid policy id")
		}
	}

	rawTargets := platformstrings.DedupeAndTrimLower(r.TargetFlowIDs)
	targets := make([]id.FlowID, 0, len(rawTargets))
	for _, raw := range rawTargets {
		flowID, err := id.ParseFlowID(raw)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid target flow id")
		}
		targets = append(targets, flowID)
	}
	if len(targets) == 0 {
		targets = nil
	}

	channels, err := ParseChannels(platformstrings.DedupeAndTrimLower(r.NotificationChannels))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid notification channels")
	}

	policy := &PausePolicy{
		ID:                   policyID,
		EventType:            EventType(r.EventType),
		MinimumSeverity:      Severity(r.MinimumSeverity),
		Action:               PolicyAction(r.Action),
		TargetFlowIDs:        targets,
		NotificationChannels: channels,
		AutoResume:           r.AutoResume,
		PauseDurationDays:    r.PauseDurationDays,
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

// UpdateEventStatusRequest transitions an adverse event's lifecycle status.
type UpdateEventStatusRequest struct {
	Status string `json:"status"`
}
