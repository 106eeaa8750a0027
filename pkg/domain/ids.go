// Package domain holds typed identifiers and small domain primitives shared
// across the module. Typed UUIDs prevent cross-entity id mixups at compile
// time; parse constructors enforce validity at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "flowguard/pkg/domain-errors"
)

// Typed identifiers. Distinct types so a FlowID can never be passed where a
// ClientID is expected.
type (
	// ClientID identifies the person whose automation flows we manage.
	ClientID uuid.UUID
	// FlowID identifies a single automation flow instance.
	FlowID uuid.UUID
	// EventID identifies a reported adverse event.
	EventID uuid.UUID
	// PolicyID identifies a configured pause policy.
	PolicyID uuid.UUID
	// RecordID identifies a flow pause ledger record.
	RecordID uuid.UUID
	// TimerID identifies a scheduled resumption timer.
	TimerID uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id cannot be empty", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s id: must be a UUID", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id cannot be the nil UUID", kind)
	}
	return u, nil
}

// ParseClientID validates and returns a ClientID.
func ParseClientID(s string) (ClientID, error) {
	u, err := parseUUID(s, "client")
	return ClientID(u), err
}

// ParseFlowID validates and returns a FlowID.
func ParseFlowID(s string) (FlowID, error) {
	u, err := parseUUID(s, "flow")
	return FlowID(u), err
}

// ParseEventID validates and returns an EventID.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event")
	return EventID(u), err
}

// ParsePolicyID validates and returns a PolicyID.
func ParsePolicyID(s string) (PolicyID, error) {
	u, err := parseUUID(s, "policy")
	return PolicyID(u), err
}

// ParseRecordID validates and returns a RecordID.
func ParseRecordID(s string) (RecordID, error) {
	u, err := parseUUID(s, "record")
	return RecordID(u), err
}

// ParseTimerID validates and returns a TimerID.
func ParseTimerID(s string) (TimerID, error) {
	u, err := parseUUID(s, "timer")
	return TimerID(u), err
}

// NewClientID generates a fresh ClientID.
func NewClientID() ClientID { return ClientID(uuid.New()) }

// NewFlowID generates a fresh FlowID.
func NewFlowID() FlowID { return FlowID(uuid.New()) }

// NewEventID generates a fresh EventID.
func NewEventID() EventID { return EventID(uuid.New()) }

// NewPolicyID generates a fresh PolicyID.
func NewPolicyID() PolicyID { return PolicyID(uuid.New()) }

// NewRecordID generates a fresh RecordID.
func NewRecordID() RecordID { return RecordID(uuid.New()) }

// NewTimerID generates a fresh TimerID.
func NewTimerID() TimerID { return TimerID(uuid.New()) }

func (id ClientID) String() string { return uuid.UUID(id).String() }
func (id FlowID) String() string   { return uuid.UUID(id).String() }
func (id EventID) String() string  { return uuid.UUID(id).String() }
func (id PolicyID) String() string { return uuid.UUID(id).String() }
func (id RecordID) String() string { return uuid.UUID(id).String() }
func (id TimerID) String() string  { return uuid.UUID(id).String() }

// MarshalText renders the id as its canonical UUID string so JSON (and any
// other text-based encoding) carries "d2f0..." rather than a byte array.
func (id ClientID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id FlowID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id EventID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id PolicyID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id RecordID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id TimerID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

func (id *ClientID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *FlowID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *EventID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *PolicyID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *RecordID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *TimerID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }

func (id ClientID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id FlowID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id PolicyID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RecordID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TimerID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
