package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"flowguard/internal/pause/models"
	id "flowguard/pkg/domain"
	"flowguard/pkg/platform/sentinel"
)

// InMemoryLedger keeps pause records and handled events in maps. It enforces
// the same invariant as the PostgreSQL store: at most one paused record per
// flow at any time.
type InMemoryLedger struct {
	mu      sync.RWMutex
	records map[id.RecordID]*models.FlowPauseRecord
	events  map[id.EventID]*models.AdverseEvent
}

func New() *InMemoryLedger {
	return &InMemoryLedger{
		records: make(map[id.RecordID]*models.FlowPauseRecord),
		events:  make(map[id.EventID]*models.AdverseEvent),
	}
}

func (s *InMemoryLedger) CreateRecord(_ context.Context, record *models.FlowPauseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.records {
		if existing.FlowID == record.FlowID && existing.IsPaused() {
			return sentinel.ErrConflict
		}
	}

	copied := *record
	s.records[record.ID] = &copied
	return nil
}

func (s *InMemoryLedger) PausedRecordByFlow(_ context.Context, flowID id.FlowID) (*models.FlowPauseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.records {
		if record.FlowID == flowID && record.IsPaused() {
			copied := *record
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryLedger) GetRecord(_ context.Context, recordID id.RecordID) (*models.FlowPauseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *InMemoryLedger) MarkResumed(_ context.Context, recordID id.RecordID, resumedAt time.Time, mode models.ResumeMode) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[recordID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if !record.IsPaused() {
		return false, nil
	}

	record.State = models.StateResumed
	record.ResumedAt = &resumedAt
	record.ResumeMode = mode
	return true, nil
}

func (s *InMemoryLedger) MarkCancelled(_ context.Context, recordID id.RecordID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[recordID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if !record.IsPaused() {
		return false, nil
	}

	record.State = models.StateCancelled
	record.ResumedAt = &at
	return true, nil
}

func (s *InMemoryLedger) ListPaused(_ context.Context, clientID *id.ClientID) ([]*models.FlowPauseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.FlowPauseRecord
	for _, record := range s.records {
		if !record.IsPaused() {
			continue
		}
		if clientID != nil && record.ClientID != *clientID {
			continue
		}
		copied := *record
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PausedAt.Before(out[j].PausedAt) })
	return out, nil
}

func (s *InMemoryLedger) RecordEvent(_ context.Context, event *models.AdverseEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *event
	s.events[event.ID] = &copied
	return nil
}

func (s *InMemoryLedger) GetEvent(_ context.Context, eventID id.EventID) (*models.AdverseEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *event
	return &copied, nil
}

func (s *InMemoryLedger) UpdateEventStatus(_ context.Context, event *models.AdverseEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.events[event.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored.Status = event.Status
	stored.ResolvedAt = event.ResolvedAt
	return nil
}

func (s *InMemoryLedger) ListEvents(_ context.Context, clientID *id.ClientID, status *models.EventStatus) ([]*models.AdverseEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.AdverseEvent
	for _, event := range s.events {
		if clientID != nil && event.ClientID != *clientID {
			continue
		}
		if status != nil && event.Status != *status {
			continue
		}
		copied := *event
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportedAt.Before(out[j].ReportedAt) })
	return out, nil
}

// AllRecords returns every ledger record regardless of state. Test helper;
// the ledger is append-mostly so this is the full audit trail.
func (s *InMemoryLedger) AllRecords() []*models.FlowPauseRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.FlowPauseRecord, 0, len(s.records))
	for _, record := range s.records {
		copied := *record
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PausedAt.Before(out[j].PausedAt) })
	return out
}
