package timer

import (
	"context"
	"sort"
	"sync"
	"time"

	"flowguard/internal/pause/models"
	id "flowguard/pkg/domain"
)

// InMemoryTimerStore keeps resumption timers in a map. Timers do not survive
// a restart with this store; production uses the Redis store.
type InMemoryTimerStore struct {
	mu     sync.RWMutex
	timers map[id.TimerID]*models.ResumeTimer
}

func New() *InMemoryTimerStore {
	return &InMemoryTimerStore{timers: make(map[id.TimerID]*models.ResumeTimer)}
}

func (s *InMemoryTimerStore) Schedule(_ context.Context, timer *models.ResumeTimer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *timer
	copied.RecordIDs = append([]id.RecordID(nil), timer.RecordIDs...)
	s.timers[timer.ID] = &copied
	return nil
}

func (s *InMemoryTimerStore) Due(_ context.Context, now time.Time) ([]*models.ResumeTimer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*models.ResumeTimer
	for _, timer := range s.timers {
		if !timer.FireAt.After(now) {
			copied := *timer
			copied.RecordIDs = append([]id.RecordID(nil), timer.RecordIDs...)
			due = append(due, &copied)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].FireAt.Before(due[j].FireAt) })
	return due, nil
}

func (s *InMemoryTimerStore) Complete(_ context.Context, timerID id.TimerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, timerID)
	return nil
}

func (s *InMemoryTimerStore) CancelByRecord(_ context.Context, recordID id.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for timerID, timer := range s.timers {
		remaining := timer.RecordIDs[:0]
		for _, r := range timer.RecordIDs {
			if r != recordID {
				remaining = append(remaining, r)
			}
		}
		timer.RecordIDs = remaining
		if len(timer.RecordIDs) == 0 {
			delete(s.timers, timerID)
		}
	}
	return nil
}

// Pending returns the number of stored timers. Test helper.
func (s *InMemoryTimerStore) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.timers)
}
