package policy

import (
	"context"
	"sync"

	"flowguard/internal/pause/models"
	id "flowguard/pkg/domain"
	"flowguard/pkg/platform/sentinel"
	"flowguard/pkg/requestcontext"
)

// InMemoryPolicyStore holds policies in a map. Single-node dev and tests;
// production uses the PostgreSQL store.
type InMemoryPolicyStore struct {
	mu       sync.RWMutex
	policies map[id.PolicyID]*models.PausePolicy
}

func New() *InMemoryPolicyStore {
	return &InMemoryPolicyStore{policies: make(map[id.PolicyID]*models.PausePolicy)}
}

func (s *InMemoryPolicyStore) Upsert(ctx context.Context, policy *models.PausePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *policy
	stored.UpdatedAt = requestcontext.Now(ctx)
	s.policies[policy.ID] = &stored
	policy.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *InMemoryPolicyStore) Get(_ context.Context, policyID id.PolicyID) (*models.PausePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	policy, ok := s.policies[policyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *policy
	return &copied, nil
}

func (s *InMemoryPolicyStore) ListByEventType(_ context.Context, eventType models.EventType) ([]*models.PausePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.PausePolicy
	for _, policy := range s.policies {
		if policy.EventType == eventType {
			copied := *policy
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemoryPolicyStore) List(_ context.Context) ([]*models.PausePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.PausePolicy, 0, len(s.policies))
	for _, policy := range s.policies {
		copied := *policy
		out = append(out, &copied)
	}
	return out, nil
}

func (s *InMemoryPolicyStore) Delete(_ context.Context, policyID id.PolicyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[policyID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.policies, policyID)
	return nil
}
