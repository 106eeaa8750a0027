// Package resolver selects the single applicable pause policy for an
// incoming adverse event. Pure lookup: no side effects, no mutation.
package resolver

import (
	"context"
	"errors"

	"flowguard/internal/pause/models"
	"flowguard/internal/pause/ports"
	dErrors "flowguard/pkg/domain-errors"
)

type Service struct {
	policies ports.PolicyStore
}

func New(policies ports.PolicyStore) (*Service, error) {
	if policies == nil {
		return nil, errors.New("policy store is required")
	}
	return &Service{policies: policies}, nil
}

// Resolve returns the policy whose minimum severity is the highest threshold
// not exceeding the event's severity: the tightest fit, not first match.
// Ties at the same threshold break to the most recently updated policy so
// resolution stays deterministic and explainable. Returns (nil, nil) when no
// policy matches; the caller treats that as "no automated action, log only".
func (s *Service) Resolve(ctx context.Context, eventType models.EventType, severity models.Severity) (*models.PausePolicy, error) {
	if !eventType.IsValid() || !severity.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event type and severity must be validated before resolution")
	}

	candidates, err := s.policies.ListByEventType(ctx, eventType)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list policies")
	}

	var best *models.PausePolicy
	for _, policy := range candidates {
		if !severity.AtLeast(policy.MinimumSeverity) {
			continue
		}
		if best == nil {
			best = policy
			continue
		}
		switch policy.MinimumSeverity.Compare(best.MinimumSeverity) {
		case 1:
			best = policy
		case 0:
			if policy.UpdatedAt.After(best.UpdatedAt) {
				best = policy
			}
		}
	}
	return best, nil
}
