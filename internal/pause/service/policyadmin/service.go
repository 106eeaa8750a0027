// Package policyadmin manages the configured pause policies. Validation
// happens here, once, at upsert time; the resolver and engine can then
// trust every stored policy.
package policyadmin

import (
	"context"
	"errors"
	"log/slog"

	"flowguard/internal/pause/models"
	"flowguard/internal/pause/ports"
	id "flowguard/pkg/domain"
	dErrors "flowguard/pkg/domain-errors"
	"flowguard/pkg/platform/audit"
	"flowguard/pkg/platform/sentinel"
	"flowguard/pkg/requestcontext"
)

type Service struct {
	policies       ports.PolicyStore
	auditPublisher ports.AuditPublisher
	logger         *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func New(policies ports.PolicyStore, opts ...Option) (*Service, error) {
	if policies == nil {
		return nil, errors.New("policy store is required")
	}

	svc := &Service{policies: policies}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Upsert validates and stores a policy. Existing FlowPauseRecords are
// unaffected by policy edits; records reference the event, not the policy.
func (s *Service) Upsert(ctx context.Context, policy *models.PausePolicy) error {
	if policy == nil {
		return dErrors.New(dErrors.CodeValidation, "policy is required")
	}
	if err := policy.Validate(); err != nil {
		return err
	}

	if err := s.policies.Upsert(ctx, policy); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store policy")
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventPolicyUpserted, id.ClientID{}, policy.ID.String(), "",
		"event_type", policy.EventType.String(),
		"minimum_severity", policy.MinimumSeverity.String(),
		"action", policy.Action.String(),
		"actor_id", requestcontext.Actor(ctx),
	)
	return nil
}

// List returns all configured policies.
func (s *Service) List(ctx context.Context) ([]*models.PausePolicy, error) {
	policies, err := s.policies.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list policies")
	}
	return policies, nil
}

// Delete removes a policy. Flows paused under it stay paused; their records
// and timers reference the event that caused the pause.
func (s *Service) Delete(ctx context.Context, policyID id.PolicyID) error {
	if err := s.policies.Delete(ctx, policyID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "policy not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete policy")
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventPolicyDeleted, id.ClientID{}, policyID.String(), "",
		"actor_id", requestcontext.Actor(ctx),
	)
	return nil
}
