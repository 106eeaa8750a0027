// Package scheduler drives automatic resumption. It polls the durable timer
// store so pauses spanning days survive restarts, and resumes each flow with
// bounded retries before escalating to operators.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	pauseconfig "flowguard/internal/pause/config"
	"flowguard/internal/pause/metrics"
	"flowguard/internal/pause/models"
	"flowguard/internal/pause/ports"
	id "flowguard/pkg/domain"
	"flowguard/pkg/platform/audit"
	"flowguard/pkg/platform/sentinel"
	"flowguard/pkg/requestcontext"
)

type Scheduler struct {
	timers ports.TimerStore
	ledger ports.Ledger
	runner ports.FlowRunner
	cfg    pauseconfig.SchedulerConfig

	logger         *slog.Logger
	auditPublisher ports.AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Scheduler) { s.auditPublisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

func New(timers ports.TimerStore, ledger ports.Ledger, runner ports.FlowRunner, cfg pauseconfig.SchedulerConfig, opts ...Option) (*Scheduler, error) {
	if timers == nil {
		return nil, errors.New("timer store is required")
	}
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}
	if runner == nil {
		return nil, errors.New("flow runner is required")
	}

	s := &Scheduler{
		timers: timers,
		ledger: ledger,
		runner: runner,
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run polls for due timers until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "resumption scheduler started", "poll_interval", s.cfg.PollInterval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "resumption scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.logger.ErrorContext(ctx, "scheduler tick failed", "error", err)
			}
		}
	}
}

// Tick processes every timer due at the current time. Exported so the poll
// cadence and the firing logic can be driven independently.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := requestcontext.Now(ctx)
	due, err := s.timers.Due(ctx, now)
	if err != nil {
		return err
	}

	for _, timer := range due {
		for _, recordID := range timer.RecordIDs {
			s.fireRecord(ctx, recordID, now)
		}
		if err := s.timers.Complete(ctx, timer.ID); err != nil {
			s.logger.ErrorContext(ctx, "completing fired timer failed", "timer_id", timer.ID.String(), "error", err)
		}
	}
	return nil
}

// fireRecord resumes one paused record. The record state is re-read
// immediately before acting so a concurrent manual resume turns the firing
// into a no-op, and the ledger transition is a compare-and-set: only one of
// the two paths ever marks the record resumed.
func (s *Scheduler) fireRecord(ctx context.Context, recordID id.RecordID, now time.Time) {
	record, err := s.ledger.GetRecord(ctx, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return
		}
		s.logger.ErrorContext(ctx, "loading timer record failed", "record_id", recordID.String(), "error", err)
		return
	}
	if !record.IsPaused() {
		// Manually resumed or cancelled since the timer was scheduled.
		return
	}

	err = s.resumeWithRetry(ctx, record.FlowID)
	switch {
	case errors.Is(err, ports.ErrFlowNotFound):
		// Flow retired while paused; close the record instead of retrying
		// forever against a flow that no longer exists.
		if _, err := s.ledger.MarkCancelled(ctx, record.ID, now); err != nil {
			s.logger.ErrorContext(ctx, "cancelling record for retired flow failed", "record_id", record.ID.String(), "error", err)
			return
		}
		ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventFlowCancelled, record.ClientID, record.FlowID.String(), "flow retired while paused",
			"record_id", record.ID.String(),
		)
	case err != nil:
		s.escalate(ctx, record, err)
	default:
		ok, err := s.ledger.MarkResumed(ctx, record.ID, now, models.ResumeAutomatic)
		if err != nil {
			s.logger.ErrorContext(ctx, "marking record resumed failed", "record_id", record.ID.String(), "error", err)
			return
		}
		if !ok {
			return
		}
		if s.metrics != nil {
			s.metrics.IncrementFlowsResumed(string(models.ResumeAutomatic))
		}
		ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventResumeAutomatic, record.ClientID, record.FlowID.String(), "",
			"record_id", record.ID.String(),
		)
	}
}

// resumeWithRetry calls the runner with bounded exponential backoff.
// ErrFlowNotFound is terminal and returned immediately.
func (s *Scheduler) resumeWithRetry(ctx context.Context, flowID id.FlowID) error {
	var lastErr error
	delay := s.cfg.RetryBaseDelay
	for attempt := 1; attempt <= s.cfg.MaxResumeAttempts; attempt++ {
		lastErr = s.runner.ResumeFlow(ctx, flowID)
		if lastErr == nil || errors.Is(lastErr, ports.ErrFlowNotFound) {
			return lastErr
		}

		s.logger.WarnContext(ctx, "runner resume attempt failed",
			"flow_id", flowID.String(),
			"attempt", attempt,
			"error", lastErr,
		)
		if attempt == s.cfg.MaxResumeAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return lastErr
}

// escalate gives up on a record, leaving it paused for an operator.
func (s *Scheduler) escalate(ctx context.Context, record *models.FlowPauseRecord, cause error) {
	if s.metrics != nil {
		s.metrics.IncrementSchedulerEscalations()
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventResumeEscalated, record.ClientID, record.FlowID.String(), cause.Error(),
		"record_id", record.ID.String(),
		"attempts", s.cfg.MaxResumeAttempts,
	)
}
