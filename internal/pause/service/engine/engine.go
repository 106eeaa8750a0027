// Package engine implements the pause engine: the single write path for the
// flow pause ledger. It reacts to adverse events by resolving the configured
// policy, pausing the affected automation flows through the external Flow
// Runner, and scheduling automatic resumption when the policy asks for it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	pauseconfig "flowguard/internal/pause/config"
	"flowguard/internal/pause/metrics"
	"flowguard/internal/pause/models"
	"flowguard/internal/pause/ports"
	id "flowguard/pkg/domain"
	dErrors "flowguard/pkg/domain-errors"
	"flowguard/pkg/platform/audit"
	"flowguard/pkg/platform/sentinel"
	"flowguard/pkg/requestcontext"
)

// PolicyResolver selects the policy governing an adverse event, or nil when
// no policy applies.
type PolicyResolver interface {
	Resolve(ctx context.Context, eventType models.EventType, severity models.Severity) (*models.PausePolicy, error)
}

// Engine handles adverse events and owns all ledger mutations except the
// scheduler's automatic resumptions.
type Engine struct {
	ledger   ports.Ledger
	resolver PolicyResolver
	runner   ports.FlowRunner
	notifier ports.Notifier
	timers   ports.TimerStore
	cfg      pauseconfig.EngineConfig

	logger         *slog.Logger
	auditPublisher ports.AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer

	// clientLocks serializes handling per client so overlapping events for
	// the same client never interleave. Different clients proceed in
	// parallel.
	mu          sync.Mutex
	clientLocks map[id.ClientID]*sync.Mutex
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(e *Engine) { e.auditPublisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func New(ledger ports.Ledger, resolver PolicyResolver, runner ports.FlowRunner, notifier ports.Notifier, timers ports.TimerStore, cfg pauseconfig.EngineConfig, opts ...Option) (*Engine, error) {
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}
	if resolver == nil {
		return nil, errors.New("policy resolver is required")
	}
	if runner == nil {
		return nil, errors.New("flow runner is required")
	}
	if timers == nil {
		return nil, errors.New("timer store is required")
	}

	e := &Engine{
		ledger:      ledger,
		resolver:    resolver,
		runner:      runner,
		notifier:    notifier,
		timers:      timers,
		cfg:         cfg,
		logger:      slog.Default(),
		tracer:      otel.Tracer("flowguard.pause.engine"),
		clientLocks: make(map[id.ClientID]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// lockClient returns the per-client mutex, creating it on first use.
func (e *Engine) lockClient(clientID id.ClientID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.clientLocks[clientID]
	if !ok {
		lock = &sync.Mutex{}
		e.clientLocks[clientID] = lock
	}
	return lock
}

// Handle processes one adverse event end to end: record, resolve, pause,
// notify, schedule. Partial flow failures never abort the batch; they are
// reported in the result.
func (e *Engine) Handle(ctx context.Context, event *models.AdverseEvent) (*models.HandlingResult, error) {
	if event == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event is required")
	}

	ctx, span := e.tracer.Start(ctx, "pause_engine.handle")
	defer span.End()
	span.SetAttributes(
		attribute.String("event.id", event.ID.String()),
		attribute.String("event.type", event.Type.String()),
		attribute.String("event.severity", event.Severity.String()),
	)

	lock := e.lockClient(event.ClientID)
	lock.Lock()
	defer lock.Unlock()

	if err := e.ledger.RecordEvent(ctx, event); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "recording adverse event")
	}
	ports.LogAudit(ctx, e.logger, e.auditPublisher, audit.EventReceived, event.ClientID, event.ID.String(), event.Description,
		"event_type", event.Type.String(),
		"severity", event.Severity.String(),
	)

	result := &models.HandlingResult{
		EventID:            event.ID,
		Action:             models.ActionNone,
		FlowsPaused:        []id.FlowID{},
		FlowsAlreadyPaused: []id.FlowID{},
		FlowsSkipped:       []id.FlowID{},
	}

	policy, err := e.resolver.Resolve(ctx, event.Type, event.Severity)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		ports.LogAudit(ctx, e.logger, e.auditPublisher, audit.EventNoPolicyMatched, event.ClientID, event.ID.String(), "",
			"event_type", event.Type.String(),
			"severity", event.Severity.String(),
		)
		e.countHandled(result.Action)
		return result, nil
	}

	result.Action = policy.Action
	result.PolicyID = &policy.ID
	span.SetAttributes(attribute.String("policy.action", policy.Action.String()))
	ports.LogAudit(ctx, e.logger, e.auditPublisher, audit.EventPolicyMatched, event.ClientID, event.ID.String(), "",
		"policy_id", policy.ID.String(),
		"action", policy.Action.String(),
	)

	if policy.Action != models.ActionNotifyOnly {
		if err := e.pauseAffectedFlows(ctx, event, policy, result); err != nil {
			return nil, err
		}
	}

	result.Notified = e.notify(ctx, event, policy)

	e.countHandled(result.Action)
	return result, nil
}

// pauseAffectedFlows computes the affected set for the policy and pauses each
// flow through the runner, creating one ledger record per newly paused flow.
func (e *Engine) pauseAffectedFlows(ctx context.Context, event *models.AdverseEvent, policy *models.PausePolicy, result *models.HandlingResult) error {
	affected, err := e.affectedFlows(ctx, event.ClientID, policy)
	if err != nil {
		return err
	}

	reason := fmt.Sprintf("%s adverse event (%s)", event.Severity, event.Type)
	now := requestcontext.Now(ctx)
	var newRecords []id.RecordID

	for _, flow := range affected {
		if _, err := e.ledger.PausedRecordByFlow(ctx, flow.ID); err == nil {
			// Already paused by an earlier event. The new event is still
			// recorded and audited, but the existing pause stands.
			result.FlowsAlreadyPaused = append(result.FlowsAlreadyPaused, flow.ID)
			ports.LogAudit(ctx, e.logger, e.auditPublisher, audit.EventFlowAlreadyPaused, event.ClientID, flow.ID.String(), reason,
				"event_id", event.ID.String(),
			)
			continue
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "checking paused record")
		}

		recordID, err := e.pauseOne(ctx, event, flow, reason, now)
		if err != nil {
			result.FlowsSkipped = append(result.FlowsSkipped, flow.ID)
			ports.LogAudit(ctx, e.logger, e.auditPublisher, audit.EventFlowSkipped, event.ClientID, flow.ID.String(), err.Error(),
				"event_id", event.ID.String(),
			)
			continue
		}

		result.FlowsPaused = append(result.FlowsPaused, flow.ID)
		newRecords = append(newRecords, recordID)
		ports.LogAudit(ctx, e.logger, e.auditPublisher, audit.EventFlowPaused, event.ClientID, flow.ID.String(), reason,
			"event_id", event.ID.String(),
			"record_id", recordID.String(),
		)
	}

	if e.metrics != nil && len(newRecords) > 0 {
		e.metrics.IncrementFlowsPaused(len(newRecords))
	}

	if policy.AutoResume && len(newRecords) > 0 {
		timer, err := models.NewResumeTimer(newRecords, now.Add(policy.PauseDuration()), now)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "building resume timer")
		}
		if err := e.timers.Schedule(ctx, timer); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "scheduling resume timer")
		}
		result.TimerID = &timer.ID
	}

	return nil
}

// affectedFlows resolves the policy action into the concrete set of flows to
// pause: all of the client's active flows, or the intersection of those with
// the policy's target list.
func (e *Engine) affectedFlows(ctx context.Context, clientID id.ClientID, policy *models.PausePolicy) ([]models.FlowRef, error) {
	runnerCtx, cancel := context.WithTimeout(ctx, e.cfg.RunnerTimeout)
	defer cancel()

	active, err := e.runner.ListActiveFlows(runnerCtx, clientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "listing active flows")
	}

	if policy.Action == models.ActionPauseAllFlows {
		return active, nil
	}

	targeted := make([]models.FlowRef, 0, len(policy.TargetFlowIDs))
	for _, flow := range active {
		if policy.Targets(flow.ID) {
			targeted = append(targeted, flow)
		}
	}
	return targeted, nil
}

// pauseOne pauses a single flow and records it in the ledger as an atomic
// unit: a ledger failure after a successful runner pause triggers a
// compensating resume so runner and ledger never disagree.
func (e *Engine) pauseOne(ctx context.Context, event *models.AdverseEvent, flow models.FlowRef, reason string, now time.Time) (id.RecordID, error) {
	runnerCtx, cancel := context.WithTimeout(ctx, e.cfg.RunnerTimeout)
	defer cancel()

	if err := e.runner.PauseFlow(runnerCtx, flow.ID); err != nil {
		if errors.Is(err, ports.ErrFlowNotFound) {
			return id.RecordID{}, fmt.Errorf("flow not known to runner: %w", err)
		}
		return id.RecordID{}, fmt.Errorf("runner pause failed: %w", err)
	}

	record, err := models.NewFlowPauseRecord(flow.ID, flow.Name, event.ID, event.ClientID, reason, now)
	if err != nil {
		e.compensateResume(ctx, flow.ID)
		return id.RecordID{}, err
	}

	if err := e.ledger.CreateRecord(ctx, record); err != nil {
		e.compensateResume(ctx, flow.ID)
		return id.RecordID{}, fmt.Errorf("ledger create failed: %w", err)
	}
	return record.ID, nil
}

// compensateResume undoes a runner pause whose ledger record could not be
// written. Best effort: a failure here is logged for operators.
func (e *Engine) compensateResume(ctx context.Context, flowID id.FlowID) {
	runnerCtx, cancel := context.WithTimeout(ctx, e.cfg.RunnerTimeout)
	defer cancel()

	if err := e.runner.ResumeFlow(runnerCtx, flowID); err != nil {
		e.logger.ErrorContext(ctx, "compensating resume failed; runner and ledger may disagree",
			"flow_id", flowID.String(),
			"error", err,
		)
	}
}

// notify dispatches the policy's notification channels. Failures are logged
// and counted but never fail the handling.
func (e *Engine) notify(ctx context.Context, event *models.AdverseEvent, policy *models.PausePolicy) bool {
	if e.notifier == nil || len(policy.NotificationChannels) == 0 {
		return false
	}

	notifyCtx, cancel := context.WithTimeout(ctx, e.cfg.NotifierTimeout)
	defer cancel()

	message := fmt.Sprintf("Adverse event reported: %s (%s). Automated action: %s.", event.Type, event.Severity, policy.Action)
	if err := e.notifier.Notify(notifyCtx, event.ClientID, policy.NotificationChannels, message); err != nil {
		if e.metrics != nil {
			e.metrics.IncrementNotificationFailures()
		}
		ports.LogAudit(ctx, e.logger, e.auditPublisher, audit.EventNotificationFailed, event.ClientID, event.ID.String(), err.Error())
		return false
	}

	ports.LogAudit(ctx, e.logger, e.auditPublisher, audit.EventNotificationSent, event.ClientID, event.ID.String(), "",
		"channels", channelNames(policy.NotificationChannels),
	)
	return true
}

func channelNames(channels []models.Channel) []string {
	names := make([]string, len(channels))
	for i, c := range channels {
		names[i] = string(c)
	}
	return names
}

func (e *Engine) countHandled(action models.PolicyAction) {
	if e.metrics != nil {
		e.metrics.IncrementEventsHandled(action.String())
	}
}

// ResumeManually lifts a pause at an operator's request. The runner is
// resumed first; the ledger record transitions only after the runner call
// succeeds, so a runner failure leaves the flow verifiably paused.
func (e *Engine) ResumeManually(ctx context.Context, flowID id.FlowID) (*models.FlowPauseRecord, error) {
	record, err := e.ledger.PausedRecordByFlow(ctx, flowID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeConflict, "flow is not paused")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "looking up paused record")
	}

	lock := e.lockClient(record.ClientID)
	lock.Lock()
	defer lock.Unlock()

	runnerCtx, cancel := context.WithTimeout(ctx, e.cfg.RunnerTimeout)
	defer cancel()
	if err := e.runner.ResumeFlow(runnerCtx, flowID); err != nil && !errors.Is(err, ports.ErrFlowNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "runner resume failed")
	}

	now := requestcontext.Now(ctx)
	ok, err := e.ledger.MarkResumed(ctx, record.ID, now, models.ResumeManual)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "marking record resumed")
	}
	if !ok {
		// Lost the race to an automatic resumption; nothing left to do.
		return nil, dErrors.New(dErrors.CodeConflict, "flow is not paused")
	}

	if err := e.timers.CancelByRecord(ctx, record.ID); err != nil {
		e.logger.WarnContext(ctx, "cancelling resume timer failed", "record_id", record.ID.String(), "error", err)
	}

	if e.metrics != nil {
		e.metrics.IncrementFlowsResumed(string(models.ResumeManual))
	}
	ports.LogAudit(ctx, e.logger, e.auditPublisher, audit.EventResumeManual, record.ClientID, flowID.String(), "",
		"record_id", record.ID.String(),
	)

	resumed := *record
	resumed.State = models.StateResumed
	resumed.ResumedAt = &now
	resumed.ResumeMode = models.ResumeManual
	return &resumed, nil
}

// CancelFlow closes a paused record for a flow retired while paused. The
// runner is not called: the flow no longer exists there.
func (e *Engine) CancelFlow(ctx context.Context, flowID id.FlowID) (*models.FlowPauseRecord, error) {
	record, err := e.ledger.PausedRecordByFlow(ctx, flowID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeConflict, "flow is not paused")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "looking up paused record")
	}

	lock := e.lockClient(record.ClientID)
	lock.Lock()
	defer lock.Unlock()

	now := requestcontext.Now(ctx)
	ok, err := e.ledger.MarkCancelled(ctx, record.ID, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "marking record cancelled")
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeConflict, "flow is not paused")
	}

	if err := e.timers.CancelByRecord(ctx, record.ID); err != nil {
		e.logger.WarnContext(ctx, "cancelling resume timer failed", "record_id", record.ID.String(), "error", err)
	}

	ports.LogAudit(ctx, e.logger, e.auditPublisher, audit.EventFlowCancelled, record.ClientID, flowID.String(), "",
		"record_id", record.ID.String(),
	)

	cancelled := *record
	cancelled.State = models.StateCancelled
	cancelled.ResumedAt = &now
	return &cancelled, nil
}

// ListPausedFlows returns the flows currently held paused, optionally
// filtered by client.
func (e *Engine) ListPausedFlows(ctx context.Context, clientID *id.ClientID) ([]*models.FlowPauseRecord, error) {
	records, err := e.ledger.ListPaused(ctx, clientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "listing paused flows")
	}
	return records, nil
}

// ListEvents returns stored adverse events for the dashboard.
func (e *Engine) ListEvents(ctx context.Context, clientID *id.ClientID, status *models.EventStatus) ([]*models.AdverseEvent, error) {
	events, err := e.ledger.ListEvents(ctx, clientID, status)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "listing events")
	}
	return events, nil
}

// UpdateEventStatus applies an operator lifecycle transition to a stored
// event, enforcing active→monitoring→resolved ordering.
func (e *Engine) UpdateEventStatus(ctx context.Context, eventID id.EventID, next models.EventStatus) (*models.AdverseEvent, error) {
	if !next.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid event status")
	}

	event, err := e.ledger.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "loading event")
	}

	if !event.Status.CanTransitionTo(next) {
		return nil, dErrors.Newf(dErrors.CodeConflict, "cannot transition event from %s to %s", event.Status, next)
	}

	event.Status = next
	if next == models.EventStatusResolved {
		now := requestcontext.Now(ctx)
		event.ResolvedAt = &now
	}

	if err := e.ledger.UpdateEventStatus(ctx, event); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "updating event status")
	}

	ports.LogAudit(ctx, e.logger, e.auditPublisher, audit.EventStatusChanged, event.ClientID, event.ID.String(), "",
		"status", string(next),
	)
	return event, nil
}
