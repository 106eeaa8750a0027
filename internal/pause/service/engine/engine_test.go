package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	pauseconfig "flowguard/internal/pause/config"
	"flowguard/internal/pause/models"
	"flowguard/internal/pause/ports"
	"flowguard/internal/pause/service/engine"
	"flowguard/internal/pause/service/resolver"
	ledgerstore "flowguard/internal/pause/store/ledger"
	policystore "flowguard/internal/pause/store/policy"
	timerstore "flowguard/internal/pause/store/timer"
	id "flowguard/pkg/domain"
	dErrors "flowguard/pkg/domain-errors"
	"flowguard/pkg/platform/audit"
	auditmem "flowguard/pkg/platform/audit/store/memory"
	"flowguard/pkg/requestcontext"
)

// fakeRunner is an in-memory flow runner tracking paused state per flow.
type fakeRunner struct {
	mu        sync.Mutex
	flows     map[id.FlowID]models.FlowRef
	owner     map[id.FlowID]id.ClientID
	paused    map[id.FlowID]bool
	client    id.ClientID
	pauseErr  error
	resumeErr error
}

func newFakeRunner(clientID id.ClientID) *fakeRunner {
	return &fakeRunner{
		flows:  make(map[id.FlowID]models.FlowRef),
		owner:  make(map[id.FlowID]id.ClientID),
		paused: make(map[id.FlowID]bool),
		client: clientID,
	}
}

func (r *fakeRunner) addFlow(name string) id.FlowID {
	return r.addFlowFor(r.client, name)
}

func (r *fakeRunner) addFlowFor(clientID id.ClientID, name string) id.FlowID {
	r.mu.Lock()
	defer r.mu.Unlock()
	flowID := id.NewFlowID()
	r.flows[flowID] = models.FlowRef{ID: flowID, Name: name}
	r.owner[flowID] = clientID
	return flowID
}

func (r *fakeRunner) PauseFlow(_ context.Context, flowID id.FlowID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pauseErr != nil {
		return r.pauseErr
	}
	if _, ok := r.flows[flowID]; !ok {
		return ports.ErrFlowNotFound
	}
	r.paused[flowID] = true
	return nil
}

func (r *fakeRunner) ResumeFlow(_ context.Context, flowID id.FlowID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resumeErr != nil {
		return r.resumeErr
	}
	if _, ok := r.flows[flowID]; !ok {
		return ports.ErrFlowNotFound
	}
	delete(r.paused, flowID)
	return nil
}

func (r *fakeRunner) ListActiveFlows(_ context.Context, clientID id.ClientID) ([]models.FlowRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	refs := make([]models.FlowRef, 0, len(r.flows))
	for flowID, ref := range r.flows {
		if r.owner[flowID] == clientID {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

func (r *fakeRunner) isPaused(flowID id.FlowID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused[flowID]
}

// fakeNotifier records dispatches and can be told to fail.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

type notifyCall struct {
	clientID id.ClientID
	channels []models.Channel
	message  string
}

func (n *fakeNotifier) Notify(_ context.Context, clientID id.ClientID, channels []models.Channel, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.calls = append(n.calls, notifyCall{clientID: clientID, channels: channels, message: message})
	return nil
}

func (n *fakeNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type EngineSuite struct {
	suite.Suite

	ctx      context.Context
	now      time.Time
	clientID id.ClientID

	policies   *policystore.InMemoryPolicyStore
	ledger     *ledgerstore.InMemoryLedger
	timers     *timerstore.InMemoryTimerStore
	runner     *fakeRunner
	notifier   *fakeNotifier
	auditStore *auditmem.InMemoryStore
	engine     *engine.Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.clientID = id.NewClientID()
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.policies = policystore.New()
	s.ledger = ledgerstore.New()
	s.timers = timerstore.New()
	s.runner = newFakeRunner(s.clientID)
	s.notifier = &fakeNotifier{}
	s.auditStore = auditmem.NewInMemoryStore()

	res, err := resolver.New(s.policies)
	s.Require().NoError(err)

	eng, err := engine.New(
		s.ledger, res, s.runner, s.notifier, s.timers,
		pauseconfig.DefaultConfig().Engine,
		engine.WithAuditPublisher(audit.NewPublisher(s.auditStore)),
	)
	s.Require().NoError(err)
	s.engine = eng
}

func (s *EngineSuite) addPolicy(action models.PolicyAction, minSeverity models.Severity, mutate func(*models.PausePolicy)) *models.PausePolicy {
	policy := &models.PausePolicy{
		ID:                   id.NewPolicyID(),
		EventType:            models.EventTypeInjury,
		MinimumSeverity:      minSeverity,
		Action:               action,
		NotificationChannels: []models.Channel{models.ChannelEmail},
	}
	if mutate != nil {
		mutate(policy)
	}
	s.Require().NoError(policy.Validate())
	s.Require().NoError(s.policies.Upsert(s.ctx, policy))
	return policy
}

func (s *EngineSuite) newEvent(severity models.Severity) *models.AdverseEvent {
	event, err := models.NewAdverseEvent(s.clientID, models.EventTypeInjury, severity, "fell during session", s.now)
	s.Require().NoError(err)
	return event
}

func (s *EngineSuite) TestHandleNoPolicyIsNoOp() {
	s.runner.addFlow("morning-checkin")
	event := s.newEvent(models.SeverityGrave)

	result, err := s.engine.Handle(s.ctx, event)
	s.Require().NoError(err)

	s.Equal(models.ActionNone, result.Action)
	s.Nil(result.PolicyID)
	s.Empty(result.FlowsPaused)
	s.False(result.Notified)
	s.Empty(s.ledger.AllRecords())
	s.Contains(s.auditStore.Actions(), "no_policy_matched")

	// The event is still recorded for the dashboard.
	stored, err := s.ledger.GetEvent(s.ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(models.EventStatusActive, stored.Status)
}

func (s *EngineSuite) TestHandlePauseAllFlows() {
	flow1 := s.runner.addFlow("morning-checkin")
	flow2 := s.runner.addFlow("weekly-report")
	flow3 := s.runner.addFlow("reminder")
	s.addPolicy(models.ActionPauseAllFlows, models.SeverityGrave, func(p *models.PausePolicy) {
		p.AutoResume = true
		p.PauseDurationDays = 7
	})

	result, err := s.engine.Handle(s.ctx, s.newEvent(models.SeverityCritica))
	s.Require().NoError(err)

	s.Equal(models.ActionPauseAllFlows, result.Action)
	s.ElementsMatch([]id.FlowID{flow1, flow2, flow3}, result.FlowsPaused)
	s.Empty(result.FlowsAlreadyPaused)
	s.Empty(result.FlowsSkipped)
	s.True(result.Notified)
	s.Require().NotNil(result.TimerID)

	for _, flowID := range []id.FlowID{flow1, flow2, flow3} {
		s.True(s.runner.isPaused(flowID))
		record, err := s.ledger.PausedRecordByFlow(s.ctx, flowID)
		s.Require().NoError(err)
		s.Equal(s.now, record.PausedAt)
		s.Equal("critica adverse event (injury)", record.Reason)
	}

	due, err := s.timers.Due(s.ctx, s.now.Add(7*24*time.Hour))
	s.Require().NoError(err)
	s.Require().Len(due, 1)
	s.Len(due[0].RecordIDs, 3)
	s.Equal(s.now.Add(7*24*time.Hour), due[0].FireAt)
}

func (s *EngineSuite) TestHandleOverlappingEventIsIdempotent() {
	s.runner.addFlow("morning-checkin")
	s.runner.addFlow("weekly-report")
	s.runner.addFlow("reminder")
	s.addPolicy(models.ActionPauseAllFlows, models.SeverityGrave, nil)

	first, err := s.engine.Handle(s.ctx, s.newEvent(models.SeverityGrave))
	s.Require().NoError(err)
	s.Len(first.FlowsPaused, 3)

	second, err := s.engine.Handle(s.ctx, s.newEvent(models.SeverityCritica))
	s.Require().NoError(err)

	s.Empty(second.FlowsPaused)
	s.Len(second.FlowsAlreadyPaused, 3)
	s.Len(s.ledger.AllRecords(), 3, "no duplicate ledger records")
	s.Nil(second.TimerID)

	// Both events are recorded even though the second paused nothing.
	events, err := s.ledger.ListEvents(s.ctx, &s.clientID, nil)
	s.Require().NoError(err)
	s.Len(events, 2)
}

func (s *EngineSuite) TestHandlePauseSpecificFlows() {
	flow1 := s.runner.addFlow("morning-checkin")
	flow2 := s.runner.addFlow("weekly-report")
	retired := id.NewFlowID()
	s.addPolicy(models.ActionPauseSpecificFlows, models.SeverityModerada, func(p *models.PausePolicy) {
		p.TargetFlowIDs = []id.FlowID{flow1, retired}
	})

	result, err := s.engine.Handle(s.ctx, s.newEvent(models.SeverityModerada))
	s.Require().NoError(err)

	// Only targets intersecting the client's active flows are touched; the
	// retired target no longer exists at the runner so it never appears.
	s.Equal([]id.FlowID{flow1}, result.FlowsPaused)
	s.Empty(result.FlowsSkipped)
	s.True(s.runner.isPaused(flow1))
	s.False(s.runner.isPaused(flow2))

	_, err = s.ledger.PausedRecordByFlow(s.ctx, flow2)
	s.Error(err)
}

func (s *EngineSuite) TestHandleNotifyOnlyNeverTouchesLedger() {
	flowID := s.runner.addFlow("morning-checkin")
	s.addPolicy(models.ActionNotifyOnly, models.SeverityLeve, func(p *models.PausePolicy) {
		p.NotificationChannels = []models.Channel{models.ChannelEmail, models.ChannelPush}
	})

	result, err := s.engine.Handle(s.ctx, s.newEvent(models.SeverityLeve))
	s.Require().NoError(err)

	s.Equal(models.ActionNotifyOnly, result.Action)
	s.True(result.Notified)
	s.Empty(result.FlowsPaused)
	s.Empty(s.ledger.AllRecords())
	s.False(s.runner.isPaused(flowID))
	s.Equal(1, s.notifier.callCount())
}

func (s *EngineSuite) TestHandleNotifierFailureDoesNotFailHandling() {
	s.runner.addFlow("morning-checkin")
	s.notifier.err = errors.New("smtp down")
	s.addPolicy(models.ActionPauseAllFlows, models.SeverityGrave, nil)

	result, err := s.engine.Handle(s.ctx, s.newEvent(models.SeverityGrave))
	s.Require().NoError(err)

	s.Len(result.FlowsPaused, 1)
	s.False(result.Notified)
	s.Contains(s.auditStore.Actions(), "notification_failed")
}

func (s *EngineSuite) TestHandleBelowThresholdDoesNothing() {
	flowID := s.runner.addFlow("morning-checkin")
	s.addPolicy(models.ActionPauseAllFlows, models.SeverityGrave, nil)

	result, err := s.engine.Handle(s.ctx, s.newEvent(models.SeverityModerada))
	s.Require().NoError(err)

	s.Equal(models.ActionNone, result.Action)
	s.False(s.runner.isPaused(flowID))
	s.Empty(s.ledger.AllRecords())
}

func (s *EngineSuite) TestHandleRunnerPauseFailureSkipsFlowNotBatch() {
	flow1 := s.runner.addFlow("morning-checkin")
	flow2 := s.runner.addFlow("weekly-report")
	s.addPolicy(models.ActionPauseAllFlows, models.SeverityGrave, nil)

	// Every pause attempt fails; each flow is skipped individually and
	// handling itself still succeeds.
	s.runner.pauseErr = errors.New("runner overloaded")
	result, err := s.engine.Handle(s.ctx, s.newEvent(models.SeverityGrave))
	s.Require().NoError(err)

	s.ElementsMatch([]id.FlowID{flow1, flow2}, result.FlowsSkipped)
	s.Empty(result.FlowsPaused)
	s.Empty(s.ledger.AllRecords())
	s.Contains(s.auditStore.Actions(), "flow_skipped")
}

func (s *EngineSuite) TestResumeManually() {
	flowID := s.runner.addFlow("morning-checkin")
	s.addPolicy(models.ActionPauseAllFlows, models.SeverityGrave, func(p *models.PausePolicy) {
		p.AutoResume = true
		p.PauseDurationDays = 7
	})
	_, err := s.engine.Handle(s.ctx, s.newEvent(models.SeverityGrave))
	s.Require().NoError(err)
	s.Require().True(s.runner.isPaused(flowID))
	s.Equal(1, s.timers.Pending())

	later := requestcontext.WithTime(context.Background(), s.now.Add(2*time.Hour))
	record, err := s.engine.ResumeManually(later, flowID)
	s.Require().NoError(err)

	s.Equal(models.StateResumed, record.State)
	s.Equal(models.ResumeManual, record.ResumeMode)
	s.Require().NotNil(record.ResumedAt)
	s.Equal(s.now.Add(2*time.Hour), *record.ResumedAt)
	s.False(s.runner.isPaused(flowID))
	s.Equal(0, s.timers.Pending(), "pending timer is cancelled with the resume")
	s.Contains(s.auditStore.Actions(), "resume_manual")

	_, err = s.ledger.PausedRecordByFlow(s.ctx, flowID)
	s.Error(err, "no paused record remains")
}

func (s *EngineSuite) TestResumeManuallyNotPaused() {
	flowID := s.runner.addFlow("morning-checkin")

	_, err := s.engine.ResumeManually(s.ctx, flowID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.False(s.runner.isPaused(flowID))
	s.Empty(s.ledger.AllRecords())
}

func (s *EngineSuite) TestResumeManuallyRunnerFailureLeavesRecordPaused() {
	flowID := s.runner.addFlow("morning-checkin")
	s.addPolicy(models.ActionPauseAllFlows, models.SeverityGrave, nil)
	_, err := s.engine.Handle(s.ctx, s.newEvent(models.SeverityGrave))
	s.Require().NoError(err)

	s.runner.resumeErr = errors.New("runner unreachable")
	_, err = s.engine.ResumeManually(s.ctx, flowID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	record, err := s.ledger.PausedRecordByFlow(s.ctx, flowID)
	s.Require().NoError(err)
	s.True(record.IsPaused(), "ledger untouched when the runner resume fails")
}

func (s *EngineSuite) TestCancelFlow() {
	flowID := s.runner.addFlow("morning-checkin")
	s.addPolicy(models.ActionPauseAllFlows, models.SeverityGrave, func(p *models.PausePolicy) {
		p.AutoResume = true
		p.PauseDurationDays = 3
	})
	_, err := s.engine.Handle(s.ctx, s.newEvent(models.SeverityGrave))
	s.Require().NoError(err)

	record, err := s.engine.CancelFlow(s.ctx, flowID)
	s.Require().NoError(err)

	s.Equal(models.StateCancelled, record.State)
	s.Equal(0, s.timers.Pending())
	s.Contains(s.auditStore.Actions(), "flow_cancelled")

	_, err = s.engine.CancelFlow(s.ctx, flowID)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *EngineSuite) TestUpdateEventStatus() {
	event := s.newEvent(models.SeverityLeve)
	_, err := s.engine.Handle(s.ctx, event)
	s.Require().NoError(err)

	s.Run("active to monitoring", func() {
		updated, err := s.engine.UpdateEventStatus(s.ctx, event.ID, models.EventStatusMonitoring)
		s.Require().NoError(err)
		s.Equal(models.EventStatusMonitoring, updated.Status)
		s.Nil(updated.ResolvedAt)
	})

	s.Run("monitoring to resolved stamps resolved_at", func() {
		updated, err := s.engine.UpdateEventStatus(s.ctx, event.ID, models.EventStatusResolved)
		s.Require().NoError(err)
		s.Equal(models.EventStatusResolved, updated.Status)
		s.Require().NotNil(updated.ResolvedAt)
		s.Equal(s.now, *updated.ResolvedAt)
	})

	s.Run("resolved is terminal", func() {
		_, err := s.engine.UpdateEventStatus(s.ctx, event.ID, models.EventStatusMonitoring)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown event", func() {
		_, err := s.engine.UpdateEventStatus(s.ctx, id.NewEventID(), models.EventStatusResolved)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *EngineSuite) TestListPausedFlowsFiltersByClient() {
	flowID := s.runner.addFlow("morning-checkin")
	s.addPolicy(models.ActionPauseAllFlows, models.SeverityGrave, nil)
	_, err := s.engine.Handle(s.ctx, s.newEvent(models.SeverityGrave))
	s.Require().NoError(err)

	mine, err := s.engine.ListPausedFlows(s.ctx, &s.clientID)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(flowID, mine[0].FlowID)

	other := id.NewClientID()
	none, err := s.engine.ListPausedFlows(s.ctx, &other)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *EngineSuite) TestConcurrentEventsSameClientPauseOnce() {
	flow1 := s.runner.addFlow("morning-checkin")
	flow2 := s.runner.addFlow("weekly-report")
	s.addPolicy(models.ActionPauseAllFlows, models.SeverityGrave, nil)

	const concurrency = 8
	events := make([]*models.AdverseEvent, concurrency)
	for i := range events {
		events[i] = s.newEvent(models.SeverityGrave)
	}

	results := make([]*models.HandlingResult, concurrency)
	errs := make([]error, concurrency)
	var wg sync.WaitGroup
	for i := range events {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.engine.Handle(s.ctx, events[i])
		}(i)
	}
	wg.Wait()

	var paused, alreadyPaused int
	for i := range results {
		s.Require().NoError(errs[i])
		paused += len(results[i].FlowsPaused)
		alreadyPaused += len(results[i].FlowsAlreadyPaused)
		s.Empty(results[i].FlowsSkipped)
	}

	// The per-client lock serializes handling: whichever event wins pauses
	// both flows, every other event finds them already paused.
	s.Equal(2, paused)
	s.Equal(2*(concurrency-1), alreadyPaused)
	s.Len(s.ledger.AllRecords(), 2, "exactly one ledger record per flow")
	for _, flowID := range []id.FlowID{flow1, flow2} {
		record, err := s.ledger.PausedRecordByFlow(s.ctx, flowID)
		s.Require().NoError(err)
		s.True(record.IsPaused())
	}
	s.Equal(concurrency, s.notifier.callCount(), "one notification per event, never more")
}

func (s *EngineSuite) TestConcurrentEventsDifferentClientsStayIndependent() {
	otherClient := id.NewClientID()
	myFlow := s.runner.addFlow("morning-checkin")
	otherFlow := s.runner.addFlowFor(otherClient, "evening-stretch")
	s.addPolicy(models.ActionPauseAllFlows, models.SeverityGrave, nil)

	theirEvent, err := models.NewAdverseEvent(otherClient, models.EventTypeInjury, models.SeverityGrave, "fell during session", s.now)
	s.Require().NoError(err)
	events := []*models.AdverseEvent{s.newEvent(models.SeverityGrave), theirEvent}

	errs := make([]error, len(events))
	var wg sync.WaitGroup
	for i := range events {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.engine.Handle(s.ctx, events[i])
		}(i)
	}
	wg.Wait()

	for i := range errs {
		s.Require().NoError(errs[i])
	}
	s.Len(s.ledger.AllRecords(), 2)

	mine, err := s.ledger.PausedRecordByFlow(s.ctx, myFlow)
	s.Require().NoError(err)
	s.Equal(s.clientID, mine.ClientID)

	theirs, err := s.ledger.PausedRecordByFlow(s.ctx, otherFlow)
	s.Require().NoError(err)
	s.Equal(otherClient, theirs.ClientID)
}
