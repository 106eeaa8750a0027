package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	pauseconfig "flowguard/internal/pause/config"
	"flowguard/internal/pause/models"
	"flowguard/internal/pause/ports"
	"flowguard/internal/pause/ports/mocks"
	"flowguard/internal/pause/service/scheduler"
	ledgerstore "flowguard/internal/pause/store/ledger"
	timerstore "flowguard/internal/pause/store/timer"
	id "flowguard/pkg/domain"
	"flowguard/pkg/platform/audit"
	auditmem "flowguard/pkg/platform/audit/store/memory"
	"flowguard/pkg/requestcontext"
)

type SchedulerSuite struct {
	suite.Suite

	ctrl       *gomock.Controller
	runner     *mocks.MockFlowRunner
	ledger     *ledgerstore.InMemoryLedger
	timers     *timerstore.InMemoryTimerStore
	auditStore *auditmem.InMemoryStore
	scheduler  *scheduler.Scheduler

	now      time.Time
	clientID id.ClientID
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerSuite))
}

func (s *SchedulerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.runner = mocks.NewMockFlowRunner(s.ctrl)
	s.ledger = ledgerstore.New()
	s.timers = timerstore.New()
	s.auditStore = auditmem.NewInMemoryStore()
	s.now = time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)
	s.clientID = id.NewClientID()

	cfg := pauseconfig.SchedulerConfig{
		PollInterval:      30 * time.Second,
		MaxResumeAttempts: 3,
		RetryBaseDelay:    time.Millisecond,
	}

	sched, err := scheduler.New(
		s.timers, s.ledger, s.runner, cfg,
		scheduler.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		scheduler.WithAuditPublisher(audit.NewPublisher(s.auditStore)),
	)
	s.Require().NoError(err)
	s.scheduler = sched
}

func (s *SchedulerSuite) TearDownTest() {
	s.ctrl.Finish()
}

// pauseFlow seeds a paused ledger record and a timer due after duration.
func (s *SchedulerSuite) pauseFlow(duration time.Duration) *models.FlowPauseRecord {
	record, err := models.NewFlowPauseRecord(id.NewFlowID(), "morning-checkin", id.NewEventID(), s.clientID, "grave adverse event (injury)", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.ledger.CreateRecord(context.Background(), record))

	timer, err := models.NewResumeTimer([]id.RecordID{record.ID}, s.now.Add(duration), s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.timers.Schedule(context.Background(), timer))
	return record
}

func (s *SchedulerSuite) tickAt(t time.Time) {
	ctx := requestcontext.WithTime(context.Background(), t)
	s.Require().NoError(s.scheduler.Tick(ctx))
}

func (s *SchedulerSuite) TestTickResumesDueRecords() {
	record := s.pauseFlow(7 * 24 * time.Hour)
	fireTime := s.now.Add(7 * 24 * time.Hour)
	s.runner.EXPECT().ResumeFlow(gomock.Any(), record.FlowID).Return(nil)

	s.tickAt(fireTime)

	resumed, err := s.ledger.GetRecord(context.Background(), record.ID)
	s.Require().NoError(err)
	s.Equal(models.StateResumed, resumed.State)
	s.Equal(models.ResumeAutomatic, resumed.ResumeMode)
	s.Require().NotNil(resumed.ResumedAt)
	s.Equal(fireTime, *resumed.ResumedAt)
	s.Equal(0, s.timers.Pending(), "fired timer is completed")
	s.Contains(s.auditStore.Actions(), "resume_automatic")
}

func (s *SchedulerSuite) TestTickBeforeFireTimeDoesNothing() {
	record := s.pauseFlow(7 * 24 * time.Hour)

	s.tickAt(s.now.Add(24 * time.Hour))

	current, err := s.ledger.GetRecord(context.Background(), record.ID)
	s.Require().NoError(err)
	s.True(current.IsPaused())
	s.Equal(1, s.timers.Pending())
}

func (s *SchedulerSuite) TestTickSkipsManuallyResumedRecord() {
	record := s.pauseFlow(24 * time.Hour)
	ok, err := s.ledger.MarkResumed(context.Background(), record.ID, s.now.Add(time.Hour), models.ResumeManual)
	s.Require().NoError(err)
	s.Require().True(ok)

	// No runner expectation: a fired timer for a resumed record is a no-op.
	s.tickAt(s.now.Add(24 * time.Hour))

	current, err := s.ledger.GetRecord(context.Background(), record.ID)
	s.Require().NoError(err)
	s.Equal(models.ResumeManual, current.ResumeMode, "manual resume is not overwritten")
	s.Equal(0, s.timers.Pending())
}

func (s *SchedulerSuite) TestTickRetriesTransientRunnerFailure() {
	record := s.pauseFlow(24 * time.Hour)
	fireTime := s.now.Add(24 * time.Hour)
	gomock.InOrder(
		s.runner.EXPECT().ResumeFlow(gomock.Any(), record.FlowID).Return(errors.New("runner overloaded")),
		s.runner.EXPECT().ResumeFlow(gomock.Any(), record.FlowID).Return(errors.New("runner overloaded")),
		s.runner.EXPECT().ResumeFlow(gomock.Any(), record.FlowID).Return(nil),
	)

	s.tickAt(fireTime)

	resumed, err := s.ledger.GetRecord(context.Background(), record.ID)
	s.Require().NoError(err)
	s.Equal(models.StateResumed, resumed.State)
}

func (s *SchedulerSuite) TestTickEscalatesAfterBoundedRetries() {
	record := s.pauseFlow(24 * time.Hour)
	s.runner.EXPECT().ResumeFlow(gomock.Any(), record.FlowID).Return(errors.New("runner unreachable")).Times(3)

	s.tickAt(s.now.Add(24 * time.Hour))

	current, err := s.ledger.GetRecord(context.Background(), record.ID)
	s.Require().NoError(err)
	s.True(current.IsPaused(), "record stays paused for the operator")
	s.Contains(s.auditStore.Actions(), "resume_escalated")
	s.Equal(0, s.timers.Pending(), "escalated timer does not refire")
}

func (s *SchedulerSuite) TestTickCancelsRecordForRetiredFlow() {
	record := s.pauseFlow(24 * time.Hour)
	s.runner.EXPECT().ResumeFlow(gomock.Any(), record.FlowID).Return(ports.ErrFlowNotFound)

	s.tickAt(s.now.Add(24 * time.Hour))

	current, err := s.ledger.GetRecord(context.Background(), record.ID)
	s.Require().NoError(err)
	s.Equal(models.StateCancelled, current.State)
	s.Contains(s.auditStore.Actions(), "flow_cancelled")
}

func (s *SchedulerSuite) TestTickResumesAllRecordsOfOneTimer() {
	recordA, err := models.NewFlowPauseRecord(id.NewFlowID(), "checkin", id.NewEventID(), s.clientID, "critica adverse event (injury)", s.now)
	s.Require().NoError(err)
	recordB, err := models.NewFlowPauseRecord(id.NewFlowID(), "report", recordA.EventID, s.clientID, "critica adverse event (injury)", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.ledger.CreateRecord(context.Background(), recordA))
	s.Require().NoError(s.ledger.CreateRecord(context.Background(), recordB))

	timer, err := models.NewResumeTimer([]id.RecordID{recordA.ID, recordB.ID}, s.now.Add(time.Hour), s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.timers.Schedule(context.Background(), timer))

	s.runner.EXPECT().ResumeFlow(gomock.Any(), recordA.FlowID).Return(nil)
	s.runner.EXPECT().ResumeFlow(gomock.Any(), recordB.FlowID).Return(nil)

	s.tickAt(s.now.Add(time.Hour))

	for _, rec := range []*models.FlowPauseRecord{recordA, recordB} {
		current, err := s.ledger.GetRecord(context.Background(), rec.ID)
		s.Require().NoError(err)
		s.Equal(models.StateResumed, current.State)
	}
}

func (s *SchedulerSuite) TestNewValidatesDependencies() {
	cfg := pauseconfig.DefaultConfig().Scheduler

	_, err := scheduler.New(nil, s.ledger, s.runner, cfg)
	s.ErrorContains(err, "timer store is required")

	_, err = scheduler.New(s.timers, nil, s.runner, cfg)
	s.ErrorContains(err, "ledger is required")

	_, err = scheduler.New(s.timers, s.ledger, nil, cfg)
	s.ErrorContains(err, "flow runner is required")
}
