package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"flowguard/internal/pause/models"
	"flowguard/internal/pause/store/ledger"
	id "flowguard/pkg/domain"
	"flowguard/pkg/platform/sentinel"
)

type LedgerMemorySuite struct {
	suite.Suite

	ctx      context.Context
	now      time.Time
	store    *ledger.InMemoryLedger
	clientID id.ClientID
}

func TestLedgerMemorySuite(t *testing.T) {
	suite.Run(t, new(LedgerMemorySuite))
}

func (s *LedgerMemorySuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.store = ledger.New()
	s.clientID = id.NewClientID()
}

func (s *LedgerMemorySuite) newRecord() *models.FlowPauseRecord {
	record, err := models.NewFlowPauseRecord(id.NewFlowID(), "morning-checkin", id.NewEventID(), s.clientID, "grave adverse event (injury)", s.now)
	s.Require().NoError(err)
	return record
}

func (s *LedgerMemorySuite) TestCreateRecord() {
	s.Run("creates paused record", func() {
		record := s.newRecord()
		s.Require().NoError(s.store.CreateRecord(s.ctx, record))

		stored, err := s.store.GetRecord(s.ctx, record.ID)
		s.Require().NoError(err)
		s.Equal(models.StatePaused, stored.State)
	})

	s.Run("second paused record for same flow conflicts", func() {
		record := s.newRecord()
		s.Require().NoError(s.store.CreateRecord(s.ctx, record))

		dup, err := models.NewFlowPauseRecord(record.FlowID, record.FlowName, id.NewEventID(), s.clientID, "second event", s.now)
		s.Require().NoError(err)
		s.ErrorIs(s.store.CreateRecord(s.ctx, dup), sentinel.ErrConflict)
	})

	s.Run("resumed record frees the flow for a new pause", func() {
		record := s.newRecord()
		s.Require().NoError(s.store.CreateRecord(s.ctx, record))
		ok, err := s.store.MarkResumed(s.ctx, record.ID, s.now.Add(time.Hour), models.ResumeManual)
		s.Require().NoError(err)
		s.Require().True(ok)

		again, err := models.NewFlowPauseRecord(record.FlowID, record.FlowName, id.NewEventID(), s.clientID, "new event", s.now.Add(2*time.Hour))
		s.Require().NoError(err)
		s.NoError(s.store.CreateRecord(s.ctx, again))
	})
}

func (s *LedgerMemorySuite) TestMarkResumedIsCompareAndSet() {
	record := s.newRecord()
	s.Require().NoError(s.store.CreateRecord(s.ctx, record))

	resumedAt := s.now.Add(time.Hour)
	ok, err := s.store.MarkResumed(s.ctx, record.ID, resumedAt, models.ResumeAutomatic)
	s.Require().NoError(err)
	s.True(ok)

	// Second transition loses the race: no error, no effect.
	ok, err = s.store.MarkResumed(s.ctx, record.ID, s.now.Add(2*time.Hour), models.ResumeManual)
	s.Require().NoError(err)
	s.False(ok)

	stored, err := s.store.GetRecord(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(models.ResumeAutomatic, stored.ResumeMode)
	s.Equal(resumedAt, *stored.ResumedAt)

	ok, err = s.store.MarkCancelled(s.ctx, record.ID, s.now)
	s.Require().NoError(err)
	s.False(ok, "cancel after resume is a no-op")

	_, err = s.store.MarkResumed(s.ctx, id.NewRecordID(), s.now, models.ResumeManual)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *LedgerMemorySuite) TestPausedRecordByFlow() {
	record := s.newRecord()
	s.Require().NoError(s.store.CreateRecord(s.ctx, record))

	found, err := s.store.PausedRecordByFlow(s.ctx, record.FlowID)
	s.Require().NoError(err)
	s.Equal(record.ID, found.ID)

	ok, err := s.store.MarkResumed(s.ctx, record.ID, s.now, models.ResumeManual)
	s.Require().NoError(err)
	s.Require().True(ok)

	_, err = s.store.PausedRecordByFlow(s.ctx, record.FlowID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *LedgerMemorySuite) TestListPausedFilters() {
	mine := s.newRecord()
	s.Require().NoError(s.store.CreateRecord(s.ctx, mine))

	otherClient := id.NewClientID()
	other, err := models.NewFlowPauseRecord(id.NewFlowID(), "reporting", id.NewEventID(), otherClient, "event", s.now.Add(time.Minute))
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateRecord(s.ctx, other))

	resumed := s.newRecord()
	resumed.FlowID = id.NewFlowID()
	s.Require().NoError(s.store.CreateRecord(s.ctx, resumed))
	ok, err := s.store.MarkResumed(s.ctx, resumed.ID, s.now, models.ResumeManual)
	s.Require().NoError(err)
	s.Require().True(ok)

	all, err := s.store.ListPaused(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(all, 2, "resumed records are excluded")

	filtered, err := s.store.ListPaused(s.ctx, &s.clientID)
	s.Require().NoError(err)
	s.Require().Len(filtered, 1)
	s.Equal(mine.ID, filtered[0].ID)
}

func (s *LedgerMemorySuite) TestEventReadModel() {
	event, err := models.NewAdverseEvent(s.clientID, models.EventTypeAllergy, models.SeverityModerada, "rash after session", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.RecordEvent(s.ctx, event))

	s.Run("get returns stored event", func() {
		stored, err := s.store.GetEvent(s.ctx, event.ID)
		s.Require().NoError(err)
		s.Equal(models.EventStatusActive, stored.Status)
	})

	s.Run("update status persists", func() {
		event.Status = models.EventStatusResolved
		resolvedAt := s.now.Add(48 * time.Hour)
		event.ResolvedAt = &resolvedAt
		s.Require().NoError(s.store.UpdateEventStatus(s.ctx, event))

		stored, err := s.store.GetEvent(s.ctx, event.ID)
		s.Require().NoError(err)
		s.Equal(models.EventStatusResolved, stored.Status)
		s.Equal(resolvedAt, *stored.ResolvedAt)
	})

	s.Run("list filters by status", func() {
		active := models.EventStatusActive
		events, err := s.store.ListEvents(s.ctx, &s.clientID, &active)
		s.Require().NoError(err)
		s.Empty(events)

		resolved := models.EventStatusResolved
		events, err = s.store.ListEvents(s.ctx, &s.clientID, &resolved)
		s.Require().NoError(err)
		s.Len(events, 1)
	})

	s.Run("unknown event not found", func() {
		_, err := s.store.GetEvent(s.ctx, id.NewEventID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
