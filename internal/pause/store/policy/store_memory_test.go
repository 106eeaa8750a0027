package policy_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"flowguard/internal/pause/models"
	"flowguard/internal/pause/store/policy"
	id "flowguard/pkg/domain"
	"flowguard/pkg/platform/sentinel"
	"flowguard/pkg/requestcontext"
)

type PolicyMemorySuite struct {
	suite.Suite

	ctx   context.Context
	now   time.Time
	store *policy.InMemoryPolicyStore
}

func TestPolicyMemorySuite(t *testing.T) {
	suite.Run(t, new(PolicyMemorySuite))
}

func (s *PolicyMemorySuite) SetupTest() {
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = policy.New()
}

func (s *PolicyMemorySuite) newPolicy(eventType models.EventType) *models.PausePolicy {
	return &models.PausePolicy{
		ID:                   id.NewPolicyID(),
		EventType:            eventType,
		MinimumSeverity:      models.SeverityGrave,
		Action:               models.ActionPauseAllFlows,
		NotificationChannels: []models.Channel{models.ChannelEmail},
	}
}

func (s *PolicyMemorySuite) TestUpsertStampsUpdatedAt() {
	p := s.newPolicy(models.EventTypeInjury)
	s.Require().NoError(s.store.Upsert(s.ctx, p))

	stored, err := s.store.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(s.now, stored.UpdatedAt)

	later := requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))
	p.MinimumSeverity = models.SeverityCritica
	s.Require().NoError(s.store.Upsert(later, p))

	stored, err = s.store.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.SeverityCritica, stored.MinimumSeverity)
	s.Equal(s.now.Add(time.Hour), stored.UpdatedAt)
}

func (s *PolicyMemorySuite) TestListByEventType() {
	s.Require().NoError(s.store.Upsert(s.ctx, s.newPolicy(models.EventTypeInjury)))
	s.Require().NoError(s.store.Upsert(s.ctx, s.newPolicy(models.EventTypeInjury)))
	s.Require().NoError(s.store.Upsert(s.ctx, s.newPolicy(models.EventTypeAllergy)))

	injuries, err := s.store.ListByEventType(s.ctx, models.EventTypeInjury)
	s.Require().NoError(err)
	s.Len(injuries, 2)

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 3)

	none, err := s.store.ListByEventType(s.ctx, models.EventTypeIntolerance)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *PolicyMemorySuite) TestDelete() {
	p := s.newPolicy(models.EventTypeInjury)
	s.Require().NoError(s.store.Upsert(s.ctx, p))

	s.Require().NoError(s.store.Delete(s.ctx, p.ID))
	_, err := s.store.Get(s.ctx, p.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(s.ctx, p.ID), sentinel.ErrNotFound)
}
