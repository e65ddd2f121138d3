package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ridelink/internal/sentinel"
	"ridelink/internal/thread/models"
	id "ridelink/pkg/domain"
	rltestutil "ridelink/pkg/testutil"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) newThread(ride id.RideID) *models.Thread {
	t, err := models.New(ride, "driver-1", "rider-1", s.now)
	s.Require().NoError(err)
	return t
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	t := s.newThread("ride-1")
	s.Require().NoError(s.store.Create(s.ctx, t))

	found, err := s.store.FindByID(s.ctx, t.ID)
	s.Require().NoError(err)
	s.Equal(t, found)

	active, err := s.store.FindActiveByRide(s.ctx, "ride-1")
	s.Require().NoError(err)
	s.Equal(t.ID, active.ID)
}

func (s *InMemoryStoreSuite) TestSecondActiveThreadForRideConflicts() {
	s.Require().NoError(s.store.Create(s.ctx, s.newThread("ride-1")))
	err := s.store.Create(s.ctx, s.newThread("ride-1"))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestClosingFreesRide() {
	t := s.newThread("ride-1")
	s.Require().NoError(s.store.Create(s.ctx, t))

	t.Close(s.now.Add(time.Minute))
	s.Require().NoError(s.store.Update(s.ctx, t))

	_, err := s.store.FindActiveByRide(s.ctx, "ride-1")
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.NoError(s.store.Create(s.ctx, s.newThread("ride-1")))
}

func (s *InMemoryStoreSuite) TestNotFound() {
	_, err := s.store.FindByID(s.ctx, id.NewThreadID())
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Update(s.ctx, s.newThread("ride-9")), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestReturnsCopies() {
	t := s.newThread("ride-1")
	s.Require().NoError(s.store.Create(s.ctx, t))

	found, err := s.store.FindByID(s.ctx, t.ID)
	s.Require().NoError(err)
	found.ETAMinutes = 99

	again, err := s.store.FindByID(s.ctx, t.ID)
	s.Require().NoError(err)
	s.Zero(again.ETAMinutes)
}

func (s *InMemoryStoreSuite) TestClosedThreadDoesNotHoldRide() {
	closed := rltestutil.NewThreadBuilder().WithRide("ride-2").Closed(s.now).Build()
	s.Require().NoError(s.store.Create(s.ctx, closed))

	_, err := s.store.FindActiveByRide(s.ctx, "ride-2")
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.NoError(s.store.Create(s.ctx, s.newThread("ride-2")))
}
