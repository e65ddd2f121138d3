package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,StatusReader,TemplateSender,Emitter

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ridelink/internal/events"
	identitymodels "ridelink/internal/identity/models"
	msgmodels "ridelink/internal/message/models"
	"ridelink/internal/platform/metrics"
	"ridelink/internal/thread/models"
	"ridelink/internal/thread/service/mocks"
	"ridelink/internal/thread/store"
	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
)

const (
	driver    id.Handle = "driver-1"
	passenger id.Handle = "rider-1"
	outsider  id.Handle = "stranger"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	identity  *mocks.MockStatusReader
	templates *mocks.MockTemplateSender
	store     *store.InMemory
	events    *events.InMemoryStore
	metrics   *metrics.Metrics
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.identity = mocks.NewMockStatusReader(s.ctrl)
	s.templates = mocks.NewMockTemplateSender(s.ctrl)
	s.store = store.NewInMemory()
	s.events = events.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.store, s.identity, s.templates,
		WithEvents(events.NewPublisher(s.events)),
		WithMetrics(s.metrics),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *ServiceSuite) open(ride id.RideID) *models.Thread {
	t, err := s.service.Create(s.ctx, ride, driver, passenger, now)
	s.Require().NoError(err)
	return t
}

func (s *ServiceSuite) approveDriver() {
	s.identity.EXPECT().Status(gomock.Any(), driver).Return(identitymodels.StatusApproved, nil).AnyTimes()
}

func (s *ServiceSuite) TestCreate() {
	t := s.open("ride-1")

	s.True(t.Active)
	s.Zero(t.ETAMinutes)
	s.Equal(driver, t.Driver)
	s.Equal(passenger, t.Passenger)

	emitted := s.events.ListByType(events.TypeThreadCreated)
	s.Require().Len(emitted, 1)
	s.Equal(t.ID.String(), emitted[0].Key)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ThreadsCreated))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ActiveThreads))
}

func (s *ServiceSuite) TestCreate_InvalidInput() {
	_, err := s.service.Create(s.ctx, "ride-1", driver, driver, now)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.service.Create(s.ctx, "", driver, passenger, now)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	s.Empty(s.events.List())
}

func (s *ServiceSuite) TestCreate_ActiveThreadPerRide() {
	first := s.open("ride-1")

	_, err := s.service.Create(s.ctx, "ride-1", driver, passenger, now)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = s.service.Deactivate(s.ctx, first.ID, passenger, now)
	s.Require().NoError(err)
	s.open("ride-1")
}

func (s *ServiceSuite) TestGet_NotFound() {
	_, err := s.service.Get(s.ctx, id.NewThreadID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestActiveForRide() {
	t := s.open("ride-1")

	got, err := s.service.ActiveForRide(s.ctx, "ride-1", passenger)
	s.Require().NoError(err)
	s.Equal(t.ID, got.ID)

	_, err = s.service.ActiveForRide(s.ctx, "ride-1", outsider)
	s.True(dErrors.HasCode(err, dErrors.CodeNotThreadMember))

	_, err = s.service.Deactivate(s.ctx, t.ID, driver, now)
	s.Require().NoError(err)
	_, err = s.service.ActiveForRide(s.ctx, "ride-1", driver)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestUpdateETA_MapsMinutesToTemplate() {
	s.approveDriver()
	t := s.open("ride-1")

	cases := []struct {
		minutes uint32
		want    msgmodels.DriverTemplate
	}{
		{0, msgmodels.ArrivingNow},
		{1, msgmodels.ArrivingSoon},
		{2, msgmodels.ArrivingSoon},
		{3, msgmodels.Delayed},
		{45, msgmodels.Delayed},
	}
	for _, tc := range cases {
		sent := []*msgmodels.Message{{ID: id.NewMessageID()}, {ID: id.NewMessageID()}}
		s.templates.EXPECT().
			SendDriverTemplate(gomock.Any(), t.ID, tc.want.Code(), driver, now).
			Return(sent, nil)

		updated, msgs, err := s.service.UpdateETA(s.ctx, t.ID, tc.minutes, driver, now)
		s.Require().NoError(err)
		s.Equal(tc.minutes, updated.ETAMinutes)
		s.Equal(sent, msgs)

		stored, err := s.service.Get(s.ctx, t.ID)
		s.Require().NoError(err)
		s.Equal(tc.minutes, stored.ETAMinutes)
	}
}

func (s *ServiceSuite) TestUpdateETA_Outsider() {
	t := s.open("ride-1")

	_, _, err := s.service.UpdateETA(s.ctx, t.ID, 3, outsider, now)
	s.True(dErrors.HasCode(err, dErrors.CodeNotThreadMember))
}

func (s *ServiceSuite) TestUpdateETA_PassengerNeedsKYC() {
	t := s.open("ride-1")

	_, _, err := s.service.UpdateETA(s.ctx, t.ID, 3, passenger, now)
	s.True(dErrors.HasCode(err, dErrors.CodeKYCRequired))
}

func (s *ServiceSuite) TestUpdateETA_UnapprovedDriver() {
	t := s.open("ride-1")

	for _, status := range []identitymodels.Status{identitymodels.StatusPending, identitymodels.StatusRejected} {
		s.identity.EXPECT().Status(gomock.Any(), driver).Return(status, nil)
		_, _, err := s.service.UpdateETA(s.ctx, t.ID, 3, driver, now)
		s.True(dErrors.HasCode(err, dErrors.CodeKYCRequired), status)
	}

	s.identity.EXPECT().Status(gomock.Any(), driver).Return(identitymodels.Status(""), dErrors.New(dErrors.CodeNotFound, "identity not found"))
	_, _, err := s.service.UpdateETA(s.ctx, t.ID, 3, driver, now)
	s.True(dErrors.HasCode(err, dErrors.CodeKYCRequired))
}

func (s *ServiceSuite) TestUpdateETA_ClosedThread() {
	s.approveDriver()
	t := s.open("ride-1")
	_, err := s.service.Deactivate(s.ctx, t.ID, driver, now)
	s.Require().NoError(err)

	_, _, err = s.service.UpdateETA(s.ctx, t.ID, 3, driver, now)
	s.True(dErrors.HasCode(err, dErrors.CodeThreadInactive))
}

func (s *ServiceSuite) TestUpdateETA_TemplateFailureKeepsETA() {
	s.approveDriver()
	t := s.open("ride-1")
	s.templates.EXPECT().SendDriverTemplate(gomock.Any(), t.ID, gomock.Any(), driver, now).Return(nil, assert.AnError)

	_, _, err := s.service.UpdateETA(s.ctx, t.ID, 7, driver, now)
	s.ErrorIs(err, assert.AnError)

	stored, err := s.service.Get(s.ctx, t.ID)
	s.Require().NoError(err)
	s.Zero(stored.ETAMinutes)
}

func (s *ServiceSuite) TestUpdateETA_LockIsReentrantForTemplates() {
	s.approveDriver()
	t := s.open("ride-1")
	s.templates.EXPECT().
		SendDriverTemplate(gomock.Any(), t.ID, gomock.Any(), driver, now).
		DoAndReturn(func(ctx context.Context, threadID id.ThreadID, _ uint8, _ id.Handle, _ time.Time) ([]*msgmodels.Message, error) {
			err := s.service.tx.RunInTx(ctx, threadID.String(), func(context.Context) error { return nil })
			return nil, err
		})

	done := make(chan error, 1)
	go func() {
		_, _, err := s.service.UpdateETA(s.ctx, t.ID, 1, driver, now)
		done <- err
	}()

	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(2 * time.Second):
		s.Fail("nested lock acquisition deadlocked")
	}
}

func (s *ServiceSuite) TestDeactivate() {
	t := s.open("ride-1")

	_, err := s.service.Deactivate(s.ctx, t.ID, outsider, now)
	s.True(dErrors.HasCode(err, dErrors.CodeNotThreadMember))

	closedAt := now.Add(30 * time.Minute)
	closed, err := s.service.Deactivate(s.ctx, t.ID, passenger, closedAt)
	s.Require().NoError(err)
	s.False(closed.Active)
	s.Require().NotNil(closed.ClosedAt)
	s.Equal(closedAt, *closed.ClosedAt)

	again, err := s.service.Deactivate(s.ctx, t.ID, driver, closedAt.Add(time.Minute))
	s.Require().NoError(err)
	s.Equal(closedAt, *again.ClosedAt)

	s.Len(s.events.ListByType(events.TypeThreadClosed), 1)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ThreadsClosed))
	s.Equal(float64(0), testutil.ToFloat64(s.metrics.ActiveThreads))
}

// StoreErrorSuite checks store failures surface as internal errors.
type StoreErrorSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	service *Service
}

func TestStoreErrorSuite(t *testing.T) {
	suite.Run(t, new(StoreErrorSuite))
}

func (s *StoreErrorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.service = New(s.store, mocks.NewMockStatusReader(s.ctrl), mocks.NewMockTemplateSender(s.ctrl),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *StoreErrorSuite) TestCreateFailureIsInternal() {
	s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(assert.AnError)

	_, err := s.service.Create(context.Background(), "ride-1", driver, passenger, now)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *StoreErrorSuite) TestDeactivateUpdateFailureIsInternal() {
	t, _ := models.New("ride-1", driver, passenger, now)
	s.store.EXPECT().FindByID(gomock.Any(), t.ID).Return(t, nil)
	s.store.EXPECT().Update(gomock.Any(), gomock.Any()).Return(assert.AnError)

	_, err := s.service.Deactivate(context.Background(), t.ID, driver, now)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *StoreErrorSuite) TestActiveForRideFailureIsInternal() {
	s.store.EXPECT().FindActiveByRide(gomock.Any(), id.RideID("ride-1")).Return(nil, assert.AnError)

	_, err := s.service.ActiveForRide(context.Background(), "ride-1", driver)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
