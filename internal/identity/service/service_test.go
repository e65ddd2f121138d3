package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Emitter

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
	"ridelink/internal/identity/models"
	"ridelink/internal/identity/service/mocks"
	"ridelink/internal/identity/store"
	"ridelink/internal/platform/metrics"
	"ridelink/internal/sentinel"
	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
	rltestutil "ridelink/pkg/testutil"
)

const admin id.Handle = "registry-admin"

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

// ServiceSuite exercises the registry against the in-memory store.
type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	events  *events.InMemoryStore
	metrics *metrics.Metrics
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.events = events.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(store.NewInMemory(), models.Registry{Admin: admin},
		WithEvents(events.NewPublisher(s.events)),
		WithMetrics(s.metrics),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *ServiceSuite) register(handle id.Handle) *models.Record {
	rec, err := s.service.Register(s.ctx, handle, "Name of "+handle.String(), "proof-"+handle.String(), now)
	s.Require().NoError(err)
	return rec
}

func (s *ServiceSuite) TestRegister() {
	rec := s.register("ada")

	s.Equal(models.StatusPending, rec.Status)
	s.Equal(uint64(0), rec.Reputation)
	s.Equal([]string{"proof-ada"}, rec.Proofs)

	emitted := s.events.ListByType(events.TypeUserRegistered)
	s.Require().Len(emitted, 1)
	payload := emitted[0].Payload.(events.UserRegistered)
	s.Equal("ada", payload.Handle)
	s.Equal("proof-ada", payload.ProofRef)
	s.Equal("Name of ada", payload.DisplayName)
	s.Equal(now, payload.Timestamp)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.IdentitiesRegistered))
}

func (s *ServiceSuite) TestRegister_EmptyProofGivesEmptySequence() {
	rec, err := s.service.Register(s.ctx, "bob", "Bob", "", now)
	s.Require().NoError(err)
	s.Empty(rec.Proofs)
}

func (s *ServiceSuite) TestRegister_Duplicate() {
	s.register("ada")

	_, err := s.service.Register(s.ctx, "ada", "Other", "", now)

	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRegistered))
	s.Len(s.events.ListByType(events.TypeUserRegistered), 1)
}

func (s *ServiceSuite) TestRegister_ConcurrentSameHandle() {
	result := rltestutil.RunConcurrent(20, func(int) error {
		_, err := s.service.Register(s.ctx, "racer", "Racer", "", now)
		return err
	})

	s.Equal(int32(1), result.Successes)
	s.Equal(int32(19), result.Conflicts)
}

func (s *ServiceSuite) TestAddProof() {
	s.register("ada")

	s.Run("owner appends in order", func() {
		rec, err := s.service.AddProof(s.ctx, "ada", "proof-2", "ada", now.Add(time.Minute))
		s.Require().NoError(err)
		s.Equal([]string{"proof-ada", "proof-2"}, rec.Proofs)
		s.Equal(now.Add(time.Minute), rec.UpdatedAt)
	})

	s.Run("other caller is unauthorized", func() {
		_, err := s.service.AddProof(s.ctx, "ada", "forged", "mallory", now)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		rec, _ := s.service.Get(s.ctx, "ada")
		s.NotContains(rec.Proofs, "forged")
	})

	s.Run("unknown handle", func() {
		_, err := s.service.AddProof(s.ctx, "ghost", "p", "ghost", now)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestUpdateStatus() {
	s.register("driver")

	s.Run("admin approves", func() {
		rec, err := s.service.UpdateStatus(s.ctx, "driver", models.StatusApproved, admin, now)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, rec.Status)

		emitted := s.events.ListByType(events.TypeKYCStatusUpdated)
		s.Require().Len(emitted, 1)
		payload := emitted[0].Payload.(events.KYCStatusUpdated)
		s.Equal("pending", payload.OldStatus)
		s.Equal("approved", payload.NewStatus)
	})

	s.Run("non-admin is rejected and nothing changes", func() {
		_, err := s.service.UpdateStatus(s.ctx, "driver", models.StatusRejected, "driver", now)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		status, err := s.service.Status(s.ctx, "driver")
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, status)
		s.Len(s.events.ListByType(events.TypeKYCStatusUpdated), 1)
	})

	s.Run("invalid status", func() {
		_, err := s.service.UpdateStatus(s.ctx, "driver", models.Status("suspended"), admin, now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStatus))
	})

	s.Run("unknown handle", func() {
		_, err := s.service.UpdateStatus(s.ctx, "ghost", models.StatusApproved, admin, now)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestAdjustReputation() {
	s.register("ada")

	rep, err := s.service.AdjustReputation(s.ctx, "ada", 5, now)
	s.Require().NoError(err)
	s.Equal(uint64(5), rep)

	rep, err = s.service.AdjustReputation(s.ctx, "ada", -9, now)
	s.Require().NoError(err)
	s.Equal(uint64(0), rep)

	got, err := s.service.Reputation(s.ctx, "ada")
	s.Require().NoError(err)
	s.Equal(uint64(0), got)
}

// StoreErrorSuite checks that store failures are translated exactly once.
type StoreErrorSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	emitter *mocks.MockEmitter
	service *Service
}

func TestStoreErrorSuite(t *testing.T) {
	suite.Run(t, new(StoreErrorSuite))
}

func (s *StoreErrorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.emitter = mocks.NewMockEmitter(s.ctrl)
	s.service = New(s.store, models.Registry{Admin: admin},
		WithEvents(s.emitter),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *StoreErrorSuite) TestCreateFailureIsInternal() {
	s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(assert.AnError)

	_, err := s.service.Register(context.Background(), "ada", "Ada", "", now)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *StoreErrorSuite) TestUpdateFailureIsInternal() {
	rec, _ := models.NewRecord("ada", "Ada", "", now)
	s.store.EXPECT().FindByHandle(gomock.Any(), id.Handle("ada")).Return(rec, nil)
	s.store.EXPECT().Update(gomock.Any(), gomock.Any()).Return(assert.AnError)

	_, err := s.service.AdjustReputation(context.Background(), "ada", 1, now)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *StoreErrorSuite) TestSentinelNotFoundBecomesNotFound() {
	s.store.EXPECT().FindByHandle(gomock.Any(), id.Handle("ghost")).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.Status(context.Background(), "ghost")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *StoreErrorSuite) TestEmitterFailureDoesNotFailOperation() {
	s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.emitter.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(assert.AnError)

	rec, err := s.service.Register(context.Background(), "ada", "Ada", "", now)
	s.Require().NoError(err)
	s.Equal(id.Handle("ada"), rec.Handle)
}

