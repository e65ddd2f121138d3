package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ridelink/internal/events"
	identitymodels "ridelink/internal/identity/models"
	msgmodels "ridelink/internal/message/models"
	"ridelink/internal/platform/metrics"
	"ridelink/internal/sentinel"
	"ridelink/internal/thread/models"
	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
	platformsync "ridelink/pkg/platform/sync"
	"ridelink/pkg/platform/tracing"
)

// Store persists threads.
// Error Contract:
// - Create returns sentinel.ErrConflict when the ride already has an active thread
// - FindByID and Update return sentinel.ErrNotFound for unknown threads
// - FindActiveByRide returns sentinel.ErrNotFound when the ride has no open thread
type Store interface {
	Create(ctx context.Context, t *models.Thread) error
	FindByID(ctx context.Context, threadID id.ThreadID) (*models.Thread, error)
	FindActiveByRide(ctx context.Context, rideID id.RideID) (*models.Thread, error)
	Update(ctx context.Context, t *models.Thread) error
}

// StatusReader is the identity oracle used for KYC gating.
type StatusReader interface {
	Status(ctx context.Context, handle id.Handle) (identitymodels.Status, error)
}

// TemplateSender broadcasts driver templates into a thread.
type TemplateSender interface {
	SendDriverTemplate(ctx context.Context, threadID id.ThreadID, code uint8, caller id.Handle, now time.Time) ([]*msgmodels.Message, error)
}

type Emitter interface {
	Emit(ctx context.Context, event events.Event) error
}

type Option func(*Service)

// Service manages the lifecycle of ride threads.
type Service struct {
	store     Store
	identity  StatusReader
	templates TemplateSender
	tx        *platformsync.KeyedTx
	events    Emitter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    *tracing.Tracer
}

func New(store Store, identity StatusReader, templates TemplateSender, opts ...Option) *Service {
	svc := &Service{
		store:     store,
		identity:  identity,
		templates: templates,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.tx == nil {
		svc.tx = platformsync.NewKeyedTx(platformsync.NewShardedMutex(), "thread")
	}
	return svc
}

func WithEvents(e Emitter) Option {
	return func(s *Service) { s.events = e }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(t *tracing.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithKeyedTx shares the per-thread lock with the message service so an ETA
// update and its template broadcast form one critical section.
func WithKeyedTx(tx *platformsync.KeyedTx) Option {
	return func(s *Service) { s.tx = tx }
}

// Create opens a thread for rideID with the caller as driver.
func (s *Service) Create(ctx context.Context, rideID id.RideID, driver, passenger id.Handle, now time.Time) (t *models.Thread, err error) {
	ctx, span := s.tracer.Start(ctx, "thread.create", tracing.String("ride_id", rideID.String()))
	defer func() { span.End(err) }()

	t, err = models.New(rideID, driver, passenger, now)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, "ride:"+rideID.String(), func(ctx context.Context) error {
		if err := s.store.Create(ctx, t); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "ride already has an active thread")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create thread")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ThreadsCreated.Inc()
		s.metrics.ActiveThreads.Inc()
	}
	s.emit(ctx, events.NewThreadCreated(events.ThreadCreated{
		ThreadID:  t.ID.String(),
		RideID:    rideID.String(),
		Driver:    driver.String(),
		Passenger: passenger.String(),
		Timestamp: now,
	}))
	s.logger.InfoContext(ctx, "thread created",
		"thread_id", t.ID,
		"ride_id", rideID,
		"driver", driver,
		"passenger", passenger,
	)
	return t, nil
}

func (s *Service) Get(ctx context.Context, threadID id.ThreadID) (*models.Thread, error) {
	t, err := s.store.FindByID(ctx, threadID)
	if err != nil {
		return nil, translateFindErr(err)
	}
	return t, nil
}

// ActiveForRide returns the open thread of a ride to one of its participants.
func (s *Service) ActiveForRide(ctx context.Context, rideID id.RideID, caller id.Handle) (*models.Thread, error) {
	t, err := s.store.FindActiveByRide(ctx, rideID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "ride has no active thread")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ride thread")
	}
	if err := t.RequireMember(caller); err != nil {
		s.deny("active_for_ride", dErrors.CodeNotThreadMember)
		return nil, err
	}
	return t, nil
}

// UpdateETA records the driver's minutes away and announces the matching
// template to both participants.
func (s *Service) UpdateETA(ctx context.Context, threadID id.ThreadID, minutesAway uint32, caller id.Handle, now time.Time) (t *models.Thread, sent []*msgmodels.Message, err error) {
	ctx, span := s.tracer.Start(ctx, "thread.update_eta",
		tracing.String("thread_id", threadID.String()),
		tracing.Int("minutes_away", int(minutesAway)),
	)
	defer func() { span.End(err) }()

	err = s.tx.RunInTx(ctx, threadID.String(), func(ctx context.Context) error {
		var err error
		t, err = s.Get(ctx, threadID)
		if err != nil {
			return err
		}
		if err := t.RequireMember(caller); err != nil {
			s.deny("update_eta", dErrors.CodeNotThreadMember)
			return err
		}
		if !t.IsDriver(caller) {
			s.deny("update_eta", dErrors.CodeKYCRequired)
			return dErrors.New(dErrors.CodeKYCRequired, "only the approved driver can update the eta")
		}
		if err := s.requireApproved(ctx, caller, "update_eta"); err != nil {
			return err
		}
		if err := t.RequireActive(); err != nil {
			return err
		}

		tmpl := msgmodels.ETATemplate(minutesAway)
		sent, err = s.templates.SendDriverTemplate(ctx, threadID, tmpl.Code(), caller, now)
		if err != nil {
			return err
		}

		t.ETAMinutes = minutesAway
		if err := s.store.Update(ctx, t); err != nil {
			return translateUpdateErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "eta updated",
		"thread_id", threadID,
		"minutes_away", minutesAway,
		"messages", len(sent),
	)
	return t, sent, nil
}

// Deactivate closes the thread. Closing an already closed thread is a no-op.
func (s *Service) Deactivate(ctx context.Context, threadID id.ThreadID, caller id.Handle, now time.Time) (*models.Thread, error) {
	var (
		t      *models.Thread
		closed bool
	)
	err := s.tx.RunInTx(ctx, threadID.String(), func(ctx context.Context) error {
		var err error
		t, err = s.Get(ctx, threadID)
		if err != nil {
			return err
		}
		if err := t.RequireMember(caller); err != nil {
			s.deny("deactivate", dErrors.CodeNotThreadMember)
			return err
		}
		if closed = t.Close(now); !closed {
			return nil
		}
		if err := s.store.Update(ctx, t); err != nil {
			return translateUpdateErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !closed {
		return t, nil
	}

	if s.metrics != nil {
		s.metrics.ThreadsClosed.Inc()
		s.metrics.ActiveThreads.Dec()
	}
	s.emit(ctx, events.NewThreadClosed(events.ThreadClosed{
		ThreadID:  threadID.String(),
		RideID:    t.RideID.String(),
		ClosedBy:  caller.String(),
		Timestamp: now,
	}))
	s.logger.InfoContext(ctx, "thread closed", "thread_id", threadID, "closed_by", caller)
	return t, nil
}

// requireApproved maps anything short of an approved identity to CodeKYCRequired.
func (s *Service) requireApproved(ctx context.Context, handle id.Handle, operation string) error {
	status, err := s.identity.Status(ctx, handle)
	if err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read kyc status")
	}
	if err != nil || status != identitymodels.StatusApproved {
		s.deny(operation, dErrors.CodeKYCRequired)
		return dErrors.New(dErrors.CodeKYCRequired, "driver kyc approval required")
	}
	return nil
}

func translateFindErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "thread not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load thread")
}

func translateUpdateErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "thread not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update thread")
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "event dropped", "type", event.Type, "key", event.Key, "error", err)
	}
}

func (s *Service) deny(operation string, code dErrors.Code) {
	if s.metrics != nil {
		s.metrics.IncrementDenial(operation, string(code))
	}
}
