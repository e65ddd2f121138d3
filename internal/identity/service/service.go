package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ridelink/internal/events"
	"ridelink/internal/identity/models"
	"ridelink/internal/platform/metrics"
	"ridelink/internal/sentinel"
	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
	platformsync "ridelink/pkg/platform/sync"
	"ridelink/pkg/platform/tracing"
)

// Store persists identity records.
// Error Contract:
// - Create returns sentinel.ErrConflict when the handle is taken
// - FindByHandle and Update return sentinel.ErrNotFound for unknown handles
type Store interface {
	Create(ctx context.Context, rec *models.Record) error
	FindByHandle(ctx context.Context, handle id.Handle) (*models.Record, error)
	Update(ctx context.Context, rec *models.Record) error
}

// Emitter publishes domain events. Failures are logged and dropped.
type Emitter interface {
	Emit(ctx context.Context, event events.Event) error
}

type Option func(*Service)

// Service is the identity registry: registration, proofs, KYC status and reputation.
type Service struct {
	store    Store
	registry models.Registry
	tx       *platformsync.KeyedTx
	events   Emitter
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   *tracing.Tracer
}

func New(store Store, registry models.Registry, opts ...Option) *Service {
	svc := &Service{
		store:    store,
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.tx == nil {
		svc.tx = platformsync.NewKeyedTx(platformsync.NewShardedMutex(), "identity")
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

// WithKeyedTx replaces the per-handle lock.
func WithKeyedTx(tx *platformsync.KeyedTx) Option {
	return func(s *Service) { s.tx = tx }
}

// Register adds handle to the registry in Pending status.
func (s *Service) Register(ctx context.Context, handle id.Handle, displayName, proofRef string, now time.Time) (rec *models.Record, err error) {
	ctx, span := s.tracer.Start(ctx, "identity.register", tracing.String("handle", handle.String()))
	defer func() { span.End(err) }()

	rec, err = models.NewRecord(handle, displayName, proofRef, now)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, handle.String(), func(ctx context.Context) error {
		if err := s.store.Create(ctx, rec); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeAlreadyRegistered, "handle already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register identity")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IdentitiesRegistered.Inc()
	}
	s.emit(ctx, events.NewUserRegistered(events.UserRegistered{
		Handle:      handle.String(),
		ProofRef:    proofRef,
		DisplayName: displayName,
		Timestamp:   now,
	}))
	s.logger.InfoContext(ctx, "identity registered", "handle", handle)
	return rec, nil
}

// AddProof appends proofRef to the caller's own record.
func (s *Service) AddProof(ctx context.Context, handle id.Handle, proofRef string, caller id.Handle, now time.Time) (*models.Record, error) {
	if caller != handle {
		s.deny("add_proof", dErrors.CodeUnauthorized)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "only the identity owner can add proofs")
	}
	if proofRef == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "proof reference is required")
	}

	var updated *models.Record
	err := s.mutate(ctx, handle, func(rec *models.Record) error {
		rec.AddProof(proofRef, now)
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateStatus moves handle to newStatus. Only the registry admin may call it.
func (s *Service) UpdateStatus(ctx context.Context, handle id.Handle, newStatus models.Status, caller id.Handle, now time.Time) (rec *models.Record, err error) {
	ctx, span := s.tracer.Start(ctx, "identity.update_status",
		tracing.String("handle", handle.String()),
		tracing.String("status", newStatus.String()),
	)
	defer func() { span.End(err) }()

	if !s.registry.IsAdmin(caller) {
		s.deny("update_status", dErrors.CodeUnauthorized)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "only the registry admin can change kyc status")
	}
	if !newStatus.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidStatus, "invalid kyc status")
	}

	var old models.Status
	err = s.mutate(ctx, handle, func(r *models.Record) error {
		old = r.Transition(newStatus, now)
		rec = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.KYCTransitions.WithLabelValues(newStatus.String()).Inc()
	}
	s.emit(ctx, events.NewKYCStatusUpdated(events.KYCStatusUpdated{
		Handle:    handle.String(),
		OldStatus: old.String(),
		NewStatus: newStatus.String(),
		Timestamp: now,
	}))
	s.logger.InfoContext(ctx, "kyc status updated",
		"handle", handle,
		"old_status", old,
		"new_status", newStatus,
	)
	return rec, nil
}

// AdjustReputation adds delta to the reputation, clamping at zero.
func (s *Service) AdjustReputation(ctx context.Context, handle id.Handle, delta int64, now time.Time) (uint64, error) {
	var reputation uint64
	err := s.mutate(ctx, handle, func(rec *models.Record) error {
		reputation = rec.AdjustReputation(delta, now)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return reputation, nil
}

// IsAdmin reports whether h is the registry admin.
func (s *Service) IsAdmin(h id.Handle) bool {
	return s.registry.IsAdmin(h)
}

func (s *Service) Get(ctx context.Context, handle id.Handle) (*models.Record, error) {
	rec, err := s.store.FindByHandle(ctx, handle)
	if err != nil {
		return nil, translateFindErr(err)
	}
	return rec, nil
}

// Status satisfies the identity oracle consulted by threads and messages.
func (s *Service) Status(ctx context.Context, handle id.Handle) (models.Status, error) {
	rec, err := s.Get(ctx, handle)
	if err != nil {
		return "", err
	}
	return rec.Status, nil
}

func (s *Service) Reputation(ctx context.Context, handle id.Handle) (uint64, error) {
	rec, err := s.Get(ctx, handle)
	if err != nil {
		return 0, err
	}
	return rec.Reputation, nil
}

// mutate loads, changes and saves one record under the handle lock.
func (s *Service) mutate(ctx context.Context, handle id.Handle, fn func(rec *models.Record) error) error {
	return s.tx.RunInTx(ctx, handle.String(), func(ctx context.Context) error {
		rec, err := s.store.FindByHandle(ctx, handle)
		if err != nil {
			return translateFindErr(err)
		}
		if err := fn(rec); err != nil {
			return err
		}
		if err := s.store.Update(ctx, rec); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "identity not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update identity")
		}
		return nil
	})
}

func translateFindErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
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
