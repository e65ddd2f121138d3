package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ridelink/internal/events"
	identitymodels "ridelink/internal/identity/models"
	"ridelink/internal/message/models"
	"ridelink/internal/platform/metrics"
	"ridelink/internal/sentinel"
	threadmodels "ridelink/internal/thread/models"
	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
	platformsync "ridelink/pkg/platform/sync"
	"ridelink/pkg/platform/tracing"
)

// Store persists messages.
// Error Contract:
// - SaveAll is atomic and returns sentinel.ErrConflict on a duplicate id
// - FindByID and Delete return sentinel.ErrNotFound for unknown messages
// - List methods return messages oldest first and never nil
type Store interface {
	Save(ctx context.Context, m *models.Message) error
	SaveAll(ctx context.Context, msgs []*models.Message) error
	FindByID(ctx context.Context, messageID id.MessageID) (*models.Message, error)
	Delete(ctx context.Context, messageID id.MessageID) error
	ListByRecipient(ctx context.Context, recipient id.Handle) ([]*models.Message, error)
	ListByThread(ctx context.Context, threadID id.ThreadID) ([]*models.Message, error)
}

// ThreadReader loads threads for membership and activity checks.
// FindByID returns sentinel.ErrNotFound for unknown threads.
type ThreadReader interface {
	FindByID(ctx context.Context, threadID id.ThreadID) (*threadmodels.Thread, error)
}

// StatusReader is the identity oracle used for KYC gating.
type StatusReader interface {
	Status(ctx context.Context, handle id.Handle) (identitymodels.Status, error)
}

// Preferences stores each passenger's quick-reply allow-list.
type Preferences interface {
	EnabledReplies(ctx context.Context, handle id.Handle) (models.ReplySet, error)
	SetEnabledReplies(ctx context.Context, handle id.Handle, set models.ReplySet) error
}

type Emitter interface {
	Emit(ctx context.Context, event events.Event) error
}

type Option func(*Service)

// Service creates, lists and expires messages, and runs the template and
// quick-reply engine.
type Service struct {
	store       Store
	threads     ThreadReader
	identity    StatusReader
	preferences Preferences
	tx          *platformsync.KeyedTx
	events      Emitter
	metrics     *metrics.Metrics
	logger      *slog.Logger
	tracer      *tracing.Tracer
}

func New(store Store, threads ThreadReader, identity StatusReader, opts ...Option) *Service {
	svc := &Service{
		store:    store,
		threads:  threads,
		identity: identity,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.tx == nil {
		svc.tx = platformsync.NewKeyedTx(platformsync.NewShardedMutex(), "message")
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

// WithKeyedTx shares the per-thread lock with the thread service.
func WithKeyedTx(tx *platformsync.KeyedTx) Option {
	return func(s *Service) { s.tx = tx }
}

// WithPreferences sets the quick-reply allow-list store.
func WithPreferences(p Preferences) Option {
	return func(s *Service) { s.preferences = p }
}

// SendDirect stores a message outside any thread. Only the kind is checked.
func (s *Service) SendDirect(ctx context.Context, sender, recipient id.Handle, kind models.Kind, contentRef string, now time.Time) (*models.Message, error) {
	if !kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid message kind")
	}
	if sender.IsNil() || recipient.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "sender and recipient are required")
	}

	m := &models.Message{
		ID:         id.NewMessageID(),
		Sender:     sender,
		Recipient:  recipient,
		Kind:       kind,
		ContentRef: contentRef,
		CreatedAt:  now,
	}
	if err := s.store.Save(ctx, m); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store message")
	}

	s.recordSent(ctx, m)
	s.logger.InfoContext(ctx, "direct message sent",
		"message_id", m.ID,
		"sender", sender,
		"recipient", recipient,
		"kind", kind,
	)
	return m, nil
}

// SendInThread posts a ride message to the other participant.
func (s *Service) SendInThread(ctx context.Context, threadID id.ThreadID, sender id.Handle, contentRef string, now time.Time) (m *models.Message, err error) {
	ctx, span := s.tracer.Start(ctx, "message.send_in_thread", tracing.String("thread_id", threadID.String()))
	defer func() { span.End(err) }()

	var thread *threadmodels.Thread
	err = s.tx.RunInTx(ctx, threadID.String(), func(ctx context.Context) error {
		var err error
		thread, err = s.loadThread(ctx, threadID)
		if err != nil {
			return err
		}
		if err := thread.RequireMember(sender); err != nil {
			s.deny("send_in_thread", dErrors.CodeNotThreadMember)
			return err
		}
		if thread.IsDriver(sender) {
			if err := s.requireApproved(ctx, sender, "send_in_thread"); err != nil {
				return err
			}
		}
		if err := thread.RequireActive(); err != nil {
			return err
		}

		m = &models.Message{
			ID:         id.NewMessageID(),
			ThreadID:   threadID,
			Sender:     sender,
			Recipient:  thread.Other(sender),
			Kind:       models.KindRide,
			ContentRef: contentRef,
			CreatedAt:  now,
		}
		if err := s.store.Save(ctx, m); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store message")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitThreadMessage(ctx, thread, models.KindRide, now)
	s.recordSent(ctx, m)
	s.logger.InfoContext(ctx, "thread message sent",
		"thread_id", threadID,
		"message_id", m.ID,
		"sender", sender,
	)
	return m, nil
}

// Expire deletes the message when it is strictly older than threshold.
// A missing message is not an error.
func (s *Service) Expire(ctx context.Context, messageID id.MessageID, now time.Time, threshold time.Duration) (bool, error) {
	var expired bool
	err := s.tx.RunInTx(ctx, messageID.String(), func(ctx context.Context) error {
		m, err := s.store.FindByID(ctx, messageID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load message")
		}
		if !m.ExpiredAt(now, threshold) {
			return nil
		}
		if err := s.store.Delete(ctx, messageID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete message")
		}
		expired = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if expired {
		if s.metrics != nil {
			s.metrics.MessagesExpired.Inc()
		}
		s.logger.InfoContext(ctx, "message expired", "message_id", messageID, "threshold", threshold)
	}
	return expired, nil
}

func (s *Service) Lookup(ctx context.Context, messageID id.MessageID) (*models.Message, error) {
	m, err := s.store.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "message not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load message")
	}
	return m, nil
}

// Inbox lists messages addressed to recipient, oldest first.
func (s *Service) Inbox(ctx context.Context, recipient id.Handle) ([]*models.Message, error) {
	msgs, err := s.store.ListByRecipient(ctx, recipient)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list inbox")
	}
	return msgs, nil
}

// ListThread returns the thread history to one of its participants.
func (s *Service) ListThread(ctx context.Context, threadID id.ThreadID, caller id.Handle) ([]*models.Message, error) {
	thread, err := s.loadThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if err := thread.RequireMember(caller); err != nil {
		s.deny("list_thread", dErrors.CodeNotThreadMember)
		return nil, err
	}
	msgs, err := s.store.ListByThread(ctx, threadID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list thread messages")
	}
	return msgs, nil
}

func (s *Service) loadThread(ctx context.Context, threadID id.ThreadID) (*threadmodels.Thread, error) {
	t, err := s.threads.FindByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "thread not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load thread")
	}
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

func (s *Service) recordSent(ctx context.Context, m *models.Message) {
	if s.metrics != nil {
		s.metrics.MessagesSent.WithLabelValues(m.Kind.String()).Inc()
	}
	s.emit(ctx, events.NewMessageSent(events.MessageSent{
		Sender:     m.Sender.String(),
		Recipient:  m.Recipient.String(),
		ContentRef: m.ContentRef,
		Kind:       m.Kind.String(),
		MessageID:  m.ID.String(),
		Timestamp:  m.CreatedAt,
	}))
}

func (s *Service) emitThreadMessage(ctx context.Context, t *threadmodels.Thread, kind models.Kind, now time.Time) {
	s.emit(ctx, events.NewNewThreadMessage(events.NewThreadMessage{
		ThreadID:  t.ID.String(),
		RideID:    t.RideID.String(),
		Kind:      kind.String(),
		Timestamp: now,
	}))
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
