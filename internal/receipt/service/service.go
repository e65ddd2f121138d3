package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ridelink/internal/events"
	msgmodels "ridelink/internal/message/models"
	"ridelink/internal/platform/metrics"
	"ridelink/internal/receipt/models"
	"ridelink/internal/sentinel"
	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
)

// Store appends and reads receipts.
// Error Contract:
// - ListByMessage returns receipts oldest first and never nil
// - Latest returns sentinel.ErrNotFound when the reader has no receipt
type Store interface {
	Append(ctx context.Context, r *models.Receipt) error
	ListByMessage(ctx context.Context, messageID id.MessageID) ([]*models.Receipt, error)
	Latest(ctx context.Context, messageID id.MessageID, reader id.Handle) (*models.Receipt, error)
}

// MessageReader resolves the original sender of a message.
// FindByID returns sentinel.ErrNotFound for unknown messages.
type MessageReader interface {
	FindByID(ctx context.Context, messageID id.MessageID) (*msgmodels.Message, error)
}

type Emitter interface {
	Emit(ctx context.Context, event events.Event) error
}

type Option func(*Service)

// Service is the acknowledgment tracker.
type Service struct {
	store    Store
	messages MessageReader
	events   Emitter
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(store Store, messages MessageReader, opts ...Option) *Service {
	svc := &Service{
		store:    store,
		messages: messages,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
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

// Acknowledge marks the message read by reader.
func (s *Service) Acknowledge(ctx context.Context, messageID id.MessageID, reader id.Handle, now time.Time) (*models.Receipt, error) {
	return s.record(ctx, messageID, models.StatusRead, reader, now)
}

// SetStatus records any delivery status; transitions are not constrained.
func (s *Service) SetStatus(ctx context.Context, messageID id.MessageID, status models.Status, reader id.Handle, now time.Time) (*models.Receipt, error) {
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidStatus, "invalid delivery status")
	}
	return s.record(ctx, messageID, status, reader, now)
}

func (s *Service) List(ctx context.Context, messageID id.MessageID) ([]*models.Receipt, error) {
	receipts, err := s.store.ListByMessage(ctx, messageID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list receipts")
	}
	return receipts, nil
}

// Latest returns the current status reported by reader.
func (s *Service) Latest(ctx context.Context, messageID id.MessageID, reader id.Handle) (*models.Receipt, error) {
	r, err := s.store.Latest(ctx, messageID, reader)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no receipt for reader")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load receipt")
	}
	return r, nil
}

func (s *Service) record(ctx context.Context, messageID id.MessageID, status models.Status, reader id.Handle, now time.Time) (*models.Receipt, error) {
	if reader.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "reader is required")
	}
	m, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "message not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load message")
	}

	r := &models.Receipt{
		ID:         id.NewReceiptID(),
		MessageID:  messageID,
		Reader:     reader,
		Recipient:  m.Sender,
		Status:     status,
		RecordedAt: now,
	}
	if err := s.store.Append(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record receipt")
	}

	if s.metrics != nil {
		s.metrics.ReceiptsRecorded.WithLabelValues(status.String()).Inc()
	}
	s.emit(ctx, events.NewReceiptRecorded(events.ReceiptRecorded{
		MessageID: messageID.String(),
		Reader:    reader.String(),
		Recipient: r.Recipient.String(),
		Status:    status.String(),
		Timestamp: now,
	}))
	s.logger.InfoContext(ctx, "receipt recorded",
		"message_id", messageID,
		"reader", reader,
		"status", status,
	)
	return r, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "event dropped", "type", event.Type, "key", event.Key, "error", err)
	}
}
