// Package service holds the in-memory wallet ledger used for ride payments.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	msgmodels "ridelink/internal/message/models"
	"ridelink/internal/platform/metrics"
	"ridelink/pkg/contentref"
	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
)

const (
	outcomeOK                = "ok"
	outcomeInsufficientFunds = "insufficient_funds"
	outcomeUnauthorized      = "unauthorized"
	outcomeInvalid           = "invalid"
)

// MessageSender delivers the payment notification to the payee.
type MessageSender interface {
	SendDirect(ctx context.Context, sender, recipient id.Handle, kind msgmodels.Kind, contentRef string, now time.Time) (*msgmodels.Message, error)
}

type Option func(*Service)

// Service keeps balances per handle. Unknown handles hold zero.
type Service struct {
	mu       sync.Mutex
	balances map[id.Handle]int64

	messages MessageSender
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(messages MessageSender, opts ...Option) *Service {
	svc := &Service{
		balances: make(map[id.Handle]int64),
		messages: messages,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// Deposit credits amount to handle and returns the new balance.
func (s *Service) Deposit(ctx context.Context, handle id.Handle, amount int64) (int64, error) {
	if handle.IsNil() {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "handle is required")
	}
	if amount <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "amount must be positive")
	}

	s.mu.Lock()
	if s.balances[handle] > math.MaxInt64-amount {
		s.mu.Unlock()
		return 0, errBalanceOverflow()
	}
	s.balances[handle] += amount
	balance := s.balances[handle]
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "wallet deposit", "handle", handle, "amount", amount)
	return balance, nil
}

func (s *Service) Balance(_ context.Context, handle id.Handle) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[handle]
}

// Transfer moves amount from payer to payee and notifies the payee with a
// direct payment message. A failed notification does not undo the transfer.
func (s *Service) Transfer(ctx context.Context, from, to id.Handle, amount int64, caller id.Handle, now time.Time) error {
	if err := s.debitCredit(from, to, amount, caller); err != nil {
		s.observe(dErrors.CodeOf(err))
		return err
	}
	s.observe("")

	content := fmt.Sprintf("Payment of %d from %s", amount, from)
	if _, err := s.messages.SendDirect(ctx, from, to, msgmodels.KindPayment, contentref.OfString(content), now); err != nil {
		s.logger.WarnContext(ctx, "payment notification failed", "from", from, "to", to, "error", err)
	}
	s.logger.InfoContext(ctx, "wallet transfer", "from", from, "to", to, "amount", amount)
	return nil
}

func (s *Service) debitCredit(from, to id.Handle, amount int64, caller id.Handle) error {
	if from.IsNil() || to.IsNil() || from == to {
		return dErrors.New(dErrors.CodeInvalidInput, "payer and payee must be distinct handles")
	}
	if amount <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "amount must be positive")
	}
	if caller != from {
		return dErrors.New(dErrors.CodeUnauthorized, "only the payer can transfer funds")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balances[from] < amount {
		return dErrors.New(dErrors.CodeInsufficientFunds, "insufficient funds")
	}
	if s.balances[to] > math.MaxInt64-amount {
		return errBalanceOverflow()
	}
	s.balances[from] -= amount
	s.balances[to] += amount
	return nil
}

func errBalanceOverflow() error {
	return dErrors.New(dErrors.CodeInvalidInput, "amount would overflow the balance")
}

func (s *Service) observe(code dErrors.Code) {
	if s.metrics == nil {
		return
	}
	outcome := outcomeOK
	switch code {
	case "":
	case dErrors.CodeInsufficientFunds:
		outcome = outcomeInsufficientFunds
	case dErrors.CodeUnauthorized:
		outcome = outcomeUnauthorized
	default:
		outcome = outcomeInvalid
	}
	s.metrics.WalletTransfers.WithLabelValues(outcome).Inc()
}
