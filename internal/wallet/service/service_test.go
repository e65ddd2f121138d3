package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	msgmodels "ridelink/internal/message/models"
	"ridelink/internal/platform/metrics"
	"ridelink/internal/wallet/service/mocks"
	"ridelink/pkg/contentref"
	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	messages *mocks.MockMessageSender
	metrics  *metrics.Metrics
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.messages = mocks.NewMockMessageSender(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(s.messages,
		WithMetrics(s.metrics),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *ServiceSuite) fund(handle id.Handle, amount int64) {
	_, err := s.service.Deposit(s.ctx, handle, amount)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestDeposit() {
	balance, err := s.service.Deposit(s.ctx, "rider", 50)
	s.Require().NoError(err)
	s.EqualValues(50, balance)

	balance, err = s.service.Deposit(s.ctx, "rider", 25)
	s.Require().NoError(err)
	s.EqualValues(75, balance)

	_, err = s.service.Deposit(s.ctx, "rider", 0)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	_, err = s.service.Deposit(s.ctx, "", 10)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestDepositRejectsOverflow() {
	s.fund("rider", math.MaxInt64)

	_, err := s.service.Deposit(s.ctx, "rider", 1)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	s.EqualValues(int64(math.MaxInt64), s.service.Balance(s.ctx, "rider"))
}

func (s *ServiceSuite) TestTransferRejectsPayeeOverflow() {
	s.fund("driver", math.MaxInt64)
	s.fund("rider", 10)

	err := s.service.Transfer(s.ctx, "rider", "driver", 5, "rider", now)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	s.EqualValues(10, s.service.Balance(s.ctx, "rider"))
	s.EqualValues(int64(math.MaxInt64), s.service.Balance(s.ctx, "driver"))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.WalletTransfers.WithLabelValues(outcomeInvalid)))
}

func (s *ServiceSuite) TestTransferNotifiesPayee() {
	s.fund("rider", 100)
	s.messages.EXPECT().
		SendDirect(gomock.Any(), id.Handle("rider"), id.Handle("driver"), msgmodels.KindPayment, gomock.Any(), now).
		DoAndReturn(func(_ context.Context, sender, recipient id.Handle, kind msgmodels.Kind, ref string, at time.Time) (*msgmodels.Message, error) {
			s.True(contentref.IsDerived(ref))
			return &msgmodels.Message{ID: id.NewMessageID(), Sender: sender, Recipient: recipient, Kind: kind, ContentRef: ref, CreatedAt: at}, nil
		})

	s.Require().NoError(s.service.Transfer(s.ctx, "rider", "driver", 40, "rider", now))
	s.EqualValues(60, s.service.Balance(s.ctx, "rider"))
	s.EqualValues(40, s.service.Balance(s.ctx, "driver"))
	s.InDelta(1, testutil.ToFloat64(s.metrics.WalletTransfers.WithLabelValues("ok")), 0)
}

func (s *ServiceSuite) TestTransferKeepsFundsMovedWhenNotificationFails() {
	s.fund("rider", 10)
	s.messages.EXPECT().SendDirect(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("store down"))

	s.Require().NoError(s.service.Transfer(s.ctx, "rider", "driver", 10, "rider", now))
	s.EqualValues(0, s.service.Balance(s.ctx, "rider"))
	s.EqualValues(10, s.service.Balance(s.ctx, "driver"))
}

func (s *ServiceSuite) TestTransferRejections() {
	s.fund("rider", 10)

	cases := []struct {
		name             string
		from, to, caller id.Handle
		amount           int64
		code             dErrors.Code
		outcome          string
	}{
		{"caller is not payer", "rider", "driver", "driver", 5, dErrors.CodeUnauthorized, "unauthorized"},
		{"insufficient funds", "rider", "driver", "rider", 11, dErrors.CodeInsufficientFunds, "insufficient_funds"},
		{"empty wallet", "driver", "rider", "driver", 1, dErrors.CodeInsufficientFunds, "insufficient_funds"},
		{"zero amount", "rider", "driver", "rider", 0, dErrors.CodeInvalidInput, "invalid"},
		{"negative amount", "rider", "driver", "rider", -3, dErrors.CodeInvalidInput, "invalid"},
		{"self transfer", "rider", "rider", "rider", 1, dErrors.CodeInvalidInput, "invalid"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			err := s.service.Transfer(s.ctx, tc.from, tc.to, tc.amount, tc.caller, now)
			s.True(dErrors.HasCode(err, tc.code), "got %v", err)
		})
	}

	s.EqualValues(10, s.service.Balance(s.ctx, "rider"))
	s.EqualValues(0, s.service.Balance(s.ctx, "driver"))
	s.InDelta(2, testutil.ToFloat64(s.metrics.WalletTransfers.WithLabelValues("insufficient_funds")), 0)
	s.InDelta(3, testutil.ToFloat64(s.metrics.WalletTransfers.WithLabelValues("invalid")), 0)
	s.InDelta(1, testutil.ToFloat64(s.metrics.WalletTransfers.WithLabelValues("unauthorized")), 0)
}
