//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ridelink/internal/receipt/models"
	"ridelink/internal/receipt/store"
	"ridelink/internal/sentinel"
	id "ridelink/pkg/domain"
	"ridelink/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "receipts"))
}

func (s *PostgresStoreSuite) TestAppendOrderAndLatest() {
	ctx := context.Background()
	messageID := id.NewMessageID()
	now := time.Now().UTC().Truncate(time.Microsecond)

	statuses := []models.Status{models.StatusDelivered, models.StatusRead, models.StatusUnread}
	for _, st := range statuses {
		s.Require().NoError(s.store.Append(ctx, &models.Receipt{
			ID:         id.NewReceiptID(),
			MessageID:  messageID,
			Reader:     "rider-1",
			Recipient:  "driver-1",
			Status:     st,
			RecordedAt: now,
		}))
	}

	all, err := s.store.ListByMessage(ctx, messageID)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	for i, st := range statuses {
		s.Equal(st, all[i].Status)
	}
	s.Equal(id.Handle("driver-1"), all[0].Recipient)
	s.True(all[0].RecordedAt.Equal(now))

	latest, err := s.store.Latest(ctx, messageID, "rider-1")
	s.Require().NoError(err)
	s.Equal(models.StatusUnread, latest.Status)

	_, err = s.store.Latest(ctx, messageID, "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
