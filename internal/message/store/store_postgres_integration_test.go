//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ridelink/internal/message/models"
	"ridelink/internal/message/store"
	"ridelink/internal/sentinel"
	id "ridelink/pkg/domain"
	"ridelink/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	now      time.Time
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
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "messages"))
}

func (s *PostgresStoreSuite) message(threadID id.ThreadID, recipient id.Handle) *models.Message {
	return &models.Message{
		ID:         id.NewMessageID(),
		ThreadID:   threadID,
		Sender:     "sender",
		Recipient:  recipient,
		Kind:       models.KindRide,
		ContentRef: "ref",
		CreatedAt:  s.now,
	}
}

func (s *PostgresStoreSuite) TestDirectMessageRoundTrip() {
	ctx := context.Background()
	m := s.message(id.ThreadID{}, "ada")
	s.Require().NoError(s.store.Save(ctx, m))

	found, err := s.store.FindByID(ctx, m.ID)
	s.Require().NoError(err)
	s.True(found.IsDirect())
	s.Nil(found.TemplateCode)
	s.Equal(m.Recipient, found.Recipient)
	s.True(found.CreatedAt.Equal(s.now))
}

func (s *PostgresStoreSuite) TestTemplateRoundTrip() {
	ctx := context.Background()
	code := models.RideCompleted.Code()
	m := s.message(id.NewThreadID(), "ada")
	m.Kind = models.KindSupportTemplate
	m.TemplateCode = &code
	m.IsTemplate = true
	s.Require().NoError(s.store.Save(ctx, m))

	found, err := s.store.FindByID(ctx, m.ID)
	s.Require().NoError(err)
	s.Equal(m.ThreadID, found.ThreadID)
	s.Require().NotNil(found.TemplateCode)
	s.Equal(code, *found.TemplateCode)
	s.True(found.IsTemplate)
	s.Equal(models.KindSupportTemplate, found.Kind)
}

func (s *PostgresStoreSuite) TestSaveAllRollsBackOnConflict() {
	ctx := context.Background()
	existing := s.message(id.ThreadID{}, "ada")
	s.Require().NoError(s.store.Save(ctx, existing))

	fresh := s.message(id.ThreadID{}, "ada")
	err := s.store.SaveAll(ctx, []*models.Message{fresh, existing})
	s.ErrorIs(err, sentinel.ErrConflict)

	_, err = s.store.FindByID(ctx, fresh.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListingsOrderedBySequence() {
	ctx := context.Background()
	threadID := id.NewThreadID()
	first := s.message(threadID, "ada")
	second := s.message(threadID, "bob")
	s.Require().NoError(s.store.SaveAll(ctx, []*models.Message{first, second}))

	thread, err := s.store.ListByThread(ctx, threadID)
	s.Require().NoError(err)
	s.Require().Len(thread, 2)
	s.Equal(first.ID, thread[0].ID)
	s.Equal(second.ID, thread[1].ID)

	inbox, err := s.store.ListByRecipient(ctx, "bob")
	s.Require().NoError(err)
	s.Len(inbox, 1)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	m := s.message(id.ThreadID{}, "ada")
	s.Require().NoError(s.store.Save(ctx, m))

	s.Require().NoError(s.store.Delete(ctx, m.ID))
	s.ErrorIs(s.store.Delete(ctx, m.ID), sentinel.ErrNotFound)
}
