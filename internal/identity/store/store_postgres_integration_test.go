//go:build integration

package store_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ridelink/internal/identity/models"
	"ridelink/internal/identity/store"
	"ridelink/internal/sentinel"
	"ridelink/pkg/testutil"
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
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "identities"))
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	rec, err := models.NewRecord("ada", "Ada Lovelace", "proof-1", now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, rec))

	rec.AddProof("proof-2", now.Add(time.Second))
	rec.Transition(models.StatusApproved, now.Add(time.Second))
	rec.Reputation = math.MaxUint64
	s.Require().NoError(s.store.Update(ctx, rec))

	found, err := s.store.FindByHandle(ctx, "ada")
	s.Require().NoError(err)
	s.Equal("Ada Lovelace", found.DisplayName)
	s.Equal(models.StatusApproved, found.Status)
	s.Equal([]string{"proof-1", "proof-2"}, found.Proofs)
	s.Equal(uint64(math.MaxUint64), found.Reputation)
	s.True(found.CreatedAt.Equal(now))
}

func (s *PostgresStoreSuite) TestEmptyProofs() {
	ctx := context.Background()
	rec, err := models.NewRecord("bob", "Bob", "", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, rec))

	found, err := s.store.FindByHandle(ctx, "bob")
	s.Require().NoError(err)
	s.NotNil(found.Proofs)
	s.Empty(found.Proofs)
}

func (s *PostgresStoreSuite) TestSentinels() {
	ctx := context.Background()

	_, err := s.store.FindByHandle(ctx, "ghost")
	s.ErrorIs(err, sentinel.ErrNotFound)

	ghost, _ := models.NewRecord("ghost", "", "", time.Now())
	s.ErrorIs(s.store.Update(ctx, ghost), sentinel.ErrNotFound)
}

// TestConcurrentCreate verifies the primary key makes exactly one registration win.
func (s *PostgresStoreSuite) TestConcurrentCreate() {
	ctx := context.Background()
	result := testutil.RunConcurrent(10, func(int) error {
		rec, _ := models.NewRecord("racer", "Racer", "", time.Now())
		return s.store.Create(ctx, rec)
	})

	s.Equal(int32(1), result.Successes)
	s.Equal(int32(9), result.Conflicts)
	s.Zero(result.Errors)
}
