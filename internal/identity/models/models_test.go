package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ridelink/pkg/domain-errors"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func TestNewRecord(t *testing.T) {
	rec, err := NewRecord("ada", "Ada", "proof-1", now)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, rec.Status)
	assert.Equal(t, []string{"proof-1"}, rec.Proofs)
	assert.Zero(t, rec.Reputation)

	rec, err = NewRecord("bob", "Bob", "", now)
	require.NoError(t, err)
	assert.Empty(t, rec.Proofs)
	assert.NotNil(t, rec.Proofs)

	_, err = NewRecord("", "x", "", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"pending", "approved", "rejected"} {
		s, err := ParseStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, s.String())
	}
	_, err := ParseStatus("suspended")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidStatus))
}

func TestAdjustReputation_Saturates(t *testing.T) {
	rec := &Record{Reputation: 3}

	assert.Equal(t, uint64(0), rec.AdjustReputation(-5, now))
	assert.Equal(t, uint64(10), rec.AdjustReputation(10, now))
	assert.Equal(t, uint64(7), rec.AdjustReputation(-3, now))
	assert.Equal(t, uint64(0), rec.AdjustReputation(math.MinInt64, now))

	rec.Reputation = math.MaxUint64 - 1
	assert.Equal(t, uint64(math.MaxUint64), rec.AdjustReputation(math.MaxInt64, now))
	assert.Equal(t, now, rec.UpdatedAt)
}

func TestTransition(t *testing.T) {
	rec := &Record{Status: StatusPending}
	assert.Equal(t, StatusPending, rec.Transition(StatusApproved, now))
	assert.True(t, rec.IsApproved())
	assert.Equal(t, StatusApproved, rec.Transition(StatusRejected, now))
	assert.False(t, rec.IsApproved())
}

func TestClone_IsDeep(t *testing.T) {
	rec := &Record{Handle: "ada", Proofs: []string{"a"}}
	c := rec.Clone()
	c.Proofs[0] = "b"
	assert.Equal(t, "a", rec.Proofs[0])
}

func TestRegistry_IsAdmin(t *testing.T) {
	assert.True(t, Registry{Admin: "root"}.IsAdmin("root"))
	assert.False(t, Registry{Admin: "root"}.IsAdmin("ada"))
	assert.False(t, Registry{}.IsAdmin(""))
}
