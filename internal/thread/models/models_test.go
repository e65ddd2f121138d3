package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ridelink/pkg/domain-errors"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	th, err := New("ride-1", "driver", "rider", now)
	require.NoError(t, err)
	assert.True(t, th.Active)
	assert.Zero(t, th.ETAMinutes)
	assert.False(t, th.ID.IsNil())

	_, err = New("ride-1", "same", "same", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	_, err = New("", "a", "b", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	_, err = New("ride-1", "", "b", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestMembership(t *testing.T) {
	th, err := New("ride-1", "driver", "rider", now)
	require.NoError(t, err)

	assert.True(t, th.IsMember("driver"))
	assert.True(t, th.IsMember("rider"))
	assert.False(t, th.IsMember("mallory"))
	assert.False(t, th.IsMember(""))

	assert.NoError(t, th.RequireMember("rider"))
	assert.True(t, dErrors.HasCode(th.RequireMember("mallory"), dErrors.CodeNotThreadMember))

	assert.Equal(t, "rider", th.Other("driver").String())
	assert.Equal(t, "driver", th.Other("rider").String())
}

func TestClose(t *testing.T) {
	th, err := New("ride-1", "driver", "rider", now)
	require.NoError(t, err)

	assert.True(t, th.Close(now))
	assert.False(t, th.Close(now.Add(time.Hour)))
	require.NotNil(t, th.ClosedAt)
	assert.Equal(t, now, *th.ClosedAt)
	assert.True(t, dErrors.HasCode(th.RequireActive(), dErrors.CodeThreadInactive))

	c := th.Clone()
	*c.ClosedAt = now.Add(time.Minute)
	assert.Equal(t, now, *th.ClosedAt)
}
