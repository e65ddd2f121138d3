package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ridelink/pkg/domain-errors"
)

type sendRequest struct {
	ContentRef string `json:"content_ref" validate:"notblank"`
	Minutes    int    `json:"minutes_away" validate:"gte=0"`
	ThreadID   string `json:"thread_id" validate:"omitempty,uuid"`
}

func TestValidate(t *testing.T) {
	t.Run("accepts a valid request", func(t *testing.T) {
		require.NoError(t, Validate(&sendRequest{ContentRef: "hi"}))
	})

	t.Run("notblank rejects whitespace", func(t *testing.T) {
		err := Validate(&sendRequest{ContentRef: "   "})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "content_ref must not be blank", err.Error())
	})

	t.Run("reports numeric bounds", func(t *testing.T) {
		err := Validate(&sendRequest{ContentRef: "x", Minutes: -1})
		assert.Equal(t, "minutes must be at least 0", err.Error())
	})

	t.Run("reports uuid format", func(t *testing.T) {
		err := Validate(&sendRequest{ContentRef: "x", ThreadID: "nope"})
		assert.Equal(t, "thread_id must be a valid uuid", err.Error())
	})
}

func TestLimits(t *testing.T) {
	assert.NoError(t, CheckStringLength("content_ref", "short", MaxContentRefLength))
	err := CheckStringLength("content_ref", strings.Repeat("x", MaxContentRefLength+1), MaxContentRefLength)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Error(t, CheckSliceCount("replies", 6, 5))
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "minutes_away", toSnakeCase("MinutesAway"))
	assert.Equal(t, "thread_id", toSnakeCase("ThreadID"))
}
