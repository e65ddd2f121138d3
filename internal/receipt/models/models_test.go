package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ridelink/pkg/domain-errors"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"unread", "delivered", "read"} {
		s, err := ParseStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, s.String())
	}

	for _, raw := range []string{"", "READ", "seen"} {
		_, err := ParseStatus(raw)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidStatus), raw)
	}
}
