package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_RejectsEmptyDSN(t *testing.T) {
	err := Migrate("", Up)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestMigrate_RejectsUnknownDirection(t *testing.T) {
	for _, dir := range []Direction{"", "UP", "sideways"} {
		t.Run(string(dir), func(t *testing.T) {
			err := Migrate("postgres://localhost/ridelink", dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "direction")
		})
	}
}

func TestNew_EmptyURLDisablesPool(t *testing.T) {
	pool, err := New(t.Context(), DefaultConfig(""))
	require.NoError(t, err)
	assert.Nil(t, pool)
	assert.Error(t, pool.Check(t.Context()))
	assert.NoError(t, pool.Close())
}
