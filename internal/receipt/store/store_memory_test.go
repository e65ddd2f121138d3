package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridelink/internal/receipt/models"
	"ridelink/internal/sentinel"
	id "ridelink/pkg/domain"
)

func TestInMemory_LatestPerReader(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	messageID := id.NewMessageID()
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	for _, r := range []*models.Receipt{
		{ID: id.NewReceiptID(), MessageID: messageID, Reader: "ada", Status: models.StatusDelivered, RecordedAt: now},
		{ID: id.NewReceiptID(), MessageID: messageID, Reader: "bob", Status: models.StatusRead, RecordedAt: now},
		{ID: id.NewReceiptID(), MessageID: messageID, Reader: "ada", Status: models.StatusRead, RecordedAt: now},
	} {
		require.NoError(t, s.Append(ctx, r))
	}

	latest, err := s.Latest(ctx, messageID, "ada")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRead, latest.Status)

	_, err = s.Latest(ctx, messageID, "eve")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	all, err := s.ListByMessage(ctx, messageID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	all[0].Status = models.StatusUnread
	again, _ := s.ListByMessage(ctx, messageID)
	assert.Equal(t, models.StatusDelivered, again[0].Status)
}
