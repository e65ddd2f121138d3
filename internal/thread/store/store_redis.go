package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ridelink/internal/sentinel"
	"ridelink/internal/thread/models"
	id "ridelink/pkg/domain"
)

const (
	threadKeyPrefix = "ridelink:thread:"
	rideKeyPrefix   = "ridelink:ride:"

	// maxUpdateRetries bounds optimistic retries when another writer touches
	// the watched keys between read and commit.
	maxUpdateRetries = 3
)

type threadJSON struct {
	ID         string `json:"id"`
	RideID     string `json:"ride_id"`
	Driver     string `json:"driver"`
	Passenger  string `json:"passenger"`
	Active     bool   `json:"active"`
	ETAMinutes uint32 `json:"eta_minutes"`
	CreatedAt  int64  `json:"created_at"`          // Unix nano
	ClosedAt   *int64 `json:"closed_at,omitempty"` // Unix nano
}

func threadToJSON(t *models.Thread) *threadJSON {
	j := &threadJSON{
		ID:         t.ID.String(),
		RideID:     t.RideID.String(),
		Driver:     t.Driver.String(),
		Passenger:  t.Passenger.String(),
		Active:     t.Active,
		ETAMinutes: t.ETAMinutes,
		CreatedAt:  t.CreatedAt.UnixNano(),
	}
	if t.ClosedAt != nil {
		ts := t.ClosedAt.UnixNano()
		j.ClosedAt = &ts
	}
	return j
}

func threadFromJSON(j *threadJSON) (*models.Thread, error) {
	threadID, err := uuid.Parse(j.ID)
	if err != nil {
		return nil, fmt.Errorf("parse thread id: %w", err)
	}
	t := &models.Thread{
		ID:         id.ThreadID(threadID),
		RideID:     id.RideID(j.RideID),
		Driver:     id.Handle(j.Driver),
		Passenger:  id.Handle(j.Passenger),
		Active:     j.Active,
		ETAMinutes: j.ETAMinutes,
		CreatedAt:  time.Unix(0, j.CreatedAt).UTC(),
	}
	if j.ClosedAt != nil {
		closed := time.Unix(0, *j.ClosedAt).UTC()
		t.ClosedAt = &closed
	}
	return t, nil
}

// RedisStore keeps each thread as a JSON value and the active thread of a ride
// as a pointer key. Writes use WATCH/MULTI so the active-per-ride rule holds
// across service instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) threadKey(threadID id.ThreadID) string {
	return threadKeyPrefix + threadID.String()
}

func (s *RedisStore) rideKey(rideID id.RideID) string {
	return rideKeyPrefix + rideID.String() + ":active"
}

func (s *RedisStore) Create(ctx context.Context, t *models.Thread) error {
	data, err := json.Marshal(threadToJSON(t))
	if err != nil {
		return fmt.Errorf("marshal thread: %w", err)
	}
	threadKey := s.threadKey(t.ID)
	rideKey := s.rideKey(t.RideID)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		keys := []string{threadKey}
		if t.Active {
			keys = append(keys, rideKey)
		}
		n, err := tx.Exists(ctx, keys...).Result()
		if err != nil {
			return fmt.Errorf("check thread keys: %w", err)
		}
		if n > 0 {
			return sentinel.ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, threadKey, data, 0)
			if t.Active {
				pipe.Set(ctx, rideKey, t.ID.String(), 0)
			}
			return nil
		})
		return err
	}, threadKey, rideKey)

	if errors.Is(err, redis.TxFailedErr) {
		return sentinel.ErrConflict
	}
	return err
}

func (s *RedisStore) FindByID(ctx context.Context, threadID id.ThreadID) (*models.Thread, error) {
	data, err := s.client.Get(ctx, s.threadKey(threadID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}
	return decodeThread(data)
}

func (s *RedisStore) FindActiveByRide(ctx context.Context, rideID id.RideID) (*models.Thread, error) {
	raw, err := s.client.Get(ctx, s.rideKey(rideID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active thread for ride: %w", err)
	}
	threadID, err := id.ParseThreadID(raw)
	if err != nil {
		return nil, fmt.Errorf("parse active thread id: %w", err)
	}
	return s.FindByID(ctx, threadID)
}

// Update overwrites an existing thread. When the thread is closed the ride
// pointer is removed, but only if it still points at this thread.
func (s *RedisStore) Update(ctx context.Context, t *models.Thread) error {
	data, err := json.Marshal(threadToJSON(t))
	if err != nil {
		return fmt.Errorf("marshal thread: %w", err)
	}
	threadKey := s.threadKey(t.ID)
	rideKey := s.rideKey(t.RideID)

	txf := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, threadKey).Result()
		if err != nil {
			return fmt.Errorf("check thread: %w", err)
		}
		if exists == 0 {
			return sentinel.ErrNotFound
		}
		current, err := tx.Get(ctx, rideKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("get ride pointer: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, threadKey, data, 0)
			if !t.Active && current == t.ID.String() {
				pipe.Del(ctx, rideKey)
			}
			return nil
		})
		return err
	}

	for range maxUpdateRetries {
		err = s.client.Watch(ctx, txf, threadKey, rideKey)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("update thread: %w", err)
}

func decodeThread(data []byte) (*models.Thread, error) {
	var j threadJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("unmarshal thread: %w", err)
	}
	return threadFromJSON(&j)
}
